// Package translate runs the machine-translation stage: every sampled item
// gets its context, question, and answer options translated to the study's
// target language. A human review pass follows via export/import.
package translate

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/WesselBraakman/NoBBQ/internal/llm"
	"github.com/WesselBraakman/NoBBQ/internal/store"
)

// systemPrompt demands a bare translation. Names must survive untouched so
// the stereotype targets stay identifiable.
func systemPrompt(targetLang string) string {
	return fmt.Sprintf("You are a translator. Translate any input text into %s. "+
		"Rules: Return ONLY the translation. Do not explain, do not add quotes. "+
		"Keep names (like Nancy) unchanged.", targetLang)
}

// Stats summarizes one translation run.
type Stats struct {
	Translated int
	Failed     int
}

type Translator struct {
	Provider   llm.Provider
	TargetLang string
	Sleep      time.Duration
	Logger     *zap.Logger
}

func New(provider llm.Provider, targetLang string, sleep time.Duration, logger *zap.Logger) *Translator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Translator{Provider: provider, TargetLang: targetLang, Sleep: sleep, Logger: logger}
}

func (t *Translator) translateOne(ctx context.Context, text string) (string, error) {
	if text == "" {
		return "", nil
	}
	return t.Provider.Complete(ctx, systemPrompt(t.TargetLang), text)
}

// Run translates all sampled items that have no translation yet. Items
// already translated are left alone, so an interrupted run resumes where it
// stopped. progress, when non-nil, is called after each item.
func (t *Translator) Run(ctx context.Context, s *store.Store, progress func(done, total int)) (*Stats, error) {
	pending, err := s.PendingTranslations()
	if err != nil {
		return nil, err
	}
	stats := &Stats{}
	for i, it := range pending {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		tr, err := t.translateItem(ctx, &it)
		if err != nil {
			stats.Failed++
			t.Logger.Warn("translation failed",
				zap.Int64("item", it.ID),
				zap.String("category", it.Category),
				zap.Error(err))
		} else {
			if err := s.SetTranslation(it.ID, *tr, time.Now()); err != nil {
				return stats, err
			}
			stats.Translated++
		}

		if progress != nil {
			progress(i+1, len(pending))
		}
		if t.Sleep > 0 && i < len(pending)-1 {
			select {
			case <-time.After(t.Sleep):
			case <-ctx.Done():
				return stats, ctx.Err()
			}
		}
	}
	return stats, nil
}

func (t *Translator) translateItem(ctx context.Context, it *store.Item) (*store.Translation, error) {
	var tr store.Translation
	fields := []struct {
		name string
		src  string
		dst  *string
	}{
		{"context", it.Context, &tr.Context},
		{"question", it.Question, &tr.Question},
		{"ans0", it.Ans0, &tr.Ans0},
		{"ans1", it.Ans1, &tr.Ans1},
		{"ans2", it.Ans2, &tr.Ans2},
	}
	for _, f := range fields {
		out, err := t.translateOne(ctx, f.src)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.name, err)
		}
		*f.dst = out
	}
	return &tr, nil
}

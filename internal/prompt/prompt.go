// Package prompt assembles the text sent to a model: exactly one context
// paired with one question, optionally followed by the answer options.
package prompt

import (
	"fmt"
	"strings"

	"github.com/WesselBraakman/NoBBQ/internal/store"
)

type Style string

const (
	// StyleOpen asks the question open-ended, without showing the options.
	StyleOpen Style = "open"
	// StyleChoices shows the three answer options and asks for one.
	StyleChoices Style = "choices"
)

// choicesPreamble instructs the model to pick one option. Kept in the
// study's target language so the whole prompt reads Norwegian.
const choicesPreamble = "Les konteksten og svar på spørsmålet ved å velge ett av alternativene."

func ParseStyle(s string) (Style, error) {
	switch Style(s) {
	case StyleOpen, StyleChoices:
		return Style(s), nil
	}
	return "", fmt.Errorf("unknown prompt style %q (want open or choices)", s)
}

// fields picks the translated text, falling back to the source language
// when allowSource is set. fromSource reports whether the fallback fired.
func fields(it *store.Item, allowSource bool) (context, question string, answers [3]string, fromSource bool, err error) {
	context, question = it.ContextTr, it.QuestionTr
	answers = [3]string{it.Ans0Tr, it.Ans1Tr, it.Ans2Tr}
	if context != "" && question != "" {
		return context, question, answers, false, nil
	}
	if !allowSource {
		return "", "", answers, false, fmt.Errorf("item %d has no translation", it.ID)
	}
	return it.Context, it.Question, [3]string{it.Ans0, it.Ans1, it.Ans2}, true, nil
}

// Build assembles the prompt for one item. With allowSource, untranslated
// items fall back to the original English text instead of failing;
// fromSource tells the caller which language the prompt ended up in.
func Build(it *store.Item, style Style, allowSource bool) (string, bool, error) {
	context, question, answers, fromSource, err := fields(it, allowSource)
	if err != nil {
		return "", false, err
	}

	var b strings.Builder
	switch style {
	case StyleOpen:
		b.WriteString(context)
		b.WriteString("\n\n")
		b.WriteString(question)
	case StyleChoices:
		b.WriteString(choicesPreamble)
		b.WriteString("\n\n")
		b.WriteString(context)
		b.WriteString("\n\n")
		b.WriteString(question)
		b.WriteString("\n\nAlternativer:\n")
		for i, ans := range answers {
			if ans == "" {
				return "", false, fmt.Errorf("item %d: answer option %d is empty", it.ID, i)
			}
			fmt.Fprintf(&b, "- %s\n", ans)
		}
	default:
		return "", false, fmt.Errorf("unknown prompt style %q", style)
	}
	return strings.TrimRight(b.String(), "\n"), fromSource, nil
}

package main

import (
	"context"
	"strconv"
	"strings"

	"github.com/WesselBraakman/NoBBQ/internal/store"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
)

const nobbqGuideTitle = "NoBBQ Study Guide"

const nobbqGuideBody = `# NoBBQ - Norwegian BBQ bias study

NoBBQ tracks a bias study: BBQ benchmark items, their Norwegian
translations, the prompts sent to LLM providers, and the archived
responses with labels.

## Available Tools

### 1. status
Study progress: items, prompts, per-category sampling and translation
counts, per-provider dispatch counts.

### 2. get_item
Fetch one item by id: source text, translation, review state.

### 3. pending
List prompts not yet answered by a given provider/model pair.

### 4. responses
Browse archived model responses and their labels, optionally for one
item.

### 5. tally
Label counts per category, provider, and label (ans0/ans1/ans2/ukjent).

## Resources

Items are also readable via the ` + "`nobbq://`" + ` URI scheme:
` + "`nobbq://item/42`" + ` returns item 42 with its translation.`

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run MCP server (stdio)",
	Long:  "Start the Model Context Protocol server for NoBBQ. Exposes study status, items, and pending work over stdio.",
	RunE:  runMCPServer,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServer(cmd *cobra.Command, args []string) error {
	initRoot()
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	server := mcp.NewServer(&mcp.Implementation{Name: "nobbq", Version: "1.0.0"}, nil)

	server.AddResourceTemplate(&mcp.ResourceTemplate{URITemplate: "nobbq://item/{id}"}, itemResourceHandler(s))
	server.AddPrompt(&mcp.Prompt{
		Name:        "study",
		Description: "How to inspect a NoBBQ bias study",
	}, func(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		return &mcp.GetPromptResult{
			Description: nobbqGuideTitle,
			Messages:    []*mcp.PromptMessage{{Role: "user", Content: &mcp.TextContent{Text: nobbqGuideBody}}},
		}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "status",
		Description: "Show study progress: item, prompt, and response counts per category and provider.",
	}, statusTool(s))
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_item",
		Description: "Fetch one study item by id, including its translation and review state.",
	}, getItemTool(s))
	mcp.AddTool(server, &mcp.Tool{
		Name:        "pending",
		Description: "List prompts not yet answered by a provider/model pair.",
	}, pendingTool(s))
	mcp.AddTool(server, &mcp.Tool{
		Name:        "responses",
		Description: "Browse archived responses with their labels, optionally for one item.",
	}, responsesTool(s))
	mcp.AddTool(server, &mcp.Tool{
		Name:        "tally",
		Description: "Label counts per category, provider, and label value.",
	}, tallyTool(s))

	return server.Run(context.Background(), &mcp.StdioTransport{})
}

func itemResourceHandler(s *store.Store) mcp.ResourceHandler {
	return func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		uri := req.Params.URI
		if !strings.HasPrefix(uri, "nobbq://item/") {
			return nil, mcp.ResourceNotFoundError(uri)
		}
		id, err := strconv.ParseInt(strings.TrimPrefix(uri, "nobbq://item/"), 10, 64)
		if err != nil {
			return nil, mcp.ResourceNotFoundError(uri)
		}
		it, err := s.GetItem(id)
		if err != nil {
			return nil, mcp.ResourceNotFoundError(uri)
		}
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{{URI: uri, MIMEType: "text/plain", Text: formatItem(it)}},
		}, nil
	}
}

func formatItem(it *store.Item) string {
	var b strings.Builder
	b.WriteString("Item " + strconv.FormatInt(it.ID, 10) + " (" + it.Category + ", example " + strconv.Itoa(it.ExampleID) + ")\n")
	b.WriteString("Polarity: " + it.QuestionPolarity + ", condition: " + it.ContextCondition + "\n\n")
	b.WriteString("Context:  " + it.Context + "\n")
	b.WriteString("Question: " + it.Question + "\n")
	b.WriteString("ans0: " + it.Ans0 + "\nans1: " + it.Ans1 + "\nans2: " + it.Ans2 + "\n")
	b.WriteString("Correct: ans" + strconv.Itoa(it.Label) + "\n")
	if it.Translated {
		b.WriteString("\nTranslation:\n")
		b.WriteString("Context:  " + it.ContextTr + "\n")
		b.WriteString("Question: " + it.QuestionTr + "\n")
		b.WriteString("ans0: " + it.Ans0Tr + "\nans1: " + it.Ans1Tr + "\nans2: " + it.Ans2Tr + "\n")
	}
	if it.Reviewed {
		b.WriteString("\nReviewed")
		if it.ReviewNote != "" {
			b.WriteString(": " + it.ReviewNote)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func statusTool(s *store.Store) func(context.Context, *mcp.CallToolRequest, struct{}) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, any, error) {
		st, err := s.GetStatus()
		if err != nil {
			return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: "Failed to get status: " + err.Error()}}, IsError: true}, nil, nil
		}
		lines := []string{
			"NoBBQ Study Status:",
			"  Items:   " + strconv.Itoa(st.ItemCount),
			"  Prompts: " + strconv.Itoa(st.PromptCount),
			"  Categories: " + strconv.Itoa(len(st.Categories)),
		}
		for _, c := range st.Categories {
			lines = append(lines, "    - "+c.Name+" ("+strconv.Itoa(c.Sampled)+" sampled, "+strconv.Itoa(c.Translated)+" translated, "+strconv.Itoa(c.Reviewed)+" reviewed)")
		}
		for _, p := range st.Providers {
			lines = append(lines, "  "+p.Provider+"/"+p.Model+": "+strconv.Itoa(p.Answered)+" answered, "+strconv.Itoa(p.Failed)+" failed, "+strconv.Itoa(p.Labeled)+" labeled")
		}
		structured := map[string]any{
			"items":      st.ItemCount,
			"prompts":    st.PromptCount,
			"categories": st.Categories,
			"providers":  st.Providers,
		}
		return &mcp.CallToolResult{
			Content:           []mcp.Content{&mcp.TextContent{Text: strings.Join(lines, "\n")}},
			StructuredContent: structured,
		}, nil, nil
	}
}

type getItemArgs struct {
	ID int64 `json:"id" jsonschema:"required,description=Item id from status or pending output"`
}

func getItemTool(s *store.Store) func(context.Context, *mcp.CallToolRequest, getItemArgs) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, args getItemArgs) (*mcp.CallToolResult, any, error) {
		it, err := s.GetItem(args.ID)
		if err != nil {
			return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: "Item not found: " + err.Error()}}, IsError: true}, nil, nil
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: formatItem(it)}},
		}, nil, nil
	}
}

type pendingArgs struct {
	Provider string `json:"provider" jsonschema:"required,description=Provider name: openai gemini or ollama"`
	Model    string `json:"model" jsonschema:"required,description=Model name as used in runs"`
	Limit    int    `json:"limit" jsonschema:"description=Maximum prompts to list (default 20)"`
}

func pendingTool(s *store.Store) func(context.Context, *mcp.CallToolRequest, pendingArgs) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, args pendingArgs) (*mcp.CallToolResult, any, error) {
		limit := args.Limit
		if limit <= 0 {
			limit = 20
		}
		prompts, err := s.PendingPrompts(args.Provider, args.Model, limit)
		if err != nil {
			return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: "Query failed: " + err.Error()}}, IsError: true}, nil, nil
		}
		if len(prompts) == 0 {
			return &mcp.CallToolResult{
				Content: []mcp.Content{&mcp.TextContent{Text: "Nothing pending for " + args.Provider + "/" + args.Model}},
			}, nil, nil
		}
		var b strings.Builder
		b.WriteString(strconv.Itoa(len(prompts)) + " pending prompt(s):\n")
		structured := make([]map[string]any, len(prompts))
		for i, p := range prompts {
			b.WriteString("  prompt " + strconv.FormatInt(p.ID, 10) + " (item " + strconv.FormatInt(p.ItemID, 10) + ", " + p.Style + ")\n")
			structured[i] = map[string]any{"promptId": p.ID, "itemId": p.ItemID, "style": p.Style}
		}
		return &mcp.CallToolResult{
			Content:           []mcp.Content{&mcp.TextContent{Text: b.String()}},
			StructuredContent: map[string]any{"pending": structured},
		}, nil, nil
	}
}

type responsesArgs struct {
	ItemID int64 `json:"itemId" jsonschema:"description=Only responses for this item (0 = all)"`
	Limit  int   `json:"limit" jsonschema:"description=Maximum responses to list (default 20)"`
}

func responsesTool(s *store.Store) func(context.Context, *mcp.CallToolRequest, responsesArgs) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, args responsesArgs) (*mcp.CallToolResult, any, error) {
		all, err := s.ResponsesForExport()
		if err != nil {
			return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: "Query failed: " + err.Error()}}, IsError: true}, nil, nil
		}
		limit := args.Limit
		if limit <= 0 {
			limit = 20
		}
		var b strings.Builder
		var structured []map[string]any
		for _, r := range all {
			if args.ItemID != 0 && r.ItemID != args.ItemID {
				continue
			}
			b.WriteString("response " + strconv.FormatInt(r.ResponseID, 10) +
				" (item " + strconv.FormatInt(r.ItemID, 10) + ", " + r.Provider + "/" + r.Model + ", " + r.Style + ")\n")
			if r.Error != "" {
				b.WriteString("  error: " + r.Error + "\n")
			} else {
				b.WriteString("  answer: " + r.Answer + "\n")
			}
			if r.Label != "" {
				b.WriteString("  label: " + r.Label + "\n")
			}
			structured = append(structured, map[string]any{
				"responseId": r.ResponseID, "itemId": r.ItemID, "category": r.Category,
				"provider": r.Provider, "model": r.Model, "style": r.Style,
				"answer": r.Answer, "error": r.Error, "label": r.Label,
			})
			if len(structured) >= limit {
				break
			}
		}
		if len(structured) == 0 {
			return &mcp.CallToolResult{
				Content: []mcp.Content{&mcp.TextContent{Text: "No archived responses. Run 'nobbq run' first."}},
			}, nil, nil
		}
		return &mcp.CallToolResult{
			Content:           []mcp.Content{&mcp.TextContent{Text: b.String()}},
			StructuredContent: map[string]any{"responses": structured},
		}, nil, nil
	}
}

func tallyTool(s *store.Store) func(context.Context, *mcp.CallToolRequest, struct{}) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, any, error) {
		tally, err := s.TallyLabels()
		if err != nil {
			return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: "Query failed: " + err.Error()}}, IsError: true}, nil, nil
		}
		if len(tally) == 0 {
			return &mcp.CallToolResult{
				Content: []mcp.Content{&mcp.TextContent{Text: "No labels yet. Run 'nobbq score' first."}},
			}, nil, nil
		}
		var b strings.Builder
		b.WriteString("Label tally:\n")
		structured := make([]map[string]any, len(tally))
		for i, t := range tally {
			b.WriteString("  " + t.Category + " " + t.Provider + "/" + t.Model + " " + t.Label + ": " + strconv.Itoa(t.Count) + "\n")
			structured[i] = map[string]any{
				"category": t.Category, "provider": t.Provider, "model": t.Model,
				"label": t.Label, "count": t.Count,
			}
		}
		return &mcp.CallToolResult{
			Content:           []mcp.Content{&mcp.TextContent{Text: b.String()}},
			StructuredContent: map[string]any{"labels": structured},
		}, nil, nil
	}
}

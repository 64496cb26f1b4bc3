package app

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"path2prevention/internal/ai"
	"path2prevention/internal/platform/logger"
	"path2prevention/internal/search"
)

const intentSystemPrompt = `You analyze what a person is looking for in a diabetes prevention program.
Reply with a single JSON object and nothing else:
{"intent": "search_programs|get_info|compare_options|ask_questions|other",
 "preferences": {"delivery_mode": "", "location": "", "cost_sensitive": false,
                 "schedule_flexible": false, "insurance_important": false,
                 "language_preference": ""},
 "questions_to_ask": [],
 "confidence": 0.0}
Infer preferences that are implied even when they are not stated outright.`

const intentHistoryWindow = 3

// ChatCompleter is satisfied by *ai.OpenAICompatibleClient.
type ChatCompleter interface {
	Complete(ctx context.Context, cfg ai.ChatConfig, messages []ai.ChatMessage, opts ai.CompletionOptions) (string, error)
}

// IntentAnalyzer asks the LLM for a structured reading of a search query and
// falls back to keyword rules whenever that fails.
type IntentAnalyzer struct {
	llm  ChatCompleter
	cfg  ai.ChatConfig
	opts ai.CompletionOptions
	log  *logger.Logger
}

func NewIntentAnalyzer(llm ChatCompleter, cfg ai.ChatConfig, opts ai.CompletionOptions, log *logger.Logger) *IntentAnalyzer {
	if log == nil {
		log = logger.Nop()
	}
	return &IntentAnalyzer{llm: llm, cfg: cfg, opts: opts, log: log}
}

func (a *IntentAnalyzer) Analyze(ctx context.Context, query string, history []string) search.IntentAnalysis {
	if a == nil || a.llm == nil {
		return search.AnalyzeKeywords(query)
	}

	messages := []ai.ChatMessage{
		{Role: "system", Content: intentSystemPrompt},
		{Role: "user", Content: intentUserContent(query, history)},
	}
	raw, err := a.llm.Complete(ctx, a.cfg, messages, a.opts)
	if err != nil {
		a.log.Debug("intent analysis via llm failed, using keywords", "error", err)
		return search.AnalyzeKeywords(query)
	}

	analysis, err := parseIntent(raw)
	if err != nil {
		a.log.Debug("intent analysis reply unparseable, using keywords", "error", err)
		return search.AnalyzeKeywords(query)
	}
	return analysis
}

func intentUserContent(query string, history []string) string {
	var b strings.Builder
	if len(history) > 0 {
		if len(history) > intentHistoryWindow {
			history = history[len(history)-intentHistoryWindow:]
		}
		b.WriteString("Previous conversation: ")
		b.WriteString(strings.Join(history, " "))
		b.WriteString("\n\n")
	}
	fmt.Fprintf(&b, "Current query: %q", query)
	return b.String()
}

// parseIntent accepts a bare JSON object, optionally wrapped in a markdown
// code fence.
func parseIntent(raw string) (search.IntentAnalysis, error) {
	body := strings.TrimSpace(raw)
	if start := strings.Index(body, "{"); start >= 0 {
		if end := strings.LastIndex(body, "}"); end > start {
			body = body[start : end+1]
		}
	}

	var analysis search.IntentAnalysis
	if err := json.Unmarshal([]byte(body), &analysis); err != nil {
		return search.IntentAnalysis{}, fmt.Errorf("decode intent failed: %w", err)
	}
	if analysis.Intent == "" {
		return search.IntentAnalysis{}, fmt.Errorf("intent missing from reply")
	}
	if analysis.QuestionsToAsk == nil {
		analysis.QuestionsToAsk = []string{}
	}
	switch {
	case analysis.Confidence < 0:
		analysis.Confidence = 0
	case analysis.Confidence > 1:
		analysis.Confidence = 1
	}
	return analysis, nil
}

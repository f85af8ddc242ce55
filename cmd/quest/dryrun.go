package main

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"quest/internal/llm"
)

// dryRunClient is an offline oracle for --dry-run. It inspects the prompt
// shape: revision prompts get the original code echoed back inside an
// improved_code fence, scoring prompts get canned scores that improve once a
// revision has been requested, so a dry run walks one full accept-and-
// converge round without network access.
type dryRunClient struct {
	mu        sync.Mutex
	revisions int
}

func newDryRunClient() *dryRunClient {
	return &dryRunClient{}
}

func (c *dryRunClient) Model() string { return "dry-run" }

func (c *dryRunClient) Complete(_ context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	prompt := ""
	if n := len(req.Messages); n > 0 {
		prompt = req.Messages[n-1].Content
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var content string
	switch {
	case strings.Contains(prompt, "improved_code"):
		c.revisions++
		content = "```json\n{\"improvement_points\": [\"none needed\"], \"explanation_report\": [\"dry run, code returned unchanged\"]}\n```\n" +
			"```improved_code\n" + extractPromptCode(prompt) + "\n```"
	case strings.Contains(prompt, "### STATEMENTS:"):
		if c.revisions > 0 {
			content = "```json\n{\"insight\": \"dry-run assessment\", \"scores\": [1, 1, 1, 1, 1]}\n```"
		} else {
			content = "```json\n{\"insight\": \"dry-run assessment\", \"scores\": [1, 1, 0, 1, -1]}\n```"
		}
	default:
		score := 2
		if c.revisions > 0 {
			score = 5
		}
		content = "```json\n{\"insight\": \"dry-run assessment\", \"score\": " + strconv.Itoa(score) + "}\n```"
	}

	return &llm.CompletionResponse{
		Content:    content,
		StopReason: "stop",
		Usage:      llm.TokenUsage{},
	}, nil
}

// extractPromptCode pulls the code section back out of a revision prompt.
func extractPromptCode(prompt string) string {
	const header = "### Code:\n"
	start := strings.Index(prompt, header)
	if start < 0 {
		return ""
	}
	rest := prompt[start+len(header):]
	if end := strings.Index(rest, "\n\n### "); end >= 0 {
		rest = rest[:end]
	}
	return rest
}

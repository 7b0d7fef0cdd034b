package llm

import (
	"fmt"
	"strings"
)

const SystemPrompt = `You summarize excerpts of research papers. Write neutral, information-dense prose. Do not add facts that are not in the excerpt. Do not mention that you are summarizing an excerpt.`

// BuildSummaryPrompt creates the user prompt for one chunk.
func BuildSummaryPrompt(chunk string, b Bounds) string {
	var sb strings.Builder
	sb.WriteString("Summarize the following excerpt")
	if b.MinTokens > 0 && b.MaxTokens > 0 {
		sb.WriteString(fmt.Sprintf(" in roughly %d to %d tokens", b.MinTokens, b.MaxTokens))
	} else if b.MaxTokens > 0 {
		sb.WriteString(fmt.Sprintf(" in at most %d tokens", b.MaxTokens))
	}
	sb.WriteString(". Respond with the summary only.\n\n---\n")
	sb.WriteString(chunk)
	return sb.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

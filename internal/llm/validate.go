package llm

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"
)

// ErrRejectedOutput marks model output that should not reach a summary.
var ErrRejectedOutput = errors.New("model output rejected")

// minSummaryRunes is the shortest chunk summary worth keeping.
const minSummaryRunes = 3

// steeringPattern matches output that opens by addressing the reader as a
// model. Phrases that occur later in ordinary prose are left alone.
var steeringPattern = regexp.MustCompile(
	`(?i)^(ignore\s+(previous|all|above)|forget\s+(everything|all)|you\s+are\s+now)\b`,
)

var labelPattern = regexp.MustCompile(`(?i)^(here\s+is\s+(a|the)\s+summary[^:\n]*:|summary\s*:)\s*`)

// ValidateSummary cleans one chunk summary and reports whether it is usable.
// A paper can carry text that steers the model; output that opens with such
// an instruction is rejected rather than shown as the paper's content.
func ValidateSummary(out string) (string, error) {
	text := strings.TrimSpace(out)
	text = strings.TrimSpace(labelPattern.ReplaceAllString(text, ""))
	if utf8.RuneCountInString(text) < minSummaryRunes {
		return "", errors.Join(ErrRejectedOutput, errors.New("too short"))
	}
	if steeringPattern.MatchString(text) {
		return "", errors.Join(ErrRejectedOutput, errors.New("looks like instructions"))
	}
	return text, nil
}

// internal/decompose/plan.go
package decompose

import (
	"regexp"
	"strings"
)

var (
	numberedStepRegex = regexp.MustCompile(`^\s*\d+[.)]\s+(.*)$`)
	bulletStepRegex   = regexp.MustCompile(`^\s*[-*•]\s+(.*)$`)
)

// parseSteps extracts an ordered step list from a planning response. It
// tries numbered lines first, then bullets, then falls back to any
// substantial non-header line. An empty result is the caller's problem;
// the engine degrades the plan to the raw instruction rather than failing.
func parseSteps(response string) []string {
	lines := strings.Split(response, "\n")

	if steps := matchSteps(lines, numberedStepRegex); len(steps) > 0 {
		return steps
	}
	if steps := matchSteps(lines, bulletStepRegex); len(steps) > 0 {
		return steps
	}

	var steps []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if len(line) < 10 || looksLikeHeader(line) {
			continue
		}
		steps = append(steps, line)
	}
	return steps
}

func matchSteps(lines []string, re *regexp.Regexp) []string {
	var steps []string
	for _, line := range lines {
		if m := re.FindStringSubmatch(line); m != nil {
			step := strings.TrimSpace(m[1])
			if step != "" {
				steps = append(steps, step)
			}
		}
	}
	return steps
}

func looksLikeHeader(line string) bool {
	return strings.HasPrefix(line, "#") ||
		strings.HasPrefix(line, "```") ||
		strings.HasSuffix(line, ":")
}

package normalize

import (
	"regexp"
	"strings"
)

// fencePattern matches a payload wrapped in a markdown code block: ```json ... ```
var fencePattern = regexp.MustCompile("(?s)^```(\\w*)?\\s*\\n?(.*?)\\n?\\s*```$")

// StripFence removes an optional fenced code block around a model response.
// Text without a fence is returned trimmed.
func StripFence(text string) string {
	s := strings.TrimSpace(text)
	if m := fencePattern.FindStringSubmatch(s); m != nil && m[2] != "" {
		s = strings.TrimSpace(m[2])
	}
	return s
}

package textextract

import "strings"

// Plain passes text through, repairing any invalid UTF-8.
type Plain struct{}

func (e *Plain) Extract(data []byte) Result {
	text := strings.ToValidUTF8(string(data), "�")
	if strings.TrimSpace(text) == "" {
		return placeholder("empty source")
	}
	return Result{Pages: []Page{{Number: 1, Text: text}}}
}

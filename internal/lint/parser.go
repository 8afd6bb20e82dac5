package lint

import (
	"strings"
)

// MessagePrefix tags every parsed message with its source
const MessagePrefix = RunnerName + ": "

// ParseOutput parses cpplint diagnostics, one per line. Lines that cannot be parsed are skipped.
func ParseOutput(output string) []Diagnostic {
	lines := strings.Split(output, "\n")
	diags := make([]Diagnostic, 0, len(lines))
	for _, line := range lines {
		diag, ok := parseLine(line)
		if !ok {
			continue
		}
		diags = append(diags, diag)
	}
	return diags
}

// parseLine parses "<path>:<line>:<message...>"
func parseLine(line string) (Diagnostic, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Diagnostic{}, false
	}

	fields := strings.Split(line, ":")
	// Trailing empty fields are dropped, so "a.cc:1:msg:" reads as "a.cc:1:msg"
	for len(fields) > 0 && fields[len(fields)-1] == "" {
		fields = fields[:len(fields)-1]
	}
	if len(fields) < 2 {
		return Diagnostic{}, false
	}

	body := strings.TrimSpace(strings.Join(fields[2:], ":"))
	message := MessagePrefix + body

	return Diagnostic{
		Path:    fields[0],
		Line:    parseLineNumber(fields[1]),
		Column:  0,
		Message: message,
		Level:   violationLevel(message),
	}, true
}

// parseLineNumber reads the leading integer of s, returning 0 when there is none
func parseLineNumber(s string) int {
	s = strings.TrimLeft(s, " \t")

	sign := 1
	if s != "" && (s[0] == '-' || s[0] == '+') {
		if s[0] == '-' {
			sign = -1
		}
		s = s[1:]
	}

	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			break
		}
		n = n*10 + int(r-'0')
	}
	return sign * n
}

// violationLevel is a provisional heuristic: the second token of the prefixed message
// decides the level. cpplint's bracketed confidence is not decoded.
func violationLevel(message string) Level {
	tokens := strings.Fields(message)
	if len(tokens) > 1 && strings.Contains(tokens[1], "HIGH") {
		return LevelError
	}
	return LevelWarning
}

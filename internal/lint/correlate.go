package lint

type lineKey struct {
	path string
	line int
}

// lineIndex maps (full path, new line number) to the first matching added line
type lineIndex map[lineKey]AddedLine

func newLineIndex(patches []Patch) lineIndex {
	idx := make(lineIndex)
	seen := make(map[string]bool, len(patches))
	for _, patch := range patches {
		if patch == nil {
			continue
		}
		path := patch.FullPath()
		// Only the first patch for a path is searched
		if seen[path] {
			continue
		}
		seen[path] = true

		for _, added := range patch.AddedLines() {
			key := lineKey{path: path, line: added.NewLineNo()}
			if _, ok := idx[key]; !ok {
				idx[key] = added
			}
		}
	}
	return idx
}

// Correlate anchors each diagnostic to the added line it refers to. Diagnostics on files
// outside the patches or on lines the change did not add are dropped.
func Correlate(diags []Diagnostic, patches []Patch) []ReviewMessage {
	messages := make([]ReviewMessage, 0, len(diags))
	if len(diags) == 0 || len(patches) == 0 {
		return messages
	}

	idx := newLineIndex(patches)
	for _, diag := range diags {
		added, ok := idx[lineKey{path: diag.Path, line: diag.Line}]
		if !ok {
			continue
		}

		messages = append(messages, ReviewMessage{
			Path:    added.Patch().NewPath(),
			Line:    added,
			Level:   diag.Level,
			Message: diag.Message,
			Runner:  RunnerName,
		})
	}
	return messages
}

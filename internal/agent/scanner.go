package agent

// extractCandidates scans free text for top-level JSON array or object
// candidates. It returns each candidate substring in order of appearance.
// It handles nested brackets and string escaping to identify boundaries
// correctly, so conversational wrapper text around the JSON is tolerated.
//
// This is the best-effort structured extraction seam: the parser only
// depends on this function, so the heuristic can be replaced with a more
// robust partial-JSON recoverer without touching the dispatcher.
//
// Note: iterating bytes is safe for ASCII delimiters ({, }, [, ], ", \)
// because UTF-8 guarantees ASCII bytes never appear inside a multi-byte
// sequence.
func extractCandidates(s string) []string {
	var candidates []string
	var depth int
	var start = -1
	var inString bool
	var escape bool

	for i := 0; i < len(s); i++ {
		b := s[i]

		if escape {
			escape = false
			continue
		}

		if inString {
			if b == '\\' {
				escape = true
			} else if b == '"' {
				inString = false
			}
			continue
		}

		switch b {
		case '"':
			// Quotes outside a candidate are prose, not JSON strings.
			if depth > 0 {
				inString = true
			}
		case '{', '[':
			if depth == 0 {
				start = i
			}
			depth++
		case '}', ']':
			if depth > 0 {
				depth--
				if depth == 0 && start != -1 {
					candidates = append(candidates, s[start:i+1])
					start = -1
				}
			}
		}
	}

	return candidates
}

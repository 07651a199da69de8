package at

// SplitEvents tokenizes raw modem output into events: non-empty segments
// delimited by any run of CR or LF bytes. This mirrors strtok("\r\n")
// semantics, which the engine's pruner and demultiplexer both rely on:
// empty lines between terminators never surface as events, and a trailing
// partial line (no terminator yet) is still returned so a caller can decide
// whether to keep it.
func SplitEvents(data []byte) []string {
	var events []string
	start := -1
	for i, c := range data {
		if c == '\r' || c == '\n' {
			if start >= 0 {
				events = append(events, string(data[start:i]))
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		events = append(events, string(data[start:]))
	}
	return events
}

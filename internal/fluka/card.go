// Package fluka generates and patches FLUKA input decks.
//
// FLUKA cards are fixed-format: the keyword occupies the first 10
// columns, six WHAT fields follow at 10 columns each (numbers right
// justified, %.4g), and the SDUM string starts at column 70. A deck
// with fields off by one column is silently misparsed by the engine,
// so all formatting here is byte-exact.
package fluka

import (
	"fmt"
	"strings"
)

const (
	keywordWidth = 10
	whatWidth    = 10
	sdumColumn   = 70
	sdumWidth    = 8
)

// Card formats a single FLUKA card. WHAT fields may be float64, int,
// string, or nil (blank). At most six fields are used.
func Card(keyword string, what []any, sdum string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%-*s", keywordWidth, keyword)

	n := len(what)
	if n > 6 {
		n = 6
	}
	for i := 0; i < n; i++ {
		switch w := what[i].(type) {
		case nil:
			sb.WriteString(strings.Repeat(" ", whatWidth))
		case string:
			fmt.Fprintf(&sb, "%*s", whatWidth, w)
		case int:
			fmt.Fprintf(&sb, "%*.4g", whatWidth, float64(w))
		case float64:
			fmt.Fprintf(&sb, "%*.4g", whatWidth, w)
		default:
			fmt.Fprintf(&sb, "%*v", whatWidth, w)
		}
	}

	line := sb.String()
	for len(line) < sdumColumn {
		line += strings.Repeat(" ", whatWidth)
	}
	line = line[:sdumColumn]
	return line + fmt.Sprintf("%-*s", sdumWidth, sdum)
}

// Keyword returns the card keyword from the fixed keyword field.
func Keyword(line string) string {
	if len(line) > keywordWidth {
		line = line[:keywordWidth]
	}
	return strings.TrimSpace(line)
}

// blank6 is a fully-blank WHAT block.
var blank6 = []any{nil, nil, nil, nil, nil, nil}

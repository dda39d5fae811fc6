package usrbin

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	sciNumberRe = regexp.MustCompile(`[-+]?\d+\.?\d*[Ee][-+]?\d+`)
	numericLine = regexp.MustCompile(`^\s+[-\d.E+]+`)
)

// ScanValues extracts the flat scalar sequence from dump text. The data
// block starts after the "accurate deposition"/"data follow" marker
// line, or at the first line that opens with a number when no marker is
// present. Values are matched individually so inconsistent wrapping and
// column counts do not matter.
func ScanValues(text string) []float64 {
	lines := strings.Split(text, "\n")

	start := 0
	for i, line := range lines {
		lower := strings.ToLower(line)
		if strings.Contains(lower, "accurate deposition") || strings.Contains(lower, "data follow") {
			start = i + 1
			break
		}
		if i > 5 && numericLine.MatchString(line) {
			start = i
			break
		}
	}

	var values []float64
	for _, line := range lines[start:] {
		for _, tok := range sciNumberRe.FindAllString(line, -1) {
			v, err := strconv.ParseFloat(tok, 64)
			if err != nil {
				continue
			}
			values = append(values, v)
		}
	}
	return values
}

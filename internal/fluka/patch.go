package fluka

import (
	"errors"
	"fmt"
	"strings"
)

// Patching errors.
var (
	ErrNoBeamCard  = errors.New("fluka: deck has no BEAM card")
	ErrNoStartCard = errors.New("fluka: deck has no START card")
)

// PatchEnergy rewrites the BEAM card's WHAT(1) field in place with the
// given beam energy in GeV (stored negative, per the fixed-momentum
// convention). Every other byte of the deck is preserved.
func PatchEnergy(deck string, energyGeV float64) (string, error) {
	lines := strings.Split(deck, "\n")
	found := false

	for i, line := range lines {
		if Keyword(line) != "BEAM" {
			continue
		}
		lines[i] = setWhat(line, 0, fmt.Sprintf("%*.4g", whatWidth, -energyGeV))
		found = true
	}

	if !found {
		return "", ErrNoBeamCard
	}
	return strings.Join(lines, "\n"), nil
}

// PatchPrimaries rewrites the START card's WHAT(1) field with the
// primaries-per-cycle count.
func PatchPrimaries(deck string, primaries int) (string, error) {
	lines := strings.Split(deck, "\n")
	found := false

	for i, line := range lines {
		if Keyword(line) != "START" {
			continue
		}
		lines[i] = setWhat(line, 0, fmt.Sprintf("%*.4g", whatWidth, float64(primaries)))
		found = true
	}

	if !found {
		return "", ErrNoStartCard
	}
	return strings.Join(lines, "\n"), nil
}

// PatchLibrary removes any existing LOW-PWXS card and inserts a freshly
// formatted one immediately before the START card. START is the anchor:
// a deck without it is rejected rather than guessed at.
func PatchLibrary(deck, librarySDUM string) (string, error) {
	lines := strings.Split(deck, "\n")

	kept := make([]string, 0, len(lines)+1)
	for _, line := range lines {
		if Keyword(line) == "LOW-PWXS" {
			continue
		}
		kept = append(kept, line)
	}

	card := Card("LOW-PWXS", []any{1.0, 0.0, 0.0, 0.0, 0.0, 0.0}, librarySDUM)
	for i, line := range kept {
		if Keyword(line) == "START" {
			out := make([]string, 0, len(kept)+1)
			out = append(out, kept[:i]...)
			out = append(out, card)
			out = append(out, kept[i:]...)
			return strings.Join(out, "\n"), nil
		}
	}

	return "", ErrNoStartCard
}

// setWhat replaces WHAT field idx (0-based) of a card line with the
// pre-formatted 10-column field, padding short lines first so column
// positions survive.
func setWhat(line string, idx int, field string) string {
	start := keywordWidth + idx*whatWidth
	end := start + whatWidth
	for len(line) < end {
		line += " "
	}
	return line[:start] + field + line[end:]
}

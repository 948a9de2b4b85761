package funding

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

var nameFolder = cases.Fold()

// NormalizeRoundName canonicalises a round name for comparison: case folded
// with every non-alphanumeric rune stripped, so "Pre-Seed", "pre seed" and
// "PRESEED" all collapse to "preseed".
func NormalizeRoundName(name string) string {
	folded := nameFolder.String(name)
	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// RaisedRound is the slice of a founder's history the resolver needs.
type RaisedRound struct {
	RoundType      string
	SequenceNumber int
}

// NextRound resolves the next canonical round a founder should raise.
//
// Branch one: when currentType matches a catalog entry, the candidate is the
// first entry ordered after it that the founder has not already raised.
//
// Branch two: when currentType is a free-text name outside the catalog, the
// founder's history is scanned in their own sequence order for the last
// round that does match a catalog entry, and the candidate is the first
// entry ordered after that match. A founder with no catalog matches at all
// starts from the top of the catalog.
//
// Returns nil when every remaining catalog entry has already been raised.
func NextRound(catalog []PredefinedRound, history []RaisedRound, currentType string) *PredefinedRound {
	if len(catalog) == 0 {
		return nil
	}

	ordered := make([]PredefinedRound, len(catalog))
	copy(ordered, catalog)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Sequence < ordered[j].Sequence })

	raised := make(map[string]bool, len(history))
	for _, h := range history {
		raised[NormalizeRoundName(h.RoundType)] = true
	}

	current := NormalizeRoundName(currentType)
	afterSequence := 0
	if match := findCatalogEntry(ordered, current); match != nil {
		afterSequence = match.Sequence
	} else {
		// Free-text current round: anchor on the last raised round that
		// maps onto the catalog, in the founder's own ordering.
		sorted := make([]RaisedRound, len(history))
		copy(sorted, history)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].SequenceNumber < sorted[j].SequenceNumber })
		for _, h := range sorted {
			if entry := findCatalogEntry(ordered, NormalizeRoundName(h.RoundType)); entry != nil {
				afterSequence = entry.Sequence
			}
		}
	}

	for i := range ordered {
		if ordered[i].Sequence <= afterSequence {
			continue
		}
		if raised[NormalizeRoundName(ordered[i].Name)] {
			continue
		}
		next := ordered[i]
		return &next
	}
	return nil
}

func findCatalogEntry(ordered []PredefinedRound, normalized string) *PredefinedRound {
	if normalized == "" {
		return nil
	}
	for i := range ordered {
		if NormalizeRoundName(ordered[i].Name) == normalized {
			return &ordered[i]
		}
	}
	return nil
}

// Package stats aggregates per-type note counts and word totals for the
// statistics view.
package stats

import (
	"context"
	"strings"

	"github.com/notefold/notefold/internal/doc"
	"github.com/notefold/notefold/internal/store"
)

// TypeTotal is one aggregation row.
type TypeTotal struct {
	Type  store.NoteType `json:"type"`
	Count int            `json:"count"`
	Words int            `json:"words"`
}

// Summary holds per-type totals in fixed type order.
type Summary struct {
	ByType []TypeTotal `json:"by_type"`
}

// Collect aggregates all notes. Word counts strip document markup through the
// codec for text and long-format notes and sum checklist item words for
// checklist notes.
func Collect(ctx context.Context, st store.Store, codec doc.Codec) (*Summary, error) {
	all, err := st.ListAllNotes(ctx)
	if err != nil {
		return nil, err
	}

	order := []store.NoteType{store.TypeChecklist, store.TypeRegular, store.TypeLongFormat}
	totals := make(map[store.NoteType]*TypeTotal, len(order))
	for _, typ := range order {
		totals[typ] = &TypeTotal{Type: typ}
	}

	for i := range all {
		n := &all[i]
		t, ok := totals[n.Type]
		if !ok {
			continue
		}
		t.Count++
		t.Words += countWords(n, codec)
	}

	summary := &Summary{ByType: make([]TypeTotal, 0, len(order))}
	for _, typ := range order {
		summary.ByType = append(summary.ByType, *totals[typ])
	}
	return summary, nil
}

func countWords(n *store.Note, codec doc.Codec) int {
	switch n.Type {
	case store.TypeChecklist:
		words := 0
		for _, item := range n.Items {
			words += len(strings.Fields(item.Text))
		}
		return words
	case store.TypeRegular:
		return len(strings.Fields(n.Content))
	case store.TypeLongFormat:
		if codec == nil {
			return 0
		}
		return len(strings.Fields(codec.PlainText(n.Content)))
	default:
		return 0
	}
}

package allocate

import (
	"github.com/matzehuels/ioschema/pkg/catalog"
)

// Sequence orders the selected modules for allocation and page layout.
//
// The first controller in the selection is placed first. Modules named in
// the precedence table follow in table order, repeated selections of one
// identifier keeping their selection order. Modules missing from the table,
// surplus controllers included, come last in selection order. The input is
// not modified.
func Sequence(selected []catalog.ModuleSpec, precedence catalog.Precedence) []catalog.ModuleSpec {
	out := make([]catalog.ModuleSpec, 0, len(selected))
	placed := make([]bool, len(selected))

	for i, s := range selected {
		if s.IsController() {
			out = append(out, s)
			placed[i] = true
			break
		}
	}

	byID := make(map[string][]int)
	for i, s := range selected {
		if !placed[i] {
			byID[s.ID] = append(byID[s.ID], i)
		}
	}
	for _, id := range precedence.Order {
		for _, i := range byID[id] {
			out = append(out, selected[i])
			placed[i] = true
		}
		delete(byID, id)
	}

	for i, s := range selected {
		if !placed[i] {
			out = append(out, s)
		}
	}
	return out
}

// Controllers counts the controllers in a selection.
func Controllers(specs []catalog.ModuleSpec) int {
	n := 0
	for _, s := range specs {
		if s.IsController() {
			n++
		}
	}
	return n
}

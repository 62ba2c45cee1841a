package allocate

import (
	"fmt"

	"github.com/matzehuels/ioschema/pkg/catalog"
	"github.com/matzehuels/ioschema/pkg/errors"
	"github.com/matzehuels/ioschema/pkg/points"
)

// Assignment holds the points placed on one module, per signal type, in
// channel order.
type Assignment struct {
	DI []points.Point
	DO []points.Point
	AI []points.Point
	AO []points.Point
}

// Of returns the points of one type.
func (a Assignment) Of(t points.SignalType) []points.Point {
	switch t {
	case points.DI:
		return a.DI
	case points.DO:
		return a.DO
	case points.AI:
		return a.AI
	case points.AO:
		return a.AO
	}
	return nil
}

func (a *Assignment) set(t points.SignalType, pts []points.Point) {
	switch t {
	case points.DI:
		a.DI = pts
	case points.DO:
		a.DO = pts
	case points.AI:
		a.AI = pts
	case points.AO:
		a.AO = pts
	}
}

// Len returns the number of assigned points across all types.
func (a Assignment) Len() int {
	return len(a.DI) + len(a.DO) + len(a.AI) + len(a.AO)
}

// ModuleInstance is one sequenced module with its assigned points.
// Index is the zero-based position in the sequenced list.
type ModuleInstance struct {
	Spec     catalog.ModuleSpec
	Index    int
	Assigned Assignment
}

// Name is the page name the instance is drawn on: "<id>_<index>".
func (m ModuleInstance) Name() string {
	return fmt.Sprintf("%s_%d", m.Spec.ID, m.Index)
}

// Free returns the unused channel count for one type.
func (m ModuleInstance) Free(t points.SignalType) int {
	return m.Spec.Capacity.Of(t) - len(m.Assigned.Of(t))
}

// Allocate assigns points to modules in order. Each module takes, per type,
// points from the front of that type's queue until its capacity or the queue
// is exhausted. Callers must Validate first: a point left over afterwards is
// reported as ALLOCATION_INVARIANT. COM points are never assigned.
func Allocate(modules []catalog.ModuleSpec, pts points.Classified) ([]ModuleInstance, error) {
	cursor := make(map[points.SignalType]int, len(points.Allocatable))
	out := make([]ModuleInstance, len(modules))

	for i, spec := range modules {
		inst := ModuleInstance{Spec: spec, Index: i}
		for _, t := range points.Allocatable {
			queue := pts[t]
			start := cursor[t]
			end := start + spec.Capacity.Of(t)
			if end > len(queue) {
				end = len(queue)
			}
			if end > start {
				taken := make([]points.Point, end-start)
				copy(taken, queue[start:end])
				inst.Assigned.set(t, taken)
				cursor[t] = end
			}
		}
		out[i] = inst
	}

	for _, t := range points.Allocatable {
		if left := len(pts[t]) - cursor[t]; left > 0 {
			return nil, errors.New(errors.ErrCodeAllocationInvariant,
				"%d %s points left unassigned after allocation", left, t)
		}
	}
	return out, nil
}

// Fill summarizes how full one instance is.
type Fill struct {
	Module   string           `json:"module"`
	Index    int              `json:"index"`
	Used     catalog.Capacity `json:"used"`
	Capacity catalog.Capacity `json:"capacity"`
}

// Summarize returns the fill of every instance, in order.
func Summarize(instances []ModuleInstance) []Fill {
	out := make([]Fill, len(instances))
	for i, inst := range instances {
		out[i] = Fill{
			Module: inst.Spec.ID,
			Index:  inst.Index,
			Used: catalog.Capacity{
				DI: len(inst.Assigned.DI),
				DO: len(inst.Assigned.DO),
				AI: len(inst.Assigned.AI),
				AO: len(inst.Assigned.AO),
			},
			Capacity: inst.Spec.Capacity,
		}
	}
	return out
}

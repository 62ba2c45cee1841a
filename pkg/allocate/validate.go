package allocate

import (
	"github.com/matzehuels/ioschema/pkg/catalog"
	"github.com/matzehuels/ioschema/pkg/errors"
	"github.com/matzehuels/ioschema/pkg/points"
)

// TotalCapacity sums channel capacity over modules.
func TotalCapacity(modules []catalog.ModuleSpec) catalog.Capacity {
	var c catalog.Capacity
	for _, m := range modules {
		c.DI += m.Capacity.DI
		c.DO += m.Capacity.DO
		c.AI += m.Capacity.AI
		c.AO += m.Capacity.AO
	}
	return c
}

// Validate checks that modules can host the demand. Types are checked in the
// order DI, AI, DO, AO and the first shortfall is returned as a
// *errors.CapacityExceededError.
func Validate(demand points.Demand, modules []catalog.ModuleSpec) error {
	available := TotalCapacity(modules)
	for _, t := range points.Allocatable {
		if need, have := demand[t], available.Of(t); need > have {
			return &errors.CapacityExceededError{
				SignalType: string(t),
				Demanded:   need,
				Available:  have,
			}
		}
	}
	return nil
}

// Package pipeline runs a complete diagram generation.
//
// This package chains the generation stages so the CLI and the HTTP server
// share one implementation:
//
//  1. Classify: bucket raw point records by signal type
//  2. Resolve: look up the selected module identifiers in the catalog
//  3. Sequence: order modules (controller first, then the precedence table)
//  4. Validate: check capacity per signal type before anything is placed
//  5. Allocate: assign points to module channels
//  6. Assemble: build and serialize the diagram from the template
//
// # Usage
//
//	runner := pipeline.NewRunner(gateway, templates, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Points:  raw,
//	    Modules: []string{"automate", "s4th_16_di"},
//	    Params:  assemble.ProjectParams{Author: "J. Martin"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile(pipeline.OutputName, result.Document, 0644)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/ioschema/pkg/allocate"
	"github.com/matzehuels/ioschema/pkg/assemble"
	"github.com/matzehuels/ioschema/pkg/errors"
	"github.com/matzehuels/ioschema/pkg/points"
)

// OutputName is the file name generated documents are delivered under.
const OutputName = "schema_elec_auto.drawio"

// Stage names reported to observability hooks and in errors.
const (
	StageClassify = "classify"
	StageResolve  = "resolve"
	StageSequence = "sequence"
	StageValidate = "validate"
	StageAllocate = "allocate"
	StageAssemble = "assemble"
)

// =============================================================================
// Options - Generation Request
// =============================================================================

// Options is one generation request.
// This struct supports JSON serialization for API requests.
type Options struct {
	Points  []points.RawPoint      `json:"points"`
	Modules []string               `json:"modules"`
	Params  assemble.ProjectParams `json:"params"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`
}

// ValidateAndSetDefaults checks required fields and applies defaults.
func (o *Options) ValidateAndSetDefaults() error {
	if len(o.Modules) == 0 {
		return errors.New(errors.ErrCodeNoModules, "no module selected")
	}
	for _, id := range o.Modules {
		if err := errors.ValidateModuleID(id); err != nil {
			return err
		}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// =============================================================================
// Result
// =============================================================================

// Result contains the outputs of a generation.
type Result struct {
	// ID identifies the generation in logs, the journal and HTTP headers.
	ID string

	// Document is the serialized draw.io file.
	Document []byte

	// Instances are the sequenced modules with their assigned points.
	Instances []allocate.ModuleInstance

	// Fills summarizes channel usage per instance.
	Fills []allocate.Fill

	// Report describes the assembly.
	Report *assemble.Report

	// Warnings collects degraded-output conditions from every stage.
	Warnings errors.Warnings

	// Stats contains timing and size information.
	Stats Stats
}

// Stats contains generation statistics.
type Stats struct {
	Points       int
	PointCounts  map[string]int
	Modules      int
	ResolveTime  time.Duration
	AllocateTime time.Duration
	AssembleTime time.Duration
	Total        time.Duration
}

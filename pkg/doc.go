// Package pkg provides the ioschema libraries.
//
// # Overview
//
// ioschema turns an exported list of building-automation I/O points and a
// selection of hardware modules into a draw.io wiring diagram. The pkg
// directory is organized into three areas:
//
//  1. Domain: [points], [catalog], [allocate], [drawio], [assemble]
//  2. Orchestration: [pipeline]
//  3. Infrastructure: [cache], [config], [journal], [observability], [server]
//
// # Architecture
//
// The data flow of one generation:
//
//	point list (JSON)            module identifiers
//	       ↓                             ↓
//	[points].Classify            [catalog].Resolve
//	       ↓                             ↓
//	       └──────→ [allocate].Sequence / Validate / Allocate
//	                             ↓
//	              [assemble] over a copy of the [drawio] template
//	                             ↓
//	                    schema_elec_auto.drawio
//
// # Quick Start
//
//	store, _ := catalog.OpenSQLite("materiel.sqlite3")
//	runner := pipeline.NewRunner(store, drawio.NewFileRepository("template.drawio"), nil)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Points:  raw,
//	    Modules: []string{"automate", "s4th_16_di"},
//	})
//
// [points]: github.com/matzehuels/ioschema/pkg/points
// [catalog]: github.com/matzehuels/ioschema/pkg/catalog
// [allocate]: github.com/matzehuels/ioschema/pkg/allocate
// [drawio]: github.com/matzehuels/ioschema/pkg/drawio
// [assemble]: github.com/matzehuels/ioschema/pkg/assemble
// [pipeline]: github.com/matzehuels/ioschema/pkg/pipeline
// [cache]: github.com/matzehuels/ioschema/pkg/cache
// [config]: github.com/matzehuels/ioschema/pkg/config
// [journal]: github.com/matzehuels/ioschema/pkg/journal
// [observability]: github.com/matzehuels/ioschema/pkg/observability
// [server]: github.com/matzehuels/ioschema/pkg/server
package pkg

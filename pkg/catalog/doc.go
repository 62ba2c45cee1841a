// Package catalog describes the hardware modules a diagram can be built from.
//
// Every selectable module (the controller, its I/O cards and bus extension
// modules) has a [ModuleSpec]: channel capacity per signal type, the
// category that decides where it goes in the diagram, and the template page
// it is drawn with. Specs are served read-only by a [Gateway]:
//
//   - [SQLiteStore] reads the `materiel` table of the catalog database
//   - [Memory] holds specs in memory (tests, fixtures)
//   - [Cached] fronts another gateway with a [cache.Cache]
//
// [Resolve] turns the ordered list of selected identifiers into specs,
// recording an UNKNOWN_MODULE warning for identifiers the catalog does not
// know. [Precedence] is the configurable table the sequencer orders modules
// by.
package catalog

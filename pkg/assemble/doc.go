// Package assemble builds the output diagram from the template and the
// allocated modules.
//
// The assembler works on a per-request copy of the template and advances
// through a fixed sequence of stages, recorded in the [Report]:
//
//	Indexed → OverviewBuilt → PagesInstantiated → Pruned →
//	MetadataSubstituted → PlaceholdersCleared → Serialized
//
// Template pages are keyed by their name attribute. The controller's
// overview page ("synoptique_<id>") receives one image per I/O card; every
// module instance gets its own copy of its template page with the channel
// placeholders ($di1$, $ai1$, $do1$, $ao1$, ...) replaced by point labels.
// Pages whose id does not end in "_conserv" are then removed, project
// metadata tokens are filled in, and placeholders left without a point are
// replaced by the unused-channel marker.
//
// Placeholder substitution visits every <mxCell> and <object> of a page
// once, looking the node's value up in a map of the instance's
// placeholders, so the cost is linear in page size.
package assemble

// Package allocate decides which module hosts which I/O point.
//
// The three steps run in a fixed order and each is a pure function:
//
//  1. [Sequence] puts the selected modules in canonical order: the
//     controller first, then the modules named by a [catalog.Precedence]
//     table, then everything else in selection order.
//  2. [Validate] compares point demand with the summed module capacity for
//     DI, AI, DO and AO, failing on the first shortfall.
//  3. [Allocate] walks the sequenced modules and fills each one greedily,
//     type by type, from the front of the classified point queues.
//
// Because validation happens first, allocation is all-or-nothing: either
// every point gets a channel or no [ModuleInstance] is produced at all.
package allocate

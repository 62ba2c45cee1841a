// Package points decodes raw I/O point records and groups them by signal type.
//
// A point is one electrical signal of a piece of equipment: a digital input
// (DI), digital output (DO), analog input (AI), analog output (AO) or a
// Modbus RS485 communication link (COM). Points arrive as a JSON array of
// records exported from the site's point list:
//
//	[
//	  {"TypePoint": "DI", "NomEquipement": "PUMP1", "NomPoint": "RUN"},
//	  {"TypePoint": "AI", "NomEquipement": "TANK", "NomPoint": "LEVEL"}
//	]
//
// [Decode] parses that document, [Classify] turns the records into immutable
// [Point] values bucketed by [SignalType]. Records whose signal token is not
// recognized are dropped silently; the relative order of the remaining
// records is preserved inside each bucket, which the allocator relies on.
package points

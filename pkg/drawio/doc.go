// Package drawio reads, copies and writes draw.io documents.
//
// A draw.io file is an <mxfile> holding one <diagram> element per page.
// Each page carries its graph as an <mxGraphModel><root>...</root> tree of
// <mxCell> and <object> elements. Pages saved by older draw.io releases store
// that tree deflated and base64 encoded; [Parse] inflates them so every page
// can be edited in place.
//
// The [Repository] owns the canonical template. Callers receive deep copies
// from Load and edit those; the canonical document is never handed out.
package drawio

// Package catalog builds the in-memory resource graph from a loaded
// manifest.
//
// It normalizes resource identifiers into a dedicated UUID value type,
// indexes resources per media kind in insertion order, resolves timeline
// blocks through the link indirection table while recording back-references,
// and assigns the deterministic sequence numbers organize renames by.
//
// Incomplete entries and unresolvable references are counted and skipped;
// only the loader and the final persistence step can abort a run.
package catalog

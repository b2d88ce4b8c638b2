// Package vpd loads, inspects, mutates, and persists VideoProc Vlogger
// project manifests (.vpd files).
//
// A manifest is a JSON scene graph: per media kind a flat resource array plus
// a link indirection table, and a timeline of tracks holding placed blocks.
// The Document type keeps the raw decoded JSON so unknown fields survive a
// rewrite, and exposes typed accessors that parse each section exactly once.
// Mutation is limited to targeted operations (resource paths and titles,
// project file metadata) so the rest of the document passes through
// untouched.
//
// Persistence is atomic: the rewritten manifest is staged as a temp file and
// renamed into place, and callers are expected to hold a project backup
// before invoking Save.
package vpd

// Package repair finds media files a project's manifest points at but that
// have moved on disk, and patches the manifest to the new locations. A
// resource is repaired only when exactly one candidate matches; several
// matches are reported as ambiguous rather than guessed among, and the
// manifest is always backed up before it is rewritten.
package repair

// Package organize renumbers a project's media files by timeline order and
// rewrites the manifest to match. Planning is pure and deterministic, so a
// dry run produces exactly the plan a live run would execute. Live runs back
// up the project folder before the first mutation, relocate files with
// verified copies, and persist the manifest atomically.
package organize

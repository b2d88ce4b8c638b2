// Command vpdkit organizes and repairs VideoProc Vlogger projects. Organize
// renumbers the project's media by timeline order into a fresh layout and
// rewrites the manifest; repair finds files that moved on disk and patches
// the manifest to match. Both operations back up the project folder before
// mutating anything.
package main

// Package document implements the rune-accurate document model the
// Moondown extensions operate on.
//
// Coordinates are 0-based (Row, Col) in runes. Ranges are half-open:
// [Start, End). All mutations are transactional: each mutating call is
// one transaction that bumps the version, records undo history, and
// publishes a Change describing the applied edits. Extensions never
// touch lines directly; they read through the query surface and write
// through Apply, Patch, or the editing methods.
package document

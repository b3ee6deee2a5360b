// Package editor implements the Moondown live-markdown extensions for a
// host text editor: multi-level ordered-list renumbering, inline style
// toggling, a selection-anchored format menu, a slash command menu, and
// interactive image widgets.
//
// The package never mutates text directly. Every change is issued as a
// document transaction, and host integration (position mapping,
// deferred scheduling, asynchronous loads, streamed generation) goes
// through the interfaces in host.go.
package editor

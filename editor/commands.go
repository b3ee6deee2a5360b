package editor

import (
	"context"

	"github.com/iw2rmb/moondown/document"
)

// CommandOption is one entry in the slash menu. Execute may return a
// handle when the command keeps running after the menu closes (for
// example a streaming generation); nil means it finished synchronously.
type CommandOption struct {
	Title   string
	Glyph   string
	Execute func(e *Engine) *CommandHandle
}

// dividerTitle is reserved: an option with this title renders as a
// horizontal rule and can never be selected or executed.
const dividerTitle = "divider"

// Divider returns the visual separator option.
func Divider() CommandOption {
	return CommandOption{Title: dividerTitle}
}

// IsDivider reports whether the option is a separator.
func (o CommandOption) IsDivider() bool {
	return o.Title == dividerTitle
}

// CommandHandle tracks a long-running command so a later command or
// Close can cancel it.
type CommandHandle struct {
	ctx    context.Context
	cancel context.CancelFunc
}

func newCommandHandle() *CommandHandle {
	ctx, cancel := context.WithCancel(context.Background())
	return &CommandHandle{ctx: ctx, cancel: cancel}
}

// Cancel stops the command. Safe to call more than once.
func (h *CommandHandle) Cancel() {
	if h != nil && h.cancel != nil {
		h.cancel()
	}
}

// Done exposes the cancellation signal.
func (h *CommandHandle) Done() <-chan struct{} {
	return h.ctx.Done()
}

// DefaultCommands is the built-in slash command table.
func DefaultCommands() []CommandOption {
	heading := func(level int) CommandOption {
		title := [...]string{"", "Heading 1", "Heading 2", "Heading 3"}[level]
		glyph := "H" + string(rune('0'+level))
		return CommandOption{
			Title: title,
			Glyph: glyph,
			Execute: func(e *Engine) *CommandHandle {
				e.toggleHeading(level)
				return nil
			},
		}
	}

	return []CommandOption{
		{
			Title: "Continue writing",
			Glyph: "✦",
			Execute: func(e *Engine) *CommandHandle {
				return e.continueWriting()
			},
		},
		Divider(),
		heading(1),
		heading(2),
		heading(3),
		Divider(),
		{
			Title: "Bulleted list",
			Glyph: "•",
			Execute: func(e *Engine) *CommandHandle {
				e.insertListMarker(ListUnordered)
				return nil
			},
		},
		{
			Title: "Numbered list",
			Glyph: "1.",
			Execute: func(e *Engine) *CommandHandle {
				e.insertListMarker(ListOrdered)
				return nil
			},
		},
		Divider(),
		{
			Title: "Quote",
			Glyph: "❝",
			Execute: func(e *Engine) *CommandHandle {
				e.insertLinePrefix("> ")
				return nil
			},
		},
		{
			Title: "Code block",
			Glyph: "{}",
			Execute: func(e *Engine) *CommandHandle {
				e.buf.InsertText("```\n\n```")
				cur := e.buf.Cursor()
				e.buf.SetCursor(document.Pos{Row: maxInt(cur.Row-1, 0)})
				return nil
			},
		},
	}
}

// insertListMarker adds a list marker at the start of the cursor line
// unless the line already is a list item.
func (e *Engine) insertListMarker(kind ListKind) {
	cursor := e.buf.Cursor()
	if _, ok := GetListInfo(e.buf, cursor); ok {
		e.toggleListKind(kind)
		return
	}
	marker := GenerateListItem(kind, 0, 1)
	e.buf.Patch(document.TextEdit{
		Range: document.Range{
			Start: document.Pos{Row: cursor.Row},
			End:   document.Pos{Row: cursor.Row},
		},
		Text: marker,
	})
	e.buf.SetCursor(document.Pos{Row: cursor.Row, Col: cursor.Col + len([]rune(marker))})
	e.scheduleRenumber()
}

// insertLinePrefix prepends a literal prefix to the cursor line.
func (e *Engine) insertLinePrefix(prefix string) {
	cursor := e.buf.Cursor()
	e.buf.Patch(document.TextEdit{
		Range: document.Range{
			Start: document.Pos{Row: cursor.Row},
			End:   document.Pos{Row: cursor.Row},
		},
		Text: prefix,
	})
	e.buf.SetCursor(document.Pos{Row: cursor.Row, Col: cursor.Col + len([]rune(prefix))})
}

// continueWriting streams generated text into the buffer at the cursor.
// The generator runs on its own goroutine; each chunk is marshalled back
// through the Dispatcher so buffer mutations stay on the host loop.
func (e *Engine) continueWriting() *CommandHandle {
	if e.cfg.Generate == nil {
		return nil
	}

	prompt := e.buf.Text()
	handle := newCommandHandle()
	gen := e.cfg.Generate
	dispatch := e.cfg.Dispatcher

	go func() {
		defer handle.Cancel()
		_ = gen(handle.ctx, prompt, func(text string) error {
			select {
			case <-handle.ctx.Done():
				return handle.ctx.Err()
			default:
			}
			dispatch.Dispatch(func() {
				e.buf.InsertText(text)
			})
			return nil
		})
	}()
	return handle
}

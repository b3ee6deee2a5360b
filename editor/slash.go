package editor

import (
	"strings"
	"unicode"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"

	"github.com/iw2rmb/moondown/document"
	"github.com/iw2rmb/moondown/internal/grapheme"
)

// SlashKeyMap defines the slash menu navigation bindings.
type SlashKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Accept key.Binding
	Cancel key.Binding
}

func DefaultSlashKeyMap() SlashKeyMap {
	return SlashKeyMap{
		Up:     key.NewBinding(key.WithKeys("up", "ctrl+p"), key.WithHelp("↑", "previous command")),
		Down:   key.NewBinding(key.WithKeys("down", "ctrl+n"), key.WithHelp("↓", "next command")),
		Accept: key.NewBinding(key.WithKeys("enter", "tab"), key.WithHelp("enter", "run command")),
		Cancel: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "dismiss")),
	}
}

func (km SlashKeyMap) isZero() bool {
	return len(km.Up.Keys()) == 0 && len(km.Down.Keys()) == 0 &&
		len(km.Accept.Keys()) == 0 && len(km.Cancel.Keys()) == 0
}

// SlashState is the slash menu controller state. TriggerPos is the
// position of the '/' itself; the filter is the text typed after it.
type SlashState struct {
	Active     bool
	Filter     string
	TriggerPos document.Pos
	Selected   int
}

// syncSlash re-derives the slash state from the cursor line. Called
// after every document or selection change while the engine is live.
func (e *Engine) syncSlash() {
	pos, filter, ok := e.detectSlashTrigger()
	if !ok {
		e.slashMutedSet = false
		if e.slash.Active {
			e.slash = SlashState{}
			e.slashView = ""
		}
		return
	}

	// An explicitly dismissed trigger stays dismissed until it goes
	// away or the cursor reaches a different slash.
	if e.slashMutedSet {
		if e.slashMuted == pos {
			return
		}
		e.slashMutedSet = false
	}

	wasActive := e.slash.Active && e.slash.TriggerPos == pos
	selected := 0
	if wasActive {
		// Keep the highlight across filter keystrokes.
		selected = e.slash.Selected
	}

	e.slash = SlashState{Active: true, Filter: filter, TriggerPos: pos, Selected: selected}
	e.normalizeSlashSelection(0)
	if !e.slash.Active {
		return
	}
	e.scheduleSlashRender()
}

// detectSlashTrigger finds a live slash trigger on the cursor line: the
// last '/' before the cursor followed only by word runes, where either
// the cursor sits at line end or everything before the slash is blank.
func (e *Engine) detectSlashTrigger() (document.Pos, string, bool) {
	cursor := e.buf.Cursor()
	line := lineRunes(e.buf, cursor.Row)
	if line == nil {
		return document.Pos{}, "", false
	}
	col := clampInt(cursor.Col, 0, len(line))

	slash := -1
	for i := col - 1; i >= 0; i-- {
		if line[i] == '/' {
			slash = i
			break
		}
		if !isWordRune(line[i]) {
			return document.Pos{}, "", false
		}
	}
	if slash < 0 {
		return document.Pos{}, "", false
	}

	atLineEnd := col == len(line)
	blankPrefix := isBlank(string(line[:slash]))
	if !atLineEnd && !blankPrefix {
		return document.Pos{}, "", false
	}

	return document.Pos{Row: cursor.Row, Col: slash}, string(line[slash+1 : col]), true
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

// filteredCommands returns the options whose titles match the current
// filter, case-insensitively. Dividers survive filtering but collapse
// when they would lead, trail, or double up.
func (e *Engine) filteredCommands() []CommandOption {
	filter := strings.ToLower(e.slash.Filter)
	var out []CommandOption
	for _, opt := range e.commands {
		if opt.IsDivider() {
			out = append(out, opt)
			continue
		}
		if filter == "" || strings.Contains(strings.ToLower(opt.Title), filter) {
			out = append(out, opt)
		}
	}
	return collapseDividers(out)
}

func collapseDividers(opts []CommandOption) []CommandOption {
	var out []CommandOption
	for _, opt := range opts {
		if opt.IsDivider() {
			if len(out) == 0 || out[len(out)-1].IsDivider() {
				continue
			}
		}
		out = append(out, opt)
	}
	for len(out) > 0 && out[len(out)-1].IsDivider() {
		out = out[:len(out)-1]
	}
	return out
}

// normalizeSlashSelection clamps Selected into range and skips dividers
// in the given direction (falling back to the other direction at the
// edges). Deactivates the menu when no selectable option remains.
func (e *Engine) normalizeSlashSelection(dir int) {
	opts := e.filteredCommands()
	if len(opts) == 0 {
		e.slash = SlashState{}
		e.slashView = ""
		return
	}

	i := clampInt(e.slash.Selected, 0, len(opts)-1)
	step := dir
	if step == 0 {
		step = 1
	}
	for n := 0; n < len(opts) && opts[i].IsDivider(); n++ {
		i += step
		if i < 0 || i >= len(opts) {
			step = -step
			i = clampInt(i, 0, len(opts)-1)
		}
	}
	if opts[i].IsDivider() {
		e.slash = SlashState{}
		e.slashView = ""
		return
	}
	e.slash.Selected = i
}

// handleSlashKey consumes navigation keys while the menu is active.
// Plain typing falls through to the host; syncSlash picks the new
// filter up from the resulting document change.
func (e *Engine) handleSlashKey(msg tea.KeyMsg) bool {
	km := e.cfg.SlashKeys
	if !e.slash.Active {
		// Esc still aborts a command that kept running after the menu
		// closed.
		if e.handle != nil && key.Matches(msg, km.Cancel) {
			e.handle.Cancel()
			e.handle = nil
			return true
		}
		return false
	}

	switch {
	case key.Matches(msg, km.Up):
		e.slash.Selected--
		if e.slash.Selected < 0 {
			e.slash.Selected = len(e.filteredCommands()) - 1
		}
		e.normalizeSlashSelection(-1)
		e.scheduleSlashRender()
		return true

	case key.Matches(msg, km.Down):
		opts := e.filteredCommands()
		e.slash.Selected++
		if e.slash.Selected >= len(opts) {
			e.slash.Selected = 0
		}
		e.normalizeSlashSelection(+1)
		e.scheduleSlashRender()
		return true

	case key.Matches(msg, km.Accept):
		e.acceptSlashCommand()
		return true

	case key.Matches(msg, km.Cancel):
		e.dismissSlash()
		return true
	}
	return false
}

// dismissSlash hides the menu, cancels any still-running command, and
// remembers the trigger so the very next sync does not reopen it.
func (e *Engine) dismissSlash() {
	if e.slash.Active {
		e.slashMuted = e.slash.TriggerPos
		e.slashMutedSet = true
	}
	if e.handle != nil {
		e.handle.Cancel()
		e.handle = nil
	}
	e.slash = SlashState{}
	e.slashView = ""
}

// acceptSlashCommand deletes the trigger text ("/" plus the filter) in
// one undoable transaction, then executes the selected option. A still
// running previous command is cancelled first.
func (e *Engine) acceptSlashCommand() {
	opts := e.filteredCommands()
	if len(opts) == 0 {
		e.slash = SlashState{}
		e.slashView = ""
		return
	}
	i := clampInt(e.slash.Selected, 0, len(opts)-1)
	opt := opts[i]
	if opt.IsDivider() || opt.Execute == nil {
		return
	}

	trigger := e.slash.TriggerPos
	cursor := e.buf.Cursor()
	e.slash = SlashState{}
	e.slashView = ""

	e.buf.Apply(document.TextEdit{
		Range: document.Range{Start: trigger, End: cursor},
	})

	if e.handle != nil {
		e.handle.Cancel()
	}
	e.handle = opt.Execute(e)
}

// scheduleSlashRender debounces menu re-rendering: rapid filter
// keystrokes coalesce into one render.
func (e *Engine) scheduleSlashRender() {
	e.slashDirty = true
	if e.slashRenderCancel != nil {
		e.slashRenderCancel()
	}
	e.slashRenderCancel = e.cfg.Scheduler.After(e.cfg.SlashRenderDelay, func() {
		e.slashRenderCancel = nil
		e.renderSlashMenu()
	})
}

// renderSlashMenu rebuilds the cached popup string.
func (e *Engine) renderSlashMenu() {
	e.slashDirty = false
	if !e.slash.Active {
		e.slashView = ""
		return
	}
	opts := e.filteredCommands()
	if len(opts) == 0 {
		e.slashView = ""
		return
	}

	width := e.cfg.MenuMaxWidth
	st := e.cfg.Style
	lines := make([]string, 0, len(opts))
	for i, opt := range opts {
		if opt.IsDivider() {
			lines = append(lines, st.SlashDivider.Render(strings.Repeat("─", width)))
			continue
		}
		label := opt.Title
		if opt.Glyph != "" {
			label = opt.Glyph + " " + label
		}
		label = truncate.StringWithTail(label, uint(width-2), "…")
		label += strings.Repeat(" ", maxInt(width-2-grapheme.Width(label), 0))
		if i == e.slash.Selected {
			lines = append(lines, st.SlashSelected.Render(label))
		} else {
			lines = append(lines, st.SlashItem.Render(label))
		}
	}
	e.slashView = lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// SlashMenuView returns the rendered slash menu and its screen anchor.
// ok is false when the menu is hidden. A dirty cache renders inline so
// callers never observe a stale frame.
func (e *Engine) SlashMenuView() (view string, x, y int, ok bool) {
	if !e.slash.Active {
		return "", 0, 0, false
	}
	if e.slashDirty || e.slashView == "" {
		e.renderSlashMenu()
	}
	if e.slashView == "" {
		return "", 0, 0, false
	}
	if e.cfg.Mapper != nil {
		sx, sy, mok := e.cfg.Mapper.DocToScreen(e.slash.TriggerPos)
		if mok {
			// One row below the trigger line.
			return e.slashView, sx, sy + 1, true
		}
	}
	return e.slashView, 0, 0, true
}

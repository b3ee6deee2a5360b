package editor

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/patrickmn/go-cache"

	"github.com/iw2rmb/moondown/document"
)

// Engine bundles the markdown extensions over one buffer: list
// renumbering, inline style toggles, the selection format menu, the
// slash command menu, and image widgets. It never renders the document
// itself; hosts pull Decorations and the menu views each frame.
type Engine struct {
	buf *document.Buffer
	cfg Config

	commands []CommandOption
	handle   *CommandHandle

	slash             SlashState
	slashView         string
	slashDirty        bool
	slashRenderCancel func()

	slashMuted    document.Pos
	slashMutedSet bool

	menu selectionMenuState

	widgets *cache.Cache

	drag            dragState
	dragTimerCancel func()
	dropRow         int
	dropActive      bool

	renumberCancel func()

	// lastChangeVersion is the VersionAfter of the last document change
	// the engine has processed. Cursor and selection moves bump the
	// buffer version too, so raw version comparison cannot tell a text
	// transaction apart.
	lastChangeVersion uint64
}

// New creates an engine over buf. The zero Config works; see Config for
// the defaults.
func New(buf *document.Buffer, cfg Config) *Engine {
	cfg = normalizeConfig(cfg)
	if cfg.Viewport == nil {
		cfg.Viewport = fullViewport{buf: buf}
	}
	e := &Engine{
		buf:      buf,
		cfg:      cfg,
		commands: append(DefaultCommands(), cfg.Commands...),
		widgets:  newWidgetCache(),
		menu:     selectionMenuState{openSub: -1},
	}
	e.lastChangeVersion = buf.Version()
	e.syncImageWidgets()
	return e
}

// Buffer returns the engine's document.
func (e *Engine) Buffer() *document.Buffer { return e.buf }

// Update feeds one host message through the extension layers. It
// returns true when a layer consumed the message; false means the host
// should apply its default editing behavior, after which it must call
// OnDocumentChanged.
func (e *Engine) Update(msg tea.Msg) bool {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if e.handleSlashKey(msg) {
			e.afterTransaction()
			return true
		}
		if e.handleImageAdjacency(msg) {
			e.afterTransaction()
			return true
		}
		if e.handleListKey(msg) {
			e.afterTransaction()
			return true
		}
		return false

	case tea.MouseMsg:
		return e.updateMouse(msg)
	}
	return false
}

func (e *Engine) updateMouse(msg tea.MouseMsg) bool {
	if e.cfg.Mapper == nil {
		return false
	}
	pos := document.ClampPos(e.cfg.Mapper.ScreenToDoc(msg.X, msg.Y), e.buf.LineCount(), e.buf.LineLen)

	switch msg.Action { //nolint:exhaustive
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return false
		}
		// Any press dismisses an open slash menu.
		e.dismissSlash()
		wasIdle := e.drag.phase == dragIdle
		e.pointerEvent(pointerEvent{Kind: pointerDown, Pos: pos})
		// A press on a token starts the drag machine and swallows the
		// event; anything else is the host's cursor placement.
		return wasIdle && e.drag.phase != dragIdle

	case tea.MouseActionMotion:
		if e.drag.phase == dragIdle {
			return false
		}
		e.pointerEvent(pointerEvent{Kind: pointerMove, Pos: pos})
		return true

	case tea.MouseActionRelease:
		if e.drag.phase != dragIdle {
			e.pointerEvent(pointerEvent{Kind: pointerUp, Pos: pos})
			e.afterTransaction()
			return true
		}
		// Pointer-up over a live selection raises the format menu.
		e.showSelectionMenu()
	}
	return false
}

// OnDocumentChanged must be called by the host after each transaction
// it applies itself (typing, deletion, paste). Engine-driven
// transactions handle this internally.
func (e *Engine) OnDocumentChanged(change document.Change) {
	if change.Source == document.ChangeSourceLocal {
		e.maybeScheduleRenumber(change)
	}
	e.syncImageWidgets()
	e.syncSlash()
	e.syncSelectionMenu()
	e.lastChangeVersion = change.VersionAfter
}

// OnSelectionChanged must be called by the host after cursor or
// selection movement that did not change the text.
func (e *Engine) OnSelectionChanged() {
	e.syncSlash()
	e.syncSelectionMenu()
}

// afterTransaction propagates an engine-driven transaction to the
// dependent layers.
func (e *Engine) afterTransaction() {
	if change, ok := e.buf.LastChange(); ok && change.VersionAfter > e.lastChangeVersion {
		e.OnDocumentChanged(change)
		return
	}
	e.OnSelectionChanged()
}

// MenuItems returns the selection menu table.
func (e *Engine) MenuItems() []MenuItem { return DefaultMenuItems() }

// RunMenuItem executes one selection menu item. Dropdown parents are
// expanded in place rather than executed.
func (e *Engine) RunMenuItem(item MenuItem) {
	e.runMenuItem(item)
	e.afterTransaction()
}

// SelectionMenuView renders the floating format menu. ok is false when
// no menu is visible.
func (e *Engine) SelectionMenuView() (view string, x, y int, ok bool) {
	if !e.menu.visible {
		return "", 0, 0, false
	}
	items := e.MenuItems()
	st := e.cfg.Style

	cells := make([]string, 0, len(items)*2)
	for i, item := range items {
		label := item.Glyph
		if label == "" {
			label = item.Name
		}
		active := item.IsActive != nil && item.IsActive(e)
		if len(item.SubItems) > 0 {
			active = e.menu.openSub == i
		}
		if active {
			cells = append(cells, st.MenuItemActive.Render(label))
		} else {
			cells = append(cells, st.MenuItem.Render(label))
		}
		if i < len(items)-1 {
			cells = append(cells, st.MenuDivider.Render("│"))
		}
	}
	view = lipgloss.JoinHorizontal(lipgloss.Top, cells...)

	if e.menu.openSub >= 0 && e.menu.openSub < len(items) {
		sub := items[e.menu.openSub].SubItems
		rows := make([]string, 0, len(sub))
		for _, item := range sub {
			label := item.Name
			if item.Glyph != "" {
				label = item.Glyph + " " + label
			}
			if item.IsActive != nil && item.IsActive(e) {
				rows = append(rows, st.MenuItemActive.Render(label))
			} else {
				rows = append(rows, st.MenuItem.Render(label))
			}
		}
		view = lipgloss.JoinVertical(lipgloss.Left, view, lipgloss.JoinVertical(lipgloss.Left, rows...))
	}

	return view, e.menu.x, e.menu.y, true
}

// ToggleSubMenu expands or collapses the dropdown at index i.
func (e *Engine) ToggleSubMenu(i int) {
	if !e.menu.visible {
		return
	}
	if e.menu.openSub == i {
		e.menu.openSub = -1
	} else {
		e.menu.openSub = i
	}
}

// visibleRows is the decoration window, clamped to the document.
func (e *Engine) visibleRows() (int, int) {
	start, end := e.cfg.Viewport.VisibleRows()
	start = clampInt(start, 0, e.buf.LineCount())
	end = clampInt(end, start, e.buf.LineCount())
	return start, end
}

// Close cancels every pending timer and running command. The engine
// must not be used afterwards.
func (e *Engine) Close() {
	if e.renumberCancel != nil {
		e.renumberCancel()
		e.renumberCancel = nil
	}
	if e.slashRenderCancel != nil {
		e.slashRenderCancel()
		e.slashRenderCancel = nil
	}
	if e.dragTimerCancel != nil {
		e.dragTimerCancel()
		e.dragTimerCancel = nil
	}
	if e.handle != nil {
		e.handle.Cancel()
		e.handle = nil
	}
}

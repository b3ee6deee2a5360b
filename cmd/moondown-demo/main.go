package main

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	overlay "github.com/rmhubbert/bubbletea-overlay"

	"github.com/iw2rmb/moondown/document"
	"github.com/iw2rmb/moondown/editor"
)

const sampleText = `# Moondown demo

Type to edit. "/" opens the command menu.
Select text with the mouse for the format menu.

1. first item
2. second item
  1. nested
- bullet one
- bullet two

![gopher](https://example.com/gopher.png)

ctrl+z undo, ctrl+y redo, ctrl+q quits.`

// applyMsg carries deferred engine work back onto the update loop.
type applyMsg struct {
	fn func()
}

// appScheduler defers callbacks through the program's message queue so
// they run on the update goroutine.
type appScheduler struct {
	send func(tea.Msg)
}

func (s appScheduler) After(d time.Duration, fn func()) (cancel func()) {
	t := time.AfterFunc(d, func() { s.send(applyMsg{fn: fn}) })
	return func() { t.Stop() }
}

type appDispatcher struct {
	send func(tea.Msg)
}

func (d appDispatcher) Dispatch(fn func()) { d.send(applyMsg{fn: fn}) }

// docMapper maps between document positions and screen cells for an
// unwrapped, unscrolled-x layout.
type docMapper struct {
	yOffset *int
	height  *int
}

func (m docMapper) DocToScreen(pos document.Pos) (int, int, bool) {
	y := pos.Row - *m.yOffset
	if y < 0 || y >= *m.height {
		return 0, 0, false
	}
	return pos.Col, y, true
}

func (m docMapper) ScreenToDoc(x, y int) document.Pos {
	return document.Pos{Row: y + *m.yOffset, Col: x}
}

type docViewport struct {
	yOffset *int
	height  *int
}

func (v docViewport) VisibleRows() (int, int) {
	return *v.yOffset, *v.yOffset + *v.height
}

// fakeLoader measures every image as a fixed-size placeholder after a
// short delay.
type fakeLoader struct{}

func (l fakeLoader) Load(src string, done func(editor.ImageInfo, error)) {
	go func() {
		time.Sleep(150 * time.Millisecond)
		done(editor.ImageInfo{WidthCells: 24, HeightLines: 6}, nil)
	}()
}

// fakeGenerate streams a canned continuation one word at a time.
func fakeGenerate(ctx context.Context, prompt string, emit func(string) error) error {
	words := strings.Fields("The moon rose slowly over the quiet harbor and the boats swayed in the dark.")
	for _, w := range words {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(60 * time.Millisecond):
		}
		if err := emit(w + " "); err != nil {
			return err
		}
	}
	return nil
}

type model struct {
	buf     *document.Buffer
	eng     *editor.Engine
	vp      viewport.Model
	yOffset int
	height  int
	version uint64

	mouseAnchor   document.Pos
	mouseDragging bool
}

func newModel(send func(tea.Msg)) *model {
	m := &model{
		buf:    document.New(sampleText, document.Options{}),
		vp:     viewport.New(80, 24),
		height: 24,
	}
	m.eng = editor.New(m.buf, editor.Config{
		Mapper:     docMapper{yOffset: &m.yOffset, height: &m.height},
		Viewport:   docViewport{yOffset: &m.yOffset, height: &m.height},
		Scheduler:  appScheduler{send: send},
		Dispatcher: appDispatcher{send: send},
		Images:     fakeLoader{},
		Generate:   fakeGenerate,
	})
	m.version = m.buf.Version()
	return m
}

func (m *model) Init() tea.Cmd { return nil }

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.vp.Width = msg.Width
		m.vp.Height = msg.Height - 1
		m.height = m.vp.Height
		return m, nil

	case applyMsg:
		msg.fn()
		m.syncEngine()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+q", "ctrl+c":
			return m, tea.Quit
		case "ctrl+z":
			m.buf.Undo()
			m.syncEngine()
			return m, nil
		case "ctrl+y":
			m.buf.Redo()
			m.syncEngine()
			return m, nil
		}
		if m.eng.Update(msg) {
			return m, nil
		}
		handleKey(m.buf, msg)
		m.syncEngine()
		return m, nil

	case tea.MouseMsg:
		if m.eng.Update(msg) {
			return m, nil
		}
		switch msg.Action {
		case tea.MouseActionPress:
			if msg.Button != tea.MouseButtonLeft {
				break
			}
			p := document.Pos{Row: msg.Y + m.yOffset, Col: msg.X}
			m.buf.ClearSelection()
			m.buf.SetCursor(p)
			m.mouseAnchor = p
			m.mouseDragging = true
			m.eng.OnSelectionChanged()
			return m, nil
		case tea.MouseActionMotion:
			if !m.mouseDragging {
				break
			}
			p := document.Pos{Row: msg.Y + m.yOffset, Col: msg.X}
			m.buf.SetCursor(p)
			m.buf.SetSelection(document.Range{Start: m.mouseAnchor, End: p})
			m.eng.OnSelectionChanged()
			return m, nil
		case tea.MouseActionRelease:
			m.mouseDragging = false
			return m, nil
		}
		var cmd tea.Cmd
		m.vp, cmd = m.vp.Update(msg)
		m.yOffset = m.vp.YOffset
		return m, cmd
	}
	return m, nil
}

// syncEngine tells the engine what just happened to the buffer. Cursor
// moves bump the version too, so document changes are detected by the
// version the last change committed.
func (m *model) syncEngine() {
	if change, ok := m.buf.LastChange(); ok && change.VersionAfter > m.version {
		m.version = change.VersionAfter
		m.eng.OnDocumentChanged(change)
		return
	}
	m.eng.OnSelectionChanged()
}

func handleKey(b *document.Buffer, msg tea.KeyMsg) {
	cur := b.Cursor()
	switch msg.String() {
	case "left":
		b.SetCursor(document.Pos{Row: cur.Row, Col: cur.Col - 1})
	case "right":
		b.SetCursor(document.Pos{Row: cur.Row, Col: cur.Col + 1})
	case "up":
		b.SetCursor(document.Pos{Row: cur.Row - 1, Col: cur.Col})
	case "down":
		b.SetCursor(document.Pos{Row: cur.Row + 1, Col: cur.Col})
	case "home":
		b.SetCursor(document.Pos{Row: cur.Row})
	case "end":
		b.SetCursor(document.Pos{Row: cur.Row, Col: b.LineLen(cur.Row)})
	case "backspace":
		b.DeleteBackward()
	case "delete":
		b.DeleteForward()
	case "enter":
		b.InsertText("\n")
	case "tab":
		b.InsertText("\t")
	default:
		if len(msg.Runes) > 0 {
			b.InsertText(string(msg.Runes))
		}
	}
}

var decorationStyles = map[string]lipgloss.Style{
	"bullet":         lipgloss.NewStyle().Foreground(lipgloss.Color("111")),
	"image":          lipgloss.NewStyle().Foreground(lipgloss.Color("150")),
	"image-error":    lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
	"image-dragging": lipgloss.NewStyle().Faint(true),
}

func (m *model) View() string {
	base := m.renderDocument()
	m.vp.SetContent(base)
	view := m.vp.View()

	if menu, x, y, ok := m.eng.SelectionMenuView(); ok {
		view = overlay.Composite(menu, view, overlay.Left, overlay.Top, x, y)
	}
	if menu, x, y, ok := m.eng.SlashMenuView(); ok {
		view = overlay.Composite(menu, view, overlay.Left, overlay.Top, x, y)
	}

	status := "moondown demo  |  / commands  |  ctrl+q quit"
	return view + "\n" + lipgloss.NewStyle().Faint(true).Render(status)
}

// renderDocument paints each line with its decorations applied right to
// left so earlier columns stay valid.
func (m *model) renderDocument() string {
	reps := m.eng.Decorations()
	byRow := make(map[int][]editor.Replacement)
	for _, rep := range reps {
		byRow[rep.Row] = append(byRow[rep.Row], rep)
	}

	dropRow, dropActive := m.eng.DropPlaceholder()

	var sb strings.Builder
	for row := 0; row < m.buf.LineCount(); row++ {
		line, _ := m.buf.Line(row)
		runes := []rune(line)
		rowReps := byRow[row]
		out := ""
		col := 0
		for _, rep := range rowReps {
			if rep.StartCol > col {
				out += string(runes[col:rep.StartCol])
			}
			st, ok := decorationStyles[rep.StyleKey]
			if !ok {
				st = lipgloss.NewStyle()
			}
			out += st.Render(rep.Text)
			col = rep.EndCol
		}
		if col < len(runes) {
			out += string(runes[col:])
		}
		if dropActive && row == dropRow {
			out += lipgloss.NewStyle().Faint(true).Render(" ◄ drop here")
		}
		sb.WriteString(out)
		if row < m.buf.LineCount()-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func main() {
	lipgloss.SetColorProfile(termenv.ColorProfile())

	var p *tea.Program
	m := newModel(func(msg tea.Msg) { p.Send(msg) })
	p = tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion())
	if _, err := p.Run(); err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

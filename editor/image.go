package editor

import (
	"encoding/base64"
	"fmt"
	"mime"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/patrickmn/go-cache"

	"github.com/iw2rmb/moondown/document"
)

// imageTokenRE matches one markdown image token. Alt and src never
// contain their closing bracket, so the match is non-greedy by
// construction.
var imageTokenRE = regexp.MustCompile(`!\[([^\]]*)\]\(([^)]*)\)`)

type widgetState uint8

const (
	widgetLoading widgetState = iota
	widgetReady
	widgetErrored
)

// imageWidget is the cached per-token record. Identity is src+alt, so
// moving a token reuses the widget instead of reloading the image.
type imageWidget struct {
	Src   string
	Alt   string
	Range document.Range

	State    widgetState
	Info     ImageInfo
	measured bool
	loading  bool
}

func widgetKey(src, alt string) string { return src + "|" + alt }

func newWidgetCache() *cache.Cache {
	// Eviction is rule based (token gone from the document), never
	// time based.
	return cache.New(cache.NoExpiration, 0)
}

// imageToken is one token occurrence found by a document scan.
type imageToken struct {
	Alt   string
	Src   string
	Range document.Range
}

// scanImageTokens finds every image token in the given row span
// (end-exclusive, clamped to the document).
func scanImageTokens(buf *document.Buffer, startRow, endRow int) []imageToken {
	var tokens []imageToken
	startRow = maxInt(startRow, 0)
	endRow = minInt(endRow, buf.LineCount())
	for row := startRow; row < endRow; row++ {
		line, _ := buf.Line(row)
		for _, m := range imageTokenRE.FindAllStringSubmatchIndex(line, -1) {
			// Regexp indices are byte offsets; convert to rune columns.
			start := len([]rune(line[:m[0]]))
			end := len([]rune(line[:m[1]]))
			tokens = append(tokens, imageToken{
				Alt: line[m[2]:m[3]],
				Src: line[m[4]:m[5]],
				Range: document.Range{
					Start: document.Pos{Row: row, Col: start},
					End:   document.Pos{Row: row, Col: end},
				},
			})
		}
	}
	return tokens
}

// isImageToken reports whether text is exactly one image token.
func isImageToken(text string) bool {
	loc := imageTokenRE.FindStringIndex(text)
	return loc != nil && loc[0] == 0 && loc[1] == len(text)
}

// imageTokenAt returns the token covering pos, if any.
func imageTokenAt(buf *document.Buffer, pos document.Pos) (imageToken, bool) {
	for _, tok := range scanImageTokens(buf, pos.Row, pos.Row+1) {
		if tok.Range.Contains(pos) {
			return tok, true
		}
	}
	return imageToken{}, false
}

// syncImageWidgets reconciles the widget cache against the document:
// new tokens get widgets and start loading, moved tokens get their
// tracked range updated, and widgets whose source vanished from the
// tracked text are evicted.
func (e *Engine) syncImageWidgets() {
	tokens := scanImageTokens(e.buf, 0, e.buf.LineCount())

	seen := make(map[string]bool, len(tokens))
	for _, tok := range tokens {
		k := widgetKey(tok.Src, tok.Alt)
		if seen[k] {
			continue
		}
		seen[k] = true

		if v, ok := e.widgets.Get(k); ok {
			w := v.(*imageWidget)
			w.Range = tok.Range
			continue
		}
		w := &imageWidget{Src: tok.Src, Alt: tok.Alt, Range: tok.Range}
		e.widgets.Set(k, w, cache.NoExpiration)
		e.loadWidget(w)
	}

	for k, item := range e.widgets.Items() {
		if seen[k] {
			continue
		}
		w := item.Object.(*imageWidget)
		// Keep the widget while its source text still exists inside the
		// tracked range; partial edits around the token must not drop a
		// loaded image.
		r := document.ClampRange(w.Range, e.buf.LineCount(), e.buf.LineLen)
		if strings.Contains(e.buf.TextInRange(r), w.Src) {
			continue
		}
		e.widgets.Delete(k)
	}
}

// loadWidget starts the asynchronous measure; the loader's completion
// is re-serialized onto the host loop through the Dispatcher.
func (e *Engine) loadWidget(w *imageWidget) {
	if e.cfg.Images == nil || w.loading || w.State == widgetReady {
		return
	}
	w.loading = true
	dispatch := e.cfg.Dispatcher
	src, alt := w.Src, w.Alt

	e.cfg.Images.Load(src, func(info ImageInfo, err error) {
		dispatch.Dispatch(func() {
			w.loading = false
			if err != nil {
				w.State = widgetErrored
				return
			}
			w.State = widgetReady
			w.Info = info
			if !w.measured && e.cfg.OnImageMeasured != nil {
				w.measured = true
				e.cfg.OnImageMeasured(src, alt, info)
			}
		})
	})
}

// imageDecorations replaces every visible image token with its widget
// placeholder. Loading and errored widgets get distinct texts; the
// widget being dragged renders faint.
func (e *Engine) imageDecorations() []Replacement {
	start, end := e.visibleRows()
	var reps []Replacement
	for _, tok := range scanImageTokens(e.buf, start, end) {
		text, styleKey := e.widgetPlaceholder(tok)
		reps = append(reps, Replacement{
			Row:      tok.Range.Start.Row,
			StartCol: tok.Range.Start.Col,
			EndCol:   tok.Range.End.Col,
			Text:     text,
			StyleKey: styleKey,
		})
	}
	return reps
}

func (e *Engine) widgetPlaceholder(tok imageToken) (string, string) {
	label := tok.Alt
	if label == "" {
		label = "image"
	}

	styleKey := "image"
	text := "🖼 " + label
	if v, ok := e.widgets.Get(widgetKey(tok.Src, tok.Alt)); ok {
		w := v.(*imageWidget)
		switch w.State {
		case widgetLoading:
			text = "⏳ " + label
		case widgetErrored:
			text = "⚠ " + label
			styleKey = "image-error"
		case widgetReady:
			text = fmt.Sprintf("🖼 %s (%d×%d)", label, w.Info.WidthCells, w.Info.HeightLines)
		}
	}
	if e.drag.phase == dragActive && e.drag.token.Range == tok.Range {
		styleKey = "image-dragging"
	}
	return text, styleKey
}

// handleImageAdjacency intercepts Backspace/Delete when the deletion
// would bite into an image token: the first press selects the whole
// token instead of deleting a character, so a second press removes it
// atomically.
func (e *Engine) handleImageAdjacency(msg tea.KeyMsg) bool {
	cursor := e.buf.Cursor()
	if _, hasSel := e.buf.Selection(); hasSel {
		return false
	}

	var probe document.Pos
	switch {
	case key.Matches(msg, e.cfg.ListKeys.Backspace):
		if cursor.Col == 0 {
			return false
		}
		probe = document.Pos{Row: cursor.Row, Col: cursor.Col - 1}
	case key.Matches(msg, e.cfg.ListKeys.Delete):
		probe = cursor
	default:
		return false
	}

	tok, ok := imageTokenAt(e.buf, probe)
	if !ok {
		return false
	}
	e.buf.SetSelection(tok.Range)
	return true
}

// IngestFile reads a pasted or dropped file through the configured
// FileReader and inserts it at the cursor as an inline data URL image
// token. The read is asynchronous; the insertion happens on the host
// loop once the data arrives.
func (e *Engine) IngestFile(name string) error {
	if e.cfg.Files == nil {
		return fmt.Errorf("no file reader configured")
	}
	dispatch := e.cfg.Dispatcher

	e.cfg.Files.Read(name, func(data []byte, mimeType string, err error) {
		dispatch.Dispatch(func() {
			if err != nil {
				return
			}
			ext := filepath.Ext(name)
			if mimeType == "" {
				mimeType = mime.TypeByExtension(ext)
			}
			if mimeType == "" {
				mimeType = "application/octet-stream"
			}
			alt := strings.TrimSuffix(filepath.Base(name), ext)
			src := "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
			e.buf.InsertText(fmt.Sprintf("![%s](%s)", alt, src))
			e.syncImageWidgets()
		})
	})
	return nil
}

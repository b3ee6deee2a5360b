package editor

import (
	"context"
	"time"

	"github.com/iw2rmb/moondown/document"
)

// PositionMapper translates between document positions and host screen
// cells. The host editor owns layout; ok is false when a position falls
// outside the visible region.
type PositionMapper interface {
	DocToScreen(pos document.Pos) (x, y int, ok bool)
	ScreenToDoc(x, y int) document.Pos
}

// Viewport reports the visible row window so decoration passes can skip
// off-screen work. end is exclusive.
type Viewport interface {
	VisibleRows() (start, end int)
}

// Scheduler defers work until after the triggering transaction has
// settled. The returned cancel func is always non-nil and safe to call
// more than once. Hosts should run fn on the goroutine that drives the
// engine.
type Scheduler interface {
	After(d time.Duration, fn func()) (cancel func())
}

// Dispatcher serializes asynchronous completions (image loads, file
// reads, streamed generation) back onto the host update loop.
type Dispatcher interface {
	Dispatch(fn func())
}

// ImageInfo is the measured size of a loaded image in editor units.
type ImageInfo struct {
	WidthCells  int
	HeightLines int
}

// ImageLoader resolves image sources asynchronously. done is invoked
// exactly once, from any goroutine; the engine re-serializes it through
// its Dispatcher.
type ImageLoader interface {
	Load(src string, done func(info ImageInfo, err error))
}

// FileReader reads a pasted or dropped file asynchronously. done is
// invoked exactly once, from any goroutine.
type FileReader interface {
	Read(name string, done func(data []byte, mime string, err error))
}

// Generator streams generated text for AI-backed slash commands. It
// must honor ctx cancellation and call emit for each chunk; returning
// emit's error aborts the stream.
type Generator func(ctx context.Context, prompt string, emit func(text string) error) error

// timeScheduler is the default Scheduler. Callbacks fire on a timer
// goroutine; hosts that need single-threaded delivery wrap their update
// loop instead.
type timeScheduler struct{}

func (timeScheduler) After(d time.Duration, fn func()) (cancel func()) {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}

// inlineDispatcher runs fn immediately on the calling goroutine.
type inlineDispatcher struct{}

func (inlineDispatcher) Dispatch(fn func()) { fn() }

// fullViewport covers every row; used when the host supplies no
// Viewport.
type fullViewport struct {
	buf *document.Buffer
}

func (v fullViewport) VisibleRows() (int, int) {
	if v.buf == nil {
		return 0, 0
	}
	return 0, v.buf.LineCount()
}

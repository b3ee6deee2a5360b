package editor

import (
	"time"

	"github.com/iw2rmb/moondown/document"
)

// stubScheduler records deferred work so tests control when timers
// fire.
type stubScheduler struct {
	fns       []func()
	cancelled []bool
}

func (s *stubScheduler) After(d time.Duration, fn func()) (cancel func()) {
	i := len(s.fns)
	s.fns = append(s.fns, fn)
	s.cancelled = append(s.cancelled, false)
	return func() { s.cancelled[i] = true }
}

// Fire runs the i-th scheduled callback unless it was cancelled.
func (s *stubScheduler) Fire(i int) {
	if i < len(s.fns) && !s.cancelled[i] {
		fn := s.fns[i]
		s.cancelled[i] = true
		fn()
	}
}

// FireAll drains every pending callback, including ones scheduled while
// draining.
func (s *stubScheduler) FireAll() {
	for i := 0; i < len(s.fns); i++ {
		s.Fire(i)
	}
}

func (s *stubScheduler) pending() int {
	n := 0
	for i := range s.fns {
		if !s.cancelled[i] {
			n++
		}
	}
	return n
}

// stubMapper maps document positions one-to-one onto screen cells.
type stubMapper struct{}

func (stubMapper) DocToScreen(pos document.Pos) (int, int, bool) { return pos.Col, pos.Row, true }
func (stubMapper) ScreenToDoc(x, y int) document.Pos             { return document.Pos{Row: y, Col: x} }

// stubLoader resolves images synchronously from a fixture map.
type stubLoader struct {
	infos map[string]ImageInfo
	errs  map[string]error
	loads []string
}

func (l *stubLoader) Load(src string, done func(ImageInfo, error)) {
	l.loads = append(l.loads, src)
	if err, ok := l.errs[src]; ok {
		done(ImageInfo{}, err)
		return
	}
	done(l.infos[src], nil)
}

// stubReader serves file contents synchronously.
type stubReader struct {
	data map[string][]byte
	mime map[string]string
	err  error
}

func (r *stubReader) Read(name string, done func([]byte, string, error)) {
	if r.err != nil {
		done(nil, "", r.err)
		return
	}
	done(r.data[name], r.mime[name], nil)
}

func newTestEngine(text string, mutate ...func(*Config)) (*Engine, *document.Buffer, *stubScheduler) {
	buf := document.New(text, document.Options{})
	sched := &stubScheduler{}
	cfg := Config{
		Mapper:    stubMapper{},
		Scheduler: sched,
	}
	for _, fn := range mutate {
		fn(&cfg)
	}
	return New(buf, cfg), buf, sched
}

// typeText inserts text at the cursor the way a host would: one
// transaction followed by the change notification.
func typeText(e *Engine, buf *document.Buffer, text string) {
	buf.InsertText(text)
	if change, ok := buf.LastChange(); ok {
		e.OnDocumentChanged(change)
	}
}

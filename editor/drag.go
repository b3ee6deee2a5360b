package editor

import (
	"github.com/iw2rmb/moondown/document"
)

// Image drag runs through a pure state machine so the press-hold-move
// sequencing can be tested without a terminal. The engine feeds it
// pointer events and executes the effects it returns.

type dragPhase uint8

const (
	dragIdle dragPhase = iota
	// dragPending is a press on a token that has not yet been promoted
	// to a drag. A release here is a click (select the token).
	dragPending
	dragActive
)

type pointerKind uint8

const (
	pointerDown pointerKind = iota
	pointerMove
	pointerUp
	dragTimerFired
)

type pointerEvent struct {
	Kind pointerKind
	Pos  document.Pos
}

type dragState struct {
	phase     dragPhase
	token     imageToken
	targetRow int
}

// dragEffects are the side effects one step requests. The machine never
// touches the buffer or the scheduler itself.
type dragEffects struct {
	StartTimer       bool
	CancelTimer      bool
	SelectToken      bool
	ShowPlaceholder  bool
	Drop             bool
	ClearPlaceholder bool
}

// stepDrag advances the machine by one pointer event. tokenAt resolves
// whether a document position lies on an image token.
func stepDrag(s dragState, ev pointerEvent, tokenAt func(document.Pos) (imageToken, bool)) (dragState, dragEffects) {
	var fx dragEffects

	switch s.phase {
	case dragIdle:
		if ev.Kind == pointerDown {
			if tok, ok := tokenAt(ev.Pos); ok {
				fx.StartTimer = true
				return dragState{phase: dragPending, token: tok, targetRow: tok.Range.Start.Row}, fx
			}
		}

	case dragPending:
		switch ev.Kind {
		case dragTimerFired:
			fx.ShowPlaceholder = true
			s.phase = dragActive
			return s, fx
		case pointerUp:
			// A release before promotion is a click.
			fx.CancelTimer = true
			fx.SelectToken = true
			return dragState{}, fx
		case pointerMove:
			return s, fx
		case pointerDown:
			fx.CancelTimer = true
			return dragState{}, fx
		}

	case dragActive:
		switch ev.Kind {
		case pointerMove:
			s.targetRow = ev.Pos.Row
			fx.ShowPlaceholder = true
			return s, fx
		case pointerUp:
			s.targetRow = ev.Pos.Row
			fx.Drop = true
			fx.ClearPlaceholder = true
			return dragState{phase: dragIdle, token: s.token, targetRow: s.targetRow}, fx
		}
	}
	return s, fx
}

// applyDragEffects runs the requested side effects against the engine.
func (e *Engine) applyDragEffects(prev dragState, fx dragEffects) {
	if fx.CancelTimer && e.dragTimerCancel != nil {
		e.dragTimerCancel()
		e.dragTimerCancel = nil
	}
	if fx.StartTimer {
		e.dragTimerCancel = e.cfg.Scheduler.After(e.cfg.DragPromoteDelay, func() {
			e.dragTimerCancel = nil
			e.pointerEvent(pointerEvent{Kind: dragTimerFired})
		})
	}
	if fx.SelectToken {
		// A click selects the token without any text transaction.
		e.buf.SetSelection(prev.token.Range)
	}
	if fx.ShowPlaceholder {
		e.dropRow = e.drag.targetRow
		e.dropActive = true
	}
	if fx.ClearPlaceholder {
		e.dropActive = false
	}
	if fx.Drop {
		e.dropImageToken(e.drag.token, e.drag.targetRow)
		e.drag = dragState{}
	}
}

// pointerEvent feeds one event through the drag machine.
func (e *Engine) pointerEvent(ev pointerEvent) {
	prev := e.drag
	next, fx := stepDrag(e.drag, ev, func(p document.Pos) (imageToken, bool) {
		return imageTokenAt(e.buf, p)
	})
	e.drag = next
	e.applyDragEffects(prev, fx)
}

// dropImageToken moves the token to the end of the target row in a
// single undoable transaction: delete the original token, then append
// it to the target line. Same-row drops are no-ops.
func (e *Engine) dropImageToken(tok imageToken, targetRow int) {
	if targetRow == tok.Range.Start.Row {
		return
	}
	targetRow = clampInt(targetRow, 0, e.buf.LineCount()-1)
	if targetRow == tok.Range.Start.Row {
		return
	}

	tokenText := e.buf.TextInRange(tok.Range)
	if tokenText == "" {
		return
	}

	// The token is single-line, so deleting it never shifts other rows.
	targetLen := e.buf.LineLen(targetRow)
	insert := tokenText
	if targetLen > 0 {
		insert = "\n" + tokenText
	}
	e.buf.Apply(
		document.TextEdit{Range: tok.Range},
		document.TextEdit{
			Range: document.Range{
				Start: document.Pos{Row: targetRow, Col: targetLen},
				End:   document.Pos{Row: targetRow, Col: targetLen},
			},
			Text: insert,
		},
	)
}

// DropPlaceholder reports the row the dragged image would land on.
func (e *Engine) DropPlaceholder() (row int, ok bool) {
	if !e.dropActive {
		return 0, false
	}
	return e.dropRow, true
}

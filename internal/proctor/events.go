package proctor

import (
	"context"
	"time"
)

// ActivityKind classifies user activity that resets the idle timer.
type ActivityKind string

const (
	ActivityPointer ActivityKind = "pointer"
	ActivityKey     ActivityKind = "key"
	ActivityScroll  ActivityKind = "scroll"
	ActivityTouch   ActivityKind = "touch"
	ActivityClick   ActivityKind = "click"
)

// WindowMetrics is a snapshot of window geometry used by devtools detection.
type WindowMetrics struct {
	OuterWidth  int
	OuterHeight int
	InnerWidth  int
	InnerHeight int
}

// InputAction is a user input the blocker may suppress.
type InputAction string

const (
	InputContextMenu      InputAction = "context_menu"
	InputCopy             InputAction = "copy"
	InputCut              InputAction = "cut"
	InputPaste            InputAction = "paste"
	InputSelectAll        InputAction = "select_all"
	InputShortcutDevtools InputAction = "shortcut_devtools"
	InputShortcutPrint    InputAction = "shortcut_print"
	InputShortcutSave     InputAction = "shortcut_save"
	InputTextSelect       InputAction = "text_select"
)

// InputTarget is where an input action originated.
type InputTarget string

const (
	TargetAnswerField  InputTarget = "answer_field"
	TargetInputControl InputTarget = "input_control"
	TargetPage         InputTarget = "page"
)

// EventSource is the platform event feed the integrity monitors subscribe
// to. A browser-embedding shell forwards the real DOM events; tests
// synthesize them. Each On* call returns a cancel func that removes the
// subscription.
type EventSource interface {
	OnFullscreenChange(fn func(active bool)) (cancel func())
	OnVisibilityChange(fn func(hidden bool)) (cancel func())
	OnResize(fn func(WindowMetrics)) (cancel func())
	OnActivity(fn func(ActivityKind)) (cancel func())
}

// Platform exposes the window actions the engine needs from its shell.
type Platform interface {
	// RequestFullscreen asks the shell to enter fullscreen. Best-effort:
	// shells may refuse outside a user gesture.
	RequestFullscreen() error
	// CloseWindow asks the shell to close the browsing context. Shells
	// that cannot (browsers block programmatic close) return an error and
	// the sink's completion view stays up instead.
	CloseWindow() error
}

// NopPlatform is a Platform for shells without window control.
type NopPlatform struct{}

func (NopPlatform) RequestFullscreen() error { return nil }
func (NopPlatform) CloseWindow() error       { return ErrCloseUnsupported }

// Runner binds an Engine to an EventSource and drives the 1-second tick.
// Cancelling the context tears every subscription and timer down so no
// callback can touch a discarded session.
type Runner struct {
	eng      *Engine
	src      EventSource
	interval time.Duration
}

// NewRunner creates a Runner with the production 1s tick interval.
func NewRunner(eng *Engine, src EventSource) *Runner {
	return &Runner{eng: eng, src: src, interval: time.Second}
}

// Run arms the engine and blocks until ctx is cancelled.
func (r *Runner) Run(ctx context.Context) {
	cancels := []func(){
		r.src.OnFullscreenChange(r.eng.FullscreenChanged),
		r.src.OnVisibilityChange(r.eng.VisibilityChanged),
		r.src.OnResize(r.eng.WindowResized),
		r.src.OnActivity(r.eng.ActivityObserved),
	}
	defer func() {
		for _, cancel := range cancels {
			cancel()
		}
	}()

	r.eng.Start()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.eng.Tick()
		}
	}
}

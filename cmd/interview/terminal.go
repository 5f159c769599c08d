package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/talentsift/interview-client/internal/model"
	"github.com/talentsift/interview-client/internal/proctor"
)

// terminalSink renders engine output as plain terminal lines. Warnings are
// printed and never retracted — a scrollback cannot clear a banner.
type terminalSink struct {
	out  io.Writer
	done chan proctor.Outcome
}

func newTerminalSink(out io.Writer) *terminalSink {
	return &terminalSink{out: out, done: make(chan proctor.Outcome, 1)}
}

func (s *terminalSink) ShowWarning(w proctor.Warning) {
	fmt.Fprintf(s.out, "\n⚠  %s (%d/%d strikes)\n", w.Message, w.Violations, proctor.DefaultViolationCeiling)
}

func (s *terminalSink) ClearWarning(proctor.WarningKind) {}

func (s *terminalSink) QuestionChanged(index int, q model.Question, draft string) {
	fmt.Fprintf(s.out, "\n── Question %d ─ %s / %s ──\n%s\n", index+1, q.Category, q.Difficulty, q.Question)
	if strings.TrimSpace(draft) != "" {
		fmt.Fprintf(s.out, "(previously answered: %q)\n", draft)
	}
	fmt.Fprint(s.out, "> ")
}

func (s *terminalSink) SessionEnded(o proctor.Outcome) {
	select {
	case s.done <- o:
	default:
	}
}

// noopSource is the EventSource of a plain terminal: there is no
// fullscreen, visibility, or window geometry to observe. Activity is fed
// straight to the engine by the input loop instead.
type noopSource struct{}

func (noopSource) OnFullscreenChange(func(bool)) func()         { return func() {} }
func (noopSource) OnVisibilityChange(func(bool)) func()         { return func() {} }
func (noopSource) OnResize(func(proctor.WindowMetrics)) func()  { return func() {} }
func (noopSource) OnActivity(func(proctor.ActivityKind)) func() { return func() {} }

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/talentsift/interview-client/internal/api"
	"github.com/talentsift/interview-client/internal/authstore"
	"github.com/talentsift/interview-client/internal/config"
	"github.com/talentsift/interview-client/internal/fingerprint"
	"github.com/talentsift/interview-client/internal/logger"
	"github.com/talentsift/interview-client/internal/proctor"
)

var startCmd = &cobra.Command{
	Use:   "start <interview-id>",
	Short: "Take a proctored interview session",
	Long: "Runs the timed interview in the terminal. Answers are one line each; " +
		"commands: :goto N, :prev, :status, :retry, :quit.",
	Args: cobra.ExactArgs(1),
	RunE: runStart,
}

func runStart(cmd *cobra.Command, args []string) error {
	// ─── Configuration & logging ───────────────────────────────────────
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	interviewID := args[0]

	// ─── Authorization gate ────────────────────────────────────────────
	store := authstore.New(cfg.AuthDir, log)
	record, err := store.Verify(interviewID)
	if err != nil {
		if errors.Is(err, authstore.ErrNotAuthorized) || errors.Is(err, authstore.ErrExpired) {
			return fmt.Errorf("no valid authorization for this interview — run: interview login %s", interviewID)
		}
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ─── Bootstrap ─────────────────────────────────────────────────────
	backend := api.NewClient(cfg.APIBaseURL, cfg.HTTPTimeout, log).Interview(interviewID)
	sess, err := proctor.Bootstrap(ctx, backend, interviewID)
	if err != nil {
		// Terminal error state: no monitors start.
		return fmt.Errorf("could not load the interview: %w", err)
	}

	// ─── Session wiring ────────────────────────────────────────────────
	fp := fingerprint.HostProber{AppVersion: version}.Probe()
	audit := proctor.NewAuditTrail(backend, fp, log)
	sink := newTerminalSink(os.Stdout)

	eng := proctor.NewEngine(sess, backend, audit, proctor.NopPlatform{}, sink, proctor.Config{
		// No window chrome to measure in a terminal.
		Detector: proctor.DisabledDetector{},
	}, log)
	defer eng.Stop()

	runCtx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()
	go proctor.NewRunner(eng, noopSource{}).Run(runCtx)

	snap := eng.Snapshot()
	fmt.Printf("Interview: %s — %d questions, %d minutes. Signed in as %s.\n",
		snap.JobTitle, snap.QuestionCount, sess.DurationMinutes, record.Email)

	idx, q, draft := eng.CurrentQuestion()
	sink.QuestionChanged(idx, q, draft)

	return inputLoop(ctx, eng, sink)
}

// inputLoop reads answers and commands until the session ends. Every line
// counts as user activity for the idle monitor.
func inputLoop(ctx context.Context, eng *proctor.Engine, sink *terminalSink) error {
	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	for {
		select {
		case <-ctx.Done():
			fmt.Println("\nSession interrupted.")
			return nil

		case outcome := <-sink.done:
			if outcome.Err != nil {
				fmt.Printf("\nYour interview could not be submitted: %v\n", outcome.Err)
				fmt.Println("Type :retry to try again — do not close this window until it succeeds.")
				continue
			}
			fmt.Printf("\nInterview submitted (%s). AI score: %.1f — %s\n",
				outcome.Reason, outcome.Result.AIScore, outcome.Result.Recommendation)
			return nil

		case line, ok := <-lines:
			if !ok {
				fmt.Println("\nInput closed.")
				return nil
			}
			eng.ActivityObserved(proctor.ActivityKey)
			if err := handleLine(ctx, eng, line); err != nil {
				if errors.Is(err, errQuit) {
					return nil
				}
				fmt.Printf("%v\n> ", err)
			}
		}
	}
}

var errQuit = errors.New("quit")

func handleLine(ctx context.Context, eng *proctor.Engine, line string) error {
	trimmed := strings.TrimSpace(line)

	switch {
	case trimmed == ":quit":
		return errQuit

	case trimmed == ":prev":
		_, _, err := eng.Previous()
		return err

	case trimmed == ":status":
		snap := eng.Snapshot()
		fmt.Printf("question %d/%d · answered %d · violations %d · %ds remaining\n> ",
			snap.CurrentIndex+1, snap.QuestionCount, snap.AnsweredCount,
			snap.Violations, snap.TimeRemainingSeconds)
		return nil

	case trimmed == ":retry":
		return eng.RetryCompletion(ctx)

	case strings.HasPrefix(trimmed, ":goto "):
		n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(trimmed, ":goto ")))
		if err != nil {
			return fmt.Errorf("usage: :goto N (1-based question number)")
		}
		_, _, err = eng.NavigateTo(n - 1)
		return err

	default:
		eng.UpdateDraft(line)
		err := eng.SubmitAnswer(ctx, line)
		if errors.Is(err, proctor.ErrEmptyAnswer) {
			return errors.New("answer cannot be empty")
		}
		if err != nil && !errors.Is(err, proctor.ErrSessionEnded) {
			return fmt.Errorf("answer not saved, try again: %w", err)
		}
		return nil
	}
}

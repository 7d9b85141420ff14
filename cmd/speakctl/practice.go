package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/speakeasy-practice/backend/internal/gamification"
	"github.com/speakeasy-practice/backend/internal/logging"
	"github.com/speakeasy-practice/backend/internal/models"
	"github.com/speakeasy-practice/backend/internal/practice"
	"github.com/speakeasy-practice/backend/internal/speech"
)

// localUser owns every session of a terminal run.
const localUser int64 = 1

func newPracticeCmd(a *app) *cobra.Command {
	var (
		kind     string
		simulate bool
		attempts int
	)

	cmd := &cobra.Command{
		Use:   "practice",
		Short: "Run a practice session in the terminal",
		Long: `Run a learning or evaluation session against the phrase bank.

The terminal has no microphone, so recognition falls back to typed answers after the
first prompt. --simulate answers every prompt with a canned transcript instead.
Learning prompts move on after a pass or after --attempts tries.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if attempts < 1 {
				return fmt.Errorf("--attempts must be at least 1")
			}
			s := &session{
				app:      a,
				kind:     models.SessionKind(kind),
				attempts: attempts,
				in:       bufio.NewScanner(cmd.InOrStdin()),
				out:      cmd.OutOrStdout(),
			}
			return s.run(cmd.Context(), simulate)
		},
	}

	cmd.Flags().StringVarP(&kind, "kind", "k", string(models.SessionLearning), "Session kind (learning, evaluation)")
	cmd.Flags().BoolVar(&simulate, "simulate", false, "Answer with simulated transcripts")
	cmd.Flags().IntVar(&attempts, "attempts", 2, "Tries per learning prompt before moving on")
	return cmd
}

type heard struct {
	text       string
	confidence float64
}

// terminalListener queues recognition results and prints recognition errors.
type terminalListener struct {
	results chan heard
	out     io.Writer
}

func (l *terminalListener) OnStart() {}

func (l *terminalListener) OnResult(text string, confidence float64) {
	select {
	case l.results <- heard{text: text, confidence: confidence}:
	default:
	}
}

func (l *terminalListener) OnError(err error) {
	fmt.Fprintln(l.out, speech.Message(err))
}

func (l *terminalListener) OnEnd() {}

type session struct {
	*app
	kind     models.SessionKind
	attempts int
	in       *bufio.Scanner
	out      io.Writer

	svc       *practice.Service
	capture   *speech.Capture
	simulated *speech.Simulated
	listener  *terminalListener
	speaker   speech.Speaker
}

func (s *session) run(ctx context.Context, simulate bool) error {
	ctx = logging.WithContext(ctx, s.logger)

	gam := gamification.NewService(gamification.NewMemoryStore())
	s.svc = practice.NewService(practice.NewMemoryStore(), s.bank, practice.WithRewarder(gam))
	s.speaker = speech.WriterSpeaker{W: s.out}
	s.listener = &terminalListener{results: make(chan heard, 1), out: s.out}

	var rec speech.Recognizer = speech.Unavailable{
		Err: &speech.RecognitionError{Code: speech.CodeAudioCapture, Err: errors.New("no microphone in terminal")},
	}
	if simulate {
		s.simulated = &speech.Simulated{}
		rec = s.simulated
	}
	s.capture = speech.NewCapture(rec, s.listener, speech.WithLogger(s.logger))

	started, err := s.svc.StartSession(ctx, localUser, s.kind)
	if err != nil {
		return err
	}
	id := started.Session.ID
	fmt.Fprintf(s.out, "Starting %s session with %d prompts.\n", s.kind, started.Session.TotalPrompts)

	question := started.CurrentQuestion
	for question != "" {
		if err := s.speaker.Speak(ctx, question); err != nil {
			return err
		}

		for tries := 1; ; tries++ {
			h, source, ok, err := s.listen(question)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(s.out, "Session stopped.")
				return nil
			}

			res, err := s.svc.SubmitResponse(ctx, localUser, id, models.SubmitResponseRequest{
				Text:       h.text,
				Confidence: &h.confidence,
				Source:     source,
			})
			if err != nil {
				return err
			}
			s.report(ctx, res)

			if res.Completion != nil {
				return s.finish(ctx, res.Completion)
			}
			if s.kind == models.SessionEvaluation {
				question = res.NextQuestion
				break
			}
			if res.Attempt.Passed || tries >= s.attempts {
				adv, err := s.svc.Advance(ctx, localUser, id)
				if err != nil {
					return err
				}
				if adv.Completion != nil {
					return s.finish(ctx, adv.Completion)
				}
				question = adv.NextQuestion
				break
			}
		}
	}
	return nil
}

// listen returns the next answer: a recognized transcript when the
// recognizer delivers one, otherwise a typed line. ok is false at end of
// input.
func (s *session) listen(question string) (heard, string, bool, error) {
	if s.simulated != nil {
		s.simulated.SetPrompt(question)
	}
	if err := s.capture.Start(); err != nil && !errors.Is(err, speech.ErrFallback) {
		return heard{}, "", false, err
	}
	select {
	case h := <-s.listener.results:
		fmt.Fprintf(s.out, "> %s\n", h.text)
		return h, models.SourceSpeech, true, nil
	default:
	}

	for {
		fmt.Fprint(s.out, "> ")
		if !s.in.Scan() {
			return heard{}, "", false, s.in.Err()
		}
		if err := s.capture.SubmitManual(s.in.Text()); err != nil {
			fmt.Fprintln(s.out, "Please type an answer.")
			continue
		}
		return <-s.listener.results, models.SourceManual, true, nil
	}
}

func (s *session) report(ctx context.Context, res *models.SubmitResponseResult) {
	fmt.Fprintf(s.out, "Score: %.1f\n", res.Attempt.Score)
	s.speaker.Speak(ctx, res.Feedback)
	for _, h := range res.Hints {
		fmt.Fprintf(s.out, "  You said %q. Did you mean %q?\n", h.Heard, h.Expected)
	}
	if res.Attempt.XPAwarded > 0 {
		fmt.Fprintf(s.out, "  +%d XP (combo %d)\n", res.Attempt.XPAwarded, res.Session.Combo)
	}
}

func (s *session) finish(ctx context.Context, c *models.SessionCompletion) error {
	if err := s.speaker.Speak(ctx, c.Announcement); err != nil {
		return err
	}
	if c.Rewards == nil {
		return nil
	}
	r := c.Rewards
	fmt.Fprintf(s.out, "Session XP: %d  Gems: %d  Streak: %d day(s)\n", r.XPBreakdown.TotalXP, r.GemsEarned, r.Streak.Current)
	if len(r.AchievementsUnlocked) > 0 {
		fmt.Fprintf(s.out, "Achievements unlocked: %s\n", strings.Join(r.AchievementsUnlocked, ", "))
	}
	return nil
}

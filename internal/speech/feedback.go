package speech

import (
	"context"
	"fmt"
	"io"
	"math"
)

// Lines spoken back to the learner.
const (
	PerfectFeedback  = "Perfect! You said it correctly."
	LearningComplete = "Congratulations! You have completed this learning session."
)

// Feedback returns the line spoken after a graded response.
func Feedback(passed bool, correction string) string {
	if passed {
		return PerfectFeedback
	}
	return "Almost correct! The phrase should be: " + correction
}

// EvaluationComplete announces the final percentage, rounded to a whole
// number, and the estimated level.
func EvaluationComplete(percent float64, level string) string {
	return fmt.Sprintf("Your evaluation is complete. Your score is %d percent. Your estimated level is %s.",
		int(math.Round(percent)), level)
}

// Speaker plays a plain-text line to the learner.
type Speaker interface {
	Speak(ctx context.Context, text string) error
}

// WriterSpeaker "speaks" by writing each line to W.
type WriterSpeaker struct {
	W io.Writer
}

func (s WriterSpeaker) Speak(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(s.W, text)
	return err
}

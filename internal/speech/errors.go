package speech

import (
	"errors"
	"fmt"
)

var (
	// ErrNotListening is returned by Stop when no recognition is running.
	ErrNotListening = errors.New("speech: not listening")
	// ErrFallback means recognition is unavailable and responses must be
	// typed with SubmitManual.
	ErrFallback = errors.New("speech: recognition unavailable, manual input required")
)

// ErrorCode identifies a recognition failure reported by a provider.
type ErrorCode string

const (
	CodeNoSpeech             ErrorCode = "no-speech"
	CodeAborted              ErrorCode = "aborted"
	CodeAudioCapture         ErrorCode = "audio-capture"
	CodeNetwork              ErrorCode = "network"
	CodeNotAllowed           ErrorCode = "not-allowed"
	CodeServiceNotAllowed    ErrorCode = "service-not-allowed"
	CodeBadGrammar           ErrorCode = "bad-grammar"
	CodeLanguageNotSupported ErrorCode = "language-not-supported"
)

// RecognitionError is a provider failure carrying its ErrorCode.
type RecognitionError struct {
	Code ErrorCode
	Err  error
}

func (e *RecognitionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("speech recognition %s: %v", e.Code, e.Err)
	}
	return fmt.Sprintf("speech recognition %s", e.Code)
}

func (e *RecognitionError) Unwrap() error { return e.Err }

// Code extracts the ErrorCode of err, or "" when err is not a RecognitionError.
func Code(err error) ErrorCode {
	var re *RecognitionError
	if errors.As(err, &re) {
		return re.Code
	}
	return ""
}

// Message returns the line shown to the learner for err.
func Message(err error) string {
	if errors.Is(err, ErrFallback) {
		return "Speech recognition is not available. Please type your answer instead."
	}
	switch Code(err) {
	case CodeNoSpeech:
		return "No speech was detected. Please try again."
	case CodeAborted:
		return "Speech recognition was interrupted."
	case CodeAudioCapture:
		return "Unable to capture audio. Check your microphone."
	case CodeNetwork:
		return "Network problem. Check your internet connection."
	case CodeNotAllowed, CodeServiceNotAllowed:
		return "Microphone access was denied. Please allow access in your browser settings."
	case CodeBadGrammar:
		return "There was a problem with the recognition grammar."
	case CodeLanguageNotSupported:
		return "The selected language is not supported."
	}
	return "An error occurred during speech recognition."
}

// Retryable reports whether restarting recognition may help. Permission,
// device and language failures are permanent.
func Retryable(err error) bool {
	switch Code(err) {
	case CodeNotAllowed, CodeServiceNotAllowed, CodeAudioCapture, CodeLanguageNotSupported:
		return false
	}
	return !errors.Is(err, ErrFallback)
}

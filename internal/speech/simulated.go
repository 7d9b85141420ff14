package speech

import (
	"strings"
	"sync"
)

// SimulatedConfidence is reported for simulated transcripts.
const SimulatedConfidence = 0.8

// Simulated is a Recognizer that answers the current prompt with a canned
// transcript. It stands in for a microphone in demos and tests.
type Simulated struct {
	mu     sync.Mutex
	prompt string
}

// SetPrompt sets the question the next transcript answers.
func (s *Simulated) SetPrompt(prompt string) {
	s.mu.Lock()
	s.prompt = prompt
	s.mu.Unlock()
}

func (s *Simulated) Start(l Listener) error {
	s.mu.Lock()
	prompt := s.prompt
	s.mu.Unlock()

	l.OnStart()
	l.OnResult(SimulatedResponse(prompt), SimulatedConfidence)
	l.OnEnd()
	return nil
}

func (s *Simulated) Stop() error { return nil }

// SimulatedResponse picks a canned answer by keywords of prompt.
func SimulatedResponse(prompt string) string {
	switch {
	case strings.Contains(prompt, "How are you"):
		return "I'm fine thank you how about you"
	case strings.Contains(prompt, "name"):
		return "My name is John"
	case strings.Contains(prompt, "live"), strings.Contains(prompt, "from"):
		return "I live in New York"
	case strings.Contains(prompt, "yesterday"):
		return "I went to the cinema yesterday"
	case strings.Contains(prompt, "tomorrow"), strings.Contains(prompt, "plans"):
		return "I will go shopping tomorrow"
	case strings.Contains(prompt, "hobby"), strings.Contains(prompt, "like"):
		return "I enjoy playing tennis"
	}
	return "I'm not sure how to answer that question"
}

// Unavailable is a Recognizer that always fails to start with Err. A Capture
// over it reaches Fallback after exhausting its retries.
type Unavailable struct {
	Err error
}

func (u Unavailable) Start(Listener) error { return u.Err }

func (u Unavailable) Stop() error { return nil }

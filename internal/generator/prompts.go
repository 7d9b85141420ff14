package generator

import (
	"fmt"
	"strings"
)

// Topics are everyday subjects suggested when a request names none.
var Topics = []string{
	"daily routine",
	"food and cooking",
	"travel",
	"work and study",
	"weather",
	"shopping",
	"health",
	"weekend plans",
}

// SystemPrompt describes the learner, the answer style, and the JSON shape.
func SystemPrompt() string {
	return `You write short speaking-practice prompts for adult English learners at a beginner to intermediate level.

Each PROMPT is one everyday conversational question a friendly partner might ask. It must:
- be a single question ending with a question mark
- use common vocabulary and present, past, or future simple tense
- be answerable in one sentence about the learner's own life

Each prompt carries ANSWERS: up to 5 natural one-sentence replies, ordered from the most typical to the least. Answers must:
- be complete sentences that end with a full stop
- stay between 4 and 15 words
- differ from each other in wording, not only in one swapped noun
- avoid slang, names of real people, and placeholders in brackets

Return JSON only, with no commentary and no code fences.`
}

// BuildUserPrompt asks for req.Count prompts about req.Topic (the whole Topics
// list when empty) and lists the questions the bank already has so the model
// avoids repeating them.
func BuildUserPrompt(req Request) string {
	topic := req.Topic
	if topic == "" {
		topic = "any of: " + strings.Join(Topics, ", ")
	}

	var existing string
	if len(req.Existing) > 0 {
		existing = "\nDo not repeat or rephrase these existing questions:\n- " + strings.Join(req.Existing, "\n- ") + "\n"
	}

	return fmt.Sprintf(`Generate %d speaking-practice prompts.

Topic: %s
%s
Respond with this exact JSON structure:
{
  "sets": [
    {
      "question": "What do you usually eat for breakfast?",
      "answers": [
        "I usually eat toast and eggs.",
        "I have a bowl of cereal with milk.",
        "I just drink a cup of coffee."
      ]
    }
  ]
}

Requirements:
- Exactly %d entries in "sets"
- Between 3 and 5 answers per question
- Every question ends with "?"`,
		req.Count, topic, existing, req.Count)
}

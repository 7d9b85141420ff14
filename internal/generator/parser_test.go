package generator

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func validBatchJSON(count int) string {
	batch := Batch{Sets: make([]GeneratedSet, count)}
	for i := 0; i < count; i++ {
		batch.Sets[i] = GeneratedSet{
			Question: mockSets[i%len(mockSets)].question,
			Answers:  mockSets[i%len(mockSets)].answers,
		}
	}
	data, _ := json.Marshal(batch)
	return string(data)
}

func TestParseResponse_ValidJSON(t *testing.T) {
	batch, err := ParseResponse(validBatchJSON(4))
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if len(batch.Sets) != 4 {
		t.Errorf("expected 4 sets, got %d", len(batch.Sets))
	}
	for i, s := range batch.Sets {
		if len(s.Answers) != 3 {
			t.Errorf("set %d: expected 3 answers, got %d", i+1, len(s.Answers))
		}
	}
}

func TestParseResponse_CodeFences(t *testing.T) {
	for _, wrapped := range []string{
		"```json\n" + validBatchJSON(2) + "\n```",
		"```\n" + validBatchJSON(2) + "\n```",
		"\n  " + validBatchJSON(2) + "  \n",
	} {
		batch, err := ParseResponse(wrapped)
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if len(batch.Sets) != 2 {
			t.Errorf("expected 2 sets, got %d", len(batch.Sets))
		}
	}
}

func TestParseResponse_TrimsWhitespace(t *testing.T) {
	batch, err := ParseResponse(`{"sets":[{"question":"  Do you like tea?  ","answers":[" Yes, I love tea. "]}]}`)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if batch.Sets[0].Question != "Do you like tea?" {
		t.Errorf("question not trimmed: %q", batch.Sets[0].Question)
	}
	if batch.Sets[0].Answers[0] != "Yes, I love tea." {
		t.Errorf("answer not trimmed: %q", batch.Sets[0].Answers[0])
	}
}

func TestParseResponse_InvalidJSON(t *testing.T) {
	_, err := ParseResponse("this is not json")
	if err == nil {
		t.Fatal("expected error for invalid JSON")
	}
	if !strings.Contains(err.Error(), "failed to parse JSON") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestParseResponse_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{"no sets", `{"sets":[]}`, "no sets in batch"},
		{"missing question mark", `{"sets":[{"question":"Tell me about your day","answers":["It was fine."]}]}`, "does not end with '?'"},
		{"empty question", `{"sets":[{"question":"","answers":["It was fine."]}]}`, "empty question"},
		{"no answers", `{"sets":[{"question":"How was your day?","answers":[]}]}`, "no answers"},
		{"too many answers", `{"sets":[{"question":"How was your day?","answers":["A one.","A two.","A three.","A four.","A five.","A six."]}]}`, "6 answers, at most 5 allowed"},
		{"empty answer", `{"sets":[{"question":"How was your day?","answers":["It was fine.","   "]}]}`, "answer 2 is empty"},
		{"duplicate question", `{"sets":[{"question":"How was your day?","answers":["Fine."]},{"question":"how was your DAY?","answers":["Good."]}]}`, "set 2: duplicates the question of set 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseResponse(tt.input)
			if err == nil {
				t.Fatal("expected validation error")
			}
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected *ValidationError, got %T", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestWarnings_MockBatchIsClean(t *testing.T) {
	batch, err := ParseResponse(buildMockJSON())
	if err != nil {
		t.Fatalf("mock JSON should parse: %v", err)
	}
	if w := Warnings(batch); len(w) != 0 {
		t.Errorf("expected no warnings, got %v", w)
	}
}

func TestWarnings_OverlapAndQuality(t *testing.T) {
	batch := &Batch{Sets: []GeneratedSet{
		{Question: "What sports do you play?", Answers: []string{"I play tennis.", "I play tennis."}},
		{Question: "What sports do you play now?", Answers: []string{"I play tennis every week.", "I swim in the summer.", "I run in the park."}},
	}}

	w := Warnings(batch)
	joined := strings.Join(w, "\n")
	if !strings.Contains(joined, "set 1") || !strings.Contains(joined, "reject") {
		t.Errorf("expected set 1 to be rejected, got %v", w)
	}
	if !strings.Contains(joined, "sets 1 and 2") {
		t.Errorf("expected overlap warning for sets 1 and 2, got %v", w)
	}
}

func TestJaccardSimilarity(t *testing.T) {
	a := map[string]bool{"tea": true, "coffee": true}
	b := map[string]bool{"tea": true, "juice": true}

	if got := jaccardSimilarity(a, b); !almostEqual(got, 1.0/3.0) {
		t.Errorf("expected 1/3, got %f", got)
	}
	if got := jaccardSimilarity(map[string]bool{}, map[string]bool{}); got != 0 {
		t.Errorf("expected 0 for empty sets, got %f", got)
	}
}

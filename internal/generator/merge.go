package generator

import (
	"fmt"

	"github.com/speakeasy-practice/backend/internal/phrasebank"
	"github.com/speakeasy-practice/backend/internal/textnorm"
)

// Entries converts a batch into phrase bank entries, keeping set order.
func Entries(batch *Batch) []phrasebank.Entry {
	entries := make([]phrasebank.Entry, len(batch.Sets))
	for i, s := range batch.Sets {
		entries[i] = phrasebank.Entry{Question: s.Question, Answers: append([]string(nil), s.Answers...)}
	}
	return entries
}

// Merge appends the batch to the learning set of bank. Sets whose question
// the learning set already holds, compared after normalization, are skipped.
// It returns the new bank and the number of sets added.
func Merge(bank *phrasebank.Bank, batch *Batch) (*phrasebank.Bank, int, error) {
	learning := bank.Entries(phrasebank.Learning)
	known := make(map[string]bool, len(learning))
	for _, e := range learning {
		known[textnorm.Normalize(e.Question)] = true
	}

	added := 0
	for _, e := range Entries(batch) {
		key := textnorm.Normalize(e.Question)
		if known[key] {
			continue
		}
		known[key] = true
		learning = append(learning, e)
		added++
	}

	merged, err := bank.WithLearning(learning)
	if err != nil {
		return nil, 0, fmt.Errorf("merge generated sets: %w", err)
	}
	return merged, added, nil
}

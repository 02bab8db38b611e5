package judge

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand/v2"
	"strings"
)

const judgeSystemPrompt = "You are the judge of a casual drawing game. Players had a short time to draw a word with a mouse or finger. " +
	"Score how recognisably each drawing shows the word from 1 to 100 and give one short, kind, funny sentence of feedback."

type batchStrategy struct {
	provider Provider
}

// Batch scores every drawing in one provider call, which keeps the scores
// relative to each other.
func Batch(provider Provider) Strategy {
	return &batchStrategy{provider: provider}
}

func (s *batchStrategy) Name() string {
	return s.provider.Name() + "-batch"
}

func (s *batchStrategy) Score(ctx context.Context, word string, entries []Entry) ([]Score, error) {
	var prompt strings.Builder
	fmt.Fprintf(&prompt, "The word was %q. There are %d drawings, attached in this order:\n", word, len(entries))
	images := make([]Image, 0, len(entries))
	for i, entry := range entries {
		fmt.Fprintf(&prompt, "Drawing %d (%s)\n", i+1, entry.Name)
		images = append(images, Image{MIME: entry.MIME, Data: entry.Image})
	}
	prompt.WriteString("Compare them against each other. Answer with exactly one line per drawing in the format:\n")
	prompt.WriteString("Drawing N (Name): SCORE: <1-100> | FEEDBACK: <one sentence>\n")

	raw, err := s.provider.Complete(ctx, Request{
		System: judgeSystemPrompt,
		Prompt: prompt.String(),
		Images: images,
	})
	if err != nil {
		return nil, err
	}
	return parseBatch(raw, entries)
}

type perItemStrategy struct {
	provider Provider
}

// PerItem scores drawings one call at a time. It is the fallback when a
// batch answer cannot be parsed.
func PerItem(provider Provider) Strategy {
	return &perItemStrategy{provider: provider}
}

func (s *perItemStrategy) Name() string {
	return s.provider.Name() + "-per-item"
}

func (s *perItemStrategy) Score(ctx context.Context, word string, entries []Entry) ([]Score, error) {
	out := make([]Score, 0, len(entries))
	for _, entry := range entries {
		raw, err := s.provider.Complete(ctx, Request{
			System: judgeSystemPrompt,
			Prompt: fmt.Sprintf("The word was %q. Answer in the format:\nSCORE: <1-100> | FEEDBACK: <one sentence>", word),
			Images: []Image{{MIME: entry.MIME, Data: entry.Image}},
		})
		if err != nil {
			return nil, err
		}
		score, feedback, err := parseSingle(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", entry.Name, err)
		}
		out = append(out, Score{PlayerID: entry.PlayerID, Score: score, Feedback: feedback})
	}
	return out, nil
}

var mockFeedback = []string{
	"Bold lines, bolder choices.",
	"I can see what you were going for.",
	"A masterpiece, if you squint.",
	"The judges are moved. Slightly.",
	"Abstract, but confidently so.",
	"Your stick figures have real energy.",
}

type mockStrategy struct{}

// Mock scores without any external service. The same word and drawing
// always get the same score.
func Mock() Strategy {
	return mockStrategy{}
}

func (mockStrategy) Name() string {
	return "mock"
}

func (mockStrategy) Score(_ context.Context, word string, entries []Entry) ([]Score, error) {
	out := make([]Score, 0, len(entries))
	for _, entry := range entries {
		hash := fnv.New64a()
		_, _ = hash.Write([]byte(strings.ToLower(word)))
		_, _ = hash.Write(entry.Image)
		rng := rand.New(rand.NewPCG(hash.Sum64(), uint64(len(entry.Image))))
		out = append(out, Score{
			PlayerID: entry.PlayerID,
			Score:    40 + rng.IntN(56),
			Feedback: mockFeedback[rng.IntN(len(mockFeedback))],
		})
	}
	return out, nil
}

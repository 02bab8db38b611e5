// Package judge scores a round of drawings against the chosen word. Scoring
// goes through an ordered list of strategies; the first one that returns a
// complete set of scores wins.
package judge

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
)

const (
	MinScore   = 1
	MaxScore   = 100
	BlankScore = 5

	blankFeedback = "Nothing recognisable made it onto the canvas."
)

// ErrIncomplete is returned by a strategy whose response did not cover
// every drawing.
var ErrIncomplete = errors.New("judge response incomplete")

type Entry struct {
	PlayerID string
	Name     string
	MIME     string
	Image    []byte
}

type Score struct {
	PlayerID string
	Score    int
	Feedback string
}

type Result struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Score    int    `json:"score"`
	Feedback string `json:"feedback"`
	Rank     int    `json:"rank"`
}

type Image struct {
	MIME string
	Data []byte
}

type Request struct {
	System string
	Prompt string
	Images []Image
}

// Provider is an external model able to look at images and answer in text.
type Provider interface {
	Name() string
	Complete(ctx context.Context, req Request) (string, error)
}

type Strategy interface {
	Name() string
	Score(ctx context.Context, word string, entries []Entry) ([]Score, error)
}

// Error is the only error Judge returns. Message is safe to show players.
type Error struct {
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

type Coordinator struct {
	strategies []Strategy
	blankBytes int
}

func NewCoordinator(blankBytes int, strategies ...Strategy) *Coordinator {
	return &Coordinator{
		strategies: strategies,
		blankBytes: blankBytes,
	}
}

// Strategies reports the strategy names in the order they are tried.
func (c *Coordinator) Strategies() []string {
	names := make([]string, 0, len(c.strategies))
	for _, strategy := range c.strategies {
		names = append(names, strategy.Name())
	}
	return names
}

func (c *Coordinator) Judge(ctx context.Context, word string, entries []Entry) ([]Result, error) {
	results := make([]Result, 0, len(entries))
	scorable := make([]Entry, 0, len(entries))
	for _, entry := range entries {
		if len(entry.Image) < c.blankBytes {
			results = append(results, Result{
				PlayerID: entry.PlayerID,
				Name:     entry.Name,
				Score:    BlankScore,
				Feedback: blankFeedback,
			})
			continue
		}
		scorable = append(scorable, entry)
	}
	if len(scorable) == 0 {
		return Rank(results), nil
	}
	if len(c.strategies) == 0 {
		return nil, &Error{Message: "No judge is configured."}
	}

	var lastErr error
	for _, strategy := range c.strategies {
		scores, err := strategy.Score(ctx, word, scorable)
		if err == nil {
			merged, mergeErr := mergeScores(scorable, scores)
			if mergeErr == nil {
				log.Info().Str("strategy", strategy.Name()).Int("drawings", len(scorable)).Msg("drawings judged")
				return Rank(append(results, merged...)), nil
			}
			err = mergeErr
		}
		log.Warn().Str("strategy", strategy.Name()).Err(err).Msg("judge strategy failed")
		if !errors.Is(err, ErrIncomplete) || lastErr == nil {
			lastErr = err
		}
		if ctx.Err() != nil {
			lastErr = ctx.Err()
			break
		}
	}
	return nil, &Error{Message: Sanitize(lastErr)}
}

func mergeScores(entries []Entry, scores []Score) ([]Result, error) {
	byPlayer := make(map[string]Score, len(scores))
	for _, score := range scores {
		if _, seen := byPlayer[score.PlayerID]; seen {
			continue
		}
		byPlayer[score.PlayerID] = score
	}
	out := make([]Result, 0, len(entries))
	for _, entry := range entries {
		score, ok := byPlayer[entry.PlayerID]
		if !ok {
			return nil, fmt.Errorf("%w: no score for %s", ErrIncomplete, entry.Name)
		}
		out = append(out, Result{
			PlayerID: entry.PlayerID,
			Name:     entry.Name,
			Score:    clampScore(score.Score),
			Feedback: score.Feedback,
		})
	}
	return out, nil
}

func clampScore(score int) int {
	if score < MinScore {
		return MinScore
	}
	if score > MaxScore {
		return MaxScore
	}
	return score
}

package game

import "fmt"

type Phase int

const (
	PhaseLobby Phase = iota
	PhaseVoting
	PhaseDrawing
	PhaseJudging
	PhaseJudgingFailed
	PhaseResults
)

var phaseNames = map[Phase]string{
	PhaseLobby:         "lobby",
	PhaseVoting:        "voting",
	PhaseDrawing:       "drawing",
	PhaseJudging:       "judging",
	PhaseJudgingFailed: "judging-failed",
	PhaseResults:       "results",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Finished reports whether the round is over and only a rematch can follow.
func (p Phase) Finished() bool {
	return p == PhaseResults || p == PhaseJudgingFailed
}

var phaseTransitions = map[Phase][]Phase{
	PhaseLobby:   {PhaseVoting},
	PhaseVoting:  {PhaseDrawing},
	PhaseDrawing: {PhaseJudging},
	PhaseJudging: {PhaseResults, PhaseJudgingFailed},
}

func canTransition(from, to Phase) bool {
	for _, next := range phaseTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

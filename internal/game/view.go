package game

import (
	"time"

	"doodle-judge/internal/judge"
)

// View is the client-facing snapshot of a room.
type View struct {
	Code           string         `json:"code"`
	Phase          Phase          `json:"phase"`
	HostID         string         `json:"host_id"`
	Players        []Player       `json:"players"`
	MaxPlayers     int            `json:"max_players"`
	WordOptions    []string       `json:"word_options,omitempty"`
	VoteCounts     map[string]int `json:"vote_counts,omitempty"`
	TiedWords      []string       `json:"tied_words,omitempty"`
	ChosenWord     string         `json:"chosen_word,omitempty"`
	TimeRemaining  int            `json:"time_remaining"`
	SubmittedCount int            `json:"submitted_count"`
	Results        []judge.Result `json:"results,omitempty"`
	Error          string         `json:"error,omitempty"`
	Rematch        *RematchStatus `json:"rematch,omitempty"`
}

type RematchStatus struct {
	Requested   []string `json:"requested"`
	PlayerCount int      `json:"player_count"`
	NewCode     string   `json:"new_code,omitempty"`
	HostReady   bool     `json:"host_ready"`
}

type Summary struct {
	Code       string    `json:"code"`
	Phase      Phase     `json:"phase"`
	Players    int       `json:"players"`
	MaxPlayers int       `json:"max_players"`
	CreatedAt  time.Time `json:"created_at"`
}

func (r *Room) view() View {
	v := View{
		Code:           r.code,
		Phase:          r.phase,
		HostID:         r.hostID,
		Players:        make([]Player, 0, len(r.order)),
		MaxPlayers:     r.maxPlayers,
		ChosenWord:     r.chosenWord,
		TimeRemaining:  r.timeRemaining,
		SubmittedCount: len(r.drawings),
		Error:          r.failure,
	}
	for _, id := range r.order {
		if player, ok := r.players[id]; ok {
			v.Players = append(v.Players, *player)
		}
	}
	if r.phase == PhaseVoting {
		v.WordOptions = append([]string(nil), r.wordOptions...)
	}
	if len(r.votes) > 0 {
		v.VoteCounts = r.voteCounts()
	}
	if r.tie != nil {
		v.TiedWords = append([]string(nil), r.tie.words...)
	}
	if len(r.results) > 0 {
		v.Results = append([]judge.Result(nil), r.results...)
	}
	if r.rematch != nil {
		status := r.rematch.status(r)
		v.Rematch = &status
	}
	return v
}

func (r *Room) summary() Summary {
	return Summary{
		Code:       r.code,
		Phase:      r.phase,
		Players:    len(r.players),
		MaxPlayers: r.maxPlayers,
		CreatedAt:  r.createdAt,
	}
}

package game

import (
	"strings"
	"time"

	"doodle-judge/internal/judge"
)

type Player struct {
	ID                  string `json:"id"`
	Name                string `json:"name"`
	IsHost              bool   `json:"is_host"`
	HasVoted            bool   `json:"has_voted"`
	HasSubmittedDrawing bool   `json:"has_submitted_drawing"`
	Score               int    `json:"score"`
}

type drawing struct {
	mime        string
	data        []byte
	placeholder bool
}

// Room is one game from lobby to results. It is only touched with the
// registry lock held.
type Room struct {
	code          string
	hostID        string
	phase         Phase
	players       map[string]*Player
	order         []string
	maxPlayers    int
	wordOptions   []string
	votes         map[string]string
	chosenWord    string
	drawings      map[string]drawing
	timeRemaining int
	results       []judge.Result
	failure       string
	tie           *tieBreak
	rematch       *rematchSession
	timers        map[timerKind]*roomTimer
	judgeSeq      int
	closed        bool
	createdAt     time.Time
}

func newRoom(code string, maxPlayers int) *Room {
	return &Room{
		code:       code,
		phase:      PhaseLobby,
		players:    make(map[string]*Player),
		maxPlayers: maxPlayers,
		votes:      make(map[string]string),
		drawings:   make(map[string]drawing),
		timers:     make(map[timerKind]*roomTimer),
		createdAt:  time.Now().UTC(),
	}
}

func (r *Room) Code() string {
	return r.code
}

func (r *Room) transition(to Phase) error {
	if !canTransition(r.phase, to) {
		return stateError("cannot move from %s to %s", r.phase, to)
	}
	r.phase = to
	return nil
}

func (r *Room) addPlayer(id, name string, score int) *Player {
	player := &Player{
		ID:     id,
		Name:   name,
		IsHost: len(r.players) == 0,
		Score:  score,
	}
	r.players[id] = player
	r.order = append(r.order, id)
	if player.IsHost {
		r.hostID = id
	}
	return player
}

func (r *Room) removePlayer(id string) *Player {
	player, ok := r.players[id]
	if !ok {
		return nil
	}
	delete(r.players, id)
	delete(r.votes, id)
	delete(r.drawings, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	if r.rematch != nil {
		r.rematch.remove(id)
	}
	return player
}

// promoteHost hands the host role to the first id in preferred that is still
// present, falling back to join order.
func (r *Room) promoteHost(preferred []string) {
	r.hostID = ""
	candidates := append(append([]string(nil), preferred...), r.order...)
	for _, id := range candidates {
		if player, ok := r.players[id]; ok {
			player.IsHost = true
			r.hostID = id
			return
		}
	}
}

func (r *Room) hasName(name string) bool {
	for _, player := range r.players {
		if strings.EqualFold(player.Name, name) {
			return true
		}
	}
	return false
}

func (r *Room) voteCounts() map[string]int {
	counts := make(map[string]int, len(r.wordOptions))
	for _, word := range r.votes {
		counts[word]++
	}
	return counts
}

func (r *Room) allVoted() bool {
	if len(r.players) == 0 {
		return false
	}
	for id := range r.players {
		if _, ok := r.votes[id]; !ok {
			return false
		}
	}
	return true
}

func (r *Room) allSubmitted() bool {
	if len(r.players) == 0 {
		return false
	}
	for id := range r.players {
		if _, ok := r.drawings[id]; !ok {
			return false
		}
	}
	return true
}

func (r *Room) matchOption(word string) (string, bool) {
	for _, option := range r.wordOptions {
		if strings.EqualFold(option, word) {
			return option, true
		}
	}
	return "", false
}

// autoFillMissingDrawings gives every player who never submitted an empty
// placeholder so the round can be judged.
func (r *Room) autoFillMissingDrawings() []string {
	filled := make([]string, 0)
	for _, id := range r.order {
		if _, ok := r.drawings[id]; ok {
			continue
		}
		r.drawings[id] = drawing{mime: "image/png", placeholder: true}
		if player, ok := r.players[id]; ok {
			player.HasSubmittedDrawing = true
		}
		filled = append(filled, id)
	}
	return filled
}

func (r *Room) judgeEntries() []judge.Entry {
	entries := make([]judge.Entry, 0, len(r.drawings))
	for _, id := range r.order {
		entry, ok := r.drawings[id]
		if !ok {
			continue
		}
		entries = append(entries, judge.Entry{
			PlayerID: id,
			Name:     r.players[id].Name,
			MIME:     entry.mime,
			Image:    entry.data,
		})
	}
	return entries
}

func (r *Room) applyResults(results []judge.Result) {
	r.results = results
	for _, result := range results {
		if player, ok := r.players[result.PlayerID]; ok {
			player.Score += judge.Points(result.Rank)
		}
	}
}

func (r *Room) broadcast(pub Publisher, event Event) {
	for _, id := range r.order {
		pub.Send(id, event)
	}
}

func (r *Room) broadcastExcept(pub Publisher, skip string, event Event) {
	for _, id := range r.order {
		if id != skip {
			pub.Send(id, event)
		}
	}
}

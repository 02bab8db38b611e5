package game

import (
	"context"
	"encoding/base64"
	"strings"
	"sync"
	"testing"
	"time"

	"doodle-judge/internal/judge"
)

type fakeTimer struct {
	at      time.Duration
	seq     int
	f       func()
	stopped bool
	fired   bool
}

// fakeScheduler fires callbacks only when the test advances its clock.
type fakeScheduler struct {
	mu     sync.Mutex
	now    time.Duration
	seq    int
	timers []*fakeTimer
}

func (s *fakeScheduler) AfterFunc(d time.Duration, f func()) func() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	t := &fakeTimer{at: s.now + d, seq: s.seq, f: f}
	s.timers = append(s.timers, t)
	return func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		if t.fired || t.stopped {
			return false
		}
		t.stopped = true
		return true
	}
}

func (s *fakeScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now + d
	s.mu.Unlock()
	for {
		s.mu.Lock()
		var next *fakeTimer
		for _, t := range s.timers {
			if t.fired || t.stopped || t.at > target {
				continue
			}
			if next == nil || t.at < next.at || (t.at == next.at && t.seq < next.seq) {
				next = t
			}
		}
		if next == nil {
			s.now = target
			s.mu.Unlock()
			return
		}
		s.now = next.at
		next.fired = true
		s.mu.Unlock()
		next.f()
	}
}

func (s *fakeScheduler) pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, t := range s.timers {
		if !t.fired && !t.stopped {
			count++
		}
	}
	return count
}

type sentEvent struct {
	to    string
	event Event
}

type recorder struct {
	mu     sync.Mutex
	events []sentEvent
}

func (r *recorder) Send(playerID string, event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, sentEvent{to: playerID, event: event})
}

func (r *recorder) names(playerID string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0)
	for _, sent := range r.events {
		if sent.to == playerID {
			out = append(out, sent.event.Name)
		}
	}
	return out
}

func (r *recorder) last(playerID, name string) (Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].to == playerID && r.events[i].event.Name == name {
			return r.events[i].event, true
		}
	}
	return Event{}, false
}

func (r *recorder) count(playerID, name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, sent := range r.events {
		if sent.to == playerID && sent.event.Name == name {
			count++
		}
	}
	return count
}

func (r *recorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

type staticWords []string

func (w staticWords) Words(_ context.Context, n int) ([]string, error) {
	if n > len(w) {
		n = len(w)
	}
	return append([]string(nil), w[:n]...), nil
}

// fakeJudge scores by player name and records what it was asked to judge.
type fakeJudge struct {
	mu      sync.Mutex
	scores  map[string]int
	err     error
	word    string
	entries []judge.Entry
}

func (j *fakeJudge) Judge(_ context.Context, word string, entries []judge.Entry) ([]judge.Result, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.word = word
	j.entries = append([]judge.Entry(nil), entries...)
	if j.err != nil {
		return nil, j.err
	}
	results := make([]judge.Result, 0, len(entries))
	for _, entry := range entries {
		score, ok := j.scores[entry.Name]
		if !ok {
			score = 10
		}
		results = append(results, judge.Result{PlayerID: entry.PlayerID, Name: entry.Name, Score: score, Feedback: "ok"})
	}
	return judge.Rank(results), nil
}

func (j *fakeJudge) judged() (string, []judge.Entry) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.word, append([]judge.Entry(nil), j.entries...)
}

type harness struct {
	reg   *Registry
	sched *fakeScheduler
	pub   *recorder
	judge *fakeJudge
}

func testSettings() Settings {
	return Settings{
		MaxPlayers:         4,
		MinPlayers:         2,
		WordOptions:        3,
		DrawSeconds:        3,
		TickInterval:       time.Second,
		GracePeriod:        3 * time.Second,
		TieRevealDelay:     3 * time.Second,
		TieFallbackDelay:   8 * time.Second,
		RematchIdleTimeout: 120 * time.Second,
		HostLeftGrace:      30 * time.Second,
		JudgeTimeout:       5 * time.Second,
		MaxDrawingBytes:    1 << 20,
	}
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	h := &harness{
		sched: &fakeScheduler{},
		pub:   &recorder{},
		judge: &fakeJudge{scores: map[string]int{}},
	}
	opts = append([]Option{WithScheduler(h.sched), WithRandom(func(int) int { return 0 })}, opts...)
	h.reg = NewRegistry(testSettings(), staticWords{"cat", "house", "rocket", "tree"}, h.judge, h.pub, opts...)
	return h
}

// lobby creates a room hosted by p1 and joins the remaining names as p2, p3...
func (h *harness) lobby(t *testing.T, names ...string) string {
	t.Helper()
	code, _, err := h.reg.CreateRoom("p1", names[0])
	if err != nil {
		t.Fatalf("create room: %v", err)
	}
	for i, name := range names[1:] {
		if _, err := h.reg.JoinRoom(code, playerID(i+2), name); err != nil {
			t.Fatalf("join %s: %v", name, err)
		}
	}
	return code
}

// drawing drives a room to the drawing phase with everyone voting word.
func (h *harness) drawing(t *testing.T, code, word string) {
	t.Helper()
	if err := h.reg.StartVoting(code, "p1"); err != nil {
		t.Fatalf("start voting: %v", err)
	}
	view := h.snapshot(t, code)
	for _, player := range view.Players {
		if err := h.reg.Vote(code, player.ID, word); err != nil {
			t.Fatalf("vote %s: %v", player.ID, err)
		}
	}
	if got := h.snapshot(t, code).Phase; got != PhaseDrawing {
		t.Fatalf("expected drawing, got %s", got)
	}
}

// results drives a room through drawing and judging to results.
func (h *harness) results(t *testing.T, code string) View {
	t.Helper()
	h.drawing(t, code, "cat")
	for _, player := range h.snapshot(t, code).Players {
		if err := h.reg.SubmitDrawing(code, player.ID, sketch()); err != nil {
			t.Fatalf("submit %s: %v", player.ID, err)
		}
	}
	h.reg.Wait()
	view := h.snapshot(t, code)
	if view.Phase != PhaseResults {
		t.Fatalf("expected results, got %s", view.Phase)
	}
	return view
}

func (h *harness) snapshot(t *testing.T, code string) View {
	t.Helper()
	view, err := h.reg.Snapshot(code)
	if err != nil {
		t.Fatalf("snapshot %s: %v", code, err)
	}
	return view
}

func playerID(n int) string {
	return "p" + string(rune('0'+n))
}

func sketch() string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte(strings.Repeat("ink", 64)))
}

func playerByID(view View, id string) (Player, bool) {
	for _, player := range view.Players {
		if player.ID == id {
			return player, true
		}
	}
	return Player{}, false
}

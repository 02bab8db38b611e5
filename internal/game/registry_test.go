package game

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndJoinRoom(t *testing.T) {
	h := newHarness(t)
	code, view, err := h.reg.CreateRoom("p1", "  Ada  ")
	require.NoError(t, err)
	require.Len(t, code, codeLength)
	assert.Equal(t, PhaseLobby, view.Phase)
	assert.Equal(t, "p1", view.HostID)
	assert.Equal(t, "Ada", view.Players[0].Name)
	assert.True(t, view.Players[0].IsHost)

	view, err = h.reg.JoinRoom(code, "p2", "Bob")
	require.NoError(t, err)
	require.Len(t, view.Players, 2)
	assert.False(t, view.Players[1].IsHost)

	assert.Equal(t, []string{EventRoomCreated, EventPlayerJoined}, h.pub.names("p1"))
	assert.Equal(t, []string{EventRoomJoined}, h.pub.names("p2"))
}

func TestJoinRoomErrors(t *testing.T) {
	h := newHarness(t)
	code := h.lobby(t, "Ada", "Bob", "Cy", "Dee")

	tests := []struct {
		name   string
		code   string
		player string
		pname  string
		want   error
	}{
		{name: "malformed code", code: "abc", player: "p9", pname: "Eve", want: ErrValidation},
		{name: "unknown room", code: "ZZZZZZ", player: "p9", pname: "Eve", want: ErrNotFound},
		{name: "room full", code: code, player: "p9", pname: "Eve", want: ErrRoomFull},
		{name: "empty name", code: code, player: "p9", pname: "   ", want: ErrValidation},
		{name: "unsafe name", code: code, player: "p9", pname: "<script>", want: ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.reg.JoinRoom(tt.code, tt.player, tt.pname)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestJoinRoomRejectsDuplicateNameAndRunningGame(t *testing.T) {
	h := newHarness(t)
	code := h.lobby(t, "Ada", "Bob")

	_, err := h.reg.JoinRoom(code, "p3", "bob")
	require.ErrorIs(t, err, ErrValidation)

	require.NoError(t, h.reg.StartVoting(code, "p1"))
	_, err = h.reg.JoinRoom(code, "p3", "Cy")
	require.ErrorIs(t, err, ErrWrongPhase)
}

func TestJoinSameRoomTwiceIsIdempotent(t *testing.T) {
	h := newHarness(t)
	code := h.lobby(t, "Ada", "Bob")
	view, err := h.reg.JoinRoom(code, "p2", "Bob")
	require.NoError(t, err)
	assert.Len(t, view.Players, 2)
	assert.Equal(t, 1, h.pub.count("p1", EventPlayerJoined))
}

func TestCreateRoomLeavesPreviousRoom(t *testing.T) {
	h := newHarness(t)
	first := h.lobby(t, "Ada", "Bob")
	second, _, err := h.reg.CreateRoom("p2", "Bob")
	require.NoError(t, err)

	view := h.snapshot(t, first)
	assert.Len(t, view.Players, 1)
	code, ok := h.reg.RoomOf("p2")
	require.True(t, ok)
	assert.Equal(t, second, code)
}

func TestRoomCodesAreUniqueAmongLiveRooms(t *testing.T) {
	codes := []string{"AAAAAA", "AAAAAA", "BBBBBB"}
	next := 0
	h := newHarness(t, WithCodeGenerator(func() string {
		code := codes[next%len(codes)]
		next++
		return code
	}))
	first, _, err := h.reg.CreateRoom("p1", "Ada")
	require.NoError(t, err)
	second, _, err := h.reg.CreateRoom("p2", "Bob")
	require.NoError(t, err)
	assert.Equal(t, "AAAAAA", first)
	assert.Equal(t, "BBBBBB", second)
}

func TestRoomCodeExhaustion(t *testing.T) {
	h := newHarness(t, WithCodeGenerator(func() string { return "CCCCCC" }))
	_, _, err := h.reg.CreateRoom("p1", "Ada")
	require.NoError(t, err)
	_, _, err = h.reg.CreateRoom("p2", "Bob")
	require.ErrorIs(t, err, ErrWrongPhase)
}

func TestStartVotingRequiresHostAndPlayers(t *testing.T) {
	h := newHarness(t)
	code, _, err := h.reg.CreateRoom("p1", "Ada")
	require.NoError(t, err)
	require.ErrorIs(t, h.reg.StartVoting(code, "p1"), ErrWrongPhase)

	_, err = h.reg.JoinRoom(code, "p2", "Bob")
	require.NoError(t, err)
	require.ErrorIs(t, h.reg.StartVoting(code, "p2"), ErrWrongPhase)
	require.ErrorIs(t, h.reg.StartVoting(code, "p9"), ErrNotFound)

	require.NoError(t, h.reg.StartVoting(code, "p1"))
	view := h.snapshot(t, code)
	assert.Equal(t, PhaseVoting, view.Phase)
	if diff := cmp.Diff([]string{"cat", "house", "rocket"}, view.WordOptions); diff != "" {
		t.Fatalf("word options mismatch (-want +got):\n%s", diff)
	}
	require.ErrorIs(t, h.reg.StartVoting(code, "p1"), ErrWrongPhase)
}

func TestVoteValidation(t *testing.T) {
	h := newHarness(t)
	code := h.lobby(t, "Ada", "Bob")
	require.ErrorIs(t, h.reg.Vote(code, "p1", "cat"), ErrWrongPhase)
	require.NoError(t, h.reg.StartVoting(code, "p1"))

	require.ErrorIs(t, h.reg.Vote(code, "p1", "submarine"), ErrValidation)
	require.ErrorIs(t, h.reg.Vote(code, "p1", ""), ErrValidation)
	require.NoError(t, h.reg.Vote(code, "p1", "CAT"))

	view := h.snapshot(t, code)
	assert.Equal(t, map[string]int{"cat": 1}, view.VoteCounts)
	assert.Equal(t, 1, h.pub.count("p2", EventVoteUpdated))
}

func TestRevoteOverwritesPreviousVote(t *testing.T) {
	h := newHarness(t)
	code := h.lobby(t, "Ada", "Bob", "Cy")
	require.NoError(t, h.reg.StartVoting(code, "p1"))
	require.NoError(t, h.reg.Vote(code, "p1", "cat"))
	require.NoError(t, h.reg.Vote(code, "p1", "house"))
	require.NoError(t, h.reg.Vote(code, "p1", "rocket"))

	view := h.snapshot(t, code)
	assert.Equal(t, map[string]int{"rocket": 1}, view.VoteCounts)
}

func TestVoteCountsNeverExceedPlayers(t *testing.T) {
	h := newHarness(t)
	code := h.lobby(t, "Ada", "Bob", "Cy", "Dee")
	require.NoError(t, h.reg.StartVoting(code, "p1"))

	words := []string{"cat", "house", "rocket"}
	// The last voter never votes so the room stays in voting.
	for round := 0; round < 20; round++ {
		voter := playerID(round%3 + 1)
		require.NoError(t, h.reg.Vote(code, voter, words[(round*7)%len(words)]))
		view := h.snapshot(t, code)
		total := 0
		for _, count := range view.VoteCounts {
			total += count
		}
		if total > len(view.Players) {
			t.Fatalf("round %d: %d votes for %d players", round, total, len(view.Players))
		}
	}
}

// A unanimous round runs straight through drawing and judging.
func TestHappyPathToResults(t *testing.T) {
	h := newHarness(t)
	h.judge.scores = map[string]int{"Ada": 90, "Bob": 70}
	code := h.lobby(t, "Ada", "Bob")
	h.drawing(t, code, "cat")

	view := h.snapshot(t, code)
	assert.Equal(t, "cat", view.ChosenWord)
	assert.Equal(t, 3, view.TimeRemaining)
	assert.Equal(t, 1, h.pub.count("p2", EventDrawingStarted))

	require.NoError(t, h.reg.SubmitDrawing(code, "p1", sketch()))
	require.NoError(t, h.reg.SubmitDrawing(code, "p2", sketch()))
	h.reg.Wait()

	view = h.snapshot(t, code)
	require.Equal(t, PhaseResults, view.Phase)
	require.Len(t, view.Results, 2)
	assert.Equal(t, "Ada", view.Results[0].Name)
	assert.Equal(t, 1, view.Results[0].Rank)
	assert.Equal(t, 2, view.Results[1].Rank)

	ada, _ := playerByID(view, "p1")
	bob, _ := playerByID(view, "p2")
	assert.Equal(t, 100, ada.Score)
	assert.Equal(t, 75, bob.Score)

	word, entries := h.judge.judged()
	assert.Equal(t, "cat", word)
	assert.Len(t, entries, 2)
	assert.Equal(t, 1, h.pub.count("p1", EventJudgingStarted))
	assert.Equal(t, 1, h.pub.count("p1", EventJudgingComplete))
	assert.Zero(t, h.pub.count("p1", EventDrawingTimeExpired))
}

func TestDuplicateSubmissionKeepsFirst(t *testing.T) {
	h := newHarness(t)
	code := h.lobby(t, "Ada", "Bob", "Cy")
	h.drawing(t, code, "cat")

	require.NoError(t, h.reg.SubmitDrawing(code, "p1", sketch()))
	require.NoError(t, h.reg.SubmitDrawing(code, "p1", "data:image/png;base64,AAAA"))
	view := h.snapshot(t, code)
	assert.Equal(t, 1, view.SubmittedCount)
	assert.Equal(t, 1, h.pub.count("p2", EventDrawingSubmitted))

	require.ErrorIs(t, h.reg.SubmitDrawing(code, "p2", ""), ErrValidation)
	require.ErrorIs(t, h.reg.SubmitDrawing(code, "p2", "data:text/plain;base64,AAAA"), ErrValidation)
}

func TestSubmitOutsideDrawingIsRejected(t *testing.T) {
	h := newHarness(t)
	code := h.lobby(t, "Ada", "Bob")
	require.ErrorIs(t, h.reg.SubmitDrawing(code, "p1", sketch()), ErrWrongPhase)
}

// Countdown reaches zero with one drawing missing; a late drawing lands in
// the grace window and the rest are auto-filled.
func TestCountdownGraceAndAutoFill(t *testing.T) {
	h := newHarness(t)
	code := h.lobby(t, "Ada", "Bob", "Cy")
	h.drawing(t, code, "cat")
	require.NoError(t, h.reg.SubmitDrawing(code, "p1", sketch()))

	h.sched.Advance(3 * time.Second)
	view := h.snapshot(t, code)
	require.Equal(t, PhaseDrawing, view.Phase)
	assert.Equal(t, 0, view.TimeRemaining)
	assert.Equal(t, 3, h.pub.count("p2", EventTimerUpdate))
	assert.Equal(t, 1, h.pub.count("p2", EventDrawingTimeExpired))
	last, ok := h.pub.last("p2", EventTimerUpdate)
	require.True(t, ok)
	assert.Equal(t, TimerEvent{TimeRemaining: 0}, last.Data)

	require.NoError(t, h.reg.SubmitDrawing(code, "p2", sketch()))
	h.sched.Advance(2 * time.Second)
	require.Equal(t, PhaseDrawing, h.snapshot(t, code).Phase)

	h.sched.Advance(time.Second)
	h.reg.Wait()
	view = h.snapshot(t, code)
	require.Equal(t, PhaseResults, view.Phase)

	_, entries := h.judge.judged()
	require.Len(t, entries, 3)
	assert.Equal(t, "p3", entries[2].PlayerID)
	assert.Empty(t, entries[2].Image)
	cy, _ := playerByID(view, "p3")
	assert.True(t, cy.HasSubmittedDrawing)
}

func TestJudgeFailureIsSanitized(t *testing.T) {
	h := newHarness(t)
	h.judge.err = errors.New("401 invalid api key sk-live-abcdef0123456789")
	code := h.lobby(t, "Ada", "Bob")
	h.drawing(t, code, "cat")
	require.NoError(t, h.reg.SubmitDrawing(code, "p1", sketch()))
	require.NoError(t, h.reg.SubmitDrawing(code, "p2", sketch()))
	h.reg.Wait()

	view := h.snapshot(t, code)
	require.Equal(t, PhaseJudgingFailed, view.Phase)
	assert.NotEmpty(t, view.Error)
	assert.NotContains(t, view.Error, "sk-live")
	assert.Equal(t, 1, h.pub.count("p2", EventJudgingFailed))
	for _, player := range view.Players {
		assert.Zero(t, player.Score)
	}
}

func TestHostLeavingBeforeResultsClosesRoom(t *testing.T) {
	h := newHarness(t)
	code := h.lobby(t, "Ada", "Bob", "Cy")
	h.drawing(t, code, "cat")

	h.reg.RemovePlayer("p1")
	_, err := h.reg.Snapshot(code)
	require.ErrorIs(t, err, ErrNotFound)

	closed, ok := h.pub.last("p2", EventRoomClosed)
	require.True(t, ok)
	assert.Equal(t, ClosedEvent{Code: code, Reason: "host-left"}, closed.Data)
	_, ok = h.reg.RoomOf("p2")
	assert.False(t, ok)

	h.pub.reset()
	h.sched.Advance(time.Minute)
	assert.Empty(t, h.pub.names("p2"))
	assert.Zero(t, h.sched.pending())
}

func TestPlayerLeavingCompletesPendingChecks(t *testing.T) {
	h := newHarness(t)
	code := h.lobby(t, "Ada", "Bob", "Cy")
	require.NoError(t, h.reg.StartVoting(code, "p1"))
	require.NoError(t, h.reg.Vote(code, "p1", "cat"))
	require.NoError(t, h.reg.Vote(code, "p2", "cat"))

	h.reg.RemovePlayer("p3")
	view := h.snapshot(t, code)
	require.Equal(t, PhaseDrawing, view.Phase)
	require.Len(t, view.Players, 2)
	assert.Equal(t, 1, h.pub.count("p1", EventPlayerLeft))

	require.NoError(t, h.reg.SubmitDrawing(code, "p1", sketch()))
	h.reg.RemovePlayer("p2")
	h.reg.Wait()
	view = h.snapshot(t, code)
	assert.Equal(t, PhaseResults, view.Phase)
	_, entries := h.judge.judged()
	assert.Len(t, entries, 1)
}

func TestDestroyRoomStopsTimers(t *testing.T) {
	h := newHarness(t)
	code := h.lobby(t, "Ada", "Bob")
	h.drawing(t, code, "cat")
	require.NoError(t, h.reg.DestroyRoom(code))
	require.ErrorIs(t, h.reg.DestroyRoom(code), ErrNotFound)

	h.pub.reset()
	h.sched.Advance(10 * time.Second)
	assert.Empty(t, h.pub.names("p1"))
	_, ok := h.reg.RoomOf("p1")
	assert.False(t, ok)
}

func TestSummariesListLiveRooms(t *testing.T) {
	h := newHarness(t)
	first := h.lobby(t, "Ada", "Bob")
	second, _, err := h.reg.CreateRoom("p7", "Gus")
	require.NoError(t, err)

	summaries := h.reg.Summaries()
	require.Len(t, summaries, 2)
	codes := map[string]int{}
	for _, summary := range summaries {
		codes[summary.Code] = summary.Players
	}
	assert.Equal(t, map[string]int{first: 2, second: 1}, codes)
}

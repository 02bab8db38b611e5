package game

const (
	EventRoomCreated        = "room-created"
	EventRoomJoined         = "room-joined"
	EventPlayerJoined       = "player-joined"
	EventPlayerLeft         = "player-left"
	EventRoomClosed         = "room-closed"
	EventVotingStarted      = "voting-started"
	EventVoteUpdated        = "vote-updated"
	EventTieBreakStarted    = "tiebreaker-started"
	EventDrawingStarted     = "drawing-started"
	EventTimerUpdate        = "timer-update"
	EventDrawingTimeExpired = "drawing-time-expired"
	EventDrawingSubmitted   = "drawing-submitted"
	EventJudgingStarted     = "judging-started"
	EventJudgingComplete    = "judging-complete"
	EventJudgingFailed      = "judging-failed"
	EventPlayAgainLobby     = "play-again-lobby-created"
	EventPlayAgainWaiting   = "play-again-waiting"
	EventError              = "error"
)

type Event struct {
	Name string `json:"event"`
	Data any    `json:"data,omitempty"`
}

// Publisher delivers events to a single player. Send is called while the
// registry lock is held, so it must not block.
type Publisher interface {
	Send(playerID string, event Event)
}

type RoomEvent struct {
	Code string `json:"code,omitempty"`
	View View   `json:"view"`
}

type PlayerEvent struct {
	Player Player `json:"player"`
	View   View   `json:"view"`
}

type TieBreakEvent struct {
	TiedWords []string `json:"tied_words"`
	MaxVotes  int      `json:"max_votes"`
	View      View     `json:"view"`
}

type TimerEvent struct {
	TimeRemaining int `json:"time_remaining"`
}

type ClosedEvent struct {
	Code   string `json:"code"`
	Reason string `json:"reason"`
}

type RematchLobbyEvent struct {
	NewCode string `json:"new_code"`
	View    View   `json:"view"`
}

type RematchWaitingEvent struct {
	Status RematchStatus `json:"status"`
}

type ErrorEvent struct {
	Message string `json:"message"`
}

type nopPublisher struct{}

func (nopPublisher) Send(string, Event) {}

// Package game owns every live room: the lobby, word voting, tie-breaks,
// the drawing countdown, judging and rematches. All state is guarded by one
// registry mutex; timer and judge callbacks re-enter through it.
package game

import (
	"context"
	"errors"
	"math/rand/v2"
	"sort"
	"sync"
	"time"

	"doodle-judge/internal/config"
	"doodle-judge/internal/judge"

	"github.com/rs/zerolog/log"
)

const (
	maxCodeAttempts  = 64
	wordFetchTimeout = 2 * time.Second
)

// WordSource supplies the candidate words offered for a vote. Words is
// called with the registry lock held, so implementations must answer from
// memory and not block on I/O.
type WordSource interface {
	Words(ctx context.Context, n int) ([]string, error)
}

// Judge scores one round of drawings.
type Judge interface {
	Judge(ctx context.Context, word string, entries []judge.Entry) ([]judge.Result, error)
}

type Settings struct {
	MaxPlayers         int
	MinPlayers         int
	WordOptions        int
	DrawSeconds        int
	TickInterval       time.Duration
	GracePeriod        time.Duration
	TieRevealDelay     time.Duration
	TieFallbackDelay   time.Duration
	RematchIdleTimeout time.Duration
	HostLeftGrace      time.Duration
	JudgeTimeout       time.Duration
	MaxDrawingBytes    int
}

func SettingsFromConfig(cfg config.Config) Settings {
	return Settings{
		MaxPlayers:         cfg.MaxPlayers,
		MinPlayers:         cfg.MinPlayers,
		WordOptions:        cfg.WordOptions,
		DrawSeconds:        cfg.DrawDurationSeconds,
		TickInterval:       time.Second,
		GracePeriod:        cfg.Seconds(cfg.GraceSeconds),
		TieRevealDelay:     cfg.Seconds(cfg.TieRevealSeconds),
		TieFallbackDelay:   cfg.Seconds(cfg.TieFallbackSeconds),
		RematchIdleTimeout: cfg.Seconds(cfg.RematchIdleSeconds),
		HostLeftGrace:      cfg.Seconds(cfg.HostLeftGraceSeconds),
		JudgeTimeout:       cfg.Seconds(cfg.JudgeTimeoutSeconds),
		MaxDrawingBytes:    cfg.MaxDrawingBytes,
	}
}

func DefaultSettings() Settings {
	return SettingsFromConfig(config.Default())
}

type Option func(*Registry)

func WithScheduler(scheduler Scheduler) Option {
	return func(reg *Registry) {
		reg.scheduler = scheduler
	}
}

func WithCodeGenerator(next func() string) Option {
	return func(reg *Registry) {
		reg.newCode = next
	}
}

// WithRandom replaces the picker used to break ties. It must return a value
// in [0, n).
func WithRandom(pick func(n int) int) Option {
	return func(reg *Registry) {
		reg.pick = pick
	}
}

type Registry struct {
	mu         sync.Mutex
	rooms      map[string]*Room
	playerRoom map[string]string
	settings   Settings
	words      WordSource
	judge      Judge
	pub        Publisher
	scheduler  Scheduler
	newCode    func() string
	pick       func(n int) int
	judging    sync.WaitGroup
}

func NewRegistry(settings Settings, words WordSource, judgeSvc Judge, pub Publisher, opts ...Option) *Registry {
	if judgeSvc == nil {
		judgeSvc = judge.NewCoordinator(0, judge.Mock())
	}
	if pub == nil {
		pub = nopPublisher{}
	}
	reg := &Registry{
		rooms:      make(map[string]*Room),
		playerRoom: make(map[string]string),
		settings:   settings,
		words:      words,
		judge:      judgeSvc,
		pub:        pub,
		scheduler:  realScheduler{},
		newCode:    newRoomCode,
		pick:       rand.IntN,
	}
	for _, opt := range opts {
		opt(reg)
	}
	return reg
}

// Wait blocks until every in-flight judge call has been applied.
func (reg *Registry) Wait() {
	reg.judging.Wait()
}

func (reg *Registry) CreateRoom(playerID, name string) (string, View, error) {
	if playerID == "" {
		return "", View{}, validationError("player id is required")
	}
	name, err := validateName(name)
	if err != nil {
		return "", View{}, err
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()

	code, err := reg.uniqueCode()
	if err != nil {
		return "", View{}, err
	}
	reg.leaveLocked(playerID)
	room := newRoom(code, reg.settings.MaxPlayers)
	room.addPlayer(playerID, name, 0)
	reg.rooms[code] = room
	reg.playerRoom[playerID] = code

	view := room.view()
	reg.pub.Send(playerID, Event{Name: EventRoomCreated, Data: RoomEvent{Code: code, View: view}})
	log.Info().Str("code", code).Str("player_id", playerID).Msg("room created")
	return code, view, nil
}

func (reg *Registry) JoinRoom(code, playerID, name string) (View, error) {
	if playerID == "" {
		return View{}, validationError("player id is required")
	}
	code, err := normalizeCode(code)
	if err != nil {
		return View{}, err
	}
	name, err = validateName(name)
	if err != nil {
		return View{}, err
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()

	room, ok := reg.rooms[code]
	if !ok {
		return View{}, ErrNotFound
	}
	if reg.playerRoom[playerID] == code {
		view := room.view()
		reg.pub.Send(playerID, Event{Name: EventRoomJoined, Data: RoomEvent{Code: code, View: view}})
		return view, nil
	}
	if room.phase != PhaseLobby {
		return View{}, stateError("game already in progress")
	}
	if len(room.players) >= room.maxPlayers {
		return View{}, ErrRoomFull
	}
	if room.hasName(name) {
		return View{}, validationError("name is already taken in this room")
	}
	reg.leaveLocked(playerID)
	player := room.addPlayer(playerID, name, 0)
	reg.playerRoom[playerID] = code

	view := room.view()
	reg.pub.Send(playerID, Event{Name: EventRoomJoined, Data: RoomEvent{Code: code, View: view}})
	room.broadcastExcept(reg.pub, playerID, Event{Name: EventPlayerJoined, Data: PlayerEvent{Player: *player, View: view}})
	log.Info().Str("code", code).Str("player_id", playerID).Int("players", len(room.players)).Msg("player joined")
	return view, nil
}

func (reg *Registry) StartVoting(code, playerID string) error {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	room, err := reg.memberRoom(code, playerID)
	if err != nil {
		return err
	}
	if room.hostID != playerID {
		return stateError("only the host can start the game")
	}
	if room.phase != PhaseLobby {
		return stateError("voting has already started")
	}
	if len(room.players) < reg.settings.MinPlayers {
		return stateError("at least %d players are needed to start", reg.settings.MinPlayers)
	}
	ctx, cancel := context.WithTimeout(context.Background(), wordFetchTimeout)
	defer cancel()
	words, err := reg.words.Words(ctx, reg.settings.WordOptions)
	if err != nil || len(words) == 0 {
		log.Error().Err(err).Str("code", room.code).Msg("word options unavailable")
		return stateError("no words are available right now")
	}
	if err := room.transition(PhaseVoting); err != nil {
		return err
	}
	room.wordOptions = words
	room.votes = make(map[string]string)
	for _, player := range room.players {
		player.HasVoted = false
	}
	room.broadcast(reg.pub, Event{Name: EventVotingStarted, Data: RoomEvent{Code: room.code, View: room.view()}})
	log.Info().Str("code", room.code).Strs("words", words).Msg("voting started")
	return nil
}

func (reg *Registry) Vote(code, playerID, word string) error {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	room, err := reg.memberRoom(code, playerID)
	if err != nil {
		return err
	}
	if room.phase != PhaseVoting {
		return stateError("voting is not open")
	}
	if room.tie != nil {
		return stateError("votes are locked while the tie is broken")
	}
	word, err = normalizeWord(word)
	if err != nil {
		return err
	}
	option, ok := room.matchOption(word)
	if !ok {
		return validationError("%q is not one of the word options", word)
	}
	room.votes[playerID] = option
	room.players[playerID].HasVoted = true

	if room.allVoted() {
		reg.resolveVotes(room)
		return nil
	}
	room.broadcast(reg.pub, Event{Name: EventVoteUpdated, Data: RoomEvent{Code: room.code, View: room.view()}})
	return nil
}

// AckTieBreak records that a client finished the tie animation. Only the
// first ack matters; later ones and acks after the tie was settled are
// ignored.
func (reg *Registry) AckTieBreak(code, playerID string) error {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	room, err := reg.memberRoom(code, playerID)
	if err != nil {
		return err
	}
	if room.tie == nil {
		if room.phase == PhaseLobby {
			return stateError("no tie to acknowledge")
		}
		return nil
	}
	if room.tie.acked {
		return nil
	}
	room.tie.acked = true
	reg.stopTimer(room, timerTieFallback)
	reg.startTimer(room, timerTieReveal, reg.settings.TieRevealDelay, func() {
		reg.settleTie(room)
	})
	return nil
}

func (reg *Registry) SubmitDrawing(code, playerID, image string) error {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	room, err := reg.memberRoom(code, playerID)
	if err != nil {
		return err
	}
	if room.phase != PhaseDrawing {
		return stateError("drawings are not being accepted")
	}
	if _, done := room.drawings[playerID]; done {
		return nil
	}
	mime, data, err := decodeImageData(image, reg.settings.MaxDrawingBytes)
	if err != nil {
		return err
	}
	room.drawings[playerID] = drawing{mime: mime, data: data}
	room.players[playerID].HasSubmittedDrawing = true
	room.broadcast(reg.pub, Event{Name: EventDrawingSubmitted, Data: RoomEvent{Code: room.code, View: room.view()}})

	if room.allSubmitted() {
		reg.finishDrawing(room)
	}
	return nil
}

// RemovePlayer applies the disconnect policy. Unknown players are ignored.
func (reg *Registry) RemovePlayer(playerID string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	reg.leaveLocked(playerID)
}

func (reg *Registry) DestroyRoom(code string) error {
	code, err := normalizeCode(code)
	if err != nil {
		return err
	}
	reg.mu.Lock()
	defer reg.mu.Unlock()

	room, ok := reg.rooms[code]
	if !ok {
		return ErrNotFound
	}
	room.broadcast(reg.pub, Event{Name: EventRoomClosed, Data: ClosedEvent{Code: code, Reason: "closed"}})
	reg.destroyLocked(room)
	return nil
}

func (reg *Registry) Snapshot(code string) (View, error) {
	code, err := normalizeCode(code)
	if err != nil {
		return View{}, err
	}
	reg.mu.Lock()
	defer reg.mu.Unlock()

	room, ok := reg.rooms[code]
	if !ok {
		return View{}, ErrNotFound
	}
	return room.view(), nil
}

// RoomOf returns the code of the room the player is in.
func (reg *Registry) RoomOf(playerID string) (string, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	code, ok := reg.playerRoom[playerID]
	return code, ok
}

func (reg *Registry) Summaries() []Summary {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	out := make([]Summary, 0, len(reg.rooms))
	for _, room := range reg.rooms {
		out = append(out, room.summary())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Code < out[j].Code
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (reg *Registry) uniqueCode() (string, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code := reg.newCode()
		if _, taken := reg.rooms[code]; !taken {
			return code, nil
		}
	}
	return "", stateError("could not allocate a room code")
}

func (reg *Registry) memberRoom(code, playerID string) (*Room, error) {
	code, err := normalizeCode(code)
	if err != nil {
		return nil, err
	}
	room, ok := reg.rooms[code]
	if !ok {
		return nil, ErrNotFound
	}
	if _, ok := room.players[playerID]; !ok {
		return nil, notFoundError("player is not in this room")
	}
	return room, nil
}

func (reg *Registry) resolveVotes(room *Room) {
	tally := ResolveTie(room.voteCounts())
	if len(tally.TiedWords) == 0 {
		return
	}
	if !tally.IsTie {
		reg.beginDrawing(room, tally.TiedWords[0])
		return
	}
	room.tie = &tieBreak{words: tally.TiedWords}
	room.broadcast(reg.pub, Event{Name: EventTieBreakStarted, Data: TieBreakEvent{
		TiedWords: tally.TiedWords,
		MaxVotes:  tally.MaxVotes,
		View:      room.view(),
	}})
	reg.startTimer(room, timerTieFallback, reg.settings.TieFallbackDelay, func() {
		reg.settleTie(room)
	})
	log.Info().Str("code", room.code).Strs("tied_words", tally.TiedWords).Msg("vote tied")
}

func (reg *Registry) settleTie(room *Room) {
	if room.tie == nil {
		return
	}
	words := room.tie.words
	word := words[reg.pick(len(words))]
	room.tie = nil
	reg.stopTimer(room, timerTieFallback)
	reg.stopTimer(room, timerTieReveal)
	reg.beginDrawing(room, word)
}

func (reg *Registry) beginDrawing(room *Room, word string) {
	if err := room.transition(PhaseDrawing); err != nil {
		log.Error().Err(err).Str("code", room.code).Msg("drawing transition rejected")
		return
	}
	room.chosenWord = word
	room.timeRemaining = reg.settings.DrawSeconds
	room.drawings = make(map[string]drawing)
	for _, player := range room.players {
		player.HasSubmittedDrawing = false
	}
	room.broadcast(reg.pub, Event{Name: EventDrawingStarted, Data: RoomEvent{Code: room.code, View: room.view()}})
	reg.startTimer(room, timerCountdown, reg.settings.TickInterval, func() {
		reg.tick(room)
	})
	log.Info().Str("code", room.code).Str("word", word).Int("seconds", room.timeRemaining).Msg("drawing started")
}

func (reg *Registry) tick(room *Room) {
	if room.phase != PhaseDrawing {
		return
	}
	if room.timeRemaining > 0 {
		room.timeRemaining--
	}
	room.broadcast(reg.pub, Event{Name: EventTimerUpdate, Data: TimerEvent{TimeRemaining: room.timeRemaining}})
	if room.timeRemaining > 0 {
		reg.startTimer(room, timerCountdown, reg.settings.TickInterval, func() {
			reg.tick(room)
		})
		return
	}
	room.broadcast(reg.pub, Event{Name: EventDrawingTimeExpired, Data: RoomEvent{Code: room.code, View: room.view()}})
	if reg.settings.GracePeriod <= 0 {
		reg.finishDrawing(room)
		return
	}
	reg.startTimer(room, timerGrace, reg.settings.GracePeriod, func() {
		reg.finishDrawing(room)
	})
}

func (reg *Registry) finishDrawing(room *Room) {
	reg.stopTimer(room, timerCountdown)
	reg.stopTimer(room, timerGrace)
	if filled := room.autoFillMissingDrawings(); len(filled) > 0 {
		log.Info().Str("code", room.code).Strs("player_ids", filled).Msg("missing drawings auto-filled")
	}
	reg.beginJudging(room)
}

func (reg *Registry) beginJudging(room *Room) {
	if err := room.transition(PhaseJudging); err != nil {
		log.Error().Err(err).Str("code", room.code).Msg("judging transition rejected")
		return
	}
	room.judgeSeq++
	seq := room.judgeSeq
	word := room.chosenWord
	entries := room.judgeEntries()
	room.broadcast(reg.pub, Event{Name: EventJudgingStarted, Data: RoomEvent{Code: room.code, View: room.view()}})

	reg.judging.Add(1)
	go reg.runJudge(room, seq, word, entries)
}

func (reg *Registry) runJudge(room *Room, seq int, word string, entries []judge.Entry) {
	defer reg.judging.Done()

	ctx, cancel := context.WithTimeout(context.Background(), reg.settings.JudgeTimeout)
	results, err := reg.judge.Judge(ctx, word, entries)
	cancel()

	reg.mu.Lock()
	defer reg.mu.Unlock()
	if reg.rooms[room.code] != room || room.phase != PhaseJudging || room.judgeSeq != seq {
		return
	}
	if err != nil {
		var judgeErr *judge.Error
		if errors.As(err, &judgeErr) {
			room.failure = judgeErr.Message
		} else {
			room.failure = judge.Sanitize(err)
		}
		if err := room.transition(PhaseJudgingFailed); err != nil {
			return
		}
		room.broadcast(reg.pub, Event{Name: EventJudgingFailed, Data: RoomEvent{Code: room.code, View: room.view()}})
		log.Warn().Str("code", room.code).Str("error", room.failure).Msg("judging failed")
	} else {
		if err := room.transition(PhaseResults); err != nil {
			return
		}
		room.applyResults(results)
		room.broadcast(reg.pub, Event{Name: EventJudgingComplete, Data: RoomEvent{Code: room.code, View: room.view()}})
		log.Info().Str("code", room.code).Int("results", len(results)).Msg("judging complete")
	}
	reg.armIdle(room, reg.settings.RematchIdleTimeout)
}

// armIdle closes a finished room once nobody has touched it for d.
func (reg *Registry) armIdle(room *Room, d time.Duration) {
	reg.startTimer(room, timerIdle, d, func() {
		room.broadcast(reg.pub, Event{Name: EventRoomClosed, Data: ClosedEvent{Code: room.code, Reason: "idle"}})
		log.Info().Str("code", room.code).Msg("idle room closed")
		reg.destroyLocked(room)
	})
}

func (reg *Registry) leaveLocked(playerID string) {
	code, ok := reg.playerRoom[playerID]
	if !ok {
		return
	}
	delete(reg.playerRoom, playerID)
	room, ok := reg.rooms[code]
	if !ok {
		return
	}
	if !room.phase.Finished() {
		if playerID == room.hostID {
			room.broadcastExcept(reg.pub, playerID, Event{Name: EventRoomClosed, Data: ClosedEvent{Code: code, Reason: "host-left"}})
			log.Info().Str("code", code).Str("player_id", playerID).Str("phase", room.phase.String()).Msg("host left, room closed")
			reg.destroyLocked(room)
			return
		}
		player := room.removePlayer(playerID)
		if player == nil {
			return
		}
		room.broadcast(reg.pub, Event{Name: EventPlayerLeft, Data: PlayerEvent{Player: *player, View: room.view()}})
		log.Info().Str("code", code).Str("player_id", playerID).Str("phase", room.phase.String()).Msg("player left")
		switch {
		case room.phase == PhaseVoting && room.tie == nil && room.allVoted():
			reg.resolveVotes(room)
		case room.phase == PhaseDrawing && room.allSubmitted():
			reg.finishDrawing(room)
		}
		return
	}

	wasHost := playerID == room.hostID
	player := room.removePlayer(playerID)
	if player == nil {
		return
	}
	if len(room.players) == 0 {
		reg.destroyLocked(room)
		return
	}
	if wasHost {
		var preferred []string
		if room.rematch != nil {
			preferred = room.rematch.order
		}
		room.promoteHost(preferred)
		reg.armIdle(room, reg.settings.HostLeftGrace)
		log.Info().Str("code", code).Str("host_id", room.hostID).Msg("host promoted after results")
	}
	room.broadcast(reg.pub, Event{Name: EventPlayerLeft, Data: PlayerEvent{Player: *player, View: room.view()}})
}

func (reg *Registry) destroyLocked(room *Room) {
	room.closed = true
	reg.stopAllTimers(room)
	for _, id := range room.order {
		if reg.playerRoom[id] == room.code {
			delete(reg.playerRoom, id)
		}
	}
	if reg.rooms[room.code] == room {
		delete(reg.rooms, room.code)
	}
	log.Debug().Str("code", room.code).Msg("room destroyed")
}

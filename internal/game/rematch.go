package game

import "github.com/rs/zerolog/log"

// rematchSession tracks "play again" requests on a finished room. order keeps
// request order so the longest-waiting requester can be promoted to host.
// target is the lobby the host opened; codes are reused once a room is
// destroyed, so the session holds the room itself rather than its code.
type rematchSession struct {
	requests map[string]bool
	order    []string
	target   *Room
}

func newRematchSession() *rematchSession {
	return &rematchSession{requests: make(map[string]bool)}
}

func (s *rematchSession) request(playerID string) {
	if s.requests[playerID] {
		return
	}
	s.requests[playerID] = true
	s.order = append(s.order, playerID)
}

func (s *rematchSession) remove(playerID string) {
	if !s.requests[playerID] {
		return
	}
	delete(s.requests, playerID)
	for i, id := range s.order {
		if id == playerID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return
		}
	}
}

// lobby returns the rematch lobby while it still accepts players and
// forgets it otherwise, so the next request starts a fresh rematch.
func (s *rematchSession) lobby() *Room {
	if s.target != nil && (s.target.closed || s.target.phase != PhaseLobby) {
		s.target = nil
	}
	return s.target
}

func (s *rematchSession) status(r *Room) RematchStatus {
	status := RematchStatus{
		Requested:   append([]string{}, s.order...),
		PlayerCount: len(r.players),
	}
	if target := s.lobby(); target != nil {
		status.NewCode = target.code
		status.HostReady = true
	}
	return status
}

// PlayAgain records a rematch request from a finished room. The host's
// request opens a new lobby and brings every requester along; a request
// after that moves the player straight into the new lobby.
func (reg *Registry) PlayAgain(code, playerID string) error {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	room, err := reg.memberRoom(code, playerID)
	if err != nil {
		return err
	}
	if !room.phase.Finished() {
		return stateError("play again is only available after the round")
	}
	if room.rematch == nil {
		room.rematch = newRematchSession()
	}
	session := room.rematch

	if target := session.lobby(); target != nil {
		if len(target.players) >= target.maxPlayers {
			return ErrRoomFull
		}
		if target.hasName(room.players[playerID].Name) {
			return validationError("name is already taken in the new lobby")
		}
		reg.movePlayer(room, target, playerID)
		view := target.view()
		reg.pub.Send(playerID, Event{Name: EventPlayAgainLobby, Data: RematchLobbyEvent{NewCode: target.code, View: view}})
		moved := target.players[playerID]
		target.broadcastExcept(reg.pub, playerID, Event{Name: EventPlayerJoined, Data: PlayerEvent{Player: *moved, View: view}})
		reg.armIdle(room, reg.settings.RematchIdleTimeout)
		reg.afterMoves(room, []Player{*moved})
		return nil
	}

	session.request(playerID)
	reg.armIdle(room, reg.settings.RematchIdleTimeout)

	if playerID != room.hostID {
		room.broadcast(reg.pub, Event{Name: EventPlayAgainWaiting, Data: RematchWaitingEvent{Status: session.status(room)}})
		return nil
	}

	newCode, err := reg.uniqueCode()
	if err != nil {
		return err
	}
	target := newRoom(newCode, reg.settings.MaxPlayers)
	reg.rooms[newCode] = target
	session.target = target

	movers := []string{playerID}
	for _, id := range append([]string{}, session.order...) {
		if id != playerID {
			movers = append(movers, id)
		}
	}
	moved := make([]Player, 0, len(movers))
	for _, id := range movers {
		if len(target.players) >= target.maxPlayers {
			break
		}
		moved = append(moved, *room.players[id])
		reg.movePlayer(room, target, id)
	}
	view := target.view()
	for _, player := range moved {
		reg.pub.Send(player.ID, Event{Name: EventPlayAgainLobby, Data: RematchLobbyEvent{NewCode: newCode, View: view}})
	}
	log.Info().Str("code", room.code).Str("new_code", newCode).Int("players", len(moved)).Msg("rematch lobby created")
	reg.afterMoves(room, moved)
	return nil
}

// movePlayer carries a player and their score from a finished room into a
// lobby. The first player moved into an empty lobby becomes its host.
func (reg *Registry) movePlayer(from, to *Room, playerID string) {
	player := from.removePlayer(playerID)
	if player == nil {
		return
	}
	to.addPlayer(playerID, player.Name, player.Score)
	reg.playerRoom[playerID] = to.code
}

func (reg *Registry) afterMoves(room *Room, moved []Player) {
	if len(room.players) == 0 {
		reg.destroyLocked(room)
		return
	}
	if _, ok := room.players[room.hostID]; !ok {
		var preferred []string
		if room.rematch != nil {
			preferred = room.rematch.order
		}
		room.promoteHost(preferred)
	}
	view := room.view()
	for _, player := range moved {
		room.broadcast(reg.pub, Event{Name: EventPlayerLeft, Data: PlayerEvent{Player: player, View: view}})
	}
}

package server

import (
	"encoding/json"
	"errors"
	"time"

	"doodle-judge/internal/game"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	messageInvalid   = "invalid message"
	messageRateLimit = "slow down"
	messageInternal  = "something went wrong"
)

func (s *Server) handleWebsocket(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Debug().Err(err).Msg("websocket upgrade failed")
		return
	}
	limiter := rate.NewLimiter(rate.Limit(s.cfg.EventsPerSecond), s.cfg.EventBurst)
	cl := newClient(uuid.NewString(), conn, limiter)
	s.hub.add(cl)
	go cl.writePump()
	log.Info().Str("player_id", cl.id).Str("remote", c.Request.RemoteAddr).Msg("ws connected")

	s.hub.Send(cl.id, game.Event{Name: eventConnected, Data: connectedPayload{PlayerID: cl.id}})
	go s.readPump(cl)
}

// readPump feeds inbound events to the registry until the socket fails, then
// applies the disconnect policy.
func (s *Server) readPump(cl *client) {
	defer func() {
		s.hub.remove(cl)
		s.reg.RemovePlayer(cl.id)
		cl.close()
	}()
	cl.conn.SetReadLimit(int64(s.maxMessageBytes()))
	_ = cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	cl.conn.SetPongHandler(func(string) error {
		return cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, payload, err := cl.conn.ReadMessage()
		if err != nil {
			log.Info().Str("player_id", cl.id).Err(err).Msg("ws disconnected")
			return
		}
		_ = cl.conn.SetReadDeadline(time.Now().Add(pongWait))
		if !cl.limiter.Allow() {
			s.sendError(cl.id, &requestError{message: messageRateLimit})
			continue
		}
		if err := s.dispatch(cl.id, payload); err != nil {
			s.sendError(cl.id, err)
		}
	}
}

// maxMessageBytes leaves room for base64 growth of the largest drawing.
func (s *Server) maxMessageBytes() int {
	return s.cfg.MaxDrawingBytes*4/3 + 4096
}

func (s *Server) dispatch(playerID string, payload []byte) error {
	var msg inboundMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return &requestError{message: messageInvalid}
	}
	switch msg.Event {
	case eventCreateRoom:
		var req createRoomRequest
		if err := bindPayload(msg.Data, &req, payloadMessages, messageInvalid); err != nil {
			return err
		}
		_, _, err := s.reg.CreateRoom(playerID, req.PlayerName)
		return err
	case eventJoinRoom:
		var req joinRoomRequest
		if err := bindPayload(msg.Data, &req, payloadMessages, messageInvalid); err != nil {
			return err
		}
		_, err := s.reg.JoinRoom(req.Code, playerID, req.PlayerName)
		return err
	case eventStartVoting:
		var req roomRequest
		if err := bindPayload(msg.Data, &req, payloadMessages, messageInvalid); err != nil {
			return err
		}
		return s.reg.StartVoting(req.Code, playerID)
	case eventVoteWord:
		var req voteRequest
		if err := bindPayload(msg.Data, &req, payloadMessages, messageInvalid); err != nil {
			return err
		}
		return s.reg.Vote(req.Code, playerID, req.Word)
	case eventTieBreakAck:
		var req roomRequest
		if err := bindPayload(msg.Data, &req, payloadMessages, messageInvalid); err != nil {
			return err
		}
		return s.reg.AckTieBreak(req.Code, playerID)
	case eventSubmitDrawing:
		var req submitDrawingRequest
		if err := bindPayload(msg.Data, &req, payloadMessages, messageInvalid); err != nil {
			return err
		}
		return s.reg.SubmitDrawing(req.Code, playerID, req.Image)
	case eventPlayAgain:
		var req roomRequest
		if err := bindPayload(msg.Data, &req, payloadMessages, messageInvalid); err != nil {
			return err
		}
		return s.reg.PlayAgain(req.Code, playerID)
	default:
		return &requestError{message: "unknown event"}
	}
}

// sendError reports a rejected event to its sender only. Registry and
// request errors carry a player-safe message; anything else is replaced.
func (s *Server) sendError(playerID string, err error) {
	message := err.Error()
	var gameErr *game.Error
	var reqErr *requestError
	if !errors.As(err, &gameErr) && !errors.As(err, &reqErr) {
		log.Error().Err(err).Str("player_id", playerID).Msg("event failed")
		message = messageInternal
	}
	s.hub.Send(playerID, game.Event{Name: game.EventError, Data: game.ErrorEvent{Message: message}})
}

package server

import "encoding/json"

const (
	eventCreateRoom    = "create-room"
	eventJoinRoom      = "join-room"
	eventStartVoting   = "start-voting"
	eventVoteWord      = "vote-word"
	eventTieBreakAck   = "tiebreaker-ack"
	eventSubmitDrawing = "submit-drawing"
	eventPlayAgain     = "play-again"

	eventConnected = "connected"
)

type inboundMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type connectedPayload struct {
	PlayerID string `json:"player_id"`
}

type createRoomRequest struct {
	PlayerName string `json:"player_name" binding:"required,name"`
}

type joinRoomRequest struct {
	Code       string `json:"code" binding:"required,roomcode"`
	PlayerName string `json:"player_name" binding:"required,name"`
}

type roomRequest struct {
	Code string `json:"code" binding:"required,roomcode"`
}

type voteRequest struct {
	Code string `json:"code" binding:"required,roomcode"`
	Word string `json:"word" binding:"required,max=40"`
}

type submitDrawingRequest struct {
	Code  string `json:"code" binding:"required,roomcode"`
	Image string `json:"image" binding:"required"`
}

type roomURI struct {
	Code string `uri:"code" binding:"required,roomcode"`
}

var payloadMessages = bindMessages{
	"PlayerName": {
		"required": "player name is required",
		"name":     "player name must be 1-20 letters, numbers or simple punctuation",
	},
	"Code": {
		"required": "room code is required",
		"roomcode": "room code must be 6 characters",
	},
	"Word": {
		"required": "word is required",
		"max":      "word is too long",
	},
	"Image": {
		"required": "drawing is required",
	},
}

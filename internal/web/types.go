package web

import "time"

type RoomSummary struct {
	Code       string
	Phase      string
	Players    int
	MaxPlayers int
	CreatedAt  time.Time
}

package server

import (
	"errors"
	"net/http"

	"doodle-judge/internal/game"
	"doodle-judge/internal/web"

	"github.com/a-h/templ"
	"github.com/gin-gonic/gin"
)

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"rooms":   len(s.reg.Summaries()),
		"clients": s.hub.Len(),
	})
}

func (s *Server) handleListRooms(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"rooms": s.reg.Summaries()})
}

func (s *Server) handleGetRoom(c *gin.Context) {
	var req roomURI
	if !bindURI(c, &req) {
		return
	}
	view, err := s.reg.Snapshot(req.Code)
	if err != nil {
		if errors.Is(err, game.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) handleHome(c *gin.Context) {
	summaries := s.reg.Summaries()
	rooms := make([]web.RoomSummary, 0, len(summaries))
	for _, summary := range summaries {
		rooms = append(rooms, web.RoomSummary{
			Code:       summary.Code,
			Phase:      summary.Phase.String(),
			Players:    summary.Players,
			MaxPlayers: summary.MaxPlayers,
			CreatedAt:  summary.CreatedAt,
		})
	}
	templ.Handler(web.Home(rooms)).ServeHTTP(c.Writer, c.Request)
}

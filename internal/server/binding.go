package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

type bindMessages map[string]map[string]string

// requestError is a rejection whose message is safe to show the sender.
type requestError struct {
	message string
}

func (e *requestError) Error() string {
	return e.message
}

func bindURI(c *gin.Context, req any) bool {
	if err := c.ShouldBindUri(req); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return false
	}
	return true
}

// bindPayload decodes an event payload and runs the same struct validation
// gin applies to request bodies.
func bindPayload(raw json.RawMessage, req any, messages bindMessages, fallback string) error {
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}
	if err := json.Unmarshal(raw, req); err != nil {
		return &requestError{message: fallback}
	}
	if err := binding.Validator.ValidateStruct(req); err != nil {
		return &requestError{message: resolveBindError(err, messages, fallback)}
	}
	return nil
}

func resolveBindError(err error, messages bindMessages, fallback string) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, verr := range verrs {
			if fieldMsgs, ok := messages[verr.Field()]; ok {
				if msg, ok := fieldMsgs[verr.Tag()]; ok {
					return msg
				}
			}
		}
	}
	if fallback != "" {
		return fallback
	}
	return "invalid request"
}

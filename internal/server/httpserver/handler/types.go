package handler

import (
	"time"

	"github.com/yndnr/sigstream/internal/core/domain"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
	Timestamp int64  `json:"timestamp"`
	Details   string `json:"details,omitempty"`
}

// NewErrorResponse creates an error response stamped with the current time.
func NewErrorResponse(requestID, code, message, details string) *ErrorResponse {
	return &ErrorResponse{
		Code:      code,
		Message:   message,
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
		Details:   details,
	}
}

// StreamMessagesResponse is the body of GET /streams/{id}/messages.
type StreamMessagesResponse struct {
	ID       domain.StreamAddress `json:"id"`
	Messages []domain.Message     `json:"messages"`
}

// HealthResponse is the body of GET /health and GET /ready.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

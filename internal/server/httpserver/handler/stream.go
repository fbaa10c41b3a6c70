package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/yndnr/sigstream/internal/core/domain"
	"github.com/yndnr/sigstream/internal/core/service"
)

// maxMessageBody bounds POST bodies. A message object is a few hundred bytes.
const maxMessageBody = 64 << 10

// streamSegment returns the {id} segment as it appeared on the wire, before
// any percent-decoding by the router.
func streamSegment(r *http.Request) string {
	parts := strings.Split(r.URL.EscapedPath(), "/")
	if len(parts) >= 3 && parts[1] == "streams" {
		return parts[2]
	}
	return r.PathValue("id")
}

// parseOffset returns the offset query value, or 0 when absent or not a u32.
func parseOffset(r *http.Request) uint32 {
	v, err := strconv.ParseUint(r.URL.Query().Get("offset"), 10, 32)
	if err != nil {
		return 0
	}
	return uint32(v)
}

// parseLimit returns the limit query value, or nil when absent or not a u8.
func parseLimit(r *http.Request) *uint8 {
	v, err := strconv.ParseUint(r.URL.Query().Get("limit"), 10, 8)
	if err != nil {
		return nil
	}
	limit := uint8(v)
	return &limit
}

// handleListMessages handles GET /streams/{id}/messages.
//
// limit is the inclusive index of the last message returned, not a count.
func (h *Handler) handleListMessages(w http.ResponseWriter, r *http.Request) {
	stream, err := domain.ParseStreamAddress(streamSegment(r))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	resp, err := h.messages.List(r.Context(), &service.ListMessagesRequest{
		Stream: stream,
		Offset: parseOffset(r),
		Limit:  parseLimit(r),
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, StreamMessagesResponse{
		ID:       resp.Stream,
		Messages: resp.Messages,
	})
}

// handleAppendMessage handles POST /streams/{id}/messages.
// Success is 200 with an empty body.
func (h *Handler) handleAppendMessage(w http.ResponseWriter, r *http.Request) {
	stream, err := domain.ParseStreamAddress(streamSegment(r))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	msg, err := decodeMessage(w, r)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	if _, err := h.messages.Append(r.Context(), &service.AppendMessageRequest{
		Stream:  stream,
		Message: msg,
	}); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func decodeMessage(w http.ResponseWriter, r *http.Request) (domain.Message, error) {
	var msg domain.Message
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxMessageBody))
	if err := dec.Decode(&msg); err != nil {
		var de *domain.DomainError
		if errors.As(err, &de) {
			return domain.Message{}, err
		}
		return domain.Message{}, domain.ErrInvalidBody.WithCause(err)
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return domain.Message{}, domain.ErrInvalidBody.WithDetails("unexpected data after JSON body")
	}
	return msg, nil
}

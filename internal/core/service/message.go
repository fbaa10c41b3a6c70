package service

import (
	"context"

	"github.com/yndnr/sigstream/internal/core/domain"
	"github.com/yndnr/sigstream/internal/telemetry/metric"
)

// DefaultLimit is the stop index used when a read does not specify one.
const DefaultLimit uint8 = 100

// MessageRepository is the storage a MessageService needs.
type MessageRepository interface {
	// Append adds blobs at the tail of the stream and returns the new length.
	Append(ctx context.Context, key domain.StreamAddress, blobs ...[]byte) (int64, error)

	// Range returns stream elements start..stop, stop inclusive.
	Range(ctx context.Context, key domain.StreamAddress, start, stop int64) ([][]byte, error)
}

// MessageService appends and reads signed messages.
type MessageService struct {
	repo         MessageRepository
	metrics      *metric.Registry
	defaultLimit uint8
}

// Option configures a MessageService.
type Option func(*MessageService)

// WithMetrics records operation counts on r.
func WithMetrics(r *metric.Registry) Option {
	return func(s *MessageService) {
		s.metrics = r
	}
}

// WithDefaultLimit overrides DefaultLimit.
func WithDefaultLimit(limit uint8) Option {
	return func(s *MessageService) {
		s.defaultLimit = limit
	}
}

// NewMessageService creates a new MessageService.
func NewMessageService(repo MessageRepository, opts ...Option) *MessageService {
	s := &MessageService{
		repo:         repo,
		defaultLimit: DefaultLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DefaultLimit returns the stop index applied when a request has none.
func (s *MessageService) DefaultLimit() uint8 {
	return s.defaultLimit
}

// ListMessagesRequest selects a slice of a stream.
//
// Offset is the index of the first message. Limit is the index of the last
// message, inclusive, not a count: Offset=1, Limit=1 returns one message.
// A nil Limit means DefaultLimit.
type ListMessagesRequest struct {
	Stream domain.StreamAddress
	Offset uint32
	Limit  *uint8
}

// ListMessagesResponse is the result of List.
type ListMessagesResponse struct {
	Stream   domain.StreamAddress
	Messages []domain.Message
}

// List reads messages Offset..Limit from a stream. A stream that was never
// written is empty, not an error.
func (s *MessageService) List(ctx context.Context, req *ListMessagesRequest) (*ListMessagesResponse, error) {
	stop := s.defaultLimit
	if req.Limit != nil {
		stop = *req.Limit
	}

	blobs, err := s.repo.Range(ctx, req.Stream, int64(req.Offset), int64(stop))
	if err != nil {
		s.recordError("list", err)
		return nil, err
	}

	messages := make([]domain.Message, 0, len(blobs))
	for _, blob := range blobs {
		m, err := domain.UnpackMessage(blob)
		if err != nil {
			s.recordError("list", err)
			return nil, err
		}
		messages = append(messages, m)
	}

	s.metrics.AddMessagesRead(len(messages))
	return &ListMessagesResponse{Stream: req.Stream, Messages: messages}, nil
}

// AppendMessageRequest carries one message for a stream.
type AppendMessageRequest struct {
	Stream  domain.StreamAddress
	Message domain.Message
}

// AppendMessageResponse is the result of Append.
type AppendMessageResponse struct {
	// Length is the stream length after the append.
	Length int64
}

// Append packs the message and appends it to the stream, creating the stream
// if needed.
func (s *MessageService) Append(ctx context.Context, req *AppendMessageRequest) (*AppendMessageResponse, error) {
	length, err := s.repo.Append(ctx, req.Stream, req.Message.Pack())
	if err != nil {
		s.recordError("append", err)
		return nil, err
	}

	s.metrics.IncMessagesAppended()
	return &AppendMessageResponse{Length: length}, nil
}

func (s *MessageService) recordError(op string, err error) {
	code := domain.GetErrorCode(err)
	if code == "" {
		code = "store"
	}
	s.metrics.RecordMessageError(op, code)
}

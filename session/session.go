// Package session composes the history log, the metrics tracker and a
// completion provider into one chat session with save/load/clone.
package session

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/erossel/convo/config"
	"github.com/erossel/convo/content"
	"github.com/erossel/convo/core"
	"github.com/erossel/convo/history"
	"github.com/erossel/convo/metrics"
	"github.com/erossel/convo/provider"
)

// Session owns one history log and one metrics tracker and talks to the
// model through a Completer. A session is meant for a single caller at a
// time; there is no internal locking.
type Session struct {
	id           string
	model        string
	systemPrompt string
	completer    provider.Completer
	history      *history.Log
	metrics      *metrics.Tracker
	logger       *slog.Logger
}

type Option func(*Session)

func WithModel(model string) Option {
	return func(s *Session) { s.model = model }
}

func WithSystemPrompt(prompt string) Option {
	return func(s *Session) { s.systemPrompt = prompt }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) { s.logger = logger }
}

// New creates an empty session. A non-empty system prompt becomes node 0.
func New(completer provider.Completer, opts ...Option) *Session {
	session := &Session{
		id:        uuid.NewString(),
		model:     config.DefaultModel,
		completer: completer,
		history:   history.New(),
		metrics:   metrics.New(),
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		opt(session)
	}

	if session.systemPrompt != "" {
		session.history.SetSystem([]content.Part{content.Text(session.systemPrompt)})
	}

	return session
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) Model() string {
	return s.model
}

func (s *Session) SystemPrompt() string {
	return s.systemPrompt
}

// History exposes the node log for inspection and toggling.
func (s *Session) History() *history.Log {
	return s.history
}

// Metrics exposes the per-request usage records.
func (s *Session) Metrics() *metrics.Tracker {
	return s.metrics
}

// SetSystemPrompt records a new system node and deactivates the previous
// one. Returns the new node's id.
func (s *Session) SetSystemPrompt(prompt string) int {
	s.systemPrompt = prompt
	return s.history.SetSystem([]content.Part{content.Text(prompt)})
}

// Chat sends the active context plus the given parts to the model and logs
// the exchange. Parts are plain strings or content.Part values, in any mix.
//
// The user node is appended before the request, so a failed call still
// leaves the attempted input in the history; only a successful call appends
// the assistant node and a metric record.
func (s *Session) Chat(ctx context.Context, parts ...any) (string, error) {
	normalized, err := normalizeParts(parts)
	if err != nil {
		return "", err
	}

	userID := s.history.Append(core.RoleUser, normalized)
	activeCount := s.history.ActiveLen()

	completion, err := s.completer.Complete(ctx, s.model, s.history.Messages())
	if err != nil {
		s.logger.Error("chat turn failed", "session_id", s.id, "user_node", userID, "error", err)
		return "", err
	}

	assistantID := s.history.Append(core.RoleAssistant, []content.Part{content.Text(completion.Content)})

	model := completion.Model
	if model == "" {
		model = s.model
	}

	s.metrics.Add(metrics.Record{
		NodeID:      assistantID,
		Model:       model,
		Usage:       completion.Usage,
		ActiveNodes: activeCount,
	})

	s.logger.Debug("chat turn complete",
		"session_id", s.id,
		"user_node", userID,
		"assistant_node", assistantID,
		"total_tokens", completion.Usage.TotalTokens,
	)

	return completion.Content, nil
}

// Clear deactivates every node without deleting anything; the active system
// node survives unless includeSystem is set.
func (s *Session) Clear(includeSystem bool) {
	s.history.Deactivate(includeSystem)
}

// Clone returns a fully independent copy of the session state under a new
// id. The completer and logger are shared; history and metrics are not.
func (s *Session) Clone() *Session {
	return &Session{
		id:           uuid.NewString(),
		model:        s.model,
		systemPrompt: s.systemPrompt,
		completer:    s.completer,
		history:      s.history.Clone(),
		metrics:      s.metrics.Clone(),
		logger:       s.logger,
	}
}

func normalizeParts(parts []any) ([]content.Part, error) {
	if len(parts) == 0 {
		return nil, core.ErrEmptyMessage
	}

	normalized := make([]content.Part, 0, len(parts))
	for i, part := range parts {
		switch v := part.(type) {
		case string:
			normalized = append(normalized, content.Text(v))
		case content.Part:
			if err := v.Validate(); err != nil {
				return nil, fmt.Errorf("%w: argument %d: %v", core.ErrUnsupportedPart, i, err)
			}
			normalized = append(normalized, v)
		default:
			return nil, fmt.Errorf("%w: argument %d has type %T", core.ErrUnsupportedPart, i, part)
		}
	}

	return normalized, nil
}

package session

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"github.com/erossel/convo/core"
	"github.com/erossel/convo/history"
	"github.com/erossel/convo/metrics"
	"github.com/erossel/convo/provider"
)

// snapshot is the persisted session document. The history field is required
// on load; next_id keeps removed ids retired across a round trip.
type snapshot struct {
	SessionID    string           `json:"session_id,omitempty"`
	Model        string           `json:"model"`
	SystemPrompt string           `json:"system_prompt,omitempty"`
	NextID       int              `json:"next_id"`
	History      []history.Node   `json:"history"`
	Metrics      []metrics.Record `json:"metrics"`
}

// Save writes the full session state as a JSON document at path.
func (s *Session) Save(path string) error {
	snap := snapshot{
		SessionID:    s.id,
		Model:        s.model,
		SystemPrompt: s.systemPrompt,
		NextID:       s.history.NextID(),
		History:      s.history.Nodes(),
		Metrics:      s.metrics.Records(),
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}

	return nil
}

// Load reconstructs a session from a JSON document written by Save, keeping
// all node ids and active flags intact. Documents without a history field,
// with duplicate node ids, or with unknown roles are rejected.
func Load(path string, completer provider.Completer, opts ...Option) (*Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read session file: %w", err)
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrInvalidSnapshot, err)
	}

	// json leaves the slice nil only when the field is absent or null; an
	// empty history marshals as [].
	if snap.History == nil {
		return nil, fmt.Errorf("%w: missing history", core.ErrInvalidSnapshot)
	}

	if snap.Model == "" {
		return nil, fmt.Errorf("%w: missing model", core.ErrInvalidSnapshot)
	}

	log, err := history.Restore(snap.History, snap.NextID)
	if err != nil {
		return nil, err
	}

	session := &Session{
		id:           snap.SessionID,
		model:        snap.Model,
		systemPrompt: snap.SystemPrompt,
		completer:    completer,
		history:      log,
		metrics:      metrics.Restore(snap.Metrics),
		logger:       slog.Default(),
	}

	if session.id == "" {
		session.id = uuid.NewString()
	}

	for _, opt := range opts {
		opt(session)
	}

	return session, nil
}

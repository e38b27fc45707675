// Package provider talks to the remote completion API. Transport, auth and
// retries belong to the underlying SDK; this layer only maps messages out
// and completions back.
package provider

import (
	"context"

	"github.com/erossel/convo/core"
)

// Completer sends an ordered message list to a model and returns its reply
// with the token usage breakdown.
type Completer interface {
	Complete(ctx context.Context, model string, messages []core.Message) (core.Completion, error)
}

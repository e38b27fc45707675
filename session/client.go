package session

import (
	"log/slog"

	"github.com/erossel/convo/config"
	"github.com/erossel/convo/provider"
)

// Client holds one configured completion transport and hands out sessions
// bound to it. Sessions created from the same client share the transport
// but nothing else.
type Client struct {
	cfg       config.Config
	completer provider.Completer
	logger    *slog.Logger
}

type ClientOption func(*Client)

// WithCompleter swaps the transport, e.g. for a fake in tests.
func WithCompleter(completer provider.Completer) ClientOption {
	return func(c *Client) { c.completer = completer }
}

func WithClientLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) { c.logger = logger }
}

func NewClient(cfg config.Config, opts ...ClientOption) *Client {
	client := &Client{
		cfg:    cfg,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.completer == nil {
		client.completer = provider.NewOpenAI(cfg)
	}

	return client
}

// NewSession starts a fresh session using the client's default model unless
// overridden by options.
func (c *Client) NewSession(opts ...Option) *Session {
	base := []Option{WithModel(c.cfg.Model), WithLogger(c.logger)}
	return New(c.completer, append(base, opts...)...)
}

// LoadSession restores a saved session and binds it to this client's
// transport.
func (c *Client) LoadSession(path string) (*Session, error) {
	return Load(path, c.completer, WithLogger(c.logger))
}

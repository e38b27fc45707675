package provider

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/erossel/convo/core"
)

// RequestLogger appends request/response records to daily JSONL files for
// offline inspection of what was actually sent to the model.
type RequestLogger struct {
	logDir       string
	logRequests  bool
	logResponses bool
	logger       *slog.Logger
}

type LogEntry struct {
	Timestamp  string           `json:"timestamp"`
	RequestID  string           `json:"request_id"`
	Type       string           `json:"type"`
	Model      string           `json:"model,omitempty"`
	Messages   []core.Message   `json:"messages,omitempty"`
	Completion *core.Completion `json:"completion,omitempty"`
	Duration   string           `json:"duration,omitempty"`
	Error      string           `json:"error,omitempty"`
	StatusCode int              `json:"status_code,omitempty"`
}

func NewRequestLogger(logDir string, logRequests, logResponses bool, logger *slog.Logger) *RequestLogger {
	return &RequestLogger{
		logDir:       logDir,
		logRequests:  logRequests,
		logResponses: logResponses,
		logger:       logger,
	}
}

func (l *RequestLogger) LogRequest(requestID core.RequestID, model string, messages []core.Message) {
	if !l.logRequests {
		return
	}

	entry := LogEntry{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		RequestID: string(requestID),
		Type:      "request",
		Model:     model,
		Messages:  messages,
	}

	l.writeLog(entry)
	l.logger.Debug("completion request", "request_id", requestID, "model", model, "message_count", len(messages))
}

func (l *RequestLogger) LogResponse(requestID core.RequestID, completion core.Completion, duration time.Duration) {
	if !l.logResponses {
		return
	}

	entry := LogEntry{
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		RequestID:  string(requestID),
		Type:       "response",
		Completion: &completion,
		Duration:   duration.String(),
	}

	l.writeLog(entry)
}

func (l *RequestLogger) LogError(requestID core.RequestID, statusCode int, err error, messages []core.Message) {
	entry := LogEntry{
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		RequestID:  string(requestID),
		Type:       "error",
		StatusCode: statusCode,
		Error:      err.Error(),
		Messages:   messages,
	}

	l.writeLog(entry)

	l.logger.Error("completion request failed",
		"request_id", requestID,
		"status_code", statusCode,
		"error", err,
		"message_count", len(messages),
	)
}

func (l *RequestLogger) writeLog(entry LogEntry) {
	if l.logDir == "" {
		return
	}

	_ = os.MkdirAll(l.logDir, 0o755)

	logFile := filepath.Join(l.logDir, fmt.Sprintf("completion_%s.jsonl", time.Now().Format("2006-01-02")))

	data, _ := json.Marshal(entry)
	f, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	defer f.Close()

	_, _ = f.Write(data)
	_, _ = f.WriteString("\n")
}

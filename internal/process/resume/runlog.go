package resume

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/newsdesk/resume-service/internal/core/domain"
)

// RunLog is the append-only log of one pipeline run. Entries are returned to
// the caller and mirrored to the service logger.
type RunLog struct {
	mu      sync.Mutex
	entries []domain.LogEntry
	logger  zerolog.Logger
	now     func() time.Time
}

// NewRunLog creates a log tagged with requestID.
func NewRunLog(requestID string, logger *zerolog.Logger) *RunLog {
	base := zerolog.Nop()
	if logger != nil {
		base = *logger
	}

	return &RunLog{
		entries: make([]domain.LogEntry, 0),
		logger:  base.With().Str(logKeyRequestID, requestID).Logger(),
		now:     time.Now,
	}
}

// SetOrganization tags subsequent mirrored entries with the organization.
func (l *RunLog) SetOrganization(organizationID string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.logger = l.logger.With().Str(logKeyOrg, organizationID).Logger()
}

// Logger returns the service logger tagged with the run's identifiers.
func (l *RunLog) Logger() *zerolog.Logger {
	l.mu.Lock()
	defer l.mu.Unlock()

	logger := l.logger

	return &logger
}

// Info appends an info entry.
func (l *RunLog) Info(msg string, data map[string]any) {
	l.append(domain.LogLevelInfo, msg, data)
}

// Warn appends a warning entry.
func (l *RunLog) Warn(msg string, data map[string]any) {
	l.append(domain.LogLevelWarn, msg, data)
}

// Error appends an error entry.
func (l *RunLog) Error(msg string, data map[string]any) {
	l.append(domain.LogLevelError, msg, data)
}

// Entries returns a copy of the entries in append order. Never nil.
func (l *RunLog) Entries() []domain.LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]domain.LogEntry, len(l.entries))
	copy(out, l.entries)

	return out
}

func (l *RunLog) append(level, msg string, data map[string]any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, domain.LogEntry{
		Level:     level,
		Message:   msg,
		Timestamp: l.now().UTC(),
		Data:      data,
	})

	var event *zerolog.Event

	switch level {
	case domain.LogLevelWarn:
		event = l.logger.Warn()
	case domain.LogLevelError:
		event = l.logger.Error()
	default:
		event = l.logger.Info()
	}

	event.Fields(data).Msg(msg)
}

package pipeline

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"salesetl/internal/errs"
)

// Session is the per-run context handed to every stage: a run ID that tags
// every log line, the job name used as metrics label, and the start time.
// It holds no connections; stages open and release their own.
type Session struct {
	RunID   string
	Job     string
	Log     *zap.Logger
	Started time.Time
}

// NewSession starts a run. A nil logger is replaced with a no-op one.
func NewSession(job string, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	id := uuid.NewString()
	s := &Session{
		RunID:   id,
		Job:     job,
		Log:     log.With(zap.String("run_id", id), zap.String("job", job)),
		Started: time.Now(),
	}
	s.Log.Info("run started")
	return s
}

// Close logs the run summary. err is the run's outcome.
func (s *Session) Close(err error) {
	elapsed := time.Since(s.Started).Truncate(time.Millisecond)
	if err != nil {
		s.Log.Error("run failed",
			zap.String("error_kind", errs.Kind(err)),
			zap.Duration("elapsed", elapsed),
			zap.Error(err))
		return
	}
	s.Log.Info("run finished", zap.Duration("elapsed", elapsed))
}

package iam

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// PurgeRecorder observes how many sessions each purge removed.
type PurgeRecorder interface {
	RecordSessionsPurged(n int)
}

// SessionPurger periodically deletes expired and revoked sessions.
type SessionPurger struct {
	cron     *cron.Cron
	svc      Service
	logger   logrus.FieldLogger
	recorder PurgeRecorder
	timeout  time.Duration
}

// NewSessionPurger schedules PurgeSessions on schedule, a standard cron
// expression or descriptor such as "@hourly".
func NewSessionPurger(svc Service, schedule string, logger logrus.FieldLogger, recorder PurgeRecorder) (*SessionPurger, error) {
	p := &SessionPurger{
		cron:     cron.New(),
		svc:      svc,
		logger:   logger,
		recorder: recorder,
		timeout:  time.Minute,
	}
	if _, err := p.cron.AddFunc(schedule, p.run); err != nil {
		return nil, fmt.Errorf("invalid purge schedule %q: %w", schedule, err)
	}
	return p, nil
}

// Start runs the schedule in the background.
func (p *SessionPurger) Start() {
	p.cron.Start()
	p.logger.Info("session purge scheduler started")
}

// Stop halts the schedule and waits for a running purge to finish.
func (p *SessionPurger) Stop() {
	<-p.cron.Stop().Done()
	p.logger.Info("session purge scheduler stopped")
}

// RunOnce purges immediately.
func (p *SessionPurger) RunOnce(ctx context.Context) (int64, error) {
	n, err := p.svc.PurgeSessions(ctx)
	if err != nil {
		return 0, err
	}
	if p.recorder != nil {
		p.recorder.RecordSessionsPurged(int(n))
	}
	if n > 0 {
		p.logger.WithField("count", n).Info("purged sessions")
	}
	return n, nil
}

func (p *SessionPurger) run() {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()
	if _, err := p.RunOnce(ctx); err != nil {
		p.logger.WithError(err).Warn("session purge failed")
	}
}

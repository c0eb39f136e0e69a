// Package jobsvc runs the periodic maintenance jobs.
package jobsvc

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"

	"github.com/trezcool/academia/core"
)

// MeetingArchiver is the part of the scheduling service the archiver drives.
type MeetingArchiver interface {
	Today() civil.Date
	ArchivePast(ctx context.Context, today civil.Date) (int, error)
}

// Scheduler runs jobs on cron specs evaluated in the scheduling timezone.
type Scheduler struct {
	cron    *cron.Cron
	logger  core.Logger
	timeout time.Duration
}

func NewScheduler(conf *core.Config, logger core.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithLocation(conf.Schedule.Location()), cron.WithChain(cron.Recover(cronLogger{logger}))),
		logger:  logger,
		timeout: time.Minute,
	}
}

// AddArchiver registers the job archiving meetings dated before today.
func (s *Scheduler) AddArchiver(spec string, archiver MeetingArchiver) error {
	if _, err := s.cron.AddFunc(spec, func() { s.archive(archiver) }); err != nil {
		return errors.Wrapf(err, "scheduling archiver on %q", spec)
	}
	return nil
}

func (s *Scheduler) archive(archiver MeetingArchiver) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if _, err := ArchivePast(ctx, archiver, s.logger); err != nil {
		s.logger.Error(err.Error(), err)
	}
}

// ArchivePast archives the meetings dated before the archiver's today.
func ArchivePast(ctx context.Context, archiver MeetingArchiver, logger core.Logger) (int, error) {
	today := archiver.Today()
	n, err := archiver.ArchivePast(ctx, today)
	if err != nil {
		return 0, errors.Wrap(err, "archiving past meetings")
	}
	logger.Info(fmt.Sprintf("archived %d meeting(s) dated before %s", n, today))
	return n, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop waits for running jobs, up to ctx's deadline.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}

// cronLogger adapts core.Logger to cron.Logger.
type cronLogger struct {
	logger core.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: "+msg, append([]interface{}{err}, keysAndValues...)...)
}

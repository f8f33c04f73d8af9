// Package scheduler runs the background sweeps that expire wizard drafts
// and unsettled payments.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const defaultJobTimeout = time.Minute

var (
	ErrNotInitialized = errors.New("scheduler not initialized")
	ErrEmptyJobName   = errors.New("job name is required")
	ErrEmptyCronExpr  = errors.New("cron expression is required")
)

var (
	service     *Service
	serviceErr  error
	serviceOnce sync.Once
)

// Task is the body of a sweep. Its context carries the job logger and the
// job timeout.
type Task func(ctx context.Context) error

// Service owns the process-wide gocron scheduler.
type Service struct {
	cron     gocron.Scheduler
	stopOnce sync.Once
	stopErr  error
}

func newService() (*Service, error) {
	onPanic := gocron.AfterJobRunsWithPanic(func(jobID uuid.UUID, jobName string, recovered any) {
		log.Error().
			Str("job_id", jobID.String()).
			Str("job_name", jobName).
			Interface("panic", recovered).
			Msg("Sweep panicked")
	})
	cron, err := gocron.NewScheduler(gocron.WithGlobalJobOptions(gocron.WithEventListeners(onPanic)))
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	return &Service{cron: cron}, nil
}

// Init creates the shared scheduler. Later calls return the first result.
func Init() error {
	serviceOnce.Do(func() {
		service, serviceErr = newService()
		if serviceErr == nil {
			log.Info().Msg("Scheduler initialized")
		}
	})
	return serviceErr
}

// ServiceInstance returns the scheduler created by Init.
func ServiceInstance() (*Service, error) {
	if serviceErr != nil {
		return nil, serviceErr
	}
	if service == nil {
		return nil, ErrNotInitialized
	}
	return service, nil
}

func withService(fn func(*Service) error) error {
	svc, err := ServiceInstance()
	if err != nil {
		return err
	}
	return fn(svc)
}

func Start() error {
	return withService(func(s *Service) error {
		s.Start()
		return nil
	})
}

func Stop() error {
	return withService(func(s *Service) error { return s.Stop() })
}

// AddJob registers a cron-based sweep with the shared scheduler.
func AddJob(name, cronExpr string, timeout time.Duration, task Task) (gocron.Job, error) {
	var job gocron.Job
	err := withService(func(s *Service) error {
		var err error
		job, err = s.AddJob(name, cronExpr, timeout, task)
		return err
	})
	return job, err
}

// Jobs lists the registered sweeps by name.
func Jobs() ([]string, error) {
	var names []string
	err := withService(func(s *Service) error {
		for _, job := range s.cron.Jobs() {
			names = append(names, job.Name())
		}
		return nil
	})
	return names, err
}

func (s *Service) Start() {
	if s == nil {
		log.Error().Msg("Scheduler start requested before initialization")
		return
	}
	log.Info().Int("jobs", len(s.cron.Jobs())).Msg("Scheduler starting")
	s.cron.Start()
}

// Stop waits for running sweeps and is safe to call more than once.
func (s *Service) Stop() error {
	if s == nil {
		return ErrNotInitialized
	}
	s.stopOnce.Do(func() {
		log.Info().Msg("Scheduler stopping")
		s.stopErr = s.cron.Shutdown()
	})
	return s.stopErr
}

// AddJob registers a sweep on cronExpr. Each run gets its own context
// bounded by timeout; an overlapping run is rescheduled instead of stacked.
func (s *Service) AddJob(name, cronExpr string, timeout time.Duration, task Task) (gocron.Job, error) {
	if s == nil {
		return nil, ErrNotInitialized
	}
	if strings.TrimSpace(name) == "" {
		return nil, ErrEmptyJobName
	}
	if strings.TrimSpace(cronExpr) == "" {
		return nil, ErrEmptyCronExpr
	}
	if timeout <= 0 {
		timeout = defaultJobTimeout
	}
	jobLogger := log.With().Str("job_name", name).Str("cron", cronExpr).Logger()

	run := func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		ctx = jobLogger.WithContext(ctx)

		started := time.Now()
		if err := task(ctx); err != nil {
			jobLogger.Error().Err(err).Dur("elapsed", time.Since(started)).Msg("Sweep failed")
			return
		}
		jobLogger.Debug().Dur("elapsed", time.Since(started)).Msg("Sweep finished")
	}

	job, err := s.cron.NewJob(
		gocron.CronJob(cronExpr, false),
		gocron.NewTask(run),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return nil, fmt.Errorf("register %s: %w", name, err)
	}
	jobLogger.Info().Msg("Sweep registered")
	return job, nil
}

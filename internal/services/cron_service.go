package services

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// CronService manages scheduled background jobs
type CronService struct {
	cron          *cron.Cron
	expirationSvc *HoldExpirationService
	logger        *logrus.Logger
}

// NewCronService creates a new CronService
func NewCronService(expirationSvc *HoldExpirationService, logger *logrus.Logger) *CronService {
	return &CronService{
		cron:          cron.New(),
		expirationSvc: expirationSvc,
		logger:        logger,
	}
}

// Start schedules all background jobs and starts the scheduler
func (s *CronService) Start() error {
	// Sweep stale holds every minute
	_, err := s.cron.AddFunc("* * * * *", s.expireStaleHoldsJob)
	if err != nil {
		return fmt.Errorf("failed to schedule hold expiry job: %w", err)
	}

	s.cron.Start()
	s.logger.Info("Cron service started")
	return nil
}

// Stop stops the scheduler and waits for running jobs
func (s *CronService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Cron service stopped")
}

func (s *CronService) expireStaleHoldsJob() {
	expired, err := s.expirationSvc.ExpireStaleHolds()
	if err != nil {
		s.logger.WithError(err).Error("Hold expiry sweep failed")
		return
	}
	if expired > 0 {
		s.logger.WithField("expired", expired).Info("Hold expiry sweep finished")
	}
}

// RunExpireStaleHoldsNow runs the sweep immediately (manual trigger)
func (s *CronService) RunExpireStaleHoldsNow() (int, error) {
	return s.expirationSvc.ExpireStaleHolds()
}

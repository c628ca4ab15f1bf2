package helper

import (
	"context"
	"time"

	"cinema_booking/config"
	"cinema_booking/service"

	"github.com/go-co-op/gocron/v2"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
)

var sweeperScheduler gocron.Scheduler

// StartSweeperScheduler đăng ký ba job dọn dẹp, mỗi job chạy đơn lẻ
func StartSweeperScheduler(sweeper *service.Sweeper, cfg config.Settings, clock clockwork.Clock) error {
	s, err := gocron.NewScheduler(
		gocron.WithLocation(time.FixedZone("ICT", 7*3600)),
		gocron.WithClock(clock),
	)
	if err != nil {
		return err
	}

	jobs := []struct {
		name  string
		every time.Duration
		run   func(ctx context.Context) error
	}{
		{"expire-promotions", cfg.PromotionSweepEvery, func(ctx context.Context) error {
			_, err := sweeper.ExpirePromotions(ctx)
			return err
		}},
		{"reclaim-leases", cfg.LeaseReclaimEvery, func(ctx context.Context) error {
			_, err := sweeper.ReclaimLeases(ctx)
			return err
		}},
		{"expire-pending-tickets", cfg.PendingTicketSweepEvery, func(ctx context.Context) error {
			_, err := sweeper.ExpirePendingTickets(ctx)
			return err
		}},
	}

	for _, job := range jobs {
		run, name := job.run, job.name
		_, err := s.NewJob(
			gocron.DurationJob(job.every),
			gocron.NewTask(func() {
				ctx, cancel := context.WithTimeout(context.Background(), job.every)
				defer cancel()
				if err := run(ctx); err != nil {
					logrus.WithError(err).WithField("job", name).Error("Sweeper job failed")
				}
			}),
			gocron.WithName(job.name),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			_ = s.Shutdown()
			return err
		}
	}

	sweeperScheduler = s
	s.Start()
	logrus.WithFields(logrus.Fields{
		"promotions": cfg.PromotionSweepEvery,
		"leases":     cfg.LeaseReclaimEvery,
		"tickets":    cfg.PendingTicketSweepEvery,
	}).Info("Sweeper scheduler started")
	return nil
}

func StopSweeperScheduler() {
	if sweeperScheduler == nil {
		return
	}
	if err := sweeperScheduler.Shutdown(); err != nil {
		logrus.WithError(err).Warn("Sweeper scheduler shutdown")
	}
}

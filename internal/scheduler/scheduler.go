package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/tjsjts22/jpoproject/internal/airquality"
)

// Scheduler periodically refreshes sensor data for tracked stations.
// Stations fan out concurrently; the job runs in singleton mode so a
// slow refresh is never overlapped by the next tick, and the service
// serializes merges per station against the HTTP update path.
type Scheduler struct {
	scheduler *gocron.Scheduler
	service   *airquality.Service
	stations  []int
	interval  time.Duration
	log       *slog.Logger
}

// New creates a new Scheduler.
func New(stations []int, interval time.Duration, service *airquality.Service, log *slog.Logger) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		service:   service,
		stations:  stations,
		interval:  interval,
		log:       log,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if len(s.stations) == 0 {
		s.log.Info("scheduler: no tracked stations configured; nothing to schedule")
		return nil
	}

	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 60
	}

	_, err := s.scheduler.Every(minutes).Minutes().SingletonMode().Do(func() {
		s.log.Info("scheduler: refreshing tracked stations", "stations", len(s.stations))

		var wg sync.WaitGroup
		for _, stationID := range s.stations {
			stationID := stationID
			wg.Add(1)
			go func() {
				defer wg.Done()

				ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
				defer cancel()

				if _, err := s.service.UpdateStation(ctx, stationID); err != nil {
					s.log.Warn("scheduler: station refresh failed",
						"station", stationID, "error", err)
				}
			}()
		}
		wg.Wait()
		s.log.Info("scheduler: refresh completed")
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

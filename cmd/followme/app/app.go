package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/roman-kulish/follow-mission/internal/feed/fake"
	"github.com/roman-kulish/follow-mission/internal/flightlog"
	"github.com/roman-kulish/follow-mission/internal/mission"
	"github.com/roman-kulish/follow-mission/internal/vehicle/sim"
)

const (
	storageDir = "data"
)

func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	store, err := createStorage(&config.Storage)
	if err != nil {
		return fmt.Errorf("failed to create storage: %w", err)
	}
	defer store.Close()

	link, err := sim.New(config.Vehicle, sim.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to create vehicle link: %w", err)
	}

	vehicleName := config.Vehicle.Name
	if vehicleName == "" {
		vehicleName = "simulator"
	}

	sessionID, err := store.CreateSession(ctx, vehicleName, config.Vehicle)
	if err != nil {
		return fmt.Errorf("failed to create flight record session: %w", err)
	}

	var recorderOptions []func(*flightlog.Recorder)
	recorderOptions = append(recorderOptions, flightlog.WithLogger(logger))
	if config.Storage.MaxBatchSize > 0 {
		recorderOptions = append(recorderOptions, flightlog.WithMaxBatchSize(config.Storage.MaxBatchSize))
	}
	recorder := flightlog.NewRecorder(store, sessionID, recorderOptions...)

	provider := fake.New(
		fake.WithLogger(logger),
		fake.WithOrigin(config.Feed.Latitude, config.Feed.Longitude),
		fake.WithCount(config.Feed.Count),
		fake.WithInterval(config.Feed.Interval.Duration()),
	)

	observer := mission.NewStatusObserver(link, mission.WithObserverLogger(logger))
	observer.Start()

	controller := mission.NewController(link, provider,
		mission.WithLogger(logger),
		mission.WithRecorder(recorder),
		mission.WithPollInterval(config.Mission.PollInterval.Duration()),
		mission.WithSettleDelay(config.Mission.SettleDelay.Duration()),
	)

	runErr := controller.Run(ctx)

	if err = recorder.Flush(); err != nil {
		logger.Warn(fmt.Sprintf("flushing flight record: %s", err.Error()))
	}

	if runErr != nil {
		return runErr
	}

	// The vehicle auto-disarms after landing; keep watching status updates
	// for a little longer before exiting.
	if linger := config.Mission.Linger.Duration(); linger > 0 {
		select {
		case <-ctx.Done():
		case <-time.After(linger):
		}
	}

	logger.Info("mission finished", slog.Int64("session", sessionID))
	return nil
}

func createStorage(config *StorageConfig) (*flightlog.Store, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get current working directory: %w", err)
	}

	var dbPath string
	if config.DataDirectory != "" {
		dbPath = filepath.Join(wd, config.DataDirectory)
	} else {
		dbPath = filepath.Join(wd, storageDir)
	}

	stat, err := os.Stat(dbPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("storage directory '%s' does not exist: %w", dbPath, err)
		}
		return nil, fmt.Errorf("checking storage directory '%s': %w", dbPath, err)
	}
	if !stat.IsDir() {
		return nil, fmt.Errorf("invalid storage directory '%s'", dbPath)
	}

	dbPath = filepath.Join(dbPath, fmt.Sprintf("mission_%s.sqlite", time.Now().UTC().Format("20060102_150405")))
	return flightlog.New(dbPath), nil
}

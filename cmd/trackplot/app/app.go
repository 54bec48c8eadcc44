package app

import (
	"context"
	"fmt"
	"image/jpeg"
	"image/png"
	"log/slog"
	"os"
	"time"

	"github.com/roman-kulish/follow-mission/internal/flightlog"
)

func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	if _, err := os.Stat(config.DBPath); err != nil && os.IsNotExist(err) {
		return fmt.Errorf("database file '%s' does not exist: %w", config.DBPath, err)
	}

	store := flightlog.New(config.DBPath)
	defer store.Close()

	return renderTrack(ctx, store, config, logger)
}

func renderTrack(ctx context.Context, store *flightlog.Store, config *Config, logger *slog.Logger) error {
	session, err := store.Session(ctx, config.SessionID)
	if err != nil {
		return fmt.Errorf("loading session %d: %w", config.SessionID, err)
	}

	points, err := store.Track(ctx, config.SessionID)
	if err != nil {
		return fmt.Errorf("loading track: %w", err)
	}

	track, err := NewTrackData(session, points)
	if err != nil {
		return err
	}

	logger.Info("loaded mission track",
		slog.Group("stats",
			slog.Int64("session", session.ID),
			slog.String("vehicle", session.Vehicle),
			slog.Int("targets", len(track.Points)),
			slog.String("start", track.Start.Local().Format(time.DateTime)),
			slog.String("end", track.End.Local().Format(time.DateTime)),
			slog.String("distance", fmt.Sprintf("%0.1fm", track.DistanceMeters())),
		))

	renderer, err := NewTrackRenderer(RenderConfig{
		FontPath:   config.FontPath,
		ColorTheme: config.Theme,
		Width:      config.Width,
		Height:     config.Height,
	})
	if err != nil {
		return fmt.Errorf("creating track renderer: %w", err)
	}

	logger.Info("rendering track",
		slog.Group("image",
			slog.String("destination", config.OutputFile),
			slog.String("format", string(config.Format)),
			slog.String("theme", string(config.Theme)),
			slog.Int("width", config.Width),
			slog.Int("height", config.Height),
		))

	img, err := renderer.Render(track)
	if err != nil {
		return fmt.Errorf("rendering track: %w", err)
	}

	out, err := os.Create(config.OutputFile)
	if err != nil {
		return err
	}
	defer out.Close()

	switch config.Format {
	case ImagePNG:
		err = png.Encode(out, img)

	case ImageJPEG:
		err = jpeg.Encode(out, img, &jpeg.Options{
			Quality: 98,
		})
	}
	return err
}

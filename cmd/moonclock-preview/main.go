// Command moonclock-preview runs moonclock against the system clock in a
// desktop window, or headless with a PNG snapshot of the last frame.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/flavioheleno/moonclock"
	"github.com/flavioheleno/moonclock/clocksource"
	"github.com/flavioheleno/moonclock/internal/config"
	"github.com/flavioheleno/moonclock/lunar"
	"github.com/flavioheleno/moonclock/preview"
	"github.com/flavioheleno/moonclock/textsurface"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "config file path (optional)")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	font := flag.String("font", "", "glyph face: basic or proggy (overrides font)")
	headless := flag.Bool("headless", false, "run without a window")
	duration := flag.Duration("duration", 0, "headless run time (0 runs until interrupted)")
	snapshot := flag.String("snapshot", "", "headless: write the last frame to this PNG file")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: config.LogLevel(*logLevel)}))

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "moonclock-preview: %v\n", err)
		return 1
	}
	if *font != "" {
		cfg.Font = *font
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	face, err := cfg.Face()
	if err != nil {
		fmt.Fprintf(os.Stderr, "moonclock-preview: %v\n", err)
		return 1
	}
	surface := textsurface.New(image.Rect(0, 0, cfg.Display.Width, cfg.Display.Height), face, nil)

	schedCfg, err := cfg.Scheduler(logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "moonclock-preview: %v\n", err)
		return 1
	}
	sched, err := moonclock.NewScheduler(clocksource.NewSystem(), lunar.Oracle{}, clocksource.NewUptime(), surface, schedCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "moonclock-preview: %v\n", err)
		return 1
	}
	sched.Initialize()

	if !*headless {
		if err := preview.Run(ctx, "moonclock", cfg.TickInterval, sched, surface); err != nil {
			logger.Error("preview stopped", "err", err)
			return 1
		}
		return 0
	}

	if *duration > 0 {
		var stop context.CancelFunc
		ctx, stop = context.WithTimeout(ctx, *duration)
		defer stop()
	}
	logger.Info("running headless", "tick", cfg.TickInterval, "duration", *duration)
	err = sched.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		logger.Error("moonclock stopped", "err", err)
		return 1
	}

	if *snapshot != "" {
		if err := writePNG(*snapshot, surface); err != nil {
			logger.Error("write snapshot", "err", err)
			return 1
		}
		logger.Info("snapshot written", "path", *snapshot, "at", time.Now().Format(time.TimeOnly))
	}
	return 0
}

func writePNG(path string, surface *textsurface.Surface) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, surface.Image().RGBA(nil)); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

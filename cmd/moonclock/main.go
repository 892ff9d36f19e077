// Command moonclock drives a SSD1322 OLED panel over SPI with the time,
// date, last clock sync, moon illumination and next full moon.
//
// Wiring (Raspberry Pi):
//
//	Display    Raspberry Pi
//	GND        GND
//	VCC        3.3V
//	SCL/CLK    GPIO11 (SPI0 CLK)
//	SDA/MOSI   GPIO10 (SPI0 MOSI)
//	DC         GPIO25 (display.dc)
//	RES        GPIO24 (display.rst, optional)
//	CS         GPIO8 (SPI0 CE0) or GND
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"

	"github.com/flavioheleno/moonclock"
	"github.com/flavioheleno/moonclock/clocksource"
	"github.com/flavioheleno/moonclock/internal/config"
	"github.com/flavioheleno/moonclock/lunar"
	"github.com/flavioheleno/moonclock/ssd1322"
	"github.com/flavioheleno/moonclock/textsurface"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "config file path (optional, defaults to ~/.config/moonclock/config.toml)")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	spiBus := flag.String("spi", "", "SPI bus name (overrides display.spi)")
	dcPin := flag.String("dc", "", "Data/Command pin name (overrides display.dc)")
	font := flag.String("font", "", "glyph face: basic or proggy (overrides font)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: config.LogLevel(*logLevel)}))

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "moonclock: %v\n", err)
		return 1
	}
	if *spiBus != "" {
		cfg.Display.SPI = *spiBus
	}
	if *dcPin != "" {
		cfg.Display.DC = *dcPin
	}
	if *font != "" {
		cfg.Font = *font
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := runPanel(ctx, cfg, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("moonclock stopped", "err", err)
		return 1
	}
	return 0
}

func runPanel(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("initialize periph.io: %w", err)
	}

	port, err := spireg.Open(cfg.Display.SPI)
	if err != nil {
		return fmt.Errorf("open SPI bus: %w", err)
	}
	defer port.Close()

	dc := gpioreg.ByName(cfg.Display.DC)
	if dc == nil {
		return fmt.Errorf("GPIO pin %s not found", cfg.Display.DC)
	}
	var rst gpio.PinIO
	if cfg.Display.RST != "" {
		if rst = gpioreg.ByName(cfg.Display.RST); rst == nil {
			return fmt.Errorf("GPIO pin %s not found", cfg.Display.RST)
		}
	}

	dev, err := ssd1322.NewSPI(port, dc, cfg.Display.Opts(rst))
	if err != nil {
		return fmt.Errorf("create display: %w", err)
	}
	defer func() {
		if err := dev.Clear(); err != nil {
			logger.Warn("clear display", "err", err)
		}
		if err := dev.Halt(); err != nil {
			logger.Warn("halt display", "err", err)
		}
		logger.Info("display halted", "bytes_sent", dev.BytesSent())
	}()

	if err := dev.SetContrast(byte(cfg.Display.Contrast)); err != nil {
		return fmt.Errorf("set contrast: %w", err)
	}
	if err := dev.Invert(cfg.Display.Invert); err != nil {
		return fmt.Errorf("set invert: %w", err)
	}
	logger.Info("display initialized", "dev", dev.String(), "spi", cfg.Display.SPI, "dc", cfg.Display.DC)

	face, err := cfg.Face()
	if err != nil {
		return err
	}
	surface := textsurface.ForDrawer(dev, face)

	schedCfg, err := cfg.Scheduler(logger)
	if err != nil {
		return err
	}
	clock := clocksource.NewSystem()
	sched, err := moonclock.NewScheduler(clock, lunar.Oracle{}, clocksource.NewUptime(), surface, schedCfg)
	if err != nil {
		return err
	}
	sched.Initialize()

	logger.Info("moonclock running",
		"tick", cfg.TickInterval,
		"sync_interval", cfg.SyncInterval,
		"location", cfg.Location,
		"font", cfg.Font,
		"phase", lunar.PhaseOf(time.Unix(clock.Now(), 0)),
	)
	return sched.Run(ctx)
}

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/splittimer/go/clients/records_client"
	"github.com/mcdev12/splittimer/go/internal/models"
	"github.com/mcdev12/splittimer/go/internal/overlay"
	"github.com/mcdev12/splittimer/go/internal/records/notify"
	"github.com/mcdev12/splittimer/go/internal/scheduler"
	"github.com/mcdev12/splittimer/go/internal/splittimer"
	"github.com/mcdev12/splittimer/go/internal/trail"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	configPath := flag.String("config", "", "optional YAML config file")
	flag.Parse()

	// Load .env file if it exists
	envErr := godotenv.Load()

	config, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// tcell owns the terminal, so logs go to a file
	logFile, err := os.OpenFile(config.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open log file: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: logFile, NoColor: true})
	level, err := zerolog.ParseLevel(config.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if envErr != nil {
		log.Warn().Err(envErr).Msg("could not load .env file")
	}

	if err := run(config); err != nil {
		log.Error().Err(err).Msg("split timer exited with error")
		fmt.Fprintf(os.Stderr, "splittimer: %v\n", err)
		os.Exit(1)
	}
}

func run(config *Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to init screen: %w", err)
	}
	defer screen.Fini()

	sched := scheduler.New()
	defer sched.Close()

	client := records_client.NewRecordsClient(config.RecordsURL)
	client.SetTimeout(config.RecordsTimeout)
	modal := &splittimer.ModalFlag{}
	tracker := trail.NewTracker(config.TrailName, config.PlayerID, client).WithContext(ctx)
	widget := splittimer.NewWidget(config.widgetConfig(), sched, tracker, modal, client, overlay.NewRenderer(screen))
	tracker.Bind(widget)

	widget.Start(ctx)
	defer widget.Close()

	if config.NATSURL != "" {
		natsCfg := notify.DefaultConfig()
		natsCfg.URL = config.NATSURL
		sub, err := notify.Subscribe(natsCfg, config.TrailName, func(ev models.RecordEvent) {
			sched.Post(widget.GetFastestTimes)
		})
		if err != nil {
			// Periodic refresh still keeps the cache current.
			log.Warn().Err(err).Msg("record notifications unavailable")
		} else {
			defer sub.Close()
		}
	}

	log.Info().
		Str("trail", config.TrailName).
		Str("records_url", client.BaseURL()).
		Int("checkpoints", config.Checkpoints).
		Dur("frame_interval", config.FrameInterval).
		Msg("split timer running")

	host := overlay.NewHost(screen, sched, widget, tracker, modal, config.Checkpoints)
	return host.Run(ctx, clockwork.NewRealClock(), config.FrameInterval)
}

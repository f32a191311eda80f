package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/devshisir/aichat/internal/audio"
	"github.com/devshisir/aichat/internal/capture"
	"github.com/devshisir/aichat/internal/chat"
	"github.com/devshisir/aichat/internal/config"
	"github.com/devshisir/aichat/internal/input"
	"github.com/devshisir/aichat/internal/metrics"
	"github.com/devshisir/aichat/internal/recorder"
	"github.com/devshisir/aichat/internal/server"
	"github.com/devshisir/aichat/internal/session"
	"github.com/devshisir/aichat/internal/webhook"
)

const (
	defaultConfigPath = "configs/config.yaml"
	serviceName       = "aichat"
	serviceVersion    = "1.0.0"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", defaultConfigPath, "Path to configuration file")
	audioSource := flag.String("audio", "", "Audio file replayed as the capture device for /record")
	flag.Parse()

	// Load configuration; a missing default file falls back to built-in
	// defaults so the client works with just WEBHOOK_URL set.
	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && *configPath == defaultConfigPath {
			cfg = config.Default()
			if url := os.Getenv("WEBHOOK_URL"); url != "" {
				cfg.Webhook.URL = url
			}
		} else {
			fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
			os.Exit(1)
		}
	}

	// Initialize logger based on configuration
	logger := initLogger(cfg.Logging)

	logger.Info("Client starting",
		slog.String("service", serviceName),
		slog.String("version", serviceVersion),
		slog.String("config_path", *configPath),
	)

	logger.Info("Configuration loaded",
		slog.Bool("webhook_configured", strings.TrimSpace(cfg.Webhook.URL) != ""),
		slog.String("encoding", cfg.Webhook.Encoding),
		slog.Int("sample_rate", cfg.Capture.SampleRate),
		slog.Int("channels", cfg.Capture.Channels),
		slog.String("log_level", cfg.Logging.Level),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize Prometheus metrics
	appMetrics := metrics.NewMetrics()

	// Capture device: an audio file replayed in paced chunks. Recording is
	// unavailable without one.
	var device capture.Device
	if *audioSource != "" {
		fileDevice, err := capture.NewFileDevice(*audioSource, cfg.Capture.SampleRate, cfg.Capture.Channels)
		if err != nil {
			logger.Error("Failed to open audio source", slog.String("error", err.Error()))
			os.Exit(1)
		}
		fileDevice.ChunkInterval = cfg.Capture.GetChunkInterval()
		device = fileDevice
		logger.Info("Capture device ready", slog.String("source", *audioSource))
	}

	coordinator := input.NewCoordinator(logger, cfg.Input.PreviewDir, cfg.Input.PermissiveUploads)
	rec := recorder.New(device, logger, appMetrics)
	client := webhook.NewClient(webhook.Config{
		BaseURL:   cfg.Webhook.URL,
		Encoding:  webhook.Encoding(cfg.Webhook.Encoding),
		Timeout:   cfg.Webhook.GetTimeoutDuration(),
		UserID:    cfg.Webhook.UserID,
		SessionID: cfg.Webhook.SessionID,
		Role:      cfg.Webhook.Role,
	}, logger, appMetrics)

	sess := session.New(coordinator, rec, client, logger, appMetrics)
	defer func() {
		if err := sess.Close(); err != nil {
			logger.Error("Error closing session", slog.String("error", err.Error()))
		}
	}()

	// Diagnostics server (if enabled)
	var httpServer *server.HTTPServer
	if cfg.HTTP.Enabled {
		httpServer = server.NewHTTPServer(cfg.HTTP, logger, cfg, sess, appMetrics)
		if err := httpServer.Start(); err != nil {
			logger.Error("Failed to start HTTP server", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer shutdownCancel()
			if err := httpServer.Stop(shutdownCtx); err != nil {
				logger.Error("Error stopping HTTP server", slog.String("error", err.Error()))
			}
		}()
	}

	// Hydrate the message log from remote history when configured
	if sess.Configured() {
		if err := sess.Hydrate(ctx); err != nil {
			logger.Warn("Failed to load message history", slog.String("error", err.Error()))
		} else {
			printMessages(sess.Messages())
		}
	} else {
		fmt.Println("Webhook URL is not configured; messages cannot be sent.")
	}

	// Cancel the REPL context on interrupt so a blocked submission aborts
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		cancel()
	}()

	runREPL(ctx, sess, logger)

	logger.Info("Client stopped")
}

// runREPL reads commands and chat text from stdin until EOF or /quit.
func runREPL(ctx context.Context, sess *session.Session, logger *slog.Logger) {
	fmt.Println("Type a message and press enter to send.")
	fmt.Println("Commands: /record  /file <path>  /send  /remove  /history  /quit")

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for {
		printPrompt(sess)
		if !scanner.Scan() {
			return
		}
		if ctx.Err() != nil {
			return
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch {
		case line == "/quit":
			return

		case line == "/record":
			recording, err := sess.ToggleRecording(ctx)
			if err != nil {
				printError(err)
				continue
			}
			if recording {
				fmt.Println("Recording... type /record again to stop.")
			} else {
				artifact := sess.Coordinator().Artifact()
				fmt.Printf("Recording attached (%s). Send it with /send, or /remove to discard.\n",
					describeArtifact(artifact))
			}

		case strings.HasPrefix(line, "/file "):
			path := strings.TrimSpace(strings.TrimPrefix(line, "/file "))
			if err := sess.Coordinator().SelectFile(path); err != nil {
				printError(err)
				continue
			}
			artifact := sess.Coordinator().Artifact()
			fmt.Printf("Attached %s (%s). Send it with /send, or /remove to discard.\n",
				artifact.FileName(), describeArtifact(artifact))

		case line == "/remove":
			sess.Coordinator().Remove()
			fmt.Println("Attachment removed.")

		case line == "/send":
			if err := sess.Submit(ctx); err != nil {
				printError(err)
				continue
			}
			printLatest(sess.Messages())

		case line == "/history":
			if err := sess.Hydrate(ctx); err != nil {
				printError(err)
				continue
			}
			printMessages(sess.Messages())

		case strings.HasPrefix(line, "/"):
			fmt.Printf("Unknown command: %s\n", line)

		default:
			sess.Coordinator().SetText(line)
			if err := sess.Submit(ctx); err != nil {
				printError(err)
				continue
			}
			printLatest(sess.Messages())
		}
	}
}

// describeArtifact renders a short size/duration summary for an attached
// audio clip.
func describeArtifact(artifact *chat.Artifact) string {
	if artifact == nil {
		return "no audio"
	}
	if seconds, err := audio.GetWAVDuration(artifact.Data); err == nil {
		return fmt.Sprintf("%d bytes, %s", len(artifact.Data), chat.FormatTime(int(seconds)))
	}
	return fmt.Sprintf("%d bytes", len(artifact.Data))
}

func printPrompt(sess *session.Session) {
	if sess.Recorder().Recording() {
		fmt.Printf("[rec %s] > ", chat.FormatTime(sess.Recorder().Elapsed()))
		return
	}
	fmt.Print("> ")
}

// printLatest shows the messages appended by the last submission: the user
// message and, when extracted, the assistant reply.
func printLatest(messages []chat.Message) {
	start := len(messages) - 2
	if start < 0 {
		start = 0
	}
	printMessages(messages[start:])
}

func printMessages(messages []chat.Message) {
	for _, msg := range messages {
		side := "ai  "
		if msg.IsRight {
			side = "you "
		}
		fmt.Printf("%s %s  %s\n", msg.Timestamp, side, msg.Text)
	}
}

func printError(err error) {
	switch {
	case errors.Is(err, chat.ErrDeviceAccessDenied):
		fmt.Println("Microphone access denied. Please check permissions.")
	case errors.Is(err, chat.ErrNotConfigured):
		fmt.Println("Webhook URL is not configured; message not sent.")
	case errors.Is(err, chat.ErrValidation):
		fmt.Printf("Invalid input: %v\n", err)
	default:
		fmt.Printf("Error: %v\n", err)
	}
}

// initLogger creates and configures the structured logger based on configuration
func initLogger(cfg config.Logging) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	var output *os.File
	switch cfg.Output {
	case "stdout":
		output = os.Stdout
	case "stderr", "":
		output = os.Stderr
	default:
		file, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file %s: %v, falling back to stderr\n", cfg.Output, err)
			output = os.Stderr
		} else {
			output = file
		}
	}

	var handler slog.Handler
	switch cfg.Format {
	case "json":
		handler = slog.NewJSONHandler(output, opts)
	default:
		handler = slog.NewTextHandler(output, opts)
	}

	return slog.New(handler)
}

package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"i4.energy/across/cellgw/modem"
)

func main() {
	pflag.String("config", "", "Path to a YAML configuration file")
	pflag.String("serial-port", "/dev/ttyUSB0", "Serial port to connect to the modem")
	pflag.Int("baud-rate", 115200, "Baud rate for serial communication")
	pflag.String("bind-address", "0.0.0.0:8080", "Bind address for the HTTP server")
	pflag.String("log-level", "info", "Log level (debug, info, warn, error)")
	pflag.String("sim-pin", "", "SIM card PIN code (if required)")
	pflag.Bool("exact-match", false, "Use exact terminator matching in the AT engine")
	pflag.Parse()

	configFile, _ := pflag.CommandLine.GetString("config")
	config, err := LoadConfig(WithDefaults(), WithFile(configFile), WithEnv(), WithFlags(pflag.CommandLine))
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logLevel := slog.LevelInfo
	switch config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	modemConfig, err := modem.NewConfigBuilder().
		WithATTimeout(5 * time.Second).
		WithInitTimeout(30 * time.Second).
		WithSimPIN(config.SimPIN).
		WithExactMatch(config.ExactMatch).
		WithLogger(logger.With("component", "modem")).
		WithDialer(modem.SerialDialer{
			PortName: config.SerialPort,
			BaudRate: config.BaudRate,
		}).
		Build()
	if err != nil {
		logger.Error("Failed to create modem config", "error", err)
		os.Exit(1)
	}

	m, err := modem.New(context.Background(), modemConfig)
	if err != nil {
		logger.Error("Failed to create modem", "error", err)
		os.Exit(1)
	}

	m.OnRegistration(func(status int) {
		logger.Info("Network registration changed", "status", status)
	})
	m.OnSIMState(func(state int) {
		logger.Info("SIM state changed", "state", state)
	})

	gateway := NewGateway(logger.With("component", "gateway"), m)

	logger.Info("Starting cellular gateway", "serial_port", config.SerialPort)

	httpServer := &http.Server{
		Addr: config.BindAddress,
		Handler: &Server{
			Logger:  logger.With("component", "server"),
			Gateway: gateway,
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server in a goroutine
	go func() {
		logger.Info("Starting HTTP server", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server failed", "error", err)
			os.Exit(1)
		}
	}()

	// The modem is driven from this goroutine until shutdown
	gateway.Run(ctx)
	logger.Info("Received shutdown signal")

	logger.Info("Closing modem connection")
	if err := m.Close(); err != nil {
		logger.Error("Failed to close modem", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger.Info("Closing HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to gracefully shutdown server", "error", err)
		os.Exit(1)
	}
}

package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cnc_sender/internal/grbl"
	"cnc_sender/internal/handlers"
	"cnc_sender/internal/logger"
	"cnc_sender/internal/repository"
	"cnc_sender/internal/repository/db"
	"cnc_sender/internal/server"
	"cnc_sender/internal/service"

	"github.com/spf13/viper"
)

func main() {
	// init logger
	log := logger.Get(logger.InfoLevel)

	// load config.yml
	if err := loadConfig(); err != nil {
		log.Fatalw("error reading config", "err", err)
	}

	// open DB
	sqlDB, err := openDB(log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Fatalw("failed to close sqlite", "err", cerr)
		}
	}()

	// wire dependencies
	repos := repository.NewRepository(sqlDB)
	engine := grbl.NewEngineWithDialer(log, grbl.DialSerial, pollInterval())
	services := service.NewService(repos, engine, signingKey(log))
	apiHandler := handlers.NewHandler(services, log)

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// persist engine events (via composed service)
	go services.Recorder.Run(ctx)

	autoConnect(ctx, services, log)

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, viper.GetString("port"), apiHandler, log)

	// graceful shutdown
	waitForShutdown(cancel, srv, engine, log)
}

func loadConfig() error {
	viper.AddConfigPath("configs") // configs/config.yml
	viper.SetConfigName("config")
	return viper.ReadInConfig()
}

// pollInterval reads serial.poll_interval (e.g. "100ms"), falling back
// to the engine default.
func pollInterval() time.Duration {
	if d := viper.GetDuration("serial.poll_interval"); d > 0 {
		return d
	}
	return grbl.DefaultPollInterval
}

func signingKey(log *logger.Logger) string {
	key := viper.GetString("auth.signing_key")
	if key == "" {
		log.Warnw("auth.signing_key not set in config; tokens will not survive restarts meaningfully")
		key = "insecure-dev-key"
	}
	return key
}

// openDB initializes the SQLite database using configuration.
func openDB(log *logger.Logger) (*sql.DB, error) {
	dbPath := viper.GetString("db.path")
	if dbPath == "" {
		log.Infow("db.path not set in config; using default file", "default", "cnc.db")
		dbPath = "cnc.db"
	}
	return db.InitDB(dbPath)
}

// autoConnect opens the configured serial port at startup, if any.
// Failure is logged, not fatal: the port can be opened later over HTTP.
func autoConnect(ctx context.Context, services *service.Service, log *logger.Logger) {
	device := viper.GetString("serial.device")
	if device == "" {
		return
	}
	err := services.Machine.Connect(ctx, service.ConnectParams{
		Device: device,
		Baud:   viper.GetInt("serial.baud"),
	})
	if err != nil {
		log.Warnw("auto-connect failed", "device", device, "err", err)
	}
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if port == "" {
			port = "8080"
		}
		if err := srv.Run(port, handler.InitRoutes()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, engine *grbl.Engine, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop background goroutines
	cancel()

	// release the serial port before exiting
	if engine.Connected() {
		if err := engine.Disconnect(); err != nil {
			log.Errorw("disconnect on shutdown", "err", err)
		}
	}

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalw("server forced to shutdown", "err", err)
	}
}

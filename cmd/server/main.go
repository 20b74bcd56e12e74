package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	accountpg "github.com/jrsteele09/go-admin-auth/accounts/repopg"
	"github.com/jrsteele09/go-admin-auth/internal/config"
	"github.com/jrsteele09/go-admin-auth/internal/database"
	attemptpg "github.com/jrsteele09/go-admin-auth/ratelimit/repopg"
	"github.com/jrsteele09/go-admin-auth/server"
	"github.com/jrsteele09/go-admin-auth/sessions"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	startupTimeout = 10 * time.Second
	pingTimeout    = 2 * time.Second
)

func main() {
	if path := os.Getenv(config.ConfigFileVar); path != "" {
		if err := config.LoadFile(path); err != nil {
			log.Fatal().Err(err).Str("path", path).Msg("Failed to load config file")
		}
	}

	c := config.New()
	setupLogging(c)

	for {
		if err := run(c); err != nil {
			log.Error().Err(err).Msg("Error running server")
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Info().Msg("Server stopped")
}

func run(c config.Config) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("Recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	db, err := database.Open(c.GetDatabaseURL())
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.EnsureSchema(ctx, db); err != nil {
		return err
	}

	sessionStore, closeStore, err := newSessionStore(ctx, c)
	if err != nil {
		return err
	}
	defer closeStore()

	handler, err := server.New(c, server.Repos{
		Accounts: accountpg.New(db),
		Attempts: attemptpg.New(db),
		Sessions: sessionStore,
		Health:   healthCheck(db),
	})
	if err != nil {
		return err
	}

	displayAppname(c.GetAppName())
	httpServer := &http.Server{
		Addr:              c.GetPort(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- listenAndServe(httpServer)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(httpServer)
}

// newSessionStore picks the session backend named by SESSION_STORE
func newSessionStore(ctx context.Context, c config.Config) (sessions.Store, func(), error) {
	switch c.GetSessionStore() {
	case config.SessionStoreRedis:
		client, err := sessions.NewRedisClient(ctx, c.GetRedisURL())
		if err != nil {
			return nil, nil, err
		}
		log.Info().Msg("Sessions stored in redis")
		return sessions.NewRedisStore(client, sessions.DefaultRedisKeyPrefix), func() { _ = client.Close() }, nil
	case config.SessionStoreMemory:
		log.Info().Int("size", c.GetSessionMemorySize()).Msg("Sessions stored in memory")
		return sessions.NewMemoryStore(c.GetSessionMemorySize(), c.GetSessionLifetime()+time.Hour), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown session store %q", c.GetSessionStore())
	}
}

func healthCheck(db *sql.DB) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		return database.Ping(ctx, db, pingTimeout)
	}
}

func setupLogging(c config.Config) {
	level, err := zerolog.ParseLevel(c.GetLogLevel())
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if c.GetEnv() == "DEV" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

func listenAndServe(server *http.Server) error {
	log.Info().Msgf("Server listening on %s", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}

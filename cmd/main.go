package main

import (
	"chat-room/infrastructure/http/server"
	"chat-room/moderation"
	"chat-room/repositories"
	"chat-room/runtime/workers"
	"chat-room/services"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run wires every component in dependency order and keeps deferred cleanup
// on every exit path.
func run() error {
	// 1. Configuration & Logger
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf(".env loading failed: %w", err)
	}
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Database (BadgerDB), opened before anything captures it
	options := badger.DefaultOptions(config.BadgerFilepath).WithLoggingLevel(badger.WARNING)
	if config.BadgerInMemory {
		options = badger.DefaultOptions("").WithInMemory(true).WithLoggingLevel(badger.WARNING)
	}
	db, err := badger.Open(options)
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Registry, store and moderation
	messageRepository, err := repositories.NewMessageRepository(db, log, config.StorageRetries)
	if err != nil {
		return err
	}
	defer func() { _ = messageRepository.Close() }()
	participantRepository := repositories.NewParticipantRepository(db, messageRepository, log, config.StorageRetries)

	censored, err := moderation.NewEmbeddedLoader().LoadAll("censored")
	if err != nil {
		return fmt.Errorf("censored words loading failed: %w", err)
	}
	moderator, err := moderation.NewModerator(censored.Words, config.replacementRune(), log)
	if err != nil {
		return fmt.Errorf("moderator building failed: %w", err)
	}
	chatService := services.NewChatService(log, participantRepository, messageRepository,
		moderation.NewSanitizer(), moderator)

	// 4. Inactivity sweeper under supervision
	sup := workers.NewSupervisor(log, config.RestartInterval)
	sup.Add(workers.NewSweeperWorker(log, participantRepository, messageRepository,
		config.InactivityThreshold, config.SweepInterval))
	supervisorDone := make(chan struct{})
	go func() {
		defer close(supervisorDone)
		sup.Run(context.Background())
	}()

	// 5. HTTP server
	httpServer := server.NewServer(log, chatService)
	address := net.JoinHostPort(config.Host, strconv.Itoa(config.Port))
	errChan := make(chan error, 1)
	go func() {
		if err := httpServer.Listen(address); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// 6. Wait for a signal, then drain requests and the in-flight sweep
	wait := gfshutdown.GracefulShutdown(context.Background(), config.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"http": func(ctx context.Context) error {
				log.Info("Shutting down HTTP server...")
				return httpServer.Shutdown(ctx)
			},
			"sweeper": func(ctx context.Context) error {
				sup.Stop()
				select {
				case <-supervisorDone:
					return nil
				case <-ctx.Done():
					return ctx.Err()
				}
			},
		})

	select {
	case err = <-errChan:
		sup.Stop()
		<-supervisorDone
		return err
	case exitCode := <-wait:
		if exitCode != 0 {
			return fmt.Errorf("shutdown completed with exit code %d", exitCode)
		}
	}
	log.Info("Program stopped cleanly")
	return nil
}

package main

import (
	"bufio"
	"chat-room/client"
	"chat-room/domain"
	"chat-room/infrastructure/http/server"
	"chat-room/validation"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/gookit/color"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

// Exit codes for the client application.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

// Config defines the client-side environment variables.
type Config struct {
	ServerAddress     string        `env:"CHAT_SERVER_ADDR,default=http://localhost:5000"`
	User              string        `env:"CHAT_USER,required=true"`
	PollInterval      time.Duration `env:"POLL_INTERVAL,default=3s"`
	HeartbeatInterval time.Duration `env:"HEARTBEAT_INTERVAL,default=5s"`
	RequestTimeout    time.Duration `env:"REQUEST_TIMEOUT,default=5s"`
	LogLevel          string        `env:"LOG_LEVEL,default=WARN"`
}

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Client error: %v\n", err)
	}
	os.Exit(code)
}

// run joins the room then keeps the presence alive, polls for new messages
// and sends every stdin line until Ctrl+C or end of input.
func run() (int, error) {
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := client.New(config.ServerAddress, config.User, config.RequestTimeout)
	if _, err := c.Join(ctx); err != nil {
		return exitRuntime, fmt.Errorf("could not join %s as %s: %w", config.ServerAddress, config.User, err)
	}
	fmt.Printf(">>> Joined %s as %s (Ctrl+C to quit, '@name text' for a private message)\n",
		config.ServerAddress, config.User)

	go keepAlive(ctx, log, c, config.HeartbeatInterval)
	go poll(ctx, log, c, config.PollInterval)

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return exitOK, nil
		case line, ok := <-lines:
			if !ok {
				return exitOK, nil
			}
			req, ok := parseLine(line)
			if !ok {
				continue
			}
			if _, err := c.Send(ctx, req); err != nil {
				fmt.Fprintf(os.Stderr, "not sent: %v\n", err)
			}
		}
	}
}

// parseLine turns "@Bob hello" into a private message and anything else into a broadcast.
func parseLine(line string) (validation.MessageRequest, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return validation.MessageRequest{}, false
	}
	if strings.HasPrefix(line, "@") {
		to, text, found := strings.Cut(line[1:], " ")
		if !found || to == "" || strings.TrimSpace(text) == "" {
			return validation.MessageRequest{}, false
		}
		return validation.MessageRequest{To: to, Text: strings.TrimSpace(text), Type: domain.Private.String()}, true
	}
	return validation.MessageRequest{To: domain.BroadcastTarget, Text: line, Type: domain.Broadcast.String()}, true
}

func keepAlive(ctx context.Context, log *slog.Logger, c *client.Client, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.Heartbeat(ctx); err != nil {
				log.Warn("Heartbeat failed", "error", err)
			}
		}
	}
}

// poll prints every message not printed yet.
func poll(ctx context.Context, log *slog.Logger, c *client.Client, interval time.Duration) {
	seen := make(map[string]struct{})
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		messages, err := c.Messages(ctx, 0)
		if err != nil {
			log.Warn("Polling failed", "error", err)
		}
		for _, message := range messages {
			if _, ok := seen[message.ID]; ok {
				continue
			}
			seen[message.ID] = struct{}{}
			fmt.Println(render(message, c.User()))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func render(message server.MessageResponse, user string) string {
	switch message.Type {
	case domain.Status.String():
		return color.FgGray.Render(fmt.Sprintf("(%s) %s %s", message.Time, message.From, message.Text))
	case domain.Private.String():
		line := fmt.Sprintf("(%s) %s reservadamente para %s: %s", message.Time, message.From, message.To, message.Text)
		if message.To == user {
			return color.FgMagenta.Render(line)
		}
		return line
	default:
		return fmt.Sprintf("(%s) %s para %s: %s", message.Time, message.From, message.To, message.Text)
	}
}

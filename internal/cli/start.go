package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"millionaire-service/internal/app"
	"millionaire-service/internal/auth"
	"millionaire-service/internal/config"
	transport "millionaire-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the game server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	b, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer b.Close()

	secret := cfg.Auth.JWTSecret
	if secret == "" {
		secret = uuid.NewString()
		log.Printf("auth.jwt_secret not set, API tokens will not survive a restart")
	}
	tokens := auth.NewTokenIssuer(secret, config.TTLDuration(cfg.Auth.TokenTTL, 24*time.Hour))

	questionService := app.NewQuestionService(b.questions, b.pool)
	if cfg.Questions.SeedFile != "" {
		if err := importQuestionFile(ctx, questionService, cfg.Questions.SeedFile); err != nil {
			return err
		}
	}
	gameService := app.NewGameService(b.games, questionService, app.NewGameHub())
	userService := app.NewUserService(b.users, tokens)

	server := transport.NewServer(gameService, userService, questionService, b.sessions, transport.Options{
		CookieName:   cfg.Session.CookieName,
		SecureCookie: cfg.Session.Secure,
		SessionTTL:   config.TTLDuration(cfg.Session.TTL, 14*24*time.Hour),
	})

	httpServer := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      server.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting millionaire on :%s", finalPort)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

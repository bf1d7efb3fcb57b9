package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sharetube/thumbpreview/internal/controller"
	"github.com/sharetube/thumbpreview/internal/modal"
	"github.com/sharetube/thumbpreview/internal/repository/connection/inmemory"
	sessionRedis "github.com/sharetube/thumbpreview/internal/repository/session/redis"
	"github.com/sharetube/thumbpreview/internal/service/preview"
	"github.com/sharetube/thumbpreview/pkg/ctxlogger"
	"github.com/sharetube/thumbpreview/pkg/redisclient"
	"github.com/sharetube/thumbpreview/pkg/ytthumb"
)

type AppConfig struct {
	Secret              string        `json:"-"`
	Host                string        `json:"host"`
	Port                int           `json:"port"`
	LogLevel            string        `json:"log_level"`
	SessionExp          time.Duration `json:"session_exp"`
	CopyAckDelay        time.Duration `json:"copy_ack_delay"`
	CloseOnOverlayClick bool          `json:"close_on_overlay_click"`
	CloseOnEscape       bool          `json:"close_on_escape"`
	Extractor           string        `json:"extractor"`
	RedisPort           int           `json:"redis_port"`
	RedisHost           string        `json:"redis_host"`
	RedisPassword       string        `json:"-"`
}

func (cfg *AppConfig) Validate() error {
	if cfg.Port < 1 {
		return fmt.Errorf("port must be greater than 0")
	}
	if cfg.Secret == "" {
		return fmt.Errorf("secret must not be empty")
	}
	if cfg.SessionExp <= 0 {
		return fmt.Errorf("session expiration must be greater than 0")
	}
	if cfg.CopyAckDelay <= 0 {
		return fmt.Errorf("copy ack delay must be greater than 0")
	}
	if _, err := ytthumb.NewExtractor(cfg.Extractor); err != nil {
		return err
	}
	if _, err := parseLogLevel(cfg.LogLevel); err != nil {
		return err
	}
	return nil
}

func parseLogLevel(level string) (slog.Level, error) {
	logLevel := slog.LevelInfo
	if err := logLevel.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		return logLevel, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	return logLevel, nil
}

// newHandler wires repositories, the preview service and the transport on top
// of an already connected redis client.
func newHandler(rc *redis.Client, cfg *AppConfig, logger *slog.Logger) (http.Handler, error) {
	extractor, err := ytthumb.NewExtractor(cfg.Extractor)
	if err != nil {
		return nil, err
	}

	sessionRepo := sessionRedis.NewRepo(rc, logger, cfg.SessionExp)
	connectionRepo := inmemory.NewRepo(logger)
	previewService := preview.New(sessionRepo, connectionRepo, extractor, logger, &preview.Config{
		Secret:       cfg.Secret,
		SessionExp:   cfg.SessionExp,
		CopyAckDelay: cfg.CopyAckDelay,
		Modal: modal.Options{
			CloseOnOverlayClick: cfg.CloseOnOverlayClick,
			CloseOnEscape:       cfg.CloseOnEscape,
		},
	})

	return controller.NewController(previewService, logger).GetMux(), nil
}

func Run(ctx context.Context, cfg *AppConfig) error {
	logLevel, err := parseLogLevel(cfg.LogLevel)
	if err != nil {
		return err
	}

	h := ctxlogger.ContextHandler{
		Handler: slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: true,
		}),
	}

	logger := slog.New(&h)

	rc, err := redisclient.NewRedisClient(&redisclient.Config{
		Port:     cfg.RedisPort,
		Host:     cfg.RedisHost,
		Password: cfg.RedisPassword,
	})
	if err != nil {
		return fmt.Errorf("failed to create redis client: %w", err)
	}
	defer rc.Close()

	handler, err := newHandler(rc, cfg, logger)
	if err != nil {
		return err
	}

	server := &http.Server{Addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port), Handler: handler}

	// graceful shutdown
	serverCtx, serverStopCtx := context.WithCancel(ctx)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		<-sig

		shutdownCtx, c := context.WithTimeout(serverCtx, 30*time.Second)
		defer c()

		go func() {
			<-shutdownCtx.Done()
			if shutdownCtx.Err() == context.DeadlineExceeded {
				log.Fatal("graceful shutdown timed out.. forcing exit.")
			}
		}()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Fatal(err)
		}
		serverStopCtx()
	}()

	logger.InfoContext(serverCtx, "starting server", "address", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	<-serverCtx.Done()

	return nil
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sharetube/thumbpreview/internal/app"
	"github.com/sharetube/thumbpreview/pkg/ytthumb"
)

type configVar[T any] struct {
	envKey       string
	flagKey      string
	defaultValue T
	usage        string
}

var (
	secret = configVar[string]{
		envKey:       "PREVIEW_SECRET",
		flagKey:      "secret",
		defaultValue: "",
		usage:        "Secret used to sign session tokens",
	}
	port = configVar[int]{
		envKey:       "PREVIEW_PORT",
		flagKey:      "port",
		defaultValue: 80,
		usage:        "Server port",
	}
	host = configVar[string]{
		envKey:       "PREVIEW_HOST",
		flagKey:      "host",
		defaultValue: "0.0.0.0",
		usage:        "Server host",
	}
	logLevel = configVar[string]{
		envKey:       "PREVIEW_LOG_LEVEL",
		flagKey:      "log-level",
		defaultValue: "INFO",
		usage:        "Logging level",
	}
	sessionExp = configVar[time.Duration]{
		envKey:       "PREVIEW_SESSION_EXP",
		flagKey:      "session-exp",
		defaultValue: 24 * time.Hour,
		usage:        "How long an idle session can be resumed",
	}
	copyAckDelay = configVar[time.Duration]{
		envKey:       "PREVIEW_COPY_ACK_DELAY",
		flagKey:      "copy-ack-delay",
		defaultValue: 1500 * time.Millisecond,
		usage:        "How long the copied acknowledgement stays visible",
	}
	closeOnOverlayClick = configVar[bool]{
		envKey:       "PREVIEW_CLOSE_ON_OVERLAY_CLICK",
		flagKey:      "close-on-overlay-click",
		defaultValue: true,
		usage:        "Close the player overlay on backdrop click",
	}
	closeOnEscape = configVar[bool]{
		envKey:       "PREVIEW_CLOSE_ON_ESCAPE",
		flagKey:      "close-on-escape",
		defaultValue: true,
		usage:        "Close the player overlay on Escape",
	}
	extractor = configVar[string]{
		envKey:       "PREVIEW_EXTRACTOR",
		flagKey:      "extractor",
		defaultValue: ytthumb.ExtractorHeuristic,
		usage:        "Video id extractor (heuristic, regex)",
	}
	redisPort = configVar[int]{
		envKey:       "REDIS_PORT",
		flagKey:      "redis-port",
		defaultValue: 6379,
		usage:        "Redis port",
	}
	redisHost = configVar[string]{
		envKey:       "REDIS_HOST",
		flagKey:      "redis-host",
		defaultValue: "localhost",
		usage:        "Redis host",
	}
	redisPassword = configVar[string]{
		envKey:       "REDIS_PASSWORD",
		flagKey:      "redis-password",
		defaultValue: "",
		usage:        "Redis password",
	}
)

// bind registers the flag, env var and default for v under one viper key.
func bind[T any](v configVar[T], define func(name string, value T, usage string) *T) {
	define(v.flagKey, v.defaultValue, v.usage)
	viper.BindEnv(v.flagKey, v.envKey)
	viper.SetDefault(v.flagKey, v.defaultValue)
}

func loadAppConfig() *app.AppConfig {
	bind(secret, pflag.String)
	bind(port, pflag.Int)
	bind(host, pflag.String)
	bind(logLevel, pflag.String)
	bind(sessionExp, pflag.Duration)
	bind(copyAckDelay, pflag.Duration)
	bind(closeOnOverlayClick, pflag.Bool)
	bind(closeOnEscape, pflag.Bool)
	bind(extractor, pflag.String)
	bind(redisPort, pflag.Int)
	bind(redisHost, pflag.String)
	bind(redisPassword, pflag.String)
	pflag.Parse()

	viper.BindPFlags(pflag.CommandLine)

	return &app.AppConfig{
		Secret:              viper.GetString(secret.flagKey),
		Host:                viper.GetString(host.flagKey),
		Port:                viper.GetInt(port.flagKey),
		LogLevel:            viper.GetString(logLevel.flagKey),
		SessionExp:          viper.GetDuration(sessionExp.flagKey),
		CopyAckDelay:        viper.GetDuration(copyAckDelay.flagKey),
		CloseOnOverlayClick: viper.GetBool(closeOnOverlayClick.flagKey),
		CloseOnEscape:       viper.GetBool(closeOnEscape.flagKey),
		Extractor:           viper.GetString(extractor.flagKey),
		RedisPort:           viper.GetInt(redisPort.flagKey),
		RedisHost:           viper.GetString(redisHost.flagKey),
		RedisPassword:       viper.GetString(redisPassword.flagKey),
	}
}

func main() {
	ctx := context.Background()

	appConfig := loadAppConfig()
	if err := appConfig.Validate(); err != nil {
		log.Fatalf("invalid config: %s", err)
	}

	jsonConfig, _ := json.MarshalIndent(appConfig, "", "  ")
	fmt.Printf("starting app with config: %s\n", jsonConfig)

	if err := app.Run(ctx, appConfig); err != nil {
		log.Fatal(err)
	}
}

package app

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/adanyl0v/tasklist/internal/config"
)

func newDefaultLogger() zerolog.Logger {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	zerolog.TimestampFieldName = "timestamp"

	logger := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Caller().
		Int("pid", os.Getpid()).
		Logger()

	logger.Info().Msg("initialized default logger")
	return logger
}

func (a *App) MustInitApplicationLogger() {
	w, err := applyEnvLevel(a.cfg.Env, os.Stdout)
	if err != nil {
		a.logger.Error().
			Str("env", a.cfg.Env).
			Msg("unknown env")
		panic(err)
	}

	a.logger = a.logger.Output(w)
	a.logger.Info().Msg("initialized application logger")
}

// applyEnvLevel sets the global level for env and returns the writer the
// application logger should use.
func applyEnvLevel(env string, out io.Writer) (io.Writer, error) {
	switch env {
	case config.EnvDev:
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case config.EnvProd:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case config.EnvLocal:
		zerolog.SetGlobalLevel(zerolog.TraceLevel)

		consoleWriter := zerolog.NewConsoleWriter()
		consoleWriter.TimeFormat = time.DateTime
		consoleWriter.Out = out
		return consoleWriter, nil
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
	return out, nil
}

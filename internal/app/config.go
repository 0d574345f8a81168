package app

import (
	_ "github.com/joho/godotenv/autoload"

	"github.com/adanyl0v/tasklist/internal/config"
)

func (a *App) MustReadEnv() {
	a.mustReadConfig(config.NewEnvReader())
}

func (a *App) mustReadConfig(r config.Reader) {
	cfg, err := r.Read()
	if err != nil {
		a.logger.Error().
			Err(err).
			Msg("failed to read env")
		panic(err)
	}
	a.logger.Info().
		Str("env", cfg.Env).
		Str("storage_driver", cfg.Storage.Driver).
		Msg("read env")

	a.cfg = cfg
}

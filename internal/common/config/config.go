package config

import (
	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Debug bool `env:"DEBUG" envDefault:"false"`

	Server struct {
		Port   int    `env:"PORT" envDefault:"3000"`
		Origin string `env:"ORIGIN" envDefault:"*"`
	}

	Storage struct {
		// Driver selects the collection backend: "file" (default) or "redis".
		Driver string `env:"STORAGE_DRIVER" envDefault:"file"`
		Dir    string `env:"DATA_DIR" envDefault:"user_data"`
		File   string `env:"DATA_FILE" envDefault:"users.json"`

		// LegacyMirrorFile, when set, keeps a second byte-identical copy of
		// the collection under this name in the same directory.
		LegacyMirrorFile string `env:"LEGACY_MIRROR_FILE" envDefault:""`
	}

	Redis struct {
		Host     string `env:"REDIS_HOST" envDefault:"localhost"`
		Port     int    `env:"REDIS_PORT" envDefault:"6379"`
		Password string `env:"REDIS_PASSWORD" envDefault:""`
		DB       int    `env:"REDIS_DB" envDefault:"0"`
	}

	Telegram struct {
		BotToken string `env:"BOT_TOKEN" envDefault:""`

		// RequireInitData gates the optional init-data validation on /api
		// routes. Off by default: the mini-app surface is unauthenticated.
		RequireInitData bool `env:"TELEGRAM_REQUIRE_INIT_DATA" envDefault:"false"`
	}

	DailyCode struct {
		Secret string `env:"DAILY_CODE_SECRET" envDefault:"dev-secret-change-me"`
	}

	Stats struct {
		ReelsLimit int `env:"REELS_LIMIT" envDefault:"1000"`
	}
}

func Load() *Config {
	// A missing .env file is fine; production sets variables directly.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		panic(err)
	}

	return cfg
}

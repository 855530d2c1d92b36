package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel   string `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort   string `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	SocketPort string `yaml:"socket-port" env:"SOCKET_PORT" env-default:"9091"`
	Redis      Redis  `yaml:"redis"`
	Board      Board  `yaml:"board"`
	Match      Match  `yaml:"match"`
}

type Redis struct {
	Host    string        `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port    string        `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	GameTTL time.Duration `yaml:"game-ttl" env:"REDIS_GAME_TTL" env-default:"24h"`
}

// Board - defaults for games created without explicit board parameters.
type Board struct {
	Dimension int `yaml:"dimension" env:"BOARD_DIMENSION" env-default:"3"`
	WinLength int `yaml:"win-length" env:"BOARD_WIN_LENGTH" env-default:"3"`
}

type Match struct {
	WinsToMatch int `yaml:"wins-to-match" env:"MATCH_WINS_TO_MATCH" env-default:"5"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}

	return config
}

// Load - reads the yaml file at path, then applies environment overrides.
func Load(path string) (*Config, error) {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		return nil, fmt.Errorf("unable to load config file: %w", err)
	}

	return config, nil
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}

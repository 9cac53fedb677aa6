package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	App      App      `yaml:"app"`
	HTTP     HTTP     `yaml:"http"`
	Log      Log      `yaml:"log"`
	Registry Registry `yaml:"registry"`
	Secrets  Secrets  `yaml:"secrets"`
	Rabbit   Rabbit   `yaml:"rabbit"`
}

type App struct {
	Name    string `yaml:"name" env:"APP_NAME" env-default:"event-bus-gateway"`
	Version string `yaml:"version" env:"APP_VERSION" env-default:"1.0.0"`
}

type HTTP struct {
	Port string `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
}

type Log struct {
	Level string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
}

type Registry struct {
	WhiteList               PatternList `yaml:"white_list" env:"REGISTRY_WHITE_LIST"`
	BlackList               PatternList `yaml:"black_list" env:"REGISTRY_BLACK_LIST"`
	CachePath               string      `yaml:"cache_path" env:"REGISTRY_CACHE_PATH"`
	ConsumerQueueListenName string      `yaml:"consumer_queue_listen_name" env:"CONSUMER_QUEUE_LISTEN_NAME"`
	EventBusExchangeName    string      `yaml:"event_bus_exchange_name" env:"EVENT_BUS_EXCHANGE_NAME" env-default:"events"`
	ConfigurationPath       string      `yaml:"configuration_path" env:"CONFIGURATION_PATH"`
}

type Secrets struct {
	Backend   string `yaml:"backend" env:"SECRETS_BACKEND" env-default:"env"`
	RedisAddr string `yaml:"redis_addr" env:"SECRETS_REDIS_ADDR" env-default:"localhost:6379"`
}

type Rabbit struct {
	MaxConnectAttempts int      `yaml:"max_connect_attempts" env:"RABBIT_MAX_CONNECT_ATTEMPTS" env-default:"5"`
	DialTimeout        Duration `yaml:"dial_timeout" env:"RABBIT_DIAL_TIMEOUT" env-default:"5s"`
	ReadTimeout        Duration `yaml:"read_timeout" env:"RABBIT_READ_TIMEOUT" env-default:"3s"`
	RetryDelay         Duration `yaml:"retry_delay" env:"RABBIT_RETRY_DELAY" env-default:"500ms"`
}

func New() (*Config, error) {
	return Load("config.yaml")
}

func Load(path string) (*Config, error) {
	cfg := &Config{}

	if err := cleanenv.ReadConfig(path, cfg); err != nil {
		// fallback to env vars if file not found
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("config error: %w", err)
		}
	} else {
		// Allow env vars to override config file
		cleanenv.ReadEnv(cfg)
	}

	return cfg, nil
}

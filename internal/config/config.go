// Package config предоставляет структуры и функцию для парсинга и загрузки конфига клиента.
package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек клиента
type Config struct {
	Env         string            `yaml:"env" env:"PROMOPING_ENV" env-default:"local"`
	APIBaseURL  string            `yaml:"api_base_url" env:"PROMOPING_API_BASE_URL" env-default:"https://api.promoping.app"`
	SSIDBaseURL map[string]string `yaml:"ssid_base_url"`
	HTTPClient  `yaml:"http_client"`
	SessionPath string `yaml:"session_path" env:"PROMOPING_SESSION_PATH" env-default:".promoping/session"`
	CacheDir    string `yaml:"cache_dir" env:"PROMOPING_CACHE_DIR" env-default:".promoping/cache"`
}

// HTTPClient структура для настройки исходящих HTTP-запросов
type HTTPClient struct {
	ConnectTimeout time.Duration `yaml:"connect_timeout" env-default:"30s"`
	ReadTimeout    time.Duration `yaml:"read_timeout" env-default:"30s"`
	RequestsPerSec float64       `yaml:"requests_per_sec" env-default:"10"`
}

// MustLoad функция для загрузки конфига, завершает процесс при любой ошибке.
// Путь к файлу берётся из CONFIG_PATH; если переменная не задана,
// конфиг собирается из переменных окружения и значений по умолчанию.
func MustLoad() *Config {
	var cfg Config

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			log.Fatalf("cannot read config from env: %s", err)
		}
		return &cfg
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("file: %s - does not exist", configPath)
	}
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return &cfg
}

// IsProd сообщает, работает ли клиент в продовом окружении.
// В не-продовых окружениях включается отладочное логирование тел запросов.
func (c *Config) IsProd() bool {
	return c.Env == "prod"
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"APIBaseURL: %s\n"+
			"SSIDBaseURL: %v\n"+
			"HTTPClient:\n"+
			"  ConnectTimeout: %s\n"+
			"  ReadTimeout: %s\n"+
			"  RequestsPerSec: %g\n"+
			"SessionPath: %s\n"+
			"CacheDir: %s\n",
		c.Env,
		c.APIBaseURL,
		c.SSIDBaseURL,
		c.ConnectTimeout,
		c.ReadTimeout,
		c.RequestsPerSec,
		c.SessionPath,
		c.CacheDir,
	)
}

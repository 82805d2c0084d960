package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const defaultConfigPath = "./config/local.yaml"

type Config struct {
	Env         string            `yaml:"env" env:"ENV" env-default:"prod"`
	ErrorLog    string            `yaml:"error_log" env-default:"errors.log"`
	HTTPServer  `yaml:"http_server"`
	Store       Store             `yaml:"store"`
	Journal     Journal           `yaml:"journal"`
	Rules       Rules             `yaml:"rules"`
	Webhook     Webhook           `yaml:"webhook"`
	Projects    map[string]string `yaml:"projects"`
	CORSOrigins []string          `yaml:"cors_origins" env-default:"http://localhost:5173"`

	// операторский API закрыт basic auth, если логин задан
	AdminLogin string `yaml:"admin_login" env:"ADMIN_LOGIN"`
	AdminPass  string `yaml:"admin_pass" env:"ADMIN_PASS"`
}

type HTTPServer struct {
	Address     string        `yaml:"address" env:"HTTP_ADDRESS" env-default:"localhost:4001"`
	Timeout     time.Duration `yaml:"timeout" env-default:"30s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
	// OpTimeout ограничивает одну операцию синхронизации/сортировки
	OpTimeout time.Duration `yaml:"op_timeout" env-default:"2m"`
}

// Store описывает хранилище рабочих листов.
// xlsx: документ = файл <dir>/<id>.xlsx, memory: только для разработки.
type Store struct {
	Driver string `yaml:"driver" env:"STORE_DRIVER" env-default:"xlsx"`
	Dir    string `yaml:"dir" env:"STORE_DIR" env-default:"./data"`
}

type Journal struct {
	Driver string `yaml:"driver" env:"JOURNAL_DRIVER" env-default:"sqlite3"`
	DSN    string `yaml:"dsn" env:"JOURNAL_DSN" env-default:"file:journal.db?cache=shared"`
}

type Rules struct {
	Sheet string        `yaml:"sheet" env-default:"Правила синхро"`
	TTL   time.Duration `yaml:"ttl" env-default:"300s"`
}

type Webhook struct {
	Secret string `yaml:"secret" env:"WEBHOOK_SECRET"`
}

// DocumentFor возвращает id документа проекта (mt, sk, ss ...).
func (c *Config) DocumentFor(project string) (string, bool) {
	id, ok := c.Projects[project]
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

func Load(path string) (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func MustConfig() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = defaultConfigPath
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("config file does not exist: %s", configPath)
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("cannot read config: %s", err)
	}

	return cfg
}

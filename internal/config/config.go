package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/spf13/viper"
)

// Config хранит конфигурацию сервера.
type Config struct {
	ServerAddress    string `json:"server_address"`
	BaseURL          string `json:"base_url"`
	DatabaseDSN      string `json:"database_dsn"`
	PgMigrationsPath string `json:"pg_migrations_path"`
	RedisAddr        string `json:"redis_addr"`
	RedisPassword    string `json:"redis_password"`
	CacheTTLSeconds  int    `json:"cache_ttl_seconds"`
	CodeLength       int    `json:"code_length"`
	GenMaxAttempts   int    `json:"gen_max_attempts"`
	AuthSecret       string `json:"auth_secret"`
	EnableHTTPS      bool   `json:"enable_https"`
	TLSCertPath      string `json:"tls_cert_path"`
	TLSKeyPath       string `json:"tls_key_path"`
}

// NewConfig инициализирует конфигурацию: значения по умолчанию, переменные
// окружения (включая .env), JSON-файл и флаги командной строки.
func NewConfig() *Config {

	viper.SetDefault("SERVER_ADDRESS", "localhost:8080")
	viper.SetDefault("BASE_URL", "http://localhost:8080/links")
	viper.SetDefault("DATABASE_DSN", "")
	viper.SetDefault("PG_MIGRATIONS_PATH", "internal/migrations")
	viper.SetDefault("REDIS_ADDR", "")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("CACHE_TTL_SECONDS", 3600)
	viper.SetDefault("CODE_LENGTH", 6)
	viper.SetDefault("GEN_MAX_ATTEMPTS", 10)
	viper.SetDefault("AUTH_SECRET", "local-dev-secret")
	viper.SetDefault("ENABLE_HTTPS", false)
	viper.SetDefault("TLS_CERT_PATH", "cert.pem")
	viper.SetDefault("TLS_KEY_PATH", "key.pem")

	viper.AutomaticEnv()

	// Читаем .env, если есть (не переопределяет переменные окружения).
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig()

	serverAddress := flag.String("a", "", "server address")
	baseURL := flag.String("b", "", "base URL for short links")
	databaseDSN := flag.String("d", "", "PostgreSQL DSN")
	redisAddr := flag.String("r", "", "Redis address for the redirect cache")
	enableHTTPS := flag.Bool("s", false, "enable HTTPS")
	tlsCertPath := flag.String("cert", "", "path to TLS certificate")
	tlsKeyPath := flag.String("key", "", "path to TLS key")
	configPath := flag.String("c", "", "path to JSON config file")
	flag.StringVar(configPath, "config", "", "path to JSON config file")

	flag.Parse()

	if *configPath == "" {
		*configPath = os.Getenv("CONFIG")
	}

	cfg := &Config{
		ServerAddress:    viper.GetString("SERVER_ADDRESS"),
		BaseURL:          viper.GetString("BASE_URL"),
		DatabaseDSN:      viper.GetString("DATABASE_DSN"),
		PgMigrationsPath: viper.GetString("PG_MIGRATIONS_PATH"),
		RedisAddr:        viper.GetString("REDIS_ADDR"),
		RedisPassword:    viper.GetString("REDIS_PASSWORD"),
		CacheTTLSeconds:  viper.GetInt("CACHE_TTL_SECONDS"),
		CodeLength:       viper.GetInt("CODE_LENGTH"),
		GenMaxAttempts:   viper.GetInt("GEN_MAX_ATTEMPTS"),
		AuthSecret:       viper.GetString("AUTH_SECRET"),
		EnableHTTPS:      viper.GetBool("ENABLE_HTTPS"),
		TLSCertPath:      viper.GetString("TLS_CERT_PATH"),
		TLSKeyPath:       viper.GetString("TLS_KEY_PATH"),
	}

	// JSON-файл заполняет только пустые значения: окружение приоритетнее.
	if *configPath != "" {
		data, err := os.ReadFile(*configPath)
		if err != nil {
			log.Printf("Не удалось прочитать JSON-файл конфигурации %q: %v", *configPath, err)
		} else {
			jsonCfg := &Config{}
			if err := json.Unmarshal(data, jsonCfg); err != nil {
				log.Printf("Ошибка разбора JSON-файла конфигурации: %v", err)
			} else {
				cfg.fillFrom(jsonCfg)
			}
		}
	}

	// Флаги имеют высший приоритет.
	if *serverAddress != "" {
		cfg.ServerAddress = *serverAddress
	}
	if *baseURL != "" {
		cfg.BaseURL = *baseURL
	}
	if *databaseDSN != "" {
		cfg.DatabaseDSN = *databaseDSN
	}
	if *redisAddr != "" {
		cfg.RedisAddr = *redisAddr
	}
	if *enableHTTPS {
		cfg.EnableHTTPS = true
	}
	if *tlsCertPath != "" {
		cfg.TLSCertPath = *tlsCertPath
	}
	if *tlsKeyPath != "" {
		cfg.TLSKeyPath = *tlsKeyPath
	}

	log.Printf("Инициализация конфигурации: ServerAddress=%s", cfg.ServerAddress)
	log.Printf("Инициализация конфигурации: BaseURL=%s", cfg.BaseURL)
	log.Printf("Инициализация конфигурации: PgMigrationsPath=%s", cfg.PgMigrationsPath)
	log.Printf("Инициализация конфигурации: RedisAddr=%s", cfg.RedisAddr)
	log.Printf("Инициализация конфигурации: CodeLength=%d", cfg.CodeLength)
	log.Printf("Инициализация конфигурации: EnableHTTPS=%v", cfg.EnableHTTPS)

	if err := cfg.Validate(); err != nil {
		fmt.Printf("Ошибка конфигурации: %v\n", err)
	}

	return cfg
}

func (cfg *Config) fillFrom(other *Config) {
	if cfg.DatabaseDSN == "" {
		cfg.DatabaseDSN = other.DatabaseDSN
	}
	if cfg.RedisAddr == "" {
		cfg.RedisAddr = other.RedisAddr
	}
	if cfg.RedisPassword == "" {
		cfg.RedisPassword = other.RedisPassword
	}
	if other.ServerAddress != "" && cfg.ServerAddress == viper.GetString("SERVER_ADDRESS") {
		cfg.ServerAddress = other.ServerAddress
	}
	if other.BaseURL != "" && cfg.BaseURL == viper.GetString("BASE_URL") {
		cfg.BaseURL = other.BaseURL
	}
	if other.TLSCertPath != "" {
		cfg.TLSCertPath = other.TLSCertPath
	}
	if other.TLSKeyPath != "" {
		cfg.TLSKeyPath = other.TLSKeyPath
	}
	if other.EnableHTTPS {
		cfg.EnableHTTPS = true
	}
}

// Validate проверяет корректность конфигурации.
func (cfg *Config) Validate() error {
	if cfg.ServerAddress == "" {
		return fmt.Errorf("адрес сервера не может быть пустым")
	}
	if cfg.BaseURL == "" {
		return fmt.Errorf("базовый URL не может быть пустым")
	}
	if cfg.CodeLength < 1 || cfg.CodeLength > 30 {
		return fmt.Errorf("длина кода должна быть в пределах 1..30, получено %d", cfg.CodeLength)
	}
	if cfg.GenMaxAttempts < 1 {
		return fmt.Errorf("число попыток генерации должно быть положительным")
	}
	return nil
}

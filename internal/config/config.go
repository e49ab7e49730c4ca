package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config centraliza a configuração carregada do ambiente.
type Config struct {
	Port           int
	StoreDriver    string
	DBDSN          string
	RedisURL       string
	LookupCacheTTL time.Duration
	JWTAccessTTL   time.Duration
	JWTSecret      string
	Operators      []Operator
	AllowOrigins   []string
	RateLimitAuth  RateLimitConfig
	RateLimitAPI   RateLimitConfig
	Storage        StorageConfig
	UploadMaxBytes int64
}

// Operator é um responsável autorizado a assinar operações.
type Operator struct {
	Name         string
	PasswordHash string
}

// RateLimitConfig representa limites simples para throttling.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// StorageConfig descreve o destino dos anexos (termos e notas fiscais).
type StorageConfig struct {
	Provider     string
	Bucket       string
	Region       string
	Endpoint     string
	AccessKey    string
	SecretKey    string
	UsePathStyle bool
	PresignTTL   time.Duration
}

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"

	ProviderNoop = "noop"
	ProviderS3   = "s3"
)

// Load carrega variáveis de ambiente e aplica defaults seguros.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	portStr := getEnv("PORT", "8080")
	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 {
		return nil, errors.New("PORT inválida")
	}
	cfg.Port = port

	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(getEnv("STORE_DRIVER", DriverPostgres)))
	switch cfg.StoreDriver {
	case DriverPostgres:
		cfg.DBDSN = getEnv("DB_DSN", "")
		if cfg.DBDSN == "" {
			return nil, errors.New("DB_DSN obrigatório")
		}
	case DriverMemory:
	default:
		return nil, fmt.Errorf("STORE_DRIVER inválido: %s", cfg.StoreDriver)
	}

	// Sem REDIS_URL as tabelas de nomes do histórico são montadas a cada consulta.
	cfg.RedisURL = strings.TrimSpace(getEnv("REDIS_URL", ""))
	cfg.LookupCacheTTL, err = parseDurationEnv("LOOKUP_CACHE_TTL", 5*time.Minute)
	if err != nil {
		return nil, err
	}

	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", ""))
	if len(cfg.JWTSecret) < 32 {
		return nil, errors.New("JWT_SECRET deve ter pelo menos 32 caracteres")
	}

	cfg.JWTAccessTTL, err = parseDurationEnv("JWT_ACCESS_TTL", 8*time.Hour)
	if err != nil {
		return nil, err
	}

	cfg.Operators, err = ParseOperators(getEnv("OPERATORS", ""))
	if err != nil {
		return nil, err
	}

	allowOrigins := strings.Split(getEnv("ALLOW_ORIGINS", ""), ",")
	for _, origin := range allowOrigins {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			cfg.AllowOrigins = append(cfg.AllowOrigins, origin)
		}
	}

	cfg.RateLimitAuth = RateLimitConfig{RequestsPerSecond: 1, Burst: 5}
	cfg.RateLimitAPI = RateLimitConfig{RequestsPerSecond: 10, Burst: 40}

	cfg.Storage, err = loadStorage()
	if err != nil {
		return nil, err
	}

	maxBytes, err := strconv.ParseInt(getEnv("UPLOAD_MAX_BYTES", "10485760"), 10, 64)
	if err != nil || maxBytes <= 0 {
		return nil, errors.New("UPLOAD_MAX_BYTES inválido")
	}
	cfg.UploadMaxBytes = maxBytes

	return cfg, nil
}

func loadStorage() (StorageConfig, error) {
	sc := StorageConfig{
		Provider:  strings.ToLower(strings.TrimSpace(getEnv("STORAGE_PROVIDER", ProviderNoop))),
		Bucket:    strings.TrimSpace(getEnv("S3_BUCKET", "")),
		Region:    strings.TrimSpace(getEnv("S3_REGION", "us-east-1")),
		Endpoint:  strings.TrimSpace(getEnv("S3_ENDPOINT", "")),
		AccessKey: strings.TrimSpace(getEnv("S3_ACCESS_KEY", "")),
		SecretKey: strings.TrimSpace(getEnv("S3_SECRET_KEY", "")),
	}
	pathStyle, err := strconv.ParseBool(getEnv("S3_USE_PATH_STYLE", "false"))
	if err != nil {
		return sc, errors.New("S3_USE_PATH_STYLE inválido")
	}
	sc.UsePathStyle = pathStyle

	sc.PresignTTL, err = parseDurationEnv("PRESIGN_TTL", 15*time.Minute)
	if err != nil {
		return sc, err
	}

	switch sc.Provider {
	case ProviderNoop:
	case ProviderS3:
		if sc.Bucket == "" {
			return sc, errors.New("S3_BUCKET obrigatório")
		}
	default:
		return sc, fmt.Errorf("STORAGE_PROVIDER inválido: %s", sc.Provider)
	}
	return sc, nil
}

// ParseOperators lê a lista "Nome|hash;Nome|hash". O hash é gerado por
// cmd/hashpass.
func ParseOperators(raw string) ([]Operator, error) {
	var out []Operator
	seen := make(map[string]struct{})
	for _, item := range strings.Split(raw, ";") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		name, hash, ok := strings.Cut(item, "|")
		name, hash = strings.TrimSpace(name), strings.TrimSpace(hash)
		if !ok || name == "" || hash == "" {
			return nil, errors.New("OPERATORS inválido: use Nome|hash separados por ;")
		}
		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("OPERATORS: operador duplicado %q", name)
		}
		seen[key] = struct{}{}
		out = append(out, Operator{Name: name, PasswordHash: hash})
	}
	return out, nil
}

func getEnv(key, def string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return def
}

func parseDurationEnv(key string, def time.Duration) (time.Duration, error) {
	val := getEnv(key, "")
	if val == "" {
		return def, nil
	}
	dur, err := time.ParseDuration(val)
	if err != nil || dur <= 0 {
		return 0, errors.New(key + " inválido")
	}
	return dur, nil
}

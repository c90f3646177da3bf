package env

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

type Env struct {
	AppEnv     string
	AddrClient string
	Addr       string

	DBDriver string
	DBHost   string
	DBPort   string
	DBName   string
	DBUser   string
	DBPass   string
	SSLMode  string
	DBPath   string

	SecretKey string
	TokenTTL  time.Duration
	AuthMode  string

	AdminName     string
	AdminEmail    string
	AdminPassword string

	UploadDir    string
	MaxUploadMB  int
	RedisAddr    string
	CacheTTL     time.Duration
	KafkaBrokers []string

	GRPCHealthAddr string
}

const (
	AuthModeTable  = "table"
	AuthModeStatic = "static"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

var (
	cfg  *Env
	once sync.Once
)

// Start loads the configuration once and returns the shared instance.
func Start() *Env {
	once.Do(func() {
		cfg = Load()
	})
	return cfg
}

// Load reads the environment without caching. Tests use it directly.
func Load() *Env {
	return &Env{
		AppEnv:     getEnv("APP_ENV", "production"),
		AddrClient: getEnv("ADDR_CLIENT", "http://localhost:3000"),
		Addr:       getEnv("ADDR", "localhost:8060"),

		DBDriver: strings.ToLower(getEnv("DB_DRIVER", DriverPostgres)),
		DBHost:   getEnv("DB_HOST", "localhost"),
		DBPort:   getEnv("DB_PORT", "5432"),
		DBName:   getEnv("DB_NAME", "inventory"),
		DBUser:   getEnv("DB_USER", "postgres"),
		DBPass:   getEnv("DB_PASS", "postgres"),
		SSLMode:  getEnv("SSL_MODE", "disable"),
		DBPath:   getEnv("DB_PATH", "inventory.db"),

		SecretKey: getEnv("SECRET_KEY", ""),
		TokenTTL:  time.Duration(getEnvInt("TOKEN_TTL_MINUTES", 60)) * time.Minute,
		AuthMode:  strings.ToLower(getEnv("AUTH_MODE", AuthModeTable)),

		AdminName:     getEnv("ADMIN_NAME", "Administrator"),
		AdminEmail:    getEnv("ADMIN_EMAIL", "admin@example.com"),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),

		UploadDir:    getEnv("UPLOAD_DIR", "public/uploads"),
		MaxUploadMB:  getEnvInt("MAX_UPLOAD_MB", 10),
		RedisAddr:    getEnv("REDIS_ADDR", ""),
		CacheTTL:     time.Duration(getEnvInt("CACHE_TTL_SECONDS", 300)) * time.Second,
		KafkaBrokers: splitList(getEnv("KAFKA_BROKERS", "")),

		GRPCHealthAddr: getEnv("GRPC_HEALTH_ADDR", ""),
	}
}

func (e *Env) IsDevelopment() bool {
	return e.AppEnv == "development"
}

// Validate checks the settings the server cannot start without. In development an
// empty secret is replaced by a random one that lives as long as the process.
func (e *Env) Validate() error {
	if e.SecretKey == "" {
		if !e.IsDevelopment() {
			return fmt.Errorf("SECRET_KEY environment variable is not set; required outside development")
		}
		key := make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return fmt.Errorf("error generating development secret: %w", err)
		}
		e.SecretKey = hex.EncodeToString(key)
		log.Printf("SECRET_KEY not set; using a random development secret, sessions end on restart")
	}
	switch e.AuthMode {
	case AuthModeTable, AuthModeStatic:
	default:
		return fmt.Errorf("invalid AUTH_MODE %q", e.AuthMode)
	}
	switch e.DBDriver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("invalid DB_DRIVER %q", e.DBDriver)
	}
	if e.AuthMode == AuthModeStatic && (e.AdminEmail == "" || e.AdminPassword == "") {
		return fmt.Errorf("AUTH_MODE=static requires ADMIN_EMAIL and ADMIN_PASSWORD")
	}
	if e.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL_MINUTES must be positive")
	}
	return nil
}

// String masks secrets.
func (e *Env) String() string {
	return fmt.Sprintf("Env{app: %s, addr: %s, db: %s/%s, auth: %s, redis: %q, kafka: %v, secret: ***}",
		e.AppEnv, e.Addr, e.DBDriver, e.DBName, e.AuthMode, e.RedisAddr, e.KafkaBrokers)
}

func getEnv(name string, fallback string) string {
	if env, ok := os.LookupEnv(name); ok {
		return env
	}
	return fallback
}

func getEnvInt(name string, fallback int) int {
	raw, ok := os.LookupEnv(name)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fallback
	}
	return n
}

func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

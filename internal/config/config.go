package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// App holds the runtime configuration loaded from environment variables.
type App struct {
	Env      string
	HTTPPort string

	DBDriver    string
	DatabaseURL string
	RedisAddr   string
	StaticDir   string

	SessionName   string
	SessionSecret string
	SessionTTL    time.Duration
	JWTIssuer     string
	JWTSigningKey string

	RateLimitPerMin  int
	RateLimitBackend string
	CORSOrigins      []string

	AdminUsername   string
	AdminPassword   string
	DefaultExamDate string
	DefaultVenue    string
	DefaultLogo     string
	BcryptCost      int

	CardLayout       string
	CardShowDuration bool
	CardDuration     string
	CardQR           bool
}

// Load reads an optional .env file and returns config populated from the environment.
func Load() App {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using process environment")
	}
	return FromEnv()
}

// FromEnv builds the config from the process environment only.
func FromEnv() App {
	return App{
		Env:      getEnv("APP_ENV", "dev"),
		HTTPPort: getEnv("HTTP_PORT", "5000"),

		DBDriver:    getEnv("DB_DRIVER", "sqlite3"),
		DatabaseURL: getEnv("DATABASE_URL", "./data.db"),
		RedisAddr:   getEnv("REDIS_ADDR", ""),
		StaticDir:   getEnv("STATIC_DIR", "static"),

		SessionName:   getEnv("SESSION_NAME", "examportal_session"),
		SessionSecret: getEnv("SESSION_SECRET", "dev-session-secret-change"),
		SessionTTL:    durationEnv("SESSION_TTL", 12*time.Hour),
		JWTIssuer:     getEnv("JWT_ISSUER", "examportal"),
		JWTSigningKey: getEnv("JWT_SIGNING_KEY", "dev-signing-secret-change"),

		RateLimitPerMin:  intEnv("RATE_LIMIT_PER_MIN", 60),
		RateLimitBackend: getEnv("RATE_LIMIT_BACKEND", "memory"),
		CORSOrigins:      listEnv("CORS_ORIGINS", []string{"*"}),

		AdminUsername:   getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword:   getEnv("ADMIN_PASSWORD", "admin123"),
		DefaultExamDate: getEnv("DEFAULT_EXAM_DATE", "2025-12-01"),
		DefaultVenue:    getEnv("DEFAULT_VENUE", "Online"),
		DefaultLogo:     getEnv("DEFAULT_LOGO", "logo.png"),
		BcryptCost:      intEnv("BCRYPT_COST", 10),

		CardLayout:       getEnv("ADMIT_CARD_LAYOUT", "panel"),
		CardShowDuration: boolEnv("ADMIT_CARD_SHOW_DURATION", true),
		CardDuration:     getEnv("ADMIT_CARD_DURATION", "2 hours"),
		CardQR:           boolEnv("ADMIT_CARD_QR", false),
	}
}

// Production reports whether the app runs with release settings.
func (a App) Production() bool {
	return a.Env == "production" || a.Env == "prod"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		d, err := time.ParseDuration(val)
		if err != nil {
			log.Printf("invalid duration for %s: %v, using fallback %s", key, err, fallback)
			return fallback
		}
		return d
	}
	return fallback
}

func boolEnv(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if val == "1" || val == "true" || val == "TRUE" {
			return true
		}
		if val == "0" || val == "false" || val == "FALSE" {
			return false
		}
		log.Printf("invalid bool for %s, using fallback %v", key, fallback)
	}
	return fallback
}

func intEnv(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		var parsed int
		if _, err := fmt.Sscanf(val, "%d", &parsed); err == nil {
			return parsed
		}
		log.Printf("invalid int for %s, using fallback %d", key, fallback)
	}
	return fallback
}

func listEnv(key string, fallback []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

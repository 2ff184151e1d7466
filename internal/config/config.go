package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port      string
	DBDSN     string
	LogFile   string
	JWTSecret []byte
	TokenTTL  time.Duration

	// Optional: enables the pub/sub bridge and token revocation.
	RedisAddr string

	// Where browser clients live; OAuth callbacks redirect here.
	FrontendURL string

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string

	MidtransServerKey  string
	MidtransProduction bool
}

func Load() Config {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := Config{
		Port:               getenv("PORT", "8080"),
		DBDSN:              getenv("DB_DSN", "paperback.db"),
		LogFile:            getenv("LOG_FILE", "./paperback.log"),
		JWTSecret:          []byte(getenv("JWT_SECRET", "dev-only-secret")),
		TokenTTL:           durenv("TOKEN_TTL", 24*time.Hour),
		RedisAddr:          os.Getenv("REDIS_ADDR"),
		FrontendURL:        getenv("FRONTEND_URL", "http://localhost:5173"),
		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURL:  getenv("GOOGLE_REDIRECT_URL", "http://localhost:8080/auth/google/callback"),
		MidtransServerKey:  os.Getenv("MIDTRANS_SERVER_KEY"),
		MidtransProduction: os.Getenv("MIDTRANS_ENV") == "production",
	}

	log.Printf("[config] PORT=%s DB_DSN=%s REDIS_ADDR=%s FRONTEND_URL=%s", cfg.Port, cfg.DBDSN, cfg.RedisAddr, cfg.FrontendURL)
	return cfg
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func durenv(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("[config] bad %s=%q, using %s", key, v, def)
		return def
	}
	return d
}

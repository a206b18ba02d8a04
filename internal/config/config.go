package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/mind-engage/fundreview/internal/scoring"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type Config struct {
	Mode     Mode
	HTTPAddr string

	DBDriver string
	DBDSN    string

	EnableLocalAuth bool
	AuthSecret      string
	AdminUser       string
	AdminPassHash   string // bcrypt

	CORSOriginsOnline  []string
	CORSOriginsOffline []string

	// Crowdfunding backend
	BackendBaseURL      string
	BackendToken        string
	BackendTokenURL     string // client-credentials endpoint; overrides BackendToken
	BackendClientID     string
	BackendClientSecret string
	BackendTimeout      time.Duration

	// Used until (or whenever) the backend settings cannot be read.
	DefaultThresholds scoring.Thresholds
}

// CORSOrigins returns the allowed origins for the current mode.
func (c Config) CORSOrigins() []string {
	if c.Mode == ModeOnline {
		return c.CORSOriginsOnline
	}
	return c.CORSOriginsOffline
}

// Load reads an optional .env file (or the files named in ENV_FILES) and then
// the process environment. Variables already set in the environment win.
func Load() Config {
	files := csvOr("ENV_FILES", "")
	if len(files) == 0 {
		if _, err := os.Stat(".env"); err == nil {
			files = []string{".env"}
		}
	}
	if len(files) > 0 {
		if err := godotenv.Load(files...); err != nil {
			log.Printf("config: load %v: %v", files, err)
		}
	}
	return FromEnv()
}

func FromEnv() Config {
	mode := Mode(os.Getenv("MODE"))
	if mode == "" {
		mode = ModeOffline
	}
	return Config{
		Mode:               mode,
		HTTPAddr:           envOr("HTTP_ADDR", ":8080"),
		DBDriver:           envOr("DB_DRIVER", "sqlite"),
		DBDSN:              envOr("DB_DSN", ""),
		EnableLocalAuth:    envBool("ENABLE_LOCAL_AUTH", true),
		AuthSecret:         envOr("AUTH_HMAC_SECRET", "supersecret-dev-key"),
		AdminUser:          envOr("ADMIN_USER", "admin"),
		AdminPassHash:      envOr("ADMIN_PASS_HASH", "$2y$12$pyZAiWaTfVtM7UElIRStvOC3gNbnp70nmQU4eYopLGBfCJr1DOvji"),
		CORSOriginsOnline:  csvOr("CORS_ORIGINS_ONLINE", "https://admin.fundreview.app"),
		CORSOriginsOffline: csvOr("CORS_ORIGINS_OFFLINE", "http://localhost:3000,http://localhost:5173"),

		BackendBaseURL:      envOr("BACKEND_BASE_URL", "http://localhost:3001/api/v1"),
		BackendToken:        os.Getenv("BACKEND_TOKEN"),
		BackendTokenURL:     os.Getenv("BACKEND_TOKEN_URL"),
		BackendClientID:     os.Getenv("BACKEND_CLIENT_ID"),
		BackendClientSecret: os.Getenv("BACKEND_CLIENT_SECRET"),
		BackendTimeout:      envDuration("BACKEND_TIMEOUT", 15*time.Second),

		DefaultThresholds: scoring.Thresholds{
			Pass:      envFloat("DEFAULT_PASS_PERCENT", 70),
			Excellent: envFloat("DEFAULT_EXCELLENT_PERCENT", 90),
			Resubmit:  envFloat("DEFAULT_RESUBMIT_PERCENT", 30),
		},
	}
}
func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}
func envBool(k string, def bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return def
	}
}
func envFloat(k string, def float64) float64 {
	v, err := strconv.ParseFloat(os.Getenv(k), 64)
	if err != nil {
		return def
	}
	return v
}
func envDuration(k string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(k))
	if err != nil || d <= 0 {
		return def
	}
	return d
}
func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

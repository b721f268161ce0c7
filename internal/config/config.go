package config

import (
	"os"
	"strings"
)

type Mode string

const (
	ModeDev     Mode = "dev"
	ModeRelease Mode = "release"
)

type Config struct {
	Mode     Mode
	HTTPAddr string

	DBDriver string
	DBDSN    string

	AuthSecret string // HMAC secret for local JWTs

	BlobBasePath string // file-upload answer storage

	// HeuristicShortAnswerKeys applies the prompt-derived key fallback to all
	// assignments, not just legacy imports. Off unless explicitly enabled.
	HeuristicShortAnswerKeys bool

	CORSOrigins []string

	// Seed admin for a fresh database.
	AdminUser     string
	AdminPassHash string // bcrypt
}

func FromEnv() Config {
	mode := Mode(os.Getenv("MODE"))
	if mode == "" {
		mode = ModeDev
	}
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	return Config{
		Mode:                     mode,
		HTTPAddr:                 addr,
		DBDriver:                 envOr("DB_DRIVER", "sqlite"),
		DBDSN:                    envOr("DB_DSN", ""),
		AuthSecret:               envOr("AUTH_HMAC_SECRET", "supersecret-dev-key"),
		BlobBasePath:             envOr("BLOB_BASE_PATH", "./data"),
		HeuristicShortAnswerKeys: envBool("HEURISTIC_SHORT_ANSWER_KEYS", false),
		CORSOrigins:              csvOr("CORS_ORIGINS", "http://localhost:3000"),
		AdminUser:                envOr("ADMIN_USER", "admin"),
		AdminPassHash:            envOr("ADMIN_PASS_HASH", ""),
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

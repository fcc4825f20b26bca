package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
)

// minSecretLen is the minimum accepted length for the session signing
// secret. Anything shorter is a configuration error: the service refuses
// to start rather than issue weakly signed session tokens.
const minSecretLen = 32

// defaultBcryptCost is the work factor used when BCRYPT_COST is unset.
const defaultBcryptCost = 10

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable. Missing required variables are fatal at startup
// so the service never accepts traffic in a half-configured state.
type Config struct {
	Env           string // application environment (e.g. "dev", "prod")
	Port          string // HTTP port to listen on
	DBUser        string // database username
	DBPass        string // database password (optional)
	DBHost        string // database host address
	DBPort        string // database port number
	DBName        string // database name
	SessionSecret string // secret used to sign session tokens
	SessionTTLMin int    // session token time-to-live in minutes
	BcryptCost    int    // bcrypt cost for password hashing (default 10)
}

// Load reads configuration from the environment and returns a Config.
// Required variables are enforced by must() and missing values cause the
// program to exit with a fatal log message.
func Load() Config {
	cfg := Config{
		Env:           must("APP_ENV"),
		Port:          must("APP_PORT"),
		DBUser:        must("DB_USER"),
		DBPass:        os.Getenv("DB_PASS"), // empty allowed
		DBHost:        must("DB_HOST"),
		DBPort:        must("DB_PORT"),
		DBName:        must("DB_NAME"),
		SessionSecret: must("SESSION_SECRET"),
		SessionTTLMin: mustInt("SESSION_TTL_MIN"),
		BcryptCost:    envInt("BCRYPT_COST", defaultBcryptCost),
	}
	if len(cfg.SessionSecret) < minSecretLen {
		log.Fatalf("SESSION_SECRET must be at least %d bytes", minSecretLen)
	}
	return cfg
}

// IsProd reports whether the service runs in the production environment.
// Session cookies are only marked Secure in production so that local
// development over plain HTTP keeps working.
func (c Config) IsProd() bool { return c.Env == "prod" }

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

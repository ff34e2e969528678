package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, ints for durations and costs.
type Config struct {
	Env           string // application environment (e.g. "dev", "prod")
	Port          string // HTTP port to listen on
	DBUser        string // database username
	DBPass        string // database password (optional)
	DBHost        string // database host address
	DBPort        string // database port number
	DBName        string // database name
	JWTSecret     string // secret used to sign JWTs
	TokenTTLDays  int    // access token time-to-live in days
	BcryptCost    int    // bcrypt cost for password hashing
	TrialDays     int    // length of the free trial granted on registration
	UploadDir     string // directory where uploaded images are stored
	BaseDomain    string // apex domain under which tenant subdomains live
	DevAuthBypass bool   // INSECURE: fabricate a tenant principal from the Host header (dev only)
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
//
// DevAuthBypass is deliberately controlled by its own variable
// (INSECURE_DEV_AUTH_BYPASS) and is only honored when Env is "dev", so the
// variable that selects the runtime profile can never enable the bypass on
// its own.
func Load() Config {
	cfg := Config{
		Env:          must("APP_ENV"),  // environment (dev/test/prod)
		Port:         must("APP_PORT"), // port to bind the HTTP server
		DBUser:       must("DB_USER"),
		DBPass:       os.Getenv("DB_PASS"), // database password (empty allowed)
		DBHost:       must("DB_HOST"),
		DBPort:       must("DB_PORT"),
		DBName:       must("DB_NAME"),
		JWTSecret:    must("JWT_SECRET"),
		TokenTTLDays: envIntDefault("TOKEN_TTL_DAYS", 30),
		BcryptCost:   mustInt("BCRYPT_COST"),
		TrialDays:    envIntDefault("TRIAL_DAYS", 30),
		UploadDir:    envDefault("UPLOAD_DIR", "uploads"),
		BaseDomain:   envDefault("BASE_DOMAIN", "localhost"),
	}
	bypass := os.Getenv("INSECURE_DEV_AUTH_BYPASS")
	cfg.DevAuthBypass = cfg.Env == "dev" && (bypass == "1" || bypass == "true")
	return cfg
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
// If conversion fails, the application logs a fatal error and exits.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

// envDefault returns the variable's value or a fallback when unset.
func envDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// envIntDefault returns the variable parsed as an int or a fallback when
// unset or unparsable.
func envIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return def
}

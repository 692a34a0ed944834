package config // package config loads application configuration from environment variables

import (
    "log"     // log is used to report configuration errors and halt execution
    "os"      // os provides access to environment variables
    "strconv" // strconv converts strings to other types
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, ints for hours and
// offsets, bools for policy switches.
type Config struct {
    Env              string // application environment (e.g. "dev", "prod")
    Port             string // HTTP port to listen on
    DBUser           string // database username
    DBPass           string // database password (optional)
    DBHost           string // database host address
    DBPort           string // database port number
    DBName           string // database name
    OpenHour         int    // first hour of the day a reservation may start
    CloseHour        int    // last hour of the day a reservation may end
    TZOffsetHours    int    // fixed UTC offset applied to all parsed and displayed times
    CancelOwnerCheck bool   // whether cancel verifies the requester owns the reservation
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  Business hours and
// the timezone offset have defaults so a bare environment still yields a
// working reservation window.
func Load() Config {
    return Config{
        Env:              must("APP_ENV"),      // environment (dev/test/prod)
        Port:             must("APP_PORT"),     // port to bind the HTTP server
        DBUser:           must("DB_USER"),      // database user
        DBPass:           os.Getenv("DB_PASS"), // database password (empty allowed)
        DBHost:           must("DB_HOST"),      // database host
        DBPort:           must("DB_PORT"),      // database port
        DBName:           must("DB_NAME"),      // database name
        OpenHour:         intOr("OPEN_HOUR", 7),       // opening hour of the business window
        CloseHour:        intOr("CLOSE_HOUR", 22),     // closing hour of the business window
        TZOffsetHours:    intOr("TZ_OFFSET_HOURS", 9), // fixed display offset (JST by default)
        CancelOwnerCheck: envBool("CANCEL_OWNER_CHECK", true),
    }
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

// intOr retrieves an optional integer environment variable, returning the
// given default when the variable is unset.  An unparsable value is a
// fatal configuration error.
func intOr(key string, def int) int {
    s := os.Getenv(key)
    if s == "" {
        return def
    }
    n, err := strconv.Atoi(s)
    if err != nil {
        log.Fatalf("invalid int for %s: %q", key, s)
    }
    return n
}

package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/recordbase/backend/pkg/constants"
)

// RecordAPI exposes a table or view under a name. If OwnerOnly is set, listings are
// restricted to records whose user id columns reference the caller.
type RecordAPI struct {
	Name      string
	Table     string
	OwnerOnly bool
}

// Config holds the server configuration
type Config struct {
	Port string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// UserTable is the identity table user id columns must reference
	UserTable string
	Debug     bool
	JWTSecret string

	RecordAPIs []RecordAPI

	// SchemaRefreshCron is a standard 5 field cron spec. Empty disables refreshing.
	SchemaRefreshCron string
}

// Load reads the first .env file found in paths, then the environment.
func Load(paths ...string) (*Config, error) {
	for _, p := range paths {
		if err := godotenv.Load(p); err == nil {
			log.Printf("Loaded .env from %s", p)
			break
		}
	}

	apis, err := ParseRecordAPIs(os.Getenv("RECORD_APIS"))
	if err != nil {
		return nil, err
	}

	return &Config{
		Port:              getEnv("PORT", "4000"),
		DBHost:            getEnv("DB_HOST", "127.0.0.1"),
		DBPort:            getEnv("DB_PORT", "3306"),
		DBUser:            getEnv("DB_USER", "root"),
		DBPassword:        os.Getenv("DB_PASSWORD"),
		DBName:            getEnv("DB_NAME", "recordbase"),
		UserTable:         getEnv("USER_TABLE", constants.DefaultUserTable),
		Debug:             getBool("DEBUG"),
		JWTSecret:         getEnv("JWT_SECRET", "default-secret-change-in-production"),
		RecordAPIs:        apis,
		SchemaRefreshCron: getEnv("SCHEMA_REFRESH_CRON", "*/5 * * * *"),
	}, nil
}

// ParseRecordAPIs parses a comma separated "name:table[:owner]" list.
func ParseRecordAPIs(s string) ([]RecordAPI, error) {
	var apis []RecordAPI
	seen := make(map[string]bool)
	for _, entry := range strings.Split(s, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		parts := strings.Split(entry, ":")
		if len(parts) < 2 || len(parts) > 3 || parts[0] == "" || parts[1] == "" {
			return nil, fmt.Errorf("invalid record api %q, expected name:table[:owner]", entry)
		}
		api := RecordAPI{Name: parts[0], Table: parts[1]}
		if len(parts) == 3 {
			if parts[2] != "owner" {
				return nil, fmt.Errorf("invalid record api %q: unknown flag %q", entry, parts[2])
			}
			api.OwnerOnly = true
		}
		if seen[api.Name] {
			return nil, fmt.Errorf("duplicate record api %q", api.Name)
		}
		seen[api.Name] = true
		apis = append(apis, api)
	}
	return apis, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getBool(key string) bool {
	b, _ := strconv.ParseBool(os.Getenv(key))
	return b
}

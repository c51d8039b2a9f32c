package profile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Profile is the configuration to start main server.
type Profile struct {
	// Mode can be "prod" or "dev" or "demo"
	Mode string
	// Addr is the binding address for server
	Addr string
	// Port is the binding port for server
	Port int
	// Data is the data directory
	Data string
	// DSN points to where event-planning stores its own data
	DSN string
	// Driver is the database driver (sqlite or postgres)
	Driver string
	// Version is the current version of server
	Version string

	// CacheRedisAddr enables the redis L2 for the query result cache when set.
	// EVENT_PLANNING_CACHE_REDIS_ADDR
	CacheRedisAddr string
	// CacheRedisPassword is the redis password. EVENT_PLANNING_CACHE_REDIS_PASSWORD
	CacheRedisPassword string
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// IsRedisCacheEnabled returns true if a redis address is configured.
func (p *Profile) IsRedisCacheEnabled() bool {
	return p.CacheRedisAddr != ""
}

// getEnvOrDefault returns the environment variable value or the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// FromEnv loads configuration from EVENT_PLANNING_* environment variables.
func (p *Profile) FromEnv() {
	p.CacheRedisAddr = os.Getenv("EVENT_PLANNING_CACHE_REDIS_ADDR")
	p.CacheRedisPassword = os.Getenv("EVENT_PLANNING_CACHE_REDIS_PASSWORD")
	if p.Driver == "" {
		p.Driver = getEnvOrDefault("EVENT_PLANNING_DRIVER", "sqlite")
	}
	if p.DSN == "" {
		p.DSN = os.Getenv("EVENT_PLANNING_DSN")
	}
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		relativeDir := filepath.Join(filepath.Dir(os.Args[0]), dataDir)
		absDir, err := filepath.Abs(relativeDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}

	if p.Driver != "sqlite" && p.Driver != "postgres" {
		return errors.Errorf("unsupported driver %q: only 'sqlite' and 'postgres' are supported", p.Driver)
	}

	if p.Driver == "postgres" && p.DSN == "" {
		return errors.New("dsn is required for the postgres driver")
	}

	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		return err
	}

	p.Data = dataDir
	if p.Driver == "sqlite" && p.DSN == "" {
		dbFile := fmt.Sprintf("event_planning_%s.db", p.Mode)
		p.DSN = filepath.Join(dataDir, dbFile)
	}

	return nil
}

package app

import (
	"net"
	"net/url"
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

const defaultAddr = "0.0.0.0:3000"

// Config holds the complete application configuration, loadable from
// environment variables (STOREFRONT_ prefix), flags, or YAML config files.
type Config struct {
	Addr        string `default:"0.0.0.0:3000" usage:"API server listen address"`
	DatabaseURL string `usage:"PostgreSQL connection URL (STOREFRONT_DATABASE_URL or DATABASE_URL)" flag:"database-url"`
	Orders      OrdersConfig
	CORS        CORSConfig
	Graceful    GracefulConfig
}

// OrdersConfig controls how order writes reach the database.
type OrdersConfig struct {
	AtomicWrites bool `default:"false" usage:"Run order inserts and deletes in one transaction" flag:"orders-atomic-writes"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins []string `default:"*" usage:"Allowed CORS origins"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables, YAML config files,
// and applies platform-specific defaults.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "STOREFRONT",
		Files:     []string{"config.yaml", "/etc/storefront/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults(os.Getenv)

	if cfg.DatabaseURL == "" {
		return nil, errors.New("database URL is required: set STOREFRONT_DATABASE_URL, DATABASE_URL or RDS_*")
	}

	return &cfg, nil
}

// applyPlatformDefaults maps platform-provided environment variables to the
// configuration: DATABASE_URL and PORT as set by most PaaS hosts, and the
// RDS_* tuple injected by Elastic Beanstalk.
func (c *Config) applyPlatformDefaults(getenv func(string) string) {
	if c.DatabaseURL == "" {
		c.DatabaseURL = getenv("DATABASE_URL")
	}
	if c.DatabaseURL == "" {
		c.DatabaseURL = rdsURL(getenv)
	}
	if port := getenv("PORT"); port != "" && c.Addr == defaultAddr {
		c.Addr = "0.0.0.0:" + port
	}
}

// rdsURL assembles a postgres URL from RDS_* variables. It returns "" unless
// at least RDS_HOSTNAME is set.
func rdsURL(getenv func(string) string) string {
	host := getenv("RDS_HOSTNAME")
	if host == "" {
		return ""
	}
	port := getenv("RDS_PORT")
	if port == "" {
		port = "5432"
	}
	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(host, port),
		Path:   "/" + getenv("RDS_DATABASE"),
	}
	if name := getenv("RDS_USERNAME"); name != "" {
		if pass := getenv("RDS_PASSWORD"); pass != "" {
			u.User = url.UserPassword(name, pass)
		} else {
			u.User = url.User(name)
		}
	}
	return u.String()
}

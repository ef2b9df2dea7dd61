package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const configFileEnvName = "STOREFRONT_CONFIG_FILE"

const (
	StorageMemory = "memory"
	StorageSQL    = "sql"
	StorageRedis  = "redis"
)

type backendPaths struct {
	Products        string `mapstructure:"products"`
	ProductsByBrand string `mapstructure:"products_by_brand"`
	CustomerByEmail string `mapstructure:"customer_by_email"`
	Customers       string `mapstructure:"customers"`
	Purchase        string `mapstructure:"purchase"`
	LatestInvoice   string `mapstructure:"latest_invoice"`
	ConfirmPurchase string `mapstructure:"confirm_purchase"`
}

type backend struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
	Paths   backendPaths  `mapstructure:"paths"`
}

type storage struct {
	Driver      string `mapstructure:"driver"`
	SQLDB       string `mapstructure:"sql_db"`
	RedisURL    string `mapstructure:"redis_url"`
	RedisPrefix string `mapstructure:"redis_prefix"`
}

type topics struct {
	Purchases  string `mapstructure:"purchases"`
	CartEvents string `mapstructure:"cart_events"`
}

type tlsFiles struct {
	CA   string `mapstructure:"ca"`
	Cert string `mapstructure:"cert"`
	Key  string `mapstructure:"key"`
}

type sasl struct {
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
}

type broker struct {
	Enabled            bool     `mapstructure:"enabled"`
	SeedBrokers        []string `mapstructure:"seed_brokers"`
	SchemaRegistryURLs []string `mapstructure:"schema_registry_urls"`
	Topics             topics   `mapstructure:"topics"`
	TLS                tlsFiles `mapstructure:"tls"`
	SASL               sasl     `mapstructure:"sasl"`
}

type Config struct {
	LogLevel       slog.Level    `mapstructure:"log_level"`
	HTTPServerAddr string        `mapstructure:"http_server_addr"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	TaxRate        string        `mapstructure:"tax_rate"`
	Backend        backend       `mapstructure:"backend"`
	Storage        storage       `mapstructure:"storage"`
	Broker         broker        `mapstructure:"broker"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("http_server_addr", ":8080")
	v.SetDefault("request_timeout", 30*time.Second)
	v.SetDefault("tax_rate", "0.15")
	v.SetDefault("backend.timeout", 10*time.Second)
	v.SetDefault("storage.driver", StorageMemory)
	v.SetDefault("storage.redis_prefix", "storefront:")
	v.SetDefault("broker.topics.purchases", "purchases")
	v.SetDefault("broker.topics.cart_events", "cart-events")
}

func Load() Config {
	cfg, err := LoadFile(getConfigFilepath())
	if err != nil {
		die(err)
	}
	return cfg
}

// LoadFile reads the config file at path over the defaults.
func LoadFile(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := v.UnmarshalExact(&cfg, viper.DecodeHook(decodeHook())); err != nil {
		return Config{}, err
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// decodeHook also parses level names such as "debug" into [slog.Level].
func decodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		mapstructure.TextUnmarshallerHookFunc(),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)
}

func (c Config) validate() error {
	if c.Backend.BaseURL == "" {
		return fmt.Errorf("backend.base_url: required")
	}
	switch c.Storage.Driver {
	case StorageMemory:
	case StorageSQL:
		if c.Storage.SQLDB == "" {
			return fmt.Errorf("storage.sql_db: required by %q driver", StorageSQL)
		}
	case StorageRedis:
		if c.Storage.RedisURL == "" {
			return fmt.Errorf("storage.redis_url: required by %q driver", StorageRedis)
		}
	default:
		return fmt.Errorf("storage.driver: unknown driver %q", c.Storage.Driver)
	}
	if c.Broker.Enabled && len(c.Broker.SeedBrokers) == 0 {
		return fmt.Errorf("broker.seed_brokers: required when broker is enabled")
	}
	return nil
}

func (c Config) TLSEnabled() bool {
	return c.Broker.TLS.CA != "" && c.Broker.TLS.Cert != "" && c.Broker.TLS.Key != ""
}

func getConfigFilepath() string {
	cmdLine := pflag.NewFlagSet(os.Args[0], pflag.ExitOnError)
	arg := cmdLine.String("config", "/config.yaml", "config file")
	_ = cmdLine.Parse(os.Args[1:])
	env, ok := os.LookupEnv(configFileEnvName)
	if ok {
		return env
	}
	return *arg
}

func die(err error) {
	fmt.Printf("failed to load config file: %v\n", err)
	os.Exit(2)
}

func (c Config) Print() {
	tamplate := `
	General:
	LogLevel=%q
	HTTPServerAddr=%q
	RequestTimeout=%q
	TaxRate=%q

	Backend:
	BaseURL=%q
	Timeout=%q

	Storage:
	Driver=%q

	BrokerConfig:
	Enabled=%t
	SeedBrokers=%q
	SchemaRegistryURLs=%q
	TLS=%t
	SASLUser=%q
	Topics:
		Purchases=%q
		CartEvents=%q

`
	fmt.Println("Loaded config:")
	fmt.Printf(
		strings.TrimLeft(tamplate, "\n"),
		c.LogLevel,
		c.HTTPServerAddr,
		c.RequestTimeout,
		c.TaxRate,
		c.Backend.BaseURL,
		c.Backend.Timeout,
		c.Storage.Driver,
		c.Broker.Enabled,
		c.Broker.SeedBrokers,
		c.Broker.SchemaRegistryURLs,
		c.TLSEnabled(),
		c.Broker.SASL.User,
		c.Broker.Topics.Purchases,
		c.Broker.Topics.CartEvents,
	)
}

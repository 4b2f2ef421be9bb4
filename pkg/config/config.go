package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/dexhook/signal-gateway/pkg/network"
)

// Config represents the gateway configuration
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Vault      VaultConfig      `mapstructure:"vault"`
	Networks   NetworksConfig   `mapstructure:"networks"`
	Trading    TradingConfig    `mapstructure:"trading"`
	Operator   OperatorConfig   `mapstructure:"operator"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Shutdown   ShutdownConfig   `mapstructure:"shutdown"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// DatabaseConfig contains database connection settings
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"ssl_mode"`
}

// VaultConfig names the environment variable holding the base64-encoded
// 32-byte master key. The key itself never appears in config files.
type VaultConfig struct {
	MasterKeyEnv string `mapstructure:"master_key_env"`
}

// NetworksConfig selects the default network and an optional endpoint
// registry override file.
type NetworksConfig struct {
	Default      int64  `mapstructure:"default"`
	RegistryPath string `mapstructure:"registry_path"`
}

// TradingConfig contains trading collaborator settings
type TradingConfig struct {
	DryRun bool `mapstructure:"dry_run"`
}

// OperatorConfig guards the operator API. The JWT signing secret is read
// from the named environment variable.
type OperatorConfig struct {
	JWTSecretEnv string `mapstructure:"jwt_secret_env"`
	JWTIssuer    string `mapstructure:"jwt_issuer"`
}

// MonitoringConfig contains monitoring and metrics settings
type MonitoringConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// ShutdownConfig contains graceful shutdown settings
type ShutdownConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)

	// Database defaults
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.ssl_mode", "disable")
	viper.SetDefault("database.database", "signal_gateway")

	// Vault defaults
	viper.SetDefault("vault.master_key_env", "VAULT_MASTER_KEY")

	// Network defaults
	viper.SetDefault("networks.default", int64(network.Testnet))

	// Trading defaults
	viper.SetDefault("trading.dry_run", true)

	// Operator defaults
	viper.SetDefault("operator.jwt_secret_env", "OPERATOR_JWT_SECRET")
	viper.SetDefault("operator.jwt_issuer", "signal-gateway")

	// Monitoring defaults
	viper.SetDefault("monitoring.enabled", true)

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.output_path", "stdout")

	// Shutdown defaults
	viper.SetDefault("shutdown.timeout", "30s")
}

func validate(config *Config) error {
	if config.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if config.Vault.MasterKeyEnv == "" {
		return fmt.Errorf("vault.master_key_env is required")
	}
	if !network.Known(network.ID(config.Networks.Default)) {
		return fmt.Errorf("networks.default must be a supported network id, got %d", config.Networks.Default)
	}
	return nil
}

// DefaultNetwork returns the configured default network.
func (c *Config) DefaultNetwork() network.ID {
	return network.ID(c.Networks.Default)
}

// GetConnectionString returns a PostgreSQL connection string
func (c *DatabaseConfig) GetConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

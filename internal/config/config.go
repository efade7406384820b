// Package config handles loading application settings and the synonym
// tables the field normalizer applies to the raw extracts.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

var ErrMissingDSN = errors.New("database DSN not set (ODS14_DSN or SQL_CONNECTION_STRING)")

// Config holds all configuration for the application, loaded from the
// environment (populated by .env in main.go) and an optional YAML file.
type Config struct {
	Driver        string `mapstructure:"driver"`
	DSN           string `mapstructure:"dsn"`
	MongoURI      string `mapstructure:"mongo_uri"`
	MongoDatabase string `mapstructure:"mongo_database"`

	MicroplasticsPath string `mapstructure:"microplastics_path"`
	SpeciesPath       string `mapstructure:"species_path"`
	InputEncoding     string `mapstructure:"input_encoding"`

	ReportsDir   string `mapstructure:"reports_dir"`
	ParquetDir   string `mapstructure:"parquet_dir"`
	BatchSize    int    `mapstructure:"batch_size"`
	MappingsFile string `mapstructure:"mappings_file"`
	MetricsFile  string `mapstructure:"metrics_file"`
	LogFile      string `mapstructure:"log_file"`
	Debug        bool   `mapstructure:"debug"`

	S3Region    string `mapstructure:"s3_region"`
	S3Endpoint  string `mapstructure:"s3_endpoint"`
	S3PathStyle bool   `mapstructure:"s3_path_style"`
	// Static S3 credentials. Empty uses the default AWS credential chain.
	S3AccessKeyID     string `mapstructure:"s3_access_key_id"`
	S3SecretAccessKey string `mapstructure:"s3_secret_access_key"`
}

// LoadConfig loads settings with precedence env > config file > defaults.
// cfgFile may be empty.
func LoadConfig(cfgFile string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("ODS14")
	v.AutomaticEnv()

	v.SetDefault("driver", "sqlserver")
	v.SetDefault("dsn", "")
	v.SetDefault("mongo_uri", "")
	v.SetDefault("mongo_database", "ods14")
	v.SetDefault("microplastics_path", "data/MarineMicroplastics.csv")
	v.SetDefault("species_path", "data/MarineSpeciesRichness.csv")
	v.SetDefault("input_encoding", "utf-8")
	v.SetDefault("reports_dir", "reports/out")
	v.SetDefault("parquet_dir", "")
	v.SetDefault("batch_size", 1000)
	v.SetDefault("mappings_file", "")
	v.SetDefault("metrics_file", "")
	v.SetDefault("log_file", "")
	v.SetDefault("debug", false)
	v.SetDefault("s3_region", "")
	v.SetDefault("s3_endpoint", "")
	v.SetDefault("s3_path_style", false)
	v.SetDefault("s3_access_key_id", "")
	v.SetDefault("s3_secret_access_key", "")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// Connection strings used by earlier tooling.
	if c.DSN == "" {
		c.DSN = os.Getenv("SQL_CONNECTION_STRING")
	}
	if c.MongoURI == "" {
		c.MongoURI = os.Getenv("MONGO_CONNECTION_STRING")
	}
	c.Driver = strings.ToLower(strings.TrimSpace(c.Driver))
	if c.BatchSize <= 0 {
		c.BatchSize = 1000
	}
	return &c, nil
}

// RequireDSN returns ErrMissingDSN when no database connection is configured.
func (c *Config) RequireDSN() error {
	if strings.TrimSpace(c.DSN) == "" {
		return ErrMissingDSN
	}
	return nil
}

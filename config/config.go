package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Environment 运行环境
type Environment string

const (
	EnvDevelop Environment = "develop"
	EnvProduct Environment = "product"
)

type Config struct {
	Environment Environment `mapstructure:"environment"`

	Server struct {
		Host         string `mapstructure:"host"`
		Port         string `mapstructure:"port"`
		ReadTimeout  int    `mapstructure:"read_timeout"`
		WriteTimeout int    `mapstructure:"write_timeout"`
		IdleTimeout  int    `mapstructure:"idle_timeout"`
		MaxBodySize  int64  `mapstructure:"max_body_size"`
		RateLimit    int    `mapstructure:"rate_limit"`
	} `mapstructure:"server"`

	Database struct {
		Type     string `mapstructure:"type"` // postgres or mysql
		Host     string `mapstructure:"host"`
		Port     int    `mapstructure:"port"`
		User     string `mapstructure:"user"`
		Password string `mapstructure:"password"`
		Name     string `mapstructure:"name"`
		SSLMode  string `mapstructure:"ssl_mode"`
	} `mapstructure:"database"`

	Logging struct {
		Level      string `mapstructure:"level"`
		Format     string `mapstructure:"format"` // json or console
		OutputPath string `mapstructure:"output_path"`
	} `mapstructure:"logging"`

	// Engine 结构推断引擎的策略开关
	Engine struct {
		MaxNestingDepth int     `mapstructure:"max_nesting_depth"`
		MinConsistency  float64 `mapstructure:"min_consistency"`
		MaxSQLDepth     int     `mapstructure:"max_sql_depth"`
	} `mapstructure:"engine"`

	Security struct {
		EnableHTTPS bool   `mapstructure:"enable_https"`
		CertFile    string `mapstructure:"cert_file"`
		KeyFile     string `mapstructure:"key_file"`
	} `mapstructure:"security"`
}

func LoadConfig(path string) (*Config, error) {
	viper.SetConfigFile(path)
	viper.SetConfigType("yaml")

	// 设置默认值
	viper.SetDefault("environment", "develop")
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.read_timeout", 10)
	viper.SetDefault("server.write_timeout", 10)
	viper.SetDefault("server.idle_timeout", 60)
	viper.SetDefault("server.max_body_size", 10*1024*1024)
	viper.SetDefault("server.rate_limit", 100)
	viper.SetDefault("database.type", "postgres")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.ssl_mode", "disable")
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "console")
	viper.SetDefault("logging.output_path", "stdout")
	viper.SetDefault("engine.max_nesting_depth", 5)
	viper.SetDefault("engine.min_consistency", 0.7)
	viper.SetDefault("engine.max_sql_depth", 2)

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

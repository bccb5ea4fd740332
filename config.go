package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Config defines the structure of the configuration file.
type Config struct {
	GitCommit          string         `yaml:"git_commit" envconfig:"BKSH_GIT_COMMIT"`
	GitTag             string         `yaml:"git_tag" envconfig:"BKSH_GIT_TAG"`
	BuildTime          string         `yaml:"build_time" envconfig:"BKSH_BUILD_TIME"`
	IsProduction       bool           `yaml:"is_production" envconfig:"BKSH_IS_PRODUCTION"`
	LogLevel           zapcore.Level  `yaml:"log_level" envconfig:"BKSH_LOG_LEVEL"`
	LogFolder          string         `yaml:"log_folder" envconfig:"BKSH_LOG_FOLDER"`
	LogMaxSize         int            `yaml:"log_max_size" envconfig:"BKSH_LOG_MAX_SIZE"`
	ProfilerEnable     bool           `yaml:"profiler_enable" envconfig:"BKSH_PROFILER_ENABLE"`
	OpsEndpointsEnable bool           `yaml:"ops_endpoints_enable" envconfig:"BKSH_OPS_ENDPOINTS_ENABLE"`
	SwaggerEnable      bool           `yaml:"swagger_enable" envconfig:"BKSH_SWAGGER_ENABLE"`
	Server             ServerConfig   `yaml:"server"`
	Store              StoreConfig    `yaml:"store"`
	SQLite             SQLiteConfig   `yaml:"sqlite"`
	Postgres           PostgresConfig `yaml:"postgres"`
	BoltDB             BoltDBConfig   `yaml:"boltdb"`
	Redis              RedisConfig    `yaml:"redis"`
}

type ServerConfig struct {
	Host            string        `yaml:"host" envconfig:"BKSH_SERVER_HOST"`
	Port            string        `yaml:"port" envconfig:"BKSH_SERVER_PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"BKSH_SERVER_READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"BKSH_SERVER_WRITE_TIMEOUT"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"BKSH_SERVER_REQUEST_TIMEOUT"` // Time to wait for a request to finish
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"BKSH_SERVER_SHUTDOWN_TIMEOUT"`
}

type StoreConfig struct {
	Driver string `yaml:"driver" envconfig:"BKSH_STORE_DRIVER"`
}

type SQLiteConfig struct {
	FilePath        string        `yaml:"filepath" envconfig:"BKSH_SQLITE_FILE_PATH"`
	MaxOpenConns    int           `yaml:"max_open_conns" envconfig:"BKSH_SQLITE_MAX_OPEN_CONNS"`
	MaxIdleConns    int           `yaml:"max_idle_conns" envconfig:"BKSH_SQLITE_MAX_IDLE_CONNS"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" envconfig:"BKSH_SQLITE_CONN_MAX_LIFETIME"`
}

type PostgresConfig struct {
	DSN             string        `yaml:"dsn" envconfig:"BKSH_POSTGRES_DSN" json:"-"`
	MaxConns        int32         `yaml:"max_conns" envconfig:"BKSH_POSTGRES_MAX_CONNS"`
	MinConns        int32         `yaml:"min_conns" envconfig:"BKSH_POSTGRES_MIN_CONNS"`
	ConnectTimeout  time.Duration `yaml:"connect_timeout" envconfig:"BKSH_POSTGRES_CONNECT_TIMEOUT"`
	QueryTimeout    time.Duration `yaml:"query_timeout" envconfig:"BKSH_POSTGRES_QUERY_TIMEOUT"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime" envconfig:"BKSH_POSTGRES_MAX_CONN_LIFETIME"`
}

type BoltDBConfig struct {
	FilePath   string        `yaml:"filepath" envconfig:"BKSH_BOLTDB_FILE_PATH"`
	Timeout    time.Duration `yaml:"timeout" envconfig:"BKSH_BOLTDB_TIMEOUT"`
	BucketName string        `yaml:"bucket_name" envconfig:"BKSH_BOLTDB_BUCKET_NAME"`
}

type RedisConfig struct {
	Host          string        `yaml:"host" envconfig:"BKSH_REDIS_HOST"`
	Port          string        `yaml:"port" envconfig:"BKSH_REDIS_PORT"`
	DialTimeout   time.Duration `yaml:"dial_timeout" envconfig:"BKSH_REDIS_DIAL_TIMEOUT"`
	ReadTimeout   time.Duration `yaml:"read_timeout" envconfig:"BKSH_REDIS_READ_TIMEOUT"`
	WriteTimeout  time.Duration `yaml:"write_timeout" envconfig:"BKSH_REDIS_WRITE_TIMEOUT"`
	PoolSize      int           `yaml:"pool_size" envconfig:"BKSH_REDIS_POOL_SIZE"`
	PoolTimeout   time.Duration `yaml:"pool_timeout" envconfig:"BKSH_REDIS_POOL_TIMEOUT"`
	Username      string        `yaml:"username" envconfig:"BKSH_REDIS_USERNAME"`
	Password      string        `yaml:"password" envconfig:"BKSH_REDIS_PASSWORD" json:"-"`
	DatabaseIndex int           `yaml:"db_index" envconfig:"BKSH_REDIS_DATABASE_INDEX"`
	KeyPrefix     string        `yaml:"key_prefix" envconfig:"BKSH_REDIS_KEY_PREFIX"`
}

// LoadConfigFile provides an instance of config structure for the all application.
func LoadConfigFile(configFile string) (*Config, error) {
	file, err := os.Open(configFile)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	cfg := &Config{}
	yd := yaml.NewDecoder(file)
	err = yd.Decode(cfg)

	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfigEnvs reads the environments variables and provides an instance of the App config.
func LoadConfigEnvs(prefix string, config *Config) error {
	return envconfig.Process(prefix, config)
}

// InitConfig setup defaults values for non provided parameters
// and configures build tags values to be used if provided.
func InitConfig(config *Config, gitCommit, gitTag, buildTime string) error {
	if len(gitCommit) != 0 {
		config.GitCommit = gitCommit
	}

	if len(gitTag) != 0 {
		config.GitTag = gitTag
	}

	if len(buildTime) != 0 {
		config.BuildTime = buildTime
	}

	if len(config.Server.Host) == 0 || len(config.Server.Port) == 0 {
		return errors.New("make sure to set valid server address and port in configuration file")
	}

	if config.Server.RequestTimeout <= 0 {
		config.Server.RequestTimeout = 30 * time.Second
	}

	if config.Server.ShutdownTimeout <= 0 {
		config.Server.ShutdownTimeout = 30 * time.Second
	}

	if config.LogMaxSize <= 0 {
		config.LogMaxSize = 10
	}

	if len(config.LogFolder) == 0 {
		config.LogFolder = "./logs"
	}

	if len(config.Store.Driver) == 0 {
		config.Store.Driver = SQLiteDriver
	}

	switch config.Store.Driver {
	case SQLiteDriver:
		if len(config.SQLite.FilePath) == 0 {
			return errors.New("make sure to set a valid sqlite database file path in configuration file")
		}
	case PostgresDriver:
		if len(config.Postgres.DSN) == 0 {
			return errors.New("make sure to set a valid postgres dsn in configuration file")
		}
		if config.Postgres.QueryTimeout <= 0 {
			config.Postgres.QueryTimeout = 5 * time.Second
		}
	case BoltDBDriver:
		if len(config.BoltDB.FilePath) == 0 || len(config.BoltDB.BucketName) == 0 {
			return errors.New("make sure to set valid boltdb file path and bucket name in configuration file")
		}
	case RedisDriver:
		if len(config.Redis.Host) == 0 || len(config.Redis.Port) == 0 {
			return errors.New("make sure to set valid redis address and port in configuration file")
		}
		if len(config.Redis.KeyPrefix) == 0 {
			config.Redis.KeyPrefix = "bookshelf"
		}
	default:
		return fmt.Errorf("unsupported store driver %q in configuration file", config.Store.Driver)
	}

	return nil
}

// LoadAndInitConfigs loads in order the configs from various predefined sources
// then build the App configuration data.
func LoadAndInitConfigs(gitCommit, gitTag, buildTime string) (*Config, error) {
	// Setup the yaml configuration from file.
	config, err := LoadConfigFile("./config.yml")
	if err != nil {
		return config, fmt.Errorf("failed to load configurations from file: %s", err)
	}

	// Set the environment configuration.
	err = godotenv.Load("./config.env")
	if err != nil {
		return config, fmt.Errorf("failed to set environment configurations: %s", err)
	}

	// Use environment variables with prefix `BKSH`.
	err = LoadConfigEnvs("BKSH", config)
	if err != nil {
		return config, fmt.Errorf("failed to load configurations from environment: %s", err)
	}

	err = InitConfig(config, gitCommit, gitTag, buildTime)
	if err != nil {
		return config, fmt.Errorf("failed to initialize configurations: %s", err)
	}
	return config, nil
}

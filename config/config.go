// config/config.go
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Configuration stores all the configurations
type Configuration struct {
	Server        ServerConfiguration        `mapstructure:"server"`
	Log           LogConfiguration           `mapstructure:"log"`
	Engine        EngineConfiguration        `mapstructure:"engine"`
	Risk          RiskConfiguration          `mapstructure:"risk"`
	Audit         AuditConfiguration         `mapstructure:"audit"`
	Session       SessionConfiguration       `mapstructure:"session"`
	Auth          AuthConfiguration          `mapstructure:"auth"`
	RateLimit     RateLimitConfiguration     `mapstructure:"ratelimit"`
	Redis         RedisConfiguration         `mapstructure:"redis"`
	Elasticsearch ElasticsearchConfiguration `mapstructure:"elasticsearch"`
}

// ServerConfiguration stores the port and other web server settings
type ServerConfiguration struct {
	Port            string        `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdownTimeout"`
}

type LogConfiguration struct {
	Dir string `mapstructure:"dir"`
}

// EngineConfiguration tunes the decision engine and its cache.
type EngineConfiguration struct {
	MatrixFile           string             `mapstructure:"matrixFile"`
	CacheTTL             time.Duration      `mapstructure:"cacheTTL"`
	CacheMaxEntries      int                `mapstructure:"cacheMaxEntries"`
	DefaultRiskThreshold float64            `mapstructure:"defaultRiskThreshold"`
	RoleRiskThresholds   map[string]float64 `mapstructure:"roleRiskThresholds"`
	Timezone             string             `mapstructure:"timezone"`
}

// RiskConfiguration holds the versioned weight table and the static
// signal sources of the risk model.
type RiskConfiguration struct {
	Weights            WeightsConfiguration `mapstructure:"weights"`
	BusinessHoursStart int                  `mapstructure:"businessHoursStart"`
	BusinessHoursEnd   int                  `mapstructure:"businessHoursEnd"`
	Holidays           []string             `mapstructure:"holidays"`
	HighRiskCountries  []string             `mapstructure:"highRiskCountries"`
	BaselineActors     []string             `mapstructure:"baselineActors"`
	FlaggedActors      map[string][]string  `mapstructure:"flaggedActors"`
}

type WeightsConfiguration struct {
	Version    string  `mapstructure:"version"`
	User       float64 `mapstructure:"user"`
	Action     float64 `mapstructure:"action"`
	Resource   float64 `mapstructure:"resource"`
	Contextual float64 `mapstructure:"contextual"`
	Time       float64 `mapstructure:"time"`
	Location   float64 `mapstructure:"location"`
}

type AuditConfiguration struct {
	Capacity      int           `mapstructure:"capacity"`
	AlertCeiling  float64       `mapstructure:"alertCeiling"`
	FlushInterval time.Duration `mapstructure:"flushInterval"`
	BatchSize     int           `mapstructure:"batchSize"`
	File          string        `mapstructure:"file"`
	AlertChannel  string        `mapstructure:"alertChannel"`
}

type SessionConfiguration struct {
	Timeout                   time.Duration `mapstructure:"timeout"`
	RiskCeiling               float64       `mapstructure:"riskCeiling"`
	MinVerificationConfidence float64       `mapstructure:"minVerificationConfidence"`
	TombstoneCapacity         int           `mapstructure:"tombstoneCapacity"`
}

type AuthConfiguration struct {
	JWTSecret string   `mapstructure:"jwtSecret"`
	Groups    []string `mapstructure:"groups"`
}

type RateLimitConfiguration struct {
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// RedisConfiguration stores data for Redis connection
type RedisConfiguration struct {
	Enabled      bool          `mapstructure:"enabled"`
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	DialTimeout  time.Duration `mapstructure:"dialTimeout"`
	ReadTimeout  time.Duration `mapstructure:"readTimeout"`
	WriteTimeout time.Duration `mapstructure:"writeTimeout"`
	PoolSize     int           `mapstructure:"poolSize"`
}

// ElasticsearchConfiguration stores data for Elasticsearch connection
type ElasticsearchConfiguration struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`
	Index   string `mapstructure:"index"`
}

var config *Configuration

// SetDefaults registers every default on the global viper instance.
func SetDefaults() {
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.shutdownTimeout", "5s")
	viper.SetDefault("log.dir", "")

	viper.SetDefault("engine.matrixFile", "")
	viper.SetDefault("engine.cacheTTL", "5m")
	viper.SetDefault("engine.cacheMaxEntries", 10000)
	viper.SetDefault("engine.defaultRiskThreshold", 0.7)
	viper.SetDefault("engine.roleRiskThresholds", map[string]float64{
		"ceo":                 0.8,
		"admin":               0.75,
		"bank_profit_manager": 0.7,
		"analyst":             0.6,
		"guest":               0.4,
	})
	viper.SetDefault("engine.timezone", "UTC")

	viper.SetDefault("risk.weights.version", "v1")
	viper.SetDefault("risk.weights.user", 0.25)
	viper.SetDefault("risk.weights.action", 0.20)
	viper.SetDefault("risk.weights.resource", 0.20)
	viper.SetDefault("risk.weights.contextual", 0.15)
	viper.SetDefault("risk.weights.time", 0.10)
	viper.SetDefault("risk.weights.location", 0.10)
	viper.SetDefault("risk.businessHoursStart", 9)
	viper.SetDefault("risk.businessHoursEnd", 18)
	viper.SetDefault("risk.holidays", []string{})
	viper.SetDefault("risk.highRiskCountries", []string{})
	viper.SetDefault("risk.baselineActors", []string{})

	viper.SetDefault("audit.capacity", 10000)
	viper.SetDefault("audit.alertCeiling", 0.8)
	viper.SetDefault("audit.flushInterval", "5s")
	viper.SetDefault("audit.batchSize", 200)
	viper.SetDefault("audit.file", "")
	viper.SetDefault("audit.alertChannel", "qpde:alerts")

	viper.SetDefault("session.timeout", "30m")
	viper.SetDefault("session.riskCeiling", 0.9)
	viper.SetDefault("session.minVerificationConfidence", 0.9)
	viper.SetDefault("session.tombstoneCapacity", 4096)

	viper.SetDefault("auth.jwtSecret", "")
	viper.SetDefault("auth.groups", []string{"qpde-admin"})

	viper.SetDefault("ratelimit.requests", 100)
	viper.SetDefault("ratelimit.window", "1m")

	viper.SetDefault("redis.enabled", false)
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.dialTimeout", "5s")
	viper.SetDefault("redis.readTimeout", "3s")
	viper.SetDefault("redis.writeTimeout", "3s")
	viper.SetDefault("redis.poolSize", 10)

	viper.SetDefault("elasticsearch.enabled", false)
	viper.SetDefault("elasticsearch.url", "http://localhost:9200")
	viper.SetDefault("elasticsearch.index", "qpde-audit")
}

// InitConfig loads the config file at path (./config/config.yaml when empty).
// Environment variables such as QPDE_ENGINE_CACHETTL override file values,
// which override the defaults. A missing default file is not an error.
func InitConfig(path string) error {
	if path != "" {
		viper.SetConfigFile(path)
	} else {
		viper.AddConfigPath("config") // path to look for the config file in
		viper.SetConfigName("config") // name of the config file (without extension)
		viper.SetConfigType("yaml")   // REQUIRED if the config file does not have the extension in the name
	}

	viper.SetEnvPrefix("qpde")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	SetDefaults()

	// Attempt to read the config file
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || path != "" {
			return err
		}
	}

	// Unmarshal the configuration into the Configuration struct
	var loaded Configuration
	if err := viper.Unmarshal(&loaded); err != nil {
		return err
	}
	config = &loaded

	return nil
}

// GetConfig returns the loaded configuration
func GetConfig() *Configuration {
	return config
}

// GetString retrieves a string value from the configuration
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt retrieves an integer value from the configuration
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool retrieves a boolean value from the configuration
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetFloat64 retrieves a float64 value from the configuration
func GetFloat64(key string) float64 {
	return viper.GetFloat64(key)
}

// GetDuration retrieves a duration value from the configuration
func GetDuration(key string) time.Duration {
	return viper.GetDuration(key)
}

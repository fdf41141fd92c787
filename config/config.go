// api/config/config.go
package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

// Configuration stores all the configurations
type Configuration struct {
	Server        ServerConfiguration
	Auth          AuthConfiguration
	Storage       StorageConfiguration
	Redis         RedisConfiguration
	Neo4j         DatabaseConfiguration
	Elasticsearch ElasticsearchConfiguration
	Oracle        OracleConfiguration
	Datasite      DatasiteConfiguration
}

// ServerConfiguration stores the port and other web server settings
type ServerConfiguration struct {
	Port string
}

// AuthConfiguration stores token authority and session proxy settings
type AuthConfiguration struct {
	TokenExpiry          string
	MaxRequestsPerMinute int
	SigningKeyFile       string
	SessionTimeout       string
	AuditRetention       string
}

// StorageConfiguration stores the location of durable registry state
type StorageConfiguration struct {
	DataDir string
}

// RedisConfiguration stores data for Redis connection
type RedisConfiguration struct {
	Addr string
}

// DatabaseConfiguration stores data for database connection
type DatabaseConfiguration struct {
	URI      string
	Username string
	Password string
}

// ElasticsearchConfiguration stores data for Elasticsearch connection
type ElasticsearchConfiguration struct {
	URL string
}

// OracleConfiguration stores settings for the external permission oracle
type OracleConfiguration struct {
	RootPath     string
	QueryTimeout string
}

// DatasiteConfiguration stores the datasite directory layout
type DatasiteConfiguration struct {
	Path  string
	Owner string
}

var config *Configuration

func InitConfig() error {
	viper.AddConfigPath("config") // path to look for the config file in
	viper.SetConfigName("config") // name of the config file (without extension)
	viper.SetConfigType("yaml")   // REQUIRED if the config file does not have the extension in the name

	viper.AutomaticEnv() // read in environment variables that match

	// Set default configurations
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("auth.tokenExpiry", "1h")
	viper.SetDefault("auth.maxRequestsPerMinute", 60)
	viper.SetDefault("auth.signingKeyFile", "keys/jwt_secret.key")
	viper.SetDefault("auth.sessionTimeout", "24h")
	viper.SetDefault("auth.auditRetention", "720h")
	viper.SetDefault("storage.dataDir", "data")
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("neo4j.uri", "bolt://localhost:7687")
	viper.SetDefault("neo4j.username", "neo4j")
	viper.SetDefault("neo4j.password", "password")
	viper.SetDefault("mcp.addr", "127.0.0.1:0")
	viper.SetDefault("elasticsearch.url", "http://localhost:9200")
	viper.SetDefault("oracle.rootPath", "datasites")
	viper.SetDefault("oracle.queryTimeout", "5s")
	viper.SetDefault("datasite.path", "datasites")
	viper.SetDefault("datasite.owner", "")
	viper.SetDefault("log.file", "logging/api.log")

	// Attempt to read the config file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("No config file found. Using default settings and environment variables.")
		} else {
			return err
		}
	}

	// Unmarshal the configuration into the Configuration struct
	err := viper.Unmarshal(&config)
	if err != nil {
		return err
	}

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

// GetDuration retrieves a duration value from the configuration
func GetDuration(key string) time.Duration {
	return viper.GetDuration(key)
}

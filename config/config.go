package config

import (
	"log"
	"net"
	"net/url"
	"strconv"

	"github.com/spf13/viper"
)

// Config holds the full application configuration loaded from environment variables or .env file.
//
// It is composed of smaller structs that represent different concerns of the system,
// such as the build job's files, server settings and Postgres connection details.
//
// Example ENV equivalent:
//
//	INPUT_PATH=input.txt
//	HTML_PATH=index.html
//	LIST_NAME=stockInfoList
//	GREETING_DIR=.
//	SNAPSHOT_ENABLED=false
//	SERVER_PORT=8080
//	POSTGRES_HOST=localhost
//	POSTGRES_DB=sectorpulse
//	LOG_LEVEL=info
type Config struct {
	Build    BuildConfig    // listing build job
	Greeting GreetingConfig // greeting job
	Server   ServerConfig   // HTTP server configuration
	Postgres PostgresConfig // PostgreSQL connection settings
	Log      LogConfig
}

// BuildConfig selects the files the build job reads and rewrites.
type BuildConfig struct {
	InputPath       string // tab-separated listing export
	HTMLPath        string // page holding the record array
	ListName        string // JavaScript array variable to replace
	SnapshotEnabled bool   // persist each build to Postgres
}

// GreetingConfig holds the directory the greeting file is written to.
type GreetingConfig struct {
	Dir string
}

// ServerConfig holds HTTP server settings such as the port to listen on.
type ServerConfig struct {
	Port string // The TCP port the HTTP server will listen on (e.g., "8080")
}

// PostgresConfig defines connection details for PostgreSQL.
//
// Fields:
//   - Host: hostname of the database server.
//   - Port: port number of the database server (default 5432).
//   - User: username for authentication.
//   - Password: password for authentication.
//   - DBName: target database name.
//   - SSLMode: SSL mode (e.g., "disable", "require").
//   - URL: computed DSN used by database/sql to connect.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	URL      string
}

// LogConfig controls the global logger.
type LogConfig struct {
	Level  string // zerolog level name
	Pretty bool   // console writer instead of JSON
}

// AppConfig is the globally accessible configuration instance.
//
// It is populated once via LoadConfig() and used throughout the application.
var AppConfig Config

// LoadConfig initializes the global AppConfig by reading from .env file
// or directly from environment variables.
//
// Precedence (from lowest to highest):
//  1. Defaults set in this function.
//  2. Values from .env file (if present).
//  3. Environment variables.
//
// Command-line flags are applied on top of AppConfig by cmd.
//
// Fatal exit:
//   - If required variables are missing, validateConfig() will terminate the app
//     with a descriptive log message.
func LoadConfig() {
	viper.SetDefault("INPUT_PATH", "input.txt")
	viper.SetDefault("HTML_PATH", "index.html")
	viper.SetDefault("LIST_NAME", "stockInfoList")
	viper.SetDefault("GREETING_DIR", ".")
	viper.SetDefault("SNAPSHOT_ENABLED", false)

	viper.SetDefault("SERVER_PORT", "8080")

	viper.SetDefault("POSTGRES_HOST", "localhost")
	viper.SetDefault("POSTGRES_PORT", 5432)
	viper.SetDefault("POSTGRES_USER", "postgres")
	viper.SetDefault("POSTGRES_PASSWORD", "postgres")
	viper.SetDefault("POSTGRES_DB", "sectorpulse")
	viper.SetDefault("POSTGRES_SSLMODE", "disable")

	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_PRETTY", false)

	// Optionally read from .env if present (common in local dev)
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig() // ignore error if no .env

	viper.AutomaticEnv()

	AppConfig = Config{
		Build: BuildConfig{
			InputPath:       viper.GetString("INPUT_PATH"),
			HTMLPath:        viper.GetString("HTML_PATH"),
			ListName:        viper.GetString("LIST_NAME"),
			SnapshotEnabled: viper.GetBool("SNAPSHOT_ENABLED"),
		},
		Greeting: GreetingConfig{
			Dir: viper.GetString("GREETING_DIR"),
		},
		Server: ServerConfig{
			Port: viper.GetString("SERVER_PORT"),
		},
		Postgres: PostgresConfig{
			Host:     viper.GetString("POSTGRES_HOST"),
			Port:     viper.GetInt("POSTGRES_PORT"),
			User:     viper.GetString("POSTGRES_USER"),
			Password: viper.GetString("POSTGRES_PASSWORD"),
			DBName:   viper.GetString("POSTGRES_DB"),
			SSLMode:  viper.GetString("POSTGRES_SSLMODE"),
		},
		Log: LogConfig{
			Level:  viper.GetString("LOG_LEVEL"),
			Pretty: viper.GetBool("LOG_PRETTY"),
		},
	}

	AppConfig.Postgres.URL = BuildDSN(AppConfig.Postgres)

	validateConfig()
}

// BuildDSN renders the database/sql connection string for p. User and
// password are percent-encoded, so they may contain '@', '/' or ':'.
func BuildDSN(p PostgresConfig) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(p.User, p.Password),
		Host:     net.JoinHostPort(p.Host, strconv.Itoa(p.Port)),
		Path:     "/" + p.DBName,
		RawQuery: url.Values{"sslmode": {p.SSLMode}}.Encode(),
	}
	return u.String()
}

// missingKeys lists the required keys that are empty in c.
func missingKeys(c Config) []string {
	var missing []string

	if c.Build.InputPath == "" {
		missing = append(missing, "INPUT_PATH")
	}
	if c.Build.HTMLPath == "" {
		missing = append(missing, "HTML_PATH")
	}
	if c.Build.ListName == "" {
		missing = append(missing, "LIST_NAME")
	}
	if c.Greeting.Dir == "" {
		missing = append(missing, "GREETING_DIR")
	}
	if c.Server.Port == "" {
		missing = append(missing, "SERVER_PORT")
	}
	if c.Postgres.Host == "" {
		missing = append(missing, "POSTGRES_HOST")
	}
	if c.Postgres.Port == 0 {
		missing = append(missing, "POSTGRES_PORT")
	}
	if c.Postgres.User == "" {
		missing = append(missing, "POSTGRES_USER")
	}
	if c.Postgres.DBName == "" {
		missing = append(missing, "POSTGRES_DB")
	}
	return missing
}

// validateConfig ensures required variables are present and terminates
// the application if they are missing.
func validateConfig() {
	if missing := missingKeys(AppConfig); len(missing) > 0 {
		log.Fatalf("missing required environment variables: %v\n", missing)
	}
}

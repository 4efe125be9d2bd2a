package app

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/shotwatch/cmd/application"
	"github.com/agentstation/shotwatch/internal/autopress"
	"github.com/agentstation/shotwatch/pkg/constants"
	"github.com/agentstation/shotwatch/pkg/errors"
)

// Config holds the application configuration loaded from various sources
// including config files, environment variables, and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool

	// Config file
	ConfigFile string

	// ApplicationSettings section
	Settings application.Settings

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string
}

// Keys of the ApplicationSettings section.
const (
	keyHost              = "Host"
	keyPort              = "Port"
	keyToggleKey         = "ToggleKey"
	keyTriggerKey        = "TriggerKey"
	keyTargetWindowTitle = "TargetWindowTitle"
	keyIntervalMS        = "Interval_MS"
	keyJitterMS          = "Jitter_MS"
	keyWatchFolder       = "WatchFolder"
	keyFilePattern       = "FilePattern"
	keyDeleteDelayMS     = "DeleteDelay_MS"
	keyWebSocket         = "WebSocket"
	keyMetrics           = "Metrics"
)

var settingsKeys = []string{
	keyHost, keyPort,
	keyToggleKey, keyTriggerKey, keyTargetWindowTitle, keyIntervalMS, keyJitterMS,
	keyWatchFolder, keyFilePattern, keyDeleteDelayMS, keyWebSocket, keyMetrics,
}

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (handled by cobra)
// 2. Environment variables (SHOTWATCH_HOST, SHOTWATCH_INTERVAL_MS, ...)
// 3. .env files
// 4. appsettings.json in the working directory or next to the executable
// 5. Defaults
func LoadConfig() (*Config, error) {
	return loadConfig("")
}

// loadConfig is LoadConfig with an explicit settings file. A missing
// explicit file is an error; a missing default file is not.
func loadConfig(configFile string) (*Config, error) {
	// Load .env files first (before Viper env binding)
	loadEnvFiles()

	v, err := readSettings(configFile)
	if err != nil {
		return nil, err
	}

	config := &Config{
		ConfigFile: v.ConfigFileUsed(),
		Settings:   settingsFrom(v),

		// Logging configuration
		LogLevel:  os.Getenv("LOG_LEVEL"),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "auto"),
		LogOutput: getEnvOrDefault("LOG_OUTPUT", "stderr"),
	}

	return config, nil
}

// readSettings builds a viper instance over the settings file and the
// SHOTWATCH_ environment.
func readSettings(configFile string) (*viper.Viper, error) {
	v := viper.New()

	section := constants.SettingsSection + "."
	v.SetDefault(section+keyHost, constants.DefaultHost)
	v.SetDefault(section+keyPort, "7543")
	v.SetDefault(section+keyDeleteDelayMS, constants.DefaultDeleteDelay.Milliseconds())
	v.SetDefault(section+keyWebSocket, false)
	v.SetDefault(section+keyMetrics, true)

	for _, key := range settingsKeys {
		env := constants.EnvPrefix + "_" + strings.ToUpper(key)
		if err := v.BindEnv(section+key, env); err != nil {
			return nil, errors.NewConfigError("env", "binding "+env, err)
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(constants.SettingsFile)
		v.SetConfigType("json")
		v.AddConfigPath(".")
		if exe, err := os.Executable(); err == nil {
			v.AddConfigPath(filepath.Dir(exe))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, errors.NewConfigError("settings", "reading "+constants.SettingsFile, err)
		}
	}

	return v, nil
}

// settingsFrom extracts the ApplicationSettings section.
func settingsFrom(v *viper.Viper) application.Settings {
	section := constants.SettingsSection + "."
	get := func(key string) string {
		return strings.TrimSpace(v.GetString(section + key))
	}

	return application.Settings{
		Host:        get(keyHost),
		Port:        get(keyPort),
		WatchFolder: get(keyWatchFolder),
		FilePattern: get(keyFilePattern),
		DeleteDelay: time.Duration(v.GetInt64(section+keyDeleteDelayMS)) * time.Millisecond,
		WebSocket:   v.GetBool(section + keyWebSocket),
		Metrics:     v.GetBool(section + keyMetrics),
		Autopress: autopress.Raw{
			ToggleKey:         get(keyToggleKey),
			TriggerKey:        get(keyTriggerKey),
			TargetWindowTitle: v.GetString(section + keyTargetWindowTitle),
			IntervalMS:        get(keyIntervalMS),
			JitterMS:          get(keyJitterMS),
		},
	}
}

// UpdateFromFlags updates config values from parsed command flags.
// This should be called after cobra parses flags to ensure flag
// values take precedence over config file and env vars.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, logLevel string) {
	c.Verbose = verbose
	c.Quiet = quiet
	c.NoColor = noColor
	if logLevel != "" {
		c.LogLevel = logLevel
	}
}

// loadEnvFiles loads environment variables from .env files.
func loadEnvFiles() {
	// .env.local overrides .env
	envFiles := []string{
		".env.local",
		".env",
	}

	for _, envFile := range envFiles {
		_ = godotenv.Load(envFile)
	}
}

// getEnvOrDefault returns the environment variable value or the default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Package cfg loads service configuration from a YAML file (CONFIG_FILE)
// with environment variable overrides, falling back to pure environment
// configuration when no file is given.
package cfg

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/udhtaz/fintech-transaction-risk-intelligence-system/internal/common"
)

// Settings is the resolved service configuration.
type Settings struct {
	ModelPath    string
	MetadataPath string
	DataPath     string

	APIPort       int
	DashboardPort int
	MetricsPort   int
	APIURL        string

	LowRiskThreshold  float64
	HighRiskThreshold float64
	TopFeatures       int

	BridgeTimeout time.Duration
	LogLevel      string
}

// ConfigFile mirrors the YAML layout.
type ConfigFile struct {
	Model struct {
		Path         string `yaml:"path"`
		MetadataPath string `yaml:"metadataPath"`
		BridgeTimeout string `yaml:"bridgeTimeout"`
	} `yaml:"model"`

	Risk struct {
		LowThreshold  float64 `yaml:"lowThreshold"`
		HighThreshold float64 `yaml:"highThreshold"`
		TopFeatures   int     `yaml:"topFeatures"`
	} `yaml:"risk"`

	Server struct {
		APIPort       int    `yaml:"apiPort"`
		DashboardPort int    `yaml:"dashboardPort"`
		MetricsPort   int    `yaml:"metricsPort"`
		APIURL        string `yaml:"apiURL"`
	} `yaml:"server"`

	System struct {
		DataPath string `yaml:"dataPath"`
		LogLevel string `yaml:"logLevel"`
	} `yaml:"system"`
}

// Load resolves settings from the YAML file named by CONFIG_FILE, or from
// environment variables when no file is configured.
func Load() (Settings, error) {
	if configPath := os.Getenv(common.EnvConfigFile); configPath != "" {
		return loadFromYAML(configPath)
	}
	return loadFromEnv()
}

func loadFromYAML(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var config ConfigFile
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Settings{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	bridgeTimeout, err := time.ParseDuration(config.Model.BridgeTimeout)
	if err != nil {
		bridgeTimeout = 10 * time.Second
	}

	settings := Settings{
		ModelPath:         getEnvOrDefault(common.EnvModelPath, orDefault(config.Model.Path, common.DefaultModelPath)),
		MetadataPath:      getEnvOrDefault(common.EnvMetadataPath, orDefault(config.Model.MetadataPath, common.DefaultMetadataPath)),
		DataPath:          getEnvOrDefault(common.EnvDataPath, config.System.DataPath),
		APIPort:           getIntFromEnvOrConfig(common.EnvAPIPort, config.Server.APIPort, common.DefaultAPIPort),
		DashboardPort:     getIntFromEnvOrConfig(common.EnvDashboardPort, config.Server.DashboardPort, common.DefaultDashboardPort),
		MetricsPort:       getIntFromEnvOrConfig(common.EnvMetricsPort, config.Server.MetricsPort, common.DefaultMetricsPort),
		APIURL:            getEnvOrDefault(common.EnvAPIURL, orDefault(config.Server.APIURL, common.DefaultAPIURL)),
		LowRiskThreshold:  getFloatFromEnvOrConfig(common.EnvLowRiskThreshold, config.Risk.LowThreshold, common.DefaultLowRiskThreshold),
		HighRiskThreshold: getFloatFromEnvOrConfig(common.EnvHighRiskThreshold, config.Risk.HighThreshold, common.DefaultHighRiskThreshold),
		TopFeatures:       getIntFromEnvOrConfig(common.EnvTopFeatures, config.Risk.TopFeatures, common.DefaultTopFeatures),
		BridgeTimeout:     bridgeTimeout,
		LogLevel:          getEnvOrDefault(common.EnvLogLevel, orDefault(config.System.LogLevel, "info")),
	}

	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}
	return settings, nil
}

func loadFromEnv() (Settings, error) {
	settings := Settings{
		ModelPath:         getEnvOrDefault(common.EnvModelPath, common.DefaultModelPath),
		MetadataPath:      getEnvOrDefault(common.EnvMetadataPath, common.DefaultMetadataPath),
		DataPath:          os.Getenv(common.EnvDataPath), // optional
		APIPort:           getIntOrDefault(common.EnvAPIPort, common.DefaultAPIPort),
		DashboardPort:     getIntOrDefault(common.EnvDashboardPort, common.DefaultDashboardPort),
		MetricsPort:       getIntOrDefault(common.EnvMetricsPort, common.DefaultMetricsPort),
		APIURL:            getEnvOrDefault(common.EnvAPIURL, common.DefaultAPIURL),
		LowRiskThreshold:  getFloatOrDefault(common.EnvLowRiskThreshold, common.DefaultLowRiskThreshold),
		HighRiskThreshold: getFloatOrDefault(common.EnvHighRiskThreshold, common.DefaultHighRiskThreshold),
		TopFeatures:       getIntOrDefault(common.EnvTopFeatures, common.DefaultTopFeatures),
		BridgeTimeout:     getDurationOrDefault(common.EnvBridgeTimeout, 10*time.Second),
		LogLevel:          getEnvOrDefault(common.EnvLogLevel, "info"),
	}

	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}
	return settings, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func orDefault(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultValue
}

func getFloatOrDefault(key string, defaultValue float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getIntFromEnvOrConfig(key string, configValue, defaultValue int) int {
	if env := os.Getenv(key); env != "" {
		if val, err := strconv.Atoi(env); err == nil {
			return val
		}
	}
	if configValue != 0 {
		return configValue
	}
	return defaultValue
}

func getFloatFromEnvOrConfig(key string, configValue, defaultValue float64) float64 {
	if env := os.Getenv(key); env != "" {
		if val, err := strconv.ParseFloat(env, 64); err == nil {
			return val
		}
	}
	if configValue != 0 {
		return configValue
	}
	return defaultValue
}

// validateSettings performs validation of configuration values.
func validateSettings(s *Settings) error {
	if s.ModelPath == "" {
		return fmt.Errorf("model path cannot be empty")
	}
	if s.MetadataPath == "" {
		return fmt.Errorf("metadata path cannot be empty")
	}

	for name, port := range map[string]int{
		"API": s.APIPort, "dashboard": s.DashboardPort, "metrics": s.MetricsPort,
	} {
		if port < common.MinPort || port > common.MaxPort {
			return fmt.Errorf("%s port must be between %d and %d, got %d", name, common.MinPort, common.MaxPort, port)
		}
	}

	if s.LowRiskThreshold <= 0 || s.LowRiskThreshold >= 1 {
		return fmt.Errorf("low risk threshold must be in (0, 1), got %f", s.LowRiskThreshold)
	}
	if s.HighRiskThreshold <= 0 || s.HighRiskThreshold >= 1 {
		return fmt.Errorf("high risk threshold must be in (0, 1), got %f", s.HighRiskThreshold)
	}
	if s.LowRiskThreshold >= s.HighRiskThreshold {
		return fmt.Errorf("low risk threshold %f must be below high risk threshold %f", s.LowRiskThreshold, s.HighRiskThreshold)
	}

	if s.TopFeatures <= 0 || s.TopFeatures > 50 {
		return fmt.Errorf("top features must be between 1 and 50, got %d", s.TopFeatures)
	}
	if s.BridgeTimeout < time.Second || s.BridgeTimeout > time.Minute {
		return fmt.Errorf("bridge timeout must be between 1s and 1m, got %v", s.BridgeTimeout)
	}

	return nil
}

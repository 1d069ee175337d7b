package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigPath = "/etc/healthwatch"
	ConfigFileName    = "healthwatch.yml"
)

// ProbeConfig describes a single named test to run against a service.
type ProbeConfig struct {
	Name           string `yaml:"name" json:"name"`
	Method         string `yaml:"method" json:"method"`
	Path           string `yaml:"path" json:"path"`
	ExpectedStatus []int  `yaml:"expected_status" json:"expected_status"`
}

// ServiceConfig describes a monitored service and its probes.
// Every service also gets the default health_check probe.
type ServiceConfig struct {
	Name    string        `yaml:"name" json:"name"`
	BaseURL string        `yaml:"base_url" json:"base_url"`
	Probes  []ProbeConfig `yaml:"probes" json:"probes"`
}

// HealthwatchConfig holds all healthwatch configuration settings
type HealthwatchConfig struct {
	// MonitorIntervalSeconds is the normal interval between probe runs
	MonitorIntervalSeconds int `yaml:"monitor_interval_seconds" json:"monitor_interval_seconds"`

	// AcceleratedIntervalSeconds is the interval used during the accelerated
	// startup phase, to pick up newly registered services quickly
	AcceleratedIntervalSeconds int `yaml:"accelerated_interval_seconds" json:"accelerated_interval_seconds"`

	// AcceleratedPeriodSeconds is how long the accelerated phase lasts
	AcceleratedPeriodSeconds int `yaml:"accelerated_period_seconds" json:"accelerated_period_seconds"`

	// InitialDelaySeconds is the wait before the first probe run
	InitialDelaySeconds int `yaml:"initial_delay_seconds" json:"initial_delay_seconds"`

	// ProbeTimeoutSeconds is the per-request timeout for probes
	ProbeTimeoutSeconds int `yaml:"probe_timeout_seconds" json:"probe_timeout_seconds"`

	// ProbePacingMS is the delay between consecutive probes in a run,
	// to avoid hammering the monitored services
	ProbePacingMS int `yaml:"probe_pacing_ms" json:"probe_pacing_ms"`

	// APIResultListLimitMax is the maximum page size for listing requests
	APIResultListLimitMax int `yaml:"api_result_list_limit_max" json:"api_result_list_limit_max"`

	// WriteTokenKey is the HMAC key protecting write endpoints.
	// Empty disables authentication. Environment only, never from file.
	WriteTokenKey string `yaml:"-" json:"-"`

	// Services is the list of monitored services
	Services []ServiceConfig `yaml:"services" json:"services"`

	// sources tracks where each value came from
	sources map[string]string

	// configFilePath is the path to the config file
	configFilePath string
}

// Attribute represents a configuration attribute with its value and source
type Attribute struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Source string `json:"source"`
}

// Global singleton config
var (
	globalConfig *HealthwatchConfig
	configMu     sync.RWMutex
)

// Get returns the global configuration, loading it if necessary
func Get() *HealthwatchConfig {
	configMu.RLock()
	if globalConfig != nil {
		configMu.RUnlock()
		return globalConfig
	}
	configMu.RUnlock()

	configMu.Lock()
	defer configMu.Unlock()

	if globalConfig == nil {
		cfg, err := Load()
		if err != nil {
			// Return defaults on error
			globalConfig = newDefault()
		} else {
			globalConfig = cfg
		}
	}
	return globalConfig
}

// Reload reloads the configuration from file and environment
func Reload() error {
	cfg, err := Load()
	if err != nil {
		return err
	}

	configMu.Lock()
	globalConfig = cfg
	configMu.Unlock()
	return nil
}

// newDefault returns a config with default values
func newDefault() *HealthwatchConfig {
	return &HealthwatchConfig{
		MonitorIntervalSeconds:     3600,
		AcceleratedIntervalSeconds: 30,
		AcceleratedPeriodSeconds:   300,
		InitialDelaySeconds:        60,
		ProbeTimeoutSeconds:        10,
		ProbePacingMS:              500,
		APIResultListLimitMax:      1000,
		Services:                   []ServiceConfig{},
		sources:                    make(map[string]string),
	}
}

// Load loads configuration from file and environment variables.
// Environment variables take precedence over file values.
func Load() (*HealthwatchConfig, error) {
	config := newDefault()

	// Initialize all sources as "default"
	for _, name := range attributeNames() {
		config.sources[name] = "default"
	}

	// Determine config file path
	configPath := os.Getenv("HEALTHWATCH_CONFIG_PATH")
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	config.configFilePath = filepath.Join(configPath, ConfigFileName)

	// Try to load from config file
	if data, err := os.ReadFile(config.configFilePath); err == nil {
		var fileConfig HealthwatchConfig
		if err := yaml.Unmarshal(data, &fileConfig); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", config.configFilePath, err)
		}
		config.applyFileConfig(&fileConfig)
	}

	// Override with environment variables
	config.applyEnvConfig()

	return config, nil
}

func attributeNames() []string {
	return []string{
		"monitor_interval_seconds", "accelerated_interval_seconds",
		"accelerated_period_seconds", "initial_delay_seconds",
		"probe_timeout_seconds", "probe_pacing_ms",
		"api_result_list_limit_max", "write_token_key", "services",
	}
}

func (c *HealthwatchConfig) applyFileConfig(file *HealthwatchConfig) {
	if file.MonitorIntervalSeconds != 0 {
		c.MonitorIntervalSeconds = file.MonitorIntervalSeconds
		c.sources["monitor_interval_seconds"] = "file"
	}
	if file.AcceleratedIntervalSeconds != 0 {
		c.AcceleratedIntervalSeconds = file.AcceleratedIntervalSeconds
		c.sources["accelerated_interval_seconds"] = "file"
	}
	if file.AcceleratedPeriodSeconds != 0 {
		c.AcceleratedPeriodSeconds = file.AcceleratedPeriodSeconds
		c.sources["accelerated_period_seconds"] = "file"
	}
	if file.InitialDelaySeconds != 0 {
		c.InitialDelaySeconds = file.InitialDelaySeconds
		c.sources["initial_delay_seconds"] = "file"
	}
	if file.ProbeTimeoutSeconds != 0 {
		c.ProbeTimeoutSeconds = file.ProbeTimeoutSeconds
		c.sources["probe_timeout_seconds"] = "file"
	}
	if file.ProbePacingMS != 0 {
		c.ProbePacingMS = file.ProbePacingMS
		c.sources["probe_pacing_ms"] = "file"
	}
	if file.APIResultListLimitMax != 0 {
		c.APIResultListLimitMax = file.APIResultListLimitMax
		c.sources["api_result_list_limit_max"] = "file"
	}
	if len(file.Services) > 0 {
		c.Services = file.Services
		c.sources["services"] = "file"
	}
}

func (c *HealthwatchConfig) applyEnvConfig() {
	if val := os.Getenv("HEALTHWATCH_MONITOR_INTERVAL_SECONDS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			c.MonitorIntervalSeconds = i
			c.sources["monitor_interval_seconds"] = "environment"
		}
	}
	if val := os.Getenv("HEALTHWATCH_ACCELERATED_INTERVAL_SECONDS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			c.AcceleratedIntervalSeconds = i
			c.sources["accelerated_interval_seconds"] = "environment"
		}
	}
	if val := os.Getenv("HEALTHWATCH_ACCELERATED_PERIOD_SECONDS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			c.AcceleratedPeriodSeconds = i
			c.sources["accelerated_period_seconds"] = "environment"
		}
	}
	if val := os.Getenv("HEALTHWATCH_INITIAL_DELAY_SECONDS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			c.InitialDelaySeconds = i
			c.sources["initial_delay_seconds"] = "environment"
		}
	}
	if val := os.Getenv("HEALTHWATCH_PROBE_TIMEOUT_SECONDS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			c.ProbeTimeoutSeconds = i
			c.sources["probe_timeout_seconds"] = "environment"
		}
	}
	if val := os.Getenv("HEALTHWATCH_PROBE_PACING_MS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			c.ProbePacingMS = i
			c.sources["probe_pacing_ms"] = "environment"
		}
	}
	if val := os.Getenv("HEALTHWATCH_API_RESULT_LIST_LIMIT_MAX"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			c.APIResultListLimitMax = i
			c.sources["api_result_list_limit_max"] = "environment"
		}
	}
	if val := os.Getenv("HEALTHWATCH_WRITE_TOKEN_KEY"); val != "" {
		c.WriteTokenKey = val
		c.sources["write_token_key"] = "environment"
	}
}

// ConfigFilePath returns the path to the config file
func (c *HealthwatchConfig) ConfigFilePath() string {
	return c.configFilePath
}

// Source returns the source of a configuration attribute
func (c *HealthwatchConfig) Source(name string) string {
	if c.sources == nil {
		return "default"
	}
	if s, ok := c.sources[name]; ok {
		return s
	}
	return "default"
}

// MonitorInterval returns the normal probe interval as a duration
func (c *HealthwatchConfig) MonitorInterval() time.Duration {
	return time.Duration(c.MonitorIntervalSeconds) * time.Second
}

// AcceleratedInterval returns the accelerated probe interval as a duration
func (c *HealthwatchConfig) AcceleratedInterval() time.Duration {
	return time.Duration(c.AcceleratedIntervalSeconds) * time.Second
}

// AcceleratedPeriod returns the length of the accelerated phase as a duration
func (c *HealthwatchConfig) AcceleratedPeriod() time.Duration {
	return time.Duration(c.AcceleratedPeriodSeconds) * time.Second
}

// InitialDelay returns the delay before the first probe run as a duration
func (c *HealthwatchConfig) InitialDelay() time.Duration {
	return time.Duration(c.InitialDelaySeconds) * time.Second
}

// ProbeTimeout returns the per-probe request timeout as a duration
func (c *HealthwatchConfig) ProbeTimeout() time.Duration {
	return time.Duration(c.ProbeTimeoutSeconds) * time.Second
}

// ProbePacing returns the delay between consecutive probes as a duration
func (c *HealthwatchConfig) ProbePacing() time.Duration {
	return time.Duration(c.ProbePacingMS) * time.Millisecond
}

// Validate validates the configuration
func (c *HealthwatchConfig) Validate() error {
	if c.MonitorIntervalSeconds <= 0 {
		return fmt.Errorf("monitor_interval_seconds must be positive")
	}
	if c.AcceleratedIntervalSeconds <= 0 {
		return fmt.Errorf("accelerated_interval_seconds must be positive")
	}
	if c.ProbeTimeoutSeconds <= 0 {
		return fmt.Errorf("probe_timeout_seconds must be positive")
	}

	seen := make(map[string]bool)
	for _, svc := range c.Services {
		if svc.Name == "" {
			return fmt.Errorf("service name is required")
		}
		if len(svc.Name) > 100 {
			return fmt.Errorf("service name %q exceeds 100 characters", svc.Name)
		}
		if seen[svc.Name] {
			return fmt.Errorf("duplicate service name: %s", svc.Name)
		}
		seen[svc.Name] = true

		if _, err := url.ParseRequestURI(svc.BaseURL); err != nil {
			return fmt.Errorf("service %s has invalid base_url: %w", svc.Name, err)
		}
		for _, probe := range svc.Probes {
			if probe.Name == "" {
				return fmt.Errorf("service %s has a probe without a name", svc.Name)
			}
			if len(probe.Name) > 255 {
				return fmt.Errorf("probe name %q exceeds 255 characters", probe.Name)
			}
		}
	}
	return nil
}

// ServiceNames returns the names of all configured services
func (c *HealthwatchConfig) ServiceNames() []string {
	names := make([]string, 0, len(c.Services))
	for _, svc := range c.Services {
		names = append(names, svc.Name)
	}
	return names
}

// Attributes returns all configuration attributes with their values and sources
func (c *HealthwatchConfig) Attributes() []Attribute {
	writeTokenKey := ""
	if c.WriteTokenKey != "" {
		writeTokenKey = "(set)"
	}
	return []Attribute{
		{Name: "monitor_interval_seconds", Value: strconv.Itoa(c.MonitorIntervalSeconds), Source: c.Source("monitor_interval_seconds")},
		{Name: "accelerated_interval_seconds", Value: strconv.Itoa(c.AcceleratedIntervalSeconds), Source: c.Source("accelerated_interval_seconds")},
		{Name: "accelerated_period_seconds", Value: strconv.Itoa(c.AcceleratedPeriodSeconds), Source: c.Source("accelerated_period_seconds")},
		{Name: "initial_delay_seconds", Value: strconv.Itoa(c.InitialDelaySeconds), Source: c.Source("initial_delay_seconds")},
		{Name: "probe_timeout_seconds", Value: strconv.Itoa(c.ProbeTimeoutSeconds), Source: c.Source("probe_timeout_seconds")},
		{Name: "probe_pacing_ms", Value: strconv.Itoa(c.ProbePacingMS), Source: c.Source("probe_pacing_ms")},
		{Name: "api_result_list_limit_max", Value: strconv.Itoa(c.APIResultListLimitMax), Source: c.Source("api_result_list_limit_max")},
		{Name: "write_token_key", Value: writeTokenKey, Source: c.Source("write_token_key")},
		{Name: "services", Value: strings.Join(c.ServiceNames(), ","), Source: c.Source("services")},
	}
}

// FormatText returns a text representation of the configuration
func (c *HealthwatchConfig) FormatText() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Config file: %s\n\n", c.configFilePath))
	sb.WriteString(fmt.Sprintf("%-32s %-30s %s\n", "NAME", "VALUE", "SOURCE"))
	sb.WriteString(fmt.Sprintf("%-32s %-30s %s\n", "----", "-----", "------"))

	for _, attr := range c.Attributes() {
		value := attr.Value
		if value == "" {
			value = "(not set)"
		}
		sb.WriteString(fmt.Sprintf("%-32s %-30s %s\n", attr.Name, value, attr.Source))
	}
	return sb.String()
}

// FormatJSON returns a JSON representation of the configuration
func (c *HealthwatchConfig) FormatJSON() (string, error) {
	result := map[string]interface{}{
		"config_file": c.configFilePath,
		"attributes":  c.Attributes(),
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

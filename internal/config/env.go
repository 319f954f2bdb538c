// Package config handles environment-based configuration loading with an
// optional YAML overlay and .env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// EnvConfig holds the settings of one restore run.
type EnvConfig struct {
	// Targets
	DatabasePath    string
	StaticDHCPFile  string
	CustomDNSFile   string
	CustomCNAMEFile string

	// Control tool
	PiholeBin      string
	CommandTimeout time.Duration

	// Logging
	LogLevel  string
	LogFormat string

	// Failure policy
	Strict bool
}

// LoadEnvConfig reads environment variables and returns a validated EnvConfig.
// Returns an error if any value is invalid.
func LoadEnvConfig() (*EnvConfig, error) {
	cfg := &EnvConfig{}
	var errs []string

	// --- Targets ---
	cfg.DatabasePath = envStr("TELEPORTER_DATABASE", "/etc/pihole/gravity.db")
	cfg.StaticDHCPFile = envStr("TELEPORTER_STATIC_DHCP_FILE", "/etc/dnsmasq.d/04-pihole-static-dhcp.conf")
	cfg.CustomDNSFile = envStr("TELEPORTER_CUSTOM_DNS_FILE", "/etc/pihole/custom.list")
	cfg.CustomCNAMEFile = envStr("TELEPORTER_CUSTOM_CNAME_FILE", "/etc/dnsmasq.d/05-pihole-custom-cname.conf")

	// --- Control tool ---
	cfg.PiholeBin = strings.TrimSpace(envStr("TELEPORTER_PIHOLE_BIN", "pihole"))
	cfg.CommandTimeout = envDuration("TELEPORTER_COMMAND_TIMEOUT", 30*time.Second, &errs)

	// --- Logging ---
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(envStr("TELEPORTER_LOG_LEVEL", "info")))
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(envStr("TELEPORTER_LOG_FORMAT", "console")))

	cfg.Strict = envBool("TELEPORTER_STRICT", false, &errs)

	errs = append(errs, cfg.validate()...)
	if len(errs) > 0 {
		return nil, validationError(errs)
	}
	return cfg, nil
}

// Validate re-checks cfg after overlays or flags changed it.
func (c *EnvConfig) Validate() error {
	if errs := c.validate(); len(errs) > 0 {
		return validationError(errs)
	}
	return nil
}

func (c *EnvConfig) validate() []string {
	var errs []string
	validateNonEmpty("TELEPORTER_DATABASE", c.DatabasePath, &errs)
	validateNonEmpty("TELEPORTER_STATIC_DHCP_FILE", c.StaticDHCPFile, &errs)
	validateNonEmpty("TELEPORTER_CUSTOM_DNS_FILE", c.CustomDNSFile, &errs)
	validateNonEmpty("TELEPORTER_CUSTOM_CNAME_FILE", c.CustomCNAMEFile, &errs)
	validateNonEmpty("TELEPORTER_PIHOLE_BIN", c.PiholeBin, &errs)

	if c.CommandTimeout <= 0 {
		errs = append(errs, "TELEPORTER_COMMAND_TIMEOUT must be positive")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("TELEPORTER_LOG_LEVEL: invalid value %q (allowed: debug, info, warn, error)", c.LogLevel))
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		errs = append(errs, fmt.Sprintf("TELEPORTER_LOG_FORMAT: invalid value %q (allowed: console, json)", c.LogFormat))
	}
	return errs
}

func validationError(errs []string) error {
	return fmt.Errorf("config validation failed:\n  %s", strings.Join(errs, "\n  "))
}

// --- helpers ---

func envStr(key, defaultVal string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return defaultVal
}

func envDuration(key string, defaultVal time.Duration, errs *[]string) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("%s: invalid duration %q", key, v))
		return defaultVal
	}
	return d
}

func envBool(key string, defaultVal bool, errs *[]string) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("%s: invalid boolean %q", key, v))
		return defaultVal
	}
	return b
}

func validateNonEmpty(name, value string, errs *[]string) {
	if strings.TrimSpace(value) == "" {
		*errs = append(*errs, name+" must not be empty")
	}
}

package config

import (
	"strings"
	"testing"
	"time"
)

// setEnvs sets multiple env vars for the duration of the test.
func setEnvs(t *testing.T, envs map[string]string) {
	t.Helper()
	for k, v := range envs {
		t.Setenv(k, v)
	}
}

func TestLoadEnvConfig_Defaults(t *testing.T) {
	cfg, err := LoadEnvConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Targets
	assertEqual(t, "DatabasePath", cfg.DatabasePath, "/etc/pihole/gravity.db")
	assertEqual(t, "StaticDHCPFile", cfg.StaticDHCPFile, "/etc/dnsmasq.d/04-pihole-static-dhcp.conf")
	assertEqual(t, "CustomDNSFile", cfg.CustomDNSFile, "/etc/pihole/custom.list")
	assertEqual(t, "CustomCNAMEFile", cfg.CustomCNAMEFile, "/etc/dnsmasq.d/05-pihole-custom-cname.conf")

	// Control tool
	assertEqual(t, "PiholeBin", cfg.PiholeBin, "pihole")
	assertEqual(t, "CommandTimeout", cfg.CommandTimeout, 30*time.Second)

	// Logging
	assertEqual(t, "LogLevel", cfg.LogLevel, "info")
	assertEqual(t, "LogFormat", cfg.LogFormat, "console")

	assertEqual(t, "Strict", cfg.Strict, false)
}

func TestLoadEnvConfig_EnvOverrides(t *testing.T) {
	setEnvs(t, map[string]string{
		"TELEPORTER_DATABASE":          "/tmp/gravity.db",
		"TELEPORTER_STATIC_DHCP_FILE":  "/tmp/04.conf",
		"TELEPORTER_CUSTOM_DNS_FILE":   "/tmp/custom.list",
		"TELEPORTER_CUSTOM_CNAME_FILE": "/tmp/05.conf",
		"TELEPORTER_PIHOLE_BIN":        " /usr/local/bin/pihole ",
		"TELEPORTER_COMMAND_TIMEOUT":   "5s",
		"TELEPORTER_LOG_LEVEL":         "DEBUG",
		"TELEPORTER_LOG_FORMAT":        "json",
		"TELEPORTER_STRICT":            "true",
	})

	cfg, err := LoadEnvConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertEqual(t, "DatabasePath", cfg.DatabasePath, "/tmp/gravity.db")
	assertEqual(t, "StaticDHCPFile", cfg.StaticDHCPFile, "/tmp/04.conf")
	assertEqual(t, "CustomDNSFile", cfg.CustomDNSFile, "/tmp/custom.list")
	assertEqual(t, "CustomCNAMEFile", cfg.CustomCNAMEFile, "/tmp/05.conf")
	assertEqual(t, "PiholeBin", cfg.PiholeBin, "/usr/local/bin/pihole")
	assertEqual(t, "CommandTimeout", cfg.CommandTimeout, 5*time.Second)
	assertEqual(t, "LogLevel", cfg.LogLevel, "debug")
	assertEqual(t, "LogFormat", cfg.LogFormat, "json")
	assertEqual(t, "Strict", cfg.Strict, true)
}

func TestLoadEnvConfig_InvalidDuration(t *testing.T) {
	setEnvs(t, map[string]string{"TELEPORTER_COMMAND_TIMEOUT": "not-a-duration"})

	_, err := LoadEnvConfig()
	if err == nil {
		t.Fatal("expected error for invalid duration")
	}
	assertContains(t, err.Error(), "TELEPORTER_COMMAND_TIMEOUT")
}

func TestLoadEnvConfig_NonPositiveTimeout(t *testing.T) {
	setEnvs(t, map[string]string{"TELEPORTER_COMMAND_TIMEOUT": "0s"})

	_, err := LoadEnvConfig()
	if err == nil {
		t.Fatal("expected error for zero timeout")
	}
	assertContains(t, err.Error(), "must be positive")
}

func TestLoadEnvConfig_InvalidBool(t *testing.T) {
	setEnvs(t, map[string]string{"TELEPORTER_STRICT": "sometimes"})

	_, err := LoadEnvConfig()
	if err == nil {
		t.Fatal("expected error for invalid boolean")
	}
	assertContains(t, err.Error(), "TELEPORTER_STRICT")
}

func TestLoadEnvConfig_EmptyDatabase(t *testing.T) {
	setEnvs(t, map[string]string{"TELEPORTER_DATABASE": "  "})

	_, err := LoadEnvConfig()
	if err == nil {
		t.Fatal("expected error for empty database path")
	}
	assertContains(t, err.Error(), "TELEPORTER_DATABASE must not be empty")
}

func TestLoadEnvConfig_InvalidLogSettings(t *testing.T) {
	setEnvs(t, map[string]string{
		"TELEPORTER_LOG_LEVEL":  "loud",
		"TELEPORTER_LOG_FORMAT": "xml",
	})

	_, err := LoadEnvConfig()
	if err == nil {
		t.Fatal("expected error for invalid log settings")
	}
	// Both problems are reported together.
	assertContains(t, err.Error(), "TELEPORTER_LOG_LEVEL")
	assertContains(t, err.Error(), "TELEPORTER_LOG_FORMAT")
}

func assertEqual[T comparable](t *testing.T, name string, got, want T) {
	t.Helper()
	if got != want {
		t.Errorf("%s: got %v, want %v", name, got, want)
	}
}

func assertContains(t *testing.T, s, substr string) {
	t.Helper()
	if !strings.Contains(s, substr) {
		t.Errorf("expected %q to contain %q", s, substr)
	}
}

package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// FileConfig is the YAML overlay. Unset keys leave the environment value in
// place.
type FileConfig struct {
	Database        *string   `yaml:"database"`
	StaticDHCPFile  *string   `yaml:"static_dhcp_file"`
	CustomDNSFile   *string   `yaml:"custom_dns_file"`
	CustomCNAMEFile *string   `yaml:"custom_cname_file"`
	PiholeBin       *string   `yaml:"pihole_bin"`
	CommandTimeout  *Duration `yaml:"command_timeout"`
	LogLevel        *string   `yaml:"log_level"`
	LogFormat       *string   `yaml:"log_format"`
	Strict          *bool     `yaml:"strict"`
}

// LoadFile decodes the YAML overlay at path. Unknown keys are rejected.
func LoadFile(fs afero.Fs, path string) (*FileConfig, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config %s: %w", path, err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)

	var fc FileConfig
	if err := dec.Decode(&fc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}
	return &fc, nil
}

// Apply overlays the set keys of fc onto c. Call Validate afterwards.
func (c *EnvConfig) Apply(fc *FileConfig) {
	if fc == nil {
		return
	}
	setString(&c.DatabasePath, fc.Database)
	setString(&c.StaticDHCPFile, fc.StaticDHCPFile)
	setString(&c.CustomDNSFile, fc.CustomDNSFile)
	setString(&c.CustomCNAMEFile, fc.CustomCNAMEFile)
	setString(&c.PiholeBin, fc.PiholeBin)
	setString(&c.LogLevel, fc.LogLevel)
	setString(&c.LogFormat, fc.LogFormat)
	if fc.CommandTimeout != nil {
		c.CommandTimeout = fc.CommandTimeout.Std()
	}
	if fc.Strict != nil {
		c.Strict = *fc.Strict
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

// LoadDotEnv exports the variables of a .env file into the process
// environment. Variables that are already set win. A missing file is not
// an error.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

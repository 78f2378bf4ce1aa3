package keyrotate

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultEndpoint           = "https://keyrotate.qq.com/rotate_key"
	DefaultCipherSuiteVersion = 305
	DefaultTimeout            = 10 * time.Second
)

var ErrInvalidConfig = errors.New("keyrotate: invalid config")

// Config controls where and how keys are fetched.
type Config struct {
	// Endpoint is the rotation URL without query parameters.
	Endpoint string `yaml:"endpoint"`

	// CipherSuiteVersion is sent as cipher_suite_ver.
	CipherSuiteVersion int `yaml:"cipher_suite_ver"`

	// Timeout bounds a single fetch. Zero means no limit beyond the
	// caller's context.
	Timeout time.Duration `yaml:"timeout"`
}

func DefaultConfig() Config {
	return Config{
		Endpoint:           DefaultEndpoint,
		CipherSuiteVersion: DefaultCipherSuiteVersion,
		Timeout:            DefaultTimeout,
	}
}

// ParseConfig reads YAML on top of DefaultConfig, so omitted fields keep their
// defaults.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("keyrotate: read config: %w", err)
	}
	return ParseConfig(data)
}

func (c Config) Validate() error {
	u, err := url.Parse(c.Endpoint)
	if err != nil {
		return fmt.Errorf("%w: endpoint: %v", ErrInvalidConfig, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: endpoint scheme %q", ErrInvalidConfig, u.Scheme)
	}
	if c.CipherSuiteVersion <= 0 {
		return fmt.Errorf("%w: cipher_suite_ver %d", ErrInvalidConfig, c.CipherSuiteVersion)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("%w: negative timeout", ErrInvalidConfig)
	}
	return nil
}

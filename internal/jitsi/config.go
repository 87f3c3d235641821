package jitsi

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"

	"github.com/caarlos0/env/v9"
	"github.com/hashicorp/go-multierror"
)

const (
	DefaultHostname     = "meet"
	DefaultInstanceType = "t3a.small"
	DefaultKeyDir       = "keys"
)

var hostnameLabel = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?$`)

// Config is the deployment configuration, read once from the environment
// and passed to every step that declares resources.
type Config struct {
	Hostname     string `env:"JITSI_HOSTNAME" envDefault:"meet"`
	LongLived    Flag   `env:"JITSI_LONGLIVED"`
	InstanceType string `env:"JITSI_INSTANCETYPE" envDefault:"t3a.small"`
	Email        string `env:"JITSI_EMAIL"`
	ZoneName     string `env:"JITSI_ZONENAME"`
	SSHKeyName   string `env:"JITSI_SSHKEYNAME"`
	KeyDir       string `env:"JITSI_KEYDIR" envDefault:"keys"`
}

// Flag is a boolean environment value. Only the usual spellings of true
// and false are accepted so that JITSI_LONGLIVED=false means false.
type Flag bool

func (f *Flag) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "", "0", "false", "no", "off":
		*f = false
	case "1", "true", "yes", "on":
		*f = true
	default:
		return fmt.Errorf("invalid boolean %q", string(text))
	}
	return nil
}

// Load reads the configuration from the environment and validates it.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing jitsi config: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// set-but-empty variables fall back to the defaults too
func (c *Config) normalize() {
	c.Hostname = strings.ToLower(strings.TrimSpace(c.Hostname))
	if c.Hostname == "" {
		c.Hostname = DefaultHostname
	}
	c.InstanceType = strings.TrimSpace(c.InstanceType)
	if c.InstanceType == "" {
		c.InstanceType = DefaultInstanceType
	}
	c.ZoneName = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(c.ZoneName)), ".")
	c.Email = strings.TrimSpace(c.Email)
	if c.KeyDir == "" {
		c.KeyDir = DefaultKeyDir
	}
}

// Validate reports every configuration problem at once.
func (c *Config) Validate() error {
	var result *multierror.Error
	if !hostnameLabel.MatchString(c.Hostname) {
		result = multierror.Append(result, fmt.Errorf("JITSI_HOSTNAME %q is not a valid DNS label", c.Hostname))
	}
	if c.InstanceType == "" {
		result = multierror.Append(result, fmt.Errorf("JITSI_INSTANCETYPE is required"))
	}
	if c.ZoneName != "" && c.Email == "" {
		result = multierror.Append(result, fmt.Errorf("JITSI_EMAIL is required when JITSI_ZONENAME is set"))
	}
	if c.Email != "" {
		addr, err := mail.ParseAddress(c.Email)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("JITSI_EMAIL %q: %w", c.Email, err))
		} else if addr.Address != c.Email {
			result = multierror.Append(result, fmt.Errorf("JITSI_EMAIL %q must be a bare address", c.Email))
		}
	}
	return result.ErrorOrNil()
}

func (c *Config) HasZone() bool {
	return c.ZoneName != ""
}

// FQDN is the public name of the server, or the bare hostname when no zone
// is configured.
func (c *Config) FQDN() string {
	if !c.HasZone() {
		return c.Hostname
	}
	return c.Hostname + "." + c.ZoneName
}

// UpdatesOwnDNS reports whether the instance refreshes its A record on boot.
func (c *Config) UpdatesOwnDNS() bool {
	return bool(c.LongLived) && c.HasZone()
}

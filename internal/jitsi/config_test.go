package jitsi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var jitsiVars = []string{
	"JITSI_HOSTNAME",
	"JITSI_LONGLIVED",
	"JITSI_INSTANCETYPE",
	"JITSI_EMAIL",
	"JITSI_ZONENAME",
	"JITSI_SSHKEYNAME",
	"JITSI_KEYDIR",
}

func setEnv(t *testing.T, vars map[string]string) {
	t.Helper()
	for _, k := range jitsiVars {
		t.Setenv(k, vars[k])
	}
}

func TestLoadDefaults(t *testing.T) {
	setEnv(t, nil)
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "meet", cfg.Hostname)
	assert.Equal(t, "t3a.small", cfg.InstanceType)
	assert.Equal(t, "keys", cfg.KeyDir)
	assert.False(t, bool(cfg.LongLived))
	assert.False(t, cfg.HasZone())
	assert.Equal(t, "meet", cfg.FQDN())
}

func TestLoadFull(t *testing.T) {
	setEnv(t, map[string]string{
		"JITSI_HOSTNAME":     "Talk",
		"JITSI_LONGLIVED":    "yes",
		"JITSI_INSTANCETYPE": "c5.large",
		"JITSI_EMAIL":        "ops@example.com",
		"JITSI_ZONENAME":     "Example.com.",
	})
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "talk", cfg.Hostname)
	assert.Equal(t, "c5.large", cfg.InstanceType)
	assert.True(t, bool(cfg.LongLived))
	assert.Equal(t, "example.com", cfg.ZoneName)
	assert.Equal(t, "talk.example.com", cfg.FQDN())
	assert.True(t, cfg.UpdatesOwnDNS())
}

func TestLoadZoneRequiresEmail(t *testing.T) {
	setEnv(t, map[string]string{"JITSI_ZONENAME": "example.com"})
	cfg, err := Load()
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "JITSI_EMAIL is required when JITSI_ZONENAME is set")
}

func TestLoadReportsAllProblems(t *testing.T) {
	setEnv(t, map[string]string{
		"JITSI_HOSTNAME": "not_a_label",
		"JITSI_ZONENAME": "example.com",
	})
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JITSI_HOSTNAME")
	assert.Contains(t, err.Error(), "JITSI_EMAIL")
}

func TestLoadLongLived(t *testing.T) {
	tests := []struct {
		value   string
		want    bool
		wantErr bool
	}{
		{"", false, false},
		{"0", false, false},
		{"false", false, false},
		{"FALSE", false, false},
		{"off", false, false},
		{"1", true, false},
		{"true", true, false},
		{"Yes", true, false},
		{"on", true, false},
		{"maybe", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			setEnv(t, map[string]string{"JITSI_LONGLIVED": tt.value})
			cfg, err := Load()
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, bool(cfg.LongLived))
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"minimal", Config{Hostname: "meet", InstanceType: "t3a.small"}, false},
		{"zone and email", Config{Hostname: "meet", InstanceType: "t3a.small", ZoneName: "example.com", Email: "a@example.com"}, false},
		{"email without zone", Config{Hostname: "meet", InstanceType: "t3a.small", Email: "a@example.com"}, false},
		{"zone without email", Config{Hostname: "meet", InstanceType: "t3a.small", ZoneName: "example.com"}, true},
		{"bad email", Config{Hostname: "meet", InstanceType: "t3a.small", Email: "nope"}, true},
		{"display name email", Config{Hostname: "meet", InstanceType: "t3a.small", Email: "Ops <ops@example.com>"}, true},
		{"hostname with dot", Config{Hostname: "a.b", InstanceType: "t3a.small"}, true},
		{"hostname leading hyphen", Config{Hostname: "-meet", InstanceType: "t3a.small"}, true},
		{"no instance type", Config{Hostname: "meet"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestUpdatesOwnDNS(t *testing.T) {
	assert.False(t, (&Config{LongLived: true}).UpdatesOwnDNS())
	assert.False(t, (&Config{ZoneName: "example.com"}).UpdatesOwnDNS())
	assert.True(t, (&Config{LongLived: true, ZoneName: "example.com"}).UpdatesOwnDNS())
}

package airfryer

import (
	"encoding/base64"
	"fmt"
	"time"

	"github.com/joshp123/condor/internal/config"
)

// Config defines runtime configuration for the airfryer plugin.
type Config struct {
	Address          string
	ClientID         string
	ClientSecret     string
	Capabilities     Capabilities
	UpdateInterval   time.Duration
	Settle           time.Duration
	ReplaceTimestamp bool
}

// ConfigFromSection resolves the plugin config: capabilities from the model
// identifier, with an optional explicit command-path override for firmware
// that deviates from its family.
func ConfigFromSection(section *config.AirfryerConfig) (Config, error) {
	if section == nil {
		return Config{}, fmt.Errorf("airfryer config section is required")
	}

	if _, err := base64.StdEncoding.DecodeString(section.ClientID); err != nil {
		return Config{}, fmt.Errorf("airfryer.client_id is not valid base64: %w", err)
	}
	if _, err := base64.StdEncoding.DecodeString(section.ClientSecret); err != nil {
		return Config{}, fmt.Errorf("airfryer.client_secret is not valid base64: %w", err)
	}

	caps := ResolveCapabilities(section.Model)
	if section.CommandPath != "" {
		caps.CommandPath = section.CommandPath
	}

	return Config{
		Address:          section.Address,
		ClientID:         section.ClientID,
		ClientSecret:     section.ClientSecret,
		Capabilities:     caps,
		UpdateInterval:   time.Duration(section.UpdateIntervalSeconds) * time.Second,
		Settle:           time.Duration(section.SettleMillis) * time.Millisecond,
		ReplaceTimestamp: section.ReplaceTimestamp,
	}, nil
}

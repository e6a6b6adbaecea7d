package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/keyshare/internal/flagx"
	"github.com/dmitrijs2005/keyshare/internal/timex"
)

// JsonConfig is the on-disk form of Config. Interval fields use
// timex.Duration, so both "90s" and integer nanoseconds are accepted.
// Absent keys leave the current value in place.
type JsonConfig struct {
	EndpointAddrGRPC     string          `json:"endpoint_addr_grpc"`
	DatabaseDSN          string          `json:"database_dsn"`
	SecretKey            string          `json:"secret_key"`
	SessionTimeout       *int            `json:"session_timeout"`
	CheckUserEnrolled    *bool           `json:"check_user_enrolled"`
	SessionTokenValidity *timex.Duration `json:"session_token_validity"`
	PinTokenValidity     *timex.Duration `json:"pin_token_validity"`
	CommitmentTTL        *timex.Duration `json:"commitment_ttl"`
}

// parseJson overlays values from the JSON file named by -c or -config.
// Without either flag nothing is loaded. An unreadable file or invalid JSON
// panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.ConfigFile()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	if c.EndpointAddrGRPC != "" {
		config.EndpointAddrGRPC = c.EndpointAddrGRPC
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.SecretKey != "" {
		config.SecretKey = c.SecretKey
	}
	if c.SessionTimeout != nil {
		config.SessionTimeout = *c.SessionTimeout
	}
	if c.CheckUserEnrolled != nil {
		config.CheckUserEnrolled = *c.CheckUserEnrolled
	}
	if c.SessionTokenValidity != nil {
		config.SessionTokenValidity = c.SessionTokenValidity.Duration
	}
	if c.PinTokenValidity != nil {
		config.PinTokenValidity = c.PinTokenValidity.Duration
	}
	if c.CommitmentTTL != nil {
		config.CommitmentTTL = c.CommitmentTTL.Duration
	}
}

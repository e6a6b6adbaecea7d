package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/keyshare/internal/flagx"
	"github.com/dmitrijs2005/keyshare/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Absent keys
// leave the current value in place.
type JsonConfig struct {
	ServerEndpointAddr string          `json:"server_endpoint_addr"`
	CallTimeout        *timex.Duration `json:"call_timeout"`
	KeyFile            string          `json:"key_file"`
}

// parseJson overlays Config with values loaded from the JSON file named by
// -c or -config. It panics on read or unmarshal errors.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.ConfigFile()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerEndpointAddr != "" {
		cfg.ServerEndpointAddr = jc.ServerEndpointAddr
	}
	if jc.CallTimeout != nil {
		cfg.CallTimeout = jc.CallTimeout.Duration
	}
	if jc.KeyFile != "" {
		cfg.KeyFile = jc.KeyFile
	}
}

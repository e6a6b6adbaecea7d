package config

import "time"

// Config holds runtime settings for the keyshare CLI.
//
// Fields:
//   - ServerEndpointAddr: host:port of the keyshare gRPC endpoint.
//   - CallTimeout: deadline applied to each server call.
//   - KeyFile: where the holder secret key is kept between runs.
type Config struct {
	ServerEndpointAddr string
	CallTimeout        time.Duration
	KeyFile            string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.CallTimeout = 5 * time.Second
	c.KeyFile = "holder.key"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}

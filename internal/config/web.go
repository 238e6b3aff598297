package config

import (
	"encoding/hex"
	"fmt"
)

const csrfKeyLen = 32

// WebConfig adds the loopback listener settings used by pang_web. CSRFKey comes
// from PANG_WEB_CSRF_KEY; when it is unset the server generates one per process.
type WebConfig struct {
	*Config
	BindAddr         string
	PortCandidates   []string
	PortAutoFallback bool
	CSRFKey          []byte
}

// LoadWeb reads the shared configuration and the web front's listener settings.
// The web front logs to its own file so both binaries can run side by side.
func LoadWeb() (*WebConfig, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}
	if cfg.LogFile == "logs/pang.log" {
		cfg.LogFile = getEnvOrDefault("PANG_WEB_LOG_FILE", "logs/pang_web.log")
	}
	var csrfKey []byte
	if v := getEnvOrDefault("PANG_WEB_CSRF_KEY", ""); v != "" {
		csrfKey, err = hex.DecodeString(v)
		if err != nil || len(csrfKey) != csrfKeyLen {
			return nil, fmt.Errorf("PANG_WEB_CSRF_KEY must be %d hex-encoded bytes", csrfKeyLen)
		}
	}
	return &WebConfig{
		Config:           cfg,
		CSRFKey:          csrfKey,
		BindAddr:         getEnvOrDefault("PANG_WEB_BIND_ADDR", "127.0.0.1:8190"),
		PortCandidates:   getEnvListOrDefault("PANG_WEB_PORT_CANDIDATES", []string{"127.0.0.1:8191", "127.0.0.1:8192", "127.0.0.1:8193"}),
		PortAutoFallback: getEnvBoolOrDefault("PANG_WEB_PORT_AUTO_FALLBACK", true),
	}, nil
}

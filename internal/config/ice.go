package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/pion/stun/v3"
	"github.com/pion/webrtc/v4"
)

// ICEServer mirrors the browser's RTCIceServer dictionary.
type ICEServer struct {
	URLs       []string `mapstructure:"urls"`
	Username   string   `mapstructure:"username"`
	Credential string   `mapstructure:"credential"`
}

// ICEConfig lists the STUN/TURN servers handed to browsers. TurnURLs with
// a TurnSecret get short-lived TURN REST credentials per request.
type ICEConfig struct {
	Servers    []ICEServer   `mapstructure:"servers"`
	TurnURLs   []string      `mapstructure:"turn_urls"`
	TurnSecret string        `mapstructure:"turn_secret"`
	TurnTTL    time.Duration `mapstructure:"turn_ttl"`
}

func (c ICEConfig) Validate() error {
	for i, s := range c.Servers {
		if len(s.URLs) == 0 {
			return fmt.Errorf("%w: ice.servers[%d] has no urls", ErrInvalid, i)
		}
		for _, u := range s.URLs {
			if err := validateICEURL(u); err != nil {
				return fmt.Errorf("%w: ice.servers[%d]: %w", ErrInvalid, i, err)
			}
		}
	}
	for _, u := range c.TurnURLs {
		if err := validateICEURL(u); err != nil {
			return fmt.Errorf("%w: ice.turn_urls: %w", ErrInvalid, err)
		}
	}
	if len(c.TurnURLs) > 0 && c.TurnSecret == "" {
		return fmt.Errorf("%w: ice.turn_urls needs ice.turn_secret", ErrInvalid)
	}
	if c.TurnSecret != "" && c.TurnTTL <= 0 {
		return fmt.Errorf("%w: ice.turn_ttl must be > 0", ErrInvalid)
	}
	return nil
}

// StaticServers converts the configured servers to pion's ICEServer type.
func (c ICEConfig) StaticServers() []webrtc.ICEServer {
	out := make([]webrtc.ICEServer, 0, len(c.Servers))
	for _, s := range c.Servers {
		srv := webrtc.ICEServer{
			URLs:     append([]string(nil), s.URLs...),
			Username: s.Username,
		}
		if s.Credential != "" {
			srv.Credential = s.Credential
		}
		out = append(out, srv)
	}
	return out
}

func validateICEURL(raw string) error {
	raw = strings.TrimSpace(raw)
	if _, err := stun.ParseURI(raw); err != nil {
		return fmt.Errorf("url %q: %w", raw, err)
	}
	return nil
}

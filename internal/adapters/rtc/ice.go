package rtc

import (
	"github.com/dkeye/Callboard/internal/config"
	"github.com/pion/turn/v4"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"
)

// ICEProvider hands out the ICE server list browsers use for their peer
// connections. The coordinator never opens a peer connection itself.
type ICEProvider struct {
	cfg    config.ICEConfig
	static []webrtc.ICEServer
}

func NewICEProvider(cfg config.ICEConfig) *ICEProvider {
	return &ICEProvider{cfg: cfg, static: cfg.StaticServers()}
}

// Servers returns the static servers plus, when a TURN secret is set, the
// TURN urls with credentials valid for the configured TTL.
func (p *ICEProvider) Servers() []webrtc.ICEServer {
	out := make([]webrtc.ICEServer, 0, len(p.static)+1)
	out = append(out, p.static...)
	if len(p.cfg.TurnURLs) == 0 || p.cfg.TurnSecret == "" {
		return out
	}
	username, password, err := turn.GenerateLongTermCredentials(p.cfg.TurnSecret, p.cfg.TurnTTL)
	if err != nil {
		log.Error().Err(err).Str("module", "rtc").Msg("turn credentials")
		return out
	}
	return append(out, webrtc.ICEServer{
		URLs:       append([]string(nil), p.cfg.TurnURLs...),
		Username:   username,
		Credential: password,
	})
}

// ICEServerJSON is the RTCIceServer shape browsers expect.
type ICEServerJSON struct {
	URLs       []string `json:"urls"`
	Username   string   `json:"username,omitempty"`
	Credential string   `json:"credential,omitempty"`
}

func ToJSON(servers []webrtc.ICEServer) []ICEServerJSON {
	out := make([]ICEServerJSON, 0, len(servers))
	for _, s := range servers {
		out = append(out, ICEServerJSON{
			URLs:       s.URLs,
			Username:   s.Username,
			Credential: credentialString(s.Credential),
		})
	}
	return out
}

func credentialString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

package settings

import "github.com/voicetypr/remote/sharing"

// ConnectionStatus is the last known health of a saved connection.
type ConnectionStatus string

const (
	// StatusUnknown means the connection has never been probed.
	StatusUnknown ConnectionStatus = "unknown"
	// StatusOnline means the last probe succeeded.
	StatusOnline ConnectionStatus = "online"
	// StatusOffline means the last probe could not reach the server.
	StatusOffline ConnectionStatus = "offline"
	// StatusAuthFailed means the server rejected the stored secret.
	StatusAuthFailed ConnectionStatus = "auth_failed"
	// StatusSelfConnection means the connection points at this machine's
	// own sharing server.
	StatusSelfConnection ConnectionStatus = "self_connection"
)

// ServerConfig configures the local sharing server.
type ServerConfig struct {
	// Port the server binds to.
	Port int `json:"port" validate:"min=1,max=65535"`
	// Password is the shared secret, or "" to accept all requests.
	Password string `json:"password,omitempty"`
	// Enabled records whether sharing should be on.
	Enabled bool `json:"enabled"`
}

// DefaultServerConfig returns the server config used before the user has
// saved anything.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{Port: sharing.DefaultPort}
}

// SavedConnection is a remembered remote server.
type SavedConnection struct {
	// ID uniquely identifies the connection within the registry.
	ID string `json:"id"`
	// Host is the hostname or IP address.
	Host string `json:"host" validate:"required"`
	// Port is the port number.
	Port int `json:"port" validate:"min=1,max=65535"`
	// Password is the shared secret, or "" when the server requires none.
	Password string `json:"password,omitempty"`
	// Name is the display name, usually adopted from the server itself.
	Name string `json:"name"`
	// CreatedAt is when the connection was saved, as a Unix timestamp.
	CreatedAt int64 `json:"created_at"`
	// Model is the model name last reported by the server, if known.
	Model string `json:"model,omitempty"`
	// Status is the last known health of the connection.
	Status ConnectionStatus `json:"status"`
	// LastChecked is when the connection was last probed, as a Unix
	// timestamp. Zero when never probed.
	LastChecked int64 `json:"last_checked,omitempty"`
}

// RemoteSettings is the full persisted remote-sharing state.
type RemoteSettings struct {
	// ServerConfig configures the local sharing server.
	ServerConfig ServerConfig `json:"server_config"`
	// SavedConnections is the registry of remembered remote servers.
	SavedConnections []SavedConnection `json:"saved_connections"`
	// ActiveConnectionID selects the connection transcription is routed
	// to, or "" for local transcription.
	ActiveConnectionID string `json:"active_connection_id,omitempty"`
	// SharingWasActive records that sharing was stopped because a remote
	// connection was activated, so it can be restored when the selection
	// is cleared.
	SharingWasActive bool `json:"sharing_was_active"`
}

// DefaultRemoteSettings returns the settings used before anything has been
// persisted.
func DefaultRemoteSettings() RemoteSettings {
	return RemoteSettings{
		ServerConfig:     DefaultServerConfig(),
		SavedConnections: []SavedConnection{},
	}
}

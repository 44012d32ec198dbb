package sharing

// AuthHeader is the shared-secret header checked on every request when a
// password is configured.
const AuthHeader = "X-VoiceTypr-Key"

// DefaultPort is the default port for the sharing server.
const DefaultPort = 47842

// StatusResponse is the body of GET /api/v1/status.
type StatusResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Model   string `json:"model"`
	Name    string `json:"name"`
}

// TranscribeResponse is the body of a successful POST /api/v1/transcribe.
type TranscribeResponse struct {
	Text       string `json:"text"`
	DurationMS uint64 `json:"duration_ms"`
	Model      string `json:"model"`
}

// ErrorResponse is the flat error body used by both API endpoints.
type ErrorResponse struct {
	Error string `json:"error"`
}

// SharingStatus is a point-in-time snapshot of server mode.
type SharingStatus struct {
	Enabled           bool   `json:"enabled"`
	Port              int    `json:"port,omitempty"`
	ModelName         string `json:"model_name,omitempty"`
	ServerName        string `json:"server_name,omitempty"`
	ActiveConnections int64  `json:"active_connections"`
	Password          string `json:"password,omitempty"`
}

package client

import "fmt"

// Connection identifies a remote sharing server: host, port, and the
// shared secret when one is required. It is a pure value.
type Connection struct {
	// Host is the hostname or IP address.
	Host string `json:"host"`
	// Port is the port number.
	Port int `json:"port"`
	// Password is the shared secret, or "" when the server requires none.
	Password string `json:"password,omitempty"`
}

// NewConnection creates a connection descriptor.
func NewConnection(host string, port int, password string) Connection {
	return Connection{Host: host, Port: port, Password: password}
}

// StatusURL returns the URL of the status endpoint.
func (c Connection) StatusURL() string {
	return fmt.Sprintf("http://%s:%d/api/v1/status", c.Host, c.Port)
}

// TranscribeURL returns the URL of the transcribe endpoint.
func (c Connection) TranscribeURL() string {
	return fmt.Sprintf("http://%s:%d/api/v1/transcribe", c.Host, c.Port)
}

// DisplayName returns a "host:port" label for this connection.
func (c Connection) DisplayName() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

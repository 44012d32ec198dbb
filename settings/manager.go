package settings

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/voicetypr/remote/errors"
	"github.com/voicetypr/remote/logger"
	"github.com/voicetypr/remote/store"
)

// storeKey is the document name the settings persist under.
const storeKey = "remote_settings"

// connCounter disambiguates connection IDs created within the same second.
var connCounter atomic.Uint64

func newConnectionID() string {
	return fmt.Sprintf("conn_%d_%d", time.Now().Unix(), connCounter.Add(1))
}

// Manager owns the persisted remote settings. Every mutation is validated,
// applied under the lock, and written back to the store before it returns.
type Manager struct {
	mu       sync.Mutex
	store    *store.Store
	settings RemoteSettings
	validate *validator.Validate
	log      *logger.Logger
}

// NewManager loads the settings from the store, falling back to defaults
// when nothing has been persisted yet.
func NewManager(st *store.Store, log *logger.Logger) (*Manager, error) {
	m := &Manager{
		store:    st,
		settings: DefaultRemoteSettings(),
		validate: validator.New(),
		log:      log.WithComponent("settings"),
	}
	if err := st.Get(storeKey, &m.settings); err != nil {
		if err != store.ErrKeyNotFound {
			return nil, fmt.Errorf("load remote settings: %w", err)
		}
		m.log.Debug("no persisted settings, using defaults")
	}
	if m.settings.SavedConnections == nil {
		m.settings.SavedConnections = []SavedConnection{}
	}
	return m, nil
}

// persistLocked writes the current settings back to the store.
// Callers must hold m.mu.
func (m *Manager) persistLocked() error {
	if err := m.store.Set(storeKey, m.settings); err != nil {
		return fmt.Errorf("persist remote settings: %w", err)
	}
	return nil
}

// Get returns a copy of the current settings.
func (m *Manager) Get() RemoteSettings {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.copyLocked()
}

func (m *Manager) copyLocked() RemoteSettings {
	out := m.settings
	out.SavedConnections = make([]SavedConnection, len(m.settings.SavedConnections))
	copy(out.SavedConnections, m.settings.SavedConnections)
	return out
}

// GetServerConfig returns the local server configuration.
func (m *Manager) GetServerConfig() ServerConfig {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settings.ServerConfig
}

// SetServerConfig validates and persists a new local server configuration.
func (m *Manager) SetServerConfig(cfg ServerConfig) error {
	if err := m.validate.Struct(cfg); err != nil {
		return errors.Validation(err.Error())
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings.ServerConfig = cfg
	return m.persistLocked()
}

// SetSharingWasActive persists the flag that records sharing was paused
// because a remote connection became active.
func (m *Manager) SetSharingWasActive(v bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings.SharingWasActive = v
	return m.persistLocked()
}

// SharingWasActive reports whether sharing was paused by a remote
// activation.
func (m *Manager) SharingWasActive() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settings.SharingWasActive
}

// AddConnection assigns the connection a fresh ID and creation time,
// validates it, appends it to the registry, and persists. The stored copy
// is returned.
func (m *Manager) AddConnection(conn SavedConnection) (SavedConnection, error) {
	if err := m.validate.Struct(conn); err != nil {
		return SavedConnection{}, errors.Validation(err.Error())
	}

	conn.ID = newConnectionID()
	conn.CreatedAt = time.Now().Unix()
	if conn.Status == "" {
		conn.Status = StatusUnknown
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings.SavedConnections = append(m.settings.SavedConnections, conn)
	if err := m.persistLocked(); err != nil {
		return SavedConnection{}, err
	}
	m.log.Info("connection saved", logger.Fields(
		"id", conn.ID,
		logger.FieldAddr, fmt.Sprintf("%s:%d", conn.Host, conn.Port),
	))
	return conn, nil
}

// UpdateConnection replaces the stored connection with the same ID. The ID
// and creation time of the stored connection are preserved.
func (m *Manager) UpdateConnection(conn SavedConnection) error {
	if err := m.validate.Struct(conn); err != nil {
		return errors.Validation(err.Error())
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.settings.SavedConnections {
		if m.settings.SavedConnections[i].ID == conn.ID {
			conn.CreatedAt = m.settings.SavedConnections[i].CreatedAt
			m.settings.SavedConnections[i] = conn
			return m.persistLocked()
		}
	}
	return errors.NotFound("connection", conn.ID)
}

// RemoveConnection deletes the connection with the given ID. If it was the
// active connection, the active selection is cleared as well.
func (m *Manager) RemoveConnection(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.settings.SavedConnections {
		if m.settings.SavedConnections[i].ID != id {
			continue
		}
		m.settings.SavedConnections = append(
			m.settings.SavedConnections[:i],
			m.settings.SavedConnections[i+1:]...,
		)
		if m.settings.ActiveConnectionID == id {
			m.settings.ActiveConnectionID = ""
		}
		return m.persistLocked()
	}
	return errors.NotFound("connection", id)
}

// SetActiveConnection selects the connection transcription is routed to.
// Passing "" clears the selection and is always valid; a non-empty ID must
// name a saved connection.
func (m *Manager) SetActiveConnection(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id != "" && m.findLocked(id) == nil {
		return errors.NotFound("connection", id)
	}
	m.settings.ActiveConnectionID = id
	return m.persistLocked()
}

// GetConnection returns the saved connection with the given ID.
func (m *Manager) GetConnection(id string) (SavedConnection, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c := m.findLocked(id); c != nil {
		return *c, true
	}
	return SavedConnection{}, false
}

// GetActiveConnection returns the active connection, or ok=false when no
// connection is selected.
func (m *Manager) GetActiveConnection() (SavedConnection, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.settings.ActiveConnectionID == "" {
		return SavedConnection{}, false
	}
	if c := m.findLocked(m.settings.ActiveConnectionID); c != nil {
		return *c, true
	}
	return SavedConnection{}, false
}

// ListConnections returns a copy of all saved connections.
func (m *Manager) ListConnections() []SavedConnection {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SavedConnection, len(m.settings.SavedConnections))
	copy(out, m.settings.SavedConnections)
	return out
}

// RecordProbe updates the health fields of a saved connection after a
// status probe: its status, last-checked time, and when the probe reported
// one, the server's model.
func (m *Manager) RecordProbe(id string, status ConnectionStatus, model string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.findLocked(id)
	if c == nil {
		return errors.NotFound("connection", id)
	}
	c.Status = status
	c.LastChecked = time.Now().Unix()
	if model != "" {
		c.Model = model
	}
	return m.persistLocked()
}

func (m *Manager) findLocked(id string) *SavedConnection {
	for i := range m.settings.SavedConnections {
		if m.settings.SavedConnections[i].ID == id {
			return &m.settings.SavedConnections[i]
		}
	}
	return nil
}

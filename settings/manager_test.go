package settings

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/voicetypr/remote/logger"
	"github.com/voicetypr/remote/sharing"
	"github.com/voicetypr/remote/store"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	st, err := store.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	m, err := NewManager(st, logger.NewDefault("test"))
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	return m
}

func TestDefaults(t *testing.T) {
	m := newTestManager(t)
	s := m.Get()
	if s.ServerConfig.Port != sharing.DefaultPort {
		t.Errorf("default port = %d, want %d", s.ServerConfig.Port, sharing.DefaultPort)
	}
	if s.ServerConfig.Enabled {
		t.Error("sharing should default to disabled")
	}
	if len(s.SavedConnections) != 0 {
		t.Errorf("expected no saved connections, got %d", len(s.SavedConnections))
	}
	if s.ActiveConnectionID != "" {
		t.Errorf("expected no active connection, got %q", s.ActiveConnectionID)
	}
}

func TestAddConnectionAssignsID(t *testing.T) {
	m := newTestManager(t)
	a, err := m.AddConnection(SavedConnection{Host: "192.168.1.10", Port: 47842, Name: "Office"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	b, err := m.AddConnection(SavedConnection{Host: "192.168.1.11", Port: 47842, Name: "Studio"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	if !strings.HasPrefix(a.ID, "conn_") {
		t.Errorf("id %q missing conn_ prefix", a.ID)
	}
	if a.ID == b.ID {
		t.Errorf("ids must be unique, both %q", a.ID)
	}
	if a.CreatedAt == 0 {
		t.Error("created_at not set")
	}
	if a.Status != StatusUnknown {
		t.Errorf("new connection status = %q, want unknown", a.Status)
	}
	if got := len(m.ListConnections()); got != 2 {
		t.Errorf("expected 2 saved connections, got %d", got)
	}
}

func TestAddConnectionValidation(t *testing.T) {
	m := newTestManager(t)
	if _, err := m.AddConnection(SavedConnection{Host: "", Port: 47842}); err == nil {
		t.Error("expected error for empty host")
	}
	if _, err := m.AddConnection(SavedConnection{Host: "h", Port: 0}); err == nil {
		t.Error("expected error for port 0")
	}
	if _, err := m.AddConnection(SavedConnection{Host: "h", Port: 70000}); err == nil {
		t.Error("expected error for out-of-range port")
	}
}

func TestRemoveConnectionClearsActive(t *testing.T) {
	m := newTestManager(t)
	c, err := m.AddConnection(SavedConnection{Host: "h", Port: 47842})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := m.SetActiveConnection(c.ID); err != nil {
		t.Fatalf("set active: %v", err)
	}
	if err := m.RemoveConnection(c.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if got := len(m.ListConnections()); got != 0 {
		t.Errorf("expected empty registry, got %d entries", got)
	}
	if _, ok := m.GetActiveConnection(); ok {
		t.Error("active selection should be cleared when the active connection is removed")
	}
}

func TestSetActiveConnection(t *testing.T) {
	m := newTestManager(t)
	c, err := m.AddConnection(SavedConnection{Host: "h", Port: 47842})
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	if err := m.SetActiveConnection("conn_0_0"); err == nil {
		t.Error("expected error for unknown connection id")
	}
	if err := m.SetActiveConnection(c.ID); err != nil {
		t.Fatalf("set active: %v", err)
	}
	got, ok := m.GetActiveConnection()
	if !ok || got.ID != c.ID {
		t.Fatalf("active = %+v ok=%v, want id %q", got, ok, c.ID)
	}

	// Clearing is always valid.
	if err := m.SetActiveConnection(""); err != nil {
		t.Fatalf("clear active: %v", err)
	}
	if _, ok := m.GetActiveConnection(); ok {
		t.Error("expected no active connection after clearing")
	}
}

func TestUpdateConnectionPreservesIdentity(t *testing.T) {
	m := newTestManager(t)
	c, err := m.AddConnection(SavedConnection{Host: "h", Port: 47842, Name: "Old"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	updated := c
	updated.Name = "New"
	updated.CreatedAt = 1
	if err := m.UpdateConnection(updated); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, ok := m.GetConnection(c.ID)
	if !ok {
		t.Fatal("connection disappeared after update")
	}
	if got.Name != "New" {
		t.Errorf("name = %q, want New", got.Name)
	}
	if got.CreatedAt != c.CreatedAt {
		t.Errorf("created_at changed from %d to %d", c.CreatedAt, got.CreatedAt)
	}
}

func TestRecordProbe(t *testing.T) {
	m := newTestManager(t)
	c, err := m.AddConnection(SavedConnection{Host: "h", Port: 47842})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := m.RecordProbe(c.ID, StatusOnline, "whisper-base"); err != nil {
		t.Fatalf("record probe: %v", err)
	}
	got, _ := m.GetConnection(c.ID)
	if got.Status != StatusOnline || got.Model != "whisper-base" || got.LastChecked == 0 {
		t.Errorf("probe not recorded: %+v", got)
	}

	// A failed probe keeps the previously cached model.
	if err := m.RecordProbe(c.ID, StatusOffline, ""); err != nil {
		t.Fatalf("record probe: %v", err)
	}
	got, _ = m.GetConnection(c.ID)
	if got.Status != StatusOffline || got.Model != "whisper-base" {
		t.Errorf("offline probe should keep cached model: %+v", got)
	}
}

func TestPersistenceRoundTrip(t *testing.T) {
	dir := t.TempDir()
	st, err := store.Open(dir)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	m, err := NewManager(st, logger.NewDefault("test"))
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	c, err := m.AddConnection(SavedConnection{Host: "10.0.0.5", Port: 48000, Password: "s", Name: "Lab"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := m.SetActiveConnection(c.ID); err != nil {
		t.Fatalf("set active: %v", err)
	}
	if err := m.SetSharingWasActive(true); err != nil {
		t.Fatalf("set flag: %v", err)
	}

	// A fresh manager over the same store sees the same state.
	st2, err := store.Open(dir)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	m2, err := NewManager(st2, logger.NewDefault("test"))
	if err != nil {
		t.Fatalf("reload manager: %v", err)
	}
	s := m2.Get()
	if len(s.SavedConnections) != 1 || s.SavedConnections[0].Host != "10.0.0.5" {
		t.Fatalf("connections not persisted: %+v", s.SavedConnections)
	}
	if s.ActiveConnectionID != c.ID {
		t.Errorf("active id = %q, want %q", s.ActiveConnectionID, c.ID)
	}
	if !s.SharingWasActive {
		t.Error("sharing_was_active flag not persisted")
	}
}

func TestSettingsJSONShape(t *testing.T) {
	s := DefaultRemoteSettings()
	s.SavedConnections = append(s.SavedConnections, SavedConnection{
		ID: "conn_1_1", Host: "h", Port: 47842, Status: StatusUnknown, CreatedAt: 100,
	})
	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, key := range []string{`"server_config"`, `"saved_connections"`, `"created_at"`, `"sharing_was_active"`} {
		if !strings.Contains(string(data), key) {
			t.Errorf("serialized settings missing %s: %s", key, data)
		}
	}
}

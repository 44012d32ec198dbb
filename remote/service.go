package remote

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/voicetypr/remote/client"
	"github.com/voicetypr/remote/errors"
	"github.com/voicetypr/remote/logger"
	"github.com/voicetypr/remote/settings"
	"github.com/voicetypr/remote/sharing"
)

// fallbackServerName is used when the hostname cannot be determined.
const fallbackServerName = "VoiceTypr Server"

// SharedModel describes the model offered over the network.
type SharedModel struct {
	Path   string
	Name   string
	Engine string
}

// Service coordinates the sharing server, the connection registry, and the
// remote transcription client.
type Service struct {
	mu sync.Mutex

	sharing  *sharing.Manager
	settings *settings.Manager
	client   *client.Client
	log      *logger.Logger

	// model is the model offered when sharing starts.
	model SharedModel
}

// NewService wires the coordinator together.
func NewService(sm *sharing.Manager, st *settings.Manager, cl *client.Client, log *logger.Logger) *Service {
	return &Service{
		sharing:  sm,
		settings: st,
		client:   cl,
		log:      log.WithComponent("remote"),
	}
}

// serverName returns the machine hostname, or a fixed fallback when it
// cannot be determined.
func serverName() string {
	name, err := os.Hostname()
	if err != nil || name == "" {
		return fallbackServerName
	}
	return name
}

// SetSharedModel records the model offered when sharing starts, and pushes
// it to the running server if sharing is on.
func (s *Service) SetSharedModel(model SharedModel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.model = model
	if s.sharing.IsRunning() {
		s.sharing.UpdateModel(model.Path, model.Name, model.Engine)
	}
}

// StartSharing starts the local sharing server using the persisted server
// configuration and the configured shared model.
func (s *Service) StartSharing() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startSharingLocked()
}

func (s *Service) startSharingLocked() error {
	cfg := s.settings.GetServerConfig()
	err := s.sharing.Start(sharing.StartOptions{
		Port:       cfg.Port,
		Password:   cfg.Password,
		ServerName: serverName(),
		ModelPath:  s.model.Path,
		ModelName:  s.model.Name,
		Engine:     s.model.Engine,
	})
	if err != nil {
		return err
	}
	cfg.Enabled = true
	if err := s.settings.SetServerConfig(cfg); err != nil {
		s.log.Error("failed to persist sharing state", logger.ErrorFields("start_sharing", err))
	}
	return nil
}

// StopSharing stops the local sharing server.
func (s *Service) StopSharing() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopSharingLocked()
}

func (s *Service) stopSharingLocked() error {
	s.sharing.Stop()
	cfg := s.settings.GetServerConfig()
	cfg.Enabled = false
	if err := s.settings.SetServerConfig(cfg); err != nil {
		s.log.Error("failed to persist sharing state", logger.ErrorFields("stop_sharing", err))
	}
	return nil
}

// GetSharingStatus returns the live state of the sharing server.
func (s *Service) GetSharingStatus() sharing.SharingStatus {
	return s.sharing.GetStatus()
}

// UpdateSharedModel swaps the model offered by the running server without
// a restart.
func (s *Service) UpdateSharedModel(model SharedModel) {
	s.SetSharedModel(model)
}

// LocalIPs returns displayable addresses the sharing server can be reached
// at.
func (s *Service) LocalIPs() ([]string, error) {
	return sharing.LocalIPs()
}

// AddServer probes a remote server and saves it as a connection. The probe
// adopts the remote's advertised name and model; when the probe fails the
// connection is saved anyway with the failure recorded, so the user can
// keep an entry for a machine that is currently off.
func (s *Service) AddServer(ctx context.Context, host string, port int, password string) (settings.SavedConnection, error) {
	conn := settings.SavedConnection{
		Host:     host,
		Port:     port,
		Password: password,
		Name:     fmt.Sprintf("%s:%d", host, port),
	}

	status, probeStatus := s.probe(ctx, host, port, password)
	conn.Status = probeStatus
	conn.LastChecked = time.Now().Unix()
	if status != nil {
		if status.Name != "" {
			conn.Name = status.Name
		}
		conn.Model = status.Model
	}

	saved, err := s.settings.AddConnection(conn)
	if err != nil {
		return settings.SavedConnection{}, err
	}
	s.log.Info("remote server saved", logger.Fields(
		"id", saved.ID,
		logger.FieldAddr, fmt.Sprintf("%s:%d", host, port),
		"status", string(saved.Status),
	))
	return saved, nil
}

// UpdateServer replaces the host, port, and password of a saved server,
// keeping its ID. The new address is probed; when the probe fails the
// previously cached model is kept.
func (s *Service) UpdateServer(ctx context.Context, id, host string, port int, password string) (settings.SavedConnection, error) {
	existing, ok := s.settings.GetConnection(id)
	if !ok {
		return settings.SavedConnection{}, errors.NotFound("connection", id)
	}

	updated := existing
	updated.Host = host
	updated.Port = port
	updated.Password = password
	updated.LastChecked = time.Now().Unix()

	status, probeStatus := s.probe(ctx, host, port, password)
	updated.Status = probeStatus
	if status != nil {
		if status.Name != "" {
			updated.Name = status.Name
		}
		updated.Model = status.Model
	}

	if err := s.settings.UpdateConnection(updated); err != nil {
		return settings.SavedConnection{}, err
	}
	return updated, nil
}

// RemoveServer deletes a saved server. Removing the active server clears
// the active selection and restores sharing if it was paused.
func (s *Service) RemoveServer(id string) error {
	active, ok := s.settings.GetActiveConnection()
	wasActive := ok && active.ID == id
	if err := s.settings.RemoveConnection(id); err != nil {
		return err
	}
	if wasActive {
		return s.restoreSharingIfPaused()
	}
	return nil
}

// ListServers returns all saved servers.
func (s *Service) ListServers() []settings.SavedConnection {
	return s.settings.ListConnections()
}

// TestServer probes a saved server and records the result on the
// connection. A server that turns out to be this machine's own sharing
// server is marked as a self connection.
func (s *Service) TestServer(ctx context.Context, id string) (settings.ConnectionStatus, error) {
	conn, ok := s.settings.GetConnection(id)
	if !ok {
		return "", errors.NotFound("connection", id)
	}

	var result settings.ConnectionStatus
	var model string
	if s.isSelfConnection(conn.Host, conn.Port) {
		result = settings.StatusSelfConnection
	} else {
		status, probeStatus := s.probe(ctx, conn.Host, conn.Port, conn.Password)
		result = probeStatus
		if status != nil {
			model = status.Model
		}
	}

	if err := s.settings.RecordProbe(id, result, model); err != nil {
		return "", err
	}
	return result, nil
}

// SetActiveServer routes transcription to the given saved server, or back
// to the local model when id is "". Activating a server pauses local
// sharing; clearing the selection restores it if it was paused by an
// earlier activation.
func (s *Service) SetActiveServer(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id == "" {
		if err := s.settings.SetActiveConnection(""); err != nil {
			return err
		}
		return s.restoreSharingIfPausedLocked()
	}

	if err := s.settings.SetActiveConnection(id); err != nil {
		return err
	}
	if s.sharing.IsRunning() {
		s.log.Info("pausing sharing while a remote server is active")
		if err := s.settings.SetSharingWasActive(true); err != nil {
			return err
		}
		return s.stopSharingLocked()
	}
	return nil
}

// GetActiveServer returns the active saved server, or ok=false when
// transcription is local.
func (s *Service) GetActiveServer() (settings.SavedConnection, bool) {
	return s.settings.GetActiveConnection()
}

// TranscribeRemote sends audio to the active server. It fails when no
// server is active.
func (s *Service) TranscribeRemote(ctx context.Context, audio []byte, audioDuration time.Duration, source client.Source) (*sharing.TranscribeResponse, error) {
	conn, ok := s.settings.GetActiveConnection()
	if !ok {
		return nil, fmt.Errorf("no active remote server")
	}
	return s.client.Transcribe(ctx,
		client.NewConnection(conn.Host, conn.Port, conn.Password),
		audio, audioDuration, source)
}

func (s *Service) restoreSharingIfPaused() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.restoreSharingIfPausedLocked()
}

func (s *Service) restoreSharingIfPausedLocked() error {
	if !s.settings.SharingWasActive() {
		return nil
	}
	if err := s.settings.SetSharingWasActive(false); err != nil {
		return err
	}
	s.log.Info("restoring sharing paused by a remote activation")
	return s.startSharingLocked()
}

// probe runs a status request and maps the outcome to a connection status.
func (s *Service) probe(ctx context.Context, host string, port int, password string) (*sharing.StatusResponse, settings.ConnectionStatus) {
	status, err := s.client.Status(ctx, client.NewConnection(host, port, password))
	switch {
	case err == nil:
		return status, settings.StatusOnline
	case client.IsAuth(err):
		return nil, settings.StatusAuthFailed
	default:
		s.log.WithError(err).Debug("status request failed", logger.Fields(
			logger.FieldAddr, fmt.Sprintf("%s:%d", host, port),
		))
		return nil, settings.StatusOffline
	}
}

// isSelfConnection reports whether host:port points at this machine's own
// running sharing server.
func (s *Service) isSelfConnection(host string, port int) bool {
	sharingPort := s.sharing.GetPort()
	if sharingPort == 0 || port != sharingPort {
		return false
	}
	if host == "localhost" || host == "127.0.0.1" {
		return true
	}
	for _, ip := range sharing.LocalIPv4s() {
		if ip.String() == host {
			return true
		}
	}
	return false
}

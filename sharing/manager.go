package sharing

import (
	"context"
	stderrors "errors"
	"net"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/sync/errgroup"

	"github.com/voicetypr/remote/errors"
	"github.com/voicetypr/remote/logger"
	"github.com/voicetypr/remote/transcription"
)

const shutdownGrace = 5 * time.Second

// StartOptions carries everything one start() needs. ServerName and Password
// are immutable for the life of the server; the model triple can be hot-swapped
// afterwards with UpdateModel.
type StartOptions struct {
	Port       int
	Password   string
	ServerName string
	ModelPath  string
	ModelName  string
	Engine     string
}

// ServerHandle owns the listeners of one running server: one per bound
// interface, all sharing a route table. Stop shuts every listener down
// exactly once.
type ServerHandle struct {
	port      int
	addrs     []string
	listeners []net.Listener
	servers   []*http.Server

	stopOnce sync.Once
	log      *logger.Logger
}

// Port returns the port the listeners are bound to.
func (h *ServerHandle) Port() int { return h.port }

// Addrs returns the IP addresses that were successfully bound.
func (h *ServerHandle) Addrs() []string { return h.addrs }

// Stop closes all listeners immediately and returns without waiting for
// in-flight requests to drain; draining continues in the background with a
// short grace window. Safe to call more than once.
func (h *ServerHandle) Stop() {
	h.stopOnce.Do(func() {
		// Free the ports synchronously so an immediate restart can rebind.
		for _, ln := range h.listeners {
			ln.Close()
		}

		ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		var g errgroup.Group
		for _, srv := range h.servers {
			g.Go(func() error {
				return srv.Shutdown(ctx)
			})
		}
		go func() {
			defer cancel()
			if err := g.Wait(); err != nil && !stderrors.Is(err, net.ErrClosed) {
				h.log.Warn("listener drain error", logger.ErrorFields("shutdown", err))
			}
		}()

		h.log.Info("shutdown signal sent")
	})
}

// Manager owns zero-or-one running sharing server per process.
type Manager struct {
	mu       sync.Mutex
	handle   *ServerHandle
	state    *ModelState
	opts     StartOptions
	inflight atomic.Int64

	registry *transcription.Registry
	log      *logger.Logger
}

// NewManager creates a server manager dispatching to the given engine registry.
func NewManager(registry *transcription.Registry, log *logger.Logger) *Manager {
	return &Manager{
		registry: registry,
		log:      log.WithComponent("sharing"),
	}
}

// IsRunning reports whether a server is currently running.
func (m *Manager) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.handle != nil
}

// GetPort returns the port the server is listening on, or 0 when not running.
func (m *Manager) GetPort() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.handle == nil {
		return 0
	}
	return m.handle.port
}

// Start starts the sharing server, stopping any server already running
// first. It binds the loopback address plus every non-loopback IPv4
// interface; binding only the wildcard address leaves some adapter
// configurations unreachable. Loopback bind failure aborts the start with
// nothing left running; any other interface that fails to bind is logged
// and skipped.
func (m *Manager) Start(opts StartOptions) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.handle != nil {
		m.stopLocked()
	}
	if opts.Port == 0 {
		opts.Port = DefaultPort
	}

	state := NewModelState(opts.ModelName, opts.ModelPath, opts.Engine)
	bridge := NewEngineBridge(opts.ServerName, opts.Password, state, m.registry, m.log)
	router := NewRouter(bridge, &m.inflight, m.log)

	h2s := &http2.Server{
		IdleTimeout: 120 * time.Second,
	}
	handler := h2c.NewHandler(router, h2s)

	bindAddrs := []net.IP{net.IPv4(127, 0, 0, 1)}
	bindAddrs = append(bindAddrs, LocalIPv4s()...)

	var listeners []net.Listener
	for i, ip := range bindAddrs {
		addr := net.JoinHostPort(ip.String(), strconv.Itoa(opts.Port))
		ln, err := net.Listen("tcp", addr)
		if err != nil {
			if i == 0 {
				// Loopback must bind; abort with nothing left running.
				for _, prev := range listeners {
					prev.Close()
				}
				return errors.BindFailed(addr, err)
			}
			m.log.Warn("skipping interface, bind failed", logger.Fields(
				logger.FieldAddr, addr,
				logger.FieldError, err.Error(),
			))
			continue
		}
		listeners = append(listeners, ln)
	}

	handle := &ServerHandle{
		port: opts.Port,
		log:  m.log.WithFields(map[string]interface{}{logger.FieldPort: opts.Port}),
	}
	for _, ln := range listeners {
		srv := &http.Server{
			Handler:     handler,
			ReadTimeout: 0, // uploads may be arbitrarily slow on a LAN
			IdleTimeout: 120 * time.Second,
		}
		handle.listeners = append(handle.listeners, ln)
		handle.servers = append(handle.servers, srv)
		handle.addrs = append(handle.addrs, ln.Addr().String())

		go func(srv *http.Server, ln net.Listener) {
			err := srv.Serve(ln)
			if err != nil && err != http.ErrServerClosed && !stderrors.Is(err, net.ErrClosed) {
				m.log.Error("listener error", logger.ErrorFields("serve", err))
			}
		}(srv, ln)
	}

	m.handle = handle
	m.state = state
	m.opts = opts
	m.inflight.Store(0)

	m.log.Info("server started", logger.Fields(
		logger.FieldPort, opts.Port,
		logger.FieldServer, opts.ServerName,
		logger.FieldModel, opts.ModelName,
		"interfaces", len(handle.servers),
	))

	return nil
}

// Stop stops the running server. Calling it when nothing is running is a no-op.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopLocked()
}

func (m *Manager) stopLocked() {
	if m.handle == nil {
		return
	}
	port := m.handle.port
	m.handle.Stop()
	m.handle = nil
	m.state = nil
	m.opts = StartOptions{}
	m.log.Info("server stopped", logger.Fields(logger.FieldPort, port))
}

// UpdateModel swaps the served model without restarting listeners. Requests
// already in flight keep the identity they read; the change takes effect on
// the very next request.
func (m *Manager) UpdateModel(modelPath, modelName, engine string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.opts.ModelPath = modelPath
	m.opts.ModelName = modelName
	m.opts.Engine = engine

	if m.state != nil {
		m.state.Update(modelName, modelPath, engine)
		m.log.Info("model updated", logger.Fields(
			logger.FieldModel, modelName,
			logger.FieldEngine, engine,
		))
	}
}

// GetStatus returns a point-in-time snapshot of server mode. It has no side
// effects.
func (m *Manager) GetStatus() SharingStatus {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.handle == nil {
		return SharingStatus{}
	}
	return SharingStatus{
		Enabled:           true,
		Port:              m.handle.port,
		ModelName:         m.opts.ModelName,
		ServerName:        m.opts.ServerName,
		ActiveConnections: m.inflight.Load(),
		Password:          m.opts.Password,
	}
}

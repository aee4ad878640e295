package pool

import (
	"crypto/tls"
	"net"
	"strconv"
	"time"

	"github.com/hetianyi/gox/logger"
	"github.com/puzpuzpuz/xsync/v3"
)

// Manager keeps one ConnectionPool per endpoint and transport options.
type Manager struct {
	MaxConnPerServer int
	DialTimeout      time.Duration
	TLSConfig        *tls.Config
	// NewFactory overrides the TCP factory, tests use it to inject fakes.
	NewFactory func(secure bool) Factory

	pools *xsync.MapOf[string, *ConnectionPool]
}

func NewManager(maxConnPerServer int, dialTimeout time.Duration) *Manager {
	return &Manager{
		MaxConnPerServer: maxConnPerServer,
		DialTimeout:      dialTimeout,
		pools:            xsync.NewMapOf[string, *ConnectionPool](),
	}
}

func poolKey(host string, port int, secure, persistent bool) string {
	return net.JoinHostPort(host, strconv.Itoa(port)) +
		"!" + strconv.FormatBool(secure) + "!" + strconv.FormatBool(persistent)
}

// ObtainPool returns the pool for the endpoint, creating it on first use.
func (m *Manager) ObtainPool(host string, port int, secure bool, persistent bool) ObjectPool {
	key := poolKey(host, port, secure, persistent)
	p, loaded := m.pools.LoadOrCompute(key, func() *ConnectionPool {
		return NewConnectionPool(m.factory(secure), m.MaxConnPerServer, persistent)
	})
	if !loaded {
		logger.Debug("create connection pool ", key)
	}
	return p
}

func (m *Manager) factory(secure bool) Factory {
	if m.NewFactory != nil {
		return m.NewFactory(secure)
	}
	return &TCPFactory{
		DialTimeout: m.DialTimeout,
		Secure:      secure,
		TLSConfig:   m.TLSConfig,
	}
}

// Close closes and forgets every pool.
func (m *Manager) Close() {
	m.pools.Range(func(key string, p *ConnectionPool) bool {
		p.Close()
		m.pools.Delete(key)
		return true
	})
}

package pool

import (
	"crypto/tls"
	"net"
	"strconv"
	"time"

	"github.com/hetianyi/gox/logger"
	"github.com/pkg/errors"
)

// TCPFactory dials plain TCP, or TLS when Secure is set.
type TCPFactory struct {
	DialTimeout time.Duration
	Secure      bool
	TLSConfig   *tls.Config
}

func (f *TCPFactory) Create() *Conn {
	return &Conn{}
}

// Activate binds c to host:port and connects it if needed.
func (f *TCPFactory) Activate(c *Conn, host string, port int) error {
	if c.Connected() && c.Host == host && c.Port == port {
		return nil
	}
	c.closeSocket()
	c.Host = host
	c.Port = port
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	logger.Debug("connecting to server ", addr, "...")
	d := &net.Dialer{Timeout: f.DialTimeout}
	var (
		conn net.Conn
		err  error
	)
	if f.Secure {
		conn, err = tls.DialWithDialer(d, "tcp", addr, f.TLSConfig)
	} else {
		conn, err = d.Dial("tcp", addr)
	}
	if err != nil {
		return errors.Wrapf(err, "error connect to server %s", addr)
	}
	c.conn = conn
	return nil
}

func (f *TCPFactory) Validate(c *Conn) bool {
	return c.Connected()
}

// Passivate drops the per-checkout state.
func (f *TCPFactory) Passivate(c *Conn) {
	c.StorePathIndex = 0
	if c.conn != nil {
		c.SetDeadline(time.Time{})
	}
}

func (f *TCPFactory) Destroy(c *Conn) {
	c.closeSocket()
}

package pool

import (
	"net"
	"strconv"
	"sync/atomic"
	"time"
)

// Factory builds, binds and tears down pooled connections.
// A connection is created blank and bound to an endpoint on activation.
type Factory interface {
	Create() *Conn
	Activate(c *Conn, host string, port int) error
	Validate(c *Conn) bool
	Passivate(c *Conn)
	Destroy(c *Conn)
}

// ObjectPool hands out connections to one endpoint.
// A connection is either checked out to a single caller or idle in the pool.
type ObjectPool interface {
	// GetObject checks out a connection, reusing an idle one when possible.
	GetObject(host string, port int) (*Conn, error)
	// ReturnObject gives the connection back, the caller must not use it afterward.
	ReturnObject(c *Conn)
	// RescueObject creates a fresh connection ignoring the pool limits.
	RescueObject(host string, port int) (*Conn, error)
	// Close destroys idle connections and refuses further checkouts.
	Close()
	NumActive() int
	NumIdle() int
}

// Conn is a pooled connection.
type Conn struct {
	Host           string
	Port           int
	StorePathIndex byte

	conn     net.Conn
	owner    *ConnectionPool
	released int32
}

func (c *Conn) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func (c *Conn) Connected() bool {
	return c.conn != nil
}

func (c *Conn) Read(p []byte) (int, error) {
	if c.conn == nil {
		return 0, errNotConnected
	}
	return c.conn.Read(p)
}

func (c *Conn) Write(p []byte) (int, error) {
	if c.conn == nil {
		return 0, errNotConnected
	}
	return c.conn.Write(p)
}

// SetDeadline bounds the next reads and writes, zero clears it.
func (c *Conn) SetDeadline(t time.Time) error {
	if c.conn == nil {
		return errNotConnected
	}
	return c.conn.SetDeadline(t)
}

// Close ends the checkout of the connection, exactly once.
// forceDestroy closes the socket; otherwise returnToPool passivates it for reuse.
// With neither flag the connection is destroyed as well.
func (c *Conn) Close(forceDestroy bool, returnToPool bool) error {
	if !atomic.CompareAndSwapInt32(&c.released, 0, 1) {
		return nil
	}
	if c.owner == nil {
		c.closeSocket()
		return nil
	}
	if !forceDestroy && returnToPool {
		c.owner.release(c, false)
		return nil
	}
	c.owner.release(c, true)
	return nil
}

func (c *Conn) closeSocket() {
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}

package pool

import (
	"container/list"
	"errors"
	"net"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/hetianyi/fdfs/common"
	"github.com/hetianyi/gox/logger"
)

var errNotConnected = errors.New("connection is not connected")

// ConnectionPool is a bounded pool of connections to one endpoint.
// It fails fast with common.ErrPoolExhausted when maxActive connections are checked out.
type ConnectionPool struct {
	factory    Factory
	maxActive  int
	persistent bool
	idle       *list.List
	active     int
	closed     bool
	lock       *sync.Mutex
}

// NewConnectionPool creates a pool. Non-persistent pools
// destroy connections on return instead of keeping them idle.
func NewConnectionPool(factory Factory, maxActive int, persistent bool) *ConnectionPool {
	if maxActive <= 0 {
		maxActive = common.DEFAULT_MAX_CONN_PER_SERVER
	}
	return &ConnectionPool{
		factory:    factory,
		maxActive:  maxActive,
		persistent: persistent,
		idle:       list.New(),
		lock:       new(sync.Mutex),
	}
}

func (p *ConnectionPool) GetObject(host string, port int) (*Conn, error) {
	for {
		c, err := p.borrow()
		if err != nil {
			return nil, err
		}
		if c != nil {
			if c.Host == host && c.Port == port && p.factory.Validate(c) {
				logger.Debug("reuse existing connection to ", c.Address())
				return p.checkout(c), nil
			}
			p.destroy(c)
			continue
		}
		c = p.factory.Create()
		if err := p.factory.Activate(c, host, port); err != nil {
			p.factory.Destroy(c)
			p.decreaseActive()
			return nil, err
		}
		return p.checkout(c), nil
	}
}

// borrow takes an idle connection, or reserves an active slot and returns nil.
func (p *ConnectionPool) borrow() (*Conn, error) {
	p.lock.Lock()
	defer p.lock.Unlock()
	if p.closed {
		return nil, common.ErrPoolClosed
	}
	if p.idle.Len() > 0 {
		p.active++
		return p.idle.Remove(p.idle.Front()).(*Conn), nil
	}
	if p.active >= p.maxActive {
		return nil, common.ErrPoolExhausted
	}
	p.active++
	return nil, nil
}

func (p *ConnectionPool) RescueObject(host string, port int) (*Conn, error) {
	p.lock.Lock()
	if p.closed {
		p.lock.Unlock()
		return nil, common.ErrPoolClosed
	}
	p.active++
	p.lock.Unlock()

	c := p.factory.Create()
	if err := p.factory.Activate(c, host, port); err != nil {
		p.factory.Destroy(c)
		p.decreaseActive()
		return nil, err
	}
	logger.Debug("rescue connection to ", net.JoinHostPort(host, strconv.Itoa(port)))
	return p.checkout(c), nil
}

func (p *ConnectionPool) ReturnObject(c *Conn) {
	c.Close(false, true)
}

// release is called once per checkout by Conn.Close.
func (p *ConnectionPool) release(c *Conn, broken bool) {
	if broken || !p.persistent {
		p.destroy(c)
		logger.Debug("destroy connection to ", c.Address())
		return
	}
	p.factory.Passivate(c)
	p.lock.Lock()
	if p.closed || !p.factory.Validate(c) {
		p.lock.Unlock()
		p.destroy(c)
		return
	}
	p.active--
	p.idle.PushBack(c)
	logger.Debug("return health connection, idle: ", p.idle.Len())
	p.lock.Unlock()
}

// destroy closes a connection holding an active slot.
func (p *ConnectionPool) destroy(c *Conn) {
	p.factory.Destroy(c)
	p.decreaseActive()
}

func (p *ConnectionPool) decreaseActive() {
	p.lock.Lock()
	p.active--
	p.lock.Unlock()
}

func (p *ConnectionPool) checkout(c *Conn) *Conn {
	c.owner = p
	atomic.StoreInt32(&c.released, 0)
	return c
}

func (p *ConnectionPool) Close() {
	p.lock.Lock()
	p.closed = true
	idle := p.idle
	p.idle = list.New()
	p.lock.Unlock()
	for e := idle.Front(); e != nil; e = e.Next() {
		p.factory.Destroy(e.Value.(*Conn))
	}
}

func (p *ConnectionPool) NumActive() int {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.active
}

func (p *ConnectionPool) NumIdle() int {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.idle.Len()
}

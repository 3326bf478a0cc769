package main

import (
	"encoding/gob"
	"net"
	"sync"

	"github.com/stewi1014/fractalexplorer/programs"
)

// Messages exchanged between the configuration and render windows. They
// travel gob encoded as interface values, so each is registered and sent by
// pointer.

// selectFractal switches the render window to Kind, resetting the view.
type selectFractal struct {
	Kind programs.Kind
}

// viewChanged reports the render window's view after user input.
type viewChanged struct {
	Kind     programs.Kind
	Uniforms programs.Uniforms
}

func init() {
	gob.Register(&programs.Parameters{})
	gob.Register(&programs.Uniforms{})
	gob.Register(&selectFractal{})
	gob.Register(&viewChanged{})
}

// NewPipeListener returns both ends of an in-memory connection. The
// listener hands out its end once; later Accepts block until Close.
func NewPipeListener() (client net.Conn, listener net.Listener) {
	clientPipe, listenerPipe := net.Pipe()
	return clientPipe, &pipeListener{
		pipe: listenerPipe,
		done: make(chan struct{}),
	}
}

type pipeListener struct {
	mu       sync.Mutex
	pipe     net.Conn
	accepted bool
	done     chan struct{}
	close    sync.Once
}

func (p *pipeListener) Accept() (net.Conn, error) {
	p.mu.Lock()
	if !p.accepted {
		p.accepted = true
		p.mu.Unlock()
		return p.pipe, nil
	}
	p.mu.Unlock()

	<-p.done
	return nil, net.ErrClosed
}

func (p *pipeListener) Close() error {
	var err error
	p.close.Do(func() {
		close(p.done)
		err = p.pipe.Close()
	})
	return err
}

func (p *pipeListener) Addr() net.Addr {
	return p.pipe.LocalAddr()
}

// messenger sends and receives registered messages over one connection.
type messenger struct {
	conn net.Conn
	enc  *gob.Encoder
	dec  *gob.Decoder
	mu   sync.Mutex
}

func newMessenger(conn net.Conn) *messenger {
	return &messenger{
		conn: conn,
		enc:  gob.NewEncoder(conn),
		dec:  gob.NewDecoder(conn),
	}
}

// Send encodes msg, which must be a pointer to a registered type. It blocks
// until the other end reads it.
func (m *messenger) Send(msg any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.enc.Encode(&msg)
}

// Receive blocks for the next message.
func (m *messenger) Receive() (any, error) {
	var v any
	if err := m.dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

func (m *messenger) Close() error {
	return m.conn.Close()
}

package udp

import (
	"context"
	"fmt"
	"net"
)

// Config configures the UDP receiver.
type Config struct {
	Addr       string
	ReadBuffer int
}

// Receiver reads one line per inbound datagram from a connectionless
// socket. The transport may silently drop or reorder; no attempt is
// made to detect loss.
type Receiver struct {
	conn *net.UDPConn
	buf  []byte
}

// NewReceiver binds the datagram endpoint.
func NewReceiver(cfg Config) (*Receiver, error) {
	if cfg.Addr == "" {
		cfg.Addr = "0.0.0.0:514"
	}
	if cfg.ReadBuffer <= 0 {
		cfg.ReadBuffer = 4096
	}

	addr, err := net.ResolveUDPAddr("udp", cfg.Addr)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", cfg.Addr, err)
	}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("bind %s: %w", cfg.Addr, err)
	}

	return &Receiver{
		conn: conn,
		buf:  make([]byte, cfg.ReadBuffer),
	}, nil
}

// Receive blocks until one datagram arrives and returns its payload.
// Cancelling the context unblocks the read via Close.
func (r *Receiver) Receive(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	n, _, err := r.conn.ReadFromUDP(r.buf)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}
	out := make([]byte, n)
	copy(out, r.buf[:n])
	return out, nil
}

// Addr returns the bound local address.
func (r *Receiver) Addr() net.Addr {
	return r.conn.LocalAddr()
}

// Close closes the socket, unblocking any in-flight Receive.
func (r *Receiver) Close() error {
	return r.conn.Close()
}

package utils

import (
	"fmt"
	"net"
	"sync"
)

// RemoteLogger mirrors client diagnostics to anyone connected over TCP.
// The widget owns the terminal, so stdout logging is useless there; attach
// with `nc localhost <port>` instead. A logger with no listener is valid and
// Logf on it is a no-op.
type RemoteLogger struct {
	Port     int
	Listener net.Listener

	mu      sync.Mutex
	clients []net.Conn
}

// NewRemoteLogger starts a TCP listener on the given port. On failure it
// still returns a usable (silent) logger alongside the error.
func NewRemoteLogger(port int) (*RemoteLogger, error) {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return &RemoteLogger{}, err
	}
	rl := &RemoteLogger{
		Port:     port,
		Listener: ln,
	}
	go rl.acceptClients()
	return rl, nil
}

func (rl *RemoteLogger) acceptClients() {
	for {
		conn, err := rl.Listener.Accept()
		if err != nil {
			return
		}
		rl.mu.Lock()
		rl.clients = append(rl.clients, conn)
		rl.mu.Unlock()
	}
}

// Logf sends a formatted log line to all connected clients.
func (rl *RemoteLogger) Logf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for _, conn := range rl.clients {
		fmt.Fprintln(conn, msg)
	}
}

// Close stops the listener and drops all connected clients.
func (rl *RemoteLogger) Close() {
	if rl.Listener != nil {
		_ = rl.Listener.Close()
	}
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for _, conn := range rl.clients {
		_ = conn.Close()
	}
	rl.clients = nil
}

package printer

import (
	"context"
	"fmt"
	"net"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/mcpl-automation/coilprint-backend/pkg/config"
)

// Sender delivers a rendered label document to the physical printer.
type Sender interface {
	Send(ctx context.Context, document []byte) (bool, string)
}

// Transport writes raw ZPL to a network printer over TCP port 9100. It
// caps concurrent connections because label printers accept very few
// sockets at once.
type Transport struct {
	address      string
	dialTimeout  time.Duration
	writeTimeout time.Duration
	slots        *semaphore.Weighted
}

// NewTransport configures the TCP transport from printer settings.
func NewTransport(cfg config.PrinterConfig) (*Transport, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("printer host is required")
	}
	port := cfg.Port
	if port <= 0 {
		port = 9100
	}
	maxConcurrent := cfg.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	dialTimeout := cfg.DialTimeout
	if dialTimeout <= 0 {
		dialTimeout = 5 * time.Second
	}
	writeTimeout := cfg.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = 10 * time.Second
	}
	return &Transport{
		address:      net.JoinHostPort(cfg.Host, fmt.Sprintf("%d", port)),
		dialTimeout:  dialTimeout,
		writeTimeout: writeTimeout,
		slots:        semaphore.NewWeighted(maxConcurrent),
	}, nil
}

// Send pushes the document and reports whether the bytes were accepted.
// Success means transport-layer acknowledgment, not physical print
// confirmation. Send never panics and never blocks past its timeouts;
// every failure comes back as (false, reason).
func (t *Transport) Send(ctx context.Context, document []byte) (ok bool, errorDetail string) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
			errorDetail = fmt.Sprintf("printer transport panic: %v", r)
		}
	}()

	if len(document) == 0 {
		return false, "empty label document"
	}

	if err := t.slots.Acquire(ctx, 1); err != nil {
		return false, fmt.Sprintf("waiting for printer slot: %v", err)
	}
	defer t.slots.Release(1)

	dialer := net.Dialer{Timeout: t.dialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", t.address)
	if err != nil {
		return false, fmt.Sprintf("connecting to printer %s: %v", t.address, err)
	}
	defer conn.Close()

	if err := conn.SetWriteDeadline(time.Now().Add(t.writeTimeout)); err != nil {
		return false, fmt.Sprintf("setting write deadline: %v", err)
	}
	if _, err := conn.Write(document); err != nil {
		return false, fmt.Sprintf("writing to printer %s: %v", t.address, err)
	}
	return true, ""
}

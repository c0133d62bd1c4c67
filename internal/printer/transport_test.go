package printer

import (
	"context"
	"io"
	"net"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/mcpl-automation/coilprint-backend/pkg/config"
)

func listen(t *testing.T) (net.Listener, string, int) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { _ = ln.Close() })
	host, portStr, err := net.SplitHostPort(ln.Addr().String())
	if err != nil {
		t.Fatalf("split addr: %v", err)
	}
	port, _ := strconv.Atoi(portStr)
	return ln, host, port
}

func TestTransportSendDeliversDocument(t *testing.T) {
	ln, host, port := listen(t)

	received := make(chan []byte, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		data, _ := io.ReadAll(conn)
		received <- data
	}()

	transport, err := NewTransport(config.PrinterConfig{Host: host, Port: port})
	if err != nil {
		t.Fatalf("NewTransport: %v", err)
	}

	ok, detail := transport.Send(context.Background(), []byte("^XA test ^XZ"))
	if !ok {
		t.Fatalf("send failed: %s", detail)
	}

	select {
	case data := <-received:
		if string(data) != "^XA test ^XZ" {
			t.Fatalf("printer received %q", data)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("printer never received the document")
	}
}

func TestTransportSendRefusedConnection(t *testing.T) {
	ln, host, port := listen(t)
	_ = ln.Close() // nothing is listening anymore

	transport, err := NewTransport(config.PrinterConfig{
		Host:        host,
		Port:        port,
		DialTimeout: 500 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("NewTransport: %v", err)
	}

	ok, detail := transport.Send(context.Background(), []byte("^XA^XZ"))
	if ok {
		t.Fatal("send should fail when the device is unreachable")
	}
	if !strings.Contains(detail, "connecting to printer") {
		t.Fatalf("unexpected error detail: %s", detail)
	}
}

func TestTransportSendEmptyDocument(t *testing.T) {
	_, host, port := listen(t)

	transport, err := NewTransport(config.PrinterConfig{Host: host, Port: port})
	if err != nil {
		t.Fatalf("NewTransport: %v", err)
	}

	if ok, detail := transport.Send(context.Background(), nil); ok || detail == "" {
		t.Fatalf("empty document should be rejected, ok=%v detail=%q", ok, detail)
	}
}

func TestTransportSendCancelledContext(t *testing.T) {
	_, host, port := listen(t)

	transport, err := NewTransport(config.PrinterConfig{Host: host, Port: port, MaxConcurrent: 1})
	if err != nil {
		t.Fatalf("NewTransport: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ok, detail := transport.Send(ctx, []byte("^XA^XZ"))
	if ok {
		t.Fatal("send should fail with a cancelled context")
	}
	if detail == "" {
		t.Fatal("expected an error detail")
	}
}

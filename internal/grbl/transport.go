package grbl

import (
	"fmt"
	"io"

	"go.bug.st/serial"
)

// Transport owns one open byte stream to the controller. Writes may be
// called from any goroutine; received bytes and stream failures arrive on
// the callbacks registered at dial time, on the transport's own reader
// goroutine.
type Transport interface {
	io.Writer
	io.Closer
}

// DialFunc opens a transport. onData receives raw chunks as they arrive;
// onError is called once, with the terminal read error, when the stream
// dies mid-session. Neither callback is invoked after Close.
type DialFunc func(path string, baud int, onData func([]byte), onError func(error)) (Transport, error)

type serialTransport struct {
	port   serial.Port
	closed chan struct{}
}

// DialSerial opens a physical serial port and starts its reader
// goroutine. This is the production DialFunc.
func DialSerial(path string, baud int, onData func([]byte), onError func(error)) (Transport, error) {
	port, err := serial.Open(path, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, fmt.Errorf("open serial port %s @ %d: %w", path, baud, err)
	}

	t := &serialTransport{port: port, closed: make(chan struct{})}
	go t.readLoop(onData, onError)
	return t, nil
}

func (t *serialTransport) readLoop(onData func([]byte), onError func(error)) {
	buf := make([]byte, 4096)
	for {
		n, err := t.port.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			onData(chunk)
		}
		if err != nil {
			select {
			case <-t.closed:
				// Deliberate Close, not a failure.
			default:
				onError(fmt.Errorf("serial read: %w", err))
			}
			return
		}
	}
}

func (t *serialTransport) Write(p []byte) (int, error) {
	return t.port.Write(p)
}

func (t *serialTransport) Close() error {
	select {
	case <-t.closed:
		return nil
	default:
		close(t.closed)
	}
	return t.port.Close()
}

package wsframe

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/coder/websocket"

	"github.com/bft-labs/xstore/internal/ports"
	"github.com/bft-labs/xstore/pkg/log"
	"github.com/bft-labs/xstore/pkg/origin"
)

// ErrDetached is returned when posting through a detached frame.
var ErrDetached = errors.New("wsframe: frame detached")

// Frame is one websocket connection to a hub.
type Frame struct {
	id     string
	url    string
	origin string
	conn   *websocket.Conn
	doc    *Document
	done   chan struct{}

	mu       sync.Mutex
	detached bool
}

// ID implements ports.Frame.
func (f *Frame) ID() string {
	return f.id
}

// URL returns the dialed hub URL.
func (f *Frame) URL() string {
	return f.url
}

// Origin returns the hub origin.
func (f *Frame) Origin() string {
	return f.origin
}

// Done is closed when the frame's read loop exits.
func (f *Frame) Done() <-chan struct{} {
	return f.done
}

// Window implements ports.Frame. It returns nil once the frame is detached.
func (f *Frame) Window() ports.Window {
	if !f.attached() {
		return nil
	}
	return frameWindow{f}
}

// Detach implements ports.Frame. The close handshake runs in the background
// so Detach may be called from a message handler.
func (f *Frame) Detach() error {
	f.mu.Lock()
	if f.detached {
		f.mu.Unlock()
		return nil
	}
	f.detached = true
	f.mu.Unlock()

	f.doc.remove(f)
	go f.conn.Close(websocket.StatusNormalClosure, "frame detached")

	f.doc.logger.Debug("frame detached", log.String("frame", f.id))
	return nil
}

func (f *Frame) attached() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.detached
}

func (f *Frame) readLoop(ctx context.Context) {
	defer f.doc.wg.Done()
	defer close(f.done)

	evOrigin := eventOrigin(f.origin)
	for {
		typ, data, err := f.conn.Read(ctx)
		if err != nil {
			if f.attached() {
				f.doc.logger.Warn("hub connection lost",
					log.String("frame", f.id),
					log.Err(err),
				)
				_ = f.Detach()
			}
			return
		}
		if typ != websocket.MessageText || !f.attached() {
			continue
		}
		f.doc.dispatch(ports.MessageEvent{Data: string(data), Origin: evOrigin})
	}
}

type frameWindow struct {
	f *Frame
}

// PostMessage writes data to the hub. A targetOrigin that does not match the
// hub origin drops the message silently.
func (w frameWindow) PostMessage(data, targetOrigin string) error {
	f := w.f
	if !origin.Matches(targetOrigin, f.origin) {
		f.doc.logger.Debug("target origin mismatch, message dropped",
			log.String("frame", f.id),
			log.String("target", targetOrigin),
		)
		return nil
	}
	if !f.attached() {
		return ErrDetached
	}

	ctx, cancel := context.WithTimeout(f.doc.ctx, f.doc.writeTimeout)
	defer cancel()
	if err := f.conn.Write(ctx, websocket.MessageText, []byte(data)); err != nil {
		return fmt.Errorf("write to hub: %w", err)
	}
	return nil
}

package page

import (
	"sync"

	"github.com/bft-labs/xstore/internal/ports"
	"github.com/bft-labs/xstore/pkg/log"
	"github.com/bft-labs/xstore/pkg/origin"
)

// Frame is an invisible frame embedded in a Document.
type Frame struct {
	id     string
	url    string
	origin string
	agent  Agent
	doc    *Document

	mu       sync.Mutex
	detached bool
}

// ID implements ports.Frame.
func (f *Frame) ID() string {
	return f.id
}

// URL returns the address the frame was embedded with.
func (f *Frame) URL() string {
	return f.url
}

// Origin returns the frame's resolved origin.
func (f *Frame) Origin() string {
	return f.origin
}

// Window implements ports.Frame. It returns nil once the frame is detached.
func (f *Frame) Window() ports.Window {
	if !f.attached() {
		return nil
	}
	return frameWindow{f}
}

// Detach implements ports.Frame.
func (f *Frame) Detach() error {
	f.mu.Lock()
	if f.detached {
		f.mu.Unlock()
		return nil
	}
	f.detached = true
	f.mu.Unlock()

	f.doc.remove(f)
	f.doc.logger.Debug("frame detached", log.String("frame", f.id))
	return nil
}

func (f *Frame) attached() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.detached
}

// reply posts data from the frame to its embedding document.
func (f *Frame) reply(data string) {
	f.doc.enqueue(func() {
		if !f.attached() {
			return
		}
		f.doc.dispatch(ports.MessageEvent{Data: data, Origin: eventOrigin(f.origin)})
	})
}

type frameWindow struct {
	f *Frame
}

// PostMessage queues data for the frame's agent. Like a browser, a message
// whose targetOrigin does not match the frame's origin is silently dropped.
func (w frameWindow) PostMessage(data, targetOrigin string) error {
	f := w.f
	if !origin.Matches(targetOrigin, f.origin) {
		f.doc.logger.Debug("target origin mismatch, message dropped",
			log.String("frame", f.id),
			log.String("target", targetOrigin),
			log.String("origin", f.origin),
		)
		return nil
	}
	if f.agent == nil {
		return nil
	}

	sender := eventOrigin(f.doc.origin)
	f.doc.enqueue(func() {
		if f.attached() {
			f.agent.Receive(data, sender, f.reply)
		}
	})
	return nil
}

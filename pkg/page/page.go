package page

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"

	"github.com/bft-labs/xstore/internal/ports"
	"github.com/bft-labs/xstore/pkg/log"
	"github.com/bft-labs/xstore/pkg/origin"
)

// Errors returned by Document.
var (
	ErrDocumentClosed = errors.New("page: document closed")
	ErrFrameExists    = errors.New("page: frame id already in use")
)

// Agent is the code loaded inside an embedded frame.
type Agent interface {
	// Load runs once when a frame pointed at the agent's origin attaches.
	Load(reply func(data string))

	// Receive handles one message posted into the frame. origin is the
	// sender's event origin ("null" for file documents).
	Receive(data, origin string, reply func(data string))
}

// Option configures a Document.
type Option func(*Document)

// WithLogger sets the document logger.
func WithLogger(logger log.Logger) Option {
	return func(d *Document) {
		d.logger = logger
	}
}

// Document is an in-process model of a browser window: it has a location,
// embeds frames, routes frames to agents by origin and delivers every posted
// message in order from a single event-loop goroutine.
type Document struct {
	location *url.URL
	origin   string
	logger   log.Logger

	mu        sync.Mutex
	listeners map[uint64]func(ports.MessageEvent)
	nextSub   uint64
	frames    map[string]*Frame
	agents    map[string]Agent
	queue     []func()
	closed    bool

	wake      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// New creates a document at location and starts its event loop.
func New(location string, opts ...Option) (*Document, error) {
	u, err := url.Parse(location)
	if err != nil {
		return nil, fmt.Errorf("parse location: %w", err)
	}

	d := &Document{
		location:  u,
		origin:    origin.Resolve(location, u),
		logger:    log.NewNoopLogger(),
		listeners: make(map[uint64]func(ports.MessageEvent)),
		frames:    make(map[string]*Frame),
		agents:    make(map[string]Agent),
		wake:      make(chan struct{}, 1),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}

	go d.loop()
	return d, nil
}

// Location returns the document's URL.
func (d *Document) Location() *url.URL {
	u := *d.location
	return &u
}

// Origin returns the document's origin.
func (d *Document) Origin() string {
	return d.origin
}

// Route serves every frame whose origin is hubOrigin with agent. Frames
// embedded before the route exists stay blank.
func (d *Document) Route(hubOrigin string, agent Agent) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.agents[hubOrigin] = agent
}

// Listen implements ports.Listener.
func (d *Document) Listen(handler func(ports.MessageEvent)) ports.Subscription {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextSub++
	id := d.nextSub
	d.listeners[id] = handler
	return &subscription{doc: d, id: id}
}

// Listeners returns the number of registered handlers.
func (d *Document) Listeners() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.listeners)
}

// Lookup implements ports.Embedder.
func (d *Document) Lookup(id string) (ports.Frame, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	f, ok := d.frames[id]
	if !ok {
		return nil, false
	}
	return f, true
}

// Embed implements ports.Embedder. The frame loads asynchronously: its agent
// is started from the event loop.
func (d *Document) Embed(ctx context.Context, id, hubURL string) (ports.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return d.embed(id, hubURL)
}

// Frames returns the number of attached frames.
func (d *Document) Frames() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.frames)
}

// Close stops the event loop. Queued messages are discarded.
func (d *Document) Close() {
	d.closeOnce.Do(func() {
		d.mu.Lock()
		d.closed = true
		d.queue = nil
		d.mu.Unlock()
		close(d.done)
	})
}

func (d *Document) embed(id, hubURL string) (*Frame, error) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil, ErrDocumentClosed
	}
	if _, exists := d.frames[id]; exists {
		d.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrFrameExists, id)
	}

	f := &Frame{
		id:     id,
		url:    hubURL,
		origin: origin.Resolve(hubURL, d.location),
		doc:    d,
	}
	f.agent = d.agents[f.origin]
	d.frames[id] = f
	d.mu.Unlock()

	d.logger.Debug("frame embedded",
		log.String("frame", id),
		log.String("origin", f.origin),
		log.Bool("routed", f.agent != nil),
	)

	if f.agent != nil {
		d.enqueue(func() {
			if f.attached() {
				f.agent.Load(f.reply)
			}
		})
	}
	return f, nil
}

func (d *Document) remove(f *Frame) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.frames[f.id] == f {
		delete(d.frames, f.id)
	}
}

// dispatch delivers ev to every listener registered at the time of delivery.
func (d *Document) dispatch(ev ports.MessageEvent) {
	d.mu.Lock()
	handlers := make([]func(ports.MessageEvent), 0, len(d.listeners))
	for _, h := range d.listeners {
		handlers = append(handlers, h)
	}
	d.mu.Unlock()

	for _, h := range handlers {
		h(ev)
	}
}

func (d *Document) enqueue(task func()) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.queue = append(d.queue, task)
	d.mu.Unlock()

	select {
	case d.wake <- struct{}{}:
	default:
	}
}

func (d *Document) loop() {
	for {
		select {
		case <-d.done:
			return
		case <-d.wake:
		}

		for {
			d.mu.Lock()
			if len(d.queue) == 0 || d.closed {
				d.mu.Unlock()
				break
			}
			task := d.queue[0]
			d.queue = d.queue[1:]
			d.mu.Unlock()

			task()
		}
	}
}

// eventOrigin is the origin a receiver observes for messages from o.
func eventOrigin(o string) string {
	if o == origin.File {
		return "null"
	}
	return o
}

type subscription struct {
	doc  *Document
	id   uint64
	once sync.Once
}

func (s *subscription) Release() {
	s.once.Do(func() {
		s.doc.mu.Lock()
		delete(s.doc.listeners, s.id)
		s.doc.mu.Unlock()
	})
}

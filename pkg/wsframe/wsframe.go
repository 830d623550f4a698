// Package wsframe embeds hub agents reached over websocket. Each frame is one
// websocket connection to the hub URL; messages the hub writes are delivered
// to the document's listeners as if posted by the frame.
package wsframe

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/bft-labs/xstore/internal/ports"
	"github.com/bft-labs/xstore/pkg/log"
	"github.com/bft-labs/xstore/pkg/origin"
)

// Errors returned by Document.
var (
	ErrDocumentClosed = errors.New("wsframe: document closed")
	ErrFrameExists    = errors.New("wsframe: frame id already in use")
)

const defaultWriteTimeout = 10 * time.Second

// Option configures a Document.
type Option func(*Document)

// WithLogger sets the document logger.
func WithLogger(logger log.Logger) Option {
	return func(d *Document) {
		d.logger = logger
	}
}

// WithDialOptions sets the websocket dial options. The Origin header is
// always set to the document origin.
func WithDialOptions(opts *websocket.DialOptions) Option {
	return func(d *Document) {
		d.dialOptions = opts
	}
}

// WithWriteTimeout bounds each posted message.
func WithWriteTimeout(timeout time.Duration) Option {
	return func(d *Document) {
		d.writeTimeout = timeout
	}
}

// Document hosts websocket frames on behalf of a document located at a URL.
// It implements ports.Listener and ports.Embedder. Deliveries from all frames
// are serialized.
type Document struct {
	location     *url.URL
	origin       string
	logger       log.Logger
	dialOptions  *websocket.DialOptions
	writeTimeout time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	listeners map[uint64]func(ports.MessageEvent)
	nextSub   uint64
	frames    map[string]*Frame
	closed    bool

	deliverMu sync.Mutex
	wg        sync.WaitGroup
}

// New creates a document at location.
func New(location string, opts ...Option) (*Document, error) {
	u, err := url.Parse(location)
	if err != nil {
		return nil, fmt.Errorf("parse location: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	d := &Document{
		location:     u,
		origin:       origin.Resolve(location, u),
		logger:       log.NewNoopLogger(),
		writeTimeout: defaultWriteTimeout,
		ctx:          ctx,
		cancel:       cancel,
		listeners:    make(map[uint64]func(ports.MessageEvent)),
		frames:       make(map[string]*Frame),
	}
	for _, opt := range opts {
		opt(d)
	}
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

// Listen implements ports.Listener.
func (d *Document) Listen(handler func(ports.MessageEvent)) ports.Subscription {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextSub++
	id := d.nextSub
	d.listeners[id] = handler
	return &subscription{doc: d, id: id}
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

// Embed implements ports.Embedder by dialing hubURL.
func (d *Document) Embed(ctx context.Context, id, hubURL string) (ports.Frame, error) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil, ErrDocumentClosed
	}
	if _, exists := d.frames[id]; exists {
		d.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrFrameExists, id)
	}
	d.mu.Unlock()

	target, err := d.location.Parse(hubURL)
	if err != nil {
		return nil, fmt.Errorf("parse hub url: %w", err)
	}

	opts := &websocket.DialOptions{}
	if d.dialOptions != nil {
		copied := *d.dialOptions
		opts = &copied
	}
	header := http.Header{}
	for k, v := range opts.HTTPHeader {
		header[k] = v
	}
	header.Set("Origin", eventOrigin(d.origin))
	opts.HTTPHeader = header

	conn, _, err := websocket.Dial(ctx, target.String(), opts)
	if err != nil {
		return nil, fmt.Errorf("dial hub %s: %w", target.Redacted(), err)
	}

	f := &Frame{
		id:     id,
		url:    target.String(),
		origin: origin.Resolve(hubURL, d.location),
		conn:   conn,
		doc:    d,
		done:   make(chan struct{}),
	}

	d.mu.Lock()
	if d.closed || d.frames[id] != nil {
		d.mu.Unlock()
		conn.Close(websocket.StatusNormalClosure, "frame discarded")
		if d.closed {
			return nil, ErrDocumentClosed
		}
		return nil, fmt.Errorf("%w: %s", ErrFrameExists, id)
	}
	d.frames[id] = f
	d.wg.Add(1)
	d.mu.Unlock()

	go f.readLoop(d.ctx)

	d.logger.Debug("frame connected",
		log.String("frame", id),
		log.String("origin", f.origin),
	)
	return f, nil
}

// Close detaches every frame and waits for their read loops to finish.
func (d *Document) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	frames := make([]*Frame, 0, len(d.frames))
	for _, f := range d.frames {
		frames = append(frames, f)
	}
	d.mu.Unlock()

	for _, f := range frames {
		_ = f.Detach()
	}
	d.cancel()
	d.wg.Wait()
}

func (d *Document) remove(f *Frame) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.frames[f.id] == f {
		delete(d.frames, f.id)
	}
}

func (d *Document) dispatch(ev ports.MessageEvent) {
	d.mu.Lock()
	handlers := make([]func(ports.MessageEvent), 0, len(d.listeners))
	for _, h := range d.listeners {
		handlers = append(handlers, h)
	}
	d.mu.Unlock()

	d.deliverMu.Lock()
	defer d.deliverMu.Unlock()
	for _, h := range handlers {
		h(ev)
	}
}

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

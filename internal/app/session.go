package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bft-labs/xstore/internal/domain"
	"github.com/bft-labs/xstore/internal/ports"
	"github.com/bft-labs/xstore/pkg/origin"
)

// SessionConfig contains configuration for a client session.
type SessionConfig struct {
	ClientID string
	HubURL   string

	// HubOrigin is the resolved origin of HubURL. Inbound messages from any
	// other origin are dropped.
	HubOrigin string

	// FrameID selects an already embedded frame. When empty, or when no frame
	// with that id exists, a new frame is embedded.
	FrameID string

	Timeout      time.Duration
	PollInterval time.Duration
}

// SessionEvents receives both connection and request events.
type SessionEvents interface {
	EventEmitter
	RequestEventEmitter
}

// Session ties one agent frame, one inbound subscription, the connection
// state machine and the request correlator together.
type Session struct {
	config SessionConfig
	conn   *Connection
	corr   *Correlator
	logger ports.Logger

	frameMu sync.Mutex
	frame   ports.Frame
	sub     ports.Subscription
	closed  bool

	stopPoll  chan struct{}
	pollWG    sync.WaitGroup
	closeOnce sync.Once
}

// NewSession registers the inbound handler, then attaches to or embeds the
// agent frame. The returned session is CONNECTING.
func NewSession(
	ctx context.Context,
	config SessionConfig,
	embedder ports.Embedder,
	listener ports.Listener,
	logger ports.Logger,
	events SessionEvents,
) (*Session, error) {
	if embedder == nil || listener == nil {
		return nil, fmt.Errorf("%w: embedder and listener are required", domain.ErrInvalidConfig)
	}

	s := &Session{
		config:   config,
		logger:   logger,
		stopPoll: make(chan struct{}),
	}

	var emitter EventEmitter
	var reqEmitter RequestEventEmitter
	if events != nil {
		emitter, reqEmitter = events, events
	}
	s.conn = NewConnection(logger, emitter)
	s.corr = NewCorrelator(CorrelatorConfig{
		ClientID:     config.ClientID,
		TargetOrigin: origin.Target(config.HubOrigin),
		Timeout:      config.Timeout,
	}, s.conn, s.window, logger, reqEmitter)

	sub := listener.Listen(s.handle)
	s.frameMu.Lock()
	closed := s.closed
	if !closed {
		s.sub = sub
	}
	s.frameMu.Unlock()
	if closed {
		sub.Release()
		return s, nil
	}

	if config.FrameID != "" {
		if frame, ok := embedder.Lookup(config.FrameID); ok {
			if !s.setFrame(frame) {
				return s, nil
			}
			logger.Info("attached to existing frame", ports.String("frame", frame.ID()))
			s.pollWG.Add(1)
			go s.poll()
			return s, nil
		}
	}

	id := config.FrameID
	if id == "" {
		id = "xstore-" + config.ClientID
	}
	frame, err := embedder.Embed(ctx, id, config.HubURL)
	if err != nil {
		s.shutdown("embed failed", nil)
		return nil, fmt.Errorf("embed hub frame %s: %w", id, err)
	}
	if !s.setFrame(frame) {
		return s, nil
	}
	logger.Info("embedded hub frame",
		ports.String("frame", frame.ID()),
		ports.String("hub_url", config.HubURL),
	)
	return s, nil
}

// Connection returns the session's connection state machine.
func (s *Session) Connection() *Connection {
	return s.conn
}

// Correlator returns the session's request correlator.
func (s *Session) Correlator() *Correlator {
	return s.corr
}

// Frame returns the agent frame, or nil after close.
func (s *Session) Frame() ports.Frame {
	s.frameMu.Lock()
	defer s.frameMu.Unlock()
	return s.frame
}

// Close detaches the frame, releases the subscription, stops the poller and
// enters StateClosed. Closing twice is a no-op.
func (s *Session) Close() {
	s.shutdown("closed by caller", nil)
	s.pollWG.Wait()
}

// setFrame stores frame unless the session was closed while the frame was
// being embedded, in which case the frame is detached and false is returned.
func (s *Session) setFrame(frame ports.Frame) bool {
	s.frameMu.Lock()
	closed := s.closed
	if !closed {
		s.frame = frame
	}
	s.frameMu.Unlock()

	if closed {
		s.logger.Debug("session closed during embed, detaching frame", ports.String("frame", frame.ID()))
		if err := frame.Detach(); err != nil {
			s.logger.Warn("failed to detach frame", ports.String("frame", frame.ID()), ports.Err(err))
		}
		return false
	}
	return true
}

func (s *Session) window() ports.Window {
	s.frameMu.Lock()
	defer s.frameMu.Unlock()
	if s.frame == nil {
		return nil
	}
	return s.frame.Window()
}

// handle is the single inbound handler.
func (s *Session) handle(ev ports.MessageEvent) {
	state := s.conn.State()
	if state == StateClosed {
		return
	}
	if origin.Normalize(ev.Origin) != s.config.HubOrigin {
		s.logger.Debug("dropping message from foreign origin", ports.String("origin", ev.Origin))
		return
	}

	if ev.Data == domain.ControlUnavailable {
		s.logger.Warn("hub storage unavailable, closing client")
		s.shutdown("hub storage unavailable", domain.ErrChannelUnavailable)
		return
	}

	if state == StateConnecting && domain.IsControl(ev.Data) {
		s.conn.MarkConnected("hub handshake")
	}
	if ev.Data == domain.ControlReady {
		return
	}

	resp, ok := domain.DecodeResponse(ev.Data)
	if !ok {
		s.logger.Debug("dropping malformed message")
		return
	}
	s.corr.Deliver(resp)
}

// poll sends a poll control message every PollInterval until the connection
// leaves StateConnecting.
func (s *Session) poll() {
	defer s.pollWG.Done()

	ticker := time.NewTicker(s.config.PollInterval)
	defer ticker.Stop()

	target := origin.Target(s.config.HubOrigin)
	for {
		select {
		case <-s.stopPoll:
			return
		case <-s.conn.Connected():
			return
		case <-s.conn.Done():
			return
		case <-ticker.C:
			w := s.window()
			if w == nil {
				return
			}
			if err := w.PostMessage(domain.ControlPoll, target); err != nil {
				s.logger.Debug("poll failed", ports.Err(err))
			}
		}
	}
}

func (s *Session) shutdown(reason string, cause error) {
	s.conn.Close(reason, cause)

	s.closeOnce.Do(func() {
		close(s.stopPoll)

		s.frameMu.Lock()
		frame, sub := s.frame, s.sub
		s.frame, s.sub = nil, nil
		s.closed = true
		s.frameMu.Unlock()

		if frame != nil {
			if err := frame.Detach(); err != nil {
				s.logger.Warn("failed to detach frame", ports.String("frame", frame.ID()), ports.Err(err))
			}
		}
		if sub != nil {
			sub.Release()
		}
	})
}

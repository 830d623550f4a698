package page

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bft-labs/xstore/internal/ports"
)

// echoAgent greets on load and echoes every message with the sender origin.
type echoAgent struct {
	mu       sync.Mutex
	received []string
	origins  []string
}

func (a *echoAgent) Load(reply func(string)) {
	reply("hello")
}

func (a *echoAgent) Receive(data, origin string, reply func(string)) {
	a.mu.Lock()
	a.received = append(a.received, data)
	a.origins = append(a.origins, origin)
	a.mu.Unlock()
	reply("echo:" + data)
}

func (a *echoAgent) Origins() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string{}, a.origins...)
}

func newDocument(t *testing.T, location string) *Document {
	t.Helper()
	d, err := New(location)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(d.Close)
	return d
}

func collect(d *Document) (<-chan ports.MessageEvent, ports.Subscription) {
	ch := make(chan ports.MessageEvent, 16)
	sub := d.Listen(func(ev ports.MessageEvent) { ch <- ev })
	return ch, sub
}

func next(t *testing.T, ch <-chan ports.MessageEvent) ports.MessageEvent {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(time.Second):
		t.Fatal("no message within 1s")
		return ports.MessageEvent{}
	}
}

func TestDocument_Origin(t *testing.T) {
	tests := []struct {
		location string
		want     string
	}{
		{"https://app.example/index.html", "https://app.example"},
		{"http://app.example:8080/a/b", "http://app.example:8080"},
		{"file:///home/user/index.html", "file://"},
	}

	for _, tt := range tests {
		d := newDocument(t, tt.location)
		if got := d.Origin(); got != tt.want {
			t.Errorf("New(%q).Origin() = %q, want %q", tt.location, got, tt.want)
		}
	}
}

func TestDocument_EmbedAndRoundTrip(t *testing.T) {
	d := newDocument(t, "https://app.example/")
	agent := &echoAgent{}
	d.Route("https://hub.example", agent)
	ch, _ := collect(d)

	f, err := d.Embed(context.Background(), "hub", "https://hub.example/hub.html")
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}

	ev := next(t, ch)
	if ev.Data != "hello" || ev.Origin != "https://hub.example" {
		t.Errorf("load event = %+v", ev)
	}

	if err := f.Window().PostMessage("ping", "https://hub.example"); err != nil {
		t.Fatalf("PostMessage() error = %v", err)
	}
	ev = next(t, ch)
	if ev.Data != "echo:ping" {
		t.Errorf("reply = %q, want echo:ping", ev.Data)
	}
	if got := agent.Origins(); len(got) != 1 || got[0] != "https://app.example" {
		t.Errorf("agent saw origins %v", got)
	}
}

func TestDocument_RelativeHubURL(t *testing.T) {
	d := newDocument(t, "https://app.example/app/")
	d.Route("https://app.example", &echoAgent{})

	f, err := d.Embed(context.Background(), "hub", "/hub.html")
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	if got := f.(*Frame).Origin(); got != "https://app.example" {
		t.Errorf("frame origin = %q", got)
	}
}

func TestDocument_FileOrigins(t *testing.T) {
	d := newDocument(t, "file:///tmp/index.html")
	agent := &echoAgent{}
	d.Route("file://", agent)
	ch, _ := collect(d)

	f, err := d.Embed(context.Background(), "hub", "file:///tmp/hub.html")
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	if ev := next(t, ch); ev.Origin != "null" {
		t.Errorf("event origin = %q, want null", ev.Origin)
	}

	_ = f.Window().PostMessage("x", "*")
	next(t, ch)
	if got := agent.Origins(); len(got) != 1 || got[0] != "null" {
		t.Errorf("agent saw origins %v, want [null]", got)
	}
}

func TestDocument_TargetOriginMismatchDropped(t *testing.T) {
	d := newDocument(t, "https://app.example/")
	agent := &echoAgent{}
	d.Route("https://hub.example", agent)
	ch, _ := collect(d)

	f, _ := d.Embed(context.Background(), "hub", "https://hub.example/")
	next(t, ch)

	if err := f.Window().PostMessage("ping", "https://other.example"); err != nil {
		t.Fatalf("PostMessage() error = %v", err)
	}
	_ = f.Window().PostMessage("pong", "*")

	if ev := next(t, ch); ev.Data != "echo:pong" {
		t.Errorf("first reply = %q, want echo:pong", ev.Data)
	}
}

func TestDocument_LookupAndDetach(t *testing.T) {
	d := newDocument(t, "https://app.example/")

	if _, ok := d.Lookup("hub"); ok {
		t.Fatal("Lookup() found frame before embed")
	}
	f, _ := d.Embed(context.Background(), "hub", "https://hub.example/")

	got, ok := d.Lookup("hub")
	if !ok || got != f {
		t.Fatalf("Lookup() = %v, %v", got, ok)
	}

	if _, err := d.Embed(context.Background(), "hub", "https://hub.example/"); !errors.Is(err, ErrFrameExists) {
		t.Errorf("second Embed() error = %v, want ErrFrameExists", err)
	}

	if err := f.Detach(); err != nil {
		t.Fatalf("Detach() error = %v", err)
	}
	if err := f.Detach(); err != nil {
		t.Fatalf("second Detach() error = %v", err)
	}
	if f.Window() != nil {
		t.Error("Window() not nil after detach")
	}
	if _, ok := d.Lookup("hub"); ok {
		t.Error("Lookup() found detached frame")
	}
	if d.Frames() != 0 {
		t.Errorf("Frames() = %d, want 0", d.Frames())
	}
}

func TestDocument_SubscriptionRelease(t *testing.T) {
	d := newDocument(t, "https://app.example/")
	_, sub := collect(d)

	if d.Listeners() != 1 {
		t.Fatalf("Listeners() = %d, want 1", d.Listeners())
	}
	sub.Release()
	sub.Release()
	if d.Listeners() != 0 {
		t.Errorf("Listeners() = %d after release, want 0", d.Listeners())
	}
}

func TestDocument_OrderedDelivery(t *testing.T) {
	d := newDocument(t, "https://app.example/")
	d.Route("https://hub.example", &echoAgent{})
	ch := make(chan ports.MessageEvent, 128)
	d.Listen(func(ev ports.MessageEvent) { ch <- ev })

	f, _ := d.Embed(context.Background(), "hub", "https://hub.example/")
	next(t, ch)

	w := f.Window()
	msgs := []string{"a", "b", "c", "d", "e"}
	for _, m := range msgs {
		_ = w.PostMessage(m, "https://hub.example")
	}
	for _, m := range msgs {
		if ev := next(t, ch); ev.Data != "echo:"+m {
			t.Errorf("got %q, want echo:%s", ev.Data, m)
		}
	}
}

func TestDocument_ClosedRejectsEmbed(t *testing.T) {
	d, err := New("https://app.example/")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	d.Close()
	d.Close()

	if _, err := d.Embed(context.Background(), "hub", "https://hub.example/"); !errors.Is(err, ErrDocumentClosed) {
		t.Errorf("Embed() error = %v, want ErrDocumentClosed", err)
	}
}

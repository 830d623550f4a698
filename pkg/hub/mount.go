package hub

import (
	"context"

	"github.com/bft-labs/xstore/pkg/origin"
	"github.com/bft-labs/xstore/pkg/page"
)

// pageAgent runs a Hub inside frames of an in-process document.
type pageAgent struct {
	hub *Hub
}

func (a pageAgent) Load(reply func(string)) {
	reply(a.hub.Greeting(context.Background()))
}

func (a pageAgent) Receive(data, eventOrigin string, reply func(string)) {
	if out, ok := a.hub.Handle(context.Background(), eventOrigin, data); ok {
		reply(out)
	}
}

// Mount serves h to every frame doc embeds at hubURL's origin and returns
// that origin.
func Mount(doc *page.Document, hubURL string, h *Hub) string {
	o := origin.Resolve(hubURL, doc.Location())
	doc.Route(o, pageAgent{hub: h})
	return o
}

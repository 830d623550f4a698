// Package page provides an in-process document that hosts xstore clients and
// hub agents without a browser.
//
// A [Document] plays the role of the embedding window: it implements both
// ports.Listener and ports.Embedder, resolves frame origins against its own
// location, and delivers every message from one event-loop goroutine so that
// handlers never run concurrently with each other.
//
//	doc, _ := page.New("https://app.example/index.html")
//	defer doc.Close()
//	hub.Mount(doc, "https://hub.example/hub.html", h)
//	client, _ := xstore.New(ctx, xstore.Config{HubURL: "https://hub.example/hub.html"},
//		xstore.WithHost(doc))
package page

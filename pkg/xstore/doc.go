// Package xstore is a client for storage shared across origins.
//
// A Client embeds a hub document served from a single origin and exchanges
// JSON messages with it. The hub owns the storage and decides, per requesting
// origin, which operations are allowed. Every client can therefore read and
// write the same keys regardless of the origin it runs under.
//
// The host environment is abstracted by two contracts: an Embedder that
// creates or finds the hub frame, and a Listener that delivers inbound
// messages. Two hosts ship with this module: page.Document, an in-process
// document, and wsframe.Document, which reaches a hub over a websocket.
//
// Basic usage:
//
//	doc, _ := wsframe.New("https://app.example/")
//	client, err := xstore.New(ctx, xstore.Config{
//	    HubURL: "https://hub.example/hub",
//	}, xstore.WithHost(doc))
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	if err := client.OnConnect(ctx); err != nil {
//	    return err
//	}
//	if err := client.Set(ctx, "theme", "dark"); err != nil {
//	    return err
//	}
//	v, err := client.Get(ctx, "theme")
//
// Operations may be issued before the handshake completes. Each one fails
// with ErrRequestTimeout if no response arrives within Config.Timeout.
// Errors raised by the hub, such as a permission denial, are returned as
// *RemoteError.
package xstore

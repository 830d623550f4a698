package xstore_test

import (
	"context"
	"fmt"

	"github.com/bft-labs/xstore/pkg/hub"
	"github.com/bft-labs/xstore/pkg/hub/store"
	"github.com/bft-labs/xstore/pkg/page"
	"github.com/bft-labs/xstore/pkg/xstore"
)

func Example() {
	ctx := context.Background()

	doc, err := page.New("https://app.example/")
	if err != nil {
		panic(err)
	}
	defer doc.Close()

	st := store.NewMemory()
	defer st.Close()
	hub.Mount(doc, "https://hub.example/hub.html", hub.New(st, hub.AllowAll()))

	client, err := xstore.New(ctx, xstore.Config{
		HubURL: "https://hub.example/hub.html",
	}, xstore.WithHost(doc))
	if err != nil {
		panic(err)
	}
	defer client.Close()

	if err := client.OnConnect(ctx); err != nil {
		panic(err)
	}
	if err := client.Set(ctx, "theme", "dark"); err != nil {
		panic(err)
	}
	v, err := client.Get(ctx, "theme")
	if err != nil {
		panic(err)
	}
	fmt.Println(v.String, v.Valid)
	// Output: dark true
}

/*
Package weft is a headless dataflow node-graph engine.

Nodes own typed input and output properties. Connecting an output to an
input pushes values downstream as they change, through whatever transform
the receiving node attaches. The engine validates connections, propagates
values synchronously and serializes graphs to documents that keep every
identifier and reference intact.

# Concept

A graph is a session context: it owns the identity registry, the value type
rules and the lifecycle hooks for every node created in it. Rendering,
gestures and the editor shell are the host's business; the engine exposes
the hooks they need (position and size notifications, value notifications,
connect/disconnect/validate) and stays out of the way.

The Editor type is the convenience entry point. It pairs graphs with a
document store, a node catalog and optional at-rest encryption:

	package main

	import (
		"context"
		"log"

		"github.com/aretw0/weft"
		"github.com/aretw0/weft/pkg/catalog"
		"github.com/aretw0/weft/pkg/domain"
	)

	func main() {
		ed, err := weft.New()
		if err != nil {
			log.Fatal(err)
		}

		ctx := context.Background()
		err = ed.Update(ctx, "demo", func(g *domain.Graph) error {
			_, err := ed.Catalog().Instantiate(g, catalog.KindAdd)
			return err
		})
		if err != nil {
			log.Fatal(err)
		}
	}

Lower-level packages can be used on their own: pkg/domain for the graph
model, pkg/codec for documents, pkg/dsl for building graphs in code and
pkg/adapters/http for serving a store over HTTP.
*/
package weft

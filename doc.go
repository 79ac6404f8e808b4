// Package graphwalk runs lazy traversals over property graphs.
//
// The traversal engine lives in pkg/traversal; this package ties it to a
// graph accessor, configuration defaults, monitoring and tracing.
//
// # Basic Usage
//
//	graph := driver.NewMemoryGraph()
//	// ... load vertices and edges, or open a backend with driver.Open
//
//	client, err := graphwalk.NewClient(graph, nil, logger)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
//	desc := traversal.New().
//		BreadthFirst().
//		Expand(traversal.ForTypes(types.Outgoing, "KNOWS")).
//		Evaluator(traversal.ToDepth(2))
//
//	tr, err := client.Traverse(ctx, desc, "alice")
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer tr.Close()
//	for tr.Next() {
//		fmt.Println(tr.Path())
//	}
//
// # Descriptions from options
//
// Callers that receive traversal settings as data, such as the HTTP server
// and the CLI, build descriptions with Client.NewDescription:
//
//	desc, err := client.NewDescription(graphwalk.TraversalOptions{
//		Order:      "bfs",
//		Uniqueness: "node-path",
//		Direction:  "both",
//		EdgeTypes:  []string{"KNOWS"},
//		MaxDepth:   graphwalk.Depth(3),
//	})
//
// Empty options fall back to the client's configured traversal defaults.
//
// # Monitoring
//
// A monitor.Registry set on the client Config receives the lifecycle
// events of every traversal started through the client. Each execution has
// a uuid execution id, carried on its events, its OpenTelemetry span and
// the context handed to the graph accessor.
package graphwalk

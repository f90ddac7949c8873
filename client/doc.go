// Package client renders documents and images through a remote rendering
// service.
//
// # Building a Client
//
// Use [New] with the base URL of the service and functional options:
//
//	c, err := client.New("http://localhost:3000",
//		client.WithTimeout(30*time.Second),
//		client.WithLogger(logger),
//	)
//	defer c.Close()
//
// # Rendering
//
// [Client.RenderDocumentBytes] and [Client.RenderImageBytes] return the
// rendered bytes directly:
//
//	pdf, err := c.RenderDocumentBytes(ctx, config.NewDocument(), "<h1>Invoice</h1>")
//
// [Client.RenderDocument] and [Client.RenderImage] stream the result into a
// sink. By default a fresh in-memory [sink.Buffer] is used and the
// connection is released afterwards. [WithSink] appends the result to any
// [io.WriteSeeker] at its current position, and [WithKeepAlive] keeps the
// connection open for the next call to the same route:
//
//	f, _ := os.Create("report.pdf")
//	_, err := c.RenderDocument(ctx, cfg, html,
//		client.WithSink(f),
//		client.WithKeepAlive(),
//	)
//
// A Client holds at most one connection. Rendering on another route
// releases it and opens a new one. A Client is not safe for concurrent use.
package client

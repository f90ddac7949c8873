// Package conn implements the transport used to talk to the rendering
// service: a connection bound to one target URL that posts a JSON payload
// and streams the binary response into a caller-owned sink.
//
// # Lifecycle
//
// A [Conn] is opened with [New], fed with [Conn.Payload], executed with
// [Conn.Make] and released with [Conn.Done]:
//
//	c, err := conn.New("http://localhost:3000/document", 10*time.Second)
//	if err != nil { ... }
//	defer c.Done()
//
//	if err := c.Payload(cfg, "<html></html>"); err != nil { ... }
//	if err := c.Make(ctx, file); err != nil { ... }
//
// Payload and Make may be repeated on the same Conn; consecutive requests
// reuse the underlying keep-alive connection. After Done every method
// returns [errs.ErrConnectionInactive].
//
// # Sinks
//
// Make writes the response starting at the sink's current position and
// seeks the sink back to that position once the transfer succeeds, so the
// caller can read the result right away or keep appending at its own
// offsets. A sink write failure aborts the transfer with
// [errs.CodeWrite].
package conn

// Package server runs the rendering stub over HTTP and stops it
// gracefully.
//
//	srv := server.New(svc, server.WithAddr("127.0.0.1:0"))
//	addr, err := srv.Listen()
//	...
//	err = srv.Run(ctx)
package server

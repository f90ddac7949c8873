// Package printer renders HTML into PDF documents and images through a
// remote rendering service.
package printer

import (
	"github.com/adamwoolhether/printer/client"
)

// NewClient instantiates a new *Client bound to the service at base with
// the provided options. If not specified, requests time out after
// [client.DefaultTimeout].
func NewClient(base string, opts ...client.Option) (*client.Client, error) {
	return client.New(base, opts...)
}

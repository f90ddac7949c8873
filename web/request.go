package web

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// MaxPayloadSize caps the body accepted by [Decode].
const MaxPayloadSize = 8 << 20 // 8MB

// Decode reads a JSON render payload from r into val and checks its
// validation tags. Unknown fields and bodies over [MaxPayloadSize] are
// rejected.
func Decode[T any](r *http.Request, val *T) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, MaxPayloadSize))
	dec.DisallowUnknownFields()

	if err := dec.Decode(val); err != nil {
		return fmt.Errorf("decode: %w", err)
	}

	return Validate(val)
}

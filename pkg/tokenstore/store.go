// Package tokenstore persists the access and refresh tokens between runs.
package tokenstore

import "errors"

// Fixed token names.
const (
	Access  = "access"
	Refresh = "refresh"
)

// ErrUnknownName is returned for a token name other than Access or Refresh.
var ErrUnknownName = errors.New("tokenstore: unknown token name")

// Store holds named tokens. Implementations are safe for concurrent use;
// the last write wins. Expiry is not enforced here.
type Store interface {
	Get(name string) (string, bool)
	Set(name, token string) error
	Clear(name string) error
}

func checkName(name string) error {
	if name != Access && name != Refresh {
		return ErrUnknownName
	}
	return nil
}

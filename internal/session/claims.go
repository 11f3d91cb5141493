package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/golang-jwt/jwt/v5"

	"github.com/naveenspark/marquee/pkg/domain"
)

// ErrMalformedToken is returned when an access token cannot be decoded
// into an identity.
var ErrMalformedToken = errors.New("session: malformed access token")

// Decode reads the identity claims of an access token. The signature is
// not verified and expiry is not checked; the backend is the judge of
// validity.
func Decode(raw string) (*domain.Identity, error) {
	tok, _, err := jwt.NewParser().ParseUnverified(raw, jwt.MapClaims{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected claims type", ErrMalformedToken)
	}

	id := &domain.Identity{}
	id.Email, _ = claims["email"].(string)
	id.Username, _ = claims["username"].(string)
	if id.Username == "" {
		id.Username = id.Email
	}
	id.ID = numericClaim(claims["user_id"])
	if id.ID == 0 {
		id.ID = numericClaim(claims["sub"])
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		id.ExpiresAt = exp.Time
	}

	if id.Username == "" && id.ID == 0 {
		return nil, fmt.Errorf("%w: no identity claims", ErrMalformedToken)
	}
	return id, nil
}

func numericClaim(v any) int64 {
	switch n := v.(type) {
	case float64:
		return int64(n)
	case json.Number:
		i, _ := n.Int64()
		return i
	case string:
		i, _ := strconv.ParseInt(n, 10, 64)
		return i
	}
	return 0
}

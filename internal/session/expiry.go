package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// credentialExpiry reads the exp claim of a JWT credential without verifying
// it; the backend owns verification. Opaque or exp-less credentials get
// fallback.
func credentialExpiry(credential string, fallback time.Time) time.Time {
	tok, _, err := jwt.NewParser().ParseUnverified(credential, jwt.MapClaims{})
	if err != nil {
		return fallback
	}
	exp, err := tok.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return fallback
	}
	return exp.Time
}

package session

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the fields the portal embeds in its bearer tokens. The backend
// signs with HS256 and 24h expiry; auth_id and username are always present,
// email and role only on some token variants.
type Claims struct {
	AuthID   int64
	Username string
	Email    string
	Role     string
	Exp      time.Time
}

// IsAdmin reports whether the claims carry the admin role.
func (c Claims) IsAdmin() bool { return c.Role == "admin" }

// Expired reports whether the token was expired at the given instant.
// Tokens without an exp claim never expire client-side.
func (c Claims) Expired(now time.Time) bool {
	return !c.Exp.IsZero() && !c.Exp.After(now)
}

// DecodeClaims extracts claims from a token without verifying its signature.
// The client never holds the signing secret; the server is the authority and
// rejects tampered tokens on every call. A malformed token yields zero
// claims, not an error, so the caller can treat it as "no session".
func DecodeClaims(token string) Claims {
	var out Claims
	parser := jwt.NewParser()
	parsed, _, err := parser.ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return out
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return out
	}

	out.AuthID = claimInt(claims, "auth_id")
	out.Username = claimString(claims, "username")
	out.Email = claimString(claims, "email")
	out.Role = claimString(claims, "role")
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.Exp = exp.Time
	}
	return out
}

func claimString(claims jwt.MapClaims, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}

func claimInt(claims jwt.MapClaims, key string) int64 {
	switch v := claims[key].(type) {
	case float64:
		return int64(v)
	case string:
		n, _ := strconv.ParseInt(v, 10, 64)
		return n
	default:
		return 0
	}
}

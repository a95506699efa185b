package auth

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/atkinsj/dumpbin/internal/models"
)

// Anything shorter than this cannot carry "Bearer " plus a compact JWS, so
// it is rejected before any verification is attempted.
const minAuthHeaderLen = 20

// Length of the literal "Bearer " prefix.
const bearerPrefixLen = 7

// UserFinder is the lookup capability the gate needs to resolve a token
// subject into an account.
type UserFinder interface {
	GetUserByID(id int64) (models.User, error)
}

// Gate extracts, verifies, and resolves a bearer token from request headers
// into an authenticated user.
type Gate struct {
	codec *Codec
	users UserFinder
}

// NewGate creates a Gate using the given codec and user lookup.
func NewGate(codec *Codec, users UserFinder) *Gate {
	return &Gate{codec: codec, users: users}
}

// Authenticate verifies the Authorization header and resolves it to a user.
//
// It returns models.ErrSessionExpired for a well-formed but expired token,
// and models.ErrUnauthenticated for every other failure. Unless
// preservePassword is set, the returned copy has its credential cleared so
// it can be serialized without leaking the hash.
func (g *Gate) Authenticate(header http.Header, preservePassword bool) (models.User, error) {
	authStr := header.Get("Authorization")
	if authStr == "" {
		return models.User{}, models.ErrUnauthenticated
	}

	if len(authStr) < minAuthHeaderLen {
		return models.User{}, models.ErrUnauthenticated
	}

	// Crop off "Bearer " unconditionally. A header using another scheme
	// leaves behind a string that fails verification below.
	authStr = authStr[bearerPrefixLen:]

	claims, err := g.codec.Verify(authStr)
	if err != nil {
		if errors.Is(err, ErrTokenExpired) {
			return models.User{}, models.ErrSessionExpired
		}
		return models.User{}, models.ErrUnauthenticated
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return models.User{}, models.ErrUnauthenticated
	}

	user, err := g.users.GetUserByID(userID)
	if err != nil {
		return models.User{}, models.ErrUnauthenticated
	}

	if !preservePassword {
		user.PasswordHash = ""
	}

	return user, nil
}

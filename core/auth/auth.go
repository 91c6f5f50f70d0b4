// Package auth issues & validates the session tokens that gate every protected operation.
package auth

import (
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/pkg/errors"

	"github.com/PARTHSHARMA4010/ClarityAI/core"
	"github.com/PARTHSHARMA4010/ClarityAI/core/user"
)

var (
	// errors
	ErrUnauthenticated = errors.New("user not authenticated")
	ErrForbidden       = errors.New("permission denied")

	signingMethod = jwt.SigningMethodHS256
)

// Identity is the user information carried by a token.
type Identity struct {
	ID        string `json:"id"`
	Role      string `json:"role"`
	TeacherID string `json:"teacherId,omitempty"`
}

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	User Identity `json:"user"`
}

func (c Claims) UserID() string { return c.User.ID }

func (c Claims) IsTeacher() bool { return c.User.Role == user.RoleTeacher }

func (c Claims) IsStudent() bool { return c.User.Role == user.RoleStudent }

// Guard issues signed session tokens and authorizes raw tokens.
type Guard struct {
	appName    string
	secretKey  []byte
	expiration time.Duration
	nowFunc    func() time.Time
}

func NewGuard(conf *core.Config) *Guard {
	return &Guard{
		appName:    conf.AppName,
		secretKey:  []byte(conf.SecretKey),
		expiration: conf.Server.JWTExpirationDelta,
		nowFunc:    time.Now,
	}
}

// NewClaims returns the claims of a fresh session for usr.
func (g *Guard) NewClaims(usr user.User) Claims {
	now := g.nowFunc()
	idt := Identity{ID: usr.ID, Role: usr.Role}
	if usr.IsStudent() {
		idt.TeacherID = usr.TeacherID
	}
	return Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    g.appName,
			Subject:   usr.ID,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(g.expiration).Unix(),
		},
		User: idt,
	}
}

// IssueToken generates a signed JWT token string for usr.
func (g *Guard) IssueToken(usr user.User) (string, error) {
	token := jwt.NewWithClaims(signingMethod, g.NewClaims(usr))
	ss, err := token.SignedString(g.secretKey)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

// Authorize decodes & validates rawToken.
// It fails with ErrUnauthenticated if the token is absent, malformed, badly signed or expired,
// and with ErrForbidden if requiredRole is given and the token's role does not match.
func (g *Guard) Authorize(rawToken string, requiredRole ...string) (Claims, error) {
	rawToken = strings.TrimSpace(rawToken)
	if rawToken == "" {
		return Claims{}, ErrUnauthenticated
	}

	var claims Claims
	parser := jwt.Parser{ValidMethods: []string{signingMethod.Alg()}, SkipClaimsValidation: true}
	token, err := parser.ParseWithClaims(rawToken, &claims, func(*jwt.Token) (interface{}, error) {
		return g.secretKey, nil
	})
	if err != nil || !token.Valid {
		return Claims{}, ErrUnauthenticated
	}
	if !claims.VerifyExpiresAt(g.nowFunc().Unix(), true) || claims.User.ID == "" {
		return Claims{}, ErrUnauthenticated
	}

	if len(requiredRole) > 0 && requiredRole[0] != "" && claims.User.Role != requiredRole[0] {
		return Claims{}, ErrForbidden
	}
	return claims, nil
}

// Package session holds the portal's only client-visible state: who is
// signed in and the bearer token the backend issued for them. The session
// lives in a signed cookie so the portal itself stays stateless; presence of
// a session means "believed authenticated" — the backend re-validates the
// token on every call.
package session

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// CookieName is the single cookie the portal persists across requests.
	CookieName = "rheumacare_session"

	RoleDoctor = "doctor"
	RoleAdmin  = "admin"
)

// ErrNoSession is returned by Load when no usable session cookie is present:
// missing, expired, or failing signature verification.
var ErrNoSession = errors.New("no session")

// Session is the transient copy of the backend's login response.
type Session struct {
	Token    string `json:"token"`
	User     string `json:"user"`
	Role     string `json:"role"`
	DoctorID string `json:"doctor_id,omitempty"`
	Location string `json:"location,omitempty"`
}

// IsAdmin reports whether the signed-in user holds the admin role.
func (s *Session) IsAdmin() bool {
	return s.Role == RoleAdmin
}

// Store is the session lifecycle contract injected into route guards, the
// auth handlers and the auth-failure middleware. It is mutated only by
// login, logout and the global 401 teardown; everything else reads.
type Store interface {
	Load(r *http.Request) (*Session, error)
	Save(w http.ResponseWriter, s *Session) error
	Clear(w http.ResponseWriter)
}

type sessionClaims struct {
	Session
	jwt.RegisteredClaims
}

// CookieStore signs the session into an HS256 JWT cookie. Tampering breaks
// the signature and the session simply vanishes.
type CookieStore struct {
	secret []byte
	ttl    time.Duration
	secure bool
}

// NewCookieStore creates a store signing with secret. secure controls the
// cookie's Secure flag and should be true whenever the portal serves TLS.
func NewCookieStore(secret []byte, ttl time.Duration, secure bool) *CookieStore {
	return &CookieStore{secret: secret, ttl: ttl, secure: secure}
}

func (cs *CookieStore) Load(r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return nil, ErrNoSession
	}

	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(cookie.Value, claims, func(t *jwt.Token) (interface{}, error) {
		return cs.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return nil, ErrNoSession
	}
	if claims.Session.Token == "" {
		return nil, ErrNoSession
	}
	return &claims.Session, nil
}

func (cs *CookieStore) Save(w http.ResponseWriter, s *Session) error {
	now := time.Now()
	claims := &sessionClaims{
		Session: *s,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cs.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(cs.secret)
	if err != nil {
		return fmt.Errorf("sign session: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    signed,
		Path:     "/",
		MaxAge:   int(cs.ttl.Seconds()),
		HttpOnly: true,
		Secure:   cs.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (cs *CookieStore) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   cs.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

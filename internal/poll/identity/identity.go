// Package identity derives the anonymous actor identity used for vote
// de-duplication and rate limiting. Only salted hashes leave this package;
// raw addresses and headers are never stored.
package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mssola/useragent"

	"pollcast/pkg/platform/middleware/metadata"
	"pollcast/pkg/requestcontext"
)

// CookieName is the long-lived visitor token cookie.
const CookieName = "pollcast_vid"

const cookieMaxAge = 365 * 24 * time.Hour

// Identity is the per-request anonymous actor.
type Identity struct {
	OriginHash      string
	FingerprintHash string
	VisitorID       string
}

// Resolver turns request signals into an Identity.
type Resolver struct {
	salt         string
	cookieSecure bool
	proxies      *metadata.TrustedProxies
	newToken     func() string
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithSecureCookie marks the visitor cookie Secure.
func WithSecureCookie(secure bool) Option {
	return func(r *Resolver) {
		r.cookieSecure = secure
	}
}

// WithTrustedProxies lets forwarding headers from these peers name the origin.
func WithTrustedProxies(proxies *metadata.TrustedProxies) Option {
	return func(r *Resolver) {
		r.proxies = proxies
	}
}

// WithTokenSource overrides visitor token generation.
func WithTokenSource(fn func() string) Option {
	return func(r *Resolver) {
		r.newToken = fn
	}
}

// New creates a Resolver. The salt is required: unsalted hashes of an
// address space as small as IPv4 are trivially reversible.
func New(salt string, opts ...Option) (*Resolver, error) {
	if salt == "" {
		return nil, errors.New("identity salt is required")
	}
	r := &Resolver{salt: salt, newToken: uuid.NewString}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Resolve derives the identity for r, issuing a visitor cookie on w when the
// request carries none. It never fails.
func (res *Resolver) Resolve(w http.ResponseWriter, r *http.Request) Identity {
	token := visitorToken(r)
	if token == "" {
		token = res.newToken()
		http.SetCookie(w, &http.Cookie{
			Name:     CookieName,
			Value:    token,
			Path:     "/",
			MaxAge:   int(cookieMaxAge / time.Second),
			HttpOnly: true,
			Secure:   res.cookieSecure,
			SameSite: http.SameSiteLaxMode,
		})
	}

	originHash := res.hash("ip", res.proxies.ClientIP(r))
	fingerprintHash := res.hash("fp",
		originHash,
		coarseUserAgent(r.UserAgent()),
		primaryLanguage(r.Header.Get("Accept-Language")),
		r.Header.Get("Sec-CH-UA"),
		r.Header.Get("Sec-CH-UA-Platform"),
		r.Header.Get("Sec-CH-UA-Mobile"),
		token,
	)
	return Identity{OriginHash: originHash, FingerprintHash: fingerprintHash, VisitorID: token}
}

// Middleware resolves the identity once and stores it in the request context.
func (res *Resolver) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := res.Resolve(w, r)
		ctx := requestcontext.WithVisitorID(r.Context(), id.VisitorID)
		ctx = requestcontext.WithActorHashes(ctx, id.OriginHash, id.FingerprintHash)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// FromContext rebuilds the identity stored by Middleware.
func FromContext(r *http.Request) Identity {
	ctx := r.Context()
	origin, fingerprint := requestcontext.ActorHashes(ctx)
	return Identity{OriginHash: origin, FingerprintHash: fingerprint, VisitorID: requestcontext.VisitorID(ctx)}
}

func (res *Resolver) hash(namespace string, parts ...string) string {
	h := sha256.New()
	h.Write([]byte(res.salt + "|" + namespace + "|" + strings.Join(parts, "|")))
	return hex.EncodeToString(h.Sum(nil))
}

func visitorToken(r *http.Request) string {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}
	if _, err := uuid.Parse(c.Value); err != nil {
		return ""
	}
	return c.Value
}

// coarseUserAgent keeps browser family, major version, OS and the mobile
// flag. Minor versions change too often to be useful as a signal.
func coarseUserAgent(raw string) string {
	if raw == "" {
		return ""
	}
	ua := useragent.New(raw)
	name, version := ua.Browser()
	major, _, _ := strings.Cut(version, ".")
	mobile := "0"
	if ua.Mobile() {
		mobile = "1"
	}
	return name + "/" + major + ";" + ua.OS() + ";" + mobile
}

func primaryLanguage(header string) string {
	first, _, _ := strings.Cut(header, ",")
	tag, _, _ := strings.Cut(first, ";")
	return strings.ToLower(strings.TrimSpace(tag))
}

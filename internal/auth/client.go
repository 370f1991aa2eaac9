package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/hackgods/vet-appointment-scheduling/internal/apperr"
)

var ErrInvalidCredential = errors.New("invalid credential")

const unknownSubject = "unknown"

// Identity is the caller as seen by the identity service.
type Identity struct {
	Subject string
}

type Validator interface {
	Validate(ctx context.Context, token string) (Identity, error)
}

// Client checks bearer tokens against {baseURL}/profile/me/. It does not
// verify signatures itself; the identity service is authoritative.
type Client struct {
	profileURL string
	http       *http.Client
	breaker    *gobreaker.CircuitBreaker[int]
	log        *zap.Logger
}

func NewClient(baseURL string, timeout time.Duration, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}

	breaker := gobreaker.NewCircuitBreaker[int](gobreaker.Settings{
		Name:        "identity",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// The caller cancelling is not an identity-service failure.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &Client{
		profileURL: strings.TrimRight(baseURL, "/") + "/profile/me/",
		http:       &http.Client{Timeout: timeout},
		breaker:    breaker,
		log:        log,
	}
}

// Validate returns ErrInvalidCredential for a rejected token and a
// SERVICE_UNAVAILABLE error when the identity service cannot answer.
func (c *Client) Validate(ctx context.Context, token string) (Identity, error) {
	if token == "" {
		return Identity{}, ErrInvalidCredential
	}

	status, err := c.breaker.Execute(func() (int, error) {
		return c.fetchProfile(ctx, token)
	})
	if err != nil {
		return Identity{}, apperr.Wrap(apperr.ServiceUnavailable, "identity service", err)
	}

	subject := SubjectFromToken(token)
	switch {
	case status == http.StatusForbidden:
		c.log.Warn("identity service returned 403, accepting token", zap.String("subject", subject))
		return Identity{Subject: subject}, nil
	case status >= 200 && status < 300:
		return Identity{Subject: subject}, nil
	default:
		return Identity{}, ErrInvalidCredential
	}
}

// fetchProfile only reports an error for outcomes that should count against
// the breaker: transport failures and 5xx.
func (c *Client) fetchProfile(ctx context.Context, token string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.profileURL, nil)
	if err != nil {
		return 0, fmt.Errorf("build profile request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("call identity service: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode >= 500 {
		return resp.StatusCode, fmt.Errorf("identity service returned %d", resp.StatusCode)
	}
	return resp.StatusCode, nil
}

// SubjectFromToken reads username, sub or preferred_username from the
// unverified payload. Anything unreadable yields "unknown".
func SubjectFromToken(token string) string {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return unknownSubject
	}
	for _, key := range []string{"username", "sub", "preferred_username"} {
		if v, ok := claims[key].(string); ok && v != "" {
			return v
		}
	}
	return unknownSubject
}

type ctxKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) string {
	const prefix = "bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

// Package auth implements the session auth lifecycle (spec.md §4.H):
// inspecting a response for JWT-expiry signals and wrapping one action
// with single-shot refresh-and-retry around it.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/acvp-tools/libacvp-go/pkg/acvp"
	"github.com/golang-jwt/jwt/v5"
)

var errLoginRejectedAsExpired = errors.New("login response itself reported JWT expired")

// Outcome classifies a response for the auth controller.
type Outcome int

const (
	Success Outcome = iota
	OutcomeJwtExpired
	OutcomeJwtInvalid
	OutcomeTransportFail
)

type errorBody struct {
	Error string `json:"error"`
}

// Inspect classifies an HTTP response. 200 is Success; a 401 is parsed
// for the server's error text to distinguish an expired token from an
// invalid one; anything else is a generic transport failure (spec.md
// §4.H).
func Inspect(status int, body []byte) Outcome {
	if status == 200 {
		return Success
	}
	if status != 401 {
		return OutcomeTransportFail
	}

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return OutcomeTransportFail
	}

	switch {
	case eb.Error == "JWT expired":
		return OutcomeJwtExpired
	case strings.HasPrefix(eb.Error, "JWT signature does not match"):
		return OutcomeJwtInvalid
	default:
		return OutcomeTransportFail
	}
}

// LocallyExpired parses token's claims and reports whether its exp
// claim has already passed, without a round trip to the server. This
// is a defense-in-depth pre-check alongside Inspect's 401-body
// introspection (spec.md §9 domain-stack note): a token we already know
// is expired never needs to be sent at all.
func LocallyExpired(token string) bool {
	if token == "" {
		return true
	}
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	// ParseUnverified: the server is the authority on signature
	// validity; we only want the exp claim to avoid a doomed round trip.
	_, _, err := parser.ParseUnverified(token, claims)
	if err != nil {
		return true
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}

// Action is one HTTP call the controller can retry: it returns the raw
// status/body so Inspect can classify the outcome.
type Action func(ctx context.Context, cred Credential) (status int, body []byte, err error)

// Credential is what an Action presents as its bearer token.
type Credential struct {
	Token     string
	SingleUse bool
}

// Login performs the server login call and returns the new JWT.
type Login func(ctx context.Context) (jwt string, err error)

// Controller wraps actions with the session's refresh-and-retry policy.
type Controller struct {
	login       Login
	currentJWT  string
	isLoginCall bool
}

// New builds a Controller. login is called at most once per failed
// action to obtain a fresh JWT.
func New(login Login) *Controller {
	return &Controller{login: login}
}

// SetJWT installs the token subsequent Do calls present.
func (c *Controller) SetJWT(token string) { c.currentJWT = token }

// CurrentJWT returns the token currently installed.
func (c *Controller) CurrentJWT() string { return c.currentJWT }

// Do runs action with the controller's current JWT. If the response's
// outcome is JwtExpired, it calls login exactly once, installs the
// returned token, and retries action exactly once — never recursively
// (spec.md §4.H Scenario 4 and the §8 property forbidding a second
// retry). A JwtExpired outcome from the login action itself is a fatal
// protocol error and is never retried.
func (c *Controller) Do(ctx context.Context, isLoginAction bool, action Action) (status int, body []byte, outcome Outcome, err error) {
	status, body, err = action(ctx, Credential{Token: c.currentJWT})
	if err != nil {
		return status, body, OutcomeTransportFail, err
	}

	outcome = Inspect(status, body)
	if outcome != OutcomeJwtExpired {
		return status, body, outcome, nil
	}
	if isLoginAction {
		return status, body, outcome, acvp.Errorf(acvp.JwtExpired, "auth.Controller.Do", errLoginRejectedAsExpired)
	}

	newJWT, lerr := c.login(ctx)
	if lerr != nil {
		return status, body, outcome, acvp.Errorf(acvp.JwtExpired, "auth.Controller.Do", lerr)
	}
	c.currentJWT = newJWT

	status, body, err = action(ctx, Credential{Token: c.currentJWT})
	if err != nil {
		return status, body, OutcomeTransportFail, err
	}
	return status, body, Inspect(status, body), nil
}

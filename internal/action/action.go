// Package action is the uniform entry point every caller drives a
// session through (spec.md §4.J): Get/Post/PostPending/Put, each routed
// through the Transport and wrapped in the Auth Controller's
// refresh-and-retry so no caller re-implements that policy.
package action

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/acvp-tools/libacvp-go/internal/auth"
	"github.com/acvp-tools/libacvp-go/internal/transport"
	"github.com/acvp-tools/libacvp-go/pkg/acvp"
)

var errPendingTimedOut = errors.New("exceeded poll budget waiting for pending result")

// pendingBody is the shape a 202 response carries: a URL to poll
// instead of a Location header, matching how ACVP servers actually
// report pending results in the response body rather than HTTP headers.
type pendingBody struct {
	URL string `json:"url"`
}

func pendingLocation(body []byte) (string, bool) {
	var pb pendingBody
	if err := json.Unmarshal(body, &pb); err != nil || pb.URL == "" {
		return "", false
	}
	return pb.URL, true
}

// pendingPollInterval and pendingMaxPolls bound PostPending's polling
// loop: a vector-set submission that the server accepts but hasn't
// finished scoring comes back "pending" and must be re-fetched from the
// URL in the 202 response body, not resubmitted.
const (
	pendingPollInterval = 2 * time.Second
	pendingMaxPolls     = 150 // 5 minutes at the interval above
)

// Coordinator binds a Transport and an auth Controller for one session.
type Coordinator struct {
	transport    *transport.Transport
	ctrl         *auth.Controller
	pollInterval time.Duration
}

// New builds a Coordinator. login is the auth Controller's refresh hook.
func New(tr *transport.Transport, login auth.Login) *Coordinator {
	return &Coordinator{transport: tr, ctrl: auth.New(login), pollInterval: pendingPollInterval}
}

// NewWithPollInterval is New with an overridden pending-poll interval,
// for tests that would otherwise wait the full production interval.
func NewWithPollInterval(tr *transport.Transport, login auth.Login, interval time.Duration) *Coordinator {
	c := New(tr, login)
	c.pollInterval = interval
	return c
}

// SetJWT installs the session's current bearer token.
func (c *Coordinator) SetJWT(token string) { c.ctrl.SetJWT(token) }

// Get issues a GET with refresh-and-retry.
func (c *Coordinator) Get(ctx context.Context, url string) (int, []byte, error) {
	return c.run(ctx, false, func(ctx context.Context, cred auth.Credential) (int, []byte, error) {
		return c.transport.Get(ctx, url, transport.Credential{Token: cred.Token, SingleUse: cred.SingleUse})
	})
}

// Post issues a POST with refresh-and-retry. isLoginAction must be true
// for the login endpoint itself, so a JwtExpired outcome there is
// treated as fatal rather than triggering a recursive login.
func (c *Coordinator) Post(ctx context.Context, url string, body any, isLoginAction bool) (int, []byte, error) {
	return c.run(ctx, isLoginAction, func(ctx context.Context, cred auth.Credential) (int, []byte, error) {
		return c.transport.Post(ctx, url, body, transport.Credential{Token: cred.Token, SingleUse: cred.SingleUse})
	})
}

// Put issues a PUT with refresh-and-retry.
func (c *Coordinator) Put(ctx context.Context, url string, body any) (int, []byte, error) {
	return c.run(ctx, false, func(ctx context.Context, cred auth.Credential) (int, []byte, error) {
		return c.transport.Put(ctx, url, body, transport.Credential{Token: cred.Token, SingleUse: cred.SingleUse})
	})
}

// PostPending submits body and, if the server responds 202 with a
// body whose "url" field is set, polls that URL until it returns 200
// or the poll budget is exhausted.
func (c *Coordinator) PostPending(ctx context.Context, url string, body any) (int, []byte, error) {
	status, respBody, err := c.Post(ctx, url, body, false)
	if err != nil || status != 202 {
		return status, respBody, err
	}

	location, ok := pendingLocation(respBody)
	if !ok {
		return status, respBody, nil
	}

	for i := 0; i < pendingMaxPolls; i++ {
		select {
		case <-ctx.Done():
			return 0, nil, acvp.Errorf(acvp.TransportFail, "action.PostPending", ctx.Err())
		case <-time.After(c.pollInterval):
		}

		status, respBody, err = c.Get(ctx, location)
		if err != nil {
			return status, respBody, err
		}
		if status != 202 {
			return status, respBody, nil
		}
	}

	return 0, nil, acvp.Errorf(acvp.TransportFail, "action.PostPending", errPendingTimedOut)
}

func (c *Coordinator) run(ctx context.Context, isLoginAction bool, do func(context.Context, auth.Credential) (int, []byte, error)) (int, []byte, error) {
	status, body, _, err := c.ctrl.Do(ctx, isLoginAction, do)
	return status, body, err
}

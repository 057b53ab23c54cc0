package acvp

import (
	"sync"

	"github.com/acvp-tools/libacvp-go/pkg/acvp/envelope"
)

// DefaultMaxResponseBytes caps the response-accumulation buffer. Oversize
// responses fail the request rather than grow the buffer unbounded.
const DefaultMaxResponseBytes = 1 << 20 // 1 MiB

// Ctx is the process-wide handle carried through every call: server
// address, TLS material, the current session's auth state, and the
// response document presently under construction. Created once at
// startup and threaded through every subsequent call. Only the JWT
// accessors below take the lock; the other fields are plain fields
// (spec.md §5).
type Ctx struct {
	Host string
	Port int

	CAFile     string
	ClientCert string
	ClientKey  string

	JWT string
	// SingleUseJWT, when non-empty, is consumed by the next request in
	// place of JWT and cleared immediately after. Modeled as an
	// explicit Credential parameter at the transport call site rather
	// than mutable Ctx state that a verb reads implicitly (spec.md §9
	// Open Question resolution) — the field here is the holding slot a
	// caller drains into that parameter, not something the transport
	// reaches into directly.
	SingleUseJWT string

	MaxResponseBytes int

	UserAgent string

	SessionURL string

	// Building is the response document presently under construction,
	// non-nil only while a vector-set handler is assembling it.
	Building *envelope.Document

	DebugLevel int

	mu sync.Mutex
}

// New builds a Ctx with default bounds. Host/Port are required; callers
// set TLS/UA/session fields before first use.
func New(host string, port int) *Ctx {
	return &Ctx{
		Host:             host,
		Port:             port,
		MaxResponseBytes: DefaultMaxResponseBytes,
	}
}

// TakeSingleUseJWT drains and clears the single-use JWT slot, returning
// ("", false) if none was set. A caller drains the slot this way into the
// Credential it passes to the transport for one request (spec.md §4.G).
func (c *Ctx) TakeSingleUseJWT() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.SingleUseJWT == "" {
		return "", false
	}
	token := c.SingleUseJWT
	c.SingleUseJWT = ""
	return token, true
}

// SetJWT installs the regular bearer token used for subsequent requests
// until the next SetJWT call (e.g. after a login or a refresh).
func (c *Ctx) SetJWT(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.JWT = token
}

// CurrentJWT returns the regular bearer token, empty if none.
func (c *Ctx) CurrentJWT() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.JWT
}

package acvp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/acvp-tools/libacvp-go/pkg/acvp/envelope"
)

// Handler processes one fetched vector set for the algorithm it was
// registered against and returns the response document to submit.
type Handler interface {
	Handle(ctx context.Context, session *Ctx, vs json.RawMessage) (*envelope.Document, error)
}

// Capability describes a registered handler's advertised algorithm
// capability: enough for a caller to build the capability-registration
// payload the out-of-scope registration component needs (spec.md §1/§6
// leave the wire format unspecified; this is the seam).
type Capability struct {
	Algorithm string
	Revision  string
	Modes     []string
}

type registration struct {
	handler    Handler
	capability Capability
}

// Dispatcher routes an algorithm name to its registered Handler. The
// zero value is not usable; use NewDispatcher.
type Dispatcher struct {
	mu    sync.RWMutex
	table map[string]registration
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{table: make(map[string]registration)}
}

// Register associates algID with h and its advertised capability.
// Registering the same algID twice replaces the previous handler.
func (d *Dispatcher) Register(algID string, h Handler, cap Capability) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.table[algID] = registration{handler: h, capability: cap}
}

// Dispatch returns the Handler registered for algID. An unknown
// algorithm returns ErrUnsupportedOp before any buffer is allocated for
// it (spec.md §4.F Scenario 6) — the caller never gets far enough to
// build a SymTC for an algorithm nothing is registered for.
func (d *Dispatcher) Dispatch(algID string) (Handler, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	r, ok := d.table[algID]
	if !ok {
		return nil, Errorf(UnsupportedOp, "acvp.Dispatch", fmt.Errorf("no handler registered for %q", algID))
	}
	return r.handler, nil
}

// Capabilities returns every registered algorithm's Capability, in no
// particular order, for building a capability-registration payload.
func (d *Dispatcher) Capabilities() []Capability {
	d.mu.RLock()
	defer d.mu.RUnlock()
	caps := make([]Capability, 0, len(d.table))
	for _, r := range d.table {
		caps = append(caps, r.capability)
	}
	return caps
}

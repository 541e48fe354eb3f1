package access

import (
	"context"
	"net/http"
	"sync"

	"github.com/iliyamo/table-reservation/internal/model"
)

// State of an identity check.
type State int

const (
	Loading State = iota
	Resolved
)

func (s State) String() string {
	if s == Resolved {
		return "resolved"
	}
	return "loading"
}

// Check tracks one identity-check cycle.  It starts in Loading, where no
// decision is available, and moves to Resolved exactly once; the decision
// is then fixed until Reset is called for a new identity.
type Check struct {
	requireAdmin bool

	mu       sync.Mutex
	state    State
	decision Decision
	identity model.Identity
}

// NewCheck starts a check for an admin or a session-scoped route.
func NewCheck(requireAdmin bool) *Check {
	return &Check{requireAdmin: requireAdmin}
}

// Resolve settles the check for id.  Only the first call after NewCheck
// or Reset decides; later calls return the fixed decision and false.
func (c *Check) Resolve(id model.Identity) (Decision, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Resolved {
		return c.decision, false
	}
	c.identity = id
	c.decision = CanAccess(id, c.requireAdmin)
	c.state = Resolved
	return c.decision, true
}

// Evaluate resolves the viewer behind req with r and settles the check.
// On resolution failure the check stays in Loading.
func (c *Check) Evaluate(ctx context.Context, r Resolver, req *http.Request) (Decision, error) {
	id, err := r.Resolve(ctx, req)
	if err != nil {
		return Decision{}, err
	}
	d, _ := c.Resolve(id)
	return d, nil
}

// Decision returns the decision and true once resolved; while loading it
// returns false and callers must wait.
func (c *Check) Decision() (Decision, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Resolved {
		return Decision{}, false
	}
	return c.decision, true
}

// Identity returns the identity the check was resolved with.
func (c *Check) Identity() (model.Identity, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.identity, c.state == Resolved
}

// State returns the current state.
func (c *Check) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Reset returns the check to Loading for a new identity cycle.
func (c *Check) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = Loading
	c.decision = Decision{}
	c.identity = model.Identity{}
}

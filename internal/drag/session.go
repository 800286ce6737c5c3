package drag

import (
	"fmt"
	"sync"

	"github.com/pkordes/dayplanner/internal/domain"
)

// Session is the in-progress drag: which list the card came from and which
// item it is. It is passed explicitly to every resolution step.
type Session struct {
	Source SourceKind `json:"source"`
	ItemID string     `json:"itemId"`
}

// Validate checks that the session names a known source and an item.
func (s Session) Validate() error {
	if s.Source != SourcePotential && s.Source != SourceScheduled {
		return fmt.Errorf("%w: unknown drag source %q", domain.ErrValidation, s.Source)
	}
	if s.ItemID == "" {
		return fmt.Errorf("%w: drag session has no item", domain.ErrValidation)
	}
	return nil
}

func (s Session) isSelf(t Target) bool {
	return t.Kind == TargetItem && t.ItemID == s.ItemID
}

// Controller holds at most one drag session. It is Idle until Start, and
// returns to Idle on Drop or Cancel.
type Controller struct {
	Resolver Resolver

	mu     sync.Mutex
	active *Session
}

// Start begins a drag. It fails with domain.ErrDragInProgress while another
// drag is active.
func (c *Controller) Start(s Session) error {
	if err := s.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active != nil {
		return domain.ErrDragInProgress
	}
	c.active = &s
	return nil
}

// Active returns the current session, if any.
func (c *Controller) Active() (Session, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil {
		return Session{}, false
	}
	return *c.active, true
}

// Cancel ends the active drag without a drop.
func (c *Controller) Cancel() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil {
		return domain.ErrNoDrag
	}
	c.active = nil
	return nil
}

// Drop ends the active drag and resolves the target under p. The session
// ends even when nothing is hit; that case returns domain.ErrInvalidDrop
// and must be treated as a no-op.
func (c *Controller) Drop(p Point, candidates []Target) (Session, Target, error) {
	c.mu.Lock()
	s := c.active
	c.active = nil
	c.mu.Unlock()

	if s == nil {
		return Session{}, Target{}, domain.ErrNoDrag
	}
	t, ok := c.Resolver.Resolve(*s, p, candidates)
	if !ok {
		return *s, Target{}, fmt.Errorf("%w: no target under pointer", domain.ErrInvalidDrop)
	}
	return *s, t, nil
}

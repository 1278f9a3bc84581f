package drop

import (
	"context"
	"time"

	"github.com/donaldvibe/storefront/internal/api"
	"github.com/donaldvibe/storefront/internal/router"
)

// DefaultID is used when the drop route carries no id parameter.
const DefaultID = "1"

// TickInterval is how often the countdown is recomputed.
const TickInterval = time.Second

// Controller owns the drop page state: the fetched status, the measured
// client/server clock offset, and the values derived from them on every
// tick. It has a single owner (the active page) and is not safe for
// concurrent use; I/O lives in Load, derivation in Update.
type Controller struct {
	client api.Client

	DropID    string
	Status    *api.DropStatus
	Loading   bool
	Err       error
	Phase     Phase
	SoldOut   bool
	Countdown string
	Remaining int64 // whole seconds to the countdown target

	offset time.Duration
}

// NewController returns a Controller in its initial loading state.
func NewController(client api.Client) *Controller {
	return &Controller{
		client:  client,
		DropID:  DefaultID,
		Loading: true,
		Phase:   PhaseWaiting,
	}
}

// HandleRoute reloads the page when the drop route is entered.
// Implements the page-controller contract used by router.Router.
func (c *Controller) HandleRoute(ctx context.Context, ev router.RouteChangedEvent) {
	if !c.BeginRoute(ev) {
		return
	}
	c.Load(ctx)
}

// BeginRoute records the routed drop id and enters the loading state.
// Returns false for routes that are not the drop page. Synchronous; hosts
// that fetch in a separate goroutine call this first, then Apply with the
// fetch result.
func (c *Controller) BeginRoute(ev router.RouteChangedEvent) bool {
	if ev.Route != "drop" {
		return false
	}
	c.DropID = ev.Params["id"]
	if c.DropID == "" {
		c.DropID = DefaultID
	}
	c.BeginLoad()
	return true
}

// BeginLoad enters the loading state, clearing a previous error.
func (c *Controller) BeginLoad() {
	c.Loading = true
	c.Err = nil
}

// Apply records a status fetch's outcome and recomputes the derived
// fields. On failure the controller enters an explicit error state (Err
// set, Loading cleared) so callers can offer a retry instead of spinning
// forever.
func (c *Controller) Apply(status *api.DropStatus, err error, localNow time.Time) {
	c.Loading = false
	if err != nil {
		c.Err = err
		return
	}

	c.Status = status
	c.offset = status.Now.Sub(localNow)
	c.Update(localNow)
}

// Load fetches the drop status and measures the server clock offset.
func (c *Controller) Load(ctx context.Context) {
	c.BeginLoad()
	status, err := c.client.DropStatus(ctx, c.DropID)
	c.Apply(status, err, time.Now())
}

// Now returns the current instant corrected by the measured server offset.
func (c *Controller) Now() time.Time {
	return time.Now().Add(c.offset)
}

// Offset exposes the measured clock offset (server minus client).
func (c *Controller) Offset() time.Duration {
	return c.offset
}

// Update recomputes phase, countdown and remaining seconds for the given
// uncorrected local instant. Pure: no I/O, safe to call at any rate.
func (c *Controller) Update(localNow time.Time) {
	if c.Status == nil {
		return
	}

	now := localNow.Add(c.offset)
	c.Phase = DeterminePhase(c.Status, now)
	c.SoldOut = SoldOut(c.Status)

	switch c.Phase {
	case PhaseWaiting:
		diff := c.Status.StartsAt.Sub(now)
		c.Countdown = FormatTime(diff)
		c.Remaining = int64(diff / time.Second)
	case PhaseLive:
		if c.Status.EndsAt != nil {
			diff := c.Status.EndsAt.Sub(now)
			c.Countdown = FormatTime(diff)
			c.Remaining = int64(diff / time.Second)
		} else {
			c.Countdown = "00:00:00"
			c.Remaining = 0
		}
	default:
		c.Countdown = "00:00:00"
		c.Remaining = 0
	}
}

// Disabled reports whether the purchase action should be blocked.
func (c *Controller) Disabled() bool {
	return !(c.Phase == PhaseLive && !c.SoldOut)
}

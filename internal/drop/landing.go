package drop

import (
	"strconv"
	"time"

	"github.com/donaldvibe/storefront/internal/api"
)

// Landing status lines, in the landing page's console voice.
const (
	LandingConnecting = "CONNECTING..."
	LandingReady      = "SYSTEM READY"
	LandingOffline    = "OFFLINE"
)

// Landing picks the drop advertised on the landing page and drives its
// next-drop countdown. Like Controller it has a single owner and is not
// safe for concurrent use: hosts apply fetch results from their own loop.
type Landing struct {
	DropID    string // chosen drop; empty when none is advertised
	StartsAt  *time.Time
	Live      bool
	Status    string
	Countdown Countdown

	offset time.Duration
}

// NewLanding returns a Landing in its connecting state.
func NewLanding() *Landing {
	return &Landing{Status: LandingConnecting, Countdown: FormatCountdown(0)}
}

// ApplyDrops records the drops listing: the advertised drop is the first
// one with stock remaining or a future start, falling back to the first
// listed. A fetch error leaves the page offline.
func (l *Landing) ApplyDrops(drops []api.Drop, err error, localNow time.Time) {
	if err != nil {
		l.Status = LandingOffline
		return
	}

	var chosen *api.Drop
	for i := range drops {
		d := &drops[i]
		if int64(d.TotalStock)-int64(d.Sold) > 0 || d.StartsAt.After(localNow) {
			chosen = d
			break
		}
	}
	if chosen == nil && len(drops) > 0 {
		chosen = &drops[0]
	}

	if chosen == nil {
		l.DropID = ""
		l.StartsAt = nil
	} else {
		l.DropID = formatDropID(chosen.ID)
		starts := chosen.StartsAt
		l.StartsAt = &starts
	}
	l.Status = LandingReady
	l.Update(localNow)
}

// ApplyOffset measures the server clock offset from the chosen drop's
// status. A failed sync keeps the client clock.
func (l *Landing) ApplyOffset(status *api.DropStatus, err error, localNow time.Time) {
	if err != nil || status == nil {
		return
	}
	l.offset = status.Now.Sub(localNow)
	l.Update(localNow)
}

// Update recomputes the live flag and countdown fields. Pure.
func (l *Landing) Update(localNow time.Time) {
	if l.StartsAt == nil {
		l.Live = false
		l.Countdown = FormatCountdown(0)
		return
	}
	now := localNow.Add(l.offset)
	l.Live = !now.Before(*l.StartsAt)
	diff := l.StartsAt.Sub(now)
	if diff <= 0 {
		diff = 0
	}
	l.Countdown = FormatCountdown(diff)
}

// formatDropID renders the id in the route parameter form the drop page
// expects.
func formatDropID(id uint64) string {
	if id == 0 {
		return DefaultID
	}
	return strconv.FormatUint(id, 10)
}

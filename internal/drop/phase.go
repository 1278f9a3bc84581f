// Package drop derives the client-side lifecycle of a limited drop from
// server-supplied timing and stock. Phase is recomputed on every tick and is
// never persisted; the server clock carried in DropStatus.Now corrects local
// clock skew so countdowns agree with the backend.
package drop

import (
	"fmt"
	"math"
	"time"

	"github.com/donaldvibe/storefront/internal/api"
)

// Phase is the derived lifecycle state of a drop.
type Phase string

const (
	PhaseWaiting Phase = "WAITING"
	PhaseLive    Phase = "LIVE"
	PhaseSoldOut Phase = "SOLD_OUT"
	PhaseEnded   Phase = "ENDED"
)

// SoldOut reports whether the drop has no remaining stock.
func SoldOut(status *api.DropStatus) bool {
	return status != nil && status.Available <= 0
}

// DeterminePhase derives the phase for the given instant.
//
// Ordering matters: a drop that sells out before its end time reports
// SOLD_OUT, not ENDED. Transitions are monotonic as long as now only moves
// forward: WAITING → (LIVE | ENDED) → (SOLD_OUT | ENDED).
func DeterminePhase(status *api.DropStatus, now time.Time) Phase {
	if status == nil {
		return PhaseWaiting
	}
	if now.Before(status.StartsAt) {
		return PhaseWaiting
	}
	if SoldOut(status) {
		return PhaseSoldOut
	}
	if status.EndsAt != nil && !now.Before(*status.EndsAt) {
		return PhaseEnded
	}
	return PhaseLive
}

// FormatTime renders a duration as zero-padded HH:MM:SS with hours wrapped
// at 24 (a countdown past one day rolls over; FormatCountdown carries days
// when that matters). Negative durations produce negative components — the
// historical behavior, kept deliberately for past-due inputs.
func FormatTime(d time.Duration) string {
	ms := float64(d.Milliseconds())
	seconds := int(math.Floor(math.Mod(ms/1000, 60)))
	minutes := int(math.Floor(math.Mod(ms/(1000*60), 60)))
	hours := int(math.Floor(math.Mod(ms/(1000*60*60), 24)))
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}

// Countdown is a duration split into zero-padded display fields.
type Countdown struct {
	Days    string
	Hours   string
	Minutes string
	Seconds string
}

// FormatCountdown splits a duration into days/hours/minutes/seconds fields.
func FormatCountdown(d time.Duration) Countdown {
	ms := d.Milliseconds()
	return Countdown{
		Days:    fmt.Sprintf("%02d", ms/(1000*60*60*24)),
		Hours:   fmt.Sprintf("%02d", (ms%(1000*60*60*24))/(1000*60*60)),
		Minutes: fmt.Sprintf("%02d", (ms%(1000*60*60))/(1000*60)),
		Seconds: fmt.Sprintf("%02d", (ms%(1000*60))/1000),
	}
}

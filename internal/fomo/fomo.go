// Package fomo implements the rotating recent-activity ticker shown on the
// drop page.
//
// A background worker advances the rotation on a fixed interval and rebuilds
// the visible window from a snapshot of the drop state, so consecutive reads
// see the rows walk forward.
package fomo

import (
	"regexp"
	"sync"
	"sync/atomic"
	"time"
)

const (
	// RotateInterval matches the storefront's 1.5s ticker cadence.
	RotateInterval = 1500 * time.Millisecond
	// MaxRows caps the visible window.
	MaxRows = 4
)

var maskPattern = regexp.MustCompile(`(\d{3})\d{3}(\d{3})`)

// Row is one ticker line: a masked phone, what that buyer is doing, and how
// long ago.
type Row struct {
	Phone  string
	Action string
	Time   string
}

// State is the drop-page snapshot the ticker renders from.
type State struct {
	// Phone is whatever the visitor has typed into the checkout form;
	// when the drop is live it becomes their own ticker row.
	Phone   string
	Live    bool
	SoldOut bool
	// Winner is the buyer who closed the drop, shown once sold out.
	Winner *Row
}

var baseRows = []Row{
	{Phone: "09x xxx 888", Action: "đang thanh toán", Time: "0.4s"},
	{Phone: "08x xxx 555", Action: "vừa giữ slot", Time: "0.7s"},
	{Phone: "03x xxx 123", Action: "đang nhập địa chỉ", Time: "0.9s"},
	{Phone: "07x xxx 246", Action: "đang kiểm tra thông tin", Time: "1.1s"},
}

// Ticker rotates activity rows in the background. The host pushes drop
// state with SetState; the worker only ever reads its own copy, so pushes
// and reads never touch the host's data structures.
type Ticker struct {
	tick atomic.Uint64

	mu    sync.RWMutex
	state State
	rows  []Row
	stop  chan struct{}
}

// New creates a Ticker over the initial state and starts the rotation
// worker.
func New(initial State) *Ticker {
	t := &Ticker{
		state: initial,
		stop:  make(chan struct{}),
	}
	t.rebuild()
	go t.run()
	return t
}

// SetState replaces the drop-state snapshot the rows are built from and
// rebuilds the window immediately.
func (t *Ticker) SetState(s State) {
	t.mu.Lock()
	t.state = s
	t.mu.Unlock()
	t.rebuild()
}

// Rows returns the currently visible window.
func (t *Ticker) Rows() []Row {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.rows
}

// Advance moves the rotation forward one step and rebuilds the window.
// The background worker calls this on every interval; hosts driving their
// own tick loop may call it directly.
func (t *Ticker) Advance() {
	t.tick.Add(1)
	t.rebuild()
}

// Stop shuts down the rotation worker.
func (t *Ticker) Stop() {
	close(t.stop)
}

func (t *Ticker) run() {
	ticker := time.NewTicker(RotateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			t.Advance()
		case <-t.stop:
			return
		}
	}
}

func (t *Ticker) rebuild() {
	t.mu.RLock()
	state := t.state
	t.mu.RUnlock()
	rows := Compose(t.tick.Load(), state)
	t.mu.Lock()
	t.rows = rows
	t.mu.Unlock()
}

// Compose builds the visible window for a given rotation step: the winner
// row first when the drop is sold out, then the synthetic base rows, then
// the visitor's own row while the drop is live, rotated by step and capped
// at MaxRows.
func Compose(step uint64, state State) []Row {
	all := make([]Row, 0, len(baseRows)+2)
	if state.SoldOut && state.Winner != nil {
		w := *state.Winner
		if w.Time == "" {
			w.Time = "—"
		}
		w.Action = "đã chốt"
		all = append(all, w)
	}
	all = append(all, baseRows...)
	if state.Phone != "" && state.Live {
		all = append(all, Row{
			Phone:  MaskPhone(state.Phone),
			Action: "đang tranh slot",
			Time:   "...",
		})
	}
	if len(all) == 0 {
		return nil
	}

	start := int(step % uint64(len(all)))
	rotated := append(append([]Row{}, all[start:]...), all[:start]...)
	if len(rotated) > MaxRows {
		rotated = rotated[:MaxRows]
	}
	return rotated
}

// MaskPhone hides the middle digits of a phone number: 0912345678 becomes
// 091***678.
func MaskPhone(p string) string {
	if p == "" {
		return ""
	}
	return maskPattern.ReplaceAllString(p, "$1***$2")
}

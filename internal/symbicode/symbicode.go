// Package symbicode implements the authenticity verification page. Each
// product unit carries a SYMBICODE; scanning it proves the item is genuine
// and records the first activation.
package symbicode

import (
	"context"
	"strings"

	"github.com/donaldvibe/storefront/internal/api"
	"github.com/donaldvibe/storefront/internal/router"
)

// Verification messages.
const (
	MsgRequiredCode = "Vui lòng nhập mã SYMBICODE"
	MsgSystemError  = "Lỗi hệ thống. Vui lòng thử lại."
)

// Outcome is what the page shows after a verification attempt.
type Outcome struct {
	Success           bool
	Message           string
	Symbicode         *api.Symbicode
	IsFirstActivation bool
}

// Page is the verification page state.
type Page struct {
	client api.Client

	Code      string
	Verifying bool
	Result    *Outcome
}

// NewPage returns an empty verification page.
func NewPage(client api.Client) *Page {
	return &Page{client: client}
}

// SetCodeFromParams pre-fills the code from the route, as when the page is
// opened by scanning a QR link. Codes are canonically upper-case.
func (p *Page) SetCodeFromParams(ev router.RouteChangedEvent) {
	if code := ev.Param("code"); code != "" {
		p.Code = strings.ToUpper(code)
	}
}

// Begin validates the entered code and enters the verifying state.
// Synchronous; the backend call may then run in a fetch goroutine and
// report back through Apply.
func (p *Page) Begin() (string, bool) {
	code := strings.TrimSpace(p.Code)
	if code == "" {
		p.Result = &Outcome{Success: false, Message: MsgRequiredCode}
		return "", false
	}
	p.Verifying = true
	p.Result = nil
	return code, true
}

// Apply records the backend's answer on the page.
func (p *Page) Apply(result *api.SymbicodeResult, err error) {
	p.Verifying = false
	if err != nil {
		msg := err.Error()
		if msg == "" {
			msg = MsgSystemError
		}
		p.Result = &Outcome{Success: false, Message: msg}
		return
	}
	p.Result = &Outcome{
		Success:           true,
		Symbicode:         result.Symbicode,
		IsFirstActivation: result.IsFirstActivation,
	}
}

// Verify checks the entered code against the backend in one blocking call.
func (p *Page) Verify(ctx context.Context) {
	code, ok := p.Begin()
	if !ok {
		return
	}
	result, err := p.client.VerifySymbicode(ctx, code)
	p.Apply(result, err)
}

// Reset clears the page for another scan.
func (p *Page) Reset() {
	p.Code = ""
	p.Result = nil
}

// Package orders implements the order lookup page: form validation, the
// track-order request, and the status presentation helpers.
package orders

import (
	"context"
	"strings"

	"github.com/donaldvibe/storefront/internal/api"
)

// Lookup validation messages.
const (
	MsgRequiredOrderNumber = "Vui lòng nhập mã đơn hàng"
	MsgRequiredPhone       = "Vui lòng nhập số điện thoại"
	MsgLookupFailed        = "Không thể tra cứu đơn hàng"
)

// Step is one slot of the fulfilment progress strip.
type Step struct {
	Label     string
	Completed bool
	Active    bool
}

// Page is the order lookup page state.
type Page struct {
	client api.Client

	OrderNumber string
	Phone       string
	Email       string

	Order   *api.TrackedOrder
	Errors  map[string]string
	Err     string
	Loading bool
}

// NewPage returns an empty lookup page.
func NewPage(client api.Client) *Page {
	return &Page{
		client: client,
		Errors: map[string]string{},
	}
}

// Validate checks the lookup form. Order number and phone are required;
// email is optional.
func (p *Page) Validate() bool {
	p.Errors = map[string]string{}
	if strings.TrimSpace(p.OrderNumber) == "" {
		p.Errors["orderNumber"] = MsgRequiredOrderNumber
	}
	if strings.TrimSpace(p.Phone) == "" {
		p.Errors["phone"] = MsgRequiredPhone
	}
	return len(p.Errors) == 0
}

// Prepare validates the form and, when valid, enters the loading state and
// returns the trimmed lookup request. Synchronous; the lookup itself may
// then run in a fetch goroutine and report back through Apply.
func (p *Page) Prepare() (api.TrackOrderRequest, bool) {
	if !p.Validate() {
		return api.TrackOrderRequest{}, false
	}
	p.Loading = true
	p.Err = ""
	return api.TrackOrderRequest{
		OrderNumber: strings.TrimSpace(p.OrderNumber),
		Phone:       strings.TrimSpace(p.Phone),
		Email:       strings.TrimSpace(p.Email),
	}, true
}

// Apply records a lookup's outcome in Order or Err.
func (p *Page) Apply(order *api.TrackedOrder, err error) {
	p.Loading = false
	if err != nil {
		if msg := err.Error(); msg != "" {
			p.Err = msg
		} else {
			p.Err = MsgLookupFailed
		}
		return
	}
	p.Order = order
}

// Submit validates the form and performs the lookup in one blocking call.
func (p *Page) Submit(ctx context.Context) {
	req, ok := p.Prepare()
	if !ok {
		return
	}
	order, err := p.client.TrackOrder(ctx, req)
	p.Apply(order, err)
}

// Reset clears the page back to the lookup form.
func (p *Page) Reset() {
	p.Order = nil
	p.OrderNumber = ""
	p.Phone = ""
	p.Email = ""
	p.Errors = map[string]string{}
	p.Err = ""
}

// StatusLabel maps a raw order status to its customer-facing label.
// Unknown statuses pass through unchanged.
func StatusLabel(status string) string {
	switch status {
	case "pending":
		return "Chờ xử lý"
	case "shipped":
		return "Đang vận chuyển"
	case "delivered":
		return "Đã giao"
	case "cancelled":
		return "Đã hủy"
	case "":
		return "Unknown"
	}
	return status
}

// StatusIcon picks the icon name for a status.
func StatusIcon(status string) string {
	switch status {
	case "delivered":
		return "check-circle"
	case "shipped":
		return "truck"
	}
	return "clock"
}

// StatusColor picks the display color for a status.
func StatusColor(status string) string {
	switch status {
	case "delivered":
		return "green"
	case "shipped":
		return "blue"
	}
	return "gray"
}

// StatusSteps builds the four-slot fulfilment strip for a status. The
// first slot is always complete: an order that can be looked up was placed.
func StatusSteps(status string) []Step {
	return []Step{
		{Label: "Đặt hàng", Completed: true},
		{Label: "Xử lý", Completed: status != "pending", Active: status == "pending"},
		{Label: "Vận chuyển", Completed: status == "shipped" || status == "delivered", Active: status == "shipped"},
		{Label: "Giao hàng", Completed: status == "delivered", Active: status == "delivered"},
	}
}

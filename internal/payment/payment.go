// Package payment interprets the PayOS redirect that lands the customer
// back on the storefront after checkout.
package payment

import (
	"context"
	"net/url"
	"strconv"

	"github.com/donaldvibe/storefront/internal/api"
	"github.com/donaldvibe/storefront/internal/drop"
	"github.com/donaldvibe/storefront/internal/router"
)

// Result is the parsed payment redirect.
type Result struct {
	DropID    string
	Code      string
	Status    string
	Cancel    string
	OrderCode string
}

// ParseRedirect extracts the payment outcome from the redirect query
// string. Missing cancel defaults to "false", so a bare PAID redirect
// counts as paid.
func ParseRedirect(query string) Result {
	values, _ := url.ParseQuery(query)
	r := Result{
		DropID:    values.Get("drop_id"),
		Code:      values.Get("code"),
		Status:    values.Get("status"),
		Cancel:    values.Get("cancel"),
		OrderCode: values.Get("orderCode"),
	}
	if r.Cancel == "" {
		r.Cancel = "false"
	}
	return r
}

// FromParams builds a Result from route params, for hash-routed hosts that
// carry the redirect fields as route parameters.
func FromParams(ev router.RouteChangedEvent) Result {
	r := Result{
		DropID:    ev.Param("drop_id"),
		Code:      ev.Param("code"),
		Status:    ev.Param("status"),
		Cancel:    ev.Param("cancel"),
		OrderCode: ev.Param("orderCode"),
	}
	if r.Cancel == "" {
		r.Cancel = "false"
	}
	return r
}

// IsPaid reports whether the redirect represents a completed payment.
func (r Result) IsPaid() bool {
	return r.Status == "PAID" && r.Cancel == "false"
}

// RetryRoute is where a cancelled customer goes to try again: back to the
// drop they came from, or the default drop when the redirect lost the id.
func (r Result) RetryRoute() string {
	id := r.DropID
	if id == "" {
		id = drop.DefaultID
	}
	return router.Format("drop", map[string]string{"id": id})
}

// Verify confirms the redirect against the backend; redirect query fields
// are attacker-controlled, the payment API is not. Returns nil when the
// redirect carries no usable order code.
func (r Result) Verify(ctx context.Context, client api.Client) (*api.PaymentInfo, error) {
	orderCode, err := strconv.ParseInt(r.OrderCode, 10, 64)
	if err != nil {
		return nil, nil
	}
	return client.VerifyPayment(ctx, orderCode)
}

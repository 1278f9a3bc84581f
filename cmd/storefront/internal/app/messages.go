// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2026 Donaldvibe. All rights reserved.

package app

import (
	"time"

	"github.com/donaldvibe/storefront/internal/addresses"
	"github.com/donaldvibe/storefront/internal/api"
	"github.com/donaldvibe/storefront/internal/cart"
)

// --- Tea messages ---
//
// Commands do I/O only and carry the result back in the message; the page
// controllers are mutated exclusively inside Update, so no controller state
// is ever touched from a command goroutine. Cascade messages carry the
// generation issued at Begin time so stale responses are discarded.

type tickMsg time.Time

type fomoTickMsg time.Time

type dropsListedMsg struct {
	drops []api.Drop
	err   error
}

type landingOffsetMsg struct {
	status *api.DropStatus
	err    error
}

type dropLoadedMsg struct {
	status *api.DropStatus
	err    error
}

type provincesLoadedMsg struct {
	nodes []addresses.Node
}

type districtsLoadedMsg struct {
	gen   uint64
	nodes []addresses.Node
}

type wardsLoadedMsg struct {
	gen   uint64
	nodes []addresses.Node
}

type purchaseDoneMsg struct {
	result *api.PurchaseResult
	err    error
}

type signupDoneMsg struct {
	err error
}

type productsLoadedMsg struct {
	list *api.ProductList
	err  error
}

type productLoadedMsg struct {
	product *api.Product
	err     error
}

type cartLoadedMsg struct {
	items []cart.Item
	total uint64
}

type cartCheckoutMsg struct {
	result *api.CheckoutResult
	err    error
}

type trackDoneMsg struct {
	order *api.TrackedOrder
	err   error
}

type verifyDoneMsg struct {
	result *api.SymbicodeResult
	err    error
}

type paymentVerifiedMsg struct {
	info *api.PaymentInfo
	err  error
}

// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2026 Donaldvibe. All rights reserved.

package app

import (
	"github.com/donaldvibe/storefront/internal/api"
	"github.com/donaldvibe/storefront/internal/cart"
	"github.com/donaldvibe/storefront/internal/checkout"
	"github.com/donaldvibe/storefront/internal/drop"
	"github.com/donaldvibe/storefront/internal/fomo"
	"github.com/donaldvibe/storefront/internal/orders"
	"github.com/donaldvibe/storefront/internal/payment"
	"github.com/donaldvibe/storefront/internal/products"
	"github.com/donaldvibe/storefront/internal/router"
	"github.com/donaldvibe/storefront/internal/symbicode"
	"github.com/donaldvibe/storefront/internal/waitlist"
)

type page int

const (
	pageLanding page = iota
	pageDrop
	pageProducts
	pageProduct
	pageCart
	pageTrack
	pageVerify
	pagePayment
)

// routePages maps route names to pages; unknown routes fall back to landing.
var routePages = map[string]page{
	"landing":         pageLanding,
	"drop":            pageDrop,
	"products":        pageProducts,
	"product":         pageProduct,
	"cart":            pageCart,
	"track-order":     pageTrack,
	"verify":          pageVerify,
	"payment-success": pagePayment,
	"payment-cancel":  pagePayment,
}

// checkoutFields is the overlay's focus order: the typed fields first, then
// the three cascade selectors.
var checkoutFields = []string{"phone", "email", "name", "address", "province", "district", "ward"}

// Model is the root bubbletea model for the storefront.
// Exported so tests can construct and drive it directly.
type Model struct {
	client api.Client
	router *router.Router

	width  int
	height int

	page  page
	route router.RouteChangedEvent

	// Landing
	landing     *drop.Landing
	signup      *waitlist.Form
	signupFocus int // 0 = email, 1 = phone

	// Drop
	drop         *drop.Controller
	ticker       *fomo.Ticker
	checkout     *checkout.Form
	checkoutOpen bool
	focusIdx     int
	payURL       string
	purchaseErr  string

	// Catalogue
	lister     *products.Lister
	detail     *products.Detail
	cartStore  *cart.Store
	cartItems  []cart.Item
	cartTotal  uint64
	cartBusy   bool
	cartPayURL string
	cartErr    string

	// Lookup pages
	track  *orders.Page
	verify *symbicode.Page

	// Payment redirect
	pay     payment.Result
	payInfo *api.PaymentInfo
}

// New creates a fresh Model. The cart store may be nil (the cart page then
// stays empty); form and signup carry the address cascade and waitlist
// wiring and default to offline instances when nil, so tests can run
// without live services.
func New(client api.Client, store *cart.Store, form *checkout.Form, signup *waitlist.Form) Model {
	if form == nil {
		form = checkout.NewForm(client, nil)
	}
	if signup == nil {
		signup = waitlist.NewForm(waitlist.New("", "", ""))
	}

	r := router.New()

	return Model{
		client:    client,
		router:    r,
		page:      pageLanding,
		route:     r.Current(),
		landing:   drop.NewLanding(),
		signup:    signup,
		drop:      drop.NewController(client),
		ticker:    fomo.New(fomo.State{}),
		checkout:  form,
		lister:    products.NewLister(client),
		detail:    products.NewDetail(client, store),
		cartStore: store,
		track:     orders.NewPage(client),
		verify:    symbicode.NewPage(client),
	}
}

// syncFomo pushes the current checkout phone and drop phase to the ticker
// worker. Called from Update only, so the reads here never race with the
// command goroutines.
func (m Model) syncFomo() {
	m.ticker.SetState(fomo.State{
		Phone:   m.checkout.Contact.Phone,
		Live:    m.drop.Phase == drop.PhaseLive,
		SoldOut: m.drop.SoldOut,
	})
}

// Close releases background workers and the cart store.
func (m Model) Close() {
	m.ticker.Stop()
	if m.cartStore != nil {
		m.cartStore.Close()
	}
}

// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2026 Donaldvibe. All rights reserved.

// Command storefront is the terminal storefront for DONALD limited drops:
// countdown, checkout, catalogue, order lookup and SYMBICODE verification
// against the drops backend.
package main

import (
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"

	"github.com/donaldvibe/storefront/cmd/storefront/internal/app"
	"github.com/donaldvibe/storefront/config"
	"github.com/donaldvibe/storefront/internal/addresses"
	"github.com/donaldvibe/storefront/internal/api"
	"github.com/donaldvibe/storefront/internal/cart"
	"github.com/donaldvibe/storefront/internal/checkout"
	"github.com/donaldvibe/storefront/internal/waitlist"
)

func main() {
	cfg := config.Load()

	client := api.New(cfg.API.BaseURL, cfg.API.Timeout)
	cascade := addresses.New(cfg.Addresses.BaseURL, cfg.API.Timeout)
	form := checkout.NewForm(client, cascade)
	signup := waitlist.NewForm(waitlist.New(cfg.Waitlist.FormURL, cfg.Waitlist.EmailEntry, cfg.Waitlist.PhoneEntry))

	store, err := cart.Open(cfg.Cart.DBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "storefront: cart: %v\n", err)
		store = nil
	}

	m := app.New(client, store, form, signup)
	p := tea.NewProgram(m)
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "storefront: %v\n", err)
		os.Exit(1)
	}
	m.Close()
}

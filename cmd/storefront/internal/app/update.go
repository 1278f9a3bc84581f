// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2026 Donaldvibe. All rights reserved.

package app

import (
	"context"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/donaldvibe/storefront/internal/addresses"
	"github.com/donaldvibe/storefront/internal/api"
	"github.com/donaldvibe/storefront/internal/checkout"
	"github.com/donaldvibe/storefront/internal/drop"
	"github.com/donaldvibe/storefront/internal/fomo"
	"github.com/donaldvibe/storefront/internal/payment"
	"github.com/donaldvibe/storefront/internal/products"
	"github.com/donaldvibe/storefront/internal/router"
)

// Init starts the re-render loops and the landing page's drop discovery.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.tick(), m.fomoTick(), m.doListDrops())
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(drop.TickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) fomoTick() tea.Cmd {
	return tea.Tick(fomo.RotateInterval, func(t time.Time) tea.Msg {
		return fomoTickMsg(t)
	})
}

// Update is the bubbletea update function. All controller mutation happens
// here; commands only perform I/O and report back through messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyPressMsg:
		return m.handleKey(msg)

	case tickMsg:
		switch m.page {
		case pageLanding:
			m.landing.Update(time.Time(msg))
		case pageDrop:
			m.drop.Update(time.Time(msg))
			m.syncFomo()
		}
		return m, m.tick()

	case fomoTickMsg:
		// The ticker worker rotates on its own; this just forces a
		// re-render at the same cadence.
		return m, m.fomoTick()

	case dropsListedMsg:
		m.landing.ApplyDrops(msg.drops, msg.err, time.Now())
		if msg.err == nil && m.landing.DropID != "" {
			return m, m.doMeasureOffset(m.landing.DropID)
		}
		return m, nil

	case landingOffsetMsg:
		m.landing.ApplyOffset(msg.status, msg.err, time.Now())
		return m, nil

	case dropLoadedMsg:
		m.drop.Apply(msg.status, msg.err, time.Now())
		m.syncFomo()
		return m, nil

	case provincesLoadedMsg:
		m.checkout.ApplyProvinces(msg.nodes)
		return m, nil

	case districtsLoadedMsg:
		m.checkout.ApplyDistricts(msg.gen, msg.nodes)
		return m, nil

	case wardsLoadedMsg:
		m.checkout.ApplyWards(msg.gen, msg.nodes)
		return m, nil

	case purchaseDoneMsg:
		return m.handlePurchaseDone(msg)

	case signupDoneMsg:
		m.signup.Finish(msg.err)
		return m, nil

	case productsLoadedMsg:
		m.lister.Apply(msg.list, msg.err)
		if m.focusIdx >= len(m.lister.Products) {
			m.focusIdx = 0
		}
		return m, nil

	case productLoadedMsg:
		m.detail.Apply(msg.product, msg.err)
		return m, nil

	case cartLoadedMsg:
		m.cartItems = msg.items
		m.cartTotal = msg.total
		if m.focusIdx >= len(m.cartItems) {
			m.focusIdx = 0
		}
		return m, nil

	case cartCheckoutMsg:
		m.cartBusy = false
		if msg.err != nil {
			m.cartErr = msg.err.Error()
			return m, nil
		}
		if msg.result == nil || msg.result.CheckoutURL == "" {
			m.cartErr = checkout.ErrNoPaymentURL.Error()
			return m, nil
		}
		m.cartPayURL = msg.result.CheckoutURL
		return m, nil

	case trackDoneMsg:
		m.track.Apply(msg.order, msg.err)
		return m, nil

	case verifyDoneMsg:
		m.verify.Apply(msg.result, msg.err)
		return m, nil

	case paymentVerifiedMsg:
		if msg.err == nil {
			m.payInfo = msg.info
		}
		return m, nil
	}

	return m, nil
}

// --- Navigation ---

func (m Model) navigate(route string, params map[string]string) (tea.Model, tea.Cmd) {
	return m.enterRoute(m.router.Navigate(route, params))
}

func (m Model) enterRoute(ev router.RouteChangedEvent) (tea.Model, tea.Cmd) {
	m.route = ev
	p, ok := routePages[ev.Route]
	if !ok {
		p = pageLanding
	}
	m.page = p
	m.focusIdx = 0

	switch p {
	case pageLanding:
		return m, m.doListDrops()
	case pageDrop:
		m.checkoutOpen = false
		m.payURL = ""
		m.purchaseErr = ""
		cmds := []tea.Cmd{m.doFetchProvinces()}
		if m.drop.BeginRoute(ev) {
			cmds = append(cmds, m.doFetchDrop(m.drop.DropID))
		}
		return m, tea.Batch(cmds...)
	case pageProducts:
		return m, m.doFetchProducts(m.lister.BeginLoad())
	case pageProduct:
		if id, ok := m.detail.BeginRoute(ev); ok {
			return m, m.doFetchProduct(id)
		}
	case pageCart:
		m.cartPayURL = ""
		m.cartErr = ""
		return m, m.doLoadCart()
	case pageVerify:
		m.verify.SetCodeFromParams(ev)
	case pagePayment:
		m.pay = payment.FromParams(ev)
		m.payInfo = nil
		return m, m.doVerifyPayment()
	}
	return m, nil
}

// --- Key handling ---

func (m Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	k := msg.Key()

	if k.Mod == tea.ModCtrl {
		switch k.Code {
		case 'c':
			m.Close()
			return m, tea.Quit
		case 'h':
			return m.navigate("landing", nil)
		case 'd':
			return m.navigate("drop", nil)
		case 'p':
			return m.navigate("products", nil)
		case 'g':
			return m.navigate("cart", nil)
		case 't':
			return m.navigate("track-order", nil)
		case 'k':
			return m.navigate("verify", nil)
		}
	}

	switch m.page {
	case pageLanding:
		return m.handleLandingKey(k)
	case pageDrop:
		if m.checkoutOpen {
			return m.handleCheckoutKey(k)
		}
		return m.handleDropKey(k)
	case pageProducts:
		return m.handleProductsKey(k)
	case pageProduct:
		return m.handleProductKey(k)
	case pageCart:
		return m.handleCartKey(k)
	case pageTrack:
		return m.handleTrackKey(k)
	case pageVerify:
		return m.handleVerifyKey(k)
	case pagePayment:
		return m.handlePaymentKey(k)
	}
	return m, nil
}

func (m Model) handleLandingKey(k tea.Key) (tea.Model, tea.Cmd) {
	switch k.Code {
	case tea.KeyEscape:
		m.Close()
		return m, tea.Quit
	case tea.KeyTab:
		m.signupFocus = (m.signupFocus + 1) % 2
	case tea.KeyEnter:
		email, phone, ok := m.signup.Prepare()
		if !ok {
			return m, nil
		}
		return m, m.doSignup(email, phone)
	case tea.KeyBackspace:
		if m.signupFocus == 0 {
			m.signup.Email = trimLast(m.signup.Email)
		} else {
			m.signup.Phone = trimLast(m.signup.Phone)
		}
	default:
		if k.Text != "" {
			if m.signupFocus == 0 {
				m.signup.Email += k.Text
			} else {
				m.signup.Phone += k.Text
			}
		}
	}
	return m, nil
}

func (m Model) handleDropKey(k tea.Key) (tea.Model, tea.Cmd) {
	switch k.Code {
	case tea.KeyEnter, 'b':
		if !m.drop.Disabled() {
			m.checkoutOpen = true
			m.focusIdx = 0
			m.purchaseErr = ""
		}
	case 'r':
		if m.drop.Err != nil {
			m.drop.BeginLoad()
			return m, m.doFetchDrop(m.drop.DropID)
		}
	case 'q', tea.KeyEscape:
		return m.navigate("landing", nil)
	case 'p':
		return m.navigate("products", nil)
	case 't':
		return m.navigate("track-order", nil)
	}
	return m, nil
}

func (m Model) handleCheckoutKey(k tea.Key) (tea.Model, tea.Cmd) {
	field := checkoutFields[m.focusIdx]

	switch k.Code {
	case tea.KeyEscape:
		m.checkoutOpen = false
		return m, nil
	case tea.KeyTab:
		m.checkout.ValidateField(field)
		m.focusIdx = (m.focusIdx + 1) % len(checkoutFields)
		return m, nil
	case tea.KeyUp:
		if m.focusIdx > 0 {
			m.checkout.ValidateField(field)
			m.focusIdx--
		}
		return m, nil
	case tea.KeyDown:
		if m.focusIdx < len(checkoutFields)-1 {
			m.checkout.ValidateField(field)
			m.focusIdx++
		}
		return m, nil
	case tea.KeyEnter:
		req, ok := m.checkout.PrepareSubmit()
		if !ok {
			// In flight, or validation failed; the form's error map
			// carries the details.
			return m, nil
		}
		return m, m.doPurchase(m.drop.DropID, req)
	}

	switch field {
	case "province":
		if code, ok := cycleKey(k, m.checkout.Provinces, m.checkout.SelectedProvinceCode); ok {
			gen := m.checkout.BeginSelectProvince(code)
			return m, m.doFetchDistricts(gen, code)
		}
	case "district":
		if code, ok := cycleKey(k, m.checkout.Districts, m.checkout.SelectedDistrictCode); ok {
			gen := m.checkout.BeginSelectDistrict(code)
			return m, m.doFetchWards(gen, code)
		}
	case "ward":
		if code, ok := cycleKey(k, m.checkout.Wards, m.checkout.SelectedWardCode); ok {
			m.checkout.SelectWard(code)
			return m, nil
		}
	default:
		switch k.Code {
		case tea.KeyBackspace:
			m.setCheckoutField(field, trimLast(m.checkoutField(field)))
		default:
			if k.Text != "" {
				m.setCheckoutField(field, m.checkoutField(field)+k.Text)
			}
		}
		if field == "phone" {
			m.syncFomo()
		}
	}
	return m, nil
}

func (m Model) handleProductsKey(k tea.Key) (tea.Model, tea.Cmd) {
	switch k.Code {
	case tea.KeyLeft:
		if query, ok := m.lister.BeginPrev(); ok {
			return m, m.doFetchProducts(query)
		}
	case tea.KeyRight:
		if query, ok := m.lister.BeginNext(); ok {
			return m, m.doFetchProducts(query)
		}
	case tea.KeyEnter:
		if m.focusIdx < len(m.lister.Products) {
			p := m.lister.Products[m.focusIdx]
			return m.enterRoute(m.router.Dispatch(products.RouteFor(p)))
		}
	case tea.KeyUp:
		if m.focusIdx > 0 {
			m.focusIdx--
		}
	case tea.KeyDown:
		if m.focusIdx < len(m.lister.Products)-1 {
			m.focusIdx++
		}
	case 'q', tea.KeyEscape:
		return m.navigate("landing", nil)
	case 'd':
		return m.navigate("drop", nil)
	}
	return m, nil
}

func (m Model) handleProductKey(k tea.Key) (tea.Model, tea.Cmd) {
	switch k.Code {
	case '+', tea.KeyRight:
		m.detail.Qty++
	case '-', tea.KeyLeft:
		if m.detail.Qty > 1 {
			m.detail.Qty--
		}
	case 'a', tea.KeyEnter:
		m.detail.AddToCart()
	case 'q', tea.KeyEscape:
		return m.navigate("products", nil)
	}
	return m, nil
}

func (m Model) handleCartKey(k tea.Key) (tea.Model, tea.Cmd) {
	switch k.Code {
	case tea.KeyUp:
		if m.focusIdx > 0 {
			m.focusIdx--
		}
	case tea.KeyDown:
		if m.focusIdx < len(m.cartItems)-1 {
			m.focusIdx++
		}
	case 'x', tea.KeyDelete:
		if m.cartStore != nil && m.focusIdx < len(m.cartItems) {
			m.cartStore.Remove(m.cartItems[m.focusIdx].ProductID)
			return m, m.doLoadCart()
		}
	case '+':
		return m, m.bumpCartQty(1)
	case '-':
		return m, m.bumpCartQty(-1)
	case 'c', tea.KeyEnter:
		return m.startCartCheckout()
	case 'q', tea.KeyEscape:
		return m.navigate("products", nil)
	}
	return m, nil
}

func (m Model) bumpCartQty(delta int) tea.Cmd {
	if m.cartStore == nil || m.focusIdx >= len(m.cartItems) {
		return nil
	}
	item := m.cartItems[m.focusIdx]
	m.cartStore.SetQty(item.ProductID, item.Qty+delta)
	return m.doLoadCart()
}

// startCartCheckout turns the cart snapshot into a standalone PayOS
// checkout and surfaces the hosted payment link.
func (m Model) startCartCheckout() (tea.Model, tea.Cmd) {
	if m.cartBusy || len(m.cartItems) == 0 {
		return m, nil
	}
	items := make([]api.CheckoutItem, len(m.cartItems))
	for i, it := range m.cartItems {
		items[i] = api.CheckoutItem{
			Name:     it.Name,
			Quantity: it.Qty,
			Price:    int64(it.Price),
		}
	}
	req := api.CheckoutRequest{
		Amount:      int64(m.cartTotal),
		Description: "DONALD gio hang",
		Items:       items,
	}
	m.cartBusy = true
	m.cartErr = ""
	m.cartPayURL = ""
	return m, m.doCartCheckout(req)
}

func (m Model) handleTrackKey(k tea.Key) (tea.Model, tea.Cmd) {
	if m.track.Order != nil {
		switch k.Code {
		case 'r', tea.KeyEscape:
			m.track.Reset()
		case 'q':
			return m.navigate("landing", nil)
		}
		return m, nil
	}

	switch k.Code {
	case tea.KeyEscape:
		return m.navigate("landing", nil)
	case tea.KeyTab:
		m.focusIdx = (m.focusIdx + 1) % 3
	case tea.KeyEnter:
		req, ok := m.track.Prepare()
		if !ok {
			return m, nil
		}
		return m, m.doTrack(req)
	case tea.KeyBackspace:
		switch m.focusIdx {
		case 0:
			m.track.OrderNumber = trimLast(m.track.OrderNumber)
		case 1:
			m.track.Phone = trimLast(m.track.Phone)
		case 2:
			m.track.Email = trimLast(m.track.Email)
		}
	default:
		if k.Text != "" {
			switch m.focusIdx {
			case 0:
				m.track.OrderNumber += k.Text
			case 1:
				m.track.Phone += k.Text
			case 2:
				m.track.Email += k.Text
			}
		}
	}
	return m, nil
}

func (m Model) handleVerifyKey(k tea.Key) (tea.Model, tea.Cmd) {
	switch k.Code {
	case tea.KeyEscape:
		if m.verify.Result != nil {
			m.verify.Reset()
			return m, nil
		}
		return m.navigate("landing", nil)
	case tea.KeyEnter:
		code, ok := m.verify.Begin()
		if !ok {
			return m, nil
		}
		return m, m.doVerify(code)
	case tea.KeyBackspace:
		m.verify.Code = trimLast(m.verify.Code)
	default:
		if k.Text != "" {
			m.verify.Code += k.Text
		}
	}
	return m, nil
}

func (m Model) handlePaymentKey(k tea.Key) (tea.Model, tea.Cmd) {
	switch k.Code {
	case 'r':
		if !m.pay.IsPaid() {
			return m.enterRoute(m.router.Dispatch(m.pay.RetryRoute()))
		}
	case 't':
		return m.navigate("track-order", nil)
	case 'q', tea.KeyEscape:
		return m.navigate("landing", nil)
	}
	return m, nil
}

// --- Commands ---
//
// Pure I/O; never touch model or controller state.

func (m Model) doListDrops() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		drops, err := client.Drops(context.Background())
		return dropsListedMsg{drops: drops, err: err}
	}
}

func (m Model) doMeasureOffset(dropID string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		status, err := client.DropStatus(context.Background(), dropID)
		return landingOffsetMsg{status: status, err: err}
	}
}

func (m Model) doFetchDrop(dropID string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		status, err := client.DropStatus(context.Background(), dropID)
		return dropLoadedMsg{status: status, err: err}
	}
}

func (m Model) doFetchProvinces() tea.Cmd {
	form := m.checkout
	return func() tea.Msg {
		return provincesLoadedMsg{nodes: form.FetchProvinces(context.Background())}
	}
}

func (m Model) doFetchDistricts(gen uint64, code string) tea.Cmd {
	form := m.checkout
	return func() tea.Msg {
		return districtsLoadedMsg{gen: gen, nodes: form.FetchDistricts(context.Background(), code)}
	}
}

func (m Model) doFetchWards(gen uint64, code string) tea.Cmd {
	form := m.checkout
	return func() tea.Msg {
		return wardsLoadedMsg{gen: gen, nodes: form.FetchWards(context.Background(), code)}
	}
}

func (m Model) doPurchase(dropID string, req api.PurchaseRequest) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		result, err := client.Purchase(context.Background(), dropID, req)
		return purchaseDoneMsg{result: result, err: err}
	}
}

func (m Model) handlePurchaseDone(msg purchaseDoneMsg) (tea.Model, tea.Cmd) {
	m.checkout.FinishSubmit()
	if msg.err != nil {
		m.purchaseErr = msg.err.Error()
		return m, nil
	}
	if msg.result == nil || msg.result.PaymentURL == "" {
		m.purchaseErr = checkout.ErrNoPaymentURL.Error()
		return m, nil
	}
	m.payURL = msg.result.PaymentURL
	m.checkoutOpen = false
	return m, nil
}

func (m Model) doSignup(email, phone string) tea.Cmd {
	form := m.signup
	return func() tea.Msg {
		return signupDoneMsg{err: form.Deliver(context.Background(), email, phone)}
	}
}

func (m Model) doFetchProducts(query api.ProductQuery) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		list, err := client.Products(context.Background(), query)
		return productsLoadedMsg{list: list, err: err}
	}
}

func (m Model) doFetchProduct(idOrSlug string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		product, err := client.Product(context.Background(), idOrSlug)
		return productLoadedMsg{product: product, err: err}
	}
}

func (m Model) doLoadCart() tea.Cmd {
	store := m.cartStore
	return func() tea.Msg {
		if store == nil {
			return cartLoadedMsg{}
		}
		items, err := store.Items()
		if err != nil {
			return cartLoadedMsg{}
		}
		total, _ := store.Total()
		return cartLoadedMsg{items: items, total: total}
	}
}

func (m Model) doCartCheckout(req api.CheckoutRequest) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		result, err := client.CreateCheckout(context.Background(), req)
		return cartCheckoutMsg{result: result, err: err}
	}
}

func (m Model) doTrack(req api.TrackOrderRequest) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		order, err := client.TrackOrder(context.Background(), req)
		return trackDoneMsg{order: order, err: err}
	}
}

func (m Model) doVerify(code string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		result, err := client.VerifySymbicode(context.Background(), code)
		return verifyDoneMsg{result: result, err: err}
	}
}

func (m Model) doVerifyPayment() tea.Cmd {
	pay := m.pay
	client := m.client
	return func() tea.Msg {
		info, err := pay.Verify(context.Background(), client)
		return paymentVerifiedMsg{info: info, err: err}
	}
}

// --- Helpers ---

func trimLast(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	return string(r[:len(r)-1])
}

// cycleKey maps left/right (and space) to the previous/next cascade option.
func cycleKey(k tea.Key, nodes []addresses.Node, current string) (string, bool) {
	switch k.Code {
	case tea.KeyRight, tea.KeySpace:
		return cycleOption(nodes, current, 1)
	case tea.KeyLeft:
		return cycleOption(nodes, current, -1)
	}
	return "", false
}

func cycleOption(nodes []addresses.Node, current string, delta int) (string, bool) {
	if len(nodes) == 0 {
		return "", false
	}
	idx := -1
	for i := range nodes {
		if nodes[i].Value == current {
			idx = i
			break
		}
	}
	idx += delta
	if idx < 0 {
		idx = len(nodes) - 1
	}
	if idx >= len(nodes) {
		idx = 0
	}
	return nodes[idx].Value, true
}

func (m Model) checkoutField(field string) string {
	switch field {
	case "phone":
		return m.checkout.Contact.Phone
	case "email":
		return m.checkout.Contact.Email
	case "name":
		return m.checkout.Contact.Name
	case "address":
		return m.checkout.Contact.Address
	}
	return ""
}

func (m Model) setCheckoutField(field, value string) {
	switch field {
	case "phone":
		m.checkout.Contact.Phone = value
	case "email":
		m.checkout.Contact.Email = value
	case "name":
		m.checkout.Contact.Name = value
	case "address":
		m.checkout.Contact.Address = value
	}
}

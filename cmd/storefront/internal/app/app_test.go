// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2026 Donaldvibe. All rights reserved.

package app_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/donaldvibe/storefront/cmd/storefront/internal/app"
	"github.com/donaldvibe/storefront/internal/api"
	"github.com/donaldvibe/storefront/internal/cart"
)

// --- Mock API client ---

type mockClient struct {
	drops        []api.Drop
	dropsErr     error
	status       *api.DropStatus
	statusErr    error
	purchase     *api.PurchaseResult
	order        *api.TrackedOrder
	orderErr     error
	symbi        *api.SymbicodeResult
	symbiErr     error
	list         *api.ProductList
	product      *api.Product
	payment      *api.PaymentInfo
	checkoutRes  *api.CheckoutResult
	lastCheckout api.CheckoutRequest
}

func (m *mockClient) Drops(_ context.Context) ([]api.Drop, error) { return m.drops, m.dropsErr }
func (m *mockClient) DropStatus(_ context.Context, _ string) (*api.DropStatus, error) {
	return m.status, m.statusErr
}
func (m *mockClient) Purchase(_ context.Context, _ string, _ api.PurchaseRequest) (*api.PurchaseResult, error) {
	return m.purchase, nil
}
func (m *mockClient) TrackOrder(_ context.Context, _ api.TrackOrderRequest) (*api.TrackedOrder, error) {
	return m.order, m.orderErr
}
func (m *mockClient) VerifyPayment(_ context.Context, _ int64) (*api.PaymentInfo, error) {
	return m.payment, nil
}
func (m *mockClient) CancelPayment(_ context.Context, _ int64) error { return nil }
func (m *mockClient) VerifySymbicode(_ context.Context, _ string) (*api.SymbicodeResult, error) {
	return m.symbi, m.symbiErr
}
func (m *mockClient) Products(_ context.Context, _ api.ProductQuery) (*api.ProductList, error) {
	return m.list, nil
}
func (m *mockClient) Product(_ context.Context, _ string) (*api.Product, error) {
	return m.product, nil
}
func (m *mockClient) CreateCheckout(_ context.Context, req api.CheckoutRequest) (*api.CheckoutResult, error) {
	m.lastCheckout = req
	return m.checkoutRes, nil
}

func liveStatus() *api.DropStatus {
	now := time.Now()
	end := now.Add(time.Hour)
	return &api.DropStatus{
		DropID:      1,
		ProductName: "Áo DONALD",
		Price:       399000,
		Available:   50,
		DropSize:    100,
		StartsAt:    now.Add(-time.Minute),
		EndsAt:      &end,
		Now:         now,
	}
}

// --- Test helpers ---

func mustModel(iface tea.Model) app.Model {
	return iface.(app.Model)
}

func press(m app.Model, msg tea.KeyPressMsg) (app.Model, tea.Cmd) {
	next, cmd := m.Update(msg)
	return mustModel(next), cmd
}

func typeText(m app.Model, text string) app.Model {
	for _, r := range text {
		m, _ = press(m, tea.KeyPressMsg{Code: r, Text: string(r)})
	}
	return m
}

func ctrlKey(m app.Model, code rune) (app.Model, tea.Cmd) {
	return press(m, tea.KeyPressMsg{Code: code, Mod: tea.ModCtrl})
}

func setSize(m app.Model, w, h int) app.Model {
	next, _ := m.Update(tea.WindowSizeMsg{Width: w, Height: h})
	return mustModel(next)
}

// runCmd executes a tea.Cmd (flattening batches) and dispatches the
// resulting messages into the model.
func runCmd(m app.Model, cmd tea.Cmd) app.Model {
	if cmd == nil {
		return m
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, sub := range batch {
			m = runCmd(m, sub)
		}
		return m
	}
	next, _ := m.Update(msg)
	return mustModel(next)
}

func viewContains(t *testing.T, m app.Model, want string) {
	t.Helper()
	v := m.View()
	if !strings.Contains(v.Content, want) {
		t.Errorf("view missing %q\n---\n%s", want, v.Content)
	}
}

func newModel(client api.Client) app.Model {
	m := app.New(client, nil, nil, nil)
	return setSize(m, 120, 40)
}

// --- Tests ---

func TestLandingSignupFlow(t *testing.T) {
	m := newModel(&mockClient{})
	defer m.Close()

	viewContains(t, m, "ĐĂNG KÝ CHỜ")

	m = typeText(m, "an@example.com")
	m, _ = press(m, tea.KeyPressMsg{Code: tea.KeyTab})
	m = typeText(m, "0901234567")
	m, cmd := press(m, tea.KeyPressMsg{Code: tea.KeyEnter})
	m = runCmd(m, cmd)

	viewContains(t, m, "CHẤP NHẬN CÔNG SINH HOÀN THÀNH")
}

func TestLandingSignupRejectsBadEmail(t *testing.T) {
	m := newModel(&mockClient{})
	defer m.Close()

	m = typeText(m, "nope")
	m, cmd := press(m, tea.KeyPressMsg{Code: tea.KeyEnter})
	m = runCmd(m, cmd)

	viewContains(t, m, "TẦN SỐ QUÉT KHÔNG HỢP LỆ")
}

func TestDropPageShowsLiveStatus(t *testing.T) {
	m := newModel(&mockClient{status: liveStatus()})
	defer m.Close()

	m, cmd := ctrlKey(m, 'd')
	m = runCmd(m, cmd)

	viewContains(t, m, "Áo DONALD")
	viewContains(t, m, "ĐANG MỞ")
	viewContains(t, m, "399.000")
	viewContains(t, m, "MUA NGAY")
}

func TestDropPageErrorOffersRetry(t *testing.T) {
	client := &mockClient{statusErr: &api.Error{Message: "Service Unavailable"}}
	m := newModel(client)
	defer m.Close()

	m, cmd := ctrlKey(m, 'd')
	m = runCmd(m, cmd)
	viewContains(t, m, "Service Unavailable")
	viewContains(t, m, "[r] thử lại")

	// Backend recovers; retry loads the drop.
	client.statusErr = nil
	client.status = liveStatus()
	m, cmd = press(m, tea.KeyPressMsg{Code: 'r', Text: "r"})
	m = runCmd(m, cmd)
	viewContains(t, m, "ĐANG MỞ")
}

func TestCheckoutOverlayOpensWhenLive(t *testing.T) {
	m := newModel(&mockClient{status: liveStatus()})
	defer m.Close()

	m, cmd := ctrlKey(m, 'd')
	m = runCmd(m, cmd)

	m, _ = press(m, tea.KeyPressMsg{Code: tea.KeyEnter})
	viewContains(t, m, "THÔNG TIN NHẬN HÀNG")

	// Type a phone number into the first field and move on; the required
	// error for the empty email field appears after tabbing past it.
	m = typeText(m, "0912345678")
	m, _ = press(m, tea.KeyPressMsg{Code: tea.KeyTab})
	m, _ = press(m, tea.KeyPressMsg{Code: tea.KeyTab})
	viewContains(t, m, "Trường này là bắt buộc")
}

func TestCheckoutClosedWhenSoldOut(t *testing.T) {
	status := liveStatus()
	status.Available = 0
	m := newModel(&mockClient{status: status})
	defer m.Close()

	m, cmd := ctrlKey(m, 'd')
	m = runCmd(m, cmd)

	viewContains(t, m, "ĐÃ HẾT")
	m, _ = press(m, tea.KeyPressMsg{Code: tea.KeyEnter})
	v := m.View()
	if strings.Contains(v.Content, "THÔNG TIN NHẬN HÀNG") {
		t.Error("checkout opened on a sold-out drop")
	}
}

func TestProductsNavigation(t *testing.T) {
	m := newModel(&mockClient{
		list: &api.ProductList{
			Products: []api.Product{
				{ID: 1, Name: "Áo DONALD", Price: 399000},
				{ID: 2, Name: "Nón DONALD", Price: 199000},
			},
			Total: 2,
		},
		product: &api.Product{ID: 2, Name: "Nón DONALD", Price: 199000, Stock: 3},
	})
	defer m.Close()

	m, cmd := ctrlKey(m, 'p')
	m = runCmd(m, cmd)
	viewContains(t, m, "Áo DONALD")
	viewContains(t, m, "Nón DONALD")

	m, _ = press(m, tea.KeyPressMsg{Code: tea.KeyDown})
	m, cmd = press(m, tea.KeyPressMsg{Code: tea.KeyEnter})
	m = runCmd(m, cmd)
	viewContains(t, m, "CHI TIẾT SẢN PHẨM")
	viewContains(t, m, "199.000")
}

func TestTrackOrderFlow(t *testing.T) {
	m := newModel(&mockClient{
		order: &api.TrackedOrder{OrderNumber: "DV-000042", Status: "shipped"},
	})
	defer m.Close()

	m, cmd := ctrlKey(m, 't')
	m = runCmd(m, cmd)

	// Missing fields first.
	m, cmd = press(m, tea.KeyPressMsg{Code: tea.KeyEnter})
	m = runCmd(m, cmd)
	viewContains(t, m, "Vui lòng nhập mã đơn hàng")

	m = typeText(m, "DV-000042")
	m, _ = press(m, tea.KeyPressMsg{Code: tea.KeyTab})
	m = typeText(m, "0912345678")
	m, cmd = press(m, tea.KeyPressMsg{Code: tea.KeyEnter})
	m = runCmd(m, cmd)

	viewContains(t, m, "Đang vận chuyển")
}

func TestVerifyFlow(t *testing.T) {
	m := newModel(&mockClient{
		symbi: &api.SymbicodeResult{
			Symbicode:         &api.Symbicode{Code: "DV-ABC123"},
			IsFirstActivation: true,
		},
	})
	defer m.Close()

	m, cmd := ctrlKey(m, 'k')
	m = runCmd(m, cmd)

	m = typeText(m, "dv-abc123")
	m, cmd = press(m, tea.KeyPressMsg{Code: tea.KeyEnter})
	m = runCmd(m, cmd)

	viewContains(t, m, "kích hoạt lần đầu")
}

func TestDropFetchAppliesOnMessageDispatch(t *testing.T) {
	m := newModel(&mockClient{status: liveStatus()})
	defer m.Close()

	// The command carries the fetched status back as a message; until that
	// message is dispatched the page stays in its loading state, so typing
	// and ticking never overlap with an in-flight fetch.
	m, cmd := ctrlKey(m, 'd')
	viewContains(t, m, "Đang tải trạng thái drop")

	m = runCmd(m, cmd)
	viewContains(t, m, "ĐANG MỞ")
}

func TestLandingCountsDownToNextDrop(t *testing.T) {
	starts := time.Now().Add(48*time.Hour + 30*time.Minute)
	m := newModel(&mockClient{
		drops:  []api.Drop{{ID: 1, Name: "VENOM DROP", TotalStock: 100, Sold: 10, StartsAt: starts}},
		status: liveStatus(),
	})
	defer m.Close()

	m, cmd := ctrlKey(m, 'h')
	m = runCmd(m, cmd)

	viewContains(t, m, "SYSTEM READY")
	viewContains(t, m, "DROP TIẾP THEO SAU")
	viewContains(t, m, "02 ngày 00 giờ")
}

func TestLandingAnnouncesLiveDrop(t *testing.T) {
	m := newModel(&mockClient{
		drops:  []api.Drop{{ID: 1, TotalStock: 100, Sold: 10, StartsAt: time.Now().Add(-time.Minute)}},
		status: liveStatus(),
	})
	defer m.Close()

	m, cmd := ctrlKey(m, 'h')
	m = runCmd(m, cmd)

	viewContains(t, m, "DROP ĐANG DIỄN RA")
}

func TestLandingOfflineWhenListingFails(t *testing.T) {
	m := newModel(&mockClient{dropsErr: &api.Error{Message: "Service Unavailable"}})
	defer m.Close()

	m, cmd := ctrlKey(m, 'h')
	m = runCmd(m, cmd)

	viewContains(t, m, "OFFLINE")
}

func TestCartCheckoutShowsPaymentLink(t *testing.T) {
	store, err := cart.Open(filepath.Join(t.TempDir(), "cart.db"))
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if err := store.Add(cart.Item{ProductID: 1, Name: "Áo DONALD", Price: 399000, Qty: 2}); err != nil {
		t.Fatalf("Add returned error: %v", err)
	}

	client := &mockClient{
		checkoutRes: &api.CheckoutResult{OrderCode: 1001, CheckoutURL: "https://pay.example/link/1001"},
	}
	m := setSize(app.New(client, store, nil, nil), 120, 40)
	defer m.Close()

	m, cmd := ctrlKey(m, 'g')
	m = runCmd(m, cmd)
	viewContains(t, m, "Áo DONALD")

	m, cmd = press(m, tea.KeyPressMsg{Code: 'c', Text: "c"})
	m = runCmd(m, cmd)
	viewContains(t, m, "https://pay.example/link/1001")

	if client.lastCheckout.Amount != 798000 {
		t.Errorf("checkout amount = %d, want 798000", client.lastCheckout.Amount)
	}
	if len(client.lastCheckout.Items) != 1 || client.lastCheckout.Items[0].Quantity != 2 {
		t.Errorf("checkout items = %+v", client.lastCheckout.Items)
	}
}

func TestCountdownTicks(t *testing.T) {
	status := liveStatus()
	m := newModel(&mockClient{status: status})
	defer m.Close()

	m, cmd := ctrlKey(m, 'd')
	m = runCmd(m, cmd)

	v := m.View()
	if !strings.Contains(v.Content, "00:") {
		t.Errorf("no countdown rendered:\n%s", v.Content)
	}
}

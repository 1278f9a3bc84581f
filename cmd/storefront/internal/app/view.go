// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2026 Donaldvibe. All rights reserved.

package app

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/donaldvibe/storefront/internal/drop"
	"github.com/donaldvibe/storefront/internal/orders"
)

// --- Styles ---

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF"))

	accentStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00FF88"))

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#000000")).
			Background(lipgloss.Color("#00FF88"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	errStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF4444")).
			Bold(true)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFAA00"))

	countdownStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFAA00"))

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444466")).
			Padding(0, 1)
)

var phaseLabels = map[drop.Phase]string{
	drop.PhaseWaiting: "SẮP MỞ",
	drop.PhaseLive:    "ĐANG MỞ",
	drop.PhaseSoldOut: "ĐÃ HẾT",
	drop.PhaseEnded:   "ĐÃ ĐÓNG",
}

// View renders the full-screen TUI.
func (m Model) View() tea.View {
	if m.width == 0 {
		v := tea.NewView("loading...")
		v.AltScreen = true
		return v
	}

	var s string
	switch m.page {
	case pageLanding:
		s = m.viewLanding()
	case pageDrop:
		s = m.viewDrop()
	case pageProducts:
		s = m.viewProducts()
	case pageProduct:
		s = m.viewProduct()
	case pageCart:
		s = m.viewCart()
	case pageTrack:
		s = m.viewTrack()
	case pageVerify:
		s = m.viewVerify()
	case pagePayment:
		s = m.viewPayment()
	}

	v := tea.NewView(s + "\n" + m.navBar())
	v.AltScreen = true
	return v
}

func (m Model) navBar() string {
	return dimStyle.Render("  ^h landing  ^d drop  ^p sản phẩm  ^g giỏ  ^t tra cứu  ^k symbicode  ^c thoát")
}

func cursor(active bool) string {
	if active {
		return "█"
	}
	return ""
}

// --- Landing ---

func (m Model) viewLanding() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("  DONALD"))
	b.WriteString(dimStyle.Render("  //  limited drops"))
	b.WriteString("\n\n")

	statusStyle := dimStyle
	switch m.landing.Status {
	case drop.LandingReady:
		statusStyle = accentStyle
	case drop.LandingOffline:
		statusStyle = errStyle
	}
	b.WriteString(statusStyle.Render("  " + m.landing.Status))
	b.WriteString("\n")

	switch {
	case m.landing.Live:
		b.WriteString(accentStyle.Render("  DROP ĐANG DIỄN RA"))
		b.WriteString(dimStyle.Render("  — nhấn ^d để vào"))
		b.WriteString("\n\n")
	case m.landing.StartsAt != nil:
		c := m.landing.Countdown
		b.WriteString(dimStyle.Render("  DROP TIẾP THEO SAU "))
		b.WriteString(countdownStyle.Render(fmt.Sprintf("%s ngày %s giờ %s phút %s giây",
			c.Days, c.Hours, c.Minutes, c.Seconds)))
		b.WriteString("\n\n")
	default:
		b.WriteString("\n")
	}

	b.WriteString(accentStyle.Render("  GIAO THỨC CỘNG SINH — ĐĂNG KÝ CHỜ"))
	b.WriteString("\n\n")

	b.WriteString("  Email: ")
	b.WriteString(m.signup.Email)
	b.WriteString(cursor(m.signupFocus == 0))
	b.WriteString("\n")
	b.WriteString("  SĐT:   ")
	b.WriteString(m.signup.Phone)
	b.WriteString(cursor(m.signupFocus == 1))
	b.WriteString("\n\n")

	if m.signup.Message != "" {
		style := errStyle
		if m.signup.Success {
			style = accentStyle
		}
		b.WriteString(style.Render("  " + m.signup.Message))
		b.WriteString("\n\n")
	}

	b.WriteString(dimStyle.Render("  [tab] chuyển ô  [enter] đăng ký  [esc] thoát"))
	return b.String()
}

// --- Drop ---

func (m Model) viewDrop() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("  DROP #" + m.drop.DropID))
	b.WriteString("\n\n")

	switch {
	case m.drop.Loading:
		b.WriteString(dimStyle.Render("  Đang tải trạng thái drop..."))
		return b.String()
	case m.drop.Err != nil:
		b.WriteString(errStyle.Render("  Không thể tải drop: " + m.drop.Err.Error()))
		b.WriteString("\n\n")
		b.WriteString(dimStyle.Render("  [r] thử lại  [esc] về trang chủ"))
		return b.String()
	case m.drop.Status == nil:
		return b.String()
	}

	st := m.drop.Status
	b.WriteString("  " + st.ProductName + "\n")
	b.WriteString(valueStyle.Render(fmt.Sprintf("  %s VND", formatVND(st.Price))))
	b.WriteString(dimStyle.Render(fmt.Sprintf("   còn %d/%d", st.Available, st.DropSize)))
	b.WriteString("\n\n")

	b.WriteString("  " + accentStyle.Render(phaseLabels[m.drop.Phase]))
	b.WriteString("   " + countdownStyle.Render(m.drop.Countdown))
	b.WriteString("\n\n")

	for _, row := range m.ticker.Rows() {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  %s %s · %s", row.Phone, row.Action, row.Time)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if m.payURL != "" {
		b.WriteString(accentStyle.Render("  Thanh toán tại: " + m.payURL))
		b.WriteString("\n\n")
	}

	if m.checkoutOpen {
		b.WriteString(m.viewCheckout())
		return b.String()
	}

	if m.drop.Disabled() {
		b.WriteString(dimStyle.Render("  Chưa thể mua lúc này."))
	} else {
		b.WriteString(selectedStyle.Render("  [enter] MUA NGAY  "))
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("  [p] sản phẩm  [t] tra cứu  [esc] trang chủ"))
	return b.String()
}

func (m Model) viewCheckout() string {
	labels := map[string]string{
		"phone":    "SĐT",
		"email":    "Email",
		"name":     "Họ tên",
		"address":  "Địa chỉ",
		"province": "Tỉnh/Thành",
		"district": "Quận/Huyện",
		"ward":     "Phường/Xã",
	}

	var b strings.Builder
	b.WriteString(accentStyle.Render("  THÔNG TIN NHẬN HÀNG"))
	b.WriteString("\n")

	for i, field := range checkoutFields {
		label := fmt.Sprintf("%-11s", labels[field])
		value := m.checkoutDisplayValue(field)
		line := "  " + label + value
		if i == m.focusIdx {
			line = "  " + selectedStyle.Render(label) + value + "█"
		}
		b.WriteString(line)
		if msg, ok := m.checkout.Errors[field]; ok {
			b.WriteString("  " + errStyle.Render(msg))
		}
		b.WriteString("\n")
	}

	if m.purchaseErr != "" {
		b.WriteString("\n")
		b.WriteString(errStyle.Render("  " + m.purchaseErr))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.checkout.Purchasing() {
		b.WriteString(dimStyle.Render("  Đang xử lý..."))
	} else {
		b.WriteString(dimStyle.Render("  [tab] chuyển ô  [←/→] chọn địa phương  [enter] mua  [esc] đóng"))
	}
	return panelStyle.Render(b.String())
}

func (m Model) checkoutDisplayValue(field string) string {
	switch field {
	case "province":
		return m.checkout.Contact.Province
	case "district":
		return m.checkout.Contact.District
	case "ward":
		return m.checkout.Contact.Ward
	}
	return m.checkoutField(field)
}

// --- Catalogue ---

func (m Model) viewProducts() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("  SẢN PHẨM"))
	b.WriteString(dimStyle.Render(fmt.Sprintf("  trang %d/%d", m.lister.Page, m.lister.Pages())))
	b.WriteString("\n\n")

	switch {
	case m.lister.Loading:
		b.WriteString(dimStyle.Render("  Đang tải..."))
	case m.lister.Err != "":
		b.WriteString(errStyle.Render("  " + m.lister.Err))
	case len(m.lister.Products) == 0:
		b.WriteString(dimStyle.Render("  Chưa có sản phẩm."))
	default:
		for i, p := range m.lister.Products {
			line := fmt.Sprintf("  %-40s %12s VND", p.Name, formatVND(p.Price))
			if i == m.focusIdx {
				line = selectedStyle.Render(line)
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("  [↑/↓] chọn  [enter] xem  [←/→] trang  [esc] trang chủ"))
	return b.String()
}

func (m Model) viewProduct() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("  CHI TIẾT SẢN PHẨM"))
	b.WriteString("\n\n")

	switch {
	case m.detail.Loading:
		b.WriteString(dimStyle.Render("  Đang tải..."))
		return b.String()
	case m.detail.Err != "":
		b.WriteString(errStyle.Render("  " + m.detail.Err))
		return b.String()
	case m.detail.Product == nil:
		b.WriteString(dimStyle.Render("  Không có sản phẩm."))
		return b.String()
	}

	p := m.detail.Product
	b.WriteString("  " + p.Name + "\n")
	if p.Description != "" {
		b.WriteString(dimStyle.Render("  " + p.Description))
		b.WriteString("\n")
	}
	b.WriteString(valueStyle.Render(fmt.Sprintf("  %s VND", formatVND(p.Price))))
	b.WriteString(dimStyle.Render(fmt.Sprintf("   kho: %d", p.Stock)))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("  Số lượng: %d\n", m.detail.Qty))

	if m.detail.Notice != "" {
		b.WriteString("\n")
		b.WriteString(accentStyle.Render("  " + m.detail.Notice))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("  [+/-] số lượng  [enter] thêm vào giỏ  [esc] quay lại"))
	return b.String()
}

func (m Model) viewCart() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("  GIỎ HÀNG"))
	b.WriteString("\n\n")

	if len(m.cartItems) == 0 {
		b.WriteString(dimStyle.Render("  Giỏ hàng trống."))
		b.WriteString("\n\n")
		b.WriteString(dimStyle.Render("  [esc] quay lại"))
		return b.String()
	}

	for i, item := range m.cartItems {
		line := fmt.Sprintf("  %-36s x%-3d %12s VND", item.Name, item.Qty, formatVND(item.Price*uint64(item.Qty)))
		if i == m.focusIdx {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(valueStyle.Render(fmt.Sprintf("  Tổng: %s VND", formatVND(m.cartTotal))))
	b.WriteString("\n\n")

	switch {
	case m.cartBusy:
		b.WriteString(dimStyle.Render("  Đang tạo liên kết thanh toán..."))
		b.WriteString("\n\n")
	case m.cartPayURL != "":
		b.WriteString(accentStyle.Render("  Thanh toán tại: " + m.cartPayURL))
		b.WriteString("\n\n")
	case m.cartErr != "":
		b.WriteString(errStyle.Render("  " + m.cartErr))
		b.WriteString("\n\n")
	}

	b.WriteString(dimStyle.Render("  [↑/↓] chọn  [+/-] số lượng  [x] xóa  [c] thanh toán  [esc] quay lại"))
	return b.String()
}

// --- Track order ---

func (m Model) viewTrack() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("  TRA CỨU GIAO DỊCH"))
	b.WriteString("\n\n")

	if m.track.Order != nil {
		return b.String() + m.viewTrackedOrder()
	}

	fields := []struct {
		label, value string
	}{
		{"Mã đơn hàng", m.track.OrderNumber},
		{"SĐT        ", m.track.Phone},
		{"Email      ", m.track.Email},
	}
	errKeys := []string{"orderNumber", "phone", ""}
	for i, f := range fields {
		b.WriteString("  " + f.label + ": " + f.value + cursor(i == m.focusIdx))
		if errKeys[i] != "" {
			if msg, ok := m.track.Errors[errKeys[i]]; ok {
				b.WriteString("  " + errStyle.Render(msg))
			}
		}
		b.WriteString("\n")
	}

	if m.track.Loading {
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("  Đang giải mã..."))
	} else if m.track.Err != "" {
		b.WriteString("\n")
		b.WriteString(errStyle.Render("  " + m.track.Err))
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("  [tab] chuyển ô  [enter] truy vấn  [esc] trang chủ"))
	return b.String()
}

func (m Model) viewTrackedOrder() string {
	o := m.track.Order
	var b strings.Builder
	b.WriteString("  " + dimStyle.Render("Mã giao dịch: ") + o.OrderNumber + "\n")
	b.WriteString("  " + accentStyle.Render(orders.StatusLabel(o.Status)))
	b.WriteString("\n\n")

	for _, step := range orders.StatusSteps(o.Status) {
		mark := dimStyle.Render("○")
		if step.Completed {
			mark = accentStyle.Render("●")
		} else if step.Active {
			mark = valueStyle.Render("◐")
		}
		b.WriteString("  " + mark + " " + step.Label + "\n")
	}

	if len(o.Items) > 0 {
		b.WriteString("\n")
		for _, item := range o.Items {
			b.WriteString(dimStyle.Render(fmt.Sprintf("  %s x%d — %s VND", item.Name, item.Quantity, formatVND(item.Price))))
			b.WriteString("\n")
		}
		b.WriteString(valueStyle.Render(fmt.Sprintf("  Tổng: %s VND", formatVND(o.Total))))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("  [r/esc] tra cứu khác  [q] trang chủ"))
	return b.String()
}

// --- Verify ---

func (m Model) viewVerify() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("  XÁC THỰC SYMBICODE"))
	b.WriteString("\n\n")
	b.WriteString("  Mã: " + m.verify.Code + "█\n\n")

	if m.verify.Verifying {
		b.WriteString(dimStyle.Render("  Đang xác thực..."))
		b.WriteString("\n")
	} else if r := m.verify.Result; r != nil {
		if !r.Success {
			b.WriteString(errStyle.Render("  " + r.Message))
		} else if r.IsFirstActivation {
			b.WriteString(accentStyle.Render("  CHÍNH HÃNG — kích hoạt lần đầu"))
		} else {
			b.WriteString(valueStyle.Render("  CHÍNH HÃNG — mã đã được kích hoạt trước đó"))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("  [enter] xác thực  [esc] quay lại"))
	return b.String()
}

// --- Payment ---

func (m Model) viewPayment() string {
	var b strings.Builder
	if m.pay.IsPaid() {
		b.WriteString(accentStyle.Render("  THANH TOÁN THÀNH CÔNG"))
		b.WriteString("\n\n")
		b.WriteString("  Mã đơn: " + m.pay.OrderCode + "\n")
		if m.payInfo != nil {
			b.WriteString(dimStyle.Render(fmt.Sprintf("  Đã xác nhận %s VND (%s)", formatVND(uint64(m.payInfo.Amount)), m.payInfo.Status)))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("  [t] tra cứu đơn  [esc] trang chủ"))
		return b.String()
	}

	b.WriteString(errStyle.Render("  THANH TOÁN CHƯA HOÀN TẤT"))
	b.WriteString("\n\n")
	if m.pay.OrderCode != "" {
		b.WriteString("  Mã đơn: " + m.pay.OrderCode + "\n\n")
	}
	b.WriteString(dimStyle.Render("  [r] thử lại  [esc] trang chủ"))
	return b.String()
}

// formatVND groups digits in thousands, the way prices are written locally.
func formatVND(n uint64) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	return s + "." + strings.Join(parts, ".")
}

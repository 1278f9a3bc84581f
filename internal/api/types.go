package api

import "time"

// DropStatus is the backend's view of a limited drop at the moment of the
// request. The server is the sole source of truth for timing and stock; Now
// carries the server clock so clients can correct their own skew.
type DropStatus struct {
	DropID      uint64     `json:"drop_id"`
	Name        string     `json:"name"`
	ProductID   uint64     `json:"product_id"`
	ProductName string     `json:"product_name"`
	Price       uint64     `json:"price"`
	TotalStock  uint32     `json:"total_stock"`
	Sold        uint32     `json:"sold"`
	Available   int64      `json:"available"`
	DropSize    uint32     `json:"drop_size"`
	IsActive    bool       `json:"is_active"`
	StartsAt    time.Time  `json:"starts_at"`
	EndsAt      *time.Time `json:"ends_at"`
	Now         time.Time  `json:"now"`
}

// Drop is a row in the public drops listing.
type Drop struct {
	ID         uint64     `json:"id"`
	Name       string     `json:"name"`
	ProductID  uint64     `json:"product_id"`
	TotalStock uint32     `json:"total_stock"`
	DropSize   uint32     `json:"drop_size"`
	Sold       uint32     `json:"sold"`
	StartsAt   time.Time  `json:"starts_at"`
	EndsAt     *time.Time `json:"ends_at"`
}

// PurchaseRequest is the checkout payload for a drop purchase.
// Quantity is always 1 in the current flow.
type PurchaseRequest struct {
	Quantity int    `json:"quantity"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Address  string `json:"address"`
	Province string `json:"province"`
	District string `json:"district"`
	Ward     string `json:"ward"`
}

// PurchaseResult carries the payment redirect for a created order.
type PurchaseResult struct {
	Message    string `json:"message"`
	PaymentURL string `json:"payment_url"`
	OrderCode  int64  `json:"order_code"`
}

// TrackOrderRequest looks up an order by its number plus the phone used at
// checkout. Email is optional.
type TrackOrderRequest struct {
	OrderNumber string `json:"orderNumber"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
}

// TrackedOrder is the customer-facing order state returned by track-order.
type TrackedOrder struct {
	OrderNumber string        `json:"order_number"`
	Status      string        `json:"status"` // pending | shipped | delivered | cancelled
	Total       uint64        `json:"total"`
	CreatedAt   time.Time     `json:"created_at"`
	Items       []TrackedItem `json:"items"`
}

type TrackedItem struct {
	Name     string `json:"name"`
	Price    uint64 `json:"price"`
	Quantity int    `json:"quantity"`
}

// PaymentInfo is the PayOS view of a payment, used by verify/cancel.
type PaymentInfo struct {
	OrderCode int64  `json:"orderCode"`
	Amount    int64  `json:"amount"`
	Status    string `json:"status"` // PENDING | PAID | CANCELLED
}

// Symbicode is a per-unit authenticity code. A code activates exactly once;
// later verifications still succeed but report is_first_activation=false.
type Symbicode struct {
	Code        string     `json:"code"`
	ProductID   uint64     `json:"product_id"`
	OrderID     uint64     `json:"order_id"`
	IsActivated bool       `json:"is_activated"`
	ActivatedAt *time.Time `json:"activated_at"`
}

// SymbicodeResult is the verify endpoint response.
type SymbicodeResult struct {
	Symbicode         *Symbicode `json:"symbicode"`
	IsFirstActivation bool       `json:"is_first_activation"`
}

// Product is a catalogue entry.
type Product struct {
	ID          uint64   `json:"id"`
	Slug        string   `json:"slug"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Thumbnail   string   `json:"thumbnail"`
	Images      []string `json:"images"`
	Price       uint64   `json:"price"`
	Stock       uint32   `json:"stock"`
}

// ProductQuery maps to the /products listing query string. Zero values are
// omitted from the request.
type ProductQuery struct {
	Page     int
	Limit    int
	Search   string
	Sort     string
	MinPrice uint64
	MaxPrice uint64
}

// ProductList is a page of products. The backend has shipped both
// {data:[...]} and {products:[...]} envelopes; the client normalizes either.
type ProductList struct {
	Products []Product
	Total    int
}

// CheckoutRequest creates a standalone PayOS checkout (cart flow, not drops).
type CheckoutRequest struct {
	Amount      int64          `json:"amount"`
	Description string         `json:"description"`
	Items       []CheckoutItem `json:"items"`
	ReturnURL   string         `json:"returnUrl"`
	CancelURL   string         `json:"cancelUrl"`
}

type CheckoutItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Price    int64  `json:"price"`
}

// CheckoutResult carries the hosted checkout page for a created payment link.
type CheckoutResult struct {
	OrderCode   int64  `json:"orderCode"`
	CheckoutURL string `json:"checkoutUrl"`
	QRCode      string `json:"qrCode"`
}

// Package api is the storefront's client for the drop/payment backend.
//
// Every call goes through a single request helper that normalizes JSON
// handling and error mapping: non-2xx responses become an *Error whose
// message is extracted from the body ("message", then "error", then raw
// text, then "API Error: <status>"), and 2xx responses with an empty or
// unparsable body decode to the zero value rather than failing.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Client is the interface for the storefront backend REST API.
// Production code uses New; tests inject a mock.
type Client interface {
	// Drops lists the currently published drops.
	Drops(ctx context.Context) ([]Drop, error)

	// DropStatus returns live stock and timing for one drop, including the
	// server clock for skew correction.
	DropStatus(ctx context.Context, dropID string) (*DropStatus, error)

	// Purchase creates an order for the drop and returns the payment
	// redirect. Each attempt carries a fresh X-Idempotency-Key so the
	// backend can collapse client retries into one order.
	Purchase(ctx context.Context, dropID string, req PurchaseRequest) (*PurchaseResult, error)

	// TrackOrder looks up an order by number and contact phone.
	TrackOrder(ctx context.Context, req TrackOrderRequest) (*TrackedOrder, error)

	// VerifyPayment fetches the payment state for an order code.
	VerifyPayment(ctx context.Context, orderCode int64) (*PaymentInfo, error)

	// CancelPayment cancels a pending payment.
	CancelPayment(ctx context.Context, orderCode int64) error

	// VerifySymbicode checks an authenticity code against the backend.
	VerifySymbicode(ctx context.Context, code string) (*SymbicodeResult, error)

	// Products lists catalogue products.
	Products(ctx context.Context, q ProductQuery) (*ProductList, error)

	// Product fetches one product by numeric id or slug.
	Product(ctx context.Context, idOrSlug string) (*Product, error)

	// CreateCheckout creates a standalone PayOS checkout (cart flow).
	CreateCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutResult, error)
}

// Error is the single error kind raised for any non-2xx backend response.
// It carries only the extracted human message, never a structured code.
type Error struct {
	Message string
}

func (e *Error) Error() string { return e.Message }

type httpClient struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
}

// New returns a Client talking to baseURL with the given per-call timeout.
func New(baseURL string, timeout time.Duration) Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &httpClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		timeout:    timeout,
	}
}

// do issues one request. data (if non-nil) is JSON-encoded; extra headers are
// applied after the Content-Type default so callers may override it. A nil
// out discards the body.
func (c *httpClient) do(ctx context.Context, method, endpoint string, data any, extra http.Header, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	for key, values := range extra {
		req.Header.Del(key)
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: read body: %w", method, endpoint, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{Message: extractMessage(raw, resp.StatusCode)}
	}

	if out != nil {
		// An empty or non-JSON success body is fine; callers must not
		// assume a body is always present.
		_ = json.Unmarshal(raw, out)
	}
	return nil
}

// extractMessage pulls a human message out of an error response body.
func extractMessage(raw []byte, status int) string {
	var envelope struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil {
		if envelope.Message != "" {
			return envelope.Message
		}
		if envelope.Error != "" {
			return envelope.Error
		}
	}
	if text := strings.TrimSpace(string(raw)); text != "" {
		return text
	}
	return fmt.Sprintf("API Error: %d", status)
}

func (c *httpClient) Drops(ctx context.Context) ([]Drop, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/api/drops", nil, nil, &raw); err != nil {
		return nil, err
	}

	// The endpoint has served both a bare array and a {drops:[...]} envelope.
	var drops []Drop
	if err := json.Unmarshal(raw, &drops); err == nil {
		return drops, nil
	}
	var envelope struct {
		Drops []Drop `json:"drops"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil {
		return envelope.Drops, nil
	}
	return nil, nil
}

func (c *httpClient) DropStatus(ctx context.Context, dropID string) (*DropStatus, error) {
	var status DropStatus
	if err := c.do(ctx, http.MethodGet, "/api/drops/"+url.PathEscape(dropID)+"/status", nil, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func (c *httpClient) Purchase(ctx context.Context, dropID string, req PurchaseRequest) (*PurchaseResult, error) {
	headers := http.Header{}
	headers.Set("X-Idempotency-Key", uuid.NewString())

	var result PurchaseResult
	if err := c.do(ctx, http.MethodPost, "/api/drops/"+url.PathEscape(dropID)+"/purchase", req, headers, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *httpClient) TrackOrder(ctx context.Context, req TrackOrderRequest) (*TrackedOrder, error) {
	var envelope struct {
		Data  *TrackedOrder `json:"data"`
		Order *TrackedOrder `json:"order"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/payment/track-order", req, nil, &envelope); err != nil {
		return nil, err
	}
	if envelope.Data != nil {
		return envelope.Data, nil
	}
	return envelope.Order, nil
}

func (c *httpClient) VerifyPayment(ctx context.Context, orderCode int64) (*PaymentInfo, error) {
	var envelope struct {
		Data *PaymentInfo `json:"data"`
	}
	endpoint := "/api/payment/payos/verify/" + strconv.FormatInt(orderCode, 10)
	if err := c.do(ctx, http.MethodGet, endpoint, nil, nil, &envelope); err != nil {
		return nil, err
	}
	return envelope.Data, nil
}

func (c *httpClient) CancelPayment(ctx context.Context, orderCode int64) error {
	endpoint := "/api/payment/payos/cancel/" + strconv.FormatInt(orderCode, 10)
	return c.do(ctx, http.MethodPost, endpoint, nil, nil, nil)
}

func (c *httpClient) VerifySymbicode(ctx context.Context, code string) (*SymbicodeResult, error) {
	payload := map[string]string{"code": code}
	var result SymbicodeResult
	if err := c.do(ctx, http.MethodPost, "/api/symbicode/verify", payload, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *httpClient) Products(ctx context.Context, q ProductQuery) (*ProductList, error) {
	params := url.Values{}
	if q.Page > 0 {
		params.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Search != "" {
		params.Set("search", q.Search)
	}
	if q.Sort != "" {
		params.Set("sort", q.Sort)
	}
	if q.MinPrice > 0 {
		params.Set("min_price", strconv.FormatUint(q.MinPrice, 10))
	}
	if q.MaxPrice > 0 {
		params.Set("max_price", strconv.FormatUint(q.MaxPrice, 10))
	}

	endpoint := "/products"
	if qs := params.Encode(); qs != "" {
		endpoint += "?" + qs
	}

	var envelope struct {
		Data     []Product `json:"data"`
		Products []Product `json:"products"`
		Total    int       `json:"total"`
		Meta     struct {
			Total int `json:"total"`
		} `json:"meta"`
	}
	if err := c.do(ctx, http.MethodGet, endpoint, nil, nil, &envelope); err != nil {
		return nil, err
	}

	list := &ProductList{Products: envelope.Data, Total: envelope.Total}
	if list.Products == nil {
		list.Products = envelope.Products
	}
	if list.Total == 0 {
		list.Total = envelope.Meta.Total
	}
	return list, nil
}

func (c *httpClient) Product(ctx context.Context, idOrSlug string) (*Product, error) {
	var product Product
	if err := c.do(ctx, http.MethodGet, "/products/"+url.PathEscape(idOrSlug), nil, nil, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (c *httpClient) CreateCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutResult, error) {
	var result CheckoutResult
	if err := c.do(ctx, http.MethodPost, "/payment/payos/checkout", req, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

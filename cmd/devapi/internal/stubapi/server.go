package stubapi

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/donaldvibe/storefront/internal/api"
)

// Server is an in-memory drop backend for local development and load
// testing. It implements the same endpoints and envelopes as the
// production API, without a database or a real PayOS account: payment
// URLs are fake, and stock is claimed by the webhook exactly like the
// real flow.
type Server struct {
	mu sync.Mutex

	drops    map[uint64]*dropState
	products []api.Product

	orders      map[int64]*order  // by PayOS order code
	byNumber    map[string]*order // by customer-facing order number
	idempotency map[string]int64  // X-Idempotency-Key -> order code
	nextOrder   int64

	symbicodes map[string]*api.Symbicode
}

type dropState struct {
	api.Drop
	Price       uint64
	ProductName string
}

type order struct {
	Code      int64
	Number    string
	DropID    uint64
	Name      string
	Phone     string
	Email     string
	ItemName  string
	Price     uint64
	Quantity  int
	Payment   string // PENDING | PAID | CANCELLED
	Status    string // pending | shipped | delivered | cancelled
	CreatedAt time.Time
}

// New seeds a server with one live drop, a small catalogue, and a few
// unactivated symbicodes.
func New() *Server {
	now := time.Now().UTC()
	ends := now.Add(24 * time.Hour)

	s := &Server{
		drops:       make(map[uint64]*dropState),
		orders:      make(map[int64]*order),
		byNumber:    make(map[string]*order),
		idempotency: make(map[string]int64),
		nextOrder:   1000,
		symbicodes:  make(map[string]*api.Symbicode),
	}

	s.drops[1] = &dropState{
		Drop: api.Drop{
			ID:         1,
			Name:       "VENOM DROP",
			ProductID:  1,
			TotalStock: 100,
			DropSize:   100,
			StartsAt:   now.Add(-time.Hour),
			EndsAt:     &ends,
		},
		Price:       399000,
		ProductName: "Áo DONALD",
	}

	s.products = []api.Product{
		{ID: 1, Slug: "ao-donald", Name: "Áo DONALD", Description: "Oversized tee, limited run.", Price: 399000, Stock: 100},
		{ID: 2, Slug: "ao-symbiote", Name: "Áo SYMBIOTE", Description: "Black on black.", Price: 449000, Stock: 50},
		{ID: 3, Slug: "tote-donald", Name: "Túi tote DONALD", Description: "Canvas tote.", Price: 199000, Stock: 200},
	}

	for _, code := range []string{"DONALD-0001", "DONALD-0002", "DONALD-0003"} {
		s.symbicodes[code] = &api.Symbicode{Code: code, ProductID: 1}
	}

	return s
}

// Routes mounts every endpoint onto r.
func (s *Server) Routes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/drops", s.listDrops)
		r.Get("/drops/{id}/status", s.dropStatus)
		r.Post("/drops/{id}/purchase", s.purchase)
		r.Post("/limited-drops/webhook/payos", s.payosWebhook)
		r.Post("/payment/track-order", s.trackOrder)
		r.Get("/payment/payos/verify/{orderCode}", s.verifyPayment)
		r.Post("/payment/payos/cancel/{orderCode}", s.cancelPayment)
		r.Post("/symbicode/verify", s.verifySymbicode)
	})
	r.Get("/products", s.listProducts)
	r.Get("/products/{idOrSlug}", s.getProduct)
	r.Post("/payment/payos/checkout", s.checkout)
}

// --- drops ---

func (s *Server) listDrops(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	drops := make([]api.Drop, 0, len(s.drops))
	for _, d := range s.drops {
		drops = append(drops, d.Drop)
	}
	s.mu.Unlock()

	sort.Slice(drops, func(i, j int) bool { return drops[i].ID < drops[j].ID })
	jsonOK(w, http.StatusOK, map[string]interface{}{"drops": drops})
}

func (s *Server) dropStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		jsonError(w, "Invalid drop ID", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	d, ok := s.drops[id]
	if !ok {
		s.mu.Unlock()
		jsonError(w, "Drop not found", http.StatusNotFound)
		return
	}
	status := s.statusLocked(d)
	s.mu.Unlock()

	jsonOK(w, http.StatusOK, status)
}

// statusLocked builds the public status for a drop. Callers hold s.mu.
func (s *Server) statusLocked(d *dropState) api.DropStatus {
	now := time.Now().UTC()
	available := int64(d.DropSize) - int64(d.Sold)
	if available < 0 {
		available = 0
	}
	active := now.After(d.StartsAt) && (d.EndsAt == nil || now.Before(*d.EndsAt))
	return api.DropStatus{
		DropID:      d.ID,
		Name:        d.Name,
		ProductID:   d.ProductID,
		ProductName: d.ProductName,
		Price:       d.Price,
		TotalStock:  d.TotalStock,
		Sold:        d.Sold,
		Available:   available,
		DropSize:    d.DropSize,
		IsActive:    active,
		StartsAt:    d.StartsAt,
		EndsAt:      d.EndsAt,
		Now:         now,
	}
}

func (s *Server) purchase(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		jsonError(w, "Invalid drop ID", http.StatusBadRequest)
		return
	}

	var req api.PurchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonMessage(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if msg := validatePurchase(req); msg != "" {
		jsonMessage(w, http.StatusBadRequest, msg)
		return
	}

	idemKey := r.Header.Get("X-Idempotency-Key")

	s.mu.Lock()
	defer s.mu.Unlock()

	if idemKey != "" {
		if code, ok := s.idempotency[idemKey]; ok {
			ord := s.orders[code]
			jsonOK(w, http.StatusOK, api.PurchaseResult{
				Message:    "Order created",
				PaymentURL: paymentURL(ord.Code),
				OrderCode:  ord.Code,
			})
			return
		}
	}

	d, ok := s.drops[id]
	if !ok {
		jsonError(w, "Drop not found", http.StatusNotFound)
		return
	}

	now := time.Now().UTC()
	if now.Before(d.StartsAt) {
		jsonError(w, "limited drop has not started", http.StatusBadRequest)
		return
	}
	if d.EndsAt != nil && now.After(*d.EndsAt) {
		jsonError(w, "limited drop has ended", http.StatusBadRequest)
		return
	}
	if d.Sold >= d.DropSize {
		jsonError(w, "limited drop is sold out", http.StatusBadRequest)
		return
	}

	s.nextOrder++
	ord := &order{
		Code:      s.nextOrder,
		Number:    fmt.Sprintf("DV-%06d", s.nextOrder),
		DropID:    d.ID,
		Name:      req.Name,
		Phone:     req.Phone,
		Email:     req.Email,
		ItemName:  d.ProductName,
		Price:     d.Price,
		Quantity:  req.Quantity,
		Payment:   "PENDING",
		Status:    "pending",
		CreatedAt: now,
	}
	s.orders[ord.Code] = ord
	s.byNumber[ord.Number] = ord
	if idemKey != "" {
		s.idempotency[idemKey] = ord.Code
	}

	jsonOK(w, http.StatusOK, api.PurchaseResult{
		Message:    "Order created",
		PaymentURL: paymentURL(ord.Code),
		OrderCode:  ord.Code,
	})
}

func validatePurchase(req api.PurchaseRequest) string {
	switch {
	case req.Name == "":
		return "Họ và tên là bắt buộc"
	case req.Phone == "":
		return "Số điện thoại là bắt buộc"
	case req.Email == "":
		return "Email là bắt buộc"
	case req.Address == "":
		return "Địa chỉ là bắt buộc"
	case req.Province == "":
		return "Tỉnh / thành phố là bắt buộc"
	case req.District == "":
		return "Quận / huyện là bắt buộc"
	case req.Ward == "":
		return "Phường / xã là bắt buộc"
	case req.Quantity <= 0:
		return "Số lượng phải lớn hơn 0"
	}
	return ""
}

func paymentURL(code int64) string {
	return "https://pay.payos.vn/web/" + uuid.NewString() + "?orderCode=" + strconv.FormatInt(code, 10)
}

// --- payments ---

func (s *Server) payosWebhook(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Code string `json:"code"`
		Data struct {
			OrderCode int64  `json:"orderCode"`
			Amount    int64  `json:"amount"`
			Status    string `json:"status"`
		} `json:"data"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		jsonError(w, "Invalid webhook payload", http.StatusBadRequest)
		return
	}

	if payload.Data.Status != "PAID" {
		jsonMessage(w, http.StatusOK, "Payment not completed")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ord, ok := s.orders[payload.Data.OrderCode]
	if !ok {
		jsonError(w, "Internal Server Error, please retry", http.StatusInternalServerError)
		return
	}
	if ord.Payment == "PAID" {
		// Webhook retries are expected; the first delivery won.
		jsonMessage(w, http.StatusOK, "Payment processed successfully")
		return
	}

	d := s.drops[ord.DropID]
	if d == nil || d.Sold >= d.DropSize {
		jsonError(w, "limited drop is sold out", http.StatusBadRequest)
		return
	}

	d.Sold++
	ord.Payment = "PAID"
	log.Printf("order %s paid (drop %d, %d/%d sold)", ord.Number, d.ID, d.Sold, d.DropSize)
	jsonMessage(w, http.StatusOK, "Payment processed successfully")
}

func (s *Server) trackOrder(w http.ResponseWriter, r *http.Request) {
	var req api.TrackOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	ord, ok := s.byNumber[strings.TrimSpace(req.OrderNumber)]
	if ok && ord.Phone != strings.TrimSpace(req.Phone) {
		ok = false
	}
	var tracked api.TrackedOrder
	if ok {
		tracked = api.TrackedOrder{
			OrderNumber: ord.Number,
			Status:      ord.Status,
			Total:       ord.Price * uint64(ord.Quantity),
			CreatedAt:   ord.CreatedAt,
			Items: []api.TrackedItem{
				{Name: ord.ItemName, Price: ord.Price, Quantity: ord.Quantity},
			},
		}
	}
	s.mu.Unlock()

	if !ok {
		jsonMessage(w, http.StatusNotFound, "Không tìm thấy đơn hàng")
		return
	}
	jsonOK(w, http.StatusOK, map[string]interface{}{"data": tracked})
}

func (s *Server) verifyPayment(w http.ResponseWriter, r *http.Request) {
	code, err := strconv.ParseInt(chi.URLParam(r, "orderCode"), 10, 64)
	if err != nil {
		jsonError(w, "Invalid order code", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	ord, ok := s.orders[code]
	var info api.PaymentInfo
	if ok {
		info = api.PaymentInfo{
			OrderCode: ord.Code,
			Amount:    int64(ord.Price) * int64(ord.Quantity),
			Status:    ord.Payment,
		}
	}
	s.mu.Unlock()

	if !ok {
		jsonError(w, "Order not found", http.StatusNotFound)
		return
	}
	jsonOK(w, http.StatusOK, map[string]interface{}{"data": info})
}

func (s *Server) cancelPayment(w http.ResponseWriter, r *http.Request) {
	code, err := strconv.ParseInt(chi.URLParam(r, "orderCode"), 10, 64)
	if err != nil {
		jsonError(w, "Invalid order code", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	ord, ok := s.orders[code]
	if ok && ord.Payment == "PENDING" {
		ord.Payment = "CANCELLED"
		ord.Status = "cancelled"
	}
	s.mu.Unlock()

	if !ok {
		jsonError(w, "Order not found", http.StatusNotFound)
		return
	}
	jsonMessage(w, http.StatusOK, "Payment cancelled")
}

// --- symbicode ---

func (s *Server) verifySymbicode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	code := strings.ToUpper(strings.TrimSpace(req.Code))

	s.mu.Lock()
	sc, ok := s.symbicodes[code]
	var result api.SymbicodeResult
	if ok {
		first := !sc.IsActivated
		if first {
			now := time.Now().UTC()
			sc.IsActivated = true
			sc.ActivatedAt = &now
		}
		copied := *sc
		result = api.SymbicodeResult{Symbicode: &copied, IsFirstActivation: first}
	}
	s.mu.Unlock()

	if !ok {
		jsonError(w, "Invalid symbicode", http.StatusBadRequest)
		return
	}
	jsonOK(w, http.StatusOK, result)
}

// --- products ---

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit < 1 {
		limit = 12
	}
	search := strings.ToLower(q.Get("search"))
	minPrice, _ := strconv.ParseUint(q.Get("min_price"), 10, 64)
	maxPrice, _ := strconv.ParseUint(q.Get("max_price"), 10, 64)

	s.mu.Lock()
	filtered := make([]api.Product, 0, len(s.products))
	for _, p := range s.products {
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) {
			continue
		}
		if minPrice > 0 && p.Price < minPrice {
			continue
		}
		if maxPrice > 0 && p.Price > maxPrice {
			continue
		}
		filtered = append(filtered, p)
	}
	s.mu.Unlock()

	switch q.Get("sort") {
	case "price_asc":
		sort.Slice(filtered, func(i, j int) bool { return filtered[i].Price < filtered[j].Price })
	case "price_desc":
		sort.Slice(filtered, func(i, j int) bool { return filtered[i].Price > filtered[j].Price })
	}

	total := len(filtered)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	jsonOK(w, http.StatusOK, map[string]interface{}{
		"data": filtered[start:end],
		"meta": map[string]int{"total": total},
	})
}

func (s *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "idOrSlug")
	id, idErr := strconv.ParseUint(key, 10, 64)

	s.mu.Lock()
	var found *api.Product
	for i := range s.products {
		p := &s.products[i]
		if (idErr == nil && p.ID == id) || p.Slug == key {
			found = p
			break
		}
	}
	var product api.Product
	if found != nil {
		product = *found
	}
	s.mu.Unlock()

	if found == nil {
		jsonError(w, "Product not found", http.StatusNotFound)
		return
	}
	// The backend returns the product bare, not in a data envelope.
	jsonOK(w, http.StatusOK, product)
}

func (s *Server) checkout(w http.ResponseWriter, r *http.Request) {
	var req api.CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Amount <= 0 {
		jsonError(w, "Amount must be greater than 0", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.nextOrder++
	code := s.nextOrder
	s.mu.Unlock()

	jsonOK(w, http.StatusOK, api.CheckoutResult{
		OrderCode:   code,
		CheckoutURL: "https://pay.payos.vn/web/" + uuid.NewString(),
		QRCode:      "00020101021238570010A000000727" + strconv.FormatInt(code, 10),
	})
}

// --- helpers ---

func jsonOK(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func jsonError(w http.ResponseWriter, msg string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// jsonMessage mirrors the production backend's {"message": ...} envelope,
// which the client prefers over "error" when both could apply.
func jsonMessage(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": msg})
}

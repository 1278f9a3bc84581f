// Package products implements the catalogue pages: the paged product list
// and the single-product detail view with add-to-cart.
package products

import (
	"context"
	"strconv"

	"github.com/donaldvibe/storefront/internal/api"
	"github.com/donaldvibe/storefront/internal/cart"
	"github.com/donaldvibe/storefront/internal/router"
)

// Load failure messages.
const (
	MsgListFailed    = "Không thể tải danh sách sản phẩm"
	MsgProductFailed = "Không thể tải sản phẩm"
)

// DefaultLimit is the catalogue page size.
const DefaultLimit = 12

// Lister is the paged catalogue view state.
type Lister struct {
	client api.Client

	Products []api.Product
	Page     int
	Limit    int
	Total    int
	Loading  bool
	Err      string
}

// NewLister returns a catalogue view positioned at page one.
func NewLister(client api.Client) *Lister {
	return &Lister{
		client: client,
		Page:   1,
		Limit:  DefaultLimit,
	}
}

// BeginLoad enters the loading state and returns the query for the current
// page. Synchronous; the fetch may then run in a goroutine and report back
// through Apply.
func (l *Lister) BeginLoad() api.ProductQuery {
	l.Loading = true
	l.Err = ""
	return api.ProductQuery{Page: l.Page, Limit: l.Limit}
}

// Apply records a page fetch's outcome.
func (l *Lister) Apply(list *api.ProductList, err error) {
	l.Loading = false
	if err != nil {
		if msg := err.Error(); msg != "" {
			l.Err = msg
		} else {
			l.Err = MsgListFailed
		}
		return
	}
	l.Products = list.Products
	l.Total = list.Total
}

// Load fetches the current page in one blocking call.
func (l *Lister) Load(ctx context.Context) {
	query := l.BeginLoad()
	list, err := l.client.Products(ctx, query)
	l.Apply(list, err)
}

// Pages returns the page count for the known total.
func (l *Lister) Pages() int {
	if l.Total <= 0 || l.Limit <= 0 {
		return 1
	}
	return (l.Total + l.Limit - 1) / l.Limit
}

// BeginNext advances to the next page; reports false on the last page.
func (l *Lister) BeginNext() (api.ProductQuery, bool) {
	if l.Page >= l.Pages() {
		return api.ProductQuery{}, false
	}
	l.Page++
	return l.BeginLoad(), true
}

// BeginPrev goes back a page; reports false on the first page.
func (l *Lister) BeginPrev() (api.ProductQuery, bool) {
	if l.Page <= 1 {
		return api.ProductQuery{}, false
	}
	l.Page--
	return l.BeginLoad(), true
}

// NextPage advances and reloads; no-op on the last page.
func (l *Lister) NextPage(ctx context.Context) {
	query, ok := l.BeginNext()
	if !ok {
		return
	}
	list, err := l.client.Products(ctx, query)
	l.Apply(list, err)
}

// PrevPage goes back and reloads; no-op on the first page.
func (l *Lister) PrevPage(ctx context.Context) {
	query, ok := l.BeginPrev()
	if !ok {
		return
	}
	list, err := l.client.Products(ctx, query)
	l.Apply(list, err)
}

// RouteFor returns the detail route for a product, preferring the numeric
// id and falling back to the slug.
func RouteFor(p api.Product) string {
	id := p.Slug
	if p.ID != 0 {
		id = strconv.FormatUint(p.ID, 10)
	}
	return router.Format("product", map[string]string{"id": id})
}

// Detail is the single-product view state.
type Detail struct {
	client api.Client
	cart   *cart.Store

	Product *api.Product
	Qty     int
	Loading bool
	Err     string
	Notice  string
}

// NewDetail returns an empty detail view. The cart store may be nil when
// the host runs without local persistence; AddToCart then reports failure.
func NewDetail(client api.Client, store *cart.Store) *Detail {
	return &Detail{client: client, cart: store, Qty: 1}
}

// BeginRoute prepares a load for the product named by the route's id
// parameter. Routes for other pages or without an id report false.
func (d *Detail) BeginRoute(ev router.RouteChangedEvent) (string, bool) {
	if ev.Route != "product" {
		return "", false
	}
	id := ev.Param("id")
	if id == "" {
		return "", false
	}
	d.BeginLoad()
	return id, true
}

// BeginLoad enters the loading state ahead of a fetch.
func (d *Detail) BeginLoad() {
	d.Loading = true
	d.Err = ""
	d.Notice = ""
}

// Apply records a product fetch's outcome.
func (d *Detail) Apply(product *api.Product, err error) {
	d.Loading = false
	if err != nil {
		if msg := err.Error(); msg != "" {
			d.Err = msg
		} else {
			d.Err = MsgProductFailed
		}
		return
	}
	d.Product = product
	d.Qty = 1
}

// HandleRoute loads the product named by the route's id parameter. A route
// without an id leaves the view untouched.
func (d *Detail) HandleRoute(ctx context.Context, ev router.RouteChangedEvent) {
	id, ok := d.BeginRoute(ev)
	if !ok {
		return
	}
	product, err := d.client.Product(ctx, id)
	d.Apply(product, err)
}

// Load fetches one product by id or slug in one blocking call.
func (d *Detail) Load(ctx context.Context, idOrSlug string) {
	d.BeginLoad()
	product, err := d.client.Product(ctx, idOrSlug)
	d.Apply(product, err)
}

// AddToCart puts Qty units of the loaded product into the cart.
func (d *Detail) AddToCart() {
	if d.Product == nil {
		return
	}
	if d.cart == nil {
		d.Notice = MsgProductFailed
		return
	}
	err := d.cart.Add(cart.Item{
		ProductID: d.Product.ID,
		Name:      d.Product.Name,
		Price:     d.Product.Price,
		Qty:       d.Qty,
	})
	if err != nil {
		d.Notice = err.Error()
		return
	}
	d.Notice = "Đã thêm vào giỏ hàng"
}

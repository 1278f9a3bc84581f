package products

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/donaldvibe/storefront/internal/api"
	"github.com/donaldvibe/storefront/internal/cart"
	"github.com/donaldvibe/storefront/internal/router"
)

type fakeClient struct {
	api.Client
	products func(ctx context.Context, q api.ProductQuery) (*api.ProductList, error)
	product  func(ctx context.Context, idOrSlug string) (*api.Product, error)
}

func (f *fakeClient) Products(ctx context.Context, q api.ProductQuery) (*api.ProductList, error) {
	return f.products(ctx, q)
}

func (f *fakeClient) Product(ctx context.Context, idOrSlug string) (*api.Product, error) {
	return f.product(ctx, idOrSlug)
}

func TestListerLoadsPage(t *testing.T) {
	client := &fakeClient{products: func(ctx context.Context, q api.ProductQuery) (*api.ProductList, error) {
		if q.Page != 1 || q.Limit != DefaultLimit {
			t.Errorf("query = %+v", q)
		}
		return &api.ProductList{
			Products: []api.Product{{ID: 1, Name: "Áo DONALD"}},
			Total:    25,
		}, nil
	}}
	l := NewLister(client)
	l.Load(context.Background())

	if len(l.Products) != 1 || l.Total != 25 {
		t.Fatalf("products = %d, total = %d", len(l.Products), l.Total)
	}
	if l.Pages() != 3 {
		t.Errorf("pages = %d, want 3", l.Pages())
	}
}

func TestListerPaging(t *testing.T) {
	var lastPage int
	client := &fakeClient{products: func(ctx context.Context, q api.ProductQuery) (*api.ProductList, error) {
		lastPage = q.Page
		return &api.ProductList{Total: 25}, nil
	}}
	l := NewLister(client)
	ctx := context.Background()
	l.Load(ctx)

	l.PrevPage(ctx)
	if l.Page != 1 {
		t.Errorf("PrevPage on first page moved to %d", l.Page)
	}

	l.NextPage(ctx)
	if l.Page != 2 || lastPage != 2 {
		t.Errorf("page = %d, fetched = %d", l.Page, lastPage)
	}

	l.NextPage(ctx)
	l.NextPage(ctx)
	if l.Page != 3 {
		t.Errorf("NextPage ran past last page: %d", l.Page)
	}
}

func TestListerLoadFailure(t *testing.T) {
	client := &fakeClient{products: func(ctx context.Context, q api.ProductQuery) (*api.ProductList, error) {
		return nil, &api.Error{Message: "Service Unavailable"}
	}}
	l := NewLister(client)
	l.Load(context.Background())
	if l.Err != "Service Unavailable" {
		t.Errorf("err = %q", l.Err)
	}
	if l.Loading {
		t.Error("loading flag stuck")
	}
}

func TestRouteFor(t *testing.T) {
	if got := RouteFor(api.Product{ID: 5, Slug: "ao-donald"}); got != "product?id=5" {
		t.Errorf("RouteFor = %q", got)
	}
	if got := RouteFor(api.Product{Slug: "ao-donald"}); got != "product?id=ao-donald" {
		t.Errorf("RouteFor slug fallback = %q", got)
	}
}

func TestDetailHandleRoute(t *testing.T) {
	client := &fakeClient{product: func(ctx context.Context, idOrSlug string) (*api.Product, error) {
		if idOrSlug != "5" {
			t.Errorf("id = %q", idOrSlug)
		}
		return &api.Product{ID: 5, Name: "Áo DONALD", Price: 399000}, nil
	}}
	d := NewDetail(client, nil)
	d.HandleRoute(context.Background(), router.RouteChangedEvent{
		Route:  "product",
		Params: map[string]string{"id": "5"},
	})
	if d.Product == nil || d.Product.ID != 5 {
		t.Fatalf("product = %+v", d.Product)
	}
	if d.Qty != 1 {
		t.Errorf("qty = %d, want reset to 1", d.Qty)
	}
}

func TestDetailIgnoresRouteWithoutID(t *testing.T) {
	called := false
	client := &fakeClient{product: func(ctx context.Context, idOrSlug string) (*api.Product, error) {
		called = true
		return nil, nil
	}}
	d := NewDetail(client, nil)
	d.HandleRoute(context.Background(), router.RouteChangedEvent{Route: "product"})
	if called {
		t.Fatal("fetched without an id")
	}
}

func TestDetailAddToCart(t *testing.T) {
	store, err := cart.Open(filepath.Join(t.TempDir(), "cart.db"))
	if err != nil {
		t.Fatalf("cart.Open: %v", err)
	}
	defer store.Close()

	d := NewDetail(nil, store)
	d.Product = &api.Product{ID: 5, Name: "Áo DONALD", Price: 399000}
	d.Qty = 2
	d.AddToCart()

	if d.Notice != "Đã thêm vào giỏ hàng" {
		t.Fatalf("notice = %q", d.Notice)
	}
	items, err := store.Items()
	if err != nil {
		t.Fatalf("Items: %v", err)
	}
	if len(items) != 1 || items[0].Qty != 2 || items[0].ProductID != 5 {
		t.Fatalf("items = %+v", items)
	}
}

func TestDetailAddToCartWithoutProduct(t *testing.T) {
	d := NewDetail(nil, nil)
	d.AddToCart()
	if d.Notice != "" {
		t.Errorf("notice = %q", d.Notice)
	}
}

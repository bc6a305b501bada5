package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/justasSav/eeps/internal/domain"
	"github.com/justasSav/eeps/internal/realtime"
	orderrepo "github.com/justasSav/eeps/internal/repository/order"
	authsvc "github.com/justasSav/eeps/internal/service/auth"
	cartsvc "github.com/justasSav/eeps/internal/service/cart"
	menusvc "github.com/justasSav/eeps/internal/service/menu"
	ordersvc "github.com/justasSav/eeps/internal/service/order"
)

type memCartRepo struct {
	carts map[string]domain.Cart
}

func (m *memCartRepo) Get(_ context.Context, sessionID string) (domain.Cart, error) {
	if cart, ok := m.carts[sessionID]; ok {
		return cart, nil
	}
	return domain.NewCart(), nil
}

func (m *memCartRepo) Save(_ context.Context, sessionID string, cart domain.Cart) error {
	m.carts[sessionID] = cart
	return nil
}

func (m *memCartRepo) Delete(_ context.Context, sessionID string) error {
	delete(m.carts, sessionID)
	return nil
}

type memMenuRepo struct {
	categories []domain.Category
	products   map[string]domain.Product
	groups     map[string][]domain.ModifierGroup
}

func (m *memMenuRepo) ListCategories(context.Context) ([]domain.Category, error) {
	return m.categories, nil
}

func (m *memMenuRepo) ListAvailableProducts(context.Context) ([]domain.Product, error) {
	var out []domain.Product
	for _, p := range m.products {
		if p.IsAvailable {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memMenuRepo) ListModifierGroups(_ context.Context, productID string) ([]domain.ModifierGroup, error) {
	return m.groups[productID], nil
}

func (m *memMenuRepo) ListModifierOptions(_ context.Context, groupID string) ([]domain.ModifierOption, error) {
	for _, groups := range m.groups {
		for _, g := range groups {
			if g.ID == groupID {
				return g.Options, nil
			}
		}
	}
	return nil, nil
}

func (m *memMenuRepo) GetProduct(_ context.Context, id string) (*domain.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := p
	return &cp, nil
}

func (m *memMenuRepo) UpsertCategory(_ context.Context, c domain.Category) error {
	m.categories = append(m.categories, c)
	return nil
}

func (m *memMenuRepo) UpsertProduct(_ context.Context, p domain.Product) error {
	m.products[p.ID] = p
	return nil
}

type memOrderRepo struct {
	orders map[string]*domain.Order
}

func (m *memOrderRepo) Create(_ context.Context, o *domain.Order) (orderrepo.SyncOutcome, error) {
	cp := *o
	m.orders[o.ID] = &cp
	return orderrepo.SyncedRemote, nil
}

func (m *memOrderRepo) GetByID(_ context.Context, id string) (*domain.Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *memOrderRepo) ListByUser(_ context.Context, userID string) ([]domain.Order, error) {
	var out []domain.Order
	for _, o := range m.orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (m *memOrderRepo) ListByStatus(_ context.Context, statuses []domain.OrderStatus) ([]domain.Order, error) {
	want := map[domain.OrderStatus]bool{}
	for _, st := range statuses {
		want[st] = true
	}
	var out []domain.Order
	for _, o := range m.orders {
		if want[o.Status] {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (m *memOrderRepo) ListAll(context.Context) ([]domain.Order, error) {
	var out []domain.Order
	for _, o := range m.orders {
		out = append(out, *o)
	}
	return out, nil
}

func (m *memOrderRepo) SetStatus(_ context.Context, id string, status domain.OrderStatus, updatedAt time.Time) (orderrepo.SyncOutcome, error) {
	o, ok := m.orders[id]
	if !ok {
		return "", domain.ErrNotFound
	}
	o.Status = status
	o.UpdatedAt = updatedAt
	return orderrepo.SyncedRemote, nil
}

func testMenu() *memMenuRepo {
	size := domain.ModifierGroup{
		ID: "g-size", Name: "Size", MinRequired: 1, MaxAllowed: 1,
		Options: []domain.ModifierOption{
			{ID: "o-med", Name: "Medium", PriceMod: 0},
			{ID: "o-large", Name: "Large", PriceMod: 300},
		},
	}
	return &memMenuRepo{
		categories: []domain.Category{{ID: "pizza", Name: "Pizza", SortOrder: 1}},
		products: map[string]domain.Product{
			"margarita": {
				ID: "margarita", CategoryID: "pizza", Name: "Margarita",
				BasePrice: 800, IsAvailable: true, DietaryTags: []string{"vegetarian"},
			},
			"pepperoni": {
				ID: "pepperoni", CategoryID: "pizza", Name: "Pepperoni",
				BasePrice: 950, IsAvailable: false,
			},
		},
		groups: map[string][]domain.ModifierGroup{"margarita": {size}},
	}
}

func newTestRouter(t *testing.T) (*gin.Engine, *memOrderRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	orders := &memOrderRepo{orders: map[string]*domain.Order{}}
	bridge := realtime.NewBridge()
	auth, err := authsvc.New("demo", "demo", "test-secret")
	if err != nil {
		t.Fatalf("auth: %v", err)
	}

	logger := log.New(io.Discard, "", 0)
	deps := Deps{
		Menu:   menusvc.New(testMenu()),
		Cart:   cartsvc.New(&memCartRepo{carts: map[string]domain.Cart{}}),
		Orders: ordersvc.New(orders, bridge, logger),
		Auth:   auth,
		Bridge: bridge,
	}
	return buildRouter(logger, nil, deps), orders
}

type client struct {
	t      *testing.T
	router *gin.Engine
	cookie *http.Cookie
	token  string
}

func (c *client) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			c.t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	w := httptest.NewRecorder()
	c.router.ServeHTTP(w, req)

	for _, ck := range w.Result().Cookies() {
		if ck.Name == sessionCookie {
			c.cookie = ck
		}
	}
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, into interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), into); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
}

func TestGetMenu(t *testing.T) {
	router, _ := newTestRouter(t)
	c := &client{t: t, router: router}

	w := c.do(http.MethodGet, "/api/menu", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var resp struct {
		Categories []domain.Category `json:"categories"`
	}
	decode(t, w, &resp)
	if len(resp.Categories) != 1 || len(resp.Categories[0].Products) != 1 {
		t.Fatalf("menu = %+v", resp.Categories)
	}
	p := resp.Categories[0].Products[0]
	if p.ID != "margarita" || len(p.ModifierGroups) != 1 {
		t.Fatalf("product = %+v", p)
	}
}

func TestCartFlow(t *testing.T) {
	router, _ := newTestRouter(t)
	c := &client{t: t, router: router}

	body := map[string]interface{}{
		"product_id": "margarita",
		"modifiers":  map[string]interface{}{"Size": "Large"},
	}
	w := c.do(http.MethodPost, "/api/cart/items", body)
	if w.Code != http.StatusOK {
		t.Fatalf("add: status = %d, body %s", w.Code, w.Body.String())
	}

	// Same configuration again merges into the existing line.
	w = c.do(http.MethodPost, "/api/cart/items", body)
	var resp struct {
		Cart      domain.Cart `json:"cart"`
		Total     int64       `json:"total"`
		ItemCount int         `json:"item_count"`
	}
	decode(t, w, &resp)
	if len(resp.Cart.Items) != 1 || resp.Cart.Items[0].Quantity != 2 {
		t.Fatalf("cart after merge = %+v", resp.Cart.Items)
	}
	if resp.Total != 2200 || resp.ItemCount != 2 {
		t.Fatalf("total = %d, count = %d", resp.Total, resp.ItemCount)
	}

	key := resp.Cart.Items[0].CartKey
	w = c.do(http.MethodPatch, "/api/cart/items/"+key, map[string]int{"quantity": 0})
	if w.Code != http.StatusOK {
		t.Fatalf("update: status = %d", w.Code)
	}
	decode(t, w, &resp)
	if len(resp.Cart.Items) != 0 {
		t.Fatalf("cart after removal = %+v", resp.Cart.Items)
	}
}

func TestAddUnavailableProduct(t *testing.T) {
	router, _ := newTestRouter(t)
	c := &client{t: t, router: router}

	w := c.do(http.MethodPost, "/api/cart/items", map[string]interface{}{"product_id": "pepperoni"})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
}

func TestAddMissingRequiredModifier(t *testing.T) {
	router, _ := newTestRouter(t)
	c := &client{t: t, router: router}

	w := c.do(http.MethodPost, "/api/cart/items", map[string]interface{}{"product_id": "margarita"})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var resp struct {
		Field string `json:"field"`
	}
	decode(t, w, &resp)
	if resp.Field != "Size" {
		t.Fatalf("field = %q", resp.Field)
	}
}

func TestSubmitOrderEndToEnd(t *testing.T) {
	router, _ := newTestRouter(t)
	c := &client{t: t, router: router}

	add := map[string]interface{}{
		"product_id": "margarita",
		"modifiers":  map[string]interface{}{"Size": "Medium"},
		"quantity":   2,
	}
	if w := c.do(http.MethodPost, "/api/cart/items", add); w.Code != http.StatusOK {
		t.Fatalf("add: status = %d, body %s", w.Code, w.Body.String())
	}

	info := map[string]interface{}{
		"fulfillment_type": "pickup",
		"contact_phone":    "+37060000000",
	}
	if w := c.do(http.MethodPut, "/api/cart/info", info); w.Code != http.StatusOK {
		t.Fatalf("info: status = %d, body %s", w.Code, w.Body.String())
	}

	w := c.do(http.MethodPost, "/api/orders", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("submit: status = %d, body %s", w.Code, w.Body.String())
	}
	var created struct {
		Order domain.Order `json:"order"`
	}
	decode(t, w, &created)
	if created.Order.TotalAmount != 1600 || created.Order.Status != domain.StatusCreated {
		t.Fatalf("order = %+v", created.Order)
	}

	// The cart is cleared on submit.
	var cartResp struct {
		ItemCount int `json:"item_count"`
	}
	w = c.do(http.MethodGet, "/api/cart", nil)
	decode(t, w, &cartResp)
	if cartResp.ItemCount != 0 {
		t.Fatalf("cart not cleared, count = %d", cartResp.ItemCount)
	}

	// The order shows up in this session's history.
	var history struct {
		Orders []domain.Order `json:"orders"`
	}
	w = c.do(http.MethodGet, "/api/orders", nil)
	decode(t, w, &history)
	if len(history.Orders) != 1 || history.Orders[0].ID != created.Order.ID {
		t.Fatalf("history = %+v", history.Orders)
	}
}

func TestSubmitEmptyCart(t *testing.T) {
	router, _ := newTestRouter(t)
	c := &client{t: t, router: router}

	w := c.do(http.MethodPost, "/api/orders", nil)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
}

func TestAdminFlow(t *testing.T) {
	router, store := newTestRouter(t)
	c := &client{t: t, router: router}

	if w := c.do(http.MethodGet, "/api/admin/orders", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated: status = %d", w.Code)
	}

	w := c.do(http.MethodPost, "/api/admin/login", map[string]string{"username": "demo", "password": "wrong"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("bad login: status = %d", w.Code)
	}

	w = c.do(http.MethodPost, "/api/admin/login", map[string]string{"username": "demo", "password": "demo"})
	if w.Code != http.StatusOK {
		t.Fatalf("login: status = %d, body %s", w.Code, w.Body.String())
	}
	var login struct {
		Token string `json:"token"`
	}
	decode(t, w, &login)
	c.token = login.Token

	now := time.Now().UTC()
	store.orders["o1"] = &domain.Order{
		ID: "o1", UserID: "someone", Status: domain.StatusCreated,
		ContactPhone: "+37060000000", TotalAmount: 800,
		CreatedAt: now, UpdatedAt: now,
	}

	w = c.do(http.MethodGet, "/api/admin/orders", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("active: status = %d", w.Code)
	}
	var list struct {
		Orders []domain.Order `json:"orders"`
	}
	decode(t, w, &list)
	if len(list.Orders) != 1 {
		t.Fatalf("active orders = %+v", list.Orders)
	}

	w = c.do(http.MethodPost, "/api/admin/orders/o1/advance", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("advance: status = %d, body %s", w.Code, w.Body.String())
	}
	var advanced struct {
		Order domain.Order `json:"order"`
	}
	decode(t, w, &advanced)
	if advanced.Order.Status != domain.StatusAccepted {
		t.Fatalf("status = %s", advanced.Order.Status)
	}

	w = c.do(http.MethodPost, "/api/admin/orders/o1/cancel", nil)
	decode(t, w, &advanced)
	if advanced.Order.Status != domain.StatusCancelled {
		t.Fatalf("status after cancel = %s", advanced.Order.Status)
	}

	if w := c.do(http.MethodPost, "/api/admin/orders/missing/advance", nil); w.Code != http.StatusNotFound {
		t.Fatalf("missing order: status = %d", w.Code)
	}
}

func TestGetOrderNotFound(t *testing.T) {
	router, _ := newTestRouter(t)
	c := &client{t: t, router: router}

	if w := c.do(http.MethodGet, "/api/orders/missing", nil); w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
}

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"paperback/internal/domain"
	"paperback/internal/services"
)

// Client is a typed front door to the paperback API. It attaches the session
// bearer token to every request and normalizes failures into *APIError.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Session *Session
}

func New(baseURL string, sess *Session) *Client {
	return &Client{
		BaseURL: baseURL,
		HTTP:    &http.Client{Timeout: 15 * time.Second},
		Session: sess,
	}
}

type errBody struct {
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors"`
}

// do runs one request. A 401 clears the stored session so the caller falls
// back to the login flow instead of retrying with a dead token.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	u := c.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.Session.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("api: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("api: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if resp.StatusCode == http.StatusUnauthorized {
			_ = c.Session.Clear()
		}
		apiErr := &APIError{Status: resp.StatusCode}
		var eb errBody
		if json.Unmarshal(raw, &eb) == nil {
			apiErr.Message = eb.Message
			apiErr.Fields = eb.Errors
		}
		return apiErr
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("api: decode response: %w", err)
		}
	}
	return nil
}

type listEnvelope[T any] struct {
	Data []T `json:"data"`
}

// ---------- Auth ----------

// LoginResult bundles what the view layer needs right after login: the
// signed-in user and where to land.
type LoginResult struct {
	Token string
	User  *domain.User
	Route string
}

func (c *Client) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	in := map[string]string{"name": name, "email": email, "password": password}
	var u domain.User
	if err := c.do(ctx, http.MethodPost, "/api/register", nil, in, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Login authenticates, persists the session and resolves the landing route
// from the user's role.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	in := map[string]string{"email": email, "password": password}
	var out struct {
		Token string       `json:"token"`
		User  *domain.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/login", nil, in, &out); err != nil {
		return nil, err
	}
	if err := c.Session.Set(out.Token, out.User); err != nil {
		return nil, err
	}
	role := ""
	if out.User != nil {
		role = out.User.Role
	}
	return &LoginResult{Token: out.Token, User: out.User, Route: LandingRoute(role)}, nil
}

// Logout releases the server-side token and always clears the local session.
// Without a stored token there is nothing to release, so no request is made.
func (c *Client) Logout(ctx context.Context) (string, error) {
	if c.Session.Token() == "" {
		_ = c.Session.Clear()
		return LoginRoute, nil
	}
	err := c.do(ctx, http.MethodPost, "/api/logout", nil, nil, nil)
	_ = c.Session.Clear()
	return LoginRoute, err
}

func (c *Client) Me(ctx context.Context) (*domain.User, error) {
	var u domain.User
	if err := c.do(ctx, http.MethodGet, "/api/user", nil, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GoogleRedirectURL is where the browser is sent to start the OAuth flow.
func (c *Client) GoogleRedirectURL() string {
	return c.BaseURL + "/auth/google/redirect"
}

// HandleGoogleCallback finishes the OAuth flow: the server redirected back
// with a bearer token, which we store and then resolve into a user.
func (c *Client) HandleGoogleCallback(ctx context.Context, token string) (*LoginResult, error) {
	if err := c.Session.Set(token, nil); err != nil {
		return nil, err
	}
	u, err := c.Me(ctx)
	if err != nil {
		_ = c.Session.Clear()
		return nil, err
	}
	if err := c.Session.Set(token, u); err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, User: u, Route: LandingRoute(u.Role)}, nil
}

// ---------- Catalog ----------

// BookQuery mirrors the list endpoint's filters. Zero values are omitted.
type BookQuery struct {
	Search     string
	CategoryID string
	Page       int
	PerPage    int
}

func (q BookQuery) values() url.Values {
	v := url.Values{}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.CategoryID != "" {
		v.Set("category_id", q.CategoryID)
	}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.PerPage > 0 {
		v.Set("per_page", strconv.Itoa(q.PerPage))
	}
	return v
}

func (c *Client) Books(ctx context.Context, q BookQuery) (*services.BookPage, error) {
	var page services.BookPage
	if err := c.do(ctx, http.MethodGet, "/api/books", q.values(), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) Book(ctx context.Context, id string) (*domain.Book, error) {
	var b domain.Book
	if err := c.do(ctx, http.MethodGet, "/api/books/"+url.PathEscape(id), nil, nil, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (c *Client) CreateBook(ctx context.Context, b *domain.Book) (*domain.Book, error) {
	var out domain.Book
	if err := c.do(ctx, http.MethodPost, "/api/books", nil, b, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateBook(ctx context.Context, b *domain.Book) (*domain.Book, error) {
	var out domain.Book
	if err := c.do(ctx, http.MethodPut, "/api/books/"+url.PathEscape(b.ID), nil, b, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteBook(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/books/"+url.PathEscape(id), nil, nil, nil)
}

func (c *Client) Categories(ctx context.Context) ([]domain.Category, error) {
	var env listEnvelope[domain.Category]
	if err := c.do(ctx, http.MethodGet, "/api/categories", nil, nil, &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

func (c *Client) CreateCategory(ctx context.Context, name, description string) (*domain.Category, error) {
	var out domain.Category
	in := map[string]string{"name": name, "description": description}
	if err := c.do(ctx, http.MethodPost, "/api/categories", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateCategory sends the full category, description included: the server
// stores whatever arrives, so omitting the description would blank it.
func (c *Client) UpdateCategory(ctx context.Context, id, name, description string) (*domain.Category, error) {
	var out domain.Category
	in := map[string]string{"name": name, "description": description}
	if err := c.do(ctx, http.MethodPut, "/api/categories/"+url.PathEscape(id), nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteCategory(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/categories/"+url.PathEscape(id), nil, nil, nil)
}

// CanDeleteCategory is the view-layer guard: deletion stays disabled while
// any book still references the category.
func CanDeleteCategory(cat *domain.Category) bool {
	return cat != nil && cat.BookCount == 0
}

// ---------- Admin users ----------

func (c *Client) Users(ctx context.Context) ([]domain.User, error) {
	var env listEnvelope[domain.User]
	if err := c.do(ctx, http.MethodGet, "/api/users", nil, nil, &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

func (c *Client) CreateUser(ctx context.Context, name, email, password, role string) (*domain.User, error) {
	in := map[string]string{"name": name, "email": email, "password": password, "role": role}
	var out domain.User
	if err := c.do(ctx, http.MethodPost, "/api/users", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateUser(ctx context.Context, id, name, email, role string) (*domain.User, error) {
	in := map[string]string{"name": name, "email": email, "role": role}
	var out domain.User
	if err := c.do(ctx, http.MethodPut, "/api/users/"+url.PathEscape(id), nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/users/"+url.PathEscape(id), nil, nil, nil)
}

// ---------- Admin orders & dashboard ----------

func (c *Client) AdminOrders(ctx context.Context, status string) ([]domain.Order, error) {
	v := url.Values{}
	if status != "" {
		v.Set("status", status)
	}
	var env listEnvelope[domain.Order]
	if err := c.do(ctx, http.MethodGet, "/api/admin/orders", v, nil, &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

func (c *Client) AdminOrder(ctx context.Context, id string) (*domain.Order, error) {
	var o domain.Order
	if err := c.do(ctx, http.MethodGet, "/api/admin/orders/"+url.PathEscape(id), nil, nil, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (c *Client) UpdateOrderStatus(ctx context.Context, id, status, tracking string) (*domain.Order, error) {
	in := map[string]string{"status": status, "tracking_number": tracking}
	var o domain.Order
	if err := c.do(ctx, http.MethodPut, "/api/admin/orders/"+url.PathEscape(id)+"/status", nil, in, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (c *Client) Transactions(ctx context.Context) ([]domain.Transaction, error) {
	var env listEnvelope[domain.Transaction]
	if err := c.do(ctx, http.MethodGet, "/api/admin/transactions", nil, nil, &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

func (c *Client) AdminDashboard(ctx context.Context) (*services.AdminStats, error) {
	var s services.AdminStats
	if err := c.do(ctx, http.MethodGet, "/api/admin/dashboard", nil, nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// ---------- Storefront ----------

func (c *Client) StoreBooks(ctx context.Context, q BookQuery) (*services.BookPage, error) {
	var page services.BookPage
	if err := c.do(ctx, http.MethodGet, "/api/user/books", q.values(), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) StoreBook(ctx context.Context, id string) (*domain.Book, error) {
	var b domain.Book
	if err := c.do(ctx, http.MethodGet, "/api/user/books/"+url.PathEscape(id), nil, nil, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (c *Client) Cart(ctx context.Context) (*services.CartView, error) {
	var v services.CartView
	if err := c.do(ctx, http.MethodGet, "/api/user/cart", nil, nil, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func (c *Client) AddToCart(ctx context.Context, bookID string, qty int) (*services.CartView, error) {
	in := map[string]any{"book_id": bookID, "qty": qty}
	var v services.CartView
	if err := c.do(ctx, http.MethodPost, "/api/user/cart", nil, in, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func (c *Client) UpdateCartItem(ctx context.Context, itemID string, qty int) (*services.CartView, error) {
	in := map[string]any{"qty": qty}
	var v services.CartView
	if err := c.do(ctx, http.MethodPut, "/api/user/cart/"+url.PathEscape(itemID), nil, in, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func (c *Client) RemoveCartItem(ctx context.Context, itemID string) (*services.CartView, error) {
	var v services.CartView
	if err := c.do(ctx, http.MethodDelete, "/api/user/cart/"+url.PathEscape(itemID), nil, nil, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func (c *Client) ClearCart(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/api/user/cart", nil, nil, nil)
}

// CheckoutInput carries the shipping form plus optional notes.
type CheckoutInput struct {
	Recipient  string `json:"recipient"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	Province   string `json:"province,omitempty"`
	PostalCode string `json:"postal_code"`
	Notes      string `json:"notes,omitempty"`
}

func (c *Client) Checkout(ctx context.Context, in CheckoutInput) (*domain.Order, error) {
	var o domain.Order
	if err := c.do(ctx, http.MethodPost, "/api/user/checkout/create-order", nil, in, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (c *Client) BuyNow(ctx context.Context, bookID string, qty int, in CheckoutInput) (*domain.Order, error) {
	payload := struct {
		CheckoutInput
		BookID string `json:"book_id"`
		Qty    int    `json:"qty"`
	}{CheckoutInput: in, BookID: bookID, Qty: qty}
	var o domain.Order
	if err := c.do(ctx, http.MethodPost, "/api/user/checkout/buy-now", nil, payload, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (c *Client) Pay(ctx context.Context, orderID string) (*services.PaymentSession, error) {
	var s services.PaymentSession
	if err := c.do(ctx, http.MethodPost, "/api/user/payment/"+url.PathEscape(orderID), nil, nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) Orders(ctx context.Context) ([]domain.Order, error) {
	var env listEnvelope[domain.Order]
	if err := c.do(ctx, http.MethodGet, "/api/user/orders", nil, nil, &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

func (c *Client) Order(ctx context.Context, id string) (*domain.Order, error) {
	var o domain.Order
	if err := c.do(ctx, http.MethodGet, "/api/user/orders/"+url.PathEscape(id), nil, nil, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (c *Client) CancelOrder(ctx context.Context, id string) (*domain.Order, error) {
	var o domain.Order
	if err := c.do(ctx, http.MethodPut, "/api/user/orders/"+url.PathEscape(id)+"/cancel", nil, nil, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (c *Client) Profile(ctx context.Context) (*domain.User, error) {
	var u domain.User
	if err := c.do(ctx, http.MethodGet, "/api/user/profile", nil, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) UpdateProfile(ctx context.Context, name, email string) (*domain.User, error) {
	in := map[string]string{"name": name, "email": email}
	var u domain.User
	if err := c.do(ctx, http.MethodPut, "/api/user/profile", nil, in, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) ChangePassword(ctx context.Context, current, next string) error {
	in := map[string]string{"current_password": current, "new_password": next}
	return c.do(ctx, http.MethodPost, "/api/user/change-password", nil, in, nil)
}

func (c *Client) Dashboard(ctx context.Context) (*services.UserStats, error) {
	var s services.UserStats
	if err := c.do(ctx, http.MethodGet, "/api/user/dashboard", nil, nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

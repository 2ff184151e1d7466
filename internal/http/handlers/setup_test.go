package handlers_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"paperback/internal/domain"
	"paperback/internal/http/handlers"
	"paperback/internal/realtime"
	"paperback/internal/repos"
	"paperback/internal/services"
)

type stubGateway struct{}

func (stubGateway) CreateSnapToken(txnID string, amount float64, u *domain.User) (string, string, error) {
	return "snap-" + txnID, "", nil
}

type testEnv struct {
	app  *fiber.App
	deps *handlers.Deps
	auth *services.AuthService
}

// newTestEnv wires the real route table against an in-memory database.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	hub := realtime.NewHub()
	go hub.Run()
	t.Cleanup(hub.Stop)

	auth := &services.AuthService{
		Users:  repos.NewUserRepo(db),
		Secret: []byte("test-secret"),
		TTL:    time.Hour,
	}
	deps := handlers.NewDeps(db, auth, hub, hub, stubGateway{})

	app := fiber.New()
	authRequired := handlers.Authenticate(auth)
	adminOnly := handlers.RequireAdmin()

	app.Post("/api/register", deps.Auth.Register)
	app.Post("/api/login", deps.Auth.Login)
	app.Get("/api/user", authRequired, deps.Auth.Me)
	app.Post("/api/logout", authRequired, deps.Auth.Logout)

	books := app.Group("/api/books", authRequired, adminOnly)
	books.Get("/", deps.Books.List)
	books.Post("/", deps.Books.Create)
	books.Get("/:id", deps.Books.Get)
	books.Put("/:id", deps.Books.Update)
	books.Delete("/:id", deps.Books.Delete)

	cats := app.Group("/api/categories", authRequired, adminOnly)
	cats.Get("/", deps.Categories.List)
	cats.Post("/", deps.Categories.Create)
	cats.Put("/:id", deps.Categories.Update)
	cats.Get("/:id", deps.Categories.Get)
	cats.Delete("/:id", deps.Categories.Delete)

	admin := app.Group("/api/admin", authRequired, adminOnly)
	admin.Get("/orders", deps.AdminOrders.List)
	admin.Get("/dashboard", deps.AdminOrders.AdminDashboard)

	user := app.Group("/api/user", authRequired)
	user.Get("/books", deps.Books.List)
	user.Get("/cart", deps.Cart.View)
	user.Post("/cart", deps.Cart.Add)
	user.Post("/checkout/create-order", deps.Checkout.CreateOrder)
	user.Get("/orders", deps.Orders.List)

	return &testEnv{app: app, deps: deps, auth: auth}
}

// token issues a bearer token for a seeded account.
func (e *testEnv) token(t *testing.T, email string) string {
	t.Helper()
	u, err := e.auth.Users.ByEmail(email)
	if err != nil {
		t.Fatalf("seeded user %s: %v", email, err)
	}
	tok, err := e.auth.IssueToken(u)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return tok
}

func jsonReq(method, path, token string, body any) *http.Request {
	var rd io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		rd = strings.NewReader(string(b))
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode body: %v", err)
	}
}

func wantStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		b, _ := io.ReadAll(resp.Body)
		t.Fatalf("status = %d, want %d (body: %s)", resp.StatusCode, want, b)
	}
}

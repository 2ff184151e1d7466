package handlers

import (
	"paperback/internal/realtime"
	"paperback/internal/repos"
	"paperback/internal/services"

	"github.com/jmoiron/sqlx"
)

type Deps struct {
	Auth        *AuthHandler
	Books       *BookHandler
	Categories  *CategoryHandler
	Users       *UserAdminHandler
	AdminOrders *AdminOrderHandler
	Cart        *CartHandler
	Checkout    *CheckoutHandler
	Orders      *OrderHandler
	Payments    *PaymentHandler
	Profile     *ProfileHandler
	Realtime    *RealtimeHandler

	AuthSvc *services.AuthService
}

func NewDeps(db *sqlx.DB, authSvc *services.AuthService, hub *realtime.Hub, stock services.StockPublisher, gateway services.SnapGateway) *Deps {
	userRepo := repos.NewUserRepo(db)
	bookRepo := repos.NewBookRepo(db)
	catRepo := repos.NewCategoryRepo(db)
	cartRepo := repos.NewCartRepo(db)
	orderRepo := repos.NewOrderRepo(db)
	txnRepo := repos.NewTransactionRepo(db)

	catalogSvc := services.NewCatalogService(catRepo, bookRepo, stock)
	cartSvc := services.NewCartService(cartRepo, bookRepo)
	orderSvc := services.NewOrderService(cartRepo, bookRepo, orderRepo, stock)
	paymentSvc := services.NewPaymentService(orderRepo, txnRepo, userRepo, gateway)
	dashSvc := services.NewDashboardService(userRepo, bookRepo, orderRepo)
	userSvc := services.NewUserService(userRepo)

	return &Deps{
		Auth:       &AuthHandler{Auth: authSvc},
		Books:      &BookHandler{Catalog: catalogSvc},
		Categories: &CategoryHandler{Catalog: catalogSvc},
		Users:      &UserAdminHandler{Users: userSvc},
		AdminOrders: &AdminOrderHandler{
			Orders:    orderSvc,
			Payments:  paymentSvc,
			Dashboard: dashSvc,
		},
		Cart:     &CartHandler{Cart: cartSvc},
		Checkout: &CheckoutHandler{Orders: orderSvc},
		Orders:   &OrderHandler{Orders: orderSvc, Dashboard: dashSvc},
		Payments: &PaymentHandler{Payments: paymentSvc},
		Profile:  &ProfileHandler{Users: userSvc, Auth: authSvc},
		Realtime: &RealtimeHandler{Hub: hub},
		AuthSvc:  authSvc,
	}
}

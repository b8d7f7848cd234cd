package httpserver

import (
	"context"
	"errors"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/logging"
	cartsvc "storefront/internal/service/cart"
	checkoutsvc "storefront/internal/service/checkout"
	couponsvc "storefront/internal/service/coupon"
	"storefront/internal/service/imagery"
	productsvc "storefront/internal/service/product"
)

type SessionStore interface {
	Create(ctx context.Context) (*domain.Session, error)
	Get(ctx context.Context, id string) (*domain.Session, error)
	Save(ctx context.Context, s *domain.Session) error
}

type RegionService interface {
	List(ctx context.Context) ([]domain.Region, error)
	ByID(ctx context.Context, id string) (*domain.Region, error)
	ForCountry(ctx context.Context, country string) (*domain.Region, error)
	Resolve(ctx context.Context, regionID, country string) (*domain.Region, error)
}

type ProductService interface {
	List(ctx context.Context, in productsvc.ListInput) (*productsvc.Page, error)
	Get(ctx context.Context, handle, regionID, variantID string, image int) (*productsvc.Detail, error)
}

type CartService interface {
	Current(ctx context.Context, sess *domain.Session) (*domain.Cart, error)
	AddItem(ctx context.Context, sess *domain.Session, variantID string, quantity int) (*domain.Cart, error)
	UpdateItem(ctx context.Context, sess *domain.Session, lineID string, quantity int) (*domain.Cart, error)
	RemoveItem(ctx context.Context, sess *domain.Session, lineID string) (*domain.Cart, error)
	SetRegion(ctx context.Context, sess *domain.Session, regionID string) (*domain.Cart, error)
	UpdateContact(ctx context.Context, sess *domain.Session, in cartsvc.ContactInput) (*domain.Cart, error)
	ShippingOptions(ctx context.Context, sess *domain.Session) ([]domain.ShippingOption, error)
	SelectShipping(ctx context.Context, sess *domain.Session, optionID string) (*domain.Cart, *domain.ShippingSelection, error)
	Selection(ctx context.Context, sess *domain.Session, cart *domain.Cart) (*domain.ShippingSelection, error)
}

type CouponService interface {
	Apply(ctx context.Context, cartID, code string) couponsvc.Outcome
	Remove(ctx context.Context, cartID, code string) (*domain.Cart, error)
	AutoApply(ctx context.Context, sess *domain.Session, cart *domain.Cart) couponsvc.Result
	Collected(ctx context.Context) ([]string, error)
	Collect(ctx context.Context, code string) ([]string, error)
}

type ImageMapper interface {
	Map(ctx context.Context, items []domain.LineItem) imagery.ImageMap
}

type CheckoutService interface {
	StartPayment(ctx context.Context, sess *domain.Session) (*checkoutsvc.Payment, error)
	Complete(ctx context.Context, sess *domain.Session) (*domain.Order, error)
}

type OrderService interface {
	Lookup(ctx context.Context, orderID, email string) (*domain.Order, error)
}

type AccountService interface {
	Login(ctx context.Context, sess *domain.Session, email, password string) (*domain.Customer, error)
	Logout(ctx context.Context, sess *domain.Session) error
	Me(ctx context.Context, sess *domain.Session) (*domain.Customer, error)
}

// Deps carries the services the handlers call.
type Deps struct {
	Sessions SessionStore
	Regions  RegionService
	Products ProductService
	Carts    CartService
	Coupons  CouponService
	Images   ImageMapper
	Checkout CheckoutService
	Orders   OrderService
	Accounts AccountService
}

func (d Deps) validate() error {
	switch {
	case d.Sessions == nil:
		return errors.New("session store required")
	case d.Regions == nil:
		return errors.New("region service required")
	case d.Products == nil:
		return errors.New("product service required")
	case d.Carts == nil:
		return errors.New("cart service required")
	case d.Coupons == nil:
		return errors.New("coupon service required")
	case d.Images == nil:
		return errors.New("image mapper required")
	case d.Checkout == nil:
		return errors.New("checkout service required")
	case d.Orders == nil:
		return errors.New("order service required")
	case d.Accounts == nil:
		return errors.New("account service required")
	}
	return nil
}

// Options holds the HTTP-facing settings.
type Options struct {
	AllowOrigins []string
	Cookie       CookieOptions
}

type CookieOptions struct {
	Name   string
	Secure bool
	MaxAge time.Duration
}

type api struct {
	deps   Deps
	logger *zap.Logger
}

// buildRouter wires routes for the API.
func buildRouter(logger *zap.Logger, db *pgxpool.Pool, deps Deps, opts Options) (*gin.Engine, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	if opts.Cookie.Name == "" {
		opts.Cookie.Name = "sf_session"
	}

	router := gin.New()
	router.Use(requestIDMiddleware(), logging.GinMiddleware(logger), gin.Recovery())
	if len(opts.AllowOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     opts.AllowOrigins,
			AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
			ExposeHeaders:    []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	h := &api{deps: deps, logger: logger}
	g := router.Group("/api", sessionMiddleware(deps.Sessions, opts.Cookie, logger))

	g.GET("/session", h.getSession)
	g.POST("/session/age-verification", h.verifyAge)
	g.POST("/session/exit-intent", h.dismissExitIntent)

	g.GET("/regions", h.listRegions)
	g.POST("/region", h.setRegion)

	g.GET("/products", h.listProducts)
	g.GET("/products/:handle", h.getProduct)

	g.GET("/cart", h.getCart)
	g.POST("/cart/items", h.addItem)
	g.PATCH("/cart/items/:lineID", h.updateItem)
	g.DELETE("/cart/items/:lineID", h.removeItem)
	g.POST("/cart/promotions", h.applyPromotion)
	g.DELETE("/cart/promotions/:code", h.removePromotion)

	g.GET("/checkout/shipping-options", h.shippingOptions)
	g.POST("/checkout/shipping-method", h.selectShipping)
	g.POST("/checkout/contact", h.updateContact)
	g.POST("/checkout/payment-session", h.startPayment)
	g.POST("/checkout/complete", h.completeCheckout)

	g.POST("/account/login", h.login)
	g.POST("/account/logout", h.logout)
	g.GET("/account", h.me)
	g.GET("/account/coupons", h.listCoupons)
	g.POST("/account/coupons", h.collectCoupon)

	g.GET("/orders/lookup", h.lookupOrder)

	return router, nil
}

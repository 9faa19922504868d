package handlers

import (
	"github.com/jmoiron/sqlx"

	"storefront/internal/auth"
	"storefront/internal/config"
	"storefront/internal/repos"
	"storefront/internal/services"
	"storefront/internal/validate"
)

// ShopDeps is the wired shop service graph.
type ShopDeps struct {
	Tokens *auth.Tokens

	CategoryHandler *CategoryHandler
	ProductHandler  *ProductHandler
	CartHandler     *CartHandler
	OrderHandler    *OrderHandler
	ImageHandler    *ImageHandler
	AuthHandler     *AuthHandler
}

// Integrations are the optional out-of-process collaborators of the shop.
type Integrations struct {
	Idem     services.IdempotencyStore
	Events   services.OrderPublisher
	Payments services.PaymentAuthorizer
}

func NewShopDeps(db *sqlx.DB, cfg config.Config, in Integrations) *ShopDeps {
	catRepo := repos.NewCategoryRepo(db)
	prodRepo := repos.NewProductRepo(db)
	priceRepo := repos.NewPricelistRepo(db)
	cartRepo := repos.NewCartRepo(db)
	orderRepo := repos.NewOrderRepo(db)
	userRepo := repos.NewUserRepo(db)

	tokens := auth.NewTokens(cfg.Auth.Secret, cfg.Auth.Issuer, cfg.Auth.Audience, cfg.Auth.TTL)

	priceSvc := services.NewPricelistService(priceRepo)
	catalogSvc := services.NewCatalogService(catRepo, prodRepo, priceSvc, cfg.Image.BaseURL)
	cartSvc := services.NewCartService(cartRepo, prodRepo, priceSvc)

	payments := in.Payments
	if payments == nil {
		payments = services.NewPaymentService()
	}
	checkoutSvc := services.NewCheckoutService(db, cartSvc, orderRepo, payments)
	checkoutSvc.Idem = in.Idem
	if in.Events != nil {
		checkoutSvc.Events = in.Events
	}

	imageSvc := services.NewImageService(services.ImageConfig{
		Root:          cfg.Image.Root,
		ResizeEnabled: cfg.Image.ResizeEnabled,
		PathSanitize:  cfg.Image.PathSanitize,
		CacheTTL:      cfg.Image.CacheTTL,
	})

	return &ShopDeps{
		Tokens:          tokens,
		CategoryHandler: &CategoryHandler{Catalog: catalogSvc},
		ProductHandler:  &ProductHandler{Catalog: catalogSvc},
		CartHandler:     &CartHandler{Cart: cartSvc},
		OrderHandler:    &OrderHandler{Checkout: checkoutSvc, Orders: services.NewOrderService(orderRepo)},
		ImageHandler:    &ImageHandler{Images: imageSvc},
		AuthHandler:     &AuthHandler{Auth: services.NewAuthService(userRepo, tokens), PasswordOK: validate.Password},
	}
}

// SdetDeps is the wired SDET service graph. db must come from repos.OpenSdetDB.
type SdetDeps struct {
	Tokens      *auth.Tokens
	SdetHandler *SdetHandler
	AuthHandler *AuthHandler
}

func NewSdetDeps(db *sqlx.DB, cfg config.Config) *SdetDeps {
	tokens := auth.NewTokens(cfg.Auth.Secret, cfg.Auth.Issuer, cfg.Auth.Audience, cfg.Auth.TTL)
	authSvc := services.NewAuthService(repos.NewUserRepo(db), tokens)
	return &SdetDeps{
		Tokens:      tokens,
		SdetHandler: &SdetHandler{Auth: authSvc, Users: services.NewSdetUserService(repos.NewSdetUserRepo(db))},
		AuthHandler: &AuthHandler{Auth: authSvc, PasswordOK: validate.MinPassword},
	}
}

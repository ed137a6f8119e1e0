package httpserver

import (
	"context"
	"errors"
	"log"
	"time"

	"dealership/internal/cart"
	wizard "dealership/internal/configurator"
	"dealership/internal/domain"
	accountsvc "dealership/internal/service/account"
	reservationsvc "dealership/internal/service/reservation"
	"dealership/internal/session"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

type catalogService interface {
	ListVariants(ctx context.Context, filter domain.VariantFilter) ([]domain.VehicleVariant, error)
	GetVariant(ctx context.Context, id string) (*domain.VehicleVariant, error)
	CreateVariant(ctx context.Context, v domain.VehicleVariant) (*domain.VehicleVariant, error)
	UpdateVariant(ctx context.Context, id string, v domain.VehicleVariant) (*domain.VehicleVariant, error)
	DeleteVariant(ctx context.Context, id string) error

	ListOptions(ctx context.Context, kind string) ([]domain.OptionItem, error)
	GetOption(ctx context.Context, id string) (*domain.OptionItem, error)
	CreateOption(ctx context.Context, o domain.OptionItem) (*domain.OptionItem, error)
	UpdateOption(ctx context.Context, id string, o domain.OptionItem) (*domain.OptionItem, error)
	DeleteOption(ctx context.Context, id string) error

	ListAccessories(ctx context.Context, category string) ([]domain.Accessory, error)
	GetAccessory(ctx context.Context, id string) (*domain.Accessory, error)
	CreateAccessory(ctx context.Context, a domain.Accessory) (*domain.Accessory, error)
	UpdateAccessory(ctx context.Context, id string, a domain.Accessory) (*domain.Accessory, error)
	DeleteAccessory(ctx context.Context, id string) error
}

type configuratorService interface {
	Start(ctx context.Context, token, variantID string) (*wizard.Configuration, error)
	Get(token, id string) (*wizard.Configuration, error)
	Select(ctx context.Context, token, id, optionID string) (*wizard.Configuration, error)
	Deselect(token, id, optionID string) (*wizard.Configuration, error)
	Navigate(token, id, action, step string) (*wizard.Configuration, error)
	AddToCart(token, id string) (cart.Cart, error)
	Discard(token, id string) error
}

type cartService interface {
	Get(token string) (cart.Cart, error)
	AddAccessory(ctx context.Context, token, accessoryID string, qty int) (cart.Cart, error)
	SetQuantity(token, lineID string, qty int) (cart.Cart, error)
	Decrement(token, lineID string, qty int) (cart.Cart, error)
	Remove(token, lineID string) (cart.Cart, error)
	Clear(token string) (cart.Cart, error)
}

type reservationService interface {
	Submit(ctx context.Context, sessionToken string, in reservationsvc.SubmitInput) (*reservationsvc.Submission, error)
	Status(ctx context.Context, token string) (*domain.Reservation, error)
	List(ctx context.Context, kind, status string) ([]domain.Reservation, error)
	Decide(ctx context.Context, advisorID, id, decision string) (*domain.Reservation, error)
}

type accountService interface {
	Signup(ctx context.Context, in accountsvc.SignupInput) (*domain.Account, error)
	Login(ctx context.Context, email, password string) (*accountsvc.Session, error)
	Authenticate(token string) (*accountsvc.Claims, error)
	LookupByToken(ctx context.Context, token string) (*domain.Account, error)
}

type sessionIssuer interface {
	Issue() (string, session.Session, error)
}

// Deps are the services the router dispatches to.
type Deps struct {
	Catalog      catalogService
	Configurator configuratorService
	Cart         cartService
	Reservations reservationService
	Accounts     accountService
	Sessions     sessionIssuer
	CORSOrigins  []string
}

func (d Deps) validate() error {
	switch {
	case d.Catalog == nil:
		return errors.New("catalog service required")
	case d.Configurator == nil:
		return errors.New("configurator service required")
	case d.Cart == nil:
		return errors.New("cart service required")
	case d.Reservations == nil:
		return errors.New("reservation service required")
	case d.Accounts == nil:
		return errors.New("account service required")
	case d.Sessions == nil:
		return errors.New("session store required")
	}
	return nil
}

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps) (*gin.Engine, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())
	if len(deps.CORSOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     deps.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", SessionHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	h := &handlers{logger: logger, deps: deps}

	router.GET("/variants", h.listVariants)
	router.GET("/variants/:id", h.getVariant)
	router.GET("/options", h.listOptions)
	router.GET("/options/:id", h.getOption)
	router.GET("/accessories", h.listAccessories)
	router.GET("/accessories/:id", h.getAccessory)

	router.POST("/sessions", h.createSession)
	router.GET("/reservations/:token", h.reservationStatus)

	scoped := router.Group("/", requireSession())
	scoped.POST("/configurations", h.startConfiguration)
	scoped.GET("/configurations/:id", h.getConfiguration)
	scoped.DELETE("/configurations/:id", h.discardConfiguration)
	scoped.POST("/configurations/:id/selections", h.selectOption)
	scoped.DELETE("/configurations/:id/selections/:optionId", h.deselectOption)
	scoped.POST("/configurations/:id/step", h.navigate)
	scoped.POST("/configurations/:id/cart", h.addConfigurationToCart)

	scoped.GET("/cart", h.getCart)
	scoped.DELETE("/cart", h.clearCart)
	scoped.POST("/cart/accessories", h.addAccessory)
	scoped.PATCH("/cart/lines/:id", h.setLineQuantity)
	scoped.POST("/cart/lines/:id/decrement", h.decrementLine)
	scoped.DELETE("/cart/lines/:id", h.removeLine)

	scoped.POST("/reservations", authenticate(deps.Accounts, false), h.submitReservation)

	auth := router.Group("/auth")
	auth.POST("/signup", h.signup)
	auth.POST("/login", h.login)
	auth.GET("/me", authenticate(deps.Accounts, true), h.me)

	admin := router.Group("/admin", authenticate(deps.Accounts, true), requireRole(domain.RoleAdmin))
	admin.POST("/variants", h.createVariant)
	admin.PUT("/variants/:id", h.updateVariant)
	admin.DELETE("/variants/:id", h.deleteVariant)
	admin.POST("/options", h.createOption)
	admin.PUT("/options/:id", h.updateOption)
	admin.DELETE("/options/:id", h.deleteOption)
	admin.POST("/accessories", h.createAccessory)
	admin.PUT("/accessories/:id", h.updateAccessory)
	admin.DELETE("/accessories/:id", h.deleteAccessory)

	advisor := router.Group("/advisor", authenticate(deps.Accounts, true), requireRole(domain.RoleAdvisor, domain.RoleAdmin))
	advisor.GET("/reservations", h.listReservations)
	advisor.POST("/reservations/:id/decision", h.decideReservation)

	return router, nil
}

type handlers struct {
	logger *log.Logger
	deps   Deps
}

package client

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"dealership/internal/cart"
	"dealership/internal/domain"
	"dealership/internal/pricing"
	"github.com/shopspring/decimal"
)

// Submission sources.
const (
	SourceConfiguration = "configuration"
	SourceCart          = "cart"
)

// VariantQuery filters ListVariants. Zero values do not filter.
type VariantQuery struct {
	Model     string
	Condition string
	BodyType  string
	MaxPrice  *decimal.Decimal
}

// Configuration is the server view of an open configuration.
type Configuration struct {
	ID        string                `json:"id"`
	Variant   domain.VehicleVariant `json:"variant"`
	Selection pricing.Selection     `json:"selection"`
	Step      string                `json:"step"`
	Steps     []string              `json:"steps"`
	Price     decimal.Decimal       `json:"price"`
	Breakdown pricing.Breakdown     `json:"breakdown"`
}

// Cart is the server view of the session cart.
type Cart struct {
	Lines     []cart.Line     `json:"lines"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"itemCount"`
}

// Submission is the answer to CreateReservation and CreateOrder.
type Submission struct {
	Token        string              `json:"token"`
	ClientSecret string              `json:"clientSecret,omitempty"`
	Reservation  *domain.Reservation `json:"reservation"`
}

// LoginResult is a signed-in account plus its bearer token.
type LoginResult struct {
	Account   domain.Account `json:"account"`
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expiresAt"`
}

// CreateSession opens an anonymous session and keeps its token for later calls.
func (c *Client) CreateSession(ctx context.Context) (string, error) {
	var out struct {
		Token string `json:"token"`
	}
	if err := c.do(ctx, request{method: http.MethodPost, path: "/sessions"}, &out); err != nil {
		return "", err
	}
	c.SetSessionToken(out.Token)
	return out.Token, nil
}

// Login signs in and keeps the returned bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	var out LoginResult
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, request{method: http.MethodPost, path: "/auth/login", body: body}, &out); err != nil {
		return nil, err
	}
	c.SetToken(out.Token)
	return &out, nil
}

func (c *Client) ListVariants(ctx context.Context, q VariantQuery) ([]domain.VehicleVariant, error) {
	params := url.Values{}
	setParam(params, "model", q.Model)
	setParam(params, "condition", q.Condition)
	setParam(params, "body", q.BodyType)
	if q.MaxPrice != nil {
		params.Set("maxPrice", q.MaxPrice.String())
	}
	var out []domain.VehicleVariant
	err := c.do(ctx, request{method: http.MethodGet, path: "/variants", query: params}, &out)
	return out, err
}

// GetVariant returns ErrNotFound when the variant no longer exists, which is
// common for sold used vehicles.
func (c *Client) GetVariant(ctx context.Context, id string) (*domain.VehicleVariant, error) {
	var out domain.VehicleVariant
	if err := c.do(ctx, request{method: http.MethodGet, path: "/variants/" + url.PathEscape(id), silent: true}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListOptions(ctx context.Context, kind domain.OptionKind) ([]domain.OptionItem, error) {
	params := url.Values{}
	setParam(params, "kind", string(kind))
	var out []domain.OptionItem
	err := c.do(ctx, request{method: http.MethodGet, path: "/options", query: params}, &out)
	return out, err
}

func (c *Client) ListAccessories(ctx context.Context) ([]domain.Accessory, error) {
	var out []domain.Accessory
	err := c.do(ctx, request{method: http.MethodGet, path: "/accessories"}, &out)
	return out, err
}

// CreateVariant requires an admin token.
func (c *Client) CreateVariant(ctx context.Context, v domain.VehicleVariant) (*domain.VehicleVariant, error) {
	var out domain.VehicleVariant
	if err := c.do(ctx, request{method: http.MethodPost, path: "/admin/variants", body: v}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateOption requires an admin token.
func (c *Client) CreateOption(ctx context.Context, o domain.OptionItem) (*domain.OptionItem, error) {
	var out domain.OptionItem
	if err := c.do(ctx, request{method: http.MethodPost, path: "/admin/options", body: o}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateAccessory requires an admin token.
func (c *Client) CreateAccessory(ctx context.Context, a domain.Accessory) (*domain.Accessory, error) {
	var out domain.Accessory
	if err := c.do(ctx, request{method: http.MethodPost, path: "/admin/accessories", body: a}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// StartConfiguration opens a configuration of the variant in the current session.
func (c *Client) StartConfiguration(ctx context.Context, variantID string) (*Configuration, error) {
	var out Configuration
	body := map[string]string{"variantId": variantID}
	if err := c.do(ctx, request{method: http.MethodPost, path: "/configurations", body: body}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SelectOption(ctx context.Context, configurationID, optionID string) (*Configuration, error) {
	var out Configuration
	body := map[string]string{"optionId": optionID}
	path := "/configurations/" + url.PathEscape(configurationID) + "/selections"
	if err := c.do(ctx, request{method: http.MethodPost, path: path, body: body}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AddConfigurationToCart freezes the configuration into a cart line.
func (c *Client) AddConfigurationToCart(ctx context.Context, configurationID string) (*Cart, error) {
	var out Cart
	path := "/configurations/" + url.PathEscape(configurationID) + "/cart"
	if err := c.do(ctx, request{method: http.MethodPost, path: path}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AddAccessory(ctx context.Context, accessoryID string, qty int) (*Cart, error) {
	var out Cart
	body := map[string]interface{}{"accessoryId": accessoryID, "quantity": qty}
	if err := c.do(ctx, request{method: http.MethodPost, path: "/cart/accessories", body: body}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetCart(ctx context.Context) (*Cart, error) {
	var out Cart
	if err := c.do(ctx, request{method: http.MethodGet, path: "/cart"}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateReservation submits a configuration as a hold. It is never retried.
func (c *Client) CreateReservation(ctx context.Context, configurationID string) (*Submission, error) {
	return c.submit(ctx, map[string]string{"source": SourceConfiguration, "configurationId": configurationID})
}

// CreateOrder submits the session cart. The returned ClientSecret goes to the
// payment confirmation step.
func (c *Client) CreateOrder(ctx context.Context) (*Submission, error) {
	return c.submit(ctx, map[string]string{"source": SourceCart})
}

func (c *Client) submit(ctx context.Context, body map[string]string) (*Submission, error) {
	var out Submission
	if err := c.do(ctx, request{method: http.MethodPost, path: "/reservations", body: body}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ReservationStatus reads a reservation or order by token. Unknown tokens
// return ErrNotFound.
func (c *Client) ReservationStatus(ctx context.Context, token string) (*domain.Reservation, error) {
	var out domain.Reservation
	if err := c.do(ctx, request{method: http.MethodGet, path: "/reservations/" + url.PathEscape(token), silent: true}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func setParam(v url.Values, key, value string) {
	if value != "" {
		v.Set(key, value)
	}
}

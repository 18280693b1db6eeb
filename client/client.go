package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/totegamma/rentchain"
	"github.com/totegamma/rentchain/jwt"
)

const (
	defaultTimeout = 10 * time.Second
	tokenLifetime  = 5 * time.Minute
)

// APIError is a non-2xx response. Kind names the server side error kind
// ("Authorization", "State", "Funds", "NotFound", "InvalidArgument").
type APIError struct {
	StatusCode int
	Kind       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Kind == "" {
		return fmt.Sprintf("unexpected status code %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s error (%d): %s", e.Kind, e.StatusCode, e.Message)
}

type Client struct {
	client    *http.Client
	cache     *cache.Cache
	userAgent string
	baseURL   string
	key       string
	address   string
	audience  string
}

type Option func(*Client) error

// WithKey makes the client sign mutating requests with a wallet key.
// audience must match the server FQDN.
func WithKey(privatekey, audience string) Option {
	return func(c *Client) error {
		address, err := rentchain.PrivKeyToAddr(privatekey)
		if err != nil {
			return err
		}
		c.key = privatekey
		c.address = address
		c.audience = audience
		return nil
	}
}

func WithUserAgent(ua string) Option {
	return func(c *Client) error {
		c.userAgent = ua
		return nil
	}
}

// New creates a client for the server at baseURL, e.g. "https://rent.example.com".
func New(baseURL string, opts ...Option) (*Client, error) {
	httpClient := http.Client{
		Timeout: defaultTimeout,
	}

	c := &Client{
		client:    &httpClient,
		cache:     cache.New(10*time.Minute, 15*time.Minute),
		userAgent: "rentchain-client/" + rentchain.APIVersion,
		baseURL:   strings.TrimRight(baseURL, "/"),
	}
	httpClient.Transport = c

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Address is the wallet address requests are signed with, if any.
func (c *Client) Address() string {
	return c.address
}

func (c *Client) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", c.userAgent)
	return http.DefaultTransport.RoundTrip(req)
}

func (c *Client) token() (string, error) {
	if c.key == "" {
		return "", fmt.Errorf("client has no signing key")
	}
	return jwt.Create(jwt.Claims{
		Subject:        rentchain.JWTSubject,
		Audience:       c.audience,
		IssuedAt:       strconv.FormatInt(time.Now().Unix(), 10),
		ExpirationTime: strconv.FormatInt(time.Now().Add(tokenLifetime).Unix(), 10),
	}, c.key)
}

// HttpRequest performs a request against the server and decodes the JSON response into response.
func (c *Client) HttpRequest(ctx context.Context, method, path string, body any, response any) error {

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %v", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method != http.MethodGet {
		token, err := c.token()
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to perform request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var payload struct {
			Error string `json:"error"`
			Kind  string `json:"kind"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil {
			apiErr.Kind = payload.Kind
			apiErr.Message = payload.Error
		}
		return apiErr
	}

	if response == nil {
		return nil
	}
	err = json.NewDecoder(resp.Body).Decode(response)
	if err != nil {
		return fmt.Errorf("failed to decode response: %v", err)
	}

	return nil
}

func (c *Client) WellKnown(ctx context.Context) (rentchain.WellKnownRentchain, error) {
	var wk rentchain.WellKnownRentchain
	err := c.HttpRequest(ctx, http.MethodGet, "/.well-known/rentchain", nil, &wk)
	return wk, err
}

func (c *Client) RegisterUser(ctx context.Context, address string, kycVerified bool, roleFlags uint32) (rentchain.User, error) {
	var user rentchain.User
	err := c.HttpRequest(ctx, http.MethodPost, "/users", rentchain.RegisterUserRequest{
		Address:     address,
		KYCVerified: kycVerified,
		RoleFlags:   roleFlags,
	}, &user)
	return user, err
}

func (c *Client) GetUser(ctx context.Context, address string) (rentchain.User, error) {
	var user rentchain.User
	err := c.HttpRequest(ctx, http.MethodGet, "/users/"+url.PathEscape(address), nil, &user)
	return user, err
}

func (c *Client) RegisterProperty(ctx context.Context, owner string, price *big.Int, dataHash string) (rentchain.RegisterPropertyResponse, error) {
	var res rentchain.RegisterPropertyResponse
	err := c.HttpRequest(ctx, http.MethodPost, "/properties", rentchain.RegisterPropertyRequest{
		Owner:          owner,
		PricePerPeriod: rentchain.Amount(price),
		DataHash:       dataHash,
	}, &res)
	if err != nil {
		return res, err
	}
	c.cache.Set(titleCacheKey(res.Title.TokenID), res.Title, cache.DefaultExpiration)
	return res, nil
}

func (c *Client) GetProperty(ctx context.Context, id uint64) (rentchain.Property, error) {
	var property rentchain.Property
	err := c.HttpRequest(ctx, http.MethodGet, "/properties/"+strconv.FormatUint(id, 10), nil, &property)
	return property, err
}

func titleCacheKey(id uint64) string {
	return "title:" + strconv.FormatUint(id, 10)
}

// GetTitle fetches the title of a property. Titles never change once minted, so they are cached.
func (c *Client) GetTitle(ctx context.Context, id uint64) (rentchain.Title, error) {
	cacheKey := titleCacheKey(id)
	x, found := c.cache.Get(cacheKey)
	if found {
		return x.(rentchain.Title), nil
	}

	var title rentchain.Title
	err := c.HttpRequest(ctx, http.MethodGet, "/properties/"+strconv.FormatUint(id, 10)+"/title", nil, &title)
	if err != nil {
		return rentchain.Title{}, err
	}

	c.cache.Set(cacheKey, title, cache.DefaultExpiration)
	return title, nil
}

func (c *Client) ListAgreements(ctx context.Context, propertyID uint64) ([]rentchain.Agreement, error) {
	var agreements []rentchain.Agreement
	err := c.HttpRequest(ctx, http.MethodGet, "/properties/"+strconv.FormatUint(propertyID, 10)+"/agreements", nil, &agreements)
	return agreements, err
}

func (c *Client) GetAgreementByProperty(ctx context.Context, propertyID uint64) (rentchain.Agreement, error) {
	var agreement rentchain.Agreement
	err := c.HttpRequest(ctx, http.MethodGet, "/properties/"+strconv.FormatUint(propertyID, 10)+"/agreement", nil, &agreement)
	return agreement, err
}

func (c *Client) ListProperties(ctx context.Context, owner string) ([]rentchain.Property, error) {
	var properties []rentchain.Property
	err := c.HttpRequest(ctx, http.MethodGet, "/accounts/"+url.PathEscape(owner)+"/properties", nil, &properties)
	return properties, err
}

func (c *Client) ListTransfers(ctx context.Context, address string, limit int) ([]rentchain.Transfer, error) {
	path := "/accounts/" + url.PathEscape(address) + "/transfers"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var transfers []rentchain.Transfer
	err := c.HttpRequest(ctx, http.MethodGet, path, nil, &transfers)
	return transfers, err
}

func (c *Client) CreateAgreement(ctx context.Context, propertyID uint64, tenant string, rent, deposit *big.Int, dataHash string) (rentchain.Agreement, error) {
	var agreement rentchain.Agreement
	err := c.HttpRequest(ctx, http.MethodPost, "/agreements", rentchain.CreateAgreementRequest{
		PropertyID:    propertyID,
		Tenant:        tenant,
		RentAmount:    rentchain.Amount(rent),
		DepositAmount: rentchain.Amount(deposit),
		DataHash:      dataHash,
	}, &agreement)
	return agreement, err
}

func (c *Client) GetAgreement(ctx context.Context, id uint64) (rentchain.Agreement, error) {
	var agreement rentchain.Agreement
	err := c.HttpRequest(ctx, http.MethodGet, "/agreements/"+strconv.FormatUint(id, 10), nil, &agreement)
	return agreement, err
}

func (c *Client) agreementAction(ctx context.Context, id uint64, action string, body any) (rentchain.Agreement, error) {
	var agreement rentchain.Agreement
	err := c.HttpRequest(ctx, http.MethodPost, "/agreements/"+strconv.FormatUint(id, 10)+"/"+action, body, &agreement)
	return agreement, err
}

func (c *Client) Sign(ctx context.Context, id uint64, payment *big.Int) (rentchain.Agreement, error) {
	return c.agreementAction(ctx, id, "sign", rentchain.PaymentRequest{Amount: rentchain.Amount(payment)})
}

func (c *Client) PayRent(ctx context.Context, id uint64, amount *big.Int) (rentchain.Agreement, error) {
	return c.agreementAction(ctx, id, "rent", rentchain.PaymentRequest{Amount: rentchain.Amount(amount)})
}

func (c *Client) Complete(ctx context.Context, id uint64, policy uint8, release *big.Int) (rentchain.Agreement, error) {
	return c.agreementAction(ctx, id, "complete", rentchain.CompleteRequest{Policy: policy, ReleaseAmount: rentchain.Amount(release)})
}

func (c *Client) Cancel(ctx context.Context, id uint64, reason string) (rentchain.Agreement, error) {
	return c.agreementAction(ctx, id, "cancel", rentchain.CancelRequest{Reason: reason})
}

func (c *Client) EscrowBalance(ctx context.Context, id uint64) (*big.Int, error) {
	var res rentchain.EscrowBalance
	err := c.HttpRequest(ctx, http.MethodGet, "/agreements/"+strconv.FormatUint(id, 10)+"/escrow", nil, &res)
	if err != nil {
		return nil, err
	}
	return rentchain.ParseAmount(res.Balance)
}

func (c *Client) ListEvents(ctx context.Context, after uint64, limit int) ([]rentchain.Event, error) {
	query := url.Values{}
	query.Set("after", strconv.FormatUint(after, 10))
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	var events []rentchain.Event
	err := c.HttpRequest(ctx, http.MethodGet, "/events?"+query.Encode(), nil, &events)
	return events, err
}

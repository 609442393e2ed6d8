// Package client talks to the orderdesk REST API on behalf of the back-office
// tools. The caller's session is passed in explicitly; nothing is read from
// ambient storage.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"orderdesk/internal/listing"
	"orderdesk/internal/model"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// Client is a REST client for the orderdesk API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
	session    *model.Session
	lists      *singleflight.Group
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the client logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) { c.logger = logger.With().Str("component", "client").Logger() }
}

// WithSession authenticates every request with s.
func WithSession(s model.Session) Option {
	return func(c *Client) { c.session = &s }
}

// New creates a client for the API at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     zerolog.Nop(),
		lists:      &singleflight.Group{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithSession returns a copy of c that authenticates as s. The copy shares
// the HTTP client and in-flight list requests.
func (c *Client) WithSession(s model.Session) *Client {
	cp := *c
	cp.session = &s
	return &cp
}

// Session returns the session the client authenticates with, if any.
func (c *Client) Session() (model.Session, bool) {
	if c.session == nil {
		return model.Session{}, false
	}
	return *c.session, true
}

func (c *Client) role() model.Role {
	if c.session == nil {
		return model.RoleAnonymous
	}
	return c.session.Role
}

// Login exchanges credentials for a session.
func (c *Client) Login(ctx context.Context, username, password string) (model.Session, error) {
	var s model.Session
	err := c.doJSON(ctx, http.MethodPost, "/api/auth/login", model.LoginRequest{Username: username, Password: password}, &s)
	return s, err
}

// ListOrders fetches one page of orders. A courier session reads the courier
// listing, anything else the admin listing. Identical concurrent requests
// share one round trip; each caller may still abandon its wait through ctx.
func (c *Client) ListOrders(ctx context.Context, params model.ListParams) (listing.Page, error) {
	path := "/api/orders"
	if params.Scope == model.ScopeCourier || (params.Scope == "" && c.role() == model.RoleCourier) {
		path = "/api/courier/orders"
	}
	u := c.baseURL + path + "?" + listQuery(params).Encode()
	key := u
	if c.session != nil {
		key += "#" + c.session.Token
	}

	ch := c.lists.DoChan(key, func() (any, error) {
		return c.fetchList(context.WithoutCancel(ctx), u)
	})

	select {
	case <-ctx.Done():
		return listing.Page{}, fmt.Errorf("%w: %w", model.ErrNetwork, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return listing.Page{}, res.Err
		}
		return res.Val.(listing.Page), nil
	}
}

func (c *Client) fetchList(ctx context.Context, u string) (listing.Page, error) {
	body, _, err := c.do(ctx, http.MethodGet, u, nil)
	if err != nil {
		return listing.Page{}, err
	}

	page, shape := listing.Decode(body)
	if shape == listing.ShapeUnknown {
		c.logger.Warn().
			Str("url", u).
			Str("shape", shape.String()).
			Int("bytes", len(body)).
			Msg("unrecognised list response envelope")
	}
	return page, nil
}

func listQuery(p model.ListParams) url.Values {
	q := url.Values{}
	page := p.Page
	if page < 1 {
		page = 1
	}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(listing.NormalizeLimit(p.Limit)))
	if p.Status != "" {
		q.Set("status", string(p.Status))
	}
	if s := strings.TrimSpace(p.Search); s != "" {
		q.Set("search", s)
	}
	return q
}

// GetOrder fetches one order.
func (c *Client) GetOrder(ctx context.Context, id string) (*model.Order, error) {
	var o model.Order
	if err := c.doJSON(ctx, http.MethodGet, "/api/orders/"+url.PathEscape(id), nil, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// CreateOrder submits a storefront order.
func (c *Client) CreateOrder(ctx context.Context, req model.OrderRequest) (*model.Order, error) {
	var o model.Order
	if err := c.doJSON(ctx, http.MethodPost, "/api/orders", req, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// UpdateStatus asks the backend to move an order to target. Couriers go
// through the courier route.
func (c *Client) UpdateStatus(ctx context.Context, id string, target model.Status) (*model.Order, error) {
	path := "/api/orders/" + url.PathEscape(id) + "/status"
	if c.role() == model.RoleCourier {
		path = "/api/courier/" + url.PathEscape(id) + "/status"
	}

	var o model.Order
	if err := c.doJSON(ctx, http.MethodPut, path, model.StatusUpdateRequest{Status: string(target)}, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// DeleteOrder removes an order.
func (c *Client) DeleteOrder(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/orders/"+url.PathEscape(id), nil, nil)
}

// Document is a downloaded file.
type Document struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ExportOrders downloads the batch export in format "txt" or "pdf".
func (c *Client) ExportOrders(ctx context.Context, params model.ListParams, format string) (*Document, error) {
	q := listQuery(params)
	q.Del("page")
	q.Del("limit")
	q.Set("format", format)
	return c.download(ctx, "/api/orders/export?"+q.Encode())
}

// Invoice downloads one invoice in format "txt" or "pdf".
func (c *Client) Invoice(ctx context.Context, id, format string) (*Document, error) {
	return c.download(ctx, "/api/orders/"+url.PathEscape(id)+"/invoice?format="+url.QueryEscape(format))
}

func (c *Client) download(ctx context.Context, pathAndQuery string) (*Document, error) {
	body, header, err := c.do(ctx, http.MethodGet, c.baseURL+pathAndQuery, nil)
	if err != nil {
		return nil, err
	}
	doc := &Document{ContentType: header.Get("Content-Type"), Body: body}
	if _, params, err := mime.ParseMediaType(header.Get("Content-Disposition")); err == nil {
		doc.Filename = params["filename"]
	}
	return doc, nil
}

// Products lists the catalogue.
func (c *Client) Products(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	if err := c.doJSON(ctx, http.MethodGet, "/api/products", nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// Summary fetches the dashboard aggregates for the last days days.
func (c *Client) Summary(ctx context.Context, days int) (*model.Summary, error) {
	var s model.Summary
	if err := c.doJSON(ctx, http.MethodGet, "/api/analytics/summary?days="+strconv.Itoa(days), nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	resp, _, err := c.do(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if out == nil || len(resp) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp, out); err != nil {
		return fmt.Errorf("%w: invalid response body: %w", model.ErrNetwork, err)
	}
	return nil
}

// do performs one request. Transport failures wrap model.ErrNetwork; error
// statuses become the DomainError the server reported.
func (c *Client) do(ctx context.Context, method, u string, body io.Reader) ([]byte, http.Header, error) {
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.session != nil && c.session.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.session.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug().Err(err).Str("method", method).Str("url", u).Msg("request failed")
		return nil, nil, fmt.Errorf("%w: %w", model.ErrNetwork, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", model.ErrNetwork, err)
	}

	if resp.StatusCode >= 400 {
		return nil, nil, decodeError(resp.StatusCode, data)
	}
	return data, resp.Header, nil
}

func decodeError(status int, body []byte) error {
	if status >= http.StatusInternalServerError {
		return fmt.Errorf("%w: unexpected status %d", model.ErrNetwork, status)
	}

	var er model.ErrorResponse
	if err := json.Unmarshal(body, &er); err == nil && er.Error != "" {
		if !clientCodes[er.Error] {
			return fmt.Errorf("%w: unexpected error code %s (status %d)", model.ErrNetwork, er.Error, status)
		}
		return model.NewDomainError(er.Error, er.Message)
	}

	switch status {
	case http.StatusBadRequest:
		return model.ErrValidation
	case http.StatusUnauthorized:
		return model.ErrUnauthorised
	case http.StatusForbidden:
		return model.ErrForbidden
	case http.StatusNotFound:
		return model.ErrNotFound
	case http.StatusConflict:
		return model.ErrInvalidTransition
	}
	return fmt.Errorf("%w: unexpected status %d", model.ErrNetwork, status)
}

// clientCodes are the error codes surfaced to callers as domain errors.
// Anything else is reported as a failed request.
var clientCodes = map[string]bool{
	model.ErrCodeInvalidJSON:        true,
	model.ErrCodeValidation:         true,
	model.ErrCodeInvalidTransition:  true,
	model.ErrCodeNotFound:           true,
	model.ErrCodeInvalidPromoCode:   true,
	model.ErrCodeInvalidPromoLength: true,
	model.ErrCodeProductUnavailable: true,
	model.ErrCodeInvalidCredentials: true,
	model.ErrCodeUnauthorised:       true,
	model.ErrCodeForbidden:          true,
}

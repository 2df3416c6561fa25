package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/angelmondragon/pdv-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/pdv-backend/pkg/errors"
	"github.com/angelmondragon/pdv-backend/pkg/money"
)

const (
	defaultHTTPTimeout          = 5 * time.Second
	responseBodyReadLimit int64 = 1024
)

var errBaseURLRequired = errors.New("catalog base url is required")

// Client resolves items against a remote catalog service.
type Client struct {
	httpClient *http.Client
	baseURL    string
	authToken  string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient = &http.Client{Timeout: timeout}
		}
	}
}

// WithBearerToken attaches an Authorization header to every request.
func WithBearerToken(token string) Option {
	return func(c *Client) {
		c.authToken = strings.TrimSpace(token)
	}
}

func NewClient(baseURL string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, errBaseURLRequired
	}

	client := &Client{
		baseURL:    trimmed,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

type itemPayload struct {
	Code        string      `json:"code"`
	Description string      `json:"description"`
	Unit        string      `json:"unit,omitempty"`
	UnitPrice   json.Number `json:"unitPrice"`
}

func (c *Client) Lookup(ctx context.Context, code string) (Item, error) {
	trimmed := NormalizeCode(code)
	if trimmed == "" {
		return Item{}, ErrItemNotFound
	}

	resp, err := c.do(ctx, http.MethodGet, c.buildURL("items", url.PathEscape(trimmed)), nil)
	if err != nil {
		return Item{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return Item{}, ErrItemNotFound
	default:
		return Item{}, statusError(resp, "catalog lookup failed")
	}

	var payload itemPayload
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(&payload); err != nil {
		return Item{}, pkgerrors.Wrap(pkgerrors.CodeDependency, unavailable("decode item", err), "decode catalog item")
	}
	return payload.toItem(trimmed)
}

func (c *Client) Register(ctx context.Context, item Item) error {
	item, err := Validate(item)
	if err != nil {
		return err
	}

	body, err := json.Marshal(itemPayload{
		Code:        item.Code,
		Description: item.Description,
		Unit:        item.Unit.String(),
		UnitPrice:   json.Number(item.UnitPrice.String()),
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal catalog item")
	}

	resp, err := c.do(ctx, http.MethodPost, c.buildURL("items"), body)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusCreated, http.StatusOK:
		return nil
	case http.StatusConflict:
		return ErrItemExists
	default:
		return statusError(resp, "catalog register failed")
	}
}

func (c *Client) Exists(ctx context.Context, code string) (bool, error) {
	query := url.Values{"barcode": []string{NormalizeCode(code)}}
	resp, err := c.do(ctx, http.MethodGet, c.buildURL("items", "check-barcode")+"?"+query.Encode(), nil)
	if err != nil {
		return false, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return false, statusError(resp, "catalog existence check failed")
	}
	var apiResp struct {
		Exists bool `json:"exists"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, unavailable("decode exists", err), "decode catalog response")
	}
	return apiResp.Exists, nil
}

func (c *Client) do(ctx context.Context, method, target string, body []byte) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build catalog request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		code := pkgerrors.CodeDependency
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			code = pkgerrors.CodeTimeout
		}
		return nil, pkgerrors.Wrap(code, unavailable(method+" "+target, err), "catalog request failed")
	}
	return resp, nil
}

func (c *Client) buildURL(parts ...string) string {
	return c.baseURL + "/" + strings.Join(parts, "/")
}

func (p itemPayload) toItem(requested string) (Item, error) {
	price, err := money.Parse(p.UnitPrice.String())
	if err != nil {
		return Item{}, pkgerrors.Wrap(pkgerrors.CodeDependency, unavailable("parse unit price", err), "invalid catalog price")
	}
	unit, err := enums.ParseProductUnit(p.Unit)
	if err != nil {
		unit = enums.DefaultProductUnit
	}
	code := NormalizeCode(p.Code)
	if code == "" {
		code = requested
	}
	return Item{
		Code:        code,
		Description: p.Description,
		Unit:        unit,
		UnitPrice:   price,
	}, nil
}

func statusError(resp *http.Response, message string) error {
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
	cause := fmt.Errorf("%w: status %d: %s", ErrCatalogUnavailable, resp.StatusCode, strings.TrimSpace(string(msg)))
	return pkgerrors.Wrap(pkgerrors.CodeDependency, cause, message)
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}

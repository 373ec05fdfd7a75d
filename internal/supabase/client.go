package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client inserts rows into the Supabase products table via the PostgREST API.
type Client struct {
	baseURL    string
	serviceKey string
	httpClient *http.Client
}

// New constructs a Supabase client. Empty credentials are allowed; requests
// will then fail server-side at call time rather than at startup.
func New(baseURL, serviceKey string) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		serviceKey: serviceKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// NewWithHTTPClient allows overriding the HTTP client (tests).
func NewWithHTTPClient(baseURL, serviceKey string, hc *http.Client) *Client {
	c := New(baseURL, serviceKey)
	if hc != nil {
		c.httpClient = hc
	}
	return c
}

// Product is the stored representation returned by the insert.
type Product struct {
	ID              flexID  `json:"id"`
	Name            string  `json:"name"`
	Price           float64 `json:"price"`
	Weight          float64 `json:"weight"`
	WeightUnit      string  `json:"weight_unit"`
	QuantityInStock int     `json:"quantity_in_stock"`
	SellerID        string  `json:"seller_id"`
	Description     string  `json:"description"`
}

// flexID tolerates both string and numeric primary keys.
type flexID string

func (f *flexID) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*f = ""
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*f = flexID(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexID(n.String())
	return nil
}

func (f flexID) String() string { return string(f) }

// PersistenceError reports a non-2xx status from the insert endpoint.
type PersistenceError struct {
	StatusCode int
	Detail     string
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("supabase insert failed with status %d: %s", e.StatusCode, e.Detail)
}

// MalformedResponseError reports a 2xx response whose body could not be
// normalized to a single product with an id.
type MalformedResponseError struct {
	Reason string
}

func (e *MalformedResponseError) Error() string {
	return "malformed supabase response: " + e.Reason
}

type insertPayload struct {
	Name            string   `json:"name"`
	Price           float64  `json:"price"`
	Weight          float64  `json:"weight"`
	WeightUnit      string   `json:"weight_unit"`
	QuantityInStock int      `json:"quantity_in_stock"`
	SellerID        string   `json:"seller_id"`
	Image           string   `json:"image"`
	Description     string   `json:"description"`
	Images          []string `json:"images"`
	Colors          []string `json:"colors"`
	Sizes           []string `json:"sizes"`
	Variants        []string `json:"variants"`
}

// CreateProduct inserts a product row and returns the stored representation.
// Weight is in ounces, cost in USD.
func (c *Client) CreateProduct(ctx context.Context, sellerID, name string, weight, cost float64, quantity int) (*Product, error) {
	payload := insertPayload{
		Name:            name,
		Price:           cost,
		Weight:          weight,
		WeightUnit:      "oz",
		QuantityInStock: quantity,
		SellerID:        sellerID,
		Image:           "",
		Description:     name + " - added via voice",
		Images:          []string{},
		Colors:          []string{},
		Sizes:           []string{},
		Variants:        []string{},
	}

	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal product payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/rest/v1/products", bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("apikey", c.serviceKey)
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	req.Header.Set("Content-Type", "application/json")
	// ask PostgREST to return the created row in the response body
	req.Header.Set("Prefer", "return=representation")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post to supabase: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &PersistenceError{StatusCode: resp.StatusCode, Detail: strings.TrimSpace(string(body))}
	}

	return normalize(body)
}

// normalize accepts either a single JSON object or a one-element array
// (PostgREST returns a list under Prefer: return=representation).
func normalize(body []byte) (*Product, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, &MalformedResponseError{Reason: "empty body"}
	}

	if trimmed[0] == '[' {
		var list []Product
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, &MalformedResponseError{Reason: "invalid JSON array: " + err.Error()}
		}
		if len(list) == 0 {
			return nil, &MalformedResponseError{Reason: "empty result array"}
		}
		p := list[0]
		if p.ID == "" {
			return nil, &MalformedResponseError{Reason: "row missing id field"}
		}
		return &p, nil
	}

	var p Product
	if err := json.Unmarshal(trimmed, &p); err != nil {
		return nil, &MalformedResponseError{Reason: "invalid JSON object: " + err.Error()}
	}
	if p.ID == "" {
		return nil, &MalformedResponseError{Reason: "row missing id field"}
	}
	return &p, nil
}

package ledgerdesksdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client is a minimal Ledgerdesk HTTP API client.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// New creates a client with sane defaults.
func New(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		Timeout: 10 * time.Second,
	}
}

// Draft represents the API draft model. Money fields are fixed-point strings.
type Draft struct {
	ID         string          `json:"id"`
	Kind       string          `json:"kind"`
	Step       string          `json:"step"`
	CreatedAt  string          `json:"created_at"`
	Asset      map[string]any  `json:"asset,omitempty"`
	Items      []Item          `json:"items,omitempty"`
	Totals     Totals          `json:"totals"`
	Schedule   []ScheduleEntry `json:"schedule,omitempty"`
	Validation Report          `json:"validation"`
}

// Item is a draft line item.
type Item struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	RefID       string `json:"ref_id,omitempty"`
	Quantity    int64  `json:"quantity"`
	Rate        string `json:"rate"`
	Overtime    string `json:"overtime"`
	Bonuses     string `json:"bonuses"`
	Deductions  string `json:"deductions"`
	LineTotal   string `json:"line_total"`
}

// Totals holds the derived aggregates for a draft.
type Totals struct {
	Subtotal   string `json:"subtotal"`
	Tax        string `json:"tax"`
	Total      string `json:"total"`
	BaseSalary string `json:"base_salary"`
	Overtime   string `json:"overtime"`
	Bonuses    string `json:"bonuses"`
	Deductions string `json:"deductions"`
	NetPay     string `json:"net_pay"`
}

// ScheduleEntry is one year of a depreciation schedule.
type ScheduleEntry struct {
	Period                  int    `json:"period"`
	OpeningValue            string `json:"opening_value"`
	PeriodDepreciation      string `json:"period_depreciation"`
	ClosingValue            string `json:"closing_value"`
	AccumulatedDepreciation string `json:"accumulated_depreciation"`
}

// StepReport is the advisory completeness report for one step.
type StepReport struct {
	Step     string   `json:"step"`
	Complete bool     `json:"complete"`
	Missing  []string `json:"missing,omitempty"`
}

// Report covers the whole draft.
type Report struct {
	Steps       []StepReport `json:"steps"`
	Submittable bool         `json:"submittable"`
}

// Submission is the recorded snapshot returned by submit.
type Submission struct {
	ID          string         `json:"id"`
	Kind        string         `json:"kind"`
	SubmittedAt string         `json:"submitted_at"`
	Payload     map[string]any `json:"payload"`
}

// Employee is a directory record.
type Employee struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Department string `json:"department,omitempty"`
	BaseSalary string `json:"base_salary"`
}

// Vendor is a directory record.
type Vendor struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Contact string `json:"contact,omitempty"`
}

// AssetCategory is a directory record.
type AssetCategory struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	DefaultLifeYears int    `json:"default_life_years"`
	DefaultMethod    string `json:"default_method,omitempty"`
}

// APIError wraps non-2xx responses.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status=%d body=%s", e.StatusCode, e.Body)
}

// CreateDraft opens a draft session of the given kind.
func (c *Client) CreateDraft(ctx context.Context, kind string) (Draft, error) {
	var resp Draft
	err := c.do(ctx, http.MethodPost, "v0/drafts", map[string]any{"kind": kind}, &resp)
	return resp, err
}

// ListDrafts lists open draft sessions.
func (c *Client) ListDrafts(ctx context.Context) ([]Draft, error) {
	var resp []Draft
	err := c.do(ctx, http.MethodGet, "v0/drafts", nil, &resp)
	return resp, err
}

// GetDraft fetches a draft by id.
func (c *Client) GetDraft(ctx context.Context, id string) (Draft, error) {
	var resp Draft
	err := c.do(ctx, http.MethodGet, c.draftPath(id, ""), nil, &resp)
	return resp, err
}

// DeleteDraft discards a draft session.
func (c *Client) DeleteDraft(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, c.draftPath(id, ""), nil, nil)
}

// UpdateFields patches primitive draft fields. The body is keyed by kind,
// e.g. {"procurement": {"department": "IT"}}.
func (c *Client) UpdateFields(ctx context.Context, id string, fields map[string]any) (Draft, error) {
	var resp Draft
	err := c.do(ctx, http.MethodPatch, c.draftPath(id, "fields"), fields, &resp)
	return resp, err
}

// AddItem appends a line item to the draft.
func (c *Client) AddItem(ctx context.Context, id string, item map[string]any) (Draft, error) {
	var resp Draft
	err := c.do(ctx, http.MethodPost, c.draftPath(id, "items"), item, &resp)
	return resp, err
}

// UpdateItem patches a line item.
func (c *Client) UpdateItem(ctx context.Context, id, itemID string, item map[string]any) (Draft, error) {
	var resp Draft
	err := c.do(ctx, http.MethodPatch, c.draftPath(id, "items/"+url.PathEscape(itemID)), item, &resp)
	return resp, err
}

// RemoveItem deletes a line item.
func (c *Client) RemoveItem(ctx context.Context, id, itemID string) (Draft, error) {
	var resp Draft
	err := c.do(ctx, http.MethodDelete, c.draftPath(id, "items/"+url.PathEscape(itemID)), nil, &resp)
	return resp, err
}

// Next advances the wizard one step.
func (c *Client) Next(ctx context.Context, id string) (Draft, error) {
	var resp Draft
	err := c.do(ctx, http.MethodPost, c.draftPath(id, "next"), nil, &resp)
	return resp, err
}

// Previous moves the wizard back one step.
func (c *Client) Previous(ctx context.Context, id string) (Draft, error) {
	var resp Draft
	err := c.do(ctx, http.MethodPost, c.draftPath(id, "previous"), nil, &resp)
	return resp, err
}

// GotoStep jumps directly to a named step.
func (c *Client) GotoStep(ctx context.Context, id, step string) (Draft, error) {
	var resp Draft
	err := c.do(ctx, http.MethodPost, c.draftPath(id, "step"), map[string]any{"step": step}, &resp)
	return resp, err
}

// Reset clears the draft back to its empty form.
func (c *Client) Reset(ctx context.Context, id string) (Draft, error) {
	var resp Draft
	err := c.do(ctx, http.MethodPost, c.draftPath(id, "reset"), nil, &resp)
	return resp, err
}

// Validation fetches the advisory completeness report.
func (c *Client) Validation(ctx context.Context, id string) (Report, error) {
	var resp Report
	err := c.do(ctx, http.MethodGet, c.draftPath(id, "validation"), nil, &resp)
	return resp, err
}

// Submit snapshots the draft and closes the session.
func (c *Client) Submit(ctx context.Context, id string) (Submission, error) {
	var resp Submission
	err := c.do(ctx, http.MethodPost, c.draftPath(id, "submit"), nil, &resp)
	return resp, err
}

// Employees lists directory employees.
func (c *Client) Employees(ctx context.Context) ([]Employee, error) {
	var resp []Employee
	err := c.do(ctx, http.MethodGet, "v0/directory/employees", nil, &resp)
	return resp, err
}

// Vendors lists directory vendors.
func (c *Client) Vendors(ctx context.Context) ([]Vendor, error) {
	var resp []Vendor
	err := c.do(ctx, http.MethodGet, "v0/directory/vendors", nil, &resp)
	return resp, err
}

// Categories lists asset categories.
func (c *Client) Categories(ctx context.Context) ([]AssetCategory, error) {
	var resp []AssetCategory
	err := c.do(ctx, http.MethodGet, "v0/directory/categories", nil, &resp)
	return resp, err
}

func (c *Client) do(ctx context.Context, method, endpoint string, body any, out any) error {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: c.Timeout}
	}
	url := c.base() + "/" + strings.TrimLeft(endpoint, "/")
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, url, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Body: string(b)}
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (c *Client) draftPath(id, p string) string {
	endpoint := "v0/drafts/" + url.PathEscape(id)
	if p != "" {
		endpoint += "/" + strings.TrimLeft(p, "/")
	}
	return endpoint
}

func (c *Client) base() string {
	return strings.TrimRight(c.BaseURL, "/")
}

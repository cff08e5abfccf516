// Package enterpriseaccess is the REST client for the enterprise-access
// backend that owns budgets, allocations and the assignment lifecycle.
//
// Every call is rate limited (x/time/rate), traced (OpenTelemetry span plus
// W3C trace propagation) and authenticated with an optional bearer token.
// Non-2xx responses are returned as *APIError carrying the status and raw
// body so callers can classify business failures.
package enterpriseaccess

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/tbourn/go-budget-assign/internal/config"
	"github.com/tbourn/go-budget-assign/internal/domain"
	"github.com/tbourn/go-budget-assign/internal/query"
)

// maxErrorBody caps how much of an error response is retained.
const maxErrorBody = 64 << 10

// APIError is a non-2xx upstream response.
type APIError struct {
	Status int
	Body   []byte
	Path   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("enterprise-access %s: status %d", e.Path, e.Status)
}

// StatusCode returns the HTTP status.
func (e *APIError) StatusCode() int { return e.Status }

// ResponseBody returns the raw response body.
func (e *APIError) ResponseBody() []byte { return e.Body }

// Client talks to enterprise-access. It is safe for concurrent use.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	limiter *rate.Limiter
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New builds a client from upstream configuration.
func New(cfg config.UpstreamConfig, opts ...Option) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	lim := rate.NewLimiter(rate.Inf, 0)
	if cfg.RPS > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		lim = rate.NewLimiter(rate.Limit(cfg.RPS), burst)
	}
	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		http:    &http.Client{Timeout: timeout},
		limiter: lim,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Allocate reserves budget funds for learners on a course.
func (c *Client) Allocate(ctx context.Context, req domain.AllocationRequest) (domain.AllocationResult, error) {
	body := struct {
		ContentKey        string   `json:"content_key"`
		ContentPriceCents int64    `json:"content_price_cents"`
		LearnerEmails     []string `json:"learner_emails"`
	}{req.ContentKey, req.ContentPriceCents, req.LearnerEmails}

	var out domain.AllocationResult
	p := fmt.Sprintf("/policy-allocation/%s/allocate/", url.PathEscape(req.PolicyID))
	err := c.do(ctx, "Allocate", http.MethodPost, p, nil, body, &out)
	return out, err
}

// ListAssignments fetches one page of non-terminal assignments.
func (c *Client) ListAssignments(ctx context.Context, configID string, params query.Params) (domain.AssignmentPage, error) {
	q := wireQuery(params)
	q.Set("state__in", listableStates(q.Get("state__in")))
	var out domain.AssignmentPage
	err := c.do(ctx, "ListAssignments", http.MethodGet, assignmentsPath(configID, ""), q, nil, &out)
	return out, err
}

// Remind re-sends notifications for the given assignments.
func (c *Client) Remind(ctx context.Context, configID string, uuids []string) error {
	return c.do(ctx, "Remind", http.MethodPost, assignmentsPath(configID, "remind/"), nil, uuidBody(uuids), nil)
}

// RemindAll reminds every assignment matching filters.
func (c *Client) RemindAll(ctx context.Context, configID string, filters query.Params) error {
	return c.do(ctx, "RemindAll", http.MethodPost, assignmentsPath(configID, "remind-all/"), wireQuery(filters), nil, nil)
}

// Cancel cancels the given assignments.
func (c *Client) Cancel(ctx context.Context, configID string, uuids []string) error {
	return c.do(ctx, "Cancel", http.MethodPost, assignmentsPath(configID, "cancel/"), nil, uuidBody(uuids), nil)
}

// CancelAll cancels every assignment matching filters.
func (c *Client) CancelAll(ctx context.Context, configID string, filters query.Params) error {
	return c.do(ctx, "CancelAll", http.MethodPost, assignmentsPath(configID, "cancel-all/"), wireQuery(filters), nil, nil)
}

// policyDTO is the subsidy-access-policy payload; amounts are in cents.
type policyDTO struct {
	UUID               string `json:"uuid"`
	EnterpriseCustomer string `json:"enterprise_customer_uuid"`
	DisplayName        string `json:"display_name"`
	SpendLimit         int64  `json:"spend_limit"`
	Aggregates         struct {
		AmountAllocatedUSD json.Number `json:"amount_allocated_usd"`
		AmountRedeemedUSD  json.Number `json:"amount_redeemed_usd"`
	} `json:"aggregates"`
}

func (p policyDTO) toDomain() (domain.BudgetAggregates, error) {
	b := domain.BudgetAggregates{
		PolicyID:      p.UUID,
		EnterpriseID:  p.EnterpriseCustomer,
		DisplayName:   p.DisplayName,
		SpendLimitUSD: domain.CentsToUSD(p.SpendLimit),
	}
	var err error
	if b.AmountAllocatedUSD, err = parseUSD(p.Aggregates.AmountAllocatedUSD); err != nil {
		return b, fmt.Errorf("amount_allocated_usd: %w", err)
	}
	if b.AmountRedeemedUSD, err = parseUSD(p.Aggregates.AmountRedeemedUSD); err != nil {
		return b, fmt.Errorf("amount_redeemed_usd: %w", err)
	}
	return b, nil
}

// GetBudget fetches one policy with its aggregates.
func (c *Client) GetBudget(ctx context.Context, policyID string) (domain.BudgetAggregates, error) {
	var dto policyDTO
	p := fmt.Sprintf("/subsidy-access-policies/%s/", url.PathEscape(policyID))
	if err := c.do(ctx, "GetBudget", http.MethodGet, p, nil, nil, &dto); err != nil {
		return domain.BudgetAggregates{}, err
	}
	return dto.toDomain()
}

// ListBudgets fetches every policy of an enterprise.
func (c *Client) ListBudgets(ctx context.Context, enterpriseID string) ([]domain.BudgetAggregates, error) {
	var page struct {
		Results []policyDTO `json:"results"`
	}
	q := url.Values{"enterprise_customer_uuid": {enterpriseID}}
	if err := c.do(ctx, "ListBudgets", http.MethodGet, "/subsidy-access-policies/", q, nil, &page); err != nil {
		return nil, err
	}
	out := make([]domain.BudgetAggregates, 0, len(page.Results))
	for _, p := range page.Results {
		b, err := p.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, q url.Values, in, out any) error {
	tr := otel.Tracer("enterpriseaccess/Client")
	ctx, span := tr.Start(ctx, op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.path", path),
		),
	)
	defer span.End()

	if err := c.limiter.Wait(ctx); err != nil {
		span.RecordError(err)
		return fmt.Errorf("%s: rate limit: %w", op, err)
	}

	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: encode: %w", op, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport")
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	log.Debug().
		Str("op", op).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("enterprise-access call")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		span.SetStatus(codes.Error, resp.Status)
		return &APIError{Status: resp.StatusCode, Body: b, Path: path}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode: %w", op, err)
	}
	return nil
}

func assignmentsPath(configID, suffix string) string {
	return fmt.Sprintf("/assignment-configurations/%s/admin/assignments/%s", url.PathEscape(configID), suffix)
}

func uuidBody(uuids []string) any {
	return struct {
		AssignmentUUIDs []string `json:"assignment_uuids"`
	}{uuids}
}

// wireParams maps translator keys onto the backend's query names.
var wireParams = map[string]string{
	query.ParamPage:         "page",
	query.ParamPageSize:     "page_size",
	query.ParamOrdering:     "ordering",
	query.ParamSearch:       "search",
	query.ParamLearnerState: "learner_state__in",
	query.ParamState:        "state__in",
}

// listedStates are the request states the assignment list may show.
var listedStates = []string{"allocated", "errored"}

// listableStates narrows a requested state__in value to listedStates.
// Terminal states are never requested; an empty result means all of them.
func listableStates(requested string) string {
	var keep []string
	for _, st := range strings.Split(requested, ",") {
		st = strings.ToLower(strings.TrimSpace(st))
		if slices.Contains(listedStates, st) && !slices.Contains(keep, st) {
			keep = append(keep, st)
		}
	}
	if len(keep) == 0 {
		keep = listedStates
	}
	return strings.Join(keep, ",")
}

func wireQuery(p query.Params) url.Values {
	q := url.Values{}
	for k, v := range p {
		if v == "" {
			continue
		}
		if w, ok := wireParams[k]; ok {
			q.Set(w, v)
		}
	}
	return q
}

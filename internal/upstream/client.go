// Package upstream reads project, task, milestone, billing and schedule
// records from the upstream REST API.
package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	mfgDomain "github.com/MahlumInnovationsLLC/masterscheduler/internal/manufacturing/domain"
	"github.com/MahlumInnovationsLLC/masterscheduler/internal/projects/domain"
	"github.com/MahlumInnovationsLLC/masterscheduler/internal/shared/infrastructure/resilience"
	"github.com/MahlumInnovationsLLC/masterscheduler/pkg/observability"
)

const (
	defaultTimeout = 15 * time.Second

	// maxErrorBody caps how much of an error response is kept.
	maxErrorBody = 512
)

// Route labels used for metrics and logs.
const (
	RouteProjects          = "projects"
	RouteProject           = "project"
	RouteTasks             = "tasks"
	RouteMilestones        = "milestones"
	RouteBillingMilestones = "billing_milestones"
	RouteSchedules         = "manufacturing_schedules"
)

// Config configures the upstream client.
type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
	Breaker resilience.BreakerConfig
}

// Client reads records from upstream.
type Client struct {
	baseURL    *url.URL
	token      string
	httpClient *http.Client
	breaker    *resilience.Breaker[[]byte]
	cache      Cache
	cacheTTL   time.Duration
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewClient creates an upstream client.
func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("upstream base URL is required")
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid upstream base URL %q", cfg.BaseURL)
	}
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	c := &Client{
		baseURL:    base,
		token:      cfg.Token,
		httpClient: &http.Client{Timeout: timeout},
		cache:      NoopCache{},
		logger:     logger.With("component", "upstream"),
	}

	breakerCfg := cfg.Breaker
	breakerCfg.IsSuccessful = countsAsSuccess
	c.breaker = resilience.NewBreaker[[]byte]("upstream", breakerCfg, c.logger, func(name, state string) {
		c.metrics.SetBreakerState(name, state)
	})
	return c, nil
}

// WithCache caches response bodies for ttl. A zero ttl disables caching.
func (c *Client) WithCache(cache Cache, ttl time.Duration) *Client {
	if cache == nil || ttl <= 0 {
		c.cache, c.cacheTTL = NoopCache{}, 0
		return c
	}
	c.cache, c.cacheTTL = cache, ttl
	return c
}

// WithMetrics records request, cache and breaker metrics.
func (c *Client) WithMetrics(metrics *observability.Metrics) *Client {
	c.metrics = metrics
	return c
}

// WithHTTPClient replaces the HTTP client, keeping the configured timeout
// when the replacement has none.
func (c *Client) WithHTTPClient(httpClient *http.Client) *Client {
	if httpClient == nil {
		return c
	}
	if httpClient.Timeout == 0 {
		httpClient.Timeout = c.httpClient.Timeout
	}
	c.httpClient = httpClient
	return c
}

// BreakerState returns the circuit breaker state name.
func (c *Client) BreakerState() string {
	return c.breaker.State()
}

// ListProjects fetches every project.
func (c *Client) ListProjects(ctx context.Context) ([]*domain.Project, error) {
	var records []projectRecord
	if err := c.getJSON(ctx, RouteProjects, "/api/projects", &records); err != nil {
		return nil, err
	}
	projects := make([]*domain.Project, 0, len(records))
	for _, r := range records {
		projects = append(projects, r.toDomain())
	}
	return projects, nil
}

// GetProject fetches one project.
func (c *Client) GetProject(ctx context.Context, id int64) (*domain.Project, error) {
	var record projectRecord
	if err := c.getJSON(ctx, RouteProject, fmt.Sprintf("/api/projects/%d", id), &record); err != nil {
		return nil, err
	}
	if record.ID == 0 {
		record.ID = id
	}
	return record.toDomain(), nil
}

// ListTasks fetches a project's tasks.
func (c *Client) ListTasks(ctx context.Context, projectID int64) ([]domain.Task, error) {
	var records []taskRecord
	if err := c.getJSON(ctx, RouteTasks, fmt.Sprintf("/api/projects/%d/tasks", projectID), &records); err != nil {
		return nil, err
	}
	tasks := make([]domain.Task, 0, len(records))
	for _, r := range records {
		tasks = append(tasks, r.toDomain(projectID))
	}
	return tasks, nil
}

// ListMilestones fetches a project's milestones.
func (c *Client) ListMilestones(ctx context.Context, projectID int64) ([]domain.Milestone, error) {
	var records []milestoneRecord
	if err := c.getJSON(ctx, RouteMilestones, fmt.Sprintf("/api/projects/%d/milestones", projectID), &records); err != nil {
		return nil, err
	}
	milestones := make([]domain.Milestone, 0, len(records))
	for _, r := range records {
		milestones = append(milestones, r.toDomain(projectID))
	}
	return milestones, nil
}

// ListBillingMilestones fetches a project's billing milestones.
func (c *Client) ListBillingMilestones(ctx context.Context, projectID int64) ([]domain.BillingMilestone, error) {
	var records []billingMilestoneRecord
	if err := c.getJSON(ctx, RouteBillingMilestones, fmt.Sprintf("/api/projects/%d/billing-milestones", projectID), &records); err != nil {
		return nil, err
	}
	milestones := make([]domain.BillingMilestone, 0, len(records))
	for _, r := range records {
		milestones = append(milestones, r.toDomain(projectID))
	}
	return milestones, nil
}

// ListManufacturingSchedules fetches every bay schedule.
func (c *Client) ListManufacturingSchedules(ctx context.Context) ([]mfgDomain.Schedule, error) {
	var records []scheduleRecord
	if err := c.getJSON(ctx, RouteSchedules, "/api/manufacturing-schedules", &records); err != nil {
		return nil, err
	}
	schedules := make([]mfgDomain.Schedule, 0, len(records))
	for _, r := range records {
		schedules = append(schedules, r.toDomain())
	}
	return schedules, nil
}

// getJSON fetches path, from the cache when possible, and decodes it into out.
func (c *Client) getJSON(ctx context.Context, route, path string, out any) error {
	body, err := c.fetch(ctx, route, path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode upstream %s: %w", path, err)
	}
	return nil
}

func (c *Client) fetch(ctx context.Context, route, path string) ([]byte, error) {
	if c.cacheTTL > 0 {
		cached, ok, err := c.cache.Get(ctx, path)
		if err != nil {
			c.logger.WarnContext(ctx, "upstream cache read failed", "path", path, "error", err)
		}
		c.metrics.RecordCacheLookup(ok)
		if ok {
			return cached, nil
		}
	}

	start := time.Now()
	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.do(ctx, path)
	})
	c.metrics.ObserveUpstreamRequest(route, err, time.Since(start))
	if errors.Is(err, resilience.ErrCircuitOpen) {
		return nil, fmt.Errorf("%w: %s", ErrUpstreamUnavailable, path)
	}
	if err != nil {
		return nil, err
	}

	if c.cacheTTL > 0 {
		if err := c.cache.Set(ctx, path, body, c.cacheTTL); err != nil {
			c.logger.WarnContext(ctx, "upstream cache write failed", "path", path, "error", err)
		}
	}
	return body, nil
}

func (c *Client) do(ctx context.Context, path string) ([]byte, error) {
	endpoint := c.baseURL.JoinPath(path)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", observability.ServiceName)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if id := observability.CorrelationIDFromContext(ctx); id != "" {
		req.Header.Set("X-Correlation-ID", id)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, requestError(ctx, path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, responseError(path, resp)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, requestError(ctx, path, fmt.Errorf("failed to read body: %w", err))
	}
	return body, nil
}

func responseError(path string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &StatusError{
		Path:       path,
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(body)),
	}
}

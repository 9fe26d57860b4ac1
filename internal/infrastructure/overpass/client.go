package overpass

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/address-data-service/internal/config"
	"github.com/address-data-service/internal/domain"
	"github.com/address-data-service/internal/domain/repository"
	"github.com/address-data-service/internal/observability"
	"github.com/address-data-service/internal/pkg/retry"
)

// StatusError - ответ Overpass с кодом, отличным от 200
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("overpass API error: status %d, body: %s", e.StatusCode, e.Body)
}

// IsRetryable: 404, 408, 429 и 5xx Overpass отдаёт под нагрузкой, их стоит повторить
func (e *StatusError) IsRetryable() bool {
	switch {
	case e.StatusCode == http.StatusNotFound,
		e.StatusCode == http.StatusRequestTimeout,
		e.StatusCode == http.StatusTooManyRequests,
		e.StatusCode >= 500:
		return true
	default:
		return false
	}
}

const maxErrorBody = 512

type client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	queries    QuerySet
	limiter    *rate.Limiter
	retry      retry.Config
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// Option настраивает клиент
type Option func(*client)

// WithQuerySet подменяет шаблоны запросов
func WithQuerySet(qs QuerySet) Option {
	return func(c *client) { c.queries = qs }
}

// WithHTTPClient подменяет HTTP-клиент
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) { c.httpClient = hc }
}

// NewClient создает новый клиент для Overpass API
func NewClient(cfg *config.OverpassConfig, metrics *observability.Metrics, logger *zap.Logger, opts ...Option) repository.OverpassRepository {
	limit := rate.Limit(cfg.RateLimit)
	if cfg.RateLimit <= 0 {
		limit = rate.Inf
	}
	burst := cfg.RateBurst
	if burst < 1 {
		burst = 1
	}

	c := &client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:   cfg.BaseURL,
		userAgent: cfg.UserAgent,
		queries:   DefaultQuerySet(),
		limiter:   rate.NewLimiter(limit, burst),
		retry: retry.Config{
			MaxAttempts:    cfg.MaxAttempts,
			InitialBackoff: cfg.InitialBackoff,
			MaxBackoff:     cfg.MaxBackoff,
			Multiplier:     2.0,
			ShouldRetry:    shouldRetry,
		},
		metrics: metrics,
		logger:  logger,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func shouldRetry(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.IsRetryable()
	}

	// ошибки транспорта
	return true
}

// GetCities возвращает все города; строки без идентификатора или названия отбрасываются
func (c *client) GetCities(ctx context.Context) ([]domain.CityInfo, error) {
	query := c.queries.Cities()

	rows, err := fetchRows[rawCity](ctx, c, queryCities, query)
	if err != nil {
		return nil, err
	}

	cities := mapCities(rows)
	c.observe(queryCities, len(cities) > 0)

	c.logger.Debug("Fetched cities",
		zap.Int("rows", len(rows)),
		zap.Int("valid", len(cities)))

	return cities, nil
}

// GetCity возвращает город по идентификатору области
func (c *client) GetCity(ctx context.Context, areaID int64) (domain.CityInfo, error) {
	query := c.queries.City(areaID)

	rows, err := fetchRows[rawCity](ctx, c, queryCity, query)
	if err != nil {
		return domain.CityInfo{}, err
	}

	cities := mapCities(rows)
	c.observe(queryCity, len(cities) > 0)
	if len(cities) == 0 {
		return domain.CityInfo{}, fmt.Errorf("city %d: %w", areaID, domain.ErrNotFound)
	}

	return cities[0], nil
}

// GetAddresses возвращает адреса области с заполненными домом, улицей и индексом
func (c *client) GetAddresses(ctx context.Context, areaID int64) ([]domain.AddressRecord, error) {
	query := c.queries.Addresses(areaID)

	rows, err := fetchRows[rawAddress](ctx, c, queryAddresses, query)
	if err != nil {
		return nil, err
	}

	addresses, ok := mapAddresses(rows)
	c.observe(queryAddresses, ok)
	if !ok {
		return nil, fmt.Errorf("addresses of %d: %w", areaID, domain.ErrNotFound)
	}

	c.logger.Debug("Fetched addresses",
		zap.Int64("area_id", areaID),
		zap.Int("rows", len(rows)),
		zap.Int("valid", len(addresses)))

	return addresses, nil
}

// GetLocation определяет город, регион и страну области:
// берёт точку внутри области, ищет её административные границы и название города.
func (c *client) GetLocation(ctx context.Context, areaID int64) (domain.Location, error) {
	point, err := c.getPoint(ctx, areaID)
	if err != nil {
		return domain.Location{}, err
	}

	stateCountry, err := c.getStateCountry(ctx, point)
	if err != nil {
		return domain.Location{}, fmt.Errorf("location of %d: %w", areaID, err)
	}

	city, err := c.GetCity(ctx, areaID)
	if err != nil {
		return domain.Location{}, err
	}

	return domain.NewLocation(city, stateCountry), nil
}

func (c *client) getPoint(ctx context.Context, areaID int64) (domain.LatLon, error) {
	query := c.queries.Coordinates(areaID)

	rows, err := fetchRows[rawLatLon](ctx, c, queryCoordinates, query)
	if err != nil {
		return domain.LatLon{}, err
	}

	var point domain.LatLon
	ok := len(rows) > 0
	if ok {
		point, ok = mapLatLon(rows[0])
	}
	c.observe(queryCoordinates, ok)
	if !ok {
		return domain.LatLon{}, fmt.Errorf("coordinates of %d: %w", areaID, domain.ErrNotFound)
	}

	return point, nil
}

func (c *client) getStateCountry(ctx context.Context, point domain.LatLon) (domain.StateCountry, error) {
	query := c.queries.Boundary(point)

	body, err := c.fetch(ctx, queryBoundary, query)
	if err != nil {
		return domain.StateCountry{}, err
	}

	var resp boundaryResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return domain.StateCountry{}, c.fetchFailed(queryBoundary, query, fmt.Errorf("failed to decode response: %w", err))
	}

	stateCountry, ok := domain.ResolveStateCountry(mapFeatures(resp))
	c.observe(queryBoundary, ok)
	if !ok {
		c.logger.Debug("Boundary not resolved",
			zap.String("lat", point.Latitude),
			zap.String("lon", point.Longitude),
			zap.Int("elements", len(resp.Elements)))
		return domain.StateCountry{}, fmt.Errorf("state and country: %w", domain.ErrNotFound)
	}

	return stateCountry, nil
}

func fetchRows[T any](ctx context.Context, c *client, kind, query string) ([]*T, error) {
	body, err := c.fetch(ctx, kind, query)
	if err != nil {
		return nil, err
	}

	rows, err := decodeRows[T](body)
	if err != nil {
		return nil, c.fetchFailed(kind, query, fmt.Errorf("failed to decode response: %w", err))
	}

	return rows, nil
}

// fetch выполняет запрос с ограничением частоты и повторами
func (c *client) fetch(ctx context.Context, kind, query string) ([]byte, error) {
	cfg := c.retry
	cfg.OnRetry = func(attempt int, err error) {
		if c.metrics != nil {
			c.metrics.OverpassRetries.WithLabelValues(kind).Inc()
		}
		c.logger.Warn("Retrying Overpass query",
			zap.String("query_kind", kind),
			zap.Int("attempt", attempt),
			zap.Error(err))
	}

	start := time.Now()
	body, err := retry.DoVal(ctx, cfg, func(ctx context.Context) ([]byte, error) {
		return c.do(ctx, query)
	})
	if c.metrics != nil {
		c.metrics.OverpassDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	}
	if err != nil {
		return nil, c.fetchFailed(kind, query, err)
	}

	return body, nil
}

func (c *client) do(ctx context.Context, query string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	reqURL := c.baseURL + "?data=" + url.QueryEscape(query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return body, nil
}

// fetchFailed логирует сбой один раз и оборачивает его в FetchError
func (c *client) fetchFailed(kind, query string, err error) error {
	if c.metrics != nil {
		c.metrics.OverpassRequests.WithLabelValues(kind, "error").Inc()
	}
	c.logger.Error("Overpass query failed",
		zap.String("query_kind", kind),
		zap.String("query", query),
		zap.Error(err))
	return &domain.FetchError{Query: query, Err: err}
}

func (c *client) observe(kind string, found bool) {
	if c.metrics == nil {
		return
	}
	outcome := "success"
	if !found {
		outcome = "empty"
	}
	c.metrics.OverpassRequests.WithLabelValues(kind, outcome).Inc()
}

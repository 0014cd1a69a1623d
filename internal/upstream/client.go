// Package upstream предоставляет HTTP клиент для обращения к внешним API
// и типизированные ошибки, по которым можно отличить недоступность
// внешнего сервиса от некорректного ответа.
package upstream

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/InQaaaaGit/userpet_api.git/internal/metrics"
)

const (
	// DefaultTimeout используется, если таймаут не задан
	DefaultTimeout = 5 * time.Second
	// MaxBodySize ограничивает размер читаемого тела ответа
	MaxBodySize = 4 << 20

	userAgent = "userpet-api/1.0"
)

// ErrUpstreamUnavailable возвращается при сетевой ошибке, таймауте или ответе не 2xx
var ErrUpstreamUnavailable = errors.New("upstream unavailable")

// ErrMalformedPayload возвращается, когда ответ внешнего API не удается разобрать
var ErrMalformedPayload = errors.New("malformed upstream payload")

// ErrEmptyBody возвращается, когда внешний API ответил 2xx с пустым телом
var ErrEmptyBody = fmt.Errorf("%w: empty body", ErrMalformedPayload)

// StatusError описывает ответ внешнего API с кодом не 2xx
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream %s responded with HTTP %d", e.URL, e.StatusCode)
}

// Unwrap позволяет сравнивать StatusError с ErrUpstreamUnavailable через errors.Is
func (e *StatusError) Unwrap() error {
	return ErrUpstreamUnavailable
}

// Client выполняет GET запросы к внешним API с ограничением по времени
type Client struct {
	http    *http.Client
	timeout time.Duration
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewClient создает клиент с заданным таймаутом на один запрос.
// metrics может быть nil.
func NewClient(timeout time.Duration, logger *zap.Logger, m *metrics.Metrics) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		http:    &http.Client{Timeout: timeout},
		timeout: timeout,
		logger:  logger,
		metrics: m,
	}
}

// Get выполняет GET запрос и возвращает тело успешного ответа.
// source используется как метка в логах и метриках.
func (c *Client) Get(ctx context.Context, source, url string) ([]byte, error) {
	start := time.Now()
	body, err := c.get(ctx, url)
	elapsed := time.Since(start)

	c.metrics.ObserveUpstream(source, err, elapsed)
	if err != nil {
		c.logger.Debug("Upstream request failed",
			zap.String("source", source),
			zap.String("url", url),
			zap.Duration("latency", elapsed),
			zap.Error(err))
		return nil, err
	}

	c.logger.Debug("Upstream request completed",
		zap.String("source", source),
		zap.String("url", url),
		zap.Duration("latency", elapsed),
		zap.Int("size", len(body)))
	return body, nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrUpstreamUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Warn("Error closing upstream response body", zap.Error(err))
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Дочитываем тело, чтобы соединение вернулось в пул
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, MaxBodySize))
		return nil, &StatusError{StatusCode: resp.StatusCode, URL: url}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrUpstreamUnavailable, err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, ErrEmptyBody
	}
	return body, nil
}

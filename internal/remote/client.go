// Package remote implements the RemoteDataSource boundary: a JSON-over-HTTP
// client for the Nestegg API plus one source per data domain. The cache layer
// never sees raw HTTP; every failure surfaces as a classified AppError.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	apperrors "nestegg-client/internal/errors"
	"nestegg-client/internal/observability"
)

// TokenProvider supplies the current bearer token. The config watcher may
// swap tokens at runtime, so the client asks on every request.
type TokenProvider func() string

// Options configure a Client.
type Options struct {
	BaseURL string
	Token   TokenProvider
	Timeout time.Duration
	// MaxRetries bounds transparent retries of retryable GET failures.
	MaxRetries int

	HTTPClient *http.Client
	Logger     *zap.Logger
	Metrics    *observability.Collector
}

// Client is the shared HTTP transport for all domain sources.
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
	token      TokenProvider
	breaker    *gobreaker.CircuitBreaker
	logger     *zap.Logger
	tracer     trace.Tracer
	metrics    *observability.Collector
	maxRetries int
}

// NewClient creates a Client for the given API.
func NewClient(opts Options) (*Client, error) {
	base, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("remote: invalid base URL %q: %w", opts.BaseURL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("remote: base URL %q must be absolute", opts.BaseURL)
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout == 0 {
			timeout = 15 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	token := opts.Token
	if token == nil {
		token = func() string { return "" }
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "nestegg-api",
		MaxRequests: 5,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 5 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= 0.8
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		// Only infrastructure failures count against the breaker; a 404
		// or validation error says nothing about API health.
		IsSuccessful: func(err error) bool {
			return err == nil || !apperrors.PreservesCache(err)
		},
	})

	return &Client{
		httpClient: httpClient,
		baseURL:    base,
		token:      token,
		breaker:    breaker,
		logger:     logger,
		tracer:     otel.Tracer("nestegg-client/remote"),
		metrics:    opts.Metrics,
		maxRetries: opts.MaxRetries,
	}, nil
}

// apiEnvelope is the API's error body shape.
type apiEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type requestOption func(*http.Request)

// withHeader sets an extra request header.
func withHeader(key, value string) requestOption {
	return func(req *http.Request) { req.Header.Set(key, value) }
}

// withIdempotencyKey marks a mutation as safely repeatable server-side.
func withIdempotencyKey() requestOption {
	return withHeader("Idempotency-Key", uuid.NewString())
}

// get performs a GET with bounded retries on retryable failures.
func (c *Client) get(ctx context.Context, path string, out any, opts ...requestOption) error {
	var lastErr error
	for attempt := 0; ; attempt++ {
		lastErr = c.do(ctx, http.MethodGet, path, nil, out, opts...)
		if lastErr == nil || !apperrors.IsRetryable(lastErr) || attempt >= c.maxRetries {
			return lastErr
		}
		delay := retryDelay(lastErr, attempt)
		c.logger.Debug("retrying remote GET",
			zap.String("path", path),
			zap.Int("attempt", attempt+1),
			zap.Duration("delay", delay),
		)
		select {
		case <-ctx.Done():
			return lastErr
		case <-time.After(delay):
		}
	}
}

func (c *Client) post(ctx context.Context, path string, body, out any, opts ...requestOption) error {
	return c.do(ctx, http.MethodPost, path, body, out, opts...)
}

func (c *Client) put(ctx context.Context, path string, body, out any, opts ...requestOption) error {
	return c.do(ctx, http.MethodPut, path, body, out, opts...)
}

func (c *Client) delete(ctx context.Context, path string, opts ...requestOption) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, opts...)
}

// do executes one request/response cycle through the circuit breaker and
// classifies the outcome.
func (c *Client) do(ctx context.Context, method, path string, body, out any, opts ...requestOption) error {
	ctx, span := c.tracer.Start(ctx, fmt.Sprintf("nestegg.%s %s", method, path))
	defer span.End()

	start := time.Now()
	err := c.execute(ctx, method, path, body, out, opts...)
	if c.metrics != nil {
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		c.metrics.ObserveRemote(method, path, outcome, time.Since(start))
	}
	return err
}

func (c *Client) execute(ctx context.Context, method, path string, body, out any, opts ...requestOption) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return apperrors.Internal("ENCODE_BODY", "failed to encode request body").
				WithOperation(method + " " + path).
				WithCause(err).
				Build()
		}
	}

	_, err := c.breaker.Execute(func() (any, error) {
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL.JoinPath(path).String(), bytes.NewReader(payload))
		if err != nil {
			return nil, apperrors.Internal("BUILD_REQUEST", "failed to build request").WithCause(err).Build()
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("X-Request-Id", uuid.NewString())
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if tok := c.token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
		for _, opt := range opts {
			opt(req)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, apperrors.Connectivity("TRANSPORT", "request failed").
				WithOperation(method + " " + path).
				WithCause(err).
				Build()
		}
		defer resp.Body.Close()

		return nil, c.handleResponse(method, path, resp, out)
	})

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return apperrors.Connectivity("BREAKER_OPEN", "remote API temporarily unavailable").
			WithOperation(method + " " + path).
			WithCause(err).
			Build()
	}
	return err
}

func (c *Client) handleResponse(method, path string, resp *http.Response, out any) error {
	op := method + " " + path

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil {
			return nil
		}
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return apperrors.Connectivity("READ_BODY", "failed to read response body").
				WithOperation(op).
				WithCause(err).
				Build()
		}
		if err := json.Unmarshal(data, out); err != nil {
			return apperrors.Decode("DECODE_BODY", "failed to decode response body").
				WithOperation(op).
				WithCause(err).
				Build()
		}
		return nil
	}

	var envelope apiEnvelope
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	_ = json.Unmarshal(data, &envelope)
	code := envelope.Error.Code
	message := envelope.Error.Message
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return apperrors.Unauthorized(orDefault(code, "UNAUTHORIZED"), message).WithOperation(op).Build()
	case resp.StatusCode == http.StatusForbidden:
		return apperrors.Forbidden(orDefault(code, "FORBIDDEN"), message).WithOperation(op).Build()
	case resp.StatusCode == http.StatusNotFound:
		return apperrors.NotFound(orDefault(code, "NOT_FOUND"), message).WithOperation(op).Build()
	case resp.StatusCode == http.StatusTooManyRequests:
		return apperrors.RateLimited(orDefault(code, "RATE_LIMITED"), message, parseRetryAfter(resp)).
			WithOperation(op).
			Build()
	case resp.StatusCode >= 500:
		return apperrors.Server(orDefault(code, "SERVER_ERROR"), message, resp.StatusCode).
			WithOperation(op).
			Build()
	default:
		// 400, 409, 422 and friends: the request itself was wrong.
		return apperrors.Validation(orDefault(code, "INVALID_REQUEST"), message).
			WithStatusCode(resp.StatusCode).
			WithOperation(op).
			Build()
	}
}

func orDefault(code, fallback string) string {
	if code == "" {
		return fallback
	}
	return code
}

func parseRetryAfter(resp *http.Response) time.Duration {
	header := resp.Header.Get("Retry-After")
	if header == "" {
		return time.Second
	}
	if seconds, err := strconv.Atoi(header); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	return time.Second
}

func retryDelay(err error, attempt int) time.Duration {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.RetryAfter > 0 {
		return appErr.RetryAfter
	}
	// 100ms, 200ms, 400ms, ...
	return time.Duration(1<<attempt) * 100 * time.Millisecond
}

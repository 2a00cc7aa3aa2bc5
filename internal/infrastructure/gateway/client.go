package gateway

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"couponmap.backend/internal/config"
	"couponmap.backend/internal/domain/entities"
	"couponmap.backend/pkg/logger"
)

const confirmPath = "/v1/payments/confirm"

// ErrUnavailable is returned when every attempt failed without a decline
var ErrUnavailable = errors.New("payment gateway unavailable")

// Client confirms card payments against the gateway's REST API
type Client struct {
	baseURL    string
	authHeader string
	http       *http.Client
	tracer     trace.Tracer
	maxRetries int
	backoff    time.Duration
	sleep      func(ctx context.Context, d time.Duration) error
}

func NewClient(cfg config.PaymentGatewayConfig) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		authHeader: "Basic " + base64.StdEncoding.EncodeToString([]byte(cfg.SecretKey+":")),
		http: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 20,
			},
		},
		tracer:     otel.Tracer("couponmap/payment-gateway"),
		maxRetries: cfg.MaxRetries,
		backoff:    cfg.Backoff,
		sleep:      sleepCtx,
	}
}

type confirmRequest struct {
	PaymentKey string `json:"paymentKey"`
	OrderID    string `json:"orderId"`
	Amount     int64  `json:"amount"`
}

type confirmResponse struct {
	PaymentKey string `json:"paymentKey"`
	Method     string `json:"method"`
	ApprovedAt string `json:"approvedAt"`
	Receipt    struct {
		URL string `json:"url"`
	} `json:"receipt"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Confirm approves a payment. A refusal by the gateway comes back as
// *entities.GatewayDecline and is never retried.
func (c *Client) Confirm(ctx context.Context, paymentKey, orderID string, amount int64) (*entities.GatewayApproval, error) {
	ctx, span := c.tracer.Start(ctx, "payment-gateway.confirm", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("payment.order_id", orderID),
		attribute.Int64("payment.amount", amount),
	)

	body, err := json.Marshal(confirmRequest{PaymentKey: paymentKey, OrderID: orderID, Amount: amount})
	if err != nil {
		return nil, err
	}

	attempts := c.maxRetries + 1
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		approval, retry, err := c.confirmOnce(ctx, body)
		if err == nil {
			span.SetAttributes(attribute.Int("payment.attempts", attempt))
			return approval, nil
		}
		lastErr = err
		if !retry {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		logger.Warn(ctx, "Payment gateway attempt failed",
			zap.String("order_id", orderID),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		if attempt < attempts {
			if err := c.sleep(ctx, c.backoff*time.Duration(attempt)); err != nil {
				lastErr = err
				break
			}
		}
	}

	err = fmt.Errorf("%w: %v", ErrUnavailable, lastErr)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return nil, err
}

// confirmOnce performs a single call and reports whether a failure is retryable
func (c *Client) confirmOnce(ctx context.Context, body []byte) (*entities.GatewayApproval, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+confirmPath, bytes.NewReader(body))
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("Authorization", c.authHeader)
	req.Header.Set("Content-Type", "application/json")
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, ctx.Err() == nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, true, err
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		var out confirmResponse
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, false, fmt.Errorf("decode gateway response: %w", err)
		}
		approval := &entities.GatewayApproval{
			PaymentKey: out.PaymentKey,
			Method:     out.Method,
			ReceiptURL: out.Receipt.URL,
			ApprovedAt: time.Now().UTC(),
		}
		if t, err := time.Parse(time.RFC3339, out.ApprovedAt); err == nil {
			approval.ApprovedAt = t.UTC()
		}
		return approval, false, nil
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, true, fmt.Errorf("gateway returned %s", resp.Status)
	default:
		var e errorResponse
		_ = json.Unmarshal(raw, &e)
		if e.Message == "" {
			e.Message = resp.Status
		}
		return nil, false, &entities.GatewayDecline{Status: resp.StatusCode, Code: e.Code, Message: e.Message}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

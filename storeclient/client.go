package storeclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/balanoilmart/ledger_backend/config"
	"github.com/balanoilmart/ledger_backend/utils"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const correlationIdHeader = "x-correlation-id"

// Client implements models.Store against the REST store. It never retries.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *logrus.Logger
}

func New(baseURL string, timeout time.Duration) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("store base url is empty")
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: config.GetLogger(),
	}, nil
}

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// do sends one request. Status mapping: 404 is NotFoundError, 400 and 422 are
// ValidationError, anything else outside 2xx (and network failures) is TransportError.
func (c *Client) do(ctx context.Context, op string, method string, path string, resource string, id string, in any, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return utils.NewValidationError("", "cannot encode request: %v", err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return utils.NewTransportError(op, 0, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if correlationId, ok := utils.GetCorrelationIdFromContext(ctx); ok && correlationId != "" {
		req.Header.Set(correlationIdHeader, correlationId)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return utils.NewTransportError(op, 0, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return utils.NewTransportError(op, resp.StatusCode, err)
	}
	c.logger.WithFields(logrus.Fields{
		"module":     "storeclient",
		"op":         op,
		"method":     method,
		"path":       path,
		"status":     resp.StatusCode,
		"durationMs": time.Since(start).Milliseconds(),
	}).Debug("store request")

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return utils.NewNotFoundError(resource, id)
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity:
		return utils.NewValidationError("", "%s", errorMessage(raw))
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return utils.NewTransportError(op, resp.StatusCode, errors.New(errorMessage(raw)))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return utils.NewTransportError(op, resp.StatusCode, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

func errorMessage(raw []byte) string {
	var eb errorBody
	if err := json.Unmarshal(raw, &eb); err == nil {
		if eb.Message != "" {
			return eb.Message
		}
		if eb.Error != "" {
			return eb.Error
		}
	}
	msg := strings.TrimSpace(string(raw))
	if msg == "" {
		return "empty response"
	}
	return msg
}

var errMissingItem = errors.New("response has no inventory item")

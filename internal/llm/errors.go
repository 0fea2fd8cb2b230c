package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

// TransportError wraps a failed round-trip. Network and deadline failures
// become ErrUnavailable; anything else is treated as a bad response.
func TransportError(provider string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrUnavailable) || errors.Is(err, ErrBadResponse) {
		return err
	}
	if IsTransient(err) {
		return fmt.Errorf("%s request: %w: %v", provider, ErrUnavailable, err)
	}
	return fmt.Errorf("%s request: %w: %v", provider, ErrBadResponse, err)
}

// StatusError maps a non-2xx HTTP status from the oracle to a typed error.
func StatusError(provider string, status int, body string) error {
	body = strings.TrimSpace(body)
	if len(body) > 300 {
		body = body[:300]
	}
	switch status {
	case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return fmt.Errorf("%s http status %d: %w: %s", provider, status, ErrUnavailable, body)
	default:
		return fmt.Errorf("%s http status %d: %w: %s", provider, status, ErrBadResponse, body)
	}
}

// IsTransient reports whether err looks like the oracle could not be reached.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrUnavailable) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "client.timeout") || strings.Contains(msg, "deadline exceeded") {
		return true
	}
	return strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection closed") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "tls handshake timeout") ||
		strings.Contains(msg, "no such host")
}

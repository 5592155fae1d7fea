package consultation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

// Relay is the consultation relay as the client sees it. Failures are
// *RelayError values carrying a category.
type Relay interface {
	Consult(ctx context.Context, req Request) (string, error)
}

// RelayClient calls a remote relay over HTTP.
type RelayClient struct {
	url        string
	token      string
	httpClient *http.Client
}

func NewRelayClient(url, token string, timeout time.Duration) *RelayClient {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &RelayClient{
		url:   url,
		token: token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *RelayClient) Consult(ctx context.Context, req Request) (string, error) {
	jsonBody, err := json.Marshal(req)
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(jsonBody))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if isTimeout(err) {
			return "", &RelayError{Category: CategoryTimeout, Status: http.StatusGatewayTimeout, Message: msgTimeout}
		}
		return "", fmt.Errorf("relay request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read relay response: %w", err)
	}

	var result Result
	decodeErr := json.Unmarshal(body, &result)

	if resp.StatusCode != http.StatusOK {
		msg := result.Error
		if msg == "" {
			msg = fmt.Sprintf("relay returned %s", resp.Status)
		}
		return "", &RelayError{Category: categoryForStatus(resp.StatusCode), Status: resp.StatusCode, Message: msg}
	}
	if decodeErr != nil {
		return "", fmt.Errorf("failed to decode relay response: %w", decodeErr)
	}
	if result.Error != "" {
		return "", &RelayError{Category: CategoryGeneric, Status: resp.StatusCode, Message: result.Error}
	}
	return result.Response, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

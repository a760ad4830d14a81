package camunda

import (
	"context"
	"fmt"
	"strings"
	"time"

	"listings-workers/internal/common/errors"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

type Client struct {
	client zbc.Client
	config *ClientConfig
}

type ClientConfig struct {
	GatewayAddress         string
	UsePlaintextConnection bool
	ConnectionTimeout      time.Duration
	RetryConfig            *RetryConfig
}

type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

var DefaultRetryConfig = &RetryConfig{
	MaxRetries: 3,
	BaseDelay:  1 * time.Second,
	MaxDelay:   10 * time.Second,
}

func NewClient(address string) (*Client, error) {
	return NewClientWithConfig(&ClientConfig{
		GatewayAddress:         address,
		UsePlaintextConnection: true,
		ConnectionTimeout:      10 * time.Second,
		RetryConfig:            DefaultRetryConfig,
	})
}

// NewClientWithConfig dials the gateway and verifies it with a topology request.
func NewClientWithConfig(config *ClientConfig) (*Client, error) {
	if config.RetryConfig == nil {
		config.RetryConfig = DefaultRetryConfig
	}

	zeebeClient, err := zbc.NewClient(&zbc.ClientConfig{
		GatewayAddress:         config.GatewayAddress,
		UsePlaintextConnection: config.UsePlaintextConnection,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Zeebe client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), config.ConnectionTimeout)
	defer cancel()

	if _, err := zeebeClient.NewTopologyCommand().Send(ctx); err != nil {
		zeebeClient.Close()
		return nil, fmt.Errorf("failed to connect to Zeebe broker at %s: %w", config.GatewayAddress, err)
	}

	return &Client{
		client: zeebeClient,
		config: config,
	}, nil
}

func (c *Client) GetClient() zbc.Client {
	return c.client
}

func (c *Client) Close() error {
	return c.client.Close()
}

// Retry calls fn until it succeeds, fails with a non-transient error, or the
// attempts run out. Delays double from BaseDelay up to MaxDelay.
func Retry(ctx context.Context, cfg *RetryConfig, operationName string, fn func(context.Context) error) error {
	if cfg == nil {
		cfg = DefaultRetryConfig
	}

	for attempt := 0; ; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}

		if !isRetryableZeebeError(err) || attempt == cfg.MaxRetries {
			return mapZeebeError(err, operationName, attempt)
		}

		delay := cfg.BaseDelay * time.Duration(1<<attempt)
		if delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return fmt.Errorf("operation %s cancelled after %d attempts: %w", operationName, attempt+1, ctx.Err())
		}
	}
}

func isRetryableZeebeError(err error) bool {
	msg := strings.ToLower(err.Error())
	retryablePhrases := []string{
		"connection refused",
		"connection reset",
		"timeout",
		"deadline exceeded",
		"unavailable",
		"unreachable",
		"broken pipe",
		"resource_exhausted",
	}
	for _, phrase := range retryablePhrases {
		if strings.Contains(msg, phrase) {
			return true
		}
	}
	return false
}

func mapZeebeError(err error, operation string, attempt int) error {
	msg := err.Error()
	lowerMsg := strings.ToLower(msg)

	enhancedMsg := fmt.Sprintf("Zeebe operation '%s' failed", operation)
	if attempt > 0 {
		enhancedMsg += fmt.Sprintf(" after %d attempts", attempt+1)
	}

	stdErr := errors.NewExternalServiceError("zeebe", fmt.Errorf("%s: %s", enhancedMsg, msg))
	switch {
	case strings.Contains(lowerMsg, "not found"):
		stdErr.Retryable = false
		stdErr.WithMetadata("reason", "not_found")
	case strings.Contains(lowerMsg, "permission denied") || strings.Contains(lowerMsg, "unauthorized"):
		stdErr.Retryable = false
		stdErr.WithMetadata("reason", "unauthorized")
	case strings.Contains(lowerMsg, "timeout") || strings.Contains(lowerMsg, "deadline exceeded"):
		stdErr.WithMetadata("reason", "timeout")
	}
	return stdErr
}

func (c *Client) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.config.ConnectionTimeout)
	defer cancel()

	if _, err := c.client.NewTopologyCommand().Send(ctx); err != nil {
		return fmt.Errorf("zeebe health check failed: %w", err)
	}
	return nil
}

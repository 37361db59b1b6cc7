package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	openaisdk "github.com/openai/openai-go"
	contractx "github.com/tanpawarit/career-mentor-ai/agent/contract"
)

// classify maps a transport or provider error onto the backend sentinels.
// Context errors pass through unchanged so the caller can tell cancellation
// apart from a failing backend.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, contractx.ErrBackend) || errors.Is(err, contractx.ErrBackendUnavailable) {
		return err
	}

	var apiErr *openaisdk.Error
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= http.StatusInternalServerError {
			return fmt.Errorf("%w: status=%d: %v", contractx.ErrBackendUnavailable, apiErr.StatusCode, err)
		}
		return fmt.Errorf("%w: status=%d: %v", contractx.ErrBackend, apiErr.StatusCode, err)
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || errors.As(err, &netErr) {
		return fmt.Errorf("%w: %v", contractx.ErrBackendUnavailable, err)
	}
	return fmt.Errorf("%w: %v", contractx.ErrBackend, err)
}

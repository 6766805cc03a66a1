package probe

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/hamed0406/healthchecker/internal/domain"
)

const (
	DefaultTimeout   = 10 * time.Second
	DefaultUserAgent = "http-health-checker/0.1"

	// drained before close so the connection can go back to the pool
	maxDrainBytes = 64 << 10
)

// HTTPChecker issues one GET per Check through a shared client. Redirects are
// not followed, so 3xx responses count as DOWN.
type HTTPChecker struct {
	Client    *http.Client
	UserAgent string
}

func NewHTTPChecker(timeout time.Duration) *HTTPChecker {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPChecker{
		Client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		UserAgent: DefaultUserAgent,
	}
}

func (h *HTTPChecker) Check(ctx context.Context, target string) domain.Outcome {
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return domain.FromError(target, err, time.Since(start))
	}
	if h.UserAgent != "" {
		req.Header.Set("User-Agent", h.UserAgent)
	}

	resp, err := h.Client.Do(req)
	if err != nil {
		return domain.FromError(target, err, time.Since(start))
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainBytes))

	return domain.FromResponse(target, resp.StatusCode, time.Since(start))
}

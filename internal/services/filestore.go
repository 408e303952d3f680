package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"appreview/roster-evaluator/internal/config"
)

// FileStore retrieves artifact bytes from the external file store.
type FileStore interface {
	Fetch(ctx context.Context, locator string) ([]byte, error)
}

type httpFileStore struct {
	baseURL      string
	client       *http.Client
	maxAttempts  int
	initialDelay time.Duration
	logger       *zap.Logger
}

func NewHTTPFileStore(cfg config.FileStoreConfig, pipeline config.PipelineConfig, logger *zap.Logger) FileStore {
	return &httpFileStore{
		baseURL:      cfg.BaseURL,
		client:       &http.Client{Timeout: cfg.Timeout},
		maxAttempts:  pipeline.FetchMaxAttempts,
		initialDelay: pipeline.FetchInitialDelay,
		logger:       logger,
	}
}

// Locators arrive as share URLs; the file id is what the store's download
// endpoint wants.
var fileIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/file/d/([a-zA-Z0-9_-]+)`),
	regexp.MustCompile(`[?&]id=([a-zA-Z0-9_-]+)`),
	regexp.MustCompile(`/d/([a-zA-Z0-9_-]+)`),
}

// ExtractFileID pulls the file id out of a file store locator URL. Returns
// empty when the locator has no recognizable id.
func ExtractFileID(locator string) string {
	for _, pattern := range fileIDPatterns {
		if m := pattern.FindStringSubmatch(locator); m != nil {
			return m[1]
		}
	}
	return ""
}

// Fetch downloads an artifact, retrying transient failures (timeouts,
// 5xx, 429) with exponential backoff. Not-found and permission failures
// are not retried.
func (s *httpFileStore) Fetch(ctx context.Context, locator string) ([]byte, error) {
	fileID := ExtractFileID(locator)
	if fileID == "" {
		return nil, fmt.Errorf("could not extract file id from locator %q", locator)
	}

	url := s.baseURL + fileID

	var payload []byte
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}

		resp, err := s.client.Do(req)
		if err != nil {
			// Connection errors and timeouts are worth retrying.
			return err
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
			payload, err = io.ReadAll(resp.Body)
			return err
		case resp.StatusCode == http.StatusNotFound,
			resp.StatusCode == http.StatusForbidden,
			resp.StatusCode == http.StatusUnauthorized:
			return backoff.Permanent(fmt.Errorf("file store returned %d for file %s", resp.StatusCode, fileID))
		case resp.StatusCode >= 500, resp.StatusCode == http.StatusTooManyRequests:
			return fmt.Errorf("file store returned %d for file %s", resp.StatusCode, fileID)
		default:
			return backoff.Permanent(fmt.Errorf("file store returned unexpected status %d for file %s", resp.StatusCode, fileID))
		}
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = s.initialDelay
	bo.Multiplier = 2
	bo.RandomizationFactor = 0
	bo.MaxInterval = 30 * time.Second

	retries := uint64(0)
	if s.maxAttempts > 1 {
		retries = uint64(s.maxAttempts - 1)
	}

	err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(bo, retries), ctx))
	if err != nil {
		s.logger.Warn("artifact fetch failed",
			zap.String("file_id", fileID),
			zap.Int("max_attempts", s.maxAttempts),
			zap.Error(err))
		return nil, err
	}

	if len(payload) == 0 {
		return nil, errors.New("file store returned an empty payload")
	}

	return payload, nil
}

package probe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	"github.com/goccy/go-json"
	"github.com/okian/affinity/internal/adapters/repository"
	"github.com/okian/affinity/internal/domain/model"
	"github.com/okian/affinity/internal/domain/recommend"
	"github.com/okian/affinity/pkg/logger"
)

// ErrUnexpectedStatus is returned when the service answers with a status the
// probe does not expect.
var ErrUnexpectedStatus = errors.New("unexpected status")

// client talks to the service over HTTP.
type client struct {
	base string
	http *http.Client
}

func newClient(config *Config) *client {
	return &client{base: config.BaseURL, http: &http.Client{Timeout: config.Timeout}}
}

// do sends body as JSON when non-nil and decodes the response into out when
// the status is one of want.
func (c *client) do(ctx context.Context, method, path string, body, out any, want ...int) (int, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	for _, code := range want {
		if resp.StatusCode != code {
			continue
		}
		if out == nil {
			return code, nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return code, fmt.Errorf("failed to decode response: %w", err)
		}
		return code, nil
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return resp.StatusCode, fmt.Errorf("%w %d: %s", ErrUnexpectedStatus, resp.StatusCode, bytes.TrimSpace(raw))
}

func (c *client) health(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, "/healthz", nil, nil, http.StatusOK)
	return err
}

func (c *client) submitJob(ctx context.Context, job model.Job) (int, jobAck, error) {
	var ack jobAck
	code, err := c.do(ctx, http.MethodPost, "/v1/recommendations/jobs", job, &ack,
		http.StatusAccepted, http.StatusOK, http.StatusTooManyRequests)
	return code, ack, err
}

func (c *client) board(ctx context.Context, userID string, limit int) ([]repository.Entry, error) {
	var entries []repository.Entry
	path := "/v1/recommendations/boards/" + url.PathEscape(userID) + "?limit=" + strconv.Itoa(limit)
	_, err := c.do(ctx, http.MethodGet, path, nil, &entries, http.StatusOK)
	return entries, err
}

func (c *client) boardRank(ctx context.Context, userID, serverID string) (repository.Entry, error) {
	var entry repository.Entry
	path := "/v1/recommendations/boards/" + url.PathEscape(userID) + "/" + url.PathEscape(serverID)
	_, err := c.do(ctx, http.MethodGet, path, nil, &entry, http.StatusOK)
	return entry, err
}

func (c *client) score(ctx context.Context, profile recommend.Profile, server recommend.Server, strategy recommend.Strategy) (recommend.Result, error) {
	var res recommend.Result
	body := map[string]any{"profile": profile, "server": server, "strategy": strategy}
	_, err := c.do(ctx, http.MethodPost, "/v1/recommendations/score", body, &res, http.StatusOK)
	return res, err
}

func (c *client) stats(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	_, err := c.do(ctx, http.MethodGet, "/stats", nil, &out, http.StatusOK)
	return out, err
}

// submitJobs fans jobs out over Workers goroutines and tallies the answers.
func submitJobs(ctx context.Context, config *Config, c *client, jobs []model.Job, stats *Stats) error {
	logger.Get().Info(ctx, "submitting jobs",
		logger.Int("count", len(jobs)),
		logger.Int("workers", config.Workers),
	)

	jobChan := make(chan model.Job, config.Workers*workerChannelMultiplier)
	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for job := range jobChan {
				code, ack, err := c.submitJob(ctx, job)

				mu.Lock()
				stats.JobsSubmitted++
				switch {
				case err != nil:
					stats.JobsFailed++
				case code == http.StatusAccepted:
					stats.JobsAccepted++
				case code == http.StatusOK:
					stats.JobsDuplicate++
				default:
					stats.JobsRejected++
				}
				mu.Unlock()

				if err != nil {
					logger.Get().Warn(ctx, "job submission failed",
						logger.Int("worker", workerID),
						logger.String("jobID", job.JobID),
						logger.Error(err),
					)
				} else if config.Verbose {
					logger.Get().Debug(ctx, "job submitted",
						logger.Int("worker", workerID),
						logger.String("jobID", ack.JobID),
						logger.Int("status", code),
					)
				}
			}
		}(i)
	}

	for _, job := range jobs {
		select {
		case jobChan <- job:
		case <-ctx.Done():
			close(jobChan)
			wg.Wait()
			return fmt.Errorf("context cancelled during submission: %w", ctx.Err())
		}
	}
	close(jobChan)
	wg.Wait()

	logger.Get().Info(ctx, "submission finished",
		logger.Int("accepted", stats.JobsAccepted),
		logger.Int("duplicate", stats.JobsDuplicate),
		logger.Int("rejected", stats.JobsRejected),
		logger.Int("failed", stats.JobsFailed),
	)
	return nil
}

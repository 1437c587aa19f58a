package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"teamstats/internal/config"
	"teamstats/internal/constants"
	"teamstats/internal/domain"
	"time"

	"github.com/dghubble/oauth1"
	"github.com/rs/zerolog"
)

type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("request returned an error: %d %s", e.StatusCode, e.Body)
}

type TwitterClient struct {
	oauth      *oauth1.Config
	authorizer Authorizer
	transport  http.RoundTripper
	lookupURL  string
	batchSize  int
	batchDelay time.Duration
	sleep      func(ctx context.Context, d time.Duration) error
	logger     zerolog.Logger

	rateLimitMu sync.RWMutex
	rateLimit   RateLimitInfo
}

type RateLimitInfo struct {
	Limit     int       `json:"limit"`
	Remaining int       `json:"remaining"`
	Reset     time.Time `json:"reset"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewTwitterClient(cfg *config.Config, oauthCfg *oauth1.Config, authorizer Authorizer, transport *Transport, logger zerolog.Logger) *TwitterClient {
	return &TwitterClient{
		oauth:      oauthCfg,
		authorizer: authorizer,
		transport:  transport,
		lookupURL:  cfg.LookupURL,
		batchSize:  constants.MaxUsernamesPerLookup,
		batchDelay: cfg.BatchDelay,
		sleep:      sleepContext,
		logger:     logger,
	}
}

func (c *TwitterClient) GetRateLimitInfo() RateLimitInfo {
	c.rateLimitMu.RLock()
	defer c.rateLimitMu.RUnlock()
	return c.rateLimit
}

func (c *TwitterClient) updateRateLimit(resp *http.Response) {
	c.rateLimitMu.Lock()
	defer c.rateLimitMu.Unlock()

	if limit := resp.Header.Get("X-Rate-Limit-Limit"); limit != "" {
		if val, err := strconv.Atoi(limit); err == nil {
			c.rateLimit.Limit = val
		}
	}
	if remaining := resp.Header.Get("X-Rate-Limit-Remaining"); remaining != "" {
		if val, err := strconv.Atoi(remaining); err == nil {
			c.rateLimit.Remaining = val
		}
	}
	if reset := resp.Header.Get("X-Rate-Limit-Reset"); reset != "" {
		if val, err := strconv.ParseInt(reset, 10, 64); err == nil {
			c.rateLimit.Reset = time.Unix(val, 0)
		}
	}
	c.rateLimit.UpdatedAt = time.Now()
}

// Batches splits usernames into groups of at most size, keeping input order.
func Batches(usernames []string, size int) [][]string {
	if size <= 0 {
		size = constants.MaxUsernamesPerLookup
	}
	var batches [][]string
	for start := 0; start < len(usernames); start += size {
		end := min(start+size, len(usernames))
		batches = append(batches, usernames[start:end])
	}
	return batches
}

// FetchCounts authorizes once, then looks usernames up batch by batch.
// Usernames without a returned record are absent from the result. Any
// non-200 response aborts the whole fetch.
func (c *TwitterClient) FetchCounts(ctx context.Context, usernames []string) (domain.EngagementCounts, error) {
	counts := make(domain.EngagementCounts)
	batches := Batches(usernames, c.batchSize)
	if len(batches) == 0 {
		return counts, nil
	}

	token, err := c.authorizer.Authorize(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to authorize: %w", err)
	}

	baseCtx := context.WithValue(ctx, oauth1.HTTPClient, &http.Client{Transport: c.transport})
	httpClient := c.oauth.Client(baseCtx, token)

	for i, batch := range batches {
		if i > 0 {
			if err := c.sleep(ctx, c.batchDelay); err != nil {
				return nil, err
			}
		}

		resp, err := c.lookup(ctx, httpClient, batch)
		if err != nil {
			return nil, err
		}

		if len(resp.Errors) > 0 {
			missing := make([]string, 0, len(resp.Errors))
			for _, e := range resp.Errors {
				missing = append(missing, e.Value)
			}
			c.logger.Warn().
				Int("batch", i+1).
				Strs("usernames", missing).
				Msg("some usernames could not be looked up")
		}

		for _, user := range resp.Data {
			counts[user.Username] = user.PublicMetrics.TweetCount
		}

		rl := c.GetRateLimitInfo()
		c.logger.Info().
			Int("batch", i+1).
			Int("batches", len(batches)).
			Int("requested", len(batch)).
			Int("returned", len(resp.Data)).
			Int("rate_limit_remaining", rl.Remaining).
			Msg("lookup batch complete")
	}

	return counts, nil
}

func (c *TwitterClient) lookup(ctx context.Context, client *http.Client, usernames []string) (*UserLookupResponse, error) {
	params := url.Values{}
	params.Set("usernames", strings.Join(usernames, ","))
	params.Set("user.fields", constants.TwitterUserFields)

	reqCtx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, c.lookupURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build lookup request: %w", err)
	}
	req.Header.Set("User-Agent", "teamstats")

	return doRequest[UserLookupResponse](c, client, req)
}

func doRequest[T any](c *TwitterClient, client *http.Client, req *http.Request) (*T, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("lookup request failed: %w", err)
	}
	defer resp.Body.Close()

	c.updateRateLimit(resp)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read lookup response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var result T
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode lookup response: %w", err)
	}
	return &result, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

type UserLookupResponse struct {
	Data   []LookupUser  `json:"data"`
	Errors []LookupError `json:"errors"`
}

type LookupUser struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Username      string        `json:"username"`
	PublicMetrics PublicMetrics `json:"public_metrics"`
}

type PublicMetrics struct {
	FollowersCount int `json:"followers_count"`
	FollowingCount int `json:"following_count"`
	TweetCount     int `json:"tweet_count"`
	ListedCount    int `json:"listed_count"`
}

type LookupError struct {
	Value        string `json:"value"`
	Detail       string `json:"detail"`
	Title        string `json:"title"`
	ResourceType string `json:"resource_type"`
	Parameter    string `json:"parameter"`
	Type         string `json:"type"`
}

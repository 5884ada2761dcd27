// Package leetcode is a rate-limited client for the public LeetCode GraphQL
// profile endpoint.
package leetcode

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	DefaultURL = "https://leetcode.com/graphql"

	defaultRPS     = 2.0
	defaultBurst   = 4
	defaultTimeout = 20 * time.Second
)

// Options configures a Client. Zero values take the defaults.
type Options struct {
	URL     string
	RPS     float64
	Burst   int
	Timeout time.Duration
}

// Client fetches public profiles, waiting on a shared limiter before every
// request.
type Client struct {
	http    *http.Client
	limiter *rate.Limiter
	url     string
}

// New creates a client.
func New(opts Options) *Client {
	if opts.URL == "" {
		opts.URL = DefaultURL
	}
	if opts.RPS <= 0 {
		opts.RPS = defaultRPS
	}
	if opts.Burst <= 0 {
		opts.Burst = defaultBurst
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	return &Client{
		http:    &http.Client{Timeout: opts.Timeout},
		limiter: rate.NewLimiter(rate.Limit(opts.RPS), opts.Burst),
		url:     opts.URL,
	}
}

// FetchProfile returns the public profile of username.
func (c *Client) FetchProfile(ctx context.Context, username string) (*Profile, error) {
	body, err := c.do(ctx, graphQLRequest{
		Query:     profileQuery,
		Variables: map[string]any{"username": username},
	})
	if err != nil {
		return nil, wrapError("fetchProfile", username, err)
	}

	var raw rawProfileResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, wrapError("fetchProfile", username, fmt.Errorf("%w: %v", ErrMalformed, err))
	}

	profile, err := parseProfile(raw)
	if err != nil {
		return nil, wrapError("fetchProfile", username, err)
	}
	return profile, nil
}

// do posts a GraphQL request with rate limiting.
func (c *Client) do(ctx context.Context, payload graphQLRequest) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	buf, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(buf))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Referer", "https://leetcode.com")
	req.Header.Set("User-Agent", "student-progress-dashboard/1.0")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return body, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case resp.StatusCode >= 500:
		return nil, ErrServer
	default:
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}
}

func parseProfile(raw rawProfileResponse) (*Profile, error) {
	user := raw.Data.MatchedUser
	if user == nil {
		for _, e := range raw.Errors {
			if strings.Contains(strings.ToLower(e.Message), "does not exist") {
				return nil, ErrNotFound
			}
		}
		if len(raw.Errors) > 0 {
			return nil, fmt.Errorf("%w: %s", ErrMalformed, raw.Errors[0].Message)
		}
		return nil, ErrNotFound
	}

	p := &Profile{
		Username:  user.Username,
		AvatarURL: user.Profile.UserAvatar,
		Ranking:   user.Profile.Ranking,
	}

	for _, dc := range user.SubmitStatsGlobal.AcSubmissionNum {
		switch dc.Difficulty {
		case "All":
			p.TotalSolved = dc.Count
			p.TotalAccepted = dc.Submissions
		case "Easy":
			p.EasySolved = dc.Count
		case "Medium":
			p.MediumSolved = dc.Count
		case "Hard":
			p.HardSolved = dc.Count
		}
	}
	for _, dc := range user.SubmitStatsGlobal.TotalSubmissionNum {
		if dc.Difficulty == "All" {
			p.TotalSubmissions = dc.Submissions
		}
	}

	if cal := user.UserCalendar; cal != nil {
		p.Streak = cal.Streak
		p.TotalActiveDays = cal.TotalActiveDays
		days, err := parseCalendar(cal.SubmissionCalendar)
		if err != nil {
			return nil, err
		}
		p.Calendar = days
	}
	return p, nil
}

// parseCalendar decodes the calendar string, a JSON object of unix seconds
// to submission counts.
func parseCalendar(s string) ([]Day, error) {
	if s == "" {
		return nil, nil
	}
	var raw map[string]int
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		return nil, fmt.Errorf("%w: submission calendar: %v", ErrMalformed, err)
	}

	days := make([]Day, 0, len(raw))
	for ts, count := range raw {
		sec, err := strconv.ParseInt(ts, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: calendar key %q", ErrMalformed, ts)
		}
		y, m, d := time.Unix(sec, 0).UTC().Date()
		days = append(days, Day{Date: time.Date(y, m, d, 0, 0, 0, 0, time.UTC), Count: count})
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date.Before(days[j].Date) })
	return days, nil
}

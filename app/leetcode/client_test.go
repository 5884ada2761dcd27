package leetcode

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const profileJSON = `{
  "data": {
    "matchedUser": {
      "username": "alice",
      "profile": {"ranking": 123456, "userAvatar": "https://assets.leetcode.com/alice.png"},
      "submitStatsGlobal": {
        "acSubmissionNum": [
          {"difficulty": "All", "count": 120, "submissions": 150},
          {"difficulty": "Easy", "count": 70, "submissions": 80},
          {"difficulty": "Medium", "count": 40, "submissions": 55},
          {"difficulty": "Hard", "count": 10, "submissions": 15}
        ],
        "totalSubmissionNum": [
          {"difficulty": "All", "count": 130, "submissions": 300}
        ]
      },
      "userCalendar": {
        "streak": 4,
        "totalActiveDays": 60,
        "submissionCalendar": "{\"1772409600\": 3, \"1772323200\": 5}"
      }
    }
  }
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Options{URL: srv.URL, RPS: 100, Burst: 10, Timeout: 2 * time.Second})
}

func TestFetchProfile(t *testing.T) {
	t.Run("Success: parses stats and calendar", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			var req graphQLRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "alice", req.Variables["username"])
			w.Write([]byte(profileJSON))
		})

		p, err := client.FetchProfile(context.Background(), "alice")
		require.NoError(t, err)

		assert.Equal(t, "alice", p.Username)
		assert.Equal(t, 123456, p.Ranking)
		assert.Equal(t, 120, p.TotalSolved)
		assert.Equal(t, 70, p.EasySolved)
		assert.Equal(t, 40, p.MediumSolved)
		assert.Equal(t, 10, p.HardSolved)
		assert.Equal(t, 150, p.TotalAccepted)
		assert.Equal(t, 300, p.TotalSubmissions)
		assert.Equal(t, 4, p.Streak)
		require.Len(t, p.Calendar, 2)
		assert.True(t, p.Calendar[0].Date.Before(p.Calendar[1].Date))
		assert.Equal(t, 5, p.Calendar[0].Count)
	})

	t.Run("Error: unknown user", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"errors":[{"message":"That user does not exist."}],"data":{"matchedUser":null}}`))
		})

		_, err := client.FetchProfile(context.Background(), "ghost")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrNotFound))

		var lcErr *Error
		require.True(t, errors.As(err, &lcErr))
		assert.Equal(t, "ghost", lcErr.Username)
	})

	t.Run("Error: rate limited", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		})

		_, err := client.FetchProfile(context.Background(), "alice")
		assert.ErrorIs(t, err, ErrRateLimited)
	})

	t.Run("Error: server failure", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})

		_, err := client.FetchProfile(context.Background(), "alice")
		assert.ErrorIs(t, err, ErrServer)
	})

	t.Run("Error: malformed body", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`<html>`))
		})

		_, err := client.FetchProfile(context.Background(), "alice")
		assert.ErrorIs(t, err, ErrMalformed)
	})

	t.Run("Error: canceled context", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(profileJSON))
		})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := client.FetchProfile(ctx, "alice")
		assert.Error(t, err)
	})
}

func TestParseCalendar(t *testing.T) {
	days, err := parseCalendar("")
	require.NoError(t, err)
	assert.Empty(t, days)

	_, err = parseCalendar(`{"abc": 1}`)
	assert.ErrorIs(t, err, ErrMalformed)
}

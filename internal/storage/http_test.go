package storage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rewired-gh/bikepulse/internal/config"
)

const remoteCSV = "instant,dteday,yr,mnth,hr,holiday,weekday,workingday,weathersit,cnt\n" +
	"1,2011-01-01,0,1,0,0,6,0,1,16\n" +
	"2,2011-01-01,0,1,1,0,6,0,1,40\n"

func TestHTTPSource_Load(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/hour.csv", r.URL.Path)
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte(remoteCSV))
	}))
	defer server.Close()

	got, err := HTTPSource{URL: server.URL + "/hour.csv", MaxRetries: 1}.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(40), got[1].Count)
}

func TestHTTPSource_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(remoteCSV))
	}))
	defer server.Close()

	src := HTTPSource{URL: server.URL, MaxRetries: 3, RetryDelayBase: time.Millisecond}
	got, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, int32(3), calls.Load())
}

func TestHTTPSource_GivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := HTTPSource{URL: server.URL, MaxRetries: 2, RetryDelayBase: time.Millisecond}.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max retries exceeded")
	assert.Equal(t, int32(2), calls.Load())
}

func TestHTTPSource_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := HTTPSource{URL: server.URL, MaxRetries: 3, RetryDelayBase: time.Millisecond}.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status: 404")
	assert.Equal(t, int32(1), calls.Load())
}

func TestHTTPSource_StopsOnCancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := HTTPSource{URL: server.URL, MaxRetries: 3, RetryDelayBase: time.Hour}.Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewSource_HTTP(t *testing.T) {
	src, err := NewSource(config.SourceConfig{
		Type:           "http",
		URL:            "https://example.com/hour.csv",
		Timeout:        5 * time.Second,
		MaxRetries:     4,
		RetryDelayBase: time.Second,
	})
	require.NoError(t, err)

	httpSrc, ok := src.(HTTPSource)
	require.True(t, ok)
	assert.Equal(t, "https://example.com/hour.csv", httpSrc.URL)
	assert.Equal(t, 4, httpSrc.MaxRetries)
	assert.Equal(t, 5*time.Second, httpSrc.Client.Timeout)
}

package discovery

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCachingFetcher(t *testing.T) {
	t.Run("serves repeated calls from the cache", func(t *testing.T) {
		server, requests := newDiscoveryServer(t, http.StatusOK, minimalDocument)

		f, err := NewFetcher(WithHTTPClient(server.Client()))
		require.NoError(t, err)
		cached := NewCachingFetcher(f, time.Minute)

		first, err := cached.Fetch(context.Background(), server.URL)
		require.NoError(t, err)
		second, err := cached.Fetch(context.Background(), server.URL+"/")
		require.NoError(t, err)

		assert.Same(t, first, second)
		assert.Equal(t, int32(1), requests.Load())
	})

	t.Run("collapses concurrent misses into one request", func(t *testing.T) {
		server, requests := newDiscoveryServer(t, http.StatusOK, minimalDocument)

		f, err := NewFetcher(WithHTTPClient(server.Client()))
		require.NoError(t, err)
		cached := NewCachingFetcher(f, time.Minute)

		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _ = cached.Fetch(context.Background(), server.URL)
			}()
		}
		wg.Wait()

		assert.Equal(t, int32(1), requests.Load())
	})

	t.Run("does not cache failures", func(t *testing.T) {
		server, requests := newDiscoveryServer(t, http.StatusServiceUnavailable, `unavailable`)

		f, err := NewFetcher(WithHTTPClient(server.Client()))
		require.NoError(t, err)
		cached := NewCachingFetcher(f, time.Minute)

		_, err = cached.Fetch(context.Background(), server.URL)
		assert.ErrorIs(t, err, ErrDiscoveryUnreachable)
		_, err = cached.Fetch(context.Background(), server.URL)
		assert.ErrorIs(t, err, ErrDiscoveryUnreachable)

		assert.Equal(t, int32(2), requests.Load())
	})

	t.Run("invalidate forces a new discovery", func(t *testing.T) {
		server, requests := newDiscoveryServer(t, http.StatusOK, minimalDocument)

		f, err := NewFetcher(WithHTTPClient(server.Client()))
		require.NoError(t, err)
		cached := NewCachingFetcher(f, time.Minute)

		_, err = cached.Fetch(context.Background(), server.URL)
		require.NoError(t, err)
		cached.Invalidate(server.URL + "/")
		_, err = cached.Fetch(context.Background(), server.URL)
		require.NoError(t, err)

		assert.Equal(t, int32(2), requests.Load())
	})

	t.Run("expired entries are refetched", func(t *testing.T) {
		server, requests := newDiscoveryServer(t, http.StatusOK, minimalDocument)

		f, err := NewFetcher(WithHTTPClient(server.Client()))
		require.NoError(t, err)
		cached := NewCachingFetcher(f, 50*time.Millisecond)

		_, err = cached.Fetch(context.Background(), server.URL)
		require.NoError(t, err)
		time.Sleep(100 * time.Millisecond)
		_, err = cached.Fetch(context.Background(), server.URL)
		require.NoError(t, err)

		assert.Equal(t, int32(2), requests.Load())
	})

	t.Run("a cancelled caller does not fail the others", func(t *testing.T) {
		arrived := make(chan struct{})
		release := make(chan struct{})
		var once sync.Once
		var server *httptest.Server
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			once.Do(func() { close(arrived) })
			<-release
			w.Header().Set("Content-Type", "application/json")
			_, _ = fmt.Fprintf(w, minimalDocument, server.URL)
		}))
		t.Cleanup(server.Close)
		t.Cleanup(func() {
			select {
			case <-release:
			default:
				close(release)
			}
		})

		f, err := NewFetcher(WithHTTPClient(server.Client()))
		require.NoError(t, err)
		cached := NewCachingFetcher(f, time.Minute)

		ctxA, cancelA := context.WithCancel(context.Background())
		errA := make(chan error, 1)
		go func() {
			_, err := cached.Fetch(ctxA, server.URL)
			errA <- err
		}()
		<-arrived

		type outcome struct {
			metadata *ProviderMetadata
			err      error
		}
		resB := make(chan outcome, 1)
		go func() {
			metadata, err := cached.Fetch(context.Background(), server.URL)
			resB <- outcome{metadata, err}
		}()

		cancelA()
		select {
		case err := <-errA:
			assert.ErrorIs(t, err, ErrDiscoveryUnreachable)
			assert.ErrorIs(t, err, context.Canceled)
		case <-time.After(5 * time.Second):
			t.Fatal("cancelled caller did not return")
		}

		close(release)
		select {
		case res := <-resB:
			require.NoError(t, res.err)
			assert.Equal(t, server.URL, res.metadata.Issuer)
		case <-time.After(5 * time.Second):
			t.Fatal("second caller did not return")
		}
	})

	t.Run("reports the number of cached issuers", func(t *testing.T) {
		server, _ := newDiscoveryServer(t, http.StatusOK, minimalDocument)
		metrics := newMockMetrics()

		f, err := NewFetcher(WithHTTPClient(server.Client()), WithMetrics(metrics))
		require.NoError(t, err)
		cached := NewCachingFetcher(f, time.Minute)

		_, err = cached.Fetch(context.Background(), server.URL)
		require.NoError(t, err)
		assert.Equal(t, float64(1), metrics.gauge(MetricCachedIssuers))

		cached.Invalidate(server.URL)
		assert.Equal(t, float64(0), metrics.gauge(MetricCachedIssuers))
	})
}

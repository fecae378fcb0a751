package discovery

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/auth0/go-oidc-rp/internal/oidc"
)

const minimalDocument = `{
	"issuer": "%s",
	"authorization_endpoint": "%[1]s/authorize",
	"token_endpoint": "%[1]s/token",
	"jwks_uri": "%[1]s/jwks.json",
	"response_types_supported": ["code"],
	"subject_types_supported": ["public"]
}`

type mockLogger struct {
	mu       sync.Mutex
	messages []string
}

func (m *mockLogger) record(level, msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, level+": "+msg)
}

func (m *mockLogger) Debug(msg string, args ...any) { m.record("DEBUG", msg) }
func (m *mockLogger) Info(msg string, args ...any)  { m.record("INFO", msg) }
func (m *mockLogger) Warn(msg string, args ...any)  { m.record("WARN", msg) }
func (m *mockLogger) Error(msg string, args ...any) { m.record("ERROR", msg) }

type mockMetrics struct {
	mu         sync.Mutex
	counters   map[string][]map[string]string
	histograms map[string]int
	gauges     map[string]float64
}

func newMockMetrics() *mockMetrics {
	return &mockMetrics{
		counters:   make(map[string][]map[string]string),
		histograms: make(map[string]int),
		gauges:     make(map[string]float64),
	}
}

func (m *mockMetrics) SetGauge(name string, value float64, tags map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gauges[name] = value
}

func (m *mockMetrics) gauge(name string) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gauges[name]
}

func (m *mockMetrics) IncCounter(name string, tags map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[name] = append(m.counters[name], tags)
}

func (m *mockMetrics) ObserveHistogram(name string, value float64, tags map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.histograms[name]++
}

// newDiscoveryServer serves body (formatted with the server URL) at the well-known path.
func newDiscoveryServer(t *testing.T, status int, body string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	requests := &atomic.Int32{}
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		if r.URL.Path != "/.well-known/openid-configuration" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = fmt.Fprintf(w, body, server.URL)
	}))
	t.Cleanup(server.Close)
	return server, requests
}

func TestNewFetcher(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		f, err := NewFetcher()
		require.NoError(t, err)
		require.NotNil(t, f.client)
		assert.Nil(t, f.logger)
		assert.False(t, f.issuerCheck)
	})

	t.Run("rejects nil options", func(t *testing.T) {
		_, err := NewFetcher(WithHTTPClient(nil))
		assert.EqualError(t, err, "HTTP client cannot be nil")

		_, err = NewFetcher(WithLogger(nil))
		assert.EqualError(t, err, "logger cannot be nil")

		_, err = NewFetcher(WithMetrics(nil))
		assert.EqualError(t, err, "metrics cannot be nil")

		_, err = NewFetcher(WithTracer(nil))
		assert.EqualError(t, err, "tracer cannot be nil")
	})

	t.Run("applies custom client", func(t *testing.T) {
		client := &http.Client{}
		f, err := NewFetcher(WithHTTPClient(client))
		require.NoError(t, err)
		assert.Same(t, client, f.client)
	})
}

func TestFetcher_Fetch(t *testing.T) {
	t.Run("decodes a valid document", func(t *testing.T) {
		server, requests := newDiscoveryServer(t, http.StatusOK, minimalDocument)

		f, err := NewFetcher(WithHTTPClient(server.Client()))
		require.NoError(t, err)

		metadata, err := f.Fetch(context.Background(), server.URL)
		require.NoError(t, err)

		assert.Equal(t, server.URL, metadata.Issuer)
		assert.Equal(t, server.URL+"/authorize", metadata.AuthorizationEndpoint)
		assert.Equal(t, server.URL+"/token", metadata.TokenEndpoint)
		assert.Equal(t, server.URL+"/jwks.json", metadata.JWKSURI)
		assert.Equal(t, []string{"code"}, metadata.ResponseTypesSupported)
		assert.Equal(t, []string{"public"}, metadata.SubjectTypesSupported)
		assert.Empty(t, metadata.UserinfoEndpoint)
		assert.Equal(t, int32(1), requests.Load())
	})

	t.Run("strips the trailing slash from the issuer", func(t *testing.T) {
		server, _ := newDiscoveryServer(t, http.StatusOK, minimalDocument)

		f, err := NewFetcher(WithHTTPClient(server.Client()))
		require.NoError(t, err)

		_, err = f.Fetch(context.Background(), server.URL+"/")
		require.NoError(t, err)
	})

	t.Run("never caches", func(t *testing.T) {
		server, requests := newDiscoveryServer(t, http.StatusOK, minimalDocument)

		f, err := NewFetcher(WithHTTPClient(server.Client()))
		require.NoError(t, err)

		for i := 0; i < 3; i++ {
			_, err = f.Fetch(context.Background(), server.URL)
			require.NoError(t, err)
		}
		assert.Equal(t, int32(3), requests.Load())
	})

	t.Run("ignores unknown fields", func(t *testing.T) {
		body := `{"issuer":"%s","authorization_endpoint":"%[1]s/a","jwks_uri":"%[1]s/j",
			"response_types_supported":["code"],"subject_types_supported":["public"],
			"frontchannel_logout_supported":true,"x-custom":{"nested":[1,2,3]}}`
		server, _ := newDiscoveryServer(t, http.StatusOK, body)

		f, err := NewFetcher(WithHTTPClient(server.Client()))
		require.NoError(t, err)

		_, err = f.Fetch(context.Background(), server.URL)
		require.NoError(t, err)
	})
}

func TestFetcher_Fetch_Errors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantErr    error
		wantKind   ErrorKind
		wantStatus int
		missing    []string
	}{
		{
			name:       "not found",
			status:     http.StatusNotFound,
			body:       `{"error":"not found"}`,
			wantErr:    ErrDiscoveryUnreachable,
			wantKind:   KindDiscoveryUnreachable,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "server error",
			status:     http.StatusInternalServerError,
			body:       `oops`,
			wantErr:    ErrDiscoveryUnreachable,
			wantKind:   KindDiscoveryUnreachable,
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:     "not JSON",
			status:   http.StatusOK,
			body:     `<html></html>`,
			wantErr:  ErrMalformedMetadata,
			wantKind: KindMalformedMetadata,
		},
		{
			name:     "truncated JSON",
			status:   http.StatusOK,
			body:     `{"issuer":"%s"`,
			wantErr:  ErrMalformedMetadata,
			wantKind: KindMalformedMetadata,
		},
		{
			name:     "missing issuer",
			status:   http.StatusOK,
			body:     `{"authorization_endpoint":"%s/a","jwks_uri":"%[1]s/j","response_types_supported":["code"],"subject_types_supported":["public"]}`,
			wantErr:  ErrMalformedMetadata,
			wantKind: KindMalformedMetadata,
			missing:  []string{"issuer"},
		},
		{
			name:     "missing authorization endpoint",
			status:   http.StatusOK,
			body:     `{"issuer":"%s","jwks_uri":"%[1]s/j","response_types_supported":["code"],"subject_types_supported":["public"]}`,
			wantErr:  ErrMalformedMetadata,
			wantKind: KindMalformedMetadata,
			missing:  []string{"authorization_endpoint"},
		},
		{
			name:     "missing jwks uri",
			status:   http.StatusOK,
			body:     `{"issuer":"%s","authorization_endpoint":"%[1]s/a","response_types_supported":["code"],"subject_types_supported":["public"]}`,
			wantErr:  ErrMalformedMetadata,
			wantKind: KindMalformedMetadata,
			missing:  []string{"jwks_uri"},
		},
		{
			name:     "missing response types",
			status:   http.StatusOK,
			body:     `{"issuer":"%s","authorization_endpoint":"%[1]s/a","jwks_uri":"%[1]s/j","subject_types_supported":["public"]}`,
			wantErr:  ErrMalformedMetadata,
			wantKind: KindMalformedMetadata,
			missing:  []string{"response_types_supported"},
		},
		{
			name:     "missing subject types",
			status:   http.StatusOK,
			body:     `{"issuer":"%s","authorization_endpoint":"%[1]s/a","jwks_uri":"%[1]s/j","response_types_supported":["code"]}`,
			wantErr:  ErrMalformedMetadata,
			wantKind: KindMalformedMetadata,
			missing:  []string{"subject_types_supported"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, _ := newDiscoveryServer(t, tt.status, tt.body)

			f, err := NewFetcher(WithHTTPClient(server.Client()))
			require.NoError(t, err)

			metadata, err := f.Fetch(context.Background(), server.URL)
			require.Error(t, err)
			assert.Nil(t, metadata)
			assert.ErrorIs(t, err, tt.wantErr)

			var discErr *Error
			require.True(t, errors.As(err, &discErr))
			assert.Equal(t, tt.wantKind, discErr.Kind)
			assert.Equal(t, tt.wantStatus, discErr.StatusCode)
			if tt.missing != nil {
				assert.Equal(t, tt.missing, discErr.MissingFields)
			}
		})
	}

	t.Run("transport failure", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		url := server.URL
		server.Close()

		f, err := NewFetcher()
		require.NoError(t, err)

		_, err = f.Fetch(context.Background(), url)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrDiscoveryUnreachable)
		assert.NotErrorIs(t, err, ErrMalformedMetadata)

		var discErr *Error
		require.True(t, errors.As(err, &discErr))
		assert.Equal(t, 0, discErr.StatusCode)
		assert.NotNil(t, discErr.Unwrap())
	})

	t.Run("oversized document", func(t *testing.T) {
		var server *httptest.Server
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = fmt.Fprintf(w, minimalDocument, server.URL)
			_, _ = w.Write([]byte(strings.Repeat(" ", oidc.MaxDocumentSize)))
		}))
		t.Cleanup(server.Close)

		f, err := NewFetcher(WithHTTPClient(server.Client()))
		require.NoError(t, err)

		_, err = f.Fetch(context.Background(), server.URL)
		assert.ErrorIs(t, err, ErrMalformedMetadata)
		assert.ErrorIs(t, err, oidc.ErrDocumentTooLarge)
		assert.ErrorContains(t, err, "too large")
	})

	t.Run("cancelled context", func(t *testing.T) {
		server, _ := newDiscoveryServer(t, http.StatusOK, minimalDocument)

		f, err := NewFetcher(WithHTTPClient(server.Client()))
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err = f.Fetch(ctx, server.URL)
		assert.ErrorIs(t, err, ErrDiscoveryUnreachable)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestFetcher_IssuerCheck(t *testing.T) {
	t.Run("accepts matching issuer", func(t *testing.T) {
		server, _ := newDiscoveryServer(t, http.StatusOK, minimalDocument)

		f, err := NewFetcher(WithHTTPClient(server.Client()), WithIssuerCheck(true))
		require.NoError(t, err)

		_, err = f.Fetch(context.Background(), server.URL+"/")
		assert.NoError(t, err)
	})

	t.Run("rejects mismatched issuer", func(t *testing.T) {
		body := `{"issuer":"https://attacker.example.com","authorization_endpoint":"%s/a","jwks_uri":"%[1]s/j",
			"response_types_supported":["code"],"subject_types_supported":["public"]}`
		server, _ := newDiscoveryServer(t, http.StatusOK, body)

		f, err := NewFetcher(WithHTTPClient(server.Client()), WithIssuerCheck(true))
		require.NoError(t, err)

		_, err = f.Fetch(context.Background(), server.URL)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMalformedMetadata)
		assert.Contains(t, err.Error(), "issuer mismatch")
	})

	t.Run("mismatch is tolerated when the check is off", func(t *testing.T) {
		body := `{"issuer":"https://other.example.com","authorization_endpoint":"%s/a","jwks_uri":"%[1]s/j",
			"response_types_supported":["code"],"subject_types_supported":["public"]}`
		server, _ := newDiscoveryServer(t, http.StatusOK, body)

		f, err := NewFetcher(WithHTTPClient(server.Client()))
		require.NoError(t, err)

		metadata, err := f.Fetch(context.Background(), server.URL)
		require.NoError(t, err)
		assert.Equal(t, "https://other.example.com", metadata.Issuer)
	})
}

func TestFetcher_Observability(t *testing.T) {
	t.Run("logs and records success", func(t *testing.T) {
		server, _ := newDiscoveryServer(t, http.StatusOK, minimalDocument)
		logger := &mockLogger{}
		metrics := newMockMetrics()

		f, err := NewFetcher(
			WithHTTPClient(server.Client()),
			WithLogger(logger),
			WithMetrics(metrics),
			WithTracer(noop.NewTracerProvider().Tracer("test")),
		)
		require.NoError(t, err)

		_, err = f.Fetch(context.Background(), server.URL)
		require.NoError(t, err)

		assert.Equal(t, []string{"DEBUG: Provider discovery succeeded"}, logger.messages)
		assert.Equal(t, []map[string]string{{"result": "success"}}, metrics.counters[MetricRequestsTotal])
		assert.Equal(t, 1, metrics.histograms[MetricRequestDuration])
	})

	t.Run("logs and records failure kind", func(t *testing.T) {
		server, _ := newDiscoveryServer(t, http.StatusBadGateway, `bad gateway`)
		logger := &mockLogger{}
		metrics := newMockMetrics()

		f, err := NewFetcher(
			WithHTTPClient(server.Client()),
			WithLogger(logger),
			WithMetrics(metrics),
			WithTracer(noop.NewTracerProvider().Tracer("test")),
		)
		require.NoError(t, err)

		_, err = f.Fetch(context.Background(), server.URL)
		require.Error(t, err)

		assert.Equal(t, []string{"ERROR: Provider discovery failed"}, logger.messages)
		assert.Equal(t, []map[string]string{{"result": "discovery_unreachable"}}, metrics.counters[MetricRequestsTotal])
	})
}

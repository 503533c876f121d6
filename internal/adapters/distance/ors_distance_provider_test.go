package distance

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"parcel-dispatch-service/internal/domain"
	"parcel-dispatch-service/internal/ports"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type orsStub struct {
	geocodes    atomic.Int64
	matrices    atomic.Int64
	failMatrix  atomic.Int64
	failureCode int
}

func (s *orsStub) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/geocode/search", func(w http.ResponseWriter, r *http.Request) {
		s.geocodes.Add(1)
		assert.Equal(t, "test-key", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"features": []any{
				map[string]any{"geometry": map[string]any{"coordinates": []float64{-111.9, 40.7}}},
			},
		})
	})
	mux.HandleFunc("/v2/matrix/driving-car", func(w http.ResponseWriter, r *http.Request) {
		s.matrices.Add(1)
		if s.failMatrix.Load() > 0 {
			s.failMatrix.Add(-1)
			http.Error(w, "try later", s.failureCode)
			return
		}

		var req matrixRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		row := make([]float64, len(req.Destinations))
		for i := range row {
			row[i] = metersPerMile * float64(i+1)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"distances": [][]float64{row}})
	})
	return mux
}

func newTestORS(t *testing.T, stub *orsStub, dc ports.DistanceCache, gc ports.GeocodeCache) *ORSDistanceProvider {
	t.Helper()
	srv := httptest.NewServer(stub.handler(t))
	t.Cleanup(srv.Close)

	p, err := NewORSDistanceProvider("test-key", dc, gc, WithORSBaseURL(srv.URL+"/"), WithORSBackoff(time.Millisecond))
	require.NoError(t, err)
	return p
}

func TestORSDistancesMiles(t *testing.T) {
	stub := &orsStub{}
	p := newTestORS(t, stub, nil, nil)

	got, err := p.Distances(context.Background(), "HUB  addr", []string{"a", " b ", "HUB addr"})
	require.NoError(t, err)

	assert.InDelta(t, 1.0, got["a"], 1e-9)
	assert.InDelta(t, 2.0, got[" b "], 1e-9)
	assert.Zero(t, got["HUB addr"])
	assert.EqualValues(t, 1, stub.matrices.Load())
	assert.EqualValues(t, 3, stub.geocodes.Load())

	d, err := p.Distance(context.Background(), "x", "x")
	require.NoError(t, err)
	assert.Zero(t, d)
}

func TestORSRetriesTransientFailures(t *testing.T) {
	stub := &orsStub{failureCode: http.StatusServiceUnavailable}
	stub.failMatrix.Store(2)
	p := newTestORS(t, stub, nil, nil)

	d, err := p.Distance(context.Background(), "a", "b")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, d, 1e-9)
	assert.EqualValues(t, 3, stub.matrices.Load())
}

func TestORSDoesNotRetryClientErrors(t *testing.T) {
	stub := &orsStub{failureCode: http.StatusBadRequest}
	stub.failMatrix.Store(1)
	p := newTestORS(t, stub, nil, nil)

	_, err := p.Distance(context.Background(), "a", "b")
	require.Error(t, err)

	var he *httpStatusError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusBadRequest, he.Code)
	assert.EqualValues(t, 1, stub.matrices.Load())
}

func TestORSUsesCaches(t *testing.T) {
	stub := &orsStub{}
	dc := &memDistanceCache{m: map[string]map[string]float64{}}
	gc := &memGeocodeCache{m: map[string]domain.Coordinates{}}
	p := newTestORS(t, stub, dc, gc)
	ctx := context.Background()

	_, err := p.Distances(ctx, "a", []string{"b", "c"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, stub.matrices.Load())
	assert.Len(t, gc.m, 3)

	got, err := p.Distances(ctx, "a", []string{"b", "c"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, stub.matrices.Load())
	assert.EqualValues(t, 3, stub.geocodes.Load())
	assert.InDelta(t, 2.0, got["c"], 1e-9)
}

func TestRetryAfter(t *testing.T) {
	assert.Equal(t, 2*time.Second, retryAfter("2"))
	assert.Equal(t, maxRetryAfter, retryAfter("3600"))
	assert.Zero(t, retryAfter(""))
	assert.Zero(t, retryAfter("-1"))
	assert.Zero(t, retryAfter("Wed, 21 Oct 2015 07:28:00 GMT"))
}

func TestNewORSDistanceProviderRequiresKey(t *testing.T) {
	_, err := NewORSDistanceProvider(" ", nil, nil)
	assert.Error(t, err)
}

type memDistanceCache struct {
	mu sync.Mutex
	m  map[string]map[string]float64
}

func (c *memDistanceCache) GetMany(ctx context.Context, origin string, destinations []string) (map[string]float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]float64)
	for _, d := range destinations {
		if v, ok := c.m[origin][d]; ok {
			out[d] = v
		}
	}
	return out, nil
}

func (c *memDistanceCache) PutMany(ctx context.Context, origin string, results map[string]float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.m[origin] == nil {
		c.m[origin] = make(map[string]float64)
	}
	for k, v := range results {
		c.m[origin][k] = v
	}
	return nil
}

type memGeocodeCache struct {
	mu sync.Mutex
	m  map[string]domain.Coordinates
}

func (c *memGeocodeCache) GetMany(ctx context.Context, addresses []string) (map[string]domain.Coordinates, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]domain.Coordinates)
	for _, a := range addresses {
		if v, ok := c.m[a]; ok {
			out[a] = v
		}
	}
	return out, nil
}

func (c *memGeocodeCache) PutMany(ctx context.Context, results map[string]domain.Coordinates) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, v := range results {
		c.m[k] = v
	}
	return nil
}

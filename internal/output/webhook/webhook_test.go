package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crimson-sun/sift/internal/httpclient"
	"github.com/crimson-sun/sift/internal/model"
	"github.com/crimson-sun/sift/internal/output"
)

type collector struct {
	mu      sync.Mutex
	batches [][]output.Record
}

func (c *collector) handler(w http.ResponseWriter, r *http.Request) {
	var batch []output.Record
	if err := json.NewDecoder(r.Body).Decode(&batch); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	c.mu.Lock()
	c.batches = append(c.batches, batch)
	c.mu.Unlock()
	w.WriteHeader(http.StatusOK)
}

func (c *collector) snapshot() [][]output.Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([][]output.Record(nil), c.batches...)
}

func record(name string) model.PreprocessedData {
	return model.PreprocessedData{
		Filename: name,
		Content:  "extracted " + name,
		Metadata: model.ExtractionMetadata{DataType: model.LogsAndErrors, ExtractionStrategy: "crime_scene"},
	}
}

func TestFlushAtBatchSize(t *testing.T) {
	c := &collector{}
	srv := httptest.NewServer(http.HandlerFunc(c.handler))
	defer srv.Close()

	out := New(srv.URL, WithBatchSize(3), WithFlushInterval(time.Minute))
	for _, name := range []string{"a.log", "b.log", "c.log"} {
		require.NoError(t, out.Write(context.Background(), record(name)))
	}

	batches := c.snapshot()
	require.Len(t, batches, 1)
	require.Len(t, batches[0], 3)
	assert.Equal(t, "a.log", batches[0][0].Filename)
	assert.Equal(t, "extracted c.log", batches[0][2].Content)
}

func TestTimerFlush(t *testing.T) {
	c := &collector{}
	srv := httptest.NewServer(http.HandlerFunc(c.handler))
	defer srv.Close()

	out := New(srv.URL, WithBatchSize(100), WithFlushInterval(50*time.Millisecond))
	defer out.Close()
	require.NoError(t, out.Write(context.Background(), record("lonely.log")))

	assert.Eventually(t, func() bool { return len(c.snapshot()) == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestCloseFlushesPending(t *testing.T) {
	c := &collector{}
	srv := httptest.NewServer(http.HandlerFunc(c.handler))
	defer srv.Close()

	out := New(srv.URL, WithBatchSize(100), WithFlushInterval(time.Minute))
	out.Write(context.Background(), record("one"))
	out.Write(context.Background(), record("two"))
	require.NoError(t, out.Close())

	batches := c.snapshot()
	require.Len(t, batches, 1)
	assert.Len(t, batches[0], 2)
}

func TestMinimalVerbosityDropsContent(t *testing.T) {
	c := &collector{}
	srv := httptest.NewServer(http.HandlerFunc(c.handler))
	defer srv.Close()

	out := New(srv.URL, WithBatchSize(1), WithVerbosity(output.Minimal))
	require.NoError(t, out.Write(context.Background(), record("quiet.log")))

	batches := c.snapshot()
	require.Len(t, batches, 1)
	assert.Empty(t, batches[0][0].Content)
	assert.Equal(t, "crime_scene", batches[0][0].Metadata.ExtractionStrategy)
}

func TestRetriesServerErrors(t *testing.T) {
	var attempts atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) <= 2 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	out := New(srv.URL, WithBatchSize(1), WithBackoff(time.Millisecond))
	require.NoError(t, out.Write(context.Background(), record("flaky")))
	assert.Equal(t, int64(3), attempts.Load())
}

func TestClientErrorNotRetried(t *testing.T) {
	var attempts atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	out := New(srv.URL, WithBatchSize(1))
	err := out.Write(context.Background(), record("rejected"))
	require.Error(t, err)

	var apiErr *httpclient.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
	assert.Equal(t, int64(1), attempts.Load())
}

func TestTokenAndHeaders(t *testing.T) {
	var auth, custom atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth.Store(r.Header.Get("Authorization"))
		custom.Store(r.Header.Get("X-Sift-Source"))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	out := New(srv.URL,
		WithBatchSize(1),
		WithToken("tok"),
		WithHeaders(map[string]string{"X-Sift-Source": "ci"}),
	)
	require.NoError(t, out.Write(context.Background(), record("auth")))
	assert.Equal(t, "Bearer tok", auth.Load())
	assert.Equal(t, "ci", custom.Load())
}

func TestTimerFlushErrorCallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	var calls atomic.Int64
	out := New(srv.URL,
		WithBatchSize(100),
		WithFlushInterval(20*time.Millisecond),
		WithOnError(func(error) { calls.Add(1) }),
	)
	out.Write(context.Background(), record("doomed"))

	assert.Eventually(t, func() bool { return calls.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.NoError(t, out.Close())
}

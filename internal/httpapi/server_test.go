package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdrpinto/gridplanner/internal/msgs"
	"github.com/pdrpinto/gridplanner/internal/planner"
	"github.com/pdrpinto/gridplanner/internal/transport"
)

type countingPublisher struct {
	mu    sync.Mutex
	paths []msgs.Path
}

func (p *countingPublisher) Publish(_ context.Context, path msgs.Path) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.paths = append(p.paths, path)
	return nil
}

func (p *countingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.paths)
}

type staticLatest struct {
	path msgs.Path
	err  error
}

func (l staticLatest) Latest(context.Context) (msgs.Path, error) { return l.path, l.err }

func newTestPlanner(t *testing.T, options ...planner.Option) (*planner.Planner, *countingPublisher) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg, err := planner.NewConfig(5, 1, false, "base_link", 100)
	require.NoError(t, err)
	publisher := &countingPublisher{}
	return planner.New(cfg, publisher, options...), publisher
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	p, _ := newTestPlanner(t)
	return NewServer(p, nil)
}

func post(t *testing.T, s *Server, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

// blockedAt returns a 5×5 buffer with one occupied cell at buffer index.
func blockedAt(index int) msgs.OccupancyGrid {
	data := make([]int8, 25)
	data[index] = 100
	return msgs.OccupancyGrid{Info: msgs.MapMetaData{Resolution: 1, Width: 5, Height: 5}, Data: data}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, float64(5), body["side"])
}

func TestPlan(t *testing.T) {
	s := newTestServer(t)
	// Buffer index 13 is grid cell (2,3), directly ahead of the source.
	rec := post(t, s, "/v1/plan", blockedAt(13))

	require.Equal(t, http.StatusOK, rec.Code)
	var response PlanResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "goal_reached", response.Outcome)
	assert.False(t, response.FellBack)
	assert.Len(t, response.Path.Poses, 5)
	assert.NotEmpty(t, response.Path.RunID)
	assert.Equal(t, "base_link", response.Path.Header.FrameID)
}

func TestPlan_Errors(t *testing.T) {
	s := newTestServer(t)

	rec := post(t, s, "/v1/plan", msgs.OccupancyGrid{Data: make([]int8, 25)})
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = post(t, s, "/v1/plan", msgs.OccupancyGrid{Info: msgs.MapMetaData{Width: 4, Height: 4}, Data: make([]int8, 16)})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/v1/plan", bytes.NewReader([]byte("{")))
	req.Header.Set("Content-Type", "application/json")
	bad := httptest.NewRecorder()
	s.Handler().ServeHTTP(bad, req)
	assert.Equal(t, http.StatusBadRequest, bad.Code)
}

func TestTrace(t *testing.T) {
	s := newTestServer(t)
	rec := post(t, s, "/v1/trace?limit=2", blockedAt(13))

	require.Equal(t, http.StatusOK, rec.Code)
	var response TraceResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Len(t, response.Steps, 2)
	assert.Equal(t, 1, response.Steps[0].Step)
	assert.Equal(t, "goal_reached", response.Outcome)
	assert.Len(t, response.Path, 5)

	rec = post(t, s, "/v1/trace?limit=-1", blockedAt(13))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPlan_Publishes(t *testing.T) {
	p, publisher := newTestPlanner(t)
	s := NewServer(p, nil)

	rec := post(t, s, "/v1/plan", blockedAt(13))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, publisher.count())

	rec = post(t, s, "/v1/plan", msgs.OccupancyGrid{Data: make([]int8, 25)})
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 1, publisher.count())
}

func TestPlan_ConcurrentRequestsRunOneAtATime(t *testing.T) {
	var inFlight, peak atomic.Int32
	clock := func() time.Time {
		current := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			seen := peak.Load()
			if current <= seen || peak.CompareAndSwap(seen, current) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		return time.Unix(0, 0)
	}
	p, publisher := newTestPlanner(t, planner.WithClock(clock))
	s := NewServer(p, nil)

	payload, err := json.Marshal(blockedAt(13))
	require.NoError(t, err)

	const requests = 6
	codes := make([]int, requests)
	var wg sync.WaitGroup
	for i := 0; i < requests; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodPost, "/v1/plan", bytes.NewReader(payload))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			s.Handler().ServeHTTP(rec, req)
			codes[i] = rec.Code
		}(i)
	}
	wg.Wait()

	for i, code := range codes {
		assert.Equal(t, http.StatusOK, code, "request %d", i)
	}
	assert.Equal(t, int32(1), peak.Load())
	assert.Equal(t, requests, publisher.count())
}

func TestLatestPath(t *testing.T) {
	p, _ := newTestPlanner(t)
	get := func(s *Server) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/path/latest", nil))
		return rec
	}

	rec := get(NewServer(p, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = get(NewServer(p, nil, WithLatest(staticLatest{err: transport.ErrNoLatchedPath})))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	latched := msgs.Path{Header: msgs.Header{FrameID: "base_link"}, RunID: "run-1", Poses: []msgs.PoseStamped{}}
	rec = get(NewServer(p, nil, WithLatest(staticLatest{path: latched})))
	require.Equal(t, http.StatusOK, rec.Code)
	var got msgs.Path
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "run-1", got.RunID)
	assert.Equal(t, "base_link", got.Header.FrameID)
}

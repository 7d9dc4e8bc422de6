package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/reveal/pkg/errors"
	"github.com/matzehuels/reveal/pkg/graph"
	"github.com/matzehuels/reveal/pkg/store"
	"github.com/matzehuels/reveal/pkg/view"
)

const fixture = `{
  "nodes": [{"id": "a", "group": 1}, {"id": "b", "group": 2}],
  "links": [{"source": "a", "target": "b", "value": 4}]
}`

// startServer serves the fixture through httptest with its loop running.
// A long interval keeps positions still between requests.
func startServer(t *testing.T, interval time.Duration) (*Server, *httptest.Server) {
	t.Helper()
	doc, err := graph.Unmarshal([]byte(fixture))
	if err != nil {
		t.Fatal(err)
	}
	v, err := view.Init(doc, view.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	s, err := New(v, Options{
		Title:        "fixture",
		TickInterval: interval,
		Store:        store.NewMemoryStore(),
		DocumentHash: "doc-hash",
		Logger:       log.New(io.Discard),
	})
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.RunLoop(ctx)
		close(done)
	}()
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		cancel()
		<-done
		ts.Close()
	})
	return s, ts
}

func get(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, body
}

func do(t *testing.T, method, url, body string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, data
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		t.Fatalf("decode %s: %v", data, err)
	}
	return v
}

func TestPage(t *testing.T) {
	_, ts := startServer(t, time.Millisecond)
	resp, body := get(t, ts.URL+"/")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("content type = %q", ct)
	}
	for _, want := range []string{`id="my_dataviz"`, "fixture", "api/view"} {
		if !strings.Contains(string(body), want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestData(t *testing.T) {
	_, ts := startServer(t, time.Millisecond)
	resp, body := get(t, ts.URL+"/data")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	doc, err := graph.Unmarshal(body)
	if err != nil {
		t.Fatalf("/data is not a document: %v", err)
	}
	if len(doc.Nodes) != 2 || len(doc.Links) != 1 {
		t.Errorf("got %d nodes, %d links", len(doc.Nodes), len(doc.Links))
	}
}

func TestViewModel(t *testing.T) {
	_, ts := startServer(t, time.Millisecond)
	_, body := get(t, ts.URL+"/api/view")
	m := decode[viewModel](t, body)

	if m.ContainerID != view.ContainerID || m.Width != 400 || m.Height != 400 {
		t.Errorf("canvas = %s %vx%v", m.ContainerID, m.Width, m.Height)
	}
	if m.Transform != "translate(40, 10)" {
		t.Errorf("transform = %q", m.Transform)
	}
	if len(m.Links) != 1 || m.Links[0].StrokeWidth != 2 {
		t.Errorf("links = %+v", m.Links)
	}
	if len(m.Nodes) != 2 || m.Nodes[0].Radius != 5 || m.Nodes[0].LabelDX != 6 {
		t.Errorf("nodes = %+v", m.Nodes)
	}
	if m.Nodes[0].Fill == m.Nodes[1].Fill {
		t.Error("different groups should get different colors")
	}
}

func TestFrameAndPositions(t *testing.T) {
	_, ts := startServer(t, time.Millisecond)

	resp, body := get(t, ts.URL+"/api/frame")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if cc := resp.Header.Get("Cache-Control"); cc == "" {
		t.Error("api responses should not be cached")
	}
	f := decode[view.Frame](t, body)
	if len(f.Lines) != 1 || len(f.Nodes) != 2 {
		t.Errorf("frame = %+v", f)
	}

	_, body = get(t, ts.URL+"/api/positions")
	l := decode[graph.Layout](t, body)
	if l.Width != 330 || l.Height != 360 || len(l.Positions) != 2 {
		t.Errorf("layout = %+v", l)
	}
}

func TestSVG(t *testing.T) {
	_, ts := startServer(t, time.Millisecond)
	resp, body := get(t, ts.URL+"/api/graph.svg")
	if ct := resp.Header.Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("content type = %q", ct)
	}
	if !strings.Contains(string(body), "<svg") || strings.Count(string(body), "<circle") != 2 {
		t.Errorf("unexpected svg: %s", body)
	}
}

func TestRestart(t *testing.T) {
	s, ts := startServer(t, time.Hour)
	resp, _ := do(t, http.MethodPost, ts.URL+"/api/restart", "")
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var alpha float64
	if err := s.submit(context.Background(), func() { alpha = s.view.Simulation().Alpha() }); err != nil {
		t.Fatal(err)
	}
	if alpha != 1 {
		t.Errorf("alpha after restart = %v, want 1", alpha)
	}
}

func TestSnapshots(t *testing.T) {
	_, ts := startServer(t, time.Hour)
	api := ts.URL + "/api/snapshots"

	resp, body := do(t, http.MethodPost, api, `{"name": "first"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("save status = %d: %s", resp.StatusCode, body)
	}
	snap := decode[store.Snapshot](t, body)
	if snap.ID == "" || snap.Name != "first" || snap.DocumentHash != "doc-hash" {
		t.Errorf("snapshot = %+v", snap)
	}
	if len(snap.Layout.Positions) != 2 {
		t.Errorf("positions = %d, want 2", len(snap.Layout.Positions))
	}

	_, body = get(t, api)
	if list := decode[[]store.Snapshot](t, body); len(list) != 1 || list[0].ID != snap.ID {
		t.Errorf("list = %+v", list)
	}

	resp, body = get(t, api+"/"+snap.ID)
	if resp.StatusCode != http.StatusOK || decode[store.Snapshot](t, body).Name != "first" {
		t.Errorf("get = %d %s", resp.StatusCode, body)
	}

	resp, body = do(t, http.MethodPost, api+"/"+snap.ID+"/restore", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("restore status = %d: %s", resp.StatusCode, body)
	}
	if got := decode[map[string]int](t, body)["restored"]; got != 2 {
		t.Errorf("restored = %d, want 2", got)
	}

	resp, _ = do(t, http.MethodDelete, api+"/"+snap.ID, "")
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("delete status = %d", resp.StatusCode)
	}
	_, body = get(t, api)
	if list := decode[[]store.Snapshot](t, body); len(list) != 0 {
		t.Errorf("list after delete = %+v", list)
	}
}

func TestSnapshotListScope(t *testing.T) {
	s, ts := startServer(t, time.Hour)
	other := store.New("other", "other-hash", graph.Layout{})
	if err := s.store.Save(context.Background(), other); err != nil {
		t.Fatal(err)
	}

	_, body := get(t, ts.URL+"/api/snapshots")
	if list := decode[[]store.Snapshot](t, body); len(list) != 0 {
		t.Errorf("foreign snapshot listed: %+v", list)
	}
	_, body = get(t, ts.URL+"/api/snapshots?all=true")
	if list := decode[[]store.Snapshot](t, body); len(list) != 1 {
		t.Errorf("all=true list = %+v", list)
	}
}

func TestErrorResponses(t *testing.T) {
	_, ts := startServer(t, time.Hour)
	missing := "7a1c1f4e-3a59-4a8e-9a36-0cf1c8d2b001"

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		code   errors.Code
	}{
		{"unknown snapshot", http.MethodGet, "/api/snapshots/" + missing, "", http.StatusNotFound, errors.ErrCodeNotFound},
		{"bad id", http.MethodGet, "/api/snapshots/not-a-uuid", "", http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"restore unknown", http.MethodPost, "/api/snapshots/" + missing + "/restore", "", http.StatusNotFound, errors.ErrCodeNotFound},
		{"bad body", http.MethodPost, "/api/snapshots", "{", http.StatusBadRequest, errors.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := do(t, tt.method, ts.URL+tt.path, tt.body)
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			e := decode[errorBody](t, body)
			if e.Error.Code != tt.code || e.Error.Message == "" {
				t.Errorf("error body = %+v", e.Error)
			}
		})
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{errors.New(errors.ErrCodeInvalidInput, "x"), http.StatusBadRequest},
		{errors.New(errors.ErrCodeUnresolvedReference, "x"), http.StatusBadRequest},
		{errors.New(errors.ErrCodeNotFound, "x"), http.StatusNotFound},
		{errors.New(errors.ErrCodeFileNotFound, "x"), http.StatusNotFound},
		{errors.New(errors.ErrCodeNetwork, "x"), http.StatusBadGateway},
		{fmt.Errorf("submit: %w", context.DeadlineExceeded), http.StatusGatewayTimeout},
		{errors.New(errors.ErrCodeInternal, "x"), http.StatusInternalServerError},
		{fmt.Errorf("plain"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			if got := statusFor(tt.err); got != tt.want {
				t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestLoopStoppedFailsRequests(t *testing.T) {
	doc, _ := graph.Unmarshal([]byte(fixture))
	v, err := view.Init(doc, view.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	s, err := New(v, Options{Logger: log.New(io.Discard)})
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s.RunLoop(ctx)

	ts := httptest.NewServer(s.Handler())
	defer ts.Close()
	resp, _ := get(t, ts.URL+"/api/frame")
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", resp.StatusCode)
	}
}

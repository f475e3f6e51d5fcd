package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/metagraph/pkg/dag"
	"github.com/matzehuels/metagraph/pkg/effects"
	"github.com/matzehuels/metagraph/pkg/errors"
	"github.com/matzehuels/metagraph/pkg/graph"
	"github.com/matzehuels/metagraph/pkg/observability"
	"github.com/matzehuels/metagraph/pkg/pipeline"
	"github.com/matzehuels/metagraph/pkg/session"
)

func newTestServer(t *testing.T, cfg Config) *httptest.Server {
	t.Helper()
	logger := log.New(io.Discard)
	cfg.Logger = logger
	store := session.NewMemoryStore()
	srv := New(pipeline.NewRunner(nil, nil, logger), store, cfg)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		store.Close()
	})
	return ts
}

func do(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		r = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, r)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func create(t *testing.T, ts *httptest.Server, req createRequest) createResponse {
	t.Helper()
	resp := do(t, http.MethodPost, ts.URL+"/graphs", req)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("POST /graphs status = %d", resp.StatusCode)
	}
	return decodeBody[createResponse](t, resp)
}

func TestListEffects(t *testing.T) {
	ts := newTestServer(t, Config{})
	resp := do(t, http.MethodGet, ts.URL+"/effects", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	list := decodeBody[[]effectInfo](t, resp)
	if len(list) != 2 || list[0].Name != effects.CartoonName || list[1].Name != effects.PlasticWrapName {
		t.Fatalf("effects = %+v", list)
	}
	if len(list[0].Params) == 0 {
		t.Error("cartoon should list its exposed params")
	}
}

func TestCreateAndGet(t *testing.T) {
	ts := newTestServer(t, Config{})
	created := create(t, ts, createRequest{
		Effect: effects.CartoonName,
		Values: map[string]any{"sat": 3.0},
		Mode:   effects.BlendOverlay,
	})
	if created.ID == "" {
		t.Fatal("empty session id")
	}
	if created.Graph.Mode == nil || created.Graph.Mode.Active != effects.CartoonOverlay {
		t.Errorf("created mode = %+v", created.Graph.Mode)
	}

	resp := do(t, http.MethodGet, ts.URL+"/graphs/"+created.ID, nil)
	snap := decodeBody[graph.Graph](t, resp)
	if snap.ID != created.ID {
		t.Errorf("snapshot id = %q, want %q", snap.ID, created.ID)
	}
	if got := snap.Values()["sat"]; got != 3.0 {
		t.Errorf("sat = %v, want 3", got)
	}
}

func TestCreateErrors(t *testing.T) {
	ts := newTestServer(t, Config{})
	tests := []struct {
		name   string
		body   any
		status int
		code   errors.Code
	}{
		{"no source", createRequest{}, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"unknown effect", createRequest{Effect: "sepia"}, http.StatusNotFound, errors.ErrCodeNotFound},
		{"out of range", createRequest{Effect: effects.CartoonName, Values: map[string]any{"radius1": 9.0}}, http.StatusUnprocessableEntity, errors.ErrCodeRange},
		{"unknown param", createRequest{Effect: effects.PlasticWrapName, Values: map[string]any{"sat": 1.0}}, http.StatusUnprocessableEntity, errors.ErrCodeUnknownParam},
		{"bad definition", createRequest{Definition: &dag.Definition{Name: "empty"}}, http.StatusUnprocessableEntity, errors.ErrCodeConfiguration},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, http.MethodPost, ts.URL+"/graphs", tt.body)
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			if e := decodeBody[errorResponse](t, resp); e.Code != tt.code {
				t.Errorf("code = %s, want %s (%s)", e.Code, tt.code, e.Message)
			}
		})
	}

	req, _ := http.NewRequest(http.MethodPost, ts.URL+"/graphs", strings.NewReader("{"))
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("malformed body status = %d, want 400", resp.StatusCode)
	}
}

func TestSetParam(t *testing.T) {
	ts := newTestServer(t, Config{})
	id := create(t, ts, createRequest{Effect: effects.PlasticWrapName}).ID
	url := ts.URL + "/graphs/" + id + "/params/"

	resp := do(t, http.MethodPut, url+"tightness", valueRequest{Value: 12.0})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	snap := decodeBody[graph.Graph](t, resp)
	node, _ := snap.Node(effects.PlasticWrapBlur)
	if node.Params["std-dev-x"] != 12.0 || node.Params["std-dev-y"] != 12.0 {
		t.Errorf("wrap-blur params = %v", node.Params)
	}

	resp = do(t, http.MethodPut, url+"tightness", valueRequest{Value: 1.0})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("out of range status = %d, want 422", resp.StatusCode)
	}
	resp = do(t, http.MethodPut, url+"nope", valueRequest{Value: 1.0})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("unknown param status = %d, want 422", resp.StatusCode)
	}

	snap = decodeBody[graph.Graph](t, do(t, http.MethodGet, ts.URL+"/graphs/"+id, nil))
	if got := snap.Values()["tightness"]; got != 12.0 {
		t.Errorf("tightness after rejected update = %v, want 12", got)
	}
}

func TestSetParams(t *testing.T) {
	ts := newTestServer(t, Config{})
	id := create(t, ts, createRequest{Effect: effects.CartoonName}).ID

	resp := do(t, http.MethodPut, ts.URL+"/graphs/"+id+"/params", map[string]any{"mcb": 4, "smooth": 2})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	values := decodeBody[graph.Graph](t, resp).Values()
	if values["mcb"] != 4.0 || values["smooth"] != 2.0 {
		t.Errorf("values = %v", values)
	}
}

func TestSetMode(t *testing.T) {
	tests := []struct {
		name       string
		debug      bool
		value      string
		status     int
		wantActive string
	}{
		{"known", false, effects.BlendMultiply, http.StatusOK, effects.CartoonMultiply},
		{"unknown falls back", false, "sepia", http.StatusOK, effects.CartoonHardLight},
		{"unknown in debug falls back", true, "sepia", http.StatusOK, effects.CartoonHardLight},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, Config{Debug: tt.debug})
			id := create(t, ts, createRequest{Effect: effects.CartoonName}).ID

			resp := do(t, http.MethodPut, ts.URL+"/graphs/"+id+"/mode", valueRequest{Value: tt.value})
			if resp.StatusCode != tt.status {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			if tt.status != http.StatusOK {
				return
			}
			if got := decodeBody[modeResponse](t, resp); got.Active != tt.wantActive {
				t.Errorf("active = %q, want %q", got.Active, tt.wantActive)
			}
			v := decodeBody[validateResponse](t, do(t, http.MethodGet, ts.URL+"/graphs/"+id+"/validate", nil))
			if !v.OK {
				t.Errorf("graph invalid after mode switch: %v", v.Issues)
			}
		})
	}
}

func TestDOTAndRender(t *testing.T) {
	ts := newTestServer(t, Config{})
	id := create(t, ts, createRequest{Effect: effects.CartoonName, Mode: effects.BlendMultiply}).ID

	resp := do(t, http.MethodGet, ts.URL+"/graphs/"+id+"/dot?detailed=true", nil)
	body, _ := io.ReadAll(resp.Body)
	if !strings.HasPrefix(string(body), "digraph G {") {
		t.Errorf("dot body = %.40q", body)
	}
	if !strings.Contains(string(body), `"hard-light" [`) || !strings.Contains(string(body), "dashed") {
		t.Error("dot should show the parked hard-light node")
	}

	resp = do(t, http.MethodGet, ts.URL+"/graphs/"+id+"/render/json", nil)
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != "application/json" {
		t.Errorf("render/json status = %d, type %q", resp.StatusCode, resp.Header.Get("Content-Type"))
	}
	resp = do(t, http.MethodGet, ts.URL+"/graphs/"+id+"/render/gif", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("render/gif status = %d, want 400", resp.StatusCode)
	}
}

func TestDelete(t *testing.T) {
	ts := newTestServer(t, Config{})
	id := create(t, ts, createRequest{Effect: effects.PlasticWrapName}).ID

	if resp := do(t, http.MethodDelete, ts.URL+"/graphs/"+id, nil); resp.StatusCode != http.StatusNoContent {
		t.Errorf("DELETE status = %d, want 204", resp.StatusCode)
	}
	if resp := do(t, http.MethodGet, ts.URL+"/graphs/"+id, nil); resp.StatusCode != http.StatusNotFound {
		t.Errorf("GET after DELETE status = %d, want 404", resp.StatusCode)
	}
	if resp := do(t, http.MethodDelete, ts.URL+"/graphs/"+id, nil); resp.StatusCode != http.StatusNotFound {
		t.Errorf("second DELETE status = %d, want 404", resp.StatusCode)
	}
}

func TestConcurrentSessions(t *testing.T) {
	ts := newTestServer(t, Config{})
	a := create(t, ts, createRequest{Effect: effects.CartoonName}).ID
	b := create(t, ts, createRequest{Effect: effects.CartoonName}).ID

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			do(t, http.MethodPut, ts.URL+"/graphs/"+a+"/params/sat", valueRequest{Value: float64(i)})
		}()
		go func() {
			defer wg.Done()
			do(t, http.MethodPut, ts.URL+"/graphs/"+b+"/mode", valueRequest{Value: effects.BlendOverlay})
		}()
	}
	wg.Wait()

	snapA := decodeBody[graph.Graph](t, do(t, http.MethodGet, ts.URL+"/graphs/"+a, nil))
	snapB := decodeBody[graph.Graph](t, do(t, http.MethodGet, ts.URL+"/graphs/"+b, nil))
	if snapA.Mode.Active != effects.CartoonHardLight {
		t.Errorf("session a mode changed: %q", snapA.Mode.Active)
	}
	if snapB.Mode.Active != effects.CartoonOverlay {
		t.Errorf("session b active = %q, want overlay", snapB.Mode.Active)
	}
	if snapB.Values()["sat"] != 1.3 {
		t.Errorf("session b sat = %v, want default 1.3", snapB.Values()["sat"])
	}
}

type recordingHTTPHooks struct {
	observability.NoopHTTPHooks
	mu       sync.Mutex
	statuses []int
}

func (h *recordingHTTPHooks) OnResponse(_ context.Context, _, _ string, status int, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.statuses = append(h.statuses, status)
}

func TestObserveMiddleware(t *testing.T) {
	hooks := &recordingHTTPHooks{}
	observability.SetHTTPHooks(hooks)
	defer observability.Reset()

	ts := newTestServer(t, Config{})
	do(t, http.MethodGet, ts.URL+"/effects", nil)
	do(t, http.MethodGet, ts.URL+"/graphs/missing", nil)

	hooks.mu.Lock()
	defer hooks.mu.Unlock()
	if len(hooks.statuses) != 2 || hooks.statuses[0] != http.StatusOK || hooks.statuses[1] != http.StatusNotFound {
		t.Errorf("recorded statuses = %v, want [200 404]", hooks.statuses)
	}
}

type recordingGraphHooks struct {
	observability.NoopGraphHooks
	mu     sync.Mutex
	events []string
}

func (h *recordingGraphHooks) OnApply(_ context.Context, _, param string, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, "apply "+param+" "+string(errors.GetCode(err)))
}

func (h *recordingGraphHooks) OnModeSwitch(_ context.Context, _, value, active string, _ error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, "mode "+value+" "+active)
}

func TestSessionMutationsFireGraphHooks(t *testing.T) {
	ts := newTestServer(t, Config{})
	id := create(t, ts, createRequest{Effect: effects.CartoonName}).ID
	url := ts.URL + "/graphs/" + id

	hooks := &recordingGraphHooks{}
	observability.SetGraphHooks(hooks)
	t.Cleanup(observability.Reset)

	do(t, http.MethodPut, url+"/params/sat", valueRequest{Value: 2.0})
	do(t, http.MethodPut, url+"/params/radius1", valueRequest{Value: 9.0})
	do(t, http.MethodPut, url+"/params", map[string]any{"mcb": 3, "smooth": 9.0e3})
	do(t, http.MethodPut, url+"/params", map[string]any{"mcb": 3, "smooth": 2})
	do(t, http.MethodPut, url+"/mode", valueRequest{Value: effects.BlendMultiply})

	want := []string{
		"apply sat ",
		"apply radius1 RANGE",
		"apply smooth RANGE",
		"apply mcb ",
		"apply smooth ",
		"mode " + effects.BlendMultiply + " " + effects.CartoonMultiply,
	}
	hooks.mu.Lock()
	defer hooks.mu.Unlock()
	if diff := cmp.Diff(want, hooks.events); diff != "" {
		t.Errorf("graph hook events mismatch (-want +got):\n%s", diff)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{session.ErrNotFound, http.StatusNotFound},
		{session.ErrExpired, http.StatusGone},
		{errors.New(errors.ErrCodeRange, "x"), http.StatusUnprocessableEntity},
		{errors.New(errors.ErrCodeCycle, "x"), http.StatusUnprocessableEntity},
		{errors.New(errors.ErrCodeInvalidFormat, "x"), http.StatusBadRequest},
		{errors.New(errors.ErrCodeClosed, "x"), http.StatusGone},
		{errors.New(errors.ErrCodeInternal, "x"), http.StatusInternalServerError},
		{io.EOF, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got, _ := statusFor(tt.err); got != tt.status {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.status)
		}
	}
}

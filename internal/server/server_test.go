package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/gridflow/internal/compiler"
	"github.com/vk/gridflow/internal/executor"
	"github.com/vk/gridflow/internal/testutil"
	"github.com/vk/gridflow/internal/worker"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	ctx, _ := testutil.Context(t)
	tasks, hooks := testutil.Registries(t, testutil.Manifests)
	w := worker.New(compiler.New(), executor.New(testutil.NewMockSleeper(0, 2)), tasks, hooks)
	return New(ctx, w)
}

func do(t *testing.T, s *Server, method, target, body string) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.App().Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]any{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func graphBody(t *testing.T, cron string) string {
	t.Helper()
	trigger := testutil.NodeID("T1")
	action := testutil.NodeID("A1")
	edge := testutil.EdgeID("T1->A1")
	sched := testutil.NodeID("S1")
	return `{"graph": {
		"nodes": {
			"` + trigger.String() + `": {"kind": "trigger:self"},
			"` + action.String() + `": {"kind": "action", "task": "greet", "inputs": {"name": "ada"}},
			"` + sched.String() + `": {"kind": "trigger:cron", "cron": "` + cron + `"}
		},
		"edges": {
			"` + edge.String() + `": {"tail": "` + trigger.String() + `", "head": "` + action.String() + `"}
		}
	}}`
}

func TestServer_Health(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	status, body := do(t, s, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
}

func TestServer_Compile(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name      string
		cron      string
		expectOK  bool
		expectErr string
	}{
		{name: "valid graph", cron: "* * * * *", expectOK: true},
		{name: "bad cron", cron: "* * * *", expectErr: "incorrect_cron_format"},
		{name: "timezone only cron", cron: "TZ=UTC", expectErr: "incorrect_cron_format"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			s := newTestServer(t)

			status, body := do(t, s, http.MethodPost, "/api/compile", graphBody(t, tc.cron))

			require.Equal(t, http.StatusOK, status)
			assert.Equal(t, tc.expectOK, body["ok"])
			if tc.expectErr != "" {
				raw, _ := json.Marshal(body["report"])
				assert.Contains(t, string(raw), tc.expectErr)
			} else {
				assert.EqualValues(t, 3, body["nodes"])
				assert.EqualValues(t, 1, body["edges"])
			}
		})
	}
}

func TestServer_GraphLifecycle(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	status, body := do(t, s, http.MethodPost, "/api/graphs", graphBody(t, "@daily"))
	require.Equal(t, http.StatusCreated, status, body)
	assert.EqualValues(t, 1, body["handle"])

	req := httptest.NewRequest(http.MethodGet, "/api/graphs", nil)
	resp, err := s.App().Test(req)
	require.NoError(t, err)
	var list []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	resp.Body.Close()
	require.Len(t, list, 1)
	assert.EqualValues(t, 3, list[0]["nodes"])

	status, body = do(t, s, http.MethodPost, "/api/graphs/1/execute", "")
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, true, body["ok"])
	outputs := body["outputs"].(map[string]any)["nodes"].(map[string]any)
	require.Contains(t, outputs, testutil.NodeID("A1").String())
	node := outputs[testutil.NodeID("A1").String()].(map[string]any)
	assert.EqualValues(t, 1, node["counter"])
	assert.Equal(t, "hello", node["inputs"].(map[string]any)["greeting"])

	status, _ = do(t, s, http.MethodDelete, "/api/graphs/1", "")
	assert.Equal(t, http.StatusNoContent, status)

	status, _ = do(t, s, http.MethodDelete, "/api/graphs/1", "")
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = do(t, s, http.MethodPost, "/api/graphs/1/execute", "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestServer_ExecuteFrom(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name        string
		from        string
		expect      int
		expectNodes []string
	}{
		{name: "from action", from: testutil.NodeID("A1").String(), expect: http.StatusOK, expectNodes: []string{testutil.NodeID("A1").String()}},
		{name: "from isolated trigger", from: testutil.NodeID("S1").String(), expect: http.StatusOK, expectNodes: []string{}},
		{name: "malformed node id", from: "not-a-node", expect: http.StatusBadRequest},
		{name: "node not in graph", from: testutil.NodeID("Z9").String(), expect: http.StatusNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			s := newTestServer(t)
			status, body := do(t, s, http.MethodPost, "/api/graphs", graphBody(t, "@daily"))
			require.Equal(t, http.StatusCreated, status, body)

			status, body = do(t, s, http.MethodPost, "/api/graphs/1/execute?from="+tc.from, "")

			require.Equal(t, tc.expect, status, body)
			if tc.expectNodes == nil {
				assert.NotEmpty(t, body["error"])
				return
			}
			nodes := body["outputs"].(map[string]any)["nodes"].(map[string]any)
			got := make([]string, 0, len(nodes))
			for id := range nodes {
				got = append(got, id)
			}
			assert.ElementsMatch(t, tc.expectNodes, got)
		})
	}
}

func TestServer_LoadErrors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		method string
		target string
		body   string
		expect int
	}{
		{name: "compile error", method: http.MethodPost, target: "/api/graphs", body: graphBody(t, "nope"), expect: http.StatusUnprocessableEntity},
		{name: "malformed body", method: http.MethodPost, target: "/api/graphs", body: `{"graph": [`, expect: http.StatusBadRequest},
		{name: "malformed compile body", method: http.MethodPost, target: "/api/compile", body: `not json`, expect: http.StatusBadRequest},
		{name: "bad handle", method: http.MethodPost, target: "/api/graphs/abc/execute", expect: http.StatusBadRequest},
		{name: "zero handle", method: http.MethodDelete, target: "/api/graphs/0", expect: http.StatusBadRequest},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			s := newTestServer(t)

			status, body := do(t, s, tc.method, tc.target, tc.body)

			assert.Equal(t, tc.expect, status)
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestServer_Tasks(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	status, body := do(t, s, http.MethodGet, "/api/tasks/greet", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "greet", body["name"])
	assert.Equal(t, "local", body["service"])
	inputs := body["inputs"].([]any)
	require.Len(t, inputs, 3)
	greeting := inputs[0].(map[string]any)
	assert.Equal(t, "greeting", greeting["name"])
	assert.Equal(t, "string", greeting["type"])
	assert.Equal(t, "hello", greeting["default"])
	assert.Equal(t, false, greeting["required"])

	status, _ = do(t, s, http.MethodGet, "/api/tasks/unknown", "")
	assert.Equal(t, http.StatusNotFound, status)

	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	resp, err := s.App().Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	var list []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	assert.Len(t, list, 5)
	assert.Equal(t, "fail", list[0]["name"])
}

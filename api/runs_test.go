package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"launchpad/adapter"
	"launchpad/api"
	"launchpad/history"
	"launchpad/history/sqlite"
	"launchpad/launch"
	"launchpad/run"
)

type testEnv struct {
	presets *launch.Manager
	runs    *run.Manager
	store   history.Store
}

// newTestServer wires the full API around a temp launch file, a mock
// spawner and an in-memory history store.
func newTestServer(t *testing.T) (*httptest.Server, *testEnv) {
	t.Helper()

	lm, err := launch.NewManager(t.TempDir() + "/launch.json")
	if err != nil {
		t.Fatalf("launch manager: %v", err)
	}
	seed := launch.File{
		Version: launch.DefaultVersion,
		Configurations: []launch.Preset{
			{
				Name:    "train dit",
				Type:    "debugpy",
				Request: "launch",
				Program: "lerobot/scripts/train.py",
				Console: "integratedTerminal",
				Args:    []string{"--policy.type=dit", "--dataset.repo_id=lerobot/pusht"},
			},
			{
				Name:    "visualize dataset",
				Type:    "python",
				Request: "launch",
				Program: "lerobot/scripts/visualize_dataset.py",
				Console: "internalConsole",
				Args:    []string{"--repo-id", "${env:HF_USER}/pusht"},
			},
			{
				Name:    "remote attach",
				Type:    "debugpy",
				Request: "attach",
				Program: "lerobot/scripts/train.py",
			},
			{
				Name:    "broken var",
				Type:    "python",
				Request: "launch",
				Program: "${env:NO_SUCH_VAR}/train.py",
			},
		},
	}
	if err := lm.Save(seed); err != nil {
		t.Fatalf("seeding launch file: %v", err)
	}

	store, err := sqlite.Open(":memory:")
	if err != nil {
		t.Fatalf("history store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	env := &testEnv{
		presets: lm,
		runs:    run.NewManagerWithSpawnFn(run.MockSpawnFn),
		store:   store,
	}
	srv := httptest.NewServer(api.RegisterRoutes(api.Options{
		Presets:  lm,
		Runs:     env.runs,
		Adapters: adapter.NewDefaultRegistry(adapter.Options{}),
		History:  store,
		Vars: launch.Vars{
			Workspace: "/ws",
			Home:      "/home/test",
			LookupEnv: func(name string) (string, bool) {
				if name == "HF_USER" {
					return "robo", true
				}
				return "", false
			},
		},
	}))
	t.Cleanup(srv.Close)
	return srv, env
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func doRequest(t *testing.T, method, url string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
}

func TestCreateRun201(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/runs", `{"preset": "train dit"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	var view struct {
		ID     string   `json:"id"`
		Preset string   `json:"preset"`
		Argv   []string `json:"argv"`
		PTY    bool     `json:"pty"`
		Status string   `json:"status"`
	}
	decodeBody(t, resp, &view)

	if view.ID == "" {
		t.Fatal("expected non-empty run id")
	}
	if view.Preset != "train dit" {
		t.Fatalf("preset = %q", view.Preset)
	}
	if view.Status != "running" {
		t.Fatalf("status = %q", view.Status)
	}
	if !view.PTY {
		t.Fatal("integratedTerminal preset must run on a PTY")
	}
	want := []string{
		"python3", "-m", "debugpy", "--listen", "127.0.0.1:5678",
		"lerobot/scripts/train.py", "--policy.type=dit", "--dataset.repo_id=lerobot/pusht",
	}
	if len(view.Argv) != len(want) {
		t.Fatalf("argv = %v, want %v", view.Argv, want)
	}
	for i := range want {
		if view.Argv[i] != want[i] {
			t.Fatalf("argv[%d] = %q, want %q", i, view.Argv[i], want[i])
		}
	}
}

func TestCreateRunExpandsVariables(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/runs", `{"preset": "visualize dataset"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	var view struct {
		Argv []string `json:"argv"`
		PTY  bool     `json:"pty"`
	}
	decodeBody(t, resp, &view)

	if view.PTY {
		t.Fatal("internalConsole preset must not run on a PTY")
	}
	if got := view.Argv[len(view.Argv)-1]; got != "robo/pusht" {
		t.Fatalf("env variable not expanded: %v", view.Argv)
	}
}

func TestCreateRunUnknownPreset(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/runs", `{"preset": "no such preset"}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestCreateRunAttachPreset(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/runs", `{"preset": "remote attach"}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
}

func TestCreateRunUnknownVariable(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/runs", `{"preset": "broken var"}`)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
	var body map[string]string
	json.NewDecoder(resp.Body).Decode(&body)
	if !strings.Contains(body["error"], "NO_SUCH_VAR") {
		t.Fatalf("error should name the variable: %q", body["error"])
	}
}

func TestCreateRunBadBody(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, body := range []string{"not-json", `{"preset": ""}`, `{}`} {
		resp := postJSON(t, srv.URL+"/api/runs", body)
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("body %q: expected 400, got %d", body, resp.StatusCode)
		}
	}
}

func TestListAndGetRuns(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/runs", `{"preset": "train dit"}`)
	var created struct {
		ID string `json:"id"`
	}
	decodeBody(t, resp, &created)
	postJSON(t, srv.URL+"/api/runs", `{"preset": "visualize dataset"}`).Body.Close()

	listResp, err := http.Get(srv.URL + "/api/runs")
	if err != nil {
		t.Fatal(err)
	}
	var runs []map[string]any
	decodeBody(t, listResp, &runs)
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}

	getResp := doRequest(t, http.MethodGet, srv.URL+"/api/runs/"+created.ID)
	if getResp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", getResp.StatusCode)
	}
	getResp.Body.Close()

	missing := doRequest(t, http.MethodGet, srv.URL+"/api/runs/nonexistent")
	missing.Body.Close()
	if missing.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown run, got %d", missing.StatusCode)
	}
}

func TestListRunsEmpty(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/runs")
	if err != nil {
		t.Fatal(err)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "application/json") {
		t.Fatalf("expected json content-type, got %q", ct)
	}
	var runs []any
	decodeBody(t, resp, &runs)
	if len(runs) != 0 {
		t.Fatalf("expected 0 runs, got %d", len(runs))
	}
}

func TestKillRun(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/runs", `{"preset": "train dit"}`)
	var created struct {
		ID string `json:"id"`
	}
	decodeBody(t, resp, &created)

	del := doRequest(t, http.MethodDelete, srv.URL+"/api/runs/"+created.ID)
	del.Body.Close()
	if del.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", del.StatusCode)
	}

	again := doRequest(t, http.MethodDelete, srv.URL+"/api/runs/"+created.ID)
	again.Body.Close()
	if again.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for second kill, got %d", again.StatusCode)
	}

	// The history record is finished asynchronously once the process ends.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		r := doRequest(t, http.MethodGet, srv.URL+"/api/history/"+created.ID)
		var rec struct {
			Status string `json:"status"`
		}
		decodeBody(t, r, &rec)
		if rec.Status == "killed" {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("history record was not marked killed")
}

func TestRunRecordedInHistory(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/runs", `{"preset": "train dit"}`)
	var created struct {
		ID string `json:"id"`
	}
	decodeBody(t, resp, &created)

	histResp := doRequest(t, http.MethodGet, srv.URL+"/api/history/"+created.ID)
	if histResp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", histResp.StatusCode)
	}
	var rec struct {
		Preset string   `json:"preset"`
		Argv   []string `json:"argv"`
		Status string   `json:"status"`
	}
	decodeBody(t, histResp, &rec)
	if rec.Preset != "train dit" {
		t.Fatalf("recorded preset = %q", rec.Preset)
	}
	if rec.Status != "running" {
		t.Fatalf("recorded status = %q", rec.Status)
	}
	if len(rec.Argv) == 0 || rec.Argv[0] != "python3" {
		t.Fatalf("recorded argv = %v", rec.Argv)
	}

	recentResp := doRequest(t, http.MethodGet, srv.URL+"/api/presets/recent")
	var recent map[string][]string
	decodeBody(t, recentResp, &recent)
	if len(recent["recentlyUsed"]) != 1 || recent["recentlyUsed"][0] != "train dit" {
		t.Fatalf("recentlyUsed = %v", recent["recentlyUsed"])
	}
}

func TestListHistoryFilter(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/runs", `{"preset": "train dit"}`)
	var created struct {
		ID string `json:"id"`
	}
	decodeBody(t, resp, &created)
	postJSON(t, srv.URL+"/api/runs", `{"preset": "visualize dataset"}`).Body.Close()

	doRequest(t, http.MethodDelete, srv.URL+"/api/runs/"+created.ID).Body.Close()

	// Wait for the finish stamp, then filter.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		r := doRequest(t, http.MethodGet, srv.URL+"/api/history?status=killed")
		var records []map[string]any
		decodeBody(t, r, &records)
		if len(records) == 1 {
			if records[0]["id"] != created.ID {
				t.Fatalf("wrong record: %v", records[0])
			}
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("killed record never appeared in filtered history")
}

package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"freelance/internal/core"
	"freelance/internal/derive"
	"freelance/internal/services"
	"freelance/internal/snapshot"
	"freelance/internal/storage"
)

// fakeSource serves fixed collections and can be switched into a
// failing state mid-test.
type fakeSource struct {
	mu       sync.Mutex
	clients  []core.Client
	invoices []core.Invoice
	meetings []core.Meeting
	projects []core.Project
	err      error
}

func (f *fakeSource) fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *fakeSource) ListClients(ctx context.Context) ([]core.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.clients, f.err
}

func (f *fakeSource) ListInvoices(ctx context.Context) ([]core.Invoice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.invoices, f.err
}

func (f *fakeSource) ListMeetings(ctx context.Context) ([]core.Meeting, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.meetings, f.err
}

func (f *fakeSource) ListProjects(ctx context.Context) ([]core.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.projects, f.err
}

func newTestRepo(t *testing.T) *storage.SQLiteRepository {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func newTestServer(t *testing.T, src *fakeSource) (*Server, *services.EntityService) {
	t.Helper()
	repo := newTestRepo(t)
	svc := services.NewEntityService(repo, nil)
	var srv *Server
	if src != nil {
		srv = NewServer(":0", svc, src, time.Minute)
	} else {
		srv = NewServer(":0", svc, repo, time.Minute)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	})
	return srv, svc
}

func doRequest(srv *Server, method, target string, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func TestHealthEndpoints(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	for _, path := range []string{"/healthz", "/readyz"} {
		rr := doRequest(srv, http.MethodGet, path, "")
		if rr.Code != http.StatusOK {
			t.Errorf("%s status = %d, want 200", path, rr.Code)
		}
	}
}

func TestDashboardHandler(t *testing.T) {
	now := time.Now()
	src := &fakeSource{
		clients: []core.Client{
			{ID: "c1", Name: "Acme", Tags: []string{"ongoing"}, Source: "Upwork", CreatedAt: now.Add(-48 * time.Hour)},
		},
		invoices: []core.Invoice{
			{ID: "i1", ClientID: "c1", Amount: core.Money{Cents: 120050}, DueDate: now.Add(-72 * time.Hour), Status: core.InvoiceUnpaid, CreatedAt: now.Add(-96 * time.Hour)},
		},
	}
	srv, _ := newTestServer(t, src)

	rr := doRequest(srv, http.MethodGet, "/api/dashboard", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}

	var view derive.Dashboard
	if err := json.Unmarshal(rr.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode dashboard: %v", err)
	}
	if view.Stats.TotalClients != 1 || view.Stats.ActiveProjects != 1 || view.Stats.PendingInvoices != 1 {
		t.Errorf("stats = %+v", view.Stats)
	}
	if len(view.Tasks) == 0 {
		t.Fatal("expected an overdue-invoice task")
	}

	// Marking a task done removes it from the task list but not from
	// the insight rules.
	rr = doRequest(srv, http.MethodGet, "/api/dashboard?done="+view.Tasks[0].ID, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("filtered status = %d", rr.Code)
	}
	var filtered derive.Dashboard
	if err := json.Unmarshal(rr.Body.Bytes(), &filtered); err != nil {
		t.Fatalf("decode filtered dashboard: %v", err)
	}
	if len(filtered.Tasks) != len(view.Tasks)-1 {
		t.Errorf("filtered tasks = %d, want %d", len(filtered.Tasks), len(view.Tasks)-1)
	}
	if len(filtered.Insights) != len(view.Insights) {
		t.Errorf("insights changed after filtering: %d vs %d", len(filtered.Insights), len(view.Insights))
	}
}

func TestDashboardLoadFailure(t *testing.T) {
	src := &fakeSource{}
	src.fail(context.DeadlineExceeded)
	srv, _ := newTestServer(t, src)

	rr := doRequest(srv, http.MethodGet, "/api/dashboard", "")
	if rr.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rr.Code)
	}
	var resp errorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if resp.Error != "could not load data" {
		t.Errorf("error = %q", resp.Error)
	}
}

func TestDashboardServesPreviousSnapshotOnFailure(t *testing.T) {
	src := &fakeSource{
		clients: []core.Client{{ID: "c1", Name: "Acme", CreatedAt: time.Now()}},
	}
	srv, _ := newTestServer(t, src)

	if rr := doRequest(srv, http.MethodGet, "/api/dashboard", ""); rr.Code != http.StatusOK {
		t.Fatalf("initial status = %d", rr.Code)
	}

	// A later refresh failure must not take the dashboard down; the
	// previous snapshot keeps serving. A distinct done key bypasses the
	// view cache and forces a reload.
	src.fail(context.DeadlineExceeded)
	rr := doRequest(srv, http.MethodGet, "/api/dashboard?done=x", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status after failure = %d, want 200", rr.Code)
	}
	var view derive.Dashboard
	if err := json.Unmarshal(rr.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode dashboard: %v", err)
	}
	if view.Stats.TotalClients != 1 {
		t.Errorf("stats from stale snapshot = %+v", view.Stats)
	}
}

// gatedSource stalls its first ListClients call until released and
// serves older data from it, so a refresh that started first can be
// made to finish last.
type gatedSource struct {
	fakeSource
	entered chan struct{}
	release chan struct{}
	stale   []core.Client
	first   atomic.Bool
}

func (g *gatedSource) ListClients(ctx context.Context) ([]core.Client, error) {
	if g.first.CompareAndSwap(false, true) {
		close(g.entered)
		<-g.release
		return g.stale, nil
	}
	return g.fakeSource.ListClients(ctx)
}

func TestLoadSnapshotOutOfOrderCompletion(t *testing.T) {
	src := &gatedSource{
		fakeSource: fakeSource{clients: []core.Client{{ID: "c1", Name: "Acme"}, {ID: "c2", Name: "Globex"}}},
		entered:    make(chan struct{}),
		release:    make(chan struct{}),
		stale:      []core.Client{{ID: "c1", Name: "Acme"}},
	}
	repo := newTestRepo(t)
	svc := services.NewEntityService(repo, nil)
	srv := NewServer(":0", svc, src, time.Minute)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	})

	type result struct {
		snap  *snapshot.Snapshot
		fresh bool
		err   error
	}
	got := make(chan result, 1)
	go func() {
		snap, fresh, err := srv.loadSnapshot(context.Background())
		got <- result{snap, fresh, err}
	}()

	// The first refresh is parked mid-load; a second one starts later
	// and completes first.
	<-src.entered
	newer, fresh, err := srv.loadSnapshot(context.Background())
	if err != nil {
		t.Fatalf("second refresh: %v", err)
	}
	if !fresh || len(newer.Clients) != 2 {
		t.Fatalf("second refresh fresh=%v clients=%d, want fresh with 2", fresh, len(newer.Clients))
	}

	close(src.release)
	res := <-got
	if res.err != nil {
		t.Fatalf("first refresh: %v", res.err)
	}
	// The superseded refresh must yield the newer snapshot and must not
	// be treated as cacheable.
	if res.fresh {
		t.Error("superseded refresh reported as fresh")
	}
	if len(res.snap.Clients) != 2 {
		t.Errorf("served the superseded snapshot: %d clients, want 2", len(res.snap.Clients))
	}
}

func TestProjectAnalyticsAndBoard(t *testing.T) {
	now := time.Now()
	src := &fakeSource{
		projects: []core.Project{
			{ID: "p1", ClientID: "c1", Name: "Site", Platform: "Upwork", Status: core.ProjectActive, Progress: 50, Budget: core.Money{Cents: 500000}, PaymentStatus: core.PaymentPending, StartDate: now.Add(-10 * 24 * time.Hour)},
			{ID: "p2", ClientID: "c1", Name: "Logo", Platform: "Fiverr", Status: core.ProjectCompleted, Progress: 100, Budget: core.Money{Cents: 100000}, PaymentStatus: core.PaymentPaid, StartDate: now.Add(-30 * 24 * time.Hour), CompletedDate: now.Add(-20 * 24 * time.Hour)},
		},
	}
	srv, _ := newTestServer(t, src)

	rr := doRequest(srv, http.MethodGet, "/api/projects/analytics", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("analytics status = %d", rr.Code)
	}
	var analytics derive.ProjectAnalytics
	if err := json.Unmarshal(rr.Body.Bytes(), &analytics); err != nil {
		t.Fatalf("decode analytics: %v", err)
	}
	if analytics.TotalProjects != 2 || analytics.ActiveProjects != 1 || analytics.CompletedProjects != 1 {
		t.Errorf("analytics = %+v", analytics)
	}

	rr = doRequest(srv, http.MethodGet, "/api/projects/board", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("board status = %d", rr.Code)
	}
	var board derive.Board
	if err := json.Unmarshal(rr.Body.Bytes(), &board); err != nil {
		t.Fatalf("decode board: %v", err)
	}
	if len(board.InProgress) != 1 || len(board.Completed) != 1 {
		t.Errorf("board lanes = %d/%d/%d/%d",
			len(board.Todo), len(board.InProgress), len(board.Review), len(board.Completed))
	}
}

func TestLaneMoveEndpoint(t *testing.T) {
	srv, svc := newTestServer(t, nil)

	created, err := svc.CreateProject(context.Background(), core.Project{
		ClientID:      "c1",
		Name:          "Site",
		Status:        core.ProjectActive,
		Progress:      40,
		Budget:        core.Money{Cents: 100000},
		PaymentStatus: core.PaymentPending,
	})
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}

	rr := doRequest(srv, http.MethodPost, "/api/projects/"+created.ID+"/lane", `{"lane":"completed"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var move derive.LaneMove
	if err := json.Unmarshal(rr.Body.Bytes(), &move); err != nil {
		t.Fatalf("decode move: %v", err)
	}
	if move.Status != core.ProjectCompleted || move.Progress != 100 {
		t.Errorf("move = %+v", move)
	}

	got, err := svc.Repo().GetProject(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetProject: %v", err)
	}
	if got.Status != core.ProjectCompleted || got.Progress != 100 {
		t.Errorf("persisted project = %s/%d", got.Status, got.Progress)
	}

	rr = doRequest(srv, http.MethodPost, "/api/projects/"+created.ID+"/lane", `{"lane":"parked"}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("unknown lane status = %d, want 422", rr.Code)
	}

	rr = doRequest(srv, http.MethodPost, "/api/projects/missing/lane", `{"lane":"todo"}`)
	if rr.Code != http.StatusNotFound {
		t.Errorf("missing project status = %d, want 404", rr.Code)
	}
}

func TestClientCRUDEndpoints(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rr := doRequest(srv, http.MethodPost, "/api/clients", `{"name":""}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("invalid client status = %d, want 422", rr.Code)
	}

	rr = doRequest(srv, http.MethodPost, "/api/clients", `{"name":"Acme","email":"acme@example.com","tags":["ongoing"],"source":"Upwork"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var created core.Client
	if err := json.Unmarshal(rr.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode created client: %v", err)
	}
	if created.ID == "" {
		t.Fatal("created client has no id")
	}

	rr = doRequest(srv, http.MethodGet, "/api/clients", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("list status = %d", rr.Code)
	}
	var clients []core.Client
	if err := json.Unmarshal(rr.Body.Bytes(), &clients); err != nil {
		t.Fatalf("decode clients: %v", err)
	}
	if len(clients) != 1 || clients[0].Name != "Acme" {
		t.Errorf("clients = %+v", clients)
	}

	rr = doRequest(srv, http.MethodPut, "/api/clients/"+created.ID, `{"name":"Acme Corp","email":"acme@example.com"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("update status = %d, body = %s", rr.Code, rr.Body.String())
	}

	rr = doRequest(srv, http.MethodDelete, "/api/clients/"+created.ID, "")
	if rr.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rr.Code)
	}

	rr = doRequest(srv, http.MethodDelete, "/api/clients/"+created.ID, "")
	if rr.Code != http.StatusNotFound {
		t.Errorf("delete twice status = %d, want 404", rr.Code)
	}
}

func TestWriteInvalidatesDashboardCache(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rr := doRequest(srv, http.MethodGet, "/api/dashboard", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("initial dashboard status = %d", rr.Code)
	}
	var before derive.Dashboard
	if err := json.Unmarshal(rr.Body.Bytes(), &before); err != nil {
		t.Fatalf("decode dashboard: %v", err)
	}
	if before.Stats.TotalClients != 0 {
		t.Fatalf("expected empty dashboard, got %+v", before.Stats)
	}

	rr = doRequest(srv, http.MethodPost, "/api/clients", `{"name":"Acme"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status = %d", rr.Code)
	}

	rr = doRequest(srv, http.MethodGet, "/api/dashboard", "")
	var after derive.Dashboard
	if err := json.Unmarshal(rr.Body.Bytes(), &after); err != nil {
		t.Fatalf("decode dashboard after write: %v", err)
	}
	if after.Stats.TotalClients != 1 {
		t.Errorf("dashboard served stale stats after write: %+v", after.Stats)
	}
}

func TestSuspiciousRequestBlocked(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rr := doRequest(srv, http.MethodGet, "/api/dashboard?q=../../etc/passwd", "")
	if rr.Code != http.StatusBadRequest {
		t.Errorf("probe status = %d, want 400", rr.Code)
	}
}

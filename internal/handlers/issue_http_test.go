package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/Ashin-Amanulla/unmar2025-registration-sub001/internal/middleware"
	"github.com/Ashin-Amanulla/unmar2025-registration-sub001/internal/models"
	"github.com/Ashin-Amanulla/unmar2025-registration-sub001/internal/repository"
	"github.com/Ashin-Amanulla/unmar2025-registration-sub001/internal/repository/sqlite"
	"github.com/Ashin-Amanulla/unmar2025-registration-sub001/internal/storage"
)

type testServer struct {
	h   http.Handler
	dir string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newWrappedServer(t, nil)
}

// newWrappedServer lets a test interpose on the repository the handlers use.
func newWrappedServer(t *testing.T, wrap func(repository.IssueRepository) repository.IssueRepository) *testServer {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := sqlite.Open("file:"+name+"?mode=memory&cache=shared", false)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	dir := t.TempDir()
	store, err := storage.NewLocal(dir, "/uploads", models.MaxAttachmentSize)
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	var repo repository.IssueRepository = sqlite.NewIssueRepo(db)
	if wrap != nil {
		repo = wrap(repo)
	}
	ih := NewIssueHTTP(repo, store, 2, zerolog.Nop())
	rh := NewReportsHTTP(repo, zerolog.Nop())

	r := chi.NewRouter()
	r.Use(middleware.WithActor)
	r.Get("/api/issues", ih.List())
	r.Post("/api/issues", ih.Create())
	r.Get("/api/issues/stats", rh.Summary())
	r.Get("/api/issues/{id}", ih.Get())
	r.Patch("/api/issues/{id}/status", ih.UpdateStatus())
	r.Patch("/api/issues/{id}/assign", ih.Assign())
	r.Post("/api/issues/{id}/comments", ih.AddComment())
	return &testServer{h: r, dir: dir}
}

func (s *testServer) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	s.h.ServeHTTP(rr, req)
	return rr
}

type reportForm struct {
	fields map[string]string
	files  map[string][]byte
}

func validForm() reportForm {
	return reportForm{fields: map[string]string{
		"title":       "Payment page times out",
		"description": "After entering card details the page spins for a minute and fails.",
		"category":    string(models.CategoryPayment),
		"priority":    string(models.PriorityHigh),
		"reportedBy":  `{"name":"Asha Menon","email":"asha@example.com"}`,
	}}
}

func (f reportForm) request(t *testing.T) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range f.fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("WriteField: %v", err)
		}
	}
	for name, data := range f.files {
		fw, err := mw.CreateFormFile("attachments", name)
		if err != nil {
			t.Fatalf("CreateFormFile: %v", err)
		}
		_, _ = fw.Write(data)
	}
	_ = mw.Close()
	req := httptest.NewRequest(http.MethodPost, "/api/issues", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func jsonReq(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeIssue(t *testing.T, rr *httptest.ResponseRecorder) models.Issue {
	t.Helper()
	var is models.Issue
	if err := json.Unmarshal(rr.Body.Bytes(), &is); err != nil {
		t.Fatalf("decode issue: %v (%s)", err, rr.Body.String())
	}
	return is
}

func errorMessage(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var out struct {
		Error string `json:"error"`
	}
	_ = json.Unmarshal(rr.Body.Bytes(), &out)
	return out.Error
}

func (s *testServer) create(t *testing.T, f reportForm) models.Issue {
	t.Helper()
	rr := s.do(t, f.request(t))
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status = %d body=%s", rr.Code, rr.Body.String())
	}
	return decodeIssue(t, rr)
}

func TestCreateIssueWithAttachments(t *testing.T) {
	s := newTestServer(t)
	f := validForm()
	f.files = map[string][]byte{"receipt.png": []byte("png-bytes")}

	is := s.create(t, f)
	if is.ID == "" || is.Status != models.StatusOpen || is.Priority != models.PriorityHigh {
		t.Fatalf("created = %+v", is)
	}
	if is.ReportedBy.Email != "asha@example.com" {
		t.Fatalf("reporter = %+v", is.ReportedBy)
	}
	if len(is.Attachments) != 1 || is.Attachments[0].Filename != "receipt.png" || is.Attachments[0].Size != 9 {
		t.Fatalf("attachments = %+v", is.Attachments)
	}
	stored := filepath.Join(s.dir, filepath.Base(is.Attachments[0].URL))
	if _, err := os.Stat(stored); err != nil {
		t.Fatalf("attachment not on disk: %v", err)
	}
}

func TestCreateDefaultsPriority(t *testing.T) {
	s := newTestServer(t)
	f := validForm()
	delete(f.fields, "priority")
	if is := s.create(t, f); is.Priority != models.PriorityMedium {
		t.Fatalf("priority = %q", is.Priority)
	}
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	cases := []struct {
		name  string
		edit  func(f *reportForm)
		field string
	}{
		{"short title", func(f *reportForm) { f.fields["title"] = "Bug" }, "title"},
		{"short description", func(f *reportForm) { f.fields["description"] = "too short" }, "description"},
		{"unknown category", func(f *reportForm) { f.fields["category"] = "Catering" }, "category"},
		{"bad email", func(f *reportForm) { f.fields["reportedBy"] = `{"name":"Asha","email":"nope"}` }, "reportedBy.email"},
		{"missing reporter", func(f *reportForm) { delete(f.fields, "reportedBy") }, "reportedBy.name"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestServer(t)
			f := validForm()
			tc.edit(&f)
			rr := s.do(t, f.request(t))
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("status = %d body=%s", rr.Code, rr.Body.String())
			}
			var out struct {
				Details map[string]string `json:"details"`
			}
			_ = json.Unmarshal(rr.Body.Bytes(), &out)
			if out.Details[tc.field] == "" {
				t.Fatalf("details = %v, want entry for %s", out.Details, tc.field)
			}
		})
	}
}

func TestCreateRejectsTooManyFiles(t *testing.T) {
	s := newTestServer(t)
	f := validForm()
	f.files = map[string][]byte{}
	for i := 0; i < models.MaxAttachments+1; i++ {
		f.files["f"+strconv.Itoa(i)+".txt"] = []byte("x")
	}
	rr := s.do(t, f.request(t))
	if rr.Code != http.StatusBadRequest || errorMessage(t, rr) != "You can only upload up to 5 files" {
		t.Fatalf("status = %d body=%s", rr.Code, rr.Body.String())
	}
	entries, _ := os.ReadDir(s.dir)
	if len(entries) != 0 {
		t.Fatalf("files stored for rejected report: %d", len(entries))
	}
}

func TestListFiltersAndPaginates(t *testing.T) {
	s := newTestServer(t)
	for i := 0; i < 3; i++ {
		s.create(t, validForm())
	}
	other := validForm()
	other.fields["category"] = string(models.CategoryTechnical)
	other.fields["title"] = "Login button unresponsive"
	s.create(t, other)

	rr := s.do(t, httptest.NewRequest(http.MethodGet, "/api/issues?category=Payment&page=2", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var page models.IssuePage
	if err := json.Unmarshal(rr.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if page.Total != 3 || page.TotalPages != 2 || page.Page != 2 || len(page.Data) != 1 {
		t.Fatalf("page = %+v", page)
	}
	if rr.Header().Get("X-Total-Count") != "3" {
		t.Fatalf("X-Total-Count = %q", rr.Header().Get("X-Total-Count"))
	}

	rr = s.do(t, httptest.NewRequest(http.MethodGet, "/api/issues?search=LOGIN", nil))
	_ = json.Unmarshal(rr.Body.Bytes(), &page)
	if page.Total != 1 || page.Data[0].Category != models.CategoryTechnical {
		t.Fatalf("search page = %+v", page)
	}

	rr = s.do(t, httptest.NewRequest(http.MethodGet, "/api/issues?status=Pending", nil))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("invalid status filter: %d", rr.Code)
	}
}

func TestGetUnknownIssue(t *testing.T) {
	s := newTestServer(t)
	rr := s.do(t, httptest.NewRequest(http.MethodGet, "/api/issues/nope", nil))
	if rr.Code != http.StatusNotFound || errorMessage(t, rr) != "Issue not found" {
		t.Fatalf("status = %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestStatusLifecycle(t *testing.T) {
	s := newTestServer(t)
	is := s.create(t, validForm())
	path := "/api/issues/" + is.ID + "/status"

	rr := s.do(t, jsonReq(http.MethodPatch, path, `{"status":"In Progress"}`))
	if rr.Code != http.StatusOK || decodeIssue(t, rr).Status != models.StatusInProgress {
		t.Fatalf("to in progress: %d %s", rr.Code, rr.Body.String())
	}

	rr = s.do(t, jsonReq(http.MethodPatch, path, `{"status":"Resolved"}`))
	got := decodeIssue(t, rr)
	if got.Status != models.StatusResolved || got.Resolution != models.DefaultResolvedNote {
		t.Fatalf("resolved = %+v", got)
	}

	rr = s.do(t, jsonReq(http.MethodPatch, path, `{"status":"In Progress"}`))
	if rr.Code != http.StatusConflict {
		t.Fatalf("resolved -> in progress allowed: %d", rr.Code)
	}
	if msg := errorMessage(t, rr); msg != "Cannot change status from Resolved to In Progress" {
		t.Fatalf("message = %q", msg)
	}

	rr = s.do(t, jsonReq(http.MethodPatch, path, `{"status":"Closed","resolution":"Duplicate of #12"}`))
	got = decodeIssue(t, rr)
	if got.Status != models.StatusClosed || got.Resolution != "Duplicate of #12" {
		t.Fatalf("closed = %+v", got)
	}

	rr = s.do(t, jsonReq(http.MethodPatch, path, `{"status":"Archived"}`))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("unknown status: %d", rr.Code)
	}
}

func TestAssignAndComment(t *testing.T) {
	s := newTestServer(t)
	is := s.create(t, validForm())

	rr := s.do(t, jsonReq(http.MethodPatch, "/api/issues/"+is.ID+"/assign", `{"assignedTo":" admin-7 "}`))
	got := decodeIssue(t, rr)
	if got.AssignedTo != "admin-7" || got.Status != models.StatusOpen {
		t.Fatalf("assigned = %+v", got)
	}

	rr = s.do(t, jsonReq(http.MethodPatch, "/api/issues/"+is.ID+"/assign", `{"assignedTo":""}`))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("empty assignee: %d", rr.Code)
	}

	req := jsonReq(http.MethodPost, "/api/issues/"+is.ID+"/comments", `{"text":"  Looking into it  "}`)
	req.Header.Set(middleware.ActorHeader, "admin-7")
	got = decodeIssue(t, s.do(t, req))
	if len(got.Comments) != 1 || got.Comments[0].Text != "Looking into it" || got.Comments[0].Author != "admin-7" {
		t.Fatalf("comments = %+v", got.Comments)
	}

	rr = s.do(t, jsonReq(http.MethodPost, "/api/issues/"+is.ID+"/comments", `{"text":"   "}`))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("blank comment: %d", rr.Code)
	}

	rr = s.do(t, jsonReq(http.MethodPost, "/api/issues/missing/comments", `{"text":"hello"}`))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("comment on missing issue: %d", rr.Code)
	}
}

func TestStatsSummary(t *testing.T) {
	s := newTestServer(t)
	a := s.create(t, validForm())
	low := validForm()
	low.fields["priority"] = string(models.PriorityLow)
	s.create(t, low)
	_ = s.do(t, jsonReq(http.MethodPatch, "/api/issues/"+a.ID+"/status", `{"status":"Resolved"}`))

	rr := s.do(t, httptest.NewRequest(http.MethodGet, "/api/issues/stats", nil))
	var st models.IssueStats
	if err := json.Unmarshal(rr.Body.Bytes(), &st); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := models.IssueStats{Open: 1, Resolved: 1}
	if st != want {
		t.Fatalf("stats = %+v, want %+v", st, want)
	}
}

type failingPing struct{}

func (failingPing) Ping(context.Context) error { return errors.New("connection refused") }

func TestHealthReportsStore(t *testing.T) {
	rr := httptest.NewRecorder()
	Health(failingPing{}).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rr.Code != http.StatusServiceUnavailable || !strings.Contains(rr.Body.String(), "degraded") {
		t.Fatalf("health = %d %s", rr.Code, rr.Body.String())
	}
}

// closingRepo closes an issue right after the first Get reads it, standing in
// for a competing request that lands between the handler's read and write.
type closingRepo struct {
	repository.IssueRepository
	once sync.Once
}

func (r *closingRepo) Get(ctx context.Context, id string) (*models.Issue, error) {
	is, err := r.IssueRepository.Get(ctx, id)
	if err == nil && is != nil {
		r.once.Do(func() {
			_ = r.IssueRepository.UpdateStatus(ctx, id, is.Status, models.StatusClosed, models.DefaultClosedNote)
		})
	}
	return is, err
}

func TestStatusChangeLosesToConcurrentClose(t *testing.T) {
	var repo repository.IssueRepository
	s := newWrappedServer(t, func(inner repository.IssueRepository) repository.IssueRepository {
		repo = inner
		return &closingRepo{IssueRepository: inner}
	})
	is := s.create(t, validForm())

	rr := s.do(t, jsonReq(http.MethodPatch, "/api/issues/"+is.ID+"/status", `{"status":"In Progress"}`))
	if rr.Code != http.StatusConflict {
		t.Fatalf("status = %d body=%s", rr.Code, rr.Body.String())
	}
	got, err := repo.Get(context.Background(), is.ID)
	if err != nil || got.Status != models.StatusClosed {
		t.Fatalf("stored issue = %+v, %v; want Closed", got, err)
	}
}

func TestAssignRejectsBlankAssignee(t *testing.T) {
	s := newTestServer(t)
	is := s.create(t, validForm())
	_ = s.do(t, jsonReq(http.MethodPatch, "/api/issues/"+is.ID+"/assign", `{"assignedTo":"admin-7"}`))

	rr := s.do(t, jsonReq(http.MethodPatch, "/api/issues/"+is.ID+"/assign", `{"assignedTo":"   "}`))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("blank assignee: %d %s", rr.Code, rr.Body.String())
	}
	got := decodeIssue(t, s.do(t, httptest.NewRequest(http.MethodGet, "/api/issues/"+is.ID, nil)))
	if got.AssignedTo != "admin-7" {
		t.Fatalf("assignee = %q after blank assign", got.AssignedTo)
	}
}

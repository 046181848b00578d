package http

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"aptcost/internal/core"
	"aptcost/internal/memory"
	"aptcost/internal/store"
)

func newTestServer(t *testing.T, st store.ExpenseStore, authHash string) *Server {
	t.Helper()
	s := NewServer("127.0.0.1:0", st, authHash)
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })
	return s
}

func doRequest(s *Server, method, target string, form url.Values) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func seedStore(t *testing.T, st *memory.Store, typ, amount, description string) string {
	t.Helper()
	id, err := st.Create(context.Background(), core.RecordFields{
		Type:        typ,
		Amount:      amount,
		Description: description,
		Date:        core.NewDate(2024, 6, 1),
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return id
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, memory.New(), "")
	rec := doRequest(s, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestIndexRenders(t *testing.T) {
	s := newTestServer(t, memory.New(), "")
	rec := doRequest(s, http.MethodGet, "/", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Apartment Cost Tracker") {
		t.Error("index page missing title")
	}
}

func TestCreateExpense(t *testing.T) {
	st := memory.New()
	s := newTestServer(t, st, "")

	rec := doRequest(s, http.MethodPost, "/expenses", url.Values{
		"description": {"Stamp duty"},
		"amount":      {"350000"},
		"type":        {"cash"},
		"date":        {"2024-06-10"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %q)", rec.Code, rec.Body.String())
	}
	if trigger := rec.Header().Get("HX-Trigger"); !strings.Contains(trigger, "record:changed") {
		t.Errorf("HX-Trigger = %q, want record:changed event", trigger)
	}

	records, err := st.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 1 || records[0].Description != "Stamp duty" {
		t.Fatalf("unexpected records after create: %+v", records)
	}
}

func TestCreateExpenseValidation(t *testing.T) {
	st := memory.New()
	s := newTestServer(t, st, "")

	rec := doRequest(s, http.MethodPost, "/expenses", url.Values{
		"description": {""},
		"amount":      {"-5"},
		"date":        {""},
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		"Please enter a valid amount greater than 0",
		"Please enter a description",
		"Please select a date",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("validation body missing %q", want)
		}
	}

	if records, _ := st.List(context.Background()); len(records) != 0 {
		t.Errorf("expected no records after rejected create, got %d", len(records))
	}
}

func TestUpdateExpense(t *testing.T) {
	st := memory.New()
	s := newTestServer(t, st, "")
	id := seedStore(t, st, "cash", "10000", "Token advance")

	form := url.Values{
		"description": {"Token advance (revised)"},
		"amount":      {"12000"},
		"type":        {"cash"},
		"date":        {"2024-06-02"},
	}
	rec := doRequest(s, http.MethodPut, "/expenses/"+id, form)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %q)", rec.Code, rec.Body.String())
	}

	got, err := st.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Description != "Token advance (revised)" || got.Amount != "12000" {
		t.Errorf("record not updated: %+v", got)
	}

	rec = doRequest(s, http.MethodPut, "/expenses/does-not-exist", form)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown id status = %d, want 404", rec.Code)
	}
}

func TestDeleteExpense(t *testing.T) {
	st := memory.New()
	s := newTestServer(t, st, "")
	id := seedStore(t, st, "miscellaneous", "500", "Parking sticker")

	rec := doRequest(s, http.MethodDelete, "/expenses/"+id, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if records, _ := st.List(context.Background()); len(records) != 0 {
		t.Errorf("expected empty store after delete, got %d", len(records))
	}

	rec = doRequest(s, http.MethodDelete, "/expenses/"+id, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("double delete status = %d, want 404", rec.Code)
	}
}

func TestStatsPartial(t *testing.T) {
	st := memory.New()
	s := newTestServer(t, st, "")
	seedStore(t, st, "bankLoan", "5000000", "Disbursement 1")
	seedStore(t, st, "cash", "2000000", "Own contribution")

	rec := doRequest(s, http.MethodGet, "/ui/stats", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "₹70,00,000") {
		t.Errorf("stats missing invested total, body: %s", body)
	}
	if !strings.Contains(body, "70.0%") {
		t.Errorf("stats missing percent complete, body: %s", body)
	}
}

func TestSectionsSearch(t *testing.T) {
	st := memory.New()
	s := newTestServer(t, st, "")
	seedStore(t, st, "cash", "25000", "Registration fee")
	seedStore(t, st, "emi", "45000", "June EMI")

	rec := doRequest(s, http.MethodGet, "/ui/sections?q=registration", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Registration fee") {
		t.Error("matching record missing from filtered sections")
	}
	if strings.Contains(body, "June EMI") {
		t.Error("non-matching record present in filtered sections")
	}
}

func TestExport(t *testing.T) {
	st := memory.New()
	s := newTestServer(t, st, "")
	seedStore(t, st, "bankLoan", "100000", "Processing fee")

	rec := doRequest(s, http.MethodGet, "/export", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "spreadsheetml") {
		t.Errorf("Content-Type = %q, want xlsx", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "apartment-cost-tracker-") {
		t.Errorf("Content-Disposition = %q, want tracker filename", cd)
	}
	if body := rec.Body.Bytes(); len(body) < 4 || body[0] != 'P' || body[1] != 'K' {
		t.Error("export body is not a zip archive")
	}
}

func TestAuthGate(t *testing.T) {
	passphrase := "open sesame"
	sum := sha256.Sum256([]byte(passphrase))
	hash := hex.EncodeToString(sum[:])

	st := memory.New()
	s := newTestServer(t, st, hash)

	rec := doRequest(s, http.MethodGet, "/", nil)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("unauthenticated index status = %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/auth" {
		t.Errorf("redirect location = %q, want /auth", loc)
	}

	rec = doRequest(s, http.MethodPost, "/auth", url.Values{"passphrase": {"wrong"}})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong passphrase status = %d, want 401", rec.Code)
	}

	rec = doRequest(s, http.MethodPost, "/auth", url.Values{"passphrase": {passphrase}})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("correct passphrase status = %d, want 303", rec.Code)
	}
	var session *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookie {
			session = c
		}
	}
	if session == nil {
		t.Fatal("no session cookie set on successful auth")
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(session)
	authed := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(authed, req)
	if authed.Code != http.StatusOK {
		t.Fatalf("authenticated index status = %d, want 200", authed.Code)
	}

	// Partials answer 401 with an HX-Redirect instead of a 303.
	req = httptest.NewRequest(http.MethodGet, "/ui/stats", nil)
	req.Header.Set("HX-Request", "true")
	partial := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(partial, req)
	if partial.Code != http.StatusUnauthorized {
		t.Fatalf("partial status = %d, want 401", partial.Code)
	}
	if partial.Header().Get("HX-Redirect") != "/auth" {
		t.Error("partial missing HX-Redirect header")
	}
}

// flakyStore serves one good List then fails, to exercise stale fallback.
type flakyStore struct {
	*memory.Store
	calls int
}

func (f *flakyStore) List(ctx context.Context) ([]core.ExpenseRecord, error) {
	f.calls++
	if f.calls > 1 {
		return nil, errors.New("backend down")
	}
	return f.Store.List(ctx)
}

func TestStaleSnapshotFallback(t *testing.T) {
	inner := memory.New()
	flaky := &flakyStore{Store: inner}
	s := newTestServer(t, flaky, "")
	seedStore(t, inner, "cash", "1000", "Survives outage")

	if _, err := s.loadRecords(context.Background()); err != nil {
		t.Fatalf("first load: %v", err)
	}

	// Force a backend hit past the cache.
	s.invalidateSnapshot()
	records, err := s.loadRecords(context.Background())
	if err != nil {
		t.Fatalf("expected stale fallback, got error: %v", err)
	}
	if len(records) != 1 || records[0].Description != "Survives outage" {
		t.Errorf("stale snapshot mismatch: %+v", records)
	}
}

func TestRenderWithoutTemplates(t *testing.T) {
	s := newTestServer(t, memory.New(), "")
	s.templates = nil

	for _, target := range []string{"/", "/ui/stats", "/ui/sections"} {
		rec := doRequest(s, http.MethodGet, target, nil)
		if rec.Code != http.StatusInternalServerError {
			t.Errorf("GET %s without templates: status = %d, want 500", target, rec.Code)
		}
	}
}

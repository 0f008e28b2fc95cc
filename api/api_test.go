package api

import (
	"encoding/json"
	"math"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stattank/stattank/api/models"
	"github.com/stattank/stattank/tank"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	maxBatchSize = 10000
	s, err := NewServer()
	if err != nil {
		t.Fatalf("NewServer: %s", err)
	}
	s.BindTank(tank.New())
	s.RegisterRoutes()
	return s
}

func doJSON(s *Server, method, target, body string) *httptest.ResponseRecorder {
	var rdr *strings.Reader
	if body == "" {
		rdr = strings.NewReader("")
	} else {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rdr)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Macaron.ServeHTTP(rec, req)
	return rec
}

func TestAddBatchAndStats(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(s, "POST", "/add_batch/", `{"symbol": "ABC", "values": [1.0, 2.0, 3.0]}`)
	if rec.Code != 200 {
		t.Fatalf("add_batch: status %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(s, "GET", "/stats/?symbol=ABC&k=1", "")
	if rec.Code != 200 {
		t.Fatalf("stats: status %d, body %s", rec.Code, rec.Body.String())
	}
	var st models.StatsResp
	if err := json.Unmarshal(rec.Body.Bytes(), &st); err != nil {
		t.Fatalf("unmarshal: %s", err)
	}
	if st.Size != 3 || st.Min != 1 || st.Max != 3 || st.Last != 3 {
		t.Fatalf("size/min/max/last = %d/%v/%v/%v", st.Size, st.Min, st.Max, st.Last)
	}
	if st.Avg != 2 || math.Abs(st.Var-2.0/3.0) > 1e-12 {
		t.Fatalf("avg/var = %v/%v", st.Avg, st.Var)
	}
}

func TestStatsUnknownSymbol(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(s, "GET", "/stats/?symbol=NOPE&k=1", "")
	if rec.Code != 404 {
		t.Fatalf("status %d, want 404", rec.Code)
	}
}

func TestStatsBadParams(t *testing.T) {
	s := newTestServer(t)
	doJSON(s, "POST", "/add_batch/", `{"symbol": "ABC", "values": [1.0]}`)

	for _, target := range []string{
		"/stats/",
		"/stats/?symbol=ABC",
		"/stats/?symbol=ABC&k=0",
		"/stats/?symbol=ABC&k=9",
		"/stats/?symbol=ABC&k=nope",
		"/stats/?k=1",
	} {
		rec := doJSON(s, "GET", target, "")
		if rec.Code != 400 {
			t.Fatalf("%s: status %d, want 400", target, rec.Code)
		}
	}
}

func TestAddBatchValidation(t *testing.T) {
	s := newTestServer(t)

	for _, body := range []string{
		`{not json`,
		`{"values": [1.0]}`,
		`{"symbol": "ABC"}`,
		`{"symbol": "ABC", "values": null}`,
		`{"symbol": "   ", "values": [1.0]}`,
		`{"symbol": "ABC", "values": "nope"}`,
	} {
		rec := doJSON(s, "POST", "/add_batch/", body)
		if rec.Code != 400 {
			t.Fatalf("%s: status %d, want 400, body %s", body, rec.Code, rec.Body.String())
		}
	}
}

func TestAddBatchTooLarge(t *testing.T) {
	s := newTestServer(t)
	maxBatchSize = 3

	rec := doJSON(s, "POST", "/add_batch/", `{"symbol": "ABC", "values": [1, 2, 3, 4]}`)
	if rec.Code != 400 {
		t.Fatalf("status %d, want 400", rec.Code)
	}
	rec = doJSON(s, "POST", "/add_batch/", `{"symbol": "ABC", "values": [1, 2, 3]}`)
	if rec.Code != 200 {
		t.Fatalf("status %d, want 200", rec.Code)
	}
}

func TestStatsEmptyWindow(t *testing.T) {
	s := newTestServer(t)

	// all values get filtered out, so the aggregator exists but holds nothing
	rec := doJSON(s, "POST", "/add_batch/", `{"symbol": "ABC", "values": [1e200]}`)
	if rec.Code != 200 {
		t.Fatalf("add_batch: status %d", rec.Code)
	}
	rec = doJSON(s, "GET", "/stats/?symbol=ABC&k=1", "")
	if rec.Code != 404 {
		t.Fatalf("stats: status %d, want 404", rec.Code)
	}
}

func TestAddBatchEmptyValues(t *testing.T) {
	// an explicit empty array is a valid batch, unlike an absent values field
	s := newTestServer(t)
	rec := doJSON(s, "POST", "/add_batch/", `{"symbol": "ABC", "values": []}`)
	if rec.Code != 200 {
		t.Fatalf("status %d, want 200, body %s", rec.Code, rec.Body.String())
	}
	rec = doJSON(s, "GET", "/stats/?symbol=ABC&k=1", "")
	if rec.Code != 404 {
		t.Fatalf("stats after empty batch: status %d, want 404", rec.Code)
	}
	rec = doJSON(s, "POST", "/add_batch/", `{"symbol": "ABC", "values": [7]}`)
	if rec.Code != 200 {
		t.Fatalf("follow-up batch: status %d, want 200", rec.Code)
	}
	rec = doJSON(s, "GET", "/stats/?symbol=ABC&k=1", "")
	if rec.Code != 200 {
		t.Fatalf("stats after follow-up: status %d, want 200", rec.Code)
	}
}

func TestAppStatus(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(s, "GET", "/", "")
	if rec.Code != 200 {
		t.Fatalf("status %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "ok") {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}

func TestStatsFiltersAcrossBatches(t *testing.T) {
	s := newTestServer(t)

	doJSON(s, "POST", "/add_batch/", `{"symbol": "X", "values": [10, 20]}`)
	doJSON(s, "POST", "/add_batch/", `{"symbol": "X", "values": [1e200, 30]}`)

	rec := doJSON(s, "GET", "/stats/?symbol=X&k=1", "")
	if rec.Code != 200 {
		t.Fatalf("status %d", rec.Code)
	}
	var st models.StatsResp
	if err := json.Unmarshal(rec.Body.Bytes(), &st); err != nil {
		t.Fatalf("unmarshal: %s", err)
	}
	if st.Size != 3 || st.Min != 10 || st.Max != 30 || st.Last != 30 {
		t.Fatalf("size/min/max/last = %d/%v/%v/%v", st.Size, st.Min, st.Max, st.Last)
	}
}

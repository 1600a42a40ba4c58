package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/inklet/inklet/pkg/store"
)

const sampleDoc = `<mxfile name="flow">
  <diagram id="p1" name="Page-1">
    <mxGraphModel grid="1" gridSize="10">
      <root>
        <mxCell id="0" />
        <mxCell id="1" parent="0" />
        <mxCell id="a" value="Start" style="rounded=1;" vertex="1" parent="1">
          <mxGeometry x="20" y="20" width="120" height="60" as="geometry" />
        </mxCell>
        <mxCell id="e" style="edgeStyle=orthogonalEdgeStyle;" edge="1" parent="1" source="a" target="ghost">
          <mxGeometry relative="1" as="geometry" />
        </mxCell>
      </root>
    </mxGraphModel>
  </diagram>
</mxfile>`

func newTestServer(t *testing.T) (*Server, store.Store) {
	t.Helper()
	st := store.NewMemoryStore()
	t.Cleanup(func() { st.Close() })
	return New(st, log.New(io.Discard)), st
}

func do(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rdr)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := do(t, srv, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestPutGetDeleteLifecycle(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := do(t, srv, http.MethodPut, "/documents/flow", sampleDoc)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("put status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = do(t, srv, http.MethodGet, "/documents/flow", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
	if got := rec.Body.String(); got != sampleDoc {
		t.Errorf("get body differs:\n%s", got)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "application/xml") {
		t.Errorf("content type = %q", ct)
	}

	rec = do(t, srv, http.MethodGet, "/documents", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var list struct {
		Documents []string `json:"documents"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list.Documents) != 1 || list.Documents[0] != "flow" {
		t.Errorf("list = %v, want [flow]", list.Documents)
	}

	rec = do(t, srv, http.MethodDelete, "/documents/flow", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}

	rec = do(t, srv, http.MethodGet, "/documents/flow", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete status = %d", rec.Code)
	}
}

func TestGetMissingReturnsCodedError(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := do(t, srv, http.MethodGet, "/documents/nope", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if body.Error.Code != "DOCUMENT_NOT_FOUND" {
		t.Errorf("code = %q, want DOCUMENT_NOT_FOUND", body.Error.Code)
	}
}

func TestPutRejectsMalformedDocument(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := do(t, srv, http.MethodPut, "/documents/bad", "not xml at all")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "MALFORMED_XML") {
		t.Errorf("body = %s, want MALFORMED_XML code", rec.Body.String())
	}
}

func TestPutRejectsInvalidName(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := do(t, srv, http.MethodPut, "/documents/..", sampleDoc)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "INVALID_NAME") {
		t.Errorf("body = %s, want INVALID_NAME code", rec.Body.String())
	}
}

func TestValidateReportsDangling(t *testing.T) {
	srv, st := newTestServer(t)
	if err := st.Put(t.Context(), "flow", []byte(sampleDoc)); err != nil {
		t.Fatal(err)
	}

	rec := do(t, srv, http.MethodPost, "/documents/flow/validate", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var report struct {
		Pages    int `json:"pages"`
		Elements int `json:"elements"`
		Dangling []struct {
			Connector string `json:"connector"`
			End       string `json:"end"`
			Ref       string `json:"ref"`
		} `json:"dangling"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.Pages != 1 || report.Elements != 2 {
		t.Errorf("pages = %d, elements = %d, want 1 and 2", report.Pages, report.Elements)
	}
	if len(report.Dangling) != 1 {
		t.Fatalf("dangling = %d entries, want 1", len(report.Dangling))
	}
	if report.Dangling[0].Connector != "e" || report.Dangling[0].End != "target" || report.Dangling[0].Ref != "ghost" {
		t.Errorf("dangling entry = %+v", report.Dangling[0])
	}
}

package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestOKPage_TotalPages(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	OKPage(c, []int{1, 2}, 21, 1, 10)

	var body struct {
		Data struct {
			Pagination Pagination `json:"pagination"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Data.Pagination.TotalPages != 3 {
		t.Errorf("expected 3 pages, got %d", body.Data.Pagination.TotalPages)
	}
}

func TestAccepted(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Accepted(c, gin.H{"sync": "pending"})

	if w.Code != http.StatusAccepted {
		t.Errorf("expected 202, got %d", w.Code)
	}
}

func TestFileDownload_Header(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	FileDownload(c, "text/calendar", "bimestres 2026.ics", []byte("BEGIN:VCALENDAR"))

	got := w.Header().Get("Content-Disposition")
	want := "attachment; filename*=UTF-8''bimestres%202026.ics"
	if got != want {
		t.Errorf("Content-Disposition = %q, want %q", got, want)
	}
	if w.Header().Get("Content-Type") != "text/calendar" {
		t.Errorf("unexpected content type %q", w.Header().Get("Content-Type"))
	}
}

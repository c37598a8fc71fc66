package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"cnc_sender/internal/models"
	"cnc_sender/internal/service"
)

func TestJobHandlers_StartAndProgress(t *testing.T) {
	jobs := &mockJobs{progress: models.JobProgress{
		Status:          models.JobRunning,
		CurrentLine:     4,
		TotalLines:      100,
		PercentComplete: 4,
	}}
	s := &service.Service{Authorization: &mockAuth{parseID: 1}, Jobs: jobs}
	r := newTestRouter(s)

	w := doRequest(t, r, http.MethodPost, "/api/v1/jobs/", "valid",
		`{"name":"bracket.nc","gcode":"G90\nG0 X1"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("start status=%d, body=%s", w.Code, w.Body.String())
	}
	if jobs.lastStart.Name != "bracket.nc" || jobs.lastStart.Gcode != "G90\nG0 X1" {
		t.Fatalf("start params: %+v", jobs.lastStart)
	}

	w = doRequest(t, r, http.MethodGet, "/api/v1/jobs/progress", "valid", "")
	if w.Code != http.StatusOK {
		t.Fatalf("progress status=%d", w.Code)
	}
	var p models.JobProgress
	if err := json.Unmarshal(w.Body.Bytes(), &p); err != nil {
		t.Fatalf("unmarshal progress: %v", err)
	}
	if p.Status != models.JobRunning || p.CurrentLine != 4 || p.TotalLines != 100 {
		t.Fatalf("progress = %+v", p)
	}
}

func TestJobHandlers_StartConflict(t *testing.T) {
	jobs := &mockJobs{startErr: errors.New("a job is already running")}
	s := &service.Service{Authorization: &mockAuth{parseID: 1}, Jobs: jobs}
	r := newTestRouter(s)

	w := doRequest(t, r, http.MethodPost, "/api/v1/jobs/", "valid", `{"gcode":"G0 X1"}`)
	if w.Code != http.StatusConflict {
		t.Fatalf("status=%d, want 409", w.Code)
	}
}

func TestJobHandlers_MissingGcode(t *testing.T) {
	s := &service.Service{Authorization: &mockAuth{parseID: 1}, Jobs: &mockJobs{}}
	r := newTestRouter(s)

	w := doRequest(t, r, http.MethodPost, "/api/v1/jobs/", "valid", `{"name":"x"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d, want 400", w.Code)
	}
}

func TestJobHandlers_Lifecycle(t *testing.T) {
	jobs := &mockJobs{}
	s := &service.Service{Authorization: &mockAuth{parseID: 1}, Jobs: jobs}
	r := newTestRouter(s)

	for _, p := range []string{"/api/v1/jobs/pause", "/api/v1/jobs/resume", "/api/v1/jobs/stop"} {
		if w := doRequest(t, r, http.MethodPost, p, "valid", ""); w.Code != http.StatusOK {
			t.Fatalf("%s status=%d, body=%s", p, w.Code, w.Body.String())
		}
	}
	want := []string{"Pause", "Resume", "Stop"}
	for i := range want {
		if jobs.calls[i] != want[i] {
			t.Fatalf("calls = %v, want %v", jobs.calls, want)
		}
	}
}

func TestJobHandlers_History(t *testing.T) {
	jobs := &mockJobs{historyResp: []models.JobRecord{
		{Name: "a.nc", Outcome: models.JobCompleted, FinishedAt: time.Now()},
	}}
	s := &service.Service{Authorization: &mockAuth{parseID: 1}, Jobs: jobs}
	r := newTestRouter(s)

	w := doRequest(t, r, http.MethodGet, "/api/v1/jobs/history?limit=5", "valid", "")
	if w.Code != http.StatusOK {
		t.Fatalf("history status=%d, body=%s", w.Code, w.Body.String())
	}
	if jobs.lastLimit != 5 {
		t.Fatalf("limit = %d, want 5", jobs.lastLimit)
	}
	var resp struct {
		Count int                `json:"count"`
		Jobs  []models.JobRecord `json:"jobs"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal history: %v", err)
	}
	if resp.Count != 1 || len(resp.Jobs) != 1 || resp.Jobs[0].Name != "a.nc" {
		t.Fatalf("history response: %+v", resp)
	}
}

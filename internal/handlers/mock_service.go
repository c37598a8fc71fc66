package handlers

import (
	"context"
	"net/http"
	"time"

	"cnc_sender/internal/models"
	"cnc_sender/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	signUpID      int
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	parseID       int
	parseErr      error

	lastSignUpUsername string
	lastGenUsername    string
	lastParseToken     string
}

func (m *mockAuth) SignUp(username, password string) (int, error) {
	m.lastSignUpUsername = username
	return m.signUpID, m.signUpErr
}
func (m *mockAuth) GenerateToken(username, password string) (string, error) {
	m.lastGenUsername = username
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

type mockMachine struct {
	err error

	calls        []string
	lastConnect  service.ConnectParams
	lastJog      service.JogParams
	lastOverride service.OverrideParams
	lastSend     string
	lastZero     string
}

func (m *mockMachine) record(name string) { m.calls = append(m.calls, name) }

func (m *mockMachine) Connect(ctx context.Context, p service.ConnectParams) error {
	m.record("Connect")
	m.lastConnect = p
	return m.err
}
func (m *mockMachine) Disconnect(ctx context.Context) error { m.record("Disconnect"); return m.err }
func (m *mockMachine) Send(line string) error               { m.record("Send"); m.lastSend = line; return m.err }
func (m *mockMachine) Home() error                          { m.record("Home"); return m.err }
func (m *mockMachine) Unlock() error                        { m.record("Unlock"); return m.err }
func (m *mockMachine) JogCancel() error                     { m.record("JogCancel"); return m.err }
func (m *mockMachine) FeedHold() error                      { m.record("FeedHold"); return m.err }
func (m *mockMachine) CycleResume() error                   { m.record("CycleResume"); return m.err }
func (m *mockMachine) GoToZero() error                      { m.record("GoToZero"); return m.err }
func (m *mockMachine) SoftReset() error                     { m.record("SoftReset"); return m.err }

func (m *mockMachine) SetZero(axes string) error {
	m.record("SetZero")
	m.lastZero = axes
	return m.err
}

func (m *mockMachine) Jog(p service.JogParams) error {
	m.record("Jog")
	m.lastJog = p
	return m.err
}

func (m *mockMachine) SetOverride(p service.OverrideParams) error {
	m.record("SetOverride")
	m.lastOverride = p
	return m.err
}

type mockJobs struct {
	startErr   error
	actionErr  error
	historyErr error

	lastStart   service.JobParams
	lastLimit   int
	progress    models.JobProgress
	historyResp []models.JobRecord
	calls       []string
}

func (m *mockJobs) Start(ctx context.Context, p service.JobParams) error {
	m.calls = append(m.calls, "Start")
	m.lastStart = p
	return m.startErr
}
func (m *mockJobs) Pause() error  { m.calls = append(m.calls, "Pause"); return m.actionErr }
func (m *mockJobs) Resume() error { m.calls = append(m.calls, "Resume"); return m.actionErr }
func (m *mockJobs) Stop() error   { m.calls = append(m.calls, "Stop"); return m.actionErr }

func (m *mockJobs) Progress() models.JobProgress { return m.progress }

func (m *mockJobs) History(ctx context.Context, limit int) ([]models.JobRecord, error) {
	m.lastLimit = limit
	return m.historyResp, m.historyErr
}

type mockMonitoring struct {
	status    models.MachineStatus
	hasStatus bool
	connected bool
	pending   int
}

func (m *mockMonitoring) Status() (models.MachineStatus, bool) { return m.status, m.hasStatus }
func (m *mockMonitoring) Connected() bool                      { return m.connected }
func (m *mockMonitoring) Pending() int                         { return m.pending }

type mockEventLog struct {
	resp     []models.MachineEvent
	err      error
	lastFrom time.Time
	lastTo   time.Time
	lastType string
}

func (m *mockEventLog) List(ctx context.Context, f service.LogFilter) ([]models.MachineEvent, error) {
	m.lastFrom = f.From
	m.lastTo = f.To
	m.lastType = f.Type
	return m.resp, m.err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}

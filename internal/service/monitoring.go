package service

import "cnc_sender/internal/models"

type MonitoringService struct {
	eng Controller
}

func NewMonitoringService(eng Controller) *MonitoringService {
	return &MonitoringService{eng: eng}
}

// Status returns the latest status snapshot; the bool is false until the
// firmware has reported at least once this session.
func (s *MonitoringService) Status() (models.MachineStatus, bool) {
	return s.eng.Status()
}

func (s *MonitoringService) Connected() bool { return s.eng.Connected() }

// Pending reports how many sent lines still await a firmware reply.
func (s *MonitoringService) Pending() int { return s.eng.PendingCount() }

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cnc_sender/internal/models"
	"cnc_sender/internal/repository"
)

const defaultBaud = 115200

var (
	errEmptyDevice    = errors.New("device path is required")
	errInvalidAxis    = errors.New("invalid axis: must be X, Y, or Z")
	errInvalidJog     = errors.New("invalid jog: distance must be non-zero and feed > 0")
	errUnknownChannel = errors.New("unknown override channel: must be feed, spindle, or rapid")
)

type MachineService struct {
	eng       Controller
	eventRepo repository.EventRepo
}

func NewMachineService(eng Controller, eventRepo repository.EventRepo) *MachineService {
	return &MachineService{eng: eng, eventRepo: eventRepo}
}

// Connect opens the serial session and logs CONNECT.
// The matching DISCONNECT row is written by the recorder when the
// engine announces the session end.
func (s *MachineService) Connect(ctx context.Context, p ConnectParams) error {
	device := strings.TrimSpace(p.Device)
	if device == "" {
		return errEmptyDevice
	}
	baud := p.Baud
	if baud <= 0 {
		baud = defaultBaud
	}

	if err := s.eng.Connect(device, baud); err != nil {
		return err
	}

	return s.eventRepo.Append(ctx, models.MachineEvent{
		Type:        "CONNECT",
		Description: fmt.Sprintf("connected to %s @ %d baud", device, baud),
		Metadata:    map[string]any{"device": device, "baud": baud},
	})
}

func (s *MachineService) Disconnect(ctx context.Context) error {
	return s.eng.Disconnect()
}

func (s *MachineService) Send(line string) error { return s.eng.Send(line) }
func (s *MachineService) Home() error            { return s.eng.Home() }
func (s *MachineService) Unlock() error          { return s.eng.Unlock() }
func (s *MachineService) JogCancel() error       { return s.eng.JogCancel() }
func (s *MachineService) FeedHold() error        { return s.eng.FeedHold() }
func (s *MachineService) CycleResume() error     { return s.eng.CycleResume() }
func (s *MachineService) GoToZero() error        { return s.eng.GoToZero() }
func (s *MachineService) SoftReset() error       { return s.eng.SoftReset() }

func (s *MachineService) SetZero(axes string) error {
	return s.eng.SetZero(strings.ToUpper(strings.TrimSpace(axes)))
}

// Jog validates the request shape before handing it to the engine.
func (s *MachineService) Jog(p JogParams) error {
	axis := strings.ToUpper(strings.TrimSpace(p.Axis))
	if len(axis) != 1 || !strings.ContainsAny(axis, "XYZ") {
		return errInvalidAxis
	}
	if p.Distance == 0 || p.Feed <= 0 {
		return errInvalidJog
	}
	return s.eng.Jog(rune(axis[0]), p.Distance, p.Feed)
}

func (s *MachineService) SetOverride(p OverrideParams) error {
	switch strings.ToLower(strings.TrimSpace(p.Kind)) {
	case "feed":
		return s.eng.SetFeedOverride(p.Target)
	case "spindle":
		return s.eng.SetSpindleOverride(p.Target)
	case "rapid":
		return s.eng.SetRapidOverride(p.Target)
	default:
		return errUnknownChannel
	}
}

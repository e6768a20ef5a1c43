package airfryer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/joshp123/condor/internal/logger"
)

// minCookSeconds is the floor the firmware accepts for the cook timer;
// subtracting below it would error out the device UI.
const minCookSeconds = 60

// ErrUnsupported is returned for intents the resolved model cannot perform.
var ErrUnsupported = errors.New("unsupported on this model")

// Commander is the slice of the device client the sequencer needs.
type Commander interface {
	Send(ctx context.Context, fields map[string]any) (Status, error)
}

// AdjustMode selects the direction of a time or temperature adjustment.
type AdjustMode string

const (
	AdjustAdd      AdjustMode = "add"
	AdjustSubtract AdjustMode = "subtract"
)

// StartCookingParams parameterizes the StartCooking intent.
type StartCookingParams struct {
	Temp         int
	TotalTime    int
	StartCooking bool
	ForceRefresh bool
	Airspeed     int
}

// AdjustParams parameterizes the AdjustTime and AdjustTemp intents.
type AdjustParams struct {
	Delta          int
	Mode           AdjustMode
	RestartCooking bool
	ForceRefresh   bool
}

// Sequencer turns high-level intents into ordered low-level command
// sequences against the device's observed state. The firmware has an
// implicit state machine: an active cook must be paused before its settings
// change, and each command needs a settle delay before the next write or
// read lands.
//
// One sequence runs at a time per device. The mutex is held for the whole
// sequence, settle delays included, so a second intent waits for the first
// (first-come-first-served) instead of interleaving partial sequences.
type Sequencer struct {
	device Commander
	poller *Poller
	caps   Capabilities
	settle time.Duration
	log    *logger.Logger

	mu sync.Mutex

	commands atomic.Uint64
	failures atomic.Uint64
}

func NewSequencer(device Commander, poller *Poller, caps Capabilities, settle time.Duration, log *logger.Logger) *Sequencer {
	return &Sequencer{
		device: device,
		poller: poller,
		caps:   caps,
		settle: settle,
		log:    log,
	}
}

// TurnOn wakes the device into precook mode.
func (s *Sequencer) TurnOn(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.send(ctx, precookCommand()); err != nil {
		return err
	}
	if err := s.settleWait(ctx); err != nil {
		return err
	}
	return s.refresh(ctx)
}

// TurnOff walks the device down to power-save, pausing an active cook and
// passing through the main menu first.
func (s *Sequencer) TurnOff(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	status, err := s.currentStatus(ctx, false)
	if err != nil {
		return err
	}
	state := status.String(FieldStatus, "")

	if state == StatusCooking {
		if err := s.sendSettled(ctx, statusCommand(StatusPause)); err != nil {
			return err
		}
	}
	if state != StatusMainMenu {
		if err := s.sendSettled(ctx, statusCommand(StatusMainMenu)); err != nil {
			return err
		}
	}
	if err := s.sendSettled(ctx, statusCommand(StatusPowersave)); err != nil {
		return err
	}
	return s.refresh(ctx)
}

// StartCooking programs temperature and timer and optionally starts the
// cook. A device already cooking is left alone.
func (s *Sequencer) StartCooking(ctx context.Context, params StartCookingParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	status, err := s.currentStatus(ctx, params.ForceRefresh)
	if err != nil {
		return err
	}
	state := status.String(FieldStatus, "")
	if state == StatusCooking {
		return nil
	}

	if state == StatusPause || state == StatusFinish {
		if err := s.sendSettled(ctx, statusCommand(StatusMainMenu)); err != nil {
			return err
		}
	}

	if err := s.sendSettled(ctx, precookCommand()); err != nil {
		return err
	}

	fields := map[string]any{
		FieldTemp:            params.Temp,
		FieldMethod:          0,
		FieldProbeRequired:   false,
		s.caps.TimeTotalField: params.TotalTime,
		FieldTempUnit:        false,
	}
	if s.caps.Airspeed {
		fields[FieldAirspeed] = params.Airspeed
	}
	if err := s.send(ctx, fields); err != nil {
		return err
	}

	if params.StartCooking {
		if err := s.settleWait(ctx); err != nil {
			return err
		}
		if err := s.send(ctx, statusCommand(StatusCooking)); err != nil {
			return err
		}
	}

	if err := s.settleWait(ctx); err != nil {
		return err
	}
	return s.refresh(ctx)
}

// AdjustTime shifts the cook timer by a delta. Subtraction floors at the
// firmware minimum of 60 seconds. A running cook is paused first and
// optionally resumed; a paused or precook device is adjusted in place; any
// other state is a no-op.
func (s *Sequencer) AdjustTime(ctx context.Context, params AdjustParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	status, err := s.currentStatus(ctx, params.ForceRefresh)
	if err != nil {
		return err
	}
	state := status.String(FieldStatus, "")
	current := status.Int(s.caps.TimeTotalField, 0)
	target := adjustTime(current, params.Delta, params.Mode)

	switch state {
	case StatusCooking:
		if err := s.sendSettled(ctx, statusCommand(StatusPause)); err != nil {
			return err
		}
		if err := s.sendSettled(ctx, map[string]any{s.caps.TimeTotalField: target}); err != nil {
			return err
		}
		if params.RestartCooking {
			if err := s.sendSettled(ctx, statusCommand(StatusCooking)); err != nil {
				return err
			}
		}
		return s.refresh(ctx)
	case StatusPause, StatusPrecook:
		if err := s.sendSettled(ctx, map[string]any{s.caps.TimeTotalField: target}); err != nil {
			return err
		}
		return s.refresh(ctx)
	default:
		return nil
	}
}

// AdjustTemp shifts the target temperature by a delta. Same state handling
// as AdjustTime, without a floor.
func (s *Sequencer) AdjustTemp(ctx context.Context, params AdjustParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	status, err := s.currentStatus(ctx, params.ForceRefresh)
	if err != nil {
		return err
	}
	state := status.String(FieldStatus, "")
	target := adjustTemp(status.Int(FieldTemp, 0), params.Delta, params.Mode)

	switch state {
	case StatusCooking:
		if err := s.sendSettled(ctx, statusCommand(StatusPause)); err != nil {
			return err
		}
		if err := s.send(ctx, map[string]any{FieldTemp: target}); err != nil {
			return err
		}
		if params.RestartCooking {
			if err := s.settleWait(ctx); err != nil {
				return err
			}
			if err := s.send(ctx, statusCommand(StatusCooking)); err != nil {
				return err
			}
		}
		if err := s.settleWait(ctx); err != nil {
			return err
		}
		return s.refresh(ctx)
	case StatusPause, StatusPrecook:
		if err := s.sendSettled(ctx, map[string]any{FieldTemp: target}); err != nil {
			return err
		}
		return s.refresh(ctx)
	default:
		return nil
	}
}

// ToggleAirspeed flips between the two fan speeds. Applying it twice lands
// back on the original speed.
func (s *Sequencer) ToggleAirspeed(ctx context.Context) error {
	if !s.caps.Airspeed {
		return fmt.Errorf("%w: airspeed control", ErrUnsupported)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	status, err := s.currentStatus(ctx, true)
	if err != nil {
		return err
	}
	state := status.String(FieldStatus, "")
	next := toggleAirspeed(status.Int(FieldAirspeed, 0))

	switch state {
	case StatusCooking:
		if err := s.sendSettled(ctx, statusCommand(StatusPause)); err != nil {
			return err
		}
		if err := s.sendSettled(ctx, map[string]any{FieldAirspeed: next}); err != nil {
			return err
		}
		if err := s.sendSettled(ctx, statusCommand(StatusCooking)); err != nil {
			return err
		}
		return s.refresh(ctx)
	case StatusPrecook, StatusPause:
		if err := s.sendSettled(ctx, map[string]any{FieldAirspeed: next}); err != nil {
			return err
		}
		return s.refresh(ctx)
	default:
		return nil
	}
}

// Pause pauses unconditionally.
func (s *Sequencer) Pause(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sendSettled(ctx, statusCommand(StatusPause)); err != nil {
		return err
	}
	return s.refresh(ctx)
}

// Resume starts or resumes cooking unconditionally.
func (s *Sequencer) Resume(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sendSettled(ctx, statusCommand(StatusCooking)); err != nil {
		return err
	}
	return s.refresh(ctx)
}

// Stop ends the current cook and returns to the main menu, pausing first
// when the device is actively cooking.
func (s *Sequencer) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	status, err := s.currentStatus(ctx, true)
	if err != nil {
		return err
	}

	if status.String(FieldStatus, "") == StatusCooking {
		if err := s.sendSettled(ctx, statusCommand(StatusPause)); err != nil {
			return err
		}
	}
	if err := s.sendSettled(ctx, statusCommand(StatusMainMenu)); err != nil {
		return err
	}
	return s.refresh(ctx)
}

// Stats returns command counters for metrics export. Lock-free so metric
// scrapes never wait behind a running sequence.
func (s *Sequencer) Stats() (commands, failures uint64) {
	return s.commands.Load(), s.failures.Load()
}

// currentStatus reads the observed device state a sequence decides against.
// With force it fetches fresh; otherwise the cached snapshot is used,
// falling back to one fetch when no usable snapshot exists yet.
func (s *Sequencer) currentStatus(ctx context.Context, force bool) (Status, error) {
	if force {
		status, err := s.poller.Refresh(ctx)
		if err != nil {
			return nil, err
		}
		return status, nil
	}

	if status, ok := s.poller.Snapshot(); ok {
		return status, nil
	}
	return s.poller.Refresh(ctx)
}

func (s *Sequencer) send(ctx context.Context, fields map[string]any) error {
	s.commands.Add(1)
	if _, err := s.device.Send(ctx, fields); err != nil {
		s.failures.Add(1)
		s.log.Warnw("command failed", "fields", fields, "error", err)
		return err
	}
	return nil
}

// sendSettled sends one command then waits for the firmware to apply it.
func (s *Sequencer) sendSettled(ctx context.Context, fields map[string]any) error {
	if err := s.send(ctx, fields); err != nil {
		return err
	}
	return s.settleWait(ctx)
}

func (s *Sequencer) settleWait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(s.settle):
		return nil
	}
}

func (s *Sequencer) refresh(ctx context.Context) error {
	_, err := s.poller.Refresh(ctx)
	return err
}

func statusCommand(state string) map[string]any {
	return map[string]any{FieldStatus: state}
}

// precookCommand is the wake-up bundle: precook mode, manual method, probe
// unused, Celsius display.
func precookCommand() map[string]any {
	return map[string]any{
		FieldProbeRequired: false,
		FieldMethod:        0,
		FieldStatus:        StatusPrecook,
		FieldTempUnit:      false,
	}
}

// adjustTime computes the new cook timer. Subtraction never goes below the
// firmware minimum.
func adjustTime(current, delta int, mode AdjustMode) int {
	if mode == AdjustSubtract {
		next := current - delta
		if next < minCookSeconds {
			return minCookSeconds
		}
		return next
	}
	return current + delta
}

func adjustTemp(current, delta int, mode AdjustMode) int {
	if mode == AdjustSubtract {
		return current - delta
	}
	return current + delta
}

func toggleAirspeed(current int) int {
	if current == 2 {
		return 1
	}
	return 2
}

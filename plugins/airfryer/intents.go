package airfryer

import (
	"context"
	"fmt"
)

// Action names, the externally visible intent surface.
const (
	ActionTurnOn         = "turn_on"
	ActionTurnOff        = "turn_off"
	ActionStartCooking   = "start_cooking"
	ActionAdjustTime     = "adjust_time"
	ActionAdjustTemp     = "adjust_temp"
	ActionToggleAirspeed = "toggle_airspeed"
	ActionPause          = "pause"
	ActionStartResume    = "start_resume"
	ActionStop           = "stop"
)

// Actions lists the intents available for a capability set.
func Actions(caps Capabilities) []string {
	actions := []string{
		ActionTurnOn,
		ActionTurnOff,
		ActionStartCooking,
		ActionAdjustTime,
		ActionAdjustTemp,
		ActionPause,
		ActionStartResume,
		ActionStop,
	}
	if caps.Airspeed {
		actions = append(actions, ActionToggleAirspeed)
	}
	return actions
}

// ActionParams carries the optional parameters of an intent invocation.
// Pointers distinguish "absent, use the default" from explicit zero values.
type ActionParams struct {
	Temp           *int   `json:"temp,omitempty"`
	TotalTime      *int   `json:"total_time,omitempty"`
	Time           *int   `json:"time,omitempty"`
	Method         string `json:"method,omitempty"`
	StartCooking   *bool  `json:"start_cooking,omitempty"`
	RestartCooking *bool  `json:"restart_cooking,omitempty"`
	ForceUpdate    *bool  `json:"force_update,omitempty"`
	Airspeed       *int   `json:"airspeed,omitempty"`
}

// Dispatch runs one named intent through the sequencer, applying parameter
// defaults. Unknown actions and malformed parameters fail before any device
// command is issued.
func (s *Sequencer) Dispatch(ctx context.Context, action string, params ActionParams) error {
	switch action {
	case ActionTurnOn:
		return s.TurnOn(ctx)
	case ActionTurnOff:
		return s.TurnOff(ctx)
	case ActionStartCooking:
		return s.StartCooking(ctx, StartCookingParams{
			Temp:         intOr(params.Temp, 180),
			TotalTime:    intOr(params.TotalTime, 60),
			StartCooking: boolOr(params.StartCooking, true),
			ForceRefresh: boolOr(params.ForceUpdate, true),
			Airspeed:     intOr(params.Airspeed, 2),
		})
	case ActionAdjustTime:
		adjust, err := adjustParams(params.Time, params)
		if err != nil {
			return err
		}
		return s.AdjustTime(ctx, adjust)
	case ActionAdjustTemp:
		adjust, err := adjustParams(params.Temp, params)
		if err != nil {
			return err
		}
		return s.AdjustTemp(ctx, adjust)
	case ActionToggleAirspeed:
		return s.ToggleAirspeed(ctx)
	case ActionPause:
		return s.Pause(ctx)
	case ActionStartResume:
		return s.Resume(ctx)
	case ActionStop:
		return s.Stop(ctx)
	default:
		return fmt.Errorf("unknown action %q", action)
	}
}

func adjustParams(delta *int, params ActionParams) (AdjustParams, error) {
	if delta == nil {
		return AdjustParams{}, fmt.Errorf("missing adjustment value")
	}

	mode := AdjustMode(params.Method)
	if mode != AdjustAdd && mode != AdjustSubtract {
		return AdjustParams{}, fmt.Errorf("method must be %q or %q", AdjustAdd, AdjustSubtract)
	}

	return AdjustParams{
		Delta:          *delta,
		Mode:           mode,
		RestartCooking: boolOr(params.RestartCooking, true),
		ForceRefresh:   boolOr(params.ForceUpdate, true),
	}, nil
}

func intOr(v *int, fallback int) int {
	if v != nil {
		return *v
	}
	return fallback
}

func boolOr(v *bool, fallback bool) bool {
	if v != nil {
		return *v
	}
	return fallback
}

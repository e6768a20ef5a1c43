package airfryer

import (
	"math"
	"time"
)

// Sensor names exposed over MQTT, HTTP, and metrics.
const (
	SensorStatus         = "status"
	SensorTemp           = "temp"
	SensorTotalTime      = "total_time"
	SensorTimeRemaining  = "time_remaining"
	SensorProgress       = "progress"
	SensorDialog         = "dialog"
	SensorAirspeed       = "airspeed"
	SensorTempProbe      = "temp_probe"
	SensorDrawerOpen     = "drawer_open"
	SensorProbeConnected = "probe_connected"
	SensorTimestamp      = "timestamp"
)

// Sensor is one flat (key, transform, default) descriptor evaluated against
// a status snapshot. The default is reported when no usable snapshot exists.
type Sensor struct {
	Key     string
	Default any
	Value   func(Status) any
}

// timestampLayouts covers the formats seen from different firmware builds.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// Sensors builds the descriptor table for a capability set. Airspeed and
// probe sensors only exist on hardware that has them.
func Sensors(caps Capabilities, replaceTimestamp bool, now func() time.Time) []Sensor {
	if now == nil {
		now = time.Now
	}

	sensors := []Sensor{
		{Key: SensorStatus, Default: "offline", Value: func(s Status) any {
			return s.String(FieldStatus, "unknown")
		}},
		{Key: SensorTemp, Default: 0, Value: func(s Status) any {
			return s.Int(FieldTemp, 0)
		}},
		{Key: SensorTotalTime, Default: 0, Value: func(s Status) any {
			if timerIdle(s, caps) {
				return 0
			}
			return s.Int(caps.TimeTotalField, 0)
		}},
		{Key: SensorTimeRemaining, Default: 0, Value: func(s Status) any {
			if timerIdle(s, caps) {
				return 0
			}
			return s.Int(caps.TimeRemainingField, 0)
		}},
		{Key: SensorProgress, Default: 0.0, Value: func(s Status) any {
			return Progress(s, caps)
		}},
		{Key: SensorDialog, Default: "none", Value: func(s Status) any {
			return s.String(FieldDialog, "none")
		}},
		{Key: SensorDrawerOpen, Default: false, Value: func(s Status) any {
			return s.Bool(FieldDrawerOpen, false)
		}},
		{Key: SensorTimestamp, Default: "", Value: func(s Status) any {
			return finishTimestamp(s, caps, replaceTimestamp, now)
		}},
	}

	if caps.Airspeed {
		sensors = append(sensors, Sensor{Key: SensorAirspeed, Default: 0, Value: func(s Status) any {
			return s.Int(FieldAirspeed, 0)
		}})
	}
	if caps.Probe {
		sensors = append(sensors,
			Sensor{Key: SensorTempProbe, Default: 0, Value: func(s Status) any {
				return s.Int(FieldTempProbe, 0)
			}},
			Sensor{Key: SensorProbeConnected, Default: false, Value: func(s Status) any {
				return !s.Bool(FieldProbeUnplugged, true)
			}},
		)
	}

	return sensors
}

// Evaluate renders the full sensor map for one snapshot. With ok false
// (no snapshot, or the latest refresh failed) every sensor reports its
// offline default.
func Evaluate(sensors []Sensor, status Status, ok bool) map[string]any {
	out := make(map[string]any, len(sensors))
	for _, sensor := range sensors {
		if !ok {
			out[sensor.Key] = sensor.Default
			continue
		}
		out[sensor.Key] = sensor.Value(status)
	}
	return out
}

// Progress returns cook progress in percent, rounded to one decimal.
// Zero whenever the timer is idle or total time is zero, so repeated
// evaluation of the same snapshot always yields the same value.
func Progress(s Status, caps Capabilities) float64 {
	remaining := s.Int(caps.TimeRemainingField, 0)
	total := s.Int(caps.TimeTotalField, 0)
	if total == 0 || timerIdle(s, caps) {
		return 0
	}
	return math.Round(float64(total-remaining)/float64(total)*1000) / 10
}

// timerIdle reports whether the cook timer carries no meaning: nothing
// remaining, or the device is asleep.
func timerIdle(s Status, caps Capabilities) bool {
	state := s.String(FieldStatus, "")
	return s.Int(caps.TimeRemainingField, 0) == 0 ||
		state == StatusStandby || state == StatusPowersave
}

// finishTimestamp returns the device-reported cook timestamp as RFC 3339,
// or the current wall clock when replaceTimestamp is set. Empty when the
// timer is idle or the device value does not parse.
func finishTimestamp(s Status, caps Capabilities, replaceTimestamp bool, now func() time.Time) any {
	if timerIdle(s, caps) {
		return ""
	}
	if replaceTimestamp {
		return now().Format(time.RFC3339)
	}

	raw := s.String(FieldTimestamp, "")
	if raw == "" {
		return ""
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts.Format(time.RFC3339)
		}
	}
	return ""
}

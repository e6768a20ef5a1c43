package airfryer

// Device status values reported by the firmware.
const (
	StatusStandby   = "standby"
	StatusPowersave = "powersave"
	StatusMainMenu  = "mainmenu"
	StatusPrecook   = "precook"
	StatusCooking   = "cooking"
	StatusPause     = "pause"
	StatusFinish    = "finish"
)

// Command and status field names. Time fields vary by model and come from
// Capabilities instead.
const (
	FieldStatus         = "status"
	FieldTemp           = "temp"
	FieldMethod         = "method"
	FieldProbeRequired  = "probe_required"
	FieldTempUnit       = "temp_unit"
	FieldAirspeed       = "airspeed"
	FieldTempProbe      = "temp_probe"
	FieldDrawerOpen     = "drawer_open"
	FieldProbeUnplugged = "probe_unplugged"
	FieldDialog         = "dialog"
	FieldTimestamp      = "timestamp"
)

// Status is one full status snapshot as returned by the device. Field names
// differ between hardware generations, so it stays a decoded JSON object
// with typed accessors.
type Status map[string]any

// String returns the named field as a string, or fallback when absent or
// of another type.
func (s Status) String(key, fallback string) string {
	if v, ok := s[key].(string); ok {
		return v
	}
	return fallback
}

// Int returns the named field as an int. JSON numbers decode as float64.
func (s Status) Int(key string, fallback int) int {
	switch v := s[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return fallback
	}
}

// Bool returns the named field as a bool, or fallback when absent.
func (s Status) Bool(key string, fallback bool) bool {
	if v, ok := s[key].(bool); ok {
		return v
	}
	return fallback
}

// Clone returns a shallow copy so cached snapshots stay immutable for
// readers.
func (s Status) Clone() Status {
	if s == nil {
		return nil
	}
	out := make(Status, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

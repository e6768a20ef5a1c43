package airfryer

import "strings"

// Command paths by hardware generation.
const (
	DefaultCommandPath = "/di/v1/products/1/airfryer"
	venusCommandPath   = "/di/v1/products/1/venusaf"
)

// Capabilities describes what a given hardware variant supports and which
// status fields carry the cook timer. Constant for the lifetime of a plugin
// instance.
type Capabilities struct {
	Model              string
	CommandPath        string
	Airspeed           bool
	Probe              bool
	TimeRemainingField string
	TimeTotalField     string
}

// ResolveCapabilities maps a model identifier to its capability set.
// Matching is case-insensitive and by substring, so full model numbers like
// "HD9880/90" and bare family names both resolve. Unknown or empty models
// get the untested default.
func ResolveCapabilities(model string) Capabilities {
	upper := strings.ToUpper(model)

	switch {
	case strings.Contains(upper, "HD9880"):
		return Capabilities{
			Model:              "HD9880/90",
			CommandPath:        venusCommandPath,
			Airspeed:           true,
			Probe:              true,
			TimeRemainingField: "disp_time",
			TimeTotalField:     "total_time",
		}
	case strings.Contains(upper, "HD9875"):
		return Capabilities{
			Model:              "HD9875/90",
			CommandPath:        DefaultCommandPath,
			Probe:              true,
			TimeRemainingField: "disp_time",
			TimeTotalField:     "total_time",
		}
	case strings.Contains(upper, "HD9255"):
		return Capabilities{
			Model:              "HD9255",
			CommandPath:        DefaultCommandPath,
			TimeRemainingField: "cur_time",
			TimeTotalField:     "time",
		}
	default:
		return Capabilities{
			Model:              "Other (untested)",
			CommandPath:        DefaultCommandPath,
			TimeRemainingField: "disp_time",
			TimeTotalField:     "total_time",
		}
	}
}

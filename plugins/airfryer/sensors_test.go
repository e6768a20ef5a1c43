package airfryer

import (
	"testing"
	"time"
)

func TestProgress(t *testing.T) {
	caps := ResolveCapabilities("")

	tests := []struct {
		name   string
		status Status
		want   float64
	}{
		{
			name:   "mid-cook rounds to one decimal",
			status: Status{FieldStatus: StatusCooking, "total_time": float64(200), "disp_time": float64(33)},
			want:   83.5,
		},
		{
			name:   "zero total",
			status: Status{FieldStatus: StatusCooking, "total_time": float64(0), "disp_time": float64(10)},
			want:   0,
		},
		{
			name:   "nothing remaining",
			status: Status{FieldStatus: StatusCooking, "total_time": float64(600), "disp_time": float64(0)},
			want:   0,
		},
		{
			name:   "standby",
			status: Status{FieldStatus: StatusStandby, "total_time": float64(600), "disp_time": float64(300)},
			want:   0,
		},
		{
			name:   "powersave",
			status: Status{FieldStatus: StatusPowersave, "total_time": float64(600), "disp_time": float64(300)},
			want:   0,
		},
		{
			name:   "just started",
			status: Status{FieldStatus: StatusCooking, "total_time": float64(600), "disp_time": float64(600)},
			want:   0,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Progress(tc.status, caps)
			if got != tc.want {
				t.Fatalf("Progress = %v, want %v", got, tc.want)
			}
			// Same snapshot, same answer.
			if again := Progress(tc.status, caps); again != got {
				t.Fatalf("Progress not stable: %v then %v", got, again)
			}
		})
	}
}

func TestEvaluateOfflineDefaults(t *testing.T) {
	sensors := Sensors(ResolveCapabilities("HD9880"), false, nil)
	values := Evaluate(sensors, nil, false)

	want := map[string]any{
		SensorStatus:         "offline",
		SensorTemp:           0,
		SensorTotalTime:      0,
		SensorTimeRemaining:  0,
		SensorProgress:       0.0,
		SensorDialog:         "none",
		SensorDrawerOpen:     false,
		SensorTimestamp:      "",
		SensorAirspeed:       0,
		SensorTempProbe:      0,
		SensorProbeConnected: false,
	}
	if len(values) != len(want) {
		t.Fatalf("got %d sensors, want %d: %v", len(values), len(want), values)
	}
	for key, value := range want {
		if values[key] != value {
			t.Errorf("%s = %v, want %v", key, values[key], value)
		}
	}
}

func TestEvaluateOnline(t *testing.T) {
	sensors := Sensors(ResolveCapabilities(""), false, nil)
	status := Status{
		FieldStatus:     StatusCooking,
		FieldTemp:       float64(180),
		"total_time":    float64(600),
		"disp_time":     float64(150),
		FieldDrawerOpen: true,
		FieldDialog:     "shake",
	}

	values := Evaluate(sensors, status, true)
	if values[SensorStatus] != StatusCooking {
		t.Errorf("status = %v", values[SensorStatus])
	}
	if values[SensorTemp] != 180 {
		t.Errorf("temp = %v", values[SensorTemp])
	}
	if values[SensorProgress] != 75.0 {
		t.Errorf("progress = %v, want 75", values[SensorProgress])
	}
	if values[SensorDrawerOpen] != true {
		t.Errorf("drawer_open = %v", values[SensorDrawerOpen])
	}
	if values[SensorDialog] != "shake" {
		t.Errorf("dialog = %v", values[SensorDialog])
	}
	if _, present := values[SensorAirspeed]; present {
		t.Error("airspeed should not exist on the default capability set")
	}
}

func TestTimerSensorsZeroWhenIdle(t *testing.T) {
	sensors := Sensors(ResolveCapabilities(""), false, nil)
	status := Status{
		FieldStatus:  StatusStandby,
		"total_time": float64(600),
		"disp_time":  float64(300),
	}

	values := Evaluate(sensors, status, true)
	if values[SensorTotalTime] != 0 {
		t.Errorf("total_time = %v, want 0", values[SensorTotalTime])
	}
	if values[SensorTimeRemaining] != 0 {
		t.Errorf("time_remaining = %v, want 0", values[SensorTimeRemaining])
	}
}

func TestProbeConnectedInvertsUnplugged(t *testing.T) {
	sensors := Sensors(ResolveCapabilities("HD9875"), false, nil)

	connected := Evaluate(sensors, Status{FieldStatus: StatusCooking, FieldProbeUnplugged: false}, true)
	if connected[SensorProbeConnected] != true {
		t.Error("probe_unplugged=false should report connected")
	}

	unplugged := Evaluate(sensors, Status{FieldStatus: StatusCooking, FieldProbeUnplugged: true}, true)
	if unplugged[SensorProbeConnected] != false {
		t.Error("probe_unplugged=true should report disconnected")
	}
}

func TestFinishTimestamp(t *testing.T) {
	caps := ResolveCapabilities("")
	fixed := time.Date(2024, 5, 4, 12, 0, 0, 0, time.UTC)
	now := func() time.Time { return fixed }

	cooking := Status{
		FieldStatus:    StatusCooking,
		"disp_time":    float64(120),
		FieldTimestamp: "2024-05-04T12:30:00",
	}

	t.Run("device timestamp normalized", func(t *testing.T) {
		got := finishTimestamp(cooking, caps, false, now)
		if got != "2024-05-04T12:30:00Z" {
			t.Fatalf("timestamp = %v", got)
		}
	})

	t.Run("replaced with wall clock", func(t *testing.T) {
		got := finishTimestamp(cooking, caps, true, now)
		if got != fixed.Format(time.RFC3339) {
			t.Fatalf("timestamp = %v", got)
		}
	})

	t.Run("empty when idle", func(t *testing.T) {
		idle := Status{FieldStatus: StatusStandby, FieldTimestamp: "2024-05-04T12:30:00"}
		if got := finishTimestamp(idle, caps, false, now); got != "" {
			t.Fatalf("timestamp = %v, want empty", got)
		}
	})

	t.Run("empty when unparseable", func(t *testing.T) {
		bad := Status{FieldStatus: StatusCooking, "disp_time": float64(10), FieldTimestamp: "soon"}
		if got := finishTimestamp(bad, caps, false, now); got != "" {
			t.Fatalf("timestamp = %v, want empty", got)
		}
	})
}

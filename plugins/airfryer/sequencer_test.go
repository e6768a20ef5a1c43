package airfryer

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/joshp123/condor/internal/logger"
)

// fakeDevice stands in for the HTTP client: scripted status reads, recorded
// command writes.
type fakeDevice struct {
	mu      sync.Mutex
	status  Status
	sent    []map[string]any
	sendErr error
}

func (f *fakeDevice) Status(context.Context) (Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status.Clone(), nil
}

func (f *fakeDevice) Send(_ context.Context, fields map[string]any) (Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.sent = append(f.sent, fields)
	return f.status.Clone(), nil
}

func (f *fakeDevice) commands(t *testing.T) []map[string]any {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]map[string]any(nil), f.sent...)
}

func newTestSequencer(status Status, caps Capabilities) (*Sequencer, *fakeDevice) {
	device := &fakeDevice{status: status}
	poller := NewPoller(device, 0, logger.Nop())
	return NewSequencer(device, poller, caps, 0, logger.Nop()), device
}

func assertSequence(t *testing.T, device *fakeDevice, want []map[string]any) {
	t.Helper()
	got := device.commands(t)
	if len(got) != len(want) {
		t.Fatalf("sent %d commands, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if !reflect.DeepEqual(got[i], want[i]) {
			t.Fatalf("command %d = %v, want %v", i, got[i], want[i])
		}
	}
}

var defaultCaps = ResolveCapabilities("")

func TestTurnOn(t *testing.T) {
	seq, device := newTestSequencer(Status{FieldStatus: StatusStandby}, defaultCaps)
	if err := seq.TurnOn(context.Background()); err != nil {
		t.Fatalf("TurnOn: %v", err)
	}
	assertSequence(t, device, []map[string]any{
		{FieldProbeRequired: false, FieldMethod: 0, FieldStatus: StatusPrecook, FieldTempUnit: false},
	})
}

func TestTurnOff(t *testing.T) {
	tests := []struct {
		name  string
		state string
		want  []map[string]any
	}{
		{
			name:  "while cooking pauses first",
			state: StatusCooking,
			want: []map[string]any{
				{FieldStatus: StatusPause},
				{FieldStatus: StatusMainMenu},
				{FieldStatus: StatusPowersave},
			},
		},
		{
			name:  "from main menu goes straight to powersave",
			state: StatusMainMenu,
			want:  []map[string]any{{FieldStatus: StatusPowersave}},
		},
		{
			name:  "from standby passes through main menu",
			state: StatusStandby,
			want: []map[string]any{
				{FieldStatus: StatusMainMenu},
				{FieldStatus: StatusPowersave},
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			seq, device := newTestSequencer(Status{FieldStatus: tc.state}, defaultCaps)
			if err := seq.TurnOff(context.Background()); err != nil {
				t.Fatalf("TurnOff: %v", err)
			}
			assertSequence(t, device, tc.want)
		})
	}
}

func TestStartCookingNoopWhenCooking(t *testing.T) {
	seq, device := newTestSequencer(Status{FieldStatus: StatusCooking}, defaultCaps)
	err := seq.StartCooking(context.Background(), StartCookingParams{Temp: 180, TotalTime: 600, StartCooking: true})
	if err != nil {
		t.Fatalf("StartCooking: %v", err)
	}
	assertSequence(t, device, nil)
}

func TestStartCookingFromPause(t *testing.T) {
	seq, device := newTestSequencer(Status{FieldStatus: StatusPause}, defaultCaps)
	err := seq.StartCooking(context.Background(), StartCookingParams{Temp: 200, TotalTime: 900, StartCooking: true})
	if err != nil {
		t.Fatalf("StartCooking: %v", err)
	}
	assertSequence(t, device, []map[string]any{
		{FieldStatus: StatusMainMenu},
		{FieldProbeRequired: false, FieldMethod: 0, FieldStatus: StatusPrecook, FieldTempUnit: false},
		{FieldTemp: 200, FieldMethod: 0, FieldProbeRequired: false, "total_time": 900, FieldTempUnit: false},
		{FieldStatus: StatusCooking},
	})
}

func TestStartCookingProgramOnly(t *testing.T) {
	seq, device := newTestSequencer(Status{FieldStatus: StatusMainMenu}, defaultCaps)
	err := seq.StartCooking(context.Background(), StartCookingParams{Temp: 160, TotalTime: 300})
	if err != nil {
		t.Fatalf("StartCooking: %v", err)
	}
	assertSequence(t, device, []map[string]any{
		{FieldProbeRequired: false, FieldMethod: 0, FieldStatus: StatusPrecook, FieldTempUnit: false},
		{FieldTemp: 160, FieldMethod: 0, FieldProbeRequired: false, "total_time": 300, FieldTempUnit: false},
	})
}

func TestStartCookingSetsAirspeed(t *testing.T) {
	caps := ResolveCapabilities("HD9880/90")
	seq, device := newTestSequencer(Status{FieldStatus: StatusMainMenu}, caps)
	err := seq.StartCooking(context.Background(), StartCookingParams{Temp: 180, TotalTime: 600, StartCooking: true, Airspeed: 2})
	if err != nil {
		t.Fatalf("StartCooking: %v", err)
	}
	assertSequence(t, device, []map[string]any{
		{FieldProbeRequired: false, FieldMethod: 0, FieldStatus: StatusPrecook, FieldTempUnit: false},
		{FieldTemp: 180, FieldMethod: 0, FieldProbeRequired: false, "total_time": 600, FieldTempUnit: false, FieldAirspeed: 2},
		{FieldStatus: StatusCooking},
	})
}

func TestAdjustTimeWhileCooking(t *testing.T) {
	seq, device := newTestSequencer(Status{FieldStatus: StatusCooking, "total_time": float64(600)}, defaultCaps)
	err := seq.AdjustTime(context.Background(), AdjustParams{Delta: 120, Mode: AdjustAdd, RestartCooking: true})
	if err != nil {
		t.Fatalf("AdjustTime: %v", err)
	}
	assertSequence(t, device, []map[string]any{
		{FieldStatus: StatusPause},
		{"total_time": 720},
		{FieldStatus: StatusCooking},
	})
}

func TestAdjustTimeSubtractFloors(t *testing.T) {
	seq, device := newTestSequencer(Status{FieldStatus: StatusPause, "total_time": float64(90)}, defaultCaps)
	err := seq.AdjustTime(context.Background(), AdjustParams{Delta: 120, Mode: AdjustSubtract})
	if err != nil {
		t.Fatalf("AdjustTime: %v", err)
	}
	assertSequence(t, device, []map[string]any{{"total_time": 60}})
}

func TestAdjustTimeNoopOutsideCook(t *testing.T) {
	for _, state := range []string{StatusStandby, StatusPowersave, StatusMainMenu, StatusFinish} {
		seq, device := newTestSequencer(Status{FieldStatus: state, "total_time": float64(600)}, defaultCaps)
		if err := seq.AdjustTime(context.Background(), AdjustParams{Delta: 60, Mode: AdjustAdd}); err != nil {
			t.Fatalf("AdjustTime in %s: %v", state, err)
		}
		assertSequence(t, device, nil)
	}
}

func TestAdjustTempInPrecook(t *testing.T) {
	seq, device := newTestSequencer(Status{FieldStatus: StatusPrecook, FieldTemp: float64(180)}, defaultCaps)
	err := seq.AdjustTemp(context.Background(), AdjustParams{Delta: 20, Mode: AdjustSubtract})
	if err != nil {
		t.Fatalf("AdjustTemp: %v", err)
	}
	assertSequence(t, device, []map[string]any{{FieldTemp: 160}})
}

func TestAdjustTempWhileCookingNoRestart(t *testing.T) {
	seq, device := newTestSequencer(Status{FieldStatus: StatusCooking, FieldTemp: float64(180)}, defaultCaps)
	err := seq.AdjustTemp(context.Background(), AdjustParams{Delta: 10, Mode: AdjustAdd})
	if err != nil {
		t.Fatalf("AdjustTemp: %v", err)
	}
	assertSequence(t, device, []map[string]any{
		{FieldStatus: StatusPause},
		{FieldTemp: 190},
	})
}

func TestToggleAirspeedUnsupported(t *testing.T) {
	seq, _ := newTestSequencer(Status{FieldStatus: StatusCooking}, defaultCaps)
	if err := seq.ToggleAirspeed(context.Background()); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

func TestToggleAirspeedWhileCooking(t *testing.T) {
	caps := ResolveCapabilities("HD9880")
	seq, device := newTestSequencer(Status{FieldStatus: StatusCooking, FieldAirspeed: float64(2)}, caps)
	if err := seq.ToggleAirspeed(context.Background()); err != nil {
		t.Fatalf("ToggleAirspeed: %v", err)
	}
	assertSequence(t, device, []map[string]any{
		{FieldStatus: StatusPause},
		{FieldAirspeed: 1},
		{FieldStatus: StatusCooking},
	})
}

func TestStop(t *testing.T) {
	t.Run("while cooking pauses first", func(t *testing.T) {
		seq, device := newTestSequencer(Status{FieldStatus: StatusCooking}, defaultCaps)
		if err := seq.Stop(context.Background()); err != nil {
			t.Fatalf("Stop: %v", err)
		}
		assertSequence(t, device, []map[string]any{
			{FieldStatus: StatusPause},
			{FieldStatus: StatusMainMenu},
		})
	})

	t.Run("while paused goes straight to main menu", func(t *testing.T) {
		seq, device := newTestSequencer(Status{FieldStatus: StatusPause}, defaultCaps)
		if err := seq.Stop(context.Background()); err != nil {
			t.Fatalf("Stop: %v", err)
		}
		assertSequence(t, device, []map[string]any{{FieldStatus: StatusMainMenu}})
	})
}

func TestPauseAndResumeAreUnconditional(t *testing.T) {
	seq, device := newTestSequencer(Status{FieldStatus: StatusStandby}, defaultCaps)
	if err := seq.Pause(context.Background()); err != nil {
		t.Fatalf("Pause: %v", err)
	}
	if err := seq.Resume(context.Background()); err != nil {
		t.Fatalf("Resume: %v", err)
	}
	assertSequence(t, device, []map[string]any{
		{FieldStatus: StatusPause},
		{FieldStatus: StatusCooking},
	})
}

func TestConcurrentIntentsDoNotInterleave(t *testing.T) {
	device := &fakeDevice{status: Status{FieldStatus: StatusCooking}}
	poller := NewPoller(device, time.Minute, logger.Nop())
	seq := NewSequencer(device, poller, defaultCaps, 2*time.Millisecond, logger.Nop())

	// Two full shutdown sequences racing; the mutex must hold each one
	// together across its settle delays.
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := seq.TurnOff(context.Background()); err != nil {
				t.Errorf("TurnOff: %v", err)
			}
		}()
	}
	wg.Wait()

	shutdown := []map[string]any{
		{FieldStatus: StatusPause},
		{FieldStatus: StatusMainMenu},
		{FieldStatus: StatusPowersave},
	}
	got := device.commands(t)
	if len(got) != 2*len(shutdown) {
		t.Fatalf("sent %d commands, want %d: %v", len(got), 2*len(shutdown), got)
	}
	for i, want := range append(append([]map[string]any{}, shutdown...), shutdown...) {
		if !reflect.DeepEqual(got[i], want) {
			t.Fatalf("command %d = %v, want %v (interleaved sequences)", i, got[i], want)
		}
	}
}

func TestSendErrorAbortsSequence(t *testing.T) {
	seq, device := newTestSequencer(Status{FieldStatus: StatusCooking}, defaultCaps)
	device.sendErr = errors.New("device went away")

	if err := seq.TurnOff(context.Background()); err == nil {
		t.Fatal("expected error from failed command")
	}
	assertSequence(t, device, nil)

	commands, failures := seq.Stats()
	if commands != 1 || failures != 1 {
		t.Fatalf("stats = %d/%d, want 1/1", commands, failures)
	}
}

func TestAdjustHelpers(t *testing.T) {
	tests := []struct {
		current, delta int
		mode           AdjustMode
		want           int
	}{
		{600, 120, AdjustAdd, 720},
		{600, 120, AdjustSubtract, 480},
		{90, 120, AdjustSubtract, 60},
		{60, 1, AdjustSubtract, 60},
	}
	for _, tc := range tests {
		if got := adjustTime(tc.current, tc.delta, tc.mode); got != tc.want {
			t.Errorf("adjustTime(%d, %d, %s) = %d, want %d", tc.current, tc.delta, tc.mode, got, tc.want)
		}
	}

	if got := adjustTemp(180, 20, AdjustSubtract); got != 160 {
		t.Errorf("adjustTemp subtract = %d, want 160", got)
	}
	if got := adjustTemp(180, 20, AdjustAdd); got != 200 {
		t.Errorf("adjustTemp add = %d, want 200", got)
	}
}

func TestToggleAirspeedInvolution(t *testing.T) {
	for _, speed := range []int{1, 2} {
		if got := toggleAirspeed(toggleAirspeed(speed)); got != speed {
			t.Errorf("double toggle of %d = %d", speed, got)
		}
	}
	if toggleAirspeed(0) != 2 {
		t.Error("unknown speed should toggle to 2")
	}
}

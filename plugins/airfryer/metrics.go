package airfryer

import (
	"github.com/prometheus/client_golang/prometheus"
)

// deviceStates drives the per-state status gauge vector.
var deviceStates = []string{
	StatusStandby,
	StatusPowersave,
	StatusMainMenu,
	StatusPrecook,
	StatusCooking,
	StatusPause,
	StatusFinish,
}

// MetricsCollector exports the cached snapshot plus poll and command
// counters. It never touches the network: the poller already owns the
// refresh schedule, and scrapes should not add device load.
type MetricsCollector struct {
	poller    *Poller
	sequencer *Sequencer
	caps      Capabilities

	online        prometheus.Gauge
	state         *prometheus.GaugeVec
	temp          prometheus.Gauge
	tempProbe     prometheus.Gauge
	totalTime     prometheus.Gauge
	timeRemaining prometheus.Gauge
	progress      prometheus.Gauge
	airspeed      prometheus.Gauge
	drawerOpen    prometheus.Gauge
	lastSuccess   prometheus.Gauge
	polls         prometheus.Gauge
	pollFailures  prometheus.Gauge
	commands      prometheus.Gauge
	commandErrors prometheus.Gauge
}

func NewMetricsCollector(poller *Poller, sequencer *Sequencer, caps Capabilities) *MetricsCollector {
	return &MetricsCollector{
		poller:    poller,
		sequencer: sequencer,
		caps:      caps,
		online: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "condor_airfryer_online",
			Help: "1 when the latest status refresh succeeded",
		}),
		state: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "condor_airfryer_state",
			Help: "Device state, 1 for the active state",
		}, []string{"state"}),
		temp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "condor_airfryer_temperature_celsius",
			Help: "Target temperature in Celsius",
		}),
		tempProbe: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "condor_airfryer_probe_temperature_celsius",
			Help: "Probe temperature in Celsius",
		}),
		totalTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "condor_airfryer_total_time_seconds",
			Help: "Programmed cook time in seconds",
		}),
		timeRemaining: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "condor_airfryer_time_remaining_seconds",
			Help: "Remaining cook time in seconds",
		}),
		progress: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "condor_airfryer_progress_percent",
			Help: "Cook progress in percent",
		}),
		airspeed: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "condor_airfryer_airspeed",
			Help: "Fan speed setting (1 or 2)",
		}),
		drawerOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "condor_airfryer_drawer_open",
			Help: "1 when the drawer is open",
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "condor_airfryer_last_success_timestamp_seconds",
			Help: "Unix time of the last successful status refresh",
		}),
		polls: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "condor_airfryer_polls_total",
			Help: "Status refreshes attempted since startup",
		}),
		pollFailures: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "condor_airfryer_poll_failures_total",
			Help: "Status refreshes that failed since startup",
		}),
		commands: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "condor_airfryer_commands_total",
			Help: "Device commands sent since startup",
		}),
		commandErrors: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "condor_airfryer_command_failures_total",
			Help: "Device commands that failed since startup",
		}),
	}
}

func (c *MetricsCollector) Describe(ch chan<- *prometheus.Desc) {
	prometheus.DescribeByCollect(c, ch)
}

func (c *MetricsCollector) Collect(ch chan<- prometheus.Metric) {
	status, ok := c.poller.Snapshot()
	if ok {
		c.online.Set(1)
		active := status.String(FieldStatus, "")
		for _, state := range deviceStates {
			value := 0.0
			if state == active {
				value = 1
			}
			c.state.WithLabelValues(state).Set(value)
		}
		c.temp.Set(float64(status.Int(FieldTemp, 0)))
		c.tempProbe.Set(float64(status.Int(FieldTempProbe, 0)))
		c.totalTime.Set(float64(status.Int(c.caps.TimeTotalField, 0)))
		c.timeRemaining.Set(float64(status.Int(c.caps.TimeRemainingField, 0)))
		c.progress.Set(Progress(status, c.caps))
		c.airspeed.Set(float64(status.Int(FieldAirspeed, 0)))
		if status.Bool(FieldDrawerOpen, false) {
			c.drawerOpen.Set(1)
		} else {
			c.drawerOpen.Set(0)
		}
	} else {
		c.online.Set(0)
	}

	if last := c.poller.LastSuccess(); !last.IsZero() {
		c.lastSuccess.Set(float64(last.Unix()))
	}

	stats := c.poller.Stats()
	c.polls.Set(float64(stats.Polls))
	c.pollFailures.Set(float64(stats.Failures))

	commands, failures := c.sequencer.Stats()
	c.commands.Set(float64(commands))
	c.commandErrors.Set(float64(failures))

	c.online.Collect(ch)
	c.state.Collect(ch)
	c.temp.Collect(ch)
	c.totalTime.Collect(ch)
	c.timeRemaining.Collect(ch)
	c.progress.Collect(ch)
	c.drawerOpen.Collect(ch)
	c.lastSuccess.Collect(ch)
	c.polls.Collect(ch)
	c.pollFailures.Collect(ch)
	c.commands.Collect(ch)
	c.commandErrors.Collect(ch)
	if c.caps.Airspeed {
		c.airspeed.Collect(ch)
	}
	if c.caps.Probe {
		c.tempProbe.Collect(ch)
	}
}

package airfryer

import (
	"context"
	_ "embed"
	"net/http"

	"github.com/joshp123/condor/internal/config"
	"github.com/joshp123/condor/internal/core"
	"github.com/joshp123/condor/internal/logger"
	"github.com/prometheus/client_golang/prometheus"
)

//go:embed AGENTS.md
var agentsMD string

//go:embed dashboard.json
var dashboardJSON []byte

// Plugin implements the Condor plugin contract for one airfryer.
type Plugin struct {
	client    *Client
	poller    *Poller
	sequencer *Sequencer
	bridge    *mqttBridge
	caps      Capabilities
	sensors   []Sensor
	log       *logger.Logger
	cancel    context.CancelFunc

	health        core.HealthStatus
	healthMessage string
}

var _ core.HTTPRegistrant = (*Plugin)(nil)

// NewPlugin constructs and starts the airfryer plugin. The bool result is
// false when the config has no airfryer section.
func NewPlugin(cfg *config.Config, log *logger.Logger) (*Plugin, bool) {
	if cfg.Airfryer == nil {
		return nil, false
	}
	log = log.Named("airfryer")

	runtimeCfg, err := ConfigFromSection(cfg.Airfryer)
	if err != nil {
		return &Plugin{health: core.HealthError, healthMessage: err.Error(), log: log}, true
	}

	caps := runtimeCfg.Capabilities
	client := NewClient(runtimeCfg.Address, runtimeCfg.ClientID, runtimeCfg.ClientSecret, caps.CommandPath, log)
	poller := NewPoller(client, runtimeCfg.UpdateInterval, log)
	sequencer := NewSequencer(client, poller, caps, runtimeCfg.Settle, log)
	sensors := Sensors(caps, runtimeCfg.ReplaceTimestamp, nil)

	p := &Plugin{
		client:    client,
		poller:    poller,
		sequencer: sequencer,
		caps:      caps,
		sensors:   sensors,
		log:       log,
		health:    core.HealthHealthy,
	}

	if cfg.MQTT.Enabled() {
		bridge, err := newMQTTBridge(cfg.MQTT, sensors, log)
		if err != nil {
			return &Plugin{health: core.HealthError, healthMessage: err.Error(), log: log}, true
		}
		poller.Subscribe(bridge.publishState)
		if err := bridge.subscribeCommands(Actions(caps), sequencer.Dispatch); err != nil {
			bridge.close()
			return &Plugin{health: core.HealthError, healthMessage: err.Error(), log: log}, true
		}
		p.bridge = bridge
	}

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	poller.Start(ctx)

	log.Infow("airfryer plugin started",
		"address", runtimeCfg.Address,
		"model", caps.Model,
		"command_path", caps.CommandPath)
	return p, true
}

func (p *Plugin) ID() string {
	return "airfryer"
}

func (p *Plugin) Manifest() core.Manifest {
	return core.Manifest{
		PluginID:    "airfryer",
		DisplayName: "Philips Airfryer",
		Version:     "0.1.0",
		Actions:     Actions(p.caps),
	}
}

func (p *Plugin) AgentsMD() string {
	return agentsMD
}

func (p *Plugin) Dashboards() []core.Dashboard {
	return []core.Dashboard{{Name: "airfryer-overview", JSON: dashboardJSON}}
}

func (p *Plugin) RegisterHTTP(mux *http.ServeMux) {
	if p.poller == nil {
		return
	}
	svc := &service{
		poller:    p.poller,
		sequencer: p.sequencer,
		caps:      p.caps,
		sensors:   p.sensors,
		log:       p.log,
	}
	svc.register(mux)
}

func (p *Plugin) Collectors() []prometheus.Collector {
	if p.poller == nil {
		return nil
	}
	return []prometheus.Collector{NewMetricsCollector(p.poller, p.sequencer, p.caps)}
}

// Health is derived from the latest poll outcome: a failed refresh with
// history is degraded, a failed refresh with no history yet is an error.
func (p *Plugin) Health() core.HealthStatus {
	if p.health == core.HealthError || p.poller == nil {
		return p.health
	}
	if err := p.poller.LastError(); err != nil {
		if p.poller.LastSuccess().IsZero() {
			return core.HealthError
		}
		return core.HealthDegraded
	}
	return core.HealthHealthy
}

func (p *Plugin) HealthMessage() string {
	if p.healthMessage != "" {
		return p.healthMessage
	}
	if p.poller != nil {
		if err := p.poller.LastError(); err != nil {
			return err.Error()
		}
	}
	return ""
}

// Close stops the poll loop and disconnects the MQTT bridge.
func (p *Plugin) Close(_ context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}
	if p.poller != nil {
		p.poller.Stop()
	}
	if p.bridge != nil {
		p.bridge.close()
	}
	return nil
}

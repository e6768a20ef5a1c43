package core

import "sync"

// PluginSummary is the registry list entry for one plugin.
type PluginSummary struct {
	PluginID    string `json:"plugin_id"`
	DisplayName string `json:"display_name"`
	Version     string `json:"version"`
	Status      string `json:"status"`
}

// PluginDescriptor is the full registry view of one plugin.
type PluginDescriptor struct {
	PluginID      string   `json:"plugin_id"`
	DisplayName   string   `json:"display_name"`
	Version       string   `json:"version"`
	Actions       []string `json:"actions,omitempty"`
	AgentsMD      string   `json:"agents_md,omitempty"`
	Status        string   `json:"status"`
	HealthMessage string   `json:"health_message,omitempty"`
	Dashboards    []string `json:"dashboards,omitempty"`
}

// RegistryService provides plugin discovery to clients.
type RegistryService struct {
	plugins []Plugin
	mu      sync.RWMutex
}

func NewRegistryService(plugins []Plugin) *RegistryService {
	return &RegistryService{plugins: plugins}
}

// ListPlugins returns a summary for every registered plugin.
func (r *RegistryService) ListPlugins() []PluginSummary {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]PluginSummary, 0, len(r.plugins))
	for _, p := range r.plugins {
		manifest := p.Manifest()
		out = append(out, PluginSummary{
			PluginID:    manifest.PluginID,
			DisplayName: manifest.DisplayName,
			Version:     manifest.Version,
			Status:      string(p.Health()),
		})
	}
	return out
}

// DescribePlugin returns the descriptor for one plugin, or false when the
// id is unknown.
func (r *RegistryService) DescribePlugin(pluginID string) (PluginDescriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.plugins {
		manifest := p.Manifest()
		if manifest.PluginID != pluginID {
			continue
		}

		descriptor := PluginDescriptor{
			PluginID:      manifest.PluginID,
			DisplayName:   manifest.DisplayName,
			Version:       manifest.Version,
			Actions:       manifest.Actions,
			AgentsMD:      p.AgentsMD(),
			Status:        string(p.Health()),
			HealthMessage: p.HealthMessage(),
		}

		for _, d := range p.Dashboards() {
			descriptor.Dashboards = append(descriptor.Dashboards,
				"/dashboards/"+manifest.PluginID+"/"+d.Name+".json")
		}

		return descriptor, true
	}

	return PluginDescriptor{}, false
}

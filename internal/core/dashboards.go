package core

import (
	"fmt"
	"os"
	"path/filepath"
)

// DashboardsMap flattens every plugin's embedded dashboards into a
// URL-path-to-JSON map for serving over HTTP.
func DashboardsMap(plugins []Plugin) map[string][]byte {
	out := make(map[string][]byte)
	for _, plugin := range plugins {
		id := plugin.Manifest().PluginID
		for _, dash := range plugin.Dashboards() {
			out["/dashboards/"+id+"/"+dash.Name+".json"] = dash.JSON
		}
	}
	return out
}

// WriteDashboards materializes dashboards under dir, one subdirectory per
// plugin, so a Grafana file provisioner can pick them up. An empty dir
// disables provisioning.
func WriteDashboards(dir string, plugins []Plugin) error {
	if dir == "" {
		return nil
	}

	for _, plugin := range plugins {
		id := plugin.Manifest().PluginID
		for _, dash := range plugin.Dashboards() {
			pluginDir := filepath.Join(dir, id)
			if err := os.MkdirAll(pluginDir, 0o755); err != nil {
				return fmt.Errorf("create dashboard dir %s: %w", pluginDir, err)
			}
			path := filepath.Join(pluginDir, dash.Name+".json")
			if err := os.WriteFile(path, dash.JSON, 0o644); err != nil {
				return fmt.Errorf("write dashboard %s: %w", path, err)
			}
		}
	}
	return nil
}

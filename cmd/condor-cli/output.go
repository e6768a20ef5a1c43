package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

func printJSON(body []byte) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, body, "", "  "); err != nil {
		os.Stdout.Write(body)
		fmt.Println()
		return
	}
	fmt.Println(buf.String())
}

func printPluginList(body []byte) {
	var entries []struct {
		PluginID    string `json:"plugin_id"`
		DisplayName string `json:"display_name"`
		Version     string `json:"version"`
		Status      string `json:"status"`
	}
	if err := json.Unmarshal(body, &entries); err != nil {
		printJSON(body)
		return
	}
	for _, entry := range entries {
		fmt.Printf("%s\t%s\t%s\t%s\n", entry.PluginID, entry.DisplayName, entry.Version, entry.Status)
	}
}

func printStatus(body []byte) {
	var status struct {
		Online    bool           `json:"online"`
		Model     string         `json:"model"`
		FetchedAt string         `json:"fetched_at"`
		Error     string         `json:"error"`
		Sensors   map[string]any `json:"sensors"`
	}
	if err := json.Unmarshal(body, &status); err != nil {
		printJSON(body)
		return
	}

	fmt.Printf("model:      %s\n", status.Model)
	fmt.Printf("online:     %v\n", status.Online)
	if status.FetchedAt != "" {
		fmt.Printf("fetched_at: %s\n", status.FetchedAt)
	}
	if status.Error != "" {
		fmt.Printf("error:      %s\n", status.Error)
	}

	keys := make([]string, 0, len(status.Sensors))
	for key := range status.Sensors {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Printf("  %-16s %v\n", key, status.Sensors[key])
	}
}

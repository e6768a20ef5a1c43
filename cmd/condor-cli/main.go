package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

const defaultAddr = "http://127.0.0.1:8080"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cli := &client{base: resolveAddr(), http: &http.Client{Timeout: 30 * time.Second}}

	switch os.Args[1] {
	case "plugins":
		pluginsCmd(ctx, cli, os.Args[2:])
	case "status":
		statusCmd(ctx, cli)
	case "action":
		actionCmd(ctx, cli, os.Args[2:])
	case "discover":
		discoverCmd(ctx, cli)
	default:
		usage()
		os.Exit(2)
	}
}

func pluginsCmd(ctx context.Context, cli *client, args []string) {
	if len(args) < 1 {
		usage()
		os.Exit(2)
	}

	switch args[0] {
	case "list":
		body, err := cli.get(ctx, "/plugins")
		if err != nil {
			fatal("list plugins", err)
		}
		printPluginList(body)
	case "describe":
		if len(args) < 2 {
			fatal("describe", fmt.Errorf("missing plugin id"))
		}
		body, err := cli.get(ctx, "/plugins/"+args[1])
		if err != nil {
			fatal("describe plugin", err)
		}
		printJSON(body)
	default:
		usage()
		os.Exit(2)
	}
}

func statusCmd(ctx context.Context, cli *client) {
	body, err := cli.get(ctx, "/plugins/airfryer/status")
	if err != nil {
		fatal("status", err)
	}
	printStatus(body)
}

func actionCmd(ctx context.Context, cli *client, args []string) {
	if len(args) < 1 {
		fatal("action", fmt.Errorf("missing action name"))
	}

	payload := "{}"
	if len(args) > 1 {
		payload = args[1]
	}

	body, err := cli.post(ctx, "/plugins/airfryer/actions/"+args[0], payload)
	if err != nil {
		fatal("action "+args[0], err)
	}
	printJSON(body)
}

func discoverCmd(ctx context.Context, cli *client) {
	body, err := cli.post(ctx, "/plugins/airfryer/discover", "")
	if err != nil {
		fatal("discover", err)
	}
	printJSON(body)
}

type client struct {
	base string
	http *http.Client
}

func (c *client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

func (c *client) post(ctx context.Context, path, payload string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader([]byte(payload)))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *client) do(req *http.Request) ([]byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%s: %s", resp.Status, strings.TrimSpace(string(body)))
	}
	return body, nil
}

func resolveAddr() string {
	if addr := os.Getenv("CONDOR_ADDR"); addr != "" {
		if !strings.Contains(addr, "://") {
			return "http://" + addr
		}
		return addr
	}
	return defaultAddr
}

func fatal(what string, err error) {
	fmt.Fprintf(os.Stderr, "%s: %v\n", what, err)
	os.Exit(1)
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: condor-cli <command>

commands:
  plugins list
  plugins describe <id>
  status
  action <name> ['{"json":"params"}']
  discover

CONDOR_ADDR overrides the daemon address (default http://127.0.0.1:8080).`)
}

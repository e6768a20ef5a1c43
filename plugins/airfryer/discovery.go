package airfryer

import (
	"context"
	"crypto/tls"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

const (
	ssdpAddr    = "239.255.255.250:1900"
	ssdpMSearch = "M-SEARCH * HTTP/1.1\r\n" +
		"HOST: 239.255.255.250:1900\r\n" +
		"MAN: \"ssdp:discover\"\r\n" +
		"MX: 3\r\n" +
		"ST: upnp:rootdevice\r\n" +
		"\r\n"
)

// Discovered is one airfryer candidate found on the local network, used to
// pre-populate the device endpoint and capabilities.
type Discovered struct {
	Address      string       `json:"address"`
	FriendlyName string       `json:"friendly_name"`
	ModelName    string       `json:"model_name"`
	ModelNumber  string       `json:"model_number"`
	Capabilities Capabilities `json:"capabilities"`
}

type deviceDescription struct {
	Device struct {
		DeviceType   string `xml:"deviceType"`
		FriendlyName string `xml:"friendlyName"`
		Manufacturer string `xml:"manufacturer"`
		ModelName    string `xml:"modelName"`
		ModelNumber  string `xml:"modelNumber"`
	} `xml:"device"`
}

// Discover runs an SSDP M-SEARCH and returns the airfryers that answered.
// The core never calls this on its own; it backs the explicit discover
// action and the CLI.
func Discover(ctx context.Context, timeout time.Duration) ([]Discovered, error) {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4zero})
	if err != nil {
		return nil, fmt.Errorf("ssdp listen: %w", err)
	}
	defer conn.Close()

	target, err := net.ResolveUDPAddr("udp4", ssdpAddr)
	if err != nil {
		return nil, fmt.Errorf("ssdp resolve: %w", err)
	}
	if _, err := conn.WriteTo([]byte(ssdpMSearch), target); err != nil {
		return nil, fmt.Errorf("ssdp search: %w", err)
	}

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetReadDeadline(deadline)
	} else {
		_ = conn.SetReadDeadline(time.Now().Add(timeout))
	}

	var out []Discovered
	seen := make(map[string]bool)
	buf := make([]byte, 65507)
	for {
		n, addr, err := conn.ReadFromUDP(buf)
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				return out, nil
			}
			return out, err
		}

		ip := addr.IP.String()
		if seen[ip] {
			continue
		}

		response := string(buf[:n])
		if !strings.Contains(strings.ToLower(response), "philips") {
			continue
		}
		seen[ip] = true

		location := ssdpLocation(response)
		if location == "" {
			continue
		}

		candidate, ok := describeDevice(ctx, location, ip)
		if ok {
			out = append(out, candidate)
		}
	}
}

// ssdpLocation extracts the LOCATION header from a raw SSDP response.
func ssdpLocation(response string) string {
	for _, line := range strings.Split(response, "\r\n") {
		if key, value, ok := strings.Cut(line, ":"); ok && strings.EqualFold(strings.TrimSpace(key), "location") {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

// describeDevice fetches and classifies the UPnP device description.
func describeDevice(ctx context.Context, location, ip string) (Discovered, bool) {
	client := &http.Client{
		Timeout: 5 * time.Second,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return Discovered{}, false
	}
	resp, err := client.Do(req)
	if err != nil {
		return Discovered{}, false
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Discovered{}, false
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Discovered{}, false
	}

	return classifyDescription(body, ip)
}

// classifyDescription parses a device-description XML document and keeps
// only Philips airfryers.
func classifyDescription(body []byte, ip string) (Discovered, bool) {
	var desc deviceDescription
	if err := xml.Unmarshal(body, &desc); err != nil {
		return Discovered{}, false
	}

	device := desc.Device
	if !isAirfryer(device.Manufacturer, device.ModelName, device.ModelNumber, device.FriendlyName) {
		return Discovered{}, false
	}

	friendly := device.FriendlyName
	if friendly == "" {
		friendly = "Philips Airfryer"
	}

	return Discovered{
		Address:      ip,
		FriendlyName: friendly,
		ModelName:    device.ModelName,
		ModelNumber:  device.ModelNumber,
		Capabilities: ResolveCapabilities(device.ModelNumber),
	}, true
}

// isAirfryer applies the model heuristics: a Philips device whose model
// name, number, or friendly name marks it as a connected airfryer.
func isAirfryer(manufacturer, modelName, modelNumber, friendlyName string) bool {
	if !strings.Contains(strings.ToLower(manufacturer), "philips") {
		return false
	}
	if strings.Contains(strings.ToLower(modelName), "venus") {
		return true
	}
	upper := strings.ToUpper(modelNumber)
	for _, family := range []string{"HD9880", "HD9875", "HD9255"} {
		if strings.Contains(upper, family) {
			return true
		}
	}
	return strings.Contains(strings.ToLower(friendlyName), "airfryer")
}

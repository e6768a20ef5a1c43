package airfryer

import "testing"

func TestSSDPLocation(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     string
	}{
		{
			name: "standard response",
			response: "HTTP/1.1 200 OK\r\n" +
				"LOCATION: http://192.168.1.50:8080/description.xml\r\n" +
				"SERVER: Philips\r\n\r\n",
			want: "http://192.168.1.50:8080/description.xml",
		},
		{
			name: "lowercase header",
			response: "HTTP/1.1 200 OK\r\n" +
				"location: http://192.168.1.51/desc.xml\r\n\r\n",
			want: "http://192.168.1.51/desc.xml",
		},
		{
			name:     "missing header",
			response: "HTTP/1.1 200 OK\r\nSERVER: Philips\r\n\r\n",
			want:     "",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ssdpLocation(tc.response); got != tc.want {
				t.Fatalf("ssdpLocation = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestClassifyDescription(t *testing.T) {
	airfryerXML := []byte(`<?xml version="1.0"?>
<root>
  <device>
    <deviceType>urn:philips-com:device:DiProduct:1</deviceType>
    <friendlyName>Kitchen Airfryer</friendlyName>
    <manufacturer>Philips</manufacturer>
    <modelName>Venus</modelName>
    <modelNumber>HD9880/90</modelNumber>
  </device>
</root>`)

	found, ok := classifyDescription(airfryerXML, "192.168.1.50")
	if !ok {
		t.Fatal("expected an airfryer match")
	}
	if found.Address != "192.168.1.50" {
		t.Errorf("Address = %q", found.Address)
	}
	if found.FriendlyName != "Kitchen Airfryer" {
		t.Errorf("FriendlyName = %q", found.FriendlyName)
	}
	if found.Capabilities.Model != "HD9880/90" || !found.Capabilities.Airspeed {
		t.Errorf("Capabilities = %+v", found.Capabilities)
	}

	otherXML := []byte(`<?xml version="1.0"?>
<root>
  <device>
    <friendlyName>Hue Bridge</friendlyName>
    <manufacturer>Signify</manufacturer>
    <modelName>BSB002</modelName>
    <modelNumber>BSB002</modelNumber>
  </device>
</root>`)
	if _, ok := classifyDescription(otherXML, "192.168.1.60"); ok {
		t.Fatal("non-Philips device should not match")
	}

	if _, ok := classifyDescription([]byte("not xml"), "192.168.1.61"); ok {
		t.Fatal("garbage should not match")
	}
}

func TestIsAirfryer(t *testing.T) {
	tests := []struct {
		name                                           string
		manufacturer, modelName, modelNumber, friendly string
		want                                           bool
	}{
		{"venus model name", "Philips", "Venus", "", "", true},
		{"known family", "Philips Domestic Appliances", "", "HD9875/90", "", true},
		{"legacy family", "philips", "", "hd9255", "", true},
		{"airfryer in friendly name", "Philips", "", "XX1234", "My Airfryer", true},
		{"philips but not airfryer", "Philips", "TV", "55PUS", "Living Room TV", false},
		{"not philips", "Signify", "Venus", "HD9880", "Airfryer", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := isAirfryer(tc.manufacturer, tc.modelName, tc.modelNumber, tc.friendly)
			if got != tc.want {
				t.Fatalf("isAirfryer = %v, want %v", got, tc.want)
			}
		})
	}
}

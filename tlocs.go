package vmanage

import (
	"context"
	"net/netip"
	"net/url"
	"strings"
)

const tlocsPath = "/device/omp/tlocs/advertised"

// TLOC is one advertised tunnel locator: an overlay transport path a device
// offers to the fabric.
type TLOC struct {
	SiteID   int
	SystemIP netip.Addr

	// PrivateIP and PublicIP are the locator's reachable addresses on the
	// private and public sides of the transport.
	PrivateIP netip.Addr
	PublicIP  netip.Addr

	Preference    int
	Weight        int
	Encapsulation string

	// Color is the transport-path tag, normalized to lower case.
	Color string

	// Raw is the untransformed payload element.
	Raw map[string]any
}

// GetDeviceTLOCs fetches the tunnel locators a device advertises into the
// overlay, addressed by its system IP.
//
// Returns (nil, nil) when the session is not authenticated, the device has
// no system IP to query by, or the endpoint produced no usable payload. Any
// malformed locator address is a fatal parse error.
func (c *Client) GetDeviceTLOCs(ctx context.Context, device Device) ([]TLOC, error) {
	if !device.SystemIP.IsValid() {
		return nil, nil
	}

	records, err := c.getRecords(ctx, tlocsPath, url.Values{"deviceId": {device.SystemIP.String()}})
	if err != nil || records == nil {
		return nil, err
	}

	tlocs := make([]TLOC, 0, len(records))
	for _, record := range records {
		systemIP, err := record.addr("ip")
		if err != nil {
			return nil, err
		}

		privateIP, err := record.addr("tloc-private-ip")
		if err != nil {
			return nil, err
		}

		publicIP, err := record.addr("tloc-public-ip")
		if err != nil {
			return nil, err
		}

		tlocs = append(tlocs, TLOC{
			SiteID:        record.integer("site-id"),
			SystemIP:      systemIP,
			PrivateIP:     privateIP,
			PublicIP:      publicIP,
			Preference:    record.integer("preference"),
			Weight:        record.integer("weight"),
			Encapsulation: record.str("encap"),
			Color:         strings.ToLower(record.str("color")),
			Raw:           record,
		})
	}

	return tlocs, nil
}

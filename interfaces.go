package vmanage

import (
	"context"
	"net/netip"
	"net/url"
)

const interfacesPath = "/device/interface/synced"

// defaultDescription fills in for interfaces the operator left undescribed.
const defaultDescription = "N/A"

// Interface is one network interface of a device, as last synchronized by
// the controller. Recomputed on each fetch, never cached.
type Interface struct {
	Name        string
	Description string
	Type        string
	MACAddress  string

	// VPNID is the VPN/segment the interface belongs to.
	VPNID string

	IP      netip.Addr
	Network netip.Prefix

	// Raw is the untransformed payload element.
	Raw map[string]any
}

// GetDeviceInterfaces fetches the synchronized interface table of a device,
// addressed by its system IP.
//
// Returns (nil, nil) when the session is not authenticated, the device has
// no system IP to query by, or the endpoint produced no usable payload. A
// malformed interface address is a fatal parse error: it signals corrupted
// controller data.
func (c *Client) GetDeviceInterfaces(ctx context.Context, device Device) ([]Interface, error) {
	if !device.SystemIP.IsValid() {
		return nil, nil
	}

	records, err := c.getRecords(ctx, interfacesPath, url.Values{"deviceId": {device.SystemIP.String()}})
	if err != nil || records == nil {
		return nil, err
	}

	interfaces := make([]Interface, 0, len(records))
	for _, record := range records {
		ip, err := record.addr("ip-address")
		if err != nil {
			return nil, err
		}

		network, err := prefixFrom(ip, record.str("ipv4-subnet-mask"))
		if err != nil {
			return nil, err
		}

		description, ok := record.strOK("description")
		if !ok {
			description = defaultDescription
		}

		interfaces = append(interfaces, Interface{
			Name:        record.str("ifname"),
			Description: description,
			Type:        record.str("interface-type"),
			MACAddress:  record.str("hwaddr"),
			VPNID:       record.stringify("vpn-id"),
			IP:          ip,
			Network:     network,
			Raw:         record,
		})
	}

	return interfaces, nil
}

package vmanage

import (
	"context"
	"net/netip"
	"net/url"
)

const vrrpPath = "/device/vrrp"

// vrrpMasterSentinel is the exact protocol state reported by the instance
// currently holding the virtual IP. Every other state string, including
// close variants, reads as not-master.
const vrrpMasterSentinel = "proto-state-master"

// VRRP is the first-hop redundancy state of one virtual IP group on a
// device interface.
type VRRP struct {
	InterfaceName string
	GroupID       int
	Priority      int

	// Preempt reports whether a higher-priority instance takes the group
	// back when it returns.
	Preempt bool

	// IsMaster reports whether this instance currently holds the virtual IP.
	IsMaster bool

	VirtualIP netip.Addr

	// Raw is the untransformed payload element.
	Raw map[string]any
}

// GetDeviceVRRP fetches the VRRP state of a device, addressed by its
// system IP.
//
// Returns (nil, nil) when the session is not authenticated, the device has
// no system IP to query by, or the endpoint produced no usable payload. A
// malformed virtual IP is a fatal parse error.
func (c *Client) GetDeviceVRRP(ctx context.Context, device Device) ([]VRRP, error) {
	if !device.SystemIP.IsValid() {
		return nil, nil
	}

	records, err := c.getRecords(ctx, vrrpPath, url.Values{"deviceId": {device.SystemIP.String()}})
	if err != nil || records == nil {
		return nil, err
	}

	groups := make([]VRRP, 0, len(records))
	for _, record := range records {
		virtualIP, err := record.addr("virtual-ip")
		if err != nil {
			return nil, err
		}

		groups = append(groups, VRRP{
			InterfaceName: record.str("if-name"),
			GroupID:       record.integer("group-id"),
			Priority:      record.integer("priority"),
			Preempt:       record.boolean("preempt"),
			IsMaster:      record.str("vrrp-state") == vrrpMasterSentinel,
			VirtualIP:     virtualIP,
			Raw:           record,
		})
	}

	return groups, nil
}

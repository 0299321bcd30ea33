package vmanage

import (
	"context"
	"maps"
	"net/netip"
	"strings"

	"github.com/lexfrei/go-vmanage/internal/fanout"
)

// Inventory endpoints merged by GetDevices. Controllers and edges come from
// disjoint provisioning lists; /device carries live status for both.
const (
	controllersPath  = "/system/device/controllers"
	vedgesPath       = "/system/device/vedges"
	deviceStatusPath = "/device"
)

// Device is one normalized entry of the controller's inventory. Only UUID is
// guaranteed: the three source endpoints populate disjoint field subsets, so
// every other field carries its neutral zero value when the controller did
// not report it.
type Device struct {
	// UUID is the controller-assigned device identifier.
	UUID string

	// Persona is the device's architectural role (vmanage, vsmart, vbond, vedge).
	Persona string

	// SystemIP is the device's overlay system address; the zero Addr when
	// the device has not been provisioned with one.
	SystemIP netip.Addr

	Hostname     string
	SiteID       int
	Model        string
	Version      string
	TemplateID   string
	TemplateName string

	// Health flags derived from controller status strings; an unknown or
	// missing status reads as false.
	IsManaged   bool
	IsValid     bool
	IsSync      bool
	IsReachable bool

	Latitude  float64
	Longitude float64

	// Raw is the merged, untransformed payload, kept for fields this struct
	// does not model yet.
	Raw map[string]any
}

// Status sentinels for the boolean health flags. The controller reports each
// flag as a free-form string; only these exact values read as true, so an
// unrecognized future value degrades to false rather than to a wrong true.
var (
	validitySentinels     = map[string]bool{"valid": true}
	syncSentinels         = map[string]bool{"In Sync": true}
	reachabilitySentinels = map[string]bool{"reachable": true}
)

// managed-by is inverted: any reported value other than this sentinel means
// the device is managed.
const unmanagedSentinel = "Unmanaged"

// GetDevices fetches the controller list, edge list and live status list
// concurrently and merges them into one record per device UUID.
//
// Controllers and edges are unioned (their key sets are disjoint); for every
// device also present in the status list, status fields overlay the
// provisioning fields, with the overlay winning on conflicts.
//
// Returns (nil, nil) when the session is not authenticated. A transport
// failure on any of the three reads fails the whole call.
func (c *Client) GetDevices(ctx context.Context) (map[string]Device, error) {
	if !c.connected {
		return nil, nil
	}

	paths := []string{controllersPath, vedgesPath, deviceStatusPath}
	ops := make([]fanout.Operation[[]rawRecord], len(paths))
	for i, path := range paths {
		ops[i] = func(ctx context.Context) ([]rawRecord, error) {
			return c.getRecords(ctx, path, nil)
		}
	}

	c.metrics.RecordFanout(len(ops), c.concurrency)
	results, err := fanout.All(ctx, c.concurrency, ops)
	if err != nil {
		return nil, err
	}

	merged := mergeInventory(keyByUUID(results[0]), keyByUUID(results[1]), keyByUUID(results[2]))

	devices := make(map[string]Device, len(merged))
	for uuid, record := range merged {
		device, err := newDevice(record)
		if err != nil {
			return nil, err
		}
		devices[uuid] = device
	}

	return devices, nil
}

func keyByUUID(records []rawRecord) map[string]rawRecord {
	keyed := make(map[string]rawRecord, len(records))
	for _, record := range records {
		if uuid := record.str("uuid"); uuid != "" {
			keyed[uuid] = record
		}
	}
	return keyed
}

func mergeInventory(controllers, vedges, statuses map[string]rawRecord) map[string]rawRecord {
	merged := make(map[string]rawRecord, len(controllers)+len(vedges))
	maps.Copy(merged, controllers)
	maps.Copy(merged, vedges)

	for uuid, record := range merged {
		status, ok := statuses[uuid]
		if !ok {
			continue
		}

		combined := make(rawRecord, len(record)+len(status))
		maps.Copy(combined, record)
		maps.Copy(combined, status)
		merged[uuid] = combined
	}

	return merged
}

func newDevice(record rawRecord) (Device, error) {
	systemIP, err := record.optionalAddr("system-ip")
	if err != nil {
		return Device{}, err
	}

	managedBy, hasManagedBy := record.strOK("managed-by")

	return Device{
		UUID:         record.str("uuid"),
		Persona:      record.str("personality"),
		SystemIP:     systemIP,
		Hostname:     record.str("host-name"),
		SiteID:       record.integer("site-id"),
		Model:        normalizeModel(record.str("deviceModel")),
		Version:      record.str("version"),
		TemplateID:   record.str("templateId"),
		TemplateName: record.str("template"),
		IsManaged:    hasManagedBy && managedBy != unmanagedSentinel,
		IsValid:      validitySentinels[record.str("validity")],
		IsSync:       syncSentinels[record.str("configStatusMessage")],
		IsReachable:  reachabilitySentinels[record.str("reachability")],
		Latitude:     record.float("latitude"),
		Longitude:    record.float("longitude"),
		Raw:          record,
	}, nil
}

// normalizeModel strips the conventional vedge- family prefix and remaps the
// synthetic cloud model code to the human-meaningful vbond name. Models
// without the prefix pass through unchanged.
func normalizeModel(model string) string {
	model = strings.TrimPrefix(model, "vedge-")
	if model == "cloud" {
		return "vbond"
	}
	return model
}

package vmanage

import (
	"context"
	"encoding/json"
)

const templateValuesPath = "/template/device/config/input"

// templateValuesRequest is the lookup payload for rendered template input
// values. The edit-state flags are fixed: this client only reads the
// currently attached configuration.
type templateValuesRequest struct {
	TemplateID     string   `json:"templateId"`
	DeviceIDs      []string `json:"deviceIds"`
	IsEdited       bool     `json:"isEdited"`
	IsMasterEdited bool     `json:"isMasterEdited"`
}

// GetDeviceTemplateValues fetches the variable values rendered into a
// device's attached template.
//
// This is a best-effort lookup: a device without a UUID or an attached
// template, an empty or absent result list, and a result that is not a list
// all collapse to (nil, nil). Only transport-level failures return an error.
func (c *Client) GetDeviceTemplateValues(ctx context.Context, device Device) (map[string]any, error) {
	if device.UUID == "" || device.TemplateID == "" {
		return nil, nil
	}

	payload := templateValuesRequest{
		TemplateID:     device.TemplateID,
		DeviceIDs:      []string{device.UUID},
		IsEdited:       false,
		IsMasterEdited: false,
	}

	data, err := c.Post(ctx, templateValuesPath, nil, payload)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}

	var rows []map[string]any
	if err := json.Unmarshal(data, &rows); err != nil || len(rows) == 0 {
		return nil, nil
	}

	return rows[0], nil
}

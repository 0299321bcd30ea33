package vmanage_test

import (
	"context"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vmanage "github.com/lexfrei/go-vmanage"
	"github.com/lexfrei/go-vmanage/internal/testutil"
)

// newTestClient authenticates against the mock controller and fails the test
// on any handshake problem.
func newTestClient(t *testing.T, mc *testutil.MockController) *vmanage.Client {
	t.Helper()

	host, port := mc.HostPort(t)

	client, err := vmanage.NewWithConfig(context.Background(), &vmanage.Config{
		Host:     host,
		Port:     port,
		Username: testutil.MockUsername,
		Password: testutil.MockPassword,
	})
	require.NoError(t, err)
	require.True(t, client.Connected())

	return client
}

func TestNewWithConfigValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		config *vmanage.Config
	}{
		{
			name:   "nil config",
			config: nil,
		},
		{
			name: "missing host",
			config: &vmanage.Config{
				Username: "admin",
				Password: "admin",
			},
		},
		{
			name: "missing credentials",
			config: &vmanage.Config{
				Host: "vmanage.local",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client, err := vmanage.NewWithConfig(context.Background(), tt.config)
			assert.Error(t, err)
			assert.Nil(t, client)
		})
	}
}

func TestLoginSuccess(t *testing.T) {
	t.Parallel()

	mc := testutil.NewMockController(t, map[string]string{
		"/system/device/controllers": testutil.Envelope(`[]`),
		"/system/device/vedges":      testutil.Envelope(`[]`),
		"/device":                    testutil.Envelope(`[]`),
	})

	client := newTestClient(t, mc)

	// The accessor round-trips through the mock, which asserts that the
	// session cookie and CSRF token are attached to the request.
	_, err := client.GetDevices(context.Background())
	require.NoError(t, err)
}

func TestLoginRejectedLeavesClientUnauthenticated(t *testing.T) {
	t.Parallel()

	mc := testutil.NewMockController(t, nil)
	host, port := mc.HostPort(t)

	client, err := vmanage.NewWithConfig(context.Background(), &vmanage.Config{
		Host:     host,
		Port:     port,
		Username: testutil.MockUsername,
		Password: "wrong-password",
	})
	require.NoError(t, err, "a rejected login is not an error")
	require.NotNil(t, client)
	assert.False(t, client.Connected())

	// Every accessor degrades to the absent value without touching the
	// network; the mock would fail the test on any dataservice request.
	ctx := context.Background()

	devices, err := client.GetDevices(ctx)
	require.NoError(t, err)
	assert.Nil(t, devices)

	device := vmanage.Device{UUID: "x", TemplateID: "y"}

	data, err := client.Get(ctx, "/device", nil)
	require.NoError(t, err)
	assert.Nil(t, data)

	values, err := client.GetDeviceTemplateValues(ctx, device)
	require.NoError(t, err)
	assert.Nil(t, values)

	addressed := vmanage.Device{UUID: "x", SystemIP: netip.MustParseAddr("10.255.0.1")}

	interfaces, err := client.GetDeviceInterfaces(ctx, addressed)
	require.NoError(t, err)
	assert.Nil(t, interfaces)

	tlocs, err := client.GetDeviceTLOCs(ctx, addressed)
	require.NoError(t, err)
	assert.Nil(t, tlocs)

	vrrp, err := client.GetDeviceVRRP(ctx, addressed)
	require.NoError(t, err)
	assert.Nil(t, vrrp)
}

func TestLoginRejectedOnHTMLBody(t *testing.T) {
	t.Parallel()

	mc := testutil.NewMockController(t, nil)
	mc.RejectLogin = true
	host, port := mc.HostPort(t)

	client, err := vmanage.NewWithConfig(context.Background(), &vmanage.Config{
		Host:     host,
		Port:     port,
		Username: testutil.MockUsername,
		Password: testutil.MockPassword,
	})
	require.NoError(t, err)
	assert.False(t, client.Connected())
}

func TestLoginConnectivityErrorIsFatal(t *testing.T) {
	t.Parallel()

	mc := testutil.NewMockController(t, nil)
	host, port := mc.HostPort(t)

	// Tear the controller down before the handshake.
	mc.Server.Close()

	client, err := vmanage.NewWithConfig(context.Background(), &vmanage.Config{
		Host:     host,
		Port:     port,
		Username: testutil.MockUsername,
		Password: testutil.MockPassword,
	})
	require.Error(t, err)
	assert.Nil(t, client)
}

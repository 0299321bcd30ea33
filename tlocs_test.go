package vmanage_test

import (
	"context"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexfrei/go-vmanage/internal/testutil"
)

func TestGetDeviceTLOCs(t *testing.T) {
	t.Parallel()

	mc := testutil.NewMockController(t, map[string]string{
		"/device/omp/tlocs/advertised": testutil.Envelope(`[
			{"site-id":100,"ip":"10.255.0.10","tloc-private-ip":"172.16.0.2","tloc-public-ip":"203.0.113.10","preference":0,"weight":1,"encap":"ipsec","color":"MPLS"},
			{"site-id":100,"ip":"10.255.0.10","tloc-private-ip":"172.16.1.2","tloc-public-ip":"198.51.100.7","preference":"100","weight":2,"encap":"ipsec","color":"biz-internet"}
		]`),
	})
	client := newTestClient(t, mc)

	tlocs, err := client.GetDeviceTLOCs(context.Background(), testDevice)
	require.NoError(t, err)
	require.Len(t, tlocs, 2)

	mpls := tlocs[0]
	assert.Equal(t, 100, mpls.SiteID)
	assert.Equal(t, netip.MustParseAddr("10.255.0.10"), mpls.SystemIP)
	assert.Equal(t, netip.MustParseAddr("172.16.0.2"), mpls.PrivateIP)
	assert.Equal(t, netip.MustParseAddr("203.0.113.10"), mpls.PublicIP)
	assert.Equal(t, 0, mpls.Preference)
	assert.Equal(t, 1, mpls.Weight)
	assert.Equal(t, "ipsec", mpls.Encapsulation)
	assert.Equal(t, "mpls", mpls.Color, "color is case-normalized")

	internet := tlocs[1]
	assert.Equal(t, 100, internet.Preference, "string-encoded preference accepted")
	assert.Equal(t, "biz-internet", internet.Color)
}

func TestGetDeviceTLOCsNoData(t *testing.T) {
	t.Parallel()

	mc := testutil.NewMockController(t, map[string]string{
		"/device/omp/tlocs/advertised": `{}`,
	})
	client := newTestClient(t, mc)

	tlocs, err := client.GetDeviceTLOCs(context.Background(), testDevice)
	require.NoError(t, err)
	assert.Nil(t, tlocs)
}

func TestGetDeviceTLOCsMalformedAddressIsFatal(t *testing.T) {
	t.Parallel()

	mc := testutil.NewMockController(t, map[string]string{
		"/device/omp/tlocs/advertised": testutil.Envelope(
			`[{"site-id":100,"ip":"10.255.0.10","tloc-private-ip":"not-an-ip","tloc-public-ip":"203.0.113.10","preference":0,"weight":1,"encap":"ipsec","color":"mpls"}]`),
	})
	client := newTestClient(t, mc)

	tlocs, err := client.GetDeviceTLOCs(context.Background(), testDevice)
	require.Error(t, err)
	assert.Nil(t, tlocs)
}

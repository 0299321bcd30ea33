package vmanage_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexfrei/go-vmanage/internal/testutil"
)

func TestGetUnwrapsEnvelope(t *testing.T) {
	t.Parallel()

	mc := testutil.NewMockController(t, map[string]string{
		"/device": testutil.Envelope(`[{"uuid":"abc"}]`),
	})
	client := newTestClient(t, mc)

	data, err := client.Get(context.Background(), "/device", nil)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"uuid":"abc"}]`, string(data))
}

func TestGetMissingDataKeyIsAbsent(t *testing.T) {
	t.Parallel()

	// 200 with a body lacking the data key is "no data", not an error.
	mc := testutil.NewMockController(t, map[string]string{
		"/device": `{"header":{"columns":[]}}`,
	})
	client := newTestClient(t, mc)

	data, err := client.Get(context.Background(), "/device", nil)
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestGetNonOKStatusIsAbsent(t *testing.T) {
	t.Parallel()

	mc := testutil.NewMockController(t, nil)
	client := newTestClient(t, mc)
	mc.Statuses["/device"] = http.StatusForbidden

	data, err := client.Get(context.Background(), "/device", nil)
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestGetUndecodableBodyIsAbsent(t *testing.T) {
	t.Parallel()

	mc := testutil.NewMockController(t, map[string]string{
		"/device": `<html>unexpected proxy page</html>`,
	})
	client := newTestClient(t, mc)

	data, err := client.Get(context.Background(), "/device", nil)
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestGetConnectivityErrorSurfaces(t *testing.T) {
	t.Parallel()

	mc := testutil.NewMockController(t, nil)
	client := newTestClient(t, mc)

	// Controller goes away after the handshake.
	mc.Server.Close()

	data, err := client.Get(context.Background(), "/device", nil)
	require.Error(t, err, "unreachable controller must not look like an empty result")
	assert.Nil(t, data)
}

func TestPostUnwrapsEnvelope(t *testing.T) {
	t.Parallel()

	mc := testutil.NewMockController(t, map[string]string{
		"/template/device/config/input": testutil.Envelope(`[{"csv-status":"complete"}]`),
	})
	client := newTestClient(t, mc)

	data, err := client.Post(context.Background(), "/template/device/config/input", nil, map[string]any{"templateId": "t1"})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"csv-status":"complete"}]`, string(data))
}

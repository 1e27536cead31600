package linuxgeneric

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/v2vconvert/v2v-convert/pkg/convertmodule"
	"github.com/v2vconvert/v2v-convert/pkg/v2vapi"
)

func TestMatches(t *testing.T) {
	m := New("")

	assert.True(t, m.Matches(v2vapi.Inspect{Distro: "ubuntu"}))
	assert.True(t, m.Matches(v2vapi.Inspect{Distro: "rhel"}))
	assert.False(t, m.Matches(v2vapi.Inspect{Distro: "windows-10"}))
	assert.False(t, m.Matches(v2vapi.Inspect{Distro: ""}))
}

func TestConvertGrantsVirtioByDefault(t *testing.T) {
	m := New("")

	granted, err := m.Convert(context.Background(), convertmodule.ConvertParams{})
	require.NoError(t, err)

	assert.Equal(t, v2vapi.BlockBusVirtioSCSI, granted.BlockBus)
	assert.Equal(t, v2vapi.NetBusVirtio, granted.NetBus)
	assert.Equal(t, v2vapi.VideoAdapterVirtio, granted.Video)
}

func TestConvertHonorsRequestedCapabilities(t *testing.T) {
	m := New("")

	bus := v2vapi.BlockBusIDE
	granted, err := m.Convert(context.Background(), convertmodule.ConvertParams{
		Requested: v2vapi.RequestedCapabilities{BlockBus: &bus},
	})
	require.NoError(t, err)

	assert.Equal(t, v2vapi.BlockBusIDE, granted.BlockBus)
	assert.Equal(t, v2vapi.NetBusVirtio, granted.NetBus)
}

func TestConvertWritesFirstbootArchive(t *testing.T) {
	archivePath := filepath.Join(t.TempDir(), "firstboot.cpio")
	m := New(archivePath)

	_, err := m.Convert(context.Background(), convertmodule.ConvertParams{})
	require.NoError(t, err)

	info, err := os.Stat(archivePath)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/v2vconvert/v2v-convert/pkg/appliance/fake"
	"github.com/v2vconvert/v2v-convert/pkg/convertmodule"
	"github.com/v2vconvert/v2v-convert/pkg/v2vapi"
)

type fixedModule struct {
	matches bool
	granted v2vapi.GrantedCapabilities
	err     error
}

func (m fixedModule) Matches(v2vapi.Inspect) bool { return m.matches }

func (m fixedModule) Convert(ctx context.Context, params convertmodule.ConvertParams) (v2vapi.GrantedCapabilities, error) {
	return m.granted, m.err
}

func validGrant() v2vapi.GrantedCapabilities {
	return v2vapi.GrantedCapabilities{
		BlockBus: v2vapi.BlockBusVirtioSCSI,
		NetBus:   v2vapi.NetBusVirtio,
		Video:    v2vapi.VideoAdapterVirtio,
	}
}

func TestRunConversionFailsWhenNoModuleMatches(t *testing.T) {
	registry := convertmodule.NewRegistry()
	registry.Register(fixedModule{matches: false})

	a := fake.New(v2vapi.Inspect{})
	_, err := RunConversion(context.Background(), registry, convertmodule.ConvertParams{}, a, false)
	require.Error(t, err)

	var pipelineErr *PipelineError
	assert.True(t, errors.As(err, &pipelineErr))
	assert.True(t, errors.Is(pipelineErr, CategoryConversion))
}

func TestRunConversionRejectsInvalidGrantedCapabilities(t *testing.T) {
	registry := convertmodule.NewRegistry()
	registry.Register(fixedModule{matches: true, granted: v2vapi.GrantedCapabilities{}})

	a := fake.New(v2vapi.Inspect{})
	_, err := RunConversion(context.Background(), registry, convertmodule.ConvertParams{}, a, false)
	assert.Error(t, err)
}

func TestRunConversionSucceedsAndTrimsWhenRequested(t *testing.T) {
	registry := convertmodule.NewRegistry()
	registry.Register(fixedModule{matches: true, granted: validGrant()})

	a := fake.New(v2vapi.Inspect{})
	mountpoints := []v2vapi.MountpointStats{
		{MountPath: "/", FilesystemType: "ext4"},
		{MountPath: "swap", FilesystemType: "swap"},
	}

	granted, err := RunConversion(context.Background(), registry, convertmodule.ConvertParams{
		Inspect: v2vapi.Inspect{Mountpoints: mountpoints, HasVirtioDrivers: true},
	}, a, true)
	require.NoError(t, err)
	assert.Equal(t, validGrant(), granted)
	assert.Equal(t, []string{"/"}, a.Trimmed)
}

func TestRunConversionSkipsTrimWhenNotRequested(t *testing.T) {
	registry := convertmodule.NewRegistry()
	registry.Register(fixedModule{matches: true, granted: validGrant()})

	a := fake.New(v2vapi.Inspect{})
	mountpoints := []v2vapi.MountpointStats{{MountPath: "/", FilesystemType: "ext4"}}

	_, err := RunConversion(context.Background(), registry, convertmodule.ConvertParams{
		Inspect: v2vapi.Inspect{Mountpoints: mountpoints},
	}, a, false)
	require.NoError(t, err)
	assert.Empty(t, a.Trimmed)
}

func TestRunConversionWrapsModuleError(t *testing.T) {
	registry := convertmodule.NewRegistry()
	registry.Register(fixedModule{matches: true, err: errors.New("boom")})

	a := fake.New(v2vapi.Inspect{})
	_, err := RunConversion(context.Background(), registry, convertmodule.ConvertParams{}, a, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

package pipeline

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/v2vconvert/v2v-convert/pkg/v2vapi"
)

func TestResolveFormatPrefersOutputAdapterOverride(t *testing.T) {
	output := &stubOutput{overrideFormat: "qcow2", overrideOK: true}
	overlay := v2vapi.Overlay{Disk: v2vapi.SourceDisk{Format: "raw"}}

	format, err := ResolveFormat(overlay, output, ResolveFormatOptions{CLIOutputFormat: "raw"})
	require.NoError(t, err)
	assert.Equal(t, "qcow2", format)
}

func TestResolveFormatFallsBackToCLIFlag(t *testing.T) {
	output := &stubOutput{}
	overlay := v2vapi.Overlay{Disk: v2vapi.SourceDisk{Format: "raw"}}

	format, err := ResolveFormat(overlay, output, ResolveFormatOptions{CLIOutputFormat: "qcow2"})
	require.NoError(t, err)
	assert.Equal(t, "qcow2", format)
}

func TestResolveFormatFallsBackToDeclaredFormat(t *testing.T) {
	output := &stubOutput{}
	overlay := v2vapi.Overlay{Disk: v2vapi.SourceDisk{Format: "qcow2"}}

	format, err := ResolveFormat(overlay, output, ResolveFormatOptions{})
	require.NoError(t, err)
	assert.Equal(t, "qcow2", format)
}

func TestResolveFormatFailsWhenUndefined(t *testing.T) {
	output := &stubOutput{}
	overlay := v2vapi.Overlay{Disk: v2vapi.SourceDisk{}}

	_, err := ResolveFormat(overlay, output, ResolveFormatOptions{})
	require.Error(t, err)

	var pipelineErr *PipelineError
	assert.True(t, errors.As(err, &pipelineErr))
	assert.True(t, errors.Is(pipelineErr, CategoryFormatResolution))
}

func TestResolveFormatRejectsUnsupportedFormat(t *testing.T) {
	output := &stubOutput{}
	overlay := v2vapi.Overlay{Disk: v2vapi.SourceDisk{Format: "vmdk"}}

	_, err := ResolveFormat(overlay, output, ResolveFormatOptions{})
	assert.Error(t, err)
}

func TestResolveFormatRequiresQcow2ForCompression(t *testing.T) {
	output := &stubOutput{}
	overlay := v2vapi.Overlay{Disk: v2vapi.SourceDisk{Format: "raw"}}

	_, err := ResolveFormat(overlay, output, ResolveFormatOptions{Compressed: true})
	assert.Error(t, err)
}

func TestResolveFormatAllowsCompressionWithQcow2(t *testing.T) {
	output := &stubOutput{}
	overlay := v2vapi.Overlay{Disk: v2vapi.SourceDisk{Format: "qcow2"}}

	format, err := ResolveFormat(overlay, output, ResolveFormatOptions{Compressed: true})
	require.NoError(t, err)
	assert.Equal(t, "qcow2", format)
}

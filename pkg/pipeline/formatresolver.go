package pipeline

import (
	"github.com/v2vconvert/v2v-convert/pkg/outputadapter"
	"github.com/v2vconvert/v2v-convert/pkg/v2vapi"
)

// ResolveFormatOptions carries the CLI-level inputs to ResolveFormat.
type ResolveFormatOptions struct {
	CLIOutputFormat string
	Compressed      bool
}

// ResolveFormat implements the cascading format-resolution rule: output
// adapter override, then CLI flag, then the source disk's declared
// format, else fail. The result is further checked against the raw/qcow2
// restriction and the compression-requires-qcow2 rule.
func ResolveFormat(overlay v2vapi.Overlay, output outputadapter.Adapter, opts ResolveFormatOptions) (string, error) {
	format, ok := output.OverrideOutputFormat(overlay)
	if !ok {
		format = opts.CLIOutputFormat
	}
	if format == "" {
		format = overlay.Disk.Format
	}
	if format == "" {
		return "", NewPipelineError(CategoryFormatResolution, ErrUndefinedDiskFormat.Error())
	}

	if format != "raw" && format != "qcow2" {
		return "", NewPipelineError(CategoryFormatResolution, ErrUnsupportedDiskFormat.Error())
	}

	if opts.Compressed && format != "qcow2" {
		return "", NewPipelineError(CategoryFormatResolution, ErrCompressionRequiresQcow2.Error())
	}

	return format, nil
}

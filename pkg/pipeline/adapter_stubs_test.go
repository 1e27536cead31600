package pipeline

import (
	"context"

	"github.com/v2vconvert/v2v-convert/pkg/outputadapter"
	"github.com/v2vconvert/v2v-convert/pkg/v2vapi"
)

// stubOutput is a minimal outputadapter.Adapter for pipeline tests that only
// exercise one or two of its methods; fields left at their zero value give
// the most permissive behavior.
type stubOutput struct {
	precheckErr       error
	supported         map[v2vapi.TargetFirmware]bool
	checkFirmwareErr  error
	overrideFormat    string
	overrideOK        bool
	prepareErr        error
	targetFiles       []v2vapi.TargetFile
	transferFormat    string
	createMetadataErr error
}

func (s *stubOutput) Precheck(ctx context.Context) error { return s.precheckErr }
func (s *stubOutput) AsOptions() string                  { return "stub()" }

func (s *stubOutput) SupportedFirmware() map[v2vapi.TargetFirmware]bool {
	if s.supported != nil {
		return s.supported
	}
	return map[v2vapi.TargetFirmware]bool{
		v2vapi.TargetFirmwareBIOS: true,
		v2vapi.TargetFirmwareUEFI: true,
	}
}

func (s *stubOutput) CheckTargetFirmware(caps v2vapi.GrantedCapabilities, fw v2vapi.TargetFirmware) error {
	return s.checkFirmwareErr
}

func (s *stubOutput) OverrideOutputFormat(overlay v2vapi.Overlay) (string, bool) {
	return s.overrideFormat, s.overrideOK
}

func (s *stubOutput) PrepareTargets(ctx context.Context, name string, planned []outputadapter.PlannedDisk, caps v2vapi.GrantedCapabilities) ([]v2vapi.TargetFile, error) {
	if s.prepareErr != nil {
		return nil, s.prepareErr
	}
	if s.targetFiles != nil {
		return s.targetFiles, nil
	}
	files := make([]v2vapi.TargetFile, len(planned))
	for i, p := range planned {
		files[i] = v2vapi.NewTargetFilePath(p.Overlay.Path)
	}
	return files, nil
}

func (s *stubOutput) DiskCreate(ctx context.Context, opts outputadapter.DiskCreateOptions) error {
	return nil
}

func (s *stubOutput) TransferFormat(target v2vapi.TargetFile) string { return s.transferFormat }

func (s *stubOutput) DiskCopied(ctx context.Context, target v2vapi.TargetFile, index, total int) error {
	return nil
}

func (s *stubOutput) CreateMetadata(ctx context.Context, params outputadapter.MetadataParams) error {
	return s.createMetadataErr
}

var _ outputadapter.Adapter = (*stubOutput)(nil)

// stubPreservingOutput embeds stubOutput and additionally implements
// outputadapter.OverlayPreserver, for tests of the optional debug-bundle
// wiring.
type stubPreservingOutput struct {
	stubOutput
	preserved   []string
	preserveErr error
}

func (s *stubPreservingOutput) PreserveOverlay(overlayPath string) error {
	s.preserved = append(s.preserved, overlayPath)
	return s.preserveErr
}

var _ outputadapter.OverlayPreserver = (*stubPreservingOutput)(nil)

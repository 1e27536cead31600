package pipeline

import (
	"errors"
	"fmt"
)

// Category values let callers classify a *PipelineError with errors.Is
// without string-matching messages, splitting a single "fatal with
// message" error kind into categories for diagnostics.
var (
	CategoryPreflight        = errors.New("preflight")
	CategorySourceInvariant  = errors.New("source-invariant")
	CategoryOverlay          = errors.New("overlay")
	CategoryInspection       = errors.New("inspection")
	CategoryEstimate         = errors.New("estimate")
	CategoryConversion       = errors.New("conversion")
	CategoryTargetLayout     = errors.New("target-layout")
	CategoryFormatResolution = errors.New("format-resolution")
	CategoryCopy             = errors.New("copy")
	CategoryMetadata         = errors.New("metadata")
)

// Static error messages for conditions the pipeline itself asserts, as
// opposed to wrapping a subprocess or adapter failure.
var (
	ErrHostTempSpace            = errors.New("insufficient free space in temp directory")
	ErrDuplicateDiskID          = errors.New("duplicate source disk id")
	ErrZeroSizedDisk            = errors.New("source disk has zero virtual size")
	ErrOverlayMissingBacking    = errors.New("overlay has no backing file")
	ErrGuestFreeSpace           = errors.New("insufficient free space on guest filesystem")
	ErrGuestFreeInodes          = errors.New("insufficient free inodes on guest filesystem")
	ErrNoMatchingModule         = errors.New("unable to convert this guest type")
	ErrFirmwareUnsupported      = errors.New("target does not support the selected firmware")
	ErrTargetCountMismatch      = errors.New("output adapter returned a different number of targets than overlays")
	ErrUndefinedDiskFormat      = errors.New("disk has no defined format")
	ErrUnsupportedDiskFormat    = errors.New("disk format must be raw or qcow2")
	ErrCompressionRequiresQcow2 = errors.New("--compressed requires qcow2 output format")
)

// PipelineError wraps a failure with the stage category it occurred in and,
// where applicable, the underlying cause (a subprocess error, an adapter
// error, ...).
type PipelineError struct {
	Category error
	Message  string
	Cause    error
}

func (e *PipelineError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s:\n%v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *PipelineError) Unwrap() error {
	return e.Cause
}

func (e *PipelineError) Is(target error) bool {
	return errors.Is(e.Category, target)
}

func NewPipelineError(category error, message string) *PipelineError {
	return &PipelineError{Category: category, Message: message}
}

func NewPipelineErrorWithCause(category error, message string, cause error) *PipelineError {
	return &PipelineError{Category: category, Message: message, Cause: cause}
}

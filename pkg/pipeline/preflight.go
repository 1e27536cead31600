package pipeline

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// TempDirEnvVar is the environment variable that relocates the large temp
// directory used for overlays and the appliance's own scratch space.
const TempDirEnvVar = "V2VCONVERT_TMPDIR"

// MinHostTempFreeBytes is the free-space floor required of the configured
// temp directory. This folds in appliance size as a heuristic and may
// become configuration later; for now it stays a constant (open question
// resolved in DESIGN.md).
const MinHostTempFreeBytes = 1 * 1024 * 1024 * 1024

// CheckHostTempSpace verifies tempDir's filesystem has at least
// MinHostTempFreeBytes free, as part of host preflight.
func CheckHostTempSpace(tempDir string) error {
	var stat unix.Statfs_t
	if err := unix.Statfs(tempDir, &stat); err != nil {
		return NewPipelineErrorWithCause(CategoryPreflight,
			fmt.Sprintf("failed to read free space of temp directory (%s)", tempDir), err)
	}

	free := int64(stat.Frsize) * int64(stat.Bfree)
	if free < MinHostTempFreeBytes {
		return NewPipelineError(CategoryPreflight, fmt.Sprintf(
			"temp directory (%s) has only %d bytes free, need at least %d; relocate it with %s",
			tempDir, free, MinHostTempFreeBytes, TempDirEnvVar))
	}

	return nil
}

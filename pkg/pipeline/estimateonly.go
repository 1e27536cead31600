package pipeline

import (
	"encoding/json"
	"fmt"

	"github.com/v2vconvert/v2v-convert/internal/diskutils"
	"github.com/v2vconvert/v2v-convert/pkg/v2vapi"
)

// EstimateReport is the machine-readable document produced for
// --print-estimate: `{"disks": [...], "total": ...}`.
type EstimateReport struct {
	Disks []int64 `json:"disks"`
	Total int64   `json:"total"`
}

// MeasureOverlays runs the measurement tool (qemu-img info's actual-size
// field) on every overlay and fills in ActualSize, for the estimate-only
// branch.
func MeasureOverlays(overlays []v2vapi.Overlay) error {
	for i := range overlays {
		info, err := diskutils.GetImageFileInfo(overlays[i].Path)
		if err != nil {
			return NewPipelineErrorWithCause(CategoryEstimate,
				fmt.Sprintf("failed to measure overlay for disk %d", overlays[i].Disk.ID), err)
		}

		actual := info.ActualSize
		overlays[i].Stats.ActualSize = &actual
	}

	return nil
}

// BuildEstimateReport assembles the JSON-ready report from each overlay's
// estimated size, falling back to actual size when no estimate was
// computed (src_total == 0).
func BuildEstimateReport(overlays []v2vapi.Overlay) EstimateReport {
	report := EstimateReport{Disks: make([]int64, len(overlays))}

	var total int64
	for i, ov := range overlays {
		var size int64
		switch {
		case ov.Stats.EstimatedSize != nil:
			size = *ov.Stats.EstimatedSize
		case ov.Stats.ActualSize != nil:
			size = *ov.Stats.ActualSize
		default:
			size = ov.VirtualSize
		}

		report.Disks[i] = size
		total += size
	}
	report.Total = total

	return report
}

// RenderEstimateJSON marshals report with 2-space indentation.
func RenderEstimateJSON(report EstimateReport) (string, error) {
	encoded, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode estimate report:\n%w", err)
	}

	return string(encoded), nil
}

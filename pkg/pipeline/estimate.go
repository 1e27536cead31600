package pipeline

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/v2vconvert/v2v-convert/pkg/v2vapi"
)

// EstimateOverlaySizes implements the space estimator: given the guest's
// mountpoint stats and the overlays, it sets each overlay's
// Stats.EstimatedSize in place. A no-op when src_total is 0 or in
// in-place mode, where it is never called.
func EstimateOverlaySizes(mountpoints []v2vapi.MountpointStats, overlays []v2vapi.Overlay) {
	fsTotals := make([]float64, len(mountpoints))
	for i, mp := range mountpoints {
		fsTotals[i] = float64(mp.TotalBytes())
	}
	fsTotal := floats.Sum(fsTotals)

	srcTotals := make([]float64, len(overlays))
	for i, ov := range overlays {
		srcTotals[i] = float64(ov.VirtualSize)
	}
	srcTotal := floats.Sum(srcTotals)

	if srcTotal == 0 {
		return
	}

	ratio := fsTotal / srcTotal

	fsFreeTerms := make([]float64, 0, len(mountpoints))
	for _, mp := range mountpoints {
		if mp.TrimExpectedToSucceed() {
			fsFreeTerms = append(fsFreeTerms, float64(mp.FreeBytes()))
		}
	}
	fsFree := floats.Sum(fsFreeTerms)

	scaledSaving := math.Floor(fsFree * ratio)

	for i := range overlays {
		p := float64(overlays[i].VirtualSize) / srcTotal
		estimated := overlays[i].VirtualSize - int64(math.Floor(p*scaledSaving))
		overlays[i].Stats.EstimatedSize = &estimated
	}
}

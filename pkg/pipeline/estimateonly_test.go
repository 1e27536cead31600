package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/v2vconvert/v2v-convert/pkg/v2vapi"
)

func int64ptr(v int64) *int64 { return &v }

func TestBuildEstimateReportPrefersEstimatedSize(t *testing.T) {
	overlays := []v2vapi.Overlay{
		{VirtualSize: 100, Stats: &v2vapi.OverlayStats{EstimatedSize: int64ptr(40), ActualSize: int64ptr(90)}},
	}

	report := BuildEstimateReport(overlays)
	assert.Equal(t, []int64{40}, report.Disks)
	assert.Equal(t, int64(40), report.Total)
}

func TestBuildEstimateReportFallsBackToActualSize(t *testing.T) {
	overlays := []v2vapi.Overlay{
		{VirtualSize: 100, Stats: &v2vapi.OverlayStats{ActualSize: int64ptr(70)}},
	}

	report := BuildEstimateReport(overlays)
	assert.Equal(t, []int64{70}, report.Disks)
}

func TestBuildEstimateReportFallsBackToVirtualSize(t *testing.T) {
	overlays := []v2vapi.Overlay{
		{VirtualSize: 100, Stats: &v2vapi.OverlayStats{}},
	}

	report := BuildEstimateReport(overlays)
	assert.Equal(t, []int64{100}, report.Disks)
}

func TestBuildEstimateReportSumsTotal(t *testing.T) {
	overlays := []v2vapi.Overlay{
		{VirtualSize: 100, Stats: &v2vapi.OverlayStats{EstimatedSize: int64ptr(40)}},
		{VirtualSize: 200, Stats: &v2vapi.OverlayStats{EstimatedSize: int64ptr(150)}},
	}

	report := BuildEstimateReport(overlays)
	assert.Equal(t, int64(190), report.Total)
}

func TestRenderEstimateJSONProducesTwoSpaceIndentedDocument(t *testing.T) {
	report := EstimateReport{Disks: []int64{40, 150}, Total: 190}

	rendered, err := RenderEstimateJSON(report)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"disks\": [\n    40,\n    150\n  ],\n  \"total\": 190\n}", rendered)
}

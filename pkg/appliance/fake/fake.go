// Package fake provides an in-memory appliance.Appliance for pipeline
// tests, standing in for a real libguestfs-backed implementation.
package fake

import (
	"context"
	"fmt"

	"github.com/v2vconvert/v2v-convert/pkg/appliance"
	"github.com/v2vconvert/v2v-convert/pkg/v2vapi"
)

// AttachedDisk records one AttachDisk call, for tests to assert against.
type AttachedDisk struct {
	DeviceName string
	Path       string
	Format     string
	Opts       appliance.AttachOptions
}

// Appliance is a scriptable fake: tests set Inspection (and optionally
// FstrimErr / UnlockErr) before handing it to the pipeline, then assert on
// the recorded calls afterwards.
type Appliance struct {
	// Inspection is returned verbatim by Inspect.
	Inspection v2vapi.Inspect

	// LaunchErr, InspectErr, FstrimErr, UnlockErr, ShutdownErr let a test
	// force a given stage to fail.
	LaunchErr   error
	InspectErr  error
	FstrimErr   error
	UnlockErr   error
	ShutdownErr error

	Attached  []AttachedDisk
	Launched  bool
	ShutDown  bool
	Remounted []string
	Trimmed   []string
	Unlocked  map[string]string
}

func New(inspection v2vapi.Inspect) *Appliance {
	return &Appliance{Inspection: inspection}
}

func (a *Appliance) AttachDisk(deviceName, path, format string, opts appliance.AttachOptions) error {
	a.Attached = append(a.Attached, AttachedDisk{DeviceName: deviceName, Path: path, Format: format, Opts: opts})
	return nil
}

func (a *Appliance) Launch(ctx context.Context) error {
	if a.LaunchErr != nil {
		return a.LaunchErr
	}
	a.Launched = true
	return nil
}

func (a *Appliance) UnlockEncryptedVolumes(passphrases map[string]string) error {
	if a.UnlockErr != nil {
		return a.UnlockErr
	}
	if a.Unlocked == nil {
		a.Unlocked = make(map[string]string)
	}
	for k, v := range passphrases {
		a.Unlocked[k] = v
	}
	return nil
}

func (a *Appliance) Inspect(ctx context.Context) (v2vapi.Inspect, error) {
	if a.InspectErr != nil {
		return v2vapi.Inspect{}, a.InspectErr
	}
	if !a.Launched {
		return v2vapi.Inspect{}, fmt.Errorf("fake appliance: Inspect called before Launch")
	}
	return a.Inspection, nil
}

func (a *Appliance) Remount(mountPath string) error {
	a.Remounted = append(a.Remounted, mountPath)
	return nil
}

func (a *Appliance) Fstrim(mountPath string) error {
	if a.FstrimErr != nil {
		return a.FstrimErr
	}
	a.Trimmed = append(a.Trimmed, mountPath)
	return nil
}

func (a *Appliance) Shutdown(ctx context.Context) error {
	if a.ShutdownErr != nil {
		return a.ShutdownErr
	}
	a.ShutDown = true
	return nil
}

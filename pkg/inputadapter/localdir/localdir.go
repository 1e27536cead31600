// Package localdir implements inputadapter.Adapter over a directory
// containing a source.yaml descriptor plus sibling disk image files, the
// simplest possible input adapter, selected by the CLI's --input-dir.
package localdir

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/v2vconvert/v2v-convert/internal/diskutils"
	"github.com/v2vconvert/v2v-convert/internal/file"
	"github.com/v2vconvert/v2v-convert/internal/logger"
	"github.com/v2vconvert/v2v-convert/pkg/v2vapi"
)

// DescriptorFile is the well-known name of the per-directory VM metadata
// file.
const DescriptorFile = "source.yaml"

var diskImageExtensions = map[string]bool{
	".img":   true,
	".raw":   true,
	".qcow2": true,
	".vhd":   true,
	".vhdx":  true,
}

// descriptor mirrors source.yaml's shape. Every field is optional; Source
// fills absent fields with its own defaults.
type descriptor struct {
	Name        string          `yaml:"name"`
	Hypervisor  string          `yaml:"hypervisor"`
	MemoryBytes int64           `yaml:"memoryBytes"`
	VCPUs       int             `yaml:"vcpus"`
	Firmware    string          `yaml:"firmware"`
	NICs        []descriptorNIC `yaml:"nics"`
}

type descriptorNIC struct {
	MAC      string `yaml:"mac"`
	VNetwork string `yaml:"network"`
}

// Adapter reads source.yaml from Dir for VM metadata, then discovers disk
// image files as every other file in Dir with a recognized extension, in
// sorted order.
type Adapter struct {
	Dir string
}

func New(dir string) *Adapter {
	return &Adapter{Dir: dir}
}

func (a *Adapter) Precheck(ctx context.Context) error {
	exists, err := file.PathExists(a.Dir)
	if err != nil {
		return fmt.Errorf("localdir: checking source directory (%s):\n%w", a.Dir, err)
	}
	if !exists {
		return fmt.Errorf("localdir: source directory does not exist (%s)", a.Dir)
	}

	paths, err := a.diskPaths()
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("localdir: no disk image files found in %s", a.Dir)
	}

	return nil
}

func (a *Adapter) AsOptions() string {
	return fmt.Sprintf("localdir(dir=%s)", a.Dir)
}

func (a *Adapter) Source(ctx context.Context, bandwidthLimitKbps int) (v2vapi.Source, []v2vapi.SourceDisk, error) {
	desc, err := a.readDescriptor()
	if err != nil {
		return v2vapi.Source{}, nil, err
	}

	paths, err := a.diskPaths()
	if err != nil {
		return v2vapi.Source{}, nil, err
	}

	disks := make([]v2vapi.SourceDisk, 0, len(paths))
	for i, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return v2vapi.Source{}, nil, fmt.Errorf("localdir: resolving disk path (%s):\n%w", p, err)
		}

		format := ""
		if info, err := diskutils.GetImageFileInfo(abs); err == nil {
			format = info.Format
		} else {
			logger.Log.Debugf("localdir: could not probe format of %s, leaving it unset: %v", abs, err)
		}

		disks = append(disks, v2vapi.SourceDisk{
			URI:        "file://" + abs,
			Format:     format,
			ID:         i,
			Controller: v2vapi.NewControllerKind(v2vapi.ControllerVirtioSCSI),
		})
	}

	nics := make([]v2vapi.NIC, len(desc.NICs))
	for i, n := range desc.NICs {
		nics[i] = v2vapi.NIC{MAC: n.MAC, VNetwork: n.VNetwork}
	}

	name := desc.Name
	if name == "" {
		name = filepath.Base(a.Dir)
	}

	memoryBytes := desc.MemoryBytes
	if memoryBytes == 0 {
		memoryBytes = 1024 * 1024 * 1024
	}

	vcpus := desc.VCPUs
	if vcpus == 0 {
		vcpus = 1
	}

	firmware := v2vapi.FirmwareHintUnknown
	switch desc.Firmware {
	case "bios":
		firmware = v2vapi.FirmwareHintBIOS
	case "uefi":
		firmware = v2vapi.FirmwareHintUEFI
	}

	source := v2vapi.Source{
		Name:        name,
		Hypervisor:  parseHypervisor(desc.Hypervisor),
		MemoryBytes: memoryBytes,
		VCPUs:       vcpus,
		NICs:        nics,
		Video:       v2vapi.VideoAdapterVirtio,
		Firmware:    firmware,
	}

	return source, disks, nil
}

func parseHypervisor(tag string) v2vapi.Hypervisor {
	switch tag {
	case "", "kvm":
		return v2vapi.NewHypervisor(v2vapi.HypervisorKVM)
	case "vmware":
		return v2vapi.NewHypervisor(v2vapi.HypervisorVMware)
	case "hyperv":
		return v2vapi.NewHypervisor(v2vapi.HypervisorHyperV)
	case "xen":
		return v2vapi.NewHypervisor(v2vapi.HypervisorXen)
	default:
		return v2vapi.NewOtherHypervisor(tag)
	}
}

func (a *Adapter) readDescriptor() (descriptor, error) {
	path := filepath.Join(a.Dir, DescriptorFile)

	exists, err := file.PathExists(path)
	if err != nil {
		return descriptor{}, fmt.Errorf("localdir: checking descriptor (%s):\n%w", path, err)
	}
	if !exists {
		return descriptor{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return descriptor{}, fmt.Errorf("localdir: reading descriptor (%s):\n%w", path, err)
	}

	var desc descriptor
	if err := yaml.Unmarshal(data, &desc); err != nil {
		return descriptor{}, fmt.Errorf("localdir: parsing descriptor (%s):\n%w", path, err)
	}

	return desc, nil
}

func (a *Adapter) diskPaths() ([]string, error) {
	entries, err := os.ReadDir(a.Dir)
	if err != nil {
		return nil, fmt.Errorf("localdir: listing source directory (%s):\n%w", a.Dir, err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if e.Name() == DescriptorFile {
			continue
		}
		if !diskImageExtensions[filepath.Ext(e.Name())] {
			continue
		}
		paths = append(paths, filepath.Join(a.Dir, e.Name()))
	}

	sort.Strings(paths)

	return paths, nil
}

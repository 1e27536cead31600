// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.

// Tool to convert a guest disk image for use under KVM.

package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/alecthomas/kong"
	"gopkg.in/yaml.v3"

	"github.com/v2vconvert/v2v-convert/internal/logger"
	"github.com/v2vconvert/v2v-convert/internal/telemetry"
	"github.com/v2vconvert/v2v-convert/pkg/appliance/fake"
	"github.com/v2vconvert/v2v-convert/pkg/convertmodule"
	"github.com/v2vconvert/v2v-convert/pkg/convertmodule/linuxgeneric"
	"github.com/v2vconvert/v2v-convert/pkg/convertmodule/windowsgeneric"
	"github.com/v2vconvert/v2v-convert/pkg/inputadapter"
	"github.com/v2vconvert/v2v-convert/pkg/inputadapter/localdir"
	"github.com/v2vconvert/v2v-convert/pkg/inputadapter/ociimage"
	"github.com/v2vconvert/v2v-convert/pkg/outputadapter"
	"github.com/v2vconvert/v2v-convert/pkg/outputadapter/azureblob"
	"github.com/v2vconvert/v2v-convert/pkg/outputadapter/localfile"
	"github.com/v2vconvert/v2v-convert/pkg/pipeline"
	"github.com/v2vconvert/v2v-convert/pkg/v2vapi"
)

// ToolVersion is stamped at release time; left as "dev" for source builds.
var ToolVersion = "dev"

type v2vconvertCmd struct {
	// Input source selection.
	InputDir   string `name:"input-dir" help:"Read the source VM from a local directory (source.yaml plus disk images)." xor:"input"`
	InputImage string `name:"input-image" help:"Pull the source VM disk from an OCI registry reference." xor:"input"`
	InputCache string `name:"input-cache" help:"Cache directory for OCI-pulled source images." default:"/var/cache/v2vconvert"`
	SignTrust  string `name:"input-trust-policy" help:"Notation trust policy name required of --input-image, if signature checking is enabled."`
	SignStore  string `name:"input-trust-store" help:"Notation trust store name."`
	SignCert   string `name:"input-trust-cert" help:"Path to the certificate to seed the trust store with."`

	// Output target selection.
	OutputDir        string `name:"output-dir" help:"Write target disks to a local directory." xor:"output"`
	OutputBlobURL    string `name:"output-blob-account" help:"Upload target disks to this Azure Storage account URL." xor:"output"`
	OutputContainer  string `name:"output-blob-container" help:"Azure Blob container name, used with --output-blob-account."`
	OutputBlobPrefix string `name:"output-blob-prefix" help:"Prefix applied to uploaded blob names."`
	OutputStagingDir string `name:"output-staging-dir" help:"Local staging directory for --output-blob-account uploads." default:"/var/tmp/v2vconvert-staging"`
	OutputName       string `name:"output-name" help:"Rename the VM in the target metadata."`
	OutputFormat     string `name:"output-format" short:"o" placeholder:"(raw|qcow2)" help:"Target disk format, overridden by the output adapter if it has its own opinion."`
	OutputAlloc      string `name:"output-allocation" placeholder:"(sparse|preallocated)" help:"Preallocation hint passed to disk_create; omit to let the output adapter decide." enum:"sparse,preallocated," default:""`
	Compressed       bool   `name:"compressed" help:"Request qcow2 compression. Requires the resolved format to be qcow2."`
	DebugBundle      string `name:"debug-bundle" help:"With --output-dir, also zstd-compress every overlay into <path>.<disk>.zst for later troubleshooting."`

	TempDir            string            `name:"temp-dir" help:"Large scratch directory for overlays." default:"/var/tmp" env:"V2VCONVERT_TMPDIR"`
	BandwidthLimitKbps int               `name:"bandwidth-limit" help:"Cap input read bandwidth in Kbps; 0 means unlimited."`
	NetworkMap         map[string]string `name:"network-map" help:"Rewrite NIC networks, e.g. --network-map old=new."`
	Passphrases        map[string]string `name:"passphrase" help:"Decryption passphrase for an encrypted volume, e.g. --passphrase sda2=secret."`
	PassphraseFile     string            `name:"passphrase-file" help:"YAML file of {device: passphrase} pairs, merged under --passphrase."`
	StaticIP           []string          `name:"static-ip" help:"Preserve a static IP configuration across conversion, by MAC address."`
	Trim               bool              `name:"trim" help:"Run fstrim on trimmable guest filesystems after conversion (always on in copy mode)." default:"true"`
	InPlace            bool              `name:"in-place" help:"Convert the source disks directly, without creating overlays."`
	InspectFile        string            `name:"inspect-file" help:"YAML guest-inspection record, in place of a real libguestfs-backed appliance (see pkg/appliance)."`
	PrintSource        bool              `name:"print-source" help:"Print the parsed source record and exit."`
	PrintEstimate      bool              `name:"print-estimate" help:"Print the projected target disk sizes and exit without copying."`
	MachineReadable    bool              `name:"machine-readable" help:"Emit --print-estimate output as JSON."`
	DisableTelemetry   bool              `name:"disable-telemetry" help:"Disable OpenTelemetry span export regardless of OTEL_EXPORTER_OTLP_ENDPOINT."`

	logger.LogFlags
}

func main() {
	ctx := context.Background()

	cli := &v2vconvertCmd{}
	_ = kong.Parse(cli,
		kong.Vars{"version": ToolVersion},
		kong.Vars(logger.KongVars()),
		kong.HelpOptions{Compact: true, FlagsLast: true},
		kong.UsageOnError())

	logger.InitBestEffort(&cli.LogFlags)

	if err := telemetry.Init(ctx, cli.DisableTelemetry, ToolVersion); err != nil {
		logger.Log.Warnf("failed to initialize telemetry: %v", err)
	}
	defer func() {
		if err := telemetry.Shutdown(ctx); err != nil {
			logger.Log.Warnf("failed to shut down telemetry: %v", err)
		}
	}()

	if err := run(ctx, cli); err != nil {
		log.Fatalf("conversion failed:\n%v", err)
	}
}

func run(ctx context.Context, cli *v2vconvertCmd) error {
	input, err := buildInputAdapter(cli)
	if err != nil {
		return err
	}

	output, err := buildOutputAdapter(ctx, cli)
	if err != nil {
		return err
	}

	passphrases, err := mergedPassphrases(cli)
	if err != nil {
		return err
	}

	registry := convertmodule.NewRegistry()
	registry.Register(linuxgeneric.New(""))
	registry.Register(windowsgeneric.New(""))

	inspect, err := loadInspect(cli.InspectFile)
	if err != nil {
		return err
	}
	a := fake.New(inspect)

	cfg := pipeline.Config{
		TempDir:            cli.TempDir,
		InPlace:            cli.InPlace,
		PrintSource:        cli.PrintSource,
		PrintEstimate:      cli.PrintEstimate,
		MachineReadable:    cli.MachineReadable,
		Compressed:         cli.Compressed,
		OutputFormat:       cli.OutputFormat,
		Allocation:         outputadapter.Preallocation(cli.OutputAlloc),
		OutputName:         cli.OutputName,
		NetworkMap:         cli.NetworkMap,
		BandwidthLimitKbps: cli.BandwidthLimitKbps,
		Passphrases:        passphrases,
		StaticIPs:          cli.StaticIP,
		Trim:               cli.Trim,
	}

	_, err = pipeline.Run(ctx, cfg, input, output, a, registry)
	return err
}

func buildInputAdapter(cli *v2vconvertCmd) (inputadapter.Adapter, error) {
	switch {
	case cli.InputDir != "":
		return localdir.New(cli.InputDir), nil
	case cli.InputImage != "":
		adapter := ociimage.New(cli.InputImage, cli.InputImage, cli.InputCache, cli.TempDir)
		if cli.SignTrust != "" {
			adapter.Signature = &ociimage.SignatureCheck{
				TrustPolicyName: cli.SignTrust,
				TrustStoreName:  cli.SignStore,
				CertificatePath: cli.SignCert,
			}
		}
		return adapter, nil
	default:
		return nil, fmt.Errorf("one of --input-dir or --input-image is required")
	}
}

func buildOutputAdapter(ctx context.Context, cli *v2vconvertCmd) (outputadapter.Adapter, error) {
	switch {
	case cli.OutputBlobURL != "":
		return azureblob.New(cli.OutputBlobURL, cli.OutputContainer, cli.OutputBlobPrefix, cli.OutputStagingDir), nil
	case cli.OutputDir != "":
		adapter := localfile.New(cli.OutputDir)
		adapter.OutputFormat = cli.OutputFormat
		adapter.DebugBundlePath = cli.DebugBundle
		return adapter, nil
	default:
		return nil, fmt.Errorf("one of --output-dir or --output-blob-account is required")
	}
}

func mergedPassphrases(cli *v2vconvertCmd) (map[string]string, error) {
	result := map[string]string{}
	for device, passphrase := range cli.Passphrases {
		result[device] = passphrase
	}

	if cli.PassphraseFile == "" {
		return result, nil
	}

	data, err := os.ReadFile(cli.PassphraseFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read passphrase file (%s):\n%w", cli.PassphraseFile, err)
	}

	var fromFile map[string]string
	if err := yaml.Unmarshal(data, &fromFile); err != nil {
		return nil, fmt.Errorf("failed to parse passphrase file (%s):\n%w", cli.PassphraseFile, err)
	}

	for device, passphrase := range fromFile {
		if _, exists := result[device]; !exists {
			result[device] = passphrase
		}
	}

	return result, nil
}

// loadInspect reads a guest-inspection record from path, standing in for a
// real libguestfs-backed appliance launch (see pkg/appliance). With no path
// given, it falls back to a single-root-filesystem Linux guest, enough to
// drive the pipeline against a plain disk image.
func loadInspect(path string) (v2vapi.Inspect, error) {
	if path == "" {
		return v2vapi.Inspect{
			Distro: "rhel",
			Mountpoints: []v2vapi.MountpointStats{
				{
					MountPath:      "/",
					FilesystemType: "ext4",
					Bsize:          4096,
					Blocks:         10_000_000,
					Bfree:          8_000_000,
					Bavail:         8_000_000,
					Files:          1_000_000,
					Ffree:          900_000,
				},
			},
		}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return v2vapi.Inspect{}, fmt.Errorf("failed to read inspect file (%s):\n%w", path, err)
	}

	var inspect v2vapi.Inspect
	if err := yaml.Unmarshal(data, &inspect); err != nil {
		return v2vapi.Inspect{}, fmt.Errorf("failed to parse inspect file (%s):\n%w", path, err)
	}

	return inspect, nil
}

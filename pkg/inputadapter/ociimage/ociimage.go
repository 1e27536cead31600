// Package ociimage implements inputadapter.Adapter over a disk image
// published as an OCI artifact, with optional notation signature
// verification before the artifact is trusted.
package ociimage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"

	"github.com/notaryproject/notation-go"
	"github.com/notaryproject/notation-go/dir"
	"github.com/notaryproject/notation-go/registry"
	"github.com/notaryproject/notation-go/verifier"
	"github.com/notaryproject/notation-go/verifier/trustpolicy"
	"github.com/notaryproject/notation-go/verifier/truststore"
	ociv1 "github.com/opencontainers/image-spec/specs-go/v1"
	"oras.land/oras-go/v2"
	"oras.land/oras-go/v2/content"
	ocifile "oras.land/oras-go/v2/content/file"
	"oras.land/oras-go/v2/registry/remote"

	"github.com/v2vconvert/v2v-convert/internal/file"
	"github.com/v2vconvert/v2v-convert/internal/logger"
	"github.com/v2vconvert/v2v-convert/pkg/v2vapi"
)

var supportedFileExtensions = []string{".vhdx", ".vhd", ".qcow2", ".img", ".raw"}

const maxOciSignatures = 50

// SignatureCheck, when non-nil, requires the pulled artifact to carry a
// valid notation signature trusted by the named policy/store, rooted at
// the x509 certificate at CertificatePath.
type SignatureCheck struct {
	TrustPolicyName string
	TrustStoreName  string
	CertificatePath string
}

// Adapter pulls a single disk image from an OCI registry reference
// (registry/repo:tag or registry/repo@sha256:...) into a local cache
// directory, then presents it as a SourceDisk.
type Adapter struct {
	Name        string
	Reference   string
	CacheDir    string
	BuildDir    string
	Signature   *SignatureCheck
	SourceDisk  v2vapi.SourceDisk
	MemoryBytes int64
	VCPUs       int
}

func New(name, reference, cacheDir, buildDir string) *Adapter {
	return &Adapter{
		Name:        name,
		Reference:   reference,
		CacheDir:    cacheDir,
		BuildDir:    buildDir,
		MemoryBytes: 1024 * 1024 * 1024,
		VCPUs:       1,
	}
}

func (a *Adapter) Precheck(ctx context.Context) error {
	if a.Reference == "" {
		return fmt.Errorf("ociimage: no reference configured")
	}
	if a.CacheDir == "" {
		return fmt.Errorf("ociimage: image cache directory must be provided")
	}

	return os.MkdirAll(a.CacheDir, os.ModePerm)
}

func (a *Adapter) AsOptions() string {
	return fmt.Sprintf("ociimage(reference=%s, signed=%t)", a.Reference, a.Signature != nil)
}

func (a *Adapter) Source(ctx context.Context, bandwidthLimitKbps int) (v2vapi.Source, []v2vapi.SourceDisk, error) {
	imagePath, err := a.downloadImage(ctx)
	if err != nil {
		return v2vapi.Source{}, nil, err
	}

	disk := v2vapi.SourceDisk{
		URI:        "file://" + imagePath,
		ID:         0,
		Controller: v2vapi.NewControllerKind(v2vapi.ControllerVirtioSCSI),
	}

	source := v2vapi.Source{
		Name:        a.Name,
		Hypervisor:  v2vapi.NewHypervisor(v2vapi.HypervisorKVM),
		MemoryBytes: a.MemoryBytes,
		VCPUs:       a.VCPUs,
		Video:       v2vapi.VideoAdapterVirtio,
		Firmware:    v2vapi.FirmwareHintUnknown,
	}

	return source, []v2vapi.SourceDisk{disk}, nil
}

func (a *Adapter) downloadImage(ctx context.Context) (string, error) {
	logger.Log.Debugf("ociimage: pulling %s", a.Reference)

	remoteRepo, err := remote.NewRepository(a.Reference)
	if err != nil {
		return "", fmt.Errorf("ociimage: failed to open repository (%s):\n%w", a.Reference, err)
	}

	tag := remoteRepo.Reference.Reference

	descriptor, err := resolveReference(ctx, remoteRepo, tag)
	if err != nil {
		return "", fmt.Errorf("ociimage: artifact not found:\n%w", err)
	}

	if a.Signature != nil {
		if err := a.checkSignature(ctx, remoteRepo, descriptor); err != nil {
			return "", fmt.Errorf("ociimage: signature check failed:\n%w", err)
		}
	}

	digestsDir := filepath.Join(a.CacheDir, "digests", string(descriptor.Digest.Algorithm()))
	if err := os.MkdirAll(digestsDir, os.ModePerm); err != nil {
		return "", fmt.Errorf("ociimage: creating cache directory (%s):\n%w", digestsDir, err)
	}

	digestDir := filepath.Join(digestsDir, descriptor.Digest.Encoded())

	exists, err := file.PathExists(digestDir)
	if err != nil {
		return "", fmt.Errorf("ociimage: checking cache directory (%s):\n%w", digestDir, err)
	}

	if exists {
		logger.Log.Debugf("ociimage: using cached artifact")
	} else if err := downloadToDirectory(ctx, remoteRepo, digestDir, descriptor); err != nil {
		return "", err
	}

	return findImageFile(digestDir)
}

func resolveReference(ctx context.Context, repo oras.ReadOnlyTarget, tag string) (ociv1.Descriptor, error) {
	descriptor, err := oras.Resolve(ctx, repo, tag, oras.DefaultResolveOptions)
	if err != nil {
		return ociv1.Descriptor{}, err
	}

	if descriptor.MediaType != ociv1.MediaTypeImageIndex {
		return descriptor, nil
	}

	resolveOptions := oras.DefaultResolveOptions
	resolveOptions.TargetPlatform = &ociv1.Platform{OS: "linux", Architecture: runtime.GOARCH}

	return oras.Resolve(ctx, repo, tag, resolveOptions)
}

func downloadToDirectory(ctx context.Context, source content.ReadOnlyStorage, destDir string, root ociv1.Descriptor) error {
	parent := filepath.Dir(destDir)
	name := filepath.Base(destDir)

	staging, err := os.MkdirTemp(parent, name+".tmp")
	if err != nil {
		return fmt.Errorf("ociimage: creating download staging directory:\n%w", err)
	}
	defer os.RemoveAll(staging)

	fs, err := ocifile.New(staging)
	if err != nil {
		return fmt.Errorf("ociimage: initializing download staging directory:\n%w", err)
	}
	defer fs.Close()

	copyOptions := oras.DefaultCopyGraphOptions
	copyOptions.PreCopy = func(ctx context.Context, desc ociv1.Descriptor) error {
		if title, ok := desc.Annotations[ociv1.AnnotationTitle]; ok {
			logger.Log.Debugf("ociimage: downloading %s", title)
		}
		return nil
	}

	if err := oras.CopyGraph(ctx, source, fs, root, copyOptions); err != nil {
		return fmt.Errorf("ociimage: staging artifact:\n%w", err)
	}
	if err := fs.Close(); err != nil {
		return fmt.Errorf("ociimage: finalizing download:\n%w", err)
	}

	return os.Rename(staging, destDir)
}

func findImageFile(dirPath string) (string, error) {
	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return "", fmt.Errorf("ociimage: reading download directory:\n%w", err)
	}

	var candidates []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if slices.Contains(supportedFileExtensions, filepath.Ext(entry.Name())) {
			candidates = append(candidates, filepath.Join(dirPath, entry.Name()))
		}
	}

	switch len(candidates) {
	case 0:
		return "", fmt.Errorf("ociimage: no disk image file found in artifact")
	case 1:
		return candidates[0], nil
	default:
		return "", fmt.Errorf("ociimage: too many candidate disk image files in artifact (count=%d)", len(candidates))
	}
}

func (a *Adapter) checkSignature(ctx context.Context, remoteRepo *remote.Repository, descriptor ociv1.Descriptor) error {
	reference := remoteRepo.Reference
	reference.Reference = descriptor.Digest.String()
	digestURI := reference.String()

	logger.Log.Debugf("ociimage: verifying signature (%s)", digestURI)

	trustStorePath, err := os.MkdirTemp(a.BuildDir, "trust-store-")
	if err != nil {
		return fmt.Errorf("creating trust store directory:\n%w", err)
	}
	defer os.RemoveAll(trustStorePath)

	trustStoreFS := dir.NewSysFS(trustStorePath)
	certDestDir, err := trustStoreFS.SysPath(dir.X509TrustStoreDir(string(truststore.TypeCA), a.Signature.TrustStoreName))
	if err != nil {
		return err
	}

	certDestPath := filepath.Join(certDestDir, filepath.Base(a.Signature.CertificatePath))
	if err := file.CopyFile(a.Signature.CertificatePath, certDestPath); err != nil {
		return fmt.Errorf("installing trust certificate:\n%w", err)
	}

	trustStore := truststore.NewX509TrustStore(trustStoreFS)

	trustPolicy := &trustpolicy.Document{
		Version: "1.0",
		TrustPolicies: []trustpolicy.TrustPolicy{
			{
				Name:                  a.Signature.TrustPolicyName,
				RegistryScopes:        []string{"*"},
				SignatureVerification: trustpolicy.SignatureVerification{VerificationLevel: "strict"},
				TrustStores:           []string{string(truststore.TypeCA) + ":" + a.Signature.TrustStoreName},
				TrustedIdentities:     []string{"*"},
			},
		},
	}

	v, err := verifier.NewWithOptions(trustPolicy, trustStore, nil, verifier.VerifierOptions{})
	if err != nil {
		return err
	}

	verifyOptions := notation.VerifyOptions{
		ArtifactReference:    digestURI,
		MaxSignatureAttempts: maxOciSignatures,
	}

	notaryRepo := registry.NewRepository(remoteRepo)

	_, _, err = notation.Verify(ctx, v, notaryRepo, verifyOptions)
	return err
}

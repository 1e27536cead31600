// Package azureblob implements outputadapter.Adapter by uploading target
// disks as block blobs to an Azure Storage container, standing in for the
// oVirt/RHV upload and OpenStack remote adapters this module leaves out
// of scope.
package azureblob

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blockblob"

	"github.com/v2vconvert/v2v-convert/internal/logger"
	"github.com/v2vconvert/v2v-convert/pkg/outputadapter"
	"github.com/v2vconvert/v2v-convert/pkg/v2vapi"
)

// Adapter uploads each target disk to "<prefix><name>-disk<N>.qcow2" (the
// prefix is used as given, with no separator added) in
// a single storage container, authenticating with DefaultAzureCredential
// (environment, managed identity, or az-cli login, in that order).
type Adapter struct {
	AccountURL    string
	ContainerName string
	BlobPrefix    string

	client *azblob.Client

	// stagingDir holds local copies the copy engine writes to before each
	// is uploaded in DiskCopied; blob storage has no notion of a local
	// path the copier can write into directly.
	stagingDir string
}

func New(accountURL, containerName, blobPrefix, stagingDir string) *Adapter {
	return &Adapter{
		AccountURL:    accountURL,
		ContainerName: containerName,
		BlobPrefix:    blobPrefix,
		stagingDir:    stagingDir,
	}
}

func (a *Adapter) Precheck(ctx context.Context) error {
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return fmt.Errorf("azureblob: failed to resolve Azure credentials:\n%w", err)
	}

	client, err := azblob.NewClient(a.AccountURL, cred, nil)
	if err != nil {
		return fmt.Errorf("azureblob: failed to create storage client (%s):\n%w", a.AccountURL, err)
	}
	a.client = client

	return os.MkdirAll(a.stagingDir, os.ModePerm)
}

func (a *Adapter) AsOptions() string {
	return fmt.Sprintf("azureblob(account=%s, container=%s)", a.AccountURL, a.ContainerName)
}

func (a *Adapter) SupportedFirmware() map[v2vapi.TargetFirmware]bool {
	return map[v2vapi.TargetFirmware]bool{
		v2vapi.TargetFirmwareBIOS: true,
		v2vapi.TargetFirmwareUEFI: true,
	}
}

func (a *Adapter) CheckTargetFirmware(caps v2vapi.GrantedCapabilities, fw v2vapi.TargetFirmware) error {
	return nil
}

func (a *Adapter) OverrideOutputFormat(overlay v2vapi.Overlay) (string, bool) {
	// Blob upload always streams qcow2; trying to keep raw files sparse
	// over HTTP PUT isn't worth it.
	return "qcow2", true
}

func (a *Adapter) PrepareTargets(ctx context.Context, name string, planned []outputadapter.PlannedDisk, caps v2vapi.GrantedCapabilities) ([]v2vapi.TargetFile, error) {
	targets := make([]v2vapi.TargetFile, len(planned))

	for i := range planned {
		blobName := fmt.Sprintf("%s%s-disk%d.qcow2", a.BlobPrefix, name, i+1)
		uri := fmt.Sprintf("%s/%s/%s", a.AccountURL, a.ContainerName, blobName)
		targets[i] = v2vapi.NewTargetFileURI(uri)
	}

	return targets, nil
}

// DiskCreate is a no-op: blob containers need no destination object
// pre-created before an upload.
func (a *Adapter) DiskCreate(ctx context.Context, opts outputadapter.DiskCreateOptions) error {
	return nil
}

func (a *Adapter) TransferFormat(target v2vapi.TargetFile) string {
	return "qcow2"
}

func (a *Adapter) DiskCopied(ctx context.Context, target v2vapi.TargetFile, index, total int) error {
	stagedPath := a.StagedPath(index)
	blobName := strings.TrimPrefix(target.URI, a.AccountURL+"/"+a.ContainerName+"/")

	logger.Log.Infof("azureblob: uploading disk %d/%d to %s", index+1, total, blobName)

	f, err := os.Open(stagedPath)
	if err != nil {
		return fmt.Errorf("azureblob: opening staged disk (%s):\n%w", stagedPath, err)
	}
	defer f.Close()

	_, err = a.client.UploadFile(ctx, a.ContainerName, blobName, f, &azblob.UploadFileOptions{
		BlockSize:   blockblob.MaxStageBlockBytes,
		Concurrency: 4,
	})
	if err != nil {
		return fmt.Errorf("azureblob: uploading (%s):\n%w", blobName, err)
	}

	return nil
}

func (a *Adapter) CreateMetadata(ctx context.Context, params outputadapter.MetadataParams) error {
	logger.Log.Infof("azureblob: upload complete for %s (%d disk(s))", params.Source.Name, len(params.Targets))
	return nil
}

// StagedPath is where DiskCopied expects to find the converted disk for
// target before uploading it; the copy engine writes here instead of
// directly to the TargetFile.URI, since blob storage has no local path.
func (a *Adapter) StagedPath(index int) string {
	return fmt.Sprintf("%s/staged-disk%d.qcow2", a.stagingDir, index)
}

func blobNameFromURI(uri string) string {
	for i := len(uri) - 1; i >= 0; i-- {
		if uri[i] == '/' {
			return uri[i+1:]
		}
	}
	return uri
}

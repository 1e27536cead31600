package azureblob

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/v2vconvert/v2v-convert/pkg/outputadapter"
	"github.com/v2vconvert/v2v-convert/pkg/v2vapi"
)

func TestPrepareTargetsBuildsURIsWithPrefix(t *testing.T) {
	a := New("https://myaccount.blob.core.windows.net", "vms", "staging/", t.TempDir())
	planned := []outputadapter.PlannedDisk{{Format: "qcow2"}, {Format: "qcow2"}}

	targets, err := a.PrepareTargets(context.Background(), "myvm", planned, v2vapi.GrantedCapabilities{})
	require.NoError(t, err)
	require.Len(t, targets, 2)

	assert.Equal(t, v2vapi.TargetFileKindURI, targets[0].Kind)
	assert.Equal(t, "https://myaccount.blob.core.windows.net/vms/staging/myvm-disk1.qcow2", targets[0].URI)
	assert.Equal(t, "https://myaccount.blob.core.windows.net/vms/staging/myvm-disk2.qcow2", targets[1].URI)
}

func TestOverrideOutputFormatAlwaysForcesQcow2(t *testing.T) {
	a := New("https://acct.blob.core.windows.net", "vms", "", t.TempDir())

	format, ok := a.OverrideOutputFormat(v2vapi.Overlay{})
	assert.True(t, ok)
	assert.Equal(t, "qcow2", format)
}

func TestTransferFormatIsAlwaysQcow2(t *testing.T) {
	a := New("https://acct.blob.core.windows.net", "vms", "", t.TempDir())
	assert.Equal(t, "qcow2", a.TransferFormat(v2vapi.TargetFile{}))
}

func TestStagedPathIsDerivedFromIndex(t *testing.T) {
	a := New("https://acct.blob.core.windows.net", "vms", "", "/staging")
	assert.Equal(t, "/staging/staged-disk0.qcow2", a.StagedPath(0))
	assert.Equal(t, "/staging/staged-disk3.qcow2", a.StagedPath(3))
}

func TestBlobNameFromURIExtractsLastSegment(t *testing.T) {
	assert.Equal(t, "myvm-disk1.qcow2", blobNameFromURI("https://acct.blob.core.windows.net/vms/myvm-disk1.qcow2"))
	assert.Equal(t, "bare-name", blobNameFromURI("bare-name"))
}

func TestDiskCreateIsANoOp(t *testing.T) {
	a := New("https://acct.blob.core.windows.net", "vms", "", t.TempDir())
	assert.NoError(t, a.DiskCreate(context.Background(), outputadapter.DiskCreateOptions{}))
}

package convertmodule

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/cavaliercoder/go-cpio"
)

// FirstbootPayload is one file to install as part of a guest's firstboot
// sequence (a script plus the unit/registry glue that invokes it).
type FirstbootPayload struct {
	// Path is relative to the archive root, e.g. "etc/v2v-firstboot.d/10-network.sh".
	Path string
	Mode os.FileMode
	Data []byte
}

// BuildFirstbootArchive packs payloads into a cpio archive at outputPath,
// the format a guest-conversion module stages for its firstboot unit to
// unpack and run on first boot after conversion.
func BuildFirstbootArchive(outputPath string, payloads []FirstbootPayload) (err error) {
	if err := os.MkdirAll(filepath.Dir(outputPath), os.ModePerm); err != nil {
		return fmt.Errorf("firstboot: creating output directory:\n%w", err)
	}

	outputFile, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("firstboot: creating archive (%s):\n%w", outputPath, err)
	}
	defer outputFile.Close()

	writer := cpio.NewWriter(outputFile)
	defer func() {
		closeErr := writer.Close()
		if err == nil {
			err = closeErr
		}
	}()

	uid, gid := os.Geteuid(), os.Getegid()

	for _, p := range payloads {
		header := &cpio.Header{
			Name: p.Path,
			Mode: cpio.FileMode(p.Mode) | cpio.ModeRegular,
			Size: int64(len(p.Data)),
			UID:  uid,
			GID:  gid,
		}

		if err := writer.WriteHeader(header); err != nil {
			return fmt.Errorf("firstboot: writing header for (%s):\n%w", p.Path, err)
		}
		if _, err := writer.Write(p.Data); err != nil {
			return fmt.Errorf("firstboot: writing payload (%s):\n%w", p.Path, err)
		}
	}

	return nil
}

// ExtractFirstbootArchive unpacks a firstboot cpio archive into outputDir,
// used by tests to verify BuildFirstbootArchive's round trip.
func ExtractFirstbootArchive(archivePath, outputDir string) error {
	archiveFile, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("firstboot: opening archive (%s):\n%w", archivePath, err)
	}
	defer archiveFile.Close()

	reader := cpio.NewReader(archiveFile)
	for {
		header, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("firstboot: reading archive header:\n%w", err)
		}

		destPath := filepath.Join(outputDir, header.Name)
		if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
			return fmt.Errorf("firstboot: creating directory for (%s):\n%w", destPath, err)
		}

		destFile, err := os.OpenFile(destPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, os.FileMode(header.Mode&cpio.ModePerm))
		if err != nil {
			return fmt.Errorf("firstboot: creating (%s):\n%w", destPath, err)
		}

		if _, err := io.Copy(destFile, reader); err != nil {
			destFile.Close()
			return fmt.Errorf("firstboot: writing (%s):\n%w", destPath, err)
		}
		destFile.Close()
	}

	return nil
}

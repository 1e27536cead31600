package v2vapi

import "fmt"

// TargetFileKind distinguishes the two ways a TargetDisk's destination can
// be addressed: a local path (which may turn out to be a block device or a
// symlink to one), or an opaque URI an output adapter understands (a
// remote upload slot, for instance).
type TargetFileKind string

const (
	TargetFileKindPath TargetFileKind = "path"
	TargetFileKindURI  TargetFileKind = "uri"
)

// TargetFile is a tagged `path | uri` variant, expressed as a plain data
// value rather than an interface: there are exactly two shapes and neither
// carries behavior.
type TargetFile struct {
	Kind TargetFileKind
	Path string
	URI  string
}

func NewTargetFilePath(path string) TargetFile {
	return TargetFile{Kind: TargetFileKindPath, Path: path}
}

func NewTargetFileURI(uri string) TargetFile {
	return TargetFile{Kind: TargetFileKindURI, URI: uri}
}

func (f TargetFile) IsValid() error {
	switch f.Kind {
	case TargetFileKindPath:
		if f.Path == "" {
			return fmt.Errorf("target file path must not be empty")
		}
	case TargetFileKindURI:
		if f.URI == "" {
			return fmt.Errorf("target file URI must not be empty")
		}
	default:
		return &invalidEnumError{field: "target file kind", value: string(f.Kind)}
	}

	return nil
}

// TargetDisk is created per SourceDisk in copy mode.
type TargetDisk struct {
	File    TargetFile
	Format  string
	Overlay Overlay
}

func (d TargetDisk) IsValid() error {
	if err := d.File.IsValid(); err != nil {
		return err
	}
	if d.Format == "" {
		return fmt.Errorf("target disk format must not be empty")
	}

	return d.Overlay.IsValid()
}

package userdata

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ArtifactSink receives the artifacts an export produces. Names use forward
// slashes for nesting (e.g. "blobs/classifiers/trend-1.scale").
type ArtifactSink interface {
	WriteArtifact(name string, r io.Reader) error
}

// DirSink writes artifacts into a directory tree rooted at a base path.
type DirSink struct {
	root string
}

func NewDirSink(root string) (*DirSink, error) {
	if err := os.MkdirAll(root, 0o770); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", root, err)
	}
	return &DirSink{root: root}, nil
}

func (s *DirSink) WriteArtifact(name string, r io.Reader) error {
	path := filepath.Join(s.root, filepath.FromSlash(name))

	if err := os.MkdirAll(filepath.Dir(path), 0o770); err != nil {
		return fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_TRUNC|os.O_CREATE, 0o660)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

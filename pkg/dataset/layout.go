package dataset

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/matzehuels/poolsynth/pkg/config"
	"github.com/matzehuels/poolsynth/pkg/errors"
)

// Subdirectories of every split.
const (
	ImagesDir = "images"
	LabelsDir = "labels"
)

// Layout is the on-disk structure of a dataset:
//
//	<root>/<split>/images/image_<index>.jpg
//	<root>/<split>/labels/image_<index>.txt
type Layout struct {
	Root string
}

// NewLayout returns the layout rooted at root.
func NewLayout(root string) Layout {
	return Layout{Root: root}
}

// Cleanup deletes the whole dataset tree if it exists. It refuses paths that
// are unsafe to delete.
func (l Layout) Cleanup() error {
	if err := errors.ValidateOutputDir(l.Root); err != nil {
		return err
	}
	if err := os.RemoveAll(l.Root); err != nil {
		return errors.Wrap(errors.ErrCodeFilesystem, err, "remove %s", l.Root)
	}
	return nil
}

// Create makes the images and labels directories of every split.
func (l Layout) Create() error {
	if err := errors.ValidateOutputDir(l.Root); err != nil {
		return err
	}
	for _, split := range config.Splits {
		for _, sub := range []string{ImagesDir, LabelsDir} {
			dir := filepath.Join(l.Root, split, sub)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return errors.Wrap(errors.ErrCodeFilesystem, err, "create %s", dir)
			}
		}
	}
	return nil
}

// ImagePath returns the image file of frame index in split.
func (l Layout) ImagePath(split string, index int) string {
	return filepath.Join(l.Root, split, ImagesDir, fmt.Sprintf("image_%d.jpg", index))
}

// LabelPath returns the label file of frame index in split.
func (l Layout) LabelPath(split string, index int) string {
	return filepath.Join(l.Root, split, LabelsDir, fmt.Sprintf("image_%d.txt", index))
}

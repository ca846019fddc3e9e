// Package export writes generated frames and dataset manifests to disk.
package export

import (
	"image"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"

	"github.com/matzehuels/poolsynth/pkg/annotate"
	"github.com/matzehuels/poolsynth/pkg/errors"
	"github.com/matzehuels/poolsynth/pkg/scene"
)

// DefaultJPEGQuality is the JPEG quality used when none is configured.
const DefaultJPEGQuality = 90

// WriteImage encodes img as JPEG at path.
func WriteImage(path string, img image.Image, quality int) error {
	if quality <= 0 {
		quality = DefaultJPEGQuality
	}
	if err := imaging.Save(img, path, imaging.JPEGQuality(quality)); err != nil {
		return errors.Wrap(errors.ErrCodeExport, err, "write image %s", path)
	}
	return nil
}

// WriteLabels writes labels to path, one per line. An empty slice produces
// an empty file.
func WriteLabels(path string, labels []scene.Label) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeExport, err, "create %s", path)
	}
	if err := annotate.WriteLabels(f, labels); err != nil {
		f.Close()
		return errors.Wrap(errors.ErrCodeExport, err, "write labels %s", path)
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeExport, err, "close %s", path)
	}
	return nil
}

// FrameExists reports whether both files of a frame are on disk.
func FrameExists(imagePath, labelPath string) bool {
	for _, p := range []string{imagePath, labelPath} {
		if _, err := os.Stat(p); err != nil {
			return false
		}
	}
	return true
}

// writeFileAtomic writes data to a temp file next to path and renames it.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

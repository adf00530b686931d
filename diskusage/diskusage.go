package diskusage

import (
	"io/fs"
	"path/filepath"

	apperrors "github.com/nijaru/yt-archiver/errors"
)

const bytesPerGB = 1024 * 1024 * 1024

// TotalSizeGB walks baseDir and returns the combined size of every regular
// file under it in GiB. Nothing is cached; each call rescans the tree.
func TotalSizeGB(baseDir string) (float64, error) {
	var total int64
	err := filepath.WalkDir(baseDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		total += info.Size()
		return nil
	})
	if err != nil {
		return 0, apperrors.Filesystem("diskusage.TotalSizeGB", err, "failed to scan "+baseDir)
	}
	return float64(total) / bytesPerGB, nil
}

// Monitor enforces a storage quota on a directory tree.
type Monitor struct {
	BaseDir string
	QuotaGB float64

	// SizeFunc defaults to TotalSizeGB.
	SizeFunc func(baseDir string) (float64, error)
}

func NewMonitor(baseDir string, quotaGB float64) *Monitor {
	return &Monitor{
		BaseDir:  baseDir,
		QuotaGB:  quotaGB,
		SizeFunc: TotalSizeGB,
	}
}

// Reached reports whether usage is at or above the quota, along with the
// usage that was measured.
func (m *Monitor) Reached() (bool, float64, error) {
	sizeFunc := m.SizeFunc
	if sizeFunc == nil {
		sizeFunc = TotalSizeGB
	}
	used, err := sizeFunc(m.BaseDir)
	if err != nil {
		return false, 0, err
	}
	return used >= m.QuotaGB, used, nil
}

package smallfile

import (
	"hpoannotqc.org/hpoa/types"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	SmallFileExtension = ".tab"
	// FilenameSeparator stands for the curie separator in small file names.
	FilenameSeparator = "-"
)

type Discovery struct {
	Paths   []string
	Omitted int
	Err     error
}

// FilenameToCurie maps "OMIM-600123.tab" to "OMIM:600123".
func FilenameToCurie(name string) (string, bool) {
	base := filepath.Base(name)
	if !strings.HasSuffix(base, SmallFileExtension) {
		return "", false
	}
	stem := strings.TrimSuffix(base, SmallFileExtension)
	id := strings.Replace(stem, FilenameSeparator, types.CurieSeparator, 1)
	if !types.IsCurie(id) {
		return "", false
	}
	return id, true
}

// CurieToFilename is the inverse of FilenameToCurie.
func CurieToFilename(id string) string {
	return strings.Replace(id, types.CurieSeparator, FilenameSeparator, 1) + SmallFileExtension
}

// Discover lists the small files in dir in directory order, skipping those whose
// disease id is in omit. A directory read failure is reported in Discovery.Err.
func Discover(dir string, omit OmitSet) Discovery {
	var discovery Discovery
	entries, err := os.ReadDir(dir)
	if err != nil {
		discovery.Err = fmt.Errorf("could not get list of small files from %s: %w", dir, err)
		return discovery
	}
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		id, ok := FilenameToCurie(entry.Name())
		if !ok {
			continue
		}
		if omit.Contains(id) {
			discovery.Omitted++
			continue
		}
		discovery.Paths = append(discovery.Paths, filepath.Join(dir, entry.Name()))
	}
	return discovery
}

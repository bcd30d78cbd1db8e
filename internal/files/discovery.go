package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	apperrors "prfcli/internal/errors"
)

// FileInfo represents a discovered yearly extract
type FileInfo struct {
	Path    string
	Name    string
	Year    int
	Size    int64
	ModTime time.Time
}

// Discovery locates the yearly accident extracts
type Discovery struct {
	basePath string
}

// NewDiscovery creates a new file discovery instance; relative directories
// passed to its methods are resolved against basePath.
func NewDiscovery(basePath string) *Discovery {
	return &Discovery{basePath: basePath}
}

// FindYearlyCSVFiles lists the *.csv files of dir whose name does not contain
// excludeMarker, sorted by file name. Each name must end in a 4-digit year.
// A missing directory, an empty match or a malformed name is a ConfigurationError.
func (d *Discovery) FindYearlyCSVFiles(dir, excludeMarker string) ([]FileInfo, error) {
	fullPath := dir
	if !filepath.IsAbs(dir) && d.basePath != "" {
		fullPath = filepath.Join(d.basePath, dir)
	}

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, apperrors.NewConfigurationError("input directory not readable", fullPath, err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(strings.ToLower(name), ".csv") {
			continue
		}
		if excludeMarker != "" && strings.Contains(name, excludeMarker) {
			continue
		}

		year, err := YearFromFilename(name)
		if err != nil {
			return nil, err
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}

		files = append(files, FileInfo{
			Path:    filepath.Join(fullPath, name),
			Name:    name,
			Year:    year,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	if len(files) == 0 {
		return nil, apperrors.NewConfigurationError("no CSV files found in input directory", fullPath, nil)
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Name < files[j].Name
	})
	return files, nil
}

// YearFromFilename extracts the year from the four characters immediately
// before the ".csv" extension, e.g. "datatran2021.csv" → 2021.
func YearFromFilename(name string) (int, error) {
	base := filepath.Base(name)
	if len(base) < 8 {
		return 0, apperrors.NewConfigurationError("file name does not encode a year", base, nil)
	}
	digits := base[len(base)-8 : len(base)-4]
	for _, r := range digits {
		if r < '0' || r > '9' {
			return 0, apperrors.NewConfigurationError("file name does not encode a year", base,
				fmt.Errorf("%q is not a 4-digit year", digits))
		}
	}
	year, err := strconv.Atoi(digits)
	if err != nil {
		return 0, apperrors.NewConfigurationError("file name does not encode a year", base, err)
	}
	return year, nil
}

package source

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/couchcryptid/noaa-lcd-hourly/internal/domain"
)

// FileInfo describes a file found in the source directory.
type FileInfo struct {
	Path    string
	Name    string
	ModTime time.Time
}

// Version is an LCD delivery layout. The set is closed: Version1 and Version2.
type Version interface {
	// Name is a short label for logs, e.g. "v1".
	Name() string
	// Pattern matches file names of this layout.
	Pattern() *regexp.Regexp
	// Example is a representative file name shown to users.
	Example() string
	// Group selects the input files that belong with the anchor file.
	Group(anchor FileInfo, candidates []FileInfo) []FileInfo

	sealed()
}

var (
	// v1 files are named by numeric order id, e.g. "3876540.csv".
	v1Pattern = regexp.MustCompile(`^[0-9]{5,10}\.csv$`)
	// v2 files embed the station, e.g. "LCD_USW00014939_2023.csv".
	v2Pattern = regexp.MustCompile(`^LCD_(.+)_[0-9]{4}\.csv$`)
)

// Version1 files are consolidated multi-year deliveries; they are never grouped.
type Version1 struct{}

func (Version1) Name() string            { return "v1" }
func (Version1) Pattern() *regexp.Regexp { return v1Pattern }
func (Version1) Example() string         { return "3876540.csv" }
func (Version1) sealed()                 {}

// Group returns the anchor alone.
func (Version1) Group(anchor FileInfo, _ []FileInfo) []FileInfo {
	return []FileInfo{anchor}
}

// Version2 files hold one calendar year of one station.
type Version2 struct{}

func (Version2) Name() string            { return "v2" }
func (Version2) Pattern() *regexp.Regexp { return v2Pattern }
func (Version2) Example() string         { return "LCD_USW00014939_2023.csv" }
func (Version2) sealed()                 {}

// Group returns every candidate whose name contains the anchor's station id.
func (Version2) Group(anchor FileInfo, candidates []FileInfo) []FileInfo {
	id := StationID(anchor.Name)
	var group []FileInfo
	for _, c := range candidates {
		if strings.Contains(c.Name, id) {
			group = append(group, c)
		}
	}
	return group
}

// StationID extracts the token between the first and second underscore,
// e.g. "LCD_USW00014939_2023.csv" -> "USW00014939".
func StationID(name string) string {
	parts := strings.Split(name, "_")
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}

// Versions lists the known layouts in matching order.
var Versions = []Version{Version1{}, Version2{}}

// Examples returns one example file name per layout.
func Examples() []string {
	ex := make([]string, len(Versions))
	for i, v := range Versions {
		ex[i] = v.Example()
	}
	return ex
}

// VersionOf returns the first layout whose pattern matches name.
func VersionOf(name string) (Version, bool) {
	for _, v := range Versions {
		if v.Pattern().MatchString(name) {
			return v, true
		}
	}
	return nil, false
}

// Selection is the classifier's verdict: the anchor file, its layout and
// the files to load together.
type Selection struct {
	Dir     string
	Anchor  FileInfo
	Version Version
	Files   []FileInfo
	// CSVFiles lists every .csv in Dir, for diagnostics.
	CSVFiles []string
}

// ListCSVFiles returns every regular .csv file in dir, sorted by name.
func ListCSVFiles(dir string) ([]FileInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", dir, err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".csv") {
			continue
		}
		info, err := entry.Info()
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		files = append(files, FileInfo{
			Path:    filepath.Join(dir, entry.Name()),
			Name:    entry.Name(),
			ModTime: info.ModTime(),
		})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// Classify selects the LCD input group. With an explicit path, that file is
// the anchor and its directory is the search scope; otherwise the most
// recently modified matching file in dir is the anchor. Ties in modification
// time are broken by file name.
func Classify(dir, explicit string) (Selection, error) {
	var anchorName string
	if explicit != "" {
		info, err := os.Stat(explicit)
		if err != nil || !info.Mode().IsRegular() {
			if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return Selection{}, fmt.Errorf("stat %s: %w", explicit, err)
			}
			return Selection{}, &domain.InvalidFileError{Path: explicit}
		}
		dir = filepath.Dir(explicit)
		anchorName = filepath.Base(explicit)
	}

	csvFiles, err := ListCSVFiles(dir)
	if err != nil {
		return Selection{}, err
	}
	if len(csvFiles) == 0 {
		return Selection{}, &domain.NoCSVFilesError{Dir: dir}
	}
	names := make([]string, len(csvFiles))
	for i, f := range csvFiles {
		names[i] = f.Name
	}

	byVersion := make(map[string][]FileInfo, len(Versions))
	var matched []FileInfo
	for _, f := range csvFiles {
		v, ok := VersionOf(f.Name)
		if !ok {
			continue
		}
		byVersion[v.Name()] = append(byVersion[v.Name()], f)
		matched = append(matched, f)
	}

	noMatch := &domain.NoMatchingFilesError{Dir: dir, Examples: Examples(), CSVFiles: names}
	if len(matched) == 0 {
		return Selection{}, noMatch
	}

	sortByRecency(matched)
	anchor := matched[0]
	if anchorName != "" {
		found := false
		for _, f := range matched {
			if f.Name == anchorName {
				anchor, found = f, true
				break
			}
		}
		if !found {
			return Selection{}, noMatch
		}
	}

	version, _ := VersionOf(anchor.Name)
	candidates := byVersion[version.Name()]
	sortByRecency(candidates)

	return Selection{
		Dir:      dir,
		Anchor:   anchor,
		Version:  version,
		Files:    version.Group(anchor, candidates),
		CSVFiles: names,
	}, nil
}

// sortByRecency orders files newest first, then by name.
func sortByRecency(files []FileInfo) {
	sort.SliceStable(files, func(i, j int) bool {
		if !files[i].ModTime.Equal(files[j].ModTime) {
			return files[i].ModTime.After(files[j].ModTime)
		}
		return files[i].Name < files[j].Name
	})
}

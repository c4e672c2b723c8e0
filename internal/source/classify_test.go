package source

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/noaa-lcd-hourly/internal/domain"
)

var baseTime = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

// writeFile creates name in dir with content and the given modification time.
func writeFile(t *testing.T, dir, name, content string, mtime time.Time) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	require.NoError(t, os.Chtimes(path, mtime, mtime))
	return path
}

func names(files []FileInfo) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.Name
	}
	return out
}

func TestVersionOf(t *testing.T) {
	tests := []struct {
		name string
		want string
		ok   bool
	}{
		{"3876540.csv", "v1", true},
		{"12345.csv", "v1", true},
		{"1234.csv", "", false},
		{"LCD_USW00014939_2023.csv", "v2", true},
		{"LCD_USW00014939_23.csv", "", false},
		{"notes.csv", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok := VersionOf(tt.name)
			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.want, v.Name())
			}
		})
	}
}

func TestStationID(t *testing.T) {
	assert.Equal(t, "USW00014939", StationID("LCD_USW00014939_2023.csv"))
	assert.Empty(t, StationID("3876540.csv"))
}

func TestListCSVFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.CSV", "", baseTime)
	writeFile(t, dir, "a.csv", "", baseTime)
	writeFile(t, dir, "notes.txt", "", baseTime)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "dir.csv"), 0o755))

	files, err := ListCSVFiles(dir)

	require.NoError(t, err)
	assert.Equal(t, []string{"a.csv", "b.CSV"}, names(files))
}

func TestClassify(t *testing.T) {
	t.Run("single v1 file", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "3876540.csv", "", baseTime)
		writeFile(t, dir, "other.csv", "", baseTime.Add(time.Hour))

		sel, err := Classify(dir, "")

		require.NoError(t, err)
		assert.Equal(t, "v1", sel.Version.Name())
		assert.Equal(t, "3876540.csv", sel.Anchor.Name)
		assert.Equal(t, []string{"3876540.csv"}, names(sel.Files))
		assert.Equal(t, []string{"3876540.csv", "other.csv"}, sel.CSVFiles)
	})

	t.Run("v2 files grouped by station", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "LCD_USW00014939_2022.csv", "", baseTime)
		writeFile(t, dir, "LCD_USW00014939_2023.csv", "", baseTime.Add(time.Hour))
		writeFile(t, dir, "LCD_USW00099999_2023.csv", "", baseTime.Add(-time.Hour))

		sel, err := Classify(dir, "")

		require.NoError(t, err)
		assert.Equal(t, "v2", sel.Version.Name())
		assert.Equal(t, "LCD_USW00014939_2023.csv", sel.Anchor.Name)
		assert.Equal(t, []string{"LCD_USW00014939_2023.csv", "LCD_USW00014939_2022.csv"}, names(sel.Files))
	})

	t.Run("newest file picks the version", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "LCD_USW00014939_2023.csv", "", baseTime)
		writeFile(t, dir, "3876540.csv", "", baseTime.Add(time.Hour))

		sel, err := Classify(dir, "")

		require.NoError(t, err)
		assert.Equal(t, "v1", sel.Version.Name())
	})

	t.Run("modification time ties break by name", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "LCD_B_2023.csv", "", baseTime)
		writeFile(t, dir, "LCD_A_2023.csv", "", baseTime)

		sel, err := Classify(dir, "")

		require.NoError(t, err)
		assert.Equal(t, "LCD_A_2023.csv", sel.Anchor.Name)
	})

	t.Run("explicit file is the anchor", func(t *testing.T) {
		dir := t.TempDir()
		path := writeFile(t, dir, "LCD_USW00014939_2022.csv", "", baseTime)
		writeFile(t, dir, "LCD_USW00023174_2023.csv", "", baseTime.Add(time.Hour))

		sel, err := Classify("", path)

		require.NoError(t, err)
		assert.Equal(t, dir, sel.Dir)
		assert.Equal(t, []string{"LCD_USW00014939_2022.csv"}, names(sel.Files))
	})

	t.Run("explicit file not found", func(t *testing.T) {
		_, err := Classify("", filepath.Join(t.TempDir(), "missing.csv"))

		var target *domain.InvalidFileError
		require.ErrorAs(t, err, &target)
		assert.True(t, domain.IsEarlyExit(err))
	})

	t.Run("explicit file with an unrecognized name", func(t *testing.T) {
		dir := t.TempDir()
		path := writeFile(t, dir, "renamed.csv", "", baseTime)
		writeFile(t, dir, "3876540.csv", "", baseTime)

		_, err := Classify("", path)

		var target *domain.NoMatchingFilesError
		require.ErrorAs(t, err, &target)
	})

	t.Run("no csv files", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "readme.txt", "", baseTime)

		_, err := Classify(dir, "")

		var target *domain.NoCSVFilesError
		require.ErrorAs(t, err, &target)
		assert.Equal(t, dir, target.Dir)
	})

	t.Run("no matching names", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "weather.csv", "", baseTime)

		_, err := Classify(dir, "")

		var target *domain.NoMatchingFilesError
		require.ErrorAs(t, err, &target)
		assert.Equal(t, []string{"weather.csv"}, target.CSVFiles)
		assert.Equal(t, Examples(), target.Examples)
	})
}

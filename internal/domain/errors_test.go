package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsEarlyExit(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"no csv files", &NoCSVFilesError{Dir: "/data"}, true},
		{"no matching files", &NoMatchingFilesError{Dir: "/data"}, true},
		{"invalid file", &InvalidFileError{Path: "x.csv"}, true},
		{"wrapped", fmt.Errorf("classify: %w", &NoCSVFilesError{Dir: "/data"}), true},
		{"empty input", ErrEmptyInput, false},
		{"other", errors.New("boom"), false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsEarlyExit(tt.err))
		})
	}
}

func TestNoMatchingFilesErrorMessage(t *testing.T) {
	err := &NoMatchingFilesError{
		Dir:      "/data",
		Examples: []string{"3876540.csv", "LCD_USW00014939_2023.csv"},
		CSVFiles: []string{"a.csv", "b.csv"},
	}

	msg := err.Error()

	assert.Contains(t, msg, "PROCESS ABORTED")
	assert.Contains(t, msg, "'/data'")
	assert.Contains(t, msg, "'3876540.csv or LCD_USW00014939_2023.csv'")
	assert.Contains(t, msg, "a.csv, b.csv")
}

func TestNoCSVFilesErrorMessage(t *testing.T) {
	msg := (&NoCSVFilesError{Dir: "/empty"}).Error()

	assert.Contains(t, msg, "No .CSV-format files found in:\n'/empty'")
	assert.Contains(t, msg, "https://www.ncdc.noaa.gov/cdo-web/datatools/lcd")
}

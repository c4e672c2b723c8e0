package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyInput reports that no candidate file had a DATE column and at
// least one measurement column.
var ErrEmptyInput = errors.New("no LCD file with a DATE column and at least one measurement column")

const sourcesHelp = `NOAA LCD files can be obtained from the following sources:
https://www.ncdc.noaa.gov/cdo-web/datatools/lcd
https://www.ncei.noaa.gov/access/search/data-search/local-climatological-data-v2`

// NoCSVFilesError reports a source directory without any .csv file.
type NoCSVFilesError struct {
	Dir string
}

func (e *NoCSVFilesError) Error() string {
	return fmt.Sprintf(`***  PROCESS ABORTED  ***

No .CSV-format files found in:
'%s'

Run this command in a directory that contains original LCD-format file(s)
from NOAA, or copy NOAA files to the current directory.

%s`, e.Dir, sourcesHelp)
}

// NoMatchingFilesError reports CSV files that match neither LCD naming pattern.
type NoMatchingFilesError struct {
	Dir      string
	Examples []string
	CSVFiles []string
}

func (e *NoMatchingFilesError) Error() string {
	return fmt.Sprintf(`***  PROCESS ABORTED  ***

No LCD-format file names found in:
'%s'

Run this command in a directory that contains original LCD-format file(s)
from NOAA whose name(s) have not been changed.

Example LCD file names:
'%s'

Files in directory:
%s`, e.Dir, strings.Join(e.Examples, " or "), strings.Join(e.CSVFiles, ", "))
}

// InvalidFileError reports an explicitly requested file that does not exist.
type InvalidFileError struct {
	Path string
}

func (e *InvalidFileError) Error() string {
	return fmt.Sprintf("%s is not a valid file", e.Path)
}

// IsEarlyExit reports whether err is a file-discovery condition that ends
// the run with a diagnostic instead of a failure.
func IsEarlyExit(err error) bool {
	var noCSV *NoCSVFilesError
	var noMatch *NoMatchingFilesError
	var invalid *InvalidFileError
	return errors.As(err, &noCSV) || errors.As(err, &noMatch) || errors.As(err, &invalid)
}

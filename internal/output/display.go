package output

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/couchcryptid/noaa-lcd-hourly/internal/domain"
)

// WriteStationTable prints the station details as an aligned two-column
// table.
func WriteStationTable(w io.Writer, details domain.StationDetails) error {
	if _, err := fmt.Fprintln(w, "Station Details"); err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, f := range details.DisplayFields() {
		fmt.Fprintf(tw, "%s\t%s\n", f[0], f[1])
	}
	return tw.Flush()
}

package roadclean

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Stats captures metrics about a cleaning run.
type Stats struct {
	InputBytes     int64 `json:"input_bytes"`
	InputRows      int   `json:"input_rows"` // data rows after the header
	SkippedRows    int   `json:"skipped_rows"`
	OutputRows     int   `json:"output_rows"`
	CellsExtracted int   `json:"cells_extracted"`

	ParseDuration     time.Duration `json:"parse_duration"`
	TransformDuration time.Duration `json:"transform_duration"`
	WriteDuration     time.Duration `json:"write_duration"`
	TotalDuration     time.Duration `json:"total_duration"`
}

// String returns a human-readable summary of the stats.
func (s *Stats) String() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Input: %s\n", humanize.Bytes(uint64(max(s.InputBytes, 0))))
	fmt.Fprintf(&sb, "Rows: %s read, %s skipped, %s written\n",
		humanize.Comma(int64(s.InputRows)),
		humanize.Comma(int64(s.SkippedRows)),
		humanize.Comma(int64(s.OutputRows)))
	fmt.Fprintf(&sb, "Cells extracted: %s\n", humanize.Comma(int64(s.CellsExtracted)))
	fmt.Fprintf(&sb, "Timing: parse=%v, transform=%v, write=%v, total=%v\n",
		s.ParseDuration.Round(time.Millisecond),
		s.TransformDuration.Round(time.Millisecond),
		s.WriteDuration.Round(time.Millisecond),
		s.TotalDuration.Round(time.Millisecond))

	return sb.String()
}

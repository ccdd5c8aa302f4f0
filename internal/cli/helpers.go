package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/mfocus/internal/domain"
	"github.com/emiliopalmerini/mfocus/internal/util"
)

// rangeFlags selects a query range by named period or explicit bounds.
type rangeFlags struct {
	period string
	from   string
	to     string
}

func (f *rangeFlags) register(cmd *cobra.Command, defaultPeriod string) {
	cmd.Flags().StringVarP(&f.period, "period", "p", defaultPeriod, "Time period: today, week, month, or Nd for the last N days")
	cmd.Flags().StringVar(&f.from, "from", "", "Range start (RFC3339, YYYY-MM-DD HH:MM or YYYY-MM-DD); overrides --period")
	cmd.Flags().StringVar(&f.to, "to", "", "Range end, exclusive; required with --from")
}

func (f *rangeFlags) resolve(now time.Time, loc *time.Location) (domain.TimeRange, error) {
	if f.from == "" && f.to == "" {
		return util.GetRangeForPeriod(f.period, now, loc)
	}
	if f.from == "" || f.to == "" {
		return domain.TimeRange{}, fmt.Errorf("--from and --to must be used together")
	}
	start, err := util.ParseTime(f.from, loc)
	if err != nil {
		return domain.TimeRange{}, err
	}
	end, err := util.ParseTime(f.to, loc)
	if err != nil {
		return domain.TimeRange{}, err
	}
	return domain.NewTimeRange(start, end)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printRange(w io.Writer, r domain.TimeRange) {
	fmt.Fprintf(w, "Range: %s → %s\n\n", util.FormatDateTime(r.Start), util.FormatDateTime(r.End))
}

// bar renders a fixed-width text bar for terminal tables.
func bar(fraction float64, width int) string {
	fraction = min(max(fraction, 0), 1)
	filled := int(fraction*float64(width) + 0.5)
	out := make([]rune, width)
	for i := range out {
		if i < filled {
			out[i] = '█'
		} else {
			out[i] = '·'
		}
	}
	return string(out)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

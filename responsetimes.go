package txtimez

import (
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
)

// ResponseTimes is a snapshot of collected measurements keyed by transaction name.
// Each sequence is in record order.
type ResponseTimes map[Key][]*Measurement

// Names returns the transaction names in lexical order.
func (r ResponseTimes) Names() []Key {
	names := make([]Key, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of measurements recorded for name.
func (r ResponseTimes) Count(name Key) int {
	return len(r[name])
}

// Total returns the summed duration of the measurements recorded for name.
func (r ResponseTimes) Total(name Key) time.Duration {
	var total time.Duration
	for _, m := range r[name] {
		if d, err := m.Duration(); err == nil {
			total += d
		}
	}
	return total
}

// Len returns the number of measurements across all names.
func (r ResponseTimes) Len() int {
	n := 0
	for _, seq := range r {
		n += len(seq)
	}
	return n
}

// WriteTable renders one row per transaction name with its count and total duration.
func (r ResponseTimes) WriteTable(w io.Writer) error {
	table := tablewriter.NewWriter(w)
	table.Header("Transaction", "Count", "Total")

	for _, name := range r.Names() {
		if err := table.Append([]string{name, strconv.Itoa(r.Count(name)), r.Total(name).String()}); err != nil {
			return err
		}
	}

	return table.Render()
}

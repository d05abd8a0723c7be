// Package stats implements the external collaborator that persists
// per-opcode runtime statistics to CSV when the interpreter is run with the
// -p<file> switch: one row per (opcode, mode, qualifier) combination seen,
// with total elapsed time and call count.
package stats

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/dustin/go-humanize"

	"corelang/internal/bytecode"
)

type key struct {
	op   bytecode.Opcode
	mode bytecode.Mode
	qual string
}

type entry struct {
	elapsed time.Duration
	calls   int64
}

// Collector accumulates per-instruction timing across one interpreter run.
type Collector struct {
	rows map[key]*entry
}

func NewCollector() *Collector {
	return &Collector{rows: make(map[key]*entry)}
}

// Record folds one instruction's execution time into the aggregate row for
// its (opcode, mode, qualifier) combination.
func (c *Collector) Record(op bytecode.Opcode, mode bytecode.Mode, qual []int, elapsed time.Duration) {
	k := key{op: op, mode: mode, qual: fmt.Sprint(qual)}
	e, ok := c.rows[k]
	if !ok {
		e = &entry{}
		c.rows[k] = e
	}
	e.elapsed += elapsed
	e.calls++
}

// WriteCSV persists the header "OPCODE,MODE,QUAL,TOTAL ELAPSED,CALLS"
// followed by one row per combination seen, ordered by descending total
// elapsed time (the slowest opcode combinations first).
func (c *Collector) WriteCSV(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"OPCODE", "MODE", "QUAL", "TOTAL ELAPSED", "CALLS"}); err != nil {
		return err
	}

	type row struct {
		k key
		e *entry
	}
	rows := make([]row, 0, len(c.rows))
	for k, e := range c.rows {
		rows = append(rows, row{k, e})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].e.elapsed > rows[j].e.elapsed })

	for _, r := range rows {
		record := []string{
			r.k.op.String(),
			r.k.mode.String(),
			r.k.qual,
			r.e.elapsed.String(),
			humanize.Comma(r.e.calls),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	return nil
}

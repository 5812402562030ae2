package bvh

import (
	"bytes"
	"fmt"
	"time"

	"github.com/achilleasa/hitmiss/types"
	"github.com/olekukonko/tablewriter"
)

// Hierarchy build statistics.
type Stats struct {
	// The number of partitioned elements.
	Elements int

	// Node counts. Nodes is always Leaves + Interior.
	Nodes    int
	Leaves   int
	Interior int

	// The deepest recursion level reached while partitioning.
	MaxDepth int

	// The number of interior nodes split along each axis.
	SplitAxes [types.NumAxes]int

	// The size of the node array in bytes.
	MemoryBytes int

	BuildTime time.Duration
}

// Build a tabular representation of the hierarchy statistics.
func (s Stats) Table() string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Metric", "Value"})
	table.Append([]string{"Elements", fmt.Sprintf("%d", s.Elements)})
	table.Append([]string{"Nodes", fmt.Sprintf("%d", s.Nodes)})
	table.Append([]string{"Leaves", fmt.Sprintf("%d", s.Leaves)})
	table.Append([]string{"Interior", fmt.Sprintf("%d", s.Interior)})
	table.Append([]string{"Max depth", fmt.Sprintf("%d", s.MaxDepth)})
	for axis := types.XAxis; axis <= types.ZAxis; axis++ {
		table.Append([]string{fmt.Sprintf("Splits along %s", axis), fmt.Sprintf("%d", s.SplitAxes[axis])})
	}
	table.Append([]string{"Node memory", fmtSize(s.MemoryBytes)})
	table.SetFooter([]string{"Build time", s.BuildTime.String()})

	table.Render()
	return buf.String()
}

// Format a byte count with the appropriate byte/kb/mb unit.
func fmtSize(totalBytes int) string {
	if totalBytes < 1e3 {
		return fmt.Sprintf("%3d bytes", totalBytes)
	} else if totalBytes < 1e6 {
		return fmt.Sprintf("%3.1f kb", float32(totalBytes)/1e3)
	}
	return fmt.Sprintf("%5.1f mb", float32(totalBytes)/1e6)
}

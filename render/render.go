// Package render prints workload results as tables and list node trees.
package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	asciitree "github.com/thediveo/go-asciitree"

	"hop.computer/containers/pkg/list"
	"hop.computer/containers/workload"
)

// maxValues is how many elements a table cell shows before eliding the rest.
const maxValues = 12

// Options controls rendering.
type Options struct {
	Color bool
	// Tree prints the node chain of every list result.
	Tree bool
}

var headers = []string{"scenario", "container", "len", "cap", "reallocs", "nodes", "values", "status"}

// Table writes one row per result, followed by the failures of failed
// results.
func Table(w io.Writer, results []workload.Result, opts Options) error {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		rows = append(rows, row(r, opts.Color))
	}
	hs := make([]string, len(headers))
	for i, h := range headers {
		hs[i] = paint(opts.Color, headerStyle, h)
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(hs...).
		Rows(rows...).
		StyleFunc(func(_, _ int) lipgloss.Style {
			return cellStyle
		})
	if _, err := fmt.Fprintln(w, t.Render()); err != nil {
		return err
	}
	for _, r := range results {
		for _, f := range r.Failures {
			line := fmt.Sprintf("%s/%s: %s", r.Scenario, r.Container, f)
			if _, err := fmt.Fprintln(w, paint(opts.Color, failStyle, line)); err != nil {
				return err
			}
		}
	}
	if !opts.Tree {
		return nil
	}
	for _, r := range results {
		if r.List == nil {
			continue
		}
		if err := Tree(w, r.Scenario, r.List); err != nil {
			return err
		}
	}
	return nil
}

func row(r workload.Result, color bool) []string {
	capacity, reallocs, nodes := "-", "-", "-"
	if r.Container == workload.KindArray {
		capacity = paint(color, capStyle, strconv.Itoa(r.Cap))
		reallocs = strconv.Itoa(r.Reallocations)
	} else {
		nodes = fmt.Sprintf("+%d/-%d", r.Nodes.Allocated, r.Nodes.Released)
	}
	status := paint(color, passStyle, "ok")
	if r.Failed() {
		status = paint(color, failStyle, fmt.Sprintf("FAIL (%d)", len(r.Failures)))
	}
	return []string{
		r.Scenario,
		r.Container,
		strconv.Itoa(r.Len),
		capacity,
		reallocs,
		nodes,
		Values(r.Values),
		status,
	}
}

// Values formats a sequence as {a, b, c}, eliding long sequences.
func Values(vs []int) string {
	parts := make([]string, 0, min(len(vs), maxValues)+1)
	for i, v := range vs {
		if i == maxValues {
			parts = append(parts, fmt.Sprintf("... %d more", len(vs)-maxValues))
			break
		}
		parts = append(parts, strconv.Itoa(v))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

type treeNode struct {
	Label    string     `asciitree:"label"`
	Props    []string   `asciitree:"properties"`
	Children []treeNode `asciitree:"children"`
}

// chain converts a list into a tree whose children are the nodes in order,
// each annotated with its neighbours.
func chain(name string, l *list.List[int]) treeNode {
	root := treeNode{
		Label: fmt.Sprintf("%s (len %d)", name, l.Len()),
		Props: []string{
			fmt.Sprintf("allocated: %d", l.Stats().Allocated),
			fmt.Sprintf("released: %d", l.Stats().Released),
		},
	}
	i := 0
	for it := l.Begin(); !it.IsEnd(); it = it.Next() {
		prev, next := "nil", "nil"
		if it != l.Begin() {
			prev = strconv.Itoa(it.Prev().Value())
		}
		if n := it.Next(); !n.IsEnd() {
			next = strconv.Itoa(n.Value())
		}
		root.Children = append(root.Children, treeNode{
			Label: fmt.Sprintf("[%d] %d", i, it.Value()),
			Props: []string{"prev: " + prev, "next: " + next},
		})
		i++
	}
	return root
}

// Tree writes the node chain of l as an ASCII tree.
func Tree(w io.Writer, name string, l *list.List[int]) error {
	_, err := fmt.Fprintln(w, asciitree.RenderFancy(chain(name, l)))
	return err
}

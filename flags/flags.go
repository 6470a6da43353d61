// Package flags provides support for seqrun CLI args
package flags

import (
	"errors"
	"flag"
	"io"
)

// ErrMissingWorkload is returned when no workload file is given.
var ErrMissingWorkload = errors.New("missing workload file")

// RunFlags holds CLI arguments for seqrun.
type RunFlags struct {
	Workloads []string

	Run     string // comma-separated globs selecting scenarios by name
	Tree    bool   // print list node chains
	NoColor bool   // never color the output
	Compare int    // print growth strategy reallocations for this many appends
	Verbose bool   // debug logging
}

// defineRunFlags calls fs.StringVar etc. for seqrun
func defineRunFlags(fs *flag.FlagSet, f *RunFlags) {
	fs.StringVar(&f.Run, "run", "", "only run scenarios whose name matches one of these comma-separated globs")
	fs.BoolVar(&f.Tree, "tree", false, "print the node chain of list results")
	fs.BoolVar(&f.NoColor, "no-color", false, "disable colored output")
	fs.IntVar(&f.Compare, "compare", 0, "report reallocations of both growth strategies for N appends")
	fs.BoolVar(&f.Verbose, "V", false, "display verbose log messages")
}

// ParseRunArgs defines and parses the flags from the command line for seqrun.
// args includes the program name.
func ParseRunArgs(args []string, output io.Writer) (*RunFlags, error) {
	f := new(RunFlags)
	fs := flag.NewFlagSet(args[0], flag.ContinueOnError)
	fs.SetOutput(output)
	defineRunFlags(fs, f)

	err := fs.Parse(args[1:])
	if err != nil {
		return nil, err
	}
	if fs.NArg() < 1 && f.Compare == 0 {
		return nil, ErrMissingWorkload
	}
	f.Workloads = fs.Args()
	return f, nil
}

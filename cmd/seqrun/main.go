package main

import (
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"hop.computer/containers/flags"
	"hop.computer/containers/pkg/glob"
	"hop.computer/containers/pkg/waiter"
	"hop.computer/containers/render"
	"hop.computer/containers/workload"
)

func main() {
	os.Exit(run(os.Args, os.Stdout, os.Stderr))
}

// run returns the process exit code: 0 if every scenario passed, 1 if any
// failed, 2 for usage or load errors.
func run(args []string, stdout *os.File, stderr io.Writer) int {
	logrus.SetOutput(stderr)
	f, err := flags.ParseRunArgs(args, stderr)
	if err != nil {
		logrus.Error(err)
		return 2
	}
	if f.Verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	if f.Compare > 0 {
		doubling, incremental := workload.Compare(f.Compare)
		fmt.Fprintf(stdout, "%d appends: doubling reallocated %d times, incremental %d times\n", f.Compare, doubling, incremental)
	}

	results, counts, err := runWorkloads(f)
	if err != nil {
		logrus.Error(err)
		return 2
	}
	if len(results) == 0 {
		return 0
	}

	opts := render.Options{
		Color: !f.NoColor && render.ColorEnabled(stdout),
		Tree:  f.Tree,
	}
	if err := render.Table(stdout, results, opts); err != nil {
		logrus.Error(err)
		return 2
	}
	fmt.Fprintf(stdout, "%d capacity changes, %d failed steps\n", counts[workload.EventCapacity], counts[workload.EventFailure])
	for _, r := range results {
		if r.Failed() {
			return 1
		}
	}
	return 0
}

// runWorkloads runs the selected scenarios and counts the runner events of
// each kind.
func runWorkloads(f *flags.RunFlags) ([]workload.Result, map[workload.EventKind]int, error) {
	files := workload.NewFiles()
	runner := workload.NewRunner(nil)
	counts := make(map[workload.EventKind]int)
	tally := waiter.NewFunctionEntry(func(ev *workload.Event) { counts[ev.Kind]++ })
	runner.Events().EventRegister(tally)
	defer runner.Events().EventUnregister(tally)

	var results []workload.Result
	for _, path := range f.Workloads {
		scenarios, err := files.Load(path)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "loading %s", path)
		}
		for _, sc := range scenarios {
			if !glob.Any(f.Run, sc.Name) {
				logrus.Debugf("skipping scenario %s", sc.Name)
				continue
			}
			res, err := runner.Run(sc)
			if err != nil {
				return nil, nil, err
			}
			results = append(results, res...)
		}
	}
	return results, counts, nil
}

package workload

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"hop.computer/containers/pkg/array"
	"hop.computer/containers/pkg/list"
	"hop.computer/containers/pkg/thunks"
	"hop.computer/containers/pkg/waiter"
)

// Failure records a step that returned an error or violated a container
// precondition.
type Failure struct {
	Step int
	Op   string
	Err  error
}

func (f Failure) String() string {
	return fmt.Sprintf("step %d (%s): %s", f.Step, f.Op, f.Err)
}

// Result is the final state of one container after running a scenario.
type Result struct {
	Scenario  string
	Container string
	Strategy  string

	Values        []int
	Len           int
	Cap           int // zero for lists
	Reallocations int
	Nodes         list.Stats

	// List is the final list, kept for rendering. It is nil for arrays.
	List *list.List[int]

	Failures []Failure
	Elapsed  time.Duration
}

// Failed reports whether any step failed.
func (r *Result) Failed() bool {
	return len(r.Failures) > 0
}

// EventKind distinguishes the events a Runner publishes.
type EventKind int

// Runner events.
const (
	EventCapacity EventKind = iota
	EventFailure
)

// Event describes a capacity change or a failed step while a scenario runs.
type Event struct {
	Kind      EventKind
	Scenario  string
	Container string
	Step      int
	Op        string

	// Capacity before and after the step, and the length after it. Only set
	// for EventCapacity.
	From, To, Len int

	// Err is only set for EventFailure.
	Err error
}

// Runner executes scenarios.
type Runner struct {
	log    *logrus.Entry
	events waiter.Queue[Event]
}

// NewRunner returns a runner that logs to log. A nil log uses the standard
// logrus logger.
func NewRunner(log *logrus.Entry) *Runner {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Runner{log: log}
}

// Events returns the queue notified of every capacity change and step failure.
// Listeners run synchronously on the goroutine calling Run.
func (r *Runner) Events() *waiter.Queue[Event] {
	return &r.events
}

// Run applies the scenario to a fresh container of each kind it targets. Step
// failures are recorded in the results; Run only returns an error for a
// scenario that does not validate.
func (r *Runner) Run(sc Scenario) ([]Result, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	var results []Result
	for _, kind := range sc.Kinds() {
		results = append(results, r.runOne(&sc, kind))
	}
	return results, nil
}

func (r *Runner) runOne(sc *Scenario, kind string) Result {
	log := r.log.WithFields(logrus.Fields{
		"scenario":  sc.Name,
		"container": kind,
	})
	start := thunks.TimeNow()
	t := newTarget(kind, sc)
	res := Result{
		Scenario:  sc.Name,
		Container: kind,
		Strategy:  sc.Strategy,
	}
	lastCap := capacity(t)
	for i, step := range sc.Steps {
		for n := 0; n < step.Count; n++ {
			log.WithFields(logrus.Fields{
				"step": i,
				"op":   step.Op,
			}).Debug("applying step")
			if err := safeApply(t, step); err != nil {
				log.WithFields(logrus.Fields{
					"step": i,
					"op":   step.Op,
				}).Warnf("step failed: %s", err)
				res.Failures = append(res.Failures, Failure{Step: i, Op: step.Op, Err: err})
				r.events.Notify(&Event{
					Kind:      EventFailure,
					Scenario:  sc.Name,
					Container: kind,
					Step:      i,
					Op:        step.Op,
					Err:       err,
				})
				break
			}
			if c := capacity(t); c != lastCap {
				log.WithFields(logrus.Fields{
					"from": lastCap,
					"to":   c,
					"len":  t.Len(),
				}).Info("capacity changed")
				r.events.Notify(&Event{
					Kind:      EventCapacity,
					Scenario:  sc.Name,
					Container: kind,
					Step:      i,
					Op:        step.Op,
					From:      lastCap,
					To:        c,
					Len:       t.Len(),
				})
				lastCap = c
			}
		}
	}
	res.Values = t.Values()
	res.Len = t.Len()
	switch t := t.(type) {
	case *arrayTarget:
		res.Cap = t.Cap()
		res.Reallocations = t.Reallocations()
	case *listTarget:
		res.Nodes = t.Stats()
		res.List = t.List
	}
	res.Elapsed = thunks.TimeNow().Sub(start)
	log.WithField("len", res.Len).Debug("scenario finished")
	return res
}

func capacity(t target) int {
	if a, ok := t.(*arrayTarget); ok {
		return a.Cap()
	}
	return 0
}

// safeApply runs one step, turning precondition panics from the containers
// into errors.
func safeApply(t target, s Step) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = errors.Errorf("precondition violated: %v", p)
		}
	}()
	return t.apply(s)
}

// Compare appends n values to an empty array with each growth strategy and
// returns the number of reallocations each one needed.
func Compare(n int) (doubling, incremental int) {
	d := array.New(0, 0)
	inc := array.New(0, 0)
	for i := 0; i < n; i++ {
		d.PushBack(i)
		inc.PushBackIncremental(i)
	}
	return d.Reallocations(), inc.Reallocations()
}

package workload

import (
	"errors"
	"testing"
	"testing/fstest"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"golang.org/x/exp/slices"
	"gotest.tools/assert"
	is "gotest.tools/assert/cmp"

	"hop.computer/containers/pkg/list"
	"hop.computer/containers/pkg/thunks"
	"hop.computer/containers/pkg/waiter"
)

const propertiesToml = `
[[scenario]]
name = "array-insert"
container = "array"
size = 3
fill = 7

[[scenario.steps]]
op = "reserve"
n = 20

[[scenario.steps]]
op = "insert"
pos = 1
value = 9

[[scenario.steps]]
op = "expect"
values = [7, 9, 7, 7]

[[scenario]]
name = "list-erase-end"
container = "list"

[[scenario.steps]]
op = "push_back"
value = 1

[[scenario.steps]]
op = "push_back"
value = 2

[[scenario.steps]]
op = "push_back"
value = 3

[[scenario.steps]]
op = "erase"
end = true

[[scenario.steps]]
op = "expect"
values = [1, 2]

[[scenario]]
container = "both"
size = 2
fill = 4

[[scenario.steps]]
op = "push_back"
value = 5
count = 3

[[scenario.steps]]
op = "clone"
value = 100

[[scenario.steps]]
op = "expect"
values = [4, 4, 5, 5, 5]
`

const propertiesYaml = `
scenario:
  - name: array-at
    container: array
    size: 2
    fill: 1
    steps:
      - op: at
        pos: 1
        value: 1
      - op: at
        pos: 2
        fail: true
      - op: clear
      - op: at
        pos: 0
        fail: true
  - name: list-front
    container: list
    steps:
      - {op: push_back, value: 1}
      - {op: push_back, value: 2}
      - {op: push_front, value: 0}
      - {op: expect, values: [0, 1, 2]}
`

func setUpFS(t *testing.T, files fstest.MapFS) {
	old := fileSystem
	fileSystem = files
	t.Cleanup(func() { fileSystem = old })
}

func nullRunner() (*Runner, *test.Hook) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	return NewRunner(logrus.NewEntry(logger)), hook
}

func runAll(t *testing.T, scenarios []Scenario) []Result {
	t.Helper()
	r, _ := nullRunner()
	var out []Result
	for _, sc := range scenarios {
		res, err := r.Run(sc)
		assert.NilError(t, err)
		out = append(out, res...)
	}
	return out
}

func TestDecodeToml(t *testing.T) {
	setUpFS(t, fstest.MapFS{
		"w/props.toml": &fstest.MapFile{Data: []byte(propertiesToml)},
	})
	files := NewFiles()
	scenarios, err := files.Load("w/props.toml")
	assert.NilError(t, err)
	assert.Equal(t, 3, len(scenarios))

	assert.Equal(t, "array-insert", scenarios[0].Name)
	assert.Equal(t, StrategyDoubling, scenarios[0].Strategy)
	assert.Equal(t, 20, scenarios[0].Steps[0].N)
	assert.Equal(t, 1, scenarios[0].Steps[0].Count)

	// Unnamed scenarios are named after the file.
	assert.Equal(t, "props-2", scenarios[2].Name)
	assert.Equal(t, KindBoth, scenarios[2].Container)
	assert.Equal(t, 3, scenarios[2].Steps[0].Count)

	// Loading again hits the cache.
	again, err := files.Load("w/props.toml")
	assert.NilError(t, err)
	assert.Equal(t, &scenarios[0], &again[0])
}

func TestRunProperties(t *testing.T) {
	setUpFS(t, fstest.MapFS{
		"props.toml": &fstest.MapFile{Data: []byte(propertiesToml)},
		"props.yaml": &fstest.MapFile{Data: []byte(propertiesYaml)},
	})
	files := NewFiles()
	var scenarios []Scenario
	for _, path := range []string{"props.toml", "props.yaml"} {
		s, err := files.Load(path)
		assert.NilError(t, err)
		scenarios = append(scenarios, s...)
	}

	results := runAll(t, scenarios)
	assert.Equal(t, 6, len(results))
	for _, res := range results {
		assert.Check(t, !res.Failed(), "%s/%s: %v", res.Scenario, res.Container, res.Failures)
	}

	insert := results[0]
	assert.Equal(t, 4, insert.Len)
	assert.Equal(t, 20, insert.Cap)
	assert.Equal(t, 1, insert.Reallocations)

	erase := results[1]
	assert.Equal(t, KindList, erase.Container)
	assert.Equal(t, 3, erase.Nodes.Allocated)
	assert.Equal(t, 1, erase.Nodes.Released)
	assert.Assert(t, erase.List != nil)
	assert.Equal(t, 2, erase.List.Back())

	assert.Equal(t, KindArray, results[2].Container)
	assert.Equal(t, KindList, results[3].Container)
	assert.DeepEqual(t, results[2].Values, results[3].Values)
}

func TestFailuresAreRecorded(t *testing.T) {
	sc := Scenario{
		Name:      "bad",
		Container: KindArray,
		Strategy:  StrategyDoubling,
		Size:      5,
		Fill:      1,
		Steps: []Step{
			{Op: OpResize, N: 10, Count: 1},
			// The array is full, so insert must fail without growing it.
			{Op: OpInsert, Pos: 0, Value: 2, Count: 1},
			{Op: OpExpect, Values: []int{0}, Count: 1},
			{Op: OpAt, Pos: 10, Count: 1},
		},
	}
	r, _ := nullRunner()
	var events []Event
	e := waiter.NewFunctionEntry(func(ev *Event) { events = append(events, *ev) })
	r.Events().EventRegister(e)
	defer r.Events().EventUnregister(e)

	results, err := r.Run(sc)
	assert.NilError(t, err)
	res := results[0]
	assert.Equal(t, 3, len(res.Failures))
	assert.Equal(t, 3, len(events))
	for i, ev := range events {
		assert.Check(t, is.Equal(EventFailure, ev.Kind))
		assert.Check(t, is.Equal("bad", ev.Scenario))
		assert.Check(t, is.Equal(res.Failures[i].Step, ev.Step))
		assert.Check(t, is.Equal(res.Failures[i].Err, ev.Err))
	}
	assert.Equal(t, 1, res.Failures[0].Step)
	assert.ErrorContains(t, res.Failures[0].Err, "precondition violated")
	assert.Equal(t, 10, res.Cap)
	assert.Equal(t, 10, res.Len)
	assert.Assert(t, errors.Is(res.Failures[1].Err, ErrExpectation))
	assert.ErrorContains(t, res.Failures[2].Err, "invalid array access")
	assert.Check(t, is.Contains(res.Failures[0].String(), "step 1 (insert)"))
}

func TestValidate(t *testing.T) {
	r, _ := nullRunner()
	_, err := r.Run(Scenario{Name: "x", Container: KindBoth, Strategy: StrategyDoubling, Steps: []Step{{Op: OpPushFront, Count: 1}}})
	assert.Assert(t, errors.Is(err, ErrUnsupportedOp))

	_, err = r.Run(Scenario{Name: "x", Container: KindList, Strategy: StrategyDoubling, Steps: []Step{{Op: OpReserve, Count: 1}}})
	assert.Assert(t, errors.Is(err, ErrUnsupportedOp))

	_, err = r.Run(Scenario{Name: "x", Container: KindList, Strategy: StrategyDoubling, Steps: []Step{{Op: "sort"}}})
	assert.Assert(t, errors.Is(err, ErrUnknownOp))

	_, err = r.Run(Scenario{Name: "x", Container: "tree", Strategy: StrategyDoubling})
	assert.ErrorContains(t, err, `unknown container "tree"`)

	_, err = r.Run(Scenario{Name: "x", Container: KindArray, Strategy: "tripling"})
	assert.ErrorContains(t, err, `unknown strategy "tripling"`)

	_, err = Decode("w.json", []byte("{}"))
	assert.Assert(t, errors.Is(err, ErrUnknownFormat))

	_, err = Decode("w.toml", []byte("[[scenario]]\nbogus = 1\n"))
	assert.ErrorContains(t, err, "unknown key")

	_, err = Decode("w.yaml", []byte("scenario:\n  - bogus: 1\n"))
	assert.ErrorContains(t, err, "decoding yaml")
}

func TestCapacityLogging(t *testing.T) {
	r, hook := nullRunner()
	events := make(chan *Event, 4)
	r.Events().EventRegister(waiter.NewChannelEntry[Event](events))
	sc := Scenario{
		Name:      "grow",
		Container: KindArray,
		Strategy:  StrategyIncremental,
		Steps:     []Step{{Op: OpPushBack, Value: 1, Count: 12}},
	}
	results, err := r.Run(sc)
	assert.NilError(t, err)
	assert.Equal(t, 12, results[0].Cap)
	assert.Equal(t, 2, results[0].Reallocations)

	var changes []logrus.Fields
	for _, e := range hook.AllEntries() {
		if e.Message == "capacity changed" {
			assert.Equal(t, logrus.InfoLevel, e.Level)
			assert.Equal(t, "grow", e.Data["scenario"])
			changes = append(changes, e.Data)
		}
	}
	assert.Equal(t, 2, len(changes))
	assert.Equal(t, 10, changes[0]["from"])
	assert.Equal(t, 11, changes[0]["to"])

	// Subscribers see the same changes as the log.
	assert.Equal(t, 2, len(events))
	first := <-events
	assert.Equal(t, EventCapacity, first.Kind)
	assert.Equal(t, KindArray, first.Container)
	assert.Equal(t, 10, first.From)
	assert.Equal(t, 11, first.To)
	assert.Equal(t, 11, first.Len)
	second := <-events
	assert.Equal(t, 12, second.To)
}

func TestRandomStepsReplay(t *testing.T) {
	thunks.SetUpTest()
	t.Cleanup(func() { thunks.TimeNow = time.Now })
	sc := Scenario{
		Name:      "random",
		Container: KindBoth,
		Strategy:  StrategyDoubling,
		Steps:     []Step{{Op: OpRandom, N: 300, Seed: 11, Count: 1}},
	}
	r, _ := nullRunner()
	results, err := r.Run(sc)
	assert.NilError(t, err)
	assert.Equal(t, 2, len(results))
	assert.Check(t, results[0].Elapsed > 0)
	// Replaying the same seed reproduces the same final state.
	again, err := r.Run(sc)
	assert.NilError(t, err)
	assert.DeepEqual(t, results[0].Values, again[0].Values)
	assert.DeepEqual(t, results[1].Values, again[1].Values)
}

func TestCompare(t *testing.T) {
	doubling, incremental := Compare(1000)
	// 10, 20, 40, ..., 1280
	assert.Equal(t, 7, doubling)
	assert.Equal(t, 990, incremental)
}

func TestFillDrain(t *testing.T) {
	sc := Scenario{
		Name:      "fill-drain",
		Container: KindBoth,
		Strategy:  StrategyIncremental,
		Size:      9,
		Steps: []Step{
			{Op: OpFill, Values: []int{1, 2, 3}, Count: 1},
			{Op: OpDrain, Values: []int{3, 2, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0}, Count: 1},
			{Op: OpFill, Values: []int{4, 5}, Count: 1},
			{Op: OpDrain, Count: 1},
			{Op: OpFill, Values: []int{6}, Count: 1},
			{Op: OpDrain, Values: []int{7}, Count: 1},
		},
	}
	r, _ := nullRunner()
	results, err := r.Run(sc)
	assert.NilError(t, err)
	assert.Equal(t, 2, len(results))
	for _, res := range results {
		assert.Equal(t, 0, res.Len, res.Container)
		assert.Assert(t, is.Len(res.Failures, 1), res.Container)
		assert.Equal(t, 5, res.Failures[0].Step)
		assert.Assert(t, errors.Is(res.Failures[0].Err, ErrExpectation))
	}
	// Fill uses the scenario's growth strategy: 9 -> 12 elements from a
	// capacity of 18 needs no reallocation.
	assert.Equal(t, 18, results[0].Cap)
	assert.Equal(t, 0, results[0].Reallocations)
}

func TestRandomFrontOps(t *testing.T) {
	differ := 0
	for seed := uint64(1); seed <= 5; seed++ {
		step := Step{Op: OpRandom, N: 200, Seed: seed}
		front := &listTarget{List: list.New(0, 0)}
		back := &listTarget{List: list.New(0, 0)}
		assert.NilError(t, randomOps(front, step, true))
		assert.NilError(t, randomOps(back, step, false))

		// The coin only moves ops between the ends, so lengths track each
		// other while the contents differ.
		assert.Equal(t, back.Len(), front.Len(), "seed %d", seed)
		assert.Equal(t, front.Len(), front.Stats().Live())
		if !slices.Equal(front.Values(), back.Values()) {
			differ++
		}
	}
	assert.Check(t, differ > 0)
}

// rejectingTarget refuses pops so that random steps hit an error.
type rejectingTarget struct {
	*listTarget
}

func (r rejectingTarget) apply(s Step) error {
	if s.Op == OpPopBack || s.Op == OpPopFront {
		return errors.Join(ErrExpectation, errors.New("pop rejected"))
	}
	return r.listTarget.apply(s)
}

func TestRandomOpsReturnErrors(t *testing.T) {
	tgt := rejectingTarget{&listTarget{List: list.New(0, 0)}}
	err := randomOps(tgt, Step{Op: OpRandom, N: 100, Seed: 9}, true)
	assert.Assert(t, errors.Is(err, ErrExpectation))
	assert.ErrorContains(t, err, "random op")
	assert.ErrorContains(t, err, "pop rejected")
}

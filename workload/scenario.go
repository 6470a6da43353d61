// Package workload loads container scenarios from TOML or YAML files and runs
// them against the array and list containers.
package workload

import (
	"bytes"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"hop.computer/containers/pkg/combinators"
	"hop.computer/containers/pkg/loader"
)

// Container kinds a scenario can target.
const (
	KindArray = "array"
	KindList  = "list"
	KindBoth  = "both"
)

// Growth strategies for the array append path.
const (
	StrategyDoubling    = "doubling"
	StrategyIncremental = "incremental"
)

// Step operations.
const (
	OpPushBack  = "push_back"
	OpPushFront = "push_front"
	OpPopBack   = "pop_back"
	OpPopFront  = "pop_front"
	OpInsert    = "insert"
	OpErase     = "erase"
	OpResize    = "resize"
	OpReserve   = "reserve"
	OpClear     = "clear"
	OpAt        = "at"
	OpExpect    = "expect"
	OpClone     = "clone"
	OpFill      = "fill"
	OpDrain     = "drain"
	OpRandom    = "random"
)

var (
	// ErrUnknownOp is returned for a step whose op is not recognized.
	ErrUnknownOp = errors.New("unknown op")
	// ErrUnsupportedOp is returned when a step targets a container that does
	// not implement its op, such as push_front on an array.
	ErrUnsupportedOp = errors.New("op not supported by container")
	// ErrUnknownFormat is returned for files that are neither TOML nor YAML.
	ErrUnknownFormat = errors.New("unknown workload format")
)

var supported = map[string][]string{
	KindArray: {OpPushBack, OpPopBack, OpInsert, OpErase, OpResize, OpReserve, OpClear, OpAt, OpExpect, OpClone, OpFill, OpDrain, OpRandom},
	KindList:  {OpPushBack, OpPushFront, OpPopBack, OpPopFront, OpInsert, OpErase, OpResize, OpClear, OpExpect, OpClone, OpFill, OpDrain, OpRandom},
}

// File is the top level of a workload file.
type File struct {
	Scenarios []Scenario `toml:"scenario" yaml:"scenario"`
}

// Scenario is a named sequence of steps applied to freshly constructed
// containers of integers.
type Scenario struct {
	Name      string `toml:"name" yaml:"name"`
	Container string `toml:"container" yaml:"container"`
	Strategy  string `toml:"strategy" yaml:"strategy"`
	Size      int    `toml:"size" yaml:"size"`
	Fill      int    `toml:"fill" yaml:"fill"`
	Steps     []Step `toml:"steps" yaml:"steps"`
}

// Step is one operation. Which fields matter depends on Op.
type Step struct {
	Op     string `toml:"op" yaml:"op"`
	Value  int    `toml:"value" yaml:"value"`
	Count  int    `toml:"count" yaml:"count"`
	N      int    `toml:"n" yaml:"n"`
	Pos    int    `toml:"pos" yaml:"pos"`
	End    bool   `toml:"end" yaml:"end"`
	Fail   bool   `toml:"fail" yaml:"fail"`
	Values []int  `toml:"values" yaml:"values"`
	Seed   uint64 `toml:"seed" yaml:"seed"`
}

// Kinds returns the container kinds the scenario runs against.
func (s *Scenario) Kinds() []string {
	if s.Container == KindBoth {
		return []string{KindArray, KindList}
	}
	return []string{s.Container}
}

// normalize fills in defaults. index is the position of the scenario in its
// file, used to name anonymous scenarios.
func (s *Scenario) normalize(path string, index int) {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	s.Name = combinators.StringOr(s.Name, base+"-"+strconv.Itoa(index))
	s.Container = combinators.StringOr(strings.ToLower(s.Container), KindBoth)
	s.Strategy = combinators.StringOr(strings.ToLower(s.Strategy), StrategyDoubling)
	for i := range s.Steps {
		s.Steps[i].Op = strings.ToLower(s.Steps[i].Op)
		s.Steps[i].Count = combinators.Or(s.Steps[i].Count, 1)
	}
}

// Validate checks the scenario for unknown values and ops that a selected
// container cannot perform.
func (s *Scenario) Validate() error {
	switch s.Container {
	case KindArray, KindList, KindBoth:
	default:
		return errors.Errorf("scenario %q: unknown container %q", s.Name, s.Container)
	}
	switch s.Strategy {
	case StrategyDoubling, StrategyIncremental:
	default:
		return errors.Errorf("scenario %q: unknown strategy %q", s.Name, s.Strategy)
	}
	if s.Size < 0 {
		return errors.Errorf("scenario %q: negative size %d", s.Name, s.Size)
	}
	for i, step := range s.Steps {
		known := false
		for _, ops := range supported {
			if contains(ops, step.Op) {
				known = true
			}
		}
		if !known {
			return errors.Wrapf(ErrUnknownOp, "scenario %q step %d: %q", s.Name, i, step.Op)
		}
		for _, kind := range s.Kinds() {
			if !contains(supported[kind], step.Op) {
				return errors.Wrapf(ErrUnsupportedOp, "scenario %q step %d: %s on %s", s.Name, i, step.Op, kind)
			}
		}
		if step.Count < 0 {
			return errors.Errorf("scenario %q step %d: negative count", s.Name, i)
		}
	}
	return nil
}

// Decode parses a workload file. The format is chosen by the extension of
// path: .toml, or .yaml and .yml.
func Decode(path string, b []byte) ([]Scenario, error) {
	var f File
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		md, err := toml.NewDecoder(bytes.NewReader(b)).Decode(&f)
		if err != nil {
			return nil, errors.Wrap(err, "decoding toml")
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, errors.Errorf("unknown key %q", undecoded[0].String())
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(b))
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil {
			return nil, errors.Wrap(err, "decoding yaml")
		}
	default:
		return nil, errors.Wrapf(ErrUnknownFormat, "%q", path)
	}
	for i := range f.Scenarios {
		f.Scenarios[i].normalize(path, i)
		if err := f.Scenarios[i].Validate(); err != nil {
			return nil, err
		}
	}
	return f.Scenarios, nil
}

// Files caches parsed workload files.
type Files struct {
	l *loader.Loader[[]Scenario]
}

// NewFiles returns a cache that reads workload files from the filesystem.
func NewFiles() *Files {
	return &Files{l: loader.New[[]Scenario](fileSystem)}
}

// Load returns the scenarios in the file at path, parsing it on first use.
func (f *Files) Load(path string) ([]Scenario, error) {
	c, _, err := f.l.LoadOrGet(path, Decode)
	if err != nil {
		return nil, err
	}
	return c.Parsed, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

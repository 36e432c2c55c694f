package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/wordarena/arena"
	"github.com/vkngwrapper/wordarena/memutils/metadata"
	"gopkg.in/yaml.v3"
)

// OpType is the kind of a single workload step
type OpType string

const (
	OpAlloc    OpType = "alloc"
	OpFree     OpType = "free"
	OpStrategy OpType = "strategy"
)

// Op is one step of a workload. Name identifies an allocation so that a later
// free can refer to it.
type Op struct {
	Op       OpType `yaml:"op"`
	Name     string `yaml:"name"`
	Bytes    int    `yaml:"bytes"`
	Strategy string `yaml:"strategy"`
}

// Workload is an ordered list of operations replayed against a single manager
type Workload struct {
	Ops []Op `yaml:"ops"`
}

// LoadWorkload reads and validates a workload file
func LoadWorkload(fileName string) (*Workload, error) {
	data, err := os.ReadFile(filepath.Clean(fileName))
	if err != nil {
		return nil, errors.Wrap(err, "failed to read workload file")
	}
	return ParseWorkload(data)
}

// ParseWorkload decodes a YAML workload. Unknown fields and unknown operations are rejected.
func ParseWorkload(data []byte) (*Workload, error) {
	workload := &Workload{}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(workload); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Wrap(err, "failed to unmarshal workload")
	}

	for i, op := range workload.Ops {
		if err := op.validate(); err != nil {
			return nil, errors.Wrapf(err, "op %d", i)
		}
	}
	return workload, nil
}

func (o Op) validate() error {
	switch o.Op {
	case OpAlloc:
		if o.Name == "" {
			return errors.New("alloc requires a name")
		}
	case OpFree:
		if o.Name == "" {
			return errors.New("free requires a name")
		}
	case OpStrategy:
		if _, err := metadata.StrategyByName(o.Strategy); err != nil {
			return err
		}
	default:
		return errors.Newf("unknown op %q", o.Op)
	}
	return nil
}

// Replay runs every op of the workload against the manager and writes one line
// per op to out. Failed allocations are reported and do not stop the replay;
// freeing a name that is not live does.
func (w *Workload) Replay(manager *arena.Manager, out io.Writer) error {
	live := make(map[string]unsafe.Pointer)

	for i, op := range w.Ops {
		var line string
		switch op.Op {
		case OpAlloc:
			if _, exists := live[op.Name]; exists {
				return errors.Newf("op %d: allocation %q is already live", i, op.Name)
			}
			ptr, err := manager.Allocate(op.Bytes)
			if err != nil {
				line = fmt.Sprintf("alloc %s %d: %v", op.Name, op.Bytes, err)
				break
			}
			live[op.Name] = ptr
			line = fmt.Sprintf("alloc %s %d -> word %d", op.Name, op.Bytes, wordOffset(manager, ptr))
		case OpFree:
			ptr, exists := live[op.Name]
			if !exists {
				return errors.Newf("op %d: free of unknown allocation %q", i, op.Name)
			}
			manager.Free(ptr)
			delete(live, op.Name)
			line = fmt.Sprintf("free %s", op.Name)
		case OpStrategy:
			strategy, err := metadata.StrategyByName(op.Strategy)
			if err != nil {
				return errors.Wrapf(err, "op %d", i)
			}
			manager.SetStrategy(strategy)
			line = fmt.Sprintf("strategy %s", op.Strategy)
		default:
			return errors.Newf("op %d: unknown op %q", i, op.Op)
		}

		if _, err := fmt.Fprintln(out, line); err != nil {
			return errors.Wrap(err, "writing replay output")
		}
	}

	return nil
}

func wordOffset(manager *arena.Manager, ptr unsafe.Pointer) int {
	return int(uintptr(ptr)-uintptr(manager.ArenaBase())) / manager.WordSize()
}

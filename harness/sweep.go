package harness

import (
	"os"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/LynnColeArt/guda-wmma/wmma"
)

// DefaultTypes are the element types a sweep runs when none are named.
var DefaultTypes = []string{"f16", "h16", "bf16", "f32"}

// Sweep is a list of launch shapes crossed with layout combinations and
// element types.
type Sweep struct {
	Configs []Config  `yaml:"configs"`
	Layouts []Layouts `yaml:"layouts,omitempty"`
	Types   []string  `yaml:"types,omitempty"`
}

// shape is a thread block and fragment shape with the problem sizes it is
// run at.
type shape struct {
	tx, ty int
	block  uint32
	sizes  []uint32
}

func (s shape) configs() []Config {
	return lo.Map(s.sizes, func(size uint32, _ int) Config {
		return Config{
			TBlockX: s.tx, TBlockY: s.ty,
			BlockM: s.block, BlockN: s.block, BlockK: s.block,
			M: size, N: size, K: size,
		}
	})
}

// DefaultSweep returns the full load/store table: square problems from 16
// to 256 over every thread block that fits them, for 16, 32 and 64 blocks,
// plus the non-square large-K 512x128x8192 problem.
func DefaultSweep() Sweep {
	shapes := []shape{
		{64, 1, 16, []uint32{16, 32, 64, 128, 256}},
		{64, 2, 16, []uint32{32, 64, 128, 256}},
		{64, 4, 16, []uint32{64, 128, 256}},
		{64, 8, 16, []uint32{128, 256}},
		{64, 16, 16, []uint32{256}},
		{128, 1, 16, []uint32{32, 64, 128, 256}},
		{128, 2, 16, []uint32{64, 128, 256}},
		{128, 4, 16, []uint32{128, 256}},
		{128, 8, 16, []uint32{256}},
		{256, 1, 16, []uint32{64, 128, 256}},
		{256, 2, 16, []uint32{128, 256}},
		{256, 4, 16, []uint32{256}},
		{512, 1, 16, []uint32{128, 256}},
		{512, 2, 16, []uint32{256}},

		{64, 1, 32, []uint32{32, 64, 128, 256}},
		{64, 2, 32, []uint32{64, 128, 256}},
		{64, 4, 32, []uint32{128, 256}},
		{64, 8, 32, []uint32{256}},
		{128, 1, 32, []uint32{64, 128, 256}},
		{128, 2, 32, []uint32{128, 256}},
		{128, 4, 32, []uint32{256}},
		{256, 1, 32, []uint32{128, 256}},
		{256, 2, 32, []uint32{256}},
		{512, 1, 32, []uint32{256}},

		{64, 1, 64, []uint32{64, 128, 256}},
		{64, 2, 64, []uint32{128, 256}},
		{64, 4, 64, []uint32{256}},
		{128, 1, 64, []uint32{128, 256}},
		{128, 2, 64, []uint32{256}},
		{256, 1, 64, []uint32{256}},
	}
	configs := lo.FlatMap(shapes, func(s shape, _ int) []Config { return s.configs() })
	configs = append(configs, Config{
		TBlockX: 256, TBlockY: 1,
		BlockM: 64, BlockN: 64, BlockK: 64,
		M: 512, N: 128, K: 8192,
	})
	return Sweep{Configs: configs, Layouts: AllLayouts(), Types: DefaultTypes}
}

// SmokeSweep returns the smallest shapes of each block size, for quick runs.
func SmokeSweep() Sweep {
	shapes := []shape{
		{64, 1, 16, []uint32{16, 32}},
		{128, 2, 16, []uint32{64}},
		{64, 1, 32, []uint32{32}},
		{64, 1, 64, []uint32{64}},
	}
	return Sweep{
		Configs: lo.FlatMap(shapes, func(s shape, _ int) []Config { return s.configs() }),
		Layouts: AllLayouts(),
		Types:   DefaultTypes,
	}
}

// ParseSweep decodes a YAML sweep. Missing layouts and types default to all
// eight layout combinations and DefaultTypes.
func ParseSweep(data []byte) (Sweep, error) {
	var s Sweep
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Sweep{}, errors.Wrap(err, "parsing sweep")
	}
	if len(s.Configs) == 0 {
		return Sweep{}, errors.New("sweep has no configs")
	}
	if len(s.Layouts) == 0 {
		s.Layouts = AllLayouts()
	}
	if len(s.Types) == 0 {
		s.Types = DefaultTypes
	}
	for i, c := range s.Configs {
		if err := c.Validate(); err != nil {
			return Sweep{}, errors.Wrapf(err, "config %d (%s)", i, c)
		}
	}
	for _, typ := range s.Types {
		if !lo.Contains(ElementTypes, typ) {
			return Sweep{}, errors.Errorf("unknown element type %q, want one of %v", typ, ElementTypes)
		}
	}
	return s, nil
}

// LoadSweep reads a YAML sweep file.
func LoadSweep(path string) (Sweep, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Sweep{}, errors.Wrapf(err, "reading sweep %s", path)
	}
	return ParseSweep(data)
}

// WithTypes returns a copy of the sweep restricted to the given element
// types. An empty list keeps the sweep's own.
func (s Sweep) WithTypes(types []string) Sweep {
	if len(types) > 0 {
		s.Types = lo.Uniq(types)
	}
	return s
}

// Expand crosses configs, types and layouts into cases. Cases are grouped
// by type, then config, then layout.
func (s Sweep) Expand(tiling wmma.Tiling) []Case {
	return lo.FlatMap(s.Types, func(typ string, _ int) []Case {
		return lo.FlatMap(s.Configs, func(c Config, _ int) []Case {
			return lo.Map(s.Layouts, func(l Layouts, _ int) Case {
				return Case{Config: c, Layouts: l, Type: typ, Tiling: tiling}
			})
		})
	})
}

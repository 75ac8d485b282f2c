// Package config loads reaction network definitions and run parameters
// from YAML and resolves them into indexed kinet networks. It is the
// "environment provider" side of the system: all name resolution and
// validation of user input happens here, before the numeric core sees it.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/arshan-h/kinsim/internal/kinet"
)

const (
	DefaultDt       = 1e-3
	DefaultDuration = 10.0
	DefaultPolicy   = "clamp"
)

// File is a complete simulation definition: the reaction network plus
// the run parameters for it.
type File struct {
	Name        string     `yaml:"name"`
	Dt          float64    `yaml:"dt"`
	Duration    float64    `yaml:"duration"`
	Policy      string     `yaml:"policy"`
	Checkpoints []float64  `yaml:"checkpoints"`
	Compounds   []Compound `yaml:"compounds"`
	Reactions   []Reaction `yaml:"reactions"`
}

type Compound struct {
	Formula       string  `yaml:"formula"`
	Concentration float64 `yaml:"concentration"`
}

// Term names one compound's part in a reaction side. Stoich defaults
// to 1; Order defaults to the stoichiometric coefficient, the usual
// elementary-reaction assumption.
type Term struct {
	Compound string   `yaml:"compound"`
	Stoich   float64  `yaml:"stoich"`
	Order    *float64 `yaml:"order"`
}

type Reaction struct {
	Forward   float64 `yaml:"forward"`
	Backward  float64 `yaml:"backward"`
	Reactants []Term  `yaml:"reactants"`
	Products  []Term  `yaml:"products"`
}

func Default() *File {
	return &File{
		Dt:       DefaultDt,
		Duration: DefaultDuration,
		Policy:   DefaultPolicy,
	}
}

// Load reads a simulation definition, filling unset run parameters
// with defaults.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f := Default()
	if err := yaml.Unmarshal(data, f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return f, nil
}

func Save(path string, f *File) error {
	data, err := yaml.Marshal(f)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// RunPolicy resolves the policy string; an empty field means the default.
func (f *File) RunPolicy() (kinet.Policy, error) {
	s := f.Policy
	if s == "" {
		s = DefaultPolicy
	}
	return kinet.ParsePolicy(s)
}

// Network resolves compound formulas to indices and produces a network
// the integrator will accept.
func (f *File) Network() (*kinet.Network, error) {
	if len(f.Compounds) == 0 {
		return nil, fmt.Errorf("no compounds defined")
	}

	index := make(map[string]int, len(f.Compounds))
	net := &kinet.Network{
		Labels:         make([]string, len(f.Compounds)),
		Concentrations: make(kinet.Concentrations, len(f.Compounds)),
	}
	for i, c := range f.Compounds {
		if c.Formula == "" {
			return nil, fmt.Errorf("compound %d has no formula", i)
		}
		if _, dup := index[c.Formula]; dup {
			return nil, fmt.Errorf("duplicate compound %q", c.Formula)
		}
		if c.Concentration < 0 {
			return nil, fmt.Errorf("compound %q has negative concentration %g", c.Formula, c.Concentration)
		}
		index[c.Formula] = i
		net.Labels[i] = c.Formula
		net.Concentrations[i] = c.Concentration
	}

	net.Reactions = make([]kinet.Reaction, len(f.Reactions))
	for i, r := range f.Reactions {
		if r.Forward < 0 || r.Backward < 0 {
			return nil, fmt.Errorf("reaction %d has a negative rate constant", i)
		}
		reactants, err := resolveSide(r.Reactants, index)
		if err != nil {
			return nil, fmt.Errorf("reaction %d reactants: %w", i, err)
		}
		products, err := resolveSide(r.Products, index)
		if err != nil {
			return nil, fmt.Errorf("reaction %d products: %w", i, err)
		}
		net.Reactions[i] = kinet.Reaction{
			KForward:  r.Forward,
			KBackward: r.Backward,
			Reactants: reactants,
			Products:  products,
		}
	}
	return net, nil
}

func resolveSide(terms []Term, index map[string]int) (kinet.Side, error) {
	side := kinet.Side{
		Compounds: make([]int, len(terms)),
		Stoich:    make([]float64, len(terms)),
		Orders:    make([]float64, len(terms)),
	}
	for i, term := range terms {
		idx, ok := index[term.Compound]
		if !ok {
			return kinet.Side{}, fmt.Errorf("unknown compound %q", term.Compound)
		}
		stoich := term.Stoich
		if stoich == 0 {
			stoich = 1
		}
		order := stoich
		if term.Order != nil {
			order = *term.Order
		}
		side.Compounds[i] = idx
		side.Stoich[i] = stoich
		side.Orders[i] = order
	}
	return side, nil
}

package config

import "sort"

// Presets are self-contained example networks runnable without a
// definition file.
var Presets = map[string]*File{
	"equilibrium": {
		Name: "equilibrium", Dt: 1e-3, Duration: 5.0, Policy: "clamp",
		Checkpoints: []float64{1.0, 2.5},
		Compounds: []Compound{
			{Formula: "A", Concentration: 1.0},
			{Formula: "B", Concentration: 0.0},
		},
		Reactions: []Reaction{
			{
				Forward: 2.0, Backward: 1.0,
				Reactants: []Term{{Compound: "A"}},
				Products:  []Term{{Compound: "B"}},
			},
		},
	},
	"decay-chain": {
		Name: "decay-chain", Dt: 1e-3, Duration: 10.0, Policy: "clamp",
		Checkpoints: []float64{2.0, 5.0},
		Compounds: []Compound{
			{Formula: "A", Concentration: 1.0},
			{Formula: "B", Concentration: 0.0},
			{Formula: "C", Concentration: 0.0},
		},
		Reactions: []Reaction{
			{
				Forward:   1.5,
				Reactants: []Term{{Compound: "A"}},
				Products:  []Term{{Compound: "B"}},
			},
			{
				Forward:   0.5,
				Reactants: []Term{{Compound: "B"}},
				Products:  []Term{{Compound: "C"}},
			},
		},
	},
	"dimerization": {
		Name: "dimerization", Dt: 1e-4, Duration: 5.0, Policy: "clamp",
		Checkpoints: []float64{0.5, 1.0, 2.5},
		Compounds: []Compound{
			{Formula: "M", Concentration: 2.0},
			{Formula: "M2", Concentration: 0.0},
		},
		Reactions: []Reaction{
			{
				Forward: 1.0, Backward: 0.2,
				Reactants: []Term{{Compound: "M", Stoich: 2}},
				Products:  []Term{{Compound: "M2"}},
			},
		},
	},
	"autocatalysis": {
		Name: "autocatalysis", Dt: 1e-4, Duration: 8.0, Policy: "clamp",
		Checkpoints: []float64{2.0, 4.0, 6.0},
		Compounds: []Compound{
			{Formula: "A", Concentration: 1.0},
			{Formula: "X", Concentration: 0.01},
		},
		Reactions: []Reaction{
			{
				Forward: 3.0,
				Reactants: []Term{
					{Compound: "A"},
					{Compound: "X"},
				},
				Products: []Term{{Compound: "X", Stoich: 2}},
			},
		},
	},
}

func GetPreset(name string) *File {
	return Presets[name]
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

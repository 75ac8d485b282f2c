package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arshan-h/kinsim/internal/kinet"
)

const sampleYAML = `
name: sample
dt: 0.01
duration: 2.0
policy: freeze
checkpoints: [0.5, 1.5]
compounds:
  - formula: "H2"
    concentration: 1.0
  - formula: "O2"
    concentration: 0.5
  - formula: "H2O"
reactions:
  - forward: 4.0
    backward: 0.1
    reactants:
      - compound: "H2"
        stoich: 2
      - compound: "O2"
        order: 0.5
    products:
      - compound: "H2O"
        stoich: 2
`

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "net.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	f, err := Load(writeFile(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "sample", f.Name)
	assert.Equal(t, 0.01, f.Dt)
	assert.Equal(t, 2.0, f.Duration)
	assert.Equal(t, []float64{0.5, 1.5}, f.Checkpoints)

	policy, err := f.RunPolicy()
	require.NoError(t, err)
	assert.Equal(t, kinet.Freeze, policy)
}

func TestLoad_Defaults(t *testing.T) {
	f, err := Load(writeFile(t, "compounds:\n  - formula: A\n    concentration: 1.0\n"))
	require.NoError(t, err)

	assert.Equal(t, DefaultDt, f.Dt)
	assert.Equal(t, DefaultDuration, f.Duration)

	policy, err := f.RunPolicy()
	require.NoError(t, err)
	assert.Equal(t, kinet.ClampToZero, policy)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestNetwork_Resolution(t *testing.T) {
	f, err := Load(writeFile(t, sampleYAML))
	require.NoError(t, err)

	net, err := f.Network()
	require.NoError(t, err)

	assert.Equal(t, []string{"H2", "O2", "H2O"}, net.Labels)
	assert.Equal(t, kinet.Concentrations{1.0, 0.5, 0.0}, net.Concentrations)
	require.Len(t, net.Reactions, 1)

	rxn := net.Reactions[0]
	assert.Equal(t, 4.0, rxn.KForward)
	assert.Equal(t, 0.1, rxn.KBackward)
	assert.Equal(t, []int{0, 1}, rxn.Reactants.Compounds)
	// H2 stoich 2, order defaults to stoich; O2 stoich defaults to 1
	// with an explicit fractional order.
	assert.Equal(t, []float64{2, 1}, rxn.Reactants.Stoich)
	assert.Equal(t, []float64{2, 0.5}, rxn.Reactants.Orders)
	assert.Equal(t, []int{2}, rxn.Products.Compounds)
	assert.Equal(t, []float64{2}, rxn.Products.Stoich)

	// The resolved network must pass the integrator's own checks.
	g, err := kinet.New(f.Dt)
	require.NoError(t, err)
	require.NoError(t, g.Bind(net))
}

func TestNetwork_Errors(t *testing.T) {
	tests := []struct {
		name string
		file *File
	}{
		{"no compounds", &File{}},
		{"empty formula", &File{Compounds: []Compound{{Concentration: 1}}}},
		{
			"duplicate compound",
			&File{Compounds: []Compound{{Formula: "A"}, {Formula: "A"}}},
		},
		{
			"negative concentration",
			&File{Compounds: []Compound{{Formula: "A", Concentration: -1}}},
		},
		{
			"unknown compound in reaction",
			&File{
				Compounds: []Compound{{Formula: "A", Concentration: 1}},
				Reactions: []Reaction{{Forward: 1, Reactants: []Term{{Compound: "Z"}}}},
			},
		},
		{
			"negative rate constant",
			&File{
				Compounds: []Compound{{Formula: "A", Concentration: 1}},
				Reactions: []Reaction{{Forward: -1}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.file.Network()
			assert.Error(t, err)
		})
	}
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	orig := GetPreset("equilibrium")
	require.NotNil(t, orig)
	require.NoError(t, Save(path, orig))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, orig.Name, loaded.Name)
	assert.Equal(t, orig.Compounds, loaded.Compounds)
	assert.Equal(t, orig.Reactions, loaded.Reactions)
}

func TestPresets_AllResolve(t *testing.T) {
	names := ListPresets()
	require.NotEmpty(t, names)

	for _, name := range names {
		f := GetPreset(name)
		require.NotNil(t, f, name)

		net, err := f.Network()
		require.NoError(t, err, name)

		policy, err := f.RunPolicy()
		require.NoError(t, err, name)

		g, err := kinet.New(f.Dt)
		require.NoError(t, err, name)
		require.NoError(t, g.Bind(net), name)

		_, err = g.Run(f.Dt*10, f.Checkpoints, policy)
		require.NoError(t, err, name)
	}
}

func TestGetPreset_Unknown(t *testing.T) {
	assert.Nil(t, GetPreset("nope"))
}

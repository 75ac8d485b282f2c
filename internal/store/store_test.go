package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arshan-h/kinsim/internal/kinet"
)

func sampleSeries(stopped bool) *kinet.Series {
	return &kinet.Series{
		Labels: []string{"A", "B"},
		Checkpoints: []kinet.Snapshot{
			{Time: 0.25, Conc: kinet.Concentrations{0.8, 0.2}},
			{Time: 0.75, Conc: kinet.Concentrations{0.5, 0.5}},
		},
		Final:   kinet.Snapshot{Time: 1.0, Conc: kinet.Concentrations{0.4, 0.6}},
		Stopped: stopped,
	}
}

func TestSave_RoundTrip(t *testing.T) {
	s := New(t.TempDir())
	require.NoError(t, s.Init())

	runID, err := s.Save("demo", 0.01, kinet.ClampToZero, sampleSeries(false))
	require.NoError(t, err)
	assert.Contains(t, runID, "demo_")

	meta, err := s.Load(runID)
	require.NoError(t, err)
	assert.Equal(t, "demo", meta.Network)
	assert.Equal(t, 0.01, meta.Dt)
	assert.Equal(t, 1.0, meta.Duration)
	assert.Equal(t, "clamp", meta.Policy)
	assert.Equal(t, []string{"A", "B"}, meta.Compounds)
	assert.False(t, meta.Stopped)

	series, err := s.LoadSeries(runID)
	require.NoError(t, err)
	assert.Equal(t, sampleSeries(false), series)
}

func TestSave_StoppedRunEndTag(t *testing.T) {
	s := New(t.TempDir())
	require.NoError(t, s.Init())

	runID, err := s.Save("live", 0.01, kinet.Freeze, sampleSeries(true))
	require.NoError(t, err)

	meta, err := s.Load(runID)
	require.NoError(t, err)
	assert.True(t, meta.Stopped)

	series, err := s.LoadSeries(runID)
	require.NoError(t, err)
	assert.True(t, series.Stopped)
	assert.Equal(t, kinet.Concentrations{0.4, 0.6}, series.Final.Conc)
	assert.Len(t, series.Checkpoints, 2)
}

func TestList(t *testing.T) {
	s := New(t.TempDir())
	require.NoError(t, s.Init())

	runs, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, runs)

	_, err = s.Save("one", 0.01, kinet.ClampToZero, sampleSeries(false))
	require.NoError(t, err)
	_, err = s.Save("two", 0.02, kinet.AllowNegative, sampleSeries(false))
	require.NoError(t, err)

	runs, err = s.List()
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestList_MissingBaseDir(t *testing.T) {
	s := New(t.TempDir() + "/nope")
	runs, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestLoad_UnknownRun(t *testing.T) {
	s := New(t.TempDir())
	_, err := s.Load("missing")
	assert.Error(t, err)
	_, err = s.LoadSeries("missing")
	assert.Error(t, err)
}

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/arshan-h/kinsim/internal/config"
	"github.com/arshan-h/kinsim/internal/kinet"
	"github.com/arshan-h/kinsim/internal/store"
	"github.com/arshan-h/kinsim/internal/viz"
)

var (
	dataDir     string
	dt          float64
	duration    float64
	policyName  string
	checkpoints []float64
	preset      string
	frameRate   int
	noSave      bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "kinsim",
		Short: "reaction kinetics simulator",
		Long: "kinsim integrates compound concentrations over time for networks\n" +
			"of reversible chemical reactions defined in YAML.",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".kinsim", "data directory")

	runCmd := &cobra.Command{
		Use:   "run [network.yaml]",
		Short: "run a bounded simulation",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addRunFlags(runCmd)

	liveCmd := &cobra.Command{
		Use:   "live [network.yaml]",
		Short: "run with a live terminal view",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addRunFlags(liveCmd)
	liveCmd.Flags().IntVar(&frameRate, "fps", 30, "ticks per second")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in networks",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range config.ListPresets() {
				fmt.Println(name)
			}
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "chart a stored run's checkpoints",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "print run metadata as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	rootCmd.AddCommand(runCmd, liveCmd, presetsCmd, listCmd, plotCmd, exportCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "integration step size")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "simulated duration")
	cmd.Flags().StringVar(&policyName, "policy", "", "below-zero policy (clamp|freeze|negative)")
	cmd.Flags().Float64SliceVar(&checkpoints, "checkpoint", nil, "checkpoint time (repeatable)")
	cmd.Flags().StringVar(&preset, "preset", "", "use a built-in network")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "do not persist the run")
}

// loadDefinition resolves the network source (file argument or preset)
// and folds any explicitly set flags over the file's run parameters.
func loadDefinition(cmd *cobra.Command, args []string) (*config.File, error) {
	var f *config.File
	switch {
	case preset != "":
		f = config.GetPreset(preset)
		if f == nil {
			return nil, fmt.Errorf("unknown preset %q (see 'kinsim presets')", preset)
		}
	case len(args) == 1:
		var err error
		f, err = config.Load(args[0])
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("provide a network file or --preset")
	}

	if cmd.Flags().Changed("dt") {
		f.Dt = dt
	}
	if cmd.Flags().Changed("time") {
		f.Duration = duration
	}
	if cmd.Flags().Changed("policy") {
		f.Policy = policyName
	}
	if cmd.Flags().Changed("checkpoint") {
		f.Checkpoints = checkpoints
	}
	return f, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	f, err := loadDefinition(cmd, args)
	if err != nil {
		return err
	}
	net, err := f.Network()
	if err != nil {
		return err
	}
	policy, err := f.RunPolicy()
	if err != nil {
		return err
	}

	g, err := kinet.New(f.Dt)
	if err != nil {
		return err
	}
	if err := g.Bind(net); err != nil {
		return err
	}
	series, err := g.Run(f.Duration, f.Checkpoints, policy)
	if err != nil {
		return err
	}

	printSeries(series)
	return saveSeries(f, policy, series)
}

func runLive(cmd *cobra.Command, args []string) error {
	f, err := loadDefinition(cmd, args)
	if err != nil {
		return err
	}
	net, err := f.Network()
	if err != nil {
		return err
	}
	policy, err := f.RunPolicy()
	if err != nil {
		return err
	}

	series, err := viz.Run(runName(f), net, f.Dt, f.Checkpoints, policy, frameRate)
	if err != nil {
		return err
	}

	printSeries(series)
	return saveSeries(f, policy, series)
}

func runName(f *config.File) string {
	if f.Name != "" {
		return f.Name
	}
	return "network"
}

func printSeries(series *kinet.Series) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "TIME\t%s\n", strings.Join(series.Labels, "\t"))
	for _, cp := range series.Checkpoints {
		fmt.Fprintf(w, "%g\t%s\n", cp.Time, concRow(cp.Conc))
	}
	tag := fmt.Sprintf("%g", series.Final.Time)
	if series.Stopped {
		tag = "end"
	}
	fmt.Fprintf(w, "%s\t%s\n", tag, concRow(series.Final.Conc))
	w.Flush()
}

func concRow(conc kinet.Concentrations) string {
	parts := make([]string, len(conc))
	for i, v := range conc {
		parts[i] = fmt.Sprintf("%.6g", v)
	}
	return strings.Join(parts, "\t")
}

func saveSeries(f *config.File, policy kinet.Policy, series *kinet.Series) error {
	if noSave {
		return nil
	}
	s := store.New(dataDir)
	if err := s.Init(); err != nil {
		return err
	}
	runID, err := s.Save(runName(f), f.Dt, policy, series)
	if err != nil {
		return err
	}
	fmt.Printf("\nsaved run %s\n", runID)
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := store.New(dataDir).List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs stored")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNETWORK\tPOLICY\tDT\tDURATION\tWHEN")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%g\t%g\t%s\n",
			r.ID, r.Network, r.Policy, r.Dt, r.Duration, r.Timestamp.Format("2006-01-02 15:04:05"))
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	series, err := store.New(dataDir).LoadSeries(args[0])
	if err != nil {
		return err
	}

	snaps := append(append([]kinet.Snapshot{}, series.Checkpoints...), series.Final)
	if len(snaps) < 2 {
		fmt.Println("run has no checkpoints to chart; final state:")
		printSeries(series)
		return nil
	}

	data := make([][]float64, len(series.Labels))
	for j := range series.Labels {
		data[j] = make([]float64, len(snaps))
		for i, snap := range snaps {
			data[j][i] = snap.Conc[j]
		}
	}

	chart := asciigraph.PlotMany(data,
		asciigraph.Height(16),
		asciigraph.Width(72),
		asciigraph.SeriesLegends(series.Labels...),
		asciigraph.Caption("concentration at checkpoints"),
	)
	fmt.Println(chart)
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	meta, err := store.New(dataDir).Load(args[0])
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

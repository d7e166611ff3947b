package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/stranger0g/NoteBase/internal/particles"
	"github.com/stranger0g/NoteBase/internal/report"
	"github.com/stranger0g/NoteBase/internal/simulation"
)

type options struct {
	regime       string
	ticks        int
	count        int
	compare      bool
	temperature  float64
	seed         uint64
	snapshotFile string
	saveSnapshot string
	xlsxFile     string
	plain        bool
}

func main() {
	var opts options
	flag.StringVar(&opts.regime, "regime", "diffusion", "regime: solid, liquid, gas, diffusion")
	flag.IntVar(&opts.ticks, "ticks", 600, "number of ticks to run")
	flag.IntVar(&opts.count, "count", -1, "particle count (default: regime default)")
	flag.BoolVar(&opts.compare, "compare", false, "diffusion only: mix light and heavy particles")
	flag.Float64Var(&opts.temperature, "temperature", 2, "temperature slider value (1-10)")
	flag.Uint64Var(&opts.seed, "seed", 1, "random seed")
	flag.StringVar(&opts.snapshotFile, "from-snapshot", "", "start from a saved snapshot file (optional)")
	flag.StringVar(&opts.saveSnapshot, "save-snapshot", "", "write the final state to this snapshot file (optional)")
	flag.StringVar(&opts.xlsxFile, "xlsx", "", "export the final frame to this workbook (optional)")
	flag.BoolVar(&opts.plain, "plain", false, "disable colours")
	flag.Parse()

	if opts.ticks < 0 {
		fmt.Fprintf(os.Stderr, "error: --ticks must not be negative\n")
		flag.Usage()
		os.Exit(1)
	}

	sim, err := buildSimulation(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	history := run(sim, opts.ticks)
	fmt.Println(renderSummary(sim.Frame(), sim.Stats(), history, opts.plain))

	if opts.saveSnapshot != "" {
		if err := writeSnapshot(sim, opts.saveSnapshot); err != nil {
			fmt.Fprintf(os.Stderr, "error saving snapshot: %v\n", err)
			os.Exit(1)
		}
	}
	if opts.xlsxFile != "" {
		if err := writeWorkbook(sim, opts.xlsxFile); err != nil {
			fmt.Fprintf(os.Stderr, "error writing workbook: %v\n", err)
			os.Exit(1)
		}
	}
}

func buildSimulation(opts options) (*simulation.Simulation, error) {
	engine := particles.NewEngine(particles.NewRandom(opts.seed))

	if opts.snapshotFile != "" {
		snapshot, err := simulation.LoadSnapshot(opts.snapshotFile)
		if err != nil {
			return nil, fmt.Errorf("loading snapshot: %w", err)
		}
		id := snapshot.SimulationID
		if id == "" {
			id = "cli"
		}
		sim := simulation.New(id, engine, simulation.Config{Regime: snapshot.Set.Regime, Count: new(int)})
		if err := sim.Restore(snapshot); err != nil {
			return nil, fmt.Errorf("restoring snapshot: %w", err)
		}
		return sim, nil
	}

	regime, err := particles.ParseRegime(opts.regime)
	if err != nil {
		return nil, err
	}
	cfg := simulation.Config{Regime: regime, Compare: opts.compare, Temperature: &opts.temperature}
	if opts.count >= 0 {
		cfg.Count = &opts.count
	}
	if err := simulation.ValidateConfig(cfg); err != nil {
		return nil, err
	}

	sim := simulation.New("cli", engine, cfg)
	if regime == particles.Diffusion {
		if err := sim.StartDiffusion(); err != nil {
			return nil, err
		}
	}
	return sim, nil
}

// run steps the simulation and records the right-hand fraction of each
// population after every tick, keyed by mass factor.
func run(sim *simulation.Simulation, ticks int) map[float64][]float64 {
	history := make(map[float64][]float64)
	for i := 0; i < ticks; i++ {
		sim.Step()
		for _, pop := range sim.Stats().Populations {
			history[pop.MassFactor] = append(history[pop.MassFactor], pop.RightFraction)
		}
	}
	return history
}

func writeSnapshot(sim *simulation.Simulation, path string) error {
	data, err := simulation.EncodeSnapshotJSON(sim.Snapshot())
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func writeWorkbook(sim *simulation.Simulation, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := report.WriteFrameWorkbook(f, sim.Frame()); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

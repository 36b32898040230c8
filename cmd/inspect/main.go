package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"image/color"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/Noofbiz/ssmdata/datasets"
	"github.com/Noofbiz/ssmdata/prefetch"

	"github.com/dustin/go-humanize"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"k8s.io/klog/v2"
)

// passStats describes one drained pass of an iterator.
type passStats struct {
	batches  int
	samples  int
	minBatch int
	maxBatch int
	elapsed  time.Duration
}

func main() {
	klog.InitFlags(nil)

	configPath := flag.String("config", "", "path to JSON config file (optional). Flags below override it when set")
	dataRoot := flag.String("data-root", "data", "directory holding one sub-directory per dataset")
	dataset := flag.String("dataset", "", "dataset name (archive directory under -data-root)")
	datasetPercent := flag.Float64("dataset-percent", 1.0, "fraction of samples kept from each archive, in (0, 1]")
	batchSize := flag.Int("batch-size", 32, "batch size")
	numSteps := flag.Int("num-steps", 1000, "number of batches per training pass")
	seed := flag.Int64("seed", 0, "random seed (0 = time based)")
	workers := flag.Int("workers", 0, "number of batches built ahead of the consumer (0 = NumCPU)")
	outDir := flag.String("out", "plots", "output directory for generated plots (empty disables plotting)")
	trajectories := flag.Int("trajectories", 8, "number of state trajectories to plot")
	printEffectiveConfig := flag.Bool("print-effective-config", false, "print the effective (JSON+CLI merged) configuration and exit")
	flag.Parse()
	defer klog.Flush()

	cfg := datasets.DefaultConfig()
	if *configPath != "" {
		var err error
		cfg, err = datasets.LoadConfig(*configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
		log.Printf("Loaded config from %s", *configPath)
	}

	// Flags only win over the JSON file when given explicitly.
	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if *configPath == "" || set["data-root"] {
		cfg.DataRoot = *dataRoot
	}
	if *configPath == "" || set["dataset"] {
		cfg.Dataset = *dataset
	}
	if *configPath == "" || set["dataset-percent"] {
		cfg.DatasetPercent = *datasetPercent
	}
	if *configPath == "" || set["batch-size"] {
		cfg.BatchSize = *batchSize
	}
	if *configPath == "" || set["num-steps"] {
		cfg.NumSteps = *numSteps
	}
	if *configPath == "" || set["seed"] {
		cfg.Seed = *seed
	}

	if *printEffectiveConfig {
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			log.Fatalf("failed to marshal config: %v", err)
		}
		fmt.Println(string(data))
		return
	}

	loader, err := datasets.NewLoader(cfg)
	if err != nil {
		log.Fatalf("failed to create loader: %v", err)
	}

	accessors := []struct {
		name  string
		split datasets.Split
		load  func() (*datasets.BatchIterator, error)
	}{
		{"train", datasets.SplitTrain, loader.TrainDataloader},
		{"evaluate-train", datasets.SplitTrain, loader.EvaluateTrainDataloader},
		{"val", datasets.SplitVal, loader.ValDataloader},
		{"test", datasets.SplitTest, loader.TestDataloader},
	}

	var plotted bool
	for _, acc := range accessors {
		path := cfg.ArchivePath(acc.split)
		start := time.Now()
		it, err := acc.load()
		if errors.Is(err, datasets.ErrArchiveNotFound) {
			log.Printf("warning: [%s] skipped: %v", acc.name, err)
			continue
		}
		if err != nil {
			log.Fatalf("[%s] failed to load: %v", acc.name, err)
		}
		loadTime := time.Since(start)

		var size string
		if fi, err := os.Stat(path); err == nil {
			size = humanize.Bytes(uint64(fi.Size()))
		}
		log.Printf("[%s] %s (%s) loaded in %v: %s samples, %s iterator, %s batches of %d",
			acc.name, path, size, loadTime.Round(time.Millisecond),
			humanize.Comma(int64(it.View().Len())), it.Policy(),
			humanize.Comma(int64(it.NumBatches())), it.BatchSize())

		stats, err := drainPass(it, *workers)
		if err != nil {
			log.Fatalf("[%s] failed to iterate: %v", acc.name, err)
		}
		log.Printf("[%s] pass: %s batches, %s samples, batch sizes %d..%d, %v",
			acc.name, humanize.Comma(int64(stats.batches)), humanize.Comma(int64(stats.samples)),
			stats.minBatch, stats.maxBatch, stats.elapsed.Round(time.Millisecond))

		summary := it.View().Summarize()
		log.Printf("[%s] image mean=%.4f std=%.4f, state mean=%v std=%v, control from archive=%t (all zero=%t)",
			acc.name, summary.ImageMean, summary.ImageStd, summary.StateMean, summary.StateStd,
			it.View().HasControl(), summary.ControlZero)

		// Plot the first split that is not resampled.
		if *outDir != "" && !plotted && it.Policy() == datasets.Bounded {
			if err := plotLabels(*outDir, acc.name, summary); err != nil {
				log.Printf("warning: failed to plot labels: %v", err)
			}
			if err := plotStates(*outDir, acc.name, it.View(), *trajectories); err != nil {
				log.Printf("warning: failed to plot states: %v", err)
			}
			plotted = true
		}
	}
}

// drainPass builds every batch of one pass through the prefetcher.
func drainPass(it *datasets.BatchIterator, workers int) (passStats, error) {
	st := passStats{minBatch: -1}
	start := time.Now()
	err := prefetch.Each(context.Background(), it, workers, func(i int, b *datasets.Batch) error {
		st.batches++
		st.samples += b.Size()
		if st.minBatch < 0 || b.Size() < st.minBatch {
			st.minBatch = b.Size()
		}
		if b.Size() > st.maxBatch {
			st.maxBatch = b.Size()
		}
		return nil
	})
	st.elapsed = time.Since(start)
	if st.minBatch < 0 {
		st.minBatch = 0
	}
	return st, err
}

// plotLabels writes a bar chart of the label histogram.
func plotLabels(outDir, name string, s datasets.Summary) error {
	labels := make([]int, 0, len(s.LabelCounts))
	for l := range s.LabelCounts {
		labels = append(labels, int(l))
	}
	sort.Ints(labels)
	values := make(plotter.Values, len(labels))
	names := make([]string, len(labels))
	for i, l := range labels {
		values[i] = float64(s.LabelCounts[int16(l)])
		names[i] = fmt.Sprint(l)
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Label counts (%s, %d samples)", name, s.Samples)
	p.Y.Label.Text = "samples"

	bars, err := plotter.NewBarChart(values, vg.Points(12))
	if err != nil {
		return err
	}
	bars.Color = color.RGBA{R: 20, G: 80, B: 200, A: 220}
	p.Add(bars)
	p.NominalX(names...)

	if err := ensureDir(outDir); err != nil {
		return err
	}
	return p.Save(8*vg.Inch, 5*vg.Inch, filepath.Join(outDir, name+"_labels.png"))
}

// plotStates draws the 2-channel state trajectory of the first k samples.
func plotStates(outDir, name string, v *datasets.View, k int) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("State trajectories (%s)", name)
	p.X.Label.Text = "state[0]"
	p.Y.Label.Text = "state[1]"

	state := v.State()
	if len(state.Shape) != 3 || state.Shape[2] < 2 {
		return fmt.Errorf("state has shape %v, need 2 channels", state.Shape)
	}
	for i := range min(k, v.Len()) {
		row, err := state.Row(i)
		if err != nil {
			return err
		}
		xys := make(plotter.XYs, 0, state.Shape[1])
		for t := 0; t+1 < len(row); t += state.Shape[2] {
			xys = append(xys, plotter.XY{X: float64(row[t]), Y: float64(row[t+1])})
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return err
		}
		// cycle colors a bit
		line.Color = color.RGBA{R: 40, G: 120, B: 40, A: uint8(100 + (i%3)*50)}
		line.Width = vg.Points(0.8)
		p.Add(line)
		if i == 0 {
			p.Legend.Add("trajectories (sample)", line)
		}
	}
	p.Add(plotter.NewGrid())

	if err := ensureDir(outDir); err != nil {
		return err
	}
	return p.Save(8*vg.Inch, 6*vg.Inch, filepath.Join(outDir, name+"_states.png"))
}

func ensureDir(path string) error {
	if path == "" {
		return nil
	}
	return os.MkdirAll(path, 0755)
}

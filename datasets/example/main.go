package main

// Example command that demonstrates loading the validation split of a
// dataset and converting its first batch into gomlx tensors.
//
// Usage:
//   go run ./datasets/example -data-root data -dataset pendulum
//
// Note: this example expects <data-root>/<dataset>/val.npz to exist. If it
// does not, the splits that do exist are listed and the example exits.

import (
	"flag"
	"fmt"
	"log"
	"path/filepath"

	"github.com/Noofbiz/ssmdata/datasets"
)

func main() {
	dataRoot := flag.String("data-root", "data", "directory holding one sub-directory per dataset")
	dataset := flag.String("dataset", "pendulum", "dataset name")
	percent := flag.Float64("dataset-percent", 1.0, "fraction of samples kept")
	batchSize := flag.Int("batch-size", 8, "batch size")
	flag.Parse()

	cfg := datasets.DefaultConfig()
	cfg.DataRoot = *dataRoot
	cfg.Dataset = *dataset
	cfg.DatasetPercent = *percent
	cfg.BatchSize = *batchSize

	loader, err := datasets.NewLoader(cfg)
	if err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	it, err := loader.ValDataloader()
	if err != nil {
		splits, serr := datasets.FindSplits(filepath.Join(cfg.DataRoot, cfg.Dataset))
		if serr == nil {
			fmt.Printf("Available splits: %v\n", splits)
		}
		log.Fatalf("failed to load validation split: %v", err)
	}
	fmt.Printf("Loaded %s: %d samples in %d batches\n", it.Name(), it.View().Len(), it.NumBatches())

	rec, err := it.View().Record(0)
	if err == nil {
		fmt.Printf("First sample: label=%d, %d image values, state[0:2]=%v, control[0]=%v\n",
			rec.Label, len(rec.Image), rec.State[:min(2, len(rec.State))], rec.Control[0])
	}

	b, err := it.Next()
	if err != nil {
		log.Fatalf("failed to read first batch: %v", err)
	}
	inputs, labels, err := b.ToGomlxTensors()
	if err != nil {
		log.Fatalf("failed to convert batch to gomlx tensors: %v", err)
	}

	names := []string{"index", "image", "state", "control"}
	for i, in := range inputs {
		fmt.Printf("  %-8s %v\n", names[i], in.Shape())
	}
	fmt.Printf("  %-8s %v\n", "label", labels[0].Shape())
	fmt.Println("\nExample completed successfully!")
}

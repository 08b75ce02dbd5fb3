package main

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/born-ml/quanv/internal/autodiff"
	"github.com/born-ml/quanv/internal/backend/cpu"
	"github.com/born-ml/quanv/internal/envconfig"
	"github.com/born-ml/quanv/internal/hybrid"
)

func newTrainCmd() *cobra.Command {
	trainCmd := &cobra.Command{
		Use:   "train",
		Short: "Train a hybrid Quanv2d classifier on synthetic stripe images",
		Args:  cobra.NoArgs,
		RunE:  TrainHandler,
	}

	trainCmd.Flags().Int("samples", 32, "Number of synthetic images")
	trainCmd.Flags().Int("epochs", 10, "Number of training epochs")
	trainCmd.Flags().Int("batch", 8, "Batch size")
	trainCmd.Flags().Float32("lr", 0.05, "Adam learning rate")
	trainCmd.Flags().Int("qubits", 2, "Number of qubits")
	trainCmd.Flags().Int("weights", 4, "Number of trainable circuit weights")
	trainCmd.Flags().Int("shots", int(envconfig.Shots()), "Measurement shots per circuit (0 for exact probabilities)")
	trainCmd.Flags().Uint64("seed", envconfig.Seed(), "Seed for data, weights and shot sampling")

	return trainCmd
}

// TrainHandler runs the hybrid training loop and prints a row per epoch.
func TrainHandler(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	cfg := hybrid.Config{Workers: envconfig.NumParallel()}
	cfg.Samples, _ = flags.GetInt("samples")
	cfg.Epochs, _ = flags.GetInt("epochs")
	cfg.BatchSize, _ = flags.GetInt("batch")
	cfg.LR, _ = flags.GetFloat32("lr")
	cfg.Qubits, _ = flags.GetInt("qubits")
	cfg.Weights, _ = flags.GetInt("weights")
	cfg.Shots, _ = flags.GetInt("shots")
	cfg.Seed, _ = flags.GetUint64("seed")

	if cfg.Samples <= 0 || cfg.Epochs <= 0 || cfg.BatchSize <= 0 || cfg.Shots < 0 {
		return fmt.Errorf("samples, epochs and batch must be positive")
	}

	backend := autodiff.New(cpu.New())
	w := cmd.OutOrStdout()

	var rows [][]string
	model, history, err := hybrid.Train(cmd.Context(), cfg, backend, func(s hybrid.EpochStats) {
		slog.Debug("epoch finished", "epoch", s.Epoch, "loss", s.Loss, "accuracy", s.Accuracy, "duration", s.Duration)
		rows = append(rows, []string{
			strconv.Itoa(s.Epoch),
			strconv.FormatFloat(float64(s.Loss), 'f', 4, 32),
			strconv.FormatFloat(float64(s.Accuracy)*100, 'f', 1, 64) + "%",
			s.Duration.String(),
		})
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(w, model)
	table := newTable(w, "EPOCH", "LOSS", "ACCURACY", "DURATION")
	table.AppendBulk(rows)
	table.Render()

	last := history[len(history)-1]
	fmt.Fprintf(w, "final loss: %.4f, accuracy: %.1f%%\n", last.Loss, last.Accuracy*100)
	return nil
}

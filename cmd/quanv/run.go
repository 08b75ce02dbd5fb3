package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	exprand "golang.org/x/exp/rand"

	"github.com/born-ml/quanv/internal/backend/cpu"
	"github.com/born-ml/quanv/internal/envconfig"
	"github.com/born-ml/quanv/internal/nn"
	"github.com/born-ml/quanv/internal/quantum"
	"github.com/born-ml/quanv/internal/tensor"
)

func newRunCmd() *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run a Quanv2d layer on a random image batch",
		Args:  cobra.NoArgs,
		RunE:  RunHandler,
	}

	runCmd.Flags().Int("in-channels", 3, "Input channels")
	runCmd.Flags().Int("out-channels", 2, "Output channels")
	runCmd.Flags().Int("qubits", 3, "Number of qubits")
	runCmd.Flags().Int("weights", 5, "Number of trainable circuit weights")
	runCmd.Flags().Int("kernel-size", 3, "Convolution kernel size")
	runCmd.Flags().Int("stride", 1, "Convolution stride")
	runCmd.Flags().Int("batch", 5, "Batch size of the random input")
	runCmd.Flags().Int("size", 8, "Height and width of the random input")
	runCmd.Flags().Int("shots", int(envconfig.Shots()), "Measurement shots per circuit (0 for exact probabilities)")
	runCmd.Flags().Uint64("seed", envconfig.Seed(), "Seed for the input, weights and shot sampling")

	return runCmd
}

// RunHandler builds the layer, feeds it uniform random images and prints
// the elapsed time, the layer, the output shape and the first sample.
func RunHandler(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	inChannels, _ := flags.GetInt("in-channels")
	outChannels, _ := flags.GetInt("out-channels")
	qubits, _ := flags.GetInt("qubits")
	weights, _ := flags.GetInt("weights")
	kernelSize, _ := flags.GetInt("kernel-size")
	stride, _ := flags.GetInt("stride")
	batch, _ := flags.GetInt("batch")
	size, _ := flags.GetInt("size")
	shots, _ := flags.GetInt("shots")
	seed, _ := flags.GetUint64("seed")

	if batch < 0 || size < 0 || shots < 0 {
		return fmt.Errorf("batch, size and shots must be non-negative")
	}

	backend := cpu.New()
	sampler := quantum.NewStatevectorSampler(quantum.Options{
		Shots:   shots,
		Seed:    seed,
		Workers: envconfig.NumParallel(),
	})

	layer, err := nn.NewQuanv2d(inChannels, outChannels, qubits, weights, backend,
		nn.WithKernelSize(kernelSize),
		nn.WithStride(stride),
		nn.WithSampler(sampler),
		nn.WithWeightSeed(seed),
	)
	if err != nil {
		return err
	}

	input := tensor.Uniform[float32](tensor.Shape{batch, inChannels, size, size}, 0, 1,
		exprand.NewSource(seed), backend)

	start := time.Now()
	output, err := layer.ForwardContext(cmd.Context(), input)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "elapsed: %s\n", elapsed.Round(time.Microsecond))
	fmt.Fprintln(w, layer)
	fmt.Fprintf(w, "output shape: %v\n", output.Shape())

	if batch == 0 || output.NumElements() == 0 {
		return nil
	}

	shape := output.Shape()
	fmt.Fprintln(w, "sample 0:")
	header := []string{"CHANNEL", "ROW"}
	for c := range shape[3] {
		header = append(header, strconv.Itoa(c))
	}
	table := newTable(w, header...)
	for ch := range shape[1] {
		for r := range shape[2] {
			row := []string{strconv.Itoa(ch), strconv.Itoa(r)}
			for c := range shape[3] {
				row = append(row, strconv.FormatFloat(float64(output.At(0, ch, r, c)), 'f', 4, 32))
			}
			table.Append(row)
		}
	}
	table.Render()

	return nil
}

package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/born-ml/quanv/internal/nn"
	"github.com/born-ml/quanv/internal/quantum"
)

func newCircuitCmd() *cobra.Command {
	circuitCmd := &cobra.Command{
		Use:   "circuit",
		Short: "Show the gates of the quantum convolution circuit",
		Args:  cobra.NoArgs,
		RunE:  CircuitHandler,
	}

	circuitCmd.Flags().Int("in-channels", 3, "Input channels")
	circuitCmd.Flags().Int("kernel-size", 3, "Convolution kernel size")
	circuitCmd.Flags().Int("qubits", 3, "Number of qubits")
	circuitCmd.Flags().Int("weights", 5, "Number of trainable circuit weights")

	return circuitCmd
}

// CircuitHandler prints the circuit one gate per row followed by gate counts.
func CircuitHandler(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	inChannels, _ := flags.GetInt("in-channels")
	kernelSize, _ := flags.GetInt("kernel-size")
	qubits, _ := flags.GetInt("qubits")
	weights, _ := flags.GetInt("weights")

	if inChannels <= 0 || kernelSize <= 0 || weights < 0 {
		return fmt.Errorf("in-channels and kernel-size must be positive, weights non-negative: %w", nn.ErrInvalidConfig)
	}

	circuit, inputs, params := nn.QuanvCircuit(weights, inChannels*kernelSize*kernelSize, qubits)
	if err := circuit.Err(); err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "qubits: %d, inputs: %d, weights: %d\n", circuit.NumQubits(), len(inputs), len(params))

	table := newTable(w, "#", "GATE", "QUBITS", "ANGLE")
	for i, in := range circuit.Instructions() {
		qs := make([]string, len(in.Qubits))
		for j, q := range in.Qubits {
			qs[j] = "q[" + strconv.Itoa(q) + "]"
		}
		angle := ""
		if in.Gate == quantum.GateRX || in.Gate == quantum.GateRY {
			angle = in.Angle.String()
		}
		table.Append([]string{strconv.Itoa(i), in.Gate.String(), strings.Join(qs, ", "), angle})
	}
	table.Render()

	counts := circuit.GateCounts()
	fmt.Fprintf(w, "h: %d, ry: %d, rx: %d, cx: %d\n",
		counts[quantum.GateH], counts[quantum.GateRY], counts[quantum.GateRX], counts[quantum.GateCX])

	return nil
}

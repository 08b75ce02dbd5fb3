package nn_test

import (
	"math"
	"testing"

	"github.com/born-ml/quanv/internal/autodiff"
	"github.com/born-ml/quanv/internal/backend/cpu"
	"github.com/born-ml/quanv/internal/nn"
	"github.com/born-ml/quanv/internal/tensor"
)

// Helper to check if values are approximately equal.
//
//nolint:unparam // epsilon is always 1e-5 in tests, but keeping it as parameter for flexibility
func floatEqual(a, b, epsilon float32) bool {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return diff < epsilon
}

// TestParameter tests Parameter creation and methods.
func TestParameter(t *testing.T) {
	backend := autodiff.New(cpu.New())

	// Create a parameter
	data, _ := tensor.FromSlice([]float32{1, 2, 3}, tensor.Shape{3}, backend)
	param := nn.NewParameter("test_param", data)

	// Test Name
	if param.Name() != "test_param" {
		t.Errorf("Name() = %s, want test_param", param.Name())
	}

	// Test Tensor
	if param.Tensor() != data {
		t.Error("Tensor() should return the original tensor")
	}

	// Test Grad (initially nil)
	if param.Grad() != nil {
		t.Error("Grad() should initially be nil")
	}

	// Test SetGrad
	grad, _ := tensor.FromSlice([]float32{0.1, 0.2, 0.3}, tensor.Shape{3}, backend)
	param.SetGrad(grad)
	if param.Grad() != grad {
		t.Error("SetGrad() should set the gradient")
	}

	// Test ZeroGrad
	param.ZeroGrad()
	if param.Grad() != nil {
		t.Error("ZeroGrad() should clear the gradient")
	}
}

// TestLinear_Creation tests Linear layer initialization.
func TestLinear_Creation(t *testing.T) {
	backend := autodiff.New(cpu.New())

	layer := nn.NewLinear(10, 5, backend)

	// Check dimensions
	if layer.InFeatures() != 10 {
		t.Errorf("InFeatures() = %d, want 10", layer.InFeatures())
	}
	if layer.OutFeatures() != 5 {
		t.Errorf("OutFeatures() = %d, want 5", layer.OutFeatures())
	}

	// Check weight shape: [out_features, in_features]
	weight := layer.Weight().Tensor()
	expectedShape := tensor.Shape{5, 10}
	if !weight.Shape().Equal(expectedShape) {
		t.Errorf("Weight shape = %v, want %v", weight.Shape(), expectedShape)
	}

	// Check bias shape: [out_features]
	bias := layer.Bias().Tensor()
	expectedBiasShape := tensor.Shape{5}
	if !bias.Shape().Equal(expectedBiasShape) {
		t.Errorf("Bias shape = %v, want %v", bias.Shape(), expectedBiasShape)
	}

	// Check bias is zeros
	biasData := bias.Raw().AsFloat32()
	for i, v := range biasData {
		if v != 0 {
			t.Errorf("Bias[%d] = %f, want 0", i, v)
		}
	}

	// Check parameters
	params := layer.Parameters()
	if len(params) != 2 {
		t.Errorf("Parameters() length = %d, want 2", len(params))
	}
}

// TestLinear_Forward tests Linear layer forward pass.
func TestLinear_Forward(t *testing.T) {
	backend := autodiff.New(cpu.New())

	// Create a simple 2x2 linear layer for easy verification
	layer := nn.NewLinear(2, 2, backend)

	// Set known weights and bias for testing
	// Weight: [[1, 2], [3, 4]] (out=2, in=2)
	weightData := []float32{1, 2, 3, 4}
	copy(layer.Weight().Tensor().Raw().AsFloat32(), weightData)

	// Bias: [0.5, 1.0]
	biasData := []float32{0.5, 1.0}
	copy(layer.Bias().Tensor().Raw().AsFloat32(), biasData)

	// Input: [[1, 1]] (batch=1, in=2)
	input, _ := tensor.FromSlice([]float32{1, 1}, tensor.Shape{1, 2}, backend)

	// Forward pass
	output := layer.Forward(input)

	// Expected:
	// y = x @ W.T + b
	// W.T = [[1, 3], [2, 4]] (transpose of [2,2])
	// x @ W.T = [1, 1] @ [[1, 3], [2, 4]] = [1*1+1*2, 1*3+1*4] = [3, 7]
	// y = [3, 7] + [0.5, 1.0] = [3.5, 8.0]

	expected := []float32{3.5, 8.0}
	actual := output.Raw().AsFloat32()

	for i, exp := range expected {
		if !floatEqual(actual[i], exp, 1e-5) {
			t.Errorf("Output[%d] = %f, want %f", i, actual[i], exp)
		}
	}

	// Check output shape: [1, 2]
	expectedShape := tensor.Shape{1, 2}
	if !output.Shape().Equal(expectedShape) {
		t.Errorf("Output shape = %v, want %v", output.Shape(), expectedShape)
	}
}

// TestLinear_ForwardBatch tests Linear with batch input.
func TestLinear_ForwardBatch(t *testing.T) {
	backend := autodiff.New(cpu.New())

	layer := nn.NewLinear(3, 2, backend)

	// Input: batch_size=4, in_features=3
	input := tensor.Rand[float32](tensor.Shape{4, 3}, backend)

	output := layer.Forward(input)

	// Check output shape: [4, 2]
	expectedShape := tensor.Shape{4, 2}
	if !output.Shape().Equal(expectedShape) {
		t.Errorf("Output shape = %v, want %v", output.Shape(), expectedShape)
	}
}

// TestSequential tests Sequential container.
func TestSequential(t *testing.T) {
	backend := autodiff.New(cpu.New())

	// Create a simple network: Flatten -> Linear(3, 2)
	flatten := nn.NewFlatten[*autodiff.AutodiffBackend[*cpu.CPUBackend]]()
	linear := nn.NewLinear(3, 2, backend)

	model := nn.NewSequential[*autodiff.AutodiffBackend[*cpu.CPUBackend]](flatten, linear)

	// Test Len
	if model.Len() != 2 {
		t.Errorf("Sequential.Len() = %d, want 2", model.Len())
	}

	// Test Module
	if model.Module(0) != flatten {
		t.Error("Module(0) should be Flatten")
	}
	if model.Module(1) != linear {
		t.Error("Module(1) should be the linear layer")
	}

	// Test Forward
	input := tensor.Rand[float32](tensor.Shape{4, 1, 3}, backend)
	output := model.Forward(input)

	// Output shape should be [4, 2] after Linear(3, 2)
	expectedShape := tensor.Shape{4, 2}
	if !output.Shape().Equal(expectedShape) {
		t.Errorf("Sequential output shape = %v, want %v", output.Shape(), expectedShape)
	}

	// Test Parameters (should have linear's weight and bias)
	params := model.Parameters()
	if len(params) != 2 {
		t.Errorf("Sequential.Parameters() length = %d, want 2", len(params))
	}
}

// TestSequential_Add tests Sequential.Add method.
func TestSequential_Add(t *testing.T) {
	backend := autodiff.New(cpu.New())

	model := nn.NewSequential[*autodiff.AutodiffBackend[*cpu.CPUBackend]]()

	if model.Len() != 0 {
		t.Error("Empty Sequential should have length 0")
	}

	// Add modules
	model.Add(nn.NewFlatten[*autodiff.AutodiffBackend[*cpu.CPUBackend]]())
	model.Add(nn.NewLinear(10, 5, backend))
	model.Add(nn.NewLinear(5, 2, backend))

	if model.Len() != 3 {
		t.Errorf("After adding 3 modules, Len() = %d, want 3", model.Len())
	}
}

// TestMSELoss tests MSE loss computation.
func TestMSELoss(t *testing.T) {
	backend := autodiff.New(cpu.New())

	mse := nn.NewMSELoss(backend)

	// Predictions: [1, 2, 3]
	predictions, _ := tensor.FromSlice([]float32{1, 2, 3}, tensor.Shape{3}, backend)

	// Targets: [1, 1, 1]
	targets, _ := tensor.FromSlice([]float32{1, 1, 1}, tensor.Shape{3}, backend)

	// Compute loss
	loss := mse.Forward(predictions, targets)

	// Expected: mean((1-1)² + (2-1)² + (3-1)²) = mean(0 + 1 + 4) = 5/3 ≈ 1.667
	expected := float32(5.0 / 3.0)
	actual := loss.Item()

	if !floatEqual(actual, expected, 1e-5) {
		t.Errorf("MSE loss = %f, want %f", actual, expected)
	}

	// Check no trainable parameters
	if len(mse.Parameters()) != 0 {
		t.Error("MSE loss should have no parameters")
	}
}

// TestInitialization tests Xavier initialization bounds.
func TestInitialization(t *testing.T) {
	backend := autodiff.New(cpu.New())

	// Xavier initialization for fanIn=100, fanOut=50
	w := nn.Xavier(100, 50, tensor.Shape{50, 100}, backend)

	// Expected bound: sqrt(6 / (100 + 50)) ≈ 0.2
	expectedBound := math.Sqrt(6.0 / 150.0) // ≈ 0.2

	data := w.Raw().AsFloat32()

	// Check all values are within [-bound, bound]
	for i, val := range data {
		if math.Abs(float64(val)) > expectedBound {
			t.Errorf("Xavier init value[%d] = %f exceeds bound %f", i, val, expectedBound)
		}
	}
}

// TestMSELoss_Backward tests that the loss is recorded and differentiable.
func TestMSELoss_Backward(t *testing.T) {
	backend := autodiff.New(cpu.New())
	backend.Tape().StartRecording()

	mse := nn.NewMSELoss(backend)
	predictions, _ := tensor.FromSlice([]float32{1, 2, 3}, tensor.Shape{3}, backend)
	targets, _ := tensor.FromSlice([]float32{1, 1, 1}, tensor.Shape{3}, backend)

	loss := mse.Forward(predictions, targets)
	grads := autodiff.Backward(loss, backend)

	// d/dp mean((p-t)²) = 2(p-t)/n
	expected := []float32{0, 2.0 / 3.0, 4.0 / 3.0}
	actual := grads[predictions.Raw()].AsFloat32()
	for i, exp := range expected {
		if !floatEqual(actual[i], exp, 1e-5) {
			t.Errorf("grad[%d] = %f, want %f", i, actual[i], exp)
		}
	}
}

// TestLinear_Backward tests that gradients reach the weight and bias parameters.
func TestLinear_Backward(t *testing.T) {
	backend := autodiff.New(cpu.New())
	backend.Tape().StartRecording()

	layer := nn.NewLinear(2, 1, backend)
	copy(layer.Weight().Tensor().Raw().AsFloat32(), []float32{0.5, -1})

	input, _ := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{2, 2}, backend)
	loss := layer.Forward(input).Sum()
	grads := autodiff.Backward(loss, backend)

	if !layer.Weight().CollectGrad(grads) || !layer.Bias().CollectGrad(grads) {
		t.Fatal("expected gradients for weight and bias")
	}

	// d/dW sum(x @ W.T + b) = column sums of x
	expectedW := []float32{4, 6}
	for i, exp := range expectedW {
		if got := layer.Weight().Grad().Data()[i]; !floatEqual(got, exp, 1e-5) {
			t.Errorf("weight grad[%d] = %f, want %f", i, got, exp)
		}
	}
	if got := layer.Bias().Grad().Data()[0]; !floatEqual(got, 2, 1e-5) {
		t.Errorf("bias grad = %f, want 2", got)
	}
}

// TestFlatten tests Flatten shapes and parameters.
func TestFlatten(t *testing.T) {
	backend := cpu.New()
	flatten := nn.NewFlatten[*cpu.CPUBackend]()

	input := tensor.Rand[float32](tensor.Shape{2, 3, 4, 5}, backend)
	output := flatten.Forward(input)

	if !output.Shape().Equal(tensor.Shape{2, 60}) {
		t.Errorf("Flatten output shape = %v, want [2 60]", output.Shape())
	}
	if output.At(1, 59) != input.At(1, 2, 3, 4) {
		t.Error("Flatten should preserve element order")
	}
	if len(flatten.Parameters()) != 0 {
		t.Error("Flatten should have no parameters")
	}
}

// TestUniformInit tests seeded uniform initialization.
func TestUniformInit(t *testing.T) {
	backend := cpu.New()

	a := nn.Uniform(tensor.Shape{64}, -1, 1, 9, backend)
	b := nn.Uniform(tensor.Shape{64}, -1, 1, 9, backend)

	for i, v := range a.Data() {
		if v < -1 || v >= 1 {
			t.Errorf("Uniform value[%d] = %f outside [-1, 1)", i, v)
		}
		if v != b.Data()[i] {
			t.Errorf("Uniform value[%d] differs across identical seeds", i)
		}
	}
}

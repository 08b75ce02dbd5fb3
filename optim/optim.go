// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides optimizers that update nn parameters from the
// gradient map returned by autodiff.Backward.
//
//	optimizer := optim.NewAdam(model.Parameters(), optim.AdamConfig{LR: 0.05}, backend)
//	grads := autodiff.Backward(loss, backend)
//	optimizer.Step(grads)
//	optimizer.ZeroGrad()
package optim

import (
	"github.com/born-ml/quanv/internal/nn"
	"github.com/born-ml/quanv/internal/optim"
	"github.com/born-ml/quanv/internal/tensor"
)

// Optimizer is the interface implemented by SGD and Adam.
type Optimizer = optim.Optimizer

// Config is the base configuration for all optimizers.
type Config = optim.Config

// SGD is stochastic gradient descent with optional momentum.
type SGD[B tensor.Backend] = optim.SGD[B]

// SGDConfig holds configuration for SGD.
type SGDConfig = optim.SGDConfig

// NewSGD creates a new SGD optimizer.
func NewSGD[B tensor.Backend](params []*nn.Parameter[B], config SGDConfig, backend B) *SGD[B] {
	return optim.NewSGD(params, config, backend)
}

// Adam is the Adam optimizer.
type Adam[B tensor.Backend] = optim.Adam[B]

// AdamConfig holds configuration for Adam.
type AdamConfig = optim.AdamConfig

// NewAdam creates a new Adam optimizer.
func NewAdam[B tensor.Backend](params []*nn.Parameter[B], config AdamConfig, backend B) *Adam[B] {
	return optim.NewAdam(params, config, backend)
}

package mood

import (
	"fmt"
	"math"
	"math/rand"
)

// TrainConfig holds training hyperparameters. Zero values take the defaults
// used to produce the shipped model artifact.
type TrainConfig struct {
	Epochs          int     // default 50
	BatchSize       int     // default 32
	LearningRate    float64 // default 1e-3
	ValidationSplit float64 // default 0.2
	Seed            int64
	Logf            func(format string, args ...any)
}

func (c *TrainConfig) applyDefaults() {
	if c.Epochs <= 0 {
		c.Epochs = 50
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 32
	}
	if c.LearningRate <= 0 {
		c.LearningRate = 1e-3
	}
	if c.ValidationSplit <= 0 || c.ValidationSplit >= 1 {
		c.ValidationSplit = 0.2
	}
	if c.Logf == nil {
		c.Logf = func(string, ...any) {}
	}
}

// TrainResult reports per-epoch mean-absolute-error losses.
type TrainResult struct {
	TrainLoss []float64
	ValLoss   []float64
}

// Train fits a fresh network to labeled sentence embeddings with
// mean-absolute-error loss and the Adam optimizer. The data is shuffled and
// split into train/validation partitions before training.
func Train(x [][]float64, y [][2]float64, cfg TrainConfig) (*Network, TrainResult, error) {
	cfg.applyDefaults()

	if len(x) == 0 {
		return nil, TrainResult{}, fmt.Errorf("no training data")
	}
	if len(x) != len(y) {
		return nil, TrainResult{}, fmt.Errorf("%d inputs for %d labels", len(x), len(y))
	}
	inputDim := len(x[0])
	for i, row := range x {
		if len(row) != inputDim {
			return nil, TrainResult{}, fmt.Errorf("input %d has %d dimensions, want %d", i, len(row), inputDim)
		}
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	n := NewNetwork(inputDim, HiddenLayout, rng)

	// Shuffled train/validation split.
	perm := rng.Perm(len(x))
	nVal := int(float64(len(x)) * cfg.ValidationSplit)
	if nVal == 0 && len(x) > 1 {
		nVal = 1
	}
	valIdx := perm[:nVal]
	trainIdx := perm[nVal:]
	if len(trainIdx) == 0 {
		return nil, TrainResult{}, fmt.Errorf("not enough data for a training split")
	}

	opt := newAdam(n, cfg.LearningRate)
	var result TrainResult

	for epoch := 1; epoch <= cfg.Epochs; epoch++ {
		rng.Shuffle(len(trainIdx), func(i, j int) {
			trainIdx[i], trainIdx[j] = trainIdx[j], trainIdx[i]
		})

		var epochLoss float64
		for start := 0; start < len(trainIdx); start += cfg.BatchSize {
			end := min(start+cfg.BatchSize, len(trainIdx))
			batch := trainIdx[start:end]

			opt.zeroGradients()
			for _, idx := range batch {
				epochLoss += n.backprop(x[idx], y[idx], opt.grads)
			}
			opt.step(len(batch))
		}
		trainLoss := epochLoss / float64(len(trainIdx))

		valLoss := n.evaluate(x, y, valIdx)
		result.TrainLoss = append(result.TrainLoss, trainLoss)
		result.ValLoss = append(result.ValLoss, valLoss)
		cfg.Logf("epoch %d/%d: loss=%.4f val_loss=%.4f", epoch, cfg.Epochs, trainLoss, valLoss)
	}

	return n, result, nil
}

// evaluate returns the mean absolute error over the given sample indices.
func (n *Network) evaluate(x [][]float64, y [][2]float64, idx []int) float64 {
	if len(idx) == 0 {
		return 0
	}
	var total float64
	for _, i := range idx {
		out := n.forward(x[i])
		total += (math.Abs(out[0]-y[i][0]) + math.Abs(out[1]-y[i][1])) / 2
	}
	return total / float64(len(idx))
}

// backprop runs one forward/backward pass for a single sample and adds the
// gradients of the mean-absolute-error loss into grads. Returns the sample
// loss.
func (n *Network) backprop(input []float64, target [2]float64, grads []layerGrads) float64 {
	// Forward pass, caching each layer's input and pre-activation output.
	activations := make([][]float64, len(n.Layers)+1)
	activations[0] = input
	for l, layer := range n.Layers {
		activations[l+1] = layer.apply(activations[l])
	}

	out := activations[len(n.Layers)]
	loss := (math.Abs(out[0]-target[0]) + math.Abs(out[1]-target[1])) / 2

	// MAE gradient w.r.t. each output: sign(pred - target) / numOutputs.
	delta := make([]float64, len(out))
	for i := range out {
		delta[i] = sign(out[i]-target[i]) / float64(len(out))
	}

	// Backward pass.
	for l := len(n.Layers) - 1; l >= 0; l-- {
		layer := &n.Layers[l]
		in := activations[l]
		outAct := activations[l+1]

		// ReLU derivative: zero where the unit did not fire. The cached
		// activation is enough since relu(z) > 0 iff z > 0.
		if layer.Activation == ActivationReLU {
			for i := range delta {
				if outAct[i] <= 0 {
					delta[i] = 0
				}
			}
		}

		g := &grads[l]
		for i, d := range delta {
			if d == 0 {
				continue
			}
			g.biases[i] += d
			row := g.weights[i]
			for j, a := range in {
				row[j] += d * a
			}
		}

		if l > 0 {
			prev := make([]float64, len(in))
			for i, d := range delta {
				if d == 0 {
					continue
				}
				for j, w := range layer.Weights[i] {
					prev[j] += d * w
				}
			}
			delta = prev
		}
	}

	return loss
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

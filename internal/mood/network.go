// Package mood implements the feed-forward regression network that predicts
// musical mood attributes (danceability, energy) from a sentence embedding.
// The serving path only runs forward inference on a model artifact produced
// offline by the training command.
package mood

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"os"
)

// HiddenLayout is the hidden-layer widths of the predictor network.
var HiddenLayout = []int{64, 128, 256, 256, 128, 64}

// Layer is one dense layer. Weights are stored row-major: Weights[i] holds
// the input weights of output unit i.
type Layer struct {
	Weights    [][]float64 `json:"weights"`
	Biases     []float64   `json:"biases"`
	Activation string      `json:"activation"`
}

// Activation names persisted in the model artifact.
const (
	ActivationReLU   = "relu"
	ActivationLinear = "linear"
)

// Network is a feed-forward regression network. Once loaded it is immutable
// and safe for concurrent Predict calls.
type Network struct {
	Layers []Layer `json:"layers"`
}

// NewNetwork builds an untrained network: inputDim inputs, the given hidden
// widths with ReLU activation, and two linear outputs. Weights use He
// initialization from rng.
func NewNetwork(inputDim int, hidden []int, rng *rand.Rand) *Network {
	widths := append([]int{inputDim}, hidden...)
	widths = append(widths, 2)

	n := &Network{}
	for l := 1; l < len(widths); l++ {
		in, out := widths[l-1], widths[l]
		layer := Layer{
			Weights:    make([][]float64, out),
			Biases:     make([]float64, out),
			Activation: ActivationReLU,
		}
		if l == len(widths)-1 {
			layer.Activation = ActivationLinear
		}
		scale := math.Sqrt(2.0 / float64(in))
		for i := range layer.Weights {
			row := make([]float64, in)
			for j := range row {
				row[j] = rng.NormFloat64() * scale
			}
			layer.Weights[i] = row
		}
		n.Layers = append(n.Layers, layer)
	}
	return n
}

// InputDim returns the expected input width.
func (n *Network) InputDim() int {
	if len(n.Layers) == 0 || len(n.Layers[0].Weights) == 0 {
		return 0
	}
	return len(n.Layers[0].Weights[0])
}

// Predict runs forward inference on a sentence embedding and returns the
// predicted (danceability, energy). The outputs are not clamped; a poorly
// calibrated model can produce values outside [0, 1] and downstream
// consumers must tolerate that.
func (n *Network) Predict(input []float64) (danceability, energy float64, err error) {
	if len(input) != n.InputDim() {
		return 0, 0, fmt.Errorf("input has %d dimensions, model expects %d", len(input), n.InputDim())
	}
	out := n.forward(input)
	if len(out) != 2 {
		return 0, 0, fmt.Errorf("model produced %d outputs, want 2", len(out))
	}
	return out[0], out[1], nil
}

// forward computes the network output for a single input.
func (n *Network) forward(input []float64) []float64 {
	a := input
	for _, layer := range n.Layers {
		a = layer.apply(a)
	}
	return a
}

func (l *Layer) apply(in []float64) []float64 {
	out := make([]float64, len(l.Weights))
	for i, row := range l.Weights {
		sum := l.Biases[i]
		for j, w := range row {
			sum += w * in[j]
		}
		if l.Activation == ActivationReLU && sum < 0 {
			sum = 0
		}
		out[i] = sum
	}
	return out
}

// validate checks structural consistency of a loaded artifact.
func (n *Network) validate() error {
	if len(n.Layers) == 0 {
		return fmt.Errorf("model has no layers")
	}
	prev := -1
	for i, layer := range n.Layers {
		if len(layer.Weights) == 0 {
			return fmt.Errorf("layer %d has no units", i)
		}
		if len(layer.Biases) != len(layer.Weights) {
			return fmt.Errorf("layer %d: %d biases for %d units", i, len(layer.Biases), len(layer.Weights))
		}
		in := len(layer.Weights[0])
		for _, row := range layer.Weights {
			if len(row) != in {
				return fmt.Errorf("layer %d has ragged weight rows", i)
			}
		}
		if prev >= 0 && in != prev {
			return fmt.Errorf("layer %d expects %d inputs, previous layer outputs %d", i, in, prev)
		}
		switch layer.Activation {
		case ActivationReLU, ActivationLinear:
		default:
			return fmt.Errorf("layer %d: unknown activation %q", i, layer.Activation)
		}
		prev = len(layer.Weights)
	}
	return nil
}

// Load reads a model artifact from disk. A load failure is fatal for the
// serving path; there is no fallback model.
func Load(path string) (*Network, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading model: %w", err)
	}
	var n Network
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, fmt.Errorf("parsing model %s: %w", path, err)
	}
	if err := n.validate(); err != nil {
		return nil, fmt.Errorf("invalid model %s: %w", path, err)
	}
	return &n, nil
}

// Save writes the model artifact to disk.
func (n *Network) Save(path string) error {
	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("encoding model: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing model: %w", err)
	}
	return nil
}

package mood

import "math"

// Adam hyperparameters (standard defaults).
const (
	adamBeta1 = 0.9
	adamBeta2 = 0.999
	adamEps   = 1e-8
)

// layerGrads accumulates gradients for one layer over a minibatch.
type layerGrads struct {
	weights [][]float64
	biases  []float64
}

// adam holds optimizer state for every layer of a network.
type adam struct {
	net   *Network
	lr    float64
	t     int
	grads []layerGrads
	mW    [][][]float64
	vW    [][][]float64
	mB    [][]float64
	vB    [][]float64
}

func newAdam(n *Network, lr float64) *adam {
	opt := &adam{net: n, lr: lr}
	for _, layer := range n.Layers {
		out, in := len(layer.Weights), len(layer.Weights[0])
		opt.grads = append(opt.grads, layerGrads{
			weights: makeMatrix(out, in),
			biases:  make([]float64, out),
		})
		opt.mW = append(opt.mW, makeMatrix(out, in))
		opt.vW = append(opt.vW, makeMatrix(out, in))
		opt.mB = append(opt.mB, make([]float64, out))
		opt.vB = append(opt.vB, make([]float64, out))
	}
	return opt
}

func makeMatrix(rows, cols int) [][]float64 {
	m := make([][]float64, rows)
	for i := range m {
		m[i] = make([]float64, cols)
	}
	return m
}

func (o *adam) zeroGradients() {
	for l := range o.grads {
		for i := range o.grads[l].weights {
			row := o.grads[l].weights[i]
			for j := range row {
				row[j] = 0
			}
			o.grads[l].biases[i] = 0
		}
	}
}

// step applies one Adam update using gradients averaged over batchSize
// samples.
func (o *adam) step(batchSize int) {
	o.t++
	scale := 1.0 / float64(batchSize)
	c1 := 1 - math.Pow(adamBeta1, float64(o.t))
	c2 := 1 - math.Pow(adamBeta2, float64(o.t))

	for l := range o.net.Layers {
		layer := &o.net.Layers[l]
		for i := range layer.Weights {
			row := layer.Weights[i]
			gRow := o.grads[l].weights[i]
			mRow := o.mW[l][i]
			vRow := o.vW[l][i]
			for j := range row {
				g := gRow[j] * scale
				mRow[j] = adamBeta1*mRow[j] + (1-adamBeta1)*g
				vRow[j] = adamBeta2*vRow[j] + (1-adamBeta2)*g*g
				row[j] -= o.lr * (mRow[j] / c1) / (math.Sqrt(vRow[j]/c2) + adamEps)
			}

			g := o.grads[l].biases[i] * scale
			o.mB[l][i] = adamBeta1*o.mB[l][i] + (1-adamBeta1)*g
			o.vB[l][i] = adamBeta2*o.vB[l][i] + (1-adamBeta2)*g*g
			layer.Biases[i] -= o.lr * (o.mB[l][i] / c1) / (math.Sqrt(o.vB[l][i]/c2) + adamEps)
		}
	}
}

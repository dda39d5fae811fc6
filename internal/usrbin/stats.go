package usrbin

import "math"

// Estimate is the integrated estimator result.
type Estimate struct {
	Total    float64 // sum over voxels times voxel volume
	RelError float64 // approximate relative statistical error
}

// Total integrates the field over the grid: sum(values) * voxel volume.
// The error term is a heuristic, not a rigorous variance propagation:
// the relative spread of nonzero voxel values divided by sqrt(number of
// nonzero bins) and sqrt(cycles). It gives a usable order of magnitude
// for comparison plots but should not be quoted as a confidence
// interval.
func (g *Grid) Total(cycles int) Estimate {
	sum := 0.0
	nonzero := 0
	for _, v := range g.data {
		sum += v
		if v != 0 {
			nonzero++
		}
	}

	est := Estimate{Total: sum * g.Header.VoxelVolume()}
	if nonzero < 2 || sum == 0 {
		return est
	}

	mean := sum / float64(nonzero)
	varSum := 0.0
	for _, v := range g.data {
		if v != 0 {
			d := v - mean
			varSum += d * d
		}
	}
	std := math.Sqrt(varSum / float64(nonzero-1))

	relSpread := std / math.Abs(mean)
	if cycles < 1 {
		cycles = 1
	}
	est.RelError = relSpread / math.Sqrt(float64(nonzero)) / math.Sqrt(float64(cycles))
	return est
}

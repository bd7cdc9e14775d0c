// Package terrain generates initial surfaces with layered simplex noise.
// All surfaces are deterministic for a given seed.
package terrain

import (
	"math"
	"math/rand"
	"sort"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/tessellab/acre/internal/field"
)

// Surface generates a land-surface elevation field in [0, relief] metres
// with gentle edge falloff so scenarios drain toward the border.
func Surface(rows, cols int, seed int64, relief float64) *field.Field {
	noise := opensimplex.NewNormalized(seed)
	f := field.New(rows, cols)

	halfR := float64(rows-1) / 2
	halfC := float64(cols-1) / 2
	// Guard against 1×N grids: the falloff radius must stay positive.
	radius := math.Max(math.Max(halfR, halfC), 1)

	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			elev := octaveNoise(noise, float64(c), float64(r), 4, 0.08, 0.5)

			// Shave the edges down so the highest ground sits inland.
			dr := float64(r) - halfR
			dc := float64(c) - halfC
			dist := math.Sqrt(dr*dr+dc*dc) / radius
			falloff := 1.0 - math.Pow(dist, 3)
			if falloff < 0.1 {
				falloff = 0.1
			}

			f.Set(r, c, elev*falloff*relief)
		}
	}
	return f
}

// WaterTable derives an initial water-table elevation lying meanDepth below
// the land surface, perturbed by ±variation of noise.
func WaterTable(surface *field.Field, seed int64, meanDepth, variation float64) *field.Field {
	noise := opensimplex.NewNormalized(seed + 1)
	rows, cols := surface.Rows(), surface.Cols()
	f := field.New(rows, cols)

	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			// Normalized noise is in [0,1]; recenter to ±variation.
			jitter := (octaveNoise(noise, float64(c), float64(r), 3, 0.06, 0.5) - 0.5) * 2 * variation
			f.Set(r, c, surface.At(r, c)-meanDepth+jitter)
		}
	}
	return f
}

// VegetationMask marks the cells where vegetation starts fully grown. The
// noise threshold is tuned so roughly `cover` of cells are marked; a seeded
// shuffle breaks ties on very small grids.
func VegetationMask(rows, cols int, seed int64, cover float64) []bool {
	if cover <= 0 {
		return make([]bool, rows*cols)
	}
	if cover >= 1 {
		mask := make([]bool, rows*cols)
		for i := range mask {
			mask[i] = true
		}
		return mask
	}

	noise := opensimplex.NewNormalized(seed + 2)
	values := make([]float64, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			values[r*cols+c] = octaveNoise(noise, float64(c), float64(r), 3, 0.10, 0.5)
		}
	}

	// Rank cells and mark the greenest fraction. Ranking instead of a fixed
	// threshold keeps the realized cover close to the requested one.
	order := make([]int, len(values))
	for i := range order {
		order[i] = i
	}
	rng := rand.New(rand.NewSource(seed + 3))
	rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
	// Stable sort keeps the shuffled order among equal values.
	sort.SliceStable(order, func(i, j int) bool { return values[order[i]] > values[order[j]] })

	mask := make([]bool, len(values))
	marked := int(math.Round(cover * float64(len(values))))
	for i := 0; i < marked; i++ {
		mask[order[i]] = true
	}
	return mask
}

// octaveNoise generates fractal noise by layering multiple frequencies.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}

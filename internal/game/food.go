package game

import (
	"math/rand"

	"github.com/vovakirdan/tui-snake/internal/core"
)

// resampleFactor bounds the reject-and-resample phase to size²·resampleFactor draws.
const resampleFactor = 4

// generateFood picks a uniformly random free cell of a size×size grid.
//
// It first rejects and resamples uniform draws, which is fast while the board
// is mostly empty. Once the attempt budget is spent (a long snake) it samples
// from the explicit list of free cells, so placement always terminates.
// The second result is false when the body covers every cell.
func generateFood(rng *rand.Rand, size int, body []core.Point) (core.Point, bool) {
	occupied := make(map[core.Point]struct{}, len(body))
	for _, p := range body {
		occupied[p] = struct{}{}
	}

	cells := size * size
	if len(occupied) >= cells {
		return noFood, false
	}

	for range cells * resampleFactor {
		p := core.Point{X: rng.Intn(size), Y: rng.Intn(size)}
		if _, taken := occupied[p]; !taken {
			return p, true
		}
	}

	free := make([]core.Point, 0, cells-len(occupied))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			p := core.Point{X: x, Y: y}
			if _, taken := occupied[p]; !taken {
				free = append(free, p)
			}
		}
	}
	return free[rng.Intn(len(free))], true
}

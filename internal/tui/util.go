package tui

import "sort"

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// fillEvenOdd scan-fills a polygon's rings on the microgrid with the even-odd
// rule, so holes stay open.
func fillEvenOdd(br *brailleBuf, rings [][][2]int, c int) {
	if len(rings) == 0 {
		return
	}
	minY, maxY := rings[0][0][1], rings[0][0][1]
	for _, r := range rings {
		for _, p := range r {
			minY = min(minY, p[1])
			maxY = max(maxY, p[1])
		}
	}
	minY = max(minY, 0)
	maxY = min(maxY, br.h*4-1)
	var xs []int
	for y := minY; y <= maxY; y++ {
		xs = xs[:0]
		for _, r := range rings {
			for i := range r {
				a, b := r[i], r[(i+1)%len(r)]
				if a[1] == b[1] { // horizontal edge: skip
					continue
				}
				if (y >= a[1] && y < b[1]) || (y >= b[1] && y < a[1]) {
					t := float64(y-a[1]) / float64(b[1]-a[1])
					xs = append(xs, int(float64(a[0])+t*float64(b[0]-a[0])))
				}
			}
		}
		if len(xs) < 2 {
			continue
		}
		sort.Ints(xs)
		for i := 0; i+1 < len(xs); i += 2 {
			for x := max(0, xs[i]); x <= min(xs[i+1], br.w*2-1); x++ {
				br.setPixel(x, y, c)
			}
		}
	}
}

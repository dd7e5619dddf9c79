package chart

import (
	"strconv"
	"strings"
)

// naturalPath builds an SVG path through the points using a natural cubic
// spline: second derivative zero at both ends, continuous in between.
func naturalPath(xs, ys []float64) string {
	n := len(xs)
	if n == 0 || n != len(ys) {
		return ""
	}

	var b strings.Builder
	b.WriteString("M")
	writePair(&b, xs[0], ys[0])
	switch {
	case n == 1:
		return b.String()
	case n == 2:
		b.WriteString("L")
		writePair(&b, xs[1], ys[1])
		return b.String()
	}

	px1, px2 := controlPoints(xs)
	py1, py2 := controlPoints(ys)
	for i := 0; i < n-1; i++ {
		b.WriteString("C")
		writePair(&b, px1[i], py1[i])
		b.WriteString(",")
		writePair(&b, px2[i], py2[i])
		b.WriteString(",")
		writePair(&b, xs[i+1], ys[i+1])
	}
	return b.String()
}

// controlPoints solves the tridiagonal system for the Bézier control points of
// each segment of a natural spline through x (len(x) >= 3).
func controlPoints(x []float64) (c1, c2 []float64) {
	n := len(x) - 1
	a := make([]float64, n)
	b := make([]float64, n)
	r := make([]float64, n)

	a[0], b[0], r[0] = 0, 2, x[0]+2*x[1]
	for i := 1; i < n-1; i++ {
		a[i], b[i], r[i] = 1, 4, 4*x[i]+2*x[i+1]
	}
	a[n-1], b[n-1], r[n-1] = 2, 7, 8*x[n-1]+x[n]

	for i := 1; i < n; i++ {
		m := a[i] / b[i-1]
		b[i] -= m
		r[i] -= m * r[i-1]
	}

	a[n-1] = r[n-1] / b[n-1]
	for i := n - 2; i >= 0; i-- {
		a[i] = (r[i] - a[i+1]) / b[i]
	}
	b[n-1] = (x[n] + a[n-1]) / 2
	for i := 0; i < n-1; i++ {
		b[i] = 2*x[i+1] - a[i+1]
	}
	return a, b
}

func writePair(b *strings.Builder, x, y float64) {
	b.WriteString(coord(x))
	b.WriteString(",")
	b.WriteString(coord(y))
}

func coord(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

package forecast

import (
	"errors"
	"math"
)

// RegressionResult holds an ordinary least-squares fit of quantity
// against sequential index 0..n-1.
type RegressionResult struct {
	Slope     float64
	Intercept float64
	R2        float64
}

// ErrTooFewPoints is returned by LinearRegression below two points.
var ErrTooFewPoints = errors.New("linear regression requires at least 2 points")

// LinearRegression fits values against their indices. R2 is clamped
// into [0, 1].
func LinearRegression(values []float64) (RegressionResult, error) {
	n := float64(len(values))
	if len(values) < 2 {
		return RegressionResult{}, ErrTooFewPoints
	}

	var sumX, sumY, sumXY, sumXX float64
	for i, y := range values {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}

	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return RegressionResult{Intercept: sumY / n}, nil
	}

	slope := (n*sumXY - sumX*sumY) / denom
	intercept := (sumY - slope*sumX) / n

	// R² = 1 - SSres/SStot; a constant series has no variance to explain.
	meanY := sumY / n
	var ssRes, ssTot float64
	for i, y := range values {
		fit := slope*float64(i) + intercept
		ssRes += (y - fit) * (y - fit)
		ssTot += (y - meanY) * (y - meanY)
	}

	r2 := 0.0
	if ssTot > 0 {
		r2 = clamp(1-ssRes/ssTot, 0, 1)
	}

	return RegressionResult{Slope: slope, Intercept: intercept, R2: r2}, nil
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func stdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	var variance float64
	for _, v := range values {
		variance += (v - m) * (v - m)
	}
	variance /= float64(len(values))
	return math.Sqrt(variance)
}

// coefficientOfVariation is stddev/mean, a normalized volatility
// measure. Zero-mean series report zero volatility.
func coefficientOfVariation(values []float64) float64 {
	m := mean(values)
	if m == 0 {
		return 0
	}
	return stdDev(values) / m
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

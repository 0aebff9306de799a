package chaososc

import "math"

// Step returns the time derivatives of a simplified double pendulum with unit
// masses and gravity. The (1+s²) denominator never approaches zero, unlike the
// mass-weighted denominator of the exact equations.
func Step(th1, th2, w1, w2, l1, l2 float64) (dth1, dth2, dw1, dw2 float64) {
	c := math.Cos(th1 - th2)
	s := math.Sin(th1 - th2)

	dth1 = w1
	dth2 = w2

	dw1 = (math.Sin(th2)*c - s*(l1*w1*w1*c+l2*w2*w2) - math.Sin(th1)) /
		l1 / (1.0 + s*s)
	dw2 = ((l1*w1*w1*s - math.Sin(th2) + math.Sin(th1)*c) + l2*w2*w2*s*c) /
		l2 / (1.0 + s*s)
	return dth1, dth2, dw1, dw2
}

package sim

import "math/cmplx"

// rotate multiplies the unit-magnitude phasor u by exp(i*theta) and
// renormalizes, so accumulated floating error never lets the magnitude walk
// away from 1.
func rotate(u complex128, theta float64) complex128 {
	v := u * cmplx.Exp(complex(0, theta))
	return v / complex(cmplx.Abs(v), 0)
}

// clampArg bounds a phasor random walk: when the phase angle of u leaves
// [-max, max] it is snapped to the nearest boundary. The result is always
// unit magnitude.
func clampArg(u complex128, max float64) complex128 {
	switch a := cmplx.Phase(u); {
	case a > max:
		return cmplx.Exp(complex(0, max))
	case a < -max:
		return cmplx.Exp(complex(0, -max))
	}
	return u
}

package scenery

import "math"

// Mat2D is a 2D affine matrix stored as [a, b, c, d, tx, ty]:
//
//	| a  c  tx |
//	| b  d  ty |
//	| 0  0   1 |
//
// Concatenation applies the right operand first: A.Mul(B) applied to a
// vector v yields A(B(v)). This convention is load-bearing — the renderer,
// hit testing, and overlay geometry all assume it.
type Mat2D [6]float64

// Identity is the identity affine matrix.
var Identity = Mat2D{1, 0, 0, 1, 0, 0}

// Translate returns a translation matrix.
func Translate(x, y float64) Mat2D {
	return Mat2D{1, 0, 0, 1, x, y}
}

// ScaleXY returns a scaling matrix.
func ScaleXY(sx, sy float64) Mat2D {
	return Mat2D{sx, 0, 0, sy, 0, 0}
}

// RotateDeg returns a rotation matrix for an angle in degrees (clockwise,
// matching the Y-down coordinate system).
func RotateDeg(deg float64) Mat2D {
	sin, cos := math.Sincos(deg * math.Pi / 180)
	return Mat2D{cos, sin, -sin, cos, 0, 0}
}

// Mul returns m * other: other is applied first, then m.
func (m Mat2D) Mul(other Mat2D) Mat2D {
	return Mat2D{
		m[0]*other[0] + m[2]*other[1],
		m[1]*other[0] + m[3]*other[1],
		m[0]*other[2] + m[2]*other[3],
		m[1]*other[2] + m[3]*other[3],
		m[0]*other[4] + m[2]*other[5] + m[4],
		m[1]*other[4] + m[3]*other[5] + m[5],
	}
}

// Apply transforms the point (x, y).
func (m Mat2D) Apply(x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// Invert computes the inverse of the matrix.
// Returns the identity matrix if the matrix is singular (determinant ≈ 0).
func (m Mat2D) Invert() Mat2D {
	det := m[0]*m[3] - m[2]*m[1]
	if det > -1e-12 && det < 1e-12 {
		return Identity
	}
	invDet := 1.0 / det
	a := m[3] * invDet
	b := -m[1] * invDet
	c := -m[2] * invDet
	d := m[0] * invDet
	return Mat2D{
		a, b, c, d,
		-(a*m[4] + c*m[5]),
		-(b*m[4] + d*m[5]),
	}
}

// IsIdentity reports whether the matrix is exactly the identity.
func (m Mat2D) IsIdentity() bool {
	return m == Identity
}

// layerLocalTransform builds a layer's local matrix from sampled track
// values: T(position) · R(rotationDeg) · S(scale/100) · T(-anchor).
func layerLocalTransform(pos Vec2, rotationDeg float64, scalePct Vec2, anchor Vec2) Mat2D {
	m := Translate(pos.X, pos.Y)
	if rotationDeg != 0 {
		m = m.Mul(RotateDeg(rotationDeg))
	}
	if scalePct.X != 100 || scalePct.Y != 100 {
		m = m.Mul(ScaleXY(scalePct.X/100, scalePct.Y/100))
	}
	if anchor.X != 0 || anchor.Y != 0 {
		m = m.Mul(Translate(-anchor.X, -anchor.Y))
	}
	return m
}

// BlockTransform maps animation-local coordinates into the block's canvas
// rectangle. Identity when the animation size equals the canvas size;
// otherwise the contain-fit mapping: uniform scale plus centering inside the
// block rect.
//
// Hit testing and overlay geometry MUST use this exact formula so tap
// targets and outlines are pixel-identical to rendered placeholders.
func BlockTransform(animSize Vec2, blockRect Rect, canvasSize Vec2) Mat2D {
	if animSize == canvasSize {
		return Identity
	}
	if animSize.X <= 0 || animSize.Y <= 0 {
		return Identity
	}
	scale := min(blockRect.Width/animSize.X, blockRect.Height/animSize.Y)
	tx := blockRect.X + (blockRect.Width-animSize.X*scale)/2
	ty := blockRect.Y + (blockRect.Height-animSize.Y*scale)/2
	return Translate(tx, ty).Mul(ScaleXY(scale, scale))
}

// animToViewport maps animation coordinates to render-target pixels.
// The target's drawable scale is already folded into its pixel size.
func animToViewport(animSize Vec2, targetW, targetH int) Mat2D {
	if animSize.X <= 0 || animSize.Y <= 0 {
		return Identity
	}
	return ScaleXY(float64(targetW)/animSize.X, float64(targetH)/animSize.Y)
}

package data

// ScalingPair maps a source element s to s*Scale + Offset before the cast
// into the destination kind. Both members are float64 values; the zero pair
// means the scaling has not been computed yet.
type ScalingPair struct {
	Scale  Value
	Offset Value
}

// NewScaling builds a computed scaling.
func NewScaling(scale, offset float64) ScalingPair {
	return ScalingPair{Scale: NewValue(scale), Offset: NewValue(offset)}
}

// IdentityScaling is the scaling that leaves values untouched.
func IdentityScaling() ScalingPair { return NewScaling(1, 0) }

// IsZero reports whether the scaling still has to be computed.
func (p ScalingPair) IsZero() bool { return p.Scale == nil || p.Offset == nil }

// Values returns scale and offset as float64. An unset pair yields the
// identity.
func (p ScalingPair) Values() (scale, offset float64) {
	if p.IsZero() {
		return 1, 0
	}
	return As[float64](p.Scale), As[float64](p.Offset)
}

// IsIdentity reports whether applying the scaling changes nothing.
func (p ScalingPair) IsIdentity() bool {
	if p.IsZero() {
		return false
	}
	scale, offset := p.Values()
	return scale == 1 && offset == 0
}

func (p ScalingPair) String() string {
	if p.IsZero() {
		return "[unset]"
	}
	return "[" + p.Scale.String() + "/" + p.Offset.String() + "]"
}

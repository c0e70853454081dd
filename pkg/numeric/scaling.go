package numeric

import (
	"fmt"
	"math"
	"strings"

	"github.com/isis-group/isis-sub000/pkg/types"
)

// Policy governs whether and how a value range is rescaled to fit the domain
// of a destination type.
type Policy uint8

const (
	// NoScale never rescales.
	NoScale Policy = iota
	// AutoScale fits the range into the destination. Integer sources are
	// never magnified.
	AutoScale
	// NoUpscale only ever shrinks the range.
	NoUpscale
	// Upscale fits the range into the destination, magnifying if needed.
	Upscale
)

var policyNames = [...]string{"noscale", "autoscale", "noupscale", "upscale"}

func (p Policy) String() string {
	if int(p) < len(policyNames) {
		return policyNames[p]
	}
	return fmt.Sprintf("policy(%d)", uint8(p))
}

// ParsePolicy resolves a policy by name, case-insensitively.
func ParsePolicy(name string) (Policy, error) {
	for i, n := range policyNames {
		if strings.EqualFold(n, name) {
			return Policy(i), nil
		}
	}
	return NoScale, fmt.Errorf("unknown scaling policy %q, valid values are %s", name, strings.Join(policyNames[:], ", "))
}

// MarshalText implements encoding.TextMarshaler.
func (p Policy) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Policy) UnmarshalText(b []byte) error {
	v, err := ParsePolicy(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// Scaling computes the (scale, offset) pair mapping the source range
// [minval, maxval] into the domain of dst, so that
// dst = round(src*scale + offset).
//
// Floating point destinations and the NoScale policy always yield (1, 0).
// With AutoScale an integer source is treated as NoUpscale. NoUpscale clamps
// any scale above 1 to exactly 1, and a scale of 1 drops the offset when the
// range already fits into the domain.
func Scaling(minval, maxval float64, srcInteger bool, dst types.ID, opt Policy) (scale, offset float64) {
	scale, offset = 1, 0

	domainMin, domainMax, ok := DomainOf(dst)
	doScale := opt != NoScale && ok && !dst.IsFloat()
	if opt == AutoScale && srcInteger {
		opt = NoUpscale
	}
	if !doScale {
		return scale, offset
	}

	if minval > 0 || domainMin == 0 {
		offset = -minval
	} else if (0-maxval) > 0 || domainMax == 0 {
		offset = -maxval
	}

	rangeMax := maxval + offset
	rangeMin := minval + offset

	scaleMax, scaleMin := math.MaxFloat64, math.MaxFloat64
	if rangeMax != 0 {
		scaleMax = domainMax / rangeMax
	}
	if rangeMin != 0 {
		scaleMin = domainMin / rangeMin
	}
	if scaleMax == 0 {
		scaleMax = math.MaxFloat64
	}
	if scaleMin == 0 {
		scaleMin = math.MaxFloat64
	}
	scale = math.Min(scaleMax, scaleMin)

	if opt == NoUpscale && scale > 1 {
		scale = 1
	}

	if scale == 1 && (minval-domainMin) > 0 && (domainMax-maxval) > 0 {
		offset = 0
	} else {
		offset *= scale
	}
	return scale, offset
}

package data

import (
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/isis-group/isis-sub000/pkg/logger"
	"github.com/isis-group/isis-sub000/pkg/numeric"
	stringpool "github.com/isis-group/isis-sub000/pkg/strings"
	"github.com/isis-group/isis-sub000/pkg/types"
)

// buildFromString installs the string conversions into every other kind.
// Numbers are parsed directly, multi element kinds are tokenized first.
func (t *convTable) buildFromString() {
	register(t, parseBool)
	register(t, parseNumber[int8])
	register(t, parseNumber[uint8])
	register(t, parseNumber[int16])
	register(t, parseNumber[uint16])
	register(t, parseNumber[int32])
	register(t, parseNumber[uint32])
	register(t, parseNumber[int64])
	register(t, parseNumber[uint64])
	register(t, parseNumber[float32])
	register(t, parseNumber[float64])
	register(t, parseComplex[complex64, float32])
	register(t, parseComplex[complex128, float64])

	stringToSeq(t, color24View)
	stringToSeq(t, color48View)
	stringToSeq(t, fvec3View)
	stringToSeq(t, dvec3View)
	stringToSeq(t, fvec4View)
	stringToSeq(t, dvec4View)
	stringToSeq(t, ivec4View)
	stringToSeq(t, ilistView)
	stringToSeq(t, dlistView)
	stringToSeq(t, slistView)

	register(t, parseSelection)
	register(t, parseDate)
	register(t, parseTimestamp)
	register(t, parseDuration)
}

func parseBool(src string, dst *bool) numeric.RangeCheck {
	switch strings.ToLower(strings.TrimSpace(src)) {
	case "true", "y", "yes":
		*dst = true
	case "false", "n", "no":
		*dst = false
	default:
		*dst = false
		reportParse(src, types.BoolID, "false")
		return numeric.PositiveOverflow
	}
	return numeric.InRange
}

// parseNumber reads integers exactly and everything else as float64 before
// the range checked cast into D. Out of range literals saturate. Trailing
// text after a number is dropped with a warning, "12px" reads as 12.
func parseNumber[D types.Number](src string, dst *D) numeric.RangeCheck {
	s := strings.TrimSpace(src)
	if rc, ok := parseLiteral(s, dst); ok {
		return rc
	}
	for n := len(s) - 1; n > 0; n-- {
		if rc, ok := parseLiteral(s[:n], dst); ok {
			logger.Warn("ignoring the text after the number",
				zap.String("value", src), zap.String("ignored", s[n:]))
			return rc
		}
	}
	*dst = 0
	reportParse(src, types.IDOf[D](), "0")
	return numeric.InRange
}

func parseLiteral[D types.Number](s string, dst *D) (numeric.RangeCheck, bool) {
	var rc numeric.RangeCheck
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		*dst, rc = numeric.Cast[int64, D](i)
		return rc, true
	}
	if u, err := strconv.ParseUint(s, 10, 64); err == nil {
		*dst, rc = numeric.Cast[uint64, D](u)
		return rc, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		if !math.IsInf(f, 0) {
			return numeric.InRange, false
		}
		// the literal exceeds float64
		*dst, _ = numeric.Cast[float64, D](f)
		if f > 0 {
			return numeric.PositiveOverflow, true
		}
		return numeric.NegativeOverflow, true
	}
	*dst, rc = numeric.Cast[float64, D](f)
	return rc, true
}

// parseComplex accepts Go literals like "(1+2i)" as well as "(re,im)" pairs
// and plain real numbers.
func parseComplex[D complexType, E floatType](src string, dst *D) numeric.RangeCheck {
	s := strings.TrimSpace(src)
	if c, err := strconv.ParseComplex(s, 128); err == nil {
		v, rc := castComplex[complex128, D](c)
		*dst = v
		return rc
	}
	tokens := stringpool.NumericTokens(s)
	if len(tokens) == 0 || len(tokens) > 2 {
		*dst = 0
		reportParse(src, types.IDOf[D](), "(0,0)")
		return numeric.InRange
	}
	var parts [2]E
	rc := numeric.InRange
	for i, tok := range tokens {
		rc = rc.Worst(parseNumber(tok, &parts[i]))
	}
	*dst = D(complex(float64(parts[0]), float64(parts[1])))
	return rc
}

// stringToSeq fills vectors, colors and lists from the tokens of a string.
// Numeric elements take every number found in the text; string elements are
// split at whitespace, commas and semicolons. Lists take all tokens, fixed
// size kinds the first ones that fit.
func stringToSeq[D types.Payload, DE element](t *convTable, dv seqView[D, DE]) {
	register(t, func(src string, d *D) numeric.RangeCheck {
		var tokens []string
		if types.IDOf[DE]() == types.StringID {
			tokens = stringpool.ListTokens(strings.Trim(strings.TrimSpace(src), "{}<>[]()"))
		} else {
			tokens = stringpool.NumericTokens(src)
		}
		if dv.resize != nil {
			dv.resize(d, len(tokens))
		}
		dst := dv.view(d)
		if len(tokens) > len(dst) {
			tokens = tokens[:len(dst)]
		}
		return convertElements(t.at(types.StringID, types.IDOf[DE]()), tokens, dst)
	})
}

// parseSelection selects the named entry of the destination. Names outside
// the selection count as a positive overflow.
func parseSelection(src string, dst *types.Selection) numeric.RangeCheck {
	if dst.Set(src) {
		return numeric.InRange
	}
	logger.Warn("not an entry of the selection",
		zap.String("value", src), zap.Strings("entries", dst.Entries()))
	return numeric.PositiveOverflow
}

func parseDate(src string, dst *types.Date) numeric.RangeCheck {
	d, ok := types.ParseDate(src)
	if !ok {
		reportParse(src, types.DateID, types.Date(0).String())
	}
	*dst = d
	return numeric.InRange
}

func parseTimestamp(src string, dst *types.Timestamp) numeric.RangeCheck {
	ts, ok := types.ParseTimestamp(src)
	if !ok {
		reportParse(src, types.TimestampID, types.Timestamp(0).String())
	}
	*dst = ts
	return numeric.InRange
}

func parseDuration(src string, dst *types.Duration) numeric.RangeCheck {
	d, ok := types.ParseDuration(src)
	if !ok {
		reportParse(src, types.DurationID, types.Duration(0).String())
	}
	*dst = d
	return numeric.InRange
}

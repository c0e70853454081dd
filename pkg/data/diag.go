package data

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/isis-group/isis-sub000/pkg/errors"
	"github.com/isis-group/isis-sub000/pkg/logger"
	"github.com/isis-group/isis-sub000/pkg/metrics"
	"github.com/isis-group/isis-sub000/pkg/numeric"
	"github.com/isis-group/isis-sub000/pkg/types"
)

// report logs a failure that is answered with a default value. The log
// message is the error message, the typed error travels as a field.
func report(level zapcore.Level, err *errors.Error, fields ...zap.Field) {
	metrics.RecordSoftFailure(string(err.Type))
	fields = append(fields, zap.Error(err))
	switch level {
	case zapcore.InfoLevel:
		logger.Info(err.Message, fields...)
	case zapcore.WarnLevel:
		logger.Warn(err.Message, fields...)
	default:
		logger.Error(err.Message, fields...)
	}
}

func reportUnknown(from, to types.ID, subject string) {
	report(zapcore.ErrorLevel,
		errors.Newf(errors.ErrorTypeUnknownConversion, "no known conversion from %s to %s", from.Name(), to.Name()),
		zap.String("from", from.Name()), zap.String("to", to.Name()), zap.String("value", subject))
	metrics.RecordConversion(from.Name(), to.Name(), string(errors.ErrorTypeUnknownConversion))
}

func reportOverflow(rc numeric.RangeCheck, subject string, to types.ID) {
	var err *errors.Error
	switch rc {
	case numeric.PositiveOverflow:
		err = errors.Newf(errors.ErrorTypePositiveOverflow, "positive overflow when converting %s to %s", subject, to.Name())
	case numeric.NegativeOverflow:
		err = errors.Newf(errors.ErrorTypeNegativeOverflow, "negative overflow when converting %s to %s", subject, to.Name())
	default:
		return
	}
	report(zapcore.ErrorLevel, err, zap.String("value", subject), zap.String("to", to.Name()))
}

func reportParse(src string, to types.ID, fallback string) {
	report(zapcore.ErrorLevel,
		errors.Newf(errors.ErrorTypeParse, "failed to interpret %q as %s, returning %s", src, to.Name(), fallback),
		zap.String("value", src), zap.String("to", to.Name()))
}

func reportUnsupported(format string, args ...any) {
	report(zapcore.ErrorLevel, errors.Newf(errors.ErrorTypeUnsupported, format, args...))
}

func reportRange(format string, args ...any) {
	report(zapcore.ErrorLevel, errors.Newf(errors.ErrorTypeRange, format, args...))
}

// subject renders a value with its type label for diagnostics without going
// through the converter table.
func subject(v Value) string {
	if v == nil {
		return "<empty>"
	}
	return v.String() + "(" + v.TypeName() + ")"
}

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordConversion(t *testing.T) {
	before := testutil.ToFloat64(Conversions.WithLabelValues("s32bit", "u8bit", "positive_overflow"))
	RecordConversion("s32bit", "u8bit", "positive_overflow")
	RecordConversion("s32bit", "u8bit", "positive_overflow")
	after := testutil.ToFloat64(Conversions.WithLabelValues("s32bit", "u8bit", "positive_overflow"))
	assert.Equal(t, before+2, after)
}

func TestRecordArrayConversion(t *testing.T) {
	before := testutil.ToFloat64(ElementsConverted.WithLabelValues("double", "u16bit"))
	RecordArrayConversion("double", "u16bit", 128, time.Millisecond)
	assert.Equal(t, before+128, testutil.ToFloat64(ElementsConverted.WithLabelValues("double", "u16bit")))
}

func TestSoftFailures(t *testing.T) {
	before := testutil.ToFloat64(SoftFailures.WithLabelValues("parse"))
	RecordSoftFailure("parse")
	assert.Equal(t, before+1, testutil.ToFloat64(SoftFailures.WithLabelValues("parse")))
}

func TestTimer(t *testing.T) {
	timer := NewTimer()
	time.Sleep(time.Millisecond)
	assert.GreaterOrEqual(t, timer.Stop(), time.Millisecond)
}

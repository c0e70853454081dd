package rawio

import (
	"strconv"

	"go.uber.org/zap/zapcore"

	"github.com/isis-group/isis-sub000/pkg/data"
	stringpool "github.com/isis-group/isis-sub000/pkg/strings"
)

// Stats summarizes an array.
type Stats struct {
	Type     string
	Len      int
	Min, Max data.Value // nil when the kind has no range or the array is empty
}

// Stat computes the summary of a.
func Stat(a data.Array) Stats {
	st := Stats{Type: a.TypeName(), Len: a.Len()}
	if a.Len() > 0 {
		st.Min, st.Max = a.MinMax()
	}
	return st
}

func (s Stats) String() string {
	b := stringpool.GetBuilder(stringpool.Small)
	defer stringpool.PutBuilder(b, stringpool.Small)
	b.WriteString(s.Type)
	b.WriteString(" len=")
	b.WriteString(strconv.Itoa(s.Len))
	if s.Min != nil && s.Max != nil {
		b.WriteString(" min=")
		b.WriteString(s.Min.String())
		b.WriteString(" max=")
		b.WriteString(s.Max.String())
	}
	return b.String()
}

// MarshalLogObject lets Stats be logged with zap.Object.
func (s Stats) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("type", s.Type)
	enc.AddInt("len", s.Len)
	if s.Min != nil && s.Max != nil {
		enc.AddString("min", s.Min.String())
		enc.AddString("max", s.Max.String())
	}
	return nil
}

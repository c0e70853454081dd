package data

import (
	"strconv"

	stringpool "github.com/isis-group/isis-sub000/pkg/strings"
	"github.com/isis-group/isis-sub000/pkg/types"
)

// formatPayload is the canonical text form used by every conversion into
// string. Floats use the shortest representation that reads back exactly.
func formatPayload[T types.Payload](v T) string {
	switch x := any(v).(type) {
	case bool:
		return strconv.FormatBool(x)
	case int8:
		return strconv.FormatInt(int64(x), 10)
	case uint8:
		return strconv.FormatUint(uint64(x), 10)
	case int16:
		return strconv.FormatInt(int64(x), 10)
	case uint16:
		return strconv.FormatUint(uint64(x), 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case uint32:
		return strconv.FormatUint(uint64(x), 10)
	case int64:
		return strconv.FormatInt(x, 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case string:
		return x
	case types.Color24:
		return joinSeq("<", "|", ">", []uint8{x.R, x.G, x.B})
	case types.Color48:
		return joinSeq("<", "|", ">", []uint16{x.R, x.G, x.B})
	case types.FVector3:
		return joinSeq("<", "|", ">", x[:])
	case types.DVector3:
		return joinSeq("<", "|", ">", x[:])
	case types.FVector4:
		return joinSeq("<", "|", ">", x[:])
	case types.DVector4:
		return joinSeq("<", "|", ">", x[:])
	case types.IVector4:
		return joinSeq("<", "|", ">", x[:])
	case types.IList:
		return joinSeq("{", ",", "}", x)
	case types.DList:
		return joinSeq("{", ",", "}", x)
	case types.SList:
		return joinSeq("{", ",", "}", x)
	case complex64:
		return joinSeq("(", ",", ")", []float32{real(x), imag(x)})
	case complex128:
		return joinSeq("(", ",", ")", []float64{real(x), imag(x)})
	case types.Selection:
		return x.String()
	case types.Date:
		return x.String()
	case types.Timestamp:
		return x.String()
	case types.Duration:
		return x.String()
	}
	return ""
}

func joinSeq[E element](open, sep, closing string, s []E) string {
	return open + stringpool.JoinPooled(len(s), sep, func(i int) string {
		return formatPayload(s[i])
	}) + closing
}

package types

// Color24 is an 8 bit per channel RGB color.
type Color24 struct{ R, G, B uint8 }

// Color48 is a 16 bit per channel RGB color.
type Color48 struct{ R, G, B uint16 }

type (
	FVector3 [3]float32
	DVector3 [3]float64
	FVector4 [4]float32
	DVector4 [4]float64
	IVector4 [4]int32
)

type (
	IList []int32
	DList []float64
	SList []string
)

// Payload is the closed set of Go types a value can hold.
type Payload interface {
	bool |
		int8 | uint8 | int16 | uint16 | int32 | uint32 | int64 | uint64 |
		float32 | float64 |
		Color24 | Color48 |
		FVector3 | DVector3 | FVector4 | DVector4 | IVector4 |
		IList | DList | SList |
		string | Selection |
		complex64 | complex128 |
		Date | Timestamp | Duration
}

// Number is the set of payloads the numeric conversions operate on.
type Number interface {
	int8 | uint8 | int16 | uint16 | int32 | uint32 | int64 | uint64 | float32 | float64
}

// IDOf returns the registered ID of the payload type T.
func IDOf[T Payload]() ID {
	var zero T
	return IDOfValue(zero)
}

// IDOfValue returns the registered ID for the dynamic type of v, or
// InvalidID if v is not a payload.
func IDOfValue(v any) ID {
	switch v.(type) {
	case bool:
		return BoolID
	case int8:
		return Int8ID
	case uint8:
		return Uint8ID
	case int16:
		return Int16ID
	case uint16:
		return Uint16ID
	case int32:
		return Int32ID
	case uint32:
		return Uint32ID
	case int64:
		return Int64ID
	case uint64:
		return Uint64ID
	case float32:
		return Float32ID
	case float64:
		return Float64ID
	case Color24:
		return Color24ID
	case Color48:
		return Color48ID
	case FVector3:
		return FVector3ID
	case DVector3:
		return DVector3ID
	case FVector4:
		return FVector4ID
	case DVector4:
		return DVector4ID
	case IVector4:
		return IVector4ID
	case IList:
		return IListID
	case DList:
		return DListID
	case SList:
		return SListID
	case string:
		return StringID
	case Selection:
		return SelectionID
	case complex64:
		return Complex64ID
	case complex128:
		return Complex128ID
	case Date:
		return DateID
	case Timestamp:
		return TimestampID
	case Duration:
		return DurationID
	}
	return InvalidID
}

// Clone returns a deep copy of v. Only list payloads own memory that needs
// duplicating; everything else is returned as is.
func Clone[T Payload](v T) T {
	switch x := any(v).(type) {
	case IList:
		return any(cloneSlice(x)).(T)
	case DList:
		return any(cloneSlice(x)).(T)
	case SList:
		return any(cloneSlice(x)).(T)
	}
	return v
}

func cloneSlice[S ~[]E, E any](s S) S {
	if s == nil {
		return nil
	}
	out := make(S, len(s))
	copy(out, s)
	return out
}

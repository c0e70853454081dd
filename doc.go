// Package isis is the runtime type layer of the isis imaging toolkit: a
// closed set of value kinds, typed arrays over shared buffers and a complete
// conversion table between them.
//
// # Value kinds
//
// Twenty-eight kinds are registered, from boolean through the integer and
// float widths, complex numbers, colors, vectors and lists to string,
// selection, date, timestamp and duration. Each kind has a canonical name
// ("s16bit", "fvector3", "timestamp") and an array name with a trailing "*".
//
//	v := data.NewValue(int32(5))
//	s := v.CopyByID(types.StringID)  // "5"
//	d := data.ParseValue(types.Float64ID, "3.5415")
//
// # Arrays and scaling
//
// Arrays share one allocation between views. Conversions between numeric
// kinds compute a (scale, offset) pair from the value range of the source so
// the result fits the destination domain:
//
//	src := data.WrapArray([]float64{-5, 0, 1000}, nil)
//	dst := src.CopyByID(types.Uint8ID, src.ScalingTo(types.Uint8ID, numeric.AutoScale))
//
// Conversions never panic for expected failures. Overflows, parse failures
// and unknown pairs are logged through pkg/logger and the conversion returns
// a clamped or default value.
//
// # Key Packages
//
//	pkg/types              - kind registry, payload types, selection, dates
//	pkg/numeric            - clamped casts and the scaling algorithm
//	pkg/data               - Value, Array and the conversion table
//	pkg/rawio              - raw element files, memory mapped or compressed
//	pkg/formats/columnar   - Arrow arrays, Arrow IPC and Parquet files
//	pkg/config             - YAML configuration with ${VAR} substitution
//	pkg/errors             - structured error types
//	pkg/logger             - global zap logger
//	pkg/metrics            - Prometheus conversion counters
//
// The isisconv command in cmd/isisconv exposes conversions and raw file
// handling on the command line.
package isis

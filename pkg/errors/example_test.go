package errors_test

import (
	"fmt"
	"io"

	"github.com/isis-group/isis-sub000/pkg/errors"
)

// Example demonstrates basic error creation with details.
func Example() {
	err := errors.New(errors.ErrorTypeUnknownConversion, "no converter from color24 to date").
		WithDetail("from", "color24").
		WithDetail("to", "date")

	fmt.Println(err.Error())

	// Output:
	// unknown_conversion: no converter from color24 to date
}

// ExampleWrap shows how to wrap I/O errors from raw data access.
func ExampleWrap() {
	err := errors.Wrap(io.ErrUnexpectedEOF, errors.ErrorTypeFile, "raw file shorter than requested").
		WithDetail("offset", 500)

	if errors.IsType(err, errors.ErrorTypeFile) {
		fmt.Println("file error:", err.Unwrap() == io.ErrUnexpectedEOF)
	}

	// Output:
	// file error: true
}

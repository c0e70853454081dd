// Package strings provides pooled string building and the tokenizers used
// when text is interpreted as values.
package strings

import (
	"fmt"
	"strings"
	"sync"
)

// Builder is a reusable byte buffer for building strings
type Builder struct {
	buf []byte
}

// NewBuilder creates a new string builder
func NewBuilder(capacity int) *Builder {
	return &Builder{
		buf: make([]byte, 0, capacity),
	}
}

// WriteString appends a string to the builder
func (b *Builder) WriteString(s string) {
	b.buf = append(b.buf, s...)
}

// WriteByte appends a single byte to the builder
func (b *Builder) WriteByte(c byte) error {
	b.buf = append(b.buf, c)
	return nil
}

// Write implements io.Writer
func (b *Builder) Write(p []byte) (n int, err error) {
	b.buf = append(b.buf, p...)
	return len(p), nil
}

// String returns a copy of the accumulated content
func (b *Builder) String() string {
	return string(b.buf)
}

// Len returns the number of accumulated bytes
func (b *Builder) Len() int {
	return len(b.buf)
}

// Reset empties the builder, keeping its capacity
func (b *Builder) Reset() {
	b.buf = b.buf[:0]
}

// BuilderSize represents different builder sizes
type BuilderSize int

const (
	Small  BuilderSize = iota // < 1KB
	Medium                    // 1KB - 16KB
	Large                     // 16KB+
)

var builderPools = [...]*sync.Pool{
	Small:  {New: func() interface{} { return NewBuilder(1024) }},
	Medium: {New: func() interface{} { return NewBuilder(16 * 1024) }},
	Large:  {New: func() interface{} { return NewBuilder(64 * 1024) }},
}

func poolFor(size BuilderSize) *sync.Pool {
	if size < Small || size > Large {
		return builderPools[Small]
	}
	return builderPools[size]
}

func sizeFor(n int) BuilderSize {
	switch {
	case n > 16*1024:
		return Large
	case n > 1024:
		return Medium
	}
	return Small
}

// GetBuilder retrieves a pooled builder of the specified size
func GetBuilder(size BuilderSize) *Builder {
	builder := poolFor(size).Get().(*Builder)
	builder.Reset()
	return builder
}

// PutBuilder returns a builder to the appropriate pool
func PutBuilder(builder *Builder, size BuilderSize) {
	if builder == nil {
		return
	}
	builder.Reset()
	poolFor(size).Put(builder)
}

// Sprintf provides a pooled alternative to fmt.Sprintf
func Sprintf(format string, args ...interface{}) string {
	if len(args) == 0 {
		return format
	}

	size := sizeFor(len(format) + len(args)*16)
	builder := GetBuilder(size)
	defer PutBuilder(builder, size)

	fmt.Fprintf(builder, format, args...)
	return builder.String()
}

// JoinPooled joins n elements produced by elem using a pooled builder
func JoinPooled(n int, delimiter string, elem func(i int) string) string {
	size := sizeFor(n * 8)
	builder := GetBuilder(size)
	defer PutBuilder(builder, size)

	for i := 0; i < n; i++ {
		if i > 0 {
			builder.WriteString(delimiter)
		}
		builder.WriteString(elem(i))
	}
	return builder.String()
}

const (
	numberStart    = "0123456789-"
	numberContinue = "0123456789-eE."
	listDelimiters = " \t\r\n,;"
)

// Tokenize splits s into runs that begin with a byte from start and
// continue with bytes from cont. Bytes outside such runs are skipped.
func Tokenize(s, start, cont string) []string {
	var tokens []string
	for i := 0; i < len(s); {
		if strings.IndexByte(start, s[i]) < 0 {
			i++
			continue
		}
		j := i + 1
		for j < len(s) && strings.IndexByte(cont, s[j]) >= 0 {
			j++
		}
		tokens = append(tokens, s[i:j])
		i = j
	}
	return tokens
}

// NumericTokens extracts the number-like runs of s, so "<1,-2.5e3> 4"
// yields "1", "-2.5e3" and "4". A '+' continues a run only as the sign of an
// exponent.
func NumericTokens(s string) []string {
	var tokens []string
	for _, tok := range Tokenize(s, numberStart, numberContinue+"+") {
		for tok != "" {
			cut := len(tok)
			for i := 1; i < len(tok); i++ {
				if tok[i] == '+' && tok[i-1] != 'e' && tok[i-1] != 'E' {
					cut = i
					break
				}
			}
			tokens = append(tokens, tok[:cut])
			tok = strings.TrimLeft(tok[cut:], "+")
		}
	}
	return tokens
}

// ListTokens splits s at whitespace, commas and semicolons, dropping empty
// fields.
func ListTokens(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return strings.ContainsRune(listDelimiters, r)
	})
}

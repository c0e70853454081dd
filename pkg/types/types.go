// Package types is the closed registry of value kinds understood by the isis
// type layer. Every kind has a stable ID, a canonical name and a set of static
// traits that decide which conversions and operations are available for it.
//
// The registry is pure data: it is built at package initialisation and never
// changes afterwards, so it can be read from any goroutine without locking.
package types

import (
	"strings"
)

// ID identifies one registered value kind. IDs are dense, start at 1 and are
// stable for the lifetime of the process, so they can index tables directly.
type ID uint8

// Registered kinds, in canonical order.
const (
	InvalidID ID = iota
	BoolID
	Int8ID
	Uint8ID
	Int16ID
	Uint16ID
	Int32ID
	Uint32ID
	Int64ID
	Uint64ID
	Float32ID
	Float64ID
	Color24ID
	Color48ID
	FVector3ID
	DVector3ID
	FVector4ID
	DVector4ID
	IVector4ID
	IListID
	DListID
	SListID
	StringID
	SelectionID
	Complex64ID
	Complex128ID
	DateID
	TimestampID
	DurationID
)

// NumTypes is the number of registered kinds. Valid IDs are 1..NumTypes.
const NumTypes = int(DurationID)

// Category groups kinds that share a conversion strategy.
type Category uint8

const (
	CategoryInvalid Category = iota
	CategoryBool
	CategoryInteger
	CategoryFloat
	CategoryComplex
	CategoryColor
	CategoryVector
	CategoryList
	CategoryString
	CategorySelection
	CategoryDate
	CategoryTimestamp
	CategoryDuration
)

var categoryNames = [...]string{
	CategoryInvalid:   "invalid",
	CategoryBool:      "bool",
	CategoryInteger:   "integer",
	CategoryFloat:     "float",
	CategoryComplex:   "complex",
	CategoryColor:     "color",
	CategoryVector:    "vector",
	CategoryList:      "list",
	CategoryString:    "string",
	CategorySelection: "selection",
	CategoryDate:      "date",
	CategoryTimestamp: "timestamp",
	CategoryDuration:  "duration",
}

func (c Category) String() string {
	if int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return "invalid"
}

// Traits are the static properties of one registered kind.
type Traits struct {
	Name     string
	Category Category
	// Size is the in-memory size of one element in bytes. Variable sized
	// kinds (lists, strings, selections) report the size of their header.
	Size int
	// Components is the number of scalar channels (3 for colors, 2 for
	// complex numbers, the length for vectors, 1 otherwise).
	Components int
	// ComponentSize is the byte width of one channel, used for endian swaps.
	// Zero for kinds whose memory is not plain data.
	ComponentSize int

	Ordered  bool
	Plus     bool
	Minus    bool
	Multiply bool
	Divide   bool
}

// Plain reports whether the kind holds no pointers, so its memory can be
// reinterpreted as raw bytes.
func (t Traits) Plain() bool { return t.ComponentSize > 0 }

var registry = [NumTypes + 1]Traits{
	InvalidID: {Name: "invalid"},

	BoolID:   numericTraits("boolean", CategoryBool, 1),
	Int8ID:   numericTraits("s8bit", CategoryInteger, 1),
	Uint8ID:  numericTraits("u8bit", CategoryInteger, 1),
	Int16ID:  numericTraits("s16bit", CategoryInteger, 2),
	Uint16ID: numericTraits("u16bit", CategoryInteger, 2),
	Int32ID:  numericTraits("s32bit", CategoryInteger, 4),
	Uint32ID: numericTraits("u32bit", CategoryInteger, 4),
	Int64ID:  numericTraits("s64bit", CategoryInteger, 8),
	Uint64ID: numericTraits("u64bit", CategoryInteger, 8),

	Float32ID: numericTraits("float", CategoryFloat, 4),
	Float64ID: numericTraits("double", CategoryFloat, 8),

	Color24ID: {Name: "color24", Category: CategoryColor, Size: 3, Components: 3, ComponentSize: 1},
	Color48ID: {Name: "color48", Category: CategoryColor, Size: 6, Components: 3, ComponentSize: 2},

	FVector3ID: vectorTraits("fvector3", 3, 4),
	DVector3ID: vectorTraits("dvector3", 3, 8),
	FVector4ID: vectorTraits("fvector4", 4, 4),
	DVector4ID: vectorTraits("dvector4", 4, 8),
	IVector4ID: vectorTraits("ivector4", 4, 4),

	IListID: {Name: "list<int32_t>", Category: CategoryList, Size: 24, Components: 1, Ordered: true},
	DListID: {Name: "list<double>", Category: CategoryList, Size: 24, Components: 1, Ordered: true},
	SListID: {Name: "list<string>", Category: CategoryList, Size: 24, Components: 1, Ordered: true},

	StringID:    {Name: "string", Category: CategoryString, Size: 16, Components: 1, Ordered: true, Plus: true},
	SelectionID: {Name: "selection", Category: CategorySelection, Size: 32, Components: 1, Ordered: true},

	Complex64ID: {Name: "complex<float>", Category: CategoryComplex, Size: 8, Components: 2, ComponentSize: 4,
		Plus: true, Minus: true, Multiply: true, Divide: true},
	Complex128ID: {Name: "complex<double>", Category: CategoryComplex, Size: 16, Components: 2, ComponentSize: 8,
		Plus: true, Minus: true, Multiply: true, Divide: true},

	// dates and timestamps move by durations but cannot be scaled
	DateID:      {Name: "date", Category: CategoryDate, Size: 4, Components: 1, ComponentSize: 4, Ordered: true, Plus: true, Minus: true},
	TimestampID: {Name: "timestamp", Category: CategoryTimestamp, Size: 8, Components: 1, ComponentSize: 8, Ordered: true, Plus: true, Minus: true},
	DurationID: {Name: "duration", Category: CategoryDuration, Size: 8, Components: 1, ComponentSize: 8,
		Ordered: true, Plus: true, Minus: true, Multiply: true, Divide: true},
}

func numericTraits(name string, cat Category, size int) Traits {
	t := Traits{Name: name, Category: cat, Size: size, Components: 1, ComponentSize: size, Ordered: true}
	if cat != CategoryBool {
		t.Plus, t.Minus, t.Multiply, t.Divide = true, true, true, true
	}
	return t
}

// vectors are not ordered
func vectorTraits(name string, n, elem int) Traits {
	return Traits{Name: name, Category: CategoryVector, Size: n * elem, Components: n, ComponentSize: elem,
		Plus: true, Minus: true, Multiply: true, Divide: true}
}

var byName = func() map[string]ID {
	m := make(map[string]ID, 2*NumTypes)
	for id := BoolID; id <= DurationID; id++ {
		m[registry[id].Name] = id
		m[registry[id].Name+"*"] = id
	}
	return m
}()

// Valid reports whether id names a registered kind.
func (id ID) Valid() bool { return id >= BoolID && id <= DurationID }

// Traits returns the static traits of id. Invalid IDs yield the zero traits
// with the name "invalid".
func (id ID) Traits() Traits {
	if !id.Valid() {
		return registry[InvalidID]
	}
	return registry[id]
}

// Name is the canonical name of the kind.
func (id ID) Name() string { return id.Traits().Name }

// ArrayName is the canonical name of an array holding the kind.
func (id ID) ArrayName() string {
	if !id.Valid() {
		return registry[InvalidID].Name
	}
	return registry[id].Name + "*"
}

func (id ID) String() string { return id.Name() }

func (id ID) Category() Category { return id.Traits().Category }

// IsNumeric is true for bool, integer and float kinds.
func (id ID) IsNumeric() bool {
	switch id.Category() {
	case CategoryBool, CategoryInteger, CategoryFloat:
		return true
	}
	return false
}

// IsInteger is true for the fixed width integer kinds.
func (id ID) IsInteger() bool { return id.Category() == CategoryInteger }

// IsFloat is true for float and double.
func (id ID) IsFloat() bool { return id.Category() == CategoryFloat }

// ByName resolves a canonical scalar or array name (with trailing "*") to
// its ID. Lookup is exact first, then case-insensitive.
func ByName(name string) (ID, bool) {
	if id, ok := byName[name]; ok {
		return id, true
	}
	for n, id := range byName {
		if strings.EqualFold(n, name) {
			return id, true
		}
	}
	return InvalidID, false
}

// All returns every registered ID in canonical order.
func All() []ID {
	ids := make([]ID, 0, NumTypes)
	for id := BoolID; id <= DurationID; id++ {
		ids = append(ids, id)
	}
	return ids
}

// Map returns the ID to name mapping of all registered kinds.
func Map() map[ID]string {
	m := make(map[ID]string, NumTypes)
	for id := BoolID; id <= DurationID; id++ {
		m[id] = registry[id].Name
	}
	return m
}

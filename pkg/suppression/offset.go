package suppression

import (
	"fmt"
	"math"
	"strconv"

	"github.com/abi-scope/abiscope/pkg/ini"
	"github.com/abi-scope/abiscope/pkg/ir"
)

// EndOffsetValue is the sentinel meaning "the end of the class layout"
// in an insertion range boundary.
const EndOffsetValue = math.MaxUint64

// IsEndValue reports whether an evaluated boundary denotes the end of
// the class layout.
func IsEndValue(v uint64) bool { return v == EndOffsetValue }

// Offset is one boundary of a data-member insertion range: either an
// integer literal or a function-call expression over a class's
// laid-out data members.
type Offset interface {
	// Eval resolves the offset against class. The boolean is false
	// when the offset cannot be resolved (for instance the named data
	// member does not exist); the caller treats that as a silent
	// non-match of the enclosing predicate.
	Eval(class *ir.ClassType) (uint64, bool)
}

// IntegerOffset is a literal bit offset. EndOffsetValue means "end".
type IntegerOffset uint64

func (o IntegerOffset) Eval(*ir.ClassType) (uint64, bool) { return uint64(o), true }

// FnCallOffset evaluates offset_of(member) or offset_after(member)
// against a class's laid-out data members.
type FnCallOffset struct {
	Expr *ini.FunctionCallExpr
}

// Eval scans the laid-out data members of class for the expression's
// argument. offset_of yields the member's recorded offset;
// offset_after yields the next laid-out member's offset, or, for the
// last member, the member's offset plus its type size.
//
// Eval panics on an expression that is not a well-formed offset_of or
// offset_after call; the parser never builds such an offset.
func (o *FnCallOffset) Eval(class *ir.ClassType) (uint64, bool) {
	name := o.Expr.Name
	if name != "offset_of" && name != "offset_after" || len(o.Expr.Args) != 1 {
		panic(fmt.Sprintf("suppression: invalid offset expression %q", o.Expr))
	}
	if class == nil {
		return 0, false
	}
	member := o.Expr.Args[0]
	for i, m := range class.Members {
		if !m.LaidOut || m.Name != member {
			continue
		}
		if name == "offset_of" {
			return m.OffsetInBits, true
		}
		for _, next := range class.Members[i+1:] {
			if next.LaidOut {
				return next.OffsetInBits, true
			}
		}
		size := uint64(0)
		if m.Type != nil {
			size = m.Type.SizeInBits()
		}
		return m.OffsetInBits + size, true
	}
	return 0, false
}

// OffsetRange is a [begin, end] pair of offsets. Both ends are non-nil
// after parsing. A range whose evaluated begin exceeds its evaluated
// end is dead: it admits nothing and is silently ignored.
type OffsetRange struct {
	Begin Offset
	End   Offset
}

// parseOffset parses one offset boundary: the keyword end, a
// non-negative decimal integer, or an offset_of/offset_after call.
// Explicit negative literals are rejected.
func parseOffset(s string) (Offset, error) {
	if s == "end" {
		return IntegerOffset(EndOffsetValue), nil
	}
	if s != "" && (s[0] == '-' || s[0] >= '0' && s[0] <= '9') {
		v, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid offset literal %q", s)
		}
		return IntegerOffset(v), nil
	}
	expr, err := ini.ReadFunctionCallExpr(s)
	if err != nil {
		return nil, fmt.Errorf("invalid offset %q", s)
	}
	if expr.Name != "offset_of" && expr.Name != "offset_after" {
		return nil, fmt.Errorf("unknown offset function %q", expr.Name)
	}
	if len(expr.Args) != 1 {
		return nil, fmt.Errorf("%s takes exactly one data member name", expr.Name)
	}
	return &FnCallOffset{Expr: expr}, nil
}

// formatOffset renders an offset back to its specification spelling.
func formatOffset(o Offset) string {
	switch o := o.(type) {
	case IntegerOffset:
		if IsEndValue(uint64(o)) {
			return "end"
		}
		return strconv.FormatUint(uint64(o), 10)
	case *FnCallOffset:
		return o.Expr.String()
	default:
		return ""
	}
}

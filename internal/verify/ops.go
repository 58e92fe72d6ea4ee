// Package verify drives arena engines and the reference model with the same
// deterministic operation stream and reports the first divergence.
package verify

import (
	"fmt"
	"strings"
)

// OpKind identifies an operation.
type OpKind uint8

const (
	OpInsert OpKind = iota
	OpRemove
	OpRemoveStale
	OpGet
	OpGetRaw
	OpDelete
	OpRetain
	OpDrainFilter
	OpReserve
	OpParseKey
	OpIterate
	OpDeleteAll
	OpClear
)

var opNames = [...]string{
	OpInsert:      "insert",
	OpRemove:      "remove",
	OpRemoveStale: "remove-stale",
	OpGet:         "get",
	OpGetRaw:      "get-raw",
	OpDelete:      "delete",
	OpRetain:      "retain",
	OpDrainFilter: "drain-filter",
	OpReserve:     "reserve",
	OpParseKey:    "parse-key",
	OpIterate:     "iterate",
	OpDeleteAll:   "delete-all",
	OpClear:       "clear",
}

func (k OpKind) String() string {
	if int(k) < len(opNames) {
		return opNames[k]
	}

	return fmt.Sprintf("op(%d)", k)
}

// Op is one generated operation. Which fields are meaningful depends on Kind:
// Pick selects a key or index, Value is the inserted value, Mod is the
// divisor of retain/drain-filter predicates, Stop bounds how many drained
// values the consumer takes before breaking out of the loop.
type Op struct {
	Kind  OpKind
	Pick  int
	Value int
	Mod   int
	Stop  int
}

func (op Op) String() string {
	switch op.Kind {
	case OpInsert:
		return fmt.Sprintf("insert(%d)", op.Value)
	case OpRemove, OpRemoveStale, OpGet, OpDelete:
		return fmt.Sprintf("%s(pick=%d)", op.Kind, op.Pick)
	case OpGetRaw, OpParseKey:
		return fmt.Sprintf("%s(index=%d)", op.Kind, op.Pick)
	case OpRetain:
		return fmt.Sprintf("retain(v%%%d!=0)", op.Mod)
	case OpDrainFilter:
		return fmt.Sprintf("drain-filter(v%%%d==0, stop=%d)", op.Mod, op.Stop)
	case OpReserve:
		return fmt.Sprintf("reserve(%d)", op.Value)
	default:
		return op.Kind.String()
	}
}

// FormatOps renders an op history, one per line, for failure messages.
func FormatOps(history []Op) string {
	var b strings.Builder

	b.WriteString("ops:\n")

	for i, op := range history {
		fmt.Fprintf(&b, "  %3d. %s\n", i+1, op)
	}

	return b.String()
}

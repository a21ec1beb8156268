package vm

import "fmt"

// Opcode is a single bytecode instruction. Every opcode is one byte;
// only OpConstant carries a trailing operand byte (a constant-pool index).
type Opcode byte

const (
	OpConstant Opcode = iota
	OpNil
	OpTrue
	OpFalse
	OpNot
	OpEqual
	OpGreater
	OpLess
	OpAdd
	OpSubtract
	OpNegate
	OpMultiply
	OpDivide
	OpReturn
)

var opcodeNames = map[Opcode]string{
	OpConstant: "OP_CONSTANT",
	OpNil:      "OP_NIL",
	OpTrue:     "OP_TRUE",
	OpFalse:    "OP_FALSE",
	OpNot:      "OP_NOT",
	OpEqual:    "OP_EQUAL",
	OpGreater:  "OP_GREATER",
	OpLess:     "OP_LESS",
	OpAdd:      "OP_ADD",
	OpSubtract: "OP_SUBTRACT",
	OpNegate:   "OP_NEGATE",
	OpMultiply: "OP_MULTIPLY",
	OpDivide:   "OP_DIVIDE",
	OpReturn:   "OP_RETURN",
}

func (op Opcode) String() string {
	if name, ok := opcodeNames[op]; ok {
		return name
	}
	return fmt.Sprintf("OP_UNKNOWN(%d)", byte(op))
}

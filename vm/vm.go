package vm

// StackMax is the fixed capacity of the operand stack. Exceeding it is
// an OutOfMemoryError, not a RuntimeError: it reflects a limit of this
// implementation, not a fault in program logic.
const StackMax = 256

// VM executes a single Chunk to completion. It carries no persistent
// state across calls to Interpret beyond the string pool, which exists
// to keep runtime-constructed strings (e.g. concatenation results)
// interned against the same canonical set the compiler used.
type VM struct {
	chunk   *Chunk
	ip      int
	stack   [StackMax]Value
	sp      int
	strings *StringPool
}

// New creates a VM. strings may be nil, in which case the VM allocates
// its own pool; passing the compiler's pool lets runtime-built strings
// intern against constants the program already produced.
func New(strings *StringPool) *VM {
	if strings == nil {
		strings = NewStringPool()
	}
	return &VM{strings: strings}
}

func (vm *VM) push(v Value) error {
	if vm.sp >= StackMax {
		log.Errorf("stack overflow at capacity %d", StackMax)
		return &OutOfMemoryError{Message: "Stack overflow."}
	}
	vm.stack[vm.sp] = v
	vm.sp++
	return nil
}

func (vm *VM) pop() Value {
	vm.sp--
	return vm.stack[vm.sp]
}

func (vm *VM) peek(distance int) Value {
	return vm.stack[vm.sp-1-distance]
}

func (vm *VM) resetStack() {
	vm.sp = 0
}

func (vm *VM) currentLine() int {
	return vm.chunk.LineAt(vm.ip - 1)
}

func (vm *VM) runtimeError(format string) error {
	err := &RuntimeError{Message: format, Line: vm.currentLine()}
	log.Warningf("runtime error at line %d: %s", err.Line, err.Message)
	vm.resetStack()
	return err
}

func (vm *VM) readByte() byte {
	b := vm.chunk.Code[vm.ip]
	vm.ip++
	return b
}

func (vm *VM) readConstant() Value {
	return vm.chunk.Constants[vm.readByte()]
}

// Interpret runs chunk from its first byte and returns the value left
// by its terminal RETURN, or the error that stopped execution.
func (vm *VM) Interpret(chunk *Chunk) (Value, error) {
	vm.chunk = chunk
	vm.ip = 0
	vm.resetStack()
	return vm.run()
}

func (vm *VM) run() (Value, error) {
	for {
		instruction := Opcode(vm.readByte())
		switch instruction {
		case OpConstant:
			if err := vm.push(vm.readConstant()); err != nil {
				return Nil, err
			}

		case OpNil:
			if err := vm.push(Nil); err != nil {
				return Nil, err
			}
		case OpTrue:
			if err := vm.push(True); err != nil {
				return Nil, err
			}
		case OpFalse:
			if err := vm.push(False); err != nil {
				return Nil, err
			}

		case OpNot:
			v := vm.pop()
			if err := vm.push(Bool(v.IsFalsey())); err != nil {
				return Nil, err
			}

		case OpNegate:
			if !vm.peek(0).IsFloat() {
				return Nil, vm.runtimeError("Operand must be a number.")
			}
			v := vm.pop()
			if err := vm.push(Number(-v.Number())); err != nil {
				return Nil, err
			}

		case OpEqual:
			b := vm.pop()
			a := vm.pop()
			if err := vm.push(Bool(a.Equal(b))); err != nil {
				return Nil, err
			}

		case OpGreater, OpLess:
			if !vm.peek(0).IsFloat() || !vm.peek(1).IsFloat() {
				return Nil, vm.runtimeError("Operands must be numbers.")
			}
			b := vm.pop()
			a := vm.pop()
			var result bool
			if instruction == OpGreater {
				result = a.Number() > b.Number()
			} else {
				result = a.Number() < b.Number()
			}
			if err := vm.push(Bool(result)); err != nil {
				return Nil, err
			}

		case OpAdd:
			switch {
			case vm.peek(0).IsString() && vm.peek(1).IsString():
				b := vm.pop()
				a := vm.pop()
				concatenated := ConcatStringObj(a.AsStringObj().Chars, b.AsStringObj().Chars)
				interned := vm.strings.Intern(concatenated.Chars)
				if err := vm.push(StringValue(interned)); err != nil {
					return Nil, err
				}
			case vm.peek(0).IsFloat() && vm.peek(1).IsFloat():
				b := vm.pop()
				a := vm.pop()
				if err := vm.push(Number(a.Number() + b.Number())); err != nil {
					return Nil, err
				}
			default:
				return Nil, vm.runtimeError("Operands must be two numbers or two strings.")
			}

		case OpSubtract, OpMultiply, OpDivide:
			if !vm.peek(0).IsFloat() || !vm.peek(1).IsFloat() {
				return Nil, vm.runtimeError("Operands must be numbers.")
			}
			b := vm.pop()
			a := vm.pop()
			var result float64
			switch instruction {
			case OpSubtract:
				result = a.Number() - b.Number()
			case OpMultiply:
				result = a.Number() * b.Number()
			case OpDivide:
				result = a.Number() / b.Number()
			}
			if err := vm.push(Number(result)); err != nil {
				return Nil, err
			}

		case OpReturn:
			return vm.pop(), nil

		default:
			return Nil, vm.runtimeError("Unknown opcode.")
		}
	}
}

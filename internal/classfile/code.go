package classfile

// Instruction lengths (1 + operand bytes) indexed by opcode. Zero marks
// opcodes the scanner refuses to step over: the variable-length switches,
// anything reserved, and anything above jsr_w. Compiler-generated bridges
// never contain those, so hitting one just means "not a bridge we trust".
var opLen [256]byte

func init() {
	for op := 0x00; op <= 0x0f; op++ { // nop .. dconst_1
		opLen[op] = 1
	}
	opLen[0x10] = 2 // bipush
	opLen[0x11] = 3 // sipush
	opLen[0x12] = 2 // ldc
	opLen[0x13] = 3 // ldc_w
	opLen[0x14] = 3 // ldc2_w
	for op := 0x15; op <= 0x19; op++ { // iload .. aload
		opLen[op] = 2
	}
	for op := 0x1a; op <= 0x35; op++ { // iload_0 .. saload
		opLen[op] = 1
	}
	for op := 0x36; op <= 0x3a; op++ { // istore .. astore
		opLen[op] = 2
	}
	for op := 0x3b; op <= 0x83; op++ { // istore_0 .. lxor
		opLen[op] = 1
	}
	opLen[0x84] = 3                    // iinc
	for op := 0x85; op <= 0x98; op++ { // i2l .. dcmpg
		opLen[op] = 1
	}
	for op := 0x99; op <= 0xa8; op++ { // ifeq .. jsr
		opLen[op] = 3
	}
	opLen[0xa9] = 2                    // ret
	for op := 0xac; op <= 0xb1; op++ { // ireturn .. return
		opLen[op] = 1
	}
	for op := 0xb2; op <= 0xb8; op++ { // getstatic .. invokestatic
		opLen[op] = 3
	}
	opLen[0xb9] = 5 // invokeinterface
	opLen[0xba] = 5 // invokedynamic
	opLen[0xbb] = 3 // new
	opLen[0xbc] = 2 // newarray
	opLen[0xbd] = 3 // anewarray
	opLen[0xbe] = 1 // arraylength
	opLen[0xbf] = 1 // athrow
	opLen[0xc0] = 3 // checkcast
	opLen[0xc1] = 3 // instanceof
	opLen[0xc2] = 1 // monitorenter
	opLen[0xc3] = 1 // monitorexit
	opLen[0xc5] = 4 // multianewarray
	opLen[0xc6] = 3 // ifnull
	opLen[0xc7] = 3 // ifnonnull
	opLen[0xc8] = 5 // goto_w
	opLen[0xc9] = 5 // jsr_w
}

const (
	opInvokevirtual   = 0xb6
	opInvokespecial   = 0xb7
	opInvokestatic    = 0xb8
	opInvokeinterface = 0xb9
	opWide            = 0xc4
	opIinc            = 0x84
)

// SameClassInvokeTarget scans the method's code for invoke instructions
// whose target is declared on c itself and returns the single such
// (name, descriptor). ok is false when the method has no code, no
// same-class invoke, more than one distinct target, or code the scanner
// does not recognize. Bridge methods delegate through exactly one such
// call, which is what this locates.
func SameClassInvokeTarget(c *Class, m *Method) (name, desc string, ok bool) {
	var code []byte
	for _, a := range m.Attrs {
		if a.Name == attrCode {
			if len(a.Data) < 8 {
				return "", "", false
			}
			n := int(uint32(a.Data[4])<<24 | uint32(a.Data[5])<<16 | uint32(a.Data[6])<<8 | uint32(a.Data[7]))
			if n <= 0 || 8+n > len(a.Data) {
				return "", "", false
			}
			code = a.Data[8 : 8+n]
			break
		}
	}
	if code == nil {
		return "", "", false
	}

	var found bool
	for pc := 0; pc < len(code); {
		op := code[pc]
		size := int(opLen[op])
		if op == opWide {
			if pc+1 >= len(code) {
				return "", "", false
			}
			if code[pc+1] == opIinc {
				size = 6
			} else {
				size = 4
			}
		}
		if size == 0 || pc+size > len(code) {
			return "", "", false
		}
		switch op {
		case opInvokevirtual, opInvokespecial, opInvokestatic, opInvokeinterface:
			idx := uint16(code[pc+1])<<8 | uint16(code[pc+2])
			owner, tname, tdesc, err := c.Pool.MethodTarget(idx)
			if err != nil {
				return "", "", false
			}
			if owner == c.Name {
				if found && (tname != name || tdesc != desc) {
					return "", "", false
				}
				name, desc, found = tname, tdesc, true
			}
		}
		pc += size
	}
	return name, desc, found
}

/*
 * Copyright 2025 C65 Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package il

import (
    `fmt`
    `strings`
)

// Width is the operand width of an instruction, either a single byte or a
// 16-bit machine word. All arithmetic wraps at the width, matching the ALU
// of the target CPU.
type Width uint8

const (
    W8 Width = iota
    W16
)

func (self Width) Bits() int {
    if self == W8 {
        return 8
    } else {
        return 16
    }
}

func (self Width) Mask() int64 {
    if self == W8 {
        return 0xff
    } else {
        return 0xffff
    }
}

func (self Width) String() string {
    if self == W8 {
        return "8"
    } else {
        return "16"
    }
}

// Value is an SSA value identity. Values are dense handles allocated by the
// owning Function, either defined by exactly one instruction or pre-seeded
// as a function parameter. The zero value None means "no value".
type Value uint32

const (
    None Value = 0
)

func (self Value) String() string {
    if self == None {
        return "_"
    } else {
        return fmt.Sprintf("%%v%d", uint32(self))
    }
}

type OperandKind uint8

const (
    KindRef OperandKind = iota
    KindImm
)

// Operand is a single instruction operand, either a reference to an SSA
// value or an inlined immediate constant.
type Operand struct {
    K   OperandKind
    V   Value
    Imm int64
}

func Ref(v Value) Operand {
    return Operand { K: KindRef, V: v }
}

func Imm(v int64) Operand {
    return Operand { K: KindImm, Imm: v }
}

func (self Operand) IsRef() bool {
    return self.K == KindRef
}

func (self Operand) IsImm() bool {
    return self.K == KindImm
}

func (self Operand) String() string {
    if self.K == KindImm {
        return fmt.Sprintf("%d", self.Imm)
    } else {
        return self.V.String()
    }
}

// Opcode is the closed instruction set of the IL. The folding evaluator
// matches exhaustively over this enumeration, so extending it without
// updating the evaluator fails loudly rather than silently.
type Opcode uint8

const (
    OpConst Opcode = iota
    OpCopy
    OpAdd
    OpSub
    OpMul
    OpDiv
    OpMod
    OpAnd
    OpOr
    OpXor
    OpShl
    OpShr
    OpNeg
    OpNot
    OpCmpEq
    OpCmpNe
    OpCmpLt
    OpCmpLe
    OpCmpGt
    OpCmpGe
    OpCmpLtU
    OpCmpLeU
    OpCmpGtU
    OpCmpGeU
    OpLoad
    OpStore
    OpCall
    OpIntrinsic
    OpAsm
    OpDebug
    OpBarrier
    OpPhi
    OpJmp
    OpBr
    OpRet
)

var _OpNames = [...]string {
    OpConst     : "const",
    OpCopy      : "copy",
    OpAdd       : "add",
    OpSub       : "sub",
    OpMul       : "mul",
    OpDiv       : "div",
    OpMod       : "mod",
    OpAnd       : "and",
    OpOr        : "or",
    OpXor       : "xor",
    OpShl       : "shl",
    OpShr       : "shr",
    OpNeg       : "neg",
    OpNot       : "not",
    OpCmpEq     : "cmp.eq",
    OpCmpNe     : "cmp.ne",
    OpCmpLt     : "cmp.lt",
    OpCmpLe     : "cmp.le",
    OpCmpGt     : "cmp.gt",
    OpCmpGe     : "cmp.ge",
    OpCmpLtU    : "cmp.ltu",
    OpCmpLeU    : "cmp.leu",
    OpCmpGtU    : "cmp.gtu",
    OpCmpGeU    : "cmp.geu",
    OpLoad      : "load",
    OpStore     : "store",
    OpCall      : "call",
    OpIntrinsic : "intrinsic",
    OpAsm       : "asm",
    OpDebug     : "debug",
    OpBarrier   : "barrier",
    OpPhi       : "phi",
    OpJmp       : "jmp",
    OpBr        : "br",
    OpRet       : "ret",
}

func (self Opcode) String() string {
    if int(self) < len(_OpNames) && _OpNames[self] != "" {
        return _OpNames[self]
    } else {
        return fmt.Sprintf("op_%d", uint8(self))
    }
}

// HasEffects reports whether the opcode has side effects beyond producing
// its result. Instructions with effects are never removed based on
// unused-result reasoning alone. Barrier additionally pins the relative
// order of surrounding effectful instructions against optimizer-level
// reordering; whether the code generator may still reorder around it is the
// code generator's own contract.
func (self Opcode) HasEffects() bool {
    switch self {
        case OpStore, OpCall, OpIntrinsic, OpAsm, OpDebug, OpBarrier : return true
        default                                                     : return false
    }
}

func (self Opcode) IsTerminator() bool {
    switch self {
        case OpJmp, OpBr, OpRet : return true
        default                 : return false
    }
}

func (self Opcode) IsCompare() bool {
    switch self {
        case OpCmpEq, OpCmpNe,
             OpCmpLt, OpCmpLe, OpCmpGt, OpCmpGe,
             OpCmpLtU, OpCmpLeU, OpCmpGtU, OpCmpGeU:
            return true
        default:
            return false
    }
}

// IsFoldable reports whether the opcode belongs to the closed set the
// constant folder may evaluate at compile time.
func (self Opcode) IsFoldable() bool {
    switch self {
        case OpAdd, OpSub, OpMul, OpDiv, OpMod,
             OpAnd, OpOr, OpXor, OpShl, OpShr,
             OpNeg, OpNot:
            return true
        default:
            return self.IsCompare()
    }
}

// Pos is an optional source location carried for diagnostics. It is opaque
// to the optimizer. The zero value means "no location".
type Pos struct {
    File string
    Line int
    Col  int
}

func (self Pos) String() string {
    if self.File == "" {
        return "<unknown>"
    } else {
        return fmt.Sprintf("%s:%d:%d", self.File, self.Line, self.Col)
    }
}

// Instruction is a single IL instruction. It is owned exclusively by one
// BasicBlock. Phi instructions keep a predecessor block per operand in In;
// terminators keep their branch targets in To.
type Instruction struct {
    Op   Opcode
    W    Width
    R    Value
    Args []Operand
    In   []*BasicBlock
    To   []*BasicBlock
    Sym  string
    Src  Pos
}

// Uses returns pointers to every operand so that transforms can rewrite
// them in place. Callers filter for IsRef as needed.
func (self *Instruction) Uses() []*Operand {
    r := make([]*Operand, len(self.Args))
    for i := range self.Args { r[i] = &self.Args[i] }
    return r
}

func (self *Instruction) Result() Value {
    return self.R
}

func (self *Instruction) String() string {
    switch self.Op {
        default: {
            return self.defString()
        }

        /* constants and copies */
        case OpConst : return fmt.Sprintf("%s = const.%s %d", self.R, self.W, self.Args[0].Imm)
        case OpCopy  : return fmt.Sprintf("%s = copy.%s %s", self.R, self.W, self.Args[0])

        /* memory operations */
        case OpLoad  : return fmt.Sprintf("%s = load.%s [%s]", self.R, self.W, self.Args[0])
        case OpStore : return fmt.Sprintf("store.%s %s -> [%s]", self.W, self.Args[0], self.Args[1])

        /* calls and assembly */
        case OpCall      : return self.callString("call")
        case OpIntrinsic : return self.callString("intrinsic")
        case OpAsm       : return fmt.Sprintf("asm %q", self.Sym)
        case OpDebug     : return fmt.Sprintf("debug %q", self.Sym)
        case OpBarrier   : return "barrier"

        /* phi nodes */
        case OpPhi: {
            nb := len(self.Args)
            ret := make([]string, 0, nb)
            for i, v := range self.Args {
                ret = append(ret, fmt.Sprintf("bb_%d: %s", self.In[i].Id, v))
            }
            return fmt.Sprintf("%s = phi.%s (%s)", self.R, self.W, strings.Join(ret, ", "))
        }

        /* terminators */
        case OpJmp: {
            return fmt.Sprintf("jmp bb_%d", self.To[0].Id)
        }
        case OpBr: {
            return fmt.Sprintf("br %s, bb_%d, bb_%d", self.Args[0], self.To[0].Id, self.To[1].Id)
        }
        case OpRet: {
            if len(self.Args) == 0 {
                return "ret"
            } else {
                return fmt.Sprintf("ret %s", self.Args[0])
            }
        }
    }
}

func (self *Instruction) defString() string {
    nb := len(self.Args)
    ret := make([]string, 0, nb)
    for _, v := range self.Args {
        ret = append(ret, v.String())
    }
    return fmt.Sprintf("%s = %s.%s %s", self.R, self.Op, self.W, strings.Join(ret, ", "))
}

func (self *Instruction) callString(kind string) string {
    nb := len(self.Args)
    ret := make([]string, 0, nb)
    for _, v := range self.Args {
        ret = append(ret, v.String())
    }
    if self.R == None {
        return fmt.Sprintf("%s %s(%s)", kind, self.Sym, strings.Join(ret, ", "))
    } else {
        return fmt.Sprintf("%s = %s.%s %s(%s)", self.R, kind, self.W, self.Sym, strings.Join(ret, ", "))
    }
}

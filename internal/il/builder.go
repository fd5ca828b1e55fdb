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
)

// PhiArg is one incoming edge of a phi built by the Builder, keyed by the
// label of the predecessor block.
type PhiArg struct {
    Label string
    Arg   Operand
}

// Builder constructs a Function block by block. The IL generation stage
// and the optimizer tests both use it; labels may be referenced before
// they are defined, branch targets are resolved on Build.
type Builder struct {
    fn     *Function
    cur    *BasicBlock
    labels map[string]*BasicBlock
}

func NewBuilder(id int, name string) *Builder {
    b := &Builder {
        fn     : NewFunction(id, name),
        labels : make(map[string]*BasicBlock),
    }
    b.cur = b.fn.NewBlock()
    return b
}

func (self *Builder) block(label string) *BasicBlock {
    if bb, ok := self.labels[label]; ok {
        return bb
    }
    bb := self.fn.NewBlock()
    self.labels[label] = bb
    return bb
}

func (self *Builder) emit(p *Instruction) *Instruction {
    if self.cur == nil {
        panic("il: instruction emitted after a terminator without a label: " + p.String())
    }
    if self.cur.Term != nil {
        panic("il: block bb_" + fmt.Sprint(self.cur.Id) + " already terminated")
    }
    self.cur.Ins = append(self.cur.Ins, p)
    return p
}

func (self *Builder) term(p *Instruction) {
    if self.cur == nil {
        panic("il: terminator emitted after a terminator without a label: " + p.String())
    }
    self.cur.Term = p
    self.cur = nil
}

func (self *Builder) Param(w Width) Value {
    return self.fn.NewParam(w)
}

// Label switches emission to the named block, creating it on first use.
func (self *Builder) Label(name string) {
    self.cur = self.block(name)
}

func (self *Builder) Const(w Width, v int64) Value {
    r := self.fn.NewValue(w)
    self.emit(&Instruction { Op: OpConst, W: w, R: r, Args: []Operand { Imm(v) } })
    return r
}

func (self *Builder) Copy(w Width, src Operand) Value {
    r := self.fn.NewValue(w)
    self.emit(&Instruction { Op: OpCopy, W: w, R: r, Args: []Operand { src } })
    return r
}

// Emit appends a result-producing instruction with the given operands and
// returns the freshly allocated result value.
func (self *Builder) Emit(op Opcode, w Width, args ...Operand) Value {
    r := self.fn.NewValue(w)
    self.emit(&Instruction { Op: op, W: w, R: r, Args: args })
    return r
}

func (self *Builder) Load(w Width, addr Operand) Value {
    return self.Emit(OpLoad, w, addr)
}

func (self *Builder) Store(w Width, val Operand, addr Operand) {
    self.emit(&Instruction { Op: OpStore, W: w, Args: []Operand { val, addr } })
}

// Call emits a call to sym. A W8/W16 result is allocated unless void is
// requested with hasResult == false.
func (self *Builder) Call(sym string, w Width, hasResult bool, args ...Operand) Value {
    r := None
    if hasResult {
        r = self.fn.NewValue(w)
    }
    self.emit(&Instruction { Op: OpCall, W: w, R: r, Args: args, Sym: sym })
    return r
}

func (self *Builder) Intrinsic(sym string, w Width, args ...Operand) Value {
    r := self.fn.NewValue(w)
    self.emit(&Instruction { Op: OpIntrinsic, W: w, R: r, Args: args, Sym: sym })
    return r
}

func (self *Builder) Asm(text string) {
    self.emit(&Instruction { Op: OpAsm, Sym: text })
}

func (self *Builder) Debug(text string) {
    self.emit(&Instruction { Op: OpDebug, Sym: text })
}

func (self *Builder) Barrier() {
    self.emit(&Instruction { Op: OpBarrier })
}

// Phi emits a phi at the head of the current block with one operand per
// incoming edge.
func (self *Builder) Phi(w Width, args ...PhiArg) Value {
    r := self.fn.NewValue(w)
    p := &Instruction { Op: OpPhi, W: w, R: r }
    for _, a := range args {
        p.Args = append(p.Args, a.Arg)
        p.In = append(p.In, self.block(a.Label))
    }
    self.emit(p)
    return r
}

func (self *Builder) Jmp(label string) {
    self.term(&Instruction { Op: OpJmp, To: []*BasicBlock { self.block(label) } })
}

func (self *Builder) Br(cond Operand, ifTrue string, ifFalse string) {
    self.term(&Instruction {
        Op   : OpBr,
        Args : []Operand { cond },
        To   : []*BasicBlock { self.block(ifTrue), self.block(ifFalse) },
    })
}

func (self *Builder) Ret(args ...Operand) {
    self.term(&Instruction { Op: OpRet, Args: args })
}

// Build finalizes the function: every block must be terminated, and the
// predecessor lists are derived from the terminators.
func (self *Builder) Build() *Function {
    for _, bb := range self.fn.Blocks {
        if bb.Term == nil {
            panic(fmt.Sprintf("il: block bb_%d of %s is not terminated", bb.Id, self.fn.Name))
        }
    }
    self.fn.RecomputePreds()
    return self.fn
}

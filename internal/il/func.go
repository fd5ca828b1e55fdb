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

// Function owns an ordered collection of basic blocks. Blocks[0] is the
// entry block; every other block is either reachable from it or eligible
// for removal. Values are dense handles into the width table, so the
// function acts as the arena for everything it contains.
type Function struct {
    Id     int
    Name   string
    Params []Value
    Blocks []*BasicBlock
    nextv  uint32
    nextb  int
    width  []Width
}

func NewFunction(id int, name string) *Function {
    return &Function {
        Id    : id,
        Name  : name,
        width : make([]Width, 1),
    }
}

// NewValue allocates a fresh SSA value of the given width.
func (self *Function) NewValue(w Width) Value {
    self.nextv++
    self.width = append(self.width, w)
    return Value(self.nextv)
}

// NewParam allocates a fresh value and registers it as a parameter.
// Parameters are implicit definitions with no producing instruction.
func (self *Function) NewParam(w Width) Value {
    v := self.NewValue(w)
    self.Params = append(self.Params, v)
    return v
}

func (self *Function) NewBlock() *BasicBlock {
    bb := &BasicBlock { Id: self.nextb }
    self.nextb++
    self.Blocks = append(self.Blocks, bb)
    return bb
}

func (self *Function) Entry() *BasicBlock {
    if len(self.Blocks) == 0 {
        panic("il: function " + self.Name + " has no entry block")
    }
    return self.Blocks[0]
}

func (self *Function) NumValues() int {
    return int(self.nextv)
}

func (self *Function) WidthOf(v Value) Width {
    return self.width[v]
}

// RecomputePreds rebuilds every predecessor list from the terminators.
func (self *Function) RecomputePreds() {
    for _, bb := range self.Blocks {
        bb.Pred = bb.Pred[:0]
    }
    for _, bb := range self.Blocks {
        for _, s := range bb.Successors() {
            s.Pred = append(s.Pred, bb)
        }
    }
}

func (self *Function) Disassemble() string {
    nb := len(self.Blocks)
    ret := make([]string, 0, nb + 1)

    /* function header with parameters */
    args := make([]string, 0, len(self.Params))
    for _, p := range self.Params {
        args = append(args, fmt.Sprintf("%s: u%s", p, self.WidthOf(p)))
    }
    ret = append(ret, fmt.Sprintf("func %s(%s) {", self.Name, strings.Join(args, ", ")))

    /* dump every block */
    for _, bb := range self.Blocks {
        ret = append(ret, bb.String())
    }

    /* join them together */
    ret = append(ret, "}")
    return strings.Join(ret, "\n")
}

// Module owns an ordered collection of functions. It is produced once by
// IL generation, mutated in place by the optimizer, and consumed once by
// code generation.
type Module struct {
    Name  string
    Funcs []*Function
}

func NewModule(name string) *Module {
    return &Module { Name: name }
}

func (self *Module) AddFunction(fn *Function) {
    self.Funcs = append(self.Funcs, fn)
}

func (self *Module) String() string {
    ret := make([]string, 0, len(self.Funcs))
    for _, fn := range self.Funcs {
        ret = append(ret, fn.Disassemble())
    }
    return strings.Join(ret, "\n\n")
}

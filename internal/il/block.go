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

// BasicBlock is a maximal straight-line instruction sequence. The
// terminator lives in Term, never in Ins; successor edges are derived from
// the terminator, predecessor edges are maintained alongside.
type BasicBlock struct {
    Id   int
    Ins  []*Instruction
    Term *Instruction
    Pred []*BasicBlock
}

// Successors returns the branch targets of the terminator, in branch order.
// The returned slice aliases the terminator and must not be mutated.
func (self *BasicBlock) Successors() []*BasicBlock {
    if self.Term == nil {
        return nil
    } else {
        return self.Term.To
    }
}

// Phis returns the leading run of phi instructions of the block.
func (self *BasicBlock) Phis() []*Instruction {
    for i, v := range self.Ins {
        if v.Op != OpPhi {
            return self.Ins[:i]
        }
    }
    return self.Ins
}

// RemovePred drops bb from the predecessor list and prunes the matching
// edge of every phi in the block.
func (self *BasicBlock) RemovePred(bb *BasicBlock) {
    pred := self.Pred[:0]
    for _, p := range self.Pred {
        if p != bb {
            pred = append(pred, p)
        }
    }
    self.Pred = pred

    /* prune the phi edges coming from bb */
    for _, p := range self.Phis() {
        args := p.Args[:0]
        in := p.In[:0]
        for i, src := range p.In {
            if src != bb {
                in = append(in, src)
                args = append(args, p.Args[i])
            }
        }
        p.Args = args
        p.In = in
    }
}

func (self *BasicBlock) String() string {
    buf := make([]string, 0, len(self.Ins) + 2)
    buf = append(buf, fmt.Sprintf("bb_%d:", self.Id))
    for _, v := range self.Ins {
        buf = append(buf, "    " + v.String())
    }
    if self.Term != nil {
        buf = append(buf, "    " + self.Term.String())
    }
    return strings.Join(buf, "\n")
}

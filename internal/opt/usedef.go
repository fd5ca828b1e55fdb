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

package opt

import (
    `fmt`

    `github.com/c65lang/c65/internal/il`
)

// Definition records the single definition point of an SSA value. Ins is
// nil for function parameters, which are implicit definitions attributed
// to the entry block.
type Definition struct {
    V   il.Value
    Ins *il.Instruction
    Blk *il.BasicBlock
}

// Use records one operand occurrence of a value. For phi operands Blk is
// the predecessor block the value flows in from, because control-flow-wise
// that is where the value is read.
type Use struct {
    V   il.Value
    Ins *il.Instruction
    Blk *il.BasicBlock
    Idx int
}

// UseDefInfo is the result of the use-def analysis: the definition and all
// uses of every value of one function. It is a transient snapshot,
// recomputed by the manager whenever a transform invalidates it.
type UseDefInfo struct {
    defs map[il.Value]Definition
    uses map[il.Value][]Use
}

func (self *UseDefInfo) Definition(v il.Value) (Definition, bool) {
    d, ok := self.defs[v]
    return d, ok
}

func (self *UseDefInfo) Uses(v il.Value) []Use {
    return self.uses[v]
}

func (self *UseDefInfo) UseCount(v il.Value) int {
    return len(self.uses[v])
}

func (self *UseDefInfo) IsUnused(v il.Value) bool {
    return len(self.uses[v]) == 0
}

func (self *UseDefInfo) HasSingleUse(v il.Value) bool {
    return len(self.uses[v]) == 1
}

// DefsInBlock returns every value defined inside bb, parameters included
// for the entry block.
func (self *UseDefInfo) DefsInBlock(bb *il.BasicBlock) []Definition {
    var ret []Definition
    for _, d := range self.defs {
        if d.Blk == bb {
            ret = append(ret, d)
        }
    }
    return ret
}

// UsesInBlock returns every use attributed to bb.
func (self *UseDefInfo) UsesInBlock(bb *il.BasicBlock) []Use {
    var ret []Use
    for _, us := range self.uses {
        for _, u := range us {
            if u.Blk == bb {
                ret = append(ret, u)
            }
        }
    }
    return ret
}

func (self *UseDefInfo) define(v il.Value, p *il.Instruction, bb *il.BasicBlock) {
    if d, ok := self.defs[v]; ok {
        panic(fmt.Sprintf("usedef: SSA violation: %s defined by %q and %q", v, defrepr(d.Ins), defrepr(p)))
    }
    self.defs[v] = Definition { V: v, Ins: p, Blk: bb }
}

func defrepr(p *il.Instruction) string {
    if p == nil {
        return "<parameter>"
    } else {
        return p.String()
    }
}

// UseDef is the use-def analysis pass. A single sweep in program order
// records every definition and operand occurrence; a second definition of
// any value is a fatal SSA violation.
type UseDef struct{}

func (UseDef) Kind() Kind {
    return KindAnalysis
}

func (UseDef) Meta() Meta {
    return Meta { Name: AnalysisUseDef }
}

func (UseDef) Analyze(fn *il.Function) interface{} {
    info := &UseDefInfo {
        defs: make(map[il.Value]Definition, fn.NumValues()),
        uses: make(map[il.Value][]Use, fn.NumValues()),
    }

    /* parameters are implicit definitions in the entry block */
    for _, p := range fn.Params {
        info.define(p, nil, fn.Entry())
    }

    /* one sweep over every instruction in program order */
    for _, bb := range fn.Blocks {
        ins := make([]*il.Instruction, 0, len(bb.Ins) + 1)
        ins = append(ins, bb.Ins...)
        if bb.Term != nil {
            ins = append(ins, bb.Term)
        }
        for _, p := range ins {
            if p.R != il.None {
                info.define(p.R, p, bb)
            }
            for i, u := range p.Args {
                if !u.IsRef() {
                    continue
                }

                /* phi inputs are read at the end of the predecessor */
                blk := bb
                if p.Op == il.OpPhi {
                    blk = p.In[i]
                }
                info.uses[u.V] = append(info.uses[u.V], Use { V: u.V, Ins: p, Blk: blk, Idx: i })
            }
        }
    }
    return info
}

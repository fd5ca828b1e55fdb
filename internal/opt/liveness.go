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
    `github.com/c65lang/c65/internal/il`
)

// ValueSet is a set of SSA values.
type ValueSet map[il.Value]struct{}

func (self ValueSet) Has(v il.Value) bool {
    _, ok := self[v]
    return ok
}

func (self ValueSet) Add(v il.Value) {
    self[v] = struct{}{}
}

func (self ValueSet) Clone() ValueSet {
    r := make(ValueSet, len(self))
    for v := range self {
        r[v] = struct{}{}
    }
    return r
}

func (self ValueSet) Equal(other ValueSet) bool {
    if len(self) != len(other) {
        return false
    }
    for v := range self {
        if !other.Has(v) {
            return false
        }
    }
    return true
}

// BlockLiveness is the dataflow result for one block.
type BlockLiveness struct {
    LiveIn  ValueSet
    LiveOut ValueSet
}

// LivenessInfo answers which values are live at each program point of a
// function. Rounds records how many full dataflow sweeps the fixpoint
// took, which the tests bound.
type LivenessInfo struct {
    Rounds int
    blocks map[int]*BlockLiveness
    before map[*il.Instruction]ValueSet
    after  map[*il.Instruction]ValueSet
}

func (self *LivenessInfo) BlockLiveness(bb *il.BasicBlock) *BlockLiveness {
    return self.blocks[bb.Id]
}

// IsLiveAt reports whether v is live immediately before p executes.
func (self *LivenessInfo) IsLiveAt(v il.Value, p *il.Instruction) bool {
    return self.before[p].Has(v)
}

// IsLiveAfter reports whether v is live immediately after p executes.
func (self *LivenessInfo) IsLiveAfter(v il.Value, p *il.Instruction) bool {
    return self.after[p].Has(v)
}

// LiveAt returns the live-before set of p. The set is owned by the
// analysis and must not be mutated.
func (self *LivenessInfo) LiveAt(p *il.Instruction) ValueSet {
    return self.before[p]
}

// LiveCount is the register-pressure figure the code generator keys
// spill decisions on.
func (self *LivenessInfo) LiveCount(p *il.Instruction) int {
    return len(self.before[p])
}

// Liveness is the backward dataflow liveness analysis.
//
//     LiveOut(B) = union of LiveIn(S) for every successor S of B
//     LiveIn(B)  = Use(B) | (LiveOut(B) - Def(B))
//
// Per-block sets move monotonically upward in a powerset lattice over the
// finite value space, so the fixpoint loop terminates; the iteration order
// only affects how fast.
type Liveness struct{}

func (Liveness) Kind() Kind {
    return KindAnalysis
}

func (Liveness) Meta() Meta {
    return Meta { Name: AnalysisLiveness }
}

func (Liveness) Analyze(fn *il.Function) interface{} {
    rpo := il.ReversePostOrder(fn)
    def := make(map[int]ValueSet, len(rpo))
    use := make(map[int]ValueSet, len(rpo))
    out := make(map[int]ValueSet, len(rpo))

    /* per-block Def and upward-exposed Use in one forward sweep; phi
     * inputs are charged to the edge, not the block, so they land in the
     * predecessor's LiveOut below */
    for _, bb := range rpo {
        d := make(ValueSet)
        u := make(ValueSet)
        ins := blockins(bb)
        for _, p := range ins {
            if p.Op != il.OpPhi {
                for _, a := range p.Args {
                    if a.IsRef() && !d.Has(a.V) {
                        u.Add(a.V)
                    }
                }
            }
            if p.R != il.None {
                d.Add(p.R)
            }
        }
        def[bb.Id] = d
        use[bb.Id] = u
        out[bb.Id] = make(ValueSet)
    }

    /* phi inputs flowing out of each predecessor */
    flow := make(map[int]ValueSet, len(rpo))
    for _, bb := range rpo {
        for _, p := range bb.Phis() {
            for i, a := range p.Args {
                if a.IsRef() {
                    f := flow[p.In[i].Id]
                    if f == nil {
                        f = make(ValueSet)
                        flow[p.In[i].Id] = f
                    }
                    f.Add(a.V)
                }
            }
        }
    }

    livein := func(id int) ValueSet {
        r := use[id].Clone()
        for v := range out[id] {
            if !def[id].Has(v) {
                r.Add(v)
            }
        }
        return r
    }

    /* iterate to fixpoint */
    info := &LivenessInfo {
        blocks: make(map[int]*BlockLiveness, len(rpo)),
        before: make(map[*il.Instruction]ValueSet),
        after:  make(map[*il.Instruction]ValueSet),
    }
    in := make(map[int]ValueSet, len(rpo))
    for _, bb := range rpo {
        in[bb.Id] = livein(bb.Id)
    }
    for {
        info.Rounds++
        done := true
        for _, bb := range rpo {
            o := make(ValueSet)
            for _, s := range bb.Successors() {
                for v := range in[s.Id] {
                    o.Add(v)
                }
            }
            if f := flow[bb.Id]; f != nil {
                for v := range f {
                    o.Add(v)
                }
            }
            if !o.Equal(out[bb.Id]) {
                done = false
                out[bb.Id] = o
                in[bb.Id] = livein(bb.Id)
            }
        }
        if done {
            break
        }
    }

    /* derive instruction-granular sets with one backward sweep per block */
    for _, bb := range rpo {
        info.blocks[bb.Id] = &BlockLiveness {
            LiveIn  : in[bb.Id],
            LiveOut : out[bb.Id],
        }
        cur := out[bb.Id].Clone()
        ins := blockins(bb)
        for i := len(ins) - 1; i >= 0; i-- {
            p := ins[i]
            info.after[p] = cur.Clone()
            if p.R != il.None {
                delete(cur, p.R)
            }
            if p.Op != il.OpPhi {
                for _, a := range p.Args {
                    if a.IsRef() {
                        cur.Add(a.V)
                    }
                }
            }
            info.before[p] = cur.Clone()
        }
    }
    return info
}

func blockins(bb *il.BasicBlock) []*il.Instruction {
    ins := make([]*il.Instruction, 0, len(bb.Ins) + 1)
    ins = append(ins, bb.Ins...)
    if bb.Term != nil {
        ins = append(ins, bb.Term)
    }
    return ins
}

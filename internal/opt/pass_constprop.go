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
    `github.com/c65lang/c65/internal/opts`
    `github.com/oleiade/lane`
)

/* three-state lattice per value; states only ever move downward
 * (Top -> Const -> Bottom), which bounds the worklist iteration */
type _LatState uint8

const (
    _Top _LatState = iota
    _Const
    _Bottom
)

type _Lattice struct {
    s _LatState
    v int64
}

func (self _Lattice) String() string {
    switch self.s {
        case _Top    : return "⊤"
        case _Const  : return fmt.Sprintf("const(%d)", self.v)
        case _Bottom : return "⊥"
        default      : return "?"
    }
}

func latTop() _Lattice           { return _Lattice { s: _Top } }
func latConst(v int64) _Lattice  { return _Lattice { s: _Const, v: v } }
func latBottom() _Lattice        { return _Lattice { s: _Bottom } }

// ConstProp is a sparse conditional-style constant propagation: a worklist
// re-evaluates only the users of values whose lattice state changed, then a
// final sweep inlines every proven-constant operand as an immediate. The
// arithmetic simplification itself is left to ConstFold, which the pipeline
// runs right after; the two passes are designed to be iterated together.
type ConstProp struct{}

func (ConstProp) Kind() Kind {
    return KindTransform
}

func (ConstProp) Meta() Meta {
    return Meta {
        Name        : opts.PassConstProp,
        Requires    : []string { AnalysisUseDef },
        Invalidates : []Invalidation {
            InvalidateAnalysis(AnalysisUseDef),
        },
    }
}

func (self ConstProp) Transform(pm *PassManager, fn *il.Function) bool {
    ud := pm.UseDef(fn)
    lat := make(map[il.Value]_Lattice, fn.NumValues())
    stats := pm.Stats().Of(opts.PassConstProp)

    /* parameters can hold anything */
    for _, p := range fn.Params {
        lat[p] = latBottom()
    }

    /* initial states: constants are known, everything else starts Top.
     * Instructions computed entirely from immediate operands seed the
     * worklist as well, so chains rooted in already-inlined immediates
     * resolve in the same run as chains rooted in const instructions. */
    q := lane.NewQueue()
    for _, bb := range fn.Blocks {
        for _, p := range bb.Ins {
            switch {
                case p.Op == il.OpConst: {
                    lat[p.R] = latConst(wrap(p.W, p.Args[0].Imm))
                    for _, u := range ud.Uses(p.R) {
                        q.Enqueue(u.Ins)
                    }
                }
                case p.R != il.None && allImmediate(p): {
                    q.Enqueue(p)
                }
            }
        }
    }

    /* drain the worklist */
    for !q.Empty() {
        p := q.Dequeue().(*il.Instruction)
        if p.R == il.None {
            continue
        }

        /* re-evaluate from the operands' current states */
        next := self.evaluate(p, lat)
        prev := lat[p.R]
        if next.s == prev.s && next.v == prev.v {
            continue
        }

        /* downward moves only; a diverging "constant" is non-constant */
        if next.s == _Const && prev.s == _Const {
            next = latBottom()
        }
        if next.s < prev.s {
            continue
        }

        /* changed: propagate to every user */
        lat[p.R] = next
        for _, u := range ud.Uses(p.R) {
            q.Enqueue(u.Ins)
        }
    }

    /* final sweep: inline proven constants as immediate operands. Only
     * computing operands take immediates; ret, store and call operands
     * keep their refs, the code generator has to materialize those values
     * into machine registers regardless */
    changed := false
    for _, bb := range fn.Blocks {
        for _, p := range blockins(bb) {
            if !inlinable(p.Op) {
                continue
            }
            for _, u := range p.Uses() {
                if !u.IsRef() {
                    continue
                }
                if cc, ok := lat[u.V]; ok && cc.s == _Const {
                    *u = il.Imm(cc.v)
                    changed = true
                    stats.UsesReplaced++
                }
            }
        }
    }
    return changed
}

func allImmediate(p *il.Instruction) bool {
    if len(p.Args) == 0 {
        return false
    }
    for _, a := range p.Args {
        if a.IsRef() {
            return false
        }
    }
    return true
}

func inlinable(op il.Opcode) bool {
    switch op {
        case il.OpCopy, il.OpPhi, il.OpBr : return true
        default                           : return op.IsFoldable()
    }
}

// evaluate computes the lattice state of p's result from its operands:
// any Bottom operand forces Bottom, any Top operand keeps Top, and an
// all-constant instruction folds with target semantics or drops to Bottom
// when unevaluable.
func (self ConstProp) evaluate(p *il.Instruction, lat map[il.Value]_Lattice) _Lattice {
    switch {
        default: {
            /* loads, calls and other opaque results */
            return latBottom()
        }

        case p.Op == il.OpConst: {
            return latConst(wrap(p.W, p.Args[0].Imm))
        }

        case p.Op == il.OpCopy: {
            return self.operand(p.Args[0], lat)
        }

        /* a phi is constant iff all its inputs agree on one constant */
        case p.Op == il.OpPhi: {
            var first bool = true
            var cdata _Lattice
            for _, a := range p.Args {
                cc := self.operand(a, lat)
                switch {
                    case cc.s == _Bottom                       : return latBottom()
                    case cc.s == _Top                          : return latTop()
                    case first                                 : cdata = cc; first = false
                    case cdata.v != cc.v                       : return latBottom()
                }
            }
            if first {
                return latTop()
            }
            return cdata
        }

        case p.Op.IsFoldable(): {
            args := make([]int64, len(p.Args))
            for i, a := range p.Args {
                cc := self.operand(a, lat)
                switch cc.s {
                    case _Bottom : return latBottom()
                    case _Top    : return latTop()
                    default      : args[i] = cc.v
                }
            }
            if r, ok := evalInstr(p, args); ok {
                return latConst(wrap(p.W, r))
            }
            return latBottom()
        }
    }
}

func (self ConstProp) operand(a il.Operand, lat map[il.Value]_Lattice) _Lattice {
    if a.IsImm() {
        return latConst(a.Imm)
    }
    return lat[a.V]
}

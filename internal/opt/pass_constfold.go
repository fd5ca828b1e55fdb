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
    `github.com/c65lang/c65/internal/opts`
)

// ConstFold evaluates instructions whose operands are all compile-time
// constants, with exact 8/16-bit wraparound semantics. Folding iterates to
// fixpoint within the pass since every fold may expose another; the loop
// terminates because each round strictly shrinks the set of non-constant
// instructions. Constant branch conditions reduce br to jmp, which is why
// the pass invalidates the CFG-dependent analyses.
type ConstFold struct{}

func (ConstFold) Kind() Kind {
    return KindTransform
}

func (ConstFold) Meta() Meta {
    return Meta {
        Name        : opts.PassConstFold,
        Invalidates : []Invalidation {
            InvalidateAnalysis(AnalysisUseDef),
            InvalidateCFG(),
        },
    }
}

/* rewrite p into a constant definition of the same result value */
func foldto(p *il.Instruction, v int64) {
    p.Op = il.OpConst
    p.Args = []il.Operand { il.Imm(wrap(p.W, v)) }
    p.In = nil
}

/* rewrite p into a copy of one of its own operands */
func foldcopy(p *il.Instruction, src il.Operand) {
    p.Op = il.OpCopy
    p.Args = []il.Operand { src }
    p.In = nil
}

func (self ConstFold) Transform(pm *PassManager, fn *il.Function) bool {
    done := false
    changed := false
    stats := pm.Stats().Of(opts.PassConstFold)
    consts := make(map[il.Value]int64, fn.NumValues())

    /* constant operand resolver */
    resolve := func(a il.Operand) (int64, bool) {
        if a.IsImm() {
            return a.Imm, true
        }
        v, ok := consts[a.V]
        return v, ok
    }

    /* fold until no modifications were made */
    for !done {
        done = true
        for _, bb := range il.ReversePostOrder(fn) {
            for _, p := range bb.Ins {
                switch {
                    case p.Op == il.OpConst: {
                        consts[p.R] = wrap(p.W, p.Args[0].Imm)
                    }

                    case p.Op == il.OpCopy: {
                        if v, ok := resolve(p.Args[0]); ok {
                            if _, seen := consts[p.R]; !seen {
                                done = false
                                consts[p.R] = wrap(p.W, v)
                            }
                        }
                    }

                    case p.Op.IsFoldable() && p.R != il.None: {
                        if self.foldInstr(p, resolve, consts, stats) {
                            done = false
                            changed = true
                        }
                    }
                }
            }

            /* a constant branch condition selects its target statically */
            if t := bb.Term; t != nil && t.Op == il.OpBr {
                if v, ok := resolve(t.Args[0]); ok {
                    taken, dead := t.To[0], t.To[1]
                    if v == 0 {
                        taken, dead = dead, taken
                    }
                    t.Op = il.OpJmp
                    t.Args = nil
                    t.To = []*il.BasicBlock { taken }
                    if dead != taken {
                        dead.RemovePred(bb)
                    }
                    done = false
                    changed = true
                    stats.Fold(il.OpBr)
                }
            }
        }
    }
    return changed
}

func (self ConstFold) foldInstr(p *il.Instruction, resolve func(il.Operand) (int64, bool), consts map[il.Value]int64, stats *PassStats) bool {
    op := p.Op
    args := make([]int64, len(p.Args))
    known := 0

    /* gather the constant operands */
    last := -1
    for i, a := range p.Args {
        if v, ok := resolve(a); ok {
            known++
            args[i] = v
        } else {
            last = i
        }
    }

    /* all operands known: evaluate with target semantics */
    if known == len(p.Args) {
        if r, ok := evalInstr(p, args); ok {
            foldto(p, r)
            consts[p.R] = wrap(p.W, r)
            stats.Fold(op)
            return true
        }
        return false
    }

    /* one operand known: algebraic identities still apply */
    if known == len(p.Args) - 1 && len(p.Args) == 2 {
        return self.foldIdentity(p, args, last, consts, stats)
    }
    return false
}

/* foldIdentity simplifies binary expressions where only one operand is a
 * known constant: x+0, x-0, x*1, x*0, x&0, x|0, x^0, x<<0, x>>0 */
func (self ConstFold) foldIdentity(p *il.Instruction, args []int64, unknown int, consts map[il.Value]int64, stats *PassStats) bool {
    op := p.Op
    c := wrap(p.W, args[1 - unknown])
    x := p.Args[unknown]

    switch p.Op {
        default: {
            return false
        }

        case il.OpAdd, il.OpOr, il.OpXor: {
            if c != 0 {
                return false
            }
            foldcopy(p, x)
        }

        case il.OpSub, il.OpShl, il.OpShr: {
            /* only an identity when the constant is on the right */
            if c != 0 || unknown != 0 {
                return false
            }
            foldcopy(p, x)
        }

        case il.OpMul: {
            if c == 0 {
                foldto(p, 0)
                consts[p.R] = 0
            } else if c == 1 {
                foldcopy(p, x)
            } else {
                return false
            }
        }

        case il.OpAnd: {
            if c == 0 {
                foldto(p, 0)
                consts[p.R] = 0
            } else if c == p.W.Mask() {
                foldcopy(p, x)
            } else {
                return false
            }
        }
    }

    stats.Fold(op)
    return true
}

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
    `testing`

    `github.com/brianvoe/gofakeit/v6`
    `github.com/c65lang/c65/internal/il`
    `github.com/c65lang/c65/internal/opts`
    `github.com/stretchr/testify/assert`
    `github.com/stretchr/testify/require`
)

func TestOptimize_PropagationFoldingComposition(t *testing.T) {
    b := il.NewBuilder(0, "compose")
    v1 := b.Const(il.W8, 10)
    v2 := b.Const(il.W8, 5)
    v3 := b.Emit(il.OpAdd, il.W8, il.Ref(v1), il.Ref(v2))
    b.Ret(il.Ref(v3))
    fn := b.Build()
    m := il.NewModule("t")
    m.AddFunction(fn)

    res, err := Optimize(m, opts.Options { Level: opts.O2, ValidateAfterTransform: true })
    require.NoError(t, err)
    assert.True(t, res.Modified)

    /* everything collapses into the constant and its return */
    ins := fn.Entry().Ins
    require.Len(t, ins, 1)
    assert.Equal(t, il.OpConst, ins[0].Op)
    assert.Equal(t, v3, ins[0].R)
    assert.Equal(t, int64(15), ins[0].Args[0].Imm)
    assert.Equal(t, il.Ref(v3), fn.Entry().Term.Args[0])
}

func TestOptimize_Idempotence(t *testing.T) {
    b := il.NewBuilder(0, "twice")
    p := b.Param(il.W8)
    v1 := b.Const(il.W8, 4)
    v2 := b.Emit(il.OpMul, il.W8, il.Ref(v1), il.Imm(2))
    v3 := b.Emit(il.OpAdd, il.W8, il.Ref(p), il.Ref(v2))
    v4 := b.Copy(il.W8, il.Ref(v3))
    b.Store(il.W8, il.Ref(v4), il.Imm(0xd020))
    b.Ret(il.Ref(v4))
    fn := b.Build()
    m := il.NewModule("t")
    m.AddFunction(fn)

    res, err := Optimize(m, opts.Options { Level: opts.O2, ValidateAfterTransform: true })
    require.NoError(t, err)
    assert.True(t, res.Modified)

    /* the second run finds nothing left to do */
    res, err = Optimize(m, opts.Options { Level: opts.O2, ValidateAfterTransform: true })
    require.NoError(t, err)
    assert.False(t, res.Modified)
}

func TestOptimize_ImmediateRootedChain(t *testing.T) {
    b := il.NewBuilder(0, "immroot")
    p := b.Param(il.W8)
    v1 := b.Emit(il.OpShl, il.W8, il.Imm(110), il.Imm(4))
    v2 := b.Emit(il.OpOr, il.W8, il.Ref(v1), il.Ref(p))
    b.Ret(il.Ref(v2))
    fn := b.Build()
    m := il.NewModule("t")
    m.AddFunction(fn)

    res, err := Optimize(m, opts.Options { Level: opts.O2, ValidateAfterTransform: true })
    require.NoError(t, err)
    assert.True(t, res.Modified)

    /* one run settles it: the shift folds away entirely and the or
     * takes the evaluated immediate */
    ins := fn.Entry().Ins
    require.Len(t, ins, 1)
    assert.Equal(t, il.OpOr, ins[0].Op)
    assert.Equal(t, v2, ins[0].R)
    assert.Equal(t, il.Imm(224), ins[0].Args[0])
    assert.Equal(t, il.Ref(p), ins[0].Args[1])

    res, err = Optimize(m, opts.Options { Level: opts.O2, ValidateAfterTransform: true })
    require.NoError(t, err)
    assert.False(t, res.Modified)
}

func TestOptimize_O0IsANop(t *testing.T) {
    b := il.NewBuilder(0, "untouched")
    v1 := b.Const(il.W8, 1)
    b.Emit(il.OpAdd, il.W8, il.Ref(v1), il.Ref(v1))
    b.Ret()
    fn := b.Build()
    m := il.NewModule("t")
    m.AddFunction(fn)

    res, err := Optimize(m, opts.Options { Level: opts.O0 })
    require.NoError(t, err)
    assert.False(t, res.Modified)
    assert.Len(t, fn.Entry().Ins, 2)
}

func TestOptimize_OverrideEnables(t *testing.T) {
    b := il.NewBuilder(0, "forced")
    b.Const(il.W8, 1)
    b.Ret()
    fn := b.Build()
    m := il.NewModule("t")
    m.AddFunction(fn)

    /* dce alone, forced on top of O0 */
    res, err := Optimize(m, opts.Options { Level: opts.O0, EnableDCE: opts.Bool(true) })
    require.NoError(t, err)
    assert.True(t, res.Modified)
    assert.Empty(t, fn.Entry().Ins)
}

func TestOptimize_OverrideDisables(t *testing.T) {
    b := il.NewBuilder(0, "nofold")
    v1 := b.Const(il.W8, 10)
    v2 := b.Const(il.W8, 5)
    v3 := b.Emit(il.OpAdd, il.W8, il.Ref(v1), il.Ref(v2))
    b.Ret(il.Ref(v3))
    fn := b.Build()
    m := il.NewModule("t")
    m.AddFunction(fn)

    res, err := Optimize(m, opts.Options { Level: opts.O2, EnableConstFold: opts.Bool(false) })
    require.NoError(t, err)
    assert.True(t, res.Modified)

    /* the add keeps its opcode, only propagation and cleanup happened */
    ins := fn.Entry().Ins
    require.Len(t, ins, 1)
    assert.Equal(t, il.OpAdd, ins[0].Op)
    assert.Equal(t, il.Imm(10), ins[0].Args[0])
    assert.Equal(t, il.Imm(5), ins[0].Args[1])
}

func TestOptimize_MultiFunction(t *testing.T) {
    m := il.NewModule("multi")
    fns := make([]*il.Function, 3)
    for i := range fns {
        b := il.NewBuilder(i, fmt.Sprintf("f%d", i))
        v := b.Const(il.W8, int64(i))
        b.Emit(il.OpAdd, il.W8, il.Ref(v), il.Ref(v))
        b.Ret()
        fns[i] = b.Build()
        m.AddFunction(fns[i])
    }

    res, err := Optimize(m, opts.Options { Level: opts.O2, ValidateAfterTransform: true })
    require.NoError(t, err)
    assert.True(t, res.Modified)
    for _, fn := range fns {
        assert.Empty(t, fn.Entry().Ins)
    }
}

/* random straight-line programs over the foldable opcodes */
func fuzzfn(id int, nins int) *il.Function {
    binops := []il.Opcode {
        il.OpAdd, il.OpSub, il.OpMul, il.OpDiv, il.OpMod,
        il.OpAnd, il.OpOr, il.OpXor, il.OpShl, il.OpShr,
        il.OpCmpEq, il.OpCmpLt, il.OpCmpLtU,
    }

    b := il.NewBuilder(id, fmt.Sprintf("fuzz%d", id))
    vals := []il.Value { b.Param(il.W8), b.Const(il.W8, int64(gofakeit.Number(0, 255))) }
    operand := func() il.Operand {
        if gofakeit.Bool() {
            return il.Imm(int64(gofakeit.Number(0, 255)))
        }
        return il.Ref(vals[gofakeit.Number(0, len(vals) - 1)])
    }

    for i := 0; i < nins; i++ {
        switch gofakeit.Number(0, 9) {
            default: {
                op := binops[gofakeit.Number(0, len(binops) - 1)]
                vals = append(vals, b.Emit(op, il.W8, operand(), operand()))
            }
            case 7: {
                vals = append(vals, b.Copy(il.W8, operand()))
            }
            case 8: {
                vals = append(vals, b.Emit(il.OpNeg, il.W8, operand()))
            }
            case 9: {
                b.Store(il.W8, operand(), il.Imm(int64(gofakeit.Number(0x2000, 0x3fff))))
            }
        }
    }
    b.Ret(il.Ref(vals[len(vals) - 1]))
    return b.Build()
}

func TestOptimize_RandomPrograms(t *testing.T) {
    gofakeit.Seed(0x6502)
    for i := 0; i < 50; i++ {
        fn := fuzzfn(i, gofakeit.Number(5, 40))
        m := il.NewModule("fuzz")
        m.AddFunction(fn)

        /* every run must terminate, keep the IR valid, and settle */
        _, err := Optimize(m, opts.Options { Level: opts.O2, ValidateAfterTransform: true })
        require.NoError(t, err)
        require.NoError(t, il.Verify(fn))

        res, err := Optimize(m, opts.Options { Level: opts.O2, ValidateAfterTransform: true })
        require.NoError(t, err)
        assert.False(t, res.Modified, "function %d changed on the second run", i)
    }
}

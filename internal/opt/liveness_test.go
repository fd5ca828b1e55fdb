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
    `testing`

    `github.com/c65lang/c65/internal/il`
    `github.com/stretchr/testify/assert`
    `github.com/stretchr/testify/require`
)

func analyzeLiveness(fn *il.Function) *LivenessInfo {
    return Liveness{}.Analyze(fn).(*LivenessInfo)
}

/* a counting loop:
 *
 *     start: v1 = const 0; jmp head
 *     head:  v2 = phi (start: v1, body: v3); v4 = cmp.ltu v2, 10; br v4, body, exit
 *     body:  v3 = add v2, 1; jmp head
 *     exit:  ret v2
 */
func loopfn(t *testing.T) (*il.Function, il.Value, il.Value, il.Value, il.Value) {
    b := il.NewBuilder(0, "loop")
    b.Jmp("start")
    b.Label("start")
    v1 := b.Const(il.W8, 0)
    b.Jmp("head")
    b.Label("head")
    v2 := b.Phi(il.W8,
        il.PhiArg { Label: "start", Arg: il.Ref(v1) },
        il.PhiArg { Label: "body",  Arg: il.Ref(v1) },
    )
    v4 := b.Emit(il.OpCmpLtU, il.W8, il.Ref(v2), il.Imm(10))
    b.Br(il.Ref(v4), "body", "exit")
    b.Label("body")
    v3 := b.Emit(il.OpAdd, il.W8, il.Ref(v2), il.Imm(1))
    b.Jmp("head")
    b.Label("exit")
    b.Ret(il.Ref(v2))
    fn := b.Build()

    /* patch the back edge; the builder cannot forward-reference a value */
    phi := fn.Blocks[2].Phis()[0]
    phi.Args[1] = il.Ref(v3)
    require.NoError(t, il.Verify(fn))
    return fn, v1, v2, v3, v4
}

func TestLiveness_Loop(t *testing.T) {
    fn, v1, v2, v3, _ := loopfn(t)
    li := analyzeLiveness(fn)

    /* the fixpoint over a single natural loop converges quickly */
    assert.LessOrEqual(t, li.Rounds, len(fn.Blocks))

    start, head, body, exit := fn.Blocks[1], fn.Blocks[2], fn.Blocks[3], fn.Blocks[4]

    /* v1 flows into the phi along the start edge */
    assert.True(t, li.BlockLiveness(start).LiveOut.Has(v1))
    assert.False(t, li.BlockLiveness(start).LiveIn.Has(v1))

    /* v3 flows into the phi along the back edge */
    assert.True(t, li.BlockLiveness(body).LiveOut.Has(v3))
    assert.False(t, li.BlockLiveness(head).LiveIn.Has(v3))

    /* the loop counter stays live around the loop */
    assert.True(t, li.BlockLiveness(head).LiveOut.Has(v2))
    assert.True(t, li.BlockLiveness(body).LiveIn.Has(v2))
    assert.True(t, li.BlockLiveness(exit).LiveIn.Has(v2))
}

func TestLiveness_AtInstructions(t *testing.T) {
    fn, _, v2, _, v4 := loopfn(t)
    li := analyzeLiveness(fn)

    head, exit := fn.Blocks[2], fn.Blocks[4]
    br := head.Term
    ret := exit.Term

    /* the branch reads v4 and v2 survives it */
    assert.True(t, li.IsLiveAt(v4, br))
    assert.True(t, li.IsLiveAt(v2, br))
    assert.False(t, li.IsLiveAfter(v4, ret))
    assert.Equal(t, 2, li.LiveCount(br))

    /* nothing is live past the return */
    assert.True(t, li.IsLiveAt(v2, ret))
    assert.False(t, li.IsLiveAfter(v2, ret))
}

func TestLiveness_StraightLine(t *testing.T) {
    b := il.NewBuilder(0, "line")
    v1 := b.Const(il.W16, 1)
    v2 := b.Emit(il.OpAdd, il.W16, il.Ref(v1), il.Imm(1))
    v3 := b.Emit(il.OpMul, il.W16, il.Ref(v2), il.Ref(v2))
    b.Ret(il.Ref(v3))
    fn := b.Build()
    li := analyzeLiveness(fn)

    assert.Equal(t, 1, li.Rounds)
    ins := fn.Entry().Ins

    /* v1 dies at its only use */
    assert.True(t, li.IsLiveAt(v1, ins[1]))
    assert.False(t, li.IsLiveAfter(v1, ins[1]))
    assert.True(t, li.IsLiveAt(v2, ins[2]))
    assert.False(t, li.IsLiveAfter(v2, ins[2]))
    assert.Empty(t, li.BlockLiveness(fn.Entry()).LiveIn)
    assert.Empty(t, li.BlockLiveness(fn.Entry()).LiveOut)
}

func TestValueSet(t *testing.T) {
    a := make(ValueSet)
    a.Add(1)
    a.Add(2)
    b := a.Clone()
    assert.True(t, a.Equal(b))
    b.Add(3)
    assert.False(t, a.Equal(b))
    assert.True(t, b.Has(3))
    assert.False(t, a.Has(3))
}

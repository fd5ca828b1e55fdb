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
    `testing`

    `github.com/stretchr/testify/assert`
    `github.com/stretchr/testify/require`
)

func TestOpcode_Metadata(t *testing.T) {
    for _, op := range []Opcode { OpStore, OpCall, OpIntrinsic, OpAsm, OpDebug, OpBarrier } {
        assert.True(t, op.HasEffects(), "%s must be side-effecting", op)
        assert.False(t, op.IsFoldable(), "%s must not be foldable", op)
    }
    for _, op := range []Opcode { OpAdd, OpSub, OpMul, OpDiv, OpMod, OpShl, OpShr, OpCmpLt, OpCmpGeU, OpNeg, OpNot } {
        assert.True(t, op.IsFoldable(), "%s must be foldable", op)
        assert.False(t, op.HasEffects(), "%s must not be side-effecting", op)
    }
    for _, op := range []Opcode { OpJmp, OpBr, OpRet } {
        assert.True(t, op.IsTerminator(), "%s must be a terminator", op)
    }
    assert.False(t, OpConst.HasEffects())
    assert.False(t, OpPhi.IsTerminator())
}

func TestWidth_Wrap(t *testing.T) {
    assert.Equal(t, 8, W8.Bits())
    assert.Equal(t, 16, W16.Bits())
    assert.Equal(t, int64(0xff), W8.Mask())
    assert.Equal(t, int64(0xffff), W16.Mask())
}

func TestInstruction_String(t *testing.T) {
    b := NewBuilder(0, "dump")
    v1 := b.Const(W8, 42)
    v2 := b.Emit(OpAdd, W8, Ref(v1), Imm(1))
    b.Store(W8, Ref(v2), Imm(0xd020))
    b.Ret(Ref(v2))
    fn := b.Build()

    ins := fn.Entry().Ins
    require.Len(t, ins, 3)
    assert.Equal(t, "%v1 = const.8 42", ins[0].String())
    assert.Equal(t, "%v2 = add.8 %v1, 1", ins[1].String())
    assert.Equal(t, "store.8 %v2 -> [53280]", ins[2].String())
    assert.Equal(t, "ret %v2", fn.Entry().Term.String())
}

func TestBuilder_BranchTargets(t *testing.T) {
    b := NewBuilder(0, "branchy")
    p := b.Param(W8)
    b.Br(Ref(p), "then", "else")
    b.Label("then")
    b.Jmp("join")
    b.Label("else")
    b.Jmp("join")
    b.Label("join")
    b.Ret()
    fn := b.Build()

    require.Len(t, fn.Blocks, 4)
    entry := fn.Entry()
    require.Len(t, entry.Successors(), 2)
    join := entry.Successors()[0].Successors()[0]
    assert.Len(t, join.Pred, 2)
    assert.Empty(t, entry.Pred)
}

func TestBuilder_PhiEdges(t *testing.T) {
    b := NewBuilder(0, "phi")
    p := b.Param(W8)
    b.Br(Ref(p), "a", "b")
    b.Label("a")
    v1 := b.Const(W8, 1)
    b.Jmp("join")
    b.Label("b")
    v2 := b.Const(W8, 2)
    b.Jmp("join")
    b.Label("join")
    v3 := b.Phi(W8, PhiArg { Label: "a", Arg: Ref(v1) }, PhiArg { Label: "b", Arg: Ref(v2) })
    b.Ret(Ref(v3))
    fn := b.Build()

    require.NoError(t, Verify(fn))
    join := fn.Blocks[3]
    phi := join.Phis()
    require.Len(t, phi, 1)
    assert.Len(t, phi[0].In, 2)
    assert.Equal(t, v3, phi[0].Result())
}

func TestPostOrder_Diamond(t *testing.T) {
    b := NewBuilder(0, "diamond")
    p := b.Param(W8)
    b.Br(Ref(p), "l", "r")
    b.Label("l")
    b.Jmp("join")
    b.Label("r")
    b.Jmp("join")
    b.Label("join")
    b.Ret()
    fn := b.Build()

    var order []int
    PostOrder(fn).ForEach(func(bb *BasicBlock) {
        order = append(order, bb.Id)
    })
    require.Len(t, order, 4)

    /* the entry comes out last in post-order, first in RPO */
    assert.Equal(t, fn.Entry().Id, order[3])
    rpo := ReversePostOrder(fn)
    assert.Equal(t, fn.Entry(), rpo[0])
    assert.Len(t, rpo, 4)
}

func TestPostOrder_SkipsUnreachable(t *testing.T) {
    b := NewBuilder(0, "island")
    b.Jmp("exit")
    b.Label("island")
    b.Jmp("exit")
    b.Label("exit")
    b.Ret()
    fn := b.Build()

    require.Len(t, fn.Blocks, 3)
    assert.Len(t, ReversePostOrder(fn), 2)
}

func TestPostOrder_Loop(t *testing.T) {
    b := NewBuilder(0, "loop")
    p := b.Param(W8)
    b.Jmp("head")
    b.Label("head")
    b.Br(Ref(p), "body", "exit")
    b.Label("body")
    b.Jmp("head")
    b.Label("exit")
    b.Ret()
    fn := b.Build()

    /* the back edge must not trap the iterator */
    rpo := ReversePostOrder(fn)
    require.Len(t, rpo, 4)
    assert.Equal(t, fn.Entry(), rpo[0])
}

func TestBlock_RemovePred(t *testing.T) {
    b := NewBuilder(0, "prune")
    p := b.Param(W8)
    b.Br(Ref(p), "a", "b")
    b.Label("a")
    v1 := b.Const(W8, 1)
    b.Jmp("join")
    b.Label("b")
    v2 := b.Const(W8, 2)
    b.Jmp("join")
    b.Label("join")
    b.Phi(W8, PhiArg { Label: "a", Arg: Ref(v1) }, PhiArg { Label: "b", Arg: Ref(v2) })
    b.Ret()
    fn := b.Build()

    join := fn.Blocks[3]
    a := fn.Blocks[1]
    join.RemovePred(a)
    assert.Len(t, join.Pred, 1)
    phi := join.Phis()[0]
    require.Len(t, phi.Args, 1)
    assert.Equal(t, Ref(v2), phi.Args[0])
}

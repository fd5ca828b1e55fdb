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

/* wrap truncates v to the width, matching the target ALU */
func wrap(w il.Width, v int64) int64 {
    return v & w.Mask()
}

/* signed reinterprets the wrapped value as two's complement */
func signed(w il.Width, v int64) int64 {
    v = wrap(w, v)
    if v > w.Mask() >> 1 {
        return v - w.Mask() - 1
    }
    return v
}

func bool2int(v bool) int64 {
    if v {
        return 1
    } else {
        return 0
    }
}

// evalUnary evaluates a unary opcode over a known constant with exact
// fixed-width semantics. The bool result is false for opcodes outside the
// foldable set; this is a silent skip, never an error.
func evalUnary(op il.Opcode, w il.Width, v int64) (int64, bool) {
    switch op {
        case il.OpNeg : return wrap(w, -wrap(w, v)), true
        case il.OpNot : return wrap(w, ^v), true
        default       : return 0, false
    }
}

// evalBinary evaluates a binary opcode over known constants. Division and
// modulo by zero disqualify the fold; the instruction is left for a later
// stage to diagnose or trap. Shifts by the width or more produce zero.
// Signed comparisons reinterpret the operands as two's complement at the
// instruction width; comparison results are 0 or 1.
func evalBinary(op il.Opcode, w il.Width, x int64, y int64) (int64, bool) {
    a, b := wrap(w, x), wrap(w, y)
    switch op {
        case il.OpAdd : return wrap(w, a + b), true
        case il.OpSub : return wrap(w, a - b), true
        case il.OpMul : return wrap(w, a * b), true
        case il.OpAnd : return a & b, true
        case il.OpOr  : return a | b, true
        case il.OpXor : return a ^ b, true

        /* division by zero is not foldable */
        case il.OpDiv : if b == 0 { return 0, false } else { return a / b, true }
        case il.OpMod : if b == 0 { return 0, false } else { return a % b, true }

        /* shifting everything out leaves zero */
        case il.OpShl : if b >= int64(w.Bits()) { return 0, true } else { return wrap(w, a << uint(b)), true }
        case il.OpShr : if b >= int64(w.Bits()) { return 0, true } else { return a >> uint(b), true }

        /* unsigned comparisons over the wrapped values */
        case il.OpCmpEq  : return bool2int(a == b), true
        case il.OpCmpNe  : return bool2int(a != b), true
        case il.OpCmpLtU : return bool2int(a <  b), true
        case il.OpCmpLeU : return bool2int(a <= b), true
        case il.OpCmpGtU : return bool2int(a >  b), true
        case il.OpCmpGeU : return bool2int(a >= b), true

        /* signed comparisons over the reinterpreted values */
        case il.OpCmpLt : return bool2int(signed(w, x) <  signed(w, y)), true
        case il.OpCmpLe : return bool2int(signed(w, x) <= signed(w, y)), true
        case il.OpCmpGt : return bool2int(signed(w, x) >  signed(w, y)), true
        case il.OpCmpGe : return bool2int(signed(w, x) >= signed(w, y)), true

        /* everything else is not foldable */
        default: return 0, false
    }
}

// evalInstr folds one instruction given the constant values of all its
// operands, dispatching on arity.
func evalInstr(p *il.Instruction, args []int64) (int64, bool) {
    switch len(args) {
        case 1  : return evalUnary(p.Op, p.W, args[0])
        case 2  : return evalBinary(p.Op, p.W, args[0], args[1])
        default : return 0, false
    }
}

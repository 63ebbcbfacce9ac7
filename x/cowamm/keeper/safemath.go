package keeper

import (
	"math/big"

	"cosmossdk.io/math"

	"github.com/paw-chain/cowamm/x/cowamm/types"
)

// SafeMath provides checked unsigned arithmetic for order generation and verification.
// Every operand and result lives in [0, 2^IntWidth); nothing wraps.

// IntWidth is the bit width of the native pool integers.
const IntWidth = 256

// Rounding selects the direction of an inexact division.
type Rounding int

const (
	// RoundDown truncates toward zero (floor for non-negative operands)
	RoundDown Rounding = iota
	// RoundUp rounds toward positive infinity (ceiling)
	RoundUp
)

func (r Rounding) String() string {
	if r == RoundUp {
		return "up"
	}
	return "down"
}

var maxUint = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), IntWidth), big.NewInt(1))

// operand converts a into a fresh big.Int, rejecting values outside the unsigned domain
func operand(a math.Int, op string) (*big.Int, error) {
	if a.IsNil() {
		return nil, types.ErrArithmeticOverflow.Wrapf("%s: uninitialized operand", op)
	}
	if a.IsNegative() {
		return nil, types.ErrArithmeticOverflow.Wrapf("%s: underflow: negative operand %s", op, a)
	}
	return a.BigInt(), nil
}

// result converts a widened intermediate back into the native width
func result(v *big.Int, op string) (math.Int, error) {
	if v.Sign() < 0 {
		return math.Int{}, types.ErrArithmeticOverflow.Wrapf("%s: underflow", op)
	}
	if v.Cmp(maxUint) > 0 {
		return math.Int{}, types.ErrArithmeticOverflow.Wrapf("%s: result exceeds %d bits", op, IntWidth)
	}
	return math.NewIntFromBigInt(v), nil
}

// SafeAdd adds two amounts with overflow checking
func SafeAdd(a, b math.Int) (math.Int, error) {
	x, err := operand(a, "add")
	if err != nil {
		return math.Int{}, err
	}
	y, err := operand(b, "add")
	if err != nil {
		return math.Int{}, err
	}
	return result(x.Add(x, y), "add")
}

// SafeSub subtracts b from a, failing when b > a
func SafeSub(a, b math.Int) (math.Int, error) {
	x, err := operand(a, "sub")
	if err != nil {
		return math.Int{}, err
	}
	y, err := operand(b, "sub")
	if err != nil {
		return math.Int{}, err
	}
	if x.Cmp(y) < 0 {
		return math.Int{}, types.ErrArithmeticOverflow.Wrapf("underflow: cannot subtract %s from %s", b, a)
	}
	return result(x.Sub(x, y), "sub")
}

// SafeMul multiplies two amounts with overflow checking
func SafeMul(a, b math.Int) (math.Int, error) {
	x, err := operand(a, "mul")
	if err != nil {
		return math.Int{}, err
	}
	y, err := operand(b, "mul")
	if err != nil {
		return math.Int{}, err
	}
	return result(x.Mul(x, y), "mul")
}

// SafeQuo returns floor(a / b)
func SafeQuo(a, b math.Int) (math.Int, error) {
	return divide(a, b, RoundDown, "quo")
}

// CeilDiv returns ceil(a / b), i.e. floor((a + b - 1) / b), for b > 0
func CeilDiv(a, b math.Int) (math.Int, error) {
	return divide(a, b, RoundUp, "ceil div")
}

func divide(a, b math.Int, rounding Rounding, op string) (math.Int, error) {
	x, err := operand(a, op)
	if err != nil {
		return math.Int{}, err
	}
	y, err := operand(b, op)
	if err != nil {
		return math.Int{}, err
	}
	if y.Sign() == 0 {
		return math.Int{}, types.ErrDivisionByZero.Wrapf("%s: %s / 0", op, a)
	}
	return result(quo(x, y, rounding), op)
}

// MulDiv computes a*b/c rounded in the given direction. The product is formed at double
// width so the call only fails when the final quotient does not fit.
func MulDiv(a, b, c math.Int, rounding Rounding) (math.Int, error) {
	x, err := operand(a, "mul div")
	if err != nil {
		return math.Int{}, err
	}
	y, err := operand(b, "mul div")
	if err != nil {
		return math.Int{}, err
	}
	z, err := operand(c, "mul div")
	if err != nil {
		return math.Int{}, err
	}
	if z.Sign() == 0 {
		return math.Int{}, types.ErrDivisionByZero.Wrapf("mul div: %s * %s / 0", a, b)
	}
	return result(quo(x.Mul(x, y), z, rounding), "mul div")
}

// quo divides non-negative x by positive y, reusing x for the quotient
func quo(x, y *big.Int, rounding Rounding) *big.Int {
	rem := new(big.Int)
	x.QuoRem(x, y, rem)
	if rounding == RoundUp && rem.Sign() != 0 {
		x.Add(x, big.NewInt(1))
	}
	return x
}

package state

import (
	"fmt"
	"math"
	"math/bits"

	"github.com/holiman/uint256"
)

func checkedAdd(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, ErrOverflow
	}
	return sum, nil
}

func checkedSub(a, b uint64) (uint64, error) {
	diff, borrow := bits.Sub64(a, b, 0)
	if borrow != 0 {
		return 0, ErrUnderflow
	}
	return diff, nil
}

func saturatingAdd(a, b uint64) uint64 {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return math.MaxUint64
	}
	return sum
}

func nextIndex(count uint32) (uint32, error) {
	if count == math.MaxUint32 {
		return 0, ErrOverflow
	}
	return count + 1, nil
}

// mulDiv computes floor(a*b/c) without intermediate overflow.
func mulDiv(a, b, c uint64) (uint64, error) {
	if c == 0 {
		return 0, fmt.Errorf("%w: division by zero", ErrOverflow)
	}
	x := uint256.NewInt(a)
	x.Mul(x, uint256.NewInt(b))
	x.Div(x, uint256.NewInt(c))
	if !x.IsUint64() {
		return 0, ErrOverflow
	}
	return x.Uint64(), nil
}

// settled wraps errors from fund movements that cannot fail unless the
// ledger is already inconsistent.
func settled(err error) error {
	if err == nil {
		return nil
	}
	if Kind(err) == KindInvariant {
		return err
	}
	return fmt.Errorf("%w: %v", ErrInvariantBroken, err)
}

// Package fixed6 implements a decimal fixed-point number with six fractional
// digits. All game quantities that are compared against thresholds (skill,
// exhaustion, hit points, percentages) use it so that 0.3/0.1 == 3 holds.
package fixed6

import (
	"fmt"
	"math"
	"math/bits"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Scale is the number of units in 1.0.
const Scale = 1_000_000

// F is a value scaled by Scale.
type F int64

const (
	Zero F = 0
	One  F = Scale
)

func FromInt(n int) F { return F(int64(n) * Scale) }

// FromFloat rounds f to the nearest representable value. Intended for tests
// and debug tooling only; game content is parsed from decimal strings.
func FromFloat(f float64) F { return F(math.Round(f * Scale)) }

// FromRatio returns num/den rounded half away from zero.
func FromRatio(num, den int64) F {
	if den == 0 {
		panic("fixed6: division by zero")
	}
	return F(mulDivRound(num, Scale, den))
}

// Parse reads a decimal string such as "12", "-0.25" or "1.000001" exactly.
// More than six fractional digits is an error.
func Parse(s string) (F, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("fixed6: empty value")
	}
	neg := false
	switch s[0] {
	case '-':
		neg = true
		s = s[1:]
	case '+':
		s = s[1:]
	}
	intPart, fracPart, _ := strings.Cut(s, ".")
	if intPart == "" && fracPart == "" {
		return 0, fmt.Errorf("fixed6: invalid value %q", s)
	}
	if len(fracPart) > 6 {
		return 0, fmt.Errorf("fixed6: %q has more than 6 fractional digits", s)
	}
	var whole int64
	if intPart != "" {
		v, err := strconv.ParseInt(intPart, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("fixed6: %w", err)
		}
		whole = v
	}
	var frac int64
	if fracPart != "" {
		padded := fracPart + strings.Repeat("0", 6-len(fracPart))
		v, err := strconv.ParseInt(padded, 10, 64)
		if err != nil || v < 0 {
			return 0, fmt.Errorf("fixed6: invalid fraction in %q", s)
		}
		frac = v
	}
	if whole > math.MaxInt64/Scale-1 {
		return 0, fmt.Errorf("fixed6: %q out of range", s)
	}
	v := whole*Scale + frac
	if neg {
		v = -v
	}
	return F(v), nil
}

// MustParse is Parse for constants in code and tests.
func MustParse(s string) F {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

func (a F) Add(b F) F { return a + b }
func (a F) Sub(b F) F { return a - b }
func (a F) Neg() F    { return -a }

// Mul rounds the product half away from zero.
func (a F) Mul(b F) F { return F(mulDivRound(int64(a), int64(b), Scale)) }

// Div rounds the quotient half away from zero.
func (a F) Div(b F) F {
	if b == 0 {
		panic("fixed6: division by zero")
	}
	return F(mulDivRound(int64(a), Scale, int64(b)))
}

func (a F) MulInt(n int) F { return a * F(n) }

func (a F) DivInt(n int) F {
	if n == 0 {
		panic("fixed6: division by zero")
	}
	return F(divRound(int64(a), int64(n)))
}

// Floor rounds toward negative infinity to a whole number.
func (a F) Floor() F {
	q := int64(a) / Scale
	if int64(a)%Scale < 0 {
		q--
	}
	return F(q * Scale)
}

// Ceil rounds toward positive infinity to a whole number.
func (a F) Ceil() F {
	q := int64(a) / Scale
	if int64(a)%Scale > 0 {
		q++
	}
	return F(q * Scale)
}

// Round rounds half away from zero to a whole number.
func (a F) Round() F { return F(divRound(int64(a), Scale) * Scale) }

// Int returns the floor as an int.
func (a F) Int() int { return int(int64(a.Floor()) / Scale) }

// CeilInt returns the ceiling as an int.
func (a F) CeilInt() int { return int(int64(a.Ceil()) / Scale) }

func (a F) Cmp(b F) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func (a F) IsZero() bool { return a == 0 }

func Min(a, b F) F {
	if a < b {
		return a
	}
	return b
}

func Max(a, b F) F {
	if a > b {
		return a
	}
	return b
}

func (a F) Clamp(lo, hi F) F { return Max(lo, Min(hi, a)) }

// Float64 is for display and logging only.
func (a F) Float64() float64 { return float64(a) / Scale }

func (a F) String() string {
	v := int64(a)
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	whole, frac := v/Scale, v%Scale
	if frac == 0 {
		return sign + strconv.FormatInt(whole, 10)
	}
	fs := strings.TrimRight(fmt.Sprintf("%06d", frac), "0")
	return sign + strconv.FormatInt(whole, 10) + "." + fs
}

func (a *F) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("fixed6: line %d: expected scalar", node.Line)
	}
	v, err := Parse(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*a = v
	return nil
}

func (a F) MarshalYAML() (any, error) { return a.String(), nil }

// mulDivRound computes x*y/d with a 128-bit intermediate.
func mulDivRound(x, y, d int64) int64 {
	neg := (x < 0) != (y < 0) != (d < 0)
	ux, uy, ud := abs64(x), abs64(y), abs64(d)
	hi, lo := bits.Mul64(ux, uy)
	if hi >= ud {
		panic("fixed6: overflow")
	}
	q, r := bits.Div64(hi, lo, ud)
	if r >= ud-r {
		q++
	}
	if q > math.MaxInt64 {
		panic("fixed6: overflow")
	}
	if neg {
		return -int64(q)
	}
	return int64(q)
}

func abs64(v int64) uint64 {
	if v < 0 {
		return uint64(-v)
	}
	return uint64(v)
}

func divRound(num, den int64) int64 {
	q := num / den
	r := num % den
	if r == 0 {
		return q
	}
	if r < 0 {
		r = -r
	}
	d := den
	if d < 0 {
		d = -d
	}
	if 2*r >= d {
		if (num < 0) != (den < 0) {
			q--
		} else {
			q++
		}
	}
	return q
}

package engine

import "fmt"

// Gcd 欧几里得算法，结果非负；Gcd(a, 0) = |a|
func Gcd(a, b int) int {
	a, b = abs(a), abs(b)
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// Lcm 最小公倍数，任一参数为 0 时返回 0
func Lcm(a, b int) int {
	if a == 0 || b == 0 {
		return 0
	}
	return abs(a/Gcd(a, b)*b)
}

// SimplifyFraction 约分，符号统一放在分子上
func SimplifyFraction(num, den int) (int, int, error) {
	if den == 0 {
		return 0, 0, fmt.Errorf("%w: %d/0", ErrDivisionByZero, num)
	}
	if den < 0 {
		num, den = -num, -den
	}
	g := Gcd(num, den)
	if g == 0 {
		return num, den, nil
	}
	return num / g, den / g, nil
}

// HasCarry 个位相加是否进位（操作数非负）
func HasCarry(a, b int) bool {
	return a%10+b%10 >= 10
}

// HasBorrow 个位相减是否退位（操作数非负）
func HasBorrow(a, b int) bool {
	return a%10 < b%10
}

// CountCarries 统计逐位相加时产生进位的位数
func CountCarries(a, b int) int {
	n, carry := 0, 0
	for a > 0 || b > 0 {
		if a%10+b%10+carry >= 10 {
			n++
			carry = 1
		} else {
			carry = 0
		}
		a /= 10
		b /= 10
	}
	return n
}

// CountBorrows 统计 a-b（a >= b）逐位相减时的退位次数；a < b 时按 b-a 统计
func CountBorrows(a, b int) int {
	if a < b {
		a, b = b, a
	}
	n, borrow := 0, 0
	for a > 0 || b > 0 {
		if a%10-b%10-borrow < 0 {
			n++
			borrow = 1
		} else {
			borrow = 0
		}
		a /= 10
		b /= 10
	}
	return n
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func pow10(p int) int {
	v := 1
	for i := 0; i < p; i++ {
		v *= 10
	}
	return v
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

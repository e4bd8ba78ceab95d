package vec

import "math"

// FloorDiv делит с округлением вниз (в отличие от оператора /, который округляет к нулю)
func FloorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// FloorMod возвращает остаток, согласованный с FloorDiv (для b > 0 всегда в [0, b))
func FloorMod(a, b int) int {
	m := a % b
	if m != 0 && ((m < 0) != (b < 0)) {
		m += b
	}
	return m
}

// IsFinite проверяет, что число не NaN и не бесконечность
func IsFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

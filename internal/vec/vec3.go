package vec

import "math"

// Vec3 представляет трехмерный вектор с целочисленными координатами.
// Используется и для мировых координат вокселя, и для координат чанка.
type Vec3 struct {
	X int
	Y int
	Z int
}

// Vec3Float представляет трехмерный вектор с плавающими координатами
type Vec3Float struct {
	X float64
	Y float64
	Z float64
}

// Add складывает два вектора
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{
		X: v.X + other.X,
		Y: v.Y + other.Y,
		Z: v.Z + other.Z,
	}
}

// Sub вычитает вектор
func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{
		X: v.X - other.X,
		Y: v.Y - other.Y,
		Z: v.Z - other.Z,
	}
}

// Scale умножает вектор на целое число
func (v Vec3) Scale(k int) Vec3 {
	return Vec3{X: v.X * k, Y: v.Y * k, Z: v.Z * k}
}

// Equals проверяет равенство векторов
func (v Vec3) Equals(other Vec3) bool {
	return v.X == other.X && v.Y == other.Y && v.Z == other.Z
}

// DistanceSq возвращает квадрат евклидова расстояния
func (v Vec3) DistanceSq(other Vec3) int {
	dx := v.X - other.X
	dy := v.Y - other.Y
	dz := v.Z - other.Z
	return dx*dx + dy*dy + dz*dz
}

// Chebyshev возвращает расстояние Чебышёва (максимум по осям)
func (v Vec3) Chebyshev(other Vec3) int {
	return max(abs(v.X-other.X), abs(v.Y-other.Y), abs(v.Z-other.Z))
}

// ToChunkCoords преобразует мировые координаты вокселя в координаты чанка.
// Деление округляется вниз, поэтому -1 попадает в чанк -1.
func (v Vec3) ToChunkCoords(size int) Vec3 {
	return Vec3{
		X: FloorDiv(v.X, size),
		Y: FloorDiv(v.Y, size),
		Z: FloorDiv(v.Z, size),
	}
}

// LocalInChunk возвращает локальные координаты внутри чанка (всегда неотрицательные)
func (v Vec3) LocalInChunk(size int) Vec3 {
	return Vec3{
		X: FloorMod(v.X, size),
		Y: FloorMod(v.Y, size),
		Z: FloorMod(v.Z, size),
	}
}

// ToFloat преобразует в вектор с плавающей точкой
func (v Vec3) ToFloat() Vec3Float {
	return Vec3Float{X: float64(v.X), Y: float64(v.Y), Z: float64(v.Z)}
}

// Floor округляет координаты вниз до целых
func (v Vec3Float) Floor() Vec3 {
	return Vec3{
		X: int(math.Floor(v.X)),
		Y: int(math.Floor(v.Y)),
		Z: int(math.Floor(v.Z)),
	}
}

// IsFinite сообщает, что все компоненты конечны (не NaN и не Inf)
func (v Vec3Float) IsFinite() bool {
	return IsFinite(v.X) && IsFinite(v.Y) && IsFinite(v.Z)
}

// Add складывает два вектора
func (v Vec3Float) Add(other Vec3Float) Vec3Float {
	return Vec3Float{X: v.X + other.X, Y: v.Y + other.Y, Z: v.Z + other.Z}
}

// Mul умножает вектор на скаляр
func (v Vec3Float) Mul(scalar float64) Vec3Float {
	return Vec3Float{X: v.X * scalar, Y: v.Y * scalar, Z: v.Z * scalar}
}

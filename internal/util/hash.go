package util

// Константы splitmix64 для перемешивания координат
const (
	mixK1 uint64 = 0x9E3779B97F4A7C15
	mixK2 uint64 = 0xBF58476D1CE4E5B9
	mixK3 uint64 = 0x94D049BB133111EB
)

// mix64 - финализатор splitmix64 с хорошей лавинностью
func mix64(h uint64) uint64 {
	h ^= h >> 30
	h *= mixK2
	h ^= h >> 27
	h *= mixK3
	h ^= h >> 31
	return h
}

// Hash2 возвращает стабильный хеш для пары целых координат, сида и "соли".
// Соль разделяет независимые решения (постройки, замки) на одних и тех же координатах.
func Hash2(seed int64, x, z int, salt uint64) uint64 {
	h := uint64(seed) + mixK1
	h ^= mix64(uint64(int64(x)) + salt*mixK1)
	h = mix64(h)
	h ^= mix64(uint64(int64(z)) ^ (salt + mixK3))
	return mix64(h)
}

// Hash2Mod возвращает Hash2, приведённый к диапазону [0, mod)
func Hash2Mod(seed int64, x, z int, salt uint64, mod int) int {
	if mod <= 0 {
		return 0
	}
	return int(Hash2(seed, x, z, salt) % uint64(mod))
}

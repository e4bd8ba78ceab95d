package world

import "github.com/annel0/voxel-strike/internal/vec"

// CoordQueue - FIFO-очередь координат чанков с индексом членства.
// Повторная постановка уже стоящей в очереди координаты игнорируется.
type CoordQueue struct {
	items   []vec.Vec3
	head    int
	members map[vec.Vec3]struct{}
}

// NewCoordQueue создаёт пустую очередь
func NewCoordQueue() *CoordQueue {
	return &CoordQueue{members: make(map[vec.Vec3]struct{})}
}

// Push добавляет координату в хвост. Возвращает false, если она уже в очереди.
func (q *CoordQueue) Push(c vec.Vec3) bool {
	if _, ok := q.members[c]; ok {
		return false
	}
	q.members[c] = struct{}{}
	q.items = append(q.items, c)
	return true
}

// Pop извлекает координату из головы очереди
func (q *CoordQueue) Pop() (vec.Vec3, bool) {
	if q.head >= len(q.items) {
		return vec.Vec3{}, false
	}
	c := q.items[q.head]
	q.head++
	delete(q.members, c)

	// Сжимаем массив, когда прочитанная часть стала больше половины
	if q.head > 64 && q.head*2 >= len(q.items) {
		q.items = append(q.items[:0], q.items[q.head:]...)
		q.head = 0
	}
	return c, true
}

// Contains проверяет, стоит ли координата в очереди
func (q *CoordQueue) Contains(c vec.Vec3) bool {
	_, ok := q.members[c]
	return ok
}

// Len возвращает количество элементов в очереди
func (q *CoordQueue) Len() int {
	return len(q.items) - q.head
}

package world

import "errors"

// Нарушения инвариантов. Возникают только при ошибке в учёте жизненного цикла чанков
// и останавливают симуляцию: Engine запоминает первую такую ошибку.
var (
	ErrNonFinite           = errors.New("world: non-finite coordinate or parameter")
	ErrChunkSizeMismatch   = errors.New("world: chunk size mismatch")
	ErrCoordsMismatch      = errors.New("world: chunk coordinates mismatch")
	ErrUnloadedNeighbor    = errors.New("world: collapse reached an unloaded chunk")
	ErrDestinationOccupied = errors.New("world: collapse destination already occupied")
	ErrHalted              = errors.New("world: simulation halted")
)

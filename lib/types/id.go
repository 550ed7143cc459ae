package types

import (
	"sync"

	"github.com/google/uuid"
)

var (
	idMu   sync.Mutex
	lastID Uint128
)

// ID returns a new, time ordered 128-bit identifier suitable for accounts
// and transfers. IDs are never zero and strictly increase within a process.
//
// The value is built from a UUIDv7 (48 bit millisecond timestamp followed by
// random bits) so ids created by different processes still sort roughly by
// creation time.
func ID() Uint128 {
	u := uuid.Must(uuid.NewV7())

	// uuid bytes are big-endian, Uint128 is little-endian
	var id Uint128
	for i := 0; i < Uint128Size; i++ {
		id[i] = u[Uint128Size-1-i]
	}

	idMu.Lock()
	defer idMu.Unlock()
	if compareUint128(id, lastID) <= 0 {
		id = incUint128(lastID)
	}
	lastID = id
	return id
}

// Compare returns -1, 0 or +1 depending on whether u is less than, equal to
// or greater than other
func (u Uint128) Compare(other Uint128) int {
	return compareUint128(u, other)
}

func compareUint128(a, b Uint128) int {
	for i := Uint128Size - 1; i >= 0; i-- {
		switch {
		case a[i] < b[i]:
			return -1
		case a[i] > b[i]:
			return 1
		}
	}
	return 0
}

func incUint128(v Uint128) Uint128 {
	for i := 0; i < Uint128Size; i++ {
		v[i]++
		if v[i] != 0 {
			break
		}
	}
	return v
}

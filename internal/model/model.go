package model

import (
	"strconv"
	"strings"
)

const (
	MainCount  = 5
	BonusCount = 2
	DrawSize   = MainCount + BonusCount

	MainMax  = 50
	BonusMax = 10
)

// Draw is one generated combination: 5 main numbers in ascending order
// followed by 2 bonus numbers in generation order.
// It is comparable and used directly as a map key.
type Draw [DrawSize]uint8

// Main returns the main numbers of the draw.
func (d Draw) Main() []uint8 {
	return d[:MainCount]
}

// Bonus returns the bonus numbers of the draw.
func (d Draw) Bonus() []uint8 {
	return d[MainCount:]
}

// String renders the draw as space-separated decimal numbers, e.g. "3 7 12 29 44 2 9".
func (d Draw) String() string {
	var sb strings.Builder
	for i, n := range d {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(strconv.Itoa(int(n)))
	}
	return sb.String()
}

// Valid reports whether the draw satisfies the generator invariants:
// distinct ascending main numbers in [1,50] and distinct bonus numbers in [1,10].
func (d Draw) Valid() bool {
	for i := 0; i < MainCount; i++ {
		if d[i] < 1 || d[i] > MainMax {
			return false
		}
		if i > 0 && d[i] <= d[i-1] {
			return false
		}
	}
	b1, b2 := d[MainCount], d[MainCount+1]
	if b1 < 1 || b1 > BonusMax || b2 < 1 || b2 > BonusMax {
		return false
	}
	return b1 != b2
}

// Compare orders draws lexicographically by their stored values.
func (d Draw) Compare(other Draw) int {
	for i := range d {
		if d[i] != other[i] {
			if d[i] < other[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// Entry is a draw together with its recorded occurrence count.
type Entry struct {
	Draw  Draw
	Count uint64
}

// TopList holds at most K entries ordered by count, highest first.
type TopList []Entry

// Draws returns the draws of the list in list order.
func (l TopList) Draws() []Draw {
	draws := make([]Draw, len(l))
	for i, e := range l {
		draws[i] = e.Draw
	}
	return draws
}

// NumberCount is the occurrence count of a single number across all positions.
type NumberCount struct {
	Number uint8
	Count  uint64
}

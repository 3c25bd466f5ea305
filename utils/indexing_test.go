package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFaceIndexer(t *testing.T) {
	for _, dims := range [][2]int{{1, 1}, {1, 2}, {5, 1}, {7, 4}} {
		var (
			fi   = NewFaceIndexer(dims[0], dims[1])
			seen = make(map[int]bool)
			prev = -1
		)
		assert.Equal(t, 3*dims[0]*dims[1], fi.Len())
		// Lexicographic (face, local, k) order is strictly increasing and covers [0, Len)
		for face := 0; face < fi.NFaces; face++ {
			for local := 0; local < 3; local++ {
				for k := 0; k < fi.N; k++ {
					ind := fi.Index(face, local, k)
					assert.Equal(t, prev+1, ind)
					assert.False(t, seen[ind])
					seen[ind] = true
					prev = ind
					f, l, kk := fi.Split(ind)
					assert.Equal(t, [3]int{face, local, k}, [3]int{f, l, kk})
					assert.Equal(t, fi.Index(face, (local+1)%3, k), fi.Next(face, local, k))
				}
			}
		}
		assert.Equal(t, fi.Len(), len(seen))
	}
	{
		fi := NewFaceIndexer(3, 2)
		assert.Equal(t, 3*2*2+2*1+1, fi.Index(2, 1, 1))
		assert.Equal(t, fi.Index(1, 0, 1), fi.Next(1, 2, 1))
		assert.Equal(t, 7, fi.Corner(2, 1))
		assert.Panics(t, func() { fi.Index(3, 0, 0) })
		assert.Panics(t, func() { fi.Index(0, 3, 0) })
		assert.Panics(t, func() { fi.Index(0, 0, 2) })
		assert.Panics(t, func() { fi.Split(fi.Len()) })
		assert.Panics(t, func() { NewFaceIndexer(1, 0) })
	}
}

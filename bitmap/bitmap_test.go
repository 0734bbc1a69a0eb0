package bitmap

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFindFirstClearEmptyBitmap(t *testing.T) {
	b := New(4)
	idx, ok := b.FindFirstClear(2)
	require.True(t, ok)
	require.Equal(t, 0, idx)
	require.True(t, b.Test(0))
	require.True(t, b.Test(1))
	require.False(t, b.Test(2))
}

func TestFindFirstClearFirstFit(t *testing.T) {
	b := New(8)
	b.SetRange(0, 3) // pages 0,1,2 in use
	idx, ok := b.FindFirstClear(1)
	require.True(t, ok)
	require.Equal(t, 3, idx)
}

func TestFindFirstClearNoRelaxation(t *testing.T) {
	// pages: used, free, used, free, used -- no 2-contiguous run exists
	b := New(5)
	b.SetRange(0, 1)
	b.SetRange(2, 3)
	b.SetRange(4, 5)
	_, ok := b.FindFirstClear(2)
	require.False(t, ok)
}

func TestFindFirstClearExhausted(t *testing.T) {
	b := New(4)
	b.SetRange(0, 4)
	_, ok := b.FindFirstClear(1)
	require.False(t, ok)
}

func TestResizePreservesBitsAndClearsNew(t *testing.T) {
	b := New(2)
	b.SetRange(0, 2)
	b.Resize(130)
	require.True(t, b.Test(0))
	require.True(t, b.Test(1))
	for i := 2; i < 130; i++ {
		require.False(t, b.Test(i), "bit %d should be clear after resize", i)
	}
	require.Equal(t, 2, b.PopCount())
}

func TestClearRange(t *testing.T) {
	b := New(10)
	b.SetRange(0, 10)
	b.ClearRange(3, 6)
	require.Equal(t, 7, b.PopCount())
	require.False(t, b.Test(3))
	require.False(t, b.Test(4))
	require.False(t, b.Test(5))
	require.True(t, b.Test(6))
}

func TestResizeShrink(t *testing.T) {
	b := New(200)
	b.SetRange(0, 200)
	b.Resize(65)
	require.Equal(t, 65, b.PopCount())
}

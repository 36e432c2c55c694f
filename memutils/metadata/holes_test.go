package metadata_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/wordarena/memutils/metadata"
)

func TestHoleListSingleHole(t *testing.T) {
	list := metadata.NewBlockList()
	list.Init(100)

	holes := list.HoleList()
	require.Equal(t, metadata.HoleList{1, 0, 100}, holes)
	require.Equal(t, 1, holes.Count())

	offset, length := holes.Hole(0)
	require.Equal(t, 0, offset)
	require.Equal(t, 100, length)
}

func TestHoleListOrder(t *testing.T) {
	list := metadata.NewBlockList()
	list.Init(50)

	require.NoError(t, list.Alloc(0, 5))
	require.NoError(t, list.Alloc(5, 5))
	require.NoError(t, list.Alloc(10, 20))
	require.NoError(t, list.Alloc(30, 5))
	require.True(t, list.Free(5))
	require.True(t, list.Free(30))

	holes := list.HoleList()
	require.Equal(t, metadata.HoleList{2, 5, 5, 30, 20}, holes)
	require.Equal(t, 2, holes.Count())
}

func TestHoleListNoHoles(t *testing.T) {
	list := metadata.NewBlockList()
	list.Init(8)
	require.NoError(t, list.Alloc(0, 8))

	holes := list.HoleList()
	require.Nil(t, holes)
	require.Equal(t, 0, holes.Count())
	require.Nil(t, holes.Bytes())
}

func TestHoleListIsIndependent(t *testing.T) {
	list := metadata.NewBlockList()
	list.Init(100)

	holes := list.HoleList()
	require.NoError(t, list.Alloc(0, 10))

	require.Equal(t, metadata.HoleList{1, 0, 100}, holes)
	require.Equal(t, metadata.HoleList{1, 10, 90}, list.HoleList())
}

func TestHoleListSaturatesFullArena(t *testing.T) {
	list := metadata.NewBlockList()
	list.Init(metadata.MaxArenaWords)

	require.Equal(t, metadata.HoleList{1, 0, 65535}, list.HoleList())

	require.NoError(t, list.Alloc(0, 1))
	require.Equal(t, metadata.HoleList{1, 1, 65535}, list.HoleList())
}

func TestHoleListBytes(t *testing.T) {
	holes := metadata.HoleList{2, 0, 5, 300, 8}

	data := holes.Bytes()
	require.Equal(t, []byte{2, 0, 0, 0, 5, 0, 0x2c, 0x01, 8, 0}, data)

	decoded, err := metadata.DecodeHoleList(data)
	require.NoError(t, err)
	require.Equal(t, holes, decoded)
}

func TestDecodeHoleListErrors(t *testing.T) {
	decoded, err := metadata.DecodeHoleList(nil)
	require.NoError(t, err)
	require.Nil(t, decoded)

	_, err = metadata.DecodeHoleList([]byte{1, 0, 0})
	require.Error(t, err)

	_, err = metadata.DecodeHoleList([]byte{2, 0, 0, 0, 5, 0})
	require.Error(t, err)
}

package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/paneapp/pane-server/internal/browse"
)

func storeWith(items ...*browse.Item) *browse.ItemStore {
	store := browse.NewItemStore()
	for _, item := range items {
		idx := store.Insert(item)
		store.SetVisible(idx, true)
	}
	return store
}

func file(name string, size int64) *browse.Item {
	return &browse.Item{Metadata: browse.Metadata{Name: name, Size: size, ModTime: time.Now()}}
}

func dir(name string) *browse.Item {
	return &browse.Item{Metadata: browse.Metadata{Name: name, IsDir: true, ModTime: time.Now()}}
}

func TestSortedPosition_NameOrder(t *testing.T) {
	store := storeWith(file("alpha.txt", 1), file("charlie.txt", 1))
	sorter := NewListingSorter(store)

	pos := sorter.SortedPosition(file("bravo.txt", 1))
	assert.Equal(t, 1, pos)

	pos = sorter.SortedPosition(file("aaa.txt", 1))
	assert.Equal(t, 0, pos)

	pos = sorter.SortedPosition(file("zulu.txt", 1))
	assert.Equal(t, 2, pos)
}

func TestSortedPosition_SkipsItself(t *testing.T) {
	store := browse.NewItemStore()
	item := file("middle.txt", 1)
	idx := store.Insert(item)
	store.SetVisible(idx, true)
	for _, other := range []*browse.Item{file("aaa.txt", 1), file("zzz.txt", 1)} {
		i := store.Insert(other)
		store.SetVisible(i, true)
	}

	// The item is already in the store; it must not count against itself.
	assert.Equal(t, 1, sorterPos(store, item))
}

func sorterPos(store *browse.ItemStore, item *browse.Item) int {
	return NewListingSorter(store).SortedPosition(item)
}

func TestSortedPosition_DirectoriesFirst(t *testing.T) {
	store := storeWith(file("aaa.txt", 1), file("bbb.txt", 1))
	sorter := NewListingSorter(store)

	// A directory sorts before every file regardless of name.
	pos := sorter.SortedPosition(dir("zzz"))
	assert.Equal(t, 0, pos)
}

func TestSortedPosition_IgnoresInvisible(t *testing.T) {
	store := browse.NewItemStore()
	hiddenIdx := store.Insert(file("aaa.txt", 1))
	store.SetVisible(hiddenIdx, false)
	visIdx := store.Insert(file("bbb.txt", 1))
	store.SetVisible(visIdx, true)

	sorter := NewListingSorter(store)
	pos := sorter.SortedPosition(file("ccc.txt", 1))
	assert.Equal(t, 1, pos)
}

func TestLess_NumericCollation(t *testing.T) {
	sorter := NewListingSorter(browse.NewItemStore())

	assert.True(t, sorter.Less(file("file2.txt", 1), file("file10.txt", 1)))
	assert.False(t, sorter.Less(file("file10.txt", 1), file("file2.txt", 1)))
}

func TestLess_CaseInsensitive(t *testing.T) {
	sorter := NewListingSorter(browse.NewItemStore())

	assert.True(t, sorter.Less(file("Alpha.txt", 1), file("bravo.txt", 1)))
	assert.True(t, sorter.Less(file("alpha.txt", 1), file("Bravo.txt", 1)))
}

func TestLess_SizeDescending(t *testing.T) {
	sorter := NewListingSorter(browse.NewItemStore())
	sorter.SetOrder("size", "desc")

	assert.True(t, sorter.Less(file("small.txt", 100), file("big.txt", 10)))
	// Directories still lead under descending size.
	assert.True(t, sorter.Less(dir("stuff"), file("big.txt", 1<<30)))
}

func TestLess_ModifiedOrder(t *testing.T) {
	sorter := NewListingSorter(browse.NewItemStore())
	sorter.SetOrder("modified", "asc")

	old := &browse.Item{Metadata: browse.Metadata{Name: "old.txt", ModTime: time.Now().Add(-time.Hour)}}
	fresh := &browse.Item{Metadata: browse.Metadata{Name: "fresh.txt", ModTime: time.Now()}}

	assert.True(t, sorter.Less(old, fresh))
	assert.False(t, sorter.Less(fresh, old))
}

func TestLess_KindUsesExtensionThenName(t *testing.T) {
	sorter := NewListingSorter(browse.NewItemStore())
	sorter.SetOrder("kind", "asc")

	assert.True(t, sorter.Less(file("b.jpg", 1), file("a.txt", 1)))
	assert.True(t, sorter.Less(file("a.txt", 1), file("b.txt", 1)))
}

func TestGroupFor_Name(t *testing.T) {
	sorter := NewListingSorter(browse.NewItemStore())

	assert.Equal(t, 0, sorter.GroupFor(file("alpha.txt", 1)))
	assert.Equal(t, 0, sorter.GroupFor(file("Alpha.txt", 1)))
	assert.Equal(t, 25, sorter.GroupFor(file("zebra.txt", 1)))
	assert.Equal(t, nameGroupOther, sorter.GroupFor(file("1999.txt", 1)))
	assert.Equal(t, nameGroupOther, sorter.GroupFor(file("", 1)))
}

func TestGroupFor_Size(t *testing.T) {
	sorter := NewListingSorter(browse.NewItemStore())
	sorter.SetOrder("size", "asc")

	assert.Equal(t, 0, sorter.GroupFor(file("empty", 0)))
	assert.Equal(t, 1, sorter.GroupFor(file("tiny", 100)))
	assert.Equal(t, 2, sorter.GroupFor(file("small", 500*1024)))
	assert.Equal(t, 5, sorter.GroupFor(file("huge", 2<<30)))
}

func TestGroupFor_Modified(t *testing.T) {
	sorter := NewListingSorter(browse.NewItemStore())
	sorter.SetOrder("modified", "asc")

	today := &browse.Item{Metadata: browse.Metadata{Name: "a", ModTime: time.Now().Add(-time.Hour)}}
	lastYear := &browse.Item{Metadata: browse.Metadata{Name: "b", ModTime: time.Now().Add(-400 * 24 * time.Hour)}}

	assert.Equal(t, 0, sorter.GroupFor(today))
	assert.Equal(t, 4, sorter.GroupFor(lastYear))
}

func TestGroupFor_Kind(t *testing.T) {
	sorter := NewListingSorter(browse.NewItemStore())
	sorter.SetOrder("kind", "asc")

	assert.Equal(t, 0, sorter.GroupFor(dir("photos")))
	assert.Equal(t, 1, sorter.GroupFor(file("a.txt", 1)))
}

package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWeddingSections(t *testing.T) {
	assert.True(t, IsWeddingSection("boards"))
	assert.True(t, IsWeddingSection("seating"))
	assert.False(t, IsWeddingSection("honeymoon"))
	assert.False(t, IsWeddingSection(""))
}

func TestWeddingItems(t *testing.T) {
	setup()
	defer teardown()
	t.Setenv("HUB_UPLOAD_ROOT", t.TempDir())

	service := WeddingService{}

	_, err := service.Panel("honeymoon", "")
	assert.Equal(t, ErrBadSection, err)

	_, err = service.AddItem(WeddingItemForm{Section: "honeymoon", Title: "x"}, nil)
	assert.Equal(t, ErrBadSection, err)
	_, err = service.AddItem(WeddingItemForm{Section: "links", Title: "  "}, nil)
	assert.Equal(t, ErrMissingFields, err)

	item, err := service.AddItem(WeddingItemForm{
		Section: "links",
		Title:   "florist",
		Url:     "https://example.com/flowers",
	}, nil)
	assert.NoError(t, err)

	items, err := service.Panel("links", "")
	assert.NoError(t, err)
	assert.Len(t, items, 1)

	assert.NoError(t, service.UpdateItemTitle(item.Id, "better florist"))
	items, _ = service.Panel("links", "")
	assert.Equal(t, "better florist", items[0].Title)

	assert.NoError(t, service.DeleteItem(item.Id))
	items, _ = service.Panel("links", "")
	assert.Len(t, items, 0)
}

func TestWeddingSubFilter(t *testing.T) {
	setup()
	defer teardown()
	t.Setenv("HUB_UPLOAD_ROOT", t.TempDir())

	service := WeddingService{}
	service.AddItem(WeddingItemForm{Section: "boards", Sub: "dresses", Title: "a"}, nil)
	service.AddItem(WeddingItemForm{Section: "boards", Sub: "cakes", Title: "b"}, nil)

	items, err := service.Panel("boards", "dresses")
	assert.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, "a", items[0].Title)

	items, _ = service.Panel("boards", "")
	assert.Len(t, items, 2)
}

func TestWeddingTables(t *testing.T) {
	setup()
	defer teardown()
	t.Setenv("HUB_UPLOAD_ROOT", t.TempDir())

	service := WeddingService{}

	_, err := service.CreateTable("  ", 8, "")
	assert.Equal(t, ErrMissingFields, err)

	table, err := service.CreateTable("family", 8, "near the window")
	assert.NoError(t, err)

	tables, err := service.Tables()
	assert.NoError(t, err)
	assert.Len(t, tables, 1)
	assert.Equal(t, 8, tables[0].Seats)

	assert.NoError(t, service.DeleteTable(table.Id))
	tables, _ = service.Tables()
	assert.Len(t, tables, 0)
}

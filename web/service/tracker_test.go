package service

import (
	"testing"

	"github.com/tandr/homehub/database"
	"github.com/tandr/homehub/database/model"

	"github.com/stretchr/testify/assert"
)

func TestTrackerItemForm(t *testing.T) {
	setup()
	defer teardown()

	service := TrackerService{}

	_, err := service.CreateItem(ItemForm{Title: "Dune", MediaType: "movie"})
	assert.Equal(t, ErrMissingFields, err)

	_, err = service.CreateItem(ItemForm{Title: "Dune", MediaType: "vinyl", Status: "current"})
	assert.Error(t, err)

	item, err := service.CreateItem(ItemForm{
		Title:     "  Dune  ",
		MediaType: "Movie",
		Status:    "Finished",
		Score:     "15",
		Tags:      "scifi",
	})
	assert.NoError(t, err)
	assert.Equal(t, "Dune", item.Title)
	assert.Equal(t, "movie", item.MediaType)
	assert.Equal(t, "finished", item.Status)
	// Scores clamp to the 0..10 scale
	assert.Equal(t, 10, *item.Score)
	// Chapters only apply to serial media
	assert.Nil(t, item.ChapterCurrent)

	manga, err := service.CreateItem(ItemForm{
		Title:          "Berserk",
		MediaType:      "manga",
		Status:         "ongoing",
		ChapterCurrent: "42",
		ChapterTotal:   "380",
	})
	assert.NoError(t, err)
	assert.Equal(t, 42, *manga.ChapterCurrent)
	assert.Equal(t, 380, *manga.ChapterTotal)

	// Switching away from a serial type drops the chapter progress
	updated, err := service.UpdateItem(manga.Id, ItemForm{
		Title:          "Berserk",
		MediaType:      "movie",
		Status:         "finished",
		ChapterCurrent: "42",
	})
	assert.NoError(t, err)
	assert.Nil(t, updated.ChapterCurrent)
}

func TestTrackerStatusOptions(t *testing.T) {
	assert.Equal(t, SerialStatuses, StatusOptions("manga"))
	assert.Equal(t, SerialStatuses, StatusOptions("manhwa"))
	assert.Equal(t, DefaultStatuses, StatusOptions("movie"))
	assert.Equal(t, DefaultStatuses, StatusOptions("book"))
}

func TestTrackerListAndSearch(t *testing.T) {
	setup()
	defer teardown()

	service := TrackerService{}
	service.CreateItem(ItemForm{Title: "Dune", MediaType: "movie", Status: "finished", Tags: "scifi"})
	service.CreateItem(ItemForm{Title: "Heat", MediaType: "movie", Status: "current"})
	service.CreateItem(ItemForm{Title: "Berserk", MediaType: "manga", Status: "ongoing"})

	items, err := service.ListItems("movie", "all", "", 0)
	assert.NoError(t, err)
	assert.Len(t, items, 2)

	items, err = service.ListItems("movie", "finished", "", 0)
	assert.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, "Dune", items[0].Title)

	items, err = service.ListItems("movie", "all", "scifi", 0)
	assert.NoError(t, err)
	assert.Len(t, items, 1)

	counts, err := service.TypeCounts()
	assert.NoError(t, err)
	assert.Equal(t, int64(2), counts["movie"])
	assert.Equal(t, int64(1), counts["manga"])
	assert.Equal(t, int64(0), counts["game"])
}

func TestTrackerComments(t *testing.T) {
	setup()
	defer teardown()

	userService := UserService{}
	ana, _ := userService.CreateUser("ana", "password123")
	ben, _ := userService.CreateUser("ben", "password123")

	service := TrackerService{}
	item, _ := service.CreateItem(ItemForm{Title: "Dune", MediaType: "movie", Status: "finished"})

	_, err := service.AddComment(item.Id, ana, "   ")
	assert.Equal(t, ErrEmptyBody, err)

	comment, err := service.AddComment(item.Id, ana, "great soundtrack")
	assert.NoError(t, err)
	assert.Equal(t, "ana", comment.Author)

	// Not the author, no approver capability
	assert.Equal(t, ErrForbidden, service.DeleteComment(comment.Id, ben))

	// Approvers moderate any comment
	userService.SetCapabilities(ben.Id, false, true, false)
	ben, _ = userService.GetUser(ben.Id)
	assert.NoError(t, service.DeleteComment(comment.Id, ben))

	items, _ := service.ListItems("movie", "all", "", ana.Id)
	assert.Len(t, items[0].Comments, 0)
}

func TestTrackerChapterPagesBatch(t *testing.T) {
	setup()
	defer teardown()
	t.Setenv("HUB_UPLOAD_ROOT", t.TempDir())

	service := TrackerService{}
	item, err := service.CreateItem(ItemForm{Title: "Berserk", MediaType: "manga", Status: "ongoing"})
	assert.NoError(t, err)

	pages := fileBatch(t, "pages", []uploadFile{
		{name: "p1.png", content: pngBytes(t)},
		{name: "p2.png", content: []byte("not an image")},
	})
	batch, err := service.AddChapterPages(item.Id, pages)
	assert.NoError(t, err)
	assert.Equal(t, 1, batch.Saved)
	assert.Equal(t, 1, batch.Skipped)

	stored, err := service.ChapterPages(item.Id)
	assert.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestTrackerDeleteItemCascades(t *testing.T) {
	setup()
	defer teardown()

	t.Setenv("HUB_UPLOAD_ROOT", t.TempDir())

	userService := UserService{}
	ana, _ := userService.CreateUser("ana", "password123")

	service := TrackerService{}
	item, _ := service.CreateItem(ItemForm{Title: "Dune", MediaType: "movie", Status: "finished"})
	comment, _ := service.AddComment(item.Id, ana, "great soundtrack")

	reactionService := ReactionService{}
	reactionService.Toggle(model.KindItem, comment.Id, ana.Id, "like")

	assert.NoError(t, service.DeleteItem(item.Id))

	db := database.GetDB()
	var count int64
	db.Model(model.ItemComment{}).Count(&count)
	assert.Equal(t, int64(0), count)
	db.Model(model.CommentReaction{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

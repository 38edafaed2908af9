package service

import (
	"errors"
	"mime/multipart"
	"strings"

	"github.com/tandr/homehub/config"
	"github.com/tandr/homehub/database"
	"github.com/tandr/homehub/database/model"
	"github.com/tandr/homehub/logger"
	"github.com/tandr/homehub/storage"
	"github.com/tandr/homehub/util/common"
)

const (
	weddingFeature      = "wedding"
	weddingTableFeature = "weddingtables"
)

// tablePhotoMaxPx keeps table shots readable when projected for seating.
const tablePhotoMaxPx = 1600

var ErrBadSection = errors.New("unknown wedding section")

// WeddingSections are the planner panels. Boards carry images, links carry
// URLs, the rest are text lists.
var WeddingSections = []string{
	"boards", "links", "venues", "ideas", "ceremony", "reception", "tasks", "seating", "budget",
}

// WeddingItemForm carries a new or edited planner entry.
type WeddingItemForm struct {
	Section string
	Sub     string
	Title   string
	Note    string
	Url     string
}

type WeddingService struct{}

func IsWeddingSection(section string) bool {
	for _, s := range WeddingSections {
		if s == section {
			return true
		}
	}
	return false
}

// Panel lists one section, optionally narrowed to a sub-category (boards
// use subs like "rings" and "cakes").
func (s *WeddingService) Panel(section, sub string) ([]model.WeddingItem, error) {
	if !IsWeddingSection(section) {
		return nil, ErrBadSection
	}

	db := database.GetDB()
	query := db.Model(model.WeddingItem{}).Where("section = ?", section)
	if sub != "" {
		query = query.Where("sub = ?", sub)
	}

	var items []model.WeddingItem
	err := query.Order("sort_order asc, created_at desc").Find(&items).Error
	return items, err
}

// AddItem creates a planner entry. An attached image is a batch-style
// upload: it gets a unique name so board entries never overwrite each
// other, and an image failure only drops the image, not the entry.
func (s *WeddingService) AddItem(form WeddingItemForm, fh *multipart.FileHeader) (*model.WeddingItem, error) {
	if !IsWeddingSection(form.Section) {
		return nil, ErrBadSection
	}
	title := strings.TrimSpace(form.Title)
	if title == "" {
		return nil, ErrMissingFields
	}

	item := &model.WeddingItem{
		Section: form.Section,
		Sub:     strings.TrimSpace(form.Sub),
		Title:   title,
		Note:    strings.TrimSpace(form.Note),
		Url:     strings.TrimSpace(form.Url),
	}

	db := database.GetDB()
	if err := db.Create(item).Error; err != nil {
		return nil, err
	}

	if fh != nil && fh.Filename != "" {
		asset, err := saveImageAsset(uploadStore(), weddingFeature, item.Id, fh, config.GetThumbMaxPx())
		if err != nil {
			logger.Warningf("wedding item %d image skipped: %v", item.Id, err)
			return item, nil
		}
		item.ImagePath = asset.Rel
		item.ThumbPath = asset.ThumbRel
		if err := db.Save(item).Error; err != nil {
			return nil, err
		}
	}
	return item, nil
}

func (s *WeddingService) UpdateItemTitle(itemId int, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrMissingFields
	}

	db := database.GetDB()
	result := db.Model(model.WeddingItem{}).
		Where("id = ?", itemId).
		Update("title", title)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return common.NewErrorf("wedding item %d not found", itemId)
	}
	return nil
}

// DeleteItem removes a planner entry and any stored image files.
func (s *WeddingService) DeleteItem(itemId int) error {
	db := database.GetDB()

	item := &model.WeddingItem{}
	if err := db.First(item, itemId).Error; err != nil {
		return err
	}
	if err := db.Delete(item).Error; err != nil {
		return err
	}

	if err := uploadStore().RemoveOwner(weddingFeature, item.Id); err != nil {
		logger.Warning("remove wedding item uploads:", err)
	}
	return nil
}

func (s *WeddingService) Tables() ([]model.WeddingTable, error) {
	db := database.GetDB()

	var tables []model.WeddingTable
	err := db.Model(model.WeddingTable{}).
		Order("name asc").
		Find(&tables).
		Error
	return tables, err
}

func (s *WeddingService) CreateTable(name string, seats int, notes string) (*model.WeddingTable, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrMissingFields
	}

	table := &model.WeddingTable{
		Name:  name,
		Seats: seats,
		Notes: strings.TrimSpace(notes),
	}
	if err := database.GetDB().Create(table).Error; err != nil {
		return nil, err
	}
	return table, nil
}

// SetTablePhoto replaces one of a table's two named photos, "photo" or
// "layout". The fixed filename makes a re-upload overwrite in place.
func (s *WeddingService) SetTablePhoto(tableId int, which string, fh *multipart.FileHeader) error {
	var name, column string
	switch which {
	case "photo":
		name, column = storage.TablePhotoName, "photo_path"
	case "layout":
		name, column = storage.TableLayoutName, "layout_path"
	default:
		return common.NewErrorf("unknown table photo slot %q", which)
	}

	db := database.GetDB()
	table := &model.WeddingTable{}
	if err := db.First(table, tableId).Error; err != nil {
		return err
	}

	rel, err := saveSingletonPreview(uploadStore(), weddingTableFeature, table.Id, name, tablePhotoMaxPx, fh)
	if err != nil {
		return err
	}
	return db.Model(table).Update(column, rel).Error
}

// DeleteTable removes a seating table and its photos.
func (s *WeddingService) DeleteTable(tableId int) error {
	db := database.GetDB()

	table := &model.WeddingTable{}
	if err := db.First(table, tableId).Error; err != nil {
		return err
	}
	if err := db.Delete(table).Error; err != nil {
		return err
	}

	if err := uploadStore().RemoveOwner(weddingTableFeature, table.Id); err != nil {
		logger.Warning("remove wedding table uploads:", err)
	}
	return nil
}

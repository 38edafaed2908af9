package service

import (
	"mime/multipart"
	"strings"

	"github.com/tandr/homehub/database"
	"github.com/tandr/homehub/database/model"
)

const homecardFeature = "homecards"

// cardImageMaxPx keeps dashboard art crisp on large screens.
const cardImageMaxPx = 1200

type HomeCardService struct{}

func (s *HomeCardService) List() ([]model.HomeCard, error) {
	db := database.GetDB()

	var cards []model.HomeCard
	err := db.Model(model.HomeCard{}).
		Order("sort_order asc, id asc").
		Find(&cards).
		Error
	return cards, err
}

// UpdateCard edits a card's title and description. The image is handled
// separately by SetCardImage so a failed image never blocks the metadata
// update.
func (s *HomeCardService) UpdateCard(cardId int, title, description string) (*model.HomeCard, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrMissingFields
	}

	db := database.GetDB()
	card := &model.HomeCard{}
	if err := db.First(card, cardId).Error; err != nil {
		return nil, err
	}

	card.Title = title
	card.Description = strings.TrimSpace(description)
	if err := db.Save(card).Error; err != nil {
		return nil, err
	}
	return card, nil
}

// SetCardImage stores new dashboard art for a card. The original keeps a
// unique name so older art is never clobbered; the card points at the
// derived preview.
func (s *HomeCardService) SetCardImage(cardId int, fh *multipart.FileHeader) error {
	db := database.GetDB()

	card := &model.HomeCard{}
	if err := db.First(card, cardId).Error; err != nil {
		return err
	}

	asset, err := saveImageAsset(uploadStore(), homecardFeature, card.Id, fh, cardImageMaxPx)
	if err != nil {
		return err
	}
	return db.Model(card).Update("image_path", asset.ThumbRel).Error
}

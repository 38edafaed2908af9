package service

import (
	"mime/multipart"
	"path"
	"strconv"
	"strings"

	"github.com/tandr/homehub/config"
	"github.com/tandr/homehub/database"
	"github.com/tandr/homehub/database/model"
	"github.com/tandr/homehub/logger"
	"github.com/tandr/homehub/web/entity"
)

const travelFeature = "travel"

// TripForm carries the user-entered trip fields. Lat/Lon are the raw form
// values; an explicit valid pair wins over geocoding.
type TripForm struct {
	Title   string
	Address string
	Notes   string
	Lat     string
	Lon     string
}

// CommentView decorates a comment with its live reaction summary.
type CommentView struct {
	model.Comment
	Likes        int     `json:"likes"`
	Dislikes     int     `json:"dislikes"`
	UserReaction *string `json:"userReaction"`
}

// TripView is a trip with its photos and hydrated comments.
type TripView struct {
	model.Trip
	Photos   []model.Photo `json:"photos"`
	Comments []CommentView `json:"comments"`
}

type TravelService struct {
	geocodeService  GeocodeService
	reactionService ReactionService
}

// CreateTrip stores a new trip, resolves its map pin and saves any photos.
// Photo failures are per-file: the trip still commits with a saved/skipped
// tally.
func (s *TravelService) CreateTrip(form TripForm, photos []*multipart.FileHeader) (*model.Trip, entity.BatchResult, error) {
	var batch entity.BatchResult

	form.Title = strings.TrimSpace(form.Title)
	form.Address = strings.TrimSpace(form.Address)
	if form.Title == "" || form.Address == "" {
		return nil, batch, ErrMissingFields
	}

	trip := &model.Trip{
		Title:   form.Title,
		Address: form.Address,
		Notes:   strings.TrimSpace(form.Notes),
	}
	s.resolveCoords(trip, form)

	db := database.GetDB()
	if err := db.Create(trip).Error; err != nil {
		return nil, batch, err
	}

	batch = s.savePhotos(trip.Id, photos)
	return trip, batch, nil
}

// UpdateTrip edits trip fields, re-resolves the pin and appends any new
// photos alongside the existing ones.
func (s *TravelService) UpdateTrip(tripId int, form TripForm, photos []*multipart.FileHeader) (*model.Trip, entity.BatchResult, error) {
	var batch entity.BatchResult

	form.Title = strings.TrimSpace(form.Title)
	form.Address = strings.TrimSpace(form.Address)
	if form.Title == "" || form.Address == "" {
		return nil, batch, ErrMissingFields
	}

	db := database.GetDB()
	trip := &model.Trip{}
	if err := db.First(trip, tripId).Error; err != nil {
		return nil, batch, err
	}

	trip.Title = form.Title
	trip.Address = form.Address
	trip.Notes = strings.TrimSpace(form.Notes)
	s.resolveCoords(trip, form)

	if err := db.Save(trip).Error; err != nil {
		return nil, batch, err
	}

	batch = s.savePhotos(trip.Id, photos)
	return trip, batch, nil
}

// resolveCoords prefers an explicit valid coordinate pair, then falls back
// to geocoding the address. Geocoder failure just means no pin.
func (s *TravelService) resolveCoords(trip *model.Trip, form TripForm) {
	lat := parseCoord(form.Lat)
	lon := parseCoord(form.Lon)
	if validLatLon(lat, lon) {
		trip.Lat, trip.Lon = lat, lon
		return
	}

	trip.Lat, trip.Lon = nil, nil
	coord, err := s.geocodeService.Geocode(trip.Address, config.GetGeocodeTimeout())
	if err != nil {
		logger.Warningf("geocode %q failed: %v", trip.Address, err)
		return
	}
	if coord != nil {
		trip.Lat, trip.Lon = &coord.Lat, &coord.Lon
	}
}

// savePhotos validates and stores a photo batch for a trip. Every photo gets
// a fresh unique filename, so repeat uploads accumulate instead of
// replacing.
func (s *TravelService) savePhotos(tripId int, photos []*multipart.FileHeader) entity.BatchResult {
	var batch entity.BatchResult
	if len(photos) == 0 {
		return batch
	}

	st := uploadStore()
	db := database.GetDB()

	for _, fh := range photos {
		if fh == nil || fh.Filename == "" {
			continue
		}
		asset, err := saveImageAsset(st, travelFeature, tripId, fh, config.GetThumbMaxPx())
		if err != nil {
			logger.Warningf("skip photo %q: %v", fh.Filename, err)
			batch.Skipped++
			continue
		}
		photo := &model.Photo{
			TripId:       tripId,
			StoredPath:   asset.Rel,
			ThumbPath:    asset.ThumbRel,
			OriginalName: fh.Filename,
			MimeType:     fh.Header.Get("Content-Type"),
			SizeBytes:    asset.Size,
		}
		if err := db.Create(photo).Error; err != nil {
			logger.Warningf("skip photo %q: %v", fh.Filename, err)
			_ = st.Remove(asset.Rel)
			_ = st.Remove(asset.ThumbRel)
			batch.Skipped++
			continue
		}
		batch.Saved++
	}
	return batch
}

// Pins returns map markers for every trip with a resolved coordinate.
func (s *TravelService) Pins() ([]entity.Pin, error) {
	db := database.GetDB()

	var trips []model.Trip
	err := db.Model(model.Trip{}).
		Where("lat IS NOT NULL AND lon IS NOT NULL").
		Order("created_at desc").
		Find(&trips).
		Error
	if err != nil {
		return nil, err
	}

	pins := make([]entity.Pin, 0, len(trips))
	for _, trip := range trips {
		pins = append(pins, entity.Pin{Id: trip.Id, Title: trip.Title, Lat: *trip.Lat, Lon: *trip.Lon})
	}
	return pins, nil
}

// ListTrips returns all trips with photos and reaction-hydrated comments.
func (s *TravelService) ListTrips(userId int) ([]TripView, error) {
	db := database.GetDB()

	var trips []model.Trip
	if err := db.Model(model.Trip{}).Order("created_at desc").Find(&trips).Error; err != nil {
		return nil, err
	}

	views := make([]TripView, 0, len(trips))
	for _, trip := range trips {
		var photos []model.Photo
		if err := db.Model(model.Photo{}).Where("trip_id = ?", trip.Id).Order("uploaded_at asc").Find(&photos).Error; err != nil {
			return nil, err
		}

		var comments []model.Comment
		if err := db.Model(model.Comment{}).Where("trip_id = ?", trip.Id).Order("created_at asc").Find(&comments).Error; err != nil {
			return nil, err
		}

		commentViews, err := s.hydrateComments(comments, userId)
		if err != nil {
			return nil, err
		}
		views = append(views, TripView{Trip: trip, Photos: photos, Comments: commentViews})
	}
	return views, nil
}

func (s *TravelService) hydrateComments(comments []model.Comment, userId int) ([]CommentView, error) {
	ids := make([]int, 0, len(comments))
	for _, c := range comments {
		ids = append(ids, c.Id)
	}
	states, err := s.reactionService.Summaries(model.KindTrip, ids, userId)
	if err != nil {
		return nil, err
	}

	views := make([]CommentView, 0, len(comments))
	for _, c := range comments {
		state := states[c.Id]
		views = append(views, CommentView{
			Comment:      c,
			Likes:        state.Likes,
			Dislikes:     state.Dislikes,
			UserReaction: state.UserReaction,
		})
	}
	return views, nil
}

// AddComment appends a comment to a trip thread.
func (s *TravelService) AddComment(tripId int, user *model.User, body string) (*model.Comment, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrEmptyBody
	}
	if len(body) > maxCommentLen {
		return nil, ErrBodyTooLong
	}

	db := database.GetDB()
	trip := &model.Trip{}
	if err := db.First(trip, tripId).Error; err != nil {
		return nil, err
	}

	comment := &model.Comment{
		TripId: trip.Id,
		UserId: user.Id,
		Author: user.Username,
		Body:   body,
	}
	if err := db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// DeleteComment removes a trip comment and its reactions. Allowed for the
// author or a travel editor.
func (s *TravelService) DeleteComment(commentId int, user *model.User) error {
	db := database.GetDB()

	comment := &model.Comment{}
	if err := db.First(comment, commentId).Error; err != nil {
		return err
	}
	if comment.UserId != user.Id && !user.CanTravelEdit {
		return ErrForbidden
	}

	if err := s.reactionService.DeleteFor(model.KindTrip, []int{comment.Id}); err != nil {
		return err
	}
	return db.Delete(comment).Error
}

// DeleteTrip removes a trip with its photos, comments, reactions and files.
func (s *TravelService) DeleteTrip(tripId int) error {
	db := database.GetDB()

	trip := &model.Trip{}
	if err := db.First(trip, tripId).Error; err != nil {
		return err
	}

	var commentIds []int
	if err := db.Model(model.Comment{}).Where("trip_id = ?", trip.Id).Pluck("id", &commentIds).Error; err != nil {
		return err
	}
	if err := s.reactionService.DeleteFor(model.KindTrip, commentIds); err != nil {
		return err
	}
	if err := db.Where("trip_id = ?", trip.Id).Delete(&model.Comment{}).Error; err != nil {
		return err
	}
	if err := db.Where("trip_id = ?", trip.Id).Delete(&model.Photo{}).Error; err != nil {
		return err
	}
	if err := db.Delete(trip).Error; err != nil {
		return err
	}

	if err := uploadStore().RemoveOwner(travelFeature, trip.Id); err != nil {
		logger.Warning("remove trip uploads:", err)
	}
	return nil
}

func parseCoord(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func validLatLon(lat, lon *float64) bool {
	if lat == nil || lon == nil {
		return false
	}
	return *lat >= -90.0 && *lat <= 90.0 && *lon >= -180.0 && *lon <= 180.0
}

func extOf(filename string) string {
	return strings.ToLower(path.Ext(filename))
}

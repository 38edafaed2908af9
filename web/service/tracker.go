package service

import (
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/tandr/homehub/database"
	"github.com/tandr/homehub/database/model"
	"github.com/tandr/homehub/logger"
	"github.com/tandr/homehub/storage"
	"github.com/tandr/homehub/util/common"
	"github.com/tandr/homehub/web/entity"
)

const trackerFeature = "tracker"

// coverMaxPx is larger than the gallery thumbnail bound; covers are shown
// at card size.
const coverMaxPx = 1200

var (
	MediaTypes      = []string{"book", "movie", "show", "anime", "manga", "manhwa", "game", "other"}
	DefaultStatuses = []string{"current", "waiting", "finished"}
	SerialTypes     = []string{"manga", "manhwa"}
	SerialStatuses  = []string{"ongoing", "completed", "hiatus", "canceled"}

	// chapterTypes are the media types that track chapter progress.
	chapterTypes = map[string]bool{"book": true, "manga": true, "manhwa": true}
)

// ItemForm carries the user-entered tracker fields. Score and chapters come
// in raw and are normalized here.
type ItemForm struct {
	Title          string
	MediaType      string
	Status         string
	Score          string
	Tags           string
	Notes          string
	ChapterCurrent string
	ChapterTotal   string
}

// ItemView is a tracker item with its reaction-hydrated comment thread.
type ItemView struct {
	model.Item
	Comments []ItemCommentView `json:"comments"`
}

type ItemCommentView struct {
	model.ItemComment
	Likes        int     `json:"likes"`
	Dislikes     int     `json:"dislikes"`
	UserReaction *string `json:"userReaction"`
}

type TrackerService struct {
	reactionService ReactionService
}

func IsMediaType(t string) bool {
	for _, m := range MediaTypes {
		if m == t {
			return true
		}
	}
	return false
}

// StatusOptions returns the status vocabulary for a media type: serials
// track publication state, everything else tracks personal progress.
func StatusOptions(mediaType string) []string {
	for _, t := range SerialTypes {
		if t == mediaType {
			return append([]string(nil), SerialStatuses...)
		}
	}
	return append([]string(nil), DefaultStatuses...)
}

func (s *TrackerService) CreateItem(form ItemForm) (*model.Item, error) {
	item := &model.Item{}
	if err := applyItemForm(item, form); err != nil {
		return nil, err
	}

	db := database.GetDB()
	if err := db.Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

func (s *TrackerService) UpdateItem(itemId int, form ItemForm) (*model.Item, error) {
	db := database.GetDB()

	item := &model.Item{}
	if err := db.First(item, itemId).Error; err != nil {
		return nil, err
	}
	if err := applyItemForm(item, form); err != nil {
		return nil, err
	}
	if err := db.Save(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

func applyItemForm(item *model.Item, form ItemForm) error {
	title := strings.TrimSpace(form.Title)
	mediaType := strings.ToLower(strings.TrimSpace(form.MediaType))
	status := strings.ToLower(strings.TrimSpace(form.Status))
	if title == "" || mediaType == "" || status == "" {
		return ErrMissingFields
	}
	if !IsMediaType(mediaType) {
		return common.NewErrorf("unknown media type %q", mediaType)
	}

	item.Title = title
	item.MediaType = mediaType
	item.Status = status
	item.Score = parseScore(form.Score)
	item.Tags = strings.TrimSpace(form.Tags)
	item.Notes = strings.TrimSpace(form.Notes)

	if chapterTypes[mediaType] {
		item.ChapterCurrent = parseOptionalInt(form.ChapterCurrent)
		item.ChapterTotal = parseOptionalInt(form.ChapterTotal)
	} else {
		item.ChapterCurrent = nil
		item.ChapterTotal = nil
	}
	return nil
}

// ListItems filters one media type by status and free-text query and
// hydrates each item's comments.
func (s *TrackerService) ListItems(mediaType, statusFilter, q string, userId int) ([]ItemView, error) {
	db := database.GetDB()

	query := db.Model(model.Item{}).Where("media_type = ?", mediaType)
	if statusFilter != "" && statusFilter != "all" {
		query = query.Where("status = ?", statusFilter)
	}
	if q != "" {
		like := "%" + q + "%"
		query = query.Where("title LIKE ? OR tags LIKE ? OR notes LIKE ?", like, like, like)
	}

	var items []model.Item
	if err := query.Order("added_at desc").Find(&items).Error; err != nil {
		return nil, err
	}

	views := make([]ItemView, 0, len(items))
	for _, item := range items {
		var comments []model.ItemComment
		if err := db.Model(model.ItemComment{}).Where("item_id = ?", item.Id).Order("created_at asc").Find(&comments).Error; err != nil {
			return nil, err
		}
		commentViews, err := s.hydrateItemComments(comments, userId)
		if err != nil {
			return nil, err
		}
		views = append(views, ItemView{Item: item, Comments: commentViews})
	}
	return views, nil
}

// TypeCounts returns the per-type item tally for the menu badges.
func (s *TrackerService) TypeCounts() (map[string]int64, error) {
	db := database.GetDB()

	counts := make(map[string]int64, len(MediaTypes))
	for _, t := range MediaTypes {
		var count int64
		if err := db.Model(model.Item{}).Where("media_type = ?", t).Count(&count).Error; err != nil {
			return nil, err
		}
		counts[t] = count
	}
	return counts, nil
}

func (s *TrackerService) hydrateItemComments(comments []model.ItemComment, userId int) ([]ItemCommentView, error) {
	ids := make([]int, 0, len(comments))
	for _, c := range comments {
		ids = append(ids, c.Id)
	}
	states, err := s.reactionService.Summaries(model.KindItem, ids, userId)
	if err != nil {
		return nil, err
	}

	views := make([]ItemCommentView, 0, len(comments))
	for _, c := range comments {
		state := states[c.Id]
		views = append(views, ItemCommentView{
			ItemComment:  c,
			Likes:        state.Likes,
			Dislikes:     state.Dislikes,
			UserReaction: state.UserReaction,
		})
	}
	return views, nil
}

// SetCover replaces the item's cover preview in place. The cover lives at a
// fixed name, so re-uploading swaps the old one out.
func (s *TrackerService) SetCover(itemId int, fh *multipart.FileHeader) error {
	db := database.GetDB()

	item := &model.Item{}
	if err := db.First(item, itemId).Error; err != nil {
		return err
	}

	rel, err := saveSingletonPreview(uploadStore(), trackerFeature, item.Id, storage.CoverName, coverMaxPx, fh)
	if err != nil {
		return err
	}
	return db.Model(item).Update("cover_path", rel).Error
}

// SetSource attaches the item's source document. PDF only, fixed filename,
// replaced on re-upload.
func (s *TrackerService) SetSource(itemId int, fh *multipart.FileHeader) error {
	db := database.GetDB()

	item := &model.Item{}
	if err := db.First(item, itemId).Error; err != nil {
		return err
	}

	f, err := fh.Open()
	if err != nil {
		return err
	}
	defer f.Close()

	head, err := storage.Head(f)
	if err != nil {
		return err
	}
	if !storage.LooksLikePDF(head, extOf(fh.Filename)) {
		return common.NewErrorf("%q does not look like a PDF", fh.Filename)
	}

	st := uploadStore()
	rel := st.Rel(trackerFeature, item.Id, storage.BucketSource, storage.SourceName)
	if _, err := st.Save(rel, f); err != nil {
		return err
	}
	return db.Model(item).Update("source_path", rel).Error
}

// AddChapterPages stores a batch of chapter page scans for a serial item.
// Pages get unique names and accumulate; bad files are skipped without
// failing the batch.
func (s *TrackerService) AddChapterPages(itemId int, pages []*multipart.FileHeader) (entity.BatchResult, error) {
	var batch entity.BatchResult

	db := database.GetDB()
	item := &model.Item{}
	if err := db.First(item, itemId).Error; err != nil {
		return batch, err
	}

	st := uploadStore()
	for _, fh := range pages {
		if fh == nil || fh.Filename == "" {
			continue
		}
		if err := saveChapterPage(st, item.Id, fh); err != nil {
			logger.Warningf("skip chapter page %q: %v", fh.Filename, err)
			batch.Skipped++
			continue
		}
		batch.Saved++
	}
	return batch, nil
}

func saveChapterPage(st *storage.Store, itemId int, fh *multipart.FileHeader) error {
	f, err := fh.Open()
	if err != nil {
		return err
	}
	defer f.Close()

	ext := extOf(fh.Filename)
	head, err := storage.Head(f)
	if err != nil {
		return err
	}
	if !storage.LooksLikeImage(head, ext) {
		return common.NewErrorf("%q does not look like an image", fh.Filename)
	}

	rel := st.Rel(trackerFeature, itemId, storage.BucketChapters, storage.UniqueName(ext))
	_, err = st.Save(rel, f)
	return err
}

// ChapterPages lists the stored chapter page paths for an item.
func (s *TrackerService) ChapterPages(itemId int) ([]string, error) {
	st := uploadStore()
	return st.List(trackerFeature, itemId, storage.BucketChapters)
}

// AddComment appends a comment to an item thread.
func (s *TrackerService) AddComment(itemId int, user *model.User, body string) (*model.ItemComment, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrEmptyBody
	}
	if len(body) > maxCommentLen {
		return nil, ErrBodyTooLong
	}

	db := database.GetDB()
	item := &model.Item{}
	if err := db.First(item, itemId).Error; err != nil {
		return nil, err
	}

	comment := &model.ItemComment{
		ItemId: item.Id,
		UserId: user.Id,
		Author: user.Username,
		Body:   body,
	}
	if err := db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// DeleteComment removes an item comment and its reactions. Allowed for the
// author or an approver.
func (s *TrackerService) DeleteComment(commentId int, user *model.User) error {
	db := database.GetDB()

	comment := &model.ItemComment{}
	if err := db.First(comment, commentId).Error; err != nil {
		return err
	}
	if comment.UserId != user.Id && !user.CanApproveUsers {
		return ErrForbidden
	}

	if err := s.reactionService.DeleteFor(model.KindItem, []int{comment.Id}); err != nil {
		return err
	}
	return db.Delete(comment).Error
}

// DeleteItem removes an item with its comments, reactions and files.
func (s *TrackerService) DeleteItem(itemId int) error {
	db := database.GetDB()

	item := &model.Item{}
	if err := db.First(item, itemId).Error; err != nil {
		return err
	}

	var commentIds []int
	if err := db.Model(model.ItemComment{}).Where("item_id = ?", item.Id).Pluck("id", &commentIds).Error; err != nil {
		return err
	}
	if err := s.reactionService.DeleteFor(model.KindItem, commentIds); err != nil {
		return err
	}
	if err := db.Where("item_id = ?", item.Id).Delete(&model.ItemComment{}).Error; err != nil {
		return err
	}
	if err := db.Delete(item).Error; err != nil {
		return err
	}

	if err := uploadStore().RemoveOwner(trackerFeature, item.Id); err != nil {
		logger.Warning("remove item uploads:", err)
	}
	return nil
}

// parseScore clamps to the 0..10 scale; anything unparsable means unscored.
func parseScore(v string) *int {
	n := parseOptionalInt(v)
	if n == nil {
		return nil
	}
	score := *n
	if score < 0 {
		score = 0
	}
	if score > 10 {
		score = 10
	}
	return &score
}

func parseOptionalInt(v string) *int {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil
	}
	return &n
}

package controller

import (
	"strconv"
	"strings"

	"github.com/tandr/homehub/web/service"

	"github.com/gin-gonic/gin"
)

// TrackerController serves the media tracker: items, their comments and the
// cover/source/chapter uploads.
type TrackerController struct {
	BaseController

	trackerService service.TrackerService
}

func NewTrackerController(g *gin.RouterGroup) *TrackerController {
	a := &TrackerController{}
	a.initRouter(g)
	return a
}

func (a *TrackerController) initRouter(g *gin.RouterGroup) {
	g = g.Group("/tracker")
	g.Use(a.checkLogin)

	g.GET("", a.list)
	g.POST("", a.createItem)
	g.POST("/:id/update", a.updateItem)
	g.POST("/:id/delete", a.requireApprover(), a.deleteItem)

	g.POST("/:id/cover", a.setCover)
	g.POST("/:id/source", a.setSource)
	g.GET("/:id/chapters", a.chapterPages)
	g.POST("/:id/chapters", a.addChapterPages)

	g.POST("/:id/comment", a.addComment)
	g.POST("/comment/:id/delete", a.deleteComment)
}

// list returns the type menu when no valid type is chosen, otherwise the
// filtered item list for that type.
func (a *TrackerController) list(c *gin.Context) {
	counts, err := a.trackerService.TypeCounts()
	if err != nil {
		jsonMsg(c, "load tracker", err)
		return
	}

	mediaType := strings.ToLower(c.Query("type"))
	if !service.IsMediaType(mediaType) {
		jsonObj(c, gin.H{
			"mode":       "menu",
			"mediaTypes": service.MediaTypes,
			"typeCounts": counts,
		}, nil)
		return
	}

	statusOptions := service.StatusOptions(mediaType)
	statusFilter := strings.ToLower(c.DefaultQuery("status", "all"))
	if statusFilter != "all" && !contains(statusOptions, statusFilter) {
		statusFilter = "all"
	}

	items, err := a.trackerService.ListItems(mediaType, statusFilter, strings.TrimSpace(c.Query("q")), loginUser(c).Id)
	if err != nil {
		jsonMsg(c, "load tracker", err)
		return
	}
	jsonObj(c, gin.H{
		"mode":          "list",
		"mediaTypes":    service.MediaTypes,
		"typeCounts":    counts,
		"type":          mediaType,
		"statusOptions": statusOptions,
		"status":        statusFilter,
		"items":         items,
	}, nil)
}

func (a *TrackerController) createItem(c *gin.Context) {
	item, err := a.trackerService.CreateItem(a.bindItemForm(c))
	jsonMsgObj(c, "item added", item, err)
}

func (a *TrackerController) updateItem(c *gin.Context) {
	itemId, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		jsonMsg(c, "update item", err)
		return
	}
	item, err := a.trackerService.UpdateItem(itemId, a.bindItemForm(c))
	jsonMsgObj(c, "item updated", item, err)
}

func (a *TrackerController) deleteItem(c *gin.Context) {
	itemId, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		jsonMsg(c, "delete item", err)
		return
	}
	jsonMsg(c, "item deleted", a.trackerService.DeleteItem(itemId))
}

func (a *TrackerController) bindItemForm(c *gin.Context) service.ItemForm {
	return service.ItemForm{
		Title:          c.PostForm("title"),
		MediaType:      c.PostForm("media_type"),
		Status:         c.PostForm("status"),
		Score:          c.PostForm("score"),
		Tags:           c.PostForm("tags"),
		Notes:          c.PostForm("notes"),
		ChapterCurrent: c.PostForm("chapter_current"),
		ChapterTotal:   c.PostForm("chapter_total"),
	}
}

func (a *TrackerController) setCover(c *gin.Context) {
	itemId, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		jsonMsg(c, "set cover", err)
		return
	}
	fh, err := c.FormFile("cover")
	if err != nil {
		jsonMsg(c, "set cover", err)
		return
	}
	jsonMsg(c, "cover updated", a.trackerService.SetCover(itemId, fh))
}

func (a *TrackerController) setSource(c *gin.Context) {
	itemId, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		jsonMsg(c, "attach source", err)
		return
	}
	fh, err := c.FormFile("source")
	if err != nil {
		jsonMsg(c, "attach source", err)
		return
	}
	jsonMsg(c, "source attached", a.trackerService.SetSource(itemId, fh))
}

func (a *TrackerController) chapterPages(c *gin.Context) {
	itemId, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		jsonMsg(c, "list chapters", err)
		return
	}
	pages, err := a.trackerService.ChapterPages(itemId)
	jsonObj(c, pages, err)
}

func (a *TrackerController) addChapterPages(c *gin.Context) {
	itemId, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		jsonMsg(c, "upload chapters", err)
		return
	}
	form, err := c.MultipartForm()
	if err != nil {
		jsonMsg(c, "upload chapters", err)
		return
	}
	batch, err := a.trackerService.AddChapterPages(itemId, form.File["pages"])
	jsonMsgObj(c, uploadSummary("pages", batch.Saved, batch.Skipped), batch, err)
}

func (a *TrackerController) addComment(c *gin.Context) {
	itemId, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		jsonMsg(c, "add comment", err)
		return
	}
	comment, err := a.trackerService.AddComment(itemId, loginUser(c), c.PostForm("body"))
	jsonMsgObj(c, "comment added", comment, err)
}

func (a *TrackerController) deleteComment(c *gin.Context) {
	commentId, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		jsonMsg(c, "delete comment", err)
		return
	}
	err = a.trackerService.DeleteComment(commentId, loginUser(c))
	if err == service.ErrForbidden {
		pureJsonMsg(c, 403, false, "forbidden")
		return
	}
	jsonMsg(c, "comment deleted", err)
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// uploadSummary formats a batch tally, e.g. "3 photos saved, 1 skipped".
func uploadSummary(noun string, saved, skipped int) string {
	msg := strconv.Itoa(saved) + " " + noun + " saved"
	if skipped > 0 {
		msg += ", " + strconv.Itoa(skipped) + " skipped"
	}
	return msg
}

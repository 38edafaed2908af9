package controller

import (
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/tandr/homehub/web/service"

	"github.com/gin-gonic/gin"
)

// WeddingController serves the planner panels and the seating tables.
// Anyone logged in can browse; changes need the approver capability.
type WeddingController struct {
	BaseController

	weddingService service.WeddingService
}

func NewWeddingController(g *gin.RouterGroup) *WeddingController {
	a := &WeddingController{}
	a.initRouter(g)
	return a
}

func (a *WeddingController) initRouter(g *gin.RouterGroup) {
	g = g.Group("/wedding")
	g.Use(a.checkLogin)

	g.GET("", a.overview)
	g.GET("/:section", a.panel)
	g.GET("/tables/list", a.tables)

	g.POST("/:section", a.requireApprover(), a.addItem)
	g.POST("/item/:id/title", a.requireApprover(), a.updateItemTitle)
	g.POST("/item/:id/delete", a.requireApprover(), a.deleteItem)
	g.POST("/tables/new", a.requireApprover(), a.createTable)
	g.POST("/table/:id/photo", a.requireApprover(), a.setTablePhoto)
	g.POST("/table/:id/delete", a.requireApprover(), a.deleteTable)
}

func (a *WeddingController) overview(c *gin.Context) {
	jsonObj(c, gin.H{"sections": service.WeddingSections}, nil)
}

func (a *WeddingController) panel(c *gin.Context) {
	items, err := a.weddingService.Panel(c.Param("section"), strings.TrimSpace(c.Query("sub")))
	jsonObj(c, items, err)
}

func (a *WeddingController) addItem(c *gin.Context) {
	form := service.WeddingItemForm{
		Section: c.Param("section"),
		Sub:     c.PostForm("sub"),
		Title:   c.PostForm("title"),
		Note:    c.PostForm("note"),
		Url:     c.PostForm("url"),
	}

	var fh *multipart.FileHeader
	if f, err := c.FormFile("image"); err == nil && f != nil && f.Filename != "" {
		fh = f
	}

	item, err := a.weddingService.AddItem(form, fh)
	jsonMsgObj(c, "entry added", item, err)
}

func (a *WeddingController) updateItemTitle(c *gin.Context) {
	itemId, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		jsonMsg(c, "rename entry", err)
		return
	}
	jsonMsg(c, "entry renamed", a.weddingService.UpdateItemTitle(itemId, c.PostForm("title")))
}

func (a *WeddingController) deleteItem(c *gin.Context) {
	itemId, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		jsonMsg(c, "delete entry", err)
		return
	}
	jsonMsg(c, "entry deleted", a.weddingService.DeleteItem(itemId))
}

func (a *WeddingController) tables(c *gin.Context) {
	tables, err := a.weddingService.Tables()
	jsonObj(c, tables, err)
}

func (a *WeddingController) createTable(c *gin.Context) {
	seats, _ := strconv.Atoi(c.PostForm("seats"))
	table, err := a.weddingService.CreateTable(c.PostForm("name"), seats, c.PostForm("notes"))
	jsonMsgObj(c, "table added", table, err)
}

// setTablePhoto stores the guest photo or the layout sketch of a table,
// picked by the "which" form field.
func (a *WeddingController) setTablePhoto(c *gin.Context) {
	tableId, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		jsonMsg(c, "set table photo", err)
		return
	}
	fh, err := c.FormFile("image")
	if err != nil {
		jsonMsg(c, "set table photo", err)
		return
	}
	jsonMsg(c, "table photo updated", a.weddingService.SetTablePhoto(tableId, c.DefaultPostForm("which", "photo"), fh))
}

func (a *WeddingController) deleteTable(c *gin.Context) {
	tableId, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		jsonMsg(c, "delete table", err)
		return
	}
	jsonMsg(c, "table deleted", a.weddingService.DeleteTable(tableId))
}

package controller

import (
	"strconv"

	"github.com/tandr/homehub/logger"
	"github.com/tandr/homehub/web/service"

	"github.com/gin-gonic/gin"
)

// HomeController serves the dashboard cards and their approver-gated edits.
type HomeController struct {
	BaseController

	homeCardService service.HomeCardService
}

func NewHomeController(g *gin.RouterGroup) *HomeController {
	a := &HomeController{}
	a.initRouter(g)
	return a
}

func (a *HomeController) initRouter(g *gin.RouterGroup) {
	g = g.Group("/home")
	g.Use(a.checkLogin)

	g.GET("/cards", a.cards)
	g.POST("/card/:id/update", a.requireApprover(), a.updateCard)
}

func (a *HomeController) cards(c *gin.Context) {
	cards, err := a.homeCardService.List()
	jsonObj(c, cards, err)
}

// updateCard edits a card. A bad image is reported but never blocks the
// title/description update.
func (a *HomeController) updateCard(c *gin.Context) {
	cardId, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		jsonMsg(c, "update card", err)
		return
	}

	msg := "card updated"
	if fh, err := c.FormFile("image"); err == nil && fh != nil && fh.Filename != "" {
		if err := a.homeCardService.SetCardImage(cardId, fh); err != nil {
			logger.Warningf("card %d image skipped: %v", cardId, err)
			msg = "card updated, but the image could not be processed"
		}
	}

	_, err = a.homeCardService.UpdateCard(cardId, c.PostForm("title"), c.PostForm("description"))
	jsonMsg(c, msg, err)
}

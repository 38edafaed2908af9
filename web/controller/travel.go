package controller

import (
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/tandr/homehub/web/service"

	"github.com/gin-gonic/gin"
)

// TravelController serves the travel log: trips with photos, map pins and
// trip comment threads. Mutations require the travel-edit capability.
type TravelController struct {
	BaseController

	travelService service.TravelService
}

func NewTravelController(g *gin.RouterGroup) *TravelController {
	a := &TravelController{}
	a.initRouter(g)
	return a
}

func (a *TravelController) initRouter(g *gin.RouterGroup) {
	api := g.Group("/api")
	api.Use(a.checkLogin)
	api.GET("/trips", a.pins)

	g = g.Group("/travel")
	g.Use(a.checkLogin)

	g.GET("", a.list)
	g.POST("/new", a.requireTravelEdit(), a.newTrip)
	g.POST("/:id/update", a.requireTravelEdit(), a.updateTrip)
	g.POST("/:id/delete", a.requireTravelEdit(), a.deleteTrip)

	g.POST("/:id/comment", a.addComment)
	g.POST("/comment/:id/delete", a.deleteComment)
}

func (a *TravelController) list(c *gin.Context) {
	trips, err := a.travelService.ListTrips(loginUser(c).Id)
	jsonObj(c, trips, err)
}

// pins feeds the map with every trip that has coordinates.
func (a *TravelController) pins(c *gin.Context) {
	pins, err := a.travelService.Pins()
	jsonObj(c, pins, err)
}

func (a *TravelController) newTrip(c *gin.Context) {
	form, photos := a.bindTripForm(c)
	trip, batch, err := a.travelService.CreateTrip(form, photos)
	if err != nil {
		jsonMsg(c, "save trip", err)
		return
	}

	msg := "saved trip '" + trip.Title + "'"
	if trip.Lat == nil || trip.Lon == nil {
		msg += " (no map pin)"
	}
	msg += ", " + uploadSummary("photos", batch.Saved, batch.Skipped)
	jsonMsgObj(c, msg, batch, nil)
}

func (a *TravelController) updateTrip(c *gin.Context) {
	tripId, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		jsonMsg(c, "update trip", err)
		return
	}
	form, photos := a.bindTripForm(c)
	trip, batch, err := a.travelService.UpdateTrip(tripId, form, photos)
	if err != nil {
		jsonMsg(c, "update trip", err)
		return
	}
	jsonMsgObj(c, "updated trip '"+trip.Title+"', "+uploadSummary("photos", batch.Saved, batch.Skipped), batch, nil)
}

func (a *TravelController) deleteTrip(c *gin.Context) {
	tripId, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		jsonMsg(c, "delete trip", err)
		return
	}
	jsonMsg(c, "trip deleted", a.travelService.DeleteTrip(tripId))
}

// bindTripForm reads the trip fields and the photo batch from a multipart
// form. A plain form post without photos is also accepted.
func (a *TravelController) bindTripForm(c *gin.Context) (service.TripForm, []*multipart.FileHeader) {
	form := service.TripForm{
		Title:   c.PostForm("title"),
		Address: c.PostForm("address"),
		Notes:   c.PostForm("notes"),
		Lat:     c.PostForm("lat"),
		Lon:     c.PostForm("lon"),
	}

	var photos []*multipart.FileHeader
	if mf, err := c.MultipartForm(); err == nil && mf != nil {
		photos = mf.File["photos"]
	}
	return form, photos
}

func (a *TravelController) addComment(c *gin.Context) {
	tripId, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		jsonMsg(c, "add comment", err)
		return
	}
	comment, err := a.travelService.AddComment(tripId, loginUser(c), c.PostForm("body"))
	jsonMsgObj(c, "comment added", comment, err)
}

func (a *TravelController) deleteComment(c *gin.Context) {
	commentId, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		jsonMsg(c, "delete comment", err)
		return
	}
	err = a.travelService.DeleteComment(commentId, loginUser(c))
	if err == service.ErrForbidden {
		pureJsonMsg(c, http.StatusForbidden, false, "forbidden")
		return
	}
	jsonMsg(c, "comment deleted", err)
}

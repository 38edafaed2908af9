package controller

import (
	"io"
	"net/http"
	"os"
	"strconv"

	"github.com/tandr/homehub/config"
	"github.com/tandr/homehub/database"
	"github.com/tandr/homehub/logger"
	"github.com/tandr/homehub/web/service"

	"github.com/gin-gonic/gin"
)

// AdminController covers the approval queue, user capability management and
// the in-memory log view. Bootstrap-admin lives outside the auth wall and
// disappears once any admin exists.
type AdminController struct {
	BaseController

	registrationService service.RegistrationService
}

func NewAdminController(g *gin.RouterGroup) *AdminController {
	a := &AdminController{}
	a.initRouter(g)
	return a
}

func (a *AdminController) initRouter(g *gin.RouterGroup) {
	g.POST("/bootstrap-admin", a.bootstrapAdmin)

	g = g.Group("/admin")
	g.Use(a.checkLogin)

	g.GET("/requests", a.requireApprover(), a.requests)
	g.POST("/request/:id/approve", a.requireApprover(), a.approveRequest)
	g.POST("/request/:id/deny", a.requireApprover(), a.denyRequest)

	g.GET("/users", a.requireAdmin(), a.users)
	g.POST("/user/:id/capabilities", a.requireAdmin(), a.setCapabilities)
	g.GET("/logs", a.requireAdmin(), a.logs)
	g.GET("/backup", a.requireAdmin(), a.backup)
	g.POST("/restore", a.requireAdmin(), a.restore)
}

// bootstrapAdmin creates the first admin account. The admin count is read
// on every call, so the endpoint reopens if the last admin is demoted and
// plays dead otherwise.
func (a *AdminController) bootstrapAdmin(c *gin.Context) {
	exists, err := a.userService.AdminExists()
	if err != nil {
		jsonMsg(c, "bootstrap admin", err)
		return
	}
	if exists {
		c.Status(http.StatusNotFound)
		return
	}

	user, err := a.userService.BootstrapAdmin(c.PostForm("username"), c.PostForm("password"))
	if err != nil {
		jsonMsg(c, "bootstrap admin", err)
		return
	}
	logger.Noticef("bootstrap admin %q created from %s", user.Username, getRemoteIp(c))
	jsonMsg(c, "admin account created", nil)
}

func (a *AdminController) requests(c *gin.Context) {
	pending, err := a.registrationService.Pending()
	if err != nil {
		jsonMsg(c, "load requests", err)
		return
	}
	recent, err := a.registrationService.Recent(20)
	if err != nil {
		jsonMsg(c, "load requests", err)
		return
	}
	jsonObj(c, gin.H{"pending": pending, "recent": recent}, nil)
}

func (a *AdminController) approveRequest(c *gin.Context) {
	requestId, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		jsonMsg(c, "approve request", err)
		return
	}

	user, err := a.registrationService.Approve(requestId, loginUser(c).Id)
	switch err {
	case nil:
		jsonMsg(c, "approved, account '"+user.Username+"' created", nil)
	case service.ErrDecided:
		pureJsonMsg(c, http.StatusBadRequest, false, "request already decided")
	case service.ErrUsernameTaken:
		pureJsonMsg(c, http.StatusBadRequest, false, "username already taken, request denied")
	default:
		jsonMsg(c, "approve request", err)
	}
}

func (a *AdminController) denyRequest(c *gin.Context) {
	requestId, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		jsonMsg(c, "deny request", err)
		return
	}

	err = a.registrationService.Deny(requestId, loginUser(c).Id)
	if err == service.ErrDecided {
		pureJsonMsg(c, http.StatusBadRequest, false, "request already decided")
		return
	}
	jsonMsg(c, "request denied", err)
}

func (a *AdminController) users(c *gin.Context) {
	users, err := a.userService.GetUsers()
	jsonObj(c, users, err)
}

func (a *AdminController) setCapabilities(c *gin.Context) {
	userId, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		jsonMsg(c, "set capabilities", err)
		return
	}

	err = a.userService.SetCapabilities(userId,
		c.PostForm("can_travel_edit") == "true",
		c.PostForm("can_approve_users") == "true",
		c.PostForm("is_admin") == "true")
	jsonMsg(c, "capabilities updated", err)
}

// backup flushes the WAL and streams the database file as a download.
func (a *AdminController) backup(c *gin.Context) {
	if err := database.Checkpoint(); err != nil {
		jsonMsg(c, "backup database", err)
		return
	}
	c.FileAttachment(config.GetDBPath(), config.GetName()+".db")
}

// restore swaps in an uploaded database file after checking its signature.
func (a *AdminController) restore(c *gin.Context) {
	file, _, err := c.Request.FormFile("db")
	if err != nil {
		jsonMsg(c, "restore database", err)
		return
	}
	defer file.Close()

	ok, err := database.IsSQLiteDB(file)
	if err != nil {
		jsonMsg(c, "restore database", err)
		return
	}
	if !ok {
		pureJsonMsg(c, http.StatusBadRequest, false, "not a sqlite database")
		return
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		jsonMsg(c, "restore database", err)
		return
	}

	dbPath := config.GetDBPath()
	tempPath := dbPath + ".temp"
	temp, err := os.Create(tempPath)
	if err != nil {
		jsonMsg(c, "restore database", err)
		return
	}
	_, err = io.Copy(temp, file)
	if closeErr := temp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tempPath)
		jsonMsg(c, "restore database", err)
		return
	}

	if err := database.CloseDB(); err != nil {
		os.Remove(tempPath)
		jsonMsg(c, "restore database", err)
		return
	}
	if err := os.Rename(tempPath, dbPath); err != nil {
		jsonMsg(c, "restore database", err)
		return
	}
	if err := database.InitDB(dbPath); err != nil {
		jsonMsg(c, "restore database", err)
		return
	}

	logger.Noticef("database restored from upload by %q", loginUser(c).Username)
	jsonMsg(c, "database restored", nil)
}

func (a *AdminController) logs(c *gin.Context) {
	count, err := strconv.Atoi(c.DefaultQuery("count", "100"))
	if err != nil || count <= 0 {
		count = 100
	}
	jsonObj(c, logger.GetLogs(count, c.DefaultQuery("level", "info")), nil)
}

package controller

import (
	"net/http"

	"github.com/tandr/homehub/config"
	"github.com/tandr/homehub/logger"
	"github.com/tandr/homehub/web/service"
	"github.com/tandr/homehub/web/session"

	"github.com/gin-gonic/gin"
)

// LoginForm represents the login request structure.
type LoginForm struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// RegisterForm represents a registration request submission.
type RegisterForm struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
	Confirm  string `json:"confirm" form:"confirm"`
	Reason   string `json:"reason" form:"reason"`
}

// IndexController handles login, logout and registration requests.
type IndexController struct {
	BaseController

	registrationService service.RegistrationService
}

func NewIndexController(g *gin.RouterGroup) *IndexController {
	a := &IndexController{}
	a.initRouter(g)
	return a
}

func (a *IndexController) initRouter(g *gin.RouterGroup) {
	g.POST("/login", a.login)
	g.POST("/logout", a.logout)
	g.POST("/register", a.register)
}

// login authenticates and stores the identity in the cookie session.
func (a *IndexController) login(c *gin.Context) {
	var form LoginForm
	if err := c.ShouldBind(&form); err != nil {
		pureJsonMsg(c, http.StatusBadRequest, false, "invalid form data")
		return
	}
	if form.Username == "" || form.Password == "" {
		pureJsonMsg(c, http.StatusBadRequest, false, "username and password are required")
		return
	}

	user := a.userService.CheckUser(form.Username, form.Password)
	if user == nil {
		logger.Warningf("failed login for %q from %s", form.Username, getRemoteIp(c))
		pureJsonMsg(c, http.StatusUnauthorized, false, "invalid credentials")
		return
	}

	maxAge := int(config.GetSessionMaxAge().Seconds())
	if err := session.SetMaxAge(c, maxAge); err != nil {
		logger.Warning("unable to set session max age:", err)
	}
	if err := session.SetLoginUser(c, user); err != nil {
		logger.Warning("unable to save session:", err)
	}

	logger.Infof("%s logged in from %s", user.Username, getRemoteIp(c))
	jsonMsg(c, "login successful", nil)
}

func (a *IndexController) logout(c *gin.Context) {
	user := session.GetLoginUser(c)
	if user != nil {
		logger.Infof("%s logged out", user.Username)
	}
	if err := session.ClearSession(c); err != nil {
		logger.Warning("unable to clear session:", err)
	}
	jsonMsg(c, "logged out", nil)
}

// register submits an account request for later approval.
func (a *IndexController) register(c *gin.Context) {
	if session.IsLogin(c) {
		pureJsonMsg(c, http.StatusBadRequest, false, "already logged in")
		return
	}

	var form RegisterForm
	if err := c.ShouldBind(&form); err != nil {
		pureJsonMsg(c, http.StatusBadRequest, false, "invalid form data")
		return
	}

	err := a.registrationService.Submit(form.Username, form.Password, form.Confirm, form.Reason)
	switch err {
	case nil:
		jsonMsg(c, "request submitted, an admin will approve or deny it", nil)
	case service.ErrMissingFields, service.ErrPasswordMismatch, service.ErrWeakPassword,
		service.ErrUsernameTaken, service.ErrRequestExists:
		pureJsonMsg(c, http.StatusBadRequest, false, err.Error())
	default:
		jsonMsg(c, "submit registration request", err)
	}
}

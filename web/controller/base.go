// Package controller provides the HTTP handlers of the homehub portal:
// authentication, the home dashboard, the media tracker, the travel log,
// the wedding planner, the admin area and the reaction API.
package controller

import (
	"net/http"

	"github.com/tandr/homehub/database/model"
	"github.com/tandr/homehub/web/service"
	"github.com/tandr/homehub/web/session"

	"github.com/gin-gonic/gin"
)

const ctxUser = "LOGIN_USER_FRESH"

// BaseController provides the authentication and capability gates shared by
// all controllers.
type BaseController struct {
	userService service.UserService
}

// checkLogin verifies the session identity and loads a fresh copy of the
// user, so capability changes apply to in-flight sessions immediately.
func (a *BaseController) checkLogin(c *gin.Context) {
	sessionUser := session.GetLoginUser(c)
	if sessionUser == nil {
		pureJsonMsg(c, http.StatusUnauthorized, false, "login required")
		c.Abort()
		return
	}

	user, err := a.userService.GetUser(sessionUser.Id)
	if err != nil {
		_ = session.ClearSession(c)
		pureJsonMsg(c, http.StatusUnauthorized, false, "login required")
		c.Abort()
		return
	}

	c.Set(ctxUser, user)
	c.Next()
}

// loginUser returns the fresh user loaded by checkLogin.
func loginUser(c *gin.Context) *model.User {
	if obj, ok := c.Get(ctxUser); ok {
		if user, ok := obj.(*model.User); ok {
			return user
		}
	}
	return nil
}

// requireCapability forbids the request before any mutation when the
// predicate does not hold for the current identity.
func (a *BaseController) requireCapability(check func(*model.User) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := loginUser(c)
		if user == nil || !check(user) {
			pureJsonMsg(c, http.StatusForbidden, false, "forbidden")
			c.Abort()
			return
		}
		c.Next()
	}
}

func (a *BaseController) requireTravelEdit() gin.HandlerFunc {
	return a.requireCapability(func(u *model.User) bool { return u.CanTravelEdit })
}

func (a *BaseController) requireApprover() gin.HandlerFunc {
	return a.requireCapability(func(u *model.User) bool { return u.CanApproveUsers })
}

func (a *BaseController) requireAdmin() gin.HandlerFunc {
	return a.requireCapability(func(u *model.User) bool { return u.IsAdmin })
}

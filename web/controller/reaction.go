package controller

import (
	"net/http"
	"strconv"

	"github.com/tandr/homehub/database/model"
	"github.com/tandr/homehub/web/entity"
	"github.com/tandr/homehub/web/service"
	"github.com/tandr/homehub/web/session"

	"github.com/gin-gonic/gin"
)

// ReactionController exposes the like/dislike toggle used by both comment
// threads. The endpoint carries its own auth check so it can report a
// missing comment before a missing login.
type ReactionController struct {
	BaseController

	reactionService service.ReactionService
}

func NewReactionController(g *gin.RouterGroup) *ReactionController {
	a := &ReactionController{}
	a.initRouter(g)
	return a
}

func (a *ReactionController) initRouter(g *gin.RouterGroup) {
	g.POST("/api/comments/:kind/:id/react", a.react)
}

// react toggles one reaction and answers with fresh counts. The action comes
// in a JSON body {"action":"like"|"dislike"}. Checks run in a fixed order:
// kind, then target comment, then login, then action.
func (a *ReactionController) react(c *gin.Context) {
	kind, ok := normalizeKind(c.Param("kind"))
	if !ok {
		reactionError(c, http.StatusBadRequest, "bad kind")
		return
	}

	commentId, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		reactionError(c, http.StatusNotFound, "not found")
		return
	}
	exists, err := a.reactionService.CommentExists(kind, commentId)
	if err != nil {
		reactionError(c, http.StatusInternalServerError, "server error")
		return
	}
	if !exists {
		reactionError(c, http.StatusNotFound, "not found")
		return
	}

	sessionUser := session.GetLoginUser(c)
	if sessionUser == nil {
		reactionError(c, http.StatusUnauthorized, "auth")
		return
	}
	user, err := a.userService.GetUser(sessionUser.Id)
	if err != nil {
		reactionError(c, http.StatusUnauthorized, "auth")
		return
	}

	var body struct {
		Action string `json:"action"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		reactionError(c, http.StatusBadRequest, "bad action")
		return
	}

	state, err := a.reactionService.Toggle(kind, commentId, user.Id, body.Action)
	switch err {
	case nil:
	case service.ErrBadAction:
		reactionError(c, http.StatusBadRequest, "bad action")
		return
	case service.ErrCommentNotFound:
		reactionError(c, http.StatusNotFound, "not found")
		return
	default:
		reactionError(c, http.StatusInternalServerError, "server error")
		return
	}

	c.JSON(http.StatusOK, entity.Reaction{
		Ok:           true,
		Likes:        state.Likes,
		Dislikes:     state.Dislikes,
		UserReaction: state.UserReaction,
	})
}

// normalizeKind accepts both the bare ledger kinds and the hyphenated forms
// older clients post.
func normalizeKind(kind string) (string, bool) {
	switch kind {
	case model.KindTrip, "trip-comment":
		return model.KindTrip, true
	case model.KindItem, "item-comment":
		return model.KindItem, true
	}
	return "", false
}

func reactionError(c *gin.Context, status int, msg string) {
	c.JSON(status, entity.ReactionError{Ok: false, Error: msg})
}

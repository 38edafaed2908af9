package controller

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"

	"github.com/tandr/homehub/database"
	"github.com/tandr/homehub/database/model"
	"github.com/tandr/homehub/web/service"
	"github.com/tandr/homehub/web/session"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func setupEngine(t *testing.T) *gin.Engine {
	os.Remove("test.db")
	assert.NoError(t, database.InitDB("test.db"))
	t.Cleanup(func() {
		db, _ := database.GetDB().DB()
		db.Close()
		os.Remove("test.db")
	})

	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(sessions.Sessions("homehub", cookie.NewStore([]byte("test-secret"))))

	// Test-only login shortcut
	engine.POST("/test-login/:id", func(c *gin.Context) {
		id, _ := strconv.Atoi(c.Param("id"))
		userService := service.UserService{}
		user, err := userService.GetUser(id)
		assert.NoError(t, err)
		assert.NoError(t, session.SetLoginUser(c, user))
		c.Status(http.StatusOK)
	})

	g := engine.Group("/")
	NewReactionController(g)
	NewWeddingController(g)
	return engine
}

func loginCookie(t *testing.T, engine *gin.Engine, userId int) string {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/test-login/"+strconv.Itoa(userId), nil)
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	return w.Header().Get("Set-Cookie")
}

func postReact(engine *gin.Engine, path, action, cookieHeader string) *httptest.ResponseRecorder {
	body, _ := json.Marshal(map[string]string{"action": action})
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if cookieHeader != "" {
		req.Header.Set("Cookie", cookieHeader)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestReactionEndpointContract(t *testing.T) {
	engine := setupEngine(t)

	userService := service.UserService{}
	user, err := userService.CreateUser("ana", "password123")
	assert.NoError(t, err)

	db := database.GetDB()
	trip := &model.Trip{Title: "Lisbon", Address: "Lisbon"}
	assert.NoError(t, db.Create(trip).Error)
	comment := &model.Comment{TripId: trip.Id, UserId: user.Id, Author: "ana", Body: "loved it"}
	assert.NoError(t, db.Create(comment).Error)

	path := "/api/comments/trip/" + strconv.Itoa(comment.Id) + "/react"
	cookieHeader := loginCookie(t, engine, user.Id)

	// Checks run kind, then target, then login, then action
	w := postReact(engine, "/api/comments/page/1/react", "like", cookieHeader)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postReact(engine, "/api/comments/trip/9999/react", "like", cookieHeader)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = postReact(engine, path, "like", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	var failure struct {
		Ok    bool   `json:"ok"`
		Error string `json:"error"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &failure))
	assert.False(t, failure.Ok)
	assert.Equal(t, "auth", failure.Error)

	w = postReact(engine, path, "love", cookieHeader)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &failure))
	assert.Equal(t, "bad action", failure.Error)

	// A missing or non-JSON body is a bad action too
	req := httptest.NewRequest(http.MethodPost, path, nil)
	req.Header.Set("Cookie", cookieHeader)
	raw := httptest.NewRecorder()
	engine.ServeHTTP(raw, req)
	assert.Equal(t, http.StatusBadRequest, raw.Code)
	assert.NoError(t, json.Unmarshal(raw.Body.Bytes(), &failure))
	assert.Equal(t, "bad action", failure.Error)

	// Toggle on
	w = postReact(engine, path, "like", cookieHeader)
	assert.Equal(t, http.StatusOK, w.Code)
	var state struct {
		Ok           bool    `json:"ok"`
		Likes        int     `json:"likes"`
		Dislikes     int     `json:"dislikes"`
		UserReaction *string `json:"user_reaction"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.True(t, state.Ok)
	assert.Equal(t, 1, state.Likes)
	assert.Equal(t, 0, state.Dislikes)
	assert.Equal(t, "like", *state.UserReaction)

	// Toggle off
	w = postReact(engine, path, "like", cookieHeader)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.Equal(t, 0, state.Likes)
	assert.Nil(t, state.UserReaction)

	// Hyphenated kind aliases resolve to the same ledger
	aliasPath := "/api/comments/trip-comment/" + strconv.Itoa(comment.Id) + "/react"
	w = postReact(engine, aliasPath, "dislike", cookieHeader)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.Equal(t, 1, state.Dislikes)
	assert.Equal(t, "dislike", *state.UserReaction)
}

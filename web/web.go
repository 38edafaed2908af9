// Package web provides the homehub web server: routing, sessions and the
// controllers behind the portal.
package web

import (
	"context"
	"io"
	"net"
	"net/http"
	"strconv"

	"github.com/tandr/homehub/config"
	"github.com/tandr/homehub/logger"
	"github.com/tandr/homehub/util/common"
	"github.com/tandr/homehub/util/random"
	"github.com/tandr/homehub/web/controller"
	"github.com/tandr/homehub/web/middleware"

	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

// Server is the homehub web server with its controllers.
type Server struct {
	httpServer *http.Server
	listener   net.Listener

	index    *controller.IndexController
	home     *controller.HomeController
	tracker  *controller.TrackerController
	travel   *controller.TravelController
	wedding  *controller.WeddingController
	admin    *controller.AdminController
	reaction *controller.ReactionController
	upload   *controller.UploadController

	ctx    context.Context
	cancel context.CancelFunc
}

// NewServer creates a new web server instance with a cancellable context.
func NewServer() *Server {
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{ctx: ctx, cancel: cancel}
}

// initRouter initializes Gin, registers middleware and controllers and
// returns the configured engine.
func (s *Server) initRouter() (*gin.Engine, error) {
	if config.IsDebug() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.DefaultWriter = io.Discard
		gin.DefaultErrorWriter = io.Discard
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.Default()
	engine.MaxMultipartMemory = config.GetMaxUploadBytes()

	if webDomain := config.GetWebDomain(); webDomain != "" {
		engine.Use(middleware.DomainValidatorMiddleware(webDomain))
	}

	engine.Use(gzip.Gzip(
		gzip.DefaultCompression,
		gzip.WithExcludedPaths([]string{"/u/"}),
	))

	secret := config.GetSessionSecret()
	if secret == "" {
		// No configured secret means sessions do not survive a restart.
		secret = random.Seq(32)
		logger.Warning("HUB_SESSION_SECRET is not set, using a throwaway session secret")
	}
	store := cookie.NewStore([]byte(secret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(config.GetSessionMaxAge().Seconds()),
		HttpOnly: true,
	})
	engine.Use(sessions.Sessions("homehub", store))

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "version": config.GetVersion()})
	})

	g := engine.Group("/")
	s.index = controller.NewIndexController(g)
	s.home = controller.NewHomeController(g)
	s.tracker = controller.NewTrackerController(g)
	s.travel = controller.NewTravelController(g)
	s.wedding = controller.NewWeddingController(g)
	s.admin = controller.NewAdminController(g)
	s.reaction = controller.NewReactionController(g)
	s.upload = controller.NewUploadController(g)

	engine.NoRoute(func(c *gin.Context) {
		c.AbortWithStatus(http.StatusNotFound)
	})

	return engine, nil
}

// Start initializes and starts the web server.
func (s *Server) Start() (err error) {
	defer func() {
		if err != nil {
			_ = s.Stop()
		}
	}()

	engine, err := s.initRouter()
	if err != nil {
		return err
	}

	listenAddr := net.JoinHostPort(config.GetListen(), strconv.Itoa(config.GetPort()))
	listener, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return err
	}
	logger.Info("Web server running HTTP on", listener.Addr())

	s.listener = listener
	s.httpServer = &http.Server{Handler: engine}

	go func() {
		defer common.Recover("web server")
		_ = s.httpServer.Serve(listener)
	}()

	return nil
}

// Stop gracefully shuts down the web server.
func (s *Server) Stop() error {
	s.cancel()
	var err1, err2 error
	if s.httpServer != nil {
		err1 = s.httpServer.Shutdown(s.ctx)
	}
	if s.listener != nil {
		err2 = s.listener.Close()
	}
	return common.Combine(err1, err2)
}

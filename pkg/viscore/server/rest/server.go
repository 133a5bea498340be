package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"kgeyst.com/viscore/pkg/common"
	"kgeyst.com/viscore/pkg/viscore/api"
)

const (
	// ConfigKeyListenAddress the address the HTTP server listens on
	ConfigKeyListenAddress = "listenAddress"
)

const defaultListenAddress = ":5000"

// maxUploadSize the maximum accepted image size (the vision APIs reject anything larger anyway).
const maxUploadSize = 16 << 20

// Server exposes the test bench over a REST API, mirroring what the web UI consumes.
type Server struct {
	engine        *gin.Engine
	viscore       api.API
	listenAddress string
	logger        common.Logger
}

func NewServer(viscore api.API, config *common.Config, logger common.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.MaxMultipartMemory = maxUploadSize
	s := &Server{
		engine:        engine,
		viscore:       viscore,
		listenAddress: config.GetStringOrDefault(ConfigKeyListenAddress, defaultListenAddress),
		logger:        logger,
	}
	s.injectRouters()
	return s
}

func (s *Server) Run() error {
	s.logger.Log("starting the HTTP server at " + s.listenAddress)
	return s.engine.Run(s.listenAddress)
}

// Handler returns the underlying HTTP handler. Useful for driving the server in tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) injectRouters() {
	g := s.engine
	g.NoRoute(func(c *gin.Context) {
		c.String(http.StatusNotFound, "Invalid path: %s", c.Request.URL.Path)
	})
	apiGroup := g.Group("/api")
	{
		apiGroup.GET("/config", s.getConfig)
		apiGroup.GET("/test-cases", s.getTestCases)
		apiGroup.POST("/test-cases", s.addTestCase)
		apiGroup.DELETE("/test-cases/:id", s.deleteTestCase)
		apiGroup.POST("/test-cases/clear", s.clearTestCases)
		apiGroup.POST("/test-cases/import", s.importFromPage)
		apiGroup.POST("/run-tests", s.runTests)
		apiGroup.POST("/test-single", s.testSingleImage)
		apiGroup.GET("/results/history", s.getResultHistory)
		apiGroup.GET("/results/:name", s.getResult)
	}
	g.Static("/uploads", s.viscore.UploadsFolder())
}

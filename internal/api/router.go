package api

import (
	"github.com/gin-gonic/gin"

	"github.com/almostcrackd/captionboard/internal/api/handler"
	"github.com/almostcrackd/captionboard/internal/api/middleware"
	"github.com/almostcrackd/captionboard/internal/logger"
	"github.com/almostcrackd/captionboard/internal/service"
)

// RouterConfig holds the router's runtime settings.
type RouterConfig struct {
	Mode string
	CORS middleware.CORSConfig
}

// SetupRouter configures the Gin router with all routes
func SetupRouter(
	pipelineService *service.PipelineService,
	galleryService *service.GalleryService,
	voteService *service.VoteService,
	verifier middleware.TokenVerifier,
	log *logger.Logger,
	cfg RouterConfig,
) *gin.Engine {
	// Set Gin mode
	switch cfg.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	// Add middleware
	r.Use(gin.Recovery())
	r.Use(middleware.LoggerMiddleware(log))
	r.Use(middleware.CORS(cfg.CORS))

	// Create handlers
	healthHandler := handler.NewHealthHandler()
	pipelineHandler := handler.NewPipelineHandler(pipelineService)
	galleryHandler := handler.NewGalleryHandler(galleryService)
	voteHandler := handler.NewVoteHandler(voteService)

	// Health check
	r.GET("/health", healthHandler.Health)

	// Upload/caption pipeline; every stage requires a signed-in caller.
	pipeline := r.Group("/pipeline")
	pipeline.Use(middleware.RequireAuth(verifier))
	{
		pipeline.POST("/generate-presigned-url", pipelineHandler.GeneratePresignedURL)
		pipeline.POST("/upload-image-from-url", pipelineHandler.UploadImageFromURL)
		pipeline.POST("/generate-captions", pipelineHandler.GenerateCaptions)
	}

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		// Gallery browsing is public
		v1.GET("/gallery", galleryHandler.GetPage)

		// Vote state seeding resolves the caller when a token is present
		v1.GET("/captions/:id/votes", middleware.OptionalAuth(verifier), voteHandler.GetVoteState)

		// Vote writes require a signed-in caller
		v1.POST("/captions/:id/votes", middleware.RequireAuth(verifier), voteHandler.SubmitVote)
	}

	return r
}

// Package httpapi exposes the public JSON API: giveaway views, entries,
// proofs and the admin surface.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/fairdraw/internal/fair"
	"github.com/dmitrijs2005/fairdraw/internal/logging"
	"github.com/dmitrijs2005/fairdraw/internal/server/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const shutdownTimeout = 5 * time.Second

type GiveawayProvider interface {
	Create(ctx context.Context, title string, endsAt time.Time) (*models.Giveaway, error)
	Get(ctx context.Context, publicID uuid.UUID) (*models.Giveaway, error)
	List(ctx context.Context, limit int) ([]*models.Giveaway, error)
	Enter(ctx context.Context, publicID uuid.UUID, userID int64) (*models.Entry, error)
	Commit(ctx context.Context, publicID uuid.UUID) (*models.Giveaway, error)
	EntryCount(ctx context.Context, giveawayID int64) (int, error)
}

type ProofProvider interface {
	BuildProof(ctx context.Context, publicID uuid.UUID) (*fair.Proof, error)
}

type UserProvider interface {
	Register(ctx context.Context, username string) (*models.User, error)
}

type AdminProvider interface {
	Login(ctx context.Context, password string) (string, error)
	Authorize(ctx context.Context, token string) error
}

type HTTPServer struct {
	address   string
	logger    logging.Logger
	giveaways GiveawayProvider
	proofs    ProofProvider
	users     UserProvider
	admin     AdminProvider
}

func NewHTTPServer(address string, logger logging.Logger,
	gs GiveawayProvider, ps ProofProvider, us UserProvider, as AdminProvider) *HTTPServer {
	return &HTTPServer{
		address:   address,
		logger:    logger.With("module", "http_server"),
		giveaways: gs,
		proofs:    ps,
		users:     us,
		admin:     as,
	}
}

// Router builds the gin engine with all routes registered.
func (s *HTTPServer) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	api := router.Group("/api")
	api.GET("/giveaways", s.listGiveaways)
	api.GET("/giveaways/:publicID", s.getGiveaway)
	api.GET("/giveaways/:publicID/proof", s.getProof)
	api.POST("/giveaways/:publicID/entries", s.addEntry)
	api.POST("/users", s.registerUser)
	api.POST("/admin/login", s.adminLogin)

	adm := api.Group("/admin")
	adm.Use(s.adminAuthMiddleware())
	adm.POST("/giveaways", s.createGiveaway)
	adm.POST("/giveaways/:publicID/commit", s.commitGiveaway)

	return router
}

// Run serves the API until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {

	srv := &http.Server{
		Addr:    s.address,
		Handler: s.Router(),
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown error", "error", err.Error())
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/fairdraw/internal/server/models"
	"github.com/dmitrijs2005/fairdraw/internal/shared"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// giveawayResponse is the public view of a giveaway. The sealed seed is not
// part of the model the services return, so it can never leak here; the
// revealed seed appears only after the draw.
type giveawayResponse struct {
	PublicID       string    `json:"publicId"`
	Title          string    `json:"title"`
	EndsAt         time.Time `json:"endsAt"`
	SeedCommitHash string    `json:"seedCommitHash,omitempty"`
	Status         string    `json:"status"`
	EntryCount     int       `json:"entryCount"`
	LateCommitted  bool      `json:"lateCommitted,omitempty"`
	RevealedSeed   string    `json:"revealedSeed,omitempty"`
	EntriesHash    string    `json:"entriesHash,omitempty"`
	PickHash       string    `json:"pickHash,omitempty"`
	WinnerIndex    *int      `json:"winnerIndex,omitempty"`
	WinnerEntryID  *int64    `json:"winnerEntryId,omitempty"`
	WinnerUserID   *int64    `json:"winnerUserId,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

func toGiveawayResponse(g *models.Giveaway, entryCount int) giveawayResponse {
	return giveawayResponse{
		PublicID:       g.PublicID.String(),
		Title:          g.Title,
		EndsAt:         g.EndsAt,
		SeedCommitHash: g.SeedHash,
		Status:         g.Status,
		EntryCount:     entryCount,
		LateCommitted:  g.LateCommitted,
		RevealedSeed:   g.RevealedSeed,
		EntriesHash:    g.EntriesHash,
		PickHash:       g.PickHash,
		WinnerIndex:    g.WinnerIndex,
		WinnerEntryID:  g.WinnerEntryID,
		WinnerUserID:   g.WinnerUserID,
		CreatedAt:      g.CreatedAt,
	}
}

func statusFromError(err error) int {
	switch {
	case errors.Is(err, shared.ErrorNotFound):
		return http.StatusNotFound
	case errors.Is(err, shared.ErrorValidation):
		return http.StatusBadRequest
	case errors.Is(err, shared.ErrorAlreadyExists),
		errors.Is(err, shared.ErrorAlreadyEntered),
		errors.Is(err, shared.ErrorAlreadyCommitted),
		errors.Is(err, shared.ErrorGiveawayClosed):
		return http.StatusConflict
	case errors.Is(err, shared.ErrorUnauthorized), errors.Is(err, shared.ErrorInvalidToken):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func (s *HTTPServer) abortWithError(c *gin.Context, err error) {
	status := statusFromError(err)
	if status == http.StatusInternalServerError {
		s.logger.Error(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err.Error())
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func parsePublicID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("publicID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid giveaway id"})
		return uuid.UUID{}, false
	}
	return id, true
}

func (s *HTTPServer) listGiveaways(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	giveaways, err := s.giveaways.List(c.Request.Context(), limit)
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	resp := make([]giveawayResponse, 0, len(giveaways))
	for _, g := range giveaways {
		count, err := s.giveaways.EntryCount(c.Request.Context(), g.ID)
		if err != nil {
			s.abortWithError(c, err)
			return
		}
		resp = append(resp, toGiveawayResponse(g, count))
	}

	c.JSON(http.StatusOK, resp)
}

func (s *HTTPServer) getGiveaway(c *gin.Context) {
	publicID, ok := parsePublicID(c)
	if !ok {
		return
	}

	g, err := s.giveaways.Get(c.Request.Context(), publicID)
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	count, err := s.giveaways.EntryCount(c.Request.Context(), g.ID)
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, toGiveawayResponse(g, count))
}

func (s *HTTPServer) getProof(c *gin.Context) {
	publicID, ok := parsePublicID(c)
	if !ok {
		return
	}

	proof, err := s.proofs.BuildProof(c.Request.Context(), publicID)
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, proof)
}

type addEntryRequest struct {
	UserID int64 `json:"userId" binding:"required"`
}

func (s *HTTPServer) addEntry(c *gin.Context) {
	publicID, ok := parsePublicID(c)
	if !ok {
		return
	}

	var req addEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId is required"})
		return
	}

	entry, err := s.giveaways.Enter(c.Request.Context(), publicID, req.UserID)
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"entryId":   entry.ID,
		"userId":    entry.UserID,
		"createdAt": entry.CreatedAt,
	})
}

type registerUserRequest struct {
	Username string `json:"username" binding:"required"`
}

func (s *HTTPServer) registerUser(c *gin.Context) {
	var req registerUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username is required"})
		return
	}

	user, err := s.users.Register(c.Request.Context(), req.Username)
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":       user.ID,
		"username": user.Username,
	})
}

type adminLoginRequest struct {
	Password string `json:"password" binding:"required"`
}

func (s *HTTPServer) adminLogin(c *gin.Context) {
	var req adminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password is required"})
		return
	}

	token, err := s.admin.Login(c.Request.Context(), req.Password)
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (s *HTTPServer) adminAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		if err := s.admin.Authorize(c.Request.Context(), token); err != nil {
			c.AbortWithStatusJSON(statusFromError(err), gin.H{"error": "unauthorized"})
			return
		}

		c.Next()
	}
}

type createGiveawayRequest struct {
	Title  string    `json:"title" binding:"required"`
	EndsAt time.Time `json:"endsAt" binding:"required"`
}

func (s *HTTPServer) createGiveaway(c *gin.Context) {
	var req createGiveawayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title and endsAt are required"})
		return
	}

	g, err := s.giveaways.Create(c.Request.Context(), req.Title, req.EndsAt)
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toGiveawayResponse(g, 0))
}

func (s *HTTPServer) commitGiveaway(c *gin.Context) {
	publicID, ok := parsePublicID(c)
	if !ok {
		return
	}

	g, err := s.giveaways.Commit(c.Request.Context(), publicID)
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	count, err := s.giveaways.EntryCount(c.Request.Context(), g.ID)
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, toGiveawayResponse(g, count))
}

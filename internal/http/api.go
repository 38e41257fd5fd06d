package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"health-metrics/internal/domain"
	"health-metrics/internal/service"
	"health-metrics/internal/session"
)

const sessionKey = "session"

// Handler wires HTTP routes to domain services.
type Handler struct {
	auth     service.AuthService
	users    service.UserService
	items    service.ItemService
	results  service.ResultService
	sessions *session.Manager
	logger   *logrus.Logger
}

func NewHandler(auth service.AuthService, users service.UserService, items service.ItemService, results service.ResultService, sessions *session.Manager, logger *logrus.Logger) *Handler {
	return &Handler{
		auth:     auth,
		users:    users,
		items:    items,
		results:  results,
		sessions: sessions,
		logger:   logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware())
	router.Use(h.requestLogger())

	api := router.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		api.POST("/auth/login", h.login)
		api.POST("/auth/logout", h.logout)

		authed := api.Group("", h.withSession())
		{
			authed.POST("/auth/password", h.changePassword)
			authed.GET("/auth/me", h.me)

			authed.GET("/users", h.listUsers)
			authed.POST("/users", h.createUser)
			authed.PUT("/users/:id", h.updateUser)
			authed.DELETE("/users/:id", h.deleteUser)

			authed.GET("/items", h.listItems)
			authed.POST("/items", h.createItem)
			authed.PUT("/items/:id", h.updateItem)
			authed.DELETE("/items/:id", h.deleteItem)

			authed.GET("/results", h.listResults)
			authed.POST("/results", h.createResult)
			authed.PUT("/results/:id", h.updateResult)
			authed.DELETE("/results/:id", h.deleteResult)

			authed.GET("/my/results", h.myResults)
		}
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func (h *Handler) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		h.logger.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"elapsed": time.Since(start).String(),
		}).Info("request")
	}
}

// withSession resolves the bearer token into a live session and stores it
// in the request context. Requests without a valid session are rejected.
func (h *Handler) withSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": domain.ErrNotAuthenticated.Error()})
			return
		}
		sess, err := h.sessions.Lookup(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": domain.ErrNotAuthenticated.Error()})
			return
		}
		c.Set(sessionKey, sess)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

func currentSession(c *gin.Context) *session.Session {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil
	}
	sess, _ := v.(*session.Session)
	return sess
}

// writeError maps the domain error taxonomy onto HTTP statuses.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials), errors.Is(err, domain.ErrNotAuthenticated):
		status = http.StatusUnauthorized
	case errors.Is(err, domain.ErrAccessDenied), errors.Is(err, domain.ErrSelfDeleteForbidden):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrDuplicateAccount), errors.Is(err, domain.ErrDuplicateResultPair):
		status = http.StatusConflict
	case domain.IsValidationError(err),
		errors.Is(err, domain.ErrScoreOutOfRange),
		errors.Is(err, domain.ErrPasswordMismatch),
		errors.Is(err, domain.ErrPasswordFormat),
		errors.Is(err, domain.ErrWrongPassword):
		status = http.StatusBadRequest
	case domain.IsStoreError(err):
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

// ---- auth ----

type loginRequest struct {
	Account  string `json:"account"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token      string `json:"token"`
	UserID     int64  `json:"user_id"`
	Name       string `json:"name"`
	Role       string `json:"role"`
	FirstLogin bool   `json:"first_login"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	sess, token, err := h.auth.Login(c.Request.Context(), req.Account, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, sessionResponse{
		Token:      token,
		UserID:     sess.UserID,
		Name:       sess.Name,
		Role:       sess.Role.String(),
		FirstLogin: sess.PendingPasswordChange(),
	})
}

func (h *Handler) logout(c *gin.Context) {
	// logout succeeds even without a live session
	if token := bearerToken(c); token != "" {
		h.auth.Logout(token)
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

func (h *Handler) changePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	err := h.auth.ChangePassword(c.Request.Context(), currentSession(c), req.CurrentPassword, req.NewPassword, req.ConfirmPassword)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "password updated"})
}

func (h *Handler) me(c *gin.Context) {
	sess := currentSession(c)
	c.JSON(http.StatusOK, sessionResponse{
		UserID:     sess.UserID,
		Name:       sess.Name,
		Role:       sess.Role.String(),
		FirstLogin: sess.PendingPasswordChange(),
	})
}

// ---- users ----

type userResponse struct {
	ID         int64  `json:"id"`
	Role       string `json:"role"`
	Name       string `json:"name"`
	Account    string `json:"account"`
	FirstLogin bool   `json:"first_login"`
	CreatedAt  string `json:"created_at"`
}

func userToResponse(u domain.User) userResponse {
	return userResponse{
		ID:         u.ID,
		Role:       u.Role.String(),
		Name:       u.Name,
		Account:    u.Account,
		FirstLogin: u.FirstLogin,
		CreatedAt:  u.CreatedAt.Format(time.RFC3339),
	}
}

func (h *Handler) listUsers(c *gin.Context) {
	users, err := h.users.List(c.Request.Context(), currentSession(c))
	if err != nil {
		writeError(c, err)
		return
	}

	resp := make([]userResponse, len(users))
	for i := range users {
		resp[i] = userToResponse(users[i])
	}
	c.JSON(http.StatusOK, resp)
}

type createUserRequest struct {
	Role     string `json:"role"`
	Name     string `json:"name"`
	Account  string `json:"account"`
	Password string `json:"password"`
}

func (h *Handler) createUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	user, err := h.users.Create(c.Request.Context(), currentSession(c), req.Role, req.Name, req.Account, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, userToResponse(*user))
}

type updateUserRequest struct {
	Role    string `json:"role"`
	Name    string `json:"name"`
	Account string `json:"account"`
}

func (h *Handler) updateUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.users.Update(c.Request.Context(), currentSession(c), id, req.Role, req.Name, req.Account); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user updated"})
}

func (h *Handler) deleteUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.users.Delete(c.Request.Context(), currentSession(c), id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

// ---- items ----

type itemResponse struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	ScoreRangeMin int    `json:"score_range_min"`
	ScoreRangeMax int    `json:"score_range_max"`
	CreatedAt     string `json:"created_at"`
}

func itemToResponse(item domain.TestItem) itemResponse {
	return itemResponse{
		ID:            item.ID,
		Name:          item.Name,
		Description:   item.Description,
		ScoreRangeMin: item.ScoreRangeMin,
		ScoreRangeMax: item.ScoreRangeMax,
		CreatedAt:     item.CreatedAt.Format(time.RFC3339),
	}
}

func (h *Handler) listItems(c *gin.Context) {
	items, err := h.items.List(c.Request.Context(), currentSession(c))
	if err != nil {
		writeError(c, err)
		return
	}

	resp := make([]itemResponse, len(items))
	for i := range items {
		resp[i] = itemToResponse(items[i])
	}
	c.JSON(http.StatusOK, resp)
}

type itemRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *Handler) createItem(c *gin.Context) {
	var req itemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	item, err := h.items.Create(c.Request.Context(), currentSession(c), req.Name, req.Description)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, itemToResponse(*item))
}

func (h *Handler) updateItem(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req itemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.items.Update(c.Request.Context(), currentSession(c), id, req.Name, req.Description); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "item updated"})
}

func (h *Handler) deleteItem(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.items.Delete(c.Request.Context(), currentSession(c), id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

// ---- results ----

type resultResponse struct {
	ID              int64   `json:"id"`
	Score           float64 `json:"score"`
	TestDate        string  `json:"test_date"`
	Notes           string  `json:"notes"`
	PatientID       int64   `json:"patient_id"`
	PatientName     string  `json:"patient_name"`
	PatientAccount  string  `json:"patient_account"`
	ItemID          int64   `json:"item_id"`
	ItemName        string  `json:"item_name"`
	ItemDescription string  `json:"item_description"`
	TechnicianName  string  `json:"technician_name"`
}

func resultToResponse(v domain.ResultView) resultResponse {
	return resultResponse{
		ID:              v.ID,
		Score:           v.Score,
		TestDate:        v.TestDate,
		Notes:           v.Notes,
		PatientID:       v.PatientID,
		PatientName:     v.PatientName,
		PatientAccount:  v.PatientAccount,
		ItemID:          v.ItemID,
		ItemName:        v.ItemName,
		ItemDescription: v.ItemDescription,
		TechnicianName:  v.TechnicianName,
	}
}

func (h *Handler) listResults(c *gin.Context) {
	views, err := h.results.ListAll(c.Request.Context(), currentSession(c))
	if err != nil {
		writeError(c, err)
		return
	}

	resp := make([]resultResponse, len(views))
	for i := range views {
		resp[i] = resultToResponse(views[i])
	}
	c.JSON(http.StatusOK, resp)
}

type createResultRequest struct {
	PatientID int64   `json:"patient_id"`
	ItemID    int64   `json:"item_id"`
	Score     float64 `json:"score"`
	TestDate  string  `json:"test_date"`
	Notes     string  `json:"notes"`
}

func (h *Handler) createResult(c *gin.Context) {
	var req createResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := h.results.Create(c.Request.Context(), currentSession(c), req.PatientID, req.ItemID, req.Score, req.TestDate, req.Notes)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": result.ID})
}

type updateResultRequest struct {
	Score    float64 `json:"score"`
	TestDate string  `json:"test_date"`
	Notes    string  `json:"notes"`
}

func (h *Handler) updateResult(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req updateResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.results.Update(c.Request.Context(), currentSession(c), id, req.Score, req.TestDate, req.Notes); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "result updated"})
}

func (h *Handler) deleteResult(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.results.Delete(c.Request.Context(), currentSession(c), id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

type myResultsResponse struct {
	Results []resultResponse `json:"results"`
	Summary summaryResponse  `json:"summary"`
}

type summaryResponse struct {
	TotalItems   int     `json:"total_items"`
	AverageScore float64 `json:"average_score"`
	HealthStatus string  `json:"health_status"`
}

func (h *Handler) myResults(c *gin.Context) {
	report, err := h.results.ListOwnResults(c.Request.Context(), currentSession(c))
	if err != nil {
		writeError(c, err)
		return
	}

	resp := myResultsResponse{
		Results: make([]resultResponse, len(report.Results)),
		Summary: summaryResponse{
			TotalItems:   report.Summary.Count,
			AverageScore: report.Summary.Average,
			HealthStatus: report.Summary.Status,
		},
	}
	for i := range report.Results {
		resp.Results[i] = resultToResponse(report.Results[i])
	}
	c.JSON(http.StatusOK, resp)
}

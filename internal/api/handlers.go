package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/eliswilliam/CINEHOME/internal/auth"
	"github.com/eliswilliam/CINEHOME/internal/chat"
	"github.com/eliswilliam/CINEHOME/internal/service/account"
	"github.com/eliswilliam/CINEHOME/internal/service/social"

	"github.com/gin-gonic/gin"
)

// Handler bundles the HTTP layer dependencies.
type Handler struct {
	account *account.Service
	social  *social.Service
	auth    *auth.Service
	chat    *chat.Orchestrator
}

// NewHandler wires the services the routes depend on.
func NewHandler(accountSvc *account.Service, socialSvc *social.Service, authSvc *auth.Service, orchestrator *chat.Orchestrator) *Handler {
	return &Handler{
		account: accountSvc,
		social:  socialSvc,
		auth:    authSvc,
		chat:    orchestrator,
	}
}

// RegisterRoutes mounts every endpoint under /api.
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api")

	api.GET("/health", h.health)

	api.POST("/chat", h.chatTurn)
	api.POST("/chat/clear", h.chatClear)
	api.GET("/chat/session/:sessionId", h.chatSession)

	users := api.Group("/users")
	{
		users.POST("/register", h.register)
		users.POST("/login", h.login)
		users.POST("/forgot-password", h.forgotPassword)
		users.POST("/verify-reset-code", h.verifyResetCode)
		users.POST("/reset-password", h.resetPassword)
		users.POST("/change-password", h.changePassword)
		users.GET("/check-username/:username", h.checkUsername)
		users.POST("/register-username", h.registerUsername)
		users.GET("/me", h.auth.Middleware(), h.me)
		users.POST("/logout", h.auth.Middleware(), h.logout)
	}

	posts := api.Group("/posts")
	{
		posts.POST("", h.createPost)
		posts.GET("", h.listPosts)
		posts.GET("/user/:handle", h.listUserPosts)
		posts.GET("/saved/:handle", h.listSavedPosts)
		posts.GET("/:id", h.getPost)
		posts.DELETE("/:id", h.deletePost)
		posts.POST("/:id/like", h.toggleLike)
		posts.POST("/:id/save", h.toggleSave)
		posts.POST("/:id/comments", h.addComment)
		posts.POST("/:id/comments/:commentId/like", h.toggleCommentLike)
		posts.DELETE("/:id/comments/:commentId", h.deleteComment)
	}
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().UTC().Format(time.RFC3339)})
}

// --- chat ---

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId"`
}

func (h *Handler) chatTurn(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Mensagem não fornecida!"})
		return
	}

	result, err := h.chat.HandleTurn(c.Request.Context(), req.SessionID, req.Message)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Erro ao processar mensagem",
			"details": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"response":  result.Reply,
		"sessionId": result.SessionID,
	})
}

type clearRequest struct {
	SessionID string `json:"sessionId"`
}

func (h *Handler) chatClear(c *gin.Context) {
	var req clearRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.SessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "SessionId não fornecido!"})
		return
	}
	if !h.chat.ClearTurn(req.SessionID) {
		c.JSON(http.StatusOK, gin.H{
			"success": false,
			"message": "Sessão não encontrada.",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Histórico da conversa limpo com sucesso!",
	})
}

func (h *Handler) chatSession(c *gin.Context) {
	desc := h.chat.DescribeSession(c.Param("sessionId"))
	if !desc.Exists {
		c.JSON(http.StatusOK, gin.H{"exists": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"exists":       true,
		"messageCount": desc.MessageCount,
		"createdAt":    desc.CreatedAt.UTC().Format(time.RFC3339),
		"lastActivity": desc.LastActivity.UTC().Format(time.RFC3339),
	})
}

// --- users ---

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	user, err := h.account.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, account.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": "Email já cadastrado"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	token, err := h.auth.IssueToken(c.Request.Context(), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue token"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": user, "token": token})
}

func (h *Handler) login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	user, err := h.account.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, account.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Email ou senha inválidos"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	token, err := h.auth.IssueToken(c.Request.Context(), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user, "token": token})
}

func (h *Handler) forgotPassword(c *gin.Context) {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email is required"})
		return
	}
	result, err := h.account.ForgotPassword(c.Request.Context(), req.Email)
	if err != nil {
		if errors.Is(err, account.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Email não cadastrado"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	resp := gin.H{"success": true, "message": "Código de verificação enviado"}
	if result.DevMode {
		resp["code"] = result.Code
		resp["devMode"] = true
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) verifyResetCode(c *gin.Context) {
	var req struct {
		Email string `json:"email"`
		Code  string `json:"code"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	token, err := h.account.VerifyResetCode(c.Request.Context(), req.Email, req.Code)
	if err != nil {
		if errors.Is(err, account.ErrResetCodeInvalid) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Código inválido ou expirado"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "resetToken": token})
}

func (h *Handler) resetPassword(c *gin.Context) {
	var req struct {
		ResetToken  string `json:"resetToken"`
		NewPassword string `json:"newPassword"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	err := h.account.ResetPassword(c.Request.Context(), req.ResetToken, req.NewPassword)
	if err != nil {
		if errors.Is(err, account.ErrResetTokenInvalid) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Token de redefinição inválido ou expirado"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Senha redefinida com sucesso"})
}

func (h *Handler) changePassword(c *gin.Context) {
	var req struct {
		Email           string `json:"email"`
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	err := h.account.ChangePassword(c.Request.Context(), req.Email, req.CurrentPassword, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, account.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Senha atual incorreta"})
		case errors.Is(err, account.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Usuário não encontrado"})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Senha alterada com sucesso"})
}

func (h *Handler) checkUsername(c *gin.Context) {
	available, err := h.account.CheckUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"available": available})
}

func (h *Handler) registerUsername(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Username string `json:"username"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	err := h.account.RegisterUsername(c.Request.Context(), req.Email, req.Username)
	if err != nil {
		switch {
		case errors.Is(err, account.ErrUsernameTaken):
			c.JSON(http.StatusConflict, gin.H{"error": "Nome de usuário já em uso"})
		case errors.Is(err, account.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Usuário não encontrado"})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) me(c *gin.Context) {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
		return
	}
	user, err := h.account.GetUser(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, account.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Usuário não encontrado"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *Handler) logout(c *gin.Context) {
	token, _ := auth.AuthTokenFromContext(c)
	if err := h.auth.RevokeToken(c.Request.Context(), token); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// --- posts ---

type postRequest struct {
	Author      string `json:"author"`
	Handle      string `json:"handle"`
	Avatar      string `json:"avatar"`
	Text        string `json:"text"`
	MovieID     string `json:"movieId"`
	MovieTitle  string `json:"movieTitle"`
	MoviePoster string `json:"moviePoster"`
	Rating      int    `json:"rating"`
}

func (h *Handler) createPost(c *gin.Context) {
	var req postRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	post, err := h.social.CreatePost(c.Request.Context(), social.PostInput{
		Author:      req.Author,
		Handle:      req.Handle,
		Avatar:      req.Avatar,
		Text:        req.Text,
		MovieID:     req.MovieID,
		MovieTitle:  req.MovieTitle,
		MoviePoster: req.MoviePoster,
		Rating:      req.Rating,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"post": post})
}

func (h *Handler) listPosts(c *gin.Context) {
	page, limit := pageParams(c)
	posts, pagination, err := h.social.ListPosts(c.Request.Context(), page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts, "pagination": pagination})
}

func (h *Handler) listUserPosts(c *gin.Context) {
	page, limit := pageParams(c)
	posts, pagination, err := h.social.ListPostsByHandle(c.Request.Context(), c.Param("handle"), page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts, "pagination": pagination})
}

func (h *Handler) listSavedPosts(c *gin.Context) {
	page, limit := pageParams(c)
	posts, pagination, err := h.social.ListSavedPosts(c.Request.Context(), c.Param("handle"), page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts, "pagination": pagination})
}

func (h *Handler) getPost(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	post, err := h.social.GetPost(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, social.ErrPostNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Post não encontrado"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"post": post})
}

func (h *Handler) deletePost(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Handle string `json:"handle"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Handle == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "handle is required"})
		return
	}
	if err := h.social.DeletePost(c.Request.Context(), id, req.Handle); err != nil {
		writeSocialError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) toggleLike(c *gin.Context) {
	h.togglePostMark(c, h.social.ToggleLike, "liked", "likes")
}

func (h *Handler) toggleSave(c *gin.Context) {
	h.togglePostMark(c, h.social.ToggleSave, "saved", "saves")
}

type toggleFunc func(ctx context.Context, postID int64, handle string) (bool, int, error)

func (h *Handler) togglePostMark(c *gin.Context, toggle toggleFunc, stateKey, countKey string) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Handle string `json:"handle"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Handle == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "handle is required"})
		return
	}
	state, count, err := toggle(c.Request.Context(), id, req.Handle)
	if err != nil {
		writeSocialError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{stateKey: state, countKey: count})
}

func (h *Handler) addComment(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Author string `json:"author"`
		Handle string `json:"handle"`
		Avatar string `json:"avatar"`
		Text   string `json:"text"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	comment, err := h.social.AddComment(c.Request.Context(), id, req.Author, req.Handle, req.Avatar, req.Text)
	if err != nil {
		writeSocialError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"comment": comment})
}

func (h *Handler) toggleCommentLike(c *gin.Context) {
	postID, ok := idParam(c, "id")
	if !ok {
		return
	}
	commentID, ok := idParam(c, "commentId")
	if !ok {
		return
	}
	var req struct {
		Handle string `json:"handle"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Handle == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "handle is required"})
		return
	}
	liked, count, err := h.social.ToggleCommentLike(c.Request.Context(), postID, commentID, req.Handle)
	if err != nil {
		writeSocialError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"liked": liked, "likes": count})
}

func (h *Handler) deleteComment(c *gin.Context) {
	postID, ok := idParam(c, "id")
	if !ok {
		return
	}
	commentID, ok := idParam(c, "commentId")
	if !ok {
		return
	}
	var req struct {
		Handle string `json:"handle"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Handle == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "handle is required"})
		return
	}
	if err := h.social.DeleteComment(c.Request.Context(), postID, commentID, req.Handle); err != nil {
		writeSocialError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	return page, limit
}

func idParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func writeSocialError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, social.ErrPostNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Post não encontrado"})
	case errors.Is(err, social.ErrCommentNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Comentário não encontrado"})
	case errors.Is(err, social.ErrNotOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": "Sem permissão"})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}

package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/insight/internal/common"
	"github.com/dmitrijs2005/insight/internal/logging"
	"github.com/dmitrijs2005/insight/internal/server/predict"
	"github.com/dmitrijs2005/insight/internal/server/users"
)

// errorEnvelope is the uniform error body: {"detail": <message>}.
type errorEnvelope struct {
	Detail any `json:"detail"`
}

type registerRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Age      int    `json:"age" binding:"min=0"`
	Password string `json:"password" binding:"required,min=8,max=64"`
	Role     string `json:"role" binding:"omitempty,oneof=user admin"`
}

type userResponse struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Age      int    `json:"age"`
	Role     string `json:"role"`
}

type tokenRequest struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type predictRequest struct {
	Age        int      `json:"age" binding:"min=0"`
	Income     *float64 `json:"income"`
	Occupation string   `json:"occupation"`
}

type predictResponse struct {
	Prediction predict.Outcome `json:"prediction"`
}

func toUserResponse(user *users.InternalUser) userResponse {
	public := user.Public()
	return userResponse{
		Username: public.Username,
		Email:    public.Email,
		Age:      public.Age,
		Role:     string(user.Role),
	}
}

func (s *HTTPServer) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *HTTPServer) handleRegister(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.abortWithValidationError(c, err)
		return
	}

	role, err := users.ParseRole(req.Role)
	if err != nil {
		s.abortWithValidationError(c, err)
		return
	}

	ctx := c.Request.Context()
	user, err := s.users.Register(ctx, req.Username, req.Email, req.Age, req.Password, role)
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	logging.FromContext(ctx).Info(ctx, "user registered", "username", user.Username)
	c.JSON(http.StatusCreated, toUserResponse(user))
}

func (s *HTTPServer) handleIssueToken(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBind(&req); err != nil {
		s.abortWithValidationError(c, err)
		return
	}

	ctx := c.Request.Context()
	token, err := s.users.IssueToken(ctx, req.Username, req.Password)
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, tokenResponse{AccessToken: token, TokenType: "bearer"})
}

func (s *HTTPServer) handleCurrentUser(c *gin.Context) {
	c.JSON(http.StatusOK, toUserResponse(currentUser(c)))
}

func (s *HTTPServer) handleListUsers(c *gin.Context) {
	list, err := s.users.List(c.Request.Context())
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	responses := make([]userResponse, 0, len(list))
	for _, user := range list {
		responses = append(responses, toUserResponse(user))
	}

	c.JSON(http.StatusOK, responses)
}

func (s *HTTPServer) handleAdmin(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Hello admin " + currentUser(c).Username})
}

func (s *HTTPServer) handlePredict(c *gin.Context) {
	var req predictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.abortWithValidationError(c, err)
		return
	}

	outcome := predict.Evaluate(predict.Features{
		Age:        req.Age,
		Income:     req.Income,
		Occupation: req.Occupation,
	})

	c.JSON(http.StatusOK, predictResponse{Prediction: outcome})
}

// abortWithError is the single boundary converting domain errors into the
// response envelope. Domain errors are logged at warning level with their
// own status; anything unrecognized is logged at error level with full
// detail and returned as the generic 500 phrase.
func (s *HTTPServer) abortWithError(c *gin.Context, err error) {
	ctx := c.Request.Context()
	log := logging.FromContext(ctx)

	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, common.ErrInvalidCredentials), errors.Is(err, common.ErrInvalidToken):
		status = http.StatusUnauthorized
	case errors.Is(err, common.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, common.ErrUserAlreadyExists):
		status = http.StatusConflict
	case errors.Is(err, common.ErrValidation):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		log.Error(ctx, "unexpected error", "error", err.Error())
		c.AbortWithStatusJSON(status, errorEnvelope{Detail: http.StatusText(status)})
		return
	}

	log.Warn(ctx, "application error", "error", err.Error(), "status_code", status)
	c.AbortWithStatusJSON(status, errorEnvelope{Detail: err.Error()})
}

// abortWithValidationError reports a malformed request body with the
// validation details in the envelope.
func (s *HTTPServer) abortWithValidationError(c *gin.Context, err error) {
	ctx := c.Request.Context()
	logging.FromContext(ctx).Warn(ctx, "validation error", "error", err.Error())
	c.AbortWithStatusJSON(http.StatusBadRequest, errorEnvelope{Detail: err.Error()})
}

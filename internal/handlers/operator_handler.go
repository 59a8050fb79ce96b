package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/xpanvictor/newscap/internal/domains/operator"
	"github.com/xpanvictor/newscap/pkg/Logger"
)

// OperatorHandler handles operator account HTTP requests
type OperatorHandler struct {
	operatorService operator.OperatorService
	logger          *Logger.Logger
}

// NewOperatorHandler creates a new operator handler
func NewOperatorHandler(operatorService operator.OperatorService, logger *Logger.Logger) *OperatorHandler {
	return &OperatorHandler{
		operatorService: operatorService,
		logger:          logger,
	}
}

// Register handles operator registration
// @Summary Register a new operator
// @Description Register a new operator account with email and password
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body operator.CreateOperatorRequest true "Operator registration data"
// @Success 201 {object} RegisterResponse "Operator registered successfully"
// @Failure 400 {object} ErrorResponse "Invalid request data"
// @Failure 409 {object} ErrorResponse "Email already exists"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /auth/register [post]
func (h *OperatorHandler) Register(c *gin.Context) {
	var req operator.CreateOperatorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request data",
			Details: err.Error(),
		})
		return
	}

	operatorResponse, err := h.operatorService.Register(c.Request.Context(), req)
	if err != nil {
		switch err {
		case operator.ErrEmailAlreadyExists:
			c.JSON(http.StatusConflict, ErrorResponse{Error: "Email already exists"})
		default:
			h.logger.Errorf("registration error: %v", err)
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
		}
		return
	}

	c.JSON(http.StatusCreated, RegisterResponse{
		Message:  "Operator registered successfully",
		Operator: *operatorResponse,
	})
}

// Login handles operator login
// @Summary Operator login
// @Description Authenticate an operator with email and password
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body operator.LoginRequest true "Operator login credentials"
// @Success 200 {object} LoginResponse "Login successful with operator data and tokens"
// @Failure 400 {object} ErrorResponse "Invalid request data"
// @Failure 401 {object} ErrorResponse "Invalid credentials"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /auth/login [post]
func (h *OperatorHandler) Login(c *gin.Context) {
	var req operator.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request data",
			Details: err.Error(),
		})
		return
	}

	operatorResponse, tokens, err := h.operatorService.Login(c.Request.Context(), req)
	if err != nil {
		switch err {
		case operator.ErrInvalidCredentials:
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid credentials"})
		default:
			h.logger.Errorf("login error: %v", err)
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Message:  "Login successful",
		Operator: *operatorResponse,
		Tokens:   *tokens,
	})
}

// RefreshToken handles token refresh
// @Summary Refresh access token
// @Description Refresh an expired access token using refresh token
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body RefreshTokenRequest true "Refresh token data"
// @Success 200 {object} RefreshTokenResponse "Token refreshed successfully"
// @Failure 400 {object} ErrorResponse "Invalid request data"
// @Failure 401 {object} ErrorResponse "Invalid refresh token"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /auth/refresh [post]
func (h *OperatorHandler) RefreshToken(c *gin.Context) {
	var req RefreshTokenRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request data",
			Details: err.Error(),
		})
		return
	}

	tokens, err := h.operatorService.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		switch err {
		case operator.ErrInvalidToken:
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid refresh token"})
		default:
			h.logger.Errorf("token refresh error: %v", err)
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, RefreshTokenResponse{
		Message: "Token refreshed successfully",
		Tokens:  *tokens,
	})
}

// GetProfile handles getting the operator profile
// @Summary Get operator profile
// @Description Get the current authenticated operator's profile
// @Tags Operator
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} ProfileResponse "Operator profile data"
// @Failure 401 {object} ErrorResponse "Operator not authenticated"
// @Failure 404 {object} ErrorResponse "Operator not found"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /operator/profile [get]
func (h *OperatorHandler) GetProfile(c *gin.Context) {
	operatorID := c.GetString("operatorID") // From JWT middleware
	if operatorID == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Operator not authenticated"})
		return
	}

	operatorResponse, err := h.operatorService.GetProfile(c.Request.Context(), operatorID)
	if err != nil {
		switch err {
		case operator.ErrOperatorNotFound:
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Operator not found"})
		default:
			h.logger.Errorf("get profile error: %v", err)
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, ProfileResponse{
		Operator: *operatorResponse,
	})
}

// ListOperators handles listing operators
// @Summary List operators (Admin)
// @Description List all operator accounts with pagination
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param offset query int false "Number of operators to skip" default(0)
// @Param limit query int false "Number of operators to return" default(20)
// @Success 200 {object} ListOperatorsResponse "List of operators with pagination"
// @Failure 401 {object} ErrorResponse "Operator not authenticated"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /admin/operators [get]
func (h *OperatorHandler) ListOperators(c *gin.Context) {
	// Parse query parameters
	offsetStr := c.DefaultQuery("offset", "0")
	limitStr := c.DefaultQuery("limit", "20")

	offset, err := strconv.Atoi(offsetStr)
	if err != nil || offset < 0 {
		offset = 0
	}

	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 || limit > 100 {
		limit = 20 // Default limit with max of 100
	}

	operators, total, err := h.operatorService.ListOperators(c.Request.Context(), offset, limit)
	if err != nil {
		h.logger.Errorf("list operators error: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, ListOperatorsResponse{
		Operators: operators,
		Pagination: PaginationInfo{
			Total:  total,
			Offset: offset,
			Limit:  limit,
		},
	})
}

// RegisterOperatorRoutes registers the operator auth and profile routes
func (h *OperatorHandler) RegisterOperatorRoutes(r *gin.RouterGroup) {
	// Public routes (no authentication required)
	public := r.Group("/auth")
	{
		public.POST("/register", h.Register)
		public.POST("/login", h.Login)
		public.POST("/refresh", h.RefreshToken)
	}

	// Protected routes (authentication required)
	protected := r.Group("/operator")
	protected.Use(AuthMiddleware(h.operatorService, h.logger))
	{
		protected.GET("/profile", h.GetProfile)
	}

	// Admin routes (authentication required)
	admin := r.Group("/admin/operators")
	admin.Use(AuthMiddleware(h.operatorService, h.logger))
	{
		admin.GET("", h.ListOperators)
	}
}

package api

import (
	"context"                         // Context for throttle calls
	"errors"                          // Error matching
	"expense_tracker/internal/domain" // Importing domain models
	"expense_tracker/internal/utils"  // Utility functions
	"net/http"                        // HTTP status codes
	"strings"                         // String manipulation
	"time"                            // Token lifetime

	"github.com/gin-gonic/gin"               // Gin web framework
	"github.com/go-playground/validator/v10" // Binding error details
	"github.com/sirupsen/logrus"             // Logging library
	"golang.org/x/crypto/bcrypt"             // Password hashing
	"gorm.io/gorm"                           // GORM ORM library
)

// Request struct for registration
type RegisterRequest struct {
	Email    string  `json:"email" binding:"required,email"`     // Email must be provided and well-formed
	Password string  `json:"password" binding:"required,max=72"` // bcrypt reads at most 72 bytes
	Name     *string `json:"name"`                               // Optional display name
}

// Request struct for login
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`    // Email must be provided
	Password string `json:"password" binding:"required"` // Password must be provided
}

// UserResponse is the public view of a user
type UserResponse struct {
	ID    uint    `json:"id"`
	Email string  `json:"email"`
	Name  *string `json:"name"`
}

// Response struct for authentication
type AuthResponse struct {
	AccessToken string       `json:"access_token"` // JWT token
	User        UserResponse `json:"user"`         // Authenticated user
}

// LoginLimiter throttles repeated failed logins per email
type LoginLimiter interface {
	Allowed(ctx context.Context, email string) (bool, error)
	Fail(ctx context.Context, email string) error
	Reset(ctx context.Context, email string) error
}

func toUserResponse(u domain.User) UserResponse {
	return UserResponse{ID: u.ID, Email: u.Email, Name: u.Name}
}

// normalizeEmail lower-cases and trims so lookups are case-insensitive
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// bindingMessages turns binding failures into one message per field
func bindingMessages(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{"Invalid request"}
	}
	out := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			out = append(out, field+" is required")
		case "max":
			out = append(out, field+" is too long")
		case "email":
			out = append(out, field+" must be a valid email address")
		default:
			out = append(out, field+" is invalid")
		}
	}
	return out
}

// RegisterHandler creates a user account
func RegisterHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"errors": bindingMessages(err)})
			return
		}
		email := normalizeEmail(req.Email)
		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			req.Name = &name
		}
		ctx := c.Request.Context()
		// Reject duplicates up front; the unique index catches races below
		var count int64
		if err := db.WithContext(ctx).Model(&domain.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
			respondError(c, err)
			return
		}
		if count > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "email already registered"})
			return
		}
		// Hash the password and create the user
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			// If hashing fails, return internal server error
			respondError(c, err)
			return
		}
		user := domain.User{Email: email, PasswordHash: string(hash), Name: req.Name}
		// Attempt to create the user in the database
		if err := db.WithContext(ctx).Create(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "email already registered"})
				return
			}
			respondError(c, err)
			return
		}
		logrus.WithFields(logrus.Fields{
			"user_id": user.ID,
			"type":    "register",
		}).Info("User registered")
		c.JSON(http.StatusCreated, toUserResponse(user))
	}
}

// LoginHandler authenticates a user and returns a JWT token
func LoginHandler(db *gorm.DB, jwtSecret string, ttl time.Duration, limiter LoginLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"errors": bindingMessages(err)})
			return
		}
		ctx := c.Request.Context()
		email := normalizeEmail(req.Email)
		if limiter != nil {
			allowed, err := limiter.Allowed(ctx, email)
			if err != nil {
				// Throttle errors never block a login
				logrus.WithField("error", err.Error()).Warn("Login throttle unavailable")
			} else if !allowed {
				c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many failed login attempts"})
				return
			}
		}
		var user domain.User // Fetch user from database
		err := db.WithContext(ctx).Where("email = ?", email).First(&user).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, err)
			return
		}
		// Compare provided password with stored hash
		if err != nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
			if limiter != nil {
				if ferr := limiter.Fail(ctx, email); ferr != nil {
					logrus.WithField("error", ferr.Error()).Warn("Failed to record login failure")
				}
			}
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		if limiter != nil {
			_ = limiter.Reset(ctx, email)
		}
		// Generate JWT token
		token, err := utils.GenerateJWT(user.ID, jwtSecret, ttl)
		if err != nil {
			// If token generation fails, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "token_creation_failed", "details": err.Error()})
			return
		}
		// Return the token in the response
		c.JSON(http.StatusOK, AuthResponse{AccessToken: token, User: toUserResponse(user)})
	}
}

package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/moustafa-dental/dental-lab-api/config"
	"github.com/moustafa-dental/dental-lab-api/middleware"
	"github.com/moustafa-dental/dental-lab-api/models"
	"github.com/moustafa-dental/dental-lab-api/services"
)

// currentUser resolves the authenticated user from the JWT context. On
// failure it writes the error response and returns ok=false.
func currentUser(c *gin.Context) (*models.User, bool) {
	auth0ID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Could not extract user information",
			},
		})
		return nil, false
	}

	db := config.GetDB()
	var user models.User
	if err := db.Where("auth0_id = ?", auth0ID).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "USER_NOT_FOUND",
				"message": "User profile not found. Please create a profile first.",
			},
		})
		return nil, false
	}

	return &user, true
}

// actorFor converts a user row into the engine's actor identity.
func actorFor(user *models.User) services.Actor {
	return services.Actor{ID: user.ID, Name: user.Name, Role: user.Role}
}

// respondWorkflowError maps engine errors to HTTP responses. Persistence
// failures are reported with their own code so clients know the intended
// update was computed but not stored.
func respondWorkflowError(c *gin.Context, err error) {
	var persistence *services.PersistenceError

	switch {
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Case or technician not found",
			},
		})
	case errors.Is(err, services.ErrForbiddenTransition):
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN_TRANSITION",
				"message": "You are not allowed to perform this action on this case",
			},
		})
	case errors.Is(err, services.ErrMissingAttachment):
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MISSING_ATTACHMENT",
				"message": "At least one file is required to submit for review",
			},
		})
	case errors.Is(err, services.ErrMissingNotes):
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MISSING_NOTES",
				"message": "Note text must not be empty",
			},
		})
	case errors.Is(err, services.ErrIncompleteCase):
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INCOMPLETE_CASE",
				"message": "Case name, due date, technician and at least one order are required",
			},
		})
	case errors.As(err, &persistence):
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "PERSISTENCE_FAILURE",
				"message": "The change could not be saved; it has not been applied",
			},
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "Unexpected error",
			},
		})
	}
}

package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/moustafa-dental/dental-lab-api/config"
	"github.com/moustafa-dental/dental-lab-api/models"
	"github.com/moustafa-dental/dental-lab-api/services"
)

// CreateMillingCenterRequest represents the request body for registering a
// milling/printing partner
type CreateMillingCenterRequest struct {
	Name        string `json:"name" binding:"required"`
	PhoneNumber string `json:"phone_number" binding:"required"`
}

// ListMillingCenters handles GET /api/v1/milling-centers
func ListMillingCenters(c *gin.Context) {
	if _, ok := currentUser(c); !ok {
		return
	}

	var centers []models.MillingCenter
	if err := config.GetDB().Order("name ASC").Find(&centers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to fetch milling centers",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    centers,
	})
}

// CreateMillingCenter handles POST /api/v1/milling-centers (admins only)
func CreateMillingCenter(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	if user.Role != models.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "Only admins can manage milling centers",
			},
		})
		return
	}

	var req CreateMillingCenterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	center := models.MillingCenter{
		Name:        req.Name,
		PhoneNumber: req.PhoneNumber,
	}
	if err := config.GetDB().Create(&center).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create milling center",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    center,
	})
}

// MillingRequest handles GET /api/v1/cases/:id/milling-request - renders the
// milling/printing request message for an approved case, plus the WhatsApp
// link when a center is selected (admins only)
func MillingRequest(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	caseID, ok := caseIDParam(c)
	if !ok {
		return
	}

	if user.Role != models.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "Only admins can send milling requests",
			},
		})
		return
	}

	db := config.GetDB()
	var caseItem models.Case
	if err := db.First(&caseItem, caseID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "CASE_NOT_FOUND",
				"message": "Case not found",
			},
		})
		return
	}

	if caseItem.Status != models.StatusFinished && caseItem.Status != models.StatusMilled {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "CASE_NOT_APPROVED",
				"message": "Milling requests are only available for approved cases",
			},
		})
		return
	}

	presentCase(&caseItem)
	message := services.BuildMillingRequest(&caseItem)

	data := gin.H{"message": message}
	if centerParam := c.Query("center_id"); centerParam != "" {
		centerID, err := strconv.ParseUint(centerParam, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_REQUEST",
					"message": "center_id must be numeric",
				},
			})
			return
		}
		var center models.MillingCenter
		if err := db.First(&center, uint(centerID)).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "CENTER_NOT_FOUND",
					"message": "Milling center not found",
				},
			})
			return
		}
		data["whatsapp_url"] = services.WhatsAppLink(&center, message)
		data["center"] = center
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
	})
}

package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-booking/database"
	"github.com/yeremiapane/restaurant-booking/models"
	"github.com/yeremiapane/restaurant-booking/services"
	"github.com/yeremiapane/restaurant-booking/utils"
)

type MenuController struct {
	Store *database.Gateway
}

func NewMenuController(store *database.Gateway) *MenuController {
	return &MenuController{Store: store}
}

func (mc *MenuController) availableItems(c *gin.Context) ([]models.MenuItem, error) {
	db, err := mc.Store.DB(c.Request.Context())
	if err != nil {
		return nil, err
	}

	var items []models.MenuItem
	if err := db.Where("is_available = ?", true).Order("category, id").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// GetMenu lists the available items matching the category, search and veg
// query filters.
func (mc *MenuController) GetMenu(c *gin.Context) {
	filter := services.MenuFilter{
		Category: c.Query("category"),
		Search:   c.Query("search"),
	}
	if raw := c.Query("veg"); raw != "" {
		veg, err := strconv.ParseBool(raw)
		if err != nil {
			utils.RespondError(c, utils.NewValidationError("veg", "veg must be true or false"))
			return
		}
		filter.Veg = &veg
	}

	items, err := mc.availableItems(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	items = services.FilterMenu(items, filter)
	utils.RespondJSON(c, http.StatusOK, gin.H{
		"items": items,
		"total": len(items),
	})
}

func (mc *MenuController) GetCategories(c *gin.Context) {
	items, err := mc.availableItems(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	categories := services.Categories(items)
	if categories == nil {
		categories = []string{}
	}
	utils.RespondJSON(c, http.StatusOK, gin.H{"categories": categories})
}

func (mc *MenuController) GetMenuItem(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	db, err := mc.Store.DB(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	var item models.MenuItem
	if err := db.First(&item, id).Error; err != nil {
		utils.RespondError(c, notFoundAs(err, "menu item"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, gin.H{"item": item})
}

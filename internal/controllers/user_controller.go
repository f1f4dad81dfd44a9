package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"sigo-api/internal/apperrors"
	"sigo-api/internal/models"
	"sigo-api/internal/service"
)

type UserController struct {
	userService service.UserService
	maxPageSize int
}

func NewUserController(userService service.UserService, maxPageSize int) *UserController {
	return &UserController{
		userService: userService,
		maxPageSize: maxPageSize,
	}
}

// Create handles POST /v1/users
func (uc *UserController) Create(c *gin.Context) {
	var req models.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := uc.userService.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

// List handles GET /v1/users?offset=&limit=
func (uc *UserController) List(c *gin.Context) {
	page, err := pageFromQuery(c, uc.maxPageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	users, err := uc.userService.List(c.Request.Context(), page)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, users)
}

// Get handles GET /v1/users/:id
func (uc *UserController) Get(c *gin.Context) {
	user, err := uc.userService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// Update handles PUT /v1/users/:id
func (uc *UserController) Update(c *gin.Context) {
	var req models.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := uc.userService.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// Delete handles DELETE /v1/users/:id
func (uc *UserController) Delete(c *gin.Context) {
	if err := uc.userService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Groups handles GET /v1/users/:id/groups
func (uc *UserController) Groups(c *gin.Context) {
	groups, err := uc.userService.Groups(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, groups)
}

// pageFromQuery reads offset and limit; absent values take their defaults
func pageFromQuery(c *gin.Context, maxPageSize int) (service.Page, error) {
	offset, err := intQuery(c, "offset", 0)
	if err != nil {
		return service.Page{}, err
	}
	limit, err := intQuery(c, "limit", service.DefaultPageLimit)
	if err != nil {
		return service.Page{}, err
	}
	return service.NewPage(offset, limit, maxPageSize)
}

func intQuery(c *gin.Context, key string, defaultValue int) (int, error) {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.NewValidationError(key, "must be an integer")
	}
	return n, nil
}

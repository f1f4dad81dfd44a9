package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sigo-api/internal/models"
	"sigo-api/internal/service"
)

type GroupController struct {
	groupService service.GroupService
	maxPageSize  int
}

func NewGroupController(groupService service.GroupService, maxPageSize int) *GroupController {
	return &GroupController{
		groupService: groupService,
		maxPageSize:  maxPageSize,
	}
}

// Create handles POST /v1/groups
func (gc *GroupController) Create(c *gin.Context) {
	var req models.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	group, err := gc.groupService.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, group)
}

// List handles GET /v1/groups
func (gc *GroupController) List(c *gin.Context) {
	page, err := pageFromQuery(c, gc.maxPageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	groups, err := gc.groupService.List(c.Request.Context(), page)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, groups)
}

// Get handles GET /v1/groups/:id, members included
func (gc *GroupController) Get(c *gin.Context) {
	group, err := gc.groupService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, group)
}

// Update handles PUT /v1/groups/:id
func (gc *GroupController) Update(c *gin.Context) {
	var req models.UpdateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	group, err := gc.groupService.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, group)
}

// Delete handles DELETE /v1/groups/:id
func (gc *GroupController) Delete(c *gin.Context) {
	if err := gc.groupService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// AddMember handles POST /v1/groups/:id/members
func (gc *GroupController) AddMember(c *gin.Context) {
	var req models.AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := gc.groupService.AddMember(c.Request.Context(), c.Param("id"), req.UserID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.MessageResponse{Message: "Member added"})
}

// RemoveMember handles DELETE /v1/groups/:id/members/:user_id
func (gc *GroupController) RemoveMember(c *gin.Context) {
	if err := gc.groupService.RemoveMember(c.Request.Context(), c.Param("id"), c.Param("user_id")); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

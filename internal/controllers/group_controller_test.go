package controllers_test

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"sigo-api/internal/apperrors"
	"sigo-api/internal/controllers"
	"sigo-api/internal/models"
	"sigo-api/internal/service"
	"sigo-api/internal/service/mocks"
)

func setupGroupRouter(t *testing.T) (*gin.Engine, *mocks.MockGroupService) {
	ctrl := gomock.NewController(t)
	groupService := mocks.NewMockGroupService(ctrl)
	gc := controllers.NewGroupController(groupService, testMaxPageSize)

	router := gin.New()
	router.POST("/v1/groups", gc.Create)
	router.GET("/v1/groups", gc.List)
	router.GET("/v1/groups/:id", gc.Get)
	router.PUT("/v1/groups/:id", gc.Update)
	router.DELETE("/v1/groups/:id", gc.Delete)
	router.POST("/v1/groups/:id/members", gc.AddMember)
	router.DELETE("/v1/groups/:id/members/:user_id", gc.RemoveMember)
	return router, groupService
}

func TestGroupController_Create(t *testing.T) {
	router, groupService := setupGroupRouter(t)

	groupService.EXPECT().
		Create(gomock.Any(), &models.CreateGroupRequest{Name: "Finance"}).
		Return(&models.GroupResponse{ID: groupID, Name: "Finance"}, nil)

	rr := perform(router, http.MethodPost, "/v1/groups", map[string]string{"name": "Finance"})
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Contains(t, rr.Body.String(), groupID)
}

func TestGroupController_Create_MissingName(t *testing.T) {
	router, _ := setupGroupRouter(t)

	rr := perform(router, http.MethodPost, "/v1/groups", map[string]string{"description": "x"})
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "is required", decodeError(t, rr).Details["name"])
}

func TestGroupController_List(t *testing.T) {
	router, groupService := setupGroupRouter(t)

	groupService.EXPECT().
		List(gomock.Any(), service.Page{Offset: 2, Limit: 3}).
		Return([]models.GroupResponse{{ID: groupID, Name: "Finance"}}, nil)

	rr := perform(router, http.MethodGet, "/v1/groups?offset=2&limit=3", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotContains(t, rr.Body.String(), "members")
}

func TestGroupController_Get_WithMembers(t *testing.T) {
	router, groupService := setupGroupRouter(t)

	groupService.EXPECT().
		Get(gomock.Any(), groupID).
		Return(&models.GroupDetailResponse{
			GroupResponse: models.GroupResponse{ID: groupID, Name: "Finance"},
			Members:       []models.UserResponse{{ID: userID, Username: "alice"}},
		}, nil)

	rr := perform(router, http.MethodGet, "/v1/groups/"+groupID, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"members":[`)
	assert.Contains(t, rr.Body.String(), `"name":"Finance"`)
}

func TestGroupController_Get_NoMembersIsEmptyArray(t *testing.T) {
	router, groupService := setupGroupRouter(t)

	groupService.EXPECT().
		Get(gomock.Any(), groupID).
		Return(&models.GroupDetailResponse{
			GroupResponse: models.GroupResponse{ID: groupID, Name: "Finance"},
			Members:       []models.UserResponse{},
		}, nil)

	rr := perform(router, http.MethodGet, "/v1/groups/"+groupID, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"members":[]`)
}

func TestGroupController_Update_Conflict(t *testing.T) {
	router, groupService := setupGroupRouter(t)
	name := "Sales"

	groupService.EXPECT().
		Update(gomock.Any(), groupID, &models.UpdateGroupRequest{Name: &name}).
		Return(nil, apperrors.ErrConflict)

	rr := perform(router, http.MethodPut, "/v1/groups/"+groupID, map[string]string{"name": name})
	require.Equal(t, http.StatusConflict, rr.Code)
}

func TestGroupController_Delete(t *testing.T) {
	router, groupService := setupGroupRouter(t)

	groupService.EXPECT().Delete(gomock.Any(), groupID).Return(nil)

	rr := perform(router, http.MethodDelete, "/v1/groups/"+groupID, nil)
	require.Equal(t, http.StatusNoContent, rr.Code)
}

func TestGroupController_AddMember(t *testing.T) {
	tests := []struct {
		name       string
		body       any
		serviceErr error
		callsSvc   bool
		wantStatus int
	}{
		{name: "added", body: map[string]string{"user_id": userID}, callsSvc: true, wantStatus: http.StatusCreated},
		{name: "already member", body: map[string]string{"user_id": userID}, callsSvc: true, serviceErr: apperrors.ErrConflict, wantStatus: http.StatusConflict},
		{name: "inactive user", body: map[string]string{"user_id": userID}, callsSvc: true, serviceErr: apperrors.ErrNotFound, wantStatus: http.StatusNotFound},
		{name: "malformed user id", body: map[string]string{"user_id": "bob"}, wantStatus: http.StatusBadRequest},
		{name: "missing user id", body: map[string]string{}, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, groupService := setupGroupRouter(t)
			if tt.callsSvc {
				groupService.EXPECT().AddMember(gomock.Any(), groupID, userID).Return(tt.serviceErr)
			}

			rr := perform(router, http.MethodPost, "/v1/groups/"+groupID+"/members", tt.body)
			require.Equal(t, tt.wantStatus, rr.Code)
		})
	}
}

func TestGroupController_RemoveMember(t *testing.T) {
	router, groupService := setupGroupRouter(t)

	groupService.EXPECT().RemoveMember(gomock.Any(), groupID, userID).Return(nil)

	rr := perform(router, http.MethodDelete, "/v1/groups/"+groupID+"/members/"+userID, nil)
	require.Equal(t, http.StatusNoContent, rr.Code)
}

package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/narrative-weaver/internal/application"
	"github.com/oksasatya/narrative-weaver/internal/domain/entity"
	"github.com/oksasatya/narrative-weaver/pkg/response"
)

type UserHandler struct {
	Svc    *application.UserService
	Logger *logrus.Logger
}

func NewUserHandler(svc *application.UserService, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger}
}

type registerRequest struct {
	Name     string `json:"name" binding:"required,max=128"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
	Phone    string `json:"phone" binding:"omitempty,max=32"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type updateProfileRequest struct {
	Name        *string `json:"name" binding:"omitempty,max=128"`
	Email       *string `json:"email" binding:"omitempty,email"`
	Phone       *string `json:"phone" binding:"omitempty,max=32"`
	DateOfBirth *string `json:"dateOfBirth"`
	Gender      *string `json:"gender" binding:"omitempty,max=64"`
	Ethnicity   *string `json:"ethnicity" binding:"omitempty,max=64"`
	Address     *string `json:"address" binding:"omitempty,max=512"`
	Password    *string `json:"password" binding:"omitempty,pwd"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,pwd"`
}

func authPayload(u *entity.User, token string) gin.H {
	return gin.H{"id": u.ID, "name": u.Name, "email": u.Email, "token": token}
}

func profilePayload(u *entity.User) gin.H {
	var dob any
	if u.DateOfBirth != nil {
		dob = u.DateOfBirth.Format(time.DateOnly)
	}
	return gin.H{
		"id":          u.ID,
		"name":        u.Name,
		"email":       u.Email,
		"phone":       u.Phone,
		"dateOfBirth": dob,
		"gender":      u.Gender,
		"ethnicity":   u.Ethnicity,
		"address":     u.Address,
		"createdAt":   u.CreatedAt,
		"updatedAt":   u.UpdatedAt,
	}
}

func (h *UserHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	u, token, err := h.Svc.Register(c.Request.Context(), application.RegisterInput{
		Name: req.Name, Email: req.Email, Password: req.Password, Phone: req.Phone,
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, authPayload(u, token), "registered", nil)
}

func (h *UserHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	u, token, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, authPayload(u, token), "login successful", nil)
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	u, err := h.Svc.GetProfile(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, profilePayload(u), "profile", nil)
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	u, token, err := h.Svc.UpdateProfile(c.Request.Context(), c.GetString("userID"), application.UpdateProfileInput{
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		DateOfBirth: req.DateOfBirth,
		Gender:      req.Gender,
		Ethnicity:   req.Ethnicity,
		Address:     req.Address,
		Password:    req.Password,
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	data := profilePayload(u)
	data["token"] = token
	response.Success(c, http.StatusOK, data, "profile updated", nil)
}

func (h *UserHandler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	meta := application.RequestMeta{IP: c.GetString("real_ip"), UserAgent: c.Request.UserAgent()}
	if err := h.Svc.ChangePassword(c.Request.Context(), c.GetString("userID"), req.CurrentPassword, req.NewPassword, meta); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "Password updated successfully.", nil)
}

func (h *UserHandler) DeleteAccount(c *gin.Context) {
	if err := h.Svc.DeleteAccount(c.Request.Context(), c.GetString("userID")); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "Account and all associated data deleted successfully.", nil)
}

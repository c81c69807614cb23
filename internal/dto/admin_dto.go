package dto

import "github.com/google/uuid"

type CreateTenantRequest struct {
	Name string `json:"name" binding:"required,max=100"`
}

type CreateUserRequest struct {
	Username string     `json:"username" binding:"required,min=3,max=50"`
	Email    string     `json:"email" binding:"required,email"`
	Password string     `json:"password" binding:"required,min=8"`
	Role     string     `json:"role" binding:"required,oneof=admin moderator employee"`
	TenantID *uuid.UUID `json:"tenant_id"`
}

package service

import (
	"context"

	"golang.org/x/crypto/bcrypt"
	"kultura.id/engagehub/internal/dto"
	"kultura.id/engagehub/internal/model"
	"kultura.id/engagehub/internal/repository"
	"kultura.id/engagehub/pkg/apperror"
)

// AdminService covers the tenant/user management boundary. Users and tenants
// are referenced by the participation core by id only; nothing here touches
// memberships, submissions or the ledger.
type AdminService interface {
	CreateTenant(ctx context.Context, input dto.CreateTenantRequest) (*model.Tenant, error)
	CreateUser(ctx context.Context, input dto.CreateUserRequest) (*model.User, error)
}

type adminService struct {
	repo repository.UserRepository
}

func NewAdminService(repo repository.UserRepository) AdminService {
	return &adminService{repo: repo}
}

func (s *adminService) CreateTenant(ctx context.Context, input dto.CreateTenantRequest) (*model.Tenant, error) {
	tenant := &model.Tenant{Name: input.Name}
	if err := s.repo.CreateTenant(ctx, tenant); err != nil {
		return nil, err
	}
	return tenant, nil
}

func (s *adminService) CreateUser(ctx context.Context, input dto.CreateUserRequest) (*model.User, error) {
	role, err := s.repo.FindRoleByName(ctx, input.Role)
	if err != nil {
		return nil, apperror.ErrBadRequest
	}

	if input.TenantID != nil {
		if _, err := s.repo.FindTenantByID(ctx, *input.TenantID); err != nil {
			return nil, err
		}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hashed),
		RoleID:       &role.ID,
		TenantID:     input.TenantID,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

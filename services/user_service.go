package services

import (
	"errors"

	"shopmart/models"
	"shopmart/repositories"
	"shopmart/utils"
)

var ErrEmailTaken = errors.New("email already registered")

// UserService covers the admin-facing user management surface.
// Customer self-service lives in AuthService.
type UserService struct {
	userRepo *repositories.UserRepository
}

func NewUserService() *UserService {
	return &UserService{
		userRepo: repositories.NewUserRepository(),
	}
}

func (s *UserService) GetAllUsers(page, limit int) (*models.PaginationResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	users, total, err := s.userRepo.FindAll(page, limit)
	if err != nil {
		return nil, err
	}

	return &models.PaginationResponse{
		Success: true,
		Message: "Users retrieved successfully",
		Data:    users,
		Meta:    models.NewMetaData(page, limit, total),
	}, nil
}

func (s *UserService) GetUserByID(id int) (*models.UserWithProfile, error) {
	return s.userRepo.GetUserWithProfile(id)
}

func (s *UserService) CreateUser(req models.CreateUserRequest) (*models.UserWithProfile, error) {
	if existing, _ := s.userRepo.FindByEmail(req.Email); existing != nil {
		return nil, ErrEmailTaken
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:    req.Email,
		Password: hashed,
		Role:     req.Role,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	profile := &models.UserProfile{
		UserID:   user.ID,
		FullName: req.FullName,
		Phone:    req.Phone,
	}
	if err := s.userRepo.CreateProfile(profile); err != nil {
		return nil, err
	}

	return s.userRepo.GetUserWithProfile(user.ID)
}

func (s *UserService) UpdateUser(id int, req models.UpdateUserRequest) (*models.UserWithProfile, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return nil, errors.New("user not found")
	}

	if req.Email != "" && req.Email != user.Email {
		if existing, _ := s.userRepo.FindByEmail(req.Email); existing != nil {
			return nil, ErrEmailTaken
		}
		user.Email = req.Email
	}
	if req.Role != "" {
		user.Role = req.Role
	}
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}

	if err := s.updateProfile(id, req); err != nil {
		return nil, err
	}

	return s.userRepo.GetUserWithProfile(id)
}

func (s *UserService) updateProfile(userID int, req models.UpdateUserRequest) error {
	if req.FullName == "" && req.Phone == "" && req.Address == "" {
		return nil
	}

	profile, err := s.userRepo.GetProfile(userID)
	if err != nil {
		return err
	}
	if req.FullName != "" {
		profile.FullName = req.FullName
	}
	if req.Phone != "" {
		profile.Phone = req.Phone
	}
	if req.Address != "" {
		profile.Address = req.Address
	}
	return s.userRepo.UpdateProfile(profile)
}

func (s *UserService) DeleteUser(id int) error {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return errors.New("user not found")
	}

	// Orders reference the user and survive deletion; only the uploaded
	// avatar is cleaned up.
	if profile, err := s.userRepo.GetProfile(id); err == nil && profile.PhotoURL != "" {
		utils.DeleteFile(profile.PhotoURL)
	}

	return s.userRepo.Delete(user.ID)
}

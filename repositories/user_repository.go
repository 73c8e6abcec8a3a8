package repositories

import (
	"context"
	"time"

	"shopmart/config"
	"shopmart/models"
)

type UserRepository struct{}

func NewUserRepository() *UserRepository {
	return &UserRepository{}
}

func (r *UserRepository) Create(user *models.User) error {
	query := `
		INSERT INTO users (email, password, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`
	now := time.Now()
	return config.DB.QueryRow(context.Background(), query,
		user.Email, user.Password, user.Role, now, now,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}

func (r *UserRepository) CreateProfile(profile *models.UserProfile) error {
	query := `
		INSERT INTO user_profiles (user_id, full_name, phone, address, photo_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`
	now := time.Now()
	return config.DB.QueryRow(context.Background(), query,
		profile.UserID, profile.FullName, profile.Phone, profile.Address, profile.PhotoURL, now, now,
	).Scan(&profile.ID, &profile.CreatedAt, &profile.UpdatedAt)
}

func (r *UserRepository) FindByEmail(email string) (*models.User, error) {
	query := `SELECT id, email, password, role, two_factor_enabled, created_at, updated_at
	          FROM users WHERE email = $1`

	var u models.User
	err := config.DB.QueryRow(context.Background(), query, email).Scan(
		&u.ID, &u.Email, &u.Password, &u.Role, &u.TwoFactorEnabled, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) FindByID(id int) (*models.User, error) {
	query := `SELECT id, email, password, role, two_factor_enabled, created_at, updated_at
	          FROM users WHERE id = $1`

	var u models.User
	err := config.DB.QueryRow(context.Background(), query, id).Scan(
		&u.ID, &u.Email, &u.Password, &u.Role, &u.TwoFactorEnabled, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) FindAll(page, limit int) ([]models.UserWithProfile, int, error) {
	offset := (page - 1) * limit

	var total int
	if err := config.DB.QueryRow(context.Background(), `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT u.id, u.email, u.role, u.two_factor_enabled,
		       COALESCE(p.full_name, ''), COALESCE(p.phone, ''), COALESCE(p.address, ''), COALESCE(p.photo_url, ''),
		       u.created_at
		FROM users u
		LEFT JOIN user_profiles p ON p.user_id = u.id
		ORDER BY u.created_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := config.DB.Query(context.Background(), query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	users := []models.UserWithProfile{}
	for rows.Next() {
		var u models.UserWithProfile
		if err := rows.Scan(&u.ID, &u.Email, &u.Role, &u.TwoFactorEnabled,
			&u.FullName, &u.Phone, &u.Address, &u.PhotoURL, &u.CreatedAt); err != nil {
			return nil, 0, err
		}
		users = append(users, u)
	}
	return users, total, rows.Err()
}

func (r *UserRepository) GetUserWithProfile(id int) (*models.UserWithProfile, error) {
	query := `
		SELECT u.id, u.email, u.role, u.two_factor_enabled,
		       COALESCE(p.full_name, ''), COALESCE(p.phone, ''), COALESCE(p.address, ''), COALESCE(p.photo_url, ''),
		       u.created_at
		FROM users u
		LEFT JOIN user_profiles p ON p.user_id = u.id
		WHERE u.id = $1
	`
	var u models.UserWithProfile
	err := config.DB.QueryRow(context.Background(), query, id).Scan(
		&u.ID, &u.Email, &u.Role, &u.TwoFactorEnabled,
		&u.FullName, &u.Phone, &u.Address, &u.PhotoURL, &u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetProfile(userID int) (*models.UserProfile, error) {
	query := `SELECT id, user_id, full_name, phone, address, photo_url, created_at, updated_at
	          FROM user_profiles WHERE user_id = $1`

	var p models.UserProfile
	err := config.DB.QueryRow(context.Background(), query, userID).Scan(
		&p.ID, &p.UserID, &p.FullName, &p.Phone, &p.Address, &p.PhotoURL, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *UserRepository) Update(user *models.User) error {
	query := `UPDATE users SET email = $1, role = $2, two_factor_enabled = $3, updated_at = $4 WHERE id = $5`
	_, err := config.DB.Exec(context.Background(), query,
		user.Email, user.Role, user.TwoFactorEnabled, time.Now(), user.ID)
	return err
}

func (r *UserRepository) UpdateProfile(profile *models.UserProfile) error {
	query := `UPDATE user_profiles SET full_name = $1, phone = $2, address = $3, photo_url = $4, updated_at = $5
	          WHERE user_id = $6`
	_, err := config.DB.Exec(context.Background(), query,
		profile.FullName, profile.Phone, profile.Address, profile.PhotoURL, time.Now(), profile.UserID)
	return err
}

func (r *UserRepository) UpdatePassword(userID int, hashedPassword string) error {
	query := `UPDATE users SET password = $1, updated_at = $2 WHERE id = $3`
	_, err := config.DB.Exec(context.Background(), query, hashedPassword, time.Now(), userID)
	return err
}

func (r *UserRepository) SetTwoFactor(userID int, enabled bool) error {
	query := `UPDATE users SET two_factor_enabled = $1, updated_at = $2 WHERE id = $3`
	_, err := config.DB.Exec(context.Background(), query, enabled, time.Now(), userID)
	return err
}

func (r *UserRepository) Delete(id int) error {
	_, err := config.DB.Exec(context.Background(), `DELETE FROM users WHERE id = $1`, id)
	return err
}

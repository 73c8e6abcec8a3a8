package repositories

import (
	"context"
	"errors"
	"time"

	"shopmart/config"
	"shopmart/models"

	"github.com/jackc/pgx/v5"
)

var ErrTemplateNotFound = errors.New("email template not found")

type EmailTemplateRepository struct{}

func NewEmailTemplateRepository() *EmailTemplateRepository {
	return &EmailTemplateRepository{}
}

const templateColumns = `id, name, locale, subject, preheader, html_body, text_body, variables, version, is_active, created_at, updated_at`

func scanTemplate(row pgx.Row) (*models.EmailTemplate, error) {
	var t models.EmailTemplate
	err := row.Scan(&t.ID, &t.Name, &t.Locale, &t.Subject, &t.Preheader,
		&t.HTMLBody, &t.TextBody, &t.Variables, &t.Version, &t.IsActive,
		&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *EmailTemplateRepository) FindByID(id int) (*models.EmailTemplate, error) {
	query := `SELECT ` + templateColumns + ` FROM email_templates WHERE id = $1`
	return scanTemplate(config.DB.QueryRow(context.Background(), query, id))
}

func (r *EmailTemplateRepository) FindByNameAndLocale(name, locale string) (*models.EmailTemplate, error) {
	query := `SELECT ` + templateColumns + ` FROM email_templates WHERE name = $1 AND locale = $2 AND is_active = true`
	return scanTemplate(config.DB.QueryRow(context.Background(), query, name, locale))
}

func (r *EmailTemplateRepository) List(page, limit int) ([]models.EmailTemplate, int, error) {
	offset := (page - 1) * limit

	var total int
	if err := config.DB.QueryRow(context.Background(), `SELECT COUNT(*) FROM email_templates`).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + templateColumns + ` FROM email_templates ORDER BY name, locale LIMIT $1 OFFSET $2`
	rows, err := config.DB.Query(context.Background(), query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	templates := []models.EmailTemplate{}
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, 0, err
		}
		templates = append(templates, *t)
	}
	return templates, total, rows.Err()
}

func (r *EmailTemplateRepository) Create(t *models.EmailTemplate) error {
	query := `
		INSERT INTO email_templates (name, locale, subject, preheader, html_body, text_body, variables,
		                             version, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 1, true, $8, $9)
		RETURNING id, version, created_at, updated_at
	`
	now := time.Now()
	return config.DB.QueryRow(context.Background(), query,
		t.Name, t.Locale, t.Subject, t.Preheader, t.HTMLBody, t.TextBody, t.Variables, now, now,
	).Scan(&t.ID, &t.Version, &t.CreatedAt, &t.UpdatedAt)
}

// Update persists the template content and the version already bumped by
// EmailTemplate.ApplyUpdate.
func (r *EmailTemplateRepository) Update(t *models.EmailTemplate) error {
	query := `
		UPDATE email_templates
		SET subject = $1, preheader = $2, html_body = $3, text_body = $4, variables = $5,
		    is_active = $6, version = $7, updated_at = $8
		WHERE id = $9
		RETURNING updated_at
	`
	return config.DB.QueryRow(context.Background(), query,
		t.Subject, t.Preheader, t.HTMLBody, t.TextBody, t.Variables,
		t.IsActive, t.Version, time.Now(), t.ID,
	).Scan(&t.UpdatedAt)
}

func (r *EmailTemplateRepository) Delete(id int) error {
	_, err := config.DB.Exec(context.Background(), `DELETE FROM email_templates WHERE id = $1`, id)
	return err
}

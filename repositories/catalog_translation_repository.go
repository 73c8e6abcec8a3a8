package repositories

import (
	"context"
	"time"

	"shopmart/config"
	"shopmart/models"
)

type CatalogTranslationRepository struct{}

func NewCatalogTranslationRepository() *CatalogTranslationRepository {
	return &CatalogTranslationRepository{}
}

func (r *CatalogTranslationRepository) Upsert(t *models.CatalogTranslation) error {
	query := `
		INSERT INTO catalog_translations (entity_type, entity_id, locale, field, value, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (entity_type, entity_id, locale, field) DO UPDATE
		SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
		RETURNING id, created_at, updated_at
	`
	now := time.Now()
	return config.DB.QueryRow(context.Background(), query,
		t.EntityType, t.EntityID, t.Locale, t.Field, t.Value, now, now,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

func (r *CatalogTranslationRepository) ListLocales() ([]string, error) {
	rows, err := config.DB.Query(context.Background(),
		`SELECT DISTINCT locale FROM catalog_translations ORDER BY locale`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	locales := []string{}
	for rows.Next() {
		var locale string
		if err := rows.Scan(&locale); err != nil {
			return nil, err
		}
		locales = append(locales, locale)
	}
	return locales, rows.Err()
}

// Stats compares a locale against the source locale: every (entity, field)
// present in the source counts, and a non-empty value in the target counts
// as translated.
func (r *CatalogTranslationRepository) Stats(sourceLocale, locale string) (*models.TranslationStats, error) {
	query := `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE t.value <> '' AND t.value IS NOT NULL)
		FROM catalog_translations s
		LEFT JOIN catalog_translations t
		  ON t.entity_type = s.entity_type AND t.entity_id = s.entity_id
		 AND t.field = s.field AND t.locale = $2
		WHERE s.locale = $1
	`
	stats := &models.TranslationStats{Locale: locale}
	err := config.DB.QueryRow(context.Background(), query, sourceLocale, locale).Scan(
		&stats.Total, &stats.Translated,
	)
	if err != nil {
		return nil, err
	}
	stats.Missing = stats.Total - stats.Translated
	if stats.Total > 0 {
		stats.Percent = float64(stats.Translated) / float64(stats.Total) * 100
	}
	return stats, nil
}

// CreateMissing inserts empty target-locale rows for every source row that
// has no counterpart yet, so translators see the full backlog.
func (r *CatalogTranslationRepository) CreateMissing(sourceLocale, targetLocale string) (int, error) {
	query := `
		INSERT INTO catalog_translations (entity_type, entity_id, locale, field, value, created_at, updated_at)
		SELECT s.entity_type, s.entity_id, $2, s.field, '', NOW(), NOW()
		FROM catalog_translations s
		WHERE s.locale = $1
		ON CONFLICT (entity_type, entity_id, locale, field) DO NOTHING
	`
	tag, err := config.DB.Exec(context.Background(), query, sourceLocale, targetLocale)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

// Duplicate copies the source locale's rows (values included) into the
// target locale, bootstrapping a new language from an existing one.
func (r *CatalogTranslationRepository) Duplicate(sourceLocale, targetLocale string) (int, error) {
	query := `
		INSERT INTO catalog_translations (entity_type, entity_id, locale, field, value, created_at, updated_at)
		SELECT s.entity_type, s.entity_id, $2, s.field, s.value, NOW(), NOW()
		FROM catalog_translations s
		WHERE s.locale = $1
		ON CONFLICT (entity_type, entity_id, locale, field) DO NOTHING
	`
	tag, err := config.DB.Exec(context.Background(), query, sourceLocale, targetLocale)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

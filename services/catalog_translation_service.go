package services

import (
	"errors"

	"shopmart/models"
)

var ErrSameLocale = errors.New("source and target locale are identical")

type CatalogTranslationStore interface {
	Upsert(t *models.CatalogTranslation) error
	ListLocales() ([]string, error)
	Stats(sourceLocale, locale string) (*models.TranslationStats, error)
	CreateMissing(sourceLocale, targetLocale string) (int, error)
	Duplicate(sourceLocale, targetLocale string) (int, error)
}

// CatalogTranslationService manages the per-entity translation rows for
// catalog content (products, categories, pages).
type CatalogTranslationService struct {
	store         CatalogTranslationStore
	defaultLocale string
}

func NewCatalogTranslationService(store CatalogTranslationStore, defaultLocale string) *CatalogTranslationService {
	return &CatalogTranslationService{store: store, defaultLocale: defaultLocale}
}

func (s *CatalogTranslationService) SetTranslation(entityType string, entityID int, locale, field, value string) (*models.CatalogTranslation, error) {
	t := &models.CatalogTranslation{
		EntityType: entityType,
		EntityID:   entityID,
		Locale:     locale,
		Field:      field,
		Value:      value,
	}
	if err := s.store.Upsert(t); err != nil {
		return nil, err
	}
	return t, nil
}

// Stats reports completion of every known locale against the default one.
func (s *CatalogTranslationService) Stats() ([]models.TranslationStats, error) {
	locales, err := s.store.ListLocales()
	if err != nil {
		return nil, err
	}

	stats := []models.TranslationStats{}
	for _, locale := range locales {
		if locale == s.defaultLocale {
			continue
		}
		st, err := s.store.Stats(s.defaultLocale, locale)
		if err != nil {
			return nil, err
		}
		stats = append(stats, *st)
	}
	return stats, nil
}

// CreateMissing seeds empty target rows for entities that have no
// translation yet in the target locale.
func (s *CatalogTranslationService) CreateMissing(targetLocale string) (int, error) {
	if targetLocale == s.defaultLocale {
		return 0, ErrSameLocale
	}
	return s.store.CreateMissing(s.defaultLocale, targetLocale)
}

// Duplicate bootstraps a locale by copying all rows (values included) from
// another one, e.g. es-MX from es.
func (s *CatalogTranslationService) Duplicate(sourceLocale, targetLocale string) (int, error) {
	if sourceLocale == targetLocale {
		return 0, ErrSameLocale
	}
	return s.store.Duplicate(sourceLocale, targetLocale)
}

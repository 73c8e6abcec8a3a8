package services

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"shopmart/models"

	"github.com/goccy/go-yaml"
)

// TranslationService manages the filesystem-resident YAML files holding the
// UI strings, one file per locale (translations/messages.<locale>.yaml).
// Catalog content translations live in the database instead; see
// CatalogTranslationService.
type TranslationService struct {
	dir           string
	defaultLocale string
}

func NewTranslationService(dir, defaultLocale string) *TranslationService {
	return &TranslationService{dir: dir, defaultLocale: defaultLocale}
}

func (s *TranslationService) filePath(locale string) string {
	return filepath.Join(s.dir, fmt.Sprintf("messages.%s.yaml", locale))
}

// Locales lists every locale that has a messages file on disk.
func (s *TranslationService) Locales() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(s.dir, "messages.*.yaml"))
	if err != nil {
		return nil, err
	}

	locales := []string{}
	for _, match := range matches {
		base := filepath.Base(match)
		locale := strings.TrimSuffix(strings.TrimPrefix(base, "messages."), ".yaml")
		if locale != "" {
			locales = append(locales, locale)
		}
	}
	sort.Strings(locales)
	return locales, nil
}

// Load reads a locale file and returns its messages flattened to dotted keys.
// A missing file is an empty catalogue, not an error.
func (s *TranslationService) Load(locale string) (map[string]string, error) {
	data, err := os.ReadFile(s.filePath(locale))
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, err
	}

	var tree map[string]interface{}
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("invalid YAML in %s: %w", s.filePath(locale), err)
	}
	return Flatten(tree), nil
}

// Save unflattens the messages back into a nested tree and rewrites the
// locale file.
func (s *TranslationService) Save(locale string, messages map[string]string) error {
	if err := os.MkdirAll(s.dir, os.ModePerm); err != nil {
		return err
	}

	data, err := yaml.Marshal(Unflatten(messages))
	if err != nil {
		return err
	}
	return os.WriteFile(s.filePath(locale), data, 0644)
}

func (s *TranslationService) SetKey(locale, key, value string) error {
	messages, err := s.Load(locale)
	if err != nil {
		return err
	}
	messages[key] = value
	return s.Save(locale, messages)
}

func (s *TranslationService) DeleteKey(locale, key string) error {
	messages, err := s.Load(locale)
	if err != nil {
		return err
	}
	delete(messages, key)
	return s.Save(locale, messages)
}

// Stats reports, for each locale on disk, how complete it is against the
// default locale's key set. A key counts as translated when present with a
// non-empty value.
func (s *TranslationService) Stats() ([]models.TranslationStats, error) {
	reference, err := s.Load(s.defaultLocale)
	if err != nil {
		return nil, err
	}

	locales, err := s.Locales()
	if err != nil {
		return nil, err
	}

	stats := []models.TranslationStats{}
	for _, locale := range locales {
		messages, err := s.Load(locale)
		if err != nil {
			return nil, err
		}

		st := models.TranslationStats{Locale: locale, Total: len(reference)}
		for key := range reference {
			if value, ok := messages[key]; ok && value != "" {
				st.Translated++
			}
		}
		st.Missing = st.Total - st.Translated
		if st.Total > 0 {
			st.Percent = float64(st.Translated) / float64(st.Total) * 100
		}
		stats = append(stats, st)
	}
	return stats, nil
}

// Sync adds every default-locale key missing from the other locale files,
// with an empty value for translators to fill in. Returns the number of keys
// created per locale.
func (s *TranslationService) Sync() (map[string]int, error) {
	reference, err := s.Load(s.defaultLocale)
	if err != nil {
		return nil, err
	}

	locales, err := s.Locales()
	if err != nil {
		return nil, err
	}

	created := map[string]int{}
	for _, locale := range locales {
		if locale == s.defaultLocale {
			continue
		}

		messages, err := s.Load(locale)
		if err != nil {
			return nil, err
		}

		added := 0
		for key := range reference {
			if _, ok := messages[key]; !ok {
				messages[key] = ""
				added++
			}
		}
		if added > 0 {
			if err := s.Save(locale, messages); err != nil {
				return nil, err
			}
		}
		created[locale] = added
	}
	return created, nil
}

// Flatten turns a nested message tree into dotted keys:
// {"cart": {"empty": "x"}} becomes {"cart.empty": "x"}.
func Flatten(tree map[string]interface{}) map[string]string {
	flat := map[string]string{}
	flattenInto(flat, "", tree)
	return flat
}

func flattenInto(flat map[string]string, prefix string, tree map[string]interface{}) {
	for key, value := range tree {
		full := key
		if prefix != "" {
			full = prefix + "." + key
		}
		switch v := value.(type) {
		case map[string]interface{}:
			flattenInto(flat, full, v)
		case nil:
			flat[full] = ""
		default:
			flat[full] = fmt.Sprintf("%v", v)
		}
	}
}

// Unflatten is the inverse of Flatten.
func Unflatten(flat map[string]string) map[string]interface{} {
	tree := map[string]interface{}{}
	for key, value := range flat {
		parts := strings.Split(key, ".")
		node := tree
		for _, part := range parts[:len(parts)-1] {
			child, ok := node[part].(map[string]interface{})
			if !ok {
				child = map[string]interface{}{}
				node[part] = child
			}
			node = child
		}
		node[parts[len(parts)-1]] = value
	}
	return tree
}

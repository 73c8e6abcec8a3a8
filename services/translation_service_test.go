package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTranslationFixture(t *testing.T) *TranslationService {
	t.Helper()
	return NewTranslationService(t.TempDir(), "en")
}

func writeLocale(t *testing.T, svc *TranslationService, locale, content string) {
	t.Helper()
	path := filepath.Join(svc.dir, "messages."+locale+".yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestFlattenUnflatten(t *testing.T) {
	tree := map[string]interface{}{
		"cart": map[string]interface{}{
			"empty": "Your cart is empty",
			"totals": map[string]interface{}{
				"shipping": "Shipping",
			},
		},
		"welcome": "Welcome",
	}

	flat := Flatten(tree)
	assert.Equal(t, map[string]string{
		"cart.empty":           "Your cart is empty",
		"cart.totals.shipping": "Shipping",
		"welcome":              "Welcome",
	}, flat)

	assert.Equal(t, tree, Unflatten(flat))
}

func TestLoadAndSave(t *testing.T) {
	svc := newTranslationFixture(t)

	t.Run("missing file loads empty", func(t *testing.T) {
		messages, err := svc.Load("xx")
		require.NoError(t, err)
		assert.Empty(t, messages)
	})

	t.Run("save then load round-trips", func(t *testing.T) {
		in := map[string]string{
			"cart.empty":    "Your cart is empty",
			"cart.checkout": "Checkout",
			"welcome":       "Welcome",
		}
		require.NoError(t, svc.Save("en", in))

		out, err := svc.Load("en")
		require.NoError(t, err)
		assert.Equal(t, in, out)
	})

	t.Run("nested YAML flattens to dotted keys", func(t *testing.T) {
		writeLocale(t, svc, "de", "cart:\n  empty: Ihr Warenkorb ist leer\nwelcome: Willkommen\n")
		messages, err := svc.Load("de")
		require.NoError(t, err)
		assert.Equal(t, "Ihr Warenkorb ist leer", messages["cart.empty"])
		assert.Equal(t, "Willkommen", messages["welcome"])
	})

	t.Run("invalid YAML is an error", func(t *testing.T) {
		writeLocale(t, svc, "broken", "cart: [unterminated\n")
		_, err := svc.Load("broken")
		assert.Error(t, err)
	})
}

func TestSetAndDeleteKey(t *testing.T) {
	svc := newTranslationFixture(t)

	require.NoError(t, svc.SetKey("en", "cart.empty", "Your cart is empty"))
	require.NoError(t, svc.SetKey("en", "cart.empty", "Nothing here yet"))

	messages, err := svc.Load("en")
	require.NoError(t, err)
	assert.Equal(t, "Nothing here yet", messages["cart.empty"])

	require.NoError(t, svc.DeleteKey("en", "cart.empty"))
	messages, err = svc.Load("en")
	require.NoError(t, err)
	assert.NotContains(t, messages, "cart.empty")
}

func TestLocales(t *testing.T) {
	svc := newTranslationFixture(t)
	writeLocale(t, svc, "en", "welcome: Welcome\n")
	writeLocale(t, svc, "fr", "welcome: Bienvenue\n")
	writeLocale(t, svc, "de", "welcome: Willkommen\n")

	locales, err := svc.Locales()
	require.NoError(t, err)
	assert.Equal(t, []string{"de", "en", "fr"}, locales)
}

func TestTranslationStats(t *testing.T) {
	svc := newTranslationFixture(t)
	require.NoError(t, svc.Save("en", map[string]string{
		"a": "1", "b": "2", "c": "3", "d": "4",
	}))
	require.NoError(t, svc.Save("fr", map[string]string{
		"a": "un", "b": "deux", "c": "", // empty value counts as untranslated
	}))

	stats, err := svc.Stats()
	require.NoError(t, err)
	require.Len(t, stats, 2)

	byLocale := map[string]int{}
	for _, st := range stats {
		byLocale[st.Locale] = st.Translated
		if st.Locale == "fr" {
			assert.Equal(t, 4, st.Total)
			assert.Equal(t, 2, st.Missing)
			assert.InDelta(t, 50.0, st.Percent, 0.01)
		}
	}
	assert.Equal(t, 4, byLocale["en"])
	assert.Equal(t, 2, byLocale["fr"])
}

func TestSync(t *testing.T) {
	svc := newTranslationFixture(t)
	require.NoError(t, svc.Save("en", map[string]string{
		"cart.empty": "Your cart is empty",
		"welcome":    "Welcome",
	}))
	require.NoError(t, svc.Save("fr", map[string]string{
		"welcome": "Bienvenue",
	}))

	created, err := svc.Sync()
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"fr": 1}, created)

	messages, err := svc.Load("fr")
	require.NoError(t, err)
	assert.Equal(t, "", messages["cart.empty"])
	assert.Equal(t, "Bienvenue", messages["welcome"])

	// A second sync has nothing left to add.
	created, err = svc.Sync()
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"fr": 0}, created)
}

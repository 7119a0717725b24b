package jsonschema

import (
	"embed"

	"github.com/kaptinlin/go-i18n"
)

//go:embed locales/*.json
var localesFS embed.FS

// NewI18n returns an initialized internationalization bundle with the
// embedded English and Simplified Chinese locales, ported from the
// teacher's GetI18n (i18n.go); callers use it to build a *i18n.Localizer
// for ValidationError.Localize.
func NewI18n() (*i18n.I18n, error) {
	bundle := i18n.NewBundle(
		i18n.WithDefaultLocale("en"),
		i18n.WithLocales("en", "zh-Hans"),
	)
	if err := bundle.LoadFS(localesFS, "locales/*.json"); err != nil {
		return nil, err
	}
	return bundle, nil
}

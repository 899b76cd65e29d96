package i18n

import (
	"embed"
	"maps"
	"sync"

	"github.com/goccy/go-yaml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"

	"github.com/postcatcher/postcatcher-bot/common/i18n/i18nk"
)

//go:embed locale/*
var localesFS embed.FS

const DefaultLang = "en"

var (
	mu        sync.RWMutex
	bundle    *i18n.Bundle
	localizer *i18n.Localizer
)

// Init loads the embedded locales and selects lang, falling back to English.
func Init(lang string) error {
	b := i18n.NewBundle(language.English)
	b.RegisterUnmarshalFunc("yaml", yaml.Unmarshal)
	files, err := localesFS.ReadDir("locale")
	if err != nil {
		return err
	}
	for _, file := range files {
		if _, err := b.LoadMessageFileFS(localesFS, "locale/"+file.Name()); err != nil {
			return err
		}
	}
	if lang == "" {
		lang = DefaultLang
	}
	mu.Lock()
	defer mu.Unlock()
	bundle = b
	localizer = i18n.NewLocalizer(b, lang, DefaultLang)
	return nil
}

// T renders key with the merged template data. Unknown keys render as the key itself.
func T(key i18nk.Key, templateData ...map[string]any) string {
	mu.RLock()
	l := localizer
	mu.RUnlock()
	if l == nil {
		if err := Init(DefaultLang); err != nil {
			return string(key)
		}
		mu.RLock()
		l = localizer
		mu.RUnlock()
	}
	data := make(map[string]any)
	for _, d := range templateData {
		maps.Copy(data, d)
	}
	msg, err := l.Localize(&i18n.LocalizeConfig{
		MessageID:    string(key),
		TemplateData: data,
	})
	if err != nil {
		return string(key)
	}
	return msg
}

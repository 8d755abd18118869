// Package lang holds the closed set of languages lingoflow translates into.
package lang

import (
	"golang.org/x/text/language"
)

// Code is a BCP 47 language code as stored in a field's translation map.
type Code = string

const (
	English            Code = "en"
	SimplifiedChinese  Code = "zh-CN"
	TraditionalChinese Code = "zh-TW"
)

// Language describes display metadata for a supported language.
type Language struct {
	Code       Code         `json:"code"`
	Name       string       `json:"name"`
	NativeName string       `json:"nativeName"`
	Flag       string       `json:"flag"`
	Tag        language.Tag `json:"-"`
}

// Languages is ordered; exports and progress iterate in this order.
var Languages = []Language{
	{Code: English, Name: "English", NativeName: "English", Flag: "🇬🇧", Tag: language.MustParse(English)},
	{Code: SimplifiedChinese, Name: "Simplified Chinese", NativeName: "简体中文", Flag: "🇨🇳", Tag: language.MustParse(SimplifiedChinese)},
	{Code: TraditionalChinese, Name: "Traditional Chinese", NativeName: "繁體中文", Flag: "🇹🇼", Tag: language.MustParse(TraditionalChinese)},
}

var byCode = func() map[Code]Language {
	m := make(map[Code]Language, len(Languages))
	for _, l := range Languages {
		m[l.Code] = l
	}
	return m
}()

// Count is the number of supported languages.
func Count() int {
	return len(Languages)
}

// Codes returns the supported codes in registry order.
func Codes() []Code {
	codes := make([]Code, 0, len(Languages))
	for _, l := range Languages {
		codes = append(codes, l.Code)
	}
	return codes
}

// Lookup resolves a code to its registry entry. Codes are matched after
// BCP 47 canonicalisation, so "zh-cn" and "zh_CN" resolve to zh-CN.
func Lookup(code string) (Language, bool) {
	if l, ok := byCode[code]; ok {
		return l, true
	}
	tag, err := language.Parse(code)
	if err != nil {
		return Language{}, false
	}
	for _, l := range Languages {
		if l.Tag == tag {
			return l, true
		}
	}
	return Language{}, false
}

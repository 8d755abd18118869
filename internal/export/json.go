package export

import (
	"fmt"

	v1 "lingoflow/pkg/api/v1"
	"lingoflow/pkg/lang"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

var prettyOpts = &pretty.Options{Width: 80, Indent: "  "}

// JSONByField renders {fieldKey: {langCode: value}}. Keys keep field order and
// languages keep registry order; empty translations are left out. A repeated
// key keeps its first position and its last value.
func JSONByField(f v1.Feature) ([]byte, error) {
	var obj orderedObject
	for _, field := range f.Fields {
		inner, err := translationsObject(field.Translations)
		if err != nil {
			return nil, fmt.Errorf("export field %q: %w", field.Key, err)
		}
		obj.Set(field.Key, inner)
	}
	return pretty.PrettyOptions(obj.Bytes(), prettyOpts), nil
}

// JSONByLanguage renders {langCode: {fieldKey: value}} for every registry
// language, with the same inclusion rule as JSONByField.
func JSONByLanguage(f v1.Feature) ([]byte, error) {
	doc := []byte("{}")
	var err error
	for _, code := range lang.Codes() {
		var inner orderedObject
		for _, field := range f.Fields {
			v := field.Translations[code]
			if v == "" {
				continue
			}
			inner.Set(field.Key, gjson.AppendJSONString(nil, v))
		}
		if doc, err = sjson.SetRawBytes(doc, gjson.Escape(code), inner.Bytes()); err != nil {
			return nil, fmt.Errorf("export language %q: %w", code, err)
		}
	}
	return pretty.PrettyOptions(doc, prettyOpts), nil
}

// translationsObject renders the non-empty translations in registry order.
// Registry codes are plain path components, so sjson can address them.
func translationsObject(t v1.Translations) ([]byte, error) {
	doc := []byte("{}")
	var err error
	for _, code := range lang.Codes() {
		v := t[code]
		if v == "" {
			continue
		}
		if doc, err = sjson.SetBytes(doc, gjson.Escape(code), v); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

// orderedObject builds a JSON object keyed by arbitrary user text. Field keys
// may be empty or start with characters sjson reads as path syntax, so they
// are quoted directly instead of going through a path.
type orderedObject struct {
	keys []string
	vals map[string][]byte
}

func (o *orderedObject) Set(key string, raw []byte) {
	if o.vals == nil {
		o.vals = make(map[string][]byte)
	}
	if _, ok := o.vals[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.vals[key] = raw
}

func (o *orderedObject) Bytes() []byte {
	b := []byte{'{'}
	for i, k := range o.keys {
		if i > 0 {
			b = append(b, ',')
		}
		b = gjson.AppendJSONString(b, k)
		b = append(b, ':')
		b = append(b, o.vals[k]...)
	}
	return append(b, '}')
}

// Entry is one field of a parsed JSON-by-field document.
type Entry struct {
	Key          string
	Translations v1.Translations
}

// ParseByField reads a JSON-by-field document back, keeping document order.
func ParseByField(data []byte) ([]Entry, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("invalid json export")
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, fmt.Errorf("json export must be an object")
	}

	var entries []Entry
	var perr error
	root.ForEach(func(key, value gjson.Result) bool {
		if !value.IsObject() {
			perr = fmt.Errorf("field %q: expected object", key.String())
			return false
		}
		e := Entry{Key: key.String(), Translations: v1.Translations{}}
		value.ForEach(func(code, text gjson.Result) bool {
			e.Translations[code.String()] = text.String()
			return true
		})
		entries = append(entries, e)
		return true
	})
	if perr != nil {
		return nil, perr
	}
	return entries, nil
}

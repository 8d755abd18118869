package export

import (
	"strings"

	v1 "lingoflow/pkg/api/v1"
	"lingoflow/pkg/lang"
)

// CSV renders a header of key,name and every registry language followed by
// one row per field. Every row cell is quoted.
func CSV(f v1.Feature) []byte {
	var b strings.Builder

	b.WriteString("key,name")
	for _, code := range lang.Codes() {
		b.WriteByte(',')
		b.WriteString(code)
	}

	for _, field := range f.Fields {
		b.WriteByte('\n')
		writeCell(&b, field.Key)
		b.WriteByte(',')
		writeCell(&b, field.Name)
		for _, code := range lang.Codes() {
			b.WriteByte(',')
			writeCell(&b, field.Translations[code])
		}
	}
	return []byte(b.String())
}

func writeCell(b *strings.Builder, s string) {
	b.WriteByte('"')
	b.WriteString(strings.ReplaceAll(s, `"`, `""`))
	b.WriteByte('"')
}

var androidEscaper = strings.NewReplacer("&", "&amp;", "'", `\'`)

// Android renders one <string> line per translated language, in registry order.
// Lines carry no language marker.
func Android(field v1.Field) []byte {
	var lines []string
	for _, code := range lang.Codes() {
		v := field.Translations[code]
		if v == "" {
			continue
		}
		lines = append(lines, `<string name="`+field.Key+`">`+androidEscaper.Replace(v)+`</string>`)
	}
	return []byte(strings.Join(lines, "\n"))
}

var iosEscaper = strings.NewReplacer(`"`, `\"`)

// IOS renders one .strings assignment per translated language, tagged with the
// language code in a trailing comment.
func IOS(field v1.Field) []byte {
	var lines []string
	key := iosEscaper.Replace(field.Key)
	for _, code := range lang.Codes() {
		v := field.Translations[code]
		if v == "" {
			continue
		}
		lines = append(lines, `"`+key+`" = "`+iosEscaper.Replace(v)+`"; // `+code)
	}
	return []byte(strings.Join(lines, "\n"))
}

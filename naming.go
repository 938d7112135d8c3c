package structdiff

import "github.com/viant/tagly/format/text"

// formatName derives a serialized key from a Go field name when no naming tag
// is present, using the configured case format
func (c *Codec) formatName(fieldName string) string {
	if c.caseFormat == "" {
		return fieldName
	}
	if fieldName == "ID" {
		switch c.caseFormat {
		case text.CaseFormatLower, text.CaseFormatLowerCamel, text.CaseFormatLowerUnderscore:
			return "id"
		}
	}
	src := text.DetectCaseFormat(fieldName)
	if !src.IsDefined() {
		src = text.CaseFormatUpperCamel
	}
	return src.Format(fieldName, c.caseFormat)
}

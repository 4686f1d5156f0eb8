package logger

import (
	"net/url"
	"strings"
)

// DefaultMaskValue replaces sensitive values in log output.
const DefaultMaskValue = "***"

// FilterConfig defines which field names are masked in log output.
type FilterConfig struct {
	// SensitiveFields are matched case-insensitively as substrings of the key.
	SensitiveFields []string
	MaskValue       string
}

// DefaultFilterConfig returns the field names masked by default.
func DefaultFilterConfig() *FilterConfig {
	return &FilterConfig{
		SensitiveFields: []string{
			"password", "passwd", "pwd",
			"secret", "token", "credential",
			"dsn", "connection_string", "connectionstring",
		},
		MaskValue: DefaultMaskValue,
	}
}

// SensitiveDataFilter masks values whose keys look sensitive.
type SensitiveDataFilter struct {
	config *FilterConfig
}

// NewSensitiveDataFilter creates a filter; nil selects DefaultFilterConfig.
func NewSensitiveDataFilter(config *FilterConfig) *SensitiveDataFilter {
	if config == nil {
		config = DefaultFilterConfig()
	}
	if config.MaskValue == "" {
		config.MaskValue = DefaultMaskValue
	}
	return &SensitiveDataFilter{config: config}
}

// FilterString masks value when key is sensitive. URLs keep their shape
// with only the password replaced.
func (f *SensitiveDataFilter) FilterString(key, value string) string {
	if !f.isSensitiveField(key) || value == "" {
		return value
	}
	if masked, ok := f.maskURL(value); ok {
		return masked
	}
	return f.config.MaskValue
}

// FilterValue masks value when key is sensitive and recurses into string maps.
func (f *SensitiveDataFilter) FilterValue(key string, value any) any {
	if f.isSensitiveField(key) {
		if s, ok := value.(string); ok {
			return f.FilterString(key, s)
		}
		return f.config.MaskValue
	}
	if m, ok := value.(map[string]any); ok {
		return f.FilterFields(m)
	}
	return value
}

// FilterFields returns a copy of fields with sensitive entries masked.
func (f *SensitiveDataFilter) FilterFields(fields map[string]any) map[string]any {
	if fields == nil {
		return nil
	}
	filtered := make(map[string]any, len(fields))
	for k, v := range fields {
		filtered[k] = f.FilterValue(k, v)
	}
	return filtered
}

func (f *SensitiveDataFilter) isSensitiveField(fieldName string) bool {
	lower := strings.ToLower(fieldName)
	for _, sensitive := range f.config.SensitiveFields {
		if strings.Contains(lower, strings.ToLower(sensitive)) {
			return true
		}
	}
	return false
}

func (f *SensitiveDataFilter) maskURL(value string) (string, bool) {
	if !strings.Contains(value, "://") {
		return "", false
	}
	parsed, err := url.Parse(value)
	if err != nil || parsed.User == nil {
		return "", false
	}
	if _, hasPassword := parsed.User.Password(); !hasPassword {
		return value, true
	}
	return f.buildMaskedURL(parsed), true
}

// buildMaskedURL writes the URL back by hand so the mask is not percent-encoded.
func (f *SensitiveDataFilter) buildMaskedURL(parsed *url.URL) string {
	var b strings.Builder

	b.WriteString(parsed.Scheme)
	b.WriteString("://")
	b.WriteString(parsed.User.Username())
	b.WriteByte(':')
	b.WriteString(f.config.MaskValue)
	b.WriteByte('@')
	b.WriteString(parsed.Host)

	if p := parsed.EscapedPath(); p != "" {
		b.WriteString(p)
	}
	if q := parsed.RawQuery; q != "" {
		b.WriteByte('?')
		b.WriteString(q)
	}
	if frag := parsed.Fragment; frag != "" {
		b.WriteByte('#')
		b.WriteString(frag)
	}
	return b.String()
}

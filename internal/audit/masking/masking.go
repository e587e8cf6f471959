// Package masking redacts personal data before it lands in audit metadata.
package masking

import "strings"

const maskToken = "***"

var sensitiveKeys = map[string]struct{}{
	"email":         {},
	"billing_email": {},
	"phone":         {},
}

// MaskEmail keeps the first character of the local part and the domain.
func MaskEmail(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}
	at := strings.LastIndex(trimmed, "@")
	if at <= 0 {
		return maskToken
	}
	return trimmed[:1] + maskToken + trimmed[at:]
}

// MaskPhone keeps the last two digits.
func MaskPhone(value string) string {
	trimmed := strings.TrimSpace(value)
	if len(trimmed) <= 2 {
		return maskToken
	}
	return maskToken + trimmed[len(trimmed)-2:]
}

// MaskJSON returns a copy of the input with personal fields masked.
func MaskJSON(input map[string]any) map[string]any {
	if len(input) == 0 {
		return map[string]any{}
	}

	masked := make(map[string]any, len(input))
	for key, value := range input {
		trimmedKey := strings.TrimSpace(key)
		if trimmedKey == "" {
			continue
		}
		masked[trimmedKey] = maskValue(trimmedKey, value)
	}
	return masked
}

func maskValue(key string, value any) any {
	switch cast := value.(type) {
	case string:
		if _, ok := sensitiveKeys[key]; !ok {
			return cast
		}
		if strings.Contains(key, "phone") {
			return MaskPhone(cast)
		}
		return MaskEmail(cast)
	case map[string]any:
		return MaskJSON(cast)
	case []any:
		out := make([]any, 0, len(cast))
		for _, item := range cast {
			out = append(out, maskValue(key, item))
		}
		return out
	default:
		return value
	}
}

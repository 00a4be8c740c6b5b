package logging

import (
	"regexp"
	"strings"
)

// RedactPattern is a custom redaction rule applied to string log values.
type RedactPattern struct {
	// Name identifies the pattern.
	Name string

	// Pattern is a regular expression matching the sensitive value.
	Pattern string

	// Replacement is substituted for each match.
	Replacement string
}

// Redactor scrubs sensitive values from log fields. Audit entries carry
// actor identifiers and raw policy payloads, and operators route engine
// logs to shared aggregation, so anything resembling a credential or a
// personal identifier is masked before it leaves the process.
type Redactor struct {
	patterns map[string]*redactPattern
}

type redactPattern struct {
	name        string
	regex       *regexp.Regexp
	replacement string
}

// Built-in pattern names.
const (
	PatternEmail       = "email"
	PatternBearerToken = "bearer_token"
	PatternAPIKey      = "api_key"
	PatternPassword    = "password"
	PatternPhone       = "phone"
)

// NewRedactor creates a Redactor with the built-in patterns plus any
// custom patterns. Custom patterns with invalid regexes are skipped.
func NewRedactor(custom []RedactPattern) *Redactor {
	r := &Redactor{patterns: make(map[string]*redactPattern)}
	r.addDefaultPatterns()

	for _, p := range custom {
		regex, err := regexp.Compile(p.Pattern)
		if err != nil {
			continue
		}
		r.patterns[p.Name] = &redactPattern{
			name:        p.Name,
			regex:       regex,
			replacement: p.Replacement,
		}
	}
	return r
}

func (r *Redactor) addDefaultPatterns() {
	defaults := map[string]struct {
		regex       string
		replacement string
	}{
		PatternEmail: {
			regex:       `\b[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}\b`,
			replacement: "***@***",
		},
		PatternBearerToken: {
			regex:       `Bearer\s+[a-zA-Z0-9\-._~+/]+=*`,
			replacement: "Bearer ***",
		},
		PatternAPIKey: {
			regex:       `(sk-[a-zA-Z0-9]+|api[-_]?key[-_:]\s*[a-zA-Z0-9]+)`,
			replacement: "***",
		},
		PatternPassword: {
			regex:       `(password|passwd|pwd)[:=]\s*[^\s]+`,
			replacement: "$1: ***",
		},
		PatternPhone: {
			regex:       `\b\+?\d[\d\s().-]{7,14}\d\b`,
			replacement: "***-***-****",
		},
	}

	for name, p := range defaults {
		r.patterns[name] = &redactPattern{
			name:        name,
			regex:       regexp.MustCompile(p.regex),
			replacement: p.replacement,
		}
	}
}

// RedactString redacts sensitive values from a string.
func (r *Redactor) RedactString(value string) string {
	if value == "" {
		return value
	}
	redacted := value
	for _, pattern := range r.patterns {
		redacted = pattern.regex.ReplaceAllString(redacted, pattern.replacement)
	}
	return redacted
}

// RedactArgs redacts sensitive values from variadic key-value log
// arguments. Values under sensitive key names are masked entirely;
// other string values go through pattern redaction.
func (r *Redactor) RedactArgs(args ...any) []any {
	if len(args) == 0 {
		return args
	}

	redacted := make([]any, len(args))
	copy(redacted, args)

	for i := 1; i < len(redacted); i += 2 {
		if key, ok := redacted[i-1].(string); ok && isSensitiveKey(key) {
			redacted[i] = maskValue(redacted[i])
			continue
		}
		if str, ok := redacted[i].(string); ok {
			redacted[i] = r.RedactString(str)
		}
	}
	return redacted
}

var sensitiveKeys = []string{
	"password", "passwd", "pwd",
	"secret", "token", "api_key", "apikey",
	"auth", "authorization",
	"private_key", "privatekey",
}

func isSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, s := range sensitiveKeys {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}

func maskValue(value any) any {
	if v, ok := value.(string); ok {
		if v == "" {
			return ""
		}
		if len(v) <= 4 {
			return "***"
		}
		return v[:4] + "***"
	}
	return "***"
}

// RedactActor masks an actor identifier for non-audit log lines. Email
// actors keep the first character and the domain; opaque ids keep a
// four-character prefix.
func RedactActor(actor string) string {
	if at := strings.Index(actor, "@"); at > 0 {
		return actor[:1] + "***@" + actor[at+1:]
	}
	if len(actor) <= 4 {
		return "***"
	}
	return actor[:4] + "***"
}

package structured

import (
	"regexp"
	"strings"
)

// Redacted replaces every secret value.
const Redacted = "[REDACTED]"

// secretKey matches key paths that name a secret.
var secretKey = regexp.MustCompile(`(?i)(passw(or)?d|passwd|pwd|secret|token|credential|auth|private[_\-. ]?key|access[_\-. ]?key|api[_\-. ]?key)`)

// secretValues match values shaped like secrets regardless of their key.
var secretValues = []*regexp.Regexp{
	regexp.MustCompile(`^[A-Za-z0-9]{20,}$`),
	regexp.MustCompile(`^sk-\S+`),
	regexp.MustCompile(`^[A-F0-9]{32,}$`),
}

// IsSecretKey reports whether a dotted key path names a secret.
func IsSecretKey(path string) bool {
	return secretKey.MatchString(path)
}

// IsSecretValue reports whether v looks like a credential.
func IsSecretValue(v string) bool {
	v = strings.TrimSpace(v)
	for _, re := range secretValues {
		if re.MatchString(v) {
			return true
		}
	}
	return false
}

// Redact returns v with secret scalars replaced by Redacted and the number
// of values replaced. Strings and numbers under a secret key path are
// redacted, as is any string shaped like a secret. Booleans and nulls are
// kept. Redact is idempotent.
func Redact(v Value) (Value, int) {
	n := 0
	out := redact(v, "", &n)
	return out, n
}

func redact(v Value, path string, n *int) Value {
	switch t := v.(type) {
	case *Object:
		obj := &Object{Fields: make([]Field, len(t.Fields))}
		for i, f := range t.Fields {
			obj.Fields[i] = Field{Key: f.Key, Value: redact(f.Value, join(path, f.Key), n)}
		}
		return obj
	case List:
		list := make(List, len(t))
		for i, e := range t {
			list[i] = redact(e, path, n)
		}
		return list
	case Scalar:
		if t.Text == Redacted || !sensitive(t, path) {
			return t
		}
		*n++
		return Scalar{Text: Redacted, Quoted: true}
	}
	return v
}

func sensitive(s Scalar, path string) bool {
	if s.Quoted {
		return IsSecretKey(path) || IsSecretValue(s.Text)
	}
	switch strings.ToLower(s.Text) {
	case "true", "false", "null", "~", "":
		return false
	}
	return IsSecretKey(path)
}

func join(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/finnews/finnews/textnorm"
)

// Tags is an article's normalized tag set. It is stored as one text column in the form
// ",featured,trending," so that membership is a plain LIKE '%,tag,%' on every dialect.
type Tags []string

// Value implements driver.Valuer.
func (t Tags) Value() (driver.Value, error) {
	n := textnorm.NormalizeTags(t)
	if len(n) == 0 {
		return "", nil
	}
	return "," + strings.Join(n, ",") + ",", nil
}

// Scan implements sql.Scanner.
func (t *Tags) Scan(src any) error {
	var raw string
	switch v := src.(type) {
	case nil:
		*t = Tags{}
		return nil
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("models: cannot scan %T into Tags", src)
	}
	parts := strings.Split(raw, ",")
	out := make(Tags, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	*t = out
	return nil
}

// GormDataType keeps the column as text across dialects.
func (Tags) GormDataType() string {
	return "text"
}

// MarshalJSON always emits an array, never null.
func (t Tags) MarshalJSON() ([]byte, error) {
	if t == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(t))
}

// Has reports whether the set contains tag (tag must already be normalized).
func (t Tags) Has(tag string) bool {
	for _, v := range t {
		if v == tag {
			return true
		}
	}
	return false
}

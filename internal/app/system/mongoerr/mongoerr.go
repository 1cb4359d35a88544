// Package mongoerr inspects errors returned by the Mongo driver.
package mongoerr

import (
	"errors"
	"regexp"
	"strings"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// IsDup reports whether err is a duplicate-key error.
func IsDup(err error) bool {
	if err == nil {
		return false
	}
	if wafflemongo.IsDup(err) {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "E11000") || strings.Contains(strings.ToLower(s), "duplicate key")
}

// dupKeyRe pulls the first key out of "dup key: { email: \"x\" }".
var dupKeyRe = regexp.MustCompile(`dup key: \{ ?"?([A-Za-z0-9_.]+)"?\s*:`)

// DupField returns the document field that caused a duplicate-key error.
// It prefers the keyValue document the server attaches to the write error
// and falls back to parsing the message. ok is false when err is not a
// duplicate-key error; field is "value" when the key cannot be determined.
func DupField(err error) (field string, ok bool) {
	if !IsDup(err) {
		return "", false
	}

	var writeErrs []mongo.WriteError
	var we mongo.WriteException
	var bwe mongo.BulkWriteException
	switch {
	case errors.As(err, &we):
		writeErrs = we.WriteErrors
	case errors.As(err, &bwe):
		for _, e := range bwe.WriteErrors {
			writeErrs = append(writeErrs, e.WriteError)
		}
	}
	for _, e := range writeErrs {
		if e.Code != 11000 {
			continue
		}
		if f := keyValueField(e.Raw); f != "" {
			return f, true
		}
		if m := dupKeyRe.FindStringSubmatch(e.Message); m != nil {
			return m[1], true
		}
	}

	if m := dupKeyRe.FindStringSubmatch(err.Error()); m != nil {
		return m[1], true
	}
	return "value", true
}

func keyValueField(raw bson.Raw) string {
	if len(raw) == 0 {
		return ""
	}
	kv, err := raw.LookupErr("keyValue")
	if err != nil {
		return ""
	}
	doc, ok := kv.DocumentOK()
	if !ok {
		return ""
	}
	elems, err := doc.Elements()
	if err != nil || len(elems) == 0 {
		return ""
	}
	return elems[0].Key()
}

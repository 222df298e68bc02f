package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
)

var errNotInteger = errors.New("not an integer")

// intField accepts a JSON number or a numeric string.
type intField int64

func (f *intField) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		b = []byte(strings.TrimSpace(s))
	}

	v, err := strconv.ParseInt(string(b), 10, 64)
	if err == nil {
		*f = intField(v)
		return nil
	}

	// 10.0 is an integer too
	fv, ferr := strconv.ParseFloat(string(b), 64)
	if ferr != nil || fv != float64(int64(fv)) {
		return errNotInteger
	}
	*f = intField(int64(fv))
	return nil
}

func (f *intField) ptr() *int64 {
	if f == nil {
		return nil
	}
	v := int64(*f)
	return &v
}

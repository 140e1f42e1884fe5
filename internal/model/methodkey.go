package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedMethodKey is returned when a method key has no signature part.
var ErrMalformedMethodKey = errors.New("malformed method key: missing '('")

// MethodKey joins a method name and its signature into the "name(signature)"
// form used to identify a method inside a class.
func MethodKey(name, signature string) string {
	return name + signature
}

// SplitMethodKey splits a "name(signature)" key at the first '('. The
// signature keeps its leading parenthesis.
func SplitMethodKey(key string) (name, signature string, err error) {
	idx := strings.IndexByte(key, '(')
	if idx < 0 {
		return "", "", fmt.Errorf("%w: %q", ErrMalformedMethodKey, key)
	}
	return key[:idx], key[idx:], nil
}

package models

import (
	"regexp"
	"strings"

	"github.com/zuno-wallet/zuno-go/internal/common"
)

var handleTagPattern = regexp.MustCompile(`^[a-z0-9_]+$`)

// NormalizeHandleTag strips a single leading '@' and validates the result:
// 3-50 characters, lowercase alphanumerics and underscores only. Validation
// happens client-side before any network call so a malformed tag never costs
// a round trip.
func NormalizeHandleTag(tag string) (string, error) {
	tag = strings.TrimPrefix(tag, "@")
	if len(tag) < 3 || len(tag) > 50 {
		return "", common.ErrInvalidHandleTag
	}
	if !handleTagPattern.MatchString(tag) {
		return "", common.ErrInvalidHandleTag
	}
	return tag, nil
}

// IsValidHandleTag reports whether tag normalizes successfully.
func IsValidHandleTag(tag string) bool {
	_, err := NormalizeHandleTag(tag)
	return err == nil
}

var amountPattern = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?$`)

// ValidateAmount checks that s is a plain decimal string (no sign, no
// exponent) greater than zero.
func ValidateAmount(s string) error {
	if !amountPattern.MatchString(s) {
		return common.ErrInvalidAmount
	}
	if strings.Trim(s, "0.") == "" {
		return common.ErrInvalidAmount
	}
	return nil
}

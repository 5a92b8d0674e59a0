package utils

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/vnkhanh/survey-platform/api"
)

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// NormalizeColor trims c and checks it is a #rgb or #rrggbb hex value.
// An empty string means "unset" and is accepted.
func NormalizeColor(c string) (string, error) {
	c = strings.TrimSpace(c)
	if c == "" {
		return "", nil
	}
	if !hexColor.MatchString(c) {
		return "", fmt.Errorf("%w: %q is not a hex color", ErrValidation, c)
	}
	return c, nil
}

// Theme fills unset colors from api.DefaultTheme.
func Theme(c1, c2, c3 string) [3]string {
	out := api.DefaultTheme
	for i, c := range []string{c1, c2, c3} {
		if c != "" {
			out[i] = c
		}
	}
	return out
}

// MergeColor applies an optional patch value over base after validating it.
func MergeColor(base string, patch *string) (string, error) {
	if patch == nil {
		return base, nil
	}
	return NormalizeColor(*patch)
}

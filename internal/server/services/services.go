// Package services contains server-side business logic: account registration
// and activation (AccountService) and token sessions (SessionService).
package services

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophaccounts/internal/common"
)

// tokenBytes is the entropy of activation tokens and refresh markers.
const tokenBytes = 32

// NormalizeEmail trims surrounding whitespace and lower-cases the address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func internalErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", common.ErrorInternal, op, err)
}

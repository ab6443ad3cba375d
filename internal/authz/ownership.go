package authz

import (
	"reflect"

	"github.com/terraconstructs/sandaran/internal/auth"
)

// Owned is implemented by resources that record the principal that created them.
type Owned interface {
	OwnerID() string
}

// CheckOwnership verifies that p created res. ADMIN bypasses the check.
// A nil res reports NOT_FOUND before ownership is compared.
func CheckOwnership(p *auth.Principal, res Owned) error {
	if p.IsAdmin() {
		return nil
	}
	if isNil(res) {
		return auth.ErrNotFound
	}
	if p == nil || res.OwnerID() != p.ID {
		return auth.ErrNotOwner
	}
	return nil
}

func isNil(res Owned) bool {
	if res == nil {
		return true
	}
	v := reflect.ValueOf(res)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/terraconstructs/sandaran/internal/auth"
)

type report struct {
	createdBy string
}

func (r *report) OwnerID() string { return r.createdBy }

func TestCheckOwnership(t *testing.T) {
	owned := &report{createdBy: "u1"}
	var missing *report

	tests := []struct {
		name      string
		principal *auth.Principal
		resource  Owned
		wantErr   error
	}{
		{name: "creator", principal: principal("u1", auth.RoleUser), resource: owned},
		{name: "other user", principal: principal("u2", auth.RoleUser), resource: owned, wantErr: auth.ErrNotOwner},
		{name: "ceo is not an owner", principal: principal("ceo", auth.RoleCEO), resource: owned, wantErr: auth.ErrNotOwner},
		{name: "admin override", principal: principal("admin", auth.RoleAdmin), resource: owned},
		{name: "typed nil resource", principal: principal("u2", auth.RoleUser), resource: missing, wantErr: auth.ErrNotFound},
		{name: "nil interface", principal: principal("u1", auth.RoleUser), resource: nil, wantErr: auth.ErrNotFound},
		{name: "not found wins over not owner", principal: principal("u2", auth.RoleUser), resource: missing, wantErr: auth.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckOwnership(tt.principal, tt.resource)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

package authz

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terraconstructs/sandaran/internal/auth"
)

// fakeMembers is an in-memory MembershipFinder keyed by user and project.
type fakeMembers struct {
	roles map[[2]string]auth.ProjectRole
	err   error
	calls int
}

func newFakeMembers() *fakeMembers {
	return &fakeMembers{roles: make(map[[2]string]auth.ProjectRole)}
}

func (f *fakeMembers) add(userID, projectID string, role auth.ProjectRole) *fakeMembers {
	f.roles[[2]string{userID, projectID}] = role
	return f
}

func (f *fakeMembers) FindProjectRole(_ context.Context, userID, projectID string) (auth.ProjectRole, bool, error) {
	f.calls++
	if f.err != nil {
		return "", false, f.err
	}
	role, ok := f.roles[[2]string{userID, projectID}]
	return role, ok, nil
}

func principal(id string, role auth.GlobalRole) *auth.Principal {
	return &auth.Principal{ID: id, Active: true, Role: role}
}

func TestGlobalRoleGate_Order(t *testing.T) {
	tests := []struct {
		name      string
		principal *auth.Principal
		wantKind  auth.Kind
	}{
		{name: "no session", principal: nil, wantKind: auth.KindUnauthenticated},
		{name: "inactive checked before role", principal: &auth.Principal{ID: "u", Role: auth.RoleNone}, wantKind: auth.KindAccountInactive},
		{name: "inactive admin", principal: &auth.Principal{ID: "u", Role: auth.RoleAdmin}, wantKind: auth.KindAccountInactive},
		{name: "role none", principal: principal("u", auth.RoleNone), wantKind: auth.KindRoleNotAssigned},
		{name: "unknown role", principal: principal("u", auth.GlobalRole("SUPERVISOR")), wantKind: auth.KindRoleInvalid},
		{name: "user", principal: principal("u", auth.RoleUser)},
		{name: "admin", principal: principal("u", auth.RoleAdmin)},
		{name: "ceo", principal: principal("u", auth.RoleCEO)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := GlobalRoleGate(context.Background(), Decision{Principal: tt.principal}, Operation{}, Input{})
			if tt.wantKind == "" {
				require.NoError(t, err)
				assert.Same(t, tt.principal, d.Principal)
				return
			}
			kind, ok := auth.KindOf(err)
			require.True(t, ok, "expected tagged error, got %v", err)
			assert.Equal(t, tt.wantKind, kind)
		})
	}
}

func TestAdminGate(t *testing.T) {
	tests := []struct {
		name      string
		principal *auth.Principal
		wantKind  auth.Kind
	}{
		{name: "no session", wantKind: auth.KindUnauthenticated},
		{name: "inactive", principal: &auth.Principal{ID: "u", Role: auth.RoleAdmin}, wantKind: auth.KindAccountInactive},
		{name: "user", principal: principal("u", auth.RoleUser), wantKind: auth.KindAdminRequired},
		{name: "none", principal: principal("u", auth.RoleNone), wantKind: auth.KindAdminRequired},
		{name: "unknown", principal: principal("u", auth.GlobalRole("ROOT")), wantKind: auth.KindAdminRequired},
		{name: "admin", principal: principal("u", auth.RoleAdmin)},
		{name: "ceo", principal: principal("u", auth.RoleCEO)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := AdminGate(context.Background(), Decision{Principal: tt.principal}, Operation{}, Input{})
			if tt.wantKind == "" {
				require.NoError(t, err)
				return
			}
			kind, _ := auth.KindOf(err)
			assert.Equal(t, tt.wantKind, kind)
		})
	}
}

func TestMembershipGate(t *testing.T) {
	members := newFakeMembers().
		add("mandor", "p1", auth.ProjectRoleMandor).
		add("ceo", "p1", auth.ProjectRoleFinance)
	gate := MembershipGate(members)
	ctx := context.Background()

	t.Run("missing project id", func(t *testing.T) {
		_, err := gate(ctx, Decision{Principal: principal("mandor", auth.RoleUser)}, Operation{}, Input{})
		assert.ErrorIs(t, err, auth.ErrProjectRequired)
	})

	t.Run("user with membership", func(t *testing.T) {
		d, err := gate(ctx, Decision{Principal: principal("mandor", auth.RoleUser)}, Operation{}, Input{ProjectID: "p1"})
		require.NoError(t, err)
		assert.Equal(t, "p1", d.ProjectID)
		assert.Equal(t, auth.ProjectRoleMandor, d.ProjectRole)
		assert.False(t, d.Bypass)
	})

	t.Run("user without membership", func(t *testing.T) {
		_, err := gate(ctx, Decision{Principal: principal("mandor", auth.RoleUser)}, Operation{}, Input{ProjectID: "p2"})
		assert.ErrorIs(t, err, auth.ErrNotAMember)
	})

	t.Run("admin bypass", func(t *testing.T) {
		d, err := gate(ctx, Decision{Principal: principal("admin", auth.RoleAdmin)}, Operation{}, Input{ProjectID: "p1"})
		require.NoError(t, err)
		assert.True(t, d.Bypass)
		assert.False(t, d.HasProjectRole())
	})

	t.Run("ceo with membership keeps role", func(t *testing.T) {
		d, err := gate(ctx, Decision{Principal: principal("ceo", auth.RoleCEO)}, Operation{}, Input{ProjectID: "p1"})
		require.NoError(t, err)
		assert.True(t, d.Bypass)
		assert.Equal(t, auth.ProjectRoleFinance, d.ProjectRole)
	})

	t.Run("lookup failure is not tagged", func(t *testing.T) {
		broken := newFakeMembers()
		broken.err = errors.New("connection refused")
		_, err := MembershipGate(broken)(ctx, Decision{Principal: principal("u", auth.RoleUser)}, Operation{}, Input{ProjectID: "p1"})
		require.Error(t, err)
		_, tagged := auth.KindOf(err)
		assert.False(t, tagged)
	})
}

func TestProjectRoleGate(t *testing.T) {
	mutation := Operation{Class: Mutation, ProjectScoped: true, AllowedRoles: []auth.ProjectRole{auth.ProjectRoleMandor, auth.ProjectRoleArchitect}}
	query := Operation{Class: Query, ProjectScoped: true, AllowedRoles: []auth.ProjectRole{auth.ProjectRoleFinance}}

	tests := []struct {
		name     string
		decision Decision
		op       Operation
		wantErr  *auth.Error
	}{
		{
			name:     "member role in allow-list",
			decision: Decision{Principal: principal("u", auth.RoleUser), ProjectRole: auth.ProjectRoleMandor},
			op:       mutation,
		},
		{
			name:     "member role outside allow-list",
			decision: Decision{Principal: principal("u", auth.RoleUser), ProjectRole: auth.ProjectRoleFinance},
			op:       mutation,
			wantErr:  auth.RoleNotPermitted(mutation.AllowedRoles),
		},
		{
			name:     "admin ignores allow-list",
			decision: Decision{Principal: principal("a", auth.RoleAdmin), Bypass: true},
			op:       Operation{Class: Mutation, AllowedRoles: []auth.ProjectRole{auth.ProjectRoleFinance}},
		},
		{
			name:     "admin with non matching membership",
			decision: Decision{Principal: principal("a", auth.RoleAdmin), ProjectRole: auth.ProjectRoleMandor, Bypass: true},
			op:       query,
		},
		{
			name:     "ceo query without membership",
			decision: Decision{Principal: principal("c", auth.RoleCEO), Bypass: true},
			op:       query,
		},
		{
			name:     "ceo mutation is read only",
			decision: Decision{Principal: principal("c", auth.RoleCEO), Bypass: true},
			op:       mutation,
			wantErr:  auth.ErrCEOReadOnly,
		},
		{
			name:     "ceo mutation read only even with permitted role",
			decision: Decision{Principal: principal("c", auth.RoleCEO), ProjectRole: auth.ProjectRoleMandor, Bypass: true},
			op:       mutation,
			wantErr:  auth.ErrCEOReadOnly,
		},
		{
			name:     "ceo mutation with opt in",
			decision: Decision{Principal: principal("c", auth.RoleCEO), Bypass: true},
			op:       Operation{Class: Mutation, AllowedRoles: mutation.AllowedRoles, AllowCEO: true},
		},
		{
			name:     "ceo membership outside allow-list",
			decision: Decision{Principal: principal("c", auth.RoleCEO), ProjectRole: auth.ProjectRoleMandor, Bypass: true},
			op:       query,
			wantErr:  auth.RoleNotPermitted(query.AllowedRoles),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ProjectRoleGate(context.Background(), tt.decision, tt.op, Input{})
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			var got *auth.Error
			require.ErrorAs(t, err, &got)
			assert.Equal(t, tt.wantErr.Kind, got.Kind)
			assert.Equal(t, tt.wantErr.Message, got.Message)
		})
	}
}

func TestChain_StopsAtFirstFailure(t *testing.T) {
	var ran []string
	step := func(name string, err error) Gate {
		return func(_ context.Context, d Decision, _ Operation, _ Input) (Decision, error) {
			ran = append(ran, name)
			return d, err
		}
	}

	chain := Chain{step("first", nil), step("second", auth.ErrNotAMember), step("third", nil)}
	d, err := chain.Run(context.Background(), Decision{Principal: principal("u", auth.RoleUser)}, Operation{}, Input{})

	assert.ErrorIs(t, err, auth.ErrNotAMember)
	assert.Nil(t, d.Principal, "a failed chain must not leak the partial decision")
	assert.Equal(t, []string{"first", "second"}, ran)
}

package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/types"
)

func TestNormalizeAdminCode(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "987A", want: "987A"},
		{in: "987z", want: "987Z"},
		{in: " 987b ", want: "987B"},
		{in: "1234", wantErr: true},
		{in: "987", wantErr: true},
		{in: "987AB", wantErr: true},
		{in: "9871", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tc := range cases {
		got, err := NormalizeAdminCode(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("NormalizeAdminCode(%q): expected error, got %q", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Fatalf("NormalizeAdminCode(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("NormalizeAdminCode(%q): want=%q got=%q", tc.in, tc.want, got)
		}
	}
}

func TestUserListRequiresStaff(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	student := env.seedUser(t, "student1", types.RoleStudent)
	_, err := env.users.List(ctx, student)
	assertAPIError(t, err, http.StatusForbidden, "forbidden")

	admin := env.seedUser(t, "admin1", types.RoleAdmin)
	list, err := env.users.List(ctx, admin)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("user count: want=2 got=%d", len(list))
	}
}

func TestPromotionRequiresAdminCode(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	admin := env.seedUser(t, "admin1", types.RoleAdmin)
	student := env.seedUser(t, "student1", types.RoleStudent)

	_, err := env.users.Update(ctx, admin, student.UserID, UpdateUserRequest{
		Role: strptr("admin"),
	})
	assertAPIError(t, err, http.StatusBadRequest, "invalid_admin_code")

	updated, err := env.users.Update(ctx, admin, student.UserID, UpdateUserRequest{
		Role:            strptr("admin"),
		AdminSecretCode: strptr("987q"),
	})
	if err != nil {
		t.Fatalf("Update promote: %v", err)
	}
	if updated.Role != string(types.RoleAdmin) || !updated.IsStaff {
		t.Fatalf("promotion result: role=%q isStaff=%v", updated.Role, updated.IsStaff)
	}
	if updated.AdminSecretCode == nil || *updated.AdminSecretCode != "987Q" {
		t.Fatalf("promotion code: got %v", updated.AdminSecretCode)
	}
}

func TestDemotionClearsAdminCode(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	admin := env.seedUser(t, "admin1", types.RoleAdmin)
	other := env.seedUser(t, "admin2", types.RoleAdmin)

	otherProfile, err := env.profileRepo.GetByUserID(ctx, nil, other.UserID)
	if err != nil || otherProfile == nil || otherProfile.AdminSecretCode == nil {
		t.Fatalf("load profile for admin2: %v", err)
	}
	freedCode := *otherProfile.AdminSecretCode

	updated, err := env.users.Update(ctx, admin, other.UserID, UpdateUserRequest{
		Role: strptr("teacher"),
	})
	if err != nil {
		t.Fatalf("Update demote: %v", err)
	}
	if updated.Role != string(types.RoleTeacher) {
		t.Fatalf("demotion role: want=teacher got=%q", updated.Role)
	}
	if updated.IsStaff {
		t.Fatalf("demoted accounts must not stay staff")
	}
	if updated.AdminSecretCode != nil {
		t.Fatalf("demotion must clear the admin code, got %q", *updated.AdminSecretCode)
	}

	// The freed code is immediately reusable.
	student := env.seedUser(t, "student1", types.RoleStudent)
	if _, err := env.users.Update(ctx, admin, student.UserID, UpdateUserRequest{
		Role:            strptr("admin"),
		AdminSecretCode: &freedCode,
	}); err != nil {
		t.Fatalf("reuse freed code %q: %v", freedCode, err)
	}
}

func TestAdminCodeOnNonAdminRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	admin := env.seedUser(t, "admin1", types.RoleAdmin)
	teacher := env.seedUser(t, "teacher1", types.RoleTeacher)

	_, err := env.users.Update(ctx, admin, teacher.UserID, UpdateUserRequest{
		AdminSecretCode: strptr("987K"),
	})
	assertAPIError(t, err, http.StatusBadRequest, "invalid_admin_code")
}

func TestBulkDeleteUsersRejectsSelf(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	admin := env.seedUser(t, "admin1", types.RoleAdmin)
	student := env.seedUser(t, "student1", types.RoleStudent)

	_, err := env.users.BulkDelete(ctx, admin, []uuid.UUID{student.UserID, admin.UserID})
	assertAPIError(t, err, http.StatusBadRequest, "self_delete")

	deleted, err := env.users.BulkDelete(ctx, admin, []uuid.UUID{student.UserID})
	if err != nil {
		t.Fatalf("BulkDelete: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("deleted count: want=1 got=%d", deleted)
	}
	// Profile rows go with the user.
	profile, err := env.profileRepo.GetByUserID(ctx, nil, student.UserID)
	if err != nil {
		t.Fatalf("GetByUserID: %v", err)
	}
	if profile != nil {
		t.Fatalf("role profile survived user deletion")
	}
}

func TestBulkDeleteUsersAllOrNothing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	admin := env.seedUser(t, "admin1", types.RoleAdmin)
	student := env.seedUser(t, "student1", types.RoleStudent)

	_, err := env.users.BulkDelete(ctx, admin, []uuid.UUID{student.UserID, uuid.New()})
	assertAPIError(t, err, http.StatusNotFound, "user_not_found")

	// The existing user must still be there.
	got, err := env.users.Get(ctx, admin, student.UserID)
	if err != nil {
		t.Fatalf("Get after failed bulk delete: %v", err)
	}
	if got.ID != student.UserID {
		t.Fatalf("student vanished after failed bulk delete")
	}
}

func TestStaffCreatesUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	admin := env.seedUser(t, "admin1", types.RoleAdmin)
	student := env.seedUser(t, "student1", types.RoleStudent)

	_, err := env.users.Create(ctx, student, CreateUserRequest{Username: "newbie", Password: "s3cret-pass"})
	assertAPIError(t, err, http.StatusForbidden, "forbidden")

	created, err := env.users.Create(ctx, admin, CreateUserRequest{
		Username:  "newteacher",
		Email:     "newteacher@example.com",
		FirstName: "New",
		LastName:  "Teacher",
		Password:  "s3cret-pass",
		Role:      "teacher",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Role != "teacher" || created.IsStaff {
		t.Fatalf("created user: role=%q isStaff=%v", created.Role, created.IsStaff)
	}

	// The account works like any self-registered one.
	if _, err := env.auth.Login(ctx, LoginRequest{Username: "newteacher", Password: "s3cret-pass"}); err != nil {
		t.Fatalf("Login as created user: %v", err)
	}

	_, err = env.users.Create(ctx, admin, CreateUserRequest{Username: "newteacher", Password: "another-pass"})
	assertAPIError(t, err, http.StatusConflict, "username_taken")
}

func TestStaffCreatesUserWithoutPasswordAuth(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	admin := env.seedUser(t, "admin1", types.RoleAdmin)
	disabled := false
	created, err := env.users.Create(ctx, admin, CreateUserRequest{
		Username:            "ssouser",
		PasswordAuthEnabled: &disabled,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// No password is stored, so no password ever matches.
	row, err := env.userRepo.GetByID(ctx, nil, created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if row.PasswordHash != "" {
		t.Fatalf("password hash set on a password-less account")
	}
	_, err = env.auth.Login(ctx, LoginRequest{Username: "ssouser", Password: ""})
	assertAPIError(t, err, http.StatusBadRequest, "missing_credentials")
	_, err = env.auth.Login(ctx, LoginRequest{Username: "ssouser", Password: "anything"})
	assertAPIError(t, err, http.StatusForbidden, "invalid_credentials")

	// With password auth enabled the password is required.
	_, err = env.users.Create(ctx, admin, CreateUserRequest{Username: "nopass"})
	assertAPIError(t, err, http.StatusBadRequest, "missing_password")
}

func TestUserDeleteSingle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	admin := env.seedUser(t, "admin1", types.RoleAdmin)
	student := env.seedUser(t, "student1", types.RoleStudent)

	err := env.users.Delete(ctx, admin, admin.UserID)
	assertAPIError(t, err, http.StatusBadRequest, "self_delete")

	err = env.users.Delete(ctx, admin, uuid.New())
	assertAPIError(t, err, http.StatusNotFound, "user_not_found")

	if err := env.users.Delete(ctx, admin, student.UserID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	_, err = env.users.Get(ctx, admin, student.UserID)
	assertAPIError(t, err, http.StatusNotFound, "user_not_found")
	profile, err := env.profileRepo.GetByUserID(ctx, nil, student.UserID)
	if err != nil {
		t.Fatalf("GetByUserID: %v", err)
	}
	if profile != nil {
		t.Fatalf("role profile survived user deletion")
	}
}

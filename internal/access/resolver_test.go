package access_test

import (
	"testing"

	"ArborCRM/internal/access"
	"ArborCRM/internal/constants"
	"ArborCRM/internal/models"
)

func admin() *models.User {
	return &models.User{ID: 1, Role: constants.ROLE_SUPER_ADMIN}
}

func employee() *models.User {
	return &models.User{ID: 2, Role: constants.ROLE_EMPLOYEE}
}

func technician() *models.User {
	return &models.User{ID: 3, Role: constants.ROLE_TECHNICIAN}
}

// ── ParseRole ──────────────────────────────────────────────────────────────

func TestParseRole_ValidValues(t *testing.T) {
	valid := []string{"super_admin", "employee", "technician"}
	for _, s := range valid {
		got, err := access.ParseRole(s)
		if err != nil {
			t.Errorf("ParseRole(%q) returned unexpected error: %v", s, err)
		}
		if string(got) != s {
			t.Errorf("ParseRole(%q) = %q, want %q", s, got, s)
		}
	}
}

func TestParseRole_InvalidValue(t *testing.T) {
	for _, s := range []string{"admin", "guest", "SUPER_ADMIN", ""} {
		if _, err := access.ParseRole(s); err == nil {
			t.Errorf("ParseRole(%q) expected error, got nil", s)
		}
	}
}

// ── ViewFor ────────────────────────────────────────────────────────────────

func TestViewFor(t *testing.T) {
	if got := access.ViewFor(access.RoleSuperAdmin); got != access.ViewAdminDashboard {
		t.Errorf("ViewFor(super_admin) = %q, want admin variant", got)
	}
	for _, r := range []access.Role{access.RoleEmployee, access.RoleTechnician} {
		if got := access.ViewFor(r); got != access.ViewTechDashboard {
			t.Errorf("ViewFor(%s) = %q, want tech variant", r, got)
		}
	}
}

// ── Resolve: аноним ───────────────────────────────────────────────────────

func TestResolve_AnonymousProtectedPath(t *testing.T) {
	for _, path := range []string{"/dashboard", "/users", "/jobs", "/", "/whatever"} {
		d, err := access.Resolve(path, nil)
		if err != nil {
			t.Fatalf("Resolve(%q, nil) returned error: %v", path, err)
		}
		if !d.Redirect || d.RedirectTo != "/login" {
			t.Errorf("Resolve(%q, nil) = %+v, want redirect to /login", path, d)
		}
	}
}

func TestResolve_AnonymousPublicPath(t *testing.T) {
	for _, path := range []string{"/login", "/quote"} {
		d, err := access.Resolve(path, nil)
		if err != nil {
			t.Fatalf("Resolve(%q, nil) returned error: %v", path, err)
		}
		if d.Redirect {
			t.Errorf("Resolve(%q, nil) = %+v, want render", path, d)
		}
		if d.Path != path {
			t.Errorf("Resolve(%q, nil).Path = %q", path, d.Path)
		}
	}
}

// ── Resolve: роли ─────────────────────────────────────────────────────────

func TestResolve_EmployeeOnAdminPath(t *testing.T) {
	d, err := access.Resolve("/users", employee())
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	// Тихий даунгрейд: редирект на дашборд, не страница ошибки
	if !d.Redirect || d.RedirectTo != "/dashboard" {
		t.Errorf("Resolve(/users, employee) = %+v, want redirect to /dashboard", d)
	}
	if d.Notice == "" {
		t.Error("при отказе в доступе ожидается пояснение")
	}
}

func TestResolve_AdminOnAdminPaths(t *testing.T) {
	for path := range constants.AdminOnlyPaths {
		d, err := access.Resolve(path, admin())
		if err != nil {
			t.Fatalf("Resolve(%q, admin) returned error: %v", path, err)
		}
		if d.Redirect {
			t.Errorf("Resolve(%q, admin) = %+v, want render", path, d)
		}
		if d.View != access.ViewAdminDashboard {
			t.Errorf("Resolve(%q, admin).View = %q", path, d.View)
		}
	}
}

func TestResolve_DashboardPolymorphic(t *testing.T) {
	cases := []struct {
		user *models.User
		want access.DashboardView
	}{
		{admin(), access.ViewAdminDashboard},
		{employee(), access.ViewTechDashboard},
		{technician(), access.ViewTechDashboard},
	}
	for _, c := range cases {
		d, err := access.Resolve("/dashboard", c.user)
		if err != nil {
			t.Fatalf("Resolve(/dashboard, %s) returned error: %v", c.user.Role, err)
		}
		if d.Redirect || d.View != c.want {
			t.Errorf("Resolve(/dashboard, %s) = %+v, want view %q", c.user.Role, d, c.want)
		}
	}
}

func TestResolve_TechnicianOnSharedPaths(t *testing.T) {
	for path := range constants.SharedProtectedPaths {
		d, err := access.Resolve(path, technician())
		if err != nil {
			t.Fatalf("Resolve(%q, technician) returned error: %v", path, err)
		}
		if d.Redirect {
			t.Errorf("Resolve(%q, technician) = %+v, want render", path, d)
		}
	}
}

// Вложенные пути наследуют правило своего раздела.
func TestResolve_NestedPathsInheritSectionRule(t *testing.T) {
	d, err := access.Resolve("/jobs/5/expenses", technician())
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if d.Redirect || d.Path != "/jobs/5/expenses" {
		t.Errorf("Resolve(/jobs/5/expenses, technician) = %+v, want render", d)
	}

	d, err = access.Resolve("/leads/3", technician())
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if !d.Redirect || d.RedirectTo != "/dashboard" {
		t.Errorf("Resolve(/leads/3, technician) = %+v, want redirect", d)
	}

	d, err = access.Resolve("/leads/3", admin())
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if d.Redirect {
		t.Errorf("Resolve(/leads/3, admin) = %+v, want render", d)
	}
}

// ── Resolve: корень и catch-all ───────────────────────────────────────────

func TestResolve_RootAndUnknownPaths(t *testing.T) {
	for _, path := range []string{"/", "/no-such-page", "/archive/2024"} {
		d, err := access.Resolve(path, employee())
		if err != nil {
			t.Fatalf("Resolve(%q, employee) returned error: %v", path, err)
		}
		// Ровно один редирект, и он ведет на детерминированный путь -
		// зациклиться резолв не может
		if !d.Redirect || d.RedirectTo != "/dashboard" {
			t.Errorf("Resolve(%q, employee) = %+v, want redirect to /dashboard", path, d)
		}
	}
}

func TestResolve_PublicPathForAuthenticated(t *testing.T) {
	// Залогиненный пользователь на /quote видит /quote
	d, err := access.Resolve("/quote", admin())
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if d.Redirect || d.Path != "/quote" {
		t.Errorf("Resolve(/quote, admin) = %+v, want render /quote", d)
	}
}

func TestResolve_UnknownRole(t *testing.T) {
	_, err := access.Resolve("/dashboard", &models.User{ID: 9, Role: "intruder"})
	if err == nil {
		t.Fatal("ожидали ошибку для неизвестной роли")
	}
}

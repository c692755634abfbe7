// Package access решает, что показать пользователю по запрошенному
// пути: отрисовать экран или перенаправить. Решение принимается за
// один шаг, без цепочек редиректов — любой вход сводится максимум к
// одному перенаправлению.
package access

import (
	"fmt"
	"strings"

	"ArborCRM/internal/constants"
	"ArborCRM/internal/models"
)

// Role - закрытый набор ролей. Любая строка извне проходит через
// ParseRole; неизвестная роль — ошибка, а не «гость по умолчанию».
type Role string

const (
	RoleSuperAdmin Role = constants.ROLE_SUPER_ADMIN
	RoleEmployee   Role = constants.ROLE_EMPLOYEE
	RoleTechnician Role = constants.ROLE_TECHNICIAN
)

// ParseRole превращает строку роли из бэкенда в Role.
func ParseRole(raw string) (Role, error) {
	switch raw {
	case constants.ROLE_SUPER_ADMIN:
		return RoleSuperAdmin, nil
	case constants.ROLE_EMPLOYEE:
		return RoleEmployee, nil
	case constants.ROLE_TECHNICIAN:
		return RoleTechnician, nil
	}
	return "", fmt.Errorf("неизвестная роль: %q", raw)
}

// IsAdmin сообщает, видит ли роль административные экраны.
func (r Role) IsAdmin() bool {
	return r == RoleSuperAdmin
}

// DashboardView - какой вариант дашборда показывается роли.
type DashboardView string

const (
	ViewAdminDashboard DashboardView = "admin_dashboard" // Полная картина: лиды, счета, аналитика
	ViewTechDashboard  DashboardView = "tech_dashboard"  // Только свои работы и начисления
)

// ViewFor возвращает вариант дашборда для роли. Вариантов ровно два:
// сотрудник офиса без прав админа видит тот же урезанный дашборд,
// что и техник.
func ViewFor(role Role) DashboardView {
	if role.IsAdmin() {
		return ViewAdminDashboard
	}
	return ViewTechDashboard
}

// Decision - итог резолва: либо редирект, либо отрисовка.
type Decision struct {
	Redirect   bool          `json:"redirect"`
	RedirectTo string        `json:"redirect_to,omitempty"`
	Notice     string        `json:"notice,omitempty"` // Сообщение при отказе в доступе
	Path       string        `json:"path,omitempty"`
	View       DashboardView `json:"view,omitempty"`
}

func redirect(to string) Decision {
	return Decision{Redirect: true, RedirectTo: to}
}

func render(path string, view DashboardView) Decision {
	return Decision{Path: path, View: view}
}

// basePath возвращает первый сегмент пути: "/jobs/5/expenses" -> "/jobs".
func basePath(path string) string {
	trimmed := strings.TrimPrefix(path, "/")
	if i := strings.IndexByte(trimmed, '/'); i >= 0 {
		trimmed = trimmed[:i]
	}
	return "/" + trimmed
}

// Resolve принимает запрошенный путь и пользователя (nil - аноним)
// и возвращает решение. Функция тотальна: любой путь и любая роль
// дают ровно одно решение, «неопределенного» исхода нет.
func Resolve(path string, user *models.User) (Decision, error) {
	// Публичные пути открыты всем, в том числе аутентифицированным:
	// залогиненный пользователь на /quote видит /quote, а не дашборд.
	if constants.PublicPaths[path] {
		return render(path, ""), nil
	}

	if user == nil {
		return redirect(constants.PATH_LOGIN), nil
	}

	role, err := ParseRole(user.Role)
	if err != nil {
		return Decision{}, err
	}

	// Вложенные пути (/jobs/5, /leads/3/notes) наследуют правило
	// своего раздела: таблица маршрутов хранит только первый сегмент.
	section := basePath(path)

	// Корень и любой неизвестный путь сводятся к одному и тому же:
	// аноним ушел на логин выше, аутентифицированный идет на дашборд.
	// Правило корня детерминировано, поэтому второго шага резолва
	// (и возможности зациклиться) нет.
	known := constants.AdminOnlyPaths[section] || constants.SharedProtectedPaths[section]
	if !known {
		return redirect(constants.PATH_DASHBOARD), nil
	}

	if constants.AdminOnlyPaths[section] && !role.IsAdmin() {
		d := redirect(constants.PATH_DASHBOARD)
		d.Notice = constants.AccessDeniedMessage
		return d, nil
	}

	return render(path, ViewFor(role)), nil
}

// internal/authz/roles.go
package authz

// --- РОЛЕВАЯ МОДЕЛЬ ---
//
// Вместо нескольких параллельных матриц — один ранговый порядок плюс
// небольшой набор явных исключений (само-редактирование, само-увольнение,
// неприкосновенность высшей роли).

type Role string

const (
	RoleSuperAdmin Role = "SUPER_ADMIN"
	RoleOrgOwner   Role = "ORG_OWNER"
	RoleOrgAdmin   Role = "ORG_ADMIN"
	RoleHRAdmin    Role = "HR_ADMIN"
	RoleManager    Role = "MANAGER"
	RoleEmployee   Role = "EMPLOYEE"
)

// roleRanks — единственный источник истины о старшинстве ролей.
// Неизвестная роль получает ранг 0 и не может ничего.
var roleRanks = map[Role]int{
	RoleSuperAdmin: 6,
	RoleOrgOwner:   5,
	RoleOrgAdmin:   4,
	RoleHRAdmin:    3,
	RoleManager:    2,
	RoleEmployee:   1,
}

// delegationMatrix — какие роли актор может назначать приглашённым.
// Матрица строго убывающая: роль никогда не делегирует саму себя или выше.
// HR_ADMIN намеренно не делегирует MANAGER — кадровик нанимает рядовых
// сотрудников, но не руководителей.
var delegationMatrix = map[Role][]Role{
	RoleSuperAdmin: {RoleOrgOwner, RoleOrgAdmin, RoleHRAdmin, RoleManager, RoleEmployee},
	RoleOrgOwner:   {RoleOrgAdmin, RoleHRAdmin, RoleManager, RoleEmployee},
	RoleOrgAdmin:   {RoleHRAdmin, RoleManager, RoleEmployee},
	RoleHRAdmin:    {RoleEmployee},
	RoleManager:    {},
	RoleEmployee:   {},
}

func Rank(role Role) int {
	return roleRanks[role]
}

func (r Role) IsValid() bool {
	_, ok := roleRanks[r]
	return ok
}

// Decision — результат проверки политики с причиной отказа для лога/ответа.
type Decision struct {
	Allowed bool
	// SelfOnly: действие разрешено только потому, что актор меняет себя.
	// Вызывающий код обязан ограничить набор полей (без роли и компенсации).
	SelfOnly bool
	Reason   string
}

func allow() Decision            { return Decision{Allowed: true} }
func allowSelf() Decision        { return Decision{Allowed: true, SelfOnly: true} }
func deny(reason string) Decision { return Decision{Allowed: false, Reason: reason} }

// CanDelegate возвращает роли, которые актор может назначать приглашённым.
// Для роли вне матрицы — пустой набор, никогда не ошибка.
func CanDelegate(actorRole Role) []Role {
	roles, ok := delegationMatrix[actorRole]
	if !ok {
		return []Role{}
	}
	out := make([]Role, len(roles))
	copy(out, roles)
	return out
}

// MayDelegate — удобная проверка вхождения в набор делегирования.
func MayDelegate(actorRole, inviteeRole Role) bool {
	for _, r := range delegationMatrix[actorRole] {
		if r == inviteeRole {
			return true
		}
	}
	return false
}

// CanEdit: редактировать можно только строго младшего по рангу.
// Исключение — актор редактирует сам себя, но лишь ограниченный набор полей.
func CanEdit(actorRole, targetRole Role, isSelf bool) Decision {
	if isSelf {
		return allowSelf()
	}
	if Rank(actorRole) > Rank(targetRole) {
		return allow()
	}
	return deny("ранг актора не выше ранга сотрудника")
}

// CanTerminate: то же ранговое правило, плюс два жёстких исключения.
func CanTerminate(actorRole, targetRole Role, isSelf bool) Decision {
	if isSelf {
		return deny("нельзя уволить самого себя")
	}
	if targetRole == RoleSuperAdmin {
		return deny("нельзя уволить суперадминистратора")
	}
	if Rank(actorRole) > Rank(targetRole) {
		return allow()
	}
	return deny("ранг актора не выше ранга сотрудника")
}

// CanManageOrganization — пороговая проверка для операций над организацией
// (реквизиты, отпускные балансы, структура).
func CanManageOrganization(role Role) bool {
	return Rank(role) >= Rank(RoleOrgAdmin)
}

// CanManageCompensation — пороговая проверка для операций над компенсацией.
func CanManageCompensation(role Role) bool {
	return Rank(role) >= Rank(RoleHRAdmin)
}

// CanProvisionOrganization — создание и удаление единственной организации
// доступно только высшей роли.
func CanProvisionOrganization(role Role) bool {
	return role == RoleSuperAdmin
}

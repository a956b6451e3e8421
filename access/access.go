// Package access реализует единую ролевую политику доступа к машинам,
// записям ТО и рекламациям. Видимость и право записи для каждой строки
// определяются через связи владения на машине (клиент и сервисная
// организация), поэтому политика описана один раз и параметризуется
// путем разрешения владельца для конкретной таблицы.
package access

import (
	"errors"

	"backend_silant/models"

	"gorm.io/gorm"
)

// Resource описывает таблицу, к которой применяется ролевая политика:
// как от строки добраться до владеющей машины и какие роли могут писать.
type Resource struct {
	// Name — имя ресурса для сообщений об ошибках
	Name string

	// MachineJoin — JOIN до таблицы machines; пустая строка означает,
	// что политика применяется к самой таблице machines
	MachineJoin string

	// PublicRead разрешает неавторизованный просмотр (с сокращенным
	// набором полей, за это отвечает слой сериализации)
	PublicRead bool

	// ClientCanWrite разрешает клиентам запись по своим машинам
	ClientCanWrite bool

	// Сообщения об ошибках владения при записи
	ErrClientForbidden string
	ErrClientOwnOnly   string
	ErrServiceOwnOnly  string
}

// Дескрипторы трех ресурсов, подчиняющихся ролевой политике
var (
	Machines = Resource{
		Name:               "machines",
		PublicRead:         true,
		ClientCanWrite:     false,
		ErrClientForbidden: "Клиенты не могут изменять данные машин",
		ErrServiceOwnOnly:  "Вы можете изменять только обслуживаемые машины",
	}

	Maintenances = Resource{
		Name:               "maintenances",
		MachineJoin:        "JOIN machines ON machines.id = maintenances.machine_id",
		ClientCanWrite:     true,
		ErrClientOwnOnly:   "Вы можете создавать ТО только для своих машин",
		ErrServiceOwnOnly:  "Вы можете создавать ТО только для обслуживаемых машин",
		ErrClientForbidden: "Клиенты не могут изменять чужие записи ТО",
	}

	Complaints = Resource{
		Name:               "complaints",
		MachineJoin:        "JOIN machines ON machines.id = complaints.machine_id",
		ClientCanWrite:     false,
		ErrClientForbidden: "Клиенты не могут создавать рекламации",
		ErrServiceOwnOnly:  "Вы можете создавать рекламации только для обслуживаемых машин",
	}
)

// ErrNotAuthenticated возвращается при попытке записи без аутентификации
var ErrNotAuthenticated = errors.New("требуется аутентификация")

// ErrNoRole возвращается для аутентифицированных пользователей без роли
var ErrNoRole = errors.New("у пользователя нет роли для выполнения операции")

// Scope возвращает queryset, ограниченный строками, видимыми пользователю.
// Порядок проверок соответствует приоритету правил видимости: сначала
// неавторизованные, затем суперпользователь, затем роли.
func Scope(q *gorm.DB, user *models.User, r Resource) *gorm.DB {
	if user == nil {
		if r.PublicRead {
			return q
		}
		return none(q)
	}

	if user.IsSuperuser {
		return q
	}

	switch user.Role {
	case models.RoleManager:
		return q
	case models.RoleClient:
		return ownedBy(q, r, "machines.client_id", user.ID)
	case models.RoleService:
		return ownedBy(q, r, "machines.service_organization_id", user.ID)
	case models.RoleNone:
		return none(q)
	}
	return none(q)
}

// CanView проверяет видимость отдельной строки, разрешенной до владеющей
// машины. Зеркало Scope для случая, когда строка уже загружена: позволяет
// отличить "не найдено" от "нет доступа".
func CanView(user *models.User, r Resource, machine *models.Machine) bool {
	if user == nil {
		return r.PublicRead
	}
	if user.IsSuperuser {
		return true
	}

	switch user.Role {
	case models.RoleManager:
		return true
	case models.RoleClient:
		return machine.ClientID != nil && *machine.ClientID == user.ID
	case models.RoleService:
		return machine.ServiceOrganizationID != nil && *machine.ServiceOrganizationID == user.ID
	case models.RoleNone:
		return false
	}
	return false
}

// CanCreate проверяет право пользователя создать запись, привязанную к
// машине. Возвращаемая ошибка содержит текст нарушенного правила.
func CanCreate(user *models.User, r Resource, machine *models.Machine) error {
	if user == nil {
		return ErrNotAuthenticated
	}
	if user.IsSuperuser {
		return nil
	}

	switch user.Role {
	case models.RoleManager:
		return nil
	case models.RoleClient:
		if !r.ClientCanWrite {
			return errors.New(r.ErrClientForbidden)
		}
		if machine.ClientID == nil || *machine.ClientID != user.ID {
			return errors.New(r.ErrClientOwnOnly)
		}
		return nil
	case models.RoleService:
		if machine.ServiceOrganizationID == nil || *machine.ServiceOrganizationID != user.ID {
			return errors.New(r.ErrServiceOwnOnly)
		}
		return nil
	case models.RoleNone:
		return ErrNoRole
	}
	return ErrNoRole
}

// CanModify проверяет право пользователя изменить или удалить существующую
// запись, разрешенную до владеющей машины. Для клиентов машины и рекламации
// доступны только на чтение, записи ТО — по своим машинам.
func CanModify(user *models.User, r Resource, machine *models.Machine) error {
	if user == nil {
		return ErrNotAuthenticated
	}
	if user.IsSuperuser {
		return nil
	}

	switch user.Role {
	case models.RoleManager:
		return nil
	case models.RoleClient:
		if !r.ClientCanWrite {
			return errors.New(r.ErrClientForbidden)
		}
		if machine.ClientID == nil || *machine.ClientID != user.ID {
			return errors.New(r.ErrClientForbidden)
		}
		return nil
	case models.RoleService:
		if machine.ServiceOrganizationID == nil || *machine.ServiceOrganizationID != user.ID {
			return errors.New(r.ErrServiceOwnOnly)
		}
		return nil
	case models.RoleNone:
		return ErrNoRole
	}
	return ErrNoRole
}

// JoinsMachines сообщает, добавил ли Scope для данного пользователя join
// до таблицы machines. Нужен вызывающим, которым join требуется для
// собственных фильтров, чтобы не продублировать его.
func JoinsMachines(user *models.User, r Resource) bool {
	if r.MachineJoin == "" || user == nil || user.IsSuperuser {
		return false
	}
	return user.Role == models.RoleClient || user.Role == models.RoleService
}

// ownedBy ограничивает queryset строками, чья машина принадлежит
// пользователю по указанной колонке владения
func ownedBy(q *gorm.DB, r Resource, ownerColumn string, userID uint) *gorm.DB {
	if r.MachineJoin != "" {
		q = q.Joins(r.MachineJoin)
	}
	return q.Where(ownerColumn+" = ?", userID)
}

// none возвращает заведомо пустой queryset
func none(q *gorm.DB) *gorm.DB {
	return q.Where("1 = 0")
}

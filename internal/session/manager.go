// Package session хранит краткоживущее состояние процесса: кэш
// аутентифицированных пользователей по их токенам и кэш настроек.
// Все данные живут только в памяти и теряются при рестарте — источником
// истины всегда остается бэкенд.
package session

import (
	"context"
	"log"
	"sync"
	"time"

	"ArborCRM/internal/models"
)

// SettingsSource - то, откуда менеджер подтягивает настройки и
// пользователей. Реализуется backend.Client, в тестах — фейком.
type SettingsSource interface {
	GetSettings(ctx context.Context) (*models.Settings, error)
	GetCurrentUser(ctx context.Context, userToken string) (*models.User, error)
}

// settingsTTL - срок жизни кэша настроек. Ставка налога меняется редко,
// но «редко» не значит «никогда»: раз в минуту перечитываем.
const settingsTTL = time.Minute

// SessionManager управляет кэшем пользователей и настроек.
// SessionManager manages the user and settings caches.
type SessionManager struct {
	source SettingsSource

	users      map[string]*models.User // Ключ: Bearer-токен пользователя / Key: user's bearer token
	usersMutex sync.RWMutex

	settings          *models.Settings
	settingsFetchedAt time.Time
	settingsMutex     sync.RWMutex
}

// NewSessionManager создает и возвращает новый экземпляр SessionManager.
func NewSessionManager(source SettingsSource) *SessionManager {
	return &SessionManager{
		source: source,
		users:  make(map[string]*models.User),
	}
}

// --- Кэш пользователей ---
// --- User cache ---

// ResolveUser возвращает пользователя по его токену, при промахе кэша
// спрашивая бэкенд. Протокол проверки токена непрозрачен для нас.
func (sm *SessionManager) ResolveUser(ctx context.Context, token string) (*models.User, error) {
	sm.usersMutex.RLock()
	user, ok := sm.users[token]
	sm.usersMutex.RUnlock()
	if ok {
		return user, nil
	}

	user, err := sm.source.GetCurrentUser(ctx, token)
	if err != nil {
		return nil, err
	}

	sm.usersMutex.Lock()
	sm.users[token] = user
	sm.usersMutex.Unlock()

	log.Printf("SessionManager.ResolveUser: пользователь #%d (%s) добавлен в кэш сессий.", user.ID, user.Role)
	return user, nil
}

// DropUser удаляет пользователя из кэша (выход из системы, смена роли).
func (sm *SessionManager) DropUser(token string) {
	sm.usersMutex.Lock()
	defer sm.usersMutex.Unlock()
	delete(sm.users, token)
}

// --- Кэш настроек ---
// --- Settings cache ---

// GetSettings возвращает настройки, перечитывая их с бэкенда не чаще
// раза в settingsTTL. Если бэкенд недоступен, а в кэше что-то есть —
// отдаем устаревшее: для расчета на экране это лучше, чем ошибка.
func (sm *SessionManager) GetSettings(ctx context.Context) (*models.Settings, error) {
	sm.settingsMutex.RLock()
	cached := sm.settings
	fresh := cached != nil && time.Since(sm.settingsFetchedAt) < settingsTTL
	sm.settingsMutex.RUnlock()
	if fresh {
		return cached, nil
	}

	settings, err := sm.source.GetSettings(ctx)
	if err != nil {
		if cached != nil {
			log.Printf("SessionManager.GetSettings: бэкенд недоступен (%v), отдаем настройки из кэша.", err)
			return cached, nil
		}
		return nil, err
	}

	sm.settingsMutex.Lock()
	sm.settings = settings
	sm.settingsFetchedAt = time.Now()
	sm.settingsMutex.Unlock()

	return settings, nil
}

// InvalidateSettings сбрасывает кэш настроек (после их изменения админом).
func (sm *SessionManager) InvalidateSettings() {
	sm.settingsMutex.Lock()
	defer sm.settingsMutex.Unlock()
	sm.settings = nil
	sm.settingsFetchedAt = time.Time{}
}

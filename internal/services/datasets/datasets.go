// Package datasets реализует выборку данных из апстримов с нормализацией
// на границе и сессионным кешем с протоколом обновления.
//
// Каждый датасет кешируется под ключом своей выборки в рамках сессии.
// Флаг обновления сессии общий: пока он взведён, любое обращение к кешу
// перечитывает данные из апстрима; после завершения прохода отчёта флаг
// сбрасывается (FinishRender), и следующие обращения снова читают кеш.
// Запись в кеш происходит только после полной сборки датасета, поэтому
// закешированное значение либо целиком свежее, либо целиком прежнее.
package datasets

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/redcoes/dashboard-api/internal/clients/moodle"
	"github.com/redcoes/dashboard-api/internal/lib/sl"
	"github.com/redcoes/dashboard-api/internal/models"
	"github.com/redcoes/dashboard-api/internal/session"
)

// Имена выборок, они же ключи кеша в рамках сессии.
const (
	datasetCourses  = "cursos"
	datasetUsers    = "usuarios"
	datasetOrders   = "pedidos"
	datasetProducts = "productos"
	datasetMembers  = "miembros"
)

// MoodleClient описывает вызовы e-learning платформы, нужные выборкам.
type MoodleClient interface {
	Courses(ctx context.Context) ([]moodle.Course, error)
	EnrolledUsers(ctx context.Context, courseID int) ([]moodle.User, error)
	Users(ctx context.Context) ([]moodle.User, error)
}

// CommerceClient описывает вызовы коммерческого API. Ключ доступа — секрет
// сессии, он передаётся в каждый запрос.
type CommerceClient interface {
	Orders(ctx context.Context, key string) ([]map[string]any, error)
	Products(ctx context.Context, key string) ([]map[string]any, error)
	Members(ctx context.Context, key string) ([]map[string]any, error)
}

// Cache описывает методы кеширования датасетов.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

// SessionStore сбрасывает флаг обновления после прохода отчёта.
type SessionStore interface {
	SetRefresh(ctx context.Context, id string, refresh bool) error
}

// Service собирает нормализованные датасеты для отчётов.
type Service struct {
	moodle      MoodleClient
	commerce    CommerceClient
	cache       Cache
	sessions    SessionStore
	log         *slog.Logger
	ttl         time.Duration
	fanoutLimit int
}

// New создаёт Service. fanoutLimit ограничивает параллельные запросы
// участников, ttl — время жизни закешированных датасетов.
func New(moodleClient MoodleClient, commerceClient CommerceClient, cache Cache, sessions SessionStore, log *slog.Logger, ttl time.Duration, fanoutLimit int) *Service {
	if fanoutLimit <= 0 {
		fanoutLimit = 1
	}
	return &Service{
		moodle:      moodleClient,
		commerce:    commerceClient,
		cache:       cache,
		sessions:    sessions,
		log:         log,
		ttl:         ttl,
		fanoutLimit: fanoutLimit,
	}
}

func datasetKey(sessionID, name string) string {
	return "dataset:" + sessionID + ":" + name
}

// getOrFetch возвращает датасет из кеша либо перечитывает его из апстрима.
// Перечитывание происходит при промахе и при взведённом флаге обновления.
func getOrFetch[T any](ctx context.Context, s *Service, sess *session.Session, name string, fetch func(context.Context) ([]T, error)) ([]T, error) {
	key := datasetKey(sess.ID, name)

	if !sess.Refresh {
		var cached []T
		found, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			s.log.Warn("failed to read dataset cache", slog.String("key", key), sl.Err(err))
		}
		if found {
			return cached, nil
		}
	}

	rows, err := fetch(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, key, rows, s.ttl); err != nil {
		s.log.Warn("failed to cache dataset", slog.String("key", key), sl.Err(err))
	}
	return rows, nil
}

// FinishRender сбрасывает флаг обновления после того, как обработчик отчёта
// собрал все свои датасеты. Нетронутые датасеты остаются прежними.
func (s *Service) FinishRender(ctx context.Context, sess *session.Session) {
	if !sess.Refresh {
		return
	}
	if err := s.sessions.SetRefresh(ctx, sess.ID, false); err != nil {
		s.log.Warn("failed to reset refresh flag", slog.String("session_id", sess.ID), sl.Err(err))
		return
	}
	sess.Refresh = false
}

// Courses возвращает нормализованный список курсов (строки без даты начала
// отброшены).
func (s *Service) Courses(ctx context.Context, sess *session.Session) ([]models.Course, error) {
	return getOrFetch(ctx, s, sess, datasetCourses, func(ctx context.Context) ([]models.Course, error) {
		raw, err := s.moodle.Courses(ctx)
		if err != nil {
			return nil, err
		}
		courses := make([]models.Course, 0, len(raw))
		for _, rc := range raw {
			if c, ok := normalizeCourse(rc); ok {
				courses = append(courses, c)
			}
		}
		return courses, nil
	})
}

// Users возвращает всех пользователей платформы.
func (s *Service) Users(ctx context.Context, sess *session.Session) ([]models.User, error) {
	return getOrFetch(ctx, s, sess, datasetUsers, func(ctx context.Context) ([]models.User, error) {
		raw, err := s.moodle.Users(ctx)
		if err != nil {
			return nil, err
		}
		users := make([]models.User, 0, len(raw))
		for _, ru := range raw {
			users = append(users, normalizeUser(ru))
		}
		return users, nil
	})
}

// Participants возвращает участников курса. Выборка не кешируется:
// состав курса меняется чаще, чем справочники.
func (s *Service) Participants(ctx context.Context, courseID int) ([]models.Participant, error) {
	raw, err := s.moodle.EnrolledUsers(ctx, courseID)
	if err != nil {
		return nil, err
	}
	participants := make([]models.Participant, 0, len(raw))
	for _, ru := range raw {
		participants = append(participants, normalizeParticipant(ru))
	}
	return participants, nil
}

// ParticipantCounts считает участников для каждого курса из списка.
// Запросы идут параллельно с ограничением, результат собирается в порядке
// входных идентификаторов.
func (s *Service) ParticipantCounts(ctx context.Context, courseIDs []int) ([]int, error) {
	counts := make([]int, len(courseIDs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.fanoutLimit)
	for i, id := range courseIDs {
		i, id := i, id
		g.Go(func() error {
			users, err := s.moodle.EnrolledUsers(gctx, id)
			if err != nil {
				return err
			}
			counts[i] = len(users)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return counts, nil
}

// Orders возвращает нормализованные заказы.
func (s *Service) Orders(ctx context.Context, sess *session.Session) ([]models.Order, error) {
	return getOrFetch(ctx, s, sess, datasetOrders, func(ctx context.Context) ([]models.Order, error) {
		raw, err := s.commerce.Orders(ctx, sess.Secret)
		if err != nil {
			return nil, err
		}
		orders := make([]models.Order, 0, len(raw))
		for _, row := range raw {
			orders = append(orders, orderFromRow(row))
		}
		return orders, nil
	})
}

// Products возвращает нормализованные вариации товаров.
func (s *Service) Products(ctx context.Context, sess *session.Session) ([]models.Product, error) {
	return getOrFetch(ctx, s, sess, datasetProducts, func(ctx context.Context) ([]models.Product, error) {
		raw, err := s.commerce.Products(ctx, sess.Secret)
		if err != nil {
			return nil, err
		}
		products := make([]models.Product, 0, len(raw))
		for _, row := range raw {
			products = append(products, productFromRow(row))
		}
		return products, nil
	})
}

// Members возвращает нормализованные записи членств.
func (s *Service) Members(ctx context.Context, sess *session.Session) ([]models.Member, error) {
	return getOrFetch(ctx, s, sess, datasetMembers, func(ctx context.Context) ([]models.Member, error) {
		raw, err := s.commerce.Members(ctx, sess.Secret)
		if err != nil {
			return nil, err
		}
		members := make([]models.Member, 0, len(raw))
		for _, row := range raw {
			members = append(members, memberFromRow(row))
		}
		return members, nil
	})
}

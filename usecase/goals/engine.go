package goals

import (
	"context"
	"errors"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/lifetrack/domain"
	"github.com/fastygo/lifetrack/usecase"
)

const (
	BalanceBonusPoints = 50
	StreakBonusPoints  = 10

	categoriesDocument = "categories"
	userDocument       = "user"
)

// CompletionResult describes what a goal completion awarded.
type CompletionResult struct {
	Applied      bool
	GoalPoints   int
	StreakBonus  int
	BalanceBonus bool
	LeveledUp    bool
	Level        int
	TotalPoints  int
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces time.Now, mainly for tests that simulate calendar days.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithSeedPath sets the seed text file used when a namespace has no categories.
func WithSeedPath(path string) Option {
	return func(e *Engine) { e.seedPath = path }
}

// WithRecorder reports every applied mutation to recorder.
func WithRecorder(recorder usecase.ActivityRecorder) Option {
	return func(e *Engine) { e.recorder = recorder }
}

func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// Engine owns the categories and profile of one identity namespace and
// applies the scoring rules to them. It is not safe for concurrent use;
// callers serialize access.
type Engine struct {
	store    usecase.DocumentStore
	recorder usecase.ActivityRecorder
	logger   *zap.Logger
	now      func() time.Time
	seedPath string

	namespace  string
	categories []domain.Category
	user       *domain.User
}

func NewEngine(store usecase.DocumentStore, opts ...Option) *Engine {
	e := &Engine{
		store:  store,
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// DocumentKey returns the storage key of a document in a namespace.
func DocumentKey(document, namespace string) string {
	if namespace == "" {
		return document + ".json"
	}
	return document + "_" + namespace + ".json"
}

func (e *Engine) Namespace() string {
	return e.namespace
}

// Initialize loads the namespace state, seeding categories and the default
// profile when nothing is stored yet.
func (e *Engine) Initialize(ctx context.Context) {
	e.categories = nil
	e.user = nil

	categories, user, err := e.load(ctx)
	if err != nil {
		e.logger.Warn("loading from remote storage failed, falling back to local", zap.String("namespace", e.namespace), zap.Error(err))
		e.store.DisableRemote(err.Error())
		categories, user, err = e.load(ctx)
		if err != nil {
			e.logger.Error("loading from local storage failed", zap.String("namespace", e.namespace), zap.Error(err))
			categories, user = nil, nil
		}
	}

	seeded := false
	if len(categories) > 0 {
		e.categories = categories
	} else {
		e.categories = e.seed()
		seeded = true
	}

	if user == nil || user.Username == "" {
		e.user = domain.NewDefaultUser(e.now())
		seeded = true
	} else {
		if user.CategoryCompletions == nil {
			user.CategoryCompletions = map[string]int{}
		}
		if user.Level < 1 {
			user.Level = 1
		}
		e.user = user
	}

	if seeded {
		e.persist(ctx)
	}
}

// SwitchNamespace drops the in-memory state and reloads it for identity.
func (e *Engine) SwitchNamespace(ctx context.Context, identity string) {
	e.logger.Info("switching namespace", zap.String("from", e.namespace), zap.String("to", identity))
	e.namespace = identity
	e.Initialize(ctx)
}

// Categories returns a copy of every category.
func (e *Engine) Categories() []domain.Category {
	out := make([]domain.Category, len(e.categories))
	for i := range e.categories {
		out[i] = e.categories[i].Clone()
	}
	return out
}

func (e *Engine) Category(id int) (domain.Category, bool) {
	category := e.category(id)
	if category == nil {
		return domain.Category{}, false
	}
	return category.Clone(), true
}

// CurrentUser returns a copy of the namespace profile.
func (e *Engine) CurrentUser() domain.User {
	if e.user == nil {
		return domain.User{}
	}
	return *e.user.Clone()
}

// UpdateUser replaces the profile and persists it.
func (e *Engine) UpdateUser(ctx context.Context, user domain.User) error {
	e.user = user.Clone()
	if e.user.CategoryCompletions == nil {
		e.user.CategoryCompletions = map[string]int{}
	}
	return e.store.Put(ctx, DocumentKey(userDocument, e.namespace), e.user)
}

// CompleteGoal marks a goal completed and applies streaks, bonuses and level.
// Completing a goal already completed today, or an unknown goal, changes nothing.
func (e *Engine) CompleteGoal(ctx context.Context, categoryID, goalID int) CompletionResult {
	category := e.category(categoryID)
	goal := category.Goal(goalID)
	if goal == nil || e.user == nil {
		return CompletionResult{}
	}

	now := e.now()
	if goal.CompletedOn(now) {
		return e.result(CompletionResult{})
	}

	result := CompletionResult{Applied: true, GoalPoints: goal.Points}
	goal.IsCompleted = true
	completed := now
	goal.CompletedDate = &completed
	e.user.TotalPoints += goal.Points
	e.record(ctx, domain.ActivityGoalCompleted, categoryID, goalID, goal.Points, nil)

	if !domain.SameDay(category.LastCompletedDate, now) {
		if domain.IsDayBefore(category.LastCompletedDate, now) {
			category.CompletionStreak++
		} else {
			category.CompletionStreak = 1
		}
		category.LastCompletedDate = now
	}

	if e.user.CategoryCompletions == nil {
		e.user.CategoryCompletions = map[string]int{}
	}
	e.user.CategoryCompletions[category.Name]++

	result.BalanceBonus = e.applyBalanceBonus(ctx, now)
	result.StreakBonus = e.applyUserStreak(ctx, now)
	result.LeveledUp = e.applyLevel(ctx)

	e.persist(ctx)
	return e.result(result)
}

// ResetGoal clears a completed goal and takes back its points. Streaks,
// bonuses and level stay as they are. It reports whether anything changed.
func (e *Engine) ResetGoal(ctx context.Context, categoryID, goalID int) bool {
	goal := e.category(categoryID).Goal(goalID)
	if goal == nil || !goal.IsCompleted || e.user == nil {
		return false
	}

	goal.IsCompleted = false
	e.user.TotalPoints -= goal.Points
	e.record(ctx, domain.ActivityGoalReset, categoryID, goalID, -goal.Points, nil)
	e.persist(ctx)
	return true
}

// AddGoal appends a goal to a category. It returns nil without error when the
// category does not exist; a failed save is returned.
func (e *Engine) AddGoal(ctx context.Context, categoryID int, description string, difficulty domain.Difficulty) (*domain.Goal, error) {
	category := e.category(categoryID)
	if category == nil {
		return nil, nil
	}
	if !difficulty.Valid() {
		difficulty = domain.DifficultyNormal
	}

	goal := domain.Goal{
		ID:          category.NextGoalID(),
		Description: description,
		CategoryID:  categoryID,
		Points:      difficulty.Points(),
		Difficulty:  difficulty,
	}
	category.Goals = append(category.Goals, goal)
	e.record(ctx, domain.ActivityGoalAdded, categoryID, goal.ID, goal.Points, map[string]string{
		"difficulty": string(difficulty),
	})

	if err := e.save(ctx); err != nil {
		return &goal, err
	}
	return &goal, nil
}

// Purge deletes the namespace documents and starts over from the seed.
func (e *Engine) Purge(ctx context.Context) error {
	err := errors.Join(
		e.store.Delete(ctx, DocumentKey(categoriesDocument, e.namespace)),
		e.store.Delete(ctx, DocumentKey(userDocument, e.namespace)),
	)
	if err != nil {
		return err
	}
	e.Initialize(ctx)
	return nil
}

func (e *Engine) applyBalanceBonus(ctx context.Context, now time.Time) bool {
	if len(e.categories) == 0 {
		return false
	}
	if e.user.LastBalanceBonusDate != nil && domain.SameDay(*e.user.LastBalanceBonusDate, now) {
		return false
	}
	for i := range e.categories {
		if e.categories[i].CompletedOn(now) == 0 {
			return false
		}
	}

	e.user.TotalPoints += BalanceBonusPoints
	e.user.BalanceBonus++
	granted := now
	e.user.LastBalanceBonusDate = &granted
	e.logger.Info("balance bonus awarded", zap.String("namespace", e.namespace), zap.Int("points", BalanceBonusPoints))
	e.record(ctx, domain.ActivityBalanceBonus, 0, 0, BalanceBonusPoints, nil)
	return true
}

func (e *Engine) applyUserStreak(ctx context.Context, now time.Time) int {
	var bonus int
	switch {
	case domain.IsDayBefore(e.user.LastActiveDate, now):
		e.user.ConsistencyStreak++
		bonus = StreakBonusPoints * e.user.ConsistencyStreak
		e.user.TotalPoints += bonus
		e.logger.Info("streak bonus awarded", zap.String("namespace", e.namespace), zap.Int("points", bonus))
		e.record(ctx, domain.ActivityStreakBonus, 0, 0, bonus, map[string]string{
			"streak": strconv.Itoa(e.user.ConsistencyStreak),
		})
	case !domain.SameDay(e.user.LastActiveDate, now):
		e.user.ConsistencyStreak = 1
	}
	e.user.LastActiveDate = now
	return bonus
}

func (e *Engine) applyLevel(ctx context.Context) bool {
	level := domain.LevelFor(e.user.TotalPoints)
	if level <= e.user.Level {
		return false
	}
	e.user.Level = level
	e.logger.Info("level up", zap.String("namespace", e.namespace), zap.Int("level", level))
	e.record(ctx, domain.ActivityLevelUp, 0, 0, 0, map[string]string{
		"level": strconv.Itoa(level),
	})
	return true
}

func (e *Engine) result(r CompletionResult) CompletionResult {
	r.Level = e.user.Level
	r.TotalPoints = e.user.TotalPoints
	return r
}

func (e *Engine) category(id int) *domain.Category {
	for i := range e.categories {
		if e.categories[i].ID == id {
			return &e.categories[i]
		}
	}
	return nil
}

func (e *Engine) load(ctx context.Context) ([]domain.Category, *domain.User, error) {
	var categories []domain.Category
	if _, err := e.store.Load(ctx, DocumentKey(categoriesDocument, e.namespace), &categories); err != nil {
		return nil, nil, err
	}

	var user domain.User
	found, err := e.store.Load(ctx, DocumentKey(userDocument, e.namespace), &user)
	if err != nil {
		return nil, nil, err
	}
	if !found {
		return categories, nil, nil
	}
	return categories, &user, nil
}

func (e *Engine) seed() []domain.Category {
	now := e.now()
	if e.seedPath == "" {
		return DefaultCategories(now)
	}

	categories, err := LoadSeedFile(e.seedPath, now)
	switch {
	case err == nil:
		e.logger.Info("categories seeded from file", zap.String("path", e.seedPath), zap.Int("categories", len(categories)))
		return categories
	case errors.Is(err, os.ErrNotExist):
		e.logger.Debug("seed file not found, using defaults", zap.String("path", e.seedPath))
	default:
		e.logger.Error("failed to read seed file, using defaults", zap.String("path", e.seedPath), zap.Error(err))
	}
	return DefaultCategories(now)
}

// save writes both namespace documents.
func (e *Engine) save(ctx context.Context) error {
	err := e.store.Put(ctx, DocumentKey(categoriesDocument, e.namespace), e.categories)
	if e.user != nil {
		err = errors.Join(err, e.store.Put(ctx, DocumentKey(userDocument, e.namespace), e.user))
	}
	return err
}

// persist saves state and logs instead of failing; in-memory state stays authoritative.
func (e *Engine) persist(ctx context.Context) {
	if err := e.save(ctx); err != nil {
		e.logger.Error("failed to persist state", zap.String("namespace", e.namespace), zap.Error(err))
	}
}

func (e *Engine) record(ctx context.Context, kind domain.ActivityKind, categoryID, goalID, points int, metadata map[string]string) {
	if e.recorder == nil {
		return
	}
	event := domain.ActivityEvent{
		Namespace:  e.namespace,
		Kind:       kind,
		CategoryID: categoryID,
		GoalID:     goalID,
		Points:     points,
		Metadata:   metadata,
		CreatedAt:  e.now(),
	}
	if err := e.recorder.Record(ctx, event); err != nil {
		e.logger.Warn("failed to record activity", zap.String("kind", string(kind)), zap.Error(err))
	}
}

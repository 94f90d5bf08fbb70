package repository

import (
	"context"

	"github.com/alexanderramin/dayplanner/internal/domain"
)

// Storage keys. Values are UTF-8 text.
const (
	PlansKey    = "@daily_planner_plans"
	UserNameKey = "@daily_planner_user_name"
	GenderKey   = "@daily_planner_gender"
	SettingsKey = "@daily_planner_settings"
)

// PlanRepo maps planner records onto a key-value store. Every plans
// mutation is one full read and one full write of the plans value, done
// under a single lock so concurrent mutations never lose each other.
type PlanRepo interface {
	GetAllPlans(ctx context.Context) (domain.Plans, error)
	GetPlan(ctx context.Context, date domain.DateKey) ([]domain.Task, error)
	SavePlan(ctx context.Context, date domain.DateKey, tasks []domain.Task) error
	DeletePlan(ctx context.Context, date domain.DateKey) error
	UpdateTask(ctx context.Context, date domain.DateKey, taskID string, patch domain.TaskPatch) error
	RemoveTask(ctx context.Context, date domain.DateKey, taskID string) error
	// AppendTasks adds tasks after the date's stored tasks in one write.
	AppendTasks(ctx context.Context, date domain.DateKey, tasks []domain.Task) error

	GetUserName(ctx context.Context) (string, bool, error)
	SaveUserName(ctx context.Context, name string) error
	GetGender(ctx context.Context) (domain.Gender, error)
	SaveGender(ctx context.Context, g domain.Gender) error
	GetSettings(ctx context.Context) (domain.Settings, error)
	SaveSettings(ctx context.Context, s domain.Settings) error

	// SaveProfile writes name, gender and settings together or not at all.
	SaveProfile(ctx context.Context, p domain.Profile, s domain.Settings) error
	ClearAll(ctx context.Context) error
}

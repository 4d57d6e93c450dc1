// Package maintenance is the data-integrity batch pass: collapse
// duplicate-email profiles, then repair roles outside the valid enum.
// Per-item failures are collected, never raised, and never abort the
// batch.
package maintenance

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"SignBridge/internal/models"
	"SignBridge/pkg/logger"
)

// Observer receives the batch tallies.
type Observer interface {
	ObserveMaintenance(duplicates, roles int)
}

// Report tallies one batch run. Errors holds per-item failure messages;
// a non-empty list does not mean the run failed, only that some items
// were skipped.
type Report struct {
	UsersScanned      int      `json:"usersScanned"`
	DuplicatesRemoved int      `json:"duplicatesRemoved"`
	RolesFixed        int      `json:"rolesFixed"`
	Errors            []string `json:"errors,omitempty"`
}

type Runner struct {
	db       *gorm.DB
	observer Observer
}

func NewRunner(db *gorm.DB) *Runner {
	return &Runner{db: db}
}

// WithObserver attaches batch metrics.
func (r *Runner) WithObserver(o Observer) *Runner {
	r.observer = o
	return r
}

// Run executes both passes. It never returns an error: everything that
// goes wrong per item lands in Report.Errors and the run continues.
func (r *Runner) Run(ctx context.Context) Report {
	var report Report

	r.collapseDuplicates(ctx, &report)
	r.repairRoles(ctx, &report)

	if r.observer != nil {
		r.observer.ObserveMaintenance(report.DuplicatesRemoved, report.RolesFixed)
	}
	logger.Info("maintenance run finished",
		zap.Int("scanned", report.UsersScanned),
		zap.Int("duplicates_removed", report.DuplicatesRemoved),
		zap.Int("roles_fixed", report.RolesFixed),
		zap.Int("errors", len(report.Errors)))
	return report
}

// collapseDuplicates groups users by email and, within each group of two
// or more, keeps the earliest-created row and deletes the rest. Deletes
// are issued one by one without a transaction; a failure mid-group
// leaves partial cleanup for the next run.
func (r *Runner) collapseDuplicates(ctx context.Context, report *Report) {
	var users []models.User
	if err := r.db.WithContext(ctx).Find(&users).Error; err != nil {
		report.Errors = append(report.Errors, fmt.Sprintf("chargement des utilisateurs: %v", err))
		return
	}
	report.UsersScanned = len(users)

	groups := make(map[string][]models.User)
	for _, u := range users {
		key := strings.ToLower(strings.TrimSpace(u.Email))
		groups[key] = append(groups[key], u)
	}

	for email, group := range groups {
		if len(group) < 2 {
			continue
		}
		sort.Slice(group, func(i, j int) bool {
			return group[i].CreatedAt.Before(group[j].CreatedAt)
		})
		for _, extra := range group[1:] {
			err := r.db.WithContext(ctx).Delete(&models.User{}, "id = ?", extra.ID).Error
			if err != nil {
				report.Errors = append(report.Errors,
					fmt.Sprintf("suppression du doublon %s (%s): %v", extra.ID, email, err))
				continue
			}
			report.DuplicatesRemoved++
		}
	}
}

// repairRoles reloads the surviving rows and rewrites any role outside
// the enum, preferring the auth identity's hint and defaulting to
// "entendant" when no hint exists.
func (r *Runner) repairRoles(ctx context.Context, report *Report) {
	var users []models.User
	if err := r.db.WithContext(ctx).Find(&users).Error; err != nil {
		report.Errors = append(report.Errors, fmt.Sprintf("rechargement des utilisateurs: %v", err))
		return
	}

	for _, u := range users {
		if models.ValidRole(u.UserRole) {
			continue
		}
		role := r.hintedRole(ctx, u.ID)
		err := r.db.WithContext(ctx).Model(&models.User{}).
			Where("id = ?", u.ID).
			Update("user_role", role).Error
		if err != nil {
			report.Errors = append(report.Errors,
				fmt.Sprintf("correction du rôle de %s: %v", u.ID, err))
			continue
		}
		report.RolesFixed++
	}
}

func (r *Runner) hintedRole(ctx context.Context, userID string) string {
	var identity models.AuthIdentity
	err := r.db.WithContext(ctx).First(&identity, "id = ?", userID).Error
	if err == nil && models.ValidRole(identity.RoleHint) {
		return identity.RoleHint
	}
	return models.RoleEntendant
}

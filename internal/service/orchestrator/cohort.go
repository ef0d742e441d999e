package orchestrator

import (
	"context"
	stderrors "errors"

	"go.opentelemetry.io/otel/attribute"

	"accelerator-portal/internal/cohort"
	"accelerator-portal/internal/common/errors"
	"accelerator-portal/internal/common/metrics"
	"accelerator-portal/internal/models"
)

// SaveCohort creates c, or updates it when c.ID names an existing cohort. The overlap
// check and the write run under the cohort lock so two writers cannot both pass the
// check against the same snapshot.
func (s *Service) SaveCohort(ctx context.Context, c models.Cohort) (saved *models.Cohort, err error) {
	ctx, span := s.span(ctx, "SaveCohort", attribute.String("cohortId", c.ID))
	defer func() { finish(span, err) }()

	result := "error"
	defer func() { metrics.CohortWrites.WithLabelValues(result).Inc() }()

	if c.Name == "" {
		result = "invalid"
		return nil, errors.NewValidationError("name", "cohort name is required")
	}

	release, err := s.locker.Acquire(ctx, CohortLockKey)
	if err != nil {
		return nil, err
	}
	defer release()

	existing, err := s.cohorts.List(ctx)
	if err != nil {
		return nil, err
	}

	update := c.ID != ""
	if update {
		current := findCohort(existing, c.ID)
		if current == nil {
			result = "not_found"
			return nil, errors.NewNotFoundError("cohort", c.ID)
		}
		if c.Webinars == nil {
			c.Webinars = current.Webinars
		}
		c.CreatedAt = current.CreatedAt
	}

	if err := cohort.CheckAgainst(c, existing); err != nil {
		var overlap *errors.OverlapError
		if stderrors.As(err, &overlap) {
			result = "overlap"
		} else {
			result = "invalid"
		}
		return nil, err
	}

	if update {
		err = s.cohorts.Update(ctx, &c)
	} else {
		err = s.cohorts.Create(ctx, &c)
	}
	if err != nil {
		return nil, err
	}

	result = "created"
	if update {
		result = "updated"
	}
	s.logger.Info("cohort saved", map[string]interface{}{
		"cohortId": c.ID,
		"result":   result,
	})
	return &c, nil
}

func findCohort(cohorts []models.Cohort, id string) *models.Cohort {
	for i := range cohorts {
		if cohorts[i].ID == id {
			return &cohorts[i]
		}
	}
	return nil
}

package lifecycle

import (
	"fmt"

	"accelerator-portal/internal/common/errors"
	"accelerator-portal/internal/models"
)

// AdminCapability authorizes a forced transition. The zero value authorizes nothing;
// only NewAdminCapability mints a usable one.
type AdminCapability struct {
	adminID string
}

func NewAdminCapability(adminID string) (AdminCapability, error) {
	if adminID == "" {
		return AdminCapability{}, errors.NewAdminCapabilityRequiredError("admin id is empty")
	}
	return AdminCapability{adminID: adminID}, nil
}

func (c AdminCapability) AdminID() string {
	return c.adminID
}

func (c AdminCapability) valid() bool {
	return c.adminID != ""
}

// ForcedTransition is an admin override. It is deliberately a different type from
// Transition so the guarded path can never produce one.
type ForcedTransition struct {
	From    models.Status
	To      models.Status
	AdminID string
	Reason  string
}

// Force moves current to any other valid status, bypassing every guard, including
// out of terminal states.
func Force(current, target models.Status, c AdminCapability, reason string) (ForcedTransition, error) {
	if !c.valid() {
		return ForcedTransition{}, errors.NewAdminCapabilityRequiredError("forced transition without admin capability")
	}
	if !target.Valid() {
		return ForcedTransition{}, errors.NewValidationError("targetStatus", fmt.Sprintf("unknown status %q", target))
	}
	if !current.Valid() {
		return ForcedTransition{}, errors.NewValidationError("status", fmt.Sprintf("unknown status %q", current))
	}
	if current == target {
		return ForcedTransition{}, errors.NewValidationError("targetStatus", "applicant is already in "+string(target))
	}

	return ForcedTransition{
		From:    current,
		To:      target,
		AdminID: c.adminID,
		Reason:  reason,
	}, nil
}

package account

import (
	"context"
	"log"

	"github.com/hack4impact-upenn/celf-sp25-sub001/internal/fault"
	"github.com/hack4impact-upenn/celf-sp25-sub001/internal/model"
	"github.com/hack4impact-upenn/celf-sp25-sub001/internal/validate"
)

// Coordinator removes a user together with its profile and every
// request referencing either side, so no dangling reference survives
// a deletion.
type Coordinator struct {
	store Store
}

func NewCoordinator(store Store) *Coordinator {
	return &Coordinator{store: store}
}

// DeleteUser removes the account at targetEmail on behalf of the
// acting admin. Admins cannot delete themselves through this path,
// and cannot delete other admins at all.
//
// Each branch runs inside a single store transaction, so a failure
// partway leaves nothing half-deleted. A request created concurrently
// against the vanishing account can still slip through; the reconcile
// sweep picks those up.
func (c *Coordinator) DeleteUser(ctx context.Context, actingAdminID, targetEmail string) error {
	target, err := c.store.GetUserByEmail(ctx, validate.NormalizeEmail(targetEmail))
	if err != nil {
		return err
	}
	if target.ID == actingAdminID {
		return fault.Validation("cannot_delete_self", "use account closure, not admin deletion, for your own account")
	}
	if target.Admin {
		return fault.Forbidden("cannot_delete_admin", "admin accounts cannot be deleted by another admin")
	}

	switch target.Role {
	case model.RoleTeacher:
		removed, err := c.store.DeleteTeacherAccount(ctx, target.ID)
		if err != nil {
			return err
		}
		if removed > 0 {
			log.Printf("account: deleted %d requests for teacher %s", removed, target.ID)
		}
		return nil
	case model.RoleSpeaker:
		sp, err := c.store.GetSpeakerProfileByUserID(ctx, target.ID)
		if fault.KindOf(err) == fault.KindNotFound {
			// Invite-provisioned speaker with no profile yet.
			return c.store.DeleteUser(ctx, target.ID)
		}
		if err != nil {
			return err
		}
		removed, err := c.store.DeleteSpeakerAccount(ctx, target.ID, sp.ID)
		if err != nil {
			return err
		}
		if removed > 0 {
			log.Printf("account: deleted %d requests for speaker %s", removed, sp.ID)
		}
		return nil
	default:
		return c.store.DeleteUser(ctx, target.ID)
	}
}

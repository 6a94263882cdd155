package account

import (
	"context"

	"github.com/hack4impact-upenn/celf-sp25-sub001/internal/model"
	"github.com/hack4impact-upenn/celf-sp25-sub001/internal/profile"
)

// ListUsers returns every account for administration. Speaker rows
// carry derived profileComplete and speakerVisible fields computed
// from the stored profile; the stored visible flag is not mutated.
func (p *Provisioner) ListUsers(ctx context.Context) ([]model.AdminUserView, error) {
	users, err := p.store.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	profiles, err := p.store.ListSpeakerProfiles(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]model.AdminUserView, 0, len(users))
	for _, user := range users {
		view := model.AdminUserView{
			ID:        user.ID,
			FirstName: user.FirstName,
			LastName:  user.LastName,
			Email:     user.Email,
			Role:      user.Role,
			Admin:     user.Admin,
			Verified:  user.Verified,
		}
		if user.Role == model.RoleSpeaker {
			if sp, ok := profiles[user.ID]; ok {
				complete := profile.Complete(sp.Organization, sp.Bio, sp.City, sp.Country)
				view.ProfileComplete = &complete
				visible := sp.Visible
				view.SpeakerVisible = &visible
			}
		}
		views = append(views, view)
	}
	return views, nil
}

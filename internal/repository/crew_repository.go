package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"vessel-ops/internal/model"
)

// CrewRepository handles CRUD for crew members.
type CrewRepository struct {
	db *gorm.DB
}

func NewCrewRepository(db *gorm.DB) *CrewRepository {
	return &CrewRepository{db: db}
}

// UpsertFromTelegram registers a crew member by TelegramID or refreshes their profile.
// The vessel assignment is never touched here; only AssignVessel changes it.
func (r *CrewRepository) UpsertFromTelegram(ctx context.Context, telegramID int64, firstName, lastName, username string) (*model.CrewMember, error) {
	db := r.db.WithContext(ctx)
	profile := model.CrewMember{
		TelegramID: telegramID,
		FirstName:  firstName,
		LastName:   lastName,
		Username:   username,
	}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "telegram_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"first_name", "last_name", "username", "updated_at"}),
	}).Create(&profile).Error
	if err != nil {
		return nil, fmt.Errorf("upsert crew member: %w", err)
	}

	var member model.CrewMember
	if err := db.Where("telegram_id = ?", telegramID).First(&member).Error; err != nil {
		return nil, fmt.Errorf("load crew member: %w", err)
	}
	return &member, nil
}

// AssignVessel attaches the member to a vessel, replacing any previous assignment.
func (r *CrewRepository) AssignVessel(ctx context.Context, member *model.CrewMember, vesselID string) error {
	if err := r.db.WithContext(ctx).Model(member).Update("vessel_id", vesselID).Error; err != nil {
		return fmt.Errorf("assign vessel: %w", err)
	}
	member.VesselID = &vesselID
	return nil
}

func (r *CrewRepository) ListAll(ctx context.Context) ([]model.CrewMember, error) {
	var members []model.CrewMember
	if err := r.db.WithContext(ctx).Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

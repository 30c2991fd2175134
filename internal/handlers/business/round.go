package business

import (
	"fmt"

	"launchcontrol/internal/models"

	"gorm.io/gorm"
)

// GetRound loads a round by ID, mapping missing rows onto ErrNotFound.
func GetRound(db *gorm.DB, roundID uint) (*models.Round, error) {
	var round models.Round
	if err := db.First(&round, roundID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: round %d", ErrNotFound, roundID)
		}
		return nil, err
	}
	return &round, nil
}

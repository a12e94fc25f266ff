package linking

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ManuelReschke/LinkFox/app/models"
)

// Repository provides the DB operations used by the linking service.
type Repository interface {
	// UpsertAccount creates or updates the account keyed on
	// (user_id, provider, provider_account_id) and reloads it afterwards so
	// ID and timestamps are populated.
	UpsertAccount(account *models.Account) error
	FindAccountsByUser(userID uint) ([]models.Account, error)
	SaveAccount(account *models.Account) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a linking repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) UpsertAccount(account *models.Account) error {
	if err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "user_id"},
			{Name: "provider"},
			{Name: "provider_account_id"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"provider_display_name",
			"access_token",
			"access_token_secret",
			"refresh_token",
			"expires_at",
			"updated_at",
		}),
	}).Create(account).Error; err != nil {
		return err
	}

	return r.db.Where("user_id = ? AND provider = ? AND provider_account_id = ?",
		account.UserID, account.Provider, account.ProviderAccountID).
		First(account).Error
}

func (r *gormRepository) FindAccountsByUser(userID uint) ([]models.Account, error) {
	var accounts []models.Account
	err := r.db.Where("user_id = ?", userID).Order("provider, provider_account_id").Find(&accounts).Error
	return accounts, err
}

func (r *gormRepository) SaveAccount(account *models.Account) error {
	return r.db.Save(account).Error
}

package models

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Client is a participant the practice delivers therapy services to.
// Each client belongs to the staff member who manages their plans.
type Client struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	UUID        string         `gorm:"type:char(36) CHARACTER SET utf8 COLLATE utf8_bin;uniqueIndex;not null" json:"uuid"`
	UserID      uint           `gorm:"index" json:"user_id"`
	User        User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	FirstName   string         `gorm:"type:varchar(100);not null" json:"first_name" validate:"required,min=1,max=100"`
	LastName    string         `gorm:"type:varchar(100);not null" json:"last_name" validate:"required,min=1,max=100"`
	NDISNumber  string         `gorm:"type:varchar(9);uniqueIndex" json:"ndis_number" validate:"required,len=9,numeric"`
	DateOfBirth *time.Time     `gorm:"type:date;default:null" json:"date_of_birth"`
	Email       string         `gorm:"type:varchar(200);default:null" json:"email" validate:"omitempty,email,max=200"`
	Phone       string         `gorm:"type:varchar(30);default:null" json:"phone" validate:"max=30"`
	Notes       string         `gorm:"type:text" json:"notes" validate:"max=2000"`
	IsArchived  bool           `gorm:"default:false" json:"is_archived"`
	Plans       []BudgetPlan   `gorm:"foreignKey:ClientID" json:"plans,omitempty"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate assigns the public UUID on first insert.
func (c *Client) BeforeCreate(tx *gorm.DB) error {
	if c.UUID == "" {
		c.UUID = uuid.New().String()
	}
	return nil
}

func (c *Client) Validate() error {
	v := validator.New()

	return v.Struct(c)
}

// FullName returns the display name used in lists and notifications.
func (c *Client) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// ActivePlan loads the client's currently active budget plan, or nil
// when no plan is marked active.
func (c *Client) ActivePlan(db *gorm.DB) (*BudgetPlan, error) {
	var plan BudgetPlan
	err := db.Where("client_id = ? AND is_active = ?", c.ID, true).First(&plan).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &plan, nil
}

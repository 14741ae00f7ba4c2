package models

import (
	"encoding/json"
	"fmt"
	"time"

	"pi-monitor/internal/incident"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Delivery is one notification attempt to one recipient. Health state itself
// is never persisted; only what was sent, to whom, and whether it went out.
type Delivery struct {
	ID        string        `json:"id" gorm:"primaryKey"`
	CycleID   string        `json:"cycle_id,omitempty" gorm:"index"`
	Kind      incident.Kind `json:"kind" gorm:"index"`
	Channel   string        `json:"channel"`
	Recipient string        `json:"recipient"`
	Subject   string        `json:"subject"`
	Body      string        `json:"body"`
	Delivered bool          `json:"delivered" gorm:"index"`
	Error     string        `json:"error,omitempty"`
	CreatedAt time.Time     `json:"created_at" gorm:"index"`
}

type Response struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (d *Delivery) BeforeCreate(tx *gorm.DB) (err error) {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}

	return nil
}

func (r Response) Print() {
	data, err := json.Marshal(r)

	if err != nil {
		log.Error().Err(err).Msg("error serializing response")
		return
	}

	fmt.Println(string(data))
}

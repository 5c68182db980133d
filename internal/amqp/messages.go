package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"gasdash/internal/core"
)

// SalesImportMessage asks a worker to import the sales of one vehicle's
// delivery sheets into inventory.
type SalesImportMessage struct {
	ID          string       `json:"id"`
	Vehicle     core.Vehicle `json:"vehicle"`
	RequestedAt time.Time    `json:"requested_at"`
}

func NewSalesImportMessage(vehicle core.Vehicle) *SalesImportMessage {
	return &SalesImportMessage{
		ID:          uuid.NewString(),
		Vehicle:     vehicle,
		RequestedAt: time.Now().UTC(),
	}
}

func (m *SalesImportMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// SalesImportMessageFromJSON decodes a message and rejects unknown vehicles.
func SalesImportMessageFromJSON(data []byte) (*SalesImportMessage, error) {
	var msg SalesImportMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if !msg.Vehicle.IsValid() {
		return nil, fmt.Errorf("%w: %q", core.ErrInvalidVehicle, string(msg.Vehicle))
	}
	return &msg, nil
}

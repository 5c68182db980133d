package sheets

import (
	"context"

	"gasdash/internal/core"
)

// Ports for outbound adapters.
type (
	// DeliveryReader loads every delivery row of one vehicle's sheets.
	DeliveryReader interface {
		ReadDeliveries(ctx context.Context, vehicle core.Vehicle) ([]core.Delivery, error)
	}
)

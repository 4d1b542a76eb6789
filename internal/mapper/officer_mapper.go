package mapper

import (
	"fulfillment-be/internal/assignment"
	"fulfillment-be/internal/handler/model"
	"fulfillment-be/internal/officer"
)

func MapOfficer(o *officer.Officer) *model.Officer {
	return &model.Officer{
		UserID:             o.UserID,
		Name:               o.Name,
		Email:              o.Email,
		AvailabilityStatus: string(o.AvailabilityStatus),
		MaxActiveOrders:    o.MaxActiveOrders,
		UpdatedAt:          o.UpdatedAt,
	}
}

func MapWorkloads(ws []assignment.Workload) []*model.Workload {
	res := make([]*model.Workload, 0, len(ws))
	for _, w := range ws {
		res = append(res, &model.Workload{
			OfficerID:          w.OfficerID,
			Name:               w.Name,
			Email:              w.Email,
			AvailabilityStatus: string(w.AvailabilityStatus),
			MaxActiveOrders:    w.MaxActiveOrders,
			ActiveOrders:       w.ActiveOrders,
			HasCapacity:        w.HasCapacity,
		})
	}
	return res
}

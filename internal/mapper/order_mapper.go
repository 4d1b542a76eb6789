package mapper

import (
	"fulfillment-be/internal/assignment"
	"fulfillment-be/internal/handler/model"
	"fulfillment-be/internal/order"
)

func MapItem(it order.OrderItem) *model.OrderItem {
	return &model.OrderItem{
		ID:              it.ID,
		VariantID:       it.VariantID,
		VariantName:     it.VariantName,
		Quantity:        it.Quantity,
		Price:           it.Price,
		Status:          string(it.Status),
		StatusNote:      it.StatusNote,
		StatusUpdatedAt: it.StatusUpdatedAt,
		StatusUpdatedBy: it.StatusUpdatedBy,
	}
}

func MapAssignment(s *assignment.Status) *model.Assignment {
	if s == nil {
		return nil
	}
	return &model.Assignment{
		OrderNumber:             s.OrderNumber,
		OrderStatus:             string(s.OrderStatus),
		AssignmentStatus:        string(s.AssignmentStatus),
		AssignedOfficerID:       s.AssignedOfficerID,
		AssignedAt:              s.AssignedAt,
		AssignmentRespondedAt:   s.AssignmentRespondedAt,
		AssignmentNotes:         s.AssignmentNotes,
		RejectionReason:         s.RejectionReason,
		ReassignmentAttempts:    s.ReassignmentAttempts,
		NeedsManualIntervention: s.NeedsManualIntervention,
	}
}

func MapOrder(o *order.Order) *model.Order {
	if o == nil {
		return nil
	}
	items := make([]*model.OrderItem, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, MapItem(it))
	}
	return &model.Order{
		ID:            o.ID,
		OrderNumber:   o.Number,
		CustomerName:  o.CustomerName,
		CustomerEmail: o.CustomerEmail,
		TotalAmount:   o.TotalAmount,
		Status:        string(o.Status),
		Assignment:    MapAssignment(assignment.StatusOf(o)),
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
		Items:         items,
	}
}

func MapOrders(orders []*order.Order) []*model.Order {
	res := make([]*model.Order, 0, len(orders))
	for _, o := range orders {
		res = append(res, MapOrder(o))
	}
	return res
}

func MapOutcome(out *assignment.Outcome) *model.AutoAssignResult {
	msg := out.Reason
	if out.Assigned {
		msg = "order assigned"
	}
	return &model.AutoAssignResult{
		Assigned:                out.Assigned,
		OfficerID:               out.OfficerID,
		NeedsManualIntervention: out.NeedsManualIntervention,
		Message:                 msg,
		Order:                   MapOrder(out.Order),
	}
}

func MapBulkResult(r *order.BulkResult) *model.BulkItemResult {
	results := make([]*model.ItemResult, 0, len(r.Results))
	for _, ir := range r.Results {
		res := &model.ItemResult{ItemID: ir.ItemID, Success: ir.Success, Message: ir.Message}
		if ir.Item != nil {
			res.Item = MapItem(*ir.Item)
		}
		results = append(results, res)
	}
	return &model.BulkItemResult{
		Total:       r.Total,
		Succeeded:   r.Succeeded,
		Failed:      r.Failed,
		OrderStatus: string(r.OrderStatus),
		Results:     results,
	}
}

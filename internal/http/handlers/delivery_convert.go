package handlers

import "github.com/feiralivre/fulfillment/internal/domain"

func claimResultToResponse(res domain.ClaimResult) claimDeliveryResponse {
	return claimDeliveryResponse{
		AssignmentID: res.AssignmentID.String(),
		OrderID:      res.OrderID.String(),
		OrderCode:    res.OrderCode,
		DriverID:     res.DriverID,
		Status:       string(res.Status),
		Reclaimed:    res.Reclaimed,
	}
}

func unassignResultToResponse(res domain.UnassignResult) unassignDeliveryResponse {
	return unassignDeliveryResponse{
		OrderID:  res.OrderID.String(),
		DriverID: res.DriverID,
		Status:   res.Status,
	}
}

func assignmentToResponse(a domain.DeliveryAssignment) assignmentDTO {
	return assignmentDTO{
		ID:            a.ID.String(),
		OrderID:       a.OrderID.String(),
		OrderCode:     a.OrderCode,
		DriverID:      a.DriverID,
		Status:        string(a.Status),
		RecipientName: a.RecipientName,
		DeliveredAt:   a.DeliveredAt,
		CreatedAt:     a.CreatedAt,
	}
}

func assignmentsToResponse(list []domain.DeliveryAssignment) []assignmentDTO {
	out := make([]assignmentDTO, 0, len(list))
	for _, a := range list {
		out = append(out, assignmentToResponse(a))
	}
	return out
}

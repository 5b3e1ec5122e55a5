package handlers

import "github.com/feiralivre/fulfillment/internal/domain"

func (r createDriverRequest) toModel() *domain.Driver {
	return &domain.Driver{
		Name:   r.Name,
		Phone:  r.Phone,
		Status: r.Status,
	}
}

func (r updateDriverRequest) toModel() domain.PartialDriverUpdate {
	return domain.PartialDriverUpdate{
		ID:     r.ID,
		Name:   r.Name,
		Phone:  r.Phone,
		Status: r.Status,
	}
}

func modelToResponse(d domain.Driver) driverDTO {
	return driverDTO{
		ID:     d.ID,
		Name:   d.Name,
		Phone:  d.Phone,
		Status: d.Status,
	}
}

func modelsToResponse(list []domain.Driver) []driverDTO {
	out := make([]driverDTO, 0, len(list))
	for _, d := range list {
		out = append(out, modelToResponse(d))
	}
	return out
}

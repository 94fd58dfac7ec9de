package api

import (
	"github.com/phrazzld/loyalty-api/internal/domain"
	"github.com/phrazzld/loyalty-api/internal/service"
)

// RegisterOwnerRequest defines the payload for POST /api/owners.
type RegisterOwnerRequest struct {
	Name  string `json:"name"  validate:"required,max=200"`
	Email string `json:"email" validate:"required,email,max=254"`
}

// MoneyPurchaseRequest defines the payload for a money purchase.
// Pence is a pointer so that an explicit zero reaches the ledger. The bound
// is domain.MaxPoints worth of pence either way.
type MoneyPurchaseRequest struct {
	Pence *int `json:"pence" validate:"required,gte=-100000000000000,lte=100000000000000"`
}

// PointsPurchaseRequest defines the payload for a points purchase.
// Points are bounded by domain.MaxPoints either way.
type PointsPurchaseRequest struct {
	Points *int `json:"points" validate:"required,gte=-1000000000000,lte=1000000000000"`
}

// CardResponse is the JSON form of a loyalty card.
type CardResponse struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Points int    `json:"points"`
	Uses   int    `json:"uses"`
}

// OwnerResponse is the JSON form of a card owner.
type OwnerResponse struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// StatsResponse is the JSON form of the ledger summary.
type StatsResponse struct {
	Customers   int            `json:"customers"`
	TotalPoints int            `json:"total_points"`
	MostUsed    *OwnerResponse `json:"most_used"`
}

func cardToResponse(card domain.Card) CardResponse {
	owner := card.Owner()
	return CardResponse{
		Name:   owner.Name,
		Email:  owner.Email,
		Points: card.Points(),
		Uses:   card.Uses(),
	}
}

func statsToResponse(stats service.Stats) StatsResponse {
	resp := StatsResponse{
		Customers:   stats.Customers,
		TotalPoints: stats.TotalPoints,
	}
	if stats.MostUsed != nil {
		resp.MostUsed = &OwnerResponse{
			Name:  stats.MostUsed.Name,
			Email: stats.MostUsed.Email,
		}
	}
	return resp
}

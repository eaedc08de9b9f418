package jwttoken

import (
	"rfdist/internal/platform/middleware"
)

// MiddlewareAdapter adapts JWTService to the middleware.TokenValidator
// interface so the middleware package stays free of JWT specifics.
type MiddlewareAdapter struct {
	svc *JWTService
}

func NewMiddlewareAdapter(svc *JWTService) *MiddlewareAdapter {
	return &MiddlewareAdapter{svc: svc}
}

func (a *MiddlewareAdapter) ValidateToken(tokenString string) (*middleware.OperatorClaims, error) {
	claims, err := a.svc.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return &middleware.OperatorClaims{
		OperatorID: claims.OperatorID,
		Username:   claims.Username,
	}, nil
}

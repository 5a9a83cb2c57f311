package jwttoken

import (
	id "volunteerhub/pkg/domain"
)

// JWTServiceAdapter satisfies the auth middleware's ActorValidator.
type JWTServiceAdapter struct {
	service *JWTService
}

func NewJWTServiceAdapter(service *JWTService) *JWTServiceAdapter {
	return &JWTServiceAdapter{service: service}
}

func (a *JWTServiceAdapter) ValidateToken(tokenString string) (id.Actor, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return id.Actor{}, err
	}
	return claims.Actor()
}

package model

import "github.com/golang-jwt/jwt"

type UserClaims struct {
	UserID   int64  `json:"user_id"`
	UserName string `json:"user_name"`
	jwt.StandardClaims
}

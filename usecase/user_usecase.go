package usecase

import (
	"context"
	"time"

	"vidmarket/domain/dto"
	"vidmarket/domain/model"
	"vidmarket/domain/repository"
	"vidmarket/infrastructure/configuration"
	"vidmarket/infrastructure/logger"
	"vidmarket/infrastructure/utils"
)

const loginTokenTTL = 24 * time.Hour

type IUserUsecase interface {
	Login(ctx context.Context, req model.ReqLogin) dto.Res
	Register(ctx context.Context, req model.ReqRegister) dto.Res
}

type userUsecase struct {
	userRepo repository.IUser
}

func NewUserUsecase(userRepo repository.IUser) IUserUsecase {
	return &userUsecase{userRepo: userRepo}
}

func (u *userUsecase) Login(ctx context.Context, req model.ReqLogin) dto.Res {
	var res dto.Res

	user, err := u.userRepo.GetByUserName(ctx, req.UserName)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while getting user")
		res.ResponseCode = "401"
		res.ResponseMessage = "Invalid username or password"
		return res
	}
	if user.Password != req.Password {
		res.ResponseCode = "401"
		res.ResponseMessage = "Invalid username or password"
		return res
	}

	payload := map[string]interface{}{
		"user_id":   user.ID,
		"user_name": user.UserName,
		"exp":       utils.GetCurrentTime().Add(loginTokenTTL).Unix(),
	}
	token, err := utils.GenerateToken(payload, configuration.C.App.SecretKey)
	if err != nil {
		res.ResponseCode = "500"
		res.ResponseMessage = "General error"
		return res
	}

	res.ResponseCode = "200"
	res.ResponseMessage = "Success"
	res.Data = map[string]interface{}{
		"token": token,
		"user":  user,
	}
	return res
}

func (u *userUsecase) Register(ctx context.Context, req model.ReqRegister) dto.Res {
	var res dto.Res

	existing, err := u.userRepo.GetByUserName(ctx, req.UserName)
	if err == nil && existing.ID != 0 {
		res.ResponseCode = "409"
		res.ResponseMessage = "Username already taken"
		return res
	}

	now := utils.GetCurrentTime()
	user := model.User{
		Name:      req.Name,
		UserName:  req.UserName,
		Password:  req.Password,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := u.userRepo.CreateUser(ctx, user); err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while creating user")
		res.ResponseCode = "500"
		res.ResponseMessage = "General error"
		return res
	}

	res.ResponseCode = "200"
	res.ResponseMessage = "Success"
	return res
}

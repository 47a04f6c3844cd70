package controller

import (
	"errors"
	"knowledgebot/internal/service"
	"knowledgebot/internal/util"

	"github.com/gin-gonic/gin"
)

type UserController struct {
	UserService *service.UserService
}

func NewUserController(userService *service.UserService) *UserController {
	return &UserController{UserService: userService}
}

// SyncUser godoc
// @Summary 同步 Telegram 用户
// @Description 网关在收到消息时上报用户信息，服务端建档并刷新活跃时间
// @Tags 用户
// @Accept json
// @Produce json
// @Param body body service.TelegramIdentity true "Telegram 用户信息"
// @Success 200 {object} util.Response
// @Failure 403 {object} util.Response "用户被封禁"
// @Router /gateway/users/sync [post]
func (c *UserController) SyncUser(ctx *gin.Context) {
	var identity service.TelegramIdentity
	if err := ctx.ShouldBindJSON(&identity); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	user, err := c.UserService.SyncFromTelegram(identity)
	if err != nil {
		if errors.Is(err, util.ErrUserBlocked) {
			util.Forbidden(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{
		"id":         user.ID,
		"telegramId": user.TelegramID,
		"isAdmin":    user.IsAdmin,
	})
}

package controller

import (
	"errors"
	"knowledgebot/internal/service"
	"knowledgebot/internal/util"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type QuizController struct {
	QuizService *service.QuizService
	UserService *service.UserService
}

func NewQuizController(quizService *service.QuizService, userService *service.UserService) *QuizController {
	return &QuizController{
		QuizService: quizService,
		UserService: userService,
	}
}

// StartQuizRequest 开始测验请求
type StartQuizRequest struct {
	TelegramID int64  `json:"telegramId" binding:"required"`
	TestID     string `json:"testId" binding:"required"`
}

// SubmitAnswerRequest 提交答案请求
type SubmitAnswerRequest struct {
	TelegramID int64          `json:"telegramId" binding:"required"`
	TestID     string         `json:"testId" binding:"required"`
	QuestionID string         `json:"questionId" binding:"required"`
	Answer     service.Answer `json:"answer" binding:"required"`
}

// CancelQuizRequest 取消测验请求
type CancelQuizRequest struct {
	TelegramID int64  `json:"telegramId" binding:"required"`
	TestID     string `json:"testId" binding:"required"`
}

func (c *QuizController) resolveUser(ctx *gin.Context, telegramID int64) (uint, bool) {
	user, err := c.UserService.GetByTelegramID(telegramID)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrUserNotFound):
			util.NotFound(ctx, "user not found")
		case errors.Is(err, util.ErrUserBlocked):
			util.Forbidden(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return 0, false
	}
	return user.ID, true
}

// ListTests godoc
// @Summary 可用测验列表
// @Description 分页返回当前可参加的测验
// @Tags 测验
// @Produce json
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Success 200 {object} util.PageResponse
// @Router /gateway/quiz/tests [get]
func (c *QuizController) ListTests(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "10"))

	tests, total, err := c.QuizService.ListTests(page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.SuccessPage(ctx, tests, total, page, limit)
}

// StartQuiz godoc
// @Summary 开始测验
// @Description 为用户开启新的测验会话并返回第一题
// @Tags 测验
// @Accept json
// @Produce json
// @Param body body StartQuizRequest true "开始测验参数"
// @Success 200 {object} util.Response{data=service.QuestionPayload}
// @Failure 404 {object} util.Response "测验不存在"
// @Failure 409 {object} util.Response "已有进行中的会话"
// @Router /gateway/quiz/start [post]
func (c *QuizController) StartQuiz(ctx *gin.Context) {
	var req StartQuizRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	userID, ok := c.resolveUser(ctx, req.TelegramID)
	if !ok {
		return
	}

	question, err := c.QuizService.StartQuiz(userID, req.TestID)
	if err != nil {
		c.writeQuizError(ctx, err)
		return
	}

	c.UserService.LogAction(userID, "quiz_start", req.TestID)
	util.Success(ctx, question)
}

// SubmitAnswer godoc
// @Summary 提交答案
// @Description 提交当前题目的答案，返回下一题或最终结果
// @Tags 测验
// @Accept json
// @Produce json
// @Param body body SubmitAnswerRequest true "答案"
// @Success 200 {object} util.Response{data=service.SubmitOutcome}
// @Failure 409 {object} util.Response "题目不匹配"
// @Failure 410 {object} util.Response "会话已过期"
// @Router /gateway/quiz/answer [post]
func (c *QuizController) SubmitAnswer(ctx *gin.Context) {
	var req SubmitAnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	userID, ok := c.resolveUser(ctx, req.TelegramID)
	if !ok {
		return
	}

	outcome, err := c.QuizService.SubmitAnswer(userID, req.TestID, req.QuestionID, req.Answer)
	if err != nil {
		c.writeQuizError(ctx, err)
		return
	}

	if outcome.Result != nil {
		c.UserService.LogAction(userID, "quiz_finish", req.TestID)
	}
	util.Success(ctx, outcome)
}

// CancelQuiz godoc
// @Summary 取消测验
// @Description 关闭进行中的会话，不记录成绩
// @Tags 测验
// @Accept json
// @Produce json
// @Param body body CancelQuizRequest true "取消参数"
// @Success 200 {object} util.Response
// @Router /gateway/quiz/cancel [post]
func (c *QuizController) CancelQuiz(ctx *gin.Context) {
	var req CancelQuizRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	userID, ok := c.resolveUser(ctx, req.TelegramID)
	if !ok {
		return
	}

	c.QuizService.CancelQuiz(userID, req.TestID)
	c.UserService.LogAction(userID, "quiz_cancel", req.TestID)
	util.Success(ctx, gin.H{"cancelled": true})
}

// History godoc
// @Summary 测验历史
// @Description 返回用户的历史成绩，可按测验过滤
// @Tags 测验
// @Produce json
// @Param telegramId query int true "Telegram 用户 ID"
// @Param testId query string false "测验 ID"
// @Param limit query int false "数量"
// @Param offset query int false "偏移"
// @Success 200 {object} util.Response{data=[]service.AttemptPayload}
// @Router /gateway/quiz/history [get]
func (c *QuizController) History(ctx *gin.Context) {
	telegramID, err := strconv.ParseInt(ctx.Query("telegramId"), 10, 64)
	if err != nil {
		util.BadRequest(ctx, "invalid telegramId")
		return
	}

	userID, ok := c.resolveUser(ctx, telegramID)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(ctx.DefaultQuery("offset", "0"))

	attempts, err := c.QuizService.History(userID, ctx.Query("testId"), limit, offset)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, attempts)
}

// TestStats godoc
// @Summary 测验统计
// @Description 聚合某测验的成绩统计
// @Tags 管理
// @Produce json
// @Param id path string true "测验 ID"
// @Success 200 {object} util.Response{data=repository.TestStats}
// @Failure 404 {object} util.Response "测验不存在"
// @Router /api/admin/tests/{id}/stats [get]
func (c *QuizController) TestStats(ctx *gin.Context) {
	stats, err := c.QuizService.Stats(ctx.Param("id"))
	if err != nil {
		if errors.Is(err, util.ErrTestNotFound) {
			util.NotFound(ctx, "test not found")
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, stats)
}

// TestAttempts godoc
// @Summary 测验成绩列表
// @Description 返回某测验的全部成绩记录
// @Tags 管理
// @Produce json
// @Param id path string true "测验 ID"
// @Param limit query int false "数量"
// @Param offset query int false "偏移"
// @Success 200 {object} util.Response{data=[]service.AttemptPayload}
// @Router /api/admin/tests/{id}/attempts [get]
func (c *QuizController) TestAttempts(ctx *gin.Context) {
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(ctx.DefaultQuery("offset", "0"))

	attempts, err := c.QuizService.AttemptsByTest(ctx.Param("id"), limit, offset)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, attempts)
}

func (c *QuizController) writeQuizError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrTestNotFound):
		util.NotFound(ctx, "test not found")
	case errors.Is(err, util.ErrTestInactive):
		util.BadRequest(ctx, "test is not active")
	case errors.Is(err, util.ErrNoQuestions):
		util.BadRequest(ctx, "test has no questions")
	case errors.Is(err, util.ErrAlreadyInProgress):
		util.Conflict(ctx, "quiz already in progress")
	case errors.Is(err, util.ErrSessionExpired):
		util.Error(ctx, http.StatusGone, "quiz session expired")
	case errors.Is(err, util.ErrQuestionMismatch):
		util.Conflict(ctx, "question does not match current position")
	case errors.Is(err, util.ErrInvalidAnswer):
		util.BadRequest(ctx, "answer does not fit the question type")
	case errors.Is(err, util.ErrInvalidTest):
		util.BadRequest(ctx, "test cannot be scored")
	case errors.Is(err, util.ErrPersistenceFailed):
		util.Error(ctx, http.StatusServiceUnavailable, "result not saved, retry the last answer")
	default:
		util.LogInternalError(ctx, err)
	}
}

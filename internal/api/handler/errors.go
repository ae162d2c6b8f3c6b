package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xszhu002/ke-cheng-biao/internal/service"
	"github.com/xszhu002/ke-cheng-biao/pkg/response"
)

// 业务错误码
//
//	10xxx 通用  11xxx 教师  12xxx 学期  13xxx 课表  14xxx 课程  15xxx 任务  16xxx 周备注  17xxx 导入导出
const (
	codeValidation      = 10001
	codeReconcileFailed = 13005
)

// handleCommonError 各模块未单独处理的错误按基础分类映射
func handleCommonError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNoBaseline):
		response.BadRequest(c, 13002, service.ErrNoBaseline.Error())
	case errors.Is(err, service.ErrValidation):
		response.BadRequest(c, codeValidation, err.Error())
	case errors.Is(err, service.ErrNotFound):
		response.NotFound(c, 10006, err.Error())
	case errors.Is(err, service.ErrConflict):
		response.Conflict(c, 10007, err.Error())
	case errors.Is(err, service.ErrReconcileFailed):
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, codeReconcileFailed, service.ErrReconcileFailed.Error())
	default:
		_ = c.Error(err)
		response.InternalError(c)
	}
}

// bindFailed 请求体绑定失败
func bindFailed(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		response.Error(c, http.StatusRequestEntityTooLarge, 10005, "请求体过大")
		return
	}
	response.BadRequest(c, codeValidation, "参数校验失败")
}

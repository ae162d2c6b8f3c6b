package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/xszhu002/ke-cheng-biao/pkg/response"
)

// MustParamInt 读取整数路径参数；解析失败时写入 400 响应并返回 false，调用方应直接 return
func MustParamInt(c *gin.Context, name string) (int, bool) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil {
		response.BadRequest(c, 10001, name+" 必须为整数")
		return 0, false
	}
	return v, true
}

// queryBool 读取布尔查询参数，缺省或无法解析时为 false
func queryBool(c *gin.Context, name string) bool {
	v, err := strconv.ParseBool(c.Query(name))
	return err == nil && v
}

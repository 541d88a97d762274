package ginutil

import (
	"github.com/gin-gonic/gin"

	"github.com/wushian/fireasy2/ws"
)

// MountWebSocket 把websocket服务挂到路由上
// 升级和会话管理由srv负责，gin只做路由和中间件；
// 这种用法下不要再调srv.Start
func MountWebSocket(router *gin.Engine, pattern string, srv *ws.Server) {
	router.GET(pattern, gin.WrapH(srv.Handler()))
}

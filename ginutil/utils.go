package ginutil

import (
	"net/http"
	"net/http/pprof"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wushian/fireasy2/base/log"
)

/**
  *  @author tryao
  *  @date 2022/09/09 10:40
**/

// InitRouter 创建一个激活常用配置的router
// 这里没有注入prometheus，需要的话调用EnableMetrics
func InitRouter(allowHeaders ...string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(AccessLogHandler(true, "/metrics"))
	router.Use(RecoveryHandler())
	router.Use(CorsHandler(allowHeaders...))
	EnablePProf(router)
	EnableLogSwitch(router)
	return router
}

func CorsHandler(allowHeaders ...string) gin.HandlerFunc {
	headers := "Origin, Content-Type, Authorization"
	for _, h := range allowHeaders {
		headers += ", " + h
	}
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", headers)
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func EnablePProf(router *gin.Engine) {
	g := router.Group("/debug/pprof")
	g.GET("/", gin.WrapF(pprof.Index))
	g.GET("/cmdline", gin.WrapF(pprof.Cmdline))
	g.GET("/profile", gin.WrapF(pprof.Profile))
	g.GET("/symbol", gin.WrapF(pprof.Symbol))
	g.GET("/trace", gin.WrapF(pprof.Trace))
}

// EnableLogSwitch 运行时切换日志级别：PUT /debug/log?level=debug
func EnableLogSwitch(router *gin.Engine) {
	router.PUT("/debug/log", func(c *gin.Context) {
		level := log.Level(c.Query("level"))
		switch level {
		case log.LevelDebug, log.LevelInfo, log.LevelWarn, log.LevelError:
			log.ChangeLogLevel(level)
			c.String(http.StatusOK, "ok")
		default:
			c.String(http.StatusBadRequest, "unknown level")
		}
	})
}

// EnableMetrics 暴露prometheus指标
func EnableMetrics(router *gin.Engine) {
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

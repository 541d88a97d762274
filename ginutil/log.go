package ginutil

/**  gin日志的一些简单封装
  *  @author tryao
  *  @date 2022/09/09 10:12
**/

import (
	"bytes"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httputil"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/wushian/fireasy2/base/log"
)

//从http请求中复制出body，注意避免文件上传的场景
func peekBody(c *gin.Context) string {
	if (c.Request.Method == http.MethodPut || c.Request.Method == http.MethodPost) &&
		!lo.Contains(c.Request.Header["Content-Type"], "multipart/form-data") {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil && err != io.EOF {
			return ""
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))
		return string(body)
	}
	return ""
}

// AccessLogHandler 访问日志，按debug级别输出
func AccessLogHandler(withBody bool, skipPath ...string) gin.HandlerFunc {
	sp := make(map[string]bool, len(skipPath))
	for _, path := range skipPath {
		sp[path] = true
	}

	return func(c *gin.Context) {
		start := time.Now()
		// some evil middlewares modify this values
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery
		c.Next()

		if _, ok := sp[path]; ok {
			return
		}
		latency := time.Since(start)
		if len(c.Errors) > 0 {
			for _, e := range c.Errors.Errors() {
				log.Error(e)
			}
			return
		}
		txt := fmt.Sprintf("%s %s Q:%s ST:%d IP:%s UA:%s LAT:%s", c.Request.Method, path, query,
			c.Writer.Status(), c.ClientIP(), c.Request.UserAgent(), latency)
		if withBody {
			if body := peekBody(c); body != "" {
				txt += " BODY:" + body
			}
		}
		log.Debug(txt)
	}
}

func RecoveryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				// Check for a broken connection, as it is not really a
				// condition that warrants a panic stack trace.
				var brokenPipe bool
				if ne, ok := err.(*net.OpError); ok {
					if se, ok := ne.Err.(*os.SyscallError); ok {
						if strings.Contains(strings.ToLower(se.Error()), "broken pipe") ||
							strings.Contains(strings.ToLower(se.Error()), "connection reset by peer") {
							brokenPipe = true
						}
					}
				}

				httpRequest, _ := httputil.DumpRequest(c.Request, false)
				if brokenPipe {
					log.Error("panic when request %s, error:%s, req:%s", c.Request.URL.Path, err, httpRequest)
					// If the connection is dead, we can't write a status to it.
					_ = c.Error(err.(error)) // nolint: err check
					c.Abort()
					return
				}

				log.PanicStack("gin panic, request: "+string(httpRequest), err)
				c.AbortWithStatus(http.StatusInternalServerError)
			}
		}()
		c.Next()
	}
}

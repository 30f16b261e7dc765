package router

import (
	"context"
	"net"
	"net/http"
	"time"
)

// NewServer 创建 HTTP 服务器。
// 所有请求的 context 派生自同一个基础 context，Shutdown 时统一取消，
// SSE 等长连接因此能及时退出，不会拖到关闭超时
func NewServer(addr string, handler http.Handler) *http.Server {
	base, cancel := context.WithCancel(context.Background())
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return base },
	}
	srv.RegisterOnShutdown(cancel)
	return srv
}

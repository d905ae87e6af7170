package api

import (
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/LJTian/OilNewsHub/internal/storage"
	"github.com/gin-gonic/gin"
)

// Rebuilder 在后台启动一轮生成；已有一轮在跑时返回 false
type Rebuilder interface {
	Trigger() bool
}

type Server struct {
	store   *storage.Store
	rebuild Rebuilder
	metrics http.Handler

	user, pass string
}

// NewServer user/pass 为空时重建接口关闭
func NewServer(store *storage.Store, rebuild Rebuilder, metrics http.Handler, user, pass string) *Server {
	return &Server{store: store, rebuild: rebuild, metrics: metrics, user: user, pass: pass}
}

func (s *Server) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", s.health)
	if s.metrics != nil {
		r.GET("/metrics", gin.WrapH(s.metrics))
	}
	r.GET("/", s.index)

	v1 := r.Group("/api/v1")
	{
		v1.GET("/news", s.listNews)
		v1.POST("/rebuild", basicAuthMiddleware(s.user, s.pass), s.triggerRebuild)
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) index(c *gin.Context) {
	snap, ok := s.latest(c)
	if !ok {
		return
	}
	c.Header("Cache-Control", "no-cache")
	c.Data(http.StatusOK, "text/html; charset=utf-8", snap.HTML)
}

// listNews 返回与 news.json 相同的报告文档
func (s *Server) listNews(c *gin.Context) {
	snap, ok := s.latest(c)
	if !ok {
		return
	}
	c.Header("Cache-Control", "no-cache")
	c.Data(http.StatusOK, "application/json; charset=utf-8", snap.JSON)
}

func (s *Server) latest(c *gin.Context) (*storage.Snapshot, bool) {
	snap, err := s.store.Latest(c.Request.Context())
	if errors.Is(err, storage.ErrNoReport) {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"code":    "not_ready",
			"message": "report is being generated, retry later",
		})
		return nil, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "internal_error",
			"message": "internal server error",
		})
		return nil, false
	}
	return snap, true
}

func (s *Server) triggerRebuild(c *gin.Context) {
	if s.rebuild == nil || !s.rebuild.Trigger() {
		c.JSON(http.StatusConflict, gin.H{
			"code":    "busy",
			"message": "a rebuild is already in progress",
		})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{
		"code":    "accepted",
		"message": "rebuild started",
	})
}

// basicAuthMiddleware 保护会触发外部抓取的接口。
// 未配置 APP_BASIC_USER / APP_BASIC_PASS 时直接拒绝
func basicAuthMiddleware(user, pass string) gin.HandlerFunc {
	const realm = "Restricted"
	uBytes := []byte(user)
	pBytes := []byte(pass)

	return func(c *gin.Context) {
		if user == "" || pass == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"code":    "disabled",
				"message": "rebuild is not configured",
			})
			return
		}
		u, p, ok := c.Request.BasicAuth()
		if !ok ||
			subtle.ConstantTimeCompare([]byte(u), uBytes) != 1 ||
			subtle.ConstantTimeCompare([]byte(p), pBytes) != 1 {
			c.Header("WWW-Authenticate", `Basic realm="`+realm+`"`)
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.Next()
	}
}

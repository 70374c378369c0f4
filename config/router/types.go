package router

import (
	"github.com/gin-gonic/gin"
)

type RequestContext = gin.Context

type MiddlewareFunc = gin.HandlerFunc

type HandlerFunction func(*RequestContext) *ServiceResult

// ServiceResult is what every handler returns. It is written as the JSON
// envelope unless Body is set, in which case Body goes out verbatim with
// ContentType.
type ServiceResult struct {
	StatusCode  int    `json:"code"`
	Data        any    `json:"data"`
	Message     string `json:"message"`
	ContentType string `json:"-"`
	Body        []byte `json:"-"`
}

type RateLimitResponse struct {
	Limit      int    `json:"limit"`
	Window     string `json:"window"`
	RetryAfter string `json:"retry_after"`
}

type RESTController struct {
	name         string
	mountPoint   string
	handlerCount int
	prepare      func(*RouterService, *RESTController)
}

func (result *ServiceResult) ToJSON() gin.H {
	return gin.H{
		"code":    result.StatusCode,
		"data":    result.Data,
		"message": result.Message,
	}
}

func (result *ServiceResult) write(c *gin.Context) {
	if result.Body != nil {
		c.Data(result.StatusCode, result.ContentType, result.Body)
		return
	}
	c.JSON(result.StatusCode, result.ToJSON())
}

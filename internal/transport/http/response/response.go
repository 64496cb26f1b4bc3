package response

import "github.com/gin-gonic/gin"

// ErrorBody is the shape of every non-2xx reply.
type ErrorBody struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

func Error(c *gin.Context, httpStatus int, message string) {
	c.JSON(httpStatus, ErrorBody{Message: message})
}

// Failure reports an internal error together with its cause.
func Failure(c *gin.Context, httpStatus int, message string, err error) {
	body := ErrorBody{Message: message}
	if err != nil {
		body.Error = err.Error()
	}
	c.JSON(httpStatus, body)
}

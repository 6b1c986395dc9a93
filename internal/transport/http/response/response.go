package response

import "github.com/gin-gonic/gin"

type ErrorBody struct {
	Error string `json:"error"`
}

// UpstreamErrorBody always carries details, even when the upstream body was empty.
type UpstreamErrorBody struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

func OK(c *gin.Context, data interface{}) {
	c.JSON(200, data)
}

func Error(c *gin.Context, httpStatus int, message string) {
	c.JSON(httpStatus, ErrorBody{Error: message})
}

func ErrorWithDetails(c *gin.Context, httpStatus int, message, details string) {
	c.JSON(httpStatus, UpstreamErrorBody{Error: message, Details: details})
}

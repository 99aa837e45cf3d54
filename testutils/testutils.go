package testutils

import (
	"github.com/gin-gonic/gin"
)

func SetupTestRouter() *gin.Engine {
	return gin.New()
}

func InitTestMain() {
	gin.SetMode(gin.TestMode)
}

package api

import (
	"net/http"

	"lingoflow/internal/dto/resp"
	"lingoflow/pkg/lang"

	"github.com/gin-gonic/gin"
)

func ListLanguages(c *gin.Context) {
	c.JSON(http.StatusOK, resp.LanguagesResponse{Languages: lang.Languages})
}

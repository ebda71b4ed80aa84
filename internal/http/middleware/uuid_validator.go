package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// UUIDValidator отклоняет запрос, если хотя бы один из параметров пути не UUID.
// Использование: router.PATCH("/admin/users/:id/status", UUIDValidator("id"), handler.ChangeStatus)
func UUIDValidator(paramNames ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, name := range paramNames {
			if _, err := uuid.Parse(c.Param(name)); err != nil {
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
					"error": "параметр " + name + " должен быть валидным UUID",
				})
				return
			}
		}

		c.Next()
	}
}

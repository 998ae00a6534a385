package middleware

import (
	"net/http"

	"barangay-payroll/internal/shared/apperror"
	"barangay-payroll/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ExtractUserID checks the authenticated user id and republishes it as user_id_validated.
func ExtractUserID() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		userID, exists := ctx.Get("user_id")
		if !exists {
			response.Abort(ctx, http.StatusUnauthorized, apperror.CodeUnauthorized, "User is not authenticated", nil)
			return
		}

		userIDStr, ok := userID.(string)
		if !ok || userIDStr == "" {
			response.Abort(ctx, http.StatusUnauthorized, apperror.CodeUnauthorized, "Invalid user_id format", nil)
			return
		}
		if _, err := uuid.Parse(userIDStr); err != nil {
			response.Abort(ctx, http.StatusUnauthorized, apperror.CodeUnauthorized, "Invalid user_id format", nil)
			return
		}

		ctx.Set("user_id_validated", userIDStr)
		ctx.Next()
	}
}

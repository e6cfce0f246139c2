package respond

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// ValidationDetails maps each failed field to the rule it broke, or nil when
// err is not a validation error (malformed JSON, for example).
func ValidationDetails(err error) map[string]string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return nil
	}
	out := make(map[string]string, len(ve))
	for _, fe := range ve {
		out[fe.Field()] = fe.Tag()
	}
	return out
}

// BindError writes a 400 for a failed ShouldBind call.
func BindError(c *gin.Context, code, message string, err error) {
	var details any
	if fields := ValidationDetails(err); fields != nil {
		details = gin.H{"fields": fields}
	}
	Error(c, http.StatusBadRequest, code, message, details)
}

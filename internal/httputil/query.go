package httputil

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ParseLimit reads an integer query parameter bounded to [1, max], falling back to def
// when the parameter is absent.
func ParseLimit(c *gin.Context, key string, def, max int) (int, error) {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		return def, nil
	}

	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 || limit > max {
		return 0, fmt.Errorf("invalid %s parameter: must be between 1 and %d", key, max)
	}
	return limit, nil
}

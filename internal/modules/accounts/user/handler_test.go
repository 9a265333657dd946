package user

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestRegisterRoutesWiresSessionEndpoints(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	h := NewHandler(NewService(nil, nil))
	h.RegisterRoutes(r.Group("/api/v1"), func(c *gin.Context) { c.Next() })

	want := map[string]bool{
		http.MethodGet + " /api/v1/user/session":               false,
		http.MethodDelete + " /api/v1/user/session/all":        false,
		http.MethodDelete + " /api/v1/user/session/:sessionId": false,
	}
	for _, route := range r.Routes() {
		key := route.Method + " " + route.Path
		if _, ok := want[key]; ok {
			want[key] = true
			if route.HandlerFunc == nil {
				t.Errorf("%s has no handler", key)
			}
		}
	}
	for key, found := range want {
		if !found {
			t.Errorf("missing route %s", key)
		}
	}
}

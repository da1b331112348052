package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/feynman-ai/feynman-ai/pkg/utils"
)

func newJSONContext(t *testing.T, body string) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/chat", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c
}

// 匿名对话合法：user_id/tree_id 缺失不拒绝请求，只影响后续建卡
func TestChatRequestBindsWithoutOwner(t *testing.T) {
	c := newJSONContext(t, `{
		"message": "我懂了，reduce就是累加器模式",
		"history": [{"role": "user", "content": "什麼是 reduce"}],
		"node_context": {"id": "node-1", "label": "Reduce"}
	}`)

	var req ChatRequest
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		t.Fatalf("anonymous chat request should bind, got: %v", err)
	}
	if req.UserID != "" || req.TreeID != "" {
		t.Fatalf("expected empty owner fields, got %q/%q", req.UserID, req.TreeID)
	}
	if req.Message == "" || req.NodeContext.ID != "node-1" {
		t.Fatalf("unexpected bind result: %+v", req)
	}
}

func TestChatRequestRequiresMessage(t *testing.T) {
	c := newJSONContext(t, `{"user_id": "u1", "tree_id": "t1"}`)

	var req ChatRequest
	if err := utils.BindArgsWithGin(c, &req); err == nil {
		t.Fatal("expected binding error when message is missing")
	}
}

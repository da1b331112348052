package ai

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/api/googleapi"
)

func TestIsOverloaded(t *testing.T) {
	assert.False(t, IsOverloaded(nil))
	assert.False(t, IsOverloaded(errors.New("invalid argument")))

	assert.True(t, IsOverloaded(&googleapi.Error{Code: 503, Message: "Service Unavailable"}))
	assert.False(t, IsOverloaded(&googleapi.Error{Code: 400, Message: "Bad Request"}))

	// 包装后的错误也要能识别
	wrapped := fmt.Errorf("session.SendMessage: %w", &googleapi.Error{Code: 503})
	assert.True(t, IsOverloaded(wrapped))

	assert.True(t, IsOverloaded(errors.New("the model is overloaded, try again later")))
	assert.True(t, IsOverloaded(errors.New("rpc error: code = 503")))
}

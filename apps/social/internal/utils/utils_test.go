package utils

import (
	"errors"
	"strconv"
	"testing"

	"PostServer/consts"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestExtractErrorCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int32
	}{
		{name: "nil", err: nil, want: consts.CodeSuccess},
		{name: "biz_code_in_message", err: status.Error(codes.NotFound, strconv.Itoa(consts.CodePostNotFound)), want: consts.CodePostNotFound},
		{name: "plain_error", err: errors.New("boom"), want: consts.CodeInternalError},
		{name: "status_without_biz_code", err: status.Error(codes.PermissionDenied, "denied"), want: consts.CodePermissionDeny},
		{name: "deadline", err: status.Error(codes.DeadlineExceeded, "slow"), want: consts.CodeTimeoutError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractErrorCode(tt.err))
		})
	}
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, 401, HTTPStatus(consts.CodeTokenExpired))
	assert.Equal(t, 429, HTTPStatus(consts.CodeTooManyRequests))
	assert.Equal(t, 200, HTTPStatus(consts.CodeHandleTaken))
}

func TestHandleValidation(t *testing.T) {
	RegisterValidators()

	type form struct {
		Handle string `binding:"required,handle"`
	}
	tests := []struct {
		handle string
		ok     bool
	}{
		{handle: "alice_01", ok: true},
		{handle: "ab", ok: false},
		{handle: "Alice", ok: false},
		{handle: "this_handle_is_way_too_long", ok: false},
		{handle: "bad-dash", ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.handle, func(t *testing.T) {
			err := binding.Validator.ValidateStruct(&form{Handle: tt.handle})
			assert.Equal(t, tt.ok, err == nil)
		})
	}
}

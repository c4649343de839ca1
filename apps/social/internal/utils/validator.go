package utils

import (
	"regexp"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	handlePattern = regexp.MustCompile(`^[a-z0-9_]{3,20}$`)
	registerOnce  sync.Once
)

// RegisterValidators 向 gin 的 binding 引擎注册自定义校验标签
//   - handle: 小写字母、数字、下划线，长度 3-20
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("handle", validateHandle)
	})
}

func validateHandle(fl validator.FieldLevel) bool {
	return handlePattern.MatchString(fl.Field().String())
}

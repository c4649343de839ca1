package consts

// 通用错误码
const (
	CodeSuccess = 0 // 成功
)

// 客户端错误 (1xxxx)
const (
	CodeParamError       = 10001 // 参数验证失败
	CodeBodyError        = 10002 // 请求体格式错误
	CodeResourceNotFound = 10003 // 资源不存在
	CodeMethodNotAllowed = 10004 // 请求方法不允许
	CodeTooManyRequests  = 10005 // 请求过于频繁
	CodeBodyTooLarge     = 10006 // 请求体过大
)

// 认证错误 (2xxxx)
const (
	CodeUnauthorized   = 20001 // 未认证
	CodeInvalidToken   = 20002 // Token 无效
	CodeTokenExpired   = 20003 // Token 已过期
	CodePermissionDeny = 20004 // 权限不足
)

// 账号模块错误 (11xxx)
const (
	CodeUserNotFound        = 11001 // 用户不存在
	CodeUserAlreadyExist    = 11002 // 用户已存在
	CodePasswordError       = 11003 // 密码错误
	CodeEmailFormatError    = 11004 // 邮箱格式错误
	CodePasswordTooShort    = 11005 // 密码长度不足
	CodeResetTokenInvalid   = 11006 // 重置链接无效或已过期
	CodeMailSendFail        = 11007 // 邮件发送失败
	CodePasswordTooLong     = 11008 // 密码超过 72 字节
	CodeProfileNotFound     = 11101 // 资料不存在
	CodeHandleInvalid       = 11102 // 用户 ID 格式错误
	CodeHandleTaken         = 11103 // 用户 ID 已被占用
	CodeDisplayNameTooLong  = 11104 // 显示名称过长
	CodeBiographyTooLong    = 11105 // 简介过长
	CodeHandleAllocateError = 11106 // 用户 ID 分配失败
)

// 关注模块错误 (12xxx)
const (
	CodeSelfFollow     = 12001 // 不能关注自己
	CodeTargetNotFound = 12002 // 关注对象不存在
)

// 帖子模块错误 (13xxx)
const (
	CodePostNotFound   = 13001 // 帖子不存在
	CodePostEmpty      = 13002 // 文字和图片至少需要一个
	CodeCaptionTooLong = 13003 // 文字过长
	CodeNotPostOwner   = 13004 // 无权删除该帖子
	CodeEmojiInvalid   = 13005 // 表情不合法
)

// 文件模块错误 (15xxx)
const (
	CodeFileTooLarge         = 15001 // 文件过大
	CodeFileFormatNotSupport = 15002 // 文件格式不支持
	CodeFileUploadFail       = 15003 // 文件上传失败
)

// 服务端错误 (3xxxx)
const (
	CodeInternalError      = 30001 // 服务器内部错误
	CodeServiceUnavailable = 30002 // 服务暂不可用
	CodeTimeoutError       = 30003 // 请求超时
	CodeStorageError       = 30004 // 存储服务异常
)

// 错误消息映射
var CodeMessage = map[int32]string{
	CodeSuccess: "success",

	// 客户端错误
	CodeParamError:       "参数验证失败",
	CodeBodyError:        "请求体格式错误",
	CodeResourceNotFound: "资源不存在",
	CodeMethodNotAllowed: "请求方法不允许",
	CodeTooManyRequests:  "请求过于频繁",
	CodeBodyTooLarge:     "请求体过大",

	// 认证错误
	CodeUnauthorized:   "未认证",
	CodeInvalidToken:   "Token 无效",
	CodeTokenExpired:   "Token 已过期",
	CodePermissionDeny: "权限不足",

	// 账号模块
	CodeUserNotFound:        "用户不存在",
	CodeUserAlreadyExist:    "该邮箱已注册",
	CodePasswordError:       "邮箱或密码错误",
	CodeEmailFormatError:    "邮箱格式错误",
	CodePasswordTooShort:    "密码至少需要 8 个字符",
	CodeResetTokenInvalid:   "重置链接无效或已过期",
	CodeMailSendFail:        "邮件发送失败",
	CodePasswordTooLong:     "密码过长，最多 72 字节",
	CodeProfileNotFound:     "资料不存在",
	CodeHandleInvalid:       "用户 ID 只能包含小写字母、数字和下划线，长度 3-20",
	CodeHandleTaken:         "该用户 ID 已被使用",
	CodeDisplayNameTooLong:  "显示名称不能超过 50 个字符",
	CodeBiographyTooLong:    "简介不能超过 500 个字符",
	CodeHandleAllocateError: "用户 ID 分配失败",

	// 关注模块
	CodeSelfFollow:     "不能关注自己",
	CodeTargetNotFound: "关注对象不存在",

	// 帖子模块
	CodePostNotFound:   "帖子不存在",
	CodePostEmpty:      "请输入文字或选择图片",
	CodeCaptionTooLong: "文字不能超过 2000 个字符",
	CodeNotPostOwner:   "没有删除该帖子的权限",
	CodeEmojiInvalid:   "表情不合法",

	// 文件模块
	CodeFileTooLarge:         "文件大小不能超过 5MB",
	CodeFileFormatNotSupport: "只能上传图片文件",
	CodeFileUploadFail:       "文件上传失败",

	// 服务端错误
	CodeInternalError:      "服务器内部错误",
	CodeServiceUnavailable: "服务暂不可用",
	CodeTimeoutError:       "请求超时",
	CodeStorageError:       "存储服务异常",
}

// GetMessage 根据错误码获取错误消息
func GetMessage(code int32) string {
	if msg, ok := CodeMessage[code]; ok {
		return msg
	}
	return "未知错误"
}

// IsNonServerError 判断是否为非服务端错误（客户端/业务错误）
// 业务错误直接返回给调用方，服务端错误需要记录日志并统一返回内部错误
func IsNonServerError(code int32) bool {
	return code != CodeSuccess && code < 30000
}

package errors

import "errors"

// 云端备份只向调用方暴露两种失败信号，不做重试

// ErrCloudNotConfigured 未配置对象存储
var ErrCloudNotConfigured = errors.New("未配置云端存储")

// ErrCloudTransferFailed 上传或下载失败（网络、鉴权、对象不存在等）
var ErrCloudTransferFailed = errors.New("云端同步失败")

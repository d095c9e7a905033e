package notify

import "context"

// Notifier 定义通知接口。
type Notifier interface {
	// SendPasswordReset 发送密码重置邮件。
	//
	// 参数:
	//   ctx: 上下文
	//   toEmail: 接收邮箱
	//   resetURL: 含原始重置密钥的链接（只在邮件里出现，服务端不保存）
	SendPasswordReset(ctx context.Context, toEmail string, resetURL string) error
}

package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"curiohub/internal/config"

	"gopkg.in/gomail.v2"
)

// EmailNotifier 实现邮件通知。
type EmailNotifier struct {
	cfg    *config.EmailConfig
	logger *slog.Logger
}

// NewEmailNotifier 创建一个新的邮件通知器。
func NewEmailNotifier(cfg *config.EmailConfig, logger *slog.Logger) *EmailNotifier {
	return &EmailNotifier{
		cfg:    cfg,
		logger: logger,
	}
}

// SendPasswordReset 发送密码重置邮件。
//
// 配置缺失或投递失败都返回错误，由调用方回滚重置状态。
func (n *EmailNotifier) SendPasswordReset(ctx context.Context, toEmail string, resetURL string) error {
	if n.cfg.SMTPHost == "" || n.cfg.SMTPUser == "" || n.cfg.FromEmail == "" {
		return fmt.Errorf("email config missing")
	}
	if strings.TrimSpace(toEmail) == "" {
		return fmt.Errorf("empty recipient")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.cfg.FromEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", "[CurioHub] Password Reset Request")

	body := fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif;">
  <div style="max-width: 520px; margin: 0 auto; padding: 16px;">
    <h2>CurioHub 密码重置</h2>
    <p>我们收到了这个邮箱的密码重置请求。点击下面的按钮设置新密码：</p>
    <div style="text-align:center; margin: 16px 0;">
      <a href="%s" target="_blank"
         style="display:inline-block; padding: 12px 20px; background: #22c55e; color: #fff; text-decoration: none; border-radius: 8px; font-weight: bold;">
        重置密码
      </a>
    </div>
    <p>链接有效期 10 分钟，只能使用一次。</p>
    <p style="font-size: 12px; color: #6b7280;">如果这不是你发起的请求，忽略本邮件即可，密码不会被改动。</p>
  </div>
</body>
</html>`, resetURL)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(n.cfg.SMTPHost, n.cfg.SMTPPort, n.cfg.SMTPUser, n.cfg.SMTPPass)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	n.logger.Info("password reset email sent", slog.String("to", toEmail))
	return nil
}
